package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/jobs"
)

type planReaderStub struct {
	plans   []models.StudyPlan
	err     error
	filters []models.StudyPlanFilter
	mu      sync.Mutex
}

func (s *planReaderStub) List(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlan, error) {
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
	return s.plans, s.err
}

type routineReaderStub struct {
	routines []models.Routine
	err      error
	calls    int
	mu       sync.Mutex
}

func (s *routineReaderStub) ListByMember(ctx context.Context, memberID string) ([]models.Routine, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.routines, s.err
}

type missionWriterStub struct {
	inserted int
	err      error
	received []models.StudyMission
}

func (s *missionWriterStub) InsertSkipDuplicates(ctx context.Context, exec sqlx.ExtContext, missions []models.StudyMission) (int, error) {
	s.received = append(s.received, missions...)
	if s.err != nil {
		return 0, s.err
	}
	if s.inserted < 0 {
		return len(missions), nil
	}
	return s.inserted, nil
}

type eventSinkStub struct {
	events []MissionsGeneratedEvent
	err    error
}

func (s *eventSinkStub) PublishMissionsGenerated(ctx context.Context, event MissionsGeneratedEvent) error {
	s.events = append(s.events, event)
	return s.err
}

type queueStub struct {
	jobs   []jobs.Job
	states map[string]jobs.State
	err    error
}

func (q *queueStub) Enqueue(job jobs.Job) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	job.ID = "job-1"
	q.jobs = append(q.jobs, job)
	return job.ID, nil
}

func (q *queueStub) Status(id string) (jobs.State, bool) {
	state, ok := q.states[id]
	return state, ok
}

func storedMathPlan() models.StudyPlan {
	return models.StudyPlan{
		ID:          "plan-1",
		MemberID:    "member-1",
		Subject:     "Math",
		PlanType:    models.StudyPlanTypeTextbook,
		Title:       "Algebra",
		Material:    "Textbook A",
		TotalAmount: 100,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
		Priority:    1,
	}
}

func storedMWFRoutine() models.Routine {
	subject := "Math"
	return models.Routine{
		ID:        "routine-1",
		MemberID:  "member-1",
		Subject:   &subject,
		Category:  models.RoutineCategoryStudy,
		StartTime: "19:00:00",
		EndTime:   "20:00:00",
		Days:      []bool{false, true, false, true, false, true, false},
	}
}

func firstWeekRequest() dto.DistributionRequest {
	return dto.DistributionRequest{StartDate: "2024-01-01", EndDate: "2024-01-07"}
}

type distributionFixture struct {
	svc      *MissionDistributionService
	plans    *planReaderStub
	routines *routineReaderStub
	writer   *missionWriterStub
	events   *eventSinkStub
	mock     sqlmock.Sqlmock
}

func newDistributionFixture(t *testing.T, cfg MissionDistributionConfig) *distributionFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &distributionFixture{
		plans:    &planReaderStub{plans: []models.StudyPlan{storedMathPlan()}},
		routines: &routineReaderStub{routines: []models.Routine{storedMWFRoutine()}},
		writer:   &missionWriterStub{inserted: -1},
		events:   &eventSinkStub{},
		mock:     mock,
	}
	f.svc = NewMissionDistributionService(MissionDistributionServiceParams{
		Plans:    f.plans,
		Routines: f.routines,
		Missions: f.writer,
		DB:       sqlx.NewDb(db, "sqlmock"),
		Events:   f.events,
		Metrics:  NewMetricsService(),
		Config:   cfg,
	})
	return f
}

func TestMissionDistributionPreview(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})

	resp, err := f.svc.Preview(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.NoError(t, err)

	require.Len(t, resp.Missions, 3)
	assert.Equal(t, "2024-01-01", resp.Missions[0].Date)
	assert.Equal(t, "Textbook A p.1~34", resp.Missions[0].Title)
	assert.Equal(t, "Algebra", resp.Missions[0].Description)
	require.NotNil(t, resp.Missions[0].StartTime)
	assert.Equal(t, "19:00:00", *resp.Missions[0].StartTime)
	assert.Equal(t, 32, resp.Missions[2].TargetAmount)
	assert.Equal(t, 3, resp.Summary.BySubject["Math"])
	assert.Equal(t, 180, resp.Summary.TotalStudyMinutes)
	assert.NotNil(t, resp.Warnings)
	assert.Empty(t, resp.Warnings)

	require.Len(t, f.plans.filters, 1)
	assert.True(t, f.plans.filters[0].ActiveOnly)
	assert.Equal(t, "member-1", f.plans.filters[0].MemberID)
	assert.Empty(t, f.writer.received)
	assert.Empty(t, f.events.events)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMissionDistributionPreviewMissingRoutineWarns(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	f.routines.routines = nil

	resp, err := f.svc.Preview(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Warnings)
	assert.Equal(t, "Math 과목의 학습 루틴이 설정되지 않았습니다.", resp.Warnings[0])
}

func TestMissionDistributionMemberOverride(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	req := firstWeekRequest()
	req.MemberID = "member-2"

	_, err := f.svc.Preview(context.Background(), req, "member-1", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, appErrors.FromError(err).Status)

	resp, err := f.svc.Preview(context.Background(), req, "parent-1", models.RoleParent)
	require.NoError(t, err)
	assert.Equal(t, "member-2", resp.MemberID)
	assert.Equal(t, "member-2", f.plans.filters[0].MemberID)
}

func TestMissionDistributionValidation(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{MaxWindowDays: 31})

	cases := map[string]dto.DistributionRequest{
		"missing end":  {StartDate: "2024-01-01"},
		"bad format":   {StartDate: "2024/01/01", EndDate: "2024-01-07"},
		"inverted":     {StartDate: "2024-01-07", EndDate: "2024-01-01"},
		"window limit": {StartDate: "2024-01-01", EndDate: "2024-03-01"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Preview(context.Background(), req, "member-1", models.RoleStudent)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
	assert.Empty(t, f.plans.filters)
}

func TestMissionDistributionLoadFailure(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	f.routines.err = errors.New("connection reset")

	_, err := f.svc.Preview(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestMissionDistributionApplyStoresAndPublishes(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	f.writer.inserted = 2
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Apply(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, f.writer.received, 3)
	assert.Equal(t, models.MissionStatusPending, f.writer.received[0].Status)
	assert.Equal(t, "member-1", f.writer.received[0].MemberID)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, "member-1", event.MemberID)
	assert.Equal(t, "2024-01-01", event.StartDate)
	assert.Equal(t, 2, event.Inserted)
	assert.Equal(t, 1, event.Skipped)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMissionDistributionApplyRollsBackOnInsertError(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	f.writer.err = errors.New("unique violation")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.Apply(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
	assert.Empty(t, f.events.events)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMissionDistributionApplyIgnoresPublishFailure(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	f.events.err = errors.New("broker unreachable")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	result, err := f.svc.Apply(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Len(t, f.events.events, 1)
}

func TestMissionDistributionApplyWithoutMissionsSkipsTransaction(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	f.plans.plans = nil

	result, err := f.svc.Apply(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.NoError(t, err)
	assert.Zero(t, result.Inserted)
	assert.Zero(t, result.Skipped)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestMissionDistributionEnqueue(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{})
	_, err := f.svc.Enqueue(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, appErrors.FromError(err).Status)

	f = newDistributionFixture(t, MissionDistributionConfig{AsyncEnabled: true})
	queue := &queueStub{}
	f.svc.AttachQueue(queue)

	resp, err := f.svc.Enqueue(context.Background(), firstWeekRequest(), "member-1", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.JobID)
	assert.Equal(t, string(jobs.StatusQueued), resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeMissionDistribution, queue.jobs[0].Type)
	assert.Equal(t, "member-1", queue.jobs[0].Owner)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	out, err := f.svc.HandleJob(context.Background(), queue.jobs[0])
	require.NoError(t, err)
	applied, ok := out.(*dto.DistributionApplyResult)
	require.True(t, ok)
	assert.Equal(t, 3, applied.Inserted)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.svc.HandleJob(context.Background(), jobs.Job{Payload: "garbage"})
	assert.Error(t, err)
}

func TestMissionDistributionJobStatus(t *testing.T) {
	f := newDistributionFixture(t, MissionDistributionConfig{AsyncEnabled: true})
	f.svc.AttachQueue(&queueStub{states: map[string]jobs.State{
		"job-1": {ID: "job-1", Owner: "member-1", Status: jobs.StatusSucceeded, Attempts: 0, UpdatedAt: time.Now()},
	}})

	resp, err := f.svc.JobStatus(context.Background(), "job-1", "member-1", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "succeeded", resp.Status)

	_, err = f.svc.JobStatus(context.Background(), "job-1", "member-2", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, err = f.svc.JobStatus(context.Background(), "job-1", "admin-1", models.RoleAdmin)
	assert.NoError(t, err)
}
