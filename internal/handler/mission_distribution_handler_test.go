package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
)

type distributionServiceMock struct {
	lastReq   dto.DistributionRequest
	lastActor string
	lastRole  models.UserRole
	lastJobID string

	preview *dto.DistributionResponse
	applied *dto.DistributionApplyResult
	job     *dto.DistributionJobResponse
	err     error
}

func (m *distributionServiceMock) Preview(_ context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionResponse, error) {
	m.lastReq, m.lastActor, m.lastRole = req, actorID, role
	return m.preview, m.err
}

func (m *distributionServiceMock) Apply(_ context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionApplyResult, error) {
	m.lastReq, m.lastActor, m.lastRole = req, actorID, role
	return m.applied, m.err
}

func (m *distributionServiceMock) Enqueue(_ context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionJobResponse, error) {
	m.lastReq, m.lastActor, m.lastRole = req, actorID, role
	return m.job, m.err
}

func (m *distributionServiceMock) JobStatus(_ context.Context, id, actorID string, role models.UserRole) (*dto.DistributionJobResponse, error) {
	m.lastJobID, m.lastActor, m.lastRole = id, actorID, role
	return m.job, m.err
}

func sampleDistribution() dto.DistributionResponse {
	return dto.DistributionResponse{
		MemberID:  "member-1",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-07",
		Missions: []dto.GeneratedMissionResponse{
			{MemberID: "member-1", Date: "2024-01-01", PlanID: "plan-1", Subject: "Math", TargetAmount: 34, Status: "pending"},
		},
		Warnings: []string{"No study routine found for History"},
		Summary:  dto.DistributionSummaryResponse{TotalMissions: 1, BySubject: map[string]int{"Math": 1}, TotalStudyMinutes: 60},
	}
}

const distributionBody = `{"startDate":"2024-01-01","endDate":"2024-01-07","skipWeekends":true}`

func TestMissionDistributionHandlerPreview(t *testing.T) {
	preview := sampleDistribution()
	svc := &distributionServiceMock{preview: &preview}
	h := NewMissionDistributionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/missions/distribution/preview", []byte(distributionBody))
	withActor(c, "member-1", models.RoleStudent)
	h.Preview(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "member-1", svc.lastActor)
	assert.Equal(t, models.RoleStudent, svc.lastRole)
	assert.Equal(t, "2024-01-01", svc.lastReq.StartDate)
	assert.True(t, svc.lastReq.SkipWeekends)

	env := decodeEnvelope(t, w)
	var body dto.DistributionResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Len(t, body.Missions, 1)
	assert.Equal(t, float64(1), env.Meta["warnings"])
}

func TestMissionDistributionHandlerApplyReportsCounts(t *testing.T) {
	svc := &distributionServiceMock{applied: &dto.DistributionApplyResult{
		Distribution: sampleDistribution(),
		Inserted:     1,
		Skipped:      2,
	}}
	h := NewMissionDistributionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/missions/distribution", []byte(distributionBody))
	withActor(c, "member-1", models.RoleStudent)
	h.Apply(c)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, float64(1), env.Meta["inserted"])
	assert.Equal(t, float64(2), env.Meta["skipped"])
}

func TestMissionDistributionHandlerEnqueue(t *testing.T) {
	svc := &distributionServiceMock{job: &dto.DistributionJobResponse{JobID: "job-1", Status: "queued"}}
	h := NewMissionDistributionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/missions/distribution/async", []byte(distributionBody))
	withActor(c, "teacher-1", models.RoleTeacher)
	h.Enqueue(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	var job dto.DistributionJobResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &job))
	assert.Equal(t, "job-1", job.JobID)
}

func TestMissionDistributionHandlerJobStatus(t *testing.T) {
	svc := &distributionServiceMock{job: &dto.DistributionJobResponse{JobID: "job-1", Status: "succeeded"}}
	h := NewMissionDistributionHandler(svc)

	c, w := newGinContext(http.MethodGet, "/missions/distribution/jobs/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	withActor(c, "member-1", models.RoleStudent)
	h.JobStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "job-1", svc.lastJobID)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "job not found")
	c, w = newGinContext(http.MethodGet, "/missions/distribution/jobs/job-2", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-2"}}
	withActor(c, "member-1", models.RoleStudent)
	h.JobStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMissionDistributionHandlerRejectsBadInput(t *testing.T) {
	svc := &distributionServiceMock{}
	h := NewMissionDistributionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/missions/distribution/preview", []byte(`{"startDate":`))
	withActor(c, "member-1", models.RoleStudent)
	h.Preview(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, w).Error["code"])

	c, w = newGinContext(http.MethodPost, "/missions/distribution/preview", []byte(distributionBody))
	h.Preview(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, svc.lastActor)
}

func TestMissionDistributionHandlerPropagatesServiceErrors(t *testing.T) {
	svc := &distributionServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "not allowed to act for another member")}
	h := NewMissionDistributionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/missions/distribution", []byte(`{"startDate":"2024-01-01","endDate":"2024-01-07","memberId":"other"}`))
	withActor(c, "member-1", models.RoleStudent)
	h.Apply(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "other", svc.lastReq.MemberID)
}
