package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	"github.com/noah-isme/study-mission-api/internal/planner"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/jobs"
)

// JobTypeMissionDistribution labels queued distribution jobs.
const JobTypeMissionDistribution = "mission_distribution"

const tracerName = "github.com/noah-isme/study-mission-api/internal/service"

type studyPlanReader interface {
	List(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlan, error)
}

type routineReader interface {
	ListByMember(ctx context.Context, memberID string) ([]models.Routine, error)
}

type missionWriter interface {
	InsertSkipDuplicates(ctx context.Context, exec sqlx.ExtContext, missions []models.StudyMission) (int, error)
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type missionEventSink interface {
	PublishMissionsGenerated(ctx context.Context, event MissionsGeneratedEvent) error
}

type distributionQueue interface {
	Enqueue(job jobs.Job) (string, error)
	Status(id string) (jobs.State, bool)
}

// MissionDistributionConfig bounds distribution requests.
type MissionDistributionConfig struct {
	MaxWindowDays int
	AsyncEnabled  bool
}

// MissionDistributionServiceParams groups constructor dependencies.
type MissionDistributionServiceParams struct {
	Plans     studyPlanReader
	Routines  routineReader
	Missions  missionWriter
	DB        txBeginner
	Events    missionEventSink
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    MissionDistributionConfig
}

// MissionDistributionService loads a member's plans and routines, runs the
// distribution engine and stores the resulting missions.
type MissionDistributionService struct {
	plans     studyPlanReader
	routines  routineReader
	missions  missionWriter
	db        txBeginner
	events    missionEventSink
	queue     distributionQueue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	tracer    trace.Tracer
	cfg       MissionDistributionConfig
}

// distributionInput is a validated request, also used as the async job payload.
type distributionInput struct {
	MemberID     string
	Start        time.Time
	End          time.Time
	PlanIDs      []string
	Prioritize   bool
	SkipWeekends bool
}

func (in distributionInput) options() planner.DistributionOptions {
	return planner.DistributionOptions{
		StartDate:              in.Start,
		EndDate:                in.End,
		MemberID:               in.MemberID,
		PrioritizeHighPriority: in.Prioritize,
		SkipWeekends:           in.SkipWeekends,
	}
}

// NewMissionDistributionService constructs the service.
func NewMissionDistributionService(params MissionDistributionServiceParams) *MissionDistributionService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Config.MaxWindowDays <= 0 {
		params.Config.MaxWindowDays = 366
	}
	return &MissionDistributionService{
		plans:     params.Plans,
		routines:  params.Routines,
		missions:  params.Missions,
		db:        params.DB,
		events:    params.Events,
		metrics:   params.Metrics,
		validator: params.Validator,
		logger:    params.Logger,
		tracer:    otel.Tracer(tracerName),
		cfg:       params.Config,
	}
}

// AttachQueue wires the worker queue used by Enqueue and JobStatus.
func (s *MissionDistributionService) AttachQueue(queue distributionQueue) {
	s.queue = queue
}

// Preview runs the engine without storing anything.
func (s *MissionDistributionService) Preview(ctx context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionResponse, error) {
	in, err := s.prepare(req, actorID, role)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := s.distribute(ctx, in)
	s.metrics.ObserveDistribution(DistributionModePreview, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	resp := toDistributionResponse(in.MemberID, in.Start, in.End, result)
	return &resp, nil
}

// Apply runs the engine and stores the missions. Missions already stored for
// the same member, plan and day are kept and counted as skipped.
func (s *MissionDistributionService) Apply(ctx context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionApplyResult, error) {
	in, err := s.prepare(req, actorID, role)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, in, DistributionModeApply)
}

// Enqueue validates the request and hands it to the worker queue.
func (s *MissionDistributionService) Enqueue(ctx context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionJobResponse, error) {
	if !s.cfg.AsyncEnabled || s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "asynchronous distribution is disabled")
	}
	in, err := s.prepare(req, actorID, role)
	if err != nil {
		return nil, err
	}
	id, err := s.queue.Enqueue(jobs.Job{Type: JobTypeMissionDistribution, Owner: actorID, Payload: in})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to enqueue distribution")
	}
	s.logger.Info("distribution job queued", zap.String("job_id", id), zap.String("member_id", in.MemberID))
	return &dto.DistributionJobResponse{JobID: id, Status: string(jobs.StatusQueued)}, nil
}

// JobStatus reports an async job to the actor who queued it or to an admin.
func (s *MissionDistributionService) JobStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.DistributionJobResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "asynchronous distribution is disabled")
	}
	state, ok := s.queue.Status(id)
	if !ok || (state.Owner != actorID && !role.IsAdmin()) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "distribution job not found")
	}
	updated := state.UpdatedAt
	return &dto.DistributionJobResponse{
		JobID:     state.ID,
		Status:    string(state.Status),
		Attempts:  state.Attempts,
		Error:     state.Error,
		Result:    state.Result,
		UpdatedAt: &updated,
	}, nil
}

// HandleJob is the queue handler for distribution jobs.
func (s *MissionDistributionService) HandleJob(ctx context.Context, job jobs.Job) (any, error) {
	in, ok := job.Payload.(distributionInput)
	if !ok {
		return nil, fmt.Errorf("unexpected distribution payload %T", job.Payload)
	}
	return s.apply(ctx, in, DistributionModeAsync)
}

func (s *MissionDistributionService) prepare(req dto.DistributionRequest, actorID string, role models.UserRole) (distributionInput, error) {
	if err := validateStruct(s.validator, req, "invalid distribution payload"); err != nil {
		return distributionInput{}, err
	}
	memberID, err := resolveMember(req.MemberID, actorID, role)
	if err != nil {
		return distributionInput{}, err
	}
	start, end, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return distributionInput{}, err
	}
	if planner.DaysBetweenInclusive(start, end) > s.cfg.MaxWindowDays {
		return distributionInput{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("distribution window must not exceed %d days", s.cfg.MaxWindowDays))
	}
	return distributionInput{
		MemberID:     memberID,
		Start:        start,
		End:          end,
		PlanIDs:      req.PlanIDs,
		Prioritize:   req.PrioritizeHighPriority,
		SkipWeekends: req.SkipWeekends,
	}, nil
}

func (s *MissionDistributionService) apply(ctx context.Context, in distributionInput, mode string) (result *dto.DistributionApplyResult, err error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "MissionDistributionService.apply", trace.WithAttributes(attribute.String("distribution.mode", mode)))
	defer func() {
		s.metrics.ObserveDistribution(mode, time.Since(started), err)
		endSpan(span, err)
	}()

	distribution, err := s.distribute(ctx, in)
	if err != nil {
		return nil, err
	}

	records := toMissionRecords(distribution.Missions)
	inserted, err := s.persist(ctx, records)
	if err != nil {
		return nil, err
	}
	skipped := len(records) - inserted
	s.metrics.RecordPersistedMissions(inserted, skipped)
	span.SetAttributes(attribute.Int("missions.inserted", inserted), attribute.Int("missions.skipped", skipped))

	resp := toDistributionResponse(in.MemberID, in.Start, in.End, distribution)
	s.publish(ctx, resp, inserted, skipped)

	s.logger.Info("missions distributed",
		zap.String("member_id", in.MemberID),
		zap.String("mode", mode),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
		zap.Int("warnings", len(resp.Warnings)),
	)
	return &dto.DistributionApplyResult{Distribution: resp, Inserted: inserted, Skipped: skipped}, nil
}

func (s *MissionDistributionService) distribute(ctx context.Context, in distributionInput) (planner.DistributionResult, error) {
	ctx, span := s.tracer.Start(ctx, "MissionDistributionService.distribute", trace.WithAttributes(
		attribute.String("member.id", in.MemberID),
		attribute.String("window.start", in.Start.Format(dateLayout)),
		attribute.String("window.end", in.End.Format(dateLayout)),
	))
	plans, routines, err := s.load(ctx, in)
	if err != nil {
		endSpan(span, err)
		return planner.DistributionResult{}, err
	}

	result := planner.DistributePlansToMissions(plans, routines, in.options())
	s.metrics.RecordGeneratedMissions(result.Summary.TotalMissions, len(result.Warnings))
	span.SetAttributes(
		attribute.Int("plans.count", len(plans)),
		attribute.Int("missions.count", len(result.Missions)),
		attribute.Int("warnings.count", len(result.Warnings)),
	)
	endSpan(span, nil)
	return result, nil
}

func (s *MissionDistributionService) load(ctx context.Context, in distributionInput) ([]planner.StudyPlan, []planner.Routine, error) {
	var (
		plans    []models.StudyPlan
		routines []models.Routine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		plans, err = s.plans.List(gctx, models.StudyPlanFilter{MemberID: in.MemberID, PlanIDs: in.PlanIDs, ActiveOnly: true})
		s.metrics.ObserveDBQuery("study_plans.list", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plans")
		}
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		routines, err = s.routines.ListByMember(gctx, in.MemberID)
		s.metrics.ObserveDBQuery("routines.list", time.Since(start))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routines")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return toPlannerPlans(plans), toPlannerRoutines(routines), nil
}

func (s *MissionDistributionService) persist(ctx context.Context, records []models.StudyMission) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("study_missions.insert", time.Since(start)) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	inserted, err := s.missions.InsertSkipDuplicates(ctx, tx, records)
	if err != nil {
		_ = tx.Rollback()
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store missions")
	}
	if err := tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit missions")
	}
	return inserted, nil
}

func (s *MissionDistributionService) publish(ctx context.Context, resp dto.DistributionResponse, inserted, skipped int) {
	if s.events == nil {
		return
	}
	event := MissionsGeneratedEvent{
		MemberID:  resp.MemberID,
		StartDate: resp.StartDate,
		EndDate:   resp.EndDate,
		Inserted:  inserted,
		Skipped:   skipped,
		Warnings:  resp.Warnings,
	}
	if err := s.events.PublishMissionsGenerated(ctx, event); err != nil {
		s.logger.Warn("failed to publish missions event", zap.String("member_id", resp.MemberID), zap.Error(err))
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
