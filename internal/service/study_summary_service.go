package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	"github.com/noah-isme/study-mission-api/internal/planner"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
)

// StudySummaryService serves the weekly projection and free-time report.
type StudySummaryService struct {
	plans     studyPlanReader
	routines  routineReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	tracer    trace.Tracer
	ttl       time.Duration
	now       func() time.Time
}

// NewStudySummaryService constructs the service. A nil cache disables caching.
func NewStudySummaryService(plans studyPlanReader, routines routineReader, cache *CacheService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *StudySummaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudySummaryService{
		plans:     plans,
		routines:  routines,
		cache:     cache,
		validator: validate,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Weekly projects one week of study. Without weekStart the current week is used.
// The bool result reports a cache hit.
func (s *StudySummaryService) Weekly(ctx context.Context, query dto.WeeklySummaryQuery, actorID string, role models.UserRole) (*dto.WeeklySummaryResponse, bool, error) {
	if err := validateStruct(s.validator, query, "invalid weekly summary query"); err != nil {
		return nil, false, err
	}
	memberID, err := resolveMember(query.MemberID, actorID, role)
	if err != nil {
		return nil, false, err
	}

	weekStart := planner.StartOfWeek(s.now().UTC())
	if query.WeekStart != "" {
		if weekStart, err = parseDay("weekStart", query.WeekStart); err != nil {
			return nil, false, err
		}
	}

	key := fmt.Sprintf("summary:weekly:%s:%s", memberID, weekStart.Format(dateLayout))
	if query.Refresh {
		_ = s.cache.Invalidate(ctx, key)
	} else {
		var cached dto.WeeklySummaryResponse
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	ctx, span := s.tracer.Start(ctx, "StudySummaryService.Weekly", trace.WithAttributes(
		attribute.String("member.id", memberID),
		attribute.String("week.start", weekStart.Format(dateLayout)),
	))
	plans, routines, err := s.loadSnapshot(ctx, memberID)
	endSpan(span, err)
	if err != nil {
		return nil, false, err
	}

	resp := toWeeklySummaryResponse(memberID, planner.GenerateWeeklySummary(weekStart, plans, routines))
	_ = s.cache.Set(ctx, key, resp, s.ttl)
	return &resp, false, nil
}

// AvailableTime reports routine load and remaining free time per weekday.
func (s *StudySummaryService) AvailableTime(ctx context.Context, query dto.AvailableTimeQuery, actorID string, role models.UserRole) (*dto.AvailableTimeResponse, bool, error) {
	if err := validateStruct(s.validator, query, "invalid available time query"); err != nil {
		return nil, false, err
	}
	memberID, err := resolveMember(query.MemberID, actorID, role)
	if err != nil {
		return nil, false, err
	}

	key := fmt.Sprintf("summary:available:%s", memberID)
	if query.Refresh {
		_ = s.cache.Invalidate(ctx, key)
	} else {
		var cached dto.AvailableTimeResponse
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	ctx, span := s.tracer.Start(ctx, "StudySummaryService.AvailableTime", trace.WithAttributes(attribute.String("member.id", memberID)))
	routines, err := s.routines.ListByMember(ctx, memberID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routines")
	}
	endSpan(span, err)
	if err != nil {
		return nil, false, err
	}

	resp := toAvailableTimeResponse(memberID, planner.CalculateAvailableStudyTime(toPlannerRoutines(routines)))
	_ = s.cache.Set(ctx, key, resp, s.ttl)
	return &resp, false, nil
}

func (s *StudySummaryService) loadSnapshot(ctx context.Context, memberID string) ([]planner.StudyPlan, []planner.Routine, error) {
	var (
		plans    []models.StudyPlan
		routines []models.Routine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if plans, err = s.plans.List(gctx, models.StudyPlanFilter{MemberID: memberID, ActiveOnly: true}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study plans")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if routines, err = s.routines.ListByMember(gctx, memberID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routines")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return toPlannerPlans(plans), toPlannerRoutines(routines), nil
}
