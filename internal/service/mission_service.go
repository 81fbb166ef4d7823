package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	"github.com/noah-isme/study-mission-api/internal/planner"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
)

type missionLister interface {
	List(ctx context.Context, filter models.MissionFilter) ([]models.StudyMission, error)
}

type missionSheetRenderer interface {
	RenderMissions(memberID string, from, to time.Time, missions []models.StudyMission, format string) (*dto.MissionExport, error)
}

// MissionService reads stored missions.
type MissionService struct {
	missions      missionLister
	exporter      missionSheetRenderer
	validator     *validator.Validate
	logger        *zap.Logger
	maxWindowDays int
}

// NewMissionService constructs the service.
func NewMissionService(missions missionLister, exporter missionSheetRenderer, maxWindowDays int, validate *validator.Validate, logger *zap.Logger) *MissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxWindowDays <= 0 {
		maxWindowDays = 366
	}
	return &MissionService{missions: missions, exporter: exporter, validator: validate, logger: logger, maxWindowDays: maxWindowDays}
}

// List returns a member's stored missions within the query window.
func (s *MissionService) List(ctx context.Context, query dto.MissionListQuery, actorID string, role models.UserRole) ([]dto.MissionResponse, error) {
	filter, err := s.filter(query, actorID, role)
	if err != nil {
		return nil, err
	}
	missions, err := s.missions.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list missions")
	}
	return toMissionResponses(missions), nil
}

// Export renders a member's missions within the query window as CSV or PDF.
func (s *MissionService) Export(ctx context.Context, query dto.MissionExportQuery, actorID string, role models.UserRole) (*dto.MissionExport, error) {
	if err := validateStruct(s.validator, query, "invalid export query"); err != nil {
		return nil, err
	}
	filter, err := s.filter(query.MissionListQuery, actorID, role)
	if err != nil {
		return nil, err
	}
	missions, err := s.missions.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list missions")
	}
	out, err := s.exporter.RenderMissions(filter.MemberID, filter.From, filter.To, missions, query.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render missions")
	}
	return out, nil
}

func (s *MissionService) filter(query dto.MissionListQuery, actorID string, role models.UserRole) (models.MissionFilter, error) {
	if err := validateStruct(s.validator, query, "invalid mission query"); err != nil {
		return models.MissionFilter{}, err
	}
	memberID, err := resolveMember(query.MemberID, actorID, role)
	if err != nil {
		return models.MissionFilter{}, err
	}
	from, to, err := parseWindow(query.From, query.To)
	if err != nil {
		return models.MissionFilter{}, err
	}
	if planner.DaysBetweenInclusive(from, to) > s.maxWindowDays {
		return models.MissionFilter{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mission window must not exceed %d days", s.maxWindowDays))
	}
	return models.MissionFilter{MemberID: memberID, From: from, To: to}, nil
}
