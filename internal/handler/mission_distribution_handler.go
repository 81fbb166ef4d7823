package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/response"
)

type missionDistributionService interface {
	Preview(ctx context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionResponse, error)
	Apply(ctx context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionApplyResult, error)
	Enqueue(ctx context.Context, req dto.DistributionRequest, actorID string, role models.UserRole) (*dto.DistributionJobResponse, error)
	JobStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.DistributionJobResponse, error)
}

// MissionDistributionHandler turns study plans into daily missions over HTTP.
type MissionDistributionHandler struct {
	service missionDistributionService
}

// NewMissionDistributionHandler constructs the handler.
func NewMissionDistributionHandler(service missionDistributionService) *MissionDistributionHandler {
	return &MissionDistributionHandler{service: service}
}

// Preview godoc
// @Summary Preview mission distribution
// @Description Runs the distribution for the window without storing missions.
// @Tags Missions
// @Accept json
// @Produce json
// @Param payload body dto.DistributionRequest true "Distribution window"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /missions/distribution/preview [post]
func (h *MissionDistributionHandler) Preview(c *gin.Context) {
	claims, req, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, metaWith(c, map[string]interface{}{
		"warnings": len(result.Warnings),
	}))
}

// Apply godoc
// @Summary Generate and store missions
// @Description Stores generated missions, skipping ones that already exist for the same plan and day.
// @Tags Missions
// @Accept json
// @Produce json
// @Param payload body dto.DistributionRequest true "Distribution window"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /missions/distribution [post]
func (h *MissionDistributionHandler) Apply(c *gin.Context) {
	claims, req, ok := h.bind(c)
	if !ok {
		return
	}
	result, err := h.service.Apply(c.Request.Context(), req, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result.Distribution, metaWith(c, map[string]interface{}{
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
		"warnings": len(result.Distribution.Warnings),
	}))
}

// Enqueue godoc
// @Summary Queue a mission distribution
// @Tags Missions
// @Accept json
// @Produce json
// @Param payload body dto.DistributionRequest true "Distribution window"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /missions/distribution/async [post]
func (h *MissionDistributionHandler) Enqueue(c *gin.Context) {
	claims, req, ok := h.bind(c)
	if !ok {
		return
	}
	job, err := h.service.Enqueue(c.Request.Context(), req, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// JobStatus godoc
// @Summary Queued distribution status
// @Tags Missions
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /missions/distribution/jobs/{id} [get]
func (h *MissionDistributionHandler) JobStatus(c *gin.Context) {
	claims, ok := actorFromContext(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "job id is required"))
		return
	}
	job, err := h.service.JobStatus(c.Request.Context(), id, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

func (h *MissionDistributionHandler) bind(c *gin.Context) (*models.JWTClaims, dto.DistributionRequest, bool) {
	var req dto.DistributionRequest
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return nil, req, false
	}
	claims, ok := actorFromContext(c)
	if !ok {
		return nil, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return nil, req, false
	}
	return claims, req, true
}
