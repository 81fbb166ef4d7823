package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/middleware"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/response"
)

type studySummaryService interface {
	Weekly(ctx context.Context, query dto.WeeklySummaryQuery, actorID string, role models.UserRole) (*dto.WeeklySummaryResponse, bool, error)
	AvailableTime(ctx context.Context, query dto.AvailableTimeQuery, actorID string, role models.UserRole) (*dto.AvailableTimeResponse, bool, error)
}

// SummaryHandler exposes weekly study projections.
type SummaryHandler struct {
	service studySummaryService
}

// NewSummaryHandler constructs the handler.
func NewSummaryHandler(service studySummaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// Weekly godoc
// @Summary Weekly study summary
// @Tags Summaries
// @Produce json
// @Param weekStart query string false "Any day of the week (YYYY-MM-DD). Defaults to the current week"
// @Param memberId query string false "Member ID"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.Envelope
// @Router /summaries/weekly [get]
func (h *SummaryHandler) Weekly(c *gin.Context) {
	claims, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.WeeklySummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	summary, cacheHit, err := h.service.Weekly(c.Request.Context(), query, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// AvailableTime godoc
// @Summary Free study time per weekday
// @Tags Summaries
// @Produce json
// @Param memberId query string false "Member ID"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.Envelope
// @Router /summaries/available-time [get]
func (h *SummaryHandler) AvailableTime(c *gin.Context) {
	claims, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.AvailableTimeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	report, cacheHit, err := h.service.AvailableTime(c.Request.Context(), query, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}
