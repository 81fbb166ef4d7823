package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/response"
)

type missionService interface {
	List(ctx context.Context, query dto.MissionListQuery, actorID string, role models.UserRole) ([]dto.MissionResponse, error)
	Export(ctx context.Context, query dto.MissionExportQuery, actorID string, role models.UserRole) (*dto.MissionExport, error)
}

// MissionHandler serves stored missions.
type MissionHandler struct {
	service missionService
}

// NewMissionHandler constructs the handler.
func NewMissionHandler(service missionService) *MissionHandler {
	return &MissionHandler{service: service}
}

// List godoc
// @Summary List stored missions
// @Tags Missions
// @Produce json
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Param memberId query string false "Member ID"
// @Success 200 {object} response.Envelope
// @Router /missions [get]
func (h *MissionHandler) List(c *gin.Context) {
	claims, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.MissionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	missions, err := h.service.List(c.Request.Context(), query, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, missions, nil, metaWith(c, map[string]interface{}{
		"count": len(missions),
	}))
}

// Export godoc
// @Summary Download missions sheet
// @Tags Missions
// @Produce text/csv
// @Produce application/pdf
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Param memberId query string false "Member ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /missions/export [get]
func (h *MissionHandler) Export(c *gin.Context) {
	claims, ok := actorFromContext(c)
	if !ok {
		return
	}
	var query dto.MissionExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	export, err := h.service.Export(c.Request.Context(), query, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, export.Filename, export.ContentType, export.Payload)
}
