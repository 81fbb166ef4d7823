package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-mission-api/internal/middleware"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
	"github.com/noah-isme/study-mission-api/pkg/response"
)

// actorFromContext returns the caller claims or renders 401 and reports false.
func actorFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := middleware.Claims(c)
	if !ok || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

func metaWith(c *gin.Context, entries map[string]interface{}) map[string]interface{} {
	for key, value := range entries {
		middleware.SetMeta(c, key, value)
	}
	return middleware.ExtractMeta(c)
}
