package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
)

type summaryServiceMock struct {
	weeklyQuery    dto.WeeklySummaryQuery
	availableQuery dto.AvailableTimeQuery
	weekly         *dto.WeeklySummaryResponse
	available      *dto.AvailableTimeResponse
	cacheHit       bool
	err            error
}

func (m *summaryServiceMock) Weekly(_ context.Context, query dto.WeeklySummaryQuery, _ string, _ models.UserRole) (*dto.WeeklySummaryResponse, bool, error) {
	m.weeklyQuery = query
	return m.weekly, m.cacheHit, m.err
}

func (m *summaryServiceMock) AvailableTime(_ context.Context, query dto.AvailableTimeQuery, _ string, _ models.UserRole) (*dto.AvailableTimeResponse, bool, error) {
	m.availableQuery = query
	return m.available, m.cacheHit, m.err
}

func TestSummaryHandlerWeeklyMarksCacheHit(t *testing.T) {
	svc := &summaryServiceMock{
		weekly:   &dto.WeeklySummaryResponse{WeekStart: "2024-01-01", WeekEnd: "2024-01-07", TotalMinutes: 180},
		cacheHit: true,
	}
	h := NewSummaryHandler(svc)

	c, w := newGinContext(http.MethodGet, "/summaries/weekly?weekStart=2024-01-03&refresh=true", nil)
	withActor(c, "member-1", models.RoleStudent)
	h.Weekly(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-03", svc.weeklyQuery.WeekStart)
	assert.True(t, svc.weeklyQuery.Refresh)

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	var summary dto.WeeklySummaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 180, summary.TotalMinutes)
}

func TestSummaryHandlerWeeklyRejectsBadRefresh(t *testing.T) {
	h := NewSummaryHandler(&summaryServiceMock{})

	c, w := newGinContext(http.MethodGet, "/summaries/weekly?refresh=maybe", nil)
	withActor(c, "member-1", models.RoleStudent)
	h.Weekly(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryHandlerAvailableTime(t *testing.T) {
	svc := &summaryServiceMock{available: &dto.AvailableTimeResponse{TotalFreeMinutes: 4080}}
	h := NewSummaryHandler(svc)

	c, w := newGinContext(http.MethodGet, "/summaries/available-time?memberId=child-1", nil)
	withActor(c, "parent-1", models.RoleParent)
	h.AvailableTime(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "child-1", svc.availableQuery.MemberID)
	assert.Equal(t, false, decodeEnvelope(t, w).Meta["cache_hit"])
}

func TestSummaryHandlerAvailableTimeForbidden(t *testing.T) {
	svc := &summaryServiceMock{err: appErrors.Clone(appErrors.ErrForbidden, "not allowed to act for another member")}
	h := NewSummaryHandler(svc)

	c, w := newGinContext(http.MethodGet, "/summaries/available-time?memberId=other", nil)
	withActor(c, "member-1", models.RoleStudent)
	h.AvailableTime(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
