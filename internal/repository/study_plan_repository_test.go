package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-mission-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studyPlanRowColumns = []string{"id", "member_id", "subject", "plan_type", "title", "material", "total_amount", "completed_amount", "start_date", "end_date", "is_active", "priority", "created_at", "updated_at"}

func TestStudyPlanRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(studyPlanRowColumns).
		AddRow("plan-1", "member-1", "Math", "textbook", "Algebra", "Textbook A", 100, 0, start, start.AddDate(0, 0, 9), true, 1, start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM study_plans WHERE member_id = $1 AND is_active = TRUE ORDER BY created_at ASC, id ASC")).
		WithArgs("member-1").
		WillReturnRows(rows)

	plans, err := repo.List(context.Background(), models.StudyPlanFilter{MemberID: "member-1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, models.StudyPlanTypeTextbook, plans[0].PlanType)
	assert.Equal(t, 100, plans[0].TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyPlanRepositoryListByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE member_id = $1 AND id = ANY($2)")).
		WithArgs("member-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(studyPlanRowColumns))

	plans, err := repo.List(context.Background(), models.StudyPlanFilter{MemberID: "member-1", PlanIDs: []string{"plan-1", "plan-2"}})
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudyPlanRepositoryListError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudyPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM study_plans")).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background(), models.StudyPlanFilter{MemberID: "member-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list study plans")
}
