package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/study-mission-api/internal/models"
)

const studyPlanColumns = `id, member_id, subject, plan_type, title, material, total_amount, completed_amount, start_date, end_date, is_active, priority, created_at, updated_at`

// StudyPlanRepository reads study plans. Plans are written by the planning module.
type StudyPlanRepository struct {
	db *sqlx.DB
}

// NewStudyPlanRepository constructs the repository.
func NewStudyPlanRepository(db *sqlx.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

// List returns a member's plans ordered by creation so callers see a stable order.
func (r *StudyPlanRepository) List(ctx context.Context, filter models.StudyPlanFilter) ([]models.StudyPlan, error) {
	conditions := []string{"member_id = $1"}
	args := []interface{}{filter.MemberID}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if len(filter.PlanIDs) > 0 {
		args = append(args, pq.Array(filter.PlanIDs))
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM study_plans WHERE %s ORDER BY created_at ASC, id ASC`, studyPlanColumns, strings.Join(conditions, " AND "))
	var plans []models.StudyPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list study plans: %w", err)
	}
	return plans, nil
}
