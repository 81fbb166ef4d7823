package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-mission-api/internal/models"
)

// RoutineRepository reads weekly routines.
type RoutineRepository struct {
	db *sqlx.DB
}

// NewRoutineRepository constructs the repository.
func NewRoutineRepository(db *sqlx.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

// ListByMember returns every routine of a member in the order it was entered.
// That order picks the slot a mission takes when a weekday has several routines.
func (r *RoutineRepository) ListByMember(ctx context.Context, memberID string) ([]models.Routine, error) {
	const query = `SELECT id, member_id, title, subject, category, start_time, end_time, days, created_at, updated_at
FROM routines WHERE member_id = $1 ORDER BY created_at ASC, id ASC`
	var routines []models.Routine
	if err := r.db.SelectContext(ctx, &routines, query, memberID); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}
