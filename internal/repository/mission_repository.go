package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/study-mission-api/internal/models"
)

// MissionRepository persists generated study missions.
type MissionRepository struct {
	db *sqlx.DB
}

// NewMissionRepository constructs the repository.
func NewMissionRepository(db *sqlx.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

func (r *MissionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertSkipDuplicates stores missions, leaving any existing mission for the same
// member, plan and day untouched. It returns how many rows were inserted.
func (r *MissionRepository) InsertSkipDuplicates(ctx context.Context, exec sqlx.ExtContext, missions []models.StudyMission) (int, error) {
	if len(missions) == 0 {
		return 0, nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO study_missions (id, member_id, mission_date, plan_id, subject, title, description, target_amount, completed_amount, achievement_rate, status, start_time, end_time, created_at, updated_at)
VALUES (:id, :member_id, :mission_date, :plan_id, :subject, :title, :description, :target_amount, :completed_amount, :achievement_rate, :status, :start_time, :end_time, :created_at, :updated_at)
ON CONFLICT (member_id, plan_id, mission_date) DO NOTHING`

	inserted := 0
	for i := range missions {
		mission := &missions[i]
		if mission.ID == "" {
			mission.ID = uuid.NewString()
		}
		if mission.CreatedAt.IsZero() {
			mission.CreatedAt = now
		}
		mission.UpdatedAt = now

		res, err := sqlx.NamedExecContext(ctx, target, query, mission)
		if err != nil {
			return inserted, fmt.Errorf("insert study mission: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("insert study mission rows affected: %w", err)
		}
		inserted += int(affected)
	}
	return inserted, nil
}

// List returns a member's missions between From and To inclusive, ordered by day.
func (r *MissionRepository) List(ctx context.Context, filter models.MissionFilter) ([]models.StudyMission, error) {
	const query = `SELECT id, member_id, mission_date, plan_id, subject, title, description, target_amount, completed_amount, achievement_rate, status, start_time, end_time, created_at, updated_at
FROM study_missions WHERE member_id = $1 AND mission_date BETWEEN $2 AND $3 ORDER BY mission_date ASC, start_time ASC NULLS LAST, title ASC`
	var missions []models.StudyMission
	if err := r.db.SelectContext(ctx, &missions, query, filter.MemberID, filter.From, filter.To); err != nil {
		return nil, fmt.Errorf("list study missions: %w", err)
	}
	return missions, nil
}
