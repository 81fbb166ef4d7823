package models

import "time"

// MissionStatus tracks completion of a daily mission.
type MissionStatus string

const (
	MissionStatusPending    MissionStatus = "pending"
	MissionStatusInProgress MissionStatus = "in_progress"
	MissionStatusCompleted  MissionStatus = "completed"
)

// StudyMission is a stored daily assignment derived from a plan.
type StudyMission struct {
	ID              string        `db:"id" json:"id"`
	MemberID        string        `db:"member_id" json:"member_id"`
	MissionDate     time.Time     `db:"mission_date" json:"mission_date"`
	PlanID          string        `db:"plan_id" json:"plan_id"`
	Subject         string        `db:"subject" json:"subject"`
	Title           string        `db:"title" json:"title"`
	Description     string        `db:"description" json:"description"`
	TargetAmount    int           `db:"target_amount" json:"target_amount"`
	CompletedAmount int           `db:"completed_amount" json:"completed_amount"`
	AchievementRate float64       `db:"achievement_rate" json:"achievement_rate"`
	Status          MissionStatus `db:"status" json:"status"`
	StartTime       *string       `db:"start_time" json:"start_time,omitempty"`
	EndTime         *string       `db:"end_time" json:"end_time,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// MissionFilter narrows mission listings to a member and date range.
type MissionFilter struct {
	MemberID string
	From     time.Time
	To       time.Time
}
