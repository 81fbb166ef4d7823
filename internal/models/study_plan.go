package models

import "time"

// StudyPlanType captures how a plan measures progress.
type StudyPlanType string

const (
	StudyPlanTypeTextbook StudyPlanType = "textbook"
	StudyPlanTypeLecture  StudyPlanType = "lecture"
)

// StudyPlan is a long-running study goal owned by a member.
type StudyPlan struct {
	ID              string        `db:"id" json:"id"`
	MemberID        string        `db:"member_id" json:"member_id"`
	Subject         string        `db:"subject" json:"subject"`
	PlanType        StudyPlanType `db:"plan_type" json:"plan_type"`
	Title           string        `db:"title" json:"title"`
	Material        string        `db:"material" json:"material"`
	TotalAmount     int           `db:"total_amount" json:"total_amount"`
	CompletedAmount int           `db:"completed_amount" json:"completed_amount"`
	StartDate       time.Time     `db:"start_date" json:"start_date"`
	EndDate         time.Time     `db:"end_date" json:"end_date"`
	IsActive        bool          `db:"is_active" json:"is_active"`
	Priority        int           `db:"priority" json:"priority"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// StudyPlanFilter narrows plan listings.
type StudyPlanFilter struct {
	MemberID   string
	PlanIDs    []string
	ActiveOnly bool
}
