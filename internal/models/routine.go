package models

import (
	"time"

	"github.com/lib/pq"
)

// RoutineCategory classifies a weekly block.
type RoutineCategory string

const (
	RoutineCategoryStudy RoutineCategory = "study"
	RoutineCategoryRest  RoutineCategory = "rest"
	RoutineCategoryOther RoutineCategory = "other"
)

// Routine is a weekly recurring time block. Days holds seven flags, Sunday first.
type Routine struct {
	ID        string          `db:"id" json:"id"`
	MemberID  string          `db:"member_id" json:"member_id"`
	Title     string          `db:"title" json:"title"`
	Subject   *string         `db:"subject" json:"subject,omitempty"`
	Category  RoutineCategory `db:"category" json:"category"`
	StartTime string          `db:"start_time" json:"start_time"`
	EndTime   string          `db:"end_time" json:"end_time"`
	Days      pq.BoolArray    `db:"days" json:"days"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
