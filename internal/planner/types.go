// Package planner turns study plans and weekly routines into dated daily missions.
//
// Every function in this package is a pure function of its arguments: no I/O,
// no clock reads, no state kept between calls.
package planner

import "time"

// PlanType distinguishes how a plan measures progress.
type PlanType string

const (
	PlanTypeTextbook PlanType = "textbook"
	PlanTypeLecture  PlanType = "lecture"
)

// RoutineCategory classifies a weekly time block.
type RoutineCategory string

const (
	RoutineCategoryStudy RoutineCategory = "study"
	RoutineCategoryRest  RoutineCategory = "rest"
	RoutineCategoryOther RoutineCategory = "other"
)

// MissionStatusPending is the status of every freshly generated mission.
const MissionStatusPending = "pending"

// StudyPlan is a long-running study goal.
type StudyPlan struct {
	ID              string
	Subject         string
	Type            PlanType
	Title           string
	Material        string
	TotalAmount     int
	CompletedAmount int
	StartDate       time.Time
	EndDate         time.Time
	IsActive        bool
	Priority        int
}

// RemainingAmount is the quantity still left to schedule. It may be zero or negative.
func (p StudyPlan) RemainingAmount() int {
	return p.TotalAmount - p.CompletedAmount
}

func (p StudyPlan) materialLabel() string {
	if p.Material != "" {
		return p.Material
	}
	return p.Title
}

func (p StudyPlan) titleLabel() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Material
}

// unitSymbol is the short unit used inside mission titles.
func (p StudyPlan) unitSymbol() string {
	if p.Type == PlanTypeTextbook {
		return "p"
	}
	return "강"
}

// unitLabel is the long unit used inside shortfall warnings.
func (p StudyPlan) unitLabel() string {
	if p.Type == PlanTypeTextbook {
		return "페이지"
	}
	return "강"
}

// Routine is a weekly recurring block of time. Days is indexed by time.Weekday.
type Routine struct {
	Subject   string
	Category  RoutineCategory
	StartTime string
	EndTime   string
	Days      [7]bool
}

// TimeSlot is one routine occurrence on a given weekday.
type TimeSlot struct {
	Weekday   time.Weekday
	StartTime string
	EndTime   string
	Minutes   int
}

// SubjectWeeklyTime is the availability profile of a subject across a week.
type SubjectWeeklyTime struct {
	Subject      string
	TotalMinutes int
	DailyMinutes [7]int
	Slots        []TimeSlot
}

// ActiveWeekdayCount counts weekdays with study minutes.
func (s *SubjectWeeklyTime) ActiveWeekdayCount() int {
	if s == nil {
		return 0
	}
	count := 0
	for _, minutes := range s.DailyMinutes {
		if minutes != 0 {
			count++
		}
	}
	return count
}

// SlotFor returns the first slot with study minutes scheduled on weekday.
func (s *SubjectWeeklyTime) SlotFor(weekday time.Weekday) (TimeSlot, bool) {
	if s == nil || s.DailyMinutes[weekday] <= 0 {
		return TimeSlot{}, false
	}
	for _, slot := range s.Slots {
		if slot.Weekday == weekday && slot.Minutes > 0 {
			return slot, true
		}
	}
	return TimeSlot{}, false
}

// DistributionOptions bounds a single distribution run.
type DistributionOptions struct {
	StartDate              time.Time
	EndDate                time.Time
	MemberID               string
	PrioritizeHighPriority bool
	SkipWeekends           bool
}

// GeneratedMission is one day's assignment derived from a plan. Identity and
// timestamps are assigned when the mission is stored.
type GeneratedMission struct {
	MemberID        string
	Date            time.Time
	PlanID          string
	Subject         string
	Title           string
	Description     string
	TargetAmount    int
	CompletedAmount int
	AchievementRate float64
	Status          string
	StartTime       *string
	EndTime         *string
}

// DistributionSummary aggregates counters over a distribution run.
type DistributionSummary struct {
	TotalMissions     int
	BySubject         map[string]int
	TotalStudyMinutes int
}

// DistributionResult is the engine output.
type DistributionResult struct {
	Missions []GeneratedMission
	Warnings []string
	Summary  DistributionSummary
}
