package dto

// WeeklySummaryQuery captures GET /summaries/weekly query parameters.
type WeeklySummaryQuery struct {
	WeekStart string `form:"weekStart" validate:"omitempty,datetime=2006-01-02"`
	MemberID  string `form:"memberId" validate:"omitempty,max=64"`
	Refresh   bool   `form:"refresh"`
}

// AvailableTimeQuery captures GET /summaries/available-time query parameters.
type AvailableTimeQuery struct {
	MemberID string `form:"memberId" validate:"omitempty,max=64"`
	Refresh  bool   `form:"refresh"`
}

// SubjectWeeklySummaryResponse is one subject row of the weekly projection.
type SubjectWeeklySummaryResponse struct {
	Subject       string `json:"subject"`
	WeeklyMinutes int    `json:"weeklyMinutes"`
	ActiveDays    int    `json:"activeDays"`
	PlanCount     int    `json:"planCount"`
	PlannedAmount int    `json:"plannedAmount"`
}

// WeeklySummaryResponse projects one week of study.
type WeeklySummaryResponse struct {
	MemberID           string                         `json:"memberId"`
	WeekStart          string                         `json:"weekStart"`
	WeekEnd            string                         `json:"weekEnd"`
	Subjects           []SubjectWeeklySummaryResponse `json:"subjects"`
	TotalMinutes       int                            `json:"totalMinutes"`
	TotalPlannedAmount int                            `json:"totalPlannedAmount"`
}

// DayAvailabilityResponse reports one weekday of the free-time report.
type DayAvailabilityResponse struct {
	Weekday         int    `json:"weekday"`
	Name            string `json:"name"`
	OccupiedMinutes int    `json:"occupiedMinutes"`
	StudyMinutes    int    `json:"studyMinutes"`
	FreeMinutes     int    `json:"freeMinutes"`
}

// AvailableTimeResponse reports routine load and free time per weekday.
type AvailableTimeResponse struct {
	MemberID             string                    `json:"memberId"`
	Days                 []DayAvailabilityResponse `json:"days"`
	TotalOccupiedMinutes int                       `json:"totalOccupiedMinutes"`
	TotalStudyMinutes    int                       `json:"totalStudyMinutes"`
	TotalFreeMinutes     int                       `json:"totalFreeMinutes"`
}
