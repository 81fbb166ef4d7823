package dto

import "time"

// DistributionRequest captures the body of the mission distribution endpoints.
type DistributionRequest struct {
	StartDate              string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate                string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	MemberID               string   `json:"memberId,omitempty" validate:"omitempty,max=64"`
	PlanIDs                []string `json:"planIds,omitempty" validate:"omitempty,max=100,dive,required"`
	PrioritizeHighPriority bool     `json:"prioritizeHighPriority"`
	SkipWeekends           bool     `json:"skipWeekends"`
}

// GeneratedMissionResponse is one mission proposed by the distribution engine.
type GeneratedMissionResponse struct {
	MemberID        string  `json:"memberId"`
	Date            string  `json:"date"`
	PlanID          string  `json:"planId"`
	Subject         string  `json:"subject"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	TargetAmount    int     `json:"targetAmount"`
	CompletedAmount int     `json:"completedAmount"`
	AchievementRate float64 `json:"achievementRate"`
	Status          string  `json:"status"`
	StartTime       *string `json:"startTime,omitempty"`
	EndTime         *string `json:"endTime,omitempty"`
}

// DistributionSummaryResponse aggregates a distribution run.
type DistributionSummaryResponse struct {
	TotalMissions     int            `json:"totalMissions"`
	BySubject         map[string]int `json:"bySubject"`
	TotalStudyMinutes int            `json:"totalStudyMinutes"`
}

// DistributionResponse is returned by preview and apply.
type DistributionResponse struct {
	MemberID  string                      `json:"memberId"`
	StartDate string                      `json:"startDate"`
	EndDate   string                      `json:"endDate"`
	Missions  []GeneratedMissionResponse  `json:"missions"`
	Warnings  []string                    `json:"warnings"`
	Summary   DistributionSummaryResponse `json:"summary"`
}

// DistributionApplyResult extends a distribution with persistence counts.
type DistributionApplyResult struct {
	Distribution DistributionResponse `json:"distribution"`
	Inserted     int                  `json:"inserted"`
	Skipped      int                  `json:"skipped"`
}

// DistributionJobResponse describes an asynchronous distribution job.
type DistributionJobResponse struct {
	JobID     string     `json:"jobId"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	Error     string     `json:"error,omitempty"`
	Result    any        `json:"result,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// MissionListQuery captures GET /missions query parameters.
type MissionListQuery struct {
	From     string `form:"from" validate:"required,datetime=2006-01-02"`
	To       string `form:"to" validate:"required,datetime=2006-01-02"`
	MemberID string `form:"memberId" validate:"omitempty,max=64"`
}

// MissionExportQuery captures GET /missions/export query parameters.
type MissionExportQuery struct {
	MissionListQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// MissionResponse is a stored mission.
type MissionResponse struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	PlanID          string  `json:"planId"`
	Subject         string  `json:"subject"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	TargetAmount    int     `json:"targetAmount"`
	CompletedAmount int     `json:"completedAmount"`
	AchievementRate float64 `json:"achievementRate"`
	Status          string  `json:"status"`
	StartTime       *string `json:"startTime,omitempty"`
	EndTime         *string `json:"endTime,omitempty"`
}

// MissionExport is a rendered missions sheet.
type MissionExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}
