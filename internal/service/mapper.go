package service

import (
	"time"

	"github.com/noah-isme/study-mission-api/internal/dto"
	"github.com/noah-isme/study-mission-api/internal/models"
	"github.com/noah-isme/study-mission-api/internal/planner"
)

const dateLayout = "2006-01-02"

func toPlannerPlans(plans []models.StudyPlan) []planner.StudyPlan {
	out := make([]planner.StudyPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, planner.StudyPlan{
			ID:              p.ID,
			Subject:         p.Subject,
			Type:            planner.PlanType(p.PlanType),
			Title:           p.Title,
			Material:        p.Material,
			TotalAmount:     p.TotalAmount,
			CompletedAmount: p.CompletedAmount,
			StartDate:       planner.TruncateDay(p.StartDate.UTC()),
			EndDate:         planner.TruncateDay(p.EndDate.UTC()),
			IsActive:        p.IsActive,
			Priority:        p.Priority,
		})
	}
	return out
}

func toPlannerRoutines(routines []models.Routine) []planner.Routine {
	out := make([]planner.Routine, 0, len(routines))
	for _, r := range routines {
		routine := planner.Routine{
			Category:  planner.RoutineCategory(r.Category),
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		}
		if r.Subject != nil {
			routine.Subject = *r.Subject
		}
		// rows with more than seven flags keep the first week only
		for i := 0; i < len(r.Days) && i < len(routine.Days); i++ {
			routine.Days[i] = r.Days[i]
		}
		out = append(out, routine)
	}
	return out
}

func toMissionRecords(missions []planner.GeneratedMission) []models.StudyMission {
	out := make([]models.StudyMission, 0, len(missions))
	for _, m := range missions {
		out = append(out, models.StudyMission{
			MemberID:        m.MemberID,
			MissionDate:     m.Date,
			PlanID:          m.PlanID,
			Subject:         m.Subject,
			Title:           m.Title,
			Description:     m.Description,
			TargetAmount:    m.TargetAmount,
			CompletedAmount: m.CompletedAmount,
			AchievementRate: m.AchievementRate,
			Status:          models.MissionStatus(m.Status),
			StartTime:       m.StartTime,
			EndTime:         m.EndTime,
		})
	}
	return out
}

func toDistributionResponse(memberID string, start, end time.Time, result planner.DistributionResult) dto.DistributionResponse {
	missions := make([]dto.GeneratedMissionResponse, 0, len(result.Missions))
	for _, m := range result.Missions {
		missions = append(missions, dto.GeneratedMissionResponse{
			MemberID:        m.MemberID,
			Date:            m.Date.Format(dateLayout),
			PlanID:          m.PlanID,
			Subject:         m.Subject,
			Title:           m.Title,
			Description:     m.Description,
			TargetAmount:    m.TargetAmount,
			CompletedAmount: m.CompletedAmount,
			AchievementRate: m.AchievementRate,
			Status:          m.Status,
			StartTime:       m.StartTime,
			EndTime:         m.EndTime,
		})
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	bySubject := result.Summary.BySubject
	if bySubject == nil {
		bySubject = map[string]int{}
	}
	return dto.DistributionResponse{
		MemberID:  memberID,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Missions:  missions,
		Warnings:  warnings,
		Summary: dto.DistributionSummaryResponse{
			TotalMissions:     result.Summary.TotalMissions,
			BySubject:         bySubject,
			TotalStudyMinutes: result.Summary.TotalStudyMinutes,
		},
	}
}

func toMissionResponses(missions []models.StudyMission) []dto.MissionResponse {
	out := make([]dto.MissionResponse, 0, len(missions))
	for _, m := range missions {
		out = append(out, dto.MissionResponse{
			ID:              m.ID,
			Date:            m.MissionDate.Format(dateLayout),
			PlanID:          m.PlanID,
			Subject:         m.Subject,
			Title:           m.Title,
			Description:     m.Description,
			TargetAmount:    m.TargetAmount,
			CompletedAmount: m.CompletedAmount,
			AchievementRate: m.AchievementRate,
			Status:          string(m.Status),
			StartTime:       m.StartTime,
			EndTime:         m.EndTime,
		})
	}
	return out
}

func toWeeklySummaryResponse(memberID string, summary planner.WeeklySummary) dto.WeeklySummaryResponse {
	subjects := make([]dto.SubjectWeeklySummaryResponse, 0, len(summary.Subjects))
	for _, s := range summary.Subjects {
		subjects = append(subjects, dto.SubjectWeeklySummaryResponse{
			Subject:       s.Subject,
			WeeklyMinutes: s.WeeklyMinutes,
			ActiveDays:    s.ActiveDays,
			PlanCount:     s.PlanCount,
			PlannedAmount: s.PlannedAmount,
		})
	}
	return dto.WeeklySummaryResponse{
		MemberID:           memberID,
		WeekStart:          summary.WeekStart.Format(dateLayout),
		WeekEnd:            summary.WeekEnd.Format(dateLayout),
		Subjects:           subjects,
		TotalMinutes:       summary.TotalMinutes,
		TotalPlannedAmount: summary.TotalPlannedAmount,
	}
}

func toAvailableTimeResponse(memberID string, report planner.AvailableStudyTime) dto.AvailableTimeResponse {
	days := make([]dto.DayAvailabilityResponse, 0, len(report.Days))
	for _, d := range report.Days {
		days = append(days, dto.DayAvailabilityResponse{
			Weekday:         int(d.Weekday),
			Name:            d.Weekday.String(),
			OccupiedMinutes: d.OccupiedMinutes,
			StudyMinutes:    d.StudyMinutes,
			FreeMinutes:     d.FreeMinutes,
		})
	}
	return dto.AvailableTimeResponse{
		MemberID:             memberID,
		Days:                 days,
		TotalOccupiedMinutes: report.TotalOccupiedMinutes,
		TotalStudyMinutes:    report.TotalStudyMinutes,
		TotalFreeMinutes:     report.TotalFreeMinutes,
	}
}
