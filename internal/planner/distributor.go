package planner

import (
	"fmt"
	"sort"
	"time"
)

// DistributePlansToMissions spreads every active plan over the distribution
// window, one mission per eligible day.
//
// Plans are handled independently: they never compete for a day or a routine
// slot, so two plans of the same subject may both count the same slot in
// TotalStudyMinutes. Business conditions (no routine, no overlap, nothing left
// to do) degrade to skips or warnings; the call never fails.
func DistributePlansToMissions(plans []StudyPlan, routines []Routine, opts DistributionOptions) DistributionResult {
	profiles := IndexBySubject(ExtractSubjectWeeklyTime(routines))

	result := DistributionResult{
		Missions: make([]GeneratedMission, 0),
		Warnings: make([]string, 0),
		Summary:  DistributionSummary{BySubject: make(map[string]int)},
	}

	windowStart := TruncateDay(opts.StartDate)
	windowEnd := TruncateDay(opts.EndDate)
	if windowStart.After(windowEnd) {
		return result
	}

	active := selectActivePlans(plans, opts.PrioritizeHighPriority)
	validDates := distributionDates(opts)

	for _, plan := range active {
		profile, ok := profiles[plan.Subject]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s 과목의 학습 루틴이 설정되지 않았습니다.", plan.Subject))
		}

		planStart := MaxDate(TruncateDay(plan.StartDate), windowStart)
		planEnd := MinDate(TruncateDay(plan.EndDate), windowEnd)
		if planStart.After(planEnd) {
			continue
		}

		planDates := datesWithin(validDates, planStart, planEnd)
		remaining := plan.RemainingAmount()
		if remaining <= 0 || len(planDates) == 0 {
			continue
		}

		dailyTarget := CalculateDailyTarget(plan, profile, len(planDates))
		distributed := allocatePlan(&result, plan, profile, planDates, dailyTarget, opts.MemberID)

		if distributed < remaining {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %d%s 가 미분배되었습니다.",
				plan.titleLabel(), remaining-distributed, plan.unitLabel()))
		}
	}

	return result
}

// allocatePlan walks planDates, appending missions to result, and returns the
// quantity it managed to place.
func allocatePlan(result *DistributionResult, plan StudyPlan, profile *SubjectWeeklyTime, planDates []time.Time, dailyTarget int, memberID string) int {
	remaining := plan.RemainingAmount()
	distributed := 0
	last := len(planDates) - 1

	for i, date := range planDates {
		var slot *TimeSlot
		if profile != nil {
			found, ok := profile.SlotFor(date.Weekday())
			if !ok {
				continue
			}
			slot = &found
		}

		left := remaining - distributed
		today := dailyTarget
		if left < today {
			today = left
		}
		if i == last {
			today = left
		}
		if today <= 0 {
			continue
		}

		from := plan.CompletedAmount + distributed + 1
		to := plan.CompletedAmount + distributed + today
		mission := GeneratedMission{
			MemberID:     memberID,
			Date:         date,
			PlanID:       plan.ID,
			Subject:      plan.Subject,
			Title:        fmt.Sprintf("%s %s.%d~%d", plan.materialLabel(), plan.unitSymbol(), from, to),
			Description:  plan.titleLabel(),
			TargetAmount: today,
			Status:       MissionStatusPending,
		}
		if slot != nil {
			start, end := slot.StartTime, slot.EndTime
			mission.StartTime = &start
			mission.EndTime = &end
		}

		result.Missions = append(result.Missions, mission)
		distributed += today

		result.Summary.TotalMissions++
		result.Summary.BySubject[plan.Subject]++
		if slot != nil {
			result.Summary.TotalStudyMinutes += slot.Minutes
		}
	}
	return distributed
}

func selectActivePlans(plans []StudyPlan, byPriority bool) []StudyPlan {
	active := make([]StudyPlan, 0, len(plans))
	for _, plan := range plans {
		if plan.IsActive {
			active = append(active, plan)
		}
	}
	if byPriority {
		sort.SliceStable(active, func(i, j int) bool {
			return active[i].Priority < active[j].Priority
		})
	}
	return active
}

func distributionDates(opts DistributionOptions) []time.Time {
	all := DateRange(opts.StartDate, opts.EndDate)
	if !opts.SkipWeekends {
		return all
	}
	dates := make([]time.Time, 0, len(all))
	for _, date := range all {
		if !IsWeekend(date) {
			dates = append(dates, date)
		}
	}
	return dates
}

func datesWithin(dates []time.Time, start, end time.Time) []time.Time {
	within := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		if date.Before(start) || date.After(end) {
			continue
		}
		within = append(within, date)
	}
	return within
}
