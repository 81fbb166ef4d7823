package planner

// CalculateDailyTarget estimates how much of plan to assign per study day over
// remainingDays. With a profile the horizon shrinks to the share of weekdays
// that actually host study time for the subject, which pushes the quota up.
// The result is a heuristic; the driver reconciles the remainder on the last day.
func CalculateDailyTarget(plan StudyPlan, profile *SubjectWeeklyTime, remainingDays int) int {
	remaining := plan.RemainingAmount()
	if remainingDays <= 0 || remaining <= 0 {
		return 0
	}

	if profile != nil {
		if active := profile.ActiveWeekdayCount(); active > 0 {
			adjusted := remainingDays * active / daysPerWeek
			if adjusted < 1 {
				adjusted = 1
			}
			return ceilDiv(remaining, adjusted)
		}
	}
	return ceilDiv(remaining, remainingDays)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
