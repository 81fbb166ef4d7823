package planner

import "time"

// ActiveHoursPerDay is the waking window assumed when reporting free time (06:00-24:00).
const ActiveHoursPerDay = 18

const activeMinutesPerDay = ActiveHoursPerDay * 60

// SubjectWeeklySummary projects one subject's load for a week.
type SubjectWeeklySummary struct {
	Subject       string
	WeeklyMinutes int
	ActiveDays    int
	PlanCount     int
	PlannedAmount int
}

// WeeklySummary projects the study load of a week starting at WeekStart.
type WeeklySummary struct {
	WeekStart          time.Time
	WeekEnd            time.Time
	Subjects           []SubjectWeeklySummary
	TotalMinutes       int
	TotalPlannedAmount int
}

// GenerateWeeklySummary estimates, per subject with availability, how much the
// active plans would assign over a seven-day horizon.
func GenerateWeeklySummary(weekStart time.Time, plans []StudyPlan, routines []Routine) WeeklySummary {
	start := TruncateDay(weekStart)
	summary := WeeklySummary{
		WeekStart: start,
		WeekEnd:   AddDays(start, daysPerWeek-1),
		Subjects:  make([]SubjectWeeklySummary, 0),
	}

	profiles := ExtractSubjectWeeklyTime(routines)
	for i := range profiles {
		profile := &profiles[i]
		activeDays := profile.ActiveWeekdayCount()
		item := SubjectWeeklySummary{
			Subject:       profile.Subject,
			WeeklyMinutes: profile.TotalMinutes,
			ActiveDays:    activeDays,
		}
		for _, plan := range plans {
			if !plan.IsActive || plan.Subject != profile.Subject {
				continue
			}
			item.PlanCount++
			item.PlannedAmount += CalculateDailyTarget(plan, profile, daysPerWeek) * activeDays
		}
		summary.Subjects = append(summary.Subjects, item)
		summary.TotalMinutes += item.WeeklyMinutes
		summary.TotalPlannedAmount += item.PlannedAmount
	}
	return summary
}

// DayAvailability reports occupied and free minutes for one weekday.
type DayAvailability struct {
	Weekday         time.Weekday
	OccupiedMinutes int
	StudyMinutes    int
	FreeMinutes     int
}

// AvailableStudyTime reports free time per weekday plus weekly totals.
type AvailableStudyTime struct {
	Days                 [7]DayAvailability
	TotalOccupiedMinutes int
	TotalStudyMinutes    int
	TotalFreeMinutes     int
}

// CalculateAvailableStudyTime sums the minutes every routine occupies on each
// weekday, regardless of category, and reports what is left of the active hours.
func CalculateAvailableStudyTime(routines []Routine) AvailableStudyTime {
	var report AvailableStudyTime
	for day := range report.Days {
		report.Days[day].Weekday = time.Weekday(day)
	}

	for _, routine := range routines {
		minutes, err := ClockDuration(routine.StartTime, routine.EndTime)
		if err != nil {
			continue
		}
		for day, active := range routine.Days {
			if !active {
				continue
			}
			report.Days[day].OccupiedMinutes += minutes
			if routine.Category == RoutineCategoryStudy {
				report.Days[day].StudyMinutes += minutes
			}
		}
	}

	for day := range report.Days {
		entry := &report.Days[day]
		entry.FreeMinutes = activeMinutesPerDay - entry.OccupiedMinutes
		if entry.FreeMinutes < 0 {
			entry.FreeMinutes = 0
		}
		report.TotalOccupiedMinutes += entry.OccupiedMinutes
		report.TotalStudyMinutes += entry.StudyMinutes
		report.TotalFreeMinutes += entry.FreeMinutes
	}
	return report
}
