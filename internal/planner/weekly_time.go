package planner

import "time"

// ExtractSubjectWeeklyTime aggregates study routines into per-subject weekly
// availability. Subjects appear in the order they were first seen; subjects
// without a qualifying routine are absent.
func ExtractSubjectWeeklyTime(routines []Routine) []SubjectWeeklyTime {
	profiles := make([]SubjectWeeklyTime, 0)
	positions := make(map[string]int)

	for _, routine := range routines {
		if routine.Category != RoutineCategoryStudy || routine.Subject == "" {
			continue
		}
		minutes, err := ClockDuration(routine.StartTime, routine.EndTime)
		if err != nil || minutes <= 0 {
			continue
		}
		for day, active := range routine.Days {
			if !active {
				continue
			}
			pos, ok := positions[routine.Subject]
			if !ok {
				pos = len(profiles)
				positions[routine.Subject] = pos
				profiles = append(profiles, SubjectWeeklyTime{Subject: routine.Subject})
			}
			profile := &profiles[pos]
			profile.TotalMinutes += minutes
			profile.DailyMinutes[day] += minutes
			profile.Slots = append(profile.Slots, TimeSlot{
				Weekday:   time.Weekday(day),
				StartTime: routine.StartTime,
				EndTime:   routine.EndTime,
				Minutes:   minutes,
			})
		}
	}
	return profiles
}

// IndexBySubject keys profiles by subject. The pointers alias the input slice.
func IndexBySubject(profiles []SubjectWeeklyTime) map[string]*SubjectWeeklyTime {
	index := make(map[string]*SubjectWeeklyTime, len(profiles))
	for i := range profiles {
		index[profiles[i].Subject] = &profiles[i]
	}
	return index
}
