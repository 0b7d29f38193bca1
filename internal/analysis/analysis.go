// Package analysis computes derived statistics from in-memory workout
// history. Everything here is pure: no storage, no clocks (callers pass
// "now"), recomputed on every read.
package analysis

import (
	"math"
	"time"

	"github.com/meltforce/gymtrack/internal/models"
)

// DateLayout is the calendar-day format used by workout dates.
const DateLayout = "2006-01-02"

// baseBurnPerMinute is the average kcal/min assumed for weight training.
const baseBurnPerMinute = 5.0

// WeeklySummary aggregates the completed workouts of one calendar week.
type WeeklySummary struct {
	WeekStart            time.Time                  `json:"weekStart"`
	WeekEnd              time.Time                  `json:"weekEnd"`
	TotalWorkouts        int                        `json:"totalWorkouts"`
	TotalDurationSeconds int                        `json:"totalDuration"`
	TotalVolumeKg        float64                    `json:"totalVolume"`
	TotalSets            int                        `json:"totalSets"`
	TotalReps            int                        `json:"totalReps"`
	CaloriesBurned       int                        `json:"caloriesBurned"`
	MuscleGroupBreakdown map[models.MuscleGroup]int `json:"muscleGroupBreakdown"`
}

// MonthlySummary aggregates the completed workouts of one calendar month.
type MonthlySummary struct {
	Month                  string  `json:"month"`
	TotalWorkouts          int     `json:"totalWorkouts"`
	TotalDurationSeconds   int     `json:"totalDuration"`
	TotalVolumeKg          float64 `json:"totalVolume"`
	AverageWorkoutDuration int     `json:"averageWorkoutDuration"`
	ConsistencyPercentage  int     `json:"consistencyPercentage"`
}

// TotalStats aggregates all completed workouts ever logged.
type TotalStats struct {
	TotalWorkouts        int     `json:"totalWorkouts"`
	TotalDurationSeconds int     `json:"totalDuration"`
	TotalVolumeKg        float64 `json:"totalVolume"`
	TotalCalories        int     `json:"totalCalories"`
}

// OneRepMax estimates a one-rep max using the Epley formula. A single rep is
// the lift itself, so the weight is returned unchanged.
func OneRepMax(weightKg float64, reps int) float64 {
	if reps == 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// WorkoutVolume sums weight x reps over the completed sets of a workout.
func WorkoutVolume(w models.Workout) float64 {
	var total float64
	for _, ex := range w.Exercises {
		for _, set := range ex.Sets {
			if set.IsCompleted && set.WeightKg != nil && set.Reps != nil {
				total += *set.WeightKg * float64(*set.Reps)
			}
		}
	}
	return total
}

// EstimateWorkoutCalories estimates calories for a finished workout from its
// duration and set density: base burn scaled by up to 1.5x as the average
// sets-per-exercise climbs.
func EstimateWorkoutCalories(w models.Workout, durationSeconds int) int {
	durationMinutes := float64(durationSeconds) / 60
	exerciseCount := len(w.Exercises)
	if exerciseCount == 0 {
		return int(math.Round(durationMinutes * baseBurnPerMinute))
	}
	totalSets := 0
	for _, ex := range w.Exercises {
		totalSets += len(ex.Sets)
	}
	intensity := math.Min(1.5, 1+float64(totalSets)/float64(exerciseCount)*0.05)
	return int(math.Round(durationMinutes * baseBurnPerMinute * intensity))
}

// EstimateCaloriesBurned estimates calories from MET values for resistance
// training: calories = MET x weight(kg) x duration(hours).
func EstimateCaloriesBurned(durationMinutes float64, bodyWeightKg float64, intensity string) int {
	met := 5.0
	switch intensity {
	case "light":
		met = 3.5
	case "vigorous":
		met = 6.0
	}
	return int(math.Round(met * bodyWeightKg * durationMinutes / 60))
}

// MuscleGroupsWorked returns the distinct muscle groups hit by a workout, in
// first-seen order.
func MuscleGroupsWorked(w models.Workout) []models.MuscleGroup {
	seen := make(map[models.MuscleGroup]bool)
	var groups []models.MuscleGroup
	for _, ex := range w.Exercises {
		if !seen[ex.MuscleGroup] {
			seen[ex.MuscleGroup] = true
			groups = append(groups, ex.MuscleGroup)
		}
	}
	return groups
}

// Streak counts consecutive calendar days ending at "now" that each have at
// least one completed workout. An empty today does not break the streak;
// any gap before an earlier counted day does.
func Streak(workouts []models.Workout, now time.Time) int {
	completedDates := make(map[string]bool)
	for _, w := range workouts {
		if w.IsCompleted {
			completedDates[w.Date] = true
		}
	}

	streak := 0
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 0; i < 365; i++ {
		day := today.AddDate(0, 0, -i).Format(DateLayout)
		if completedDates[day] {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak
}

// Weekly summarizes the calendar week (Sunday through Saturday) containing
// now. Only completed workouts count; only completed sets contribute to set,
// rep and volume totals.
func Weekly(workouts []models.Workout, now time.Time) WeeklySummary {
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -int(now.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	s := WeeklySummary{
		WeekStart:            weekStart,
		WeekEnd:              weekEnd,
		MuscleGroupBreakdown: make(map[models.MuscleGroup]int),
	}

	for _, w := range workouts {
		if !w.IsCompleted || !inRange(w.Date, weekStart, weekEnd) {
			continue
		}
		s.TotalWorkouts++
		if w.DurationSeconds != nil {
			s.TotalDurationSeconds += *w.DurationSeconds
		}
		if w.CaloriesEstimate != nil {
			s.CaloriesBurned += *w.CaloriesEstimate
		}
		for _, ex := range w.Exercises {
			s.MuscleGroupBreakdown[ex.MuscleGroup]++
			for _, set := range ex.Sets {
				if !set.IsCompleted {
					continue
				}
				s.TotalSets++
				if set.Reps != nil {
					s.TotalReps += *set.Reps
					if set.WeightKg != nil {
						s.TotalVolumeKg += *set.WeightKg * float64(*set.Reps)
					}
				}
			}
		}
	}
	return s
}

// Monthly summarizes the calendar month containing now. Consistency is the
// share of days in the month with at least one completed workout.
func Monthly(workouts []models.Workout, now time.Time) MonthlySummary {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	daysInMonth := monthEnd.Day()

	s := MonthlySummary{Month: now.Format("2006-01")}
	workoutDays := make(map[string]bool)

	for _, w := range workouts {
		if !w.IsCompleted || !inRange(w.Date, monthStart, monthEnd) {
			continue
		}
		s.TotalWorkouts++
		workoutDays[w.Date] = true
		if w.DurationSeconds != nil {
			s.TotalDurationSeconds += *w.DurationSeconds
		}
		s.TotalVolumeKg += WorkoutVolume(w)
	}

	if s.TotalWorkouts > 0 {
		s.AverageWorkoutDuration = int(math.Round(float64(s.TotalDurationSeconds) / float64(s.TotalWorkouts)))
	}
	s.ConsistencyPercentage = int(math.Round(float64(len(workoutDays)) / float64(daysInMonth) * 100))
	return s
}

// Totals aggregates every completed workout.
func Totals(workouts []models.Workout) TotalStats {
	var s TotalStats
	for _, w := range workouts {
		if !w.IsCompleted {
			continue
		}
		s.TotalWorkouts++
		if w.DurationSeconds != nil {
			s.TotalDurationSeconds += *w.DurationSeconds
		}
		if w.CaloriesEstimate != nil {
			s.TotalCalories += *w.CaloriesEstimate
		}
		s.TotalVolumeKg += WorkoutVolume(w)
	}
	return s
}

func inRange(date string, start, end time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, start.Location())
	if err != nil {
		return false
	}
	return !d.Before(start) && !d.After(end)
}
