package dashboard

import (
	"sort"
	"time"

	"github.com/2beens/gymintel/internal/gymapi"
)

// Snapshot is the aggregated view of one user's workout window.
// Recomputed wholesale on every refresh, never patched in place.
type Snapshot struct {
	WorkoutCount      int                  `json:"workoutCount"`
	TotalDurationMin  float64              `json:"totalDurationMin"`
	AvgFormScore      *float64             `json:"avgFormScore"`
	MuscleBalance     map[string]float64   `json:"muscleBalance"`
	CategoryBalance   map[Category]float64 `json:"categoryBalance"`
	ExerciseFrequency map[string]int       `json:"exerciseFrequency"`
}

// WorkoutSummary is the condensed per-workout line shown on the dashboard.
type WorkoutSummary struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Exercises   []string  `json:"exercises"`
	DurationMin float64   `json:"durationMin"`
	FormScore   *float64  `json:"formScore"`
}

const recentWorkoutsLimit = 5

// RecentWorkouts summarizes the newest workouts of the window,
// most recent first, capped at five.
func RecentWorkouts(workouts []gymapi.Workout) []WorkoutSummary {
	ordered := make([]gymapi.Workout, len(workouts))
	copy(ordered, workouts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	if len(ordered) > recentWorkoutsLimit {
		ordered = ordered[:recentWorkoutsLimit]
	}

	summaries := make([]WorkoutSummary, 0, len(ordered))
	for _, workout := range ordered {
		names := make([]string, 0, len(workout.Exercises))
		for _, exercise := range workout.Exercises {
			names = append(names, exercise.Name)
		}
		summaries = append(summaries, WorkoutSummary{
			ID:          workout.ID,
			Date:        workout.CreatedAt,
			Exercises:   names,
			DurationMin: workout.DurationSec / 60,
			FormScore:   workout.FormScore,
		})
	}
	return summaries
}

// Aggregate folds a window of workouts into a Snapshot. Pure function
// of its input; the same workouts always produce the same snapshot.
func Aggregate(workouts []gymapi.Workout) Snapshot {
	snapshot := Snapshot{
		WorkoutCount:      len(workouts),
		MuscleBalance:     map[string]float64{},
		CategoryBalance:   map[Category]float64{},
		ExerciseFrequency: map[string]int{},
	}

	var formScoreSum float64
	var formScoreCount int
	muscleSums := map[string]float64{}
	categoryCounts := map[Category]float64{}
	var mappedExercises float64

	for _, workout := range workouts {
		snapshot.TotalDurationMin += workout.DurationSec / 60

		if workout.FormScore != nil {
			formScoreSum += *workout.FormScore
			formScoreCount++
		}

		// per-workout activation sum, clipped to [0,1] per muscle so
		// overlapping sets in one session do not double count
		workoutActivation := map[string]float64{}
		for _, exercise := range workout.Exercises {
			snapshot.ExerciseFrequency[exercise.Name]++
			for muscle, activation := range exercise.MuscleActivation {
				workoutActivation[muscle] += activation
			}
			if category, ok := ExerciseCategory(exercise.Name); ok {
				categoryCounts[category]++
				mappedExercises++
			}
		}
		for muscle, activation := range workoutActivation {
			if activation > 1 {
				activation = 1
			}
			muscleSums[muscle] += activation
		}
	}

	if formScoreCount > 0 {
		avg := formScoreSum / float64(formScoreCount)
		snapshot.AvgFormScore = &avg
	}

	// zero-exercise workouts contribute 0 but stay in the denominator
	if len(workouts) > 0 {
		for muscle, sum := range muscleSums {
			snapshot.MuscleBalance[muscle] = sum / float64(len(workouts))
		}
	}

	if mappedExercises > 0 {
		for _, category := range allCategories {
			snapshot.CategoryBalance[category] = categoryCounts[category] / mappedExercises
		}
	}

	return snapshot
}
