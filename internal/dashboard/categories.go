package dashboard

import (
	"sort"
	"strings"
)

// Category buckets exercises into the four classic training groups.
type Category string

const (
	CategoryPush Category = "push"
	CategoryPull Category = "pull"
	CategoryLegs Category = "legs"
	CategoryCore Category = "core"
)

var allCategories = []Category{CategoryPush, CategoryPull, CategoryLegs, CategoryCore}

// exerciseCategories is the fixed exercise name to category table.
// Lookup falls back to substring matching, so "barbell bench press 3x5"
// still lands on "bench press".
var exerciseCategories = map[string]Category{
	"bench press":         CategoryPush,
	"incline bench press": CategoryPush,
	"dumbbell press":      CategoryPush,
	"push-up":             CategoryPush,
	"chest fly":           CategoryPush,
	"cable crossover":     CategoryPush,
	"overhead press":      CategoryPush,
	"lateral raise":       CategoryPush,
	"front raise":         CategoryPush,
	"tricep pushdown":     CategoryPush,
	"tricep extension":    CategoryPush,
	"skull crusher":       CategoryPush,
	"dip":                 CategoryPush,

	"pull-up":      CategoryPull,
	"lat pulldown": CategoryPull,
	"barbell row":  CategoryPull,
	"dumbbell row": CategoryPull,
	"cable row":    CategoryPull,
	"face pull":    CategoryPull,
	"reverse fly":  CategoryPull,
	"shrug":        CategoryPull,
	"bicep curl":   CategoryPull,
	"hammer curl":  CategoryPull,

	"squat":             CategoryLegs,
	"front squat":       CategoryLegs,
	"leg press":         CategoryLegs,
	"lunge":             CategoryLegs,
	"leg extension":     CategoryLegs,
	"leg curl":          CategoryLegs,
	"deadlift":          CategoryLegs,
	"romanian deadlift": CategoryLegs,
	"hip thrust":        CategoryLegs,
	"calf raise":        CategoryLegs,

	"plank":         CategoryCore,
	"crunch":        CategoryCore,
	"leg raise":     CategoryCore,
	"russian twist": CategoryCore,
	"ab wheel":      CategoryCore,
}

// sortedExerciseNames keeps the fallback lookup deterministic.
var sortedExerciseNames = func() []string {
	names := make([]string, 0, len(exerciseCategories))
	for name := range exerciseCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// ExerciseCategory resolves an exercise name to its category.
// Returns false for exercises not in the table.
func ExerciseCategory(name string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if category, ok := exerciseCategories[normalized]; ok {
		return category, true
	}
	for _, key := range sortedExerciseNames {
		if strings.Contains(normalized, key) || strings.Contains(key, normalized) {
			return exerciseCategories[key], true
		}
	}
	return "", false
}
