package dashboard

import (
	"fmt"
	"sort"
	"strings"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Insight is a short advisory derived deterministically from a Snapshot.
type Insight struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type insightRule struct {
	name     string
	evaluate func(snapshot Snapshot) *Insight
}

// rules run in order, each contributing at most one insight.
// Adding a rule means appending an entry here.
var insightRules = []insightRule{
	{name: "push-pull-imbalance", evaluate: pushPullImbalance},
	{name: "pull-dominance", evaluate: pullDominance},
	{name: "undertrained-muscles", evaluate: undertrainedMuscles},
}

const undertrainedThreshold = 0.3

// GenerateInsights evaluates all rules over the snapshot. A user with
// no workouts in the window only gets the onboarding nudge.
func GenerateInsights(snapshot Snapshot) []Insight {
	if snapshot.WorkoutCount == 0 {
		return []Insight{{
			Severity: SeverityInfo,
			Message:  "No workouts recorded yet. Upload your first training video to get started!",
		}}
	}

	var insights []Insight
	for _, rule := range insightRules {
		if insight := rule.evaluate(snapshot); insight != nil {
			insights = append(insights, *insight)
		}
	}
	return insights
}

func pushPullImbalance(snapshot Snapshot) *Insight {
	push := snapshot.CategoryBalance[CategoryPush]
	pull := snapshot.CategoryBalance[CategoryPull]
	if push <= pull*1.5 || push == 0 {
		return nil
	}
	return &Insight{
		Severity: SeverityWarning,
		Message:  "Push/pull imbalance detected. Add more pulling work: rows, pull-ups and face pulls.",
	}
}

func pullDominance(snapshot Snapshot) *Insight {
	push := snapshot.CategoryBalance[CategoryPush]
	pull := snapshot.CategoryBalance[CategoryPull]
	if pull <= push*1.5 || pull == 0 {
		return nil
	}
	return &Insight{
		Severity: SeverityInfo,
		Message:  "Strong back work lately. Don't neglect pressing movements if that's unintentional.",
	}
}

func undertrainedMuscles(snapshot Snapshot) *Insight {
	if len(snapshot.MuscleBalance) == 0 {
		return nil
	}
	var undertrained []string
	for muscle, activation := range snapshot.MuscleBalance {
		if activation < undertrainedThreshold {
			undertrained = append(undertrained, muscle)
		}
	}
	if len(undertrained) == 0 {
		return nil
	}
	sort.Strings(undertrained)
	return &Insight{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("These muscles look undertrained: %s.", strings.Join(undertrained, ", ")),
	}
}
