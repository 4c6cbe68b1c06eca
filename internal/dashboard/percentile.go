package dashboard

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/2beens/gymintel/internal/gymapi"
)

// ErrUnknownMetric - no population reference exists for the metric
var ErrUnknownMetric = errors.New("unknown metric")

// Comparator ranks a user's snapshot metrics against population
// reference distributions.
type Comparator struct {
	stats gymapi.PopulationStats
}

func NewComparator(stats gymapi.PopulationStats) *Comparator {
	// reference points per metric sorted by value, interpolation
	// below relies on it
	for metric, distribution := range stats {
		points := make([]gymapi.RefPoint, len(distribution.Points))
		copy(points, distribution.Points)
		sort.Slice(points, func(i, j int) bool {
			return points[i].Value < points[j].Value
		})
		stats[metric] = gymapi.Distribution{Points: points}
	}
	return &Comparator{stats: stats}
}

// Percentile linearly interpolates the value's rank between the two
// surrounding reference points and clamps the result to [0, 100].
func (c *Comparator) Percentile(metric string, value float64) (int, error) {
	distribution, ok := c.stats[metric]
	if !ok || len(distribution.Points) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	// outside the reference range the rank clamps to the extremes,
	// not to the outermost point's percentile
	points := distribution.Points
	if value < points[0].Value {
		return 0, nil
	}
	last := points[len(points)-1]
	if value > last.Value {
		return 100, nil
	}

	for i := 1; i < len(points); i++ {
		if value > points[i].Value {
			continue
		}
		lo, hi := points[i-1], points[i]
		if hi.Value == lo.Value {
			return clampPercentile(hi.Percentile), nil
		}
		fraction := (value - lo.Value) / (hi.Value - lo.Value)
		rank := lo.Percentile + fraction*(hi.Percentile-lo.Percentile)
		return clampPercentile(rank), nil
	}

	return clampPercentile(last.Percentile), nil
}

// Compare ranks the snapshot metrics that have a population reference.
func (c *Comparator) Compare(snapshot Snapshot) map[string]int {
	metricValues := map[string]float64{
		"workoutCount":     float64(snapshot.WorkoutCount),
		"totalDurationMin": snapshot.TotalDurationMin,
	}
	if snapshot.AvgFormScore != nil {
		metricValues["avgFormScore"] = *snapshot.AvgFormScore
	}

	percentiles := make(map[string]int)
	for metric, value := range metricValues {
		rank, err := c.Percentile(metric, value)
		if err != nil {
			continue
		}
		percentiles[metric] = rank
	}
	return percentiles
}

func clampPercentile(rank float64) int {
	return int(math.Min(100, math.Max(0, math.Round(rank))))
}
