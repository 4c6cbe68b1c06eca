package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/2beens/gymintel/internal/gymapi"
	"github.com/2beens/gymintel/internal/telemetry/metrics"
	"github.com/2beens/gymintel/internal/telemetry/tracing"
	"github.com/2beens/gymintel/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=dashboard_test

type gymAPI interface {
	FetchWorkoutHistory(ctx context.Context, session gymapi.Session, windowDays int) ([]gymapi.Workout, error)
	FetchPopulationStats(ctx context.Context) (gymapi.PopulationStats, error)
}

const (
	dashboardCacheSize      = 10 * 1024 * 1024
	dashboardCacheExpireSec = 5 * 60
	maxWindowDays           = 365
)

// Response is the single document the dashboard endpoint serves.
type Response struct {
	UserID     string `json:"userId"`
	PeriodDays int    `json:"periodDays"`
	Snapshot
	Insights       []Insight        `json:"insights"`
	RecentWorkouts []WorkoutSummary `json:"recentWorkouts"`
	Percentiles    map[string]int   `json:"percentiles,omitempty"`
}

type Handler struct {
	api               gymAPI
	metrics           *metrics.Manager
	cache             *freecache.Cache
	defaultWindowDays int

	// bumping a user's generation makes all their cached documents
	// unreachable, freecache then just ages them out
	mu          sync.Mutex
	generations map[string]uint64
}

func NewHandler(api gymAPI, metricsManager *metrics.Manager, defaultWindowDays int) *Handler {
	return &Handler{
		api:               api,
		metrics:           metricsManager,
		cache:             freecache.NewCache(dashboardCacheSize),
		defaultWindowDays: defaultWindowDays,
		generations:       make(map[string]uint64),
	}
}

// InvalidateUser drops all cached dashboard documents of one user.
// Wired to the analysis completion signal.
func (handler *Handler) InvalidateUser(userID string) {
	handler.mu.Lock()
	defer handler.mu.Unlock()
	handler.generations[userID]++
	log.Debugf("dashboard cache invalidated for user %s", userID)
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.get")
	defer span.End()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	days, err := handler.windowDays(r)
	if err != nil {
		http.Error(w, "error, invalid days param", http.StatusBadRequest)
		return
	}

	cacheKey := handler.cacheKey(userID, days)
	if cached, err := handler.cache.Get(cacheKey); err == nil {
		log.Tracef("dashboard for user %s served from cache", userID)
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	workouts, err := handler.api.FetchWorkoutHistory(ctx, gymapi.Session{UserID: userID}, days)
	if err != nil {
		log.Errorf("dashboard: fetch workout history for user %s: %s", userID, err)
		http.Error(w, "failed to get workout history", http.StatusBadGateway)
		return
	}

	snapshot := Aggregate(workouts)
	response := Response{
		UserID:         userID,
		PeriodDays:     days,
		Snapshot:       snapshot,
		Insights:       GenerateInsights(snapshot),
		RecentWorkouts: RecentWorkouts(workouts),
	}

	// percentiles are best effort, the dashboard is still useful without
	if stats, err := handler.api.FetchPopulationStats(ctx); err != nil {
		log.Errorf("dashboard: fetch population stats: %s", err)
	} else {
		response.Percentiles = NewComparator(stats).Compare(snapshot)
	}

	responseJson, err := json.Marshal(response)
	if err != nil {
		log.Errorf("dashboard: marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, responseJson, dashboardCacheExpireSec); err != nil {
		log.Errorf("dashboard: cache response for user %s: %s", userID, err)
	}
	handler.metrics.CounterDashboardRefreshes.Inc()

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, responseJson)
}

func (handler *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.compare")
	defer span.End()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	days, err := handler.windowDays(r)
	if err != nil {
		http.Error(w, "error, invalid days param", http.StatusBadRequest)
		return
	}

	workouts, err := handler.api.FetchWorkoutHistory(ctx, gymapi.Session{UserID: userID}, days)
	if err != nil {
		log.Errorf("compare: fetch workout history for user %s: %s", userID, err)
		http.Error(w, "failed to get workout history", http.StatusBadGateway)
		return
	}
	stats, err := handler.api.FetchPopulationStats(ctx)
	if err != nil {
		log.Errorf("compare: fetch population stats: %s", err)
		http.Error(w, "failed to get population stats", http.StatusBadGateway)
		return
	}

	response := struct {
		UserID      string         `json:"userId"`
		PeriodDays  int            `json:"periodDays"`
		Percentiles map[string]int `json:"percentiles"`
	}{
		UserID:      userID,
		PeriodDays:  days,
		Percentiles: NewComparator(stats).Compare(Aggregate(workouts)),
	}

	responseJson, err := json.Marshal(response)
	if err != nil {
		log.Errorf("compare: marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, responseJson)
}

func (handler *Handler) windowDays(r *http.Request) (int, error) {
	daysParam := r.URL.Query().Get("days")
	if daysParam == "" {
		return handler.defaultWindowDays, nil
	}
	days, err := strconv.Atoi(daysParam)
	if err != nil {
		return 0, err
	}
	if days <= 0 || days > maxWindowDays {
		return 0, fmt.Errorf("days out of range: %d", days)
	}
	return days, nil
}

func (handler *Handler) cacheKey(userID string, days int) []byte {
	handler.mu.Lock()
	generation := handler.generations[userID]
	handler.mu.Unlock()
	return []byte(fmt.Sprintf("dashboard::%s::%d::%d", userID, generation, days))
}
