package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"net/http"
	"pointsd/internal/models"
	"pointsd/internal/points"
	"pointsd/internal/providers"
	"pointsd/internal/services"
	"pointsd/internal/structures"
	"sync/atomic"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type PointsController struct {
	logger       providers.Logger
	service      services.LedgerServiceInterface
	tracker      *points.Tracker
	cache        providers.CacheProviderInterface
	defaultLimit int

	// generation taints cache keys so admin resets are visible immediately
	// instead of after cache TTL.
	generation atomic.Uint64
}

func NewPointsController(conf *structures.Config, logger providers.Logger, service services.LedgerServiceInterface, tracker *points.Tracker, cache providers.CacheProviderInterface) *PointsController {
	return &PointsController{
		logger:       logger,
		service:      service,
		tracker:      tracker,
		cache:        cache,
		defaultLimit: conf.Points.LeaderboardLimit,
	}
}

func (pc *PointsController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := pc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (pc *PointsController) cacheKey(parts ...string) string {
	key := fmt.Sprintf("g%d", pc.generation.Load())
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Check returns one user's points summary. Users without a ledger entry get
// an all-zero summary, never an error.
func (pc *PointsController) Check(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	pc.serveFromCacheOrCompute(w, pc.cacheKey("check", userID), func() (any, error) {
		return pc.service.Check(userID), nil
	})
}

func (pc *PointsController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = pc.defaultLimit
	}
	pc.serveFromCacheOrCompute(w, pc.cacheKey("top", cast.ToString(limit)), func() (any, error) {
		return pc.service.Leaderboard(limit), nil
	})
}

// Presence ingests one presence transition from the platform dispatcher.
// A body that does not parse is a client error; a parsed update that the
// tracker considers invalid is absorbed silently per the tracker's contract.
func (pc *PointsController) Presence(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.PresenceUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		pc.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "Rejected presence update: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	pc.tracker.HandlePresenceChange(payload.UserID, payload.OldChannelID, payload.NewChannelID, payload.ChannelName)
	w.WriteHeader(http.StatusNoContent)
}

func (pc *PointsController) Reset(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	pc.service.Reset(userID)
	pc.generation.Add(1)
	pc.logger.Infof(providers.GetLogTypeByRequestType(r.Method), "Reset points for user %s", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (pc *PointsController) ResetAll(w http.ResponseWriter, r *http.Request) {
	pc.service.ResetAll()
	pc.generation.Add(1)
	pc.logger.Infof(providers.GetLogTypeByRequestType(r.Method), "Reset all points")
	w.WriteHeader(http.StatusNoContent)
}
