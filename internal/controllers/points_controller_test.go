package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"pointsd/internal/models"
	"pointsd/internal/points"
	"pointsd/internal/providers"
	"pointsd/internal/structures"
	"pointsd/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockService struct {
	summaries  map[string]models.PointsSummary
	board      []models.LeaderboardEntry
	boardLimit int
	userCount  int
	resets     []string
	resetAlls  int
}

func (m *mockService) Award(_ string, _ int) (int, error) { return 0, nil }
func (m *mockService) TotalFor(_ string) int              { return 0 }
func (m *mockService) DailyFor(_ string) int              { return 0 }
func (m *mockService) CanEarnToday(_ string) bool         { return true }

func (m *mockService) Check(userID string) models.PointsSummary {
	if s, ok := m.summaries[userID]; ok {
		return s
	}
	return models.PointsSummary{UserID: userID, RemainingDaily: 100, CanEarnMore: true}
}

func (m *mockService) Leaderboard(limit int) []models.LeaderboardEntry {
	m.boardLimit = limit
	if limit < len(m.board) {
		return m.board[:limit]
	}
	if m.board == nil {
		return []models.LeaderboardEntry{}
	}
	return m.board
}

func (m *mockService) Reset(userID string)            { m.resets = append(m.resets, userID) }
func (m *mockService) ResetAll()                      { m.resetAlls++ }
func (m *mockService) PruneHistory(_ time.Time) int   { return 0 }
func (m *mockService) Restore() error                 { return nil }
func (m *mockService) UserCount() int                 { return m.userCount }

// --- helpers ---

func testConfig() *structures.Config {
	return &structures.Config{
		Points: structures.PointsConfig{
			DailyCap:         100,
			TickInterval:     time.Minute,
			LeaderboardLimit: 10,
		},
	}
}

func newTestController(svc *mockService, cache providers.CacheProviderInterface) (*PointsController, *points.Tracker) {
	tracker := points.NewTracker(&mockLogger{}, testutil.NewMockMetrics())
	return NewPointsController(testConfig(), &mockLogger{}, svc, tracker, cache), tracker
}

// --- Check tests ---

func TestCheck_KnownUser(t *testing.T) {
	svc := &mockService{summaries: map[string]models.PointsSummary{
		"alice": {UserID: "alice", Total: 150, Daily: 50, RemainingDaily: 50, CanEarnMore: true},
	}}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/points?user=alice", nil)
	rr := httptest.NewRecorder()
	pc.Check(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp models.PointsSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 150, resp.Total)
	assert.Equal(t, 50, resp.Daily)
	assert.Equal(t, 50, resp.RemainingDaily)
	assert.True(t, resp.CanEarnMore)
}

func TestCheck_UnknownUserIsZeroValued(t *testing.T) {
	pc, _ := newTestController(&mockService{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/points?user=ghost", nil)
	rr := httptest.NewRecorder()
	pc.Check(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.PointsSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, 100, resp.RemainingDaily)
}

func TestCheck_MissingUserParam(t *testing.T) {
	pc, _ := newTestController(&mockService{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/points", nil)
	rr := httptest.NewRecorder()
	pc.Check(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheck_ServedFromCache(t *testing.T) {
	cache := testutil.NewMockCache()
	svc := &mockService{}
	pc, _ := newTestController(svc, cache)

	req := httptest.NewRequest(http.MethodGet, "/points?user=alice", nil)
	rr := httptest.NewRecorder()
	pc.Check(rr, req)

	// Second request must come from cache even if the service changes.
	svc.summaries = map[string]models.PointsSummary{
		"alice": {UserID: "alice", Total: 999},
	}
	rr = httptest.NewRecorder()
	pc.Check(rr, httptest.NewRequest(http.MethodGet, "/points?user=alice", nil))

	var resp models.PointsSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
}

// --- Leaderboard tests ---

func TestLeaderboard_ReturnsRankedEntries(t *testing.T) {
	svc := &mockService{board: []models.LeaderboardEntry{
		{UserID: "A", Total: 500},
		{UserID: "B", Total: 300},
		{UserID: "C", Total: 100},
	}}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=3", nil)
	rr := httptest.NewRecorder()
	pc.Leaderboard(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var board []models.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board, 3)
	assert.Equal(t, "A", board[0].UserID)
	assert.Equal(t, 3, svc.boardLimit)
}

func TestLeaderboard_DefaultLimit(t *testing.T) {
	svc := &mockService{}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rr := httptest.NewRecorder()
	pc.Leaderboard(rr, req)

	assert.Equal(t, 10, svc.boardLimit)
}

func TestLeaderboard_GarbageLimitFallsBackToDefault(t *testing.T) {
	svc := &mockService{}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?limit=banana", nil)
	rr := httptest.NewRecorder()
	pc.Leaderboard(rr, req)

	assert.Equal(t, 10, svc.boardLimit)
}

func TestLeaderboard_EmptyBoard(t *testing.T) {
	pc, _ := newTestController(&mockService{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rr := httptest.NewRecorder()
	pc.Leaderboard(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

// --- Presence tests ---

func TestPresence_EnterTracksUser(t *testing.T) {
	pc, tracker := newTestController(&mockService{}, testutil.NewMockCache())

	payload := `{"user_id":"alice","old_channel_id":"","new_channel_id":"ch1","channel_name":"General"}`
	req := httptest.NewRequest(http.MethodPost, "/presence", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	pc.Presence(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, tracker.Len())
}

func TestPresence_InvalidJSON(t *testing.T) {
	pc, tracker := newTestController(&mockService{}, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodPost, "/presence", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	pc.Presence(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, tracker.Len())
}

func TestPresence_BlankUserIsAbsorbed(t *testing.T) {
	pc, tracker := newTestController(&mockService{}, testutil.NewMockCache())

	payload := `{"user_id":"","old_channel_id":"","new_channel_id":"ch1","channel_name":"General"}`
	req := httptest.NewRequest(http.MethodPost, "/presence", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	pc.Presence(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, tracker.Len())
}

// --- Reset tests ---

func TestReset_DelegatesToService(t *testing.T) {
	svc := &mockService{}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodPost, "/reset?user=alice", nil)
	rr := httptest.NewRecorder()
	pc.Reset(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"alice"}, svc.resets)
}

func TestReset_MissingUserParam(t *testing.T) {
	svc := &mockService{}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	rr := httptest.NewRecorder()
	pc.Reset(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.resets)
}

func TestResetAll_DelegatesToService(t *testing.T) {
	svc := &mockService{}
	pc, _ := newTestController(svc, testutil.NewMockCache())

	req := httptest.NewRequest(http.MethodPost, "/reset-all", nil)
	rr := httptest.NewRecorder()
	pc.ResetAll(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 1, svc.resetAlls)
}

func TestReset_LogsToPostFile(t *testing.T) {
	svc := &mockService{}
	logger := &testutil.MockLogger{}
	tracker := points.NewTracker(logger, testutil.NewMockMetrics())
	pc := NewPointsController(testConfig(), logger, svc, tracker, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	pc.Reset(rr, httptest.NewRequest(http.MethodPost, "/reset?user=alice", nil))
	rr = httptest.NewRecorder()
	pc.ResetAll(rr, httptest.NewRequest(http.MethodPost, "/reset-all", nil))

	require.Len(t, logger.Logs, 2)
	for _, entry := range logger.Logs {
		assert.Equal(t, providers.TypePost, entry.Type)
	}
}

func TestPresence_InvalidBodyLogsToPostFile(t *testing.T) {
	svc := &mockService{}
	logger := &testutil.MockLogger{}
	tracker := points.NewTracker(logger, testutil.NewMockMetrics())
	pc := NewPointsController(testConfig(), logger, svc, tracker, testutil.NewMockCache())

	rr := httptest.NewRecorder()
	pc.Presence(rr, httptest.NewRequest(http.MethodPost, "/presence", strings.NewReader("{broken")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.Len(t, logger.Logs, 1)
	assert.Equal(t, providers.TypePost, logger.Logs[0].Type)
	assert.Equal(t, "debug", logger.Logs[0].Level)
}

func TestReset_InvalidatesCachedReads(t *testing.T) {
	cache := testutil.NewMockCache()
	svc := &mockService{}
	pc, _ := newTestController(svc, cache)

	// Prime the cache.
	rr := httptest.NewRecorder()
	pc.Check(rr, httptest.NewRequest(http.MethodGet, "/points?user=alice", nil))

	// Reset bumps the generation, so the next read recomputes.
	rr = httptest.NewRecorder()
	pc.ResetAll(rr, httptest.NewRequest(http.MethodPost, "/reset-all", nil))

	svc.summaries = map[string]models.PointsSummary{
		"alice": {UserID: "alice", Total: 7},
	}
	rr = httptest.NewRecorder()
	pc.Check(rr, httptest.NewRequest(http.MethodGet, "/points?user=alice", nil))

	var resp models.PointsSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Total)
}
