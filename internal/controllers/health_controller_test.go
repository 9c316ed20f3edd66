package controllers

import (
	"net/http"
	"net/http/httptest"
	"pointsd/internal/points"
	"pointsd/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	json "github.com/goccy/go-json"
)

type mockScheduler struct {
	running bool
}

func (m *mockScheduler) Init()         { m.running = true }
func (m *mockScheduler) Stop()         { m.running = false }
func (m *mockScheduler) Running() bool { return m.running }
func (m *mockScheduler) AwardPass()    {}
func (m *mockScheduler) PruneHistory() {}

func TestHealth_ReportsStatus(t *testing.T) {
	tracker := points.NewTracker(&mockLogger{}, testutil.NewMockMetrics())
	tracker.HandlePresenceChange("alice", "", "ch1", "General")
	tracker.HandlePresenceChange("bob", "", "ch1", "General")

	svc := &mockService{userCount: 5}
	hc := NewHealthController(svc, tracker, &mockScheduler{running: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	hc.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(2), resp["sessions_tracked"])
	assert.Equal(t, float64(5), resp["users_known"])
	assert.Equal(t, true, resp["scheduler_running"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "uptime_seconds")
}

func TestHealth_SchedulerStopped(t *testing.T) {
	tracker := points.NewTracker(&mockLogger{}, testutil.NewMockMetrics())
	hc := NewHealthController(&mockService{}, tracker, &mockScheduler{})

	rr := httptest.NewRecorder()
	hc.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["scheduler_running"])
	assert.Equal(t, float64(0), resp["sessions_tracked"])
}

func TestHealth_RejectsNonGet(t *testing.T) {
	tracker := points.NewTracker(&mockLogger{}, testutil.NewMockMetrics())
	hc := NewHealthController(&mockService{}, tracker, &mockScheduler{})

	rr := httptest.NewRecorder()
	hc.Health(rr, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d        time.Duration
		expected string
	}{
		{0, "0h0m0s"},
		{90 * time.Second, "0h1m30s"},
		{3*time.Hour + 25*time.Minute + 45*time.Second, "3h25m45s"},
		{26 * time.Hour, "26h0m0s"},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, formatDuration(c.d))
	}
}
