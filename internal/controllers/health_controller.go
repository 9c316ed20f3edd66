package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"pointsd/internal/points"
	"pointsd/internal/points/interfaces"
	"pointsd/internal/services"
	"time"
)

type HealthController struct {
	service   services.LedgerServiceInterface
	tracker   *points.Tracker
	scheduler interfaces.SchedulerInterface
	startTime time.Time
}

type healthResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	SessionsTracked  int     `json:"sessions_tracked"`
	UsersKnown       int     `json:"users_known"`
	SchedulerRunning bool    `json:"scheduler_running"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:           "ok",
		Uptime:           formatDuration(uptime),
		UptimeSeconds:    uptime.Seconds(),
		SessionsTracked:  hc.tracker.Len(),
		UsersKnown:       hc.service.UserCount(),
		SchedulerRunning: hc.scheduler.Running(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.LedgerServiceInterface, tracker *points.Tracker, scheduler interfaces.SchedulerInterface) *HealthController {
	return &HealthController{
		service:   service,
		tracker:   tracker,
		scheduler: scheduler,
		startTime: time.Now(),
	}
}
