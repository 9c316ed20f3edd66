package points

import (
	"pointsd/internal/models"
	"pointsd/internal/providers"
	"sync"
	"time"
)

// Tracker is the authoritative in-memory record of who is present in voice,
// where, and since when. Presence notifications mutate it synchronously; the
// scheduler reads snapshots and evicts. At most one session exists per user.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	now      func() time.Time
}

func NewTracker(logger providers.Logger, metrics providers.MetricsProviderInterface) *Tracker {
	return &Tracker{
		sessions: make(map[string]*models.Session),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// HandlePresenceChange applies one presence transition. Presence sources are
// unreliable, so anything malformed is absorbed as a logged no-op rather than
// surfaced to the dispatcher.
func (t *Tracker) HandlePresenceChange(userID, oldChannelID, newChannelID, channelName string) {
	if userID == "" {
		t.logger.Debugf(providers.TypeApp, "Invalid presence update: missing user ID")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case oldChannelID == "" && newChannelID != "":
		t.enterLocked(userID, newChannelID, channelName)
	case oldChannelID != "" && newChannelID == "":
		t.leaveLocked(userID)
	case oldChannelID != "" && newChannelID != "" && oldChannelID != newChannelID:
		t.moveLocked(userID, newChannelID, channelName)
	}

	t.metrics.SetSessionsTracked(len(t.sessions))
}

func (t *Tracker) enterLocked(userID, channelID, channelName string) {
	if channelName == "" {
		channelName = models.UnknownChannel
	}
	now := t.now()
	t.sessions[userID] = &models.Session{
		UserID:      userID,
		ChannelID:   channelID,
		ChannelName: channelName,
		JoinedAt:    now,
		LastAwardAt: now,
	}
	t.logger.Infof(providers.TypeApp, "User %s joined voice channel %s, tracking started", userID, channelName)
}

func (t *Tracker) leaveLocked(userID string) {
	session, ok := t.sessions[userID]
	if !ok {
		return
	}
	minutes := int(t.now().Sub(session.JoinedAt).Minutes())
	delete(t.sessions, userID)
	t.logger.Infof(providers.TypeApp, "User %s left %s after %d minute(s)", userID, session.ChannelName, minutes)
}

// moveLocked updates location in place. JoinedAt and LastAwardAt survive a
// move; a user cannot move into tracking without having entered first.
func (t *Tracker) moveLocked(userID, channelID, channelName string) {
	session, ok := t.sessions[userID]
	if !ok {
		return
	}
	if channelName == "" {
		channelName = models.UnknownChannel
	}
	session.ChannelID = channelID
	session.ChannelName = channelName
	t.logger.Infof(providers.TypeApp, "User %s moved to %s", userID, channelName)
}

// Snapshot returns copies of the current sessions. The tracker may evict or
// mutate entries while the caller iterates the result.
func (t *Tracker) Snapshot() []models.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]models.Session, 0, len(t.sessions))
	for _, session := range t.sessions {
		result = append(result, *session)
	}
	return result
}

// Touch records a successful award time for a tracked user. No-op if the
// session is gone.
func (t *Tracker) Touch(userID string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if session, ok := t.sessions[userID]; ok {
		session.LastAwardAt = at
	}
}

// Evict removes a session; idempotent.
func (t *Tracker) Evict(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, userID)
	t.metrics.SetSessionsTracked(len(t.sessions))
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
