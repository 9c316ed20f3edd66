package points

import (
	"pointsd/internal/points/interfaces"
	"pointsd/internal/providers"
	"pointsd/internal/services"
	"pointsd/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"github.com/roylee0704/gron/xtime"
)

// Scheduler is the periodic bridge between presence and the ledger: each tick
// attempts one point per tracked session and evicts sessions that can no
// longer earn today.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.LedgerServiceInterface
	tracker *Tracker
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	stateMu sync.Mutex
	running bool
	opsMu   sync.Mutex
	now     func() time.Time
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.LedgerServiceInterface, tracker *Tracker, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		tracker: tracker,
		metrics: metrics,
		now:     time.Now,
	}
}

// Init arms the recurring jobs and runs one award pass immediately, so users
// already in voice at startup do not wait a full interval for their first
// point. Calling Init while running is a no-op.
func (s *Scheduler) Init() {
	s.stateMu.Lock()
	if s.running {
		s.stateMu.Unlock()
		s.logger.Infof(providers.TypeApp, "Points scheduler is already running")
		return
	}
	s.running = true

	s.cron = gron.New()
	s.cron.AddFunc(gron.Every(s.config.Points.TickInterval), func() {
		s.AwardPass()
	})
	if s.config.Points.RetentionDays > 0 {
		s.cron.AddFunc(gron.Every(1*xtime.Day), func() {
			s.PruneHistory()
		})
	}
	s.cron.Start()
	s.stateMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Started points scheduler, tick every %s", s.config.Points.TickInterval)
	s.AwardPass()
}

// Stop cancels future ticks. A pass already in flight runs to completion.
func (s *Scheduler) Stop() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Infof(providers.TypeApp, "Stopped points scheduler")
}

func (s *Scheduler) Running() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.running
}

// AwardPass executes one tick: every tracked session gets one award attempt,
// then everything capped or malformed is evicted. One user's failure never
// aborts the pass for the rest.
func (s *Scheduler) AwardPass() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	now := s.now()
	evict := make(map[string]string)

	for _, session := range s.tracker.Snapshot() {
		if !session.Valid() {
			evict[session.UserID] = providers.EvictReasonMalformed
			continue
		}

		if !s.service.CanEarnToday(session.UserID) {
			s.logger.Infof(providers.TypeApp, "User %s has reached the daily limit, removing from tracking", session.UserID)
			evict[session.UserID] = providers.EvictReasonCapped
			continue
		}

		s.metrics.IncAwardAttempts()
		granted, err := s.service.Award(session.UserID, 1)
		if err != nil {
			// No award this tick; the session stays tracked and is
			// retried on the next one.
			s.logger.Warnf(providers.TypeApp, "Award for user %s failed, will retry next tick: %s", session.UserID, err)
			continue
		}
		if granted > 0 {
			s.metrics.AddPointsGranted(granted)
			s.tracker.Touch(session.UserID, now)
			s.logger.Debugf(providers.TypeApp, "Awarded %d point(s) to user %s in %s", granted, session.UserID, session.ChannelName)
		} else {
			s.logger.Infof(providers.TypeApp, "User %s has reached the daily limit, removing from tracking", session.UserID)
			evict[session.UserID] = providers.EvictReasonCapped
		}
	}

	for userID, reason := range evict {
		s.tracker.Evict(userID)
		s.metrics.IncEvictions(reason)
	}

	s.metrics.SetUsersKnown(s.service.UserCount())
	s.metrics.ObserveAwardPassDuration(time.Since(start))

	if tracked := s.tracker.Len(); tracked > 0 {
		s.logger.Infof(providers.TypeApp, "Currently tracking %d user(s) in voice channels", tracked)
	}
}

// PruneHistory drops per-day counters older than the retention window.
func (s *Scheduler) PruneHistory() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	retention := time.Duration(s.config.Points.RetentionDays) * 24 * time.Hour
	cutoff := s.now().Add(-retention)
	pruned := s.service.PruneHistory(cutoff)
	if pruned > 0 {
		s.logger.Infof(providers.TypeApp, "Pruned %d daily counter(s) older than %d days", pruned, s.config.Points.RetentionDays)
	}
}
