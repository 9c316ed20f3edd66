package services

import (
	"pointsd/internal/models"
	"pointsd/internal/providers"
	"pointsd/internal/structures"
	"sort"
	"sync"
	"time"
)

// LedgerBackend is the durable medium for the ledger. Load and Save operate
// on the whole user map atomically; any medium that can round-trip it
// losslessly qualifies.
type LedgerBackend interface {
	Load() (map[string]*models.LedgerEntry, error)
	Save(users map[string]*models.LedgerEntry) error
}

type LedgerServiceInterface interface {
	Award(userID string, amount int) (int, error)
	TotalFor(userID string) int
	DailyFor(userID string) int
	CanEarnToday(userID string) bool
	Check(userID string) models.PointsSummary
	Leaderboard(limit int) []models.LeaderboardEntry
	Reset(userID string)
	ResetAll()
	PruneHistory(cutoff time.Time) int
	Restore() error
	UserCount() int
}

// LedgerService owns the in-memory ledger and writes it through to the
// backend on every mutation. A single mutex serializes the read-modify-write
// cycle so near-simultaneous awards for one user can never jointly overshoot
// the daily cap.
type LedgerService struct {
	mu      sync.Mutex
	users   map[string]*models.LedgerEntry
	cap     int
	backend LedgerBackend
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewLedgerService(conf *structures.Config, logger providers.Logger, backend LedgerBackend, metrics providers.MetricsProviderInterface) LedgerServiceInterface {
	return &LedgerService{
		users:   make(map[string]*models.LedgerEntry),
		cap:     conf.Points.DailyCap,
		backend: backend,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// currentDate returns today's key. Daily caps roll over at UTC midnight
// regardless of host timezone.
func (ls *LedgerService) currentDate() string {
	return ls.now().UTC().Format(time.DateOnly)
}

// Restore loads the persisted ledger. A missing or unreadable file degrades
// to an empty ledger; the error is returned for logging only.
func (ls *LedgerService) Restore() error {
	users, err := ls.backend.Load()
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if users == nil {
		users = make(map[string]*models.LedgerEntry)
	}
	ls.users = users
	return err
}

// Award grants up to amount points to userID, bounded by what remains of
// today's cap, and persists before returning. Returns the granted amount,
// which is 0 when the user is capped or amount is non-positive. A non-nil
// error means persistence failed: the in-memory mutation is rolled back and
// nothing was granted.
func (ls *LedgerService) Award(userID string, amount int) (int, error) {
	if userID == "" || amount <= 0 {
		return 0, nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	today := ls.currentDate()
	entry, existed := ls.users[userID]
	if !existed {
		entry = models.NewLedgerEntry()
	}

	remaining := ls.cap - entry.Daily[today]
	granted := min(amount, remaining)
	if granted <= 0 {
		return 0, nil
	}

	backup := entry.Clone()
	entry.Total += granted
	entry.Daily[today] += granted
	ls.users[userID] = entry

	if err := ls.persistLocked(); err != nil {
		if existed {
			ls.users[userID] = backup
		} else {
			delete(ls.users, userID)
		}
		ls.logger.Errorf(providers.TypeApp, "Award of %d to user %s not persisted: %s", granted, userID, err)
		return 0, err
	}

	return granted, nil
}

func (ls *LedgerService) persistLocked() error {
	start := time.Now()
	err := ls.backend.Save(ls.users)
	ls.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func (ls *LedgerService) TotalFor(userID string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if entry, ok := ls.users[userID]; ok {
		return entry.Total
	}
	return 0
}

func (ls *LedgerService) DailyFor(userID string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.dailyLocked(userID)
}

func (ls *LedgerService) dailyLocked(userID string) int {
	if entry, ok := ls.users[userID]; ok {
		return entry.Daily[ls.currentDate()]
	}
	return 0
}

func (ls *LedgerService) CanEarnToday(userID string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.dailyLocked(userID) < ls.cap
}

func (ls *LedgerService) Check(userID string) models.PointsSummary {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	var total int
	if entry, ok := ls.users[userID]; ok {
		total = entry.Total
	}
	daily := ls.dailyLocked(userID)

	return models.PointsSummary{
		UserID:         userID,
		Total:          total,
		Daily:          daily,
		RemainingDaily: max(0, ls.cap-daily),
		CanEarnMore:    daily < ls.cap,
	}
}

// Leaderboard returns up to limit users ordered by lifetime total, highest
// first. Ties are broken by user ID ascending so the order is stable.
func (ls *LedgerService) Leaderboard(limit int) []models.LeaderboardEntry {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	board := make([]models.LeaderboardEntry, 0, len(ls.users))
	for userID, entry := range ls.users {
		board = append(board, models.LeaderboardEntry{UserID: userID, Total: entry.Total})
	}

	sort.Slice(board, func(i, j int) bool {
		if board[i].Total != board[j].Total {
			return board[i].Total > board[j].Total
		}
		return board[i].UserID < board[j].UserID
	})

	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

func (ls *LedgerService) Reset(userID string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if _, ok := ls.users[userID]; !ok {
		return
	}
	backup := ls.users[userID]
	delete(ls.users, userID)
	if err := ls.persistLocked(); err != nil {
		ls.users[userID] = backup
		ls.logger.Errorf(providers.TypeApp, "Reset of user %s not persisted: %s", userID, err)
	}
}

func (ls *LedgerService) ResetAll() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	backup := ls.users
	ls.users = make(map[string]*models.LedgerEntry)
	if err := ls.persistLocked(); err != nil {
		ls.users = backup
		ls.logger.Errorf(providers.TypeApp, "Full reset not persisted: %s", err)
	}
}

// PruneHistory drops daily counters for dates strictly before cutoff.
// Lifetime totals are untouched. Returns the number of removed date keys.
func (ls *LedgerService) PruneHistory(cutoff time.Time) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	cutoffDate := cutoff.UTC().Format(time.DateOnly)
	pruned := 0
	for _, entry := range ls.users {
		for date := range entry.Daily {
			if date < cutoffDate {
				delete(entry.Daily, date)
				pruned++
			}
		}
	}

	if pruned > 0 {
		if err := ls.persistLocked(); err != nil {
			ls.logger.Errorf(providers.TypeApp, "History prune not persisted: %s", err)
		}
	}
	return pruned
}

func (ls *LedgerService) UserCount() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.users)
}
