package models

// LedgerEntry holds one user's accumulated points. Daily is keyed by UTC
// calendar date in YYYY-MM-DD form; Total is the lifetime sum and never
// decreases outside an explicit reset.
type LedgerEntry struct {
	Total int            `json:"total"`
	Daily map[string]int `json:"daily"`
}

func NewLedgerEntry() *LedgerEntry {
	return &LedgerEntry{Daily: make(map[string]int)}
}

func (e *LedgerEntry) Clone() *LedgerEntry {
	if e == nil {
		return nil
	}
	cp := &LedgerEntry{
		Total: e.Total,
		Daily: make(map[string]int, len(e.Daily)),
	}
	for date, n := range e.Daily {
		cp.Daily[date] = n
	}
	return cp
}

// Ledger is the persisted envelope. Version distinguishes the current format
// from the legacy one, which was a bare user map at the top level.
type Ledger struct {
	Version int                     `json:"version"`
	Users   map[string]*LedgerEntry `json:"users"`
}

const LedgerFormatVersion = 2

type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Total  int    `json:"total"`
}

// PointsSummary is the read projection returned by the check endpoint.
type PointsSummary struct {
	UserID         string `json:"user_id"`
	Total          int    `json:"total"`
	Daily          int    `json:"daily"`
	RemainingDaily int    `json:"remaining_daily"`
	CanEarnMore    bool   `json:"can_earn_more"`
}
