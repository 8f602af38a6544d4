// Package risk holds the admin-facing trading controls: per-match
// suspensions and the exposure caps the ledger re-checks on every order.
package risk

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Limits are the monetary knobs admins tune per deployment. A non-positive
// cap disables that check.
type Limits struct {
	StartingBalance  decimal.Decimal
	MaxUserExposure  decimal.Decimal
	MaxMatchExposure decimal.Decimal
}

// Suspension is an active per-match trading halt.
type Suspension struct {
	MatchID     int64     `json:"matchId"`
	Reason      string    `json:"reason"`
	SuspendedAt time.Time `json:"suspendedAt"`
}

// Manager tracks suspended matches and carries the exposure limits. It is
// safe for concurrent use; the ledger consults it inside order placement
// while admin handlers mutate it.
type Manager struct {
	Limits Limits
	Logger *zap.Logger

	mu        sync.Mutex
	suspended map[int64]Suspension
}

func NewManager(limits Limits, logger *zap.Logger) *Manager {
	return &Manager{
		Limits:    limits,
		Logger:    logger,
		suspended: make(map[int64]Suspension),
	}
}

// SuspendMatch halts new orders on a match. Existing positions can still be
// closed; suspension is an entry gate only.
func (m *Manager) SuspendMatch(matchID int64, reason string) {
	m.mu.Lock()
	m.suspended[matchID] = Suspension{
		MatchID:     matchID,
		Reason:      reason,
		SuspendedAt: time.Now().UTC(),
	}
	m.mu.Unlock()
	if m.Logger != nil {
		m.Logger.Info("match suspended", zap.Int64("match_id", matchID), zap.String("reason", reason))
	}
}

// ResumeMatch lifts a suspension. Returns false when none was active.
func (m *Manager) ResumeMatch(matchID int64) bool {
	m.mu.Lock()
	_, ok := m.suspended[matchID]
	delete(m.suspended, matchID)
	m.mu.Unlock()
	if ok && m.Logger != nil {
		m.Logger.Info("match resumed", zap.Int64("match_id", matchID))
	}
	return ok
}

// MatchSuspension returns the active suspension for a match, if any.
func (m *Manager) MatchSuspension(matchID int64) (Suspension, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suspended[matchID]
	return s, ok
}

// Suspensions lists every active suspension, for the admin surface.
func (m *Manager) Suspensions() []Suspension {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Suspension, 0, len(m.suspended))
	for _, s := range m.suspended {
		out = append(out, s)
	}
	return out
}

// TradingStatus reports the order-entry state of a match for market
// payloads.
func (m *Manager) TradingStatus(matchID int64) string {
	if _, ok := m.MatchSuspension(matchID); ok {
		return "suspended"
	}
	return "open"
}

// ExceedsUserCap reports whether adding stake would push one user's open
// exposure past the configured cap.
func ExceedsUserCap(limits Limits, current, add decimal.Decimal) bool {
	if limits.MaxUserExposure.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return current.Add(add).GreaterThan(limits.MaxUserExposure)
}

// ExceedsMatchCap reports whether adding stake would push one match's
// aggregate open exposure past the configured cap.
func ExceedsMatchCap(limits Limits, current, add decimal.Decimal) bool {
	if limits.MaxMatchExposure.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return current.Add(add).GreaterThan(limits.MaxMatchExposure)
}
