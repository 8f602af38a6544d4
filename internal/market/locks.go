package market

import "sync"

type lockKey struct {
	matchID  int64
	marketID int
}

// ThresholdLocks pins the first over/under line observed for each
// (match, market) pair. A position opened against "Over 48.5" must never be
// repriced or settled against a different line, even when a later provider
// reports one, so the pinned value wins for the life of the match.
type ThresholdLocks struct {
	mu    sync.Mutex
	lines map[lockKey]float64
}

func NewThresholdLocks() *ThresholdLocks {
	return &ThresholdLocks{lines: make(map[lockKey]float64)}
}

// Pin records line for the pair on first sight and returns the pinned value
// on every call after that.
func (t *ThresholdLocks) Pin(matchID int64, marketID int, line float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := lockKey{matchID: matchID, marketID: marketID}
	if pinned, ok := t.lines[key]; ok {
		return pinned
	}
	t.lines[key] = line
	return line
}

// Line returns the pinned line for the pair, if one exists.
func (t *ThresholdLocks) Line(matchID int64, marketID int) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.lines[lockKey{matchID: matchID, marketID: marketID}]
	return v, ok
}

// Release drops every lock held for a match. Called once the match settles.
func (t *ThresholdLocks) Release(matchID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.lines {
		if key.matchID == matchID {
			delete(t.lines, key)
		}
	}
}

// Count reports the number of pinned lines, for health reporting.
func (t *ThresholdLocks) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lines)
}
