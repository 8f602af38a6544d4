package market

import (
	"sync"
	"time"
)

const defaultHistoryRetention = 120

// Book is the in-memory view of the current match and market set. A refresh
// replaces the whole book atomically; readers always see one consistent
// generation. Price history survives across refreshes for matches that stay
// in the book.
type Book struct {
	mu          sync.RWMutex
	matches     map[int64]Match
	order       []int64
	markets     map[int64][]Market
	history     map[int64][]PricePoint
	retention   int
	lastRefresh time.Time
}

func NewBook(historyRetention int) *Book {
	if historyRetention <= 0 {
		historyRetention = defaultHistoryRetention
	}
	return &Book{
		matches:   make(map[int64]Match),
		markets:   make(map[int64][]Market),
		history:   make(map[int64][]PricePoint),
		retention: historyRetention,
	}
}

// ReplaceAll swaps in a new generation of matches and markets. An empty
// match list leaves the previous generation in place and returns false, so a
// failed upstream poll degrades to stale data instead of an empty book.
func (b *Book) ReplaceAll(matches []Match, markets map[int64][]Market, at time.Time) bool {
	if len(matches) == 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make(map[int64]Match, len(matches))
	order := make([]int64, 0, len(matches))
	for _, m := range matches {
		if _, dup := next[m.ID]; dup {
			continue
		}
		next[m.ID] = m
		order = append(order, m.ID)

		pts := append(b.history[m.ID], PricePoint{At: at, PriceA: m.PriceA, PriceB: m.PriceB})
		if over := len(pts) - b.retention; over > 0 {
			pts = append([]PricePoint(nil), pts[over:]...)
		}
		b.history[m.ID] = pts
	}
	for id := range b.history {
		if _, ok := next[id]; !ok {
			delete(b.history, id)
		}
	}

	b.matches = next
	b.order = order
	b.markets = make(map[int64][]Market, len(markets))
	for id, list := range markets {
		if _, ok := next[id]; !ok {
			continue
		}
		b.markets[id] = append([]Market(nil), list...)
	}
	b.lastRefresh = at
	return true
}

// Matches returns the current match list in refresh order.
func (b *Book) Matches() []Match {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Match, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.matches[id])
	}
	return out
}

func (b *Book) Match(id int64) (Match, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.matches[id]
	return m, ok
}

func (b *Book) Markets(id int64) ([]Market, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	list, ok := b.markets[id]
	if !ok {
		return nil, false
	}
	return append([]Market(nil), list...), true
}

// History returns the recorded price points for a match, oldest first.
func (b *Book) History(id int64) []PricePoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]PricePoint(nil), b.history[id]...)
}

func (b *Book) LastRefresh() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastRefresh
}

func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.matches)
}
