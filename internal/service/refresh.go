package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/cache"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/feed"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/metrics"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/pricing"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/push"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/reconcile"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
)

// modelSource names the fallback pricing engine in PriceSource fields.
const modelSource = "model"

// RefreshService drives one polling cycle: fetch every provider
// concurrently, reconcile records against odds, model-price whatever no
// provider quoted, build the eight-market list per match and publish the
// result to the book, the push hub and the snapshot cache. Cron ticks and
// the admin endpoint share the same entry point; a cycle already in flight
// is awaited, never duplicated.
type RefreshService struct {
	Scores     feed.ScoreSource
	Odds       []feed.OddsSource
	Reconciler *reconcile.Reconciler
	Pricer     pricing.Model
	Builder    *market.Builder
	Book       *market.Book
	Controls   *risk.Manager
	Hub        *push.Hub
	Cache      *cache.Client
	Store      repository.Repository
	Logger     *zap.Logger

	// Timeout bounds one full cycle; provider clients carry their own
	// per-call timeouts underneath it.
	Timeout    time.Duration
	StaleAfter time.Duration

	mu       sync.Mutex
	inflight chan struct{}
	last     RefreshResult
	lastErr  error
}

// RefreshResult summarizes one cycle for the admin endpoint and logs.
type RefreshResult struct {
	Matches     int       `json:"matches"`
	Quoted      int       `json:"quoted"`
	Modeled     int       `json:"modeled"`
	Synthesized int       `json:"synthesized"`
	Kept        bool      `json:"kept,omitempty"`
	Shared      bool      `json:"shared,omitempty"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

type matchesPayload struct {
	Matches     []market.Match `json:"matches"`
	RefreshedAt time.Time      `json:"refreshedAt"`
}

type marketsPayload struct {
	MatchID       int64           `json:"matchId"`
	Markets       []market.Market `json:"markets"`
	TradingStatus string          `json:"tradingStatus"`
}

// Refresh runs one cycle, or awaits the cycle already in flight and shares
// its result.
func (s *RefreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	s.mu.Lock()
	if ch := s.inflight; ch != nil {
		s.mu.Unlock()
		select {
		case <-ch:
			s.mu.Lock()
			res, err := s.last, s.lastErr
			s.mu.Unlock()
			res.Shared = true
			return res, err
		case <-ctx.Done():
			return RefreshResult{}, ctx.Err()
		}
	}
	ch := make(chan struct{})
	s.inflight = ch
	s.mu.Unlock()

	res, err := s.runCycle(ctx)

	s.mu.Lock()
	s.last, s.lastErr = res, err
	s.inflight = nil
	s.mu.Unlock()
	close(ch)
	return res, err
}

func (s *RefreshService) runCycle(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	records, pairs := s.fetch(ctx)
	at := time.Now().UTC()

	res := s.Reconciler.Reconcile(records, pairs)
	quoted := len(res.Quotes)
	modeled := 0
	for i := range res.Matches {
		m := &res.Matches[i]
		if _, ok := res.Quotes[m.ID]; !ok {
			m.PriceA, m.PriceB = s.Pricer.Price(*m)
			m.PriceSource = modelSource
			modeled++
		}
		m.UpdatedAt = at
	}

	built := make(map[int64][]market.Market, len(res.Matches))
	for _, m := range res.Matches {
		built[m.ID] = s.Builder.Build(m, res.Secondary[m.ID])
	}

	prev := make(map[int64]int, s.Book.Len())
	for _, m := range s.Book.Matches() {
		prev[m.ID] = m.PriceA
	}

	if !s.Book.ReplaceAll(res.Matches, built, at) {
		metrics.RefreshDuration.Observe(time.Since(start).Seconds())
		s.Logger.Warn("refresh produced no matches, keeping previous snapshot",
			zap.Int("kept", s.Book.Len()))
		return RefreshResult{Matches: s.Book.Len(), Kept: true, RefreshedAt: s.Book.LastRefresh()}, nil
	}

	s.publish(res.Matches, built, prev, at)
	s.Cache.StoreSnapshot(ctx, cache.Snapshot{Matches: res.Matches, Markets: built, TakenAt: at})
	s.persistSnapshot(res, at)

	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	metrics.RefreshMatches.Set(float64(len(res.Matches)))

	s.Logger.Info("refresh cycle complete",
		zap.Int("matches", len(res.Matches)),
		zap.Int("quoted", quoted),
		zap.Int("modeled", modeled),
		zap.Int("synthesized", res.Synthesized),
		zap.Duration("took", time.Since(start)))

	return RefreshResult{
		Matches:     len(res.Matches),
		Quoted:      quoted,
		Modeled:     modeled,
		Synthesized: res.Synthesized,
		RefreshedAt: at,
	}, nil
}

// fetch polls every provider concurrently. A failed provider degrades to no
// data from that provider; pairs keep the configured provider order so
// classification tie-breaks stay deterministic.
func (s *RefreshService) fetch(ctx context.Context) ([]feed.MatchRecord, []feed.OddsPair) {
	var wg sync.WaitGroup
	var records []feed.MatchRecord
	bySource := make([][]feed.OddsPair, len(s.Odds))

	if s.Scores != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := s.Scores.Matches(ctx)
			if err != nil {
				metrics.ProviderErrors.WithLabelValues(s.Scores.Name()).Inc()
				s.Logger.Warn("score provider failed",
					zap.String("provider", s.Scores.Name()), zap.Error(err))
				return
			}
			records = recs
		}()
	}
	for i, src := range s.Odds {
		wg.Add(1)
		go func(i int, src feed.OddsSource) {
			defer wg.Done()
			p, err := src.Odds(ctx)
			if err != nil {
				metrics.ProviderErrors.WithLabelValues(src.Name()).Inc()
				s.Logger.Warn("odds provider failed",
					zap.String("provider", src.Name()), zap.Error(err))
				return
			}
			bySource[i] = p
		}(i, src)
	}
	wg.Wait()

	var pairs []feed.OddsPair
	for _, p := range bySource {
		pairs = append(pairs, p...)
	}
	return records, pairs
}

// publish pushes the new snapshot: one matches:update for the full list,
// then a markets:update per match whose headline price moved or that is new
// this cycle.
func (s *RefreshService) publish(matches []market.Match, built map[int64][]market.Market, prev map[int64]int, at time.Time) {
	s.Hub.Broadcast(push.EventMatchesUpdate, matchesPayload{Matches: matches, RefreshedAt: at})
	for _, m := range matches {
		if p, ok := prev[m.ID]; ok && p == m.PriceA {
			continue
		}
		s.Hub.Broadcast(push.EventMarketsUpdate, marketsPayload{
			MatchID:       m.ID,
			Markets:       built[m.ID],
			TradingStatus: s.Controls.TradingStatus(m.ID),
		})
	}
}

// persistSnapshot writes the cycle to the durable store off the hot path.
func (s *RefreshService) persistSnapshot(res reconcile.Result, at time.Time) {
	if s.Store == nil {
		return
	}
	payload, err := json.Marshal(res.Matches)
	if err != nil {
		return
	}
	snap := &models.FeedSnapshot{
		MatchCount:  len(res.Matches),
		PricedCount: len(res.Quotes),
		Synthesized: res.Synthesized,
		Payload:     datatypes.JSON(payload),
		TakenAt:     at,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Store.InsertFeedSnapshot(ctx, snap); err != nil {
			s.Logger.Warn("feed snapshot persist failed", zap.Error(err))
		}
	}()
}

// Prime seeds the book from the cached snapshot so the API serves prices
// while the first refresh is still running. Over/under lines found in the
// snapshot are re-pinned so positions opened before a restart keep their
// thresholds.
func (s *RefreshService) Prime(ctx context.Context) bool {
	snap, ok := s.Cache.LoadSnapshot(ctx)
	if !ok {
		return false
	}
	if !s.Book.ReplaceAll(snap.Matches, snap.Markets, snap.TakenAt) {
		return false
	}
	for id, mks := range snap.Markets {
		for _, mk := range mks {
			if mk.Line > 0 {
				s.Builder.Locks.Pin(id, mk.ID, mk.Line)
			}
		}
	}
	s.Logger.Info("market book primed from cache",
		zap.Int("matches", len(snap.Matches)),
		zap.Time("taken_at", snap.TakenAt))
	return true
}

// Stale reports whether the published snapshot has outlived its freshness
// window.
func (s *RefreshService) Stale() bool {
	last := s.Book.LastRefresh()
	if last.IsZero() {
		return true
	}
	return s.StaleAfter > 0 && time.Since(last) > s.StaleAfter
}
