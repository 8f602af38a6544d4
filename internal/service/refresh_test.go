package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/feed"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/reconcile"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
)

type stubScores struct {
	mu      sync.Mutex
	calls   int
	records []feed.MatchRecord
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (s *stubScores) Name() string        { return "scorefeed" }
func (s *stubScores) Health() feed.Health { return feed.Health{Status: "ok"} }

func (s *stubScores) Matches(ctx context.Context) ([]feed.MatchRecord, error) {
	s.mu.Lock()
	s.calls++
	records, err := s.records, s.err
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	return records, err
}

func (s *stubScores) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubScores) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

type stubOdds struct {
	name  string
	pairs []feed.OddsPair
	err   error
}

func (s *stubOdds) Name() string        { return s.name }
func (s *stubOdds) Health() feed.Health { return feed.Health{Status: "ok"} }

func (s *stubOdds) Odds(ctx context.Context) ([]feed.OddsPair, error) {
	return s.pairs, s.err
}

func newRefresh(scores feed.ScoreSource, odds []feed.OddsSource) *RefreshService {
	logger := zap.NewNop()
	return &RefreshService{
		Scores:     scores,
		Odds:       odds,
		Reconciler: reconcile.New(logger),
		Builder:    &market.Builder{Locks: market.NewThresholdLocks()},
		Book:       market.NewBook(50),
		Controls:   risk.NewManager(risk.Limits{}, logger),
		Logger:     logger,
		StaleAfter: 3 * time.Minute,
	}
}

func liveRecord() feed.MatchRecord {
	return feed.MatchRecord{
		ExternalID: "m1",
		TeamA:      "Mumbai Indians [MI]",
		TeamB:      "Chennai Super Kings [CSK]",
		ScoreA:     normalize.ParseScore("45/1 (6)"),
		StatusText: "Live",
		Live:       true,
		Category:   "IPL 2026",
	}
}

func TestRefreshPublishesPricedBook(t *testing.T) {
	scores := &stubScores{records: []feed.MatchRecord{liveRecord()}}
	odds := &stubOdds{name: "oddsfeed", pairs: []feed.OddsPair{{
		TeamA: "Mumbai Indians", TeamB: "Chennai Super Kings",
		OddsA: 160, OddsB: 240, Provider: "oddsfeed",
	}}}
	s := newRefresh(scores, []feed.OddsSource{odds})

	res, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.Matches != 1 || res.Quoted != 1 || res.Modeled != 0 {
		t.Fatalf("result=%+v", res)
	}

	list := s.Book.Matches()
	if len(list) != 1 {
		t.Fatalf("book matches=%d want 1", len(list))
	}
	m := list[0]
	if m.PriceSource != "oddsfeed" {
		t.Fatalf("priceSource=%q", m.PriceSource)
	}
	if m.PriceA != 57 || m.PriceB != 43 {
		t.Fatalf("price=%d/%d want 57/43", m.PriceA, m.PriceB)
	}
	mks, ok := s.Book.Markets(m.ID)
	if !ok || len(mks) != 8 {
		t.Fatalf("markets=%d want 8", len(mks))
	}
	if pts := s.Book.History(m.ID); len(pts) != 1 {
		t.Fatalf("history=%d want 1", len(pts))
	}
	if s.Stale() {
		t.Fatalf("fresh refresh reported stale")
	}
}

func TestRefreshFallsBackToModel(t *testing.T) {
	scores := &stubScores{records: []feed.MatchRecord{liveRecord()}}
	s := newRefresh(scores, nil)

	res, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.Modeled != 1 || res.Quoted != 0 {
		t.Fatalf("result=%+v", res)
	}
	m := s.Book.Matches()[0]
	if m.PriceSource != "model" {
		t.Fatalf("priceSource=%q", m.PriceSource)
	}
	if m.PriceA+m.PriceB != 100 || m.PriceA < 1 || m.PriceA > 99 {
		t.Fatalf("price=%d/%d", m.PriceA, m.PriceB)
	}
}

func TestRefreshKeepsBookWhenProvidersFail(t *testing.T) {
	scores := &stubScores{records: []feed.MatchRecord{liveRecord()}}
	s := newRefresh(scores, nil)

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	firstAt := s.Book.LastRefresh()

	scores.fail(errors.New("upstream down"))
	res, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !res.Kept {
		t.Fatalf("empty cycle did not report kept")
	}
	if s.Book.Len() != 1 {
		t.Fatalf("book len=%d want 1", s.Book.Len())
	}
	if !s.Book.LastRefresh().Equal(firstAt) {
		t.Fatalf("lastRefresh moved on empty cycle")
	}
}

func TestRefreshSharesInFlightCycle(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{}, 1)
	scores := &stubScores{records: []feed.MatchRecord{liveRecord()}, block: block, entered: entered}
	s := newRefresh(scores, nil)

	type outcome struct {
		res RefreshResult
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		r, err := s.Refresh(context.Background())
		first <- outcome{r, err}
	}()
	<-entered

	second := make(chan outcome, 1)
	go func() {
		r, err := s.Refresh(context.Background())
		second <- outcome{r, err}
	}()
	time.Sleep(50 * time.Millisecond)
	close(block)

	a, b := <-first, <-second
	if a.err != nil || b.err != nil {
		t.Fatalf("errs=%v,%v", a.err, b.err)
	}
	if got := scores.callCount(); got != 1 {
		t.Fatalf("provider polled %d times, want 1", got)
	}
	if !b.res.Shared {
		t.Fatalf("second caller ran its own cycle")
	}
	if !a.res.RefreshedAt.Equal(b.res.RefreshedAt) {
		t.Fatalf("shared result differs: %v vs %v", a.res.RefreshedAt, b.res.RefreshedAt)
	}
}

func TestRefreshAwaiterHonorsContext(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{}, 1)
	scores := &stubScores{records: []feed.MatchRecord{liveRecord()}, block: block, entered: entered}
	s := newRefresh(scores, nil)

	go func() {
		_, _ = s.Refresh(context.Background())
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	close(block)
}
