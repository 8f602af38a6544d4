package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/models"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
)

var errStoreDown = errors.New("store down")

// storeStub satisfies repository.Repository with switchable failures so the
// rollback paths run without a database.
type storeStub struct {
	failInsertOrder    bool
	failInsertPosition bool
	failUpdatePosition bool

	wallets   []models.Wallet
	positions []models.Position
	maxID     int64
}

func (s *storeStub) Ping(ctx context.Context) error { return nil }

func (s *storeStub) SaveWallet(ctx context.Context, item *models.Wallet) error { return nil }

func (s *storeStub) LoadWallets(ctx context.Context) ([]models.Wallet, error) {
	return s.wallets, nil
}

func (s *storeStub) InsertOrder(ctx context.Context, item *models.Order) error {
	if s.failInsertOrder {
		return errStoreDown
	}
	return nil
}

func (s *storeStub) InsertPosition(ctx context.Context, item *models.Position) error {
	if s.failInsertPosition {
		return errStoreDown
	}
	return nil
}

func (s *storeStub) UpdatePosition(ctx context.Context, item *models.Position) error {
	if s.failUpdatePosition {
		return errStoreDown
	}
	return nil
}

func (s *storeStub) LoadOpenPositions(ctx context.Context) ([]models.Position, error) {
	return s.positions, nil
}

func (s *storeStub) MaxPositionID(ctx context.Context) (int64, error) { return s.maxID, nil }

func (s *storeStub) InsertSettlement(ctx context.Context, item *models.Settlement) error {
	return nil
}

func (s *storeStub) HasSettlement(ctx context.Context, matchID int64) (bool, error) {
	return false, nil
}

func (s *storeStub) InsertAudit(ctx context.Context, item *models.AuditEntry) error { return nil }

func (s *storeStub) InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error {
	return nil
}

func tradeMatch() market.Match {
	return market.Match{
		ID:          42,
		ExternalID:  "fix-42",
		TeamAFull:   "Mumbai Indians",
		TeamAShort:  "MI",
		TeamBFull:   "Chennai Super Kings",
		TeamBShort:  "CSK",
		ScoreA:      normalize.ParseScore("92/3 (11)"),
		StatusText:  "Live",
		IsLive:      true,
		PriceA:      65,
		PriceB:      35,
		PriceSource: "oddsfeed",
	}
}

func newTestLedger(t *testing.T, limits risk.Limits, repo repository.Repository) *Ledger {
	t.Helper()
	if limits.StartingBalance.IsZero() {
		limits.StartingBalance = decimal.NewFromInt(1000)
	}
	m := tradeMatch()
	builder := &market.Builder{Locks: market.NewThresholdLocks()}
	book := market.NewBook(10)
	markets := map[int64][]market.Market{m.ID: builder.Build(m, nil)}
	if !book.ReplaceAll([]market.Match{m}, markets, time.Now().UTC()) {
		t.Fatalf("seeding book failed")
	}
	return New(risk.NewManager(limits, zap.NewNop()), book, repo, nil, zap.NewNop())
}

func buyInput(user, label string, marketID int, amount float64) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:      user,
		MatchID:     42,
		MarketID:    marketID,
		OptionLabel: label,
		Side:        SideYes,
		Amount:      decimal.NewFromFloat(amount),
	}
}

func TestPlaceOrderDebitsAndPrices(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !res.Balance.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("balance=%s want 950", res.Balance)
	}
	if res.Position.Price != 65 {
		t.Fatalf("price=%d want 65", res.Position.Price)
	}
	if !res.Position.Shares.Equal(decimal.NewFromFloat(76.92)) {
		t.Fatalf("shares=%s want 76.92", res.Position.Shares)
	}
	if res.Position.Status != StatusOpen || res.Order.Ref == "" {
		t.Fatalf("position=%+v order=%+v", res.Position, res.Order)
	}
	if tape := l.OrdersByMatch(42); len(tape) != 1 {
		t.Fatalf("tape=%d want 1", len(tape))
	}
	view := l.Portfolio("alice")
	if !view.Exposure.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("exposure=%s want 50", view.Exposure)
	}
}

func TestPlaceOrderNoSideUsesComplementPrice(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)

	in := buyInput("bob", "Mumbai Indians", market.MatchWinner, 50)
	in.Side = SideNo
	res, err := l.PlaceOrder(context.Background(), in)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if res.Position.Price != 35 {
		t.Fatalf("price=%d want 35", res.Position.Price)
	}
	if !res.Position.Shares.Equal(decimal.NewFromFloat(142.86)) {
		t.Fatalf("shares=%s want 142.86", res.Position.Shares)
	}
}

func TestPlaceOrderRejections(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*PlaceOrderInput)
		want   error
	}{
		{"bad side", func(in *PlaceOrderInput) { in.Side = "maybe" }, ErrInvalidSide},
		{"zero match", func(in *PlaceOrderInput) { in.MatchID = 0 }, ErrInvalidMatchID},
		{"zero market", func(in *PlaceOrderInput) { in.MarketID = 0 }, ErrInvalidMarketID},
		{"blank option", func(in *PlaceOrderInput) { in.OptionLabel = "  " }, ErrInvalidOption},
		{"zero amount", func(in *PlaceOrderInput) { in.Amount = decimal.Zero }, ErrInvalidAmount},
		{"blank user", func(in *PlaceOrderInput) { in.UserID = " " }, ErrInvalidUser},
		{"unknown match", func(in *PlaceOrderInput) { in.MatchID = 4040 }, ErrMatchNotFound},
		{"unknown market", func(in *PlaceOrderInput) { in.MarketID = 99 }, ErrMarketNotFound},
		{"unknown option", func(in *PlaceOrderInput) { in.OptionLabel = "Rajasthan Royals" }, ErrOptionNotFound},
		{"too small", func(in *PlaceOrderInput) { in.Amount = decimal.NewFromFloat(0.001) }, ErrStakeTooSmall},
		{"over balance", func(in *PlaceOrderInput) { in.Amount = decimal.NewFromInt(1500) }, ErrInsufficientBalance},
	}
	for _, tc := range cases {
		in := buyInput("val", "Mumbai Indians", market.MatchWinner, 50)
		tc.mutate(&in)
		if _, err := l.PlaceOrder(ctx, in); err != tc.want {
			t.Fatalf("%s: err=%v want %v", tc.name, err, tc.want)
		}
	}

	view := l.Portfolio("val")
	if !view.Balance.Equal(decimal.NewFromInt(1000)) || len(view.Positions) != 0 {
		t.Fatalf("rejections left state behind: %+v", view)
	}
}

func TestPlaceOrderResolvesFuzzyLabels(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "  mumbai INDIANS ", market.MatchWinner, 10))
	if err != nil {
		t.Fatalf("case-insensitive label: %v", err)
	}
	if res.Position.OptionLabel != "Mumbai Indians" {
		t.Fatalf("label=%q", res.Position.OptionLabel)
	}

	res, err = l.PlaceOrder(ctx, buyInput("alice", "6.5 over", market.TotalWickets, 10))
	if err != nil {
		t.Fatalf("token-overlap label: %v", err)
	}
	if res.Position.OptionLabel != "Over 6.5" {
		t.Fatalf("label=%q", res.Position.OptionLabel)
	}
}

func TestPlaceOrderEnforcesCaps(t *testing.T) {
	ctx := context.Background()

	l := newTestLedger(t, risk.Limits{MaxUserExposure: decimal.NewFromInt(80)}, nil)
	if _, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50)); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if _, err := l.PlaceOrder(ctx, buyInput("alice", "Chennai Super Kings", market.MatchWinner, 50)); err != ErrUserExposureCap {
		t.Fatalf("err=%v want ErrUserExposureCap", err)
	}
	if got := l.Portfolio("alice").Balance; !got.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("rejected order moved balance: %s", got)
	}

	l = newTestLedger(t, risk.Limits{MaxMatchExposure: decimal.NewFromInt(60)}, nil)
	if _, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50)); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if _, err := l.PlaceOrder(ctx, buyInput("bob", "Mumbai Indians", market.MatchWinner, 20)); err != ErrMatchExposureCap {
		t.Fatalf("err=%v want ErrMatchExposureCap", err)
	}
	if got := l.Portfolio("bob").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("rejected order moved balance: %s", got)
	}
}

func TestSuspendedUserCanCloseButNotOpen(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	l.SetUserSuspended(ctx, "alice", true)
	if _, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 10)); err != ErrUserSuspended {
		t.Fatalf("err=%v want ErrUserSuspended", err)
	}

	closed, err := l.ClosePosition(ctx, CloseInput{UserID: "alice", PositionID: res.Position.ID})
	if err != nil {
		t.Fatalf("ClosePosition while suspended: %v", err)
	}
	if closed.Position.Status != StatusClosed {
		t.Fatalf("status=%s", closed.Position.Status)
	}
	if !closed.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance=%s want 1000", closed.Balance)
	}
}

func TestPlaceOrderSuspendedMatch(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	l.Controls.SuspendMatch(42, "volatile feed")
	if _, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50)); err != ErrMarketSuspended {
		t.Fatalf("err=%v want ErrMarketSuspended", err)
	}

	l.Controls.ResumeMatch(42)
	if _, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50)); err != nil {
		t.Fatalf("after resume: %v", err)
	}
}

func TestPlaceOrderRollsBackOnStoreFailure(t *testing.T) {
	store := &storeStub{failInsertPosition: true}
	l := newTestLedger(t, risk.Limits{}, store)
	ctx := context.Background()

	_, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "order" {
		t.Fatalf("err=%v want PersistenceError{order}", err)
	}

	view := l.Portfolio("alice")
	if !view.Balance.Equal(decimal.NewFromInt(1000)) || len(view.Positions) != 0 {
		t.Fatalf("rollback incomplete: %+v", view)
	}
	if tape := l.OrdersByMatch(42); len(tape) != 0 {
		t.Fatalf("tape=%d after rollback", len(tape))
	}

	store.failInsertPosition = false
	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Position.ID != 1 {
		t.Fatalf("position id=%d, rollback leaked the sequence", res.Position.ID)
	}
}

func TestClosePositionProportional(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	half, err := l.ClosePosition(ctx, CloseInput{
		UserID:        "alice",
		PositionID:    res.Position.ID,
		SharesToClose: decimal.NewFromFloat(38.46),
	})
	if err != nil {
		t.Fatalf("half close: %v", err)
	}
	if !half.CloseValue.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("closeValue=%s want 25", half.CloseValue)
	}
	if !half.PnL.IsZero() {
		t.Fatalf("pnl=%s want 0", half.PnL)
	}
	if half.Position.Status != StatusOpen {
		t.Fatalf("status=%s want open", half.Position.Status)
	}
	if !half.Position.SharesRemaining.Equal(decimal.NewFromFloat(38.46)) {
		t.Fatalf("sharesRemaining=%s", half.Position.SharesRemaining)
	}
	if !half.Position.StakeRemaining.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("stakeRemaining=%s", half.Position.StakeRemaining)
	}
	if !half.Balance.Equal(decimal.NewFromInt(975)) {
		t.Fatalf("balance=%s want 975", half.Balance)
	}

	rest, err := l.ClosePosition(ctx, CloseInput{UserID: "alice", PositionID: res.Position.ID})
	if err != nil {
		t.Fatalf("close remainder: %v", err)
	}
	if rest.Position.Status != StatusClosed || rest.Position.ClosedAt == nil {
		t.Fatalf("position=%+v", rest.Position)
	}
	if !rest.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance=%s want 1000", rest.Balance)
	}
}

func TestClosePositionDustCollapses(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	out, err := l.ClosePosition(ctx, CloseInput{
		UserID:        "alice",
		PositionID:    res.Position.ID,
		SharesToClose: decimal.NewFromFloat(76.91),
	})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !out.Position.SharesRemaining.Equal(decimal.NewFromFloat(0.01)) {
		t.Fatalf("sharesRemaining=%s want 0.01", out.Position.SharesRemaining)
	}
	if out.Position.Status != StatusClosed || out.Position.ClosedAt == nil {
		t.Fatalf("dust position stayed open: %+v", out.Position)
	}
}

func TestClosePositionRejections(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	id := res.Position.ID

	if _, err := l.ClosePosition(ctx, CloseInput{UserID: "bob", PositionID: id}); err != ErrPositionNotOwned {
		t.Fatalf("err=%v want ErrPositionNotOwned", err)
	}
	if _, err := l.ClosePosition(ctx, CloseInput{UserID: "alice", PositionID: 777}); err != ErrPositionNotFound {
		t.Fatalf("err=%v want ErrPositionNotFound", err)
	}
	over := CloseInput{UserID: "alice", PositionID: id, SharesToClose: decimal.NewFromInt(100)}
	if _, err := l.ClosePosition(ctx, over); err != ErrCloseExceedsRemaining {
		t.Fatalf("err=%v want ErrCloseExceedsRemaining", err)
	}
	neg := CloseInput{UserID: "alice", PositionID: id, SharesToClose: decimal.NewFromInt(-1)}
	if _, err := l.ClosePosition(ctx, neg); err != ErrInvalidAmount {
		t.Fatalf("err=%v want ErrInvalidAmount", err)
	}

	if _, err := l.ClosePosition(ctx, CloseInput{UserID: "alice", PositionID: id}); err != nil {
		t.Fatalf("full close: %v", err)
	}
	if _, err := l.ClosePosition(ctx, CloseInput{UserID: "alice", PositionID: id}); err != ErrPositionNotOpen {
		t.Fatalf("err=%v want ErrPositionNotOpen", err)
	}
}

func TestClosePositionRollsBackOnStoreFailure(t *testing.T) {
	store := &storeStub{}
	l := newTestLedger(t, risk.Limits{}, store)
	ctx := context.Background()

	res, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	store.failUpdatePosition = true
	_, err = l.ClosePosition(ctx, CloseInput{UserID: "alice", PositionID: res.Position.ID})
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "close" {
		t.Fatalf("err=%v want PersistenceError{close}", err)
	}

	view := l.Portfolio("alice")
	if !view.Balance.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("balance=%s want 950", view.Balance)
	}
	if len(view.Positions) != 1 || view.Positions[0].Status != StatusOpen {
		t.Fatalf("position mutated by failed close: %+v", view.Positions)
	}
	if !view.Positions[0].SharesRemaining.Equal(res.Position.Shares) {
		t.Fatalf("sharesRemaining=%s", view.Positions[0].SharesRemaining)
	}
}

func TestSettleMatchLifecycle(t *testing.T) {
	l := newTestLedger(t, risk.Limits{}, nil)
	ctx := context.Background()

	winner, err := l.PlaceOrder(ctx, buyInput("alice", "Mumbai Indians", market.MatchWinner, 50))
	if err != nil {
		t.Fatalf("alice: %v", err)
	}
	if _, err := l.PlaceOrder(ctx, buyInput("bob", "Chennai Super Kings", market.MatchWinner, 50)); err != nil {
		t.Fatalf("bob: %v", err)
	}
	noSide := buyInput("carol", "Mumbai Indians", market.MatchWinner, 50)
	noSide.Side = SideNo
	if _, err := l.PlaceOrder(ctx, noSide); err != nil {
		t.Fatalf("carol: %v", err)
	}

	resolve := func(p Position) string {
		switch {
		case p.OptionLabel == "Mumbai Indians" && p.Side == SideYes:
			return OutcomeWin
		case p.OptionLabel == "Mumbai Indians" && p.Side == SideNo:
			return OutcomeLose
		}
		return "" // undecidable rule output must fall back to void
	}
	report, err := l.SettleMatch(42, "Mumbai Indians", "MI", resolve)
	if err != nil {
		t.Fatalf("SettleMatch: %v", err)
	}
	if len(report.Positions) != 3 {
		t.Fatalf("positions=%d want 3", len(report.Positions))
	}

	wantTotal := winner.Position.Shares.Add(decimal.NewFromInt(50))
	if !report.TotalPayout.Equal(wantTotal) {
		t.Fatalf("totalPayout=%s want %s", report.TotalPayout, wantTotal)
	}
	if got := l.Portfolio("alice").Balance; !got.Equal(decimal.NewFromFloat(1026.92)) {
		t.Fatalf("alice balance=%s want 1026.92", got)
	}
	if got := l.Portfolio("bob").Balance; !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("bob balance=%s want 1000 (void refund)", got)
	}
	if got := l.Portfolio("carol").Balance; !got.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("carol balance=%s want 950", got)
	}
	for _, p := range report.Positions {
		if p.Status != StatusSettled || !p.SharesRemaining.IsZero() || p.SettledAt == nil {
			t.Fatalf("position not settled clean: %+v", p)
		}
	}

	if tape := l.OrdersByMatch(42); len(tape) != 0 {
		t.Fatalf("tape survived settlement: %d", len(tape))
	}
	if _, err := l.PlaceOrder(ctx, buyInput("dave", "Mumbai Indians", market.MatchWinner, 10)); err != ErrMatchSettled {
		t.Fatalf("err=%v want ErrMatchSettled", err)
	}
	if _, err := l.SettleMatch(42, "Mumbai Indians", "MI", resolve); err != ErrMatchSettled {
		t.Fatalf("repeat err=%v want ErrMatchSettled", err)
	}

	stats := l.Stats()
	if stats.SettledMatches != 1 || stats.OpenPositions != 0 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestHydrateRestoresLedger(t *testing.T) {
	opened := time.Now().UTC().Add(-time.Hour)
	store := &storeStub{
		wallets: []models.Wallet{{
			UserID:  "alice",
			Balance: decimal.NewFromFloat(812.5),
		}},
		positions: []models.Position{{
			ID:              9,
			UserID:          "alice",
			MatchID:         42,
			MarketID:        market.MatchWinner,
			MarketTitle:     "Match Winner",
			OptionLabel:     "Mumbai Indians",
			Side:            SideYes,
			Price:           65,
			Shares:          decimal.NewFromFloat(76.92),
			SharesRemaining: decimal.NewFromFloat(76.92),
			Stake:           decimal.NewFromInt(50),
			StakeRemaining:  decimal.NewFromInt(50),
			Status:          StatusOpen,
			OpenedAt:        opened,
		}},
		maxID: 9,
	}
	l := newTestLedger(t, risk.Limits{}, store)

	if err := l.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	u, ok := l.UserSnapshot("alice")
	if !ok || !u.Balance.Equal(decimal.NewFromFloat(812.5)) {
		t.Fatalf("wallet not restored: %+v", u)
	}
	view := l.Portfolio("alice")
	if len(view.Positions) != 1 || !view.Exposure.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("positions not restored: %+v", view)
	}

	res, err := l.PlaceOrder(context.Background(), buyInput("bob", "Mumbai Indians", market.MatchWinner, 20))
	if err != nil {
		t.Fatalf("PlaceOrder after hydrate: %v", err)
	}
	if res.Position.ID != 10 {
		t.Fatalf("position id=%d want 10, sequence must resume past stored rows", res.Position.ID)
	}
}
