// Package ledger owns the engine's money: wallets, open positions, the
// order tape and match settlement application. Everything lives in memory
// behind one mutation mutex; the durable store is an optional mirror that
// order placement and close write through with rollback, and settlement
// writes best-effort.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/push"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/repository"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/risk"
)

// tapeRetention caps the per-match order tape.
const tapeRetention = 500

// optionOverlapMin is the fuzzy floor for resolving an option label against
// a market's options when the exact label does not match.
const optionOverlapMin = 0.7

// MarketReader is the published snapshot the ledger trades against.
// *market.Book satisfies it.
type MarketReader interface {
	Match(id int64) (market.Match, bool)
	Markets(id int64) ([]market.Market, bool)
}

// Notifier delivers engine events to connected clients. *push.Hub satisfies
// it; nil drops events.
type Notifier interface {
	Broadcast(event string, data any)
	ToUser(userID string, event string, data any)
}

// Ledger is the single owner of wallet and position state. One mutex
// serializes every mutating operation, which keeps balance and exposure
// checks honest at this engine's trade cadence.
type Ledger struct {
	Controls *risk.Manager
	Markets  MarketReader
	Repo     repository.Repository
	Hub      Notifier
	Logger   *zap.Logger

	mu             sync.Mutex
	users          map[string]*User
	positions      map[int64]*Position
	orders         map[int64][]Order
	settled        map[int64]struct{}
	lastPositionID int64
}

func New(controls *risk.Manager, markets MarketReader, repo repository.Repository, hub Notifier, logger *zap.Logger) *Ledger {
	return &Ledger{
		Controls:  controls,
		Markets:   markets,
		Repo:      repo,
		Hub:       hub,
		Logger:    logger,
		users:     make(map[string]*User),
		positions: make(map[int64]*Position),
		orders:    make(map[int64][]Order),
		settled:   make(map[int64]struct{}),
	}
}

// PlaceOrder validates, prices and fills one order. Validation is
// fail-fast in a fixed sequence; nothing mutates until every check passes.
// The in-memory fill is rolled back in full if the durable write fails.
func (l *Ledger) PlaceOrder(ctx context.Context, in PlaceOrderInput) (TradeResult, error) {
	result, view, err := l.placeOrder(ctx, in)
	if err != nil {
		return TradeResult{}, err
	}
	l.notifyUser(in.UserID, push.EventTradeConfirmed, result)
	l.notifyUser(in.UserID, push.EventPortfolioUpdate, view)
	return result, nil
}

func (l *Ledger) placeOrder(ctx context.Context, in PlaceOrderInput) (TradeResult, PortfolioView, error) {
	if in.Side != SideYes && in.Side != SideNo {
		return TradeResult{}, PortfolioView{}, ErrInvalidSide
	}
	if in.MatchID <= 0 {
		return TradeResult{}, PortfolioView{}, ErrInvalidMatchID
	}
	if in.MarketID <= 0 {
		return TradeResult{}, PortfolioView{}, ErrInvalidMarketID
	}
	if strings.TrimSpace(in.OptionLabel) == "" {
		return TradeResult{}, PortfolioView{}, ErrInvalidOption
	}
	if !in.Amount.IsPositive() {
		return TradeResult{}, PortfolioView{}, ErrInvalidAmount
	}
	if strings.TrimSpace(in.UserID) == "" {
		return TradeResult{}, PortfolioView{}, ErrInvalidUser
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	user := l.ensureUserLocked(ctx, in.UserID)
	if user.Suspended {
		return TradeResult{}, PortfolioView{}, ErrUserSuspended
	}
	if _, ok := l.Markets.Match(in.MatchID); !ok {
		return TradeResult{}, PortfolioView{}, ErrMatchNotFound
	}
	if _, done := l.settled[in.MatchID]; done {
		return TradeResult{}, PortfolioView{}, ErrMatchSettled
	}
	if _, suspended := l.Controls.MatchSuspension(in.MatchID); suspended {
		return TradeResult{}, PortfolioView{}, ErrMarketSuspended
	}

	mk, opt, err := l.resolveOption(in.MatchID, in.MarketID, in.OptionLabel)
	if err != nil {
		return TradeResult{}, PortfolioView{}, err
	}
	price := opt.Price
	if in.Side == SideNo {
		price = 100 - price
	}

	shares := in.Amount.Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(price))).Round(2)
	if !shares.IsPositive() {
		return TradeResult{}, PortfolioView{}, ErrStakeTooSmall
	}
	available := user.Balance.Sub(user.HeldBalance)
	if in.Amount.GreaterThan(available) {
		return TradeResult{}, PortfolioView{}, ErrInsufficientBalance
	}
	if risk.ExceedsUserCap(l.Controls.Limits, l.userExposureLocked(in.UserID), in.Amount) {
		return TradeResult{}, PortfolioView{}, ErrUserExposureCap
	}
	if risk.ExceedsMatchCap(l.Controls.Limits, l.matchExposureLocked(in.MatchID), in.Amount) {
		return TradeResult{}, PortfolioView{}, ErrMatchExposureCap
	}

	// Apply the fill, then write through; any store failure inverts the
	// whole delta before the caller sees the error.
	now := time.Now().UTC()
	prevBalance := user.Balance
	prevLastID := l.lastPositionID
	prevTape := l.orders[in.MatchID]

	l.lastPositionID++
	pos := &Position{
		ID:              l.lastPositionID,
		UserID:          in.UserID,
		MatchID:         in.MatchID,
		MarketID:        in.MarketID,
		MarketTitle:     mk.Title,
		OptionLabel:     opt.Label,
		Side:            in.Side,
		Price:           price,
		Shares:          shares,
		SharesRemaining: shares,
		Stake:           in.Amount,
		StakeRemaining:  in.Amount,
		Status:          StatusOpen,
		Payout:          decimal.Zero,
		OpenedAt:        now,
	}
	order := Order{
		Ref:         uuid.New().String(),
		UserID:      in.UserID,
		MatchID:     in.MatchID,
		MarketID:    in.MarketID,
		OptionLabel: opt.Label,
		Side:        in.Side,
		Price:       price,
		Amount:      in.Amount,
		Shares:      shares,
		CreatedAt:   now,
	}

	user.Balance = user.Balance.Sub(in.Amount)
	l.positions[pos.ID] = pos
	l.appendOrderLocked(order)

	if err := l.persistFill(ctx, user, pos, order); err != nil {
		user.Balance = prevBalance
		delete(l.positions, pos.ID)
		l.lastPositionID = prevLastID
		l.orders[in.MatchID] = prevTape
		if l.Logger != nil {
			l.Logger.Error("order rolled back, store write failed",
				zap.String("user_id", in.UserID),
				zap.Int64("match_id", in.MatchID),
				zap.Error(err))
		}
		return TradeResult{}, PortfolioView{}, &PersistenceError{Op: "order", Err: err}
	}

	result := TradeResult{Position: *pos, Order: order, Balance: user.Balance}
	return result, l.portfolioLocked(user), nil
}

func (l *Ledger) persistFill(ctx context.Context, user *User, pos *Position, order Order) error {
	if l.Repo == nil {
		return nil
	}
	if err := l.Repo.InsertOrder(ctx, orderRow(order)); err != nil {
		return err
	}
	if err := l.Repo.InsertPosition(ctx, PositionRow(*pos)); err != nil {
		return err
	}
	return l.Repo.SaveWallet(ctx, WalletRow(*user))
}

// ClosePosition sells sharesToClose back at the option's current price.
// Suspended users may close; suspension gates entry only.
func (l *Ledger) ClosePosition(ctx context.Context, in CloseInput) (CloseResult, error) {
	result, view, err := l.closePosition(ctx, in)
	if err != nil {
		return CloseResult{}, err
	}
	l.notifyUser(in.UserID, push.EventPortfolioUpdate, view)
	return result, nil
}

func (l *Ledger) closePosition(ctx context.Context, in CloseInput) (CloseResult, PortfolioView, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return CloseResult{}, PortfolioView{}, ErrInvalidUser
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[in.PositionID]
	if !ok {
		return CloseResult{}, PortfolioView{}, ErrPositionNotFound
	}
	if pos.UserID != in.UserID {
		return CloseResult{}, PortfolioView{}, ErrPositionNotOwned
	}
	if pos.Status != StatusOpen {
		return CloseResult{}, PortfolioView{}, ErrPositionNotOpen
	}

	toClose := in.SharesToClose
	if toClose.IsZero() {
		toClose = pos.SharesRemaining
	}
	if !toClose.IsPositive() {
		return CloseResult{}, PortfolioView{}, ErrInvalidAmount
	}
	if toClose.GreaterThan(pos.SharesRemaining) {
		return CloseResult{}, PortfolioView{}, ErrCloseExceedsRemaining
	}

	if _, ok := l.Markets.Match(pos.MatchID); !ok {
		return CloseResult{}, PortfolioView{}, ErrMatchNotFound
	}
	_, opt, err := l.resolveOption(pos.MatchID, pos.MarketID, pos.OptionLabel)
	if err != nil {
		return CloseResult{}, PortfolioView{}, err
	}
	price := opt.Price
	if pos.Side == SideNo {
		price = 100 - price
	}

	closeValue := toClose.Mul(decimal.NewFromInt(int64(price))).Div(decimal.NewFromInt(100)).Round(2)
	proportionalStake := pos.StakeRemaining.Mul(toClose).Div(pos.SharesRemaining).Round(2)
	pnl := closeValue.Sub(proportionalStake).Round(2)

	user := l.ensureUserLocked(ctx, in.UserID)
	prevBalance := user.Balance
	prevPos := *pos

	now := time.Now().UTC()
	user.Balance = user.Balance.Add(closeValue)
	pos.SharesRemaining = pos.SharesRemaining.Sub(toClose).Round(2)
	pos.StakeRemaining = pos.StakeRemaining.Sub(proportionalStake).Round(2)
	if pos.SharesRemaining.LessThanOrEqual(decimal.NewFromFloat(0.01)) {
		pos.Status = StatusClosed
		pos.ClosedAt = &now
	}

	if err := l.persistClose(ctx, user, pos); err != nil {
		user.Balance = prevBalance
		*pos = prevPos
		if l.Logger != nil {
			l.Logger.Error("close rolled back, store write failed",
				zap.String("user_id", in.UserID),
				zap.Int64("position_id", in.PositionID),
				zap.Error(err))
		}
		return CloseResult{}, PortfolioView{}, &PersistenceError{Op: "close", Err: err}
	}

	result := CloseResult{
		Position:   *pos,
		CloseValue: closeValue,
		PnL:        pnl,
		Balance:    user.Balance,
	}
	return result, l.portfolioLocked(user), nil
}

func (l *Ledger) persistClose(ctx context.Context, user *User, pos *Position) error {
	if l.Repo == nil {
		return nil
	}
	if err := l.Repo.UpdatePosition(ctx, PositionRow(*pos)); err != nil {
		return err
	}
	return l.Repo.SaveWallet(ctx, WalletRow(*user))
}

// SettleMatch resolves every open position on a match exactly once. The
// resolve callback classifies each position as win, lose or void; payouts
// follow from that (win pays sharesRemaining, void refunds stakeRemaining,
// lose pays nothing). The whole settlement is one atomic mutation; durable
// persistence is the caller's concern because an idempotent settlement can
// be reconciled later.
func (l *Ledger) SettleMatch(matchID int64, winnerLabel, winnerCode string, resolve func(Position) string) (SettlementReport, error) {
	if resolve == nil {
		return SettlementReport{}, fmt.Errorf("ledger: settle called without a resolve rule")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, done := l.settled[matchID]; done {
		return SettlementReport{}, ErrMatchSettled
	}

	open := make([]*Position, 0)
	for _, pos := range l.positions {
		if pos.MatchID == matchID && pos.Status == StatusOpen {
			open = append(open, pos)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })

	now := time.Now().UTC()
	report := SettlementReport{
		MatchID:     matchID,
		WinnerLabel: winnerLabel,
		WinnerCode:  winnerCode,
		Balances:    make(map[string]decimal.Decimal),
		TotalPayout: decimal.Zero,
		SettledAt:   now,
	}

	for _, pos := range open {
		outcome := resolve(*pos)
		var payout decimal.Decimal
		switch outcome {
		case OutcomeWin:
			payout = pos.SharesRemaining.Round(2)
		case OutcomeLose:
			payout = decimal.Zero
		default:
			// Anything a rule cannot decide refunds rather than guesses.
			outcome = OutcomeVoid
			payout = pos.StakeRemaining.Round(2)
		}

		pos.Status = StatusSettled
		pos.Outcome = outcome
		pos.Payout = payout
		pos.SettledAt = &now
		pos.SharesRemaining = decimal.Zero
		pos.StakeRemaining = decimal.Zero

		user := l.ensureUserLocked(context.Background(), pos.UserID)
		user.Balance = user.Balance.Add(payout)
		report.Balances[pos.UserID] = user.Balance
		report.TotalPayout = report.TotalPayout.Add(payout)
		report.Positions = append(report.Positions, *pos)
	}

	l.settled[matchID] = struct{}{}
	// The tape dies with the match.
	delete(l.orders, matchID)

	return report, nil
}

// MarkMatchSettled records an externally discovered settlement (a durable
// row from a previous process) so repeat attempts short-circuit in memory.
func (l *Ledger) MarkMatchSettled(matchID int64) {
	l.mu.Lock()
	l.settled[matchID] = struct{}{}
	l.mu.Unlock()
}

// IsMatchSettled reports whether this process has settled the match.
func (l *Ledger) IsMatchSettled(matchID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, done := l.settled[matchID]
	return done
}

// Portfolio returns the user's wallet and positions, creating the wallet
// with the starting balance on first sight.
func (l *Ledger) Portfolio(userID string) PortfolioView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.portfolioLocked(l.ensureUserLocked(context.Background(), userID))
}

// SetUserSuspended flips the user's trading suspension. The wallet write is
// best-effort; the in-memory flag is authoritative.
func (l *Ledger) SetUserSuspended(ctx context.Context, userID string, suspended bool) User {
	l.mu.Lock()
	user := l.ensureUserLocked(ctx, userID)
	user.Suspended = suspended
	snapshot := *user
	l.mu.Unlock()

	if l.Repo != nil {
		if err := l.Repo.SaveWallet(ctx, WalletRow(snapshot)); err != nil && l.Logger != nil {
			l.Logger.Warn("wallet suspension not persisted",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
	return snapshot
}

// UserSnapshot returns a copy of the wallet, if it exists.
func (l *Ledger) UserSnapshot(userID string) (User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.users[userID]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// OrdersByMatch returns the match's trade tape, newest last.
func (l *Ledger) OrdersByMatch(matchID int64) []Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Order(nil), l.orders[matchID]...)
}

// Stats summarizes ledger state for the health surface.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	open := 0
	for _, pos := range l.positions {
		if pos.Status == StatusOpen {
			open++
		}
	}
	return Stats{Users: len(l.users), OpenPositions: open, SettledMatches: len(l.settled)}
}

// Hydrate loads wallets and open positions from the durable store at boot
// and resumes the position id sequence past everything ever persisted.
func (l *Ledger) Hydrate(ctx context.Context) error {
	if l.Repo == nil {
		return nil
	}
	wallets, err := l.Repo.LoadWallets(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load wallets: %w", err)
	}
	positions, err := l.Repo.LoadOpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("ledger: load open positions: %w", err)
	}
	maxID, err := l.Repo.MaxPositionID(ctx)
	if err != nil {
		return fmt.Errorf("ledger: max position id: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, row := range wallets {
		u := userFromRow(row)
		l.users[u.ID] = &u
	}
	for _, row := range positions {
		p := positionFromRow(row)
		l.positions[p.ID] = &p
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	l.lastPositionID = maxID

	if l.Logger != nil {
		l.Logger.Info("ledger hydrated",
			zap.Int("wallets", len(wallets)),
			zap.Int("open_positions", len(positions)),
			zap.Int64("last_position_id", maxID))
	}
	return nil
}

// --- locked helpers ---------------------------------------------------------

func (l *Ledger) ensureUserLocked(ctx context.Context, userID string) *User {
	if u, ok := l.users[userID]; ok {
		return u
	}
	u := &User{
		ID:          userID,
		Balance:     l.Controls.Limits.StartingBalance,
		HeldBalance: decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}
	l.users[userID] = u
	if l.Repo != nil {
		if err := l.Repo.SaveWallet(ctx, WalletRow(*u)); err != nil && l.Logger != nil {
			l.Logger.Warn("new wallet not persisted", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return u
}

func (l *Ledger) userExposureLocked(userID string) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range l.positions {
		if pos.UserID == userID && pos.Status == StatusOpen {
			total = total.Add(pos.StakeRemaining)
		}
	}
	return total
}

func (l *Ledger) matchExposureLocked(matchID int64) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range l.positions {
		if pos.MatchID == matchID && pos.Status == StatusOpen {
			total = total.Add(pos.StakeRemaining)
		}
	}
	return total
}

func (l *Ledger) portfolioLocked(user *User) PortfolioView {
	view := PortfolioView{
		UserID:    user.ID,
		Balance:   user.Balance,
		Held:      user.HeldBalance,
		Exposure:  decimal.Zero,
		Suspended: user.Suspended,
	}
	for _, pos := range l.positions {
		if pos.UserID != user.ID {
			continue
		}
		view.Positions = append(view.Positions, *pos)
		if pos.Status == StatusOpen {
			view.Exposure = view.Exposure.Add(pos.StakeRemaining)
		}
	}
	sort.Slice(view.Positions, func(i, j int) bool { return view.Positions[i].ID > view.Positions[j].ID })
	return view
}

func (l *Ledger) appendOrderLocked(order Order) {
	tape := append(l.orders[order.MatchID], order)
	if over := len(tape) - tapeRetention; over > 0 {
		tape = append([]Order(nil), tape[over:]...)
	}
	l.orders[order.MatchID] = tape
}

// resolveOption finds the market and the option the label refers to.
// Exact label equality wins; otherwise the best token overlap at or above
// optionOverlapMin resolves, so "over 46.5" still finds "Over 46.5".
func (l *Ledger) resolveOption(matchID int64, marketID int, label string) (market.Market, market.Option, error) {
	markets, ok := l.Markets.Markets(matchID)
	if !ok {
		return market.Market{}, market.Option{}, ErrMarketNotFound
	}
	for _, mk := range markets {
		if mk.ID != marketID {
			continue
		}
		want := strings.ToLower(strings.TrimSpace(label))
		bestIdx, bestScore := -1, 0.0
		for i, opt := range mk.Options {
			if strings.ToLower(strings.TrimSpace(opt.Label)) == want {
				return mk, opt, nil
			}
			if score := normalize.Overlap(label, opt.Label); score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		if bestIdx >= 0 && bestScore >= optionOverlapMin {
			return mk, mk.Options[bestIdx], nil
		}
		return market.Market{}, market.Option{}, ErrOptionNotFound
	}
	return market.Market{}, market.Option{}, ErrMarketNotFound
}

func (l *Ledger) notifyUser(userID, event string, data any) {
	if l.Hub == nil {
		return
	}
	l.Hub.ToUser(userID, event, data)
}
