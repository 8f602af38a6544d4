package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position statuses.
const (
	StatusOpen    = "open"
	StatusClosed  = "closed"
	StatusSettled = "settled"
)

// Settlement outcomes.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomeVoid = "void"
)

// Order sides.
const (
	SideYes = "yes"
	SideNo  = "no"
)

// User is one virtual-currency wallet. Balances are decimals end to end;
// the held balance is reserved out-of-band (withdrawals, promotions) and
// only reduces what an order can spend.
type User struct {
	ID          string          `json:"id"`
	Balance     decimal.Decimal `json:"balance"`
	HeldBalance decimal.Decimal `json:"heldBalance"`
	Suspended   bool            `json:"suspended"`
	DisplayName string          `json:"displayName,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Position is one user's open or resolved stake on a market option.
type Position struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"userId"`
	MatchID         int64           `json:"matchId"`
	MarketID        int             `json:"marketId"`
	MarketTitle     string          `json:"marketTitle"`
	OptionLabel     string          `json:"optionLabel"`
	Side            string          `json:"side"`
	Price           int             `json:"price"`
	Shares          decimal.Decimal `json:"shares"`
	SharesRemaining decimal.Decimal `json:"sharesRemaining"`
	Stake           decimal.Decimal `json:"stake"`
	StakeRemaining  decimal.Decimal `json:"stakeRemaining"`
	Status          string          `json:"status"`
	Outcome         string          `json:"outcome,omitempty"`
	Payout          decimal.Decimal `json:"payout"`
	OpenedAt        time.Time       `json:"openedAt"`
	ClosedAt        *time.Time      `json:"closedAt,omitempty"`
	SettledAt       *time.Time      `json:"settledAt,omitempty"`
}

// Order is one append-only trade tape entry.
type Order struct {
	Ref         string          `json:"ref"`
	UserID      string          `json:"userId"`
	MatchID     int64           `json:"matchId"`
	MarketID    int             `json:"marketId"`
	OptionLabel string          `json:"optionLabel"`
	Side        string          `json:"side"`
	Price       int             `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Shares      decimal.Decimal `json:"shares"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PlaceOrderInput is the order placement contract.
type PlaceOrderInput struct {
	UserID      string
	MatchID     int64
	MarketID    int
	OptionLabel string
	Side        string
	Amount      decimal.Decimal
}

// TradeResult reports a filled order.
type TradeResult struct {
	Position Position        `json:"position"`
	Order    Order           `json:"order"`
	Balance  decimal.Decimal `json:"balance"`
}

// CloseInput is the position close contract. SharesToClose of zero closes
// everything remaining.
type CloseInput struct {
	UserID        string
	PositionID    int64
	SharesToClose decimal.Decimal
}

// CloseResult reports a (partial) close.
type CloseResult struct {
	Position   Position        `json:"position"`
	CloseValue decimal.Decimal `json:"closeValue"`
	PnL        decimal.Decimal `json:"pnl"`
	Balance    decimal.Decimal `json:"balance"`
}

// PortfolioView is the per-user snapshot handed to the API and the push
// hub. Exposure is the summed stakeRemaining of open positions.
type PortfolioView struct {
	UserID    string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	Held      decimal.Decimal `json:"heldBalance"`
	Exposure  decimal.Decimal `json:"exposure"`
	Suspended bool            `json:"suspended"`
	Positions []Position      `json:"positions"`
}

// SettlementReport aggregates one match settlement.
type SettlementReport struct {
	MatchID     int64                      `json:"matchId"`
	WinnerLabel string                     `json:"winnerLabel"`
	WinnerCode  string                     `json:"winnerCode"`
	Positions   []Position                 `json:"positions"`
	Balances    map[string]decimal.Decimal `json:"balances"`
	TotalPayout decimal.Decimal            `json:"totalPayout"`
	SettledAt   time.Time                  `json:"settledAt"`
}

// Stats is the ledger state summary for the health endpoint.
type Stats struct {
	Users          int `json:"users"`
	OpenPositions  int `json:"openPositions"`
	SettledMatches int `json:"settledMatches"`
}
