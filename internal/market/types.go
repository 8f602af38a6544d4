// Package market holds the live read-model the engine publishes: matches,
// their fixed market list, pinned over/under lines and recent price history.
// Everything here is in-memory and rebuilt every refresh cycle.
package market

import (
	"time"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// Fixed market types. Every match carries all eight.
const (
	MatchWinner    = 1
	TossWinner     = 2
	PowerplayRuns  = 3
	TenOverRuns    = 4
	TopBatter      = 5
	TotalWickets   = 6
	TwentyOverRuns = 7
	OddEvenRuns    = 8
)

// Match is one live or recently-seen fixture with its headline price.
// PriceA and PriceB are integers in [1,99] and always sum to 100.
type Match struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"externalId"`
	TeamAFull  string          `json:"teamAFull"`
	TeamAShort string          `json:"teamAShort"`
	TeamBFull  string          `json:"teamBFull"`
	TeamBShort string          `json:"teamBShort"`
	ScoreA     normalize.Score `json:"scoreA"`
	ScoreB     normalize.Score `json:"scoreB"`
	IsLive     bool            `json:"isLive"`
	StatusText string          `json:"statusText"`
	Category   string          `json:"category"`
	PriceA     int             `json:"priceA"`
	PriceB     int             `json:"priceB"`
	// PriceSource names the odds provider that priced the match, or
	// "model" when the fallback pricing engine produced the price.
	PriceSource string    `json:"priceSource"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Option is one tradable side of a market. Price is the YES price in [1,99].
type Option struct {
	Label string `json:"label"`
	Price int    `json:"price"`
	Type  string `json:"type"`
}

// Market is one of the eight fixed per-match markets.
type Market struct {
	ID      int      `json:"id"`
	MatchID int64    `json:"matchId"`
	Title   string   `json:"title"`
	Options []Option `json:"options"`
	// Line is the pinned over/under threshold, zero for markets without one.
	Line float64 `json:"line,omitempty"`
	// Confidence reports how reliably an external feed market was mapped
	// to this type; synthesized markets carry zero.
	Confidence float64 `json:"confidence,omitempty"`
	Provider   string  `json:"provider,omitempty"`
}

// ExternalQuote is a reconciled headline price for the primary market.
type ExternalQuote struct {
	PriceA   int
	PriceB   int
	Provider string
}

// SecondaryQuote is a classified provider market mapped onto one of the
// seven fixed secondary types.
type SecondaryQuote struct {
	MarketID   int
	OptionA    Option
	OptionB    Option
	Line       float64
	HasLine    bool
	Confidence float64
	Provider   string
}

// PricePoint is one retained sample of a match's headline price.
type PricePoint struct {
	At     time.Time `json:"at"`
	PriceA int       `json:"priceA"`
	PriceB int       `json:"priceB"`
}

// marketTitle returns the display title for a market type.
func marketTitle(marketID int) string {
	switch marketID {
	case MatchWinner:
		return "Match Winner"
	case TossWinner:
		return "Toss Winner"
	case PowerplayRuns:
		return "Powerplay Runs"
	case TenOverRuns:
		return "10 Over Runs"
	case TopBatter:
		return "Top Batter 50+"
	case TotalWickets:
		return "Total Wickets"
	case TwentyOverRuns:
		return "20 Over Runs"
	case OddEvenRuns:
		return "Odd/Even Total Runs"
	}
	return ""
}

// DefaultLine is the fallback over/under line used when no provider supplies
// one. Markets without a numeric line report ok=false.
func DefaultLine(marketID int) (float64, bool) {
	switch marketID {
	case PowerplayRuns:
		return 46.5, true
	case TenOverRuns:
		return 78.5, true
	case TotalWickets:
		return 6.5, true
	case TwentyOverRuns:
		return 156.5, true
	}
	return 0, false
}

// IsOverUnder reports whether a market type trades against a numeric line.
func IsOverUnder(marketID int) bool {
	_, ok := DefaultLine(marketID)
	return ok
}
