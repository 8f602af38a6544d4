// Package feed pulls live cricket data from the upstream score and odds
// providers. Providers hand back raw records; reconciliation and pricing
// happen downstream.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// MatchRecord is one fixture as the score provider reports it. Team names
// are raw feed strings, possibly carrying a bracketed short code. Some
// score endpoints quote their own match-winner odds; those ride along as
// an optional pair.
type MatchRecord struct {
	ExternalID string
	TeamA      string
	TeamB      string
	ScoreA     normalize.Score
	ScoreB     normalize.Score
	StatusText string
	Live       bool
	Category   string
	OddsA      float64
	OddsB      float64
	HasOdds    bool
}

// Runner is one selection inside a raw odds market.
type Runner struct {
	Name string
	Odds float64
}

// RawMarket is an unclassified secondary market exactly as an odds provider
// names it.
type RawMarket struct {
	Name    string
	Runners []Runner
}

// OddsPair is one fixture quote from an odds provider: raw team names, the
// two match-winner odds values, and any secondary markets the provider
// carries for the fixture.
type OddsPair struct {
	TeamA    string
	TeamB    string
	OddsA    float64
	OddsB    float64
	Provider string
	Markets  []RawMarket
}

// ScoreSource lists live fixtures with scores.
type ScoreSource interface {
	Name() string
	Matches(ctx context.Context) ([]MatchRecord, error)
	Health() Health
}

// OddsSource quotes match-winner odds, optionally with secondary markets.
type OddsSource interface {
	Name() string
	Odds(ctx context.Context) ([]OddsPair, error)
	Health() Health
}

// Health is the last-poll status a provider reports for the health endpoint.
type Health struct {
	Status     string     `json:"status"`
	LastPollAt *time.Time `json:"lastPollAt,omitempty"`
	LastError  *string    `json:"lastError,omitempty"`
}

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthIdle     = "idle"
)

// APIError reports a non-2xx upstream response.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feed: %s unexpected status %d: %s", e.Provider, e.Status, e.Body)
}
