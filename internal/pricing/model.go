// Package pricing models a match-winner probability from live score state.
// It prices only the matches no odds provider quoted this cycle; anything
// with a reconciled external quote bypasses this entirely.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// format holds the assumed innings length and par first-innings score used
// to project unfinished innings.
type format struct {
	totalOvers float64
	par        float64
}

var (
	formatT10   = format{totalOvers: 10, par: 95}
	formatT20   = format{totalOvers: 20, par: 165}
	formatODI   = format{totalOvers: 50, par: 285}
	formatOther = format{totalOvers: 40, par: 250}
)

// Model prices a match from whatever score context the feed carries. It is
// stateless; the only per-match memory is the deterministic seed bias, so
// the same inputs always price the same.
type Model struct{}

// Price returns the integer price pair for the side listed first. Prices
// sum to 100 and stay inside [1,99].
func (Model) Price(m market.Match) (int, int) {
	p := WinProbability(m)
	priceA := int(math.Round(p * 100))
	if priceA < 1 {
		priceA = 1
	}
	if priceA > 99 {
		priceA = 99
	}
	return priceA, 100 - priceA
}

// WinProbability estimates the probability of team A winning.
//
// The estimate starts at even money plus a small per-match seed bias so a
// page of unpriced matches does not render as a wall of 50s. Score context
// then shifts it: the run and wicket differential always count, and during
// a live innings either the chase equation (required versus current run
// rate, wickets in hand) or a first-innings projection against the format
// par score is blended in. An explicit "X won by ..." status overrides
// everything.
func WinProbability(m market.Match) float64 {
	if w := statusWinner(m); w != 0 {
		if w > 0 {
			return 0.99
		}
		return 0.01
	}

	p := 0.5 + seedBias(m.ID)

	if m.ScoreA.HasScore || m.ScoreB.HasScore {
		runDiff := float64(m.ScoreA.Runs - m.ScoreB.Runs)
		wicketEdge := float64(m.ScoreB.Wickets - m.ScoreA.Wickets)
		p += math.Tanh(runDiff/45)*0.2 + math.Tanh(wicketEdge/3)*0.1
	}

	if m.IsLive {
		p += liveAdjustment(m)
	}

	return clampProb(p)
}

// liveAdjustment returns the in-play probability shift for team A.
func liveAdjustment(m market.Match) float64 {
	f := matchFormat(m)
	switch {
	case m.ScoreA.HasScore && m.ScoreB.HasScore:
		// Both sides have batted, so one of them is mid-chase. The side
		// still accumulating overs is the chaser.
		chaser, setter, chaserIsA := m.ScoreB, m.ScoreA, false
		if m.ScoreA.Overs < m.ScoreB.Overs {
			chaser, setter, chaserIsA = m.ScoreA, m.ScoreB, true
		}
		if chaser.Overs <= 0.2 {
			return 0
		}
		delta := chaseEdge(chaser, setter, f)
		if chaserIsA {
			return delta
		}
		return -delta
	case m.ScoreA.HasScore && m.ScoreA.Overs > 0.5:
		return projectionEdge(m.ScoreA, f)
	case m.ScoreB.HasScore && m.ScoreB.Overs > 0.5:
		return -projectionEdge(m.ScoreB, f)
	}
	return 0
}

// chaseEdge scores a second-innings chase from the chaser's side: positive
// means the chase is on track.
func chaseEdge(chaser, setter normalize.Score, f format) float64 {
	remaining := f.totalOvers - chaser.Overs
	if remaining <= 0 {
		return 0
	}
	target := float64(setter.Runs + 1)
	required := (target - float64(chaser.Runs)) / remaining
	current := float64(chaser.Runs) / chaser.Overs
	rateEdge := current - required
	return math.Tanh(rateEdge/2.4)*0.28 - math.Tanh((float64(chaser.Wickets)-4)/2.4)*0.14
}

// projectionEdge scores a first innings in progress by projecting the final
// total against the format par.
func projectionEdge(s normalize.Score, f format) float64 {
	projected := float64(s.Runs) / s.Overs * f.totalOvers
	return math.Tanh((projected-f.par)/40)*0.16 - math.Tanh((float64(s.Wickets)-4)/2.4)*0.08
}

// statusWinner reads a decided result out of the free-text status. Returns
// +1 for team A, -1 for team B, 0 when the status names no winner.
func statusWinner(m market.Match) int {
	prefix, ok := normalize.WonPrefix(m.StatusText)
	if !ok {
		return 0
	}
	oa := normalize.Overlap(prefix, m.TeamAFull)
	ob := normalize.Overlap(prefix, m.TeamBFull)
	switch {
	case oa >= 0.3 && oa > ob:
		return 1
	case ob >= 0.3 && ob > oa:
		return -1
	}
	return 0
}

// seedBias spreads unpriced matches across [-0.024, +0.024] so they do not
// all sit at exactly 50.
func seedBias(matchID int64) float64 {
	h := market.Seed(strconv.FormatInt(matchID, 10))
	return float64(int(h%9)-4) * 0.006
}

// matchFormat infers the playing format from the category and status text.
func matchFormat(m market.Match) format {
	s := strings.ToLower(m.Category + " " + m.StatusText)
	switch {
	case strings.Contains(s, "t10"):
		return formatT10
	case strings.Contains(s, "t20") || strings.Contains(s, "twenty20"):
		return formatT20
	case strings.Contains(s, "odi") || strings.Contains(s, "one day"):
		return formatODI
	}
	return formatOther
}

func clampProb(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.99 {
		return 0.99
	}
	return p
}
