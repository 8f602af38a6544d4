// Package settle resolves match outcomes into per-position win/lose/void
// decisions. It owns the winner-resolution heuristics (explicit admin picks
// and free-text status inference) and the per-market rules; the ledger owns
// the balance mutations.
package settle

import (
	"strconv"
	"strings"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// Matching thresholds. A label maps to a team when it overlaps the full name
// by at least 0.5 or the short code by at least 0.7. Status-text inference
// additionally demands one team clear the other by statusMargin, because a
// result line mentions both teams more often than not.
const (
	fullThreshold  = 0.5
	shortThreshold = 0.7
	statusMargin   = 0.3
)

// Winner identifies the side that won a match.
type Winner struct {
	Side  string // "A" or "B"
	Label string // full team name
	Code  string // short code
}

// ResolveWinner determines the winning team. An explicit label (an admin
// pick or a provider result field) is matched against both teams; with no
// explicit label the match's free-text status is used, accepting only a
// "X won ..." line where one team's overlap beats the other's by a clear
// margin. Returns false when no winner can be determined, which callers
// must treat as "retry later", never as a coin flip.
func ResolveWinner(m market.Match, explicit string) (Winner, bool) {
	if strings.TrimSpace(explicit) != "" {
		side, ok := MapTeam(m, explicit)
		if !ok {
			return Winner{}, false
		}
		return winnerFor(m, side), true
	}

	prefix, ok := normalize.WonPrefix(m.StatusText)
	if !ok {
		return Winner{}, false
	}
	oa := teamOverlap(prefix, m.TeamAFull, m.TeamAShort)
	ob := teamOverlap(prefix, m.TeamBFull, m.TeamBShort)
	switch {
	case oa >= ob+statusMargin:
		return winnerFor(m, "A"), true
	case ob >= oa+statusMargin:
		return winnerFor(m, "B"), true
	}
	return Winner{}, false
}

// MapTeam maps a free-form label onto team "A" or "B". Labels that clear
// neither team's threshold are ambiguous and report false.
func MapTeam(m market.Match, label string) (string, bool) {
	aHit := hits(label, m.TeamAFull, m.TeamAShort)
	bHit := hits(label, m.TeamBFull, m.TeamBShort)
	if !aHit && !bHit {
		return "", false
	}
	if aHit && bHit {
		// Both clear the bar ("Mumbai" vs "Mumbai Indians Women"); take
		// the stronger overlap.
		if teamOverlap(label, m.TeamAFull, m.TeamAShort) >= teamOverlap(label, m.TeamBFull, m.TeamBShort) {
			return "A", true
		}
		return "B", true
	}
	if aHit {
		return "A", true
	}
	return "B", true
}

// OutcomeFunc returns the per-position resolver the ledger applies during
// settlement. The returned function is pure: it inspects one open position
// and names its outcome.
func OutcomeFunc(m market.Match, w Winner) func(ledger.Position) string {
	return func(p ledger.Position) string {
		switch p.MarketID {
		case market.MatchWinner:
			return matchWinnerOutcome(m, w, p)
		case market.TotalWickets:
			return wicketsOutcome(m, p)
		case market.OddEvenRuns:
			return oddEvenOutcome(m, p)
		}
		// Toss, powerplay, ten-over, top-batter and twenty-over markets
		// have no ground-truth feed; every position refunds.
		return ledger.OutcomeVoid
	}
}

func matchWinnerOutcome(m market.Match, w Winner, p ledger.Position) string {
	side, ok := MapTeam(m, p.OptionLabel)
	if !ok {
		return ledger.OutcomeVoid
	}
	optionWins := side == w.Side
	return sided(p.Side, optionWins)
}

func wicketsOutcome(m market.Match, p ledger.Position) string {
	if !m.ScoreA.HasScore {
		return ledger.OutcomeVoid
	}
	dir, line, ok := parseOverUnder(p.OptionLabel)
	if !ok {
		return ledger.OutcomeVoid
	}
	actual := float64(m.ScoreA.Wickets)
	if actual == line {
		// Lines are half-integers so this should not happen; refund
		// rather than guess if a provider pinned a whole number.
		return ledger.OutcomeVoid
	}
	optionWins := (actual > line) == (dir == "over")
	return sided(p.Side, optionWins)
}

func oddEvenOutcome(m market.Match, p ledger.Position) string {
	if !m.ScoreA.HasScore || !m.ScoreB.HasScore {
		return ledger.OutcomeVoid
	}
	odd := (m.ScoreA.Runs+m.ScoreB.Runs)%2 == 1
	var optionWins bool
	switch normalize.Name(p.OptionLabel) {
	case "odd":
		optionWins = odd
	case "even":
		optionWins = !odd
	default:
		return ledger.OutcomeVoid
	}
	return sided(p.Side, optionWins)
}

// sided applies the universal yes/no inversion: a yes side wins with the
// option, a no side wins against it.
func sided(side string, optionWins bool) string {
	if (side == ledger.SideYes) == optionWins {
		return ledger.OutcomeWin
	}
	return ledger.OutcomeLose
}

// parseOverUnder reads an "Over 6.5" / "under 46.5" option label.
func parseOverUnder(label string) (string, float64, bool) {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) < 2 {
		return "", 0, false
	}
	dir := fields[0]
	if dir != "over" && dir != "under" {
		return "", 0, false
	}
	line, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return "", 0, false
	}
	return dir, line, true
}

func hits(label, full, short string) bool {
	if normalize.Overlap(label, full) >= fullThreshold {
		return true
	}
	return short != "" && normalize.Overlap(label, short) >= shortThreshold
}

func teamOverlap(text, full, short string) float64 {
	o := normalize.Overlap(text, full)
	if short != "" {
		if s := normalize.Overlap(text, short); s > o {
			o = s
		}
	}
	return o
}

func winnerFor(m market.Match, side string) Winner {
	if side == "A" {
		return Winner{Side: "A", Label: m.TeamAFull, Code: m.TeamAShort}
	}
	return Winner{Side: "B", Label: m.TeamBFull, Code: m.TeamBShort}
}
