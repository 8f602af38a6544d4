package settle

import (
	"testing"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

func finishedMatch(status string) market.Match {
	return market.Match{
		ID:         1,
		TeamAFull:  "Mumbai Indians",
		TeamAShort: "MI",
		TeamBFull:  "Chennai Super Kings",
		TeamBShort: "CSK",
		ScoreA:     normalize.ParseScore("186/5 (20)"),
		ScoreB:     normalize.ParseScore("182/7 (20)"),
		StatusText: status,
	}
}

func pos(marketID int, label, side string) ledger.Position {
	return ledger.Position{MarketID: marketID, OptionLabel: label, Side: side}
}

func TestResolveWinnerExplicit(t *testing.T) {
	m := finishedMatch("")
	cases := []struct {
		explicit string
		side     string
		ok       bool
	}{
		{"Mumbai Indians", "A", true},
		{"mumbai indians", "A", true},
		{"CSK", "B", true},
		{"Chennai Super Kings", "B", true},
		{"Rajasthan Royals", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		w, ok := ResolveWinner(m, c.explicit)
		if ok != c.ok {
			t.Fatalf("ResolveWinner(%q) ok=%v want %v", c.explicit, ok, c.ok)
		}
		if ok && w.Side != c.side {
			t.Fatalf("ResolveWinner(%q) side=%q want %q", c.explicit, w.Side, c.side)
		}
	}
}

func TestResolveWinnerFromStatus(t *testing.T) {
	w, ok := ResolveWinner(finishedMatch("Mumbai Indians won by 4 runs"), "")
	if !ok || w.Side != "A" {
		t.Fatalf("status inference failed: ok=%v side=%q", ok, w.Side)
	}
	if w.Label != "Mumbai Indians" || w.Code != "MI" {
		t.Fatalf("winner identity=%q/%q", w.Label, w.Code)
	}

	// A status that mentions both teams equally must not pick a winner.
	if _, ok := ResolveWinner(finishedMatch("Mumbai Indians vs Chennai Super Kings: match won by rain"), ""); ok {
		t.Fatalf("ambiguous status resolved a winner")
	}
	if _, ok := ResolveWinner(finishedMatch("Match in progress"), ""); ok {
		t.Fatalf("live status resolved a winner")
	}
}

func TestMatchWinnerOutcomes(t *testing.T) {
	m := finishedMatch("Mumbai Indians won by 4 runs")
	w, ok := ResolveWinner(m, "")
	if !ok {
		t.Fatalf("no winner resolved")
	}
	outcome := OutcomeFunc(m, w)

	cases := []struct {
		label, side, want string
	}{
		{"Mumbai Indians", ledger.SideYes, ledger.OutcomeWin},
		{"Mumbai Indians", ledger.SideNo, ledger.OutcomeLose},
		{"Chennai Super Kings", ledger.SideYes, ledger.OutcomeLose},
		{"Chennai Super Kings", ledger.SideNo, ledger.OutcomeWin},
		{"Punjab Kings", ledger.SideYes, ledger.OutcomeVoid},
	}
	for _, c := range cases {
		if got := outcome(pos(market.MatchWinner, c.label, c.side)); got != c.want {
			t.Fatalf("%s/%s outcome=%s want %s", c.label, c.side, got, c.want)
		}
	}
}

func TestSecondaryMarketsAlwaysVoid(t *testing.T) {
	m := finishedMatch("Mumbai Indians won by 4 runs")
	w, _ := ResolveWinner(m, "")
	outcome := OutcomeFunc(m, w)
	for _, id := range []int{market.TossWinner, market.PowerplayRuns, market.TenOverRuns, market.TopBatter, market.TwentyOverRuns} {
		if got := outcome(pos(id, "Over 46.5", ledger.SideYes)); got != ledger.OutcomeVoid {
			t.Fatalf("market %d outcome=%s want void", id, got)
		}
	}
}

func TestTotalWicketsOutcome(t *testing.T) {
	m := finishedMatch("Mumbai Indians won by 4 runs") // 5 wickets down for side A
	w, _ := ResolveWinner(m, "")
	outcome := OutcomeFunc(m, w)

	cases := []struct {
		label, side, want string
	}{
		{"Over 6.5", ledger.SideYes, ledger.OutcomeLose},
		{"Over 6.5", ledger.SideNo, ledger.OutcomeWin},
		{"Under 6.5", ledger.SideYes, ledger.OutcomeWin},
		{"Over 4.5", ledger.SideYes, ledger.OutcomeWin},
		{"Over five", ledger.SideYes, ledger.OutcomeVoid},
	}
	for _, c := range cases {
		if got := outcome(pos(market.TotalWickets, c.label, c.side)); got != c.want {
			t.Fatalf("%s/%s outcome=%s want %s", c.label, c.side, got, c.want)
		}
	}

	// Whole-number line landing exactly on the wicket count refunds.
	if got := outcome(pos(market.TotalWickets, "Over 5", ledger.SideYes)); got != ledger.OutcomeVoid {
		t.Fatalf("exact line outcome=%s want void", got)
	}

	// No final score for side A refunds everything.
	blank := m
	blank.ScoreA = normalize.Score{}
	noScore := OutcomeFunc(blank, w)
	if got := noScore(pos(market.TotalWickets, "Over 6.5", ledger.SideYes)); got != ledger.OutcomeVoid {
		t.Fatalf("missing score outcome=%s want void", got)
	}
}

func TestOddEvenOutcome(t *testing.T) {
	m := finishedMatch("Mumbai Indians won by 4 runs") // 186+182=368, even
	w, _ := ResolveWinner(m, "")
	outcome := OutcomeFunc(m, w)

	cases := []struct {
		label, side, want string
	}{
		{"Even", ledger.SideYes, ledger.OutcomeWin},
		{"Even", ledger.SideNo, ledger.OutcomeLose},
		{"Odd", ledger.SideYes, ledger.OutcomeLose},
		{"odd", ledger.SideNo, ledger.OutcomeWin},
		{"Prime", ledger.SideYes, ledger.OutcomeVoid},
	}
	for _, c := range cases {
		if got := outcome(pos(market.OddEvenRuns, c.label, c.side)); got != c.want {
			t.Fatalf("%s/%s outcome=%s want %s", c.label, c.side, got, c.want)
		}
	}

	blank := m
	blank.ScoreB = normalize.Score{}
	noScore := OutcomeFunc(blank, w)
	if got := noScore(pos(market.OddEvenRuns, "Even", ledger.SideYes)); got != ledger.OutcomeVoid {
		t.Fatalf("missing score outcome=%s want void", got)
	}
}

func TestMapTeamPrefersStrongerOverlap(t *testing.T) {
	m := market.Match{
		TeamAFull:  "India",
		TeamAShort: "IND",
		TeamBFull:  "India Women",
		TeamBShort: "INDW",
	}
	side, ok := MapTeam(m, "India Women")
	if !ok || side != "B" {
		t.Fatalf("MapTeam=%q,%v want B,true", side, ok)
	}
}
