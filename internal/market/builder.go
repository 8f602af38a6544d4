package market

import "strconv"

// Builder assembles the fixed eight-market list for a match from reconciled
// external quotes, falling back to seeded synthetic prices. Over/under lines
// pass through ThresholdLocks so the first line observed for a match is the
// one every later build reuses.
type Builder struct {
	Locks *ThresholdLocks
}

// Build returns all eight markets for a match. quotes carries classified
// external secondary markets keyed by market type; missing entries are
// synthesized.
func (b *Builder) Build(m Match, quotes map[int]SecondaryQuote) []Market {
	out := make([]Market, 0, 8)
	out = append(out, Market{
		ID:      MatchWinner,
		MatchID: m.ID,
		Title:   marketTitle(MatchWinner),
		Options: []Option{
			{Label: m.TeamAFull, Price: m.PriceA, Type: "team"},
			{Label: m.TeamBFull, Price: m.PriceB, Type: "team"},
		},
		Confidence: 1,
		Provider:   m.PriceSource,
	})
	for id := TossWinner; id <= OddEvenRuns; id++ {
		if q, ok := quotes[id]; ok && q.MarketID == id {
			out = append(out, b.fromQuote(m, q))
			continue
		}
		out = append(out, b.synthesize(m, id))
	}
	return out
}

func (b *Builder) fromQuote(m Match, q SecondaryQuote) Market {
	mk := Market{
		ID:         q.MarketID,
		MatchID:    m.ID,
		Title:      marketTitle(q.MarketID),
		Confidence: q.Confidence,
		Provider:   q.Provider,
	}
	if IsOverUnder(q.MarketID) {
		line := q.Line
		if !q.HasLine {
			line, _ = DefaultLine(q.MarketID)
		}
		pinned := b.Locks.Pin(m.ID, q.MarketID, line)
		mk.Line = pinned
		mk.Options = []Option{
			{Label: "Over " + formatLine(pinned), Price: clampPrice(q.OptionA.Price), Type: "over"},
			{Label: "Under " + formatLine(pinned), Price: clampPrice(q.OptionB.Price), Type: "under"},
		}
		return mk
	}
	mk.Options = []Option{
		{Label: q.OptionA.Label, Price: clampPrice(q.OptionA.Price), Type: q.OptionA.Type},
		{Label: q.OptionB.Label, Price: clampPrice(q.OptionB.Price), Type: q.OptionB.Type},
	}
	return mk
}

func (b *Builder) synthesize(m Match, marketID int) Market {
	price := syntheticPrice(m.ID, marketID)
	mk := Market{
		ID:      marketID,
		MatchID: m.ID,
		Title:   marketTitle(marketID),
	}
	switch marketID {
	case TossWinner:
		mk.Options = []Option{
			{Label: m.TeamAFull, Price: price, Type: "team"},
			{Label: m.TeamBFull, Price: 100 - price, Type: "team"},
		}
	case TopBatter:
		mk.Options = []Option{
			{Label: "Yes", Price: price, Type: "yes"},
			{Label: "No", Price: 100 - price, Type: "no"},
		}
	case OddEvenRuns:
		mk.Options = []Option{
			{Label: "Odd", Price: price, Type: "odd"},
			{Label: "Even", Price: 100 - price, Type: "even"},
		}
	default:
		line, _ := DefaultLine(marketID)
		pinned := b.Locks.Pin(m.ID, marketID, line)
		mk.Line = pinned
		mk.Options = []Option{
			{Label: "Over " + formatLine(pinned), Price: price, Type: "over"},
			{Label: "Under " + formatLine(pinned), Price: 100 - price, Type: "under"},
		}
	}
	return mk
}

// syntheticPrice derives a stable pseudo-random price for a market with no
// external quote. The jitter is seeded on (matchID, market salt) so repeated
// builds during one match agree while sibling markets differ.
func syntheticPrice(matchID int64, marketID int) int {
	jitter := int(SeedForMatch(matchID, marketSalt(marketID))%17) - 8
	return clampPrice(marketBase(marketID) + jitter)
}

func marketSalt(marketID int) string {
	switch marketID {
	case TossWinner:
		return "toss"
	case PowerplayRuns:
		return "powerplay"
	case TenOverRuns:
		return "tenover"
	case TopBatter:
		return "topbatter"
	case TotalWickets:
		return "wickets"
	case TwentyOverRuns:
		return "twentyover"
	case OddEvenRuns:
		return "oddeven"
	}
	return "market"
}

// marketBase biases the synthetic price per market type so unpriced markets
// of one match do not all sit at 50.
func marketBase(marketID int) int {
	switch marketID {
	case PowerplayRuns, TenOverRuns, TwentyOverRuns:
		return 52
	case TopBatter:
		return 45
	case TotalWickets:
		return 53
	}
	return 50
}

func clampPrice(v int) int {
	if v < 1 {
		return 1
	}
	if v > 99 {
		return 99
	}
	return v
}

func formatLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}
