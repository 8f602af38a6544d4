package reconcile

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/feed"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
)

// ClassifyRule maps raw provider market names onto one of the seven fixed
// secondary market types. Rules are evaluated in order and the first name
// match wins, so narrower patterns must sit above broader ones.
type ClassifyRule struct {
	MarketID     int
	NamePatterns []string

	compiled []*regexp.Regexp
}

// DefaultClassifyRules is the ordering the engine ships with. Odd/even sits
// first because provider names like "Total Runs Odd/Even" would otherwise be
// swallowed by the runs patterns below it; the bare wicket pattern sits last
// for the same reason.
func DefaultClassifyRules() []ClassifyRule {
	return []ClassifyRule{
		{
			MarketID: market.OddEvenRuns,
			NamePatterns: []string{
				`(?i)odd\s*[/\-]?\s*even`,
				`(?i)even\s*[/\-]?\s*odd`,
			},
		},
		{
			MarketID: market.TossWinner,
			NamePatterns: []string{
				`(?i)\btoss\b`,
			},
		},
		{
			MarketID: market.PowerplayRuns,
			NamePatterns: []string{
				`(?i)power\s*play`,
				`(?i)\b(first|1st)\s*6\s*overs?\b`,
			},
		},
		{
			MarketID: market.TenOverRuns,
			NamePatterns: []string{
				`(?i)\b10\s*overs?\b`,
				`(?i)\bten\s*overs?\b`,
			},
		},
		{
			MarketID: market.TwentyOverRuns,
			NamePatterns: []string{
				`(?i)\b20\s*overs?\b`,
				`(?i)\btwenty\s*overs?\b`,
				`(?i)\btotal\s+(match\s+)?runs?\b`,
			},
		},
		{
			MarketID: market.TopBatter,
			NamePatterns: []string{
				`(?i)top\s*(batter|batsman|scorer)`,
				`(?i)\b(fifty|50)\s*\+?\s*(scored)?\b`,
				`(?i)individual\s+fifty`,
			},
		},
		{
			MarketID: market.TotalWickets,
			NamePatterns: []string{
				`(?i)\bwickets?\b`,
			},
		},
	}
}

// Classifier turns raw provider markets into SecondaryQuotes. The zero
// value is unusable; construct through NewClassifier so the rule set is
// compiled once.
type Classifier struct {
	Rules  []ClassifyRule
	Logger *zap.Logger
}

func NewClassifier(logger *zap.Logger) *Classifier {
	c := &Classifier{Rules: DefaultClassifyRules(), Logger: logger}
	c.compile()
	return c
}

func (c *Classifier) compile() {
	for i := range c.Rules {
		if len(c.Rules[i].compiled) > 0 {
			continue
		}
		for _, raw := range c.Rules[i].NamePatterns {
			re, err := regexp.Compile(raw)
			if err != nil {
				if c.Logger != nil {
					c.Logger.Warn("classify rule regex compile failed",
						zap.Int("market_id", c.Rules[i].MarketID),
						zap.String("regex", raw),
						zap.Error(err))
				}
				continue
			}
			c.Rules[i].compiled = append(c.Rules[i].compiled, re)
		}
	}
}

// Classify maps one raw provider market onto a fixed secondary type.
// Non-binary markets and names no rule recognizes return ok=false.
func (c *Classifier) Classify(raw feed.RawMarket, provider string) (market.SecondaryQuote, bool) {
	if len(raw.Runners) != 2 {
		return market.SecondaryQuote{}, false
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return market.SecondaryQuote{}, false
	}
	for _, rule := range c.Rules {
		if !matchAnyName(rule, name) {
			continue
		}
		return c.buildQuote(rule.MarketID, raw, provider), true
	}
	return market.SecondaryQuote{}, false
}

func (c *Classifier) buildQuote(marketID int, raw feed.RawMarket, provider string) market.SecondaryQuote {
	priceA, priceB := PriceFromOdds(raw.Runners[0].Odds, raw.Runners[1].Odds)
	q := market.SecondaryQuote{
		MarketID: marketID,
		Provider: provider,
	}
	switch {
	case market.IsOverUnder(marketID):
		c.fillOverUnder(&q, raw, priceA, priceB)
	case marketID == market.OddEvenRuns:
		fillKeywordPair(&q, raw, priceA, priceB, "odd", "even")
	case marketID == market.TopBatter:
		fillKeywordPair(&q, raw, priceA, priceB, "yes", "no")
	default:
		// Toss winner keeps the provider's runner labels, normally the
		// two team names.
		q.Confidence = 1
		q.OptionA = market.Option{Label: strings.TrimSpace(raw.Runners[0].Name), Price: priceA, Type: "team"}
		q.OptionB = market.Option{Label: strings.TrimSpace(raw.Runners[1].Name), Price: priceB, Type: "team"}
	}
	return q
}

var (
	overLineRe  = regexp.MustCompile(`(?i)\bover\b[^0-9]*([0-9]+(?:\.[0-9]+)?)`)
	underLineRe = regexp.MustCompile(`(?i)\bunder\b[^0-9]*([0-9]+(?:\.[0-9]+)?)`)
)

// fillOverUnder orients the two runners as over/under and extracts the line.
// Both labels parsing cleanly is full confidence; one parsed label costs a
// step because the other side is inferred; neither parsing falls back to the
// per-type default line at low confidence.
func (c *Classifier) fillOverUnder(q *market.SecondaryQuote, raw feed.RawMarket, priceA, priceB int) {
	overIdx, overLine, overOK := runnerLine(raw.Runners, overLineRe)
	underIdx, underLine, underOK := runnerLine(raw.Runners, underLineRe)

	switch {
	case overOK && underOK && overIdx != underIdx:
		q.Confidence = 1
		q.Line, q.HasLine = overLine, true
		q.OptionA = optionAt(raw, overIdx, priceA, priceB, "over")
		q.OptionB = optionAt(raw, underIdx, priceA, priceB, "under")
	case overOK:
		q.Confidence = 0.8
		q.Line, q.HasLine = overLine, true
		q.OptionA = optionAt(raw, overIdx, priceA, priceB, "over")
		q.OptionB = optionAt(raw, 1-overIdx, priceA, priceB, "under")
	case underOK:
		q.Confidence = 0.8
		q.Line, q.HasLine = underLine, true
		q.OptionA = optionAt(raw, 1-underIdx, priceA, priceB, "over")
		q.OptionB = optionAt(raw, underIdx, priceA, priceB, "under")
	default:
		line, _ := market.DefaultLine(q.MarketID)
		q.Confidence = 0.4
		q.Line, q.HasLine = line, false
		q.OptionA = market.Option{Label: "Over " + formatQuoteLine(line), Price: priceA, Type: "over"}
		q.OptionB = market.Option{Label: "Under " + formatQuoteLine(line), Price: priceB, Type: "under"}
	}
}

// fillKeywordPair handles the exact-keyword binary types (odd/even, yes/no).
// Both labels matching in canonical order is full confidence, matching in
// swapped order slightly less; anything else keeps the provider labels
// verbatim at half confidence.
func fillKeywordPair(q *market.SecondaryQuote, raw feed.RawMarket, priceA, priceB int, first, second string) {
	a := strings.ToLower(strings.TrimSpace(raw.Runners[0].Name))
	b := strings.ToLower(strings.TrimSpace(raw.Runners[1].Name))
	labelFirst := titleWord(first)
	labelSecond := titleWord(second)
	switch {
	case a == first && b == second:
		q.Confidence = 1
		q.OptionA = market.Option{Label: labelFirst, Price: priceA, Type: first}
		q.OptionB = market.Option{Label: labelSecond, Price: priceB, Type: second}
	case a == second && b == first:
		q.Confidence = 0.9
		q.OptionA = market.Option{Label: labelFirst, Price: priceB, Type: first}
		q.OptionB = market.Option{Label: labelSecond, Price: priceA, Type: second}
	default:
		q.Confidence = 0.5
		q.OptionA = market.Option{Label: strings.TrimSpace(raw.Runners[0].Name), Price: priceA}
		q.OptionB = market.Option{Label: strings.TrimSpace(raw.Runners[1].Name), Price: priceB}
	}
}

func runnerLine(runners []feed.Runner, re *regexp.Regexp) (int, float64, bool) {
	for i, r := range runners {
		m := re.FindStringSubmatch(r.Name)
		if len(m) < 2 {
			continue
		}
		line, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return i, line, true
	}
	return 0, 0, false
}

func optionAt(raw feed.RawMarket, idx, priceA, priceB int, typ string) market.Option {
	price := priceA
	if idx == 1 {
		price = priceB
	}
	return market.Option{Label: strings.TrimSpace(raw.Runners[idx].Name), Price: price, Type: typ}
}

func matchAnyName(rule ClassifyRule, name string) bool {
	for _, re := range rule.compiled {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func formatQuoteLine(line float64) string {
	return strconv.FormatFloat(line, 'f', -1, 64)
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
