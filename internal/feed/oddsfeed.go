package feed

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Oddsboard is the bookmaker-style odds provider: one JSON array of fixture
// quotes, each with a two-sided match-winner price and the provider's raw
// secondary markets (sessions, fancy lines) passed through for downstream
// classification.
type Oddsboard struct {
	healthState
	url    string
	client *http.Client
}

func NewOddsboard(url string, timeout time.Duration) *Oddsboard {
	return &Oddsboard{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (o *Oddsboard) Name() string { return "oddsfeed" }

type oddsEvent struct {
	Event flexString `json:"event"`
	Home  flexString `json:"home"`
	Away  flexString `json:"away"`
	Odds  struct {
		Home flexFloat `json:"home"`
		Away flexFloat `json:"away"`
	} `json:"odds"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Name    flexString   `json:"name"`
	Runners []oddsRunner `json:"runners"`
}

type oddsRunner struct {
	Name flexString `json:"name"`
	Odds flexFloat  `json:"odds"`
}

func (o *Oddsboard) Odds(ctx context.Context) ([]OddsPair, error) {
	var events []oddsEvent
	err := getJSON(ctx, o.client, o.Name(), o.url, &events)
	o.setHealth(err)
	if err != nil {
		return nil, err
	}

	out := make([]OddsPair, 0, len(events))
	for _, ev := range events {
		teamA, teamB := ev.Home.String(), ev.Away.String()
		if teamA == "" || teamB == "" {
			teamA, teamB = SplitEventName(ev.Event.String())
		}
		if teamA == "" || teamB == "" {
			continue
		}
		pair := OddsPair{
			TeamA:    teamA,
			TeamB:    teamB,
			OddsA:    float64(ev.Odds.Home),
			OddsB:    float64(ev.Odds.Away),
			Provider: o.Name(),
		}
		for _, mkt := range ev.Markets {
			raw := rawMarket(mkt)
			if len(raw.Runners) > 0 {
				pair.Markets = append(pair.Markets, raw)
			}
		}
		if pair.OddsA <= 0 && pair.OddsB <= 0 && len(pair.Markets) == 0 {
			continue
		}
		out = append(out, pair)
	}
	return out, nil
}

func rawMarket(mkt oddsMarket) RawMarket {
	raw := RawMarket{Name: mkt.Name.String()}
	for _, r := range mkt.Runners {
		if r.Name.String() == "" {
			continue
		}
		raw.Runners = append(raw.Runners, Runner{Name: r.Name.String(), Odds: float64(r.Odds)})
	}
	return raw
}

// SplitEventName cuts an "A v B" event title into its two team names,
// accepting "v", "vs" and "vs." separators in any case.
func SplitEventName(event string) (string, string) {
	for _, sep := range []string{" v ", " vs ", " vs. ", " V ", " VS ", " Vs "} {
		if i := strings.Index(event, sep); i > 0 {
			return strings.TrimSpace(event[:i]), strings.TrimSpace(event[i+len(sep):])
		}
	}
	return "", ""
}
