package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// Exchange is the second odds provider. It speaks an exchange-style schema:
// every fixture is a list of named markets whose runners carry back prices,
// with the match-winner hidden inside a "Match Odds" market rather than on
// the event itself.
type Exchange struct {
	healthState
	url    string
	client *http.Client
}

func NewExchange(url string, timeout time.Duration) *Exchange {
	return &Exchange{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (e *Exchange) Name() string { return "exchangefeed" }

type exchangePayload struct {
	Events []exchangeEvent `json:"events"`
}

type exchangeEvent struct {
	EventName flexString       `json:"eventName"`
	Markets   []exchangeMarket `json:"marketList"`
}

type exchangeMarket struct {
	MarketName flexString       `json:"marketName"`
	Runners    []exchangeRunner `json:"runners"`
}

type exchangeRunner struct {
	RunnerName flexString `json:"runnerName"`
	BackPrice  flexFloat  `json:"backPrice"`
}

func (e *Exchange) Odds(ctx context.Context) ([]OddsPair, error) {
	var payload exchangePayload
	err := getJSON(ctx, e.client, e.Name(), e.url, &payload)
	e.setHealth(err)
	if err != nil {
		return nil, err
	}

	out := make([]OddsPair, 0, len(payload.Events))
	for _, ev := range payload.Events {
		pair := OddsPair{Provider: e.Name()}
		pair.TeamA, pair.TeamB = SplitEventName(ev.EventName.String())
		for _, mkt := range ev.Markets {
			if isMatchOdds(mkt.MarketName.String()) && len(mkt.Runners) >= 2 {
				// Runner names are authoritative over the event title.
				pair.TeamA = mkt.Runners[0].RunnerName.String()
				pair.TeamB = mkt.Runners[1].RunnerName.String()
				pair.OddsA = float64(mkt.Runners[0].BackPrice)
				pair.OddsB = float64(mkt.Runners[1].BackPrice)
				continue
			}
			raw := RawMarket{Name: mkt.MarketName.String()}
			for _, r := range mkt.Runners {
				if r.RunnerName.String() == "" {
					continue
				}
				raw.Runners = append(raw.Runners, Runner{Name: r.RunnerName.String(), Odds: float64(r.BackPrice)})
			}
			if len(raw.Runners) > 0 {
				pair.Markets = append(pair.Markets, raw)
			}
		}
		if pair.TeamA == "" || pair.TeamB == "" {
			continue
		}
		if pair.OddsA <= 0 && pair.OddsB <= 0 && len(pair.Markets) == 0 {
			continue
		}
		out = append(out, pair)
	}
	return out, nil
}

func isMatchOdds(name string) bool {
	n := normalize.Name(name)
	return n == "match odds" || n == "match winner" || n == "winner"
}
