package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestScoreboardMergesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/matches":
			// Numeric id and string id mixed; entry 3 has no teams.
			w.Write([]byte(`{"matches":[
				{"id":101,"t1":"Mumbai Indians [MI]","t2":"Chennai Super Kings [CSK]","status":"Live","ms":"live","series":"IPL 2026"},
				{"id":"202","t1":"India","t2":"Australia","t1s":"45/1 (6)","status":"Match yet to begin","ms":"fixture"},
				{"id":"303","t1":"","t2":""}
			]}`))
		case "/matches/101":
			w.Write([]byte(`{"id":101,"t1s":"186/5 (20)","t2s":"90/3 (11.4)","status":"CSK need 97 runs","ms":"live","odds":{"t1":"64","t2":38}}`))
		case "/matches/202":
			http.Error(w, "upstream busy", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewScoreboard(srv.URL, 5*time.Second, 3, nil)
	recs, err := s.Matches(context.Background())
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records=%d want 2", len(recs))
	}

	first := recs[0]
	if first.ExternalID != "101" || first.TeamA != "Mumbai Indians [MI]" {
		t.Fatalf("first record=%+v", first)
	}
	if first.ScoreA.Runs != 186 || first.ScoreA.Wickets != 5 {
		t.Fatalf("detail score not merged: %+v", first.ScoreA)
	}
	if first.StatusText != "CSK need 97 runs" || !first.Live {
		t.Fatalf("detail status not merged: %q live=%v", first.StatusText, first.Live)
	}
	if !first.HasOdds || first.OddsA != 64 || first.OddsB != 38 {
		t.Fatalf("embedded odds=%v/%v has=%v", first.OddsA, first.OddsB, first.HasOdds)
	}

	// Detail 502 falls back to the list row.
	second := recs[1]
	if second.ScoreA.Runs != 45 || second.Live || second.HasOdds {
		t.Fatalf("fallback record=%+v", second)
	}

	h := s.Health()
	if h.Status != "ok" || h.LastPollAt == nil {
		t.Fatalf("health=%+v", h)
	}
}

func TestScoreboardListFailureDegradesHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewScoreboard(srv.URL, time.Second, 2, nil)
	if _, err := s.Matches(context.Background()); err == nil {
		t.Fatalf("expected error from 503 list")
	}
	h := s.Health()
	if h.Status != "degraded" || h.LastError == nil {
		t.Fatalf("health=%+v", h)
	}
	if !strings.Contains(*h.LastError, "503") {
		t.Fatalf("lastError=%q", *h.LastError)
	}
}

func TestOddsboardParsesEventsAndMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"home":"Mumbai Indians","away":"Chennai Super Kings","odds":{"home":"1.62","away":2.4},
			 "markets":[{"name":"Powerplay Runs","runners":[{"name":"Over 46.5","odds":"1.9"},{"name":"Under 46.5","odds":1.9}]}]},
			{"event":"India vs Australia","odds":{"home":64,"away":38}},
			{"event":"No Separator Here"},
			{"home":"Lone Team","away":""}
		]`))
	}))
	defer srv.Close()

	o := NewOddsboard(srv.URL, time.Second)
	pairs, err := o.Odds(context.Background())
	if err != nil {
		t.Fatalf("Odds: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs=%d want 2", len(pairs))
	}
	if pairs[0].OddsA != 1.62 || pairs[0].OddsB != 2.4 {
		t.Fatalf("string odds parsed=%v/%v", pairs[0].OddsA, pairs[0].OddsB)
	}
	if len(pairs[0].Markets) != 1 || len(pairs[0].Markets[0].Runners) != 2 {
		t.Fatalf("markets=%+v", pairs[0].Markets)
	}
	if pairs[1].TeamA != "India" || pairs[1].TeamB != "Australia" {
		t.Fatalf("event split=%q/%q", pairs[1].TeamA, pairs[1].TeamB)
	}
}

func TestExchangeLiftsMatchOdds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[
			{"eventName":"Mumbai Indians v Chennai Super Kings","marketList":[
				{"marketName":"Match Odds","runners":[
					{"runnerName":"Mumbai Indians","backPrice":160},
					{"runnerName":"Chennai Super Kings","backPrice":"240"}]},
				{"marketName":"20 Over Runs MI","runners":[
					{"runnerName":"Over 156.5","backPrice":1.9},
					{"runnerName":"Under 156.5","backPrice":1.9}]}
			]},
			{"eventName":"Empty Fixture","marketList":[]}
		]}`))
	}))
	defer srv.Close()

	e := NewExchange(srv.URL, time.Second)
	pairs, err := e.Odds(context.Background())
	if err != nil {
		t.Fatalf("Odds: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pairs=%d want 1", len(pairs))
	}
	p := pairs[0]
	if p.TeamA != "Mumbai Indians" || p.OddsA != 160 || p.OddsB != 240 {
		t.Fatalf("match odds=%+v", p)
	}
	if len(p.Markets) != 1 || p.Markets[0].Name != "20 Over Runs MI" {
		t.Fatalf("passthrough markets=%+v", p.Markets)
	}
	if p.Provider != "exchangefeed" {
		t.Fatalf("provider=%q", p.Provider)
	}
}

func TestSplitEventName(t *testing.T) {
	cases := []struct {
		in   string
		a, b string
	}{
		{"India v Australia", "India", "Australia"},
		{"India vs Australia", "India", "Australia"},
		{"India VS Australia", "India", "Australia"},
		{"Rain Delay", "", ""},
		{"v Australia", "", ""},
	}
	for _, c := range cases {
		a, b := SplitEventName(c.in)
		if a != c.a || b != c.b {
			t.Fatalf("SplitEventName(%q)=%q,%q want %q,%q", c.in, a, b, c.a, c.b)
		}
	}
}
