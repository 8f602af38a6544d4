package feed

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// Scoreboard is the primary live-score provider. The list endpoint names the
// fixtures; a per-match detail endpoint carries fresher scores, the result
// line and the provider's own match-winner quote. Detail fetches fan out
// through a bounded worker pool because tournament windows can put forty
// fixtures on the list at once.
type Scoreboard struct {
	healthState
	baseURL string
	client  *http.Client
	workers int
	logger  *zap.Logger
}

func NewScoreboard(baseURL string, timeout time.Duration, workers int, logger *zap.Logger) *Scoreboard {
	if workers <= 0 {
		workers = 6
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scoreboard{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		workers: workers,
		logger:  logger,
	}
}

func (s *Scoreboard) Name() string { return "scorefeed" }

type scoreList struct {
	Matches []scoreItem `json:"matches"`
}

type scoreItem struct {
	ID     flexString `json:"id"`
	TeamA  flexString `json:"t1"`
	TeamB  flexString `json:"t2"`
	ScoreA flexString `json:"t1s"`
	ScoreB flexString `json:"t2s"`
	Status flexString `json:"status"`
	State  flexString `json:"ms"`
	Series flexString `json:"series"`
}

type scoreDetail struct {
	scoreItem
	Odds struct {
		TeamA flexFloat `json:"t1"`
		TeamB flexFloat `json:"t2"`
	} `json:"odds"`
}

// Matches fetches the fixture list and enriches each entry from its detail
// endpoint. A failed detail fetch keeps the list-level record, so one slow
// match page cannot blank the cycle.
func (s *Scoreboard) Matches(ctx context.Context) ([]MatchRecord, error) {
	var list scoreList
	err := getJSON(ctx, s.client, s.Name(), s.baseURL+"/matches", &list)
	s.setHealth(err)
	if err != nil {
		return nil, err
	}

	items := list.Matches
	details := make([]*scoreDetail, len(items))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := s.workers
	if workers > len(items) {
		workers = len(items)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				d, err := s.detail(ctx, items[i].ID.String())
				if err != nil {
					s.logger.Debug("match detail fetch failed",
						zap.String("match", items[i].ID.String()),
						zap.Error(err))
					continue
				}
				details[i] = d
			}
		}()
	}
	for i := range items {
		if items[i].ID.String() == "" {
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make([]MatchRecord, 0, len(items))
	for i, it := range items {
		if it.TeamA.String() == "" || it.TeamB.String() == "" {
			continue
		}
		out = append(out, record(it, details[i]))
	}
	return out, nil
}

func (s *Scoreboard) detail(ctx context.Context, id string) (*scoreDetail, error) {
	var d scoreDetail
	if err := getJSON(ctx, s.client, s.Name(), s.baseURL+"/matches/"+url.PathEscape(id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// record builds a MatchRecord from a list item, overlaying any non-empty
// detail fields on top.
func record(it scoreItem, d *scoreDetail) MatchRecord {
	rec := MatchRecord{
		ExternalID: it.ID.String(),
		TeamA:      it.TeamA.String(),
		TeamB:      it.TeamB.String(),
		ScoreA:     normalize.ParseScore(it.ScoreA.String()),
		ScoreB:     normalize.ParseScore(it.ScoreB.String()),
		StatusText: it.Status.String(),
		Live:       liveState(it.State.String(), it.Status.String()),
		Category:   it.Series.String(),
	}
	if d == nil {
		return rec
	}
	if v := d.ScoreA.String(); v != "" {
		rec.ScoreA = normalize.ParseScore(v)
	}
	if v := d.ScoreB.String(); v != "" {
		rec.ScoreB = normalize.ParseScore(v)
	}
	if v := d.Status.String(); v != "" {
		rec.StatusText = v
		rec.Live = liveState(d.State.String(), v)
	}
	if v := d.Series.String(); v != "" {
		rec.Category = v
	}
	if d.Odds.TeamA > 0 && d.Odds.TeamB > 0 {
		rec.OddsA = float64(d.Odds.TeamA)
		rec.OddsB = float64(d.Odds.TeamB)
		rec.HasOdds = true
	}
	return rec
}

// liveState reads the provider's machine state field, falling back to the
// display status when the field is blank.
func liveState(state, status string) bool {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "live":
		return true
	case "":
	default:
		return false
	}
	return strings.Contains(strings.ToLower(status), "live")
}
