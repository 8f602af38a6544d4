// Package reconcile merges score-feed match records with odds pairs from
// every provider into one priced match set. Matching is fuzzy: providers
// spell team names differently, so pairs are scored by token overlap and
// odds quotes with no fixture behind them become synthesized matches.
package reconcile

import (
	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/feed"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/normalize"
)

// fuzzyThreshold is the minimum summed token overlap (both team slots) for
// an odds pair to attach to a match. One team matching perfectly is 1.0, so
// 1.1 demands at least some agreement on the second team.
const fuzzyThreshold = 1.1

// scorefeedProvider names the implicit odds source carried inside score
// records.
const scorefeedProvider = "scorefeed"

// Reconciler merges one poll cycle's records and odds pairs.
type Reconciler struct {
	Classifier *Classifier
	Logger     *zap.Logger
}

func New(logger *zap.Logger) *Reconciler {
	return &Reconciler{Classifier: NewClassifier(logger), Logger: logger}
}

// Result is the merged view of one cycle. Matches without a matched quote
// keep PriceA zero; the caller runs the pricing model over those.
type Result struct {
	Matches     []market.Match
	Quotes      map[int64]market.ExternalQuote
	Secondary   map[int64]map[int]market.SecondaryQuote
	Synthesized int
}

// candidate is a record under reconciliation with its precomputed tokens.
type candidate struct {
	match   market.Match
	tokensA []string
	tokensB []string
	nameA   string
	nameB   string
}

// assignment scores one odds pair against its best candidate. swapped is
// set when the pair's team order is the reverse of the candidate's, which
// flips the two prices on application.
type assignment struct {
	matchIdx int
	score    float64
	exact    bool
	swapped  bool
}

// Reconcile builds the priced match set for one cycle. Score records define
// the fixture list; each pair attaches to the candidate it overlaps best,
// and pairs no candidate accepts are synthesized into odds-only matches so
// the quote stays tradable through a score-feed outage.
func (r *Reconciler) Reconcile(records []feed.MatchRecord, pairs []feed.OddsPair) Result {
	cands := r.buildCandidates(records)
	pool := r.buildPool(records, pairs)

	assigned := make([]assignment, len(pool))
	for i, p := range pool {
		assigned[i] = bestCandidate(cands, p)
	}

	res := Result{
		Quotes:    make(map[int64]market.ExternalQuote),
		Secondary: make(map[int64]map[int]market.SecondaryQuote),
	}

	// Per candidate: the winning pair prices the match, every attached
	// pair contributes secondary markets.
	for ci := range cands {
		bestIdx := -1
		best := assignment{}
		for pi, a := range assigned {
			if a.matchIdx != ci {
				continue
			}
			r.mergeSecondary(&res, cands[ci].match.ID, pool[pi])
			if pool[pi].OddsA <= 0 && pool[pi].OddsB <= 0 {
				// Markets-only pair; nothing to price with.
				continue
			}
			better := false
			switch {
			case bestIdx == -1:
				better = true
			case a.exact != best.exact:
				better = a.exact
			case !a.exact && a.score > best.score:
				better = true
			}
			if better {
				bestIdx, best = pi, a
			}
		}
		m := cands[ci].match
		if bestIdx >= 0 {
			p := pool[bestIdx]
			priceA, priceB := PriceFromOdds(p.OddsA, p.OddsB)
			if best.swapped {
				priceA, priceB = priceB, priceA
			}
			m.PriceA, m.PriceB = priceA, priceB
			m.PriceSource = p.Provider
			res.Quotes[m.ID] = market.ExternalQuote{PriceA: priceA, PriceB: priceB, Provider: p.Provider}
		}
		res.Matches = append(res.Matches, m)
	}

	r.synthesize(&res, cands, pool, assigned)
	return res
}

// buildCandidates normalizes the raw records, dropping duplicates and rows
// with no usable team names.
func (r *Reconciler) buildCandidates(records []feed.MatchRecord) []candidate {
	cands := make([]candidate, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for _, rec := range records {
		teamA := normalize.ParseTeamName(rec.TeamA)
		teamB := normalize.ParseTeamName(rec.TeamB)
		if teamA.Full == "" || teamB.Full == "" {
			continue
		}
		id := market.IDFromExternal(rec.ExternalID)
		if rec.ExternalID == "" {
			id = market.IDFromExternal(normalize.PairKey(rec.TeamA, rec.TeamB))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		cands = append(cands, candidate{
			match: market.Match{
				ID:         id,
				ExternalID: rec.ExternalID,
				TeamAFull:  teamA.Full,
				TeamAShort: teamA.Short,
				TeamBFull:  teamB.Full,
				TeamBShort: teamB.Short,
				ScoreA:     rec.ScoreA,
				ScoreB:     rec.ScoreB,
				IsLive:     rec.Live,
				StatusText: rec.StatusText,
				Category:   rec.Category,
			},
			// Bracket codes are presentation, so all matching runs on
			// the parsed full names.
			tokensA: normalize.MatchTokens(teamA.Full),
			tokensB: normalize.MatchTokens(teamB.Full),
			nameA:   normalize.Name(teamA.Full),
			nameB:   normalize.Name(teamB.Full),
		})
	}
	return cands
}

// buildPool flattens provider pairs behind the score feed's own embedded
// odds, so a record quoting itself outranks external providers through pool
// order on equal footing.
func (r *Reconciler) buildPool(records []feed.MatchRecord, pairs []feed.OddsPair) []feed.OddsPair {
	pool := make([]feed.OddsPair, 0, len(pairs)+4)
	for _, rec := range records {
		if !rec.HasOdds {
			continue
		}
		pool = append(pool, feed.OddsPair{
			TeamA:    rec.TeamA,
			TeamB:    rec.TeamB,
			OddsA:    rec.OddsA,
			OddsB:    rec.OddsB,
			Provider: scorefeedProvider,
		})
	}
	return append(pool, pairs...)
}

// bestCandidate finds where one pair belongs. Exact normalized-name
// equality wins outright; otherwise the pair goes to the candidate with the
// highest summed overlap across both team slots, trying both orientations,
// provided the sum clears fuzzyThreshold.
func bestCandidate(cands []candidate, p feed.OddsPair) assignment {
	teamA := normalize.ParseTeamName(p.TeamA)
	teamB := normalize.ParseTeamName(p.TeamB)
	pNameA := normalize.Name(teamA.Full)
	pNameB := normalize.Name(teamB.Full)
	pTokensA := normalize.MatchTokens(teamA.Full)
	pTokensB := normalize.MatchTokens(teamB.Full)

	best := assignment{matchIdx: -1}
	for i := range cands {
		c := &cands[i]
		if c.nameA == pNameA && c.nameB == pNameB {
			return assignment{matchIdx: i, score: 2, exact: true}
		}
		if c.nameA == pNameB && c.nameB == pNameA {
			return assignment{matchIdx: i, score: 2, exact: true, swapped: true}
		}
		direct := normalize.OverlapTokens(c.tokensA, pTokensA) + normalize.OverlapTokens(c.tokensB, pTokensB)
		crossed := normalize.OverlapTokens(c.tokensA, pTokensB) + normalize.OverlapTokens(c.tokensB, pTokensA)
		score, swapped := direct, false
		if crossed > score {
			score, swapped = crossed, true
		}
		if score >= fuzzyThreshold && score > best.score {
			best = assignment{matchIdx: i, score: score, swapped: swapped}
		}
	}
	return best
}

func (r *Reconciler) mergeSecondary(res *Result, matchID int64, p feed.OddsPair) {
	if r.Classifier == nil || len(p.Markets) == 0 {
		return
	}
	for _, raw := range p.Markets {
		q, ok := r.Classifier.Classify(raw, p.Provider)
		if !ok {
			continue
		}
		byType := res.Secondary[matchID]
		if byType == nil {
			byType = make(map[int]market.SecondaryQuote)
			res.Secondary[matchID] = byType
		}
		if prev, exists := byType[q.MarketID]; exists && prev.Confidence >= q.Confidence {
			continue
		}
		byType[q.MarketID] = q
	}
}

// synthesize turns unassigned pairs into odds-only matches. The pair key is
// orientation independent, so the same fixture quoted by two providers in
// opposite team order still produces one match; the first pair in pool order
// supplies the price.
func (r *Reconciler) synthesize(res *Result, cands []candidate, pool []feed.OddsPair, assigned []assignment) {
	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		seen[normalize.PairKey(c.match.TeamAFull, c.match.TeamBFull)] = struct{}{}
	}
	for pi, p := range pool {
		if assigned[pi].matchIdx >= 0 {
			continue
		}
		if p.OddsA <= 0 && p.OddsB <= 0 {
			continue
		}
		teamA := normalize.ParseTeamName(p.TeamA)
		teamB := normalize.ParseTeamName(p.TeamB)
		if teamA.Full == "" || teamB.Full == "" {
			continue
		}
		key := normalize.PairKey(teamA.Full, teamB.Full)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		priceA, priceB := PriceFromOdds(p.OddsA, p.OddsB)
		m := market.Match{
			ID:          market.IDFromExternal("odds:" + key),
			ExternalID:  "odds:" + key,
			TeamAFull:   teamA.Full,
			TeamAShort:  teamA.Short,
			TeamBFull:   teamB.Full,
			TeamBShort:  teamB.Short,
			IsLive:      true,
			PriceA:      priceA,
			PriceB:      priceB,
			PriceSource: p.Provider,
		}
		res.Quotes[m.ID] = market.ExternalQuote{PriceA: priceA, PriceB: priceB, Provider: p.Provider}
		r.mergeSecondary(res, m.ID, p)
		res.Matches = append(res.Matches, m)
		res.Synthesized++
		if r.Logger != nil {
			r.Logger.Debug("synthesized odds-only match",
				zap.String("team_a", teamA.Full),
				zap.String("team_b", teamB.Full),
				zap.String("provider", p.Provider))
		}
	}
}
