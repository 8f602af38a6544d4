// Package normalize canonicalizes team names and score strings coming from
// external feeds. Every provider spells team names differently ("Mumbai
// Indians [MI]", "MUMBAI INDIANS", "Mumbai Indians Women"), so all fuzzy
// matching in the engine runs on the token sets produced here.
package normalize

import (
	"regexp"
	"strings"
)

// TeamName is a canonical team identity split into display forms.
type TeamName struct {
	Full  string
	Short string
}

var (
	bracketCodeRe = regexp.MustCompile(`^\s*(.*?)\s*\[([^\]]+)\]\s*$`)
	nonWordRe     = regexp.MustCompile(`[^a-z0-9\s]+`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// stopWords are dropped from match tokens only. The raw overlap primitive
// keeps them so "India" vs "India Women" still scores below 1.0.
var stopWords = map[string]struct{}{
	"women":   {},
	"men":     {},
	"xi":      {},
	"club":    {},
	"cricket": {},
	"team":    {},
	"vs":      {},
	"v":       {},
	"the":     {},
	"a":       {},
	"of":      {},
	"and":     {},
}

// ParseTeamName splits a raw feed name into full and short forms. A bracketed
// code ("Mumbai Indians [MI]") wins; otherwise the short form is derived from
// word initials, or the first three letters for single-word names.
func ParseTeamName(raw string) TeamName {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TeamName{}
	}
	if m := bracketCodeRe.FindStringSubmatch(raw); m != nil {
		full := strings.TrimSpace(m[1])
		short := strings.ToUpper(strings.TrimSpace(m[2]))
		if full == "" {
			full = short
		}
		return TeamName{Full: full, Short: short}
	}
	words := strings.Fields(raw)
	if len(words) == 1 {
		w := words[0]
		n := 3
		if len(w) < n {
			n = len(w)
		}
		return TeamName{Full: raw, Short: strings.ToUpper(w[:n])}
	}
	var b strings.Builder
	for i, w := range words {
		if i >= 4 {
			break
		}
		b.WriteByte(w[0])
	}
	return TeamName{Full: raw, Short: strings.ToUpper(b.String())}
}

// Name lower-cases, strips punctuation and collapses whitespace. It does not
// remove stop words.
func Name(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonWordRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens returns the normalized word tokens of a name, stop words included.
func Tokens(raw string) []string {
	s := Name(raw)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// MatchTokens returns tokens with stop words removed, for cross-provider
// team matching. Falls back to the unfiltered tokens when filtering would
// leave nothing (a team literally named "XI" must stay matchable).
func MatchTokens(raw string) []string {
	all := Tokens(raw)
	out := make([]string, 0, len(all))
	for _, t := range all {
		if _, skip := stopWords[t]; skip {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return all
	}
	return out
}

// Overlap scores two names by shared normalized tokens:
// |intersection| / max(|tokensA|, |tokensB|), in [0,1].
func Overlap(a, b string) float64 {
	return OverlapTokens(Tokens(a), Tokens(b))
}

// OverlapTokens is the token-set form of Overlap. Empty sets score 0.
func OverlapTokens(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	shared := 0
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			shared++
		}
	}
	max := len(set)
	if len(seen) > max {
		max = len(seen)
	}
	return float64(shared) / float64(max)
}

var wonRe = regexp.MustCompile(`\bwon\b`)

// WonPrefix returns the text before the word "won" in a result line like
// "Mumbai Indians won by 5 wickets". Team names overlap poorly against the
// whole sentence because the denominator counts every status token, so
// winner inference runs on this prefix instead.
func WonPrefix(status string) (string, bool) {
	s := strings.ToLower(status)
	loc := wonRe.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(s[:loc[0]]), true
}

// PairKey builds an orientation-independent key for a pair of team names,
// used to dedupe synthesized fixtures.
func PairKey(teamA, teamB string) string {
	a := strings.Join(MatchTokens(teamA), " ")
	b := strings.Join(MatchTokens(teamB), " ")
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
