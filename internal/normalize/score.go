package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Score is the canonical live-score shape for one side of a match.
// Overs is a decimal over count where the ball component is converted to a
// fraction of six legal deliveries: "15.2" means 15 overs and 2 balls,
// i.e. 15.333 overs faced.
type Score struct {
	Runs     int
	Wickets  int
	Overs    float64
	HasScore bool
}

var scoreRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)(?:\s*\(\s*([\d.]+)\s*\))?`)

// ParseScore reads a combined score string such as "123/4 (15.2)".
// Missing wickets or overs degrade to zero rather than failing.
func ParseScore(raw string) Score {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Score{}
	}
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		runs, _ := strconv.Atoi(m[1])
		wickets, _ := strconv.Atoi(m[2])
		overs := 0.0
		if m[3] != "" {
			overs = ParseOvers(m[3])
		}
		return Score{Runs: runs, Wickets: wickets, Overs: overs, HasScore: true}
	}
	// Some feeds report a bare run count for the side batting first.
	if runs, err := strconv.Atoi(strings.Fields(raw)[0]); err == nil {
		return Score{Runs: runs, HasScore: true}
	}
	return Score{}
}

// ScoreFromParts assembles a Score from split provider fields. Any non-empty
// runs field marks the score as present.
func ScoreFromParts(runs, wickets, overs string) Score {
	runs = strings.TrimSpace(runs)
	if runs == "" {
		return Score{}
	}
	r, err := strconv.Atoi(runs)
	if err != nil {
		return Score{}
	}
	w, _ := strconv.Atoi(strings.TrimSpace(wickets))
	return Score{Runs: r, Wickets: w, Overs: ParseOvers(overs), HasScore: true}
}

// ParseOvers converts an overs string to a decimal over count. The digit
// after the dot is a ball count and is clamped to 0..5 before dividing by
// six, so an illegal "15.7" degrades to 15 overs 5 balls instead of being
// read as 15.7 overs.
func ParseOvers(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	whole := raw
	balls := 0
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		whole = raw[:i]
		frac := raw[i+1:]
		if frac != "" {
			b, err := strconv.Atoi(string(frac[0]))
			if err == nil {
				if b > 5 {
					b = 5
				}
				if b < 0 {
					b = 0
				}
				balls = b
			}
		}
	}
	w, err := strconv.Atoi(whole)
	if err != nil || w < 0 {
		return 0
	}
	return float64(w) + float64(balls)/6.0
}
