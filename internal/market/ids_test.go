package market

import "testing"

func TestIDFromExternalDeterministic(t *testing.T) {
	a := IDFromExternal("srs:1234")
	b := IDFromExternal("srs:1234")
	if a != b {
		t.Fatalf("same key produced %d and %d", a, b)
	}
	if a <= 0 {
		t.Fatalf("id=%d want positive", a)
	}
	if c := IDFromExternal("srs:1235"); c == a {
		t.Fatalf("distinct keys collided on %d", c)
	}
}

func TestSeedForMatchVariesBySalt(t *testing.T) {
	s1 := SeedForMatch(42, "toss")
	s2 := SeedForMatch(42, "wickets")
	if s1 == s2 {
		t.Fatalf("salts produced identical seed %d", s1)
	}
	if s1 != SeedForMatch(42, "toss") {
		t.Fatalf("seed not stable across calls")
	}
}

func TestDefaultLines(t *testing.T) {
	cases := []struct {
		id   int
		want float64
	}{
		{PowerplayRuns, 46.5},
		{TenOverRuns, 78.5},
		{TotalWickets, 6.5},
		{TwentyOverRuns, 156.5},
	}
	for _, c := range cases {
		got, ok := DefaultLine(c.id)
		if !ok || got != c.want {
			t.Fatalf("DefaultLine(%d)=%v,%v want %v,true", c.id, got, ok, c.want)
		}
	}
	if _, ok := DefaultLine(MatchWinner); ok {
		t.Fatalf("match winner should carry no line")
	}
}
