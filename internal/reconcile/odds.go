package reconcile

import "math"

// ImpliedProbability converts one raw odds value into a win probability.
// Providers mix three conventions in the same payload, so the value range
// decides the interpretation:
//
//	[50,1000]  bookmaker offset odds, price = 1/(1+v/100)
//	(1,100)    decimal odds, price = 1/v
//	(0,1]      already a probability, taken as-is
//
// Values outside every range return 0.5 so a single junk runner cannot
// blank out the pair.
func ImpliedProbability(v float64) float64 {
	switch {
	case v >= 50 && v <= 1000:
		return 1 / (1 + v/100)
	case v > 1 && v < 100:
		return 1 / v
	case v > 0 && v <= 1:
		return v
	}
	return 0.5
}

// PriceFromOdds converts a two-sided odds quote into integer prices that
// sum to 100. Both probabilities are renormalized against their joint mass
// before rounding, then clamped to [1,99].
func PriceFromOdds(oddsA, oddsB float64) (int, int) {
	pa := ImpliedProbability(oddsA)
	pb := ImpliedProbability(oddsB)
	total := pa + pb
	if total <= 0 {
		return 50, 50
	}
	priceA := int(math.Round(pa / total * 100))
	if priceA < 1 {
		priceA = 1
	}
	if priceA > 99 {
		priceA = 99
	}
	return priceA, 100 - priceA
}
