package market

import (
	"hash/fnv"
	"strconv"
)

// IDFromExternal derives the stable numeric match id from a provider's
// external identity. FNV-1a keeps the id deterministic across processes;
// the sign bit is cleared so ids stay positive. A hash collision merges
// two fixtures for one poll cycle at worst.
func IDFromExternal(externalID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(externalID))
	v := int64(h.Sum64() & 0x7fffffffffffffff)
	if v == 0 {
		v = 1
	}
	return v
}

// Seed hashes an arbitrary key into a small deterministic value for price
// jitter and per-match bias. Determinism matters here, not distribution.
func Seed(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

// SeedForMatch keys a seed on the numeric match id plus a salt so distinct
// markets of one match jitter differently but stay stable between refreshes.
func SeedForMatch(matchID int64, salt string) uint64 {
	return Seed(strconv.FormatInt(matchID, 10) + ":" + salt)
}
