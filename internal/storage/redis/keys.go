package redis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Cache key builders. Keep them here so every consumer agrees on layout.

const seedLookupTTL = 30 * time.Second

// SeedLookupKey caches the candidate-id union for one seed set. The seeds
// are sorted so logically equal sets share a key.
func SeedLookupKey(seeds []string) string {
	sorted := append([]string(nil), seeds...)
	sort.Strings(sorted)
	return fmt.Sprintf("seed_lookup:%s", strings.Join(sorted, ","))
}

// SeedLookupTTL is deliberately short: the cache only absorbs bursts of
// rewrites to the same job, not steady-state reads.
func SeedLookupTTL() time.Duration {
	return seedLookupTTL
}
