// Package cache implements the response cache: generated answers keyed on
// normalized query text plus a coarse context fingerprint, with TTL and a
// capacity bound. A Redis-backed tier wraps the same contract and falls back
// to the in-memory tier on any backend failure, so callers only ever see a
// hit or a miss.
package cache

import "context"

// Fingerprint is the coarse context tuple combined with the query to derive
// a cache key. It deliberately excludes user identity: responses are generic
// advice, and two users asking the same question with the same crop, region
// and farm stage share the entry.
type Fingerprint struct {
	Crop      string
	Region    string
	FarmStage string
}

// Cache is the response cache contract. Implementations never return errors:
// any internal failure degrades to a miss so the caller falls through to
// generation.
type Cache interface {
	// Get returns the cached response for the query and fingerprint, and
	// whether it was present and unexpired. A hit increments the entry's
	// hit counter.
	Get(ctx context.Context, query string, fp Fingerprint) (string, bool)

	// Set stores the response under the same key derivation, evicting the
	// oldest entry first when at capacity.
	Set(ctx context.Context, query, response string, fp Fingerprint)

	// ClearExpired removes entries older than the TTL and returns how many
	// were removed. It is intended to run on a fixed period independent of
	// read/write traffic.
	ClearExpired(ctx context.Context) int
}
