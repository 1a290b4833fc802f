// Config loads the small set of environment-sized knobs this engine
// exposes via LoadFromEnv/Validate-style helpers. A process-local,
// single-threaded query database has almost nothing worth configuring
// from the environment — no listen addresses, no credentials — but the
// hasher's seed must stay fixed across a single Database's lifetime, so
// it is exposed here.
package query

import (
	"os"
	"strconv"
)

// defaultHashSeed is used when no IQUERY_HASH_SEED is set.
const defaultHashSeed uint64 = 0x9e3779b97f4a7c15

// Config holds the environment-configurable knobs for a Database.
type Config struct {
	// HashSeed is mixed into every InputHash computation. Two Databases
	// with the same HashSeed hash equal inputs identically; changing it
	// between runs is harmless (caches are process-local and never
	// persisted), but it must stay fixed across a single Database's
	// lifetime.
	HashSeed uint64
}

// DefaultConfig returns the configuration New() uses implicitly.
func DefaultConfig() Config {
	return Config{HashSeed: defaultHashSeed}
}

// ConfigFromEnv loads Config from the environment:
//
//   - IQUERY_HASH_SEED: uint64 in Go integer-literal syntax (decimal,
//     or 0x hex, 0o or leading-0 octal, 0b binary), default
//     defaultHashSeed. An unparsable value leaves the default in place.
//
// Call Validate before passing the result to NewWithConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if raw, ok := os.LookupEnv("IQUERY_HASH_SEED"); ok && raw != "" {
		if seed, err := strconv.ParseUint(raw, 0, 64); err == nil {
			cfg.HashSeed = seed
		}
	}
	return cfg
}

// Validate reports whether cfg is usable. Every uint64 is a valid
// HashSeed, so this always succeeds today; it exists so callers have
// one place to check configuration before constructing a Database.
func (cfg Config) Validate() error {
	return nil
}
