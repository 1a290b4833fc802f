package query

// Body is the type-erased callable a registered query runs: it takes
// the owning Database (so a body can call back into other queries) and
// an erased input, and returns an erased output. The registry's type
// safety is externally upheld by the typed wrapper that registered it
// (Register / RegisterImpl in db.go) — the core never checks it.
//
// A nil Body marks an input query: one with no body, whose value is
// populated only through Set.
type Body func(db *Database, input any) any

// queryEntry is one registered query: its (possibly nil, for input
// queries) body plus its per-input cache table.
type queryEntry struct {
	body  Body
	cache map[InputHash]*cacheEntry
}

// register installs body under key.
//
// First insertion creates an empty cache for key. Re-insertion (the
// query is being redefined) preserves the existing cache but, for every
// existing entry, increments version and sets redefined = true — this
// forces a rebuild on next consultation and, because versions
// monotonically bound dependents, cascades invalidation upward without
// an eager sweep of the whole graph. Registration never fails: it is
// idempotent and cannot observe whether a prior Run is in flight for
// this key (the caller is responsible for never registering from
// within a running query).
func (db *Database) register(key Key, body Body) {
	existing, ok := db.registry[key]
	if !ok {
		db.registry[key] = &queryEntry{
			body:  body,
			cache: make(map[InputHash]*cacheEntry),
		}
		db.registrationOrder = append(db.registrationOrder, key)
		return
	}

	existing.body = body
	for _, entry := range existing.cache {
		entry.version++
		entry.redefined = true
		// Redefinition clears effects: they belonged to a body that no
		// longer exists.
		entry.effects = nil
	}
	db.logf("query: %s redefined, %d cached entries invalidated", key, len(existing.cache))
}

// entryFor returns the queryEntry for key, or nil if key was never
// registered.
func (db *Database) entryFor(key Key) *queryEntry {
	return db.registry[key]
}
