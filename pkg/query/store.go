package query

import "reflect"

// get returns the existing cache entry for (key, hash), if any.
func (db *Database) get(key Key, hash InputHash) (*cacheEntry, bool) {
	qe := db.entryFor(key)
	if qe == nil {
		return nil, false
	}
	e, ok := qe.cache[hash]
	return e, ok
}

// getOrInsertUninit returns the entry for (key, hash), creating it at
// version = previousVersion + 1 with value = Uninit if it did not exist,
// or resetting an existing one to Uninit at the given next version
// (clearing dependencies and effects, and leaving redefined = false) if
// it is about to be recomputed. qe must be the already-looked-up entry
// for key (obtained via entryFor).
func (qe *queryEntry) getOrInsertUninit(hash InputHash, nextVersion uint64) *cacheEntry {
	e, ok := qe.cache[hash]
	if !ok {
		e = newUninitEntry(nextVersion)
		qe.cache[hash] = e
		return e
	}
	e.version = nextVersion
	e.dependencies = nil
	e.effects = nil
	e.redefined = false
	e.value = uninit{}
	return e
}

// finish commits the result of a completed computation: the output
// value, the dependencies observed while it was on top of the call
// stack, and the effects it emitted. Called once, immediately after
// the entry's frame is popped off the stack.
func (e *cacheEntry) finish(value any, deps []dep, effects map[reflect.Type][]any) {
	e.value = value
	e.dependencies = deps
	e.effects = effects
}

// resolveUnsetInput returns the placeholder entry for an input query's
// (key, hash) pair that has never been Set, creating one at version 1
// on first consultation. Recording that placeholder as a dependency
// (runErased does this for every consultation, hit or not) means a
// later Set — which always starts at previous version + 1 — correctly
// invalidates whatever depended on the unset value.
func (qe *queryEntry) resolveUnsetInput(hash InputHash) *cacheEntry {
	if e, ok := qe.cache[hash]; ok {
		return e
	}
	e := &cacheEntry{version: 1, value: uninitializedInput{}}
	qe.cache[hash] = e
	return e
}

// setInput implements the input-query Set operation: it writes directly
// into the cache with no recorded dependencies, at version = previous
// version + 1 (rather than always 1) so that an entry a dependent
// already consulted while unset — pinned at version 1 by
// resolveUnsetInput above — is always superseded by the first real Set.
func (db *Database) setInput(key Key, hash InputHash, value any) {
	qe := db.entryFor(key)
	if qe == nil {
		qe = &queryEntry{cache: make(map[InputHash]*cacheEntry)}
		db.registry[key] = qe
		db.registrationOrder = append(db.registrationOrder, key)
	}

	nextVersion := uint64(1)
	if prev, ok := qe.cache[hash]; ok {
		nextVersion = prev.version + 1
	}

	qe.cache[hash] = &cacheEntry{
		version: nextVersion,
		value:   value,
	}
}
