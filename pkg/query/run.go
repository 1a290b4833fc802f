package query

// outcome is the result of deciding whether a cache entry can be reused.
type outcome int

const (
	outcomeHit outcome = iota
	outcomeRecomputeStale
	outcomeRecomputeRedefined
	outcomeCycle
)

// decide reports whether entry can be served as-is or must be rebuilt:
//
//	if entry.redefined:
//	    stale  -> recompute at version = entry.version (already bumped by register)
//	elif entry.value is Uninit:
//	    we are re-entering ourselves on the stack -> CycleError
//	else:
//	    newest_dep = max(deps[i].target_entry.version) or 1 if no deps
//	    if entry.version >= newest_dep:
//	        hit -> return entry.value
//	    else:
//	        stale -> recompute at version = newest_dep
func (db *Database) decide(entry *cacheEntry) (outcome, uint64) {
	if entry.redefined {
		return outcomeRecomputeRedefined, entry.version
	}
	if entry.isUninit() {
		return outcomeCycle, 0
	}

	newest := uint64(1)
	for _, d := range entry.dependencies {
		depEntry, ok := db.get(d.key, d.hash)
		if !ok {
			// Every recorded dependency must refer to an extant entry.
			// If it doesn't, the registry/cache has been corrupted by
			// something other than this package.
			panic("query: dangling dependency " + d.key.String())
		}
		if depEntry.version > newest {
			newest = depEntry.version
		}
	}

	if entry.version >= newest {
		return outcomeHit, 0
	}
	return outcomeRecomputeStale, newest
}

// uninitializedInput is the sentinel runErased returns (as the cached
// value of an input query's placeholder entry) when that query's
// (key, hash) pair has never been Set. It is not an error: TryRun
// recognizes it and hands back O's zero value, which by convention for
// an input query is its nullable sum's None.
type uninitializedInput struct{}

// runErased is the type-erased engine at the heart of Run/TryRun: given
// a query key, its input, and the input's precomputed hash, it either
// returns a cached value or invokes the body to produce a fresh one.
//
// It always records (key, hash) as a dependency of whatever computation
// is currently on top of the call stack first, before deciding freshness
// or recomputing — a consultation that turns out to be a cache hit, a
// cycle, or an unset input is still a dependency, and a later Set or
// redefinition of the consulted query must still invalidate the caller.
func (db *Database) runErased(key Key, input any, hash InputHash) (any, error) {
	qe := db.entryFor(key)
	if qe == nil {
		panic(&errUnknownQuery{Key: key})
	}

	db.recordConsultation(key, hash)

	if entry, ok := db.get(key, hash); ok {
		switch out, nextVersion := db.decide(entry); out {
		case outcomeHit:
			return entry.value, nil
		case outcomeCycle:
			db.logf("query: cycle detected at %s with input %v", key, input)
			return nil, &CycleError{Key: key, Input: input}
		case outcomeRecomputeStale, outcomeRecomputeRedefined:
			return db.recompute(qe, key, input, hash, nextVersion)
		}
	}

	if qe.body == nil {
		// Input query, never Set for this input: not an error. The
		// placeholder entry created here at version 1 is what lets a
		// later Set (which always starts at previous version + 1)
		// correctly invalidate whatever just recorded it as a
		// dependency.
		return qe.resolveUnsetInput(hash).value, nil
	}

	// First time this (key, hash) pair is touched at all.
	return db.recompute(qe, key, input, hash, 1)
}

// recompute drives a single build of (key, hash) at nextVersion: push a
// placeholder, run the body, capture dependencies and effects, pop, and
// commit. qe.body == nil means key is an input query with no body to
// run; its value stays Uninit forever unless set via Set, which this
// path never takes (Set writes the cache directly and never goes
// through runErased).
//
// A nested Run can panic with a CycleError when the cycle is only
// discovered several bodies deep (Run, unlike TryRun, converts the
// error to a panic at every level it passes through on its way back
// up to whichever caller used TryRun). That panic unwinds straight
// through this frame's call to qe.body, so the stack/effect-scratch
// push above is unwound via defer rather than the straight-line
// sequence below, keeping the Database usable after the panic is
// recovered.
func (db *Database) recompute(qe *queryEntry, key Key, input any, hash InputHash, nextVersion uint64) (any, error) {
	entry := qe.getOrInsertUninit(hash, nextVersion)

	db.push(key, hash)
	db.pushEffectScratch()
	committed := false
	defer func() {
		if !committed {
			db.popEffectScratch()
			db.takeDeps()
			db.pop()
		}
	}()

	value := qe.body(db, input)

	effects := db.popEffectScratch()
	deps := db.takeDeps()
	db.pop()
	committed = true

	entry.finish(value, deps, effects)
	return value, nil
}
