package query

// frame is one entry on the active call stack: the (query, input-hash)
// pair a currently-running computation is building.
type frame struct {
	key  Key
	hash InputHash
}

// top returns the frame currently on top of the call stack, if any.
func (db *Database) top() (frame, bool) {
	if len(db.stack) == 0 {
		return frame{}, false
	}
	return db.stack[len(db.stack)-1], true
}

// recordConsultation records (key, hash) as a dependency of whatever
// computation is currently on top of the call stack, if any. Called
// once per query consultation regardless of how it resolves — hit,
// cycle, unset input, or fresh recompute — so that every one of those
// outcomes still counts as a dependency edge for later invalidation.
func (db *Database) recordConsultation(key Key, hash InputHash) {
	if parent, ok := db.top(); ok {
		db.recordDep(parent, dep{key: key, hash: hash})
	}
}

// push makes (key, hash) the new top of the call stack. Must be called
// before the body executes and undone with pop once it returns.
func (db *Database) push(key Key, hash InputHash) {
	db.stack = append(db.stack, frame{key: key, hash: hash})
}

// pop removes the top frame. Called once the body has returned, just
// before its result is committed to the cache.
func (db *Database) pop() {
	db.stack = db.stack[:len(db.stack)-1]
}

// recordDep appends dep to the in-flight dependency list being built
// for parent's entry. The tracker relies on nested Run calls happening
// exactly when the currently executing body calls into another query
// through the typed wrapper, so the in-flight list lives in
// db.inflightDeps, keyed by stack depth rather than on the entry itself
// (the entry is still Uninit and not safe to mutate concurrently with
// its own build).
func (db *Database) recordDep(parent frame, d dep) {
	depth := len(db.stack) - 1
	for len(db.inflightDeps) <= depth {
		db.inflightDeps = append(db.inflightDeps, nil)
	}
	db.inflightDeps[depth] = append(db.inflightDeps[depth], d)
}

// takeDeps returns and clears the dependency list accumulated for the
// frame currently on top of the stack (depth = len(stack)-1), ready to
// be committed via cacheEntry.finish.
func (db *Database) takeDeps() []dep {
	depth := len(db.stack) - 1
	if depth < 0 || depth >= len(db.inflightDeps) {
		return nil
	}
	deps := db.inflightDeps[depth]
	db.inflightDeps[depth] = nil
	return deps
}
