package query

import "reflect"

// uninit is the sentinel stored as a cacheEntry's value while that
// entry's computation is on the call stack. Seeing it from a
// *consulting* caller (rather than the computation that owns it)
// implies a cycle — see decide() in run.go.
type uninit struct{}

// dep records one (query, input-hash) pair consulted while building a
// cache entry, in the order it was consulted.
type dep struct {
	key  Key
	hash InputHash
}

// cacheEntry is the memoization record for one (query, input-hash)
// pair. It is created the first time Run touches that pair and lives
// until the owning Database is dropped — there is no GC of stale
// entries, per spec Non-goals.
type cacheEntry struct {
	version      uint64
	dependencies []dep
	value        any // uninit{} or the memoized output
	effects      map[reflect.Type][]any
	redefined    bool
}

// isUninit reports whether the entry has not yet completed a build.
func (e *cacheEntry) isUninit() bool {
	_, ok := e.value.(uninit)
	return ok
}

// newUninitEntry creates an entry mid-build, with the given version and
// no recorded dependencies or effects yet; both are filled in when the
// owning computation commits via finish().
func newUninitEntry(version uint64) *cacheEntry {
	return &cacheEntry{
		version: version,
		value:   uninit{},
	}
}
