package query

import (
	"log"
	"reflect"
)

// Database aggregates the query registry, cache store, dependency
// tracker, effect buffer, and call stack into the single mutable value
// client code drives. It has no intrinsic lifetime: create one with
// New, feed it registrations and Run calls, read back effects, and
// discard it — there is no Close, because there is nothing to flush or
// release (no on-disk state, no background goroutines, per spec
// Non-goals on persistence and parallelism).
//
// Database is not safe for concurrent use. It is a deliberate design
// choice, not an oversight: the query runtime is specified as
// single-threaded, and every mutation Run performs (registry lookups,
// cache writes, stack push/pop, effect scratch push/pop) assumes no
// other goroutine observes the Database mid-mutation.
type Database struct {
	registry          map[Key]*queryEntry
	registrationOrder []Key

	stack        []frame
	inflightDeps [][]dep

	effectStack []effectScratch

	hashSeed uint64

	logger *log.Logger
}

// New creates an empty Database: no registered queries, no cached
// entries, no active call stack.
func New() *Database {
	return &Database{
		registry: make(map[Key]*queryEntry),
		hashSeed: defaultHashSeed,
	}
}

// NewWithConfig creates a Database configured per cfg; see Config and
// ConfigFromEnv.
func NewWithConfig(cfg Config) *Database {
	db := New()
	db.hashSeed = cfg.HashSeed
	return db
}

// Register installs body as the implementation of the query identified
// by key. Must not be called from within a running query.
func Register[I, O any](db *Database, key Key, body func(*Database, I) O) {
	db.register(key, eraseBody(key, body))
}

// QueryDef bundles a query's Key with its statically-known default
// body, the shape a code-generation layer would produce for each
// declared query function. RegisterImpl is sugar over Register for a
// QueryDef.
type QueryDef[I, O any] interface {
	Key() Key
	Body() func(*Database, I) O
}

// RegisterImpl registers def's statically-known body under its Key.
func RegisterImpl[I, O any](db *Database, def QueryDef[I, O]) {
	Register(db, def.Key(), def.Body())
}

// Run executes the query identified by key with input, returning the
// memoized value on a cache hit or driving a fresh computation
// otherwise. Panics if key has no registered body (ErrUnknownQuery) or
// if input transitively depends on itself (CycleError); use TryRun to
// observe a cycle as an error instead of a panic.
func Run[I, O any](db *Database, key Key, input I) O {
	out, err := TryRun[I, O](db, key, input)
	if err != nil {
		panic(err)
	}
	return out
}

// TryRun is Run's non-panicking variant: it returns a CycleError
// instead of panicking when input transitively depends on itself.
// Unknown-query and type-mismatch errors remain panics — they are
// fatal, not recoverable conditions.
//
// A cycle is not always discovered by this exact call: when the
// re-entrant query is reached through another body's own Run (the
// panicking variant), the CycleError surfaces here as a panic instead
// of runErased's normal error return. The deferred recover below
// catches only that case and reports it the same way as a direct hit,
// leaving every other panic (unknown query, type mismatch, anything
// out of a query body) to propagate unchanged.
func TryRun[I, O any](db *Database, key Key, input I) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*CycleError)
			if !ok {
				panic(r)
			}
			var zero O
			out, err = zero, ce
		}
	}()

	hash := db.hashInput(input)
	raw, rerr := db.runErased(key, input, hash)
	if rerr != nil {
		var zero O
		return zero, rerr
	}
	if _, ok := raw.(uninitializedInput); ok {
		var zero O
		return zero, nil
	}
	return castOutput[O](key, raw), nil
}

// RegisterInput declares key as an input query: one with no body, whose
// value is established only via Set. Its output type O should be a
// nullable sum (internal/option.Option[T] or an equivalent), since
// Run/TryRun on a never-Set input returns O's zero value as the "null
// variant". Must not be called from within a running query.
func RegisterInput[I, O any](db *Database, key Key) {
	db.register(key, nil)
}

// Set writes value directly into the cache for the input query
// identified by key, with no recorded dependencies. Must not be called
// from within a running query.
func Set[I, O any](db *Database, key Key, input I, value O) {
	hash := db.hashInput(input)
	db.setInput(key, hash, value)
}

// DoEffect emits value as a side effect of the computation currently
// executing. Calling it outside of any Run is a harmless no-op.
func DoEffect[T any](db *Database, value T) {
	db.doEffect(value)
}

// Effects aggregates every cached effect of type T across the entire
// Database: for every cache entry of every query, its bucket for T (if
// any), flattened in deterministic (registration, hash) order. Cache
// hits keep their old effects visible through this aggregate; a
// recomputed or redefined entry's new effects replace the old ones for
// that entry alone.
func Effects[T any](db *Database) []T {
	var zero T
	raw := db.collectEffects(reflect.TypeOf(zero))
	out := make([]T, 0, len(raw))
	for _, v := range raw {
		out = append(out, v.(T))
	}
	return out
}

// eraseBody wraps a typed body into the registry's erased Body,
// type-asserting the input on the way in and the output never needs an
// assertion (it is stored as `any` and recovered at the TryRun/Run call
// site via castOutput).
func eraseBody[I, O any](key Key, body func(*Database, I) O) Body {
	return func(db *Database, input any) any {
		typed, ok := input.(I)
		if !ok {
			panic(&errTypeMismatch{
				Key:      key,
				Expected: reflect.TypeOf(typed).String(),
				Got:      reflect.TypeOf(input).String(),
			})
		}
		return body(db, typed)
	}
}

// castOutput recovers the concrete output type from an erased cache
// value. A failed assertion means the wrapper layer registered a body
// for key with one output type and is now calling Run with another —
// an implementation bug, so it panics (errTypeMismatch).
func castOutput[O any](key Key, raw any) O {
	typed, ok := raw.(O)
	if !ok {
		var want O
		panic(&errTypeMismatch{
			Key:      key,
			Expected: reflect.TypeOf(want).String(),
			Got:      reflect.TypeOf(raw).String(),
		})
	}
	return typed
}
