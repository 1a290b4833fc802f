// Package query implements an incremental, demand-driven computation
// engine in the style of a compiler query database (Salsa / rustc's
// query system): client code registers pure functions of typed input as
// queries, the Database memoizes their results, tracks the dependency
// graph between query calls, invalidates and recomputes only the
// affected subgraph when inputs or query bodies change, detects cycles,
// and replays per-computation side effects alongside cache hits.
//
// Example Usage:
//
//	db := query.New()
//	lenKey := query.KeyFor[string, int]("strings/len")
//	query.Register(db, lenKey, func(db *query.Database, s string) int {
//		return len(s)
//	})
//	n := query.Run[string, int](db, lenKey, "hello") // 5, computed
//	n = query.Run[string, int](db, lenKey, "hello")  // 5, cache hit
//
// Architecture:
//   - Registry: query identity -> type-erased body (registry.go)
//   - Cache store: per-query table of memoized results, keyed by input
//     hash (store.go)
//   - Dependency tracker: call stack recording which query consulted
//     which, per computation (stack.go)
//   - Invalidation & versioning: monotonic per-entry versions decide
//     whether a cached value is still fresh (run.go)
//   - Effect buffer: typed per-computation side-effect log, replayed on
//     cache hits (effects.go)
//   - Cycle detector: the Uninit sentinel plus the active call stack
//     (entry.go, run.go)
package query

import "reflect"

// Key is a stable identity for a registered query: unique per
// (query-definition x generic-instantiation), cheap to hash and compare.
//
// Key is treated opaquely by the rest of this package; it is only ever
// constructed through NewKey or KeyFor and compared for equality as a
// map key.
type Key struct {
	path string
	in   reflect.Type
	out  reflect.Type
}

// NewKey builds a Key from a stable path string plus the input/output
// types it carries. Two Keys are equal iff their path and both types
// match, so the same path used with different type instantiations (the
// generic case) yields distinct keys.
func NewKey(path string, in, out reflect.Type) Key {
	return Key{path: path, in: in, out: out}
}

// KeyFor builds a Key for a query identified by path with input type I
// and output type O, using reflection to fill in the type tag: a string
// path plus a type tag, used by typed wrapper call sites instead of
// hand-rolling NewKey.
func KeyFor[I, O any](path string) Key {
	var i I
	var o O
	return NewKey(path, reflect.TypeOf(i), reflect.TypeOf(o))
}

// String returns a human-readable identifier, useful for diagnostics and
// log lines; it is not part of the equality contract.
func (k Key) String() string {
	in, out := "<nil>", "<nil>"
	if k.in != nil {
		in = k.in.String()
	}
	if k.out != nil {
		out = k.out.String()
	}
	return k.path + "(" + in + ") " + out
}
