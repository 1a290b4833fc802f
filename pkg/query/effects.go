package query

import (
	"reflect"
	"sort"
)

// effectScratch accumulates the effects emitted by one in-flight
// computation, keyed by the emitted value's concrete type.
type effectScratch map[reflect.Type][]any

// pushEffectScratch opens a fresh scratch buffer for the computation
// about to start, and returns it.
//
// A single Database-level scratch area, replaced wholesale on every
// run, would drop the effects of an outer computation whenever an
// inner one also emits. A stack of per-computation scratch buffers, one
// pushed per active Run, avoids that: an inner computation's DoEffect
// calls can never clobber an outer one's in-flight effects.
func (db *Database) pushEffectScratch() effectScratch {
	s := make(effectScratch)
	db.effectStack = append(db.effectStack, s)
	return s
}

// popEffectScratch removes and returns the top-of-stack scratch buffer,
// once its owning computation has finished.
func (db *Database) popEffectScratch() effectScratch {
	n := len(db.effectStack)
	s := db.effectStack[n-1]
	db.effectStack = db.effectStack[:n-1]
	return s
}

// doEffect records value in the scratch buffer of the computation
// currently on top of the effect stack. Calling it outside of any Run
// (db.effectStack empty) is a no-op: there is nothing to attribute the
// effect to.
func (db *Database) doEffect(value any) {
	if len(db.effectStack) == 0 {
		return
	}
	top := db.effectStack[len(db.effectStack)-1]
	t := reflect.TypeOf(value)
	top[t] = append(top[t], value)
}

// collectEffects aggregates the effects of type t across every cache
// entry of every registered query, in registration order of query then
// ascending input hash — deterministic, though otherwise arbitrary.
func (db *Database) collectEffects(t reflect.Type) []any {
	var out []any
	for _, key := range db.registrationOrder {
		qe := db.registry[key]
		if qe == nil {
			continue
		}
		hashes := make([]InputHash, 0, len(qe.cache))
		for h := range qe.cache {
			hashes = append(hashes, h)
		}
		sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
		for _, h := range hashes {
			entry := qe.cache[h]
			if entry.effects == nil {
				continue
			}
			out = append(out, entry.effects[t]...)
		}
	}
	return out
}
