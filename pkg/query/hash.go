package query

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/mitchellh/hashstructure/v2"
)

// InputHash is a 64-bit fingerprint of a query's input, used as the
// cache store's secondary key. Collisions within the same query are
// tolerated only in that they will produce an incorrect cache hit —
// the engine trusts the hash, it never falls back to an equality check.
type InputHash uint64

// hashInput computes a deterministic InputHash for v.
//
// hashstructure walks v by reflection and produces a structural hash
// that does not require the caller's type to be registered or even
// exported ahead of time (unlike encoding/gob, which needs every
// concrete type stored in an interface value pre-registered) — needed
// since the engine never gets to see an input's type statically. That
// structural hash is then folded together with db.hashSeed and reduced
// with xxhash/v2, so the same Database instance always hashes an equal
// input to the same value and two Databases with different seeds
// almost always hash the same input differently (the fold is a 64-bit
// hash, not an injective mapping).
func (db *Database) hashInput(v any) InputHash {
	structural, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		panic(fmt.Sprintf("query: input of type %T is not hashable: %v", v, err))
	}

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], db.hashSeed)
	binary.LittleEndian.PutUint64(buf[8:16], structural)
	return InputHash(xxhash.Sum64(buf[:]))
}
