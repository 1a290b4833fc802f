package query

import "testing"

func TestRegisterIsIdempotent(t *testing.T) {
	db := New()
	key := KeyFor[int, int]("registry/double")
	Register(db, key, func(_ *Database, n int) int { return n * 2 })
	Register(db, key, func(_ *Database, n int) int { return n * 2 })

	if got := Run[int, int](db, key, 3); got != 6 {
		t.Errorf("Run = %d, want 6", got)
	}
}

func TestRegisterOnUnseenQueryInstalledSilently(t *testing.T) {
	db := New()
	key := KeyFor[int, int]("registry/fresh")
	Register(db, key, func(_ *Database, n int) int { return n + 1 })
	if got := Run[int, int](db, key, 1); got != 2 {
		t.Errorf("Run = %d, want 2", got)
	}
}

func TestVersionNeverDecreases(t *testing.T) {
	db := New()
	key := KeyFor[int, int]("registry/versions")
	Register(db, key, func(_ *Database, n int) int { return n })

	Run[int, int](db, key, 1)
	entry, _ := db.get(key, db.hashInput(1))
	v1 := entry.version

	Register(db, key, func(_ *Database, n int) int { return n })
	Run[int, int](db, key, 1)
	entry, _ = db.get(key, db.hashInput(1))
	if entry.version < v1 {
		t.Errorf("version decreased from %d to %d after redefinition + recompute", v1, entry.version)
	}
}

func TestNoDanglingDependencies(t *testing.T) {
	db := New()
	leafKey := KeyFor[int, int]("registry/leaf")
	Register(db, leafKey, func(_ *Database, n int) int { return n })

	rootKey := KeyFor[int, int]("registry/root")
	Register(db, rootKey, func(db *Database, n int) int {
		return Run[int, int](db, leafKey, n) + 1
	})

	Run[int, int](db, rootKey, 5)

	rootEntry, ok := db.get(rootKey, db.hashInput(5))
	if !ok {
		t.Fatal("root entry should exist")
	}
	for _, d := range rootEntry.dependencies {
		if _, ok := db.get(d.key, d.hash); !ok {
			t.Errorf("dependency %v has no extant entry", d)
		}
	}
}

func TestDominance(t *testing.T) {
	db := New()
	leafKey := KeyFor[int, int]("registry/dom_leaf")
	Register(db, leafKey, func(_ *Database, n int) int { return n })

	rootKey := KeyFor[int, int]("registry/dom_root")
	Register(db, rootKey, func(db *Database, n int) int {
		return Run[int, int](db, leafKey, n)
	})

	Run[int, int](db, rootKey, 7)

	rootEntry, _ := db.get(rootKey, db.hashInput(7))
	maxDep := uint64(0)
	for _, d := range rootEntry.dependencies {
		depEntry, _ := db.get(d.key, d.hash)
		if depEntry.version > maxDep {
			maxDep = depEntry.version
		}
	}
	if rootEntry.version < maxDep {
		t.Errorf("root version %d does not dominate dependency version %d", rootEntry.version, maxDep)
	}
}
