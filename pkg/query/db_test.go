package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windlane/iquery/internal/option"
)

// Basic memoization: the body runs once per distinct input, not once
// per call.
func TestScenario_BasicMemoization(t *testing.T) {
	db := New()
	calls := 0
	lenKey := KeyFor[string, int]("scenario1/len")
	Register(db, lenKey, func(_ *Database, s string) int {
		calls++
		return len(s)
	})

	require.Equal(t, 5, Run[string, int](db, lenKey, "hello"))
	require.Equal(t, 5, Run[string, int](db, lenKey, "hello"))
	require.Equal(t, 5, Run[string, int](db, lenKey, "world"))

	assert.Equal(t, 2, calls, "body should run once per distinct input, not once per call")
}

// A derived query re-runs exactly once between its two Run calls when
// the input it depends on is Set again in between.
func TestScenario_DependentInvalidationViaSet(t *testing.T) {
	db := New()
	listKey := KeyFor[struct{}, option.Option[[]int]]("scenario2/list")
	RegisterInput[struct{}, option.Option[[]int]](db, listKey)

	sumRuns := 0
	sumKey := KeyFor[struct{}, int]("scenario2/sum")
	Register(db, sumKey, func(db *Database, _ struct{}) int {
		sumRuns++
		vals, ok := Run[struct{}, option.Option[[]int]](db, listKey, struct{}{}).Get()
		if !ok {
			return 0
		}
		total := 0
		for _, v := range vals {
			total += v
		}
		return total
	})

	Set(db, listKey, struct{}{}, option.Some([]int{1, 2, 3}))
	require.Equal(t, 6, Run[struct{}, int](db, sumKey, struct{}{}))

	Set(db, listKey, struct{}{}, option.Some([]int{}))
	require.Equal(t, 0, Run[struct{}, int](db, sumKey, struct{}{}))

	assert.Equal(t, 2, sumRuns, "sum should re-run exactly once between its two Run calls")
}

// Redefining a query's body cascades invalidation to every dependent
// without a manual invalidation call.
func TestScenario_RedefinitionCascade(t *testing.T) {
	db := New()
	listKey := KeyFor[struct{}, []int]("scenario3/list")
	Register(db, listKey, func(_ *Database, _ struct{}) []int {
		return []int{1, 2, 3}
	})

	sumKey := KeyFor[struct{}, int]("scenario3/sum")
	Register(db, sumKey, func(db *Database, _ struct{}) int {
		total := 0
		for _, v := range Run[struct{}, []int](db, listKey, struct{}{}) {
			total += v
		}
		return total
	})

	require.Equal(t, 6, Run[struct{}, int](db, sumKey, struct{}{}))

	Register(db, listKey, func(_ *Database, _ struct{}) []int {
		return nil
	})

	assert.Equal(t, 0, Run[struct{}, int](db, sumKey, struct{}{}))
}

// A self-referential pair of queries is rejected as a cycle, not
// evaluated.
func TestScenario_CycleDetection(t *testing.T) {
	db := New()
	aKey := KeyFor[struct{}, int]("scenario4/a")
	bKey := KeyFor[struct{}, int]("scenario4/depends_on_a")

	Register(db, aKey, func(db *Database, _ struct{}) int {
		return Run[struct{}, int](db, bKey, struct{}{}) + 1
	})
	Register(db, bKey, func(db *Database, _ struct{}) int {
		return Run[struct{}, int](db, aKey, struct{}{}) - 1
	})

	_, err := TryRun[struct{}, int](db, aKey, struct{}{})
	require.Error(t, err)
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)

	assert.Panics(t, func() {
		Run[struct{}, int](db, aKey, struct{}{})
	}, "Run should panic where TryRun returns a CycleError")
}

// Recursion on distinct inputs is fine, and each distinct input is
// computed exactly once.
func TestScenario_RecursionOnDistinctInputs(t *testing.T) {
	db := New()
	calls := 0
	fibKey := KeyFor[uint64, uint64]("scenario5/fib")
	Register(db, fibKey, func(db *Database, n uint64) uint64 {
		calls++
		if n < 2 {
			return n
		}
		return Run[uint64, uint64](db, fibKey, n-1) + Run[uint64, uint64](db, fibKey, n-2)
	})

	got := Run[uint64, uint64](db, fibKey, 15)
	assert.Equal(t, uint64(610), got)
	assert.Equal(t, 16, calls, "fib(0..=15) should each run exactly once")
}

// Effects are captured alongside the result and replayed from the
// cache, but only while the entry that produced them is still valid.
func TestScenario_EffectCaptureAndReplay(t *testing.T) {
	db := New()
	lenKey := KeyFor[string, int]("scenario6/len")
	Register(db, lenKey, func(db *Database, s string) int {
		if s == "" {
			DoEffect(db, "empty")
		}
		return len(s)
	})

	assert.Equal(t, 0, Run[string, int](db, lenKey, ""))
	assert.Equal(t, []string{"empty"}, Effects[string](db))

	assert.Equal(t, 0, Run[string, int](db, lenKey, ""))
	assert.Equal(t, []string{"empty"}, Effects[string](db), "cached entry's effect should survive unchanged")

	assert.Equal(t, 4, Run[string, int](db, lenKey, "aaaa"))
	assert.Equal(t, []string{"empty"}, Effects[string](db), "the new entry emitted nothing, so the aggregate is unchanged")
}

func TestScenario_InputQueryDefaultsToNone(t *testing.T) {
	db := New()
	key := KeyFor[struct{}, option.Option[string]]("scenario_default/input")
	RegisterInput[struct{}, option.Option[string]](db, key)

	got := Run[struct{}, option.Option[string]](db, key, struct{}{})
	assert.False(t, got.IsSome(), "an input query that was never Set should surface the null variant, not an error")
}
