package query

import "fmt"

// CycleError is returned by TryRun when a computation transitively
// depends on itself at the same input. The core never recovers from a
// cycle automatically; this is treated as a programmer error, with
// TryRun as the only non-panicking way to observe it.
type CycleError struct {
	Key   Key
	Input any
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("query: cycle detected: %s re-entered with input %v while already on the call stack", e.Key, e.Input)
}

// errUnknownQuery is the fatal programmer error raised when Run is
// called for a Key with no registered body. The engine has nothing to
// execute, so this always panics — there is no fallible variant.
type errUnknownQuery struct {
	Key Key
}

func (e *errUnknownQuery) Error() string {
	return fmt.Sprintf("query: no body registered for %s", e.Key)
}

// errTypeMismatch indicates the registry/cache type-erasure contract was
// violated by the caller (e.g. Run invoked with an input type that does
// not match the type the query was registered with). This always
// indicates an implementation bug in the wrapper layer, not user data,
// so it panics rather than returning an error.
type errTypeMismatch struct {
	Key      Key
	Expected string
	Got      string
}

func (e *errTypeMismatch) Error() string {
	return fmt.Sprintf("query: type mismatch for %s: expected %s, got %s", e.Key, e.Expected, e.Got)
}
