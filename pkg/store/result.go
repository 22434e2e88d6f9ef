package store

// Result is what a case reducer returns: either a marker that the draft was
// mutated in place, or a replacement value for the slice.
type Result[S any] struct {
	value    S
	replaced bool
}

// Mutated reports that the draft passed to the case reducer holds the new
// state. Returning it without touching the draft leaves state unchanged.
func Mutated[S any]() Result[S] {
	return Result[S]{}
}

// Replace discards the draft and uses value as the new state.
func Replace[S any](value S) Result[S] {
	return Result[S]{value: value, replaced: true}
}

// Replaced reports whether the result carries a replacement value.
func (r Result[S]) Replaced() bool {
	return r.replaced
}

// Value returns the replacement value, or the zero value for Mutated.
func (r Result[S]) Value() S {
	return r.value
}

// CaseReducer updates the draft for action.
type CaseReducer[S any] func(draft *S, action Action) Result[S]
