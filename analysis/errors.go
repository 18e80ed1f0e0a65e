package analysis

import "errors"

// Error taxonomy. None of these are raised across the Analyzer boundary;
// analyze() always recovers them into Result.Success/Errors/Warnings. They
// exist so internal helpers have a consistent, typed vocabulary to return
// instead of ad-hoc fmt.Errorf strings.
var (
	// ErrInvalidModel: the model snapshot violates a structural invariant. Fatal.
	ErrInvalidModel = errors.New("analysis: invalid model")

	// ErrInvalidOption: an option value is out of its documented range. Fatal
	// for the current call only.
	ErrInvalidOption = errors.New("analysis: invalid option")

	// ErrNumericInstability: an SVD condition number or rationalization
	// failed. Downgraded to a warning; the offending result is dropped.
	ErrNumericInstability = errors.New("analysis: numeric instability")

	// ErrLimitReached: a bound (max_states, max_depth, max_cycles, ...) was
	// hit. Downgraded to a warning; the matching truncated flag is set.
	ErrLimitReached = errors.New("analysis: limit reached")

	// ErrDependencyUnavailable: a consulted analyzer returned Success=false.
	// Downgraded to a warning on the caller.
	ErrDependencyUnavailable = errors.New("analysis: dependency unavailable")

	// ErrInternal: an unexpected arithmetic, allocation, or invariant
	// failure. Fatal; no partial data is surfaced.
	ErrInternal = errors.New("analysis: internal error")
)
