package analysis

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Metadata carries execution bookkeeping about an Analyze call. It is
// informational only: Result equality ignores it entirely.
type Metadata struct {
	AnalysisTime time.Duration  `json:"analysisTimeNs"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	ItemCount    int            `json:"itemCount"`
	RunID        string         `json:"runId"`
}

// Result is the uniform contract every analyzer returns from Analyze. It
// never represents a raised exception: unexpected failures and expected
// edge cases (empty model, disconnected net, unreachable target) are both
// modeled here, distinguished by Success and the taxonomy of Errors vs
// Warnings.
type Result struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data"`
	Summary  string         `json:"summary"`
	Warnings []string       `json:"warnings,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
	Metadata Metadata       `json:"metadata"`
}

// Get returns Data[key] if present, else def.
func (r *Result) Get(key string, def any) any {
	if r.Data == nil {
		return def
	}
	if v, ok := r.Data[key]; ok {
		return v
	}
	return def
}

// HasWarnings reports whether any warning was recorded.
func (r *Result) HasWarnings() bool { return len(r.Warnings) > 0 }

// HasErrors reports whether any error was recorded.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Bool coerces a Result to a boolean: its Success flag.
func (r *Result) Bool() bool { return r.Success }

// Equal compares two results on Success and Data only — metadata
// (timings, effective parameters) never participates in equality.
func (r *Result) Equal(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Success != other.Success {
		return false
	}
	return dataEqual(r.Data, other.Data)
}

func dataEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && dataEqual(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

// failure builds a Success=false Result carrying exactly one error string
// and no data beyond Summary/Errors.
func failure(summary string, err error) *Result {
	return &Result{
		Success: false,
		Summary: summary,
		Errors:  []string{err.Error()},
	}
}

// emptyModelResult builds the Success=true, zero-valued Result every
// analyzer must return for a null/empty model.
func emptyModelResult(summary string, zeroData map[string]any) *Result {
	return &Result{
		Success: true,
		Data:    zeroData,
		Summary: summary,
	}
}
