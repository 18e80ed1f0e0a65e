package petri

import "errors"

// Build-time validation errors. These surface from Builder.Build and
// correspond to the InvalidModel taxonomy entry consumed by the analysis
// package.
var (
	ErrEmptyID             = errors.New("petri: place or transition has empty id")
	ErrDuplicatePlaceID    = errors.New("petri: duplicate place id")
	ErrDuplicateTransition = errors.New("petri: duplicate transition id")
	ErrUnknownArcEndpoint  = errors.New("petri: arc endpoint is neither a known place nor transition")
	ErrNonBipartiteArc     = errors.New("petri: arc must connect a place and a transition")
	ErrZeroWeight          = errors.New("petri: arc weight must be positive")
	ErrCapacityExceeded    = errors.New("petri: initial tokens exceed place capacity")
)
