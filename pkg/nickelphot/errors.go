package nickelphot

import "fmt"

// InsufficientDataError reports a statistic requested over a population with
// no valid pixels.
type InsufficientDataError struct {
	Context string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Context)
}

// InsufficientMatchesError reports a zero-point estimate attempted with fewer
// surviving cross-matches than the configured minimum.
type InsufficientMatchesError struct {
	Band     string
	Survived int
	Min      int
}

func (e *InsufficientMatchesError) Error() string {
	return fmt.Sprintf("band %s: %d cross-matched sources after filtering, need at least %d",
		e.Band, e.Survived, e.Min)
}

// CoordinateTransformError reports a missing or unusable pixel-to-sky
// transform.
type CoordinateTransformError struct {
	Reason string
}

func (e *CoordinateTransformError) Error() string {
	return fmt.Sprintf("coordinate transform: %s", e.Reason)
}

// PlateSolveError reports a failed astrometric solve. Timeout is set when the
// solve deadline elapsed before the service answered.
type PlateSolveError struct {
	Timeout bool
	Err     error
}

func (e *PlateSolveError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("plate solve timed out: %v", e.Err)
	}
	return fmt.Sprintf("plate solve failed: %v", e.Err)
}

func (e *PlateSolveError) Unwrap() error { return e.Err }

// CatalogQueryError reports a failed reference catalog query.
type CatalogQueryError struct {
	Catalog string
	Err     error
}

func (e *CatalogQueryError) Error() string {
	return fmt.Sprintf("catalog %s query failed: %v", e.Catalog, e.Err)
}

func (e *CatalogQueryError) Unwrap() error { return e.Err }
