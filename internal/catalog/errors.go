package catalog

import "fmt"

// The error kinds surfaced across the library boundary (spec §7). None of
// these are recoverable inside the core - each terminates the current Run
// with a diagnostic naming the offending column code, input path, or label
// ID where applicable.

// MissingWCSError is returned when a requested column needs world
// coordinates but the value image has no WCS attached.
type MissingWCSError struct {
	Column ColumnCode
}

func (e *MissingWCSError) Error() string {
	return fmt.Sprintf("catalog: column %s requires a WCS but none is attached to the value image", e.Column)
}

// UnknownWCSAxisError is returned when an RA/DEC alias could not be
// resolved to a matching WCS axis type.
type UnknownWCSAxisError struct {
	Alias string
}

func (e *UnknownWCSAxisError) Error() string {
	return fmt.Sprintf("catalog: no WCS axis matches alias %q", e.Alias)
}

// DimensionMismatchError is returned when a column is requested for input
// of the wrong dimensionality (a 3D-only column on a 2D image, or vice
// versa).
type DimensionMismatchError struct {
	Column ColumnCode
	Want   int
	Got    int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("catalog: column %s requires %d-D input, got %d-D", e.Column, e.Want, e.Got)
}

// MissingSigmaClipParamsError is returned when a sigma-clip-family column
// is requested without a (multiplier, tolerance) pair configured.
type MissingSigmaClipParamsError struct {
	Column ColumnCode
}

func (e *MissingSigmaClipParamsError) Error() string {
	return fmt.Sprintf("catalog: column %s requires sigma-clip parameters", e.Column)
}

// MissingUpperLimitError is returned when an upper-limit column is
// requested without the Monte-Carlo upper-limit inputs configured.
type MissingUpperLimitError struct {
	Column ColumnCode
}

func (e *MissingUpperLimitError) Error() string {
	return fmt.Sprintf("catalog: column %s requires upper-limit parameters", e.Column)
}

// UnknownColumnCodeError indicates the column registry has no entry for
// the requested code - a bug in the caller or the registry.
type UnknownColumnCodeError struct {
	Column ColumnCode
}

func (e *UnknownColumnCodeError) Error() string {
	return fmt.Sprintf("catalog: unknown column code %q", string(e.Column))
}

// InternalInvariantViolationError indicates an accounting invariant was
// violated (e.g. the clump permutation cursor disagreed with the total
// clump count at the end of a run). Carries the RunID so a failure can be
// correlated with the structured log for that run.
type InternalInvariantViolationError struct {
	RunID string
	What  string
}

func (e *InternalInvariantViolationError) Error() string {
	return fmt.Sprintf("catalog: internal invariant violated (run %s): %s", e.RunID, e.What)
}
