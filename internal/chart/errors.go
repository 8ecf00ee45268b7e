package chart

import "errors"

var (
	// ErrInvalidInput reports a malformed argument: an empty or unsorted
	// candidate list, a scan range outside the grid, or a non-positive period.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSignalInWindow reports a correction window with no height above
	// the noise floor.
	ErrNoSignalInWindow = errors.New("no signal in window")

	// ErrInsufficientAnchors reports fewer than two distinct pixel anchors.
	ErrInsufficientAnchors = errors.New("insufficient anchors")

	// ErrDegenerateSpacing reports fewer than two representative lines, so
	// the block delta is undefined.
	ErrDegenerateSpacing = errors.New("degenerate spacing")
)
