package resolver

import "errors"

var (
	// ErrUncanonicalizable is reported when a requested path cannot be made absolute
	// or its symlinks cannot be resolved (missing file, permission denied).
	ErrUncanonicalizable = errors.New("path cannot be canonicalized")

	// ErrNoVolume is reported when no mounted volume is an ancestor of the path.
	ErrNoVolume = errors.New("no filesystem found for path")
)
