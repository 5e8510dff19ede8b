// Package resolver maps user supplied paths onto the mounted volumes that back them.
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"ressample/pkg/log"
	"ressample/pkg/models"
)

// CanonicalizeFunc turns a user supplied path into an absolute path with symlinks resolved.
type CanonicalizeFunc func(path string) (string, error)

// Warning describes a requested path that ended up untracked.
type Warning struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Message returns the warning text.
func (w Warning) Message() string {
	return w.Err.Error()
}

// Match pairs a canonical path with the volume that backs it.
type Match struct {
	Path      string        `json:"path"`
	Canonical string        `json:"canonical"`
	Volume    models.Volume `json:"volume"`
}

// Result is the outcome of a resolution run.
type Result struct {
	Tracked  models.TrackedVolumes
	Matches  []Match
	Warnings []Warning
}

// Resolver computes the tracked volume set. It holds no mutable state.
type Resolver struct {
	canonicalize CanonicalizeFunc
}

// New creates a resolver that canonicalizes against the local filesystem.
func New() *Resolver {
	return &Resolver{canonicalize: Canonicalize}
}

// NewWithCanonicalizer creates a resolver with a custom canonicalization step.
func NewWithCanonicalizer(fn CanonicalizeFunc) *Resolver {
	if fn == nil {
		fn = Canonicalize
	}
	return &Resolver{canonicalize: fn}
}

// Canonicalize makes path absolute and resolves every symlink along it.
// The path must exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Resolve selects, for every requested path, the mounted volume whose mount point is
// the longest ancestor of the canonical path. Paths that cannot be canonicalized or
// have no ancestor mount are reported as warnings and left untracked.
func (r *Resolver) Resolve(paths []string, mounts []models.Volume) *Result {
	result := &Result{}
	ids := make([]string, 0, len(paths))

	for _, requested := range paths {
		canonical, err := r.canonicalize(requested)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Path: requested,
				Err:  fmt.Errorf("%w: %s: %w", ErrUncanonicalizable, requested, err),
			})
			continue
		}

		volume, ok := LongestMount(canonical, mounts)
		if !ok {
			result.Warnings = append(result.Warnings, Warning{
				Path: requested,
				Err:  fmt.Errorf("%w: %s", ErrNoVolume, canonical),
			})
			continue
		}

		result.Matches = append(result.Matches, Match{
			Path:      requested,
			Canonical: canonical,
			Volume:    volume,
		})
		ids = append(ids, volume.MountPoint)
	}

	result.Tracked = models.NewTrackedVolumes(ids...)
	return result
}

// LongestMount returns the volume whose mount point is the deepest ancestor of path.
// On equal mount points the first volume in the table wins.
func LongestMount(path string, mounts []models.Volume) (models.Volume, bool) {
	var (
		best    models.Volume
		bestLen = -1
	)

	for _, mount := range mounts {
		mp := mount.MountPoint
		if mp == "" || !IsAncestor(mp, path) {
			continue
		}
		if len(mp) > bestLen {
			best = mount
			bestLen = len(mp)
		}
	}

	return best, bestLen >= 0
}

// IsAncestor reports whether mountPoint is path itself or a directory above it.
// The comparison is by path component, so "/data" is not an ancestor of "/database".
func IsAncestor(mountPoint, path string) bool {
	mp := filepath.Clean(mountPoint)
	p := filepath.Clean(path)

	if mp == p {
		return true
	}

	if !strings.HasSuffix(mp, string(filepath.Separator)) {
		mp += string(filepath.Separator)
	}
	return strings.HasPrefix(p, mp)
}

// Log writes the resolution outcome to the process logger.
func (res *Result) Log() {
	logger := log.Component("resolver")

	for _, w := range res.Warnings {
		logger.Warn().Str("path", w.Path).Err(w.Err).Msg("Path will not be tracked")
	}

	for _, m := range res.Matches {
		logger.Info().
			Str("path", m.Path).
			Str("mount_point", m.Volume.MountPoint).
			Str("total", humanize.IBytes(m.Volume.Total)).
			Str("available", humanize.IBytes(m.Volume.Available)).
			Msg("Tracking volume")
	}

	if res.Tracked.Len() == 0 {
		logger.Info().Msg("No volumes tracked, disk figures will be zero")
	}
}
