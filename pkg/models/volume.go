package models

import "sort"

// Volume is a mounted filesystem as reported by the host.
type Volume struct {
	MountPoint string `json:"mount_point"`
	Device     string `json:"device,omitempty"`
	FSType     string `json:"fs_type,omitempty"`
	Total      uint64 `json:"total"`     // Bytes
	Available  uint64 `json:"available"` // Bytes
}

// Used returns the bytes in use, clamped at zero.
func (v Volume) Used() uint64 {
	if v.Available > v.Total {
		return 0
	}
	return v.Total - v.Available
}

// TrackedVolumes is an immutable set of volume identifiers (mount points).
// The zero value is an empty set.
type TrackedVolumes struct {
	ids map[string]struct{}
}

// NewTrackedVolumes builds a set from the given identifiers; duplicates collapse.
func NewTrackedVolumes(ids ...string) TrackedVolumes {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return TrackedVolumes{ids: set}
}

// Contains reports whether the identifier is tracked.
func (t TrackedVolumes) Contains(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// Len returns the number of tracked identifiers.
func (t TrackedVolumes) Len() int {
	return len(t.ids)
}

// IDs returns a sorted copy of the identifiers.
func (t TrackedVolumes) IDs() []string {
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
