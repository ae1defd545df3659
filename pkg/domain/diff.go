package domain

// SnapshotDiff represents the changes between two snapshots of one session.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	Revision uint64 `json:"revision"`

	CurrentNodeID *string    `json:"current_node_id,omitempty"`
	Terminal      *bool      `json:"terminal,omitempty"`
	Path          *PathDelta `json:"path,omitempty"`
}

// PathDelta describes how to turn the old path into the new one:
// keep the first Keep entries, then append Appended.
type PathDelta struct {
	Keep     int         `json:"keep"`
	Appended []PathEntry `json:"appended,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{Revision: newSnap.Revision}

	if oldSnap == nil || oldSnap.CurrentNodeID != newSnap.CurrentNodeID {
		diff.CurrentNodeID = &newSnap.CurrentNodeID
	}
	if oldSnap == nil || oldSnap.Terminal != newSnap.Terminal {
		diff.Terminal = &newSnap.Terminal
	}
	diff.Path = diffPath(oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffPath(old, new *Snapshot) *PathDelta {
	if old == nil {
		if len(new.Path) == 0 {
			return nil
		}
		return &PathDelta{Appended: append([]PathEntry(nil), new.Path...)}
	}

	// Longest common prefix
	keep := 0
	for keep < len(old.Path) && keep < len(new.Path) && old.Path[keep] == new.Path[keep] {
		keep++
	}
	if keep == len(old.Path) && keep == len(new.Path) {
		return nil
	}

	delta := &PathDelta{Keep: keep}
	if keep < len(new.Path) {
		delta.Appended = append([]PathEntry(nil), new.Path[keep:]...)
	}
	return delta
}

// Apply replays the diff on a copy of base and returns the result.
func (d *SnapshotDiff) Apply(base Snapshot) Snapshot {
	out := base.Clone()
	if d == nil {
		return out
	}
	out.Revision = d.Revision
	if d.CurrentNodeID != nil {
		out.CurrentNodeID = *d.CurrentNodeID
	}
	if d.Terminal != nil {
		out.Terminal = *d.Terminal
	}
	if d.Path != nil {
		keep := d.Path.Keep
		if keep > len(out.Path) {
			keep = len(out.Path)
		}
		out.Path = append(out.Path[:keep], d.Path.Appended...)
	}
	return out
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.CurrentNodeID == nil && d.Terminal == nil && d.Path == nil
}
