package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	measure := PathEntry{NodeID: "measure", EdgeID: "e1", EdgeLabel: "Record BP"}
	classify := PathEntry{NodeID: "classify", EdgeID: "e2", EdgeLabel: "Stage 2"}

	tests := []struct {
		name string
		old  *Snapshot
		new  *Snapshot
		want *SnapshotDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  &Snapshot{Revision: 1, CurrentNodeID: "classify", Path: []PathEntry{measure}},
			want: &SnapshotDiff{
				Revision:      1,
				CurrentNodeID: ptr("classify"),
				Terminal:      ptr(false),
				Path:          &PathDelta{Appended: []PathEntry{measure}},
			},
		},
		{
			name: "No Changes",
			old:  &Snapshot{Revision: 2, CurrentNodeID: "classify", Path: []PathEntry{measure}},
			new:  &Snapshot{Revision: 2, CurrentNodeID: "classify", Path: []PathEntry{measure}},
			want: nil,
		},
		{
			name: "Path Append",
			old:  &Snapshot{Revision: 1, CurrentNodeID: "classify", Path: []PathEntry{measure}},
			new:  &Snapshot{Revision: 2, CurrentNodeID: "decide", Path: []PathEntry{measure, classify}},
			want: &SnapshotDiff{
				Revision:      2,
				CurrentNodeID: ptr("decide"),
				Path:          &PathDelta{Keep: 1, Appended: []PathEntry{classify}},
			},
		},
		{
			name: "Path Truncate (Back)",
			old:  &Snapshot{Revision: 2, CurrentNodeID: "decide", Path: []PathEntry{measure, classify}},
			new:  &Snapshot{Revision: 3, CurrentNodeID: "classify", Path: []PathEntry{measure}},
			want: &SnapshotDiff{
				Revision:      3,
				CurrentNodeID: ptr("classify"),
				Path:          &PathDelta{Keep: 1},
			},
		},
		{
			name: "Terminal Reached",
			old:  &Snapshot{Revision: 3, CurrentNodeID: "decide", Path: []PathEntry{measure, classify}},
			new: &Snapshot{Revision: 4, CurrentNodeID: "outcome", Terminal: true, Path: []PathEntry{
				measure, classify, {NodeID: "decide", EdgeID: "e3", EdgeLabel: "Diabetes"},
			}},
			want: &SnapshotDiff{
				Revision:      4,
				CurrentNodeID: ptr("outcome"),
				Terminal:      ptr(true),
				Path:          &PathDelta{Keep: 2, Appended: []PathEntry{{NodeID: "decide", EdgeID: "e3", EdgeLabel: "Diabetes"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)

			// Applying the diff must reproduce the new snapshot.
			var base Snapshot
			if tt.old != nil {
				base = *tt.old
			}
			applied := got.Apply(base)
			assert.Equal(t, tt.new.CurrentNodeID, applied.CurrentNodeID)
			assert.Equal(t, tt.new.Terminal, applied.Terminal)
			assert.Equal(t, len(tt.new.Path), len(applied.Path))
			for i := range tt.new.Path {
				assert.Equal(t, tt.new.Path[i], applied.Path[i])
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		old := &Snapshot{Revision: 1, CurrentNodeID: "a"}
		new := &Snapshot{Revision: 2, CurrentNodeID: "b"}
		diff := Diff(old, new)
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(bytes), `"terminal"`), "got: %s", bytes)
		assert.False(t, strings.Contains(string(bytes), `"path"`), "got: %s", bytes)
	})
}

func ptr[T any](v T) *T {
	return &v
}
