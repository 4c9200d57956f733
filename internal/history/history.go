// Package history implements the per-page undo/redo buffer over full
// snapshots of a page's element list.
package history

import "github.com/conneroisu/webbuilder/internal/canvas"

// Buffer is a linear undo/redo stack. It always holds at least one snapshot
// and 0 <= index < len(snapshots). Snapshots are deep copies: nothing a
// caller does to a list after recording it can change history.
type Buffer struct {
	snapshots []canvas.List
	index     int
	limit     int
}

// New creates a buffer whose only snapshot is initial. limit caps the number
// of snapshots kept; 0 means unlimited.
func New(initial canvas.List, limit int) *Buffer {
	if limit < 0 {
		limit = 0
	}

	return &Buffer{
		snapshots: []canvas.List{initial.Clone()},
		limit:     limit,
	}
}

// Record discards every snapshot after the current one, appends s and makes
// it current. When the buffer is over its limit the oldest snapshots are dropped.
func (b *Buffer) Record(s canvas.List) {
	b.snapshots = append(b.snapshots[:b.index+1], s.Clone())
	b.index = len(b.snapshots) - 1

	if b.limit > 0 && len(b.snapshots) > b.limit {
		drop := len(b.snapshots) - b.limit
		b.snapshots = append([]canvas.List(nil), b.snapshots[drop:]...)
		b.index -= drop
	}
}

// Undo steps back one snapshot and returns it. At the oldest snapshot it
// returns the current snapshot and false.
func (b *Buffer) Undo() (canvas.List, bool) {
	if b.index == 0 {
		return b.Current(), false
	}
	b.index--

	return b.Current(), true
}

// Redo steps forward one snapshot and returns it. At the newest snapshot it
// returns the current snapshot and false.
func (b *Buffer) Redo() (canvas.List, bool) {
	if b.index >= len(b.snapshots)-1 {
		return b.Current(), false
	}
	b.index++

	return b.Current(), true
}

// Current returns a copy of the snapshot at the current index.
func (b *Buffer) Current() canvas.List {
	return b.snapshots[b.index].Clone()
}

// CanUndo reports whether Undo would move.
func (b *Buffer) CanUndo() bool { return b.index > 0 }

// CanRedo reports whether Redo would move.
func (b *Buffer) CanRedo() bool { return b.index < len(b.snapshots)-1 }

// Index returns the current position.
func (b *Buffer) Index() int { return b.index }

// Len returns the number of snapshots held.
func (b *Buffer) Len() int { return len(b.snapshots) }

// State is the serialisable form of a buffer.
type State struct {
	Snapshots []canvas.List `json:"snapshots"`
	Index     int           `json:"index"`
}

// State returns a deep copy of the buffer contents.
func (b *Buffer) State() State {
	snaps := make([]canvas.List, len(b.snapshots))
	for i, s := range b.snapshots {
		snaps[i] = s.Clone()
	}

	return State{Snapshots: snaps, Index: b.index}
}

// Restore rebuilds a buffer from st. An empty or inconsistent state falls
// back to a buffer holding just fallback. A state longer than limit keeps the
// newest snapshots that still include the current one.
func Restore(st State, fallback canvas.List, limit int) *Buffer {
	if len(st.Snapshots) == 0 || st.Index < 0 || st.Index >= len(st.Snapshots) {
		return New(fallback, limit)
	}
	b := &Buffer{limit: max(limit, 0)}

	start, end := 0, len(st.Snapshots)
	if b.limit > 0 && end > b.limit {
		start = min(end-b.limit, st.Index)
		end = start + b.limit
	}
	for _, s := range st.Snapshots[start:end] {
		b.snapshots = append(b.snapshots, s.Clone())
	}
	b.index = st.Index - start

	return b
}
