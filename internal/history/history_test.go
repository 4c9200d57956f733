package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/types"
)

func snap(ids ...string) canvas.List {
	l := canvas.List{}
	for _, id := range ids {
		l = append(l, canvas.Element{
			ID:         id,
			TemplateID: "text-03",
			Props:      types.Props{"text": types.String(id)},
			Styles:     types.Styles{},
		})
	}
	return l
}

func ids(l canvas.List) []string {
	out := []string{}
	for _, e := range l {
		out = append(out, e.ID)
	}
	return out
}

func TestRecordUndoRedo(t *testing.T) {
	b := New(snap(), 0)
	assert.Equal(t, 1, b.Len())
	assert.False(t, b.CanUndo())

	b.Record(snap("a"))
	b.Record(snap("a", "b"))
	assert.Equal(t, 2, b.Index())

	got, ok := b.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, ids(got))

	got, ok = b.Redo()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got, ok = b.Redo()
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestUndoAtStartIsNoop(t *testing.T) {
	b := New(snap("x"), 0)

	got, ok := b.Undo()
	assert.False(t, ok)
	assert.Equal(t, []string{"x"}, ids(got))
	assert.Equal(t, 0, b.Index())
}

func TestRecordAfterUndoTruncatesRedo(t *testing.T) {
	// [A, B, C] at index 2
	b := New(snap("A"), 0)
	b.Record(snap("B"))
	b.Record(snap("C"))

	got, ok := b.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"B"}, ids(got))

	b.Record(snap("D"))
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 2, b.Index())

	st := b.State()
	assert.Equal(t, []string{"A"}, ids(st.Snapshots[0]))
	assert.Equal(t, []string{"B"}, ids(st.Snapshots[1]))
	assert.Equal(t, []string{"D"}, ids(st.Snapshots[2]))

	got, ok = b.Redo()
	assert.False(t, ok)
	assert.Equal(t, []string{"D"}, ids(got))
}

func TestKUndosRestoreInitial(t *testing.T) {
	initial := snap("seed")
	b := New(initial, 0)

	const k = 7
	live := initial.Clone()
	for i := 0; i < k; i++ {
		live = live.Add(snap(string(rune('a' + i)))[0])
		b.Record(live)
	}
	for i := 0; i < k; i++ {
		_, ok := b.Undo()
		require.True(t, ok)
	}

	want, err := json.Marshal(initial)
	require.NoError(t, err)
	got, err := json.Marshal(b.Current())
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestSnapshotsAreIsolated(t *testing.T) {
	live := snap("a")
	b := New(canvas.List{}, 0)
	b.Record(live)

	live[0].Props["text"] = types.String("mutated")
	live[0].Styles["color"] = "red"

	cur := b.Current()
	assert.Equal(t, "a", cur[0].Props["text"].Text())
	assert.Empty(t, cur[0].Styles)

	cur[0].Styles["color"] = "blue"
	assert.Empty(t, b.Current()[0].Styles)
}

func TestLimit(t *testing.T) {
	b := New(snap(), 3)
	b.Record(snap("a"))
	b.Record(snap("b"))
	b.Record(snap("c"))

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 2, b.Index())

	_, _ = b.Undo()
	got, _ := b.Undo()
	assert.Equal(t, []string{"a"}, ids(got))
	_, ok := b.Undo()
	assert.False(t, ok)
}

func TestStateRoundTrip(t *testing.T) {
	b := New(snap(), 0)
	b.Record(snap("a"))
	b.Record(snap("a", "b"))
	b.Undo()

	data, err := json.Marshal(b.State())
	require.NoError(t, err)

	var st State
	require.NoError(t, json.Unmarshal(data, &st))
	restored := Restore(st, nil, 0)

	assert.Equal(t, 1, restored.Index())
	assert.Equal(t, 3, restored.Len())
	assert.True(t, restored.CanRedo())

	broken := Restore(State{Index: 4}, snap("z"), 0)
	assert.Equal(t, 1, broken.Len())
	assert.Equal(t, []string{"z"}, ids(broken.Current()))
}

func TestRestoreAppliesLimit(t *testing.T) {
	st := State{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		st.Snapshots = append(st.Snapshots, snap(id))
	}

	t.Run("current at the end", func(t *testing.T) {
		st := st
		st.Index = 10
		b := Restore(st, nil, 3)

		assert.Equal(t, 3, b.Len())
		assert.Equal(t, 2, b.Index())
		assert.Equal(t, []string{"k"}, ids(b.Current()))
		assert.False(t, b.CanRedo())
	})

	t.Run("current kept when older than the window", func(t *testing.T) {
		st := st
		st.Index = 2
		b := Restore(st, nil, 3)

		assert.Equal(t, 3, b.Len())
		assert.Equal(t, 0, b.Index())
		assert.Equal(t, []string{"c"}, ids(b.Current()))
		got, ok := b.Redo()
		assert.True(t, ok)
		assert.Equal(t, []string{"d"}, ids(got))
	})

	t.Run("unlimited keeps everything", func(t *testing.T) {
		st := st
		st.Index = 5
		b := Restore(st, nil, 0)

		assert.Equal(t, 11, b.Len())
		assert.Equal(t, 5, b.Index())
	})
}
