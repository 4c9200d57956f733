//go:build property

package history

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/webbuilder/internal/canvas"
)

// TestHistoryProperties checks the buffer against a reference model.
func TestHistoryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("index stays in bounds", prop.ForAll(
		func(ops []int) bool {
			b := New(snap(), 0)
			for i, op := range ops {
				switch op {
				case 0:
					b.Record(snap(fmt.Sprint(i)))
				case 1:
					b.Undo()
				default:
					b.Redo()
				}
				if b.Index() < 0 || b.Index() >= b.Len() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.Property("k records then k undos restore the initial snapshot", prop.ForAll(
		func(k int) bool {
			initial := snap("seed")
			b := New(initial, 0)
			for i := 0; i < k; i++ {
				b.Record(snap(fmt.Sprint(i)))
			}
			for i := 0; i < k; i++ {
				b.Undo()
			}
			want, _ := json.Marshal(initial)
			got, _ := json.Marshal(b.Current())
			return string(want) == string(got)
		},
		gen.IntRange(0, 50),
	))

	properties.Property("matches a slice model", prop.ForAll(
		func(ops []int) bool {
			b := New(canvas.List{}, 0)
			model := []string{""}
			idx := 0
			for i, op := range ops {
				switch op {
				case 0:
					id := fmt.Sprint(i)
					b.Record(snap(id))
					model = append(model[:idx+1], id)
					idx = len(model) - 1
				case 1:
					if idx > 0 {
						idx--
					}
					b.Undo()
				default:
					if idx < len(model)-1 {
						idx++
					}
					b.Redo()
				}
			}
			cur := b.Current()
			if model[idx] == "" {
				return len(cur) == 0 && b.Len() == len(model)
			}
			return len(cur) == 1 && cur[0].ID == model[idx] && b.Len() == len(model)
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
