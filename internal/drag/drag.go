// Package drag turns a completed drag gesture into exactly one editing
// operation. It owns the two-tier target policy — pointer containment first,
// bounding-box overlap as the fallback — but none of the geometry: the UI's
// hit-testing layer hands over both candidate lists already resolved.
// Equipment icons are small targets that need point precision; step cards are
// large enough that box overlap is acceptable.
package drag

import (
	"github.com/dylanjrt/garmin-workouts/internal/engine"
	"github.com/dylanjrt/garmin-workouts/internal/model"
)

// Kind tags what a drag source or drop target is.
type Kind string

const (
	KindStep      Kind = "step"
	KindEquipment Kind = "equipment"
)

// Source describes the item being dragged. Equipment sources carry which
// gear flag the icon represents; step sources carry the step id.
type Source struct {
	Kind      Kind
	StepID    string
	Equipment model.EquipmentKind
}

// Target describes a candidate drop target.
type Target struct {
	Kind   Kind
	StepID string
}

// Gesture is a finished drag: the source plus the hit lists computed by the
// drag-and-drop capability at release time. PointerHits are targets whose
// bounds contain the pointer; OverlapHits are targets whose bounds intersect
// the dragged item's box.
type Gesture struct {
	Source      Source
	PointerHits []Target
	OverlapHits []Target
}

// Controller resolves gestures against the editing engine.
type Controller struct {
	eng *engine.Engine
}

// NewController creates a Controller backed by the given engine.
func NewController(eng *engine.Engine) *Controller {
	return &Controller{eng: eng}
}

// ResolveDrop picks the drop target — pointer hits win, box overlaps are the
// fallback — and dispatches one engine operation:
//
//   - equipment dragged onto a step attaches that gear flag,
//   - a step dragged onto a different step reorders the top-level sequence,
//   - everything else (no target, same step, group target) is a no-op.
//
// Repeat groups are never reorder targets; they accept nothing here.
func (c *Controller) ResolveDrop(w model.Workout, g Gesture) engine.Outcome {
	target, ok := resolveTarget(g)
	if !ok {
		return engine.Outcome{Workout: w}
	}

	if g.Source.Kind == KindEquipment && target.Kind == KindStep {
		return c.eng.UpdateStepEquipment(w, target.StepID, engine.FlagPatch(g.Source.Equipment))
	}

	if g.Source.Kind == KindStep && target.Kind == KindStep && g.Source.StepID != target.StepID {
		from := indexOf(w.Steps, g.Source.StepID)
		to := indexOf(w.Steps, target.StepID)
		if from < 0 || to < 0 {
			return engine.Outcome{Workout: w}
		}
		return c.eng.ReorderSteps(w, from, to)
	}

	return engine.Outcome{Workout: w}
}

func resolveTarget(g Gesture) (Target, bool) {
	if len(g.PointerHits) > 0 {
		return g.PointerHits[0], true
	}
	if len(g.OverlapHits) > 0 {
		return g.OverlapHits[0], true
	}
	return Target{}, false
}

// indexOf returns the position of id in the top-level sequence, or -1.
// Group-nested steps are invisible here: only top-level cards reorder.
func indexOf(items model.ItemList, id string) int {
	for i, item := range items {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}
