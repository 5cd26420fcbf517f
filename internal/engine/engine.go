// Package engine implements every mutation of the workout tree. Operations
// are total: bad input (unknown ids, out-of-range indices, non-positive
// values) is ignored or clamped, never raised, because it all originates from
// the same-process UI. Each successful mutation returns a fresh tree built
// from a deep clone — the input workout is never modified.
package engine

import (
	"math"

	"github.com/dylanjrt/garmin-workouts/internal/model"
)

// DefaultIterations is the iteration count for a repeat group created without
// an explicit count.
const DefaultIterations = 4

// Engine applies edits to workout trees. The zero value is not usable; use
// New.
type Engine struct {
	ids IDGenerator
}

// New creates an Engine. A nil generator falls back to the default
// counter-backed one.
func New(ids IDGenerator) *Engine {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Engine{ids: ids}
}

// Outcome is the result of one editing operation: the (possibly unchanged)
// tree plus how the caller's selection should move.
type Outcome struct {
	Workout model.Workout
	// Changed is false when the operation was a no-op; the session skips
	// dirty-marking and notification in that case.
	Changed bool
	// Select is the id to select when SetSelection is true. Empty with
	// SetSelection set clears the selection.
	Select       string
	SetSelection bool
	// Deselect clears the selection only if it currently equals this id.
	Deselect string
}

func unchanged(w model.Workout) Outcome {
	return Outcome{Workout: w}
}

// AddStep appends a default step to the top-level sequence, or inserts it
// immediately after the item with afterID when that id exists. The new step
// becomes the selection.
func (e *Engine) AddStep(w model.Workout, afterID string) Outcome {
	next := w.Clone()
	step := model.DefaultStep(e.ids.NextID())

	pos := len(next.Steps)
	if afterID != "" {
		for i, item := range next.Steps {
			if item.ItemID() == afterID {
				pos = i + 1
				break
			}
		}
	}

	next.Steps = append(next.Steps, nil)
	copy(next.Steps[pos+1:], next.Steps[pos:])
	next.Steps[pos] = step

	return Outcome{Workout: next, Changed: true, Select: step.ID, SetSelection: true}
}

// AddRepeatGroup appends a new group holding one default step. The group id
// becomes the selection so the iteration field can be edited immediately.
// Iteration counts below 1 are clamped to 1.
func (e *Engine) AddRepeatGroup(w model.Workout, iterations int) Outcome {
	if iterations < 1 {
		iterations = 1
	}
	next := w.Clone()
	group := model.RepeatGroup{
		ID:         e.ids.NextID(),
		StepType:   model.StepRepeat,
		Iterations: iterations,
		Steps:      []model.WorkoutStep{model.DefaultStep(e.ids.NextID())},
	}
	next.Steps = append(next.Steps, group)
	return Outcome{Workout: next, Changed: true, Select: group.ID, SetSelection: true}
}

// AddStepToRepeat appends a default step to the group's inner sequence.
// Unknown group id is a no-op.
func (e *Engine) AddStepToRepeat(w model.Workout, groupID string) Outcome {
	next := w.Clone()
	for i, item := range next.Steps {
		g, ok := item.(model.RepeatGroup)
		if !ok || g.ID != groupID {
			continue
		}
		step := model.DefaultStep(e.ids.NextID())
		g.Steps = append(g.Steps, step)
		next.Steps[i] = g
		return Outcome{Workout: next, Changed: true, Select: step.ID, SetSelection: true}
	}
	return unchanged(w)
}

// UpdateRepeatIterations sets the group's iteration count, clamped to at
// least 1. Unknown group id is a no-op.
func (e *Engine) UpdateRepeatIterations(w model.Workout, groupID string, iterations int) Outcome {
	if iterations < 1 {
		iterations = 1
	}
	next := w.Clone()
	for i, item := range next.Steps {
		g, ok := item.(model.RepeatGroup)
		if !ok || g.ID != groupID {
			continue
		}
		g.Iterations = iterations
		next.Steps[i] = g
		return Outcome{Workout: next, Changed: true}
	}
	return unchanged(w)
}

// RemoveStep removes the step (or group) with stepID. Inner sequences are
// filtered first; a group emptied by that filter is then dropped from the
// top level, so no group ever persists with zero steps. The caller's
// selection is cleared if it pointed at the removed id.
func (e *Engine) RemoveStep(w model.Workout, stepID string) Outcome {
	next := w.Clone()
	removed := false

	// Phase one: filter the id out of every group's inner sequence.
	for i, item := range next.Steps {
		g, ok := item.(model.RepeatGroup)
		if !ok {
			continue
		}
		kept := g.Steps[:0]
		for _, s := range g.Steps {
			if s.ID == stepID {
				removed = true
				continue
			}
			kept = append(kept, s)
		}
		g.Steps = kept
		next.Steps[i] = g
	}

	// Phase two: drop the id itself and any group left empty by phase one.
	kept := next.Steps[:0]
	for _, item := range next.Steps {
		if item.ItemID() == stepID {
			removed = true
			continue
		}
		if g, ok := item.(model.RepeatGroup); ok && len(g.Steps) == 0 {
			continue
		}
		kept = append(kept, item)
	}
	next.Steps = kept

	if !removed {
		return unchanged(w)
	}
	return Outcome{Workout: next, Changed: true, Deselect: stepID}
}

// StepPatch is a field-level update for UpdateStep. Nil fields are left
// untouched. Values are applied as given; distance and iteration invariants
// are enforced by the specialized operations, not here.
type StepPatch struct {
	StepType        *model.StepType
	Stroke          *model.Stroke
	DistanceM       *int
	DurationSeconds *int
	Zone            *int
	Description     *string
}

func (p StepPatch) apply(s *model.WorkoutStep) {
	if p.StepType != nil {
		s.StepType = *p.StepType
	}
	if p.Stroke != nil {
		s.Stroke = *p.Stroke
	}
	if p.DistanceM != nil {
		s.DistanceM = *p.DistanceM
	}
	if p.DurationSeconds != nil {
		v := *p.DurationSeconds
		s.DurationSeconds = &v
	}
	if p.Zone != nil {
		v := *p.Zone
		s.Zone = &v
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
}

// UpdateStep applies a field patch to the step with stepID, searching
// top-level steps then group-nested ones. Unknown id is a no-op.
func (e *Engine) UpdateStep(w model.Workout, stepID string, patch StepPatch) Outcome {
	return e.mutateStep(w, stepID, patch.apply)
}

// UpdateStepDistance snaps the requested distance to the nearest pool-length
// multiple, floored at one pool length, and applies it to the matching step.
func (e *Engine) UpdateStepDistance(w model.Workout, stepID string, rawDistance int) Outcome {
	snapped := Snap(rawDistance, w.PoolLength)
	return e.mutateStep(w, stepID, func(s *model.WorkoutStep) {
		s.DistanceM = snapped
	})
}

// Snap rounds a requested distance to the nearest whole multiple of the pool
// length and floors the result at one length, so no non-rest step can end up
// shorter than a single lap. Snapping an already snapped value is a no-op.
func Snap(rawDistance int, poolLength float64) int {
	if poolLength <= 0 {
		return rawDistance
	}
	laps := int(math.Round(float64(rawDistance) / poolLength))
	if laps < 1 {
		laps = 1
	}
	return int(math.Round(float64(laps) * poolLength))
}

// EquipmentPatch merges gear flags into a step. Nil fields are left alone.
type EquipmentPatch struct {
	PullBuoy  *bool
	Paddles   *bool
	Fins      *bool
	Kickboard *bool
	Snorkel   *bool
}

func (p EquipmentPatch) apply(eq *model.Equipment) {
	if p.PullBuoy != nil {
		eq.PullBuoy = *p.PullBuoy
	}
	if p.Paddles != nil {
		eq.Paddles = *p.Paddles
	}
	if p.Fins != nil {
		eq.Fins = *p.Fins
	}
	if p.Kickboard != nil {
		eq.Kickboard = *p.Kickboard
	}
	if p.Snorkel != nil {
		eq.Snorkel = *p.Snorkel
	}
}

// FlagPatch builds an EquipmentPatch that turns a single gear flag on.
func FlagPatch(kind model.EquipmentKind) EquipmentPatch {
	on := true
	switch kind {
	case model.EquipmentPullBuoy:
		return EquipmentPatch{PullBuoy: &on}
	case model.EquipmentPaddles:
		return EquipmentPatch{Paddles: &on}
	case model.EquipmentFins:
		return EquipmentPatch{Fins: &on}
	case model.EquipmentKickboard:
		return EquipmentPatch{Kickboard: &on}
	case model.EquipmentSnorkel:
		return EquipmentPatch{Snorkel: &on}
	}
	return EquipmentPatch{}
}

// UpdateStepEquipment merges equipment flags into the matching step's gear.
// Unknown id is a no-op.
func (e *Engine) UpdateStepEquipment(w model.Workout, stepID string, patch EquipmentPatch) Outcome {
	return e.mutateStep(w, stepID, func(s *model.WorkoutStep) {
		patch.apply(&s.Equipment)
	})
}

// ReorderSteps moves the top-level item at fromIndex to toIndex. Items inside
// a repeat group are not independently reorderable. Out-of-range indices are
// a no-op.
func (e *Engine) ReorderSteps(w model.Workout, fromIndex, toIndex int) Outcome {
	n := len(w.Steps)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return unchanged(w)
	}
	if fromIndex == toIndex {
		return unchanged(w)
	}

	next := w.Clone()
	item := next.Steps[fromIndex]
	next.Steps = append(next.Steps[:fromIndex], next.Steps[fromIndex+1:]...)
	rest := append(model.ItemList{item}, next.Steps[toIndex:]...)
	next.Steps = append(next.Steps[:toIndex], rest...)
	return Outcome{Workout: next, Changed: true}
}

// mutateStep clones the tree, finds the step by id (top-level first, then
// inside each group) and applies fn to it in place on the clone.
func (e *Engine) mutateStep(w model.Workout, stepID string, fn func(*model.WorkoutStep)) Outcome {
	next := w.Clone()
	for i, item := range next.Steps {
		switch it := item.(type) {
		case model.WorkoutStep:
			if it.ID == stepID {
				fn(&it)
				next.Steps[i] = it
				return Outcome{Workout: next, Changed: true}
			}
		case model.RepeatGroup:
			for j := range it.Steps {
				if it.Steps[j].ID == stepID {
					fn(&it.Steps[j])
					next.Steps[i] = it
					return Outcome{Workout: next, Changed: true}
				}
			}
		}
	}
	return unchanged(w)
}
