// Package model defines the workout document: an ordered tree of steps and
// repeat groups, plus the pure derivations (total distance, lookups) the
// editing engine and the API layer share.
package model

import "math"

// Stroke identifies a swimming stroke, using Garmin's numeric codes.
type Stroke int

const (
	StrokeAny Stroke = iota + 1
	StrokeBackstroke
	StrokeBreaststroke
	StrokeButterfly
	StrokeFreestyle
	StrokeMixed
	StrokeIM
)

// StepType identifies what kind of work a step represents. StepRepeat is
// reserved for repeat groups and never appears on a flat step.
type StepType int

const (
	StepWarmup StepType = iota + 1
	StepCooldown
	StepInterval
	StepRecovery
	StepRest
	StepRepeat
)

// MaxNameLength is the longest workout name Garmin Connect accepts.
const MaxNameLength = 80

// Equipment holds the five independent gear flags a step can carry.
type Equipment struct {
	PullBuoy  bool `json:"pull_buoy"`
	Paddles   bool `json:"paddles"`
	Fins      bool `json:"fins"`
	Kickboard bool `json:"kickboard"`
	Snorkel   bool `json:"snorkel"`
}

// EquipmentKind names one of the Equipment flags. The drag controller uses it
// to describe which icon was dragged onto a step.
type EquipmentKind string

const (
	EquipmentPullBuoy  EquipmentKind = "pull_buoy"
	EquipmentPaddles   EquipmentKind = "paddles"
	EquipmentFins      EquipmentKind = "fins"
	EquipmentKickboard EquipmentKind = "kickboard"
	EquipmentSnorkel   EquipmentKind = "snorkel"
)

// WorkoutItem is the tagged union of WorkoutStep and RepeatGroup. The two
// variants share the step_type discriminant on the wire; StepRepeat marks a
// group.
type WorkoutItem interface {
	ItemID() string
	// CloneItem returns a deep copy. Every mutation works on a cloned tree,
	// so a caller holding an older tree never observes partial updates.
	CloneItem() WorkoutItem

	isWorkoutItem()
}

// WorkoutStep is one unit of swimming work. DistanceM is ignored for StepRest
// steps, which are timed (DurationSeconds) or end on the lap button when nil.
type WorkoutStep struct {
	ID              string    `json:"id"`
	StepType        StepType  `json:"step_type"`
	Stroke          Stroke    `json:"stroke"`
	DistanceM       int       `json:"distance_m"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
	Zone            *int      `json:"zone,omitempty"`
	Description     string    `json:"description,omitempty"`
	Equipment       Equipment `json:"equipment"`
}

func (s WorkoutStep) ItemID() string { return s.ID }
func (s WorkoutStep) isWorkoutItem() {}

// CloneItem implements WorkoutItem.
func (s WorkoutStep) CloneItem() WorkoutItem { return s.Clone() }

// Clone returns a deep copy of the step.
func (s WorkoutStep) Clone() WorkoutStep {
	c := s
	if s.DurationSeconds != nil {
		v := *s.DurationSeconds
		c.DurationSeconds = &v
	}
	if s.Zone != nil {
		v := *s.Zone
		c.Zone = &v
	}
	return c
}

// RepeatGroup is a bounded block of flat steps executed Iterations times.
// Groups never nest and never persist empty.
type RepeatGroup struct {
	ID         string        `json:"id"`
	StepType   StepType      `json:"step_type"`
	Iterations int           `json:"iterations"`
	Steps      []WorkoutStep `json:"steps"`
}

func (g RepeatGroup) ItemID() string { return g.ID }
func (g RepeatGroup) isWorkoutItem() {}

// CloneItem implements WorkoutItem.
func (g RepeatGroup) CloneItem() WorkoutItem { return g.Clone() }

// Clone returns a deep copy of the group.
func (g RepeatGroup) Clone() RepeatGroup {
	c := g
	c.Steps = make([]WorkoutStep, len(g.Steps))
	for i, s := range g.Steps {
		c.Steps[i] = s.Clone()
	}
	return c
}

// Workout is the complete editable document. PoolLength is in meters;
// TargetDistance of 0 means no target is set.
type Workout struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PoolLength     float64  `json:"pool_length"`
	TargetDistance int      `json:"target_distance,omitempty"`
	Steps          ItemList `json:"steps"`
}

// Clone returns a structurally independent copy of the workout.
func (w Workout) Clone() Workout {
	c := w
	c.Steps = w.Steps.Clone()
	return c
}

// TotalDistance returns the computed distance of the whole workout in meters.
func (w Workout) TotalDistance() int { return TotalDistance(w.Steps) }

// Progress returns total distance over target distance, clamped to [0,1] for
// display. The underlying total is never clamped. Zero target reports 0.
func (w Workout) Progress() float64 {
	if w.TargetDistance <= 0 {
		return 0
	}
	ratio := float64(w.TotalDistance()) / float64(w.TargetDistance)
	return math.Min(1, math.Max(0, ratio))
}

// Summary is the list-view projection of a workout.
type Summary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TotalDistance int    `json:"total_distance"`
	StepCount     int    `json:"step_count"`
}

// Summarize builds the list-view projection.
func (w Workout) Summarize() Summary {
	return Summary{
		ID:            w.ID,
		Name:          w.Name,
		TotalDistance: w.TotalDistance(),
		StepCount:     len(w.Steps),
	}
}

// IsRepeatGroup reports whether the item is the RepeatGroup variant of the
// union.
func IsRepeatGroup(item WorkoutItem) bool {
	_, ok := item.(RepeatGroup)
	return ok
}

// TotalDistance sums step distances across the tree. Flat REST steps are
// excluded; REST steps nested inside a group are NOT excluded — their
// distance still counts toward the group subtotal. That asymmetry is the
// established behavior of the editor and is kept deliberately.
func TotalDistance(items []WorkoutItem) int {
	total := 0
	for _, item := range items {
		switch it := item.(type) {
		case RepeatGroup:
			inner := 0
			for _, s := range it.Steps {
				inner += s.DistanceM
			}
			total += inner * it.Iterations
		case WorkoutStep:
			if it.StepType != StepRest {
				total += it.DistanceM
			}
		}
	}
	return total
}

// FindStep locates a step by id: top-level steps first, then each group's
// inner steps. One level deep only, since groups do not nest.
func FindStep(items []WorkoutItem, id string) (WorkoutStep, bool) {
	for _, item := range items {
		switch it := item.(type) {
		case WorkoutStep:
			if it.ID == id {
				return it, true
			}
		case RepeatGroup:
			for _, s := range it.Steps {
				if s.ID == id {
					return s, true
				}
			}
		}
	}
	return WorkoutStep{}, false
}

// DefaultStep is the factory for newly added steps: a freestyle interval of
// 91 m (about 100 yards) with no equipment.
func DefaultStep(id string) WorkoutStep {
	return WorkoutStep{
		ID:        id,
		StepType:  StepInterval,
		Stroke:    StrokeFreestyle,
		DistanceM: 91,
	}
}
