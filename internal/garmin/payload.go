// Package garmin talks to Garmin Connect: it translates a workout document
// into the JSON payload the workout service expects and uploads it with a
// token-authenticated client.
package garmin

import (
	"fmt"
	"strings"

	"github.com/dylanjrt/garmin-workouts/internal/model"
)

// restButtonEstimate is the assumed duration of an open-ended rest (ended by
// the lap button) when estimating total workout time.
const restButtonEstimate = 30

// secondsPerMeter approximates a 2 min/100 m swim pace for duration
// estimates.
const secondsPerMeter = 1.2

var strokeKeys = map[model.Stroke]string{
	model.StrokeAny:          "any_stroke",
	model.StrokeBackstroke:   "backstroke",
	model.StrokeBreaststroke: "breaststroke",
	model.StrokeButterfly:    "butterfly",
	model.StrokeFreestyle:    "freestyle",
	model.StrokeMixed:        "mixed",
	model.StrokeIM:           "im",
}

var stepTypeKeys = map[model.StepType]string{
	model.StepWarmup:   "warmup",
	model.StepCooldown: "cooldown",
	model.StepInterval: "interval",
	model.StepRecovery: "recovery",
	model.StepRest:     "rest",
	model.StepRepeat:   "repeat",
}

type sportType struct {
	SportTypeID  int    `json:"sportTypeId"`
	SportTypeKey string `json:"sportTypeKey"`
	DisplayOrder int    `json:"displayOrder"`
}

type stepTypeRef struct {
	StepTypeID   int    `json:"stepTypeId"`
	StepTypeKey  string `json:"stepTypeKey"`
	DisplayOrder int    `json:"displayOrder"`
}

type strokeTypeRef struct {
	StrokeTypeID  int    `json:"strokeTypeId"`
	StrokeTypeKey string `json:"strokeTypeKey"`
	DisplayOrder  int    `json:"displayOrder"`
}

type condition struct {
	ConditionTypeID  int    `json:"conditionTypeId"`
	ConditionTypeKey string `json:"conditionTypeKey"`
	DisplayOrder     int    `json:"displayOrder"`
	Displayable      bool   `json:"displayable"`
}

type targetType struct {
	WorkoutTargetTypeID  int    `json:"workoutTargetTypeId"`
	WorkoutTargetTypeKey string `json:"workoutTargetTypeKey"`
	DisplayOrder         int    `json:"displayOrder"`
}

type unitRef struct {
	UnitID  int     `json:"unitId"`
	UnitKey string  `json:"unitKey"`
	Factor  float64 `json:"factor"`
}

// ExecutableStep is one concrete step in the upload payload.
type ExecutableStep struct {
	Type                      string         `json:"type"`
	StepOrder                 int            `json:"stepOrder"`
	StepType                  stepTypeRef    `json:"stepType"`
	EndCondition              condition      `json:"endCondition"`
	EndConditionValue         *float64       `json:"endConditionValue,omitempty"`
	PreferredEndConditionUnit *unitRef       `json:"preferredEndConditionUnit,omitempty"`
	TargetType                targetType     `json:"targetType"`
	StrokeType                *strokeTypeRef `json:"strokeType,omitempty"`
	ZoneNumber                *int           `json:"zoneNumber,omitempty"`
	Description               string         `json:"description,omitempty"`
}

// RepeatStep is a repeat block in the upload payload.
type RepeatStep struct {
	Type               string           `json:"type"`
	StepOrder          int              `json:"stepOrder"`
	StepType           stepTypeRef      `json:"stepType"`
	NumberOfIterations int              `json:"numberOfIterations"`
	WorkoutSteps       []ExecutableStep `json:"workoutSteps"`
	EndCondition       condition        `json:"endCondition"`
	EndConditionValue  float64          `json:"endConditionValue"`
	SmartRepeat        bool             `json:"smartRepeat"`
}

type segment struct {
	SegmentOrder int       `json:"segmentOrder"`
	SportType    sportType `json:"sportType"`
	WorkoutSteps []any     `json:"workoutSteps"`
}

// Payload is a complete lap-swimming workout ready for upload.
type Payload struct {
	WorkoutName             string    `json:"workoutName"`
	SportType               sportType `json:"sportType"`
	EstimatedDurationInSecs int       `json:"estimatedDurationInSecs"`
	WorkoutSegments         []segment `json:"workoutSegments"`
	PoolLength              float64   `json:"poolLength"`
	PoolLengthUnit          unitRef   `json:"poolLengthUnit"`
}

func lapSwimming() sportType {
	return sportType{SportTypeID: 4, SportTypeKey: "lap_swimming", DisplayOrder: 1}
}

func stepTypeDict(t model.StepType) stepTypeRef {
	return stepTypeRef{StepTypeID: int(t), StepTypeKey: stepTypeKeys[t], DisplayOrder: int(t)}
}

func strokeDict(s model.Stroke) *strokeTypeRef {
	return &strokeTypeRef{StrokeTypeID: int(s), StrokeTypeKey: strokeKeys[s], DisplayOrder: 1}
}

func distanceCondition() condition {
	return condition{ConditionTypeID: 3, ConditionTypeKey: "distance", DisplayOrder: 2, Displayable: true}
}

func restCondition() condition {
	return condition{ConditionTypeID: 8, ConditionTypeKey: "fixed.rest", DisplayOrder: 8, Displayable: true}
}

func lapButtonCondition() condition {
	return condition{ConditionTypeID: 1, ConditionTypeKey: "lap.button", DisplayOrder: 1, Displayable: true}
}

func iterationsCondition() condition {
	return condition{ConditionTypeID: 7, ConditionTypeKey: "iterations", DisplayOrder: 7, Displayable: false}
}

func noTarget() targetType {
	return targetType{WorkoutTargetTypeID: 1, WorkoutTargetTypeKey: "no.target", DisplayOrder: 1}
}

func hrZoneTarget() targetType {
	return targetType{WorkoutTargetTypeID: 4, WorkoutTargetTypeKey: "heart.rate.zone", DisplayOrder: 1}
}

func meterUnit() unitRef {
	return unitRef{UnitID: 1, UnitKey: "meter", Factor: 100.0}
}

// BuildPayload converts a workout document into the Garmin Connect upload
// shape. Names longer than the service's 80 character limit are truncated.
func BuildPayload(w model.Workout) Payload {
	name := w.Name
	if len(name) > model.MaxNameLength {
		name = name[:model.MaxNameLength]
	}

	var steps []any
	duration := 0
	order := 0

	for _, item := range w.Steps {
		order++
		switch it := item.(type) {
		case model.WorkoutStep:
			es, secs := buildStep(it, order)
			steps = append(steps, es)
			duration += secs
		case model.RepeatGroup:
			inner := make([]ExecutableStep, 0, len(it.Steps))
			innerSecs := 0
			for i, s := range it.Steps {
				es, secs := buildStep(s, i+1)
				inner = append(inner, es)
				innerSecs += secs
			}
			steps = append(steps, RepeatStep{
				Type:               "RepeatGroupDTO",
				StepOrder:          order,
				StepType:           stepTypeDict(model.StepRepeat),
				NumberOfIterations: it.Iterations,
				WorkoutSteps:       inner,
				EndCondition:       iterationsCondition(),
				EndConditionValue:  float64(it.Iterations),
				SmartRepeat:        false,
			})
			duration += innerSecs * it.Iterations
		}
	}

	return Payload{
		WorkoutName:             name,
		SportType:               lapSwimming(),
		EstimatedDurationInSecs: duration,
		WorkoutSegments: []segment{{
			SegmentOrder: 1,
			SportType:    lapSwimming(),
			WorkoutSteps: steps,
		}},
		PoolLength:     w.PoolLength,
		PoolLengthUnit: meterUnit(),
	}
}

// buildStep converts one flat step and returns it with its estimated
// duration in seconds.
func buildStep(s model.WorkoutStep, order int) (ExecutableStep, int) {
	es := ExecutableStep{
		Type:        "ExecutableStepDTO",
		StepOrder:   order,
		StepType:    stepTypeDict(s.StepType),
		TargetType:  noTarget(),
		Description: describe(s),
	}

	if s.StepType == model.StepRest {
		if s.DurationSeconds != nil {
			v := float64(*s.DurationSeconds)
			es.EndCondition = restCondition()
			es.EndConditionValue = &v
			return es, *s.DurationSeconds
		}
		es.EndCondition = lapButtonCondition()
		return es, restButtonEstimate
	}

	v := float64(s.DistanceM)
	unit := meterUnit()
	es.EndCondition = distanceCondition()
	es.EndConditionValue = &v
	es.PreferredEndConditionUnit = &unit
	es.StrokeType = strokeDict(s.Stroke)
	if s.Zone != nil {
		es.TargetType = hrZoneTarget()
		zone := *s.Zone
		es.ZoneNumber = &zone
	}
	return es, int(float64(s.DistanceM) * secondsPerMeter)
}

// describe merges the step description with an equipment note, since the
// Garmin payload has no equipment field of its own.
func describe(s model.WorkoutStep) string {
	gear := equipmentNote(s.Equipment)
	switch {
	case s.Description == "":
		return gear
	case gear == "":
		return s.Description
	default:
		return fmt.Sprintf("%s (%s)", s.Description, gear)
	}
}

func equipmentNote(eq model.Equipment) string {
	var parts []string
	if eq.PullBuoy {
		parts = append(parts, "pull buoy")
	}
	if eq.Paddles {
		parts = append(parts, "paddles")
	}
	if eq.Fins {
		parts = append(parts, "fins")
	}
	if eq.Kickboard {
		parts = append(parts, "kickboard")
	}
	if eq.Snorkel {
		parts = append(parts, "snorkel")
	}
	return strings.Join(parts, ", ")
}
