// Package units converts between stored meters and the user's display unit.
package units

import "math"

// Unit is a display unit for distances.
type Unit string

const (
	Meters Unit = "m"
	Yards  Unit = "yd"
)

const metersPerYard = 0.9144

// ToDisplay converts stored meters into the display unit. Yard values are
// rounded to the nearest whole yard.
func ToDisplay(meters int, unit Unit) int {
	if unit != Yards {
		return meters
	}
	return int(math.Round(float64(meters) / metersPerYard))
}

// FromDisplay converts a displayed value back into meters. Both directions
// round, so meters -> yards -> meters may drift by a meter or so. That is
// accepted: the value of record is always the stored meters.
func FromDisplay(value int, unit Unit) int {
	if unit != Yards {
		return value
	}
	return int(math.Round(float64(value) * metersPerYard))
}
