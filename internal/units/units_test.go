package units

import "testing"

// TestToDisplay verifies meter and yard display conversion.
func TestToDisplay(t *testing.T) {
	tests := []struct {
		meters int
		unit   Unit
		want   int
	}{
		{100, Meters, 100},
		{0, Yards, 0},
		{91, Yards, 100},    // 91 / 0.9144 = 99.52 -> 100
		{1500, Yards, 1640}, // 1640.4 -> 1640
		{25, Yards, 27},
	}
	for _, tt := range tests {
		if got := ToDisplay(tt.meters, tt.unit); got != tt.want {
			t.Errorf("ToDisplay(%d, %s) = %d, want %d", tt.meters, tt.unit, got, tt.want)
		}
	}
}

// TestFromDisplay verifies conversion back into stored meters.
func TestFromDisplay(t *testing.T) {
	tests := []struct {
		value int
		unit  Unit
		want  int
	}{
		{100, Meters, 100},
		{100, Yards, 91},
		{1640, Yards, 1500}, // 1499.6 -> 1500
	}
	for _, tt := range tests {
		if got := FromDisplay(tt.value, tt.unit); got != tt.want {
			t.Errorf("FromDisplay(%d, %s) = %d, want %d", tt.value, tt.unit, got, tt.want)
		}
	}
}

// TestRoundTripDrift verifies the documented lossiness: round trips in
// either direction may drift, but never by more than one unit.
func TestRoundTripDrift(t *testing.T) {
	for m := 0; m <= 5000; m += 25 {
		back := FromDisplay(ToDisplay(m, Yards), Yards)
		drift := back - m
		if drift < -1 || drift > 1 {
			t.Errorf("round trip %dm -> %dm: drift %d exceeds 1m", m, back, drift)
		}
	}
	for yd := 0; yd <= 5000; yd += 25 {
		back := ToDisplay(FromDisplay(yd, Yards), Yards)
		drift := back - yd
		if drift < -1 || drift > 1 {
			t.Errorf("round trip %dyd -> %dyd: drift %d exceeds 1yd", yd, back, drift)
		}
	}
}
