package core

import (
	"math"
	"testing"
)

func TestAngleDegreesRadiansRoundTrip(t *testing.T) {
	a := AngleFromDegrees(90)
	if math.Abs(a.Radians()-math.Pi/2) > 1e-9 {
		t.Errorf("Radians() = %v, want pi/2", a.Radians())
	}
	if math.Abs(a.Degrees()-90) > 1e-9 {
		t.Errorf("Degrees() = %v, want 90", a.Degrees())
	}
}

func TestAngleNormalizedWrapsToHalfOpenRange(t *testing.T) {
	cases := []struct {
		deg  float64
		want float64
	}{
		{deg: 270, want: -90},
		{deg: -270, want: 90},
		{deg: 180, want: 180},
		{deg: 540, want: 180},
	}
	for _, c := range cases {
		got := AngleFromDegrees(c.deg).Normalized().Degrees()
		if math.Abs(got-c.want) > 1e-6 {
			t.Errorf("Normalized(%v deg) = %v deg, want %v", c.deg, got, c.want)
		}
	}
}

func TestWavelengthAngstromConversion(t *testing.T) {
	w := WavelengthFromAngstroms(6563)
	if math.Abs(w.Nanometers()-656.3) > 1e-9 {
		t.Errorf("Nanometers() = %v, want 656.3", w.Nanometers())
	}
	if math.Abs(w.Angstroms()-6563) > 1e-6 {
		t.Errorf("Angstroms() = %v, want 6563", w.Angstroms())
	}
}

func TestDispersionShiftToWavelengthDelta(t *testing.T) {
	d := Dispersion(0.01)
	delta := d.ShiftToWavelengthDelta(5)
	if math.Abs(delta.Nanometers()-0.05) > 1e-9 {
		t.Errorf("ShiftToWavelengthDelta() = %v, want 0.05", delta.Nanometers())
	}
}

func TestClampAndClampInt(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5,0,3) = %v, want 3", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1,0,3) = %v, want 0", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp(2,0,3) = %v, want 2", got)
	}
	if got := ClampInt(10, 0, 5); got != 5 {
		t.Errorf("ClampInt(10,0,5) = %v, want 5", got)
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	var l Logger = NopLogger{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
