package engine

import (
	"math"
	"testing"

	"github.com/ayusman/forma/internal/pose"
)

func pt(x, y float64) pose.Point {
	return pose.Point{X: x, Y: y, Visibility: 0.9}
}

func TestAngleAt(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c pose.Point
		want    float64
	}{
		{"right angle", pt(1, 0), pt(0, 0), pt(0, 1), 90},
		{"straight line", pt(-1, 0), pt(0, 0), pt(1, 0), 180},
		{"collapsed", pt(1, 1), pt(0, 0), pt(1, 1), 0},
		{"forty five", pt(1, 0), pt(0, 0), pt(1, 1), 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := angleAt(tt.a, tt.b, tt.c)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("angleAt = %v, want %v", got, tt.want)
			}
			// Swapping the peripheral points must not change the angle.
			swapped := angleAt(tt.c, tt.b, tt.a)
			if math.Abs(got-swapped) > 1e-9 {
				t.Errorf("angleAt not symmetric: %v vs %v", got, swapped)
			}
		})
	}
}

// armFrame builds a minimal frame with a left arm at the given elbow angle,
// hanging straight down from the shoulder.
func armFrame(elbowDeg float64) *pose.Landmarks {
	lm := &pose.Landmarks{}
	lm.Points[pose.LeftShoulder] = pt(0.6, 0.3)
	lm.Points[pose.LeftElbow] = pt(0.6, 0.45)

	rad := elbowDeg * math.Pi / 180
	lm.Points[pose.LeftWrist] = pt(0.6+0.15*math.Sin(rad), 0.45-0.15*math.Cos(rad))
	return lm
}

func TestExtractAngles_Elbow(t *testing.T) {
	for _, want := range []float64{180, 120, 90, 45} {
		lm := armFrame(want)
		angles := ExtractAngles(lm, 0.5)

		if !angles.Available(ElbowLeft) {
			t.Fatalf("elbow at %v deg: expected channel to be available", want)
		}
		if got := angles[ElbowLeft]; math.Abs(got-want) > 1e-6 {
			t.Errorf("elbow angle = %v, want %v", got, want)
		}
	}
}

func TestExtractAngles_UnavailableOnLowVisibility(t *testing.T) {
	lm := armFrame(120)
	lm.Points[pose.LeftWrist].Visibility = 0.2

	angles := ExtractAngles(lm, 0.5)
	if angles.Available(ElbowLeft) {
		t.Error("expected elbow channel to be unavailable with an occluded wrist")
	}
}

func TestExtractAngles_TorsoLean(t *testing.T) {
	lm := &pose.Landmarks{}
	lm.Points[pose.LeftShoulder] = pt(0.6, 0.3)
	lm.Points[pose.RightShoulder] = pt(0.4, 0.3)
	lm.Points[pose.LeftHip] = pt(0.6, 0.62)
	lm.Points[pose.RightHip] = pt(0.4, 0.62)

	angles := ExtractAngles(lm, 0.5)
	if !angles.Available(Torso) {
		t.Fatal("expected torso channel to be available")
	}
	if got := angles[Torso]; math.Abs(got) > 1e-6 {
		t.Errorf("upright torso should read 0 degrees, got %v", got)
	}

	// Lean the shoulders sideways by a known amount.
	dx := math.Tan(15*math.Pi/180) * 0.32
	lm.Points[pose.LeftShoulder].X += dx
	lm.Points[pose.RightShoulder].X += dx

	angles = ExtractAngles(lm, 0.5)
	if got := angles[Torso]; math.Abs(got-15) > 0.1 {
		t.Errorf("leaned torso should read ~15 degrees, got %v", got)
	}
}

func TestExtractAngles_ShoulderFlexionExcludesAbduction(t *testing.T) {
	lm := &pose.Landmarks{}
	lm.Points[pose.LeftShoulder] = pt(0.6, 0.3)
	lm.Points[pose.RightShoulder] = pt(0.4, 0.3)
	lm.Points[pose.LeftHip] = pt(0.6, 0.62)

	// Elbow swung out along the shoulder line with a slight droop. The
	// abduction component must be projected away, leaving zero flexion.
	lm.Points[pose.LeftElbow] = pt(0.72, 0.3+0.09)

	angles := ExtractAngles(lm, 0.5)
	if !angles.Available(ShoulderLeft) {
		t.Fatal("expected shoulder channel to be available")
	}
	if got := angles[ShoulderLeft]; math.Abs(got) > 1e-6 {
		t.Errorf("pure abduction should project to 0 flexion, got %v", got)
	}
}

func TestExtractAngles_NilFrame(t *testing.T) {
	angles := ExtractAngles(nil, 0.5)
	for c := Channel(0); c < NumChannels; c++ {
		if angles.Available(c) {
			t.Fatalf("channel %v should be unavailable for a nil frame", c)
		}
	}
}
