// Package pose provides pose landmark types and per-frame stabilization.
package pose

import "math"

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftIndex     = 19
	RightIndex    = 20
	LeftHip       = 23
	RightHip      = 24
	NumLandmarks  = 33
)

// Point represents a single pose landmark. X and Y are normalized image
// coordinates (Y grows downward), Z is an optional depth estimate relative to
// the hip center (more negative is closer to the camera), and Visibility is
// the model's confidence in [0,1] that the landmark is present and visible.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Landmarks represents the 33 body landmarks produced for one frame.
type Landmarks struct {
	Points [NumLandmarks]Point `json:"points"`
}

// Visible reports whether the landmark at index i meets the given
// visibility threshold.
func (l *Landmarks) Visible(i int, min float64) bool {
	return l.Points[i].Visibility >= min
}

// Distance2D calculates the Euclidean distance between two landmarks in the
// image plane, ignoring depth.
func Distance2D(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
