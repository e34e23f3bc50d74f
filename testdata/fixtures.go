// Package testdata provides synthetic landmark recordings for pipeline
// tests: parametric barbell-curl traces with controllable depth, tempo,
// sway, and limb lag.
package testdata

import (
	"math"
	"time"

	"github.com/ayusman/forma/internal/pose"
)

// Skeleton geometry in normalized image coordinates, subject frontal.
const (
	upperArmLen = 0.15
	forearmLen  = 0.15
	handLen     = 0.04
	torsoLen    = 0.32
)

// CurlOpts parameterizes a synthetic curl recording.
type CurlOpts struct {
	Reps     int
	MinElbow float64 // elbow angle at peak flexion, degrees
	MaxElbow float64 // elbow angle at full extension, degrees

	Interval   time.Duration // frame spacing
	HoldBottom time.Duration // pause at full extension
	CurlTime   time.Duration // concentric ramp
	HoldTop    time.Duration // pause at peak flexion
	LowerTime  time.Duration // eccentric ramp

	SwayDeg  float64       // peak torso lean oscillation, degrees
	RightLag time.Duration // right arm trails the left by this much

	Start time.Time
}

// DefaultCurlOpts returns options for a clean, unhurried repetition at
// ~15 fps. The ramps are slow enough that a median-plus-exponential
// smoothing stage tracks them within a few degrees.
func DefaultCurlOpts() CurlOpts {
	return CurlOpts{
		Reps:       1,
		MinElbow:   60,
		MaxElbow:   178,
		Interval:   66 * time.Millisecond,
		HoldBottom: 900 * time.Millisecond,
		CurlTime:   2200 * time.Millisecond,
		HoldTop:    700 * time.Millisecond,
		LowerTime:  3200 * time.Millisecond,
		Start:      time.Unix(1700000000, 0),
	}
}

// CurlFrames renders a full landmark recording for the given options.
func CurlFrames(o CurlOpts) []pose.Frame {
	cycle := o.CurlTime + o.HoldTop + o.LowerTime + o.HoldBottom
	total := o.HoldBottom + time.Duration(o.Reps)*cycle + o.RightLag + o.HoldBottom

	var frames []pose.Frame
	for t := time.Duration(0); t <= total; t += o.Interval {
		left := o.elbowAt(t)
		right := o.elbowAt(t - o.RightLag)

		sway := 0.0
		if o.SwayDeg != 0 {
			sway = math.Tan(o.SwayDeg*math.Pi/180) * torsoLen *
				math.Sin(2*math.Pi*t.Seconds()/cycle.Seconds())
		}

		frames = append(frames, pose.Frame{
			Landmarks: curlPose(left, right, sway),
			Timestamp: o.Start.Add(t),
		})
	}
	return frames
}

// elbowAt returns the scripted elbow angle at time t. Times before the
// recording or after the last repetition rest at full extension.
func (o *CurlOpts) elbowAt(t time.Duration) float64 {
	t -= o.HoldBottom
	if t < 0 {
		return o.MaxElbow
	}
	for rep := 0; rep < o.Reps; rep++ {
		if t < o.CurlTime {
			return lerp(o.MaxElbow, o.MinElbow, t.Seconds()/o.CurlTime.Seconds())
		}
		t -= o.CurlTime
		if t < o.HoldTop {
			return o.MinElbow
		}
		t -= o.HoldTop
		if t < o.LowerTime {
			return lerp(o.MinElbow, o.MaxElbow, t.Seconds()/o.LowerTime.Seconds())
		}
		t -= o.LowerTime
		if t < o.HoldBottom {
			return o.MaxElbow
		}
		t -= o.HoldBottom
	}
	return o.MaxElbow
}

func lerp(from, to, frac float64) float64 {
	return from + (to-from)*frac
}

// curlPose builds one frontal frame with the given per-arm elbow angles and
// a lateral upper-body sway offset. Only the landmarks the engine consumes
// are visible; the rest stay at zero visibility.
func curlPose(leftElbowDeg, rightElbowDeg, sway float64) *pose.Landmarks {
	lm := &pose.Landmarks{}
	set := func(i int, x, y float64) {
		lm.Points[i] = pose.Point{X: x, Y: y, Visibility: 0.95}
	}

	set(pose.Nose, 0.50+sway, 0.10)
	set(pose.LeftShoulder, 0.60+sway, 0.30)
	set(pose.RightShoulder, 0.40+sway, 0.30)
	set(pose.LeftHip, 0.58, 0.62)
	set(pose.RightHip, 0.42, 0.62)

	placeArm(lm, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftIndex, leftElbowDeg, +1)
	placeArm(lm, pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightIndex, rightElbowDeg, -1)
	return lm
}

// placeArm hangs an upper arm straight down from the shoulder and swings
// the forearm to produce the requested elbow angle. out selects which
// horizontal direction the forearm swings.
func placeArm(lm *pose.Landmarks, shoulder, elbow, wrist, index int, elbowDeg, out float64) {
	s := lm.Points[shoulder]
	ex, ey := s.X, s.Y+upperArmLen

	rad := elbowDeg * math.Pi / 180
	dirX, dirY := out*math.Sin(rad), -math.Cos(rad)

	set := func(i int, x, y float64) {
		lm.Points[i] = pose.Point{X: x, Y: y, Visibility: 0.95}
	}
	set(elbow, ex, ey)
	set(wrist, ex+forearmLen*dirX, ey+forearmLen*dirY)
	set(index, ex+(forearmLen+handLen)*dirX, ey+(forearmLen+handLen)*dirY)
}

// NoPersonFrame returns a landmark set that fails person validation (all
// landmarks invisible).
func NoPersonFrame() *pose.Landmarks {
	return &pose.Landmarks{}
}
