package engine

import (
	"math"

	"github.com/ayusman/forma/internal/pose"
)

// Channel identifies one named joint-angle channel in an AngleSet.
type Channel int

// Angle channels. Elbow is the shoulder-elbow-wrist angle, Shoulder is
// flexion of the upper arm against the torso line, Lean is the hip-to-shoulder
// line against vertical per side, Torso the blended hip-center to
// virtual-neck midline against vertical, and Wrist the elbow-wrist-index
// deviation.
const (
	ElbowLeft Channel = iota
	ElbowRight
	ShoulderLeft
	ShoulderRight
	LeanLeft
	LeanRight
	Torso
	WristLeft
	WristRight
	NumChannels
)

var channelNames = [NumChannels]string{
	"elbow_left", "elbow_right",
	"shoulder_left", "shoulder_right",
	"lean_left", "lean_right",
	"torso",
	"wrist_left", "wrist_right",
}

// String returns the channel's wire name.
func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// AngleSet is a fixed mapping of angle channels to degree values. A NaN
// entry means the channel is unavailable this frame; consumers must skip it,
// never substitute a default.
type AngleSet [NumChannels]float64

// Available reports whether the channel holds a usable value.
func (a *AngleSet) Available(c Channel) bool {
	return !math.IsNaN(a[c])
}

// unavailableAngles returns an AngleSet with every channel marked absent.
func unavailableAngles() AngleSet {
	var a AngleSet
	for i := range a {
		a[i] = math.NaN()
	}
	return a
}

type vec3 struct{ x, y, z float64 }

func sub(a, b pose.Point) vec3 { return vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func dot(a, b vec3) float64 { return a.x*b.x + a.y*b.y + a.z*b.z }

func norm(a vec3) float64 { return math.Sqrt(dot(a, a)) }

// angleAt returns the planar angle in degrees at vertex b between the rays
// b->a and b->c, computed in the image plane with the standard arctangent
// difference, normalized to [0, 180]. Swapping a and c yields the same angle.
func angleAt(a, b, c pose.Point) float64 {
	theta := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(theta * 180 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}
	return deg
}

// angleBetween returns the angle in degrees between two 3D vectors.
func angleBetween(u, v vec3) float64 {
	nu, nv := norm(u), norm(v)
	if nu < 1e-9 || nv < 1e-9 {
		return math.NaN()
	}
	cos := dot(u, v) / (nu * nv)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// projectOut removes the component of v along the unit direction n.
func projectOut(v, n vec3) vec3 {
	d := dot(v, n)
	return vec3{v.x - d*n.x, v.y - d*n.y, v.z - d*n.z}
}

// ExtractAngles computes the full AngleSet from a stabilized landmark frame.
// A channel is produced only when every contributing landmark meets minVis;
// otherwise it is NaN.
func ExtractAngles(lm *pose.Landmarks, minVis float64) AngleSet {
	out := unavailableAngles()
	if lm == nil {
		return out
	}

	vis := func(idx ...int) bool {
		for _, i := range idx {
			if !lm.Visible(i, minVis) {
				return false
			}
		}
		return true
	}
	p := func(i int) pose.Point { return lm.Points[i] }

	if vis(pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist) {
		out[ElbowLeft] = angleAt(p(pose.LeftShoulder), p(pose.LeftElbow), p(pose.LeftWrist))
	}
	if vis(pose.RightShoulder, pose.RightElbow, pose.RightWrist) {
		out[ElbowRight] = angleAt(p(pose.RightShoulder), p(pose.RightElbow), p(pose.RightWrist))
	}

	// Shoulder flexion is measured in the sagittal plane: both vectors are
	// projected onto the plane orthogonal to the shoulder line, which
	// removes the abduction component. With flat depth this degrades to
	// the vertical-depth plane, which is still abduction-free.
	if vis(pose.LeftShoulder, pose.RightShoulder) {
		axis := sub(p(pose.LeftShoulder), p(pose.RightShoulder))
		n := norm(axis)
		if n > 1e-9 {
			unit := vec3{axis.x / n, axis.y / n, axis.z / n}
			if vis(pose.LeftHip, pose.LeftElbow) {
				torsoDown := projectOut(sub(p(pose.LeftHip), p(pose.LeftShoulder)), unit)
				upperArm := projectOut(sub(p(pose.LeftElbow), p(pose.LeftShoulder)), unit)
				out[ShoulderLeft] = angleBetween(torsoDown, upperArm)
			}
			if vis(pose.RightHip, pose.RightElbow) {
				torsoDown := projectOut(sub(p(pose.RightHip), p(pose.RightShoulder)), unit)
				upperArm := projectOut(sub(p(pose.RightElbow), p(pose.RightShoulder)), unit)
				out[ShoulderRight] = angleBetween(torsoDown, upperArm)
			}
		}
	}

	if vis(pose.LeftHip, pose.LeftShoulder) {
		out[LeanLeft] = verticalLean(p(pose.LeftHip), p(pose.LeftShoulder))
	}
	if vis(pose.RightHip, pose.RightShoulder) {
		out[LeanRight] = verticalLean(p(pose.RightHip), p(pose.RightShoulder))
	}
	if vis(pose.LeftHip, pose.RightHip, pose.LeftShoulder, pose.RightShoulder) {
		hipCenter := midpoint(p(pose.LeftHip), p(pose.RightHip))
		neck := midpoint(p(pose.LeftShoulder), p(pose.RightShoulder))
		out[Torso] = verticalLean(hipCenter, neck)
	}

	if vis(pose.LeftElbow, pose.LeftWrist, pose.LeftIndex) {
		out[WristLeft] = angleAt(p(pose.LeftElbow), p(pose.LeftWrist), p(pose.LeftIndex))
	}
	if vis(pose.RightElbow, pose.RightWrist, pose.RightIndex) {
		out[WristRight] = angleAt(p(pose.RightElbow), p(pose.RightWrist), p(pose.RightIndex))
	}

	return out
}

// verticalLean returns the deviation in degrees of the hip-to-shoulder line
// from the image vertical.
func verticalLean(hip, shoulder pose.Point) float64 {
	dx := shoulder.X - hip.X
	dy := shoulder.Y - hip.Y // negative when the shoulder is above the hip
	return math.Abs(math.Atan2(dx, -dy)) * 180 / math.Pi
}

func midpoint(a, b pose.Point) pose.Point {
	return pose.Point{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
		Z: (a.Z + b.Z) / 2,
	}
}
