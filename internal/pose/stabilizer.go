package pose

// Stabilization constants.
const (
	// CoreVisibility is the minimum visibility required of the five core
	// landmarks (nose, shoulders, hips) for a frame to count as a person.
	CoreVisibility = 0.5
	// Deadzone is the displacement (normalized units) below which a
	// landmark keeps its previous position, suppressing micro-jitter.
	Deadzone = 0.004
	// JumpThreshold is the displacement above which a sample is treated
	// as a tracking glitch and blended conservatively.
	JumpThreshold = 0.1
	// BlendNormal is the weight given to the new sample for ordinary motion.
	BlendNormal = 0.7
	// BlendJump is the weight given to the new sample past JumpThreshold.
	BlendJump = 0.3
	// VisibilityAlpha is the exponential smoothing factor applied to each
	// landmark's visibility score, independent of position smoothing.
	VisibilityAlpha = 0.5
)

// coreLandmarks are the indices that must be visible and plausibly arranged
// for a frame to be accepted.
var coreLandmarks = [5]int{Nose, LeftShoulder, RightShoulder, LeftHip, RightHip}

// Stabilizer validates raw landmark frames and smooths them over time.
// It holds the previous stabilized frame as smoothing memory; a rejected
// frame clears that memory so stale positions never bleed into the next
// accepted frame.
type Stabilizer struct {
	prev    Landmarks
	hasPrev bool
}

// Reset clears the temporal smoothing memory.
func (s *Stabilizer) Reset() {
	s.hasPrev = false
}

// Stabilize validates the raw frame and returns a temporally smoothed copy.
// It returns nil when the frame does not plausibly contain a person; in that
// case the smoothing memory is also reset.
func (s *Stabilizer) Stabilize(raw *Landmarks) *Landmarks {
	if raw == nil || !s.validate(raw) {
		s.Reset()
		return nil
	}

	if !s.hasPrev {
		s.prev = *raw
		s.hasPrev = true
		out := *raw
		return &out
	}

	var out Landmarks
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i] = smoothPoint(s.prev.Points[i], raw.Points[i])
	}
	s.prev = out
	return &out
}

// validate applies the person-presence checks in order: core landmark
// visibility, shoulders above hips, nose above shoulders. Y grows downward.
func (s *Stabilizer) validate(raw *Landmarks) bool {
	for _, i := range coreLandmarks {
		if raw.Points[i].Visibility < CoreVisibility {
			return false
		}
	}

	shoulderY := (raw.Points[LeftShoulder].Y + raw.Points[RightShoulder].Y) / 2
	hipY := (raw.Points[LeftHip].Y + raw.Points[RightHip].Y) / 2
	if shoulderY >= hipY {
		return false
	}
	if raw.Points[Nose].Y >= shoulderY {
		return false
	}
	return true
}

// smoothPoint blends one raw landmark against its previous stabilized
// position: hold inside the deadzone, favor the new sample for normal motion,
// favor the old position for implausibly large jumps. Visibility is smoothed
// separately so a flickering detection does not snap confidence around.
func smoothPoint(prev, raw Point) Point {
	out := raw
	d := Distance2D(prev, raw)
	switch {
	case d < Deadzone:
		out.X, out.Y, out.Z = prev.X, prev.Y, prev.Z
	case d > JumpThreshold:
		out.X = prev.X + BlendJump*(raw.X-prev.X)
		out.Y = prev.Y + BlendJump*(raw.Y-prev.Y)
		out.Z = prev.Z + BlendJump*(raw.Z-prev.Z)
	default:
		out.X = prev.X + BlendNormal*(raw.X-prev.X)
		out.Y = prev.Y + BlendNormal*(raw.Y-prev.Y)
		out.Z = prev.Z + BlendNormal*(raw.Z-prev.Z)
	}
	out.Visibility = prev.Visibility + VisibilityAlpha*(raw.Visibility-prev.Visibility)
	return out
}
