package engine

import (
	"math"
	"time"

	"github.com/ayusman/forma/internal/pose"
)

// Limb indexes the two arms.
type Limb int

const (
	LimbLeft Limb = iota
	LimbRight
)

// RepWindow accumulates per-channel extrema over one repetition attempt. It
// exists from the moment any limb leaves REST until the attempt is confirmed
// or discarded.
type RepWindow struct {
	Min       AngleSet  `json:"min"`
	Max       AngleSet  `json:"max"`
	Frames    int       `json:"frames"`
	StartedAt time.Time `json:"started_at"`
	// ReachMax tracks the per-arm maximum reach ratio; only observed in
	// the frontal zone, NaN otherwise.
	ReachMax [2]float64 `json:"reach_max"`
}

func newRepWindow(now time.Time) *RepWindow {
	w := &RepWindow{
		Min:       unavailableAngles(),
		Max:       unavailableAngles(),
		StartedAt: now,
	}
	w.ReachMax[LimbLeft] = math.NaN()
	w.ReachMax[LimbRight] = math.NaN()
	return w
}

// observe widens the window with one smoothed angle set and, when given,
// per-arm reach ratios. NaN entries are skipped.
func (w *RepWindow) observe(angles AngleSet, reach [2]float64) {
	w.Frames++
	for i := range angles {
		v := angles[i]
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(w.Min[i]) || v < w.Min[i] {
			w.Min[i] = v
		}
		if math.IsNaN(w.Max[i]) || v > w.Max[i] {
			w.Max[i] = v
		}
	}
	for limb, r := range reach {
		if math.IsNaN(r) {
			continue
		}
		if math.IsNaN(w.ReachMax[limb]) || r > w.ReachMax[limb] {
			w.ReachMax[limb] = r
		}
	}
}

// spread returns Max-Min for the channel, or NaN when it never held a value.
func (w *RepWindow) spread(c Channel) float64 {
	return w.Max[c] - w.Min[c]
}

// pendingCycle holds the first limb's resolution while the synchronizer
// waits for the other limb.
type pendingCycle struct {
	limb  Limb
	cycle *ArmCycle
	at    time.Time
}

// reachRatio returns the straight-line wrist-to-shoulder distance divided by
// the summed upper-arm and forearm segment lengths for one arm. Near 1.0 the
// arm is fully extended; a forearm pointing at the camera shows up as a low
// ratio even when the 2D elbow angle looks straight. NaN when any landmark
// is below the visibility threshold or the segments degenerate.
func reachRatio(lm *pose.Landmarks, limb Limb, minVis float64) float64 {
	shoulder, elbow, wrist := pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist
	if limb == LimbRight {
		shoulder, elbow, wrist = pose.RightShoulder, pose.RightElbow, pose.RightWrist
	}
	if !lm.Visible(shoulder, minVis) || !lm.Visible(elbow, minVis) || !lm.Visible(wrist, minVis) {
		return math.NaN()
	}

	upper := pose.Distance2D(lm.Points[shoulder], lm.Points[elbow])
	fore := pose.Distance2D(lm.Points[elbow], lm.Points[wrist])
	if upper+fore < 1e-9 {
		return math.NaN()
	}
	return pose.Distance2D(lm.Points[shoulder], lm.Points[wrist]) / (upper + fore)
}
