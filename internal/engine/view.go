package engine

import (
	"math"

	"github.com/ayusman/forma/internal/pose"
)

// Zone classifies how rotated the subject is relative to the camera.
type Zone string

const (
	// ZoneFrontal means the subject faces the camera nearly square.
	ZoneFrontal Zone = "frontal"
	// ZoneOblique means the subject is partially rotated.
	ZoneOblique Zone = "oblique"
	// ZoneSide means the subject is close to profile.
	ZoneSide Zone = "side"
)

// Side identifies which side of the body faces the camera.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	// SideBoth means the shoulder depths are too close to call.
	SideBoth Side = "both"
)

// View estimation constants.
const (
	// ViewAlpha is the exponential smoothing factor for the rotation
	// estimate; it keeps the zone from flapping near a boundary.
	ViewAlpha = 0.25
	// FrontalMaxDeg and ObliqueMaxDeg are the zone boundaries applied to
	// the smoothed rotation.
	FrontalMaxDeg = 20.0
	ObliqueMaxDeg = 55.0
	// FacingDepthTolerance is the shoulder depth difference below which
	// neither side is considered closer to the camera.
	FacingDepthTolerance = 0.05
)

// ViewAngle describes the camera-relative body rotation for one frame.
// Raw is recomputed every frame; Smoothed persists across the session.
type ViewAngle struct {
	Raw      float64 `json:"raw"`
	Smoothed float64 `json:"smoothed"`
	Zone     Zone    `json:"zone"`
	Facing   Side    `json:"facing"`
}

// estimateView updates the view estimate from shoulder geometry. When the
// shoulders are not visible the previous estimate is carried forward
// unchanged. init reports whether prev holds a valid running estimate.
func estimateView(prev ViewAngle, init bool, lm *pose.Landmarks, minVis float64) (ViewAngle, bool) {
	if lm == nil || !lm.Visible(pose.LeftShoulder, minVis) || !lm.Visible(pose.RightShoulder, minVis) {
		return prev, init
	}

	l := lm.Points[pose.LeftShoulder]
	r := lm.Points[pose.RightShoulder]

	// Foreshortening collapses the horizontal shoulder separation while
	// the depth separation grows, so their ratio tracks body rotation.
	raw := math.Atan2(math.Abs(l.Z-r.Z), math.Abs(l.X-r.X)) * 180 / math.Pi

	out := ViewAngle{Raw: raw}
	if init {
		out.Smoothed = prev.Smoothed + ViewAlpha*(raw-prev.Smoothed)
	} else {
		out.Smoothed = raw
	}

	switch {
	case out.Smoothed < FrontalMaxDeg:
		out.Zone = ZoneFrontal
	case out.Smoothed < ObliqueMaxDeg:
		out.Zone = ZoneOblique
	default:
		out.Zone = ZoneSide
	}

	// The shallower shoulder (smaller Z) faces the camera.
	switch depthDiff := l.Z - r.Z; {
	case math.Abs(depthDiff) < FacingDepthTolerance:
		out.Facing = SideBoth
	case depthDiff < 0:
		out.Facing = SideLeft
	default:
		out.Facing = SideRight
	}

	return out, true
}
