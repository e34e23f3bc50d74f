package engine

import (
	"math"
	"sort"
	"time"
)

// Penalty shaping constants. Each term contributes nothing inside its
// deadzone and stops growing at its cap.
const (
	swayDeadzone = 4.0
	swayCap      = 18.0
	swayMax      = 25.0

	driftDeadzone = 8.0
	driftCap      = 30.0
	driftMax      = 15.0

	flexionDeadzone = 2.0
	flexionCap      = 30.0
	flexionMax      = 20.0

	extensionDeadzone = 2.0
	extensionCap      = 25.0
	extensionMax      = 15.0

	reachDeadzone = 0.0
	reachCap      = 0.15
	reachMax      = 10.0

	tempoCapFraction = 0.8 // deficit saturates at this fraction of the minimum
	tempoMax         = 8.0

	asymMinDeadzone = 8.0
	asymMinCap      = 25.0
	asymMinMax      = 10.0

	asymROMDeadzone = 10.0
	asymROMCap      = 30.0
	asymROMMax      = 5.0
)

// RepResult is the outcome of scoring one confirmed repetition.
type RepResult struct {
	Score float64 `json:"score"`
	// Messages are the triggered corrective cues, ordered by how much
	// each fault cost.
	Messages []string `json:"messages"`
	// Penalties maps each triggered term to the points it removed, for
	// diagnostic overlays.
	Penalties map[string]float64 `json:"penalties,omitempty"`
	ScoredAt  time.Time          `json:"scored_at"`
	Escaped   bool               `json:"escaped"`
}

// penaltyTerm pairs one triggered fault with its cue for the arbiter.
type penaltyTerm struct {
	name     string
	points   float64
	priority Priority
	message  string
}

// saturate maps v through a deadzone/cap ramp onto [0, max].
func saturate(v, deadzone, cap, max float64) float64 {
	if math.IsNaN(v) || v <= deadzone {
		return 0
	}
	if v >= cap {
		return max
	}
	return max * (v - deadzone) / (cap - deadzone)
}

// scoreRep evaluates one confirmed repetition. left and right are the
// resolved cycles; in single-limb modes the non-governing cycle is nil.
// The score starts at 100, loses the sum of the triggered penalty terms,
// and never drops below 0. The returned cues feed the feedback arbiter in
// the same largest-fault-first order as the messages.
func scoreRep(w *RepWindow, left, right *ArmCycle, view ViewAngle, now time.Time, cfg *Config) (RepResult, []Cue) {
	corr := cfg.viewCorrection(view.Smoothed)
	var terms []penaltyTerm
	add := func(name string, points float64, prio Priority, msg string) {
		if points > 0 {
			terms = append(terms, penaltyTerm{name, points, prio, msg})
		}
	}

	// Torso sway over the attempt.
	add("sway", saturate(w.spread(Torso), swayDeadzone, swayCap, swayMax),
		PriorityForm, "Keep your torso still")

	// Shoulder drift; unreliable in profile, skipped there.
	if view.Zone != ZoneSide {
		drift := math.NaN()
		for _, c := range []Channel{ShoulderLeft, ShoulderRight} {
			s := w.spread(c)
			if math.IsNaN(s) {
				continue
			}
			if math.IsNaN(drift) || s > drift {
				drift = s
			}
		}
		add("shoulder_drift", saturate(drift, driftDeadzone, driftCap, driftMax),
			PriorityForm, "Keep your elbows pinned to your sides")
	}

	// Range of motion, view-adjusted: flexion depth and full extension
	// are independent faults.
	flexTarget := cfg.FlexionTarget + corr
	extTarget := cfg.ExtensionTarget - corr
	var flexShort, extShort float64
	for _, c := range []*ArmCycle{left, right} {
		if c == nil {
			continue
		}
		flexShort = math.Max(flexShort, c.Min-flexTarget)
		extShort = math.Max(extShort, extTarget-c.Max)
	}
	add("flexion", saturate(flexShort, flexionDeadzone, flexionCap, flexionMax),
		PriorityForm, "Curl all the way up")
	add("extension", saturate(extShort, extensionDeadzone, extensionCap, extensionMax),
		PriorityForm, "Lower the bar until your arms are straight")

	// Reach-ratio check catches a forearm aimed at the camera that the 2D
	// elbow angle misses. Only meaningful head-on.
	if view.Zone == ZoneFrontal {
		for _, limb := range []Limb{LimbLeft, LimbRight} {
			r := w.ReachMax[limb]
			if math.IsNaN(r) {
				continue
			}
			add("reach", saturate(cfg.MinReachRatio-r, reachDeadzone, reachCap, reachMax),
				PriorityForm, "Lower the bar until your arms are straight")
		}
	}

	// Tempo: a rushed concentric or eccentric each draw their own term.
	var concDeficit, eccDeficit time.Duration
	for _, c := range []*ArmCycle{left, right} {
		if c == nil {
			continue
		}
		if d := cfg.MinConcentric - c.Concentric(); d > concDeficit {
			concDeficit = d
		}
		if d := cfg.MinEccentric - c.Eccentric(); d > eccDeficit {
			eccDeficit = d
		}
	}
	add("tempo_up", tempoPenalty(concDeficit, cfg.MinConcentric),
		PriorityTempo, "Slow down on the way up")
	add("tempo_down", tempoPenalty(eccDeficit, cfg.MinEccentric),
		PriorityTempo, "Control the lowering")

	// Left/right asymmetry only where both limbs are comparable.
	if view.Zone == ZoneFrontal && left != nil && right != nil {
		add("asymmetry_depth", saturate(math.Abs(left.Min-right.Min), asymMinDeadzone, asymMinCap, asymMinMax),
			PriorityForm, "Curl both arms to the same height")
		add("asymmetry_rom", saturate(math.Abs(left.ROM()-right.ROM()), asymROMDeadzone, asymROMCap, asymROMMax),
			PriorityForm, "Work both arms through the same range")
	}

	// Largest fault first, both for the message order and the arbiter.
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].points > terms[j].points })

	total := 0.0
	res := RepResult{
		Score:    100,
		ScoredAt: now,
		Escaped:  (left != nil && left.Escaped) || (right != nil && right.Escaped),
	}
	if len(terms) > 0 {
		res.Penalties = make(map[string]float64, len(terms))
	}
	seen := make(map[string]bool)
	var cues []Cue
	for _, t := range terms {
		total += t.points
		res.Penalties[t.name] = t.points
		if !seen[t.message] {
			res.Messages = append(res.Messages, t.message)
			cues = append(cues, Cue{Priority: t.priority, Message: t.message})
			seen[t.message] = true
		}
	}
	res.Score = math.Max(0, 100-total)
	return res, cues
}

// tempoPenalty saturates a duration deficit against the configured minimum.
func tempoPenalty(deficit, min time.Duration) float64 {
	if deficit <= 0 || min <= 0 {
		return 0
	}
	return saturate(deficit.Seconds(), 0, tempoCapFraction*min.Seconds(), tempoMax)
}
