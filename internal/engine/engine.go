package engine

import (
	"math"
	"time"

	"github.com/ayusman/forma/internal/pose"
)

// Engine evaluates one landmark frame at a time against a State. It holds
// only configuration; all mutable data lives in the State, so one Engine can
// serve any number of sequential sessions.
type Engine struct {
	cfg Config
}

// New creates an Engine with the given configuration.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State is the aggregate engine state for one recording session. It is
// created once when recording starts, mutated exactly once per processed
// frame by Update, and discarded when recording stops. All smoothing memory
// is held here explicitly; the engine keeps no hidden state.
type State struct {
	Stabilizer pose.Stabilizer `json:"-"`
	Smoother   Smoother        `json:"-"`

	View          ViewAngle    `json:"view"`
	Arms          [2]ArmState  `json:"arms"`
	Window        *RepWindow   `json:"window,omitempty"`
	RepCount      int          `json:"rep_count"`
	LastRep       *RepResult   `json:"last_rep,omitempty"`
	Feedback      Feedback     `json:"feedback"`
	RawAngles     AngleSet     `json:"raw_angles"`
	SmoothedAngles AngleSet    `json:"smoothed_angles"`
	PersonVisible bool         `json:"person_visible"`
	LastFrameAt   time.Time    `json:"last_frame_at"`

	viewInit    bool
	pending     *pendingCycle
	prevElbow   [2]float64
	prevFrameAt time.Time
}

// NewState returns an idle state: both limbs at REST, empty smoothing
// buffers, no view estimate.
func NewState() *State {
	s := &State{
		RawAngles:      unavailableAngles(),
		SmoothedAngles: unavailableAngles(),
	}
	s.Arms[LimbLeft] = NewArmState()
	s.Arms[LimbRight] = NewArmState()
	s.prevElbow[LimbLeft] = math.NaN()
	s.prevElbow[LimbRight] = math.NaN()
	return s
}

var elbowChannel = [2]Channel{LimbLeft: ElbowLeft, LimbRight: ElbowRight}

// Update processes one frame of raw landmarks. It must be called with
// frames in timestamp order and never concurrently against the same State.
// Any input, including nil, is safe: the worst outcome of bad data is that
// no repetition progress is made this frame.
func (e *Engine) Update(st *State, lm *pose.Landmarks, now time.Time) {
	cfg := &e.cfg
	st.LastFrameAt = now

	stabilized := st.Stabilizer.Stabilize(lm)
	if stabilized == nil {
		st.PersonVisible = false
		st.RawAngles = unavailableAngles()
		st.Feedback.tick(now)
		st.prevFrameAt = now
		return
	}
	st.PersonVisible = true

	raw := ExtractAngles(stabilized, cfg.MinVisibility)
	st.RawAngles = raw
	st.View, st.viewInit = estimateView(st.View, st.viewInit, stabilized, cfg.MinVisibility)

	sm := st.Smoother.Smooth(raw)
	st.SmoothedAngles = sm

	cues := e.safetyCues(st, sm, now)

	// Advance both limb machines on their smoothed elbow channels. An
	// unavailable channel leaves that limb's machine untouched.
	var cycles [2]*ArmCycle
	for _, limb := range []Limb{LimbLeft, LimbRight} {
		cycles[limb] = st.Arms[limb].Advance(sm[elbowChannel[limb]], st.View.Smoothed, now, cfg)
	}

	// A repetition attempt opens as soon as either limb leaves REST.
	if st.Window == nil && (st.Arms[LimbLeft].Phase != PhaseRest || st.Arms[LimbRight].Phase != PhaseRest) {
		st.Window = newRepWindow(now)
	}
	if st.Window != nil {
		reach := [2]float64{math.NaN(), math.NaN()}
		if st.View.Zone == ZoneFrontal {
			reach[LimbLeft] = reachRatio(stabilized, LimbLeft, cfg.MinVisibility)
			reach[LimbRight] = reachRatio(stabilized, LimbRight, cfg.MinVisibility)
		}
		st.Window.observe(sm, reach)
	}

	cues = append(cues, e.synchronize(st, raw, cycles, now)...)

	// An attempt whose limbs all settled back to REST without resolving
	// (abandoned curls) dissolves; its extrema must not leak into the
	// next repetition.
	if st.Window != nil && st.pending == nil &&
		st.Arms[LimbLeft].Phase == PhaseRest && st.Arms[LimbRight].Phase == PhaseRest {
		st.Window = nil
	}

	if len(cues) > 0 {
		st.Feedback.offer(now, cues, cfg)
	} else {
		st.Feedback.tick(now)
	}

	st.prevElbow[LimbLeft] = sm[ElbowLeft]
	st.prevElbow[LimbRight] = sm[ElbowRight]
	st.prevFrameAt = now
}

// safetyCues evaluates the per-frame safety conditions: gross torso sway and
// an uncontrolled drop rate on a lowering arm.
func (e *Engine) safetyCues(st *State, sm AngleSet, now time.Time) []Cue {
	var cues []Cue
	if sm.Available(Torso) && sm[Torso] > e.cfg.SwayLimit {
		cues = append(cues, Cue{PrioritySafety, "Stop swinging your torso"})
	}

	dt := now.Sub(st.prevFrameAt).Seconds()
	if dt <= 0 {
		return cues
	}
	for _, limb := range []Limb{LimbLeft, LimbRight} {
		if st.Arms[limb].Phase != PhaseDown {
			continue
		}
		cur, prev := sm[elbowChannel[limb]], st.prevElbow[limb]
		if math.IsNaN(cur) || math.IsNaN(prev) {
			continue
		}
		if (cur-prev)/dt > e.cfg.DropRateLimit {
			cues = append(cues, Cue{PrioritySafety, "Don't drop the weight, lower it slowly"})
			break
		}
	}
	return cues
}

// synchronize resolves limb cycles into confirmed or discarded repetitions.
// In the frontal zone with both elbow channels valid, the two limbs must
// resolve within the sync window of each other; elsewhere the facing (or
// sole valid) limb alone governs.
func (e *Engine) synchronize(st *State, raw AngleSet, cycles [2]*ArmCycle, now time.Time) []Cue {
	cfg := &e.cfg
	dual := st.View.Zone == ZoneFrontal && raw.Available(ElbowLeft) && raw.Available(ElbowRight)

	if dual {
		for _, limb := range []Limb{LimbLeft, LimbRight} {
			c := cycles[limb]
			if c == nil {
				continue
			}
			if c.Escaped && cfg.EscapePolicy == EscapeDiscard {
				e.discardAttempt(st)
				return nil
			}
			other := LimbRight - limb
			switch {
			case cycles[other] != nil:
				// Both limbs resolved on the same frame.
				return e.confirm(st, cycles[LimbLeft], cycles[LimbRight], now)
			case st.pending != nil && st.pending.limb == other:
				if now.Sub(st.pending.at) <= cfg.SyncWindow {
					pair := [2]*ArmCycle{}
					pair[limb] = c
					pair[other] = st.pending.cycle
					return e.confirm(st, pair[LimbLeft], pair[LimbRight], now)
				}
				// Too far apart: severely asymmetric movement is
				// noise, not two single-arm reps.
				e.discardAttempt(st)
				return nil
			default:
				st.pending = &pendingCycle{limb: limb, cycle: c, at: now}
			}
		}

		if st.pending != nil && now.Sub(st.pending.at) > cfg.SyncWindow {
			e.discardAttempt(st)
		}
		return nil
	}

	gov := e.governingLimb(st, raw)
	c := cycles[gov]
	if c == nil {
		return nil
	}
	if c.Escaped && cfg.EscapePolicy == EscapeDiscard {
		e.discardAttempt(st)
		return nil
	}
	pair := [2]*ArmCycle{}
	pair[gov] = c
	return e.confirm(st, pair[LimbLeft], pair[LimbRight], now)
}

// governingLimb picks which limb confirms repetitions outside dual mode:
// the sole limb with a valid elbow channel, otherwise the camera-facing one.
func (e *Engine) governingLimb(st *State, raw AngleSet) Limb {
	leftOK := raw.Available(ElbowLeft)
	rightOK := raw.Available(ElbowRight)
	switch {
	case leftOK && !rightOK:
		return LimbLeft
	case rightOK && !leftOK:
		return LimbRight
	case st.View.Facing == SideRight:
		return LimbRight
	default:
		return LimbLeft
	}
}

// confirm scores the attempt, advances the counter, and resets for the next
// repetition. Returns the corrective cues for the feedback arbiter.
func (e *Engine) confirm(st *State, left, right *ArmCycle, now time.Time) []Cue {
	w := st.Window
	if w == nil {
		w = newRepWindow(now)
	}
	res, cues := scoreRep(w, left, right, st.View, now, &e.cfg)

	st.RepCount++
	st.LastRep = &res
	st.Window = nil
	st.pending = nil
	st.Arms[LimbLeft].Reset()
	st.Arms[LimbRight].Reset()
	return cues
}

// discardAttempt throws the in-progress attempt away without counting it.
func (e *Engine) discardAttempt(st *State) {
	st.Window = nil
	st.pending = nil
	st.Arms[LimbLeft].Reset()
	st.Arms[LimbRight].Reset()
}
