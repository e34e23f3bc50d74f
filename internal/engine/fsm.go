package engine

import (
	"math"
	"time"
)

// Phase is one state of the per-limb curl cycle.
type Phase string

const (
	// PhaseRest means the arm hangs extended between repetitions.
	PhaseRest Phase = "rest"
	// PhaseUp means the concentric (curling) portion is in progress.
	PhaseUp Phase = "up"
	// PhaseTop means the arm is fully flexed.
	PhaseTop Phase = "top"
	// PhaseDown means the eccentric (lowering) portion is in progress.
	PhaseDown Phase = "down"
)

// ArmCycle is the record of one resolved repetition attempt by a single
// limb, emitted when the state machine returns to REST.
type ArmCycle struct {
	Min, Max float64 // elbow angle extrema over the attempt
	UpAt     time.Time
	TopAt    time.Time
	DownAt   time.Time
	EndedAt  time.Time
	// Escaped is set when the limb began re-flexing before reaching full
	// extension and the attempt was force-resolved.
	Escaped bool
}

// Concentric returns the duration of the curling portion.
func (c *ArmCycle) Concentric() time.Duration { return c.TopAt.Sub(c.UpAt) }

// Eccentric returns the duration of the lowering portion.
func (c *ArmCycle) Eccentric() time.Duration { return c.EndedAt.Sub(c.DownAt) }

// ROM returns the attempt's elbow range of motion in degrees.
func (c *ArmCycle) ROM() float64 { return c.Max - c.Min }

// ArmState is the hysteretic four-state machine tracking one limb's curl
// cycle. Enter/exit thresholds straddle each boundary so noise near a
// threshold cannot oscillate the phase.
type ArmState struct {
	Phase    Phase     `json:"phase"`
	UpAt     time.Time `json:"-"`
	TopAt    time.Time `json:"-"`
	DownAt   time.Time `json:"-"`
	MinAngle float64   `json:"min_angle"`
	MaxAngle float64   `json:"max_angle"`
}

// NewArmState returns a limb at rest with cleared extrema.
func NewArmState() ArmState {
	return ArmState{Phase: PhaseRest, MinAngle: math.NaN(), MaxAngle: math.NaN()}
}

// Reset returns the limb to REST and clears the attempt extrema.
func (a *ArmState) Reset() {
	*a = NewArmState()
}

// Advance feeds one smoothed elbow angle into the machine. rotation is the
// smoothed view rotation used to relax thresholds against foreshortening.
// It returns a non-nil ArmCycle when the attempt resolves (DOWN -> REST,
// either by full extension or by the escape transition), after which the
// machine is back at REST with cleared extrema. A NaN angle leaves the
// machine untouched.
func (a *ArmState) Advance(angle, rotation float64, now time.Time, cfg *Config) *ArmCycle {
	if math.IsNaN(angle) {
		return nil
	}

	corr := cfg.viewCorrection(rotation)
	extendedEnter := cfg.ExtendedEnter - corr
	extendedExit := cfg.ExtendedExit - corr
	flexedEnter := cfg.FlexedEnter + corr
	flexedExit := cfg.FlexedExit + corr

	if a.Phase != PhaseRest {
		a.widen(angle)
	}

	switch a.Phase {
	case PhaseRest:
		if angle < extendedExit {
			a.Phase = PhaseUp
			a.UpAt = now
			a.MinAngle = angle
			a.MaxAngle = angle
		}

	case PhaseUp:
		switch {
		case angle < flexedEnter:
			a.Phase = PhaseTop
			a.TopAt = now
		case angle > extendedEnter:
			// The curl was abandoned before reaching the top; this is
			// not an attempt, just the arm settling back to rest.
			a.Reset()
		}

	case PhaseTop:
		if angle > flexedExit {
			a.Phase = PhaseDown
			a.DownAt = now
		}

	case PhaseDown:
		// Escape: re-flexing before full extension resolves the attempt
		// immediately so it can never stall in DOWN.
		if angle < flexedExit {
			return a.resolve(now, true)
		}
		if angle > extendedEnter && now.Sub(a.UpAt) >= cfg.MinCycle {
			return a.resolve(now, false)
		}
	}

	return nil
}

func (a *ArmState) widen(angle float64) {
	if math.IsNaN(a.MinAngle) || angle < a.MinAngle {
		a.MinAngle = angle
	}
	if math.IsNaN(a.MaxAngle) || angle > a.MaxAngle {
		a.MaxAngle = angle
	}
}

func (a *ArmState) resolve(now time.Time, escaped bool) *ArmCycle {
	cycle := &ArmCycle{
		Min:     a.MinAngle,
		Max:     a.MaxAngle,
		UpAt:    a.UpAt,
		TopAt:   a.TopAt,
		DownAt:  a.DownAt,
		EndedAt: now,
		Escaped: escaped,
	}
	a.Reset()
	return cycle
}
