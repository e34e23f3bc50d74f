// Package session owns one recording's engine state and serializes frame
// delivery into it.
package session

import (
	"sync"
	"time"

	"github.com/ayusman/forma/internal/engine"
	"github.com/ayusman/forma/internal/pose"
	"github.com/google/uuid"
)

// Session wraps one engine.State for the lifetime of a recording. The
// upstream camera/model pipeline may deliver inference results from a
// background goroutine; the session's lock guarantees the engine never sees
// two concurrent updates against the same state.
type Session struct {
	ID string

	engine *engine.Engine
	state  *engine.State

	mu        sync.Mutex
	startedAt time.Time
	ended     bool
}

// New starts a session with the given engine configuration.
func New(cfg engine.Config) (*Session, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        uuid.NewString(),
		engine:    eng,
		state:     engine.NewState(),
		startedAt: time.Now(),
	}, nil
}

// Process feeds one landmark frame into the engine. Frames delivered after
// End are dropped.
func (s *Session) Process(lm *pose.Landmarks, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.engine.Update(s.state, lm, ts)
}

// End stops the session. The final snapshot remains readable; there are no
// owned resources beyond the in-memory state, so nothing else to tear down.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

// Snapshot is an immutable view of the session for a consuming UI layer,
// safe to read from any goroutine. A renderer polls this once per tick.
type Snapshot struct {
	ID            string              `json:"id"`
	StartedAt     time.Time           `json:"started_at"`
	Ended         bool                `json:"ended"`
	RepCount      int                 `json:"rep_count"`
	LastRep       *engine.RepResult   `json:"last_rep,omitempty"`
	Feedback      string              `json:"feedback,omitempty"`
	View          engine.ViewAngle    `json:"view"`
	Phases        [2]engine.Phase     `json:"phases"`
	RawAngles     map[string]float64  `json:"raw_angles"`
	SmoothedAngles map[string]float64 `json:"smoothed_angles"`
	PersonVisible bool                `json:"person_visible"`
	LastFrameAt   time.Time           `json:"last_frame_at"`
}

// Snapshot returns the current immutable view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	snap := Snapshot{
		ID:            s.ID,
		StartedAt:     s.startedAt,
		Ended:         s.ended,
		RepCount:      st.RepCount,
		Feedback:      st.Feedback.Current,
		View:          st.View,
		PersonVisible: st.PersonVisible,
		LastFrameAt:   st.LastFrameAt,
		RawAngles:     angleMap(st.RawAngles),
		SmoothedAngles: angleMap(st.SmoothedAngles),
	}
	snap.Phases[engine.LimbLeft] = st.Arms[engine.LimbLeft].Phase
	snap.Phases[engine.LimbRight] = st.Arms[engine.LimbRight].Phase

	if st.LastRep != nil {
		rep := *st.LastRep
		rep.Messages = append([]string(nil), st.LastRep.Messages...)
		if st.LastRep.Penalties != nil {
			rep.Penalties = make(map[string]float64, len(st.LastRep.Penalties))
			for k, v := range st.LastRep.Penalties {
				rep.Penalties[k] = v
			}
		}
		snap.LastRep = &rep
	}
	return snap
}

// angleMap flattens an AngleSet into named debug values. Unavailable
// channels are omitted rather than defaulted, so overlays cannot mistake a
// missing channel for a zero angle.
func angleMap(a engine.AngleSet) map[string]float64 {
	out := make(map[string]float64, engine.NumChannels)
	for c := engine.Channel(0); c < engine.NumChannels; c++ {
		if a.Available(c) {
			out[c.String()] = a[c]
		}
	}
	return out
}
