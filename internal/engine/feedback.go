package engine

import "time"

// Priority orders feedback candidates. Lower values outrank higher ones:
// safety cues preempt form cues, which preempt performance cues.
type Priority int

const (
	PrioritySafety Priority = iota
	PriorityForm
	PriorityTempo
)

// Cue is one candidate feedback message.
type Cue struct {
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// Feedback is the arbiter's visible state plus its rate-limiting
// bookkeeping. At most one message is shown at a time.
type Feedback struct {
	Current  string   `json:"current"`
	Priority Priority `json:"priority"`

	lastEmit  time.Time
	expiresAt time.Time
}

// tick expires the current message once its display duration has passed.
func (f *Feedback) tick(now time.Time) {
	if f.Current != "" && now.After(f.expiresAt) {
		f.Current = ""
	}
}

// offer scans candidates in priority order and emits at most the single
// highest-priority one, subject to the minimum interval between emissions.
// A showing message is only replaced by one of higher or equal priority.
func (f *Feedback) offer(now time.Time, cues []Cue, cfg *Config) {
	f.tick(now)
	if len(cues) == 0 {
		return
	}

	best := cues[0]
	for _, c := range cues[1:] {
		if c.Priority < best.Priority {
			best = c
		}
	}

	if !f.lastEmit.IsZero() && now.Sub(f.lastEmit) < cfg.FeedbackInterval {
		return
	}
	if f.Current != "" && best.Priority > f.Priority {
		return
	}

	f.Current = best.Message
	f.Priority = best.Priority
	f.lastEmit = now
	f.expiresAt = now.Add(cfg.FeedbackDuration)
}
