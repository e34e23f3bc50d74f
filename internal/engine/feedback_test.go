package engine

import (
	"testing"
	"time"
)

func TestFeedback_PicksHighestPriority(t *testing.T) {
	cfg := DefaultConfig()
	var f Feedback

	f.offer(t0, []Cue{
		{Priority: PriorityTempo, Message: "Slow down on the way up"},
		{Priority: PrioritySafety, Message: "Stop swinging your torso"},
		{Priority: PriorityForm, Message: "Curl all the way up"},
	}, &cfg)

	if f.Current != "Stop swinging your torso" {
		t.Errorf("current = %q, want the safety cue", f.Current)
	}
	if f.Priority != PrioritySafety {
		t.Errorf("priority = %v, want %v", f.Priority, PrioritySafety)
	}
}

func TestFeedback_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	var f Feedback

	f.offer(t0, []Cue{{Priority: PriorityForm, Message: "first"}}, &cfg)
	if f.Current != "first" {
		t.Fatalf("current = %q, want %q", f.Current, "first")
	}

	// Inside the interval nothing may be emitted, not even a safety cue
	// replacing an expired message.
	soon := t0.Add(cfg.FeedbackInterval / 2)
	f.offer(soon, []Cue{{Priority: PrioritySafety, Message: "second"}}, &cfg)
	if f.Current != "first" {
		t.Errorf("current = %q, want %q within the emit interval", f.Current, "first")
	}

	later := t0.Add(cfg.FeedbackInterval + time.Millisecond)
	f.offer(later, []Cue{{Priority: PrioritySafety, Message: "second"}}, &cfg)
	if f.Current != "second" {
		t.Errorf("current = %q, want %q after the interval passed", f.Current, "second")
	}
}

func TestFeedback_Expiry(t *testing.T) {
	cfg := DefaultConfig()
	var f Feedback

	f.offer(t0, []Cue{{Priority: PriorityForm, Message: "msg"}}, &cfg)

	f.tick(t0.Add(cfg.FeedbackDuration / 2))
	if f.Current != "msg" {
		t.Errorf("message expired early: %q", f.Current)
	}

	f.tick(t0.Add(cfg.FeedbackDuration + time.Millisecond))
	if f.Current != "" {
		t.Errorf("current = %q, want empty after the display duration", f.Current)
	}
}

func TestFeedback_ReplacementRules(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("lower priority never replaces a showing message", func(t *testing.T) {
		var f Feedback
		f.offer(t0, []Cue{{Priority: PrioritySafety, Message: "safety"}}, &cfg)

		at := t0.Add(cfg.FeedbackInterval + time.Millisecond)
		f.offer(at, []Cue{{Priority: PriorityForm, Message: "form"}}, &cfg)
		if f.Current != "safety" {
			t.Errorf("current = %q, a form cue must not displace a safety cue", f.Current)
		}
	})

	t.Run("equal priority replaces", func(t *testing.T) {
		var f Feedback
		f.offer(t0, []Cue{{Priority: PriorityForm, Message: "one"}}, &cfg)

		at := t0.Add(cfg.FeedbackInterval + time.Millisecond)
		f.offer(at, []Cue{{Priority: PriorityForm, Message: "two"}}, &cfg)
		if f.Current != "two" {
			t.Errorf("current = %q, want %q", f.Current, "two")
		}
	})

	t.Run("higher priority replaces", func(t *testing.T) {
		var f Feedback
		f.offer(t0, []Cue{{Priority: PriorityTempo, Message: "tempo"}}, &cfg)

		at := t0.Add(cfg.FeedbackInterval + time.Millisecond)
		f.offer(at, []Cue{{Priority: PrioritySafety, Message: "safety"}}, &cfg)
		if f.Current != "safety" {
			t.Errorf("current = %q, want %q", f.Current, "safety")
		}
	})
}

func TestFeedback_NoCuesIsInert(t *testing.T) {
	cfg := DefaultConfig()
	var f Feedback

	f.offer(t0, nil, &cfg)
	if f.Current != "" {
		t.Errorf("current = %q, want empty", f.Current)
	}

	f.offer(t0, []Cue{{Priority: PriorityForm, Message: "msg"}}, &cfg)
	f.offer(t0.Add(time.Second), nil, &cfg)
	if f.Current != "msg" {
		t.Errorf("offering no cues must not clear a live message, got %q", f.Current)
	}
}

func TestFeedback_ExpiredSlotAcceptsAnyPriority(t *testing.T) {
	cfg := DefaultConfig()
	var f Feedback

	f.offer(t0, []Cue{{Priority: PrioritySafety, Message: "safety"}}, &cfg)

	// Past both the display duration and the emit interval a lower-priority
	// cue may take the now-empty slot.
	at := t0.Add(cfg.FeedbackDuration + cfg.FeedbackInterval)
	f.offer(at, []Cue{{Priority: PriorityTempo, Message: "tempo"}}, &cfg)
	if f.Current != "tempo" {
		t.Errorf("current = %q, want %q after the slot cleared", f.Current, "tempo")
	}
}
