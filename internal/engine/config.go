// Package engine implements barbell-curl repetition detection and form
// scoring over a stabilized pose-landmark stream.
package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Escape policies for a limb that starts re-flexing before reaching full
// extension. See Config.EscapePolicy.
const (
	// EscapeCount confirms the escaped attempt as a repetition and lets
	// the extension-shortfall penalty price the missing range.
	EscapeCount = "count"
	// EscapeDiscard drops the escaped attempt without counting it.
	EscapeDiscard = "discard"
)

// Config holds all tuning parameters for the engine. Zero values are not
// meaningful; start from DefaultConfig and override.
type Config struct {
	// MinVisibility is the landmark visibility required for a joint to
	// contribute to an angle channel.
	MinVisibility float64 `json:"min_visibility"`

	// Phase thresholds (degrees of elbow angle). Enter/exit pairs straddle
	// the same nominal boundary to give the state machine hysteresis.
	ExtendedEnter float64 `json:"extended_enter"` // DOWN -> REST above this
	ExtendedExit  float64 `json:"extended_exit"`  // REST -> UP below this
	FlexedEnter   float64 `json:"flexed_enter"`   // UP -> TOP below this
	FlexedExit    float64 `json:"flexed_exit"`    // TOP -> DOWN above this

	// View compensation: thresholds are relaxed by
	// min(MaxViewCorrection, rotation*ViewCorrectionGain) degrees to
	// counter 2D foreshortening at oblique camera angles.
	ViewCorrectionGain float64 `json:"view_correction_gain"`
	MaxViewCorrection  float64 `json:"max_view_correction"`

	// MinCycle is the minimum time from entering UP to resolving at REST
	// for an attempt to be eligible as a repetition.
	MinCycle time.Duration `json:"-"`

	// SyncWindow bounds how far apart the two limbs may resolve in the
	// frontal view and still count as one repetition.
	SyncWindow time.Duration `json:"-"`

	// EscapePolicy selects how an escaped attempt resolves: EscapeCount
	// or EscapeDiscard.
	EscapePolicy string `json:"escape_policy"`

	// Scoring targets.
	FlexionTarget   float64 `json:"flexion_target"`   // min elbow angle to reach at the top
	ExtensionTarget float64 `json:"extension_target"` // max elbow angle to reach at the bottom
	MinReachRatio   float64 `json:"min_reach_ratio"`  // wrist-to-shoulder reach at full extension
	MinConcentric   time.Duration
	MinEccentric    time.Duration

	// Live safety limits.
	SwayLimit     float64 `json:"sway_limit"`      // degrees of torso lean
	DropRateLimit float64 `json:"drop_rate_limit"` // degrees/second of elbow extension

	// Feedback pacing.
	FeedbackInterval time.Duration
	FeedbackDuration time.Duration

	// Durations above are exposed in the JSON tuning file as
	// milliseconds; see configFile.
}

// DefaultConfig returns a Config with sensible default values, tuned for a
// ~15 fps landmark stream in normalized image coordinates.
func DefaultConfig() Config {
	return Config{
		MinVisibility: 0.5,

		ExtendedEnter: 160,
		ExtendedExit:  150,
		FlexedEnter:   100,
		FlexedExit:    110,

		ViewCorrectionGain: 0.35,
		MaxViewCorrection:  15,

		MinCycle:   1200 * time.Millisecond,
		SyncWindow: 350 * time.Millisecond,

		EscapePolicy: EscapeCount,

		FlexionTarget:   70,
		ExtensionTarget: 160,
		MinReachRatio:   0.90,
		MinConcentric:   700 * time.Millisecond,
		MinEccentric:    1100 * time.Millisecond,

		SwayLimit:     30,
		DropRateLimit: 300,

		FeedbackInterval: 2500 * time.Millisecond,
		FeedbackDuration: 4 * time.Second,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.MinVisibility < 0 || c.MinVisibility > 1 {
		return fmt.Errorf("min_visibility must be in [0,1], got %v", c.MinVisibility)
	}
	if c.ExtendedExit >= c.ExtendedEnter {
		return fmt.Errorf("extended_exit (%v) must be below extended_enter (%v)", c.ExtendedExit, c.ExtendedEnter)
	}
	if c.FlexedEnter >= c.FlexedExit {
		return fmt.Errorf("flexed_enter (%v) must be below flexed_exit (%v)", c.FlexedEnter, c.FlexedExit)
	}
	if c.FlexedExit >= c.ExtendedExit {
		return fmt.Errorf("flexed_exit (%v) must be below extended_exit (%v)", c.FlexedExit, c.ExtendedExit)
	}
	if c.EscapePolicy != EscapeCount && c.EscapePolicy != EscapeDiscard {
		return fmt.Errorf("escape_policy must be %q or %q, got %q", EscapeCount, EscapeDiscard, c.EscapePolicy)
	}
	if c.MaxViewCorrection < 0 || c.ViewCorrectionGain < 0 {
		return fmt.Errorf("view correction parameters must be non-negative")
	}
	if c.SyncWindow <= 0 {
		return fmt.Errorf("sync window must be positive, got %v", c.SyncWindow)
	}
	if c.MinReachRatio <= 0 || c.MinReachRatio > 1 {
		return fmt.Errorf("min_reach_ratio must be in (0,1], got %v", c.MinReachRatio)
	}
	return nil
}

// configFile is the JSON tuning-file schema. All fields are optional;
// omitted fields keep their defaults, so partial configs are safe.
type configFile struct {
	MinVisibility      *float64 `json:"min_visibility,omitempty"`
	ExtendedEnter      *float64 `json:"extended_enter,omitempty"`
	ExtendedExit       *float64 `json:"extended_exit,omitempty"`
	FlexedEnter        *float64 `json:"flexed_enter,omitempty"`
	FlexedExit         *float64 `json:"flexed_exit,omitempty"`
	ViewCorrectionGain *float64 `json:"view_correction_gain,omitempty"`
	MaxViewCorrection  *float64 `json:"max_view_correction,omitempty"`
	MinCycleMs         *int64   `json:"min_cycle_ms,omitempty"`
	SyncWindowMs       *int64   `json:"sync_window_ms,omitempty"`
	EscapePolicy       *string  `json:"escape_policy,omitempty"`
	FlexionTarget      *float64 `json:"flexion_target,omitempty"`
	ExtensionTarget    *float64 `json:"extension_target,omitempty"`
	MinReachRatio      *float64 `json:"min_reach_ratio,omitempty"`
	MinConcentricMs    *int64   `json:"min_concentric_ms,omitempty"`
	MinEccentricMs     *int64   `json:"min_eccentric_ms,omitempty"`
	SwayLimit          *float64 `json:"sway_limit,omitempty"`
	DropRateLimit      *float64 `json:"drop_rate_limit,omitempty"`
	FeedbackIntervalMs *int64   `json:"feedback_interval_ms,omitempty"`
	FeedbackDurationMs *int64   `json:"feedback_duration_ms,omitempty"`
}

// LoadConfig reads a JSON tuning file and applies it over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var f configFile
	if err := json.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	applyMs := func(dst *time.Duration, src *int64) {
		if src != nil {
			*dst = time.Duration(*src) * time.Millisecond
		}
	}

	applyFloat(&cfg.MinVisibility, f.MinVisibility)
	applyFloat(&cfg.ExtendedEnter, f.ExtendedEnter)
	applyFloat(&cfg.ExtendedExit, f.ExtendedExit)
	applyFloat(&cfg.FlexedEnter, f.FlexedEnter)
	applyFloat(&cfg.FlexedExit, f.FlexedExit)
	applyFloat(&cfg.ViewCorrectionGain, f.ViewCorrectionGain)
	applyFloat(&cfg.MaxViewCorrection, f.MaxViewCorrection)
	applyMs(&cfg.MinCycle, f.MinCycleMs)
	applyMs(&cfg.SyncWindow, f.SyncWindowMs)
	if f.EscapePolicy != nil {
		cfg.EscapePolicy = *f.EscapePolicy
	}
	applyFloat(&cfg.FlexionTarget, f.FlexionTarget)
	applyFloat(&cfg.ExtensionTarget, f.ExtensionTarget)
	applyFloat(&cfg.MinReachRatio, f.MinReachRatio)
	applyMs(&cfg.MinConcentric, f.MinConcentricMs)
	applyMs(&cfg.MinEccentric, f.MinEccentricMs)
	applyFloat(&cfg.SwayLimit, f.SwayLimit)
	applyFloat(&cfg.DropRateLimit, f.DropRateLimit)
	applyMs(&cfg.FeedbackInterval, f.FeedbackIntervalMs)
	applyMs(&cfg.FeedbackDuration, f.FeedbackDurationMs)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// viewCorrection returns the degrees by which phase thresholds and scoring
// targets are relaxed for the given smoothed body rotation.
func (c *Config) viewCorrection(rotation float64) float64 {
	corr := rotation * c.ViewCorrectionGain
	if corr > c.MaxViewCorrection {
		corr = c.MaxViewCorrection
	}
	if corr < 0 {
		corr = 0
	}
	return corr
}
