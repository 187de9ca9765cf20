// internal/controller/controller.go

// Package controller runs the control loop: poll the stick, update the
// analyzer, classify against the effective deadzone, then route the candidate
// sector to either the transition machine or the alt-mode overlay. All
// pipeline state is owned by the loop goroutine; the only shared surface is
// the read-only snapshot.
package controller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/xkilldash9x/chakram-cli/internal/altmode"
	"github.com/xkilldash9x/chakram-cli/internal/analyzer"
	"github.com/xkilldash9x/chakram-cli/internal/input"
	"github.com/xkilldash9x/chakram-cli/internal/sector"
	"github.com/xkilldash9x/chakram-cli/internal/transition"
)

// Options wires the loop together.
type Options struct {
	Source   input.Source
	Analyzer *analyzer.Analyzer
	Machine  *transition.Machine
	Overlay  *altmode.Overlay
	Logger   *zap.Logger

	// Table and Deadzone come validated from configuration.
	Table    sector.Table
	Deadzone float64

	// TickRate is the loop period.
	TickRate time.Duration

	// EarlyTrigger enables the confidence-gated predictive transition.
	EarlyTrigger        bool
	EarlyTriggerMinConf float64
}

// TrailStats summarizes the recent movement trail for diagnostics.
type TrailStats struct {
	Samples     int     `json:"samples"`
	MeanSpeed   float64 `json:"mean_speed"`
	StddevSpeed float64 `json:"stddev_speed"`
}

// Snapshot aggregates every component's diagnostics view. Serialized by the
// diag server.
type Snapshot struct {
	Time              time.Time           `json:"time"`
	Metrics           analyzer.Metrics    `json:"metrics"`
	EffectiveDeadzone float64             `json:"effective_deadzone"`
	Candidate         string              `json:"candidate_sector"`
	Transition        transition.Snapshot `json:"transition"`
	AltMode           altmode.Snapshot    `json:"alt_mode"`
	Trail             TrailStats          `json:"trail"`
}

// Controller owns the loop.
type Controller struct {
	opts Options

	mu      sync.RWMutex
	snap    Snapshot
	altHeld bool
}

// New builds a controller. Options must carry a validated table.
func New(opts Options) *Controller {
	if opts.TickRate <= 0 {
		opts.TickRate = 10 * time.Millisecond
	}
	return &Controller{opts: opts}
}

// Run drives the loop until ctx is cancelled. On exit every held key and the
// overlay are released.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.TickRate)
	defer ticker.Stop()
	defer c.shutdown()

	c.opts.Logger.Info("control loop started",
		zap.Duration("tick_rate", c.opts.TickRate),
		zap.Float64("deadzone", c.opts.Deadzone))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Controller) shutdown() {
	c.opts.Machine.ReleaseAll()
	c.opts.Overlay.Reset()
	c.opts.Logger.Info("control loop stopped, all keys released")
}

// tick runs one pipeline pass. Errors are local: logged, reflected in the
// snapshot, recovered by the next tick.
func (c *Controller) tick(ctx context.Context) {
	sample, err := c.opts.Source.Poll()
	if err != nil {
		c.opts.Logger.Warn("input poll failed", zap.Error(err))
		return
	}

	metrics := c.opts.Analyzer.Update(sample.Pos, sample.Time)
	c.handleAltButton(sample.AltHeld)

	dz := c.effectiveDeadzone()
	candidate := sector.Classify(sample.Pos, dz, c.opts.Table)

	// Keep the sector forecast fresh for diagnostics even when the early
	// trigger is off.
	forecast, forecastOK := c.opts.Analyzer.PredictNextSector(c.opts.Table, dz)

	if c.opts.Overlay.Active() {
		if err := c.opts.Overlay.Steer(candidate); err != nil {
			c.opts.Logger.Warn("alt-mode steer failed", zap.Error(err))
		}
	} else {
		effective := candidate
		if c.opts.EarlyTrigger && forecastOK &&
			candidate == sector.Neutral &&
			forecast != c.opts.Machine.Current() &&
			metrics.Confidence >= c.opts.EarlyTriggerMinConf {
			// Still inside the deadzone but confidently heading out: start
			// the transition ahead of the crossing. Cooldown and ordering
			// apply unchanged inside the machine.
			effective = forecast
		}
		if err := c.opts.Machine.Apply(ctx, effective, c.opts.Analyzer.IsQuickMovement(), sample.Time); err != nil {
			c.opts.Logger.Warn("transition failed", zap.Error(err))
		}
	}

	c.publish(sample.Time, c.opts.Analyzer.Metrics(), dz, candidate)
}

// handleAltButton toggles the overlay on the button's rising edge. Entering
// alt mode first releases any held sector key so the keyboard and mouse
// paths never overlap.
func (c *Controller) handleAltButton(held bool) {
	if held == c.altHeld {
		return
	}
	c.altHeld = held
	if !held {
		return
	}

	if !c.opts.Overlay.Active() {
		c.opts.Machine.ReleaseAll()
	}
	if err := c.opts.Overlay.Toggle(); err != nil {
		c.opts.Logger.Warn("alt-mode toggle failed", zap.Error(err))
	}
}

func (c *Controller) effectiveDeadzone() float64 {
	if c.opts.Overlay.Active() {
		return c.opts.Deadzone * c.opts.Overlay.DeadzoneFactor()
	}
	return c.opts.Analyzer.DynamicDeadzone(c.opts.Deadzone)
}

func (c *Controller) publish(now time.Time, metrics analyzer.Metrics, dz float64, candidate sector.Sector) {
	snap := Snapshot{
		Time:              now,
		Metrics:           metrics,
		EffectiveDeadzone: dz,
		Candidate:         candidate.String(),
		Transition:        c.opts.Machine.Snapshot(),
		AltMode:           c.opts.Overlay.Snapshot(),
		Trail:             c.trailStats(),
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// trailStats derives per-leg speeds from the analyzer's history.
func (c *Controller) trailStats() TrailStats {
	trail := c.opts.Analyzer.Trail()
	if len(trail) < 2 {
		return TrailStats{Samples: len(trail)}
	}
	speeds := make([]float64, 0, len(trail)-1)
	for i := 1; i < len(trail); i++ {
		dt := trail[i].Time.Sub(trail[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		speeds = append(speeds, trail[i].Pos.Dist(trail[i-1].Pos)/dt)
	}
	if len(speeds) == 0 {
		return TrailStats{Samples: len(trail)}
	}
	stats := TrailStats{
		Samples:   len(trail),
		MeanSpeed: stat.Mean(speeds, nil),
	}
	if len(speeds) > 1 {
		stats.StddevSpeed = stat.StdDev(speeds, nil)
	}
	return stats
}

// Snapshot returns the latest aggregate state. Safe for concurrent readers.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
