// internal/transition/transition.go

// Package transition owns the sector state machine: which directional key is
// held, the ordered key sequence for switching between sectors, the cooldown
// window that suppresses oscillation, and the deadzone dwell that separates a
// deliberate return to center from a fast pass through it.
package transition

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/sector"
)

// Config holds key bindings and timing for the machine.
type Config struct {
	// Keys binds each directional sector to a backend key name.
	Keys map[sector.Sector]string
	// CancelKey is pressed across every sector-to-sector switch.
	CancelKey string
	// SettleDelay lets the cancel press register before anything is released.
	SettleDelay time.Duration
	// ReleaseDelay separates releasing the old sector key from pressing the new.
	ReleaseDelay time.Duration
	// Cooldown is the window after a transition in which inputs are dropped.
	Cooldown time.Duration
	// DeadzoneDwell is how long the stick must rest in Neutral before the
	// held key is released. Quick passes through the center skip the release.
	DeadzoneDwell time.Duration
}

// ApplyDefaults fills unset timing fields with the stock values.
func (c *Config) ApplyDefaults() {
	if c.SettleDelay <= 0 {
		c.SettleDelay = 10 * time.Millisecond
	}
	if c.ReleaseDelay <= 0 {
		c.ReleaseDelay = 80 * time.Millisecond
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 150 * time.Millisecond
	}
	if c.DeadzoneDwell <= 0 {
		c.DeadzoneDwell = 50 * time.Millisecond
	}
	if c.CancelKey == "" {
		c.CancelKey = "ctrl"
	}
}

// Validate checks that every directional sector has a binding.
func (c Config) Validate() error {
	for _, s := range sector.Directional() {
		if c.Keys[s] == "" {
			return fmt.Errorf("transition: no key bound for sector %q", s)
		}
	}
	return nil
}

// Snapshot is the read-only diagnostics view of the machine.
type Snapshot struct {
	Current        string    `json:"current_sector"`
	Pending        string    `json:"pending_sector,omitempty"`
	LastTransition time.Time `json:"last_transition"`
	CooldownUntil  time.Time `json:"cooldown_until"`
	HeldKeys       []string  `json:"held_keys"`
	LastError      string    `json:"last_error,omitempty"`
}

// Machine drives the backend from classified sectors. It is single-owner
// state: only the control loop may call Apply.
type Machine struct {
	cfg     Config
	backend backend.Backend
	logger  *zap.Logger

	current        sector.Sector
	pending        sector.Sector
	lastTransition time.Time
	cooldownUntil  time.Time
	neutralSince   time.Time
	held           map[string]struct{}
	lastErr        error

	sleep func(context.Context, time.Duration) error
}

// New builds a machine starting in Neutral.
func New(cfg Config, b backend.Backend, logger *zap.Logger) (*Machine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		cfg:     cfg,
		backend: b,
		logger:  logger,
		current: sector.Neutral,
		held:    make(map[string]struct{}),
		sleep:   sleepCtx,
	}, nil
}

// Current returns the sector the machine believes it is in.
func (m *Machine) Current() sector.Sector { return m.current }

// Apply feeds one classified tick into the machine. quick marks the sample as
// part of a fast movement, which suppresses the Neutral release so a pass
// through the deadzone becomes a direct sector-to-sector switch. A backend
// failure aborts the in-flight sequence and leaves the current sector
// unchanged; the next tick retries from the actual state.
func (m *Machine) Apply(ctx context.Context, candidate sector.Sector, quick bool, now time.Time) error {
	if candidate != sector.Neutral {
		m.neutralSince = time.Time{}
	}

	switch {
	case candidate == m.current:
		return nil

	case candidate == sector.Neutral:
		if quick {
			// Passing through the center at speed: hold the key and wait
			// for the far sector.
			return nil
		}
		if m.neutralSince.IsZero() {
			m.neutralSince = now
			return nil
		}
		if now.Sub(m.neutralSince) < m.cfg.DeadzoneDwell {
			return nil
		}
		if now.Before(m.cooldownUntil) {
			return nil
		}
		return m.leave(now)

	default:
		if now.Before(m.cooldownUntil) {
			return nil
		}
		if m.current == sector.Neutral {
			return m.enter(candidate, now)
		}
		return m.switchSector(ctx, candidate, now)
	}
}

// enter presses the key for s from Neutral. No cancel-key step.
func (m *Machine) enter(s sector.Sector, now time.Time) error {
	key := m.cfg.Keys[s]
	if err := m.press(key); err != nil {
		return m.abort(fmt.Errorf("enter %s: %w", s, err))
	}
	m.commit(s, now)
	m.logger.Debug("entered sector", zap.Stringer("sector", s), zap.String("key", key))
	return nil
}

// leave releases the current sector's key and returns to Neutral.
func (m *Machine) leave(now time.Time) error {
	key := m.cfg.Keys[m.current]
	if err := m.release(key); err != nil {
		return m.abort(fmt.Errorf("leave %s: %w", m.current, err))
	}
	m.logger.Debug("left sector", zap.Stringer("sector", m.current), zap.String("key", key))
	m.commit(sector.Neutral, now)
	return nil
}

// switchSector runs the ordered A→B sequence. The ordering is load-bearing:
// the cancel key must be down and settled before A's key is released,
// otherwise the consumer misorders the events.
func (m *Machine) switchSector(ctx context.Context, to sector.Sector, now time.Time) error {
	from := m.current
	m.pending = to
	defer func() { m.pending = sector.Neutral }()

	if err := m.press(m.cfg.CancelKey); err != nil {
		return m.abort(fmt.Errorf("switch %s->%s: cancel press: %w", from, to, err))
	}
	if err := m.sleep(ctx, m.cfg.SettleDelay); err != nil {
		return m.abort(err)
	}
	if err := m.release(m.cfg.Keys[from]); err != nil {
		return m.abort(fmt.Errorf("switch %s->%s: release old: %w", from, to, err))
	}
	if err := m.release(m.cfg.CancelKey); err != nil {
		return m.abort(fmt.Errorf("switch %s->%s: cancel release: %w", from, to, err))
	}
	if err := m.sleep(ctx, m.cfg.ReleaseDelay); err != nil {
		return m.abort(err)
	}
	if err := m.press(m.cfg.Keys[to]); err != nil {
		return m.abort(fmt.Errorf("switch %s->%s: press new: %w", from, to, err))
	}

	m.commit(to, now)
	m.logger.Debug("switched sector", zap.Stringer("from", from), zap.Stringer("to", to))
	return nil
}

func (m *Machine) commit(s sector.Sector, now time.Time) {
	m.current = s
	m.lastTransition = now
	m.cooldownUntil = now.Add(m.cfg.Cooldown)
	m.neutralSince = time.Time{}
	m.lastErr = nil
}

func (m *Machine) abort(err error) error {
	m.lastErr = err
	m.logger.Warn("transition aborted", zap.Error(err))
	return err
}

func (m *Machine) press(key string) error {
	if err := m.backend.PressKey(key); err != nil {
		return err
	}
	m.held[key] = struct{}{}
	return nil
}

func (m *Machine) release(key string) error {
	if err := m.backend.ReleaseKey(key); err != nil {
		return err
	}
	delete(m.held, key)
	return nil
}

// ReleaseAll releases every key the machine believes is down and resets to
// Neutral. Used on shutdown, on alt-mode entry and by recovery paths. Release
// failures are logged but do not stop the sweep.
func (m *Machine) ReleaseAll() {
	for key := range m.held {
		if err := m.backend.ReleaseKey(key); err != nil {
			m.logger.Warn("release-all: key stuck", zap.String("key", key), zap.Error(err))
			continue
		}
		delete(m.held, key)
	}
	m.current = sector.Neutral
	m.pending = sector.Neutral
	m.neutralSince = time.Time{}
}

// Snapshot returns the diagnostics view.
func (m *Machine) Snapshot() Snapshot {
	held := make([]string, 0, len(m.held))
	for key := range m.held {
		held = append(held, key)
	}
	sort.Strings(held)

	snap := Snapshot{
		Current:        m.current.String(),
		LastTransition: m.lastTransition,
		CooldownUntil:  m.cooldownUntil,
		HeldKeys:       held,
	}
	if m.pending != sector.Neutral {
		snap.Pending = m.pending.String()
	}
	if m.lastErr != nil {
		snap.LastError = m.lastErr.Error()
	}
	return snap
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
