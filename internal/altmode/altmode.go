// internal/altmode/altmode.go

// Package altmode implements the overlay that replaces the keyboard path
// while its bound key is held: classified sector changes become cursor
// offsets plus a held secondary mouse button. The overlay owns only its own
// activation state; routing is the control loop's job.
package altmode

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/sector"
)

// Config tunes the overlay.
type Config struct {
	// Key is the backend key held while the overlay is active.
	Key string
	// CursorOffset is the magnitude in pixels of one sector step.
	CursorOffset int
	// MouseButton is held while the stick points into a sector.
	MouseButton string
	// DeadzoneFactor scales the base deadzone while the overlay is active.
	DeadzoneFactor float64
}

// ApplyDefaults fills unset fields with the stock values.
func (c *Config) ApplyDefaults() {
	if c.Key == "" {
		c.Key = "shift"
	}
	if c.CursorOffset <= 0 {
		c.CursorOffset = 50
	}
	if c.MouseButton == "" {
		c.MouseButton = backend.MouseRight
	}
	if c.DeadzoneFactor <= 0 {
		c.DeadzoneFactor = 0.8
	}
}

// Snapshot is the diagnostics view of the overlay.
type Snapshot struct {
	Active     bool      `json:"active"`
	BoundKey   string    `json:"bound_key"`
	LastAction string    `json:"last_action,omitempty"`
	LastChange time.Time `json:"last_change"`
}

// Overlay is the alt-mode state machine. Single-owner, like the transition
// machine.
type Overlay struct {
	cfg     Config
	backend backend.Backend
	logger  *zap.Logger

	active     bool
	buttonHeld bool
	lastSector sector.Sector
	lastAction string
	lastChange time.Time
}

// New builds an inactive overlay.
func New(cfg Config, b backend.Backend, logger *zap.Logger) *Overlay {
	cfg.ApplyDefaults()
	return &Overlay{cfg: cfg, backend: b, logger: logger}
}

// Active reports whether the overlay currently holds its key.
func (o *Overlay) Active() bool { return o.active }

// DeadzoneFactor returns the deadzone scale to use while active.
func (o *Overlay) DeadzoneFactor() float64 { return o.cfg.DeadzoneFactor }

// Activate presses the bound key. On backend failure the overlay stays
// inactive.
func (o *Overlay) Activate() error {
	if o.active {
		return nil
	}
	if err := o.backend.PressKey(o.cfg.Key); err != nil {
		return fmt.Errorf("altmode: activate: %w", err)
	}
	o.active = true
	o.note("activate")
	o.logger.Debug("alt mode on", zap.String("key", o.cfg.Key))
	return nil
}

// Deactivate releases the bound key and any held mouse button. On backend
// failure the overlay stays active so a retry can release the physical key.
func (o *Overlay) Deactivate() error {
	if !o.active {
		return nil
	}
	if err := o.backend.ReleaseKey(o.cfg.Key); err != nil {
		return fmt.Errorf("altmode: deactivate: %w", err)
	}
	o.active = false
	o.releaseButton()
	o.lastSector = sector.Neutral
	o.note("deactivate")
	o.logger.Debug("alt mode off", zap.String("key", o.cfg.Key))
	return nil
}

// Toggle flips the overlay.
func (o *Overlay) Toggle() error {
	if o.active {
		return o.Deactivate()
	}
	return o.Activate()
}

// UpdateKey rebinds the overlay. If active, the old key is released before
// the rebind and the new key pressed after, so the physical key is never left
// held under a stale binding.
func (o *Overlay) UpdateKey(newKey string) error {
	wasActive := o.active
	if wasActive {
		if err := o.Deactivate(); err != nil {
			return err
		}
	}
	o.cfg.Key = newKey
	o.note("rebind:" + newKey)
	if wasActive {
		return o.Activate()
	}
	return nil
}

// Reset forces deactivation and clears diagnostics. Always succeeds; release
// failures are logged and swallowed, this is the recovery path.
func (o *Overlay) Reset() {
	if o.active {
		if err := o.backend.ReleaseKey(o.cfg.Key); err != nil {
			o.logger.Warn("altmode reset: key may be stuck", zap.String("key", o.cfg.Key), zap.Error(err))
		}
		o.active = false
	}
	o.releaseButton()
	o.lastSector = sector.Neutral
	o.lastAction = ""
}

// Steer consumes one classified tick while active. Entering a sector moves
// the cursor one offset step in the sector's direction with the mouse button
// held; returning to Neutral releases the button. Repeats of the same sector
// are no-ops.
func (o *Overlay) Steer(s sector.Sector) error {
	if !o.active || s == o.lastSector {
		return nil
	}

	if s == sector.Neutral {
		o.releaseButton()
		o.lastSector = s
		return nil
	}

	if !o.buttonHeld {
		if err := o.backend.PressMouse(o.cfg.MouseButton); err != nil {
			return fmt.Errorf("altmode: hold %s button: %w", o.cfg.MouseButton, err)
		}
		o.buttonHeld = true
	}

	dx, dy := o.offsetFor(s)
	if err := o.backend.MoveCursor(dx, dy); err != nil {
		return fmt.Errorf("altmode: cursor step: %w", err)
	}
	o.lastSector = s
	o.note(fmt.Sprintf("steer:%s", s))
	return nil
}

// offsetFor maps a sector onto a screen-space step. Stick y is down-positive,
// matching screen coordinates, so no axis flip is needed.
func (o *Overlay) offsetFor(s sector.Sector) (int, int) {
	step := o.cfg.CursorOffset
	switch s {
	case sector.East:
		return step, 0
	case sector.South:
		return 0, step
	case sector.West:
		return -step, 0
	case sector.North:
		return 0, -step
	default:
		return 0, 0
	}
}

func (o *Overlay) releaseButton() {
	if !o.buttonHeld {
		return
	}
	if err := o.backend.ReleaseMouse(o.cfg.MouseButton); err != nil {
		o.logger.Warn("altmode: mouse button may be stuck", zap.String("button", o.cfg.MouseButton), zap.Error(err))
	}
	o.buttonHeld = false
}

func (o *Overlay) note(action string) {
	o.lastAction = action
	o.lastChange = time.Now()
}

// Snapshot returns the diagnostics view.
func (o *Overlay) Snapshot() Snapshot {
	return Snapshot{
		Active:     o.active,
		BoundKey:   o.cfg.Key,
		LastAction: o.lastAction,
		LastChange: o.lastChange,
	}
}
