// internal/input/input.go

// Package input abstracts the physical stick behind a pull API. Three
// sources exist: an SDL joystick, a raw HID device, and a synthetic signal
// generator for the simulate command and tests. The control loop depends
// only on the Source interface.
package input

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
)

// Sample is one stick reading. Pos axes are normalized into [-1,1], with
// positive y pointing down. AltHeld reports the physical alt-mode button.
type Sample struct {
	Pos     geom.Vector2D
	AltHeld bool
	Time    time.Time
}

// Source supplies stick samples, one per control tick.
type Source interface {
	// Poll returns the current stick state. It does not block on the device.
	Poll() (Sample, error)
	Close() error
}

// Config selects and tunes the input source.
type Config struct {
	// Driver is "sdl", "hid" or "synthetic".
	Driver string `mapstructure:"driver"`
	// DeviceMatch is a case-insensitive substring of the joystick name (sdl).
	DeviceMatch string `mapstructure:"device_match"`
	// AxisX, AxisY and AltButton are SDL axis/button indices.
	AxisX     int `mapstructure:"axis_x"`
	AxisY     int `mapstructure:"axis_y"`
	AltButton int `mapstructure:"alt_button"`

	// VendorID and ProductID identify the raw HID device.
	VendorID  uint16 `mapstructure:"vendor_id"`
	ProductID uint16 `mapstructure:"product_id"`
	// Byte offsets of the little-endian int16 axes inside the HID report,
	// plus the byte and bit mask of the alt button.
	ReportXOffset      int  `mapstructure:"report_x_offset"`
	ReportYOffset      int  `mapstructure:"report_y_offset"`
	ReportButtonOffset int  `mapstructure:"report_button_offset"`
	AltButtonMask      byte `mapstructure:"alt_button_mask"`

	// Seed drives the synthetic source; zero means a fixed default.
	Seed int64 `mapstructure:"seed"`
}

// New builds the configured source.
func New(cfg Config, logger *zap.Logger) (Source, error) {
	switch cfg.Driver {
	case "", "sdl":
		return newSDL(cfg, logger)
	case "hid":
		return newHID(cfg, logger)
	case "synthetic":
		return NewSynthetic(cfg.Seed), nil
	default:
		return nil, fmt.Errorf("input: unknown driver %q", cfg.Driver)
	}
}

// normalizeAxis maps a raw int16 axis onto [-1,1].
func normalizeAxis(raw int16) float64 {
	return float64(raw) / 32768.0
}
