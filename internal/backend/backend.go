// internal/backend/backend.go

// Package backend abstracts key and mouse injection. Two real drivers exist:
// a Linux uinput virtual device and an OS-API implementation backed by
// robotgo. The factory prefers the virtual device and falls back, so callers
// only ever see the Backend interface.
package backend

import (
	"fmt"

	"go.uber.org/zap"
)

// Mouse button identifiers accepted by PressMouse and ReleaseMouse.
const (
	MouseLeft  = "left"
	MouseRight = "right"
)

// Backend injects input events into the OS. Calls are synchronous and safe
// to repeat even if the key is already in the requested physical state;
// debouncing is the caller's job.
type Backend interface {
	PressKey(key string) error
	ReleaseKey(key string) error
	MoveCursor(dx, dy int) error
	PressMouse(button string) error
	ReleaseMouse(button string) error
	Close() error
}

// Config selects and tunes the injection driver.
type Config struct {
	// Driver is "auto", "uinput", "robotgo" or "mock".
	Driver string `mapstructure:"driver"`
	// DeviceName labels the uinput virtual device.
	DeviceName string `mapstructure:"device_name"`
}

// New builds a backend for the configured driver. With "auto" it tries the
// uinput virtual device first and falls back to robotgo, logging the choice.
func New(cfg Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case "", "auto":
		b, err := newUinput(cfg, logger)
		if err == nil {
			logger.Info("using uinput injection backend")
			return b, nil
		}
		logger.Warn("uinput backend unavailable, falling back to robotgo", zap.Error(err))
		return newRobotgo(logger), nil
	case "uinput":
		return newUinput(cfg, logger)
	case "robotgo":
		return newRobotgo(logger), nil
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("backend: unknown driver %q", cfg.Driver)
	}
}
