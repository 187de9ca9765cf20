// internal/backend/robotgo.go
package backend

import (
	"fmt"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

// robotgoBackend injects events through the OS input APIs. It works without
// elevated privileges but events are attributable to the process, unlike the
// uinput virtual device.
type robotgoBackend struct {
	logger *zap.Logger
}

func newRobotgo(logger *zap.Logger) Backend {
	return &robotgoBackend{logger: logger}
}

func (b *robotgoBackend) PressKey(key string) error {
	if err := robotgo.KeyToggle(key, "down"); err != nil {
		return fmt.Errorf("backend: press %q: %w", key, err)
	}
	return nil
}

func (b *robotgoBackend) ReleaseKey(key string) error {
	if err := robotgo.KeyToggle(key, "up"); err != nil {
		return fmt.Errorf("backend: release %q: %w", key, err)
	}
	return nil
}

func (b *robotgoBackend) MoveCursor(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

func (b *robotgoBackend) PressMouse(button string) error {
	if err := robotgo.Toggle(button, "down"); err != nil {
		return fmt.Errorf("backend: press mouse %q: %w", button, err)
	}
	return nil
}

func (b *robotgoBackend) ReleaseMouse(button string) error {
	if err := robotgo.Toggle(button, "up"); err != nil {
		return fmt.Errorf("backend: release mouse %q: %w", button, err)
	}
	return nil
}

func (b *robotgoBackend) Close() error { return nil }
