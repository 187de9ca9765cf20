//go:build linux

// internal/backend/uinput_linux.go
package backend

import (
	"fmt"

	"github.com/bendahl/uinput"
	"go.uber.org/zap"
)

const uinputPath = "/dev/uinput"

// uinputBackend drives a pair of virtual input devices. Events look like they
// come from real hardware, which games with raw-input handling require.
type uinputBackend struct {
	keyboard uinput.Keyboard
	mouse    uinput.Mouse
	logger   *zap.Logger
}

func newUinput(cfg Config, logger *zap.Logger) (Backend, error) {
	name := cfg.DeviceName
	if name == "" {
		name = "chakram-cli"
	}

	kbd, err := uinput.CreateKeyboard(uinputPath, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("backend: create virtual keyboard: %w", err)
	}
	mouse, err := uinput.CreateMouse(uinputPath, []byte(name))
	if err != nil {
		kbd.Close()
		return nil, fmt.Errorf("backend: create virtual mouse: %w", err)
	}
	return &uinputBackend{keyboard: kbd, mouse: mouse, logger: logger}, nil
}

func (b *uinputBackend) PressKey(key string) error {
	code, err := keyCode(key)
	if err != nil {
		return err
	}
	if err := b.keyboard.KeyDown(code); err != nil {
		return fmt.Errorf("backend: press %q: %w", key, err)
	}
	return nil
}

func (b *uinputBackend) ReleaseKey(key string) error {
	code, err := keyCode(key)
	if err != nil {
		return err
	}
	if err := b.keyboard.KeyUp(code); err != nil {
		return fmt.Errorf("backend: release %q: %w", key, err)
	}
	return nil
}

func (b *uinputBackend) MoveCursor(dx, dy int) error {
	if err := b.mouse.Move(int32(dx), int32(dy)); err != nil {
		return fmt.Errorf("backend: move cursor: %w", err)
	}
	return nil
}

func (b *uinputBackend) PressMouse(button string) error {
	var err error
	switch button {
	case MouseLeft:
		err = b.mouse.LeftPress()
	case MouseRight:
		err = b.mouse.RightPress()
	default:
		return fmt.Errorf("backend: unknown mouse button %q", button)
	}
	if err != nil {
		return fmt.Errorf("backend: press mouse %q: %w", button, err)
	}
	return nil
}

func (b *uinputBackend) ReleaseMouse(button string) error {
	var err error
	switch button {
	case MouseLeft:
		err = b.mouse.LeftRelease()
	case MouseRight:
		err = b.mouse.RightRelease()
	default:
		return fmt.Errorf("backend: unknown mouse button %q", button)
	}
	if err != nil {
		return fmt.Errorf("backend: release mouse %q: %w", button, err)
	}
	return nil
}

func (b *uinputBackend) Close() error {
	kerr := b.keyboard.Close()
	merr := b.mouse.Close()
	if kerr != nil {
		return kerr
	}
	return merr
}

// keyCodes maps configuration key names onto uinput scan codes. Names follow
// the robotgo convention so a config works unchanged across both drivers.
var keyCodes = map[string]int{
	"a": uinput.KeyA, "b": uinput.KeyB, "c": uinput.KeyC, "d": uinput.KeyD,
	"e": uinput.KeyE, "f": uinput.KeyF, "g": uinput.KeyG, "h": uinput.KeyH,
	"i": uinput.KeyI, "j": uinput.KeyJ, "k": uinput.KeyK, "l": uinput.KeyL,
	"m": uinput.KeyM, "n": uinput.KeyN, "o": uinput.KeyO, "p": uinput.KeyP,
	"q": uinput.KeyQ, "r": uinput.KeyR, "s": uinput.KeyS, "t": uinput.KeyT,
	"u": uinput.KeyU, "v": uinput.KeyV, "w": uinput.KeyW, "x": uinput.KeyX,
	"y": uinput.KeyY, "z": uinput.KeyZ,
	"0": uinput.Key0, "1": uinput.Key1, "2": uinput.Key2, "3": uinput.Key3,
	"4": uinput.Key4, "5": uinput.Key5, "6": uinput.Key6, "7": uinput.Key7,
	"8": uinput.Key8, "9": uinput.Key9,
	"space":  uinput.KeySpace,
	"enter":  uinput.KeyEnter,
	"esc":    uinput.KeyEsc,
	"tab":    uinput.KeyTab,
	"shift":  uinput.KeyLeftshift,
	"ctrl":   uinput.KeyLeftctrl,
	"alt":    uinput.KeyLeftalt,
	"up":     uinput.KeyUp,
	"down":   uinput.KeyDown,
	"left":   uinput.KeyLeft,
	"right":  uinput.KeyRight,
}

func keyCode(key string) (int, error) {
	code, ok := keyCodes[key]
	if !ok {
		return 0, fmt.Errorf("backend: no uinput code for key %q", key)
	}
	return code, nil
}
