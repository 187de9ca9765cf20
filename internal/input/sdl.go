// internal/input/sdl.go
package input

import (
	"fmt"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
)

// sdlSource reads a joystick through SDL. The device is found by name
// substring so the same config works across USB and wireless variants of the
// stick.
type sdlSource struct {
	joystick *sdl.Joystick
	cfg      Config
	logger   *zap.Logger
}

func newSDL(cfg Config, logger *zap.Logger) (Source, error) {
	if err := sdl.Init(sdl.INIT_JOYSTICK); err != nil {
		return nil, fmt.Errorf("input: init SDL: %w", err)
	}

	n := sdl.NumJoysticks()
	if n == 0 {
		sdl.Quit()
		return nil, fmt.Errorf("input: no joysticks attached")
	}

	match := strings.ToLower(cfg.DeviceMatch)
	index := -1
	for i := 0; i < n; i++ {
		name := sdl.JoystickNameForIndex(i)
		if match == "" || strings.Contains(strings.ToLower(name), match) {
			index = i
			logger.Info("joystick found", zap.Int("index", i), zap.String("name", name))
			break
		}
	}
	if index < 0 {
		sdl.Quit()
		return nil, fmt.Errorf("input: no joystick matching %q among %d devices", cfg.DeviceMatch, n)
	}

	j := sdl.JoystickOpen(index)
	if j == nil {
		sdl.Quit()
		return nil, fmt.Errorf("input: open joystick %d: %v", index, sdl.GetError())
	}
	if j.NumAxes() < 2 {
		j.Close()
		sdl.Quit()
		return nil, fmt.Errorf("input: joystick %q has %d axes, need at least 2", j.Name(), j.NumAxes())
	}

	return &sdlSource{joystick: j, cfg: cfg, logger: logger}, nil
}

func (s *sdlSource) Poll() (Sample, error) {
	sdl.JoystickUpdate()
	x := normalizeAxis(s.joystick.Axis(s.cfg.AxisX))
	y := normalizeAxis(s.joystick.Axis(s.cfg.AxisY))
	alt := s.joystick.Button(s.cfg.AltButton) == 1
	return Sample{
		Pos:     geom.Vector2D{X: x, Y: y}.Clamp(-1, 1),
		AltHeld: alt,
		Time:    time.Now(),
	}, nil
}

func (s *sdlSource) Close() error {
	s.joystick.Close()
	sdl.Quit()
	return nil
}
