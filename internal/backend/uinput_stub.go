//go:build !linux

// internal/backend/uinput_stub.go
package backend

import (
	"errors"

	"go.uber.org/zap"
)

// uinput devices only exist on Linux; other platforms always fall back.
func newUinput(Config, *zap.Logger) (Backend, error) {
	return nil, errors.New("backend: uinput is only available on linux")
}
