package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSelectsDriver(t *testing.T) {
	t.Parallel()

	b, err := New(Config{Driver: "mock"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, b)

	_, err = New(Config{Driver: "teleport"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMockRecordsInOrder(t *testing.T) {
	t.Parallel()

	m := NewMock()
	require.NoError(t, m.PressKey("ctrl"))
	require.NoError(t, m.ReleaseKey("ctrl"))
	require.NoError(t, m.MoveCursor(50, 0))
	require.NoError(t, m.PressMouse(MouseRight))
	require.NoError(t, m.ReleaseMouse(MouseRight))

	assert.Equal(t, []string{
		"press:ctrl",
		"release:ctrl",
		"move:50,0",
		"mousedown:right",
		"mouseup:right",
	}, m.Calls())
}

func TestMockFailureInjection(t *testing.T) {
	t.Parallel()

	m := NewMock()
	boom := errors.New("device gone")
	m.FailOn("press:ctrl", boom)

	assert.ErrorIs(t, m.PressKey("ctrl"), boom)
	// Failed calls are not recorded.
	assert.Empty(t, m.Calls())

	require.NoError(t, m.PressKey("w"))
	assert.Equal(t, []string{"press:w"}, m.Calls())
}
