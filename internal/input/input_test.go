package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
)

func TestNormalizeAxis(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, normalizeAxis(0), 1e-9)
	assert.InDelta(t, -1.0, normalizeAxis(-32768), 1e-9)
	assert.InDelta(t, 1.0, normalizeAxis(32767), 1e-3)
}

func TestSyntheticStaysInUnitSquare(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(42)
	defer s.Close()

	for i := 0; i < 500; i++ {
		sample, err := s.Poll()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sample.Pos.X, -1.0)
		assert.LessOrEqual(t, sample.Pos.X, 1.0)
		assert.GreaterOrEqual(t, sample.Pos.Y, -1.0)
		assert.LessOrEqual(t, sample.Pos.Y, 1.0)
	}
}

func TestSyntheticReproducible(t *testing.T) {
	t.Parallel()

	a := NewSynthetic(7)
	b := NewSynthetic(7)
	for i := 0; i < 50; i++ {
		sa, _ := a.Poll()
		sb, _ := b.Poll()
		assert.Equal(t, sa.Pos, sb.Pos)
	}
}

func TestScriptedReplaysAndHolds(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewScripted([]Sample{
		{Pos: geom.Vector2D{X: 0.1}, Time: now},
		{Pos: geom.Vector2D{X: 0.9}, Time: now.Add(10 * time.Millisecond)},
	})

	first, _ := s.Poll()
	second, _ := s.Poll()
	third, _ := s.Poll()

	assert.InDelta(t, 0.1, first.Pos.X, 1e-9)
	assert.InDelta(t, 0.9, second.Pos.X, 1e-9)
	// Past the end, the last sample repeats.
	assert.Equal(t, second, third)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Driver: "telepathy"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewHIDNeedsIdentifiers(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Driver: "hid"}, zap.NewNop())
	assert.Error(t, err)
}
