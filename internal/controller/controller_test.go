package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/chakram-cli/internal/altmode"
	"github.com/xkilldash9x/chakram-cli/internal/analyzer"
	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/geom"
	"github.com/xkilldash9x/chakram-cli/internal/input"
	"github.com/xkilldash9x/chakram-cli/internal/sector"
	"github.com/xkilldash9x/chakram-cli/internal/transition"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return epoch.Add(time.Duration(ms) * time.Millisecond) }

func machineConfig() transition.Config {
	return transition.Config{
		Keys: map[sector.Sector]string{
			sector.North: "w",
			sector.East:  "d",
			sector.South: "s",
			sector.West:  "a",
		},
		CancelKey: "ctrl",
	}
}

func newTestController(t *testing.T, src input.Source, opts func(*Options)) (*Controller, *backend.Mock) {
	t.Helper()
	mock := backend.NewMock()
	machine, err := transition.New(machineConfig(), mock, zap.NewNop())
	require.NoError(t, err)
	overlay := altmode.New(altmode.Config{Key: "shift", CursorOffset: 50}, mock, zap.NewNop())

	o := Options{
		Source:   src,
		Analyzer: analyzer.New(analyzer.Config{}),
		Machine:  machine,
		Overlay:  overlay,
		Logger:   zap.NewNop(),
		Table:    sector.DefaultTable(),
		Deadzone: 0.15,
		TickRate: time.Millisecond,
	}
	if opts != nil {
		opts(&o)
	}
	return New(o), mock
}

func TestTickRoutesToKeyboardPath(t *testing.T) {
	t.Parallel()

	src := input.NewScripted([]input.Sample{
		{Pos: geom.Vector2D{}, Time: at(0)},
		{Pos: geom.Vector2D{X: 0.9, Y: 0}, Time: at(20)},
	})
	c, mock := newTestController(t, src, nil)

	ctx := context.Background()
	c.tick(ctx)
	c.tick(ctx)

	assert.Contains(t, mock.Calls(), "press:d")
	snap := c.Snapshot()
	assert.Equal(t, "right", snap.Candidate)
	assert.Equal(t, "right", snap.Transition.Current)
}

func TestAltButtonTogglesOverlayAndReleasesKeys(t *testing.T) {
	t.Parallel()

	src := input.NewScripted([]input.Sample{
		{Pos: geom.Vector2D{}, Time: at(0)},
		{Pos: geom.Vector2D{X: 0.9, Y: 0}, Time: at(20)},
		{Pos: geom.Vector2D{X: 0.9, Y: 0}, AltHeld: true, Time: at(40)},
		{Pos: geom.Vector2D{X: 0.9, Y: 0}, AltHeld: true, Time: at(60)},
	})
	c, mock := newTestController(t, src, nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		c.tick(ctx)
	}

	calls := mock.Calls()
	// Sector key pressed, then released when alt mode engages, then the
	// overlay takes over: alt key down, mouse path active.
	assert.Contains(t, calls, "press:d")
	assert.Contains(t, calls, "release:d")
	assert.Contains(t, calls, "press:shift")
	assert.Contains(t, calls, "mousedown:right")
	assert.Contains(t, calls, "move:50,0")
	assert.True(t, c.Snapshot().AltMode.Active)
}

func TestAltModeUsesScaledDeadzone(t *testing.T) {
	t.Parallel()

	// 0.13 from center: inside the base deadzone region (0.15 * 0.8 = 0.12
	// scaled) but outside the alt-mode one, so alt mode still steers.
	src := input.NewScripted([]input.Sample{
		{Pos: geom.Vector2D{}, AltHeld: true, Time: at(0)},
		{Pos: geom.Vector2D{X: 0.13, Y: 0}, AltHeld: true, Time: at(2000)},
	})
	c, _ := newTestController(t, src, nil)

	ctx := context.Background()
	c.tick(ctx)
	c.tick(ctx)

	snap := c.Snapshot()
	assert.True(t, snap.AltMode.Active)
	assert.InDelta(t, 0.12, snap.EffectiveDeadzone, 1e-9)
	assert.Equal(t, "right", snap.Candidate)
}

func TestEarlyTriggerStartsTransitionBeforeCrossing(t *testing.T) {
	t.Parallel()

	// Fast eastward motion still inside the deadzone: prediction leaves it.
	src := input.NewScripted([]input.Sample{
		{Pos: geom.Vector2D{X: -0.1, Y: 0}, Time: at(0)},
		{Pos: geom.Vector2D{X: 0.05, Y: 0}, Time: at(50)},
	})
	c, mock := newTestController(t, src, func(o *Options) {
		o.EarlyTrigger = true
		o.EarlyTriggerMinConf = 0.7
	})

	ctx := context.Background()
	c.tick(ctx)
	c.tick(ctx)

	// Speed 3 gives confidence 1; predicted position is well east of the
	// deadzone, so the machine presses before the stick actually crosses.
	assert.Contains(t, mock.Calls(), "press:d")
	assert.Equal(t, "right", c.Snapshot().Transition.Current)
}

func TestSnapshotTrailStats(t *testing.T) {
	t.Parallel()

	src := input.NewScripted([]input.Sample{
		{Pos: geom.Vector2D{}, Time: at(0)},
		{Pos: geom.Vector2D{X: 0.1, Y: 0}, Time: at(100)},
		{Pos: geom.Vector2D{X: 0.3, Y: 0}, Time: at(200)},
	})
	c, _ := newTestController(t, src, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		c.tick(ctx)
	}

	trail := c.Snapshot().Trail
	assert.Equal(t, 3, trail.Samples)
	// Leg speeds are 1.0 and 2.0.
	assert.InDelta(t, 1.5, trail.MeanSpeed, 1e-9)
	assert.Greater(t, trail.StddevSpeed, 0.0)
}

func TestRunStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := input.NewScripted([]input.Sample{
		{Pos: geom.Vector2D{}, Time: at(0)},
		{Pos: geom.Vector2D{X: 0.9, Y: 0}, Time: at(20)},
	})
	c, mock := newTestController(t, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Let a few ticks happen, then stop.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("control loop did not stop")
	}

	// Shutdown released everything the loop pressed.
	calls := mock.Calls()
	if assert.Contains(t, calls, "press:d") {
		assert.Contains(t, calls, "release:d")
	}
}
