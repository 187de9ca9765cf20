package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/chakram-cli/internal/sector"
)

func TestDefaultsAreValid(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "chakram-cli", cfg.Logger().ServiceName)
	assert.Equal(t, "sdl", cfg.Input().Driver)
	assert.Equal(t, "auto", cfg.Backend().Driver)
	assert.InDelta(t, 0.15, cfg.Deadzone(), 1e-9)
	assert.Equal(t, 10*time.Millisecond, cfg.Controller().TickRate)
}

func TestSectorTableFromDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	table, err := cfg.SectorTable()
	require.NoError(t, err)

	assert.Equal(t, sector.Range{Start: 315, End: 45}, table[sector.East])
	assert.Equal(t, sector.Range{Start: 225, End: 315}, table[sector.North])
}

func TestTransitionFromDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	tc, err := cfg.Transition()
	require.NoError(t, err)

	assert.Equal(t, "ctrl", tc.CancelKey)
	assert.Equal(t, "w", tc.Keys[sector.North])
	assert.Equal(t, 80*time.Millisecond, tc.ReleaseDelay)
	assert.Equal(t, 150*time.Millisecond, tc.Cooldown)
}

func TestNewConfigFromViperOverrides(t *testing.T) {
	t.Parallel()

	v := viper.New()
	SetDefaults(v)
	v.Set("sectors.deadzone", 0.25)
	v.Set("sectors.keys.thrust", "x")
	v.Set("transition.cooldown", "200ms")

	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, cfg.Deadzone(), 1e-9)
	tc, err := cfg.Transition()
	require.NoError(t, err)
	assert.Equal(t, "x", tc.Keys[sector.South])
	assert.Equal(t, 200*time.Millisecond, tc.Cooldown)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		set  func(v *viper.Viper)
	}{
		{
			name: "deadzone_out_of_range",
			set:  func(v *viper.Viper) { v.Set("sectors.deadzone", 0.7) },
		},
		{
			name: "gapped_sector_table",
			set:  func(v *viper.Viper) { v.Set("sectors.ranges.thrust.end", 120.0) },
		},
		{
			name: "unknown_sector_name",
			set:  func(v *viper.Viper) { v.Set("sectors.keys.diagonal", "q") },
		},
		{
			name: "missing_key_binding",
			set:  func(v *viper.Viper) { v.Set("sectors.keys.left", "") },
		},
		{
			name: "negative_cooldown",
			set:  func(v *viper.Viper) { v.Set("transition.cooldown", "-1s") },
		},
		{
			name: "early_trigger_bad_confidence",
			set: func(v *viper.Viper) {
				v.Set("transition.early_trigger", true)
				v.Set("transition.early_trigger_min_confidence", 1.5)
			},
		},
		{
			name: "diag_enabled_without_addr",
			set: func(v *viper.Viper) {
				v.Set("diag.enabled", true)
				v.Set("diag.addr", "")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			tc.set(v)
			_, err := NewConfigFromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestSetters(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	cfg.SetInputDriver("synthetic")
	cfg.SetBackendDriver("mock")
	cfg.SetDiagAddr("127.0.0.1:9000")

	assert.Equal(t, "synthetic", cfg.Input().Driver)
	assert.Equal(t, "mock", cfg.Backend().Driver)
	assert.Equal(t, "127.0.0.1:9000", cfg.Diag().Addr)
}
