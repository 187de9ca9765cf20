// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/chakram-cli/internal/altmode"
	"github.com/xkilldash9x/chakram-cli/internal/analyzer"
	"github.com/xkilldash9x/chakram-cli/internal/backend"
	"github.com/xkilldash9x/chakram-cli/internal/input"
	"github.com/xkilldash9x/chakram-cli/internal/sector"
	"github.com/xkilldash9x/chakram-cli/internal/transition"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Input() input.Config
	Backend() backend.Config
	Analyzer() analyzer.Config
	Deadzone() float64
	SectorTable() (sector.Table, error)
	Transition() (transition.Config, error)
	AltMode() altmode.Config
	EarlyTrigger() (bool, float64)
	Controller() ControllerConfig
	Diag() DiagConfig

	SetInputDriver(string)
	SetBackendDriver(string)
	SetDiagAddr(string)
}

// Config holds the entire application configuration. Private fields enforce
// access through the Interface's getter methods.
type Config struct {
	logger     LoggerConfig
	input      input.Config
	backend    backend.Config
	analyzer   AnalyzerConfig
	sectors    SectorsConfig
	transition TransitionConfig
	altmode    AltModeConfig
	controller ControllerConfig
	diag       DiagConfig
}

// fileConfig mirrors Config with exported fields so viper can unmarshal it.
type fileConfig struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Input      input.Config     `mapstructure:"input"`
	Backend    backend.Config   `mapstructure:"backend"`
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Sectors    SectorsConfig    `mapstructure:"sectors"`
	Transition TransitionConfig `mapstructure:"transition"`
	Altmode    AltModeConfig    `mapstructure:"altmode"`
	Controller ControllerConfig `mapstructure:"controller"`
	Diag       DiagConfig       `mapstructure:"diag"`
}

func (f fileConfig) toConfig() *Config {
	return &Config{
		logger:     f.Logger,
		input:      f.Input,
		backend:    f.Backend,
		analyzer:   f.Analyzer,
		sectors:    f.Sectors,
		transition: f.Transition,
		altmode:    f.Altmode,
		controller: f.Controller,
		diag:       f.Diag,
	}
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level"`
	Format      string      `mapstructure:"format"`
	AddSource   bool        `mapstructure:"add_source"`
	ServiceName string      `mapstructure:"service_name"`
	LogFile     string      `mapstructure:"log_file"`
	MaxSize     int         `mapstructure:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"`
	Compress    bool        `mapstructure:"compress"`
	Colors      ColorConfig `mapstructure:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug"`
	Info   string `mapstructure:"info"`
	Warn   string `mapstructure:"warn"`
	Error  string `mapstructure:"error"`
	DPanic string `mapstructure:"dpanic"`
	Panic  string `mapstructure:"panic"`
	Fatal  string `mapstructure:"fatal"`
}

// AnalyzerConfig tunes the movement analyzer.
type AnalyzerConfig struct {
	HistorySize            int           `mapstructure:"history_size"`
	PredictionHorizon      time.Duration `mapstructure:"prediction_horizon"`
	ConfidenceFloor        float64       `mapstructure:"confidence_floor"`
	ConfidenceCeiling      float64       `mapstructure:"confidence_ceiling"`
	PredictionGate         float64       `mapstructure:"prediction_gate"`
	SpeedLow               float64       `mapstructure:"speed_low"`
	SpeedHigh              float64       `mapstructure:"speed_high"`
	DeadzoneMinFactor      float64       `mapstructure:"deadzone_min_factor"`
	DeadzoneMaxFactor      float64       `mapstructure:"deadzone_max_factor"`
	SmoothnessMinFactor    float64       `mapstructure:"smoothness_min_factor"`
	SmoothnessMaxFactor    float64       `mapstructure:"smoothness_max_factor"`
	QuickMovementThreshold float64       `mapstructure:"quick_movement_threshold"`
}

// RangeConfig is one sector's angular range in degrees.
type RangeConfig struct {
	Start float64 `mapstructure:"start"`
	End   float64 `mapstructure:"end"`
}

// SectorsConfig holds the deadzone, the angular table and the key bindings.
// Map keys are sector names: overhead, right, thrust, left.
type SectorsConfig struct {
	Deadzone float64                `mapstructure:"deadzone"`
	Ranges   map[string]RangeConfig `mapstructure:"ranges"`
	Keys     map[string]string      `mapstructure:"keys"`
}

// TransitionConfig tunes the sector transition state machine.
type TransitionConfig struct {
	CancelKey           string        `mapstructure:"cancel_key"`
	SettleDelay         time.Duration `mapstructure:"settle_delay"`
	ReleaseDelay        time.Duration `mapstructure:"release_delay"`
	Cooldown            time.Duration `mapstructure:"cooldown"`
	DeadzoneDwell       time.Duration `mapstructure:"deadzone_dwell"`
	EarlyTrigger        bool          `mapstructure:"early_trigger"`
	EarlyTriggerMinConf float64       `mapstructure:"early_trigger_min_confidence"`
}

// AltModeConfig tunes the alt-mode overlay.
type AltModeConfig struct {
	Key            string  `mapstructure:"key"`
	CursorOffset   int     `mapstructure:"cursor_offset"`
	MouseButton    string  `mapstructure:"mouse_button"`
	DeadzoneFactor float64 `mapstructure:"deadzone_factor"`
}

// ControllerConfig tunes the control loop.
type ControllerConfig struct {
	TickRate time.Duration `mapstructure:"tick_rate"`
}

// DiagConfig configures the diagnostics server.
type DiagConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Addr          string  `mapstructure:"addr"`
	BroadcastRate float64 `mapstructure:"broadcast_rate"`
}

// --- Interface Method Implementations ---

func (c *Config) Logger() LoggerConfig         { return c.logger }
func (c *Config) Input() input.Config          { return c.input }
func (c *Config) Backend() backend.Config      { return c.backend }
func (c *Config) Deadzone() float64            { return c.sectors.Deadzone }
func (c *Config) Controller() ControllerConfig { return c.controller }
func (c *Config) Diag() DiagConfig             { return c.diag }

func (c *Config) SetInputDriver(d string)   { c.input.Driver = d }
func (c *Config) SetBackendDriver(d string) { c.backend.Driver = d }
func (c *Config) SetDiagAddr(a string)      { c.diag.Addr = a }

// Analyzer translates the config section into the analyzer's own config type.
func (c *Config) Analyzer() analyzer.Config {
	return analyzer.Config{
		HistorySize:              c.analyzer.HistorySize,
		PredictionHorizon:        c.analyzer.PredictionHorizon,
		ConfidenceFloor:          c.analyzer.ConfidenceFloor,
		ConfidenceCeiling:        c.analyzer.ConfidenceCeiling,
		PredictionConfidenceGate: c.analyzer.PredictionGate,
		SpeedLow:                 c.analyzer.SpeedLow,
		SpeedHigh:                c.analyzer.SpeedHigh,
		DeadzoneMinFactor:        c.analyzer.DeadzoneMinFactor,
		DeadzoneMaxFactor:        c.analyzer.DeadzoneMaxFactor,
		SmoothnessMinFactor:      c.analyzer.SmoothnessMinFactor,
		SmoothnessMaxFactor:      c.analyzer.SmoothnessMaxFactor,
		QuickMovementSpeed:       c.analyzer.QuickMovementThreshold,
	}
}

// SectorTable builds and validates the angular table.
func (c *Config) SectorTable() (sector.Table, error) {
	table := make(sector.Table, len(c.sectors.Ranges))
	for name, r := range c.sectors.Ranges {
		s, err := sector.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("sectors.ranges: %w", err)
		}
		table[s] = sector.Range{Start: r.Start, End: r.End}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Transition builds the state machine config, resolving key bindings.
func (c *Config) Transition() (transition.Config, error) {
	keys := make(map[sector.Sector]string, len(c.sectors.Keys))
	for name, key := range c.sectors.Keys {
		s, err := sector.Parse(name)
		if err != nil {
			return transition.Config{}, fmt.Errorf("sectors.keys: %w", err)
		}
		keys[s] = key
	}
	cfg := transition.Config{
		Keys:          keys,
		CancelKey:     c.transition.CancelKey,
		SettleDelay:   c.transition.SettleDelay,
		ReleaseDelay:  c.transition.ReleaseDelay,
		Cooldown:      c.transition.Cooldown,
		DeadzoneDwell: c.transition.DeadzoneDwell,
	}
	return cfg, cfg.Validate()
}

// AltMode builds the overlay config.
func (c *Config) AltMode() altmode.Config {
	return altmode.Config{
		Key:            c.altmode.Key,
		CursorOffset:   c.altmode.CursorOffset,
		MouseButton:    c.altmode.MouseButton,
		DeadzoneFactor: c.altmode.DeadzoneFactor,
	}
}

// EarlyTrigger reports whether predictive early-triggering is on, and its
// confidence threshold.
func (c *Config) EarlyTrigger() (bool, float64) {
	return c.transition.EarlyTrigger, c.transition.EarlyTriggerMinConf
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "chakram-cli")
	v.SetDefault("logger.log_file", "chakram.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Input --
	v.SetDefault("input.driver", "sdl")
	v.SetDefault("input.device_match", "chakram")
	v.SetDefault("input.axis_x", 0)
	v.SetDefault("input.axis_y", 1)
	v.SetDefault("input.alt_button", 0)

	// -- Backend --
	v.SetDefault("backend.driver", "auto")
	v.SetDefault("backend.device_name", "chakram-cli")

	// -- Analyzer --
	v.SetDefault("analyzer.history_size", 10)
	v.SetDefault("analyzer.prediction_horizon", "100ms")
	v.SetDefault("analyzer.confidence_floor", 0.5)
	v.SetDefault("analyzer.confidence_ceiling", 2.0)
	v.SetDefault("analyzer.prediction_gate", 0.3)
	v.SetDefault("analyzer.speed_low", 1.0)
	v.SetDefault("analyzer.speed_high", 2.0)
	v.SetDefault("analyzer.deadzone_min_factor", 0.8)
	v.SetDefault("analyzer.deadzone_max_factor", 1.5)
	v.SetDefault("analyzer.smoothness_min_factor", 0.5)
	v.SetDefault("analyzer.smoothness_max_factor", 2.0)
	v.SetDefault("analyzer.quick_movement_threshold", 2.0)

	// -- Sectors --
	v.SetDefault("sectors.deadzone", 0.15)
	v.SetDefault("sectors.ranges.right.start", 315.0)
	v.SetDefault("sectors.ranges.right.end", 45.0)
	v.SetDefault("sectors.ranges.thrust.start", 45.0)
	v.SetDefault("sectors.ranges.thrust.end", 135.0)
	v.SetDefault("sectors.ranges.left.start", 135.0)
	v.SetDefault("sectors.ranges.left.end", 225.0)
	v.SetDefault("sectors.ranges.overhead.start", 225.0)
	v.SetDefault("sectors.ranges.overhead.end", 315.0)
	v.SetDefault("sectors.keys.overhead", "w")
	v.SetDefault("sectors.keys.right", "d")
	v.SetDefault("sectors.keys.thrust", "s")
	v.SetDefault("sectors.keys.left", "a")

	// -- Transition --
	v.SetDefault("transition.cancel_key", "ctrl")
	v.SetDefault("transition.settle_delay", "10ms")
	v.SetDefault("transition.release_delay", "80ms")
	v.SetDefault("transition.cooldown", "150ms")
	v.SetDefault("transition.deadzone_dwell", "50ms")
	v.SetDefault("transition.early_trigger", false)
	v.SetDefault("transition.early_trigger_min_confidence", 0.7)

	// -- Alt mode --
	v.SetDefault("altmode.key", "shift")
	v.SetDefault("altmode.cursor_offset", 50)
	v.SetDefault("altmode.mouse_button", "right")
	v.SetDefault("altmode.deadzone_factor", 0.8)

	// -- Controller --
	v.SetDefault("controller.tick_rate", "10ms")

	// -- Diagnostics --
	v.SetDefault("diag.enabled", false)
	v.SetDefault("diag.addr", "127.0.0.1:8970")
	v.SetDefault("diag.broadcast_rate", 10.0)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return fc.toConfig()
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg := fc.toConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for required fields and sane values. The
// sector partition invariant is enforced here, at load time, so the
// classifier never sees a broken table.
func (c *Config) Validate() error {
	if c.sectors.Deadzone < 0 || c.sectors.Deadzone > 0.5 {
		return fmt.Errorf("sectors.deadzone must be in [0, 0.5], got %v", c.sectors.Deadzone)
	}
	if _, err := c.SectorTable(); err != nil {
		return err
	}
	if _, err := c.Transition(); err != nil {
		return err
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"transition.settle_delay", c.transition.SettleDelay},
		{"transition.release_delay", c.transition.ReleaseDelay},
		{"transition.cooldown", c.transition.Cooldown},
		{"transition.deadzone_dwell", c.transition.DeadzoneDwell},
		{"controller.tick_rate", c.controller.TickRate},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be a positive duration", d.name)
		}
	}
	if c.transition.EarlyTrigger {
		if c.transition.EarlyTriggerMinConf <= 0 || c.transition.EarlyTriggerMinConf > 1 {
			return fmt.Errorf("transition.early_trigger_min_confidence must be in (0, 1]")
		}
	}
	if c.altmode.DeadzoneFactor <= 0 {
		return fmt.Errorf("altmode.deadzone_factor must be positive")
	}
	if c.diag.Enabled && c.diag.Addr == "" {
		return fmt.Errorf("diag.addr is required when diag.enabled is true")
	}
	return nil
}
