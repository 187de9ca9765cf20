// internal/analyzer/analyzer.go

// Package analyzer derives kinematic and predictive metrics from raw stick
// samples. It is a pure state object: Update never fails, degenerate input
// (single sample, zero Δt) simply carries the last valid values forward.
package analyzer

import (
	"time"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
	"github.com/xkilldash9x/chakram-cli/internal/sector"
)

// Config holds the tunable thresholds of the analyzer. All values are
// configuration, not load-bearing constants; zero fields are replaced by
// the defaults in ApplyDefaults.
type Config struct {
	// HistorySize caps the sample ring buffer.
	HistorySize int
	// PredictionHorizon is how far ahead positions are extrapolated.
	PredictionHorizon time.Duration
	// ConfidenceFloor is the speed below which prediction confidence is zero.
	ConfidenceFloor float64
	// ConfidenceCeiling is the speed at which confidence saturates at 1.
	ConfidenceCeiling float64
	// PredictionConfidenceGate is the minimum confidence for sector prediction.
	PredictionConfidenceGate float64
	// SpeedLow and SpeedHigh bound the shared factor interpolation.
	SpeedLow  float64
	SpeedHigh float64
	// Deadzone scaling factors applied between SpeedLow and SpeedHigh.
	DeadzoneMinFactor float64
	DeadzoneMaxFactor float64
	// Smoothness scaling factors, same interpolation shape.
	SmoothnessMinFactor float64
	SmoothnessMaxFactor float64
	// QuickMovementSpeed is the speed at or above which a movement counts
	// as quick.
	QuickMovementSpeed float64
}

// ApplyDefaults fills unset fields with the stock tuning.
func (c *Config) ApplyDefaults() {
	if c.HistorySize <= 0 {
		c.HistorySize = 10
	}
	if c.PredictionHorizon <= 0 {
		c.PredictionHorizon = 100 * time.Millisecond
	}
	if c.ConfidenceFloor <= 0 {
		c.ConfidenceFloor = 0.5
	}
	if c.ConfidenceCeiling <= 0 {
		c.ConfidenceCeiling = 2.0
	}
	if c.PredictionConfidenceGate <= 0 {
		c.PredictionConfidenceGate = 0.3
	}
	if c.SpeedLow <= 0 {
		c.SpeedLow = 1.0
	}
	if c.SpeedHigh <= 0 {
		c.SpeedHigh = 2.0
	}
	if c.DeadzoneMinFactor <= 0 {
		c.DeadzoneMinFactor = 0.8
	}
	if c.DeadzoneMaxFactor <= 0 {
		c.DeadzoneMaxFactor = 1.5
	}
	if c.SmoothnessMinFactor <= 0 {
		c.SmoothnessMinFactor = 0.5
	}
	if c.SmoothnessMaxFactor <= 0 {
		c.SmoothnessMaxFactor = 2.0
	}
	if c.QuickMovementSpeed <= 0 {
		c.QuickMovementSpeed = 2.0
	}
}

// Sample is one raw stick reading. Time must come from a monotonic clock and
// be non-decreasing across calls; the analyzer does not re-sort.
type Sample struct {
	Pos  geom.Vector2D
	Time time.Time
}

// Metrics is the full snapshot returned by Update. PredictedSector is only
// meaningful when HasPrediction is true and a PredictNextSector call found one.
type Metrics struct {
	Position     geom.Vector2D `json:"position"`
	Velocity     geom.Vector2D `json:"velocity"`
	Speed        float64       `json:"speed"`
	Direction    float64       `json:"direction"`
	Acceleration geom.Vector2D `json:"acceleration"`

	HasPrediction     bool          `json:"has_prediction"`
	PredictedPosition geom.Vector2D `json:"predicted_position"`
	PredictedSector   sector.Sector `json:"predicted_sector"`
	HasSectorForecast bool          `json:"has_sector_forecast"`
	Confidence        float64       `json:"confidence"`
}

// Analyzer keeps a bounded sample history and recomputes metrics every tick.
// Not safe for concurrent use; it belongs to the control loop.
type Analyzer struct {
	cfg     Config
	history *ring

	velocity     geom.Vector2D
	velocityOK   bool
	velocityTime time.Time

	prevVelocity     geom.Vector2D
	prevVelocityOK   bool
	prevVelocityTime time.Time

	acceleration geom.Vector2D
	direction    float64
	speed        float64

	hasPrediction     bool
	predictedPosition geom.Vector2D
	predictedSector   sector.Sector
	hasSectorForecast bool
	confidence        float64
}

// New constructs an analyzer with defaults applied to cfg.
func New(cfg Config) *Analyzer {
	cfg.ApplyDefaults()
	return &Analyzer{
		cfg:     cfg,
		history: newRing(cfg.HistorySize),
	}
}

// Update ingests one sample, recomputes kinematics and the position
// prediction, and returns the resulting snapshot. It never fails.
func (a *Analyzer) Update(pos geom.Vector2D, now time.Time) Metrics {
	s := Sample{Pos: pos, Time: now}

	if prev, ok := a.history.newest(); ok {
		dt := s.Time.Sub(prev.Time).Seconds()
		if dt > 0 {
			v := s.Pos.Sub(prev.Pos).Mul(1.0 / dt)
			if a.velocityOK {
				a.prevVelocity = a.velocity
				a.prevVelocityTime = a.velocityTime
				a.prevVelocityOK = true
			}
			a.velocity = v
			a.velocityTime = s.Time
			a.velocityOK = true
			a.speed = v.Mag()
			a.direction = v.AngleDeg()

			if a.prevVelocityOK {
				adt := a.velocityTime.Sub(a.prevVelocityTime).Seconds()
				if adt > 0 {
					a.acceleration = a.velocity.Sub(a.prevVelocity).Mul(1.0 / adt)
				}
			}
		}
		// dt <= 0: keep the previous velocity and direction untouched.
	}

	a.history.push(s)
	a.predict()
	return a.Metrics()
}

// predict extrapolates the current position along the velocity vector and
// refreshes the confidence estimate. Cleared when there is no usable velocity.
func (a *Analyzer) predict() {
	if a.history.len() < 2 || !a.velocityOK {
		a.hasPrediction = false
		a.hasSectorForecast = false
		a.confidence = 0
		return
	}
	cur, _ := a.history.newest()
	horizon := a.cfg.PredictionHorizon.Seconds()
	a.predictedPosition = cur.Pos.Add(a.velocity.Mul(horizon)).Clamp(-1, 1)
	a.hasPrediction = true
	a.confidence = a.confidenceFor(a.speed)
}

func (a *Analyzer) confidenceFor(speed float64) float64 {
	if speed < a.cfg.ConfidenceFloor {
		return 0
	}
	c := speed / a.cfg.ConfidenceCeiling
	if c > 1 {
		c = 1
	}
	return c
}

// PredictNextSector resolves the predicted position against the sector table.
// It returns false when there is no prediction, confidence is below the gate,
// or the predicted point is still inside the deadzone. The result is also
// stored on the analyzer for snapshot readers.
func (a *Analyzer) PredictNextSector(table sector.Table, deadzone float64) (sector.Sector, bool) {
	a.hasSectorForecast = false
	if !a.hasPrediction || a.confidence < a.cfg.PredictionConfidenceGate {
		return sector.Neutral, false
	}
	if a.predictedPosition.Mag() < deadzone {
		return sector.Neutral, false
	}
	s := sector.ClassifyAngle(a.predictedPosition.AngleDeg(), table)
	a.predictedSector = s
	a.hasSectorForecast = true
	return s, true
}

// interpFactor is the single interpolation routine shared by the dynamic
// deadzone and the transition smoothness, so both have identical edge
// behavior at the speed thresholds.
func (a *Analyzer) interpFactor(minFactor, maxFactor float64) float64 {
	switch {
	case a.speed <= a.cfg.SpeedLow:
		return minFactor
	case a.speed >= a.cfg.SpeedHigh:
		return maxFactor
	default:
		t := (a.speed - a.cfg.SpeedLow) / (a.cfg.SpeedHigh - a.cfg.SpeedLow)
		return minFactor + t*(maxFactor-minFactor)
	}
}

// DynamicDeadzone widens the deadzone with speed: fast flicks overshoot the
// center, so the neutral region grows to absorb them.
func (a *Analyzer) DynamicDeadzone(base float64) float64 {
	return base * a.interpFactor(a.cfg.DeadzoneMinFactor, a.cfg.DeadzoneMaxFactor)
}

// TransitionSmoothness scales transition timing with speed, using the same
// interpolation shape as DynamicDeadzone.
func (a *Analyzer) TransitionSmoothness(base float64) float64 {
	return base * a.interpFactor(a.cfg.SmoothnessMinFactor, a.cfg.SmoothnessMaxFactor)
}

// IsQuickMovement reports whether the current speed is at or above the
// configured quick-movement threshold.
func (a *Analyzer) IsQuickMovement() bool {
	return a.speed >= a.cfg.QuickMovementSpeed
}

// DirectionChange returns the absolute angular difference, folded into
// [0,180], between the headings of the two most recent movement legs. Zero
// when fewer than three samples exist or either leg has no displacement.
func (a *Analyzer) DirectionChange() float64 {
	if a.history.len() < 3 {
		return 0
	}
	n := a.history.len()
	oldest := a.history.at(n - 3)
	middle := a.history.at(n - 2)
	newest := a.history.at(n - 1)

	first := middle.Pos.Sub(oldest.Pos)
	second := newest.Pos.Sub(middle.Pos)
	if first.MagSq() == 0 || second.MagSq() == 0 {
		return 0
	}
	return geom.AngularDiff(first.AngleDeg(), second.AngleDeg())
}

// Metrics returns the current snapshot without ingesting a sample.
func (a *Analyzer) Metrics() Metrics {
	m := Metrics{
		Velocity:          a.velocity,
		Speed:             a.speed,
		Direction:         a.direction,
		Acceleration:      a.acceleration,
		HasPrediction:     a.hasPrediction,
		PredictedPosition: a.predictedPosition,
		PredictedSector:   a.predictedSector,
		HasSectorForecast: a.hasSectorForecast,
		Confidence:        a.confidence,
	}
	if cur, ok := a.history.newest(); ok {
		m.Position = cur.Pos
	}
	return m
}

// Trail returns the sample history oldest-first. The slice is a copy.
func (a *Analyzer) Trail() []Sample {
	out := make([]Sample, a.history.len())
	for i := range out {
		out[i] = a.history.at(i)
	}
	return out
}

// Reset drops all history and derived state.
func (a *Analyzer) Reset() {
	*a = Analyzer{cfg: a.cfg, history: newRing(a.cfg.HistorySize)}
}
