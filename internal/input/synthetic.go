// internal/input/synthetic.go
package input

import (
	"sync"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
)

const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinDepth = 3
)

// Synthetic generates a plausible stick signal from Perlin noise: smooth
// wandering with occasional full deflections, which exercises the analyzer
// and transition machine without hardware. Used by the simulate command.
type Synthetic struct {
	mu    sync.Mutex
	noise *perlin.Perlin
	t     float64
	step  float64
}

// NewSynthetic builds a generator. The seed makes runs reproducible; zero
// selects a fixed default.
func NewSynthetic(seed int64) *Synthetic {
	if seed == 0 {
		seed = 1
	}
	return &Synthetic{
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinDepth, seed),
		step:  0.02,
	}
}

func (s *Synthetic) Poll() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t += s.step

	// Two decorrelated noise streams, stretched so the signal regularly
	// leaves the deadzone and saturates near the rim.
	x := s.noise.Noise1D(s.t) * 2.5
	y := s.noise.Noise1D(s.t+137.0) * 2.5

	return Sample{
		Pos:  geom.Vector2D{X: x, Y: y}.Clamp(-1, 1),
		Time: time.Now(),
	}, nil
}

func (s *Synthetic) Close() error { return nil }

// Scripted replays a fixed sequence of samples and then repeats the last one.
// Test helper for the control loop.
type Scripted struct {
	mu      sync.Mutex
	samples []Sample
	idx     int
}

// NewScripted builds a source that plays samples in order.
func NewScripted(samples []Sample) *Scripted {
	return &Scripted{samples: samples}
}

func (s *Scripted) Poll() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return Sample{Time: time.Now()}, nil
	}
	sample := s.samples[s.idx]
	if s.idx < len(s.samples)-1 {
		s.idx++
	}
	return sample, nil
}

func (s *Scripted) Close() error { return nil }
