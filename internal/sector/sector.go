// internal/sector/sector.go

// Package sector maps normalized stick positions onto a small set of angular
// regions. A central circular deadzone always classifies as Neutral; the rest
// of the circle is partitioned into four 90°-wide ranges, one per attack
// direction. The table is injected configuration and is validated once at
// startup, never at classification time.
package sector

import (
	"fmt"
	"math"

	"github.com/xkilldash9x/chakram-cli/internal/geom"
)

// Sector identifies the angular region the stick currently points into.
type Sector int

const (
	Neutral Sector = iota
	North          // overhead attack
	East           // right attack
	South          // thrust attack
	West           // left attack
)

var sectorNames = map[Sector]string{
	Neutral: "neutral",
	North:   "overhead",
	East:    "right",
	South:   "thrust",
	West:    "left",
}

// String returns the configuration name of the sector.
func (s Sector) String() string {
	if name, ok := sectorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("sector(%d)", int(s))
}

// Parse resolves a configuration name to a Sector.
func Parse(name string) (Sector, error) {
	for s, n := range sectorNames {
		if n == name {
			return s, nil
		}
	}
	return Neutral, fmt.Errorf("sector: unknown sector name %q", name)
}

// Directional lists the non-neutral sectors in table priority order.
func Directional() []Sector {
	return []Sector{North, East, South, West}
}

// Range is a half-open angular interval in degrees. A range with Start > End
// wraps through 0°/360°; membership there is angle >= Start || angle <= End.
type Range struct {
	Start float64
	End   float64
}

// Contains reports whether the angle (degrees, [0,360)) falls inside the range.
func (r Range) Contains(angle float64) bool {
	if r.Start > r.End {
		return angle >= r.Start || angle <= r.End
	}
	return angle >= r.Start && angle <= r.End
}

// width returns the angular width of the range in degrees.
func (r Range) width() float64 {
	if r.Start > r.End {
		return 360.0 - r.Start + r.End
	}
	return r.End - r.Start
}

// Table holds the angular range for each directional sector. Ranges are
// checked in the fixed order returned by Directional, so a boundary angle
// shared by two adjacent ranges always resolves to the same sector.
type Table map[Sector]Range

// DefaultTable returns the stock four-way split: East wraps through 0°,
// with South, West and North following at 90° intervals. 0° is the positive
// x-axis and degrees increase toward positive y (stick y points down).
func DefaultTable() Table {
	return Table{
		East:  {Start: 315, End: 45},
		South: {Start: 45, End: 135},
		West:  {Start: 135, End: 225},
		North: {Start: 225, End: 315},
	}
}

// Validate checks that the table partitions the full circle: every directional
// sector present, at most one wrapping range, and widths summing to 360°.
// Overlapping or gapped tables are a configuration error, caught here at
// startup so Classify never has to tolerate them.
func (t Table) Validate() error {
	var total float64
	wrapping := 0
	for _, s := range Directional() {
		r, ok := t[s]
		if !ok {
			return fmt.Errorf("sector: table is missing range for %q", s)
		}
		if r.Start < 0 || r.Start >= 360 || r.End < 0 || r.End >= 360 {
			return fmt.Errorf("sector: range for %q has angles outside [0,360): start=%v end=%v", s, r.Start, r.End)
		}
		if r.Start > r.End {
			wrapping++
		}
		total += r.width()
	}
	if wrapping > 1 {
		return fmt.Errorf("sector: table has %d wrapping ranges, at most one allowed", wrapping)
	}
	if math.Abs(total-360.0) > 1e-6 {
		return fmt.Errorf("sector: ranges cover %.3f° instead of 360°, table has gaps or overlaps", total)
	}
	return nil
}

// Classify maps a stick position onto a sector. Positions with magnitude below
// the deadzone radius are Neutral regardless of angle; otherwise the first
// range (in Directional order) containing the position's angle wins.
func Classify(pos geom.Vector2D, deadzone float64, table Table) Sector {
	if pos.Mag() < deadzone {
		return Neutral
	}
	return ClassifyAngle(pos.AngleDeg(), table)
}

// ClassifyAngle resolves an angle already known to be outside the deadzone.
func ClassifyAngle(angle float64, table Table) Sector {
	angle = geom.NormalizeDeg(angle)
	for _, s := range Directional() {
		if table[s].Contains(angle) {
			return s
		}
	}
	// Unreachable with a validated table.
	return Neutral
}
