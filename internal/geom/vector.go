// internal/geom/vector.go
package geom

import "math"

// Vector2D represents a point or vector in the normalized stick plane.
type Vector2D struct {
	X, Y float64
}

// Add returns the vector sum of v and other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the vector difference of v and other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul returns the vector v scaled by the scalar factor.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{X: v.X * scalar, Y: v.Y * scalar}
}

// MagSq calculates the squared magnitude (length) of the vector.
func (v Vector2D) MagSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Mag calculates the magnitude (length) of the vector.
func (v Vector2D) Mag() float64 {
	// Use math.Hypot for numerical stability.
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector (magnitude 1) in the same direction as v.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Mag()
	if mag < 1e-9 {
		return Vector2D{}
	}
	return v.Mul(1.0 / mag)
}

// Dist calculates the Euclidean distance between v and other (treated as points).
func (v Vector2D) Dist(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Clamp limits each axis of the vector to the [min, max] interval.
// Stick coordinates live in [-1, 1]²; extrapolated points are pulled back in.
func (v Vector2D) Clamp(min, max float64) Vector2D {
	return Vector2D{
		X: math.Max(min, math.Min(max, v.X)),
		Y: math.Max(min, math.Min(max, v.Y)),
	}
}

// Angle returns the angle of the vector in radians.
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleDeg returns the angle of the vector in degrees, normalized into [0, 360).
// 0° is the positive x-axis; degrees increase toward positive y.
func (v Vector2D) AngleDeg() float64 {
	return NormalizeDeg(v.Angle() * 180.0 / math.Pi)
}

// NormalizeDeg folds an angle in degrees into [0, 360).
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// AngularDiff returns the absolute difference between two angles in degrees,
// folded into [0, 180].
func AngularDiff(a, b float64) float64 {
	diff := math.Abs(NormalizeDeg(a) - NormalizeDeg(b))
	if diff > 180.0 {
		diff = 360.0 - diff
	}
	return diff
}
