package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec is the position/velocity/acceleration vector used everywhere.
type Vec = mgl64.Vec3

// V2 builds a planar vector.
func V2(x, y float64) Vec {
	return Vec{x, y, 0}
}

// IsFinite reports whether every component of v is neither NaN nor Inf.
func IsFinite(v Vec) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Lerp interpolates between a and b; t = 0 yields a.
func Lerp(a, b Vec, t float64) Vec {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Param describes one editable scalar of a scene or configuration.
type Param struct {
	Name    string
	Value   float64
	Min     float64
	Max     float64
	Log     bool
	Integer bool
}

// Configurable is implemented by anything exposing editable parameters.
type Configurable interface {
	Params() []Param
	SetParam(name string, value float64) error
}

// CheckParam validates value against p's bounds.
func CheckParam(p Param, value float64) error {
	if math.IsNaN(value) || value < p.Min || value > p.Max {
		return &ParamError{Name: p.Name, Value: value, Wrapped: ErrParameterBounds}
	}
	return nil
}
