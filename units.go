package poliastro

import (
	"fmt"
	"math"
)

// Dimension is the exponent vector of a physical dimension over the base
// dimensions length, mass, time and angle. Base units are km, kg, s and rad,
// matching the conventions used throughout the astrodynamics routines.
type Dimension struct {
	L, M, T, A int
}

// Common dimensions.
var (
	Unitless        = Dimension{}
	DimLength       = Dimension{L: 1}
	DimMass         = Dimension{M: 1}
	DimDuration     = Dimension{T: 1}
	DimAngle        = Dimension{A: 1}
	DimVelocity     = Dimension{L: 1, T: -1}
	DimAcceleration = Dimension{L: 1, T: -2}
	DimGravParam    = Dimension{L: 3, T: -2}
	DimDensity      = Dimension{M: 1, L: -3}
	DimArea         = Dimension{L: 2}
	DimAngularRate  = Dimension{A: 1, T: -1}
)

// Mul returns the dimension of a product.
func (d Dimension) Mul(o Dimension) Dimension {
	return Dimension{d.L + o.L, d.M + o.M, d.T + o.T, d.A + o.A}
}

// Div returns the dimension of a quotient.
func (d Dimension) Div(o Dimension) Dimension {
	return Dimension{d.L - o.L, d.M - o.M, d.T - o.T, d.A - o.A}
}

func (d Dimension) String() string {
	if d == Unitless {
		return "[1]"
	}
	return fmt.Sprintf("[L^%d M^%d T^%d A^%d]", d.L, d.M, d.T, d.A)
}

// Quantity is a scalar tagged with its physical dimension. The value is
// stored in base units (km, kg, s, rad); constructors convert on the way in
// and accessors convert on the way out, so chained conversions compose
// exactly up to floating point rounding.
type Quantity struct {
	val float64
	dim Dimension
}

// NewQuantity builds a quantity from a value already expressed in base units.
func NewQuantity(val float64, dim Dimension) Quantity {
	return Quantity{val, dim}
}

// Dimension returns the dimension tag of this quantity.
func (q Quantity) Dimension() Dimension {
	return q.dim
}

// Value returns the raw value in base units without any dimension check.
func (q Quantity) Value() float64 {
	return q.val
}

/* Constructors, one per supported unit. */

// Kilometers returns a length quantity.
func Kilometers(v float64) Quantity { return Quantity{v, DimLength} }

// Meters returns a length quantity.
func Meters(v float64) Quantity { return Quantity{v * 1e-3, DimLength} }

// AstronomicalUnits returns a length quantity.
func AstronomicalUnits(v float64) Quantity { return Quantity{v * AU, DimLength} }

// Kilograms returns a mass quantity.
func Kilograms(v float64) Quantity { return Quantity{v, DimMass} }

// Seconds returns a duration quantity.
func Seconds(v float64) Quantity { return Quantity{v, DimDuration} }

// Days returns a duration quantity.
func Days(v float64) Quantity { return Quantity{v * 86400, DimDuration} }

// Radians returns an angle quantity.
func Radians(v float64) Quantity { return Quantity{v, DimAngle} }

// Degrees returns an angle quantity.
func Degrees(v float64) Quantity { return Quantity{v * deg2rad, DimAngle} }

// KmPerSec returns a velocity quantity.
func KmPerSec(v float64) Quantity { return Quantity{v, DimVelocity} }

// Km3PerSec2 returns a gravitational parameter quantity.
func Km3PerSec2(v float64) Quantity { return Quantity{v, DimGravParam} }

// KgPerKm3 returns a density quantity.
func KgPerKm3(v float64) Quantity { return Quantity{v, DimDensity} }

// KgPerM3 returns a density quantity.
func KgPerM3(v float64) Quantity { return Quantity{v * 1e9, DimDensity} }

// Km2 returns an area quantity.
func Km2(v float64) Quantity { return Quantity{v, DimArea} }

// M2 returns an area quantity.
func M2(v float64) Quantity { return Quantity{v * 1e-6, DimArea} }

/* Accessors, each checking the dimension. */

func (q Quantity) to(dim Dimension, scale float64, unit string) (float64, error) {
	if q.dim != dim {
		return math.NaN(), DimensionMismatchError{"conversion to " + unit, q.dim, dim}
	}
	return q.val * scale, nil
}

// Kilometers converts this quantity to km.
func (q Quantity) Kilometers() (float64, error) { return q.to(DimLength, 1, "km") }

// Meters converts this quantity to m.
func (q Quantity) Meters() (float64, error) { return q.to(DimLength, 1e3, "m") }

// Kilograms converts this quantity to kg.
func (q Quantity) Kilograms() (float64, error) { return q.to(DimMass, 1, "kg") }

// Seconds converts this quantity to s.
func (q Quantity) Seconds() (float64, error) { return q.to(DimDuration, 1, "s") }

// Days converts this quantity to days.
func (q Quantity) Days() (float64, error) { return q.to(DimDuration, 1/86400., "day") }

// Radians converts this quantity to rad.
func (q Quantity) Radians() (float64, error) { return q.to(DimAngle, 1, "rad") }

// Degrees converts this quantity to degrees.
func (q Quantity) Degrees() (float64, error) { return q.to(DimAngle, 1/deg2rad, "deg") }

// KmPerSec converts this quantity to km/s.
func (q Quantity) KmPerSec() (float64, error) { return q.to(DimVelocity, 1, "km/s") }

// Km3PerSec2 converts this quantity to km³/s².
func (q Quantity) Km3PerSec2() (float64, error) { return q.to(DimGravParam, 1, "km^3/s^2") }

// KgPerKm3 converts this quantity to kg/km³.
func (q Quantity) KgPerKm3() (float64, error) { return q.to(DimDensity, 1, "kg/km^3") }

// Km2 converts this quantity to km².
func (q Quantity) Km2() (float64, error) { return q.to(DimArea, 1, "km^2") }

/* Arithmetic. Addition and subtraction require equal dimensions; products
and quotients combine the exponent vectors. */

// Add returns q + o, or a DimensionMismatchError.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.dim != o.dim {
		return Quantity{}, DimensionMismatchError{"addition", q.dim, o.dim}
	}
	return Quantity{q.val + o.val, q.dim}, nil
}

// Sub returns q - o, or a DimensionMismatchError.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if q.dim != o.dim {
		return Quantity{}, DimensionMismatchError{"subtraction", q.dim, o.dim}
	}
	return Quantity{q.val - o.val, q.dim}, nil
}

// Mul returns the product q × o.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{q.val * o.val, q.dim.Mul(o.dim)}
}

// Div returns the quotient q / o.
func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{q.val / o.val, q.dim.Div(o.dim)}
}

// Scale returns the quantity scaled by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{q.val * f, q.dim}
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.val, q.dim)
}
