package poliastro

import (
	"fmt"
	"math"
	"time"
)

// AccelModel is the calling contract shared by all perturbation models: a
// stateless function of the current epoch, the 6-dimensional state vector
// [R V] (km, km/s) and the attractor's gravitational parameter, returning a
// perturbing acceleration in km/s². Model parameters are bound at
// construction time, one parameter struct per perturbation kind.
type AccelModel interface {
	Accel(dt time.Time, state []float64, μ float64) []float64
}

// Oblateness perturbs the orbit with the attractor's J2 (and optionally J3)
// zonal harmonics. The body-fixed frame is assumed to coincide with the
// inertial propagation frame: there is no frame rotation. This is a known
// simplification inherited from the original design, not a bug.
type Oblateness struct {
	Body Body
	Jn   uint8
}

// NewOblateness returns an oblateness model for the given body, accounting
// for the zonal harmonics up to Jn (2 or 3).
func NewOblateness(body Body, jn uint8) (Oblateness, error) {
	if jn < 2 || jn > 3 {
		return Oblateness{}, fmt.Errorf("unsupported zonal harmonic J%d", jn)
	}
	if body.J2 == 0 {
		return Oblateness{}, fmt.Errorf("%s has no oblateness coefficients", body.Name)
	}
	return Oblateness{body, jn}, nil
}

// Accel implements the AccelModel interface.
// J2/J3 series computed via SageMath, same derivation as the reference
// Cartesian formulation.
func (ob Oblateness) Accel(dt time.Time, state []float64, μ float64) []float64 {
	pert := make([]float64, 3)
	x := state[0]
	y := state[1]
	z := state[2]
	z2 := z * z
	z3 := z2 * z
	r2 := x*x + y*y + z2
	r252 := math.Pow(r2, 5/2.)
	r272 := math.Pow(r2, 7/2.)
	accJ2 := (3 / 2.) * ob.Body.J(2) * math.Pow(ob.Body.Radius, 2) * μ
	pert[0] += accJ2 * (5*x*z2/r272 - x/r252)
	pert[1] += accJ2 * (5*y*z2/r272 - y/r252)
	pert[2] += accJ2 * (5*z3/r272 - 3*z/r252)
	if ob.Jn >= 3 {
		r292 := math.Pow(r2, 9/2.)
		z4 := z2 * z2
		accJ3 := ob.Body.J(3) * math.Pow(ob.Body.Radius, 3) * μ
		pert[0] += (5 / 2.) * accJ3 * (7*x*z3/r292 - 3*x*z/r272)
		pert[1] += (5 / 2.) * accJ3 * (7*y*z3/r292 - 3*y*z/r272)
		pert[2] += 0.5 * accJ3 * (35*z4/r292 - 30*z2/r272 + 3/r252)
	}
	return pert
}

// AtmosphericDrag decelerates the orbit through an exponential atmosphere
// ρ(h) = ρ0·exp(-(|r|-R)/H0). The velocity relative to the rotating
// atmosphere is approximated by the inertial velocity; as with Oblateness,
// this simplification is deliberate and documented rather than hidden.
// Far above the scale height the exponential underflows and the drag
// becomes negligible, which is the expected decay, not an error.
type AtmosphericDrag struct {
	Body Body
	CD   float64 // drag coefficient, dimensionless
	Area float64 // cross-section in km²
	Mass float64 // spacecraft mass in kg
}

// NewAtmosphericDrag returns a drag model for a body carrying atmospheric
// parameters. Area and mass are dimension-checked at this boundary.
func NewAtmosphericDrag(body Body, cd float64, area, mass Quantity) (AtmosphericDrag, error) {
	if !body.HasAtmosphere() {
		return AtmosphericDrag{}, fmt.Errorf("%s has no atmospheric parameters", body.Name)
	}
	a, err := area.Km2()
	if err != nil {
		return AtmosphericDrag{}, err
	}
	m, err := mass.Kilograms()
	if err != nil {
		return AtmosphericDrag{}, err
	}
	if m <= 0 {
		return AtmosphericDrag{}, fmt.Errorf("non-positive mass %f kg", m)
	}
	return AtmosphericDrag{body, cd, a, m}, nil
}

// Accel implements the AccelModel interface.
func (d AtmosphericDrag) Accel(dt time.Time, state []float64, μ float64) []float64 {
	pert := make([]float64, 3)
	R := state[0:3]
	V := state[3:6]
	B := d.CD * d.Area / d.Mass
	ρ := d.Body.Atm.RefDensity * math.Exp(-(norm(R)-d.Body.Radius)/d.Body.Atm.ScaleHeight)
	vNorm := norm(V)
	for i := 0; i < 3; i++ {
		pert[i] = -0.5 * B * ρ * vNorm * V[i]
	}
	return pert
}

// ThirdBody perturbs the orbit with the direct and indirect gravitational
// pull of a secondary body whose position comes from an ephemeris
// interpolant. The acceleration uses Battin's f-function to avoid the
// catastrophic cancellation of the naive difference formula when the
// spacecraft is much closer to the primary than to the third body.
type ThirdBody struct {
	GM    float64 // gravitational parameter of the third body, km³/s²
	Ephem *Ephemeris
}

// NewThirdBody returns a third-body model fed by the provided interpolant.
// The interpolant must only be queried within its validity window; the
// propagator checks the propagation interval against it up front.
func NewThirdBody(body Body, eph *Ephemeris) (ThirdBody, error) {
	if eph == nil {
		return ThirdBody{}, fmt.Errorf("nil ephemeris for third body %s", body.Name)
	}
	return ThirdBody{body.μ, eph}, nil
}

// Accel implements the AccelModel interface.
func (tb ThirdBody) Accel(dt time.Time, state []float64, μ float64) []float64 {
	pert := make([]float64, 3)
	s := tb.Ephem.positionAt(dt)
	r := state[0:3]
	d := make([]float64, 3)
	rm2s := make([]float64, 3)
	for i := 0; i < 3; i++ {
		d[i] = r[i] - s[i]
		rm2s[i] = r[i] - 2*s[i]
	}
	q := dot(r, rm2s) / dot(s, s)
	f := q * (3 + 3*q + q*q) / (1 + math.Pow(1+q, 3/2.))
	d3 := math.Pow(norm(d), 3)
	for i := 0; i < 3; i++ {
		pert[i] = -tb.GM / d3 * (r[i] + f*s[i])
	}
	return pert
}

// ArbitraryAccel is an escape hatch for additional accelerations which do
// not fit the closed set of models, e.g. continuous thrust profiles.
type ArbitraryAccel func(dt time.Time, state []float64, μ float64) []float64

// Perturbations defines how to handle perturbations during the propagation.
// The zero value means pure two-body motion.
type Perturbations struct {
	Models    []AccelModel
	Arbitrary ArbitraryAccel
}

func (p Perturbations) isEmpty() bool {
	return len(p.Models) == 0 && p.Arbitrary == nil
}

// Accel returns the summed perturbing acceleration at the given epoch and
// state. Supplying no model reduces exactly to unperturbed two-body motion.
func (p Perturbations) Accel(dt time.Time, state []float64, μ float64) []float64 {
	pert := make([]float64, 3)
	if p.isEmpty() {
		return pert
	}
	for _, model := range p.Models {
		acc := model.Accel(dt, state, μ)
		for i := 0; i < 3; i++ {
			pert[i] += acc[i]
		}
	}
	if p.Arbitrary != nil {
		acc := p.Arbitrary(dt, state, μ)
		for i := 0; i < 3; i++ {
			pert[i] += acc[i]
		}
	}
	return pert
}

// window returns the tightest ephemeris validity window over all
// third-body models, or ok=false when no model is window-bound.
func (p Perturbations) window() (start, end time.Time, ok bool) {
	for _, model := range p.Models {
		tb, is := model.(ThirdBody)
		if !is {
			continue
		}
		s, e := tb.Ephem.Window()
		if !ok || s.After(start) {
			start = s
		}
		if !ok || e.Before(end) {
			end = e
		}
		ok = true
	}
	return
}
