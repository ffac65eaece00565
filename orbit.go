package poliastro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gonum/floats"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e1                          // 20 km
	velocityε     = 1e-6                         // in km/s
	parabolicε    = 1e-6                         // half-width of the unsupported band around e=1
)

// Orbit defines an orbit via its orbital elements, its attractor and its
// epoch. Orbits are immutable: propagation returns a new Orbit.
type Orbit struct {
	a, e, i, Ω, ω, ν float64
	Origin           Body      // orbit attractor
	Epoch            time.Time // epoch of these osculating elements
	cacheHash        float64
	cachedR, cachedV []float64
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return -o.Origin.μ / (2 * o.a)
}

// Tildeω returns the longitude of periapsis.
func (o Orbit) Tildeω() float64 {
	return math.Mod(o.ω+o.Ω, 2*math.Pi)
}

// TrueLongλ returns the *approximate* true longitude (cf. Vallado page 103).
// NOTE: One should only need this for equatorial orbits.
func (o Orbit) TrueLongλ() float64 {
	return math.Mod(o.ω+o.Ω+o.ν, 2*math.Pi)
}

// ArgLatitudeU returns the argument of latitude.
func (o Orbit) ArgLatitudeU() float64 {
	return math.Mod(o.ν+o.ω, 2*math.Pi)
}

// H returns the orbital angular momentum vector.
func (o Orbit) H() []float64 {
	return cross(o.R(), o.V())
}

// HNorm returns the norm of orbital angular momentum.
func (o Orbit) HNorm() float64 {
	return o.RNorm() * o.VNorm() * o.CosΦfpa()
}

// CosΦfpa returns the cosine of the flight path angle.
// WARNING: As per Vallado page 105, *do not* use math.Acos(o.CosΦfpa())
// to get the flight path angle as you'll have a quadrant problem. Instead
// use math.Atan2(o.SinΦfpa(), o.CosΦfpa()).
func (o Orbit) CosΦfpa() float64 {
	ecosν := o.e * math.Cos(o.ν)
	return (1 + ecosν) / math.Sqrt(1+2*ecosν+math.Pow(o.e, 2))
}

// SinΦfpa returns the sine of the flight path angle.
func (o Orbit) SinΦfpa() float64 {
	sinν, cosν := math.Sincos(o.ν)
	return (o.e * sinν) / math.Sqrt(1+2*o.e*cosν+math.Pow(o.e, 2))
}

// SemiParameter returns the semi parameter p.
func (o Orbit) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// Apoapsis returns the apoapsis radius.
func (o Orbit) Apoapsis() float64 {
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis radius.
func (o Orbit) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// SinCosE returns the eccentric anomaly trig functions (sin and cos).
func (o Orbit) SinCosE() (sinE, cosE float64) {
	sinν, cosν := math.Sincos(o.ν)
	denom := 1 + o.e*cosν
	sinE = math.Sqrt(1-o.e*o.e) * sinν / denom
	cosE = (o.e + cosν) / denom
	return
}

// Period returns the period of this orbit.
func (o Orbit) Period() time.Duration {
	// The time package does not trivially handle fractions of a second, so let's
	// compute this in a convoluted way...
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.Origin.μ)
	duration, _ := time.ParseDuration(fmt.Sprintf("%.6fs", seconds))
	return duration
}

// RV returns the Cartesian state, computing it on the first call and
// serving the cache afterwards.
func (o *Orbit) RV() ([]float64, []float64) {
	if o.hashValid() {
		return o.cachedR, o.cachedV
	}
	R, V := ClassicalToRV(o.a, o.e, o.i, o.Ω, o.ω, o.ν, o.Origin.μ)
	o.cachedR = R
	o.cachedV = V
	o.computeHash()
	return R, V
}

// R returns the radius vector.
func (o Orbit) R() (R []float64) {
	R, _ = o.RV()
	return R
}

// RNorm returns the norm of the radius vector, but without computing the radius vector.
// If only the norm is needed, it is encouraged to use this function instead of norm(o.R()).
func (o Orbit) RNorm() float64 {
	return o.SemiParameter() / (1 + o.e*math.Cos(o.ν))
}

// V returns the velocity vector.
func (o Orbit) V() (V []float64) {
	_, V = o.RV()
	return V
}

// VNorm returns the norm of the velocity vector, but without computing the velocity vector.
func (o Orbit) VNorm() float64 {
	if floats.EqualWithinAbs(o.e, 0, eccentricityε) {
		return math.Sqrt(o.Origin.μ / o.RNorm())
	}
	if floats.EqualWithinAbs(o.e, 1, eccentricityε) {
		return math.Sqrt(2 * o.Origin.μ / o.RNorm())
	}
	return math.Sqrt(2 * (o.Origin.μ/o.RNorm() + o.Energyξ()))
}

// Elements returns the nine orbital elements which work in all types of orbits.
func (o *Orbit) Elements() (a, e, i, Ω, ω, ν, λ, tildeω, u float64) {
	a = o.a
	e = o.e
	i = o.i
	Ω = o.Ω
	ω = o.ω
	ν = o.ν
	λ = o.TrueLongλ()
	tildeω = o.Tildeω()
	u = o.ArgLatitudeU()
	return
}

func (o *Orbit) computeHash() {
	o.cacheHash = o.ω + o.ν + o.Ω + o.i + o.e + o.a
}

func (o Orbit) hashValid() bool {
	return o.cachedR != nil && o.cacheHash == o.ω+o.ν+o.Ω+o.i+o.e+o.a
}

// String implements the stringer interface (hence the value receiver).
func (o Orbit) String() string {
	if o.e < eccentricityε {
		// Circular orbit
		if o.i > angleε {
			return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f u=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ArgLatitudeU()))
		}
		// Equatorial
		return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f λ=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.TrueLongλ()))
	}
	return fmt.Sprintf("a=%.1f e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.ν))
}

// Equals returns whether two orbits are identical with free true anomaly.
// Use StrictlyEquals to also check true anomaly.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !floats.EqualWithinAbs(o.a, o1.a, distanceε) {
		return false, errors.New("semi major axis invalid")
	}
	if !floats.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if !floats.EqualWithinAbs(o.i, o1.i, angleε) {
		return false, errors.New("inclination invalid")
	}
	if !floats.EqualWithinAbs(o.Ω, o1.Ω, angleε) {
		return false, errors.New("RAAN invalid")
	}
	if o.e < eccentricityε {
		// Circular orbit
		if o.i > angleε {
			// Inclined
			if !floats.EqualWithinAbs(o.ArgLatitudeU(), o1.ArgLatitudeU(), angleε) {
				return false, errors.New("argument of latitude invalid")
			}
		} else {
			// Equatorial
			if !floats.EqualWithinAbs(o.TrueLongλ(), o1.TrueLongλ(), angleε) {
				return false, errors.New("true longitude invalid")
			}
		}
	} else if !floats.EqualWithinAbs(o.ω, o1.ω, angleε) {
		return false, errors.New("argument of perigee invalid")
	}
	return true, nil
}

// StrictlyEquals returns whether two orbits are identical.
func (o Orbit) StrictlyEquals(o1 Orbit) (bool, error) {
	// Only check the anomaly for non circular orbits
	if o.e > eccentricityε && !floats.EqualWithinAbs(o.ν, o1.ν, angleε) {
		return false, errors.New("true anomaly invalid")
	}
	return o.Equals(o1)
}

// NewOrbitFromOE creates an orbit from the orbital elements, validated at
// this boundary. WARNING: Angles must be in degrees not radians.
func NewOrbitFromOE(a, e, i, Ω, ω, ν float64, c Body, epoch time.Time) (*Orbit, error) {
	if e < 0 {
		return nil, InvalidElementsError{fmt.Sprintf("negative eccentricity %f", e)}
	}
	if math.Abs(e-1) < parabolicε {
		return nil, InvalidElementsError{"parabolic orbits are not supported"}
	}
	if e < 1 && a <= 0 {
		return nil, InvalidElementsError{fmt.Sprintf("negative semi-major axis %f for an elliptical orbit", a)}
	}
	if e > 1 && a >= 0 {
		return nil, InvalidElementsError{fmt.Sprintf("positive semi-major axis %f for a hyperbolic orbit", a)}
	}
	orbit := Orbit{a, e, Deg2rad(i), Deg2rad(Ω), Deg2rad(ω), Deg2rad(ν), c, epoch.UTC(), 0.0, nil, nil}
	orbit.RV()
	return &orbit, nil
}

// NewOrbitFromRV returns orbital elements from the R and V vectors. Needed for prop.
func NewOrbitFromRV(R, V []float64, c Body, epoch time.Time) *Orbit {
	a, e, i, Ω, ω, ν := RVToClassical(R, V, c.μ)
	orbit := Orbit{a, e, i, Ω, ω, ν, c, epoch.UTC(), 0.0, R, V}
	orbit.computeHash()
	return &orbit
}

// NewCircularOrbit returns a circular orbit at the given altitude above the
// attractor's equatorial radius, in the equatorial plane.
func NewCircularOrbit(c Body, altitude Quantity, epoch time.Time) (*Orbit, error) {
	alt, err := altitude.Kilometers()
	if err != nil {
		return nil, err
	}
	if alt <= 0 {
		return nil, InvalidElementsError{fmt.Sprintf("non-positive altitude %f km", alt)}
	}
	r := c.Radius + alt
	v := math.Sqrt(c.μ / r)
	return NewOrbitFromRV([]float64{r, 0, 0}, []float64{0, v, 0}, c, epoch), nil
}

// RVToClassical converts a Cartesian state to the classical orbital
// elements given the attractor's gravitational parameter k, following
// Vallado's RV2COE (page 113). Degenerate cases use the standard
// conventions: the argument of perigee of a circular orbit and the RAAN of
// an equatorial orbit are zero, and the true anomaly is replaced by the
// argument of latitude or the true longitude as appropriate.
func RVToClassical(R, V []float64, k float64) (a, e, i, Ω, ω, ν float64) {
	hVec := cross(R, V)
	n := cross([]float64{0, 0, 1}, hVec)
	v := norm(V)
	r := norm(R)
	ξ := (v*v)/2 - k/r
	a = -k / (2 * ξ)
	eVec := make([]float64, 3)
	for j := 0; j < 3; j++ {
		eVec[j] = ((v*v-k/r)*R[j] - dot(R, V)*V[j]) / k
	}
	e = norm(eVec)
	i = math.Acos(clampCos(hVec[2] / norm(hVec)))
	circular := e < eccentricityε
	equatorial := i < angleε

	switch {
	case circular && equatorial:
		Ω = 0
		ω = 0
		ν = math.Acos(clampCos(R[0] / r))
		if R[1] < 0 {
			ν = 2*math.Pi - ν
		}
	case circular && !equatorial:
		Ω = math.Acos(clampCos(n[0] / norm(n)))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
		ω = 0
		ν = math.Acos(clampCos(dot(n, R) / (norm(n) * r)))
		if R[2] < 0 {
			ν = 2*math.Pi - ν
		}
	case !circular && equatorial:
		Ω = 0
		ω = math.Acos(clampCos(eVec[0] / e))
		if eVec[1] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = trueAnomalyFrom(eVec, R, V, e, r)
	default:
		Ω = math.Acos(clampCos(n[0] / norm(n)))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
		ω = math.Acos(clampCos(dot(n, eVec) / (norm(n) * e)))
		if eVec[2] < 0 {
			ω = 2*math.Pi - ω
		}
		ν = trueAnomalyFrom(eVec, R, V, e, r)
	}
	// Fix rounding errors.
	i = math.Mod(i, 2*math.Pi)
	Ω = math.Mod(Ω, 2*math.Pi)
	ω = math.Mod(ω, 2*math.Pi)
	ν = math.Mod(ν, 2*math.Pi)
	return
}

func trueAnomalyFrom(eVec, R, V []float64, e, r float64) float64 {
	cosν := dot(eVec, R) / (e * r)
	if abscosν := math.Abs(cosν); abscosν > 1 && floats.EqualWithinAbs(abscosν, 1, 1e-12) {
		// Welcome to the edge case which took about 1.5 hours of my time.
		cosν = sign(cosν) // GTFO NaN!
	}
	ν := math.Acos(cosν)
	if dot(R, V) < 0 {
		ν = 2*math.Pi - ν
	}
	return ν
}

func clampCos(c float64) float64 {
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}

// ClassicalToRV converts classical orbital elements (angles in radians) to
// a Cartesian state given the attractor's gravitational parameter k.
func ClassicalToRV(a, e, i, Ω, ω, ν, k float64) (R, V []float64) {
	p := a * (1 - e*e)
	// Support special orbits by folding the undefined angles into the anomaly.
	if e < eccentricityε {
		if i < angleε {
			// Circular equatorial: true longitude
			ν = math.Mod(ν+ω+Ω, 2*math.Pi)
			Ω = 0
		} else {
			// Circular inclined: argument of latitude
			ν = math.Mod(ν+ω, 2*math.Pi)
		}
		ω = 0
	} else if i < angleε {
		// Elliptical equatorial: longitude of periapsis
		ω = math.Mod(ω+Ω, 2*math.Pi)
		Ω = 0
	}
	sinν, cosν := math.Sincos(ν)
	R = make([]float64, 3)
	R[0] = p * cosν / (1 + e*cosν)
	R[1] = p * sinν / (1 + e*cosν)
	R[2] = 0
	R = PQW2ECI(i, ω, Ω, R)

	V = make([]float64, 3)
	V[0] = -math.Sqrt(k/p) * sinν
	V[1] = math.Sqrt(k/p) * (e + cosν)
	V[2] = 0
	V = PQW2ECI(i, ω, Ω, V)
	return R, V
}

// Radii2ae returns the semi major axis and the eccentricity from the radii.
func Radii2ae(rA, rP float64) (a, e float64) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}
