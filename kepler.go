package poliastro

import (
	"fmt"
	"math"
	"time"
)

const (
	keplerTol     = 1e-12
	keplerMaxIter = 50
)

// EccentricFromTrue converts the true anomaly to the eccentric anomaly for
// an elliptical orbit.
func EccentricFromTrue(ν, e float64) float64 {
	sinν, cosν := math.Sincos(ν)
	denom := 1 + e*cosν
	sinE := math.Sqrt(1-e*e) * sinν / denom
	cosE := (e + cosν) / denom
	E := math.Atan2(sinE, cosE)
	if E < 0 {
		E += 2 * math.Pi
	}
	return E
}

// TrueFromEccentric converts the eccentric anomaly to the true anomaly.
func TrueFromEccentric(E, e float64) float64 {
	sinE, cosE := math.Sincos(E)
	ν := math.Atan2(math.Sqrt(1-e*e)*sinE, cosE-e)
	if ν < 0 {
		ν += 2 * math.Pi
	}
	return ν
}

// MeanFromEccentric applies Kepler's equation M = E - e·sin(E).
func MeanFromEccentric(E, e float64) float64 {
	return math.Mod(E-e*math.Sin(E), 2*math.Pi)
}

// EccentricFromMean solves Kepler's equation for the eccentric anomaly via
// Newton-Raphson iterations.
func EccentricFromMean(M, e float64) (float64, error) {
	M = math.Mod(M, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	// Vallado's starter keeps the iteration in the converging basin for
	// high eccentricities.
	E := M - e
	if M < math.Pi {
		E = M + e
	}
	for iter := 0; iter < keplerMaxIter; iter++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) < keplerTol {
			return math.Mod(E+2*math.Pi, 2*math.Pi), nil
		}
		E -= f / (1 - e*math.Cos(E))
	}
	return 0, fmt.Errorf("kepler solver did not converge for M=%f e=%f", M, e)
}

// HyperbolicFromMean solves the hyperbolic Kepler equation
// M = e·sinh(H) - H via Newton-Raphson iterations.
func HyperbolicFromMean(M, e float64) (float64, error) {
	H := M
	if math.Abs(M) > 3 {
		H = sign(M) * math.Log(2*math.Abs(M)/e)
	}
	for iter := 0; iter < keplerMaxIter; iter++ {
		f := e*math.Sinh(H) - H - M
		if math.Abs(f) < keplerTol {
			return H, nil
		}
		H -= f / (e*math.Cosh(H) - 1)
	}
	return 0, fmt.Errorf("hyperbolic kepler solver did not converge for M=%f e=%f", M, e)
}

// TrueFromHyperbolic converts the hyperbolic anomaly to the true anomaly.
func TrueFromHyperbolic(H, e float64) float64 {
	return 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(H/2))
}

// MeanMotion returns the mean motion n in rad/s.
func (o Orbit) MeanMotion() float64 {
	return math.Sqrt(o.Origin.μ / math.Abs(math.Pow(o.a, 3)))
}

// PropagateKepler analytically advances the orbit by the provided duration
// using the closed-form two-body solution: only the anomaly changes. The
// branch between the elliptic and hyperbolic forms is selected by the
// eccentricity, never by an orbit type flag.
func PropagateKepler(o *Orbit, duration time.Duration) (*Orbit, error) {
	n := o.MeanMotion()
	dt := duration.Seconds()
	var ν float64
	if o.e < 1-parabolicε {
		sinE, cosE := o.SinCosE()
		M := math.Atan2(sinE, cosE) - o.e*sinE + n*dt
		E, err := EccentricFromMean(M, o.e)
		if err != nil {
			return nil, err
		}
		ν = TrueFromEccentric(E, o.e)
	} else if o.e > 1+parabolicε {
		sinν, cosν := math.Sincos(o.ν)
		H0 := math.Asinh(math.Sqrt(o.e*o.e-1) * sinν / (1 + o.e*cosν))
		M := o.e*math.Sinh(H0) - H0 + n*dt
		H, err := HyperbolicFromMean(M, o.e)
		if err != nil {
			return nil, err
		}
		ν = TrueFromHyperbolic(H, o.e)
	} else {
		return nil, InvalidElementsError{"parabolic orbits are not supported"}
	}
	prop := Orbit{o.a, o.e, o.i, o.Ω, o.ω, ν, o.Origin, o.Epoch.Add(duration), 0.0, nil, nil}
	prop.RV()
	return &prop, nil
}
