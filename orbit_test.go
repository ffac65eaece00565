package poliastro

import (
	"math"
	"testing"
	"time"

	"github.com/gonum/floats"
)

var testEpoch = time.Date(2016, 3, 24, 20, 41, 48, 0, time.UTC)

func TestOrbitRV2COE(t *testing.T) {
	// Vallado example 2-5.
	R := []float64{6524.834, 6862.875, 6448.296}
	V := []float64{4.901327, 5.533756, -1.976341}
	o := NewOrbitFromRV(R, V, Earth, testEpoch)
	oT, err := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := o.StrictlyEquals(*oT); !ok {
		t.Logf("\no0: %s\no1: %s", o, oT)
		t.Fatalf("orbits differ: %s", err)
	}
	if ok, err := anglesEqual(Deg2rad(281.283201), o.Tildeω()); !ok {
		t.Fatalf("longitude of periapsis invalid: %s (%f)", err, o.Tildeω())
	}
	if ok, err := anglesEqual(Deg2rad(145.720695), o.ArgLatitudeU()); !ok {
		t.Fatalf("argument of latitude invalid: %s (%f)", err, o.ArgLatitudeU())
	}
	valladoε := 1e-6
	if !floats.EqualWithinAbs(o.Energyξ(), -5.516604, valladoε) {
		t.Fatalf("incorrect energy ξ=%f", o.Energyξ())
	}
	if !floats.EqualWithinAbs(norm(o.R()), o.RNorm(), valladoε) {
		t.Fatalf("incorrect r norm |R|=%f\tr=%f", norm(o.R()), o.RNorm())
	}
	if !floats.EqualWithinAbs(norm(o.V()), o.VNorm(), valladoε) {
		t.Fatalf("incorrect v norm |V|=%f\tv=%f", norm(o.V()), o.VNorm())
	}
	if !floats.EqualWithinAbs(norm(o.H()), o.HNorm(), valladoε) {
		t.Fatalf("incorrect h norm |h|=%f\th=%f", norm(o.H()), o.HNorm())
	}
}

func TestOrbitCOE2RV(t *testing.T) {
	a0 := 36126.64283
	e0 := 0.83280
	i0 := 87.874925
	ω0 := 53.378089
	Ω0 := 227.891253
	ν0 := 92.335027
	R := []float64{6524.344, 6861.535, 6449.125}
	V := []float64{4.902276, 5.533124, -1.975709}

	o0, err := NewOrbitFromOE(a0, e0, i0, Ω0, ω0, ν0, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(R, o0.R()) {
		t.Fatalf("R vector incorrectly computed:\n%+v\n%+v", R, o0.R())
	}
	if !vectorsEqual(V, o0.V()) {
		t.Fatal("V vector incorrectly computed")
	}

	o1 := NewOrbitFromRV(R, V, Earth, testEpoch)
	if ok, err := o0.Equals(*o1); !ok {
		t.Logf("\no0: %s\no1: %s", o0, o1)
		t.Fatal(err)
	}
	if ok, err := anglesEqual(Deg2rad(ν0), o1.ν); !ok {
		t.Fatalf("true anomaly invalid: %s", err)
	}
}

func TestOrbitRoundTrips(t *testing.T) {
	for _, a := range []float64{7000, 24396, 42164} {
		for _, e := range []float64{0.001, 0.2, 0.73} {
			for _, i := range []float64{0.01, 28.5, 63.4, 120} {
				for _, ν := range []float64{1, 91, 181, 271} {
					o0, err := NewOrbitFromOE(a, e, i, 45, 60, ν, Earth, testEpoch)
					if err != nil {
						t.Fatal(err)
					}
					o1 := NewOrbitFromRV(o0.R(), o0.V(), Earth, testEpoch)
					if ok, err := o0.StrictlyEquals(*o1); !ok {
						t.Logf("\no0: %s\no1: %s", o0, o1)
						t.Fatalf("round trip failed for a=%f e=%f i=%f ν=%f: %s", a, e, i, ν, err)
					}
				}
			}
		}
	}
}

func TestOrbitDegenerate(t *testing.T) {
	// Circular inclined: ω is folded into the argument of latitude.
	o, err := NewOrbitFromOE(7000, 0, 45, 30, 25, 40, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	o1 := NewOrbitFromRV(o.R(), o.V(), Earth, testEpoch)
	if o1.ω != 0 {
		t.Fatalf("circular orbit recovered a non-zero argument of perigee %f", o1.ω)
	}
	if ok, err := anglesEqual(Deg2rad(65), o1.ArgLatitudeU()); !ok {
		t.Fatalf("argument of latitude not preserved: %s", err)
	}
	// Circular equatorial: everything folds into the true longitude.
	o, err = NewOrbitFromOE(7000, 0, 0, 30, 25, 40, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	o1 = NewOrbitFromRV(o.R(), o.V(), Earth, testEpoch)
	if o1.ω != 0 || o1.Ω != 0 {
		t.Fatalf("circular equatorial orbit recovered ω=%f Ω=%f", o1.ω, o1.Ω)
	}
	if ok, err := anglesEqual(Deg2rad(95), o1.TrueLongλ()); !ok {
		t.Fatalf("true longitude not preserved: %s", err)
	}
	// Elliptical equatorial: Ω folds into the longitude of periapsis.
	o, err = NewOrbitFromOE(9000, 0.2, 0, 30, 25, 40, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	o1 = NewOrbitFromRV(o.R(), o.V(), Earth, testEpoch)
	if o1.Ω != 0 {
		t.Fatalf("equatorial orbit recovered a non-zero RAAN %f", o1.Ω)
	}
	if ok, err := anglesEqual(Deg2rad(55), o1.Tildeω()); !ok {
		t.Fatalf("longitude of periapsis not preserved: %s", err)
	}
}

func TestOrbitElementValidation(t *testing.T) {
	cases := []struct {
		a, e   float64
		reason string
	}{
		{7000, -0.1, "negative eccentricity"},
		{7000, 1, "parabolic"},
		{7000, 1 + 5e-7, "parabolic band upper"},
		{7000, 1 - 5e-7, "parabolic band lower"},
		{-7000, 0.5, "elliptical with negative sma"},
		{7000, 1.5, "hyperbolic with positive sma"},
	}
	for _, tc := range cases {
		if _, err := NewOrbitFromOE(tc.a, tc.e, 10, 10, 10, 10, Earth, testEpoch); err == nil {
			t.Fatalf("%s: no error", tc.reason)
		} else if _, ok := err.(InvalidElementsError); !ok {
			t.Fatalf("%s: unexpected error type %T", tc.reason, err)
		}
	}
	// Hyperbolic orbits with a negative sma are valid.
	if _, err := NewOrbitFromOE(-15000, 1.5, 10, 10, 10, 10, Earth, testEpoch); err != nil {
		t.Fatalf("valid hyperbolic orbit rejected: %s", err)
	}
}

func TestOrbitCircularConstructor(t *testing.T) {
	o, err := NewCircularOrbit(Earth, Kilometers(500), testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(o.RNorm(), Earth.Radius+500, distanceε) {
		t.Fatalf("radius %f", o.RNorm())
	}
	if o.e > eccentricityε {
		t.Fatalf("orbit is not circular: e=%f", o.e)
	}
	if !floats.EqualWithinAbs(o.VNorm(), math.Sqrt(Earth.μ/(Earth.Radius+500)), velocityε) {
		t.Fatalf("velocity %f", o.VNorm())
	}
	if _, err = NewCircularOrbit(Earth, Seconds(500), testEpoch); err == nil {
		t.Fatal("duration passed as altitude did not fail")
	}
	if _, err = NewCircularOrbit(Earth, Kilometers(-1), testEpoch); err == nil {
		t.Fatal("negative altitude did not fail")
	}
}

func TestOrbitSinCosE(t *testing.T) {
	// SinCosE feeds the analytic propagation; it must agree with the
	// standalone anomaly conversion everywhere on the ellipse.
	for _, e := range []float64{0, 0.01, 0.3, 0.73, 0.99} {
		for ν := 0.0; ν < 360; ν += 17 {
			o, err := NewOrbitFromOE(24396, e, 28.5, 40, 30, ν, Earth, testEpoch)
			if err != nil {
				t.Fatal(err)
			}
			sinE, cosE := o.SinCosE()
			E := EccentricFromTrue(Deg2rad(ν), e)
			if !floats.EqualWithinAbs(sinE, math.Sin(E), 1e-12) || !floats.EqualWithinAbs(cosE, math.Cos(E), 1e-12) {
				t.Fatalf("e=%f ν=%f°: SinCosE (%f, %f) vs anomaly conversion E=%f", e, ν, sinE, cosE, E)
			}
		}
	}
}

func TestOrbitPeriodAndApsides(t *testing.T) {
	// GEO: the period must be close to the sidereal day.
	o, err := NewOrbitFromOE(42164.0, 0, 0, 0, 0, 0, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(o.Period().Seconds(), 86164, 10) {
		t.Fatalf("GEO period %s", o.Period())
	}
	oe, err := NewOrbitFromOE(24396, 0.73, 7, 194, 178, 0, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	a, e := Radii2ae(oe.Apoapsis(), oe.Periapsis())
	if !floats.EqualWithinAbs(a, 24396, distanceε) || !floats.EqualWithinAbs(e, 0.73, eccentricityε) {
		t.Fatalf("Radii2ae round trip got a=%f e=%f", a, e)
	}
	assertPanic(t, func() {
		Radii2ae(1000, 2000)
	})
}
