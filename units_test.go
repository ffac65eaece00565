package poliastro

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestQuantityConversions(t *testing.T) {
	d := Meters(1500)
	km, err := d.Kilometers()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(km, 1.5, 1e-12) {
		t.Fatalf("1500 m = %f km", km)
	}
	m, err := d.Meters()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(m, 1500, 1e-9) {
		t.Fatalf("1500 m read back as %f m", m)
	}
	deg, err := Radians(math.Pi).Degrees()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(deg, 180, 1e-12) {
		t.Fatalf("π rad = %f deg", deg)
	}
	day, err := Seconds(86400).Days()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(day, 1, 1e-12) {
		t.Fatalf("86400 s = %f day", day)
	}
	ρ, err := KgPerM3(1.225).KgPerKm3()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(ρ, 1.225e9, 1) {
		t.Fatalf("1.225 kg/m³ = %f kg/km³", ρ)
	}
	km2, err := M2(1e6).Km2()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(km2, 1, 1e-12) {
		t.Fatalf("1e6 m² = %f km²", km2)
	}
}

func TestQuantityMismatch(t *testing.T) {
	if _, err := Kilograms(10).Kilometers(); err == nil {
		t.Fatal("kg read as km did not fail")
	} else if _, ok := err.(DimensionMismatchError); !ok {
		t.Fatalf("unexpected error type: %T", err)
	}
	if _, err := Kilometers(1).Add(Seconds(1)); err == nil {
		t.Fatal("km + s did not fail")
	}
	if _, err := Degrees(90).Sub(Kilograms(1)); err == nil {
		t.Fatal("deg - kg did not fail")
	}
}

func TestQuantityArithmetic(t *testing.T) {
	sum, err := Kilometers(1).Add(Meters(500))
	if err != nil {
		t.Fatal(err)
	}
	km, _ := sum.Kilometers()
	if !floats.EqualWithinAbs(km, 1.5, 1e-12) {
		t.Fatalf("1 km + 500 m = %f km", km)
	}
	// A velocity times a duration is a length.
	dist := KmPerSec(7.5).Mul(Seconds(10))
	km, err = dist.Kilometers()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(km, 75, 1e-12) {
		t.Fatalf("7.5 km/s · 10 s = %f km", km)
	}
	// A length divided by a duration is a velocity.
	vel := Kilometers(100).Div(Seconds(20))
	v, err := vel.KmPerSec()
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(v, 5, 1e-12) {
		t.Fatalf("100 km / 20 s = %f km/s", v)
	}
	half := Kilometers(10).Scale(0.5)
	km, _ = half.Kilometers()
	if km != 5 {
		t.Fatalf("10 km scaled by 0.5 = %f km", km)
	}
}

func TestDimensionAlgebra(t *testing.T) {
	if DimVelocity != DimLength.Div(DimDuration) {
		t.Fatal("velocity dimension is not length per duration")
	}
	if DimAcceleration != DimVelocity.Div(DimDuration) {
		t.Fatal("acceleration dimension is not velocity per duration")
	}
	if DimArea != DimLength.Mul(DimLength) {
		t.Fatal("area dimension is not length squared")
	}
	if Unitless != DimLength.Div(DimLength) {
		t.Fatal("length per length is not unitless")
	}
}
