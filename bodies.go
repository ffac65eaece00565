package poliastro

import (
	"fmt"
	"math"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// GravConst is the gravitational constant in km³/(kg·s²).
	GravConst = 6.67430e-20
)

// Atmosphere holds the exponential atmosphere parameters of a body.
// RefDensity is the sea-level reference density ρ0 in kg/km³ and
// ScaleHeight is H0 in km.
type Atmosphere struct {
	RefDensity  float64
	ScaleHeight float64
}

// Body defines a celestial body as an immutable record of physical
// parameters. The parent relation is a non-owning name key into the
// registry, used for hierarchical lookup only, never for dynamics.
type Body struct {
	Name        string
	parent      string
	Radius      float64 // equatorial radius in km
	PolarRadius float64 // km
	MeanRadius  float64 // km
	a           float64 // semi-major axis about the parent in km
	μ           float64 // gravitational parameter in km³/s²
	mass        float64 // kg
	RotPeriod   float64 // rotational period in seconds, negative if retrograde
	tilt        float64 // axial tilt in degrees
	SOI         float64 // sphere of influence with respect to the Sun, km
	J2, J3, J4  float64
	Atm         Atmosphere
}

// GM returns μ (which is unexported because it's a lowercase letter).
func (b Body) GM() float64 {
	return b.μ
}

// Mass returns the body mass in kg. When the registry does not carry an
// explicit mass, it is derived from μ and the gravitational constant.
func (b Body) Mass() float64 {
	if b.mass != 0 {
		return b.mass
	}
	return b.μ / GravConst
}

// J returns the perturbing J_n factor for the provided n.
// Currently only J2 through J4 are supported.
func (b Body) J(n uint8) float64 {
	switch n {
	case 2:
		return b.J2
	case 3:
		return b.J3
	case 4:
		return b.J4
	default:
		return 0.0
	}
}

// AngularVelocity returns the rotation rate 2π/T in rad/s, negative for
// retrograde rotators. Fails if the rotational period is zero.
func (b Body) AngularVelocity() (float64, error) {
	if b.RotPeriod == 0 {
		return 0, ErrZeroRotationPeriod
	}
	return 2 * math.Pi / b.RotPeriod, nil
}

// Parent resolves the parent body through the registry.
func (b Body) Parent() (Body, error) {
	if b.parent == "" {
		return Body{}, fmt.Errorf("%s has no parent", b.Name)
	}
	return BodyFromString(b.parent)
}

// HasAtmosphere returns whether this body carries drag parameters.
func (b Body) HasAtmosphere() bool {
	return b.Atm.RefDensity > 0 && b.Atm.ScaleHeight > 0
}

// String implements the Stringer interface.
func (b Body) String() string {
	return b.Name + " body"
}

// Equals returns whether the provided body is the same.
func (b Body) Equals(o Body) bool {
	return b.Name == o.Name && b.Radius == o.Radius && b.a == o.a && b.μ == o.μ && b.SOI == o.SOI && b.J2 == o.J2
}

// BodyParameters gathers the quantity-checked inputs of NewBody.
type BodyParameters struct {
	GM          Quantity // required
	Radius      Quantity // required
	PolarRadius Quantity
	MeanRadius  Quantity
	RotPeriod   Quantity
	Mass        Quantity // optional, derived from GM when zero
	J2, J3      float64
	RefDensity  Quantity
	ScaleHeight Quantity
}

// NewBody constructs an arbitrary body from raw parameters. All quantities
// are dimension-checked at this boundary; the record itself stores km/s
// floats like the rest of the package.
func NewBody(name, parent string, params BodyParameters) (Body, error) {
	μ, err := params.GM.Km3PerSec2()
	if err != nil {
		return Body{}, err
	}
	radius, err := params.Radius.Kilometers()
	if err != nil {
		return Body{}, err
	}
	b := Body{Name: name, parent: parent, Radius: radius, μ: μ, J2: params.J2, J3: params.J3}
	if params.PolarRadius != (Quantity{}) {
		if b.PolarRadius, err = params.PolarRadius.Kilometers(); err != nil {
			return Body{}, err
		}
	}
	if params.MeanRadius != (Quantity{}) {
		if b.MeanRadius, err = params.MeanRadius.Kilometers(); err != nil {
			return Body{}, err
		}
	}
	if params.RotPeriod != (Quantity{}) {
		if b.RotPeriod, err = params.RotPeriod.Seconds(); err != nil {
			return Body{}, err
		}
	}
	if params.Mass != (Quantity{}) {
		if b.mass, err = params.Mass.Kilograms(); err != nil {
			return Body{}, err
		}
	}
	if params.RefDensity != (Quantity{}) {
		if b.Atm.RefDensity, err = params.RefDensity.KgPerKm3(); err != nil {
			return Body{}, err
		}
	}
	if params.ScaleHeight != (Quantity{}) {
		if b.Atm.ScaleHeight, err = params.ScaleHeight.Kilometers(); err != nil {
			return Body{}, err
		}
	}
	return b, nil
}

// FromRelative derives a new body whose μ and radius are ratios of a
// reference body's, for what-if scenarios with scaled masses and radii.
func FromRelative(reference Body, name, parent string, kRatio, rRatio float64) Body {
	b := reference
	b.Name = name
	b.parent = parent
	b.μ = reference.μ * kRatio
	b.mass = reference.Mass() * kRatio
	b.Radius = reference.Radius * rRatio
	b.PolarRadius = reference.PolarRadius * rRatio
	b.MeanRadius = reference.MeanRadius * rRatio
	return b
}

// BodyFromString returns the registered body from its name. Lookups are
// deterministic: the same name always returns a value-equal record.
func BodyFromString(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	default:
		return Body{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions. Radii and semi-major axes in km, μ in km³/s², rotational
periods in seconds. */

// Sun is our closest star.
var Sun = Body{Name: "Sun", Radius: 695700, a: -1, μ: 1.32712440017987e11, mass: 1.98892e30, RotPeriod: 25.38 * 86400, SOI: -1, J2: 2.20e-7}

// Mercury is hot.
var Mercury = Body{Name: "Mercury", parent: "Sun", Radius: 2439.7, PolarRadius: 2437.2, MeanRadius: 2439.7, a: 57909083, μ: 2.2032e4, RotPeriod: 58.6462 * 86400, tilt: 0.034, SOI: 0.112e6}

// Venus is poisonous.
var Venus = Body{Name: "Venus", parent: "Sun", Radius: 6051.8, PolarRadius: 6051.8, MeanRadius: 6051.8, a: 108208601, μ: 3.24858599e5, RotPeriod: -243.018 * 86400, tilt: 177.36, SOI: 0.616e6, J2: 0.000027}

// Earth is home.
var Earth = Body{Name: "Earth", parent: "Sun", Radius: 6378.1363, PolarRadius: 6356.7523, MeanRadius: 6371.0084, a: 149598023, μ: 3.98600433e5, mass: 5.97219e24, RotPeriod: 0.9972698 * 86400, tilt: 23.4, SOI: 924645.0, J2: 1082.6269e-6, J3: -2.5324e-6, J4: -1.6204e-6, Atm: Atmosphere{RefDensity: 1.225e9, ScaleHeight: 8.5}}

// Moon is a former piece of home.
var Moon = Body{Name: "Moon", parent: "Earth", Radius: 1737.4, PolarRadius: 1735.97, MeanRadius: 1737.4, a: 384400, μ: 4902.800066, RotPeriod: 27.321661 * 86400, tilt: 6.68, SOI: 66100, J2: 202.7e-6}

// Mars is the vacation place.
var Mars = Body{Name: "Mars", parent: "Sun", Radius: 3396.19, PolarRadius: 3376.2, MeanRadius: 3389.5, a: 227939282.5616, μ: 4.28283100e4, RotPeriod: 1.02595675 * 86400, tilt: 25.19, SOI: 576000, J2: 1964e-6, J3: 36e-6, J4: -18e-6}

// Jupiter is big.
var Jupiter = Body{Name: "Jupiter", parent: "Sun", Radius: 71492.0, PolarRadius: 66854, MeanRadius: 69911, a: 778298361, μ: 1.266865361e8, mass: 1.89813e27, RotPeriod: 0.41354 * 86400, tilt: 3.13, SOI: 48.2e6, J2: 0.01475, J4: -0.00058}

// Saturn floats and that's really cool.
var Saturn = Body{Name: "Saturn", parent: "Sun", Radius: 60268.0, PolarRadius: 54364, MeanRadius: 58232, a: 1429394133, μ: 3.7931208e7, RotPeriod: 0.4375 * 86400, tilt: 26.73, SOI: 54.5e6, J2: 0.01645, J4: -0.001}

// Uranus is no joke.
var Uranus = Body{Name: "Uranus", parent: "Sun", Radius: 25559.0, PolarRadius: 24973, MeanRadius: 25362, a: 2875038615, μ: 5.7939513e6, RotPeriod: -0.65 * 86400, tilt: 97.77, SOI: 51.9e6, J2: 0.012}

// Neptune is the last planet.
var Neptune = Body{Name: "Neptune", parent: "Sun", Radius: 24764.0, PolarRadius: 24341, MeanRadius: 24622, a: 4504449769, μ: 6.836529e6, RotPeriod: 0.768 * 86400, tilt: 28.32, SOI: 86.2e6, J2: 3411e-6}

// Pluto is not a planet and had that down ranking coming.
var Pluto = Body{Name: "Pluto", parent: "Sun", Radius: 1188.3, PolarRadius: 1188.3, MeanRadius: 1188.3, a: 5915799000, μ: 9.e2, RotPeriod: -6.3867 * 86400, tilt: 122.53, SOI: 1}
