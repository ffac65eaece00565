package poliastro

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/meeus/moonposition"
	"github.com/soniakeys/meeus/planetposition"
	"github.com/soniakeys/meeus/pluto"
)

// Ephemeris is a cubic Hermite interpolant of the position of a body
// relative to a center over a fixed time window. Building one samples the
// underlying theory (VSOP87 for the planets, ELP truncation for the Moon)
// once, so that queries inside the propagation loop are a handful of
// multiplications instead of a full series evaluation.
type Ephemeris struct {
	Body   Body
	Center Body
	start  time.Time
	end    time.Time
	step   float64     // seconds between samples
	pos    [][]float64 // sampled positions, km
	vel    [][]float64 // sampled velocities from finite differences, km/s
}

// NewEphemeris samples the position of body relative to center between
// start and end at the given rate and returns the interpolant. Planets
// other than the Moon need the VSOP87 data files, enabled via the
// configuration; the Moon about the Earth works without any data file.
func NewEphemeris(body, center Body, start, end time.Time, samplesPerDay int) (*Ephemeris, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("ephemeris window end %s not after start %s", end, start)
	}
	if samplesPerDay <= 0 {
		return nil, fmt.Errorf("samples per day must be positive (%d)", samplesPerDay)
	}
	if body.Name == center.Name {
		return nil, fmt.Errorf("body and center are both %s", body.Name)
	}
	span := end.Sub(start).Seconds()
	num := int(math.Ceil(span/86400*float64(samplesPerDay))) + 1
	if num < 4 {
		num = 4
	}
	step := span / float64(num-1)
	e := &Ephemeris{Body: body, Center: center, start: start, end: end, step: step}
	e.pos = make([][]float64, num)
	for i := 0; i < num; i++ {
		dt := start.Add(time.Duration(float64(i)*step*1e9) * time.Nanosecond)
		p, err := relativePosition(body, center, dt)
		if err != nil {
			return nil, err
		}
		e.pos[i] = p
	}
	// Central differences inside the window, one sided at the edges.
	e.vel = make([][]float64, num)
	for i := 0; i < num; i++ {
		v := make([]float64, 3)
		for j := 0; j < 3; j++ {
			switch i {
			case 0:
				v[j] = (e.pos[1][j] - e.pos[0][j]) / step
			case num - 1:
				v[j] = (e.pos[num-1][j] - e.pos[num-2][j]) / step
			default:
				v[j] = (e.pos[i+1][j] - e.pos[i-1][j]) / (2 * step)
			}
		}
		e.vel[i] = v
	}
	return e, nil
}

// Window returns the validity window of this interpolant.
func (e *Ephemeris) Window() (start, end time.Time) {
	return e.start, e.end
}

// Position returns the interpolated position of the body relative to the
// center at the given epoch, in km. Queries outside the window return an
// EphemerisRangeError.
func (e *Ephemeris) Position(dt time.Time) ([]float64, error) {
	if dt.Before(e.start) || dt.After(e.end) {
		return nil, EphemerisRangeError{Queried: dt, Start: e.start, End: e.end}
	}
	return e.positionAt(dt), nil
}

// Velocity returns the interpolated velocity of the body relative to the
// center at the given epoch, in km/s.
func (e *Ephemeris) Velocity(dt time.Time) ([]float64, error) {
	if dt.Before(e.start) || dt.After(e.end) {
		return nil, EphemerisRangeError{Queried: dt, Start: e.start, End: e.end}
	}
	i, s := e.locate(dt)
	v := make([]float64, 3)
	h := e.step
	for j := 0; j < 3; j++ {
		// Derivative of the Hermite basis functions, divided by h.
		v[j] = (6*s*s-6*s)*e.pos[i][j]/h + (3*s*s-4*s+1)*e.vel[i][j] +
			(-6*s*s+6*s)*e.pos[i+1][j]/h + (3*s*s-2*s)*e.vel[i+1][j]
	}
	return v, nil
}

// positionAt is the unchecked fast path used by the perturbation models
// once the propagator has validated the window.
func (e *Ephemeris) positionAt(dt time.Time) []float64 {
	i, s := e.locate(dt)
	p := make([]float64, 3)
	h := e.step
	s2 := s * s
	s3 := s2 * s
	for j := 0; j < 3; j++ {
		p[j] = (2*s3-3*s2+1)*e.pos[i][j] + (s3-2*s2+s)*h*e.vel[i][j] +
			(-2*s3+3*s2)*e.pos[i+1][j] + (s3-s2)*h*e.vel[i+1][j]
	}
	return p
}

// locate returns the sample interval holding dt and the normalized
// abscissa within it. Epochs slightly outside the window clamp to the
// nearest interval.
func (e *Ephemeris) locate(dt time.Time) (int, float64) {
	t := dt.Sub(e.start).Seconds()
	i := int(t / e.step)
	if i < 0 {
		i = 0
	} else if i > len(e.pos)-2 {
		i = len(e.pos) - 2
	}
	return i, (t - float64(i)*e.step) / e.step
}

// relativePosition returns the position of body relative to center at dt,
// in km. The L,B,R theories are evaluated in the ecliptic frame and no
// rotation to the equator is applied, the same frame simplification the
// force models make.
func relativePosition(body, center Body, dt time.Time) ([]float64, error) {
	// The Moon about the Earth (and vice versa) short-circuits the
	// heliocentric route so that no VSOP87 file is needed.
	if center.Name == "Earth" && body.Name == "Moon" {
		return geocentricMoon(dt), nil
	}
	if center.Name == "Moon" && body.Name == "Earth" {
		m := geocentricMoon(dt)
		return []float64{-m[0], -m[1], -m[2]}, nil
	}
	rb, err := heliocentricPosition(body, dt)
	if err != nil {
		return nil, err
	}
	rc, err := heliocentricPosition(center, dt)
	if err != nil {
		return nil, err
	}
	return []float64{rb[0] - rc[0], rb[1] - rc[1], rb[2] - rc[2]}, nil
}

// geocentricMoon returns the geocentric position of the Moon in km from
// the truncated ELP theory in Meeus chapter 47.
func geocentricMoon(dt time.Time) []float64 {
	λ, β, Δ := moonposition.Position(julian.TimeToJD(dt))
	sβ, cβ := math.Sincos(β.Rad())
	sλ, cλ := math.Sincos(λ.Rad())
	return []float64{Δ * cβ * cλ, Δ * cβ * sλ, Δ * sβ}
}

// heliocentricPosition returns the heliocentric position of the body in
// km. The Sun is trivially at the origin; Mercury through Neptune use the
// VSOP87 files, Pluto its dedicated theory, and the Moon rides on the
// Earth.
func heliocentricPosition(b Body, dt time.Time) ([]float64, error) {
	switch b.Name {
	case "Sun":
		return []float64{0, 0, 0}, nil
	case "Pluto":
		l, lat, r := pluto.Heliocentric(julian.TimeToJD(dt))
		return sphericalLBR(l.Rad(), lat.Rad(), r*AU), nil
	case "Moon":
		earth, err := heliocentricPosition(Earth, dt)
		if err != nil {
			return nil, err
		}
		m := geocentricMoon(dt)
		return []float64{earth[0] + m[0], earth[1] + m[1], earth[2] + m[2]}, nil
	}
	pp, err := loadVSOP87(b)
	if err != nil {
		return nil, err
	}
	l, lat, r := pp.Position2000(julian.TimeToJD(dt))
	return sphericalLBR(l.Rad(), lat.Rad(), r*AU), nil
}

func sphericalLBR(l, b, r float64) []float64 {
	sb, cb := math.Sincos(b)
	sl, cl := math.Sincos(l)
	return []float64{r * cb * cl, r * cb * sl, r * sb}
}

var (
	vsop87Mu    sync.Mutex
	vsop87Cache = map[string]*planetposition.V87Planet{}
)

// loadVSOP87 loads (once) the VSOP87 file for a planet. The data files
// are large, so whoever needs a planet first pays the parse cost and the
// result is shared.
func loadVSOP87(b Body) (*planetposition.V87Planet, error) {
	vsop87Mu.Lock()
	defer vsop87Mu.Unlock()
	if pp, found := vsop87Cache[b.Name]; found {
		return pp, nil
	}
	if !pConfig().VSOP87 {
		return nil, fmt.Errorf("position of %s needs the VSOP87 data files, not enabled in the configuration", b.Name)
	}
	var num int
	switch b.Name {
	case "Mercury":
		num = 1
	case "Venus":
		num = 2
	case "Earth":
		num = 3
	case "Mars":
		num = 4
	case "Jupiter":
		num = 5
	case "Saturn":
		num = 6
	case "Uranus":
		num = 7
	case "Neptune":
		num = 8
	default:
		return nil, fmt.Errorf("no VSOP87 theory for %s", b.Name)
	}
	pp, err := planetposition.LoadPlanetPath(num-1, pConfig().VSOP87Dir)
	if err != nil {
		return nil, fmt.Errorf("could not load VSOP87 planet %d: %s", num, err)
	}
	vsop87Cache[b.Name] = pp
	return pp, nil
}
