package poliastro

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"

	"github.com/Pybonacci/poliastro/integrator"
)

const (
	// StepSize is the default fixed step size of propagation.
	StepSize = 10 * time.Second
)

/* Handles the astrodynamical propagations. */

// Method selects the propagation scheme.
type Method uint8

const (
	// Kepler propagates analytically through the mean anomaly. It is exact
	// for two-body motion and ignores all perturbation models.
	Kepler Method = iota
	// RK4 propagates numerically with a fixed step Runge-Kutta 4 scheme.
	RK4
	// Cowell propagates numerically with the adaptive RKF7(8) scheme.
	Cowell
)

func (m Method) String() string {
	switch m {
	case Kepler:
		return "Kepler"
	case RK4:
		return "RK4"
	case Cowell:
		return "Cowell"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// Propagation defines a propagation and runs it.
type Propagation struct {
	Orbit                      *Orbit // As pointer because the orbit changes during propagation.
	Method                     Method
	StartDT, StopDT, CurrentDT time.Time
	RelTol, AbsTol             float64 // Cowell tolerances, defaulted when zero
	MaxSteps                   uint64  // Cowell step budget, defaulted when zero
	perts                      Perturbations
	step                       time.Duration // fixed time step (Kepler sampling and RK4)
	histChan                   chan (State)
	wg                         sync.WaitGroup
	logger                     kitlog.Logger
	stats                      integrator.Stats
	collided                   bool
}

// NewPropagation returns a new Propagation starting at the orbit's epoch
// with the default step size.
func NewPropagation(o *Orbit, end time.Time, method Method, perts Perturbations, conf ExportConfig) *Propagation {
	return NewPrecisePropagation(o, end, method, perts, StepSize, conf)
}

// NewPrecisePropagation returns a new Propagation with a custom time step.
func NewPrecisePropagation(o *Orbit, end time.Time, method Method, perts Perturbations, step time.Duration, conf ExportConfig) *Propagation {
	// Must switch to UTC as all ephemeris data is in UTC.
	start := o.Epoch
	if start.Location() != time.UTC {
		start = start.UTC()
	}
	if end.Location() != time.UTC {
		end = end.UTC()
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "attractor", o.Origin.Name, "method", method.String())
	p := &Propagation{Orbit: o, Method: method, StartDT: start, StopDT: end, CurrentDT: start, perts: perts, step: step, logger: klog}
	// If no filepath is provided, then no output will be written.
	if !conf.IsUseless() {
		p.histChan = make(chan (State), 1000) // a 1k entry buffer
		p.wg.Add(1)
		// Capture the channel now: finalize nils p.histChan, and the
		// goroutine may not be scheduled before that happens.
		go func(histChan chan State) {
			defer p.wg.Done()
			StreamStates(conf, histChan)
		}(p.histChan)
		// Write the first data point.
		p.histChan <- State{p.CurrentDT, *o}
	}
	return p
}

// LogStatus logs the current state of the propagation.
func (p *Propagation) LogStatus() {
	p.logger.Log("level", "info", "subsys", "astro", "date", p.CurrentDT, "orbit", p.Orbit)
}

// Propagate runs the propagation until StopDT is reached and updates the
// orbit in place. Numerical failures of the adaptive method surface as an
// IntegrationError carrying the last reached time and state; an epoch
// beyond the validity window of a third-body ephemeris is rejected up
// front with an EpochOutOfRangeError.
func (p *Propagation) Propagate() (err error) {
	if !p.StopDT.After(p.StartDT) {
		p.finalize()
		if p.StopDT.Equal(p.StartDT) {
			return nil
		}
		return fmt.Errorf("propagation end %s before start %s", p.StopDT, p.StartDT)
	}
	if wStart, wEnd, bound := p.perts.window(); bound {
		if p.StartDT.Before(wStart) || p.StopDT.After(wEnd) {
			epoch := p.StartDT
			if p.StopDT.After(wEnd) {
				epoch = p.StopDT
			}
			// The streaming goroutine already holds the initial state.
			p.finalize()
			return EpochOutOfRangeError{Epoch: epoch, Start: wStart, End: wEnd}
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = IntegrationError{Reason: fmt.Sprintf("%v", r), LastTime: p.CurrentDT, LastState: p.state(), Steps: p.stats.Steps, Rejected: p.stats.Rejected}
			p.finalize()
		}
	}()
	// Add a ticker status report based on the duration of the simulation.
	p.LogStatus()
	ticker := time.NewTicker(10 * time.Second)
	tickerQuit := make(chan struct{})
	defer func() {
		ticker.Stop()
		close(tickerQuit)
	}()
	go func() {
		for {
			select {
			case <-ticker.C:
				p.LogStatus()
			case <-tickerQuit:
				return
			}
		}
	}()
	switch p.Method {
	case Kepler:
		err = p.propagateKepler()
	case RK4:
		ode.NewRK4(0, p.step.Seconds(), p).Solve() // Blocking.
	case Cowell:
		err = p.propagateCowell()
	default:
		err = fmt.Errorf("unknown propagation method %s", p.Method)
	}
	duration := p.CurrentDT.Sub(p.StartDT)
	durStr := duration.String()
	if duration.Hours() > 24 {
		durStr += fmt.Sprintf(" (~%.3fd)", duration.Hours()/24)
	}
	p.logger.Log("level", "notice", "subsys", "astro", "status", "finished", "duration", durStr)
	p.LogStatus()
	p.finalize()
	return err
}

// finalize closes the history channel (if any) and waits until all the
// files are written.
func (p *Propagation) finalize() {
	if p.histChan != nil {
		close(p.histChan)
		p.histChan = nil
	}
	p.wg.Wait()
}

// propagateKepler advances analytically, pushing intermediate samples to
// the history channel at the fixed step.
func (p *Propagation) propagateKepler() error {
	initial := *p.Orbit
	if p.histChan != nil {
		for dt := p.StartDT.Add(p.step); dt.Before(p.StopDT); dt = dt.Add(p.step) {
			// Always propagate from the initial orbit so that the per-sample
			// solver error does not accumulate.
			sample, err := PropagateKepler(&initial, dt.Sub(p.StartDT))
			if err != nil {
				return err
			}
			p.CurrentDT = dt
			p.histChan <- State{dt, *sample}
		}
	}
	final, err := PropagateKepler(&initial, p.StopDT.Sub(p.StartDT))
	if err != nil {
		return err
	}
	*p.Orbit = *final
	p.CurrentDT = p.StopDT
	if p.histChan != nil {
		p.histChan <- State{p.StopDT, *final}
	}
	return nil
}

// propagateCowell advances with the adaptive RKF7(8) integrator.
func (p *Propagation) propagateCowell() error {
	cfg := integrator.DefaultConfig()
	if p.RelTol > 0 {
		cfg.RelTol = p.RelTol
	}
	if p.AbsTol > 0 {
		cfg.AbsTol = p.AbsTol
	}
	if p.MaxSteps > 0 {
		cfg.MaxSteps = p.MaxSteps
	}
	rkf, err := integrator.NewRKF78(cfg)
	if err != nil {
		return err
	}
	rkf.OnStep = func(t float64, y []float64) {
		p.CurrentDT = p.StartDT.Add(secsToDuration(t))
		p.update(y)
	}
	span := p.StopDT.Sub(p.StartDT).Seconds()
	final, stats, err := rkf.Integrate(p.Func, p.GetState(), 0, span)
	p.stats = stats
	if err != nil {
		if fail, is := err.(*integrator.FailureError); is {
			return IntegrationError{Reason: fail.Reason, LastTime: p.StartDT.Add(secsToDuration(fail.T)), LastState: fail.Y, Steps: stats.Steps, Rejected: stats.Rejected}
		}
		return err
	}
	p.CurrentDT = p.StopDT
	p.update(final)
	return nil
}

// Stats returns the work performed by the adaptive integrator.
func (p *Propagation) Stats() integrator.Stats {
	return p.stats
}

func (p *Propagation) state() []float64 {
	R, V := p.Orbit.RV()
	return []float64{R[0], R[1], R[2], V[0], V[1], V[2]}
}

func secsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}

// GetState returns the 6-dimensional Cartesian state for the integrator.
func (p *Propagation) GetState() []float64 {
	return p.state()
}

// SetState sets the updated state. The epoch is tracked by Stop for the
// fixed step integrator, so t is unused here.
func (p *Propagation) SetState(t float64, s []float64) {
	p.update(s)
}

func (p *Propagation) update(s []float64) {
	R := []float64{s[0], s[1], s[2]}
	V := []float64{s[3], s[4], s[5]}
	*p.Orbit = *NewOrbitFromRV(R, V, p.Orbit.Origin, p.CurrentDT) // Deref is important.

	// Orbit sanity checks and warnings.
	if !p.collided && p.Orbit.RNorm() < p.Orbit.Origin.Radius {
		p.collided = true
		p.logger.Log("level", "critical", "subsys", "astro", "collided", p.Orbit.Origin.Name, "dt", p.CurrentDT, "r", p.Orbit.RNorm(), "radius", p.Orbit.Origin.Radius)
	} else if p.collided && p.Orbit.RNorm() > p.Orbit.Origin.Radius*1.1 {
		// Now further from the 10% dead zone
		p.collided = false
		p.logger.Log("level", "critical", "subsys", "astro", "revived", p.Orbit.Origin.Name, "dt", p.CurrentDT)
	}

	if p.histChan != nil {
		p.histChan <- State{p.CurrentDT, *p.Orbit}
	}
}

// Stop implements the stop call of the fixed step integrator.
func (p *Propagation) Stop(t float64) bool {
	p.CurrentDT = p.CurrentDT.Add(p.step)
	return p.CurrentDT.Sub(p.StopDT).Nanoseconds() > 0
}

// Func is the integration function: two-body gravity plus the summed
// perturbing accelerations.
func (p *Propagation) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 6) // init return vector
	dt := p.CurrentDT
	if p.Method == Cowell {
		// The adaptive integrator reports absolute stage times.
		dt = p.StartDT.Add(secsToDuration(t))
	}
	r3 := math.Pow(norm(f[0:3]), 3)
	bodyAcc := -p.Orbit.Origin.μ / r3
	// d\vec{R}/dt
	fDot[0] = f[3]
	fDot[1] = f[4]
	fDot[2] = f[5]
	// d\vec{V}/dt
	fDot[3] = bodyAcc * f[0]
	fDot[4] = bodyAcc * f[1]
	fDot[5] = bodyAcc * f[2]

	pert := p.perts.Accel(dt, f, p.Orbit.Origin.μ)
	for i := 0; i < 3; i++ {
		fDot[i+3] += pert[i]
	}
	for i := 0; i < 6; i++ {
		if math.IsNaN(fDot[i]) {
			panic(fmt.Errorf("fDot[%d]=NaN @ dt=%s\nf=%+v", i, dt, f))
		}
	}
	return
}

// Propagate is the one-call version: it propagates the orbit to the given
// epoch with the requested method and returns the resulting orbit.
func Propagate(o *Orbit, end time.Time, method Method, perts Perturbations) (*Orbit, error) {
	prop := *o
	pgn := NewPrecisePropagation(&prop, end, method, perts, StepSize, ExportConfig{})
	if err := pgn.Propagate(); err != nil {
		return nil, err
	}
	return &prop, nil
}
