// Package integrator provides the adaptive Runge-Kutta-Fehlberg 7(8)
// integrator used by the numerical propagation.
package integrator

import (
	"fmt"
	"math"
)

// Derivative evaluates the vector field f(t, y) and returns a new slice.
type Derivative func(t float64, y []float64) []float64

// StepFunc is called after every accepted step with the current time and state.
type StepFunc func(t float64, y []float64)

// Config holds the step and tolerance settings of an integration.
type Config struct {
	InitStep float64 // initial step size guess
	MinStep  float64 // below this the integration fails
	MaxStep  float64 // zero means no upper bound
	RelTol   float64 // relative error tolerance
	AbsTol   float64 // absolute error tolerance
	MaxSteps uint64  // total step budget, accepted and rejected
}

// DefaultConfig returns the settings used when the caller has no opinion.
func DefaultConfig() Config {
	return Config{InitStep: 60, MinStep: 1e-8, RelTol: 1e-11, AbsTol: 1e-12, MaxSteps: 1000000}
}

// Stats reports the work performed by an integration.
type Stats struct {
	Steps       uint64 // accepted steps
	Rejected    uint64 // rejected trial steps
	Evaluations uint64 // vector field evaluations
}

// FailureError reports an integration which could not meet the tolerance
// within its budget, along with the last reached time and state.
type FailureError struct {
	T      float64
	Y      []float64
	Stats  Stats
	Reason string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("integration failed at t=%f: %s", e.T, e.Reason)
}

// RKF78 is an adaptive step explicit Runge-Kutta-Fehlberg integrator of
// order 7 with an 8th order error estimator (NASA TR R-287 coefficients),
// advancing on the higher order solution.
type RKF78 struct {
	cfg    Config
	OnStep StepFunc // optional accepted-step callback
}

// NewRKF78 returns a new integrator instance.
func NewRKF78(cfg Config) (*RKF78, error) {
	if cfg.RelTol <= 0 || cfg.AbsTol <= 0 {
		return nil, fmt.Errorf("tolerances must be positive (rel=%g abs=%g)", cfg.RelTol, cfg.AbsTol)
	}
	if cfg.InitStep <= 0 {
		return nil, fmt.Errorf("initial step must be positive (%g)", cfg.InitStep)
	}
	if cfg.MinStep <= 0 {
		cfg.MinStep = 1e-8
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = 1000000
	}
	return &RKF78{cfg: cfg}, nil
}

// Integrate advances y0 from t0 to t1 and returns the final state along
// with the integration statistics. A *FailureError is returned when the
// step budget is exhausted or the step size underflows; its Y field holds
// the last accepted state.
func (r *RKF78) Integrate(f Derivative, y0 []float64, t0, t1 float64) ([]float64, Stats, error) {
	var stats Stats
	if t1 <= t0 {
		return nil, stats, fmt.Errorf("end time %f not after start time %f", t1, t0)
	}
	n := len(y0)
	y := make([]float64, n)
	copy(y, y0)
	t := t0
	h := r.cfg.InitStep
	if r.cfg.MaxStep > 0 && h > r.cfg.MaxStep {
		h = r.cfg.MaxStep
	}
	if h > t1-t0 {
		h = t1 - t0
	}
	k := make([][]float64, stages)
	yTrial := make([]float64, n)
	for t < t1 {
		if stats.Steps+stats.Rejected >= r.cfg.MaxSteps {
			return y, stats, &FailureError{t, y, stats, "step budget exhausted"}
		}
		if t+h > t1 {
			h = t1 - t
		}
		// Evaluate the thirteen stages.
		for s := 0; s < stages; s++ {
			for i := 0; i < n; i++ {
				yTrial[i] = y[i]
				for j := 0; j < s; j++ {
					if β[s][j] != 0 {
						yTrial[i] += h * β[s][j] * k[j][i]
					}
				}
			}
			k[s] = f(t+α[s]*h, yTrial)
			stats.Evaluations++
		}
		// 8th order solution and embedded error estimate.
		errNorm := 0.0
		for i := 0; i < n; i++ {
			yNew := y[i]
			for s := 0; s < stages; s++ {
				if b8[s] != 0 {
					yNew += h * b8[s] * k[s][i]
				}
			}
			errEst := h * errCoeff * (k[0][i] + k[10][i] - k[11][i] - k[12][i])
			scale := r.cfg.AbsTol + r.cfg.RelTol*math.Max(math.Abs(y[i]), math.Abs(yNew))
			if e := math.Abs(errEst) / scale; e > errNorm {
				errNorm = e
			}
			yTrial[i] = yNew
		}
		if errNorm <= 1 {
			t += h
			copy(y, yTrial)
			stats.Steps++
			if r.OnStep != nil {
				r.OnStep(t, y)
			}
		} else {
			stats.Rejected++
		}
		// Standard step size controller for an 8th order advance.
		factor := 4.0
		if errNorm > 0 {
			factor = 0.9 * math.Pow(errNorm, -1/8.)
			if factor > 4 {
				factor = 4
			} else if factor < 0.2 {
				factor = 0.2
			}
		}
		h *= factor
		if r.cfg.MaxStep > 0 && h > r.cfg.MaxStep {
			h = r.cfg.MaxStep
		}
		// The controller may shrink the final clamped step below the
		// floor; that only matters if there is still time to cover.
		if t < t1 && h < r.cfg.MinStep {
			return y, stats, &FailureError{t, y, stats, fmt.Sprintf("step size underflow (h=%g)", h)}
		}
	}
	return y, stats, nil
}

const stages = 13

// Fehlberg 7(8) tableau, NASA TR R-287.
var α = [stages]float64{0, 2 / 27., 1 / 9., 1 / 6., 5 / 12., 1 / 2., 5 / 6., 1 / 6., 2 / 3., 1 / 3., 1, 0, 1}

var β = [stages][stages - 1]float64{
	{},
	{2 / 27.},
	{1 / 36., 1 / 12.},
	{1 / 24., 0, 1 / 8.},
	{5 / 12., 0, -25 / 16., 25 / 16.},
	{1 / 20., 0, 0, 1 / 4., 1 / 5.},
	{-25 / 108., 0, 0, 125 / 108., -65 / 27., 125 / 54.},
	{31 / 300., 0, 0, 0, 61 / 225., -2 / 9., 13 / 900.},
	{2, 0, 0, -53 / 6., 704 / 45., -107 / 9., 67 / 90., 3},
	{-91 / 108., 0, 0, 23 / 108., -976 / 135., 311 / 54., -19 / 60., 17 / 6., -1 / 12.},
	{2383 / 4100., 0, 0, -341 / 164., 4496 / 1025., -301 / 82., 2133 / 4100., 45 / 82., 45 / 164., 18 / 41.},
	{3 / 205., 0, 0, 0, 0, -6 / 41., -3 / 205., -3 / 41., 3 / 41., 6 / 41., 0},
	{-1777 / 4100., 0, 0, -341 / 164., 4496 / 1025., -289 / 82., 2193 / 4100., 51 / 82., 33 / 164., 12 / 41., 0, 1},
}

// 8th order weights; the 7th order solution differs by the k0/k10 vs
// k11/k12 exchange, which yields the one-line error estimate below.
var b8 = [stages]float64{0, 0, 0, 0, 0, 34 / 105., 9 / 35., 9 / 35., 9 / 280., 9 / 280., 0, 41 / 840., 41 / 840.}

const errCoeff = 41 / 840.
