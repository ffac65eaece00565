package integrator

import (
	"math"
	"testing"
)

func TestRKF78ExponentialDecay(t *testing.T) {
	rk, err := NewRKF78(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	decay := func(t float64, y []float64) []float64 {
		return []float64{-y[0]}
	}
	y, stats, err := rk.Integrate(decay, []float64{1}, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	if exp := math.Exp(-5); math.Abs(y[0]-exp) > 1e-9 {
		t.Fatalf("got %g, expected %g", y[0], exp)
	}
	if stats.Steps == 0 {
		t.Fatal("no steps recorded")
	}
	if stats.Evaluations != stages*(stats.Steps+stats.Rejected) {
		t.Fatalf("evaluation count %d inconsistent with %d steps and %d rejections", stats.Evaluations, stats.Steps, stats.Rejected)
	}
}

func TestRKF78HarmonicOscillator(t *testing.T) {
	rk, err := NewRKF78(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	oscillator := func(t float64, y []float64) []float64 {
		return []float64{y[1], -y[0]}
	}
	var lastT float64
	rk.OnStep = func(t float64, y []float64) {
		if t <= lastT {
			panic("non monotonic accepted step")
		}
		lastT = t
	}
	y, _, err := rk.Integrate(oscillator, []float64{1, 0}, 0, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	// One full period returns to the initial state.
	if math.Abs(y[0]-1) > 1e-8 || math.Abs(y[1]) > 1e-8 {
		t.Fatalf("after one period: %+v", y)
	}
	if math.Abs(lastT-2*math.Pi) > 1e-9 {
		t.Fatalf("last accepted step at t=%f, expected the end time", lastT)
	}
}

func TestRKF78StepBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 2
	rk, err := NewRKF78(cfg)
	if err != nil {
		t.Fatal(err)
	}
	decay := func(t float64, y []float64) []float64 {
		return []float64{-y[0]}
	}
	y, stats, err := rk.Integrate(decay, []float64{1}, 0, 1e6)
	if err == nil {
		t.Fatal("budget of two steps over a huge interval succeeded")
	}
	fail, ok := err.(*FailureError)
	if !ok {
		t.Fatalf("unexpected error type %T", err)
	}
	if fail.Reason != "step budget exhausted" {
		t.Fatalf("unexpected reason %q", fail.Reason)
	}
	if fail.T < 0 || fail.T >= 1e6 {
		t.Fatalf("failure time %f outside the interval", fail.T)
	}
	if len(fail.Y) != 1 || fail.Y[0] != y[0] {
		t.Fatal("failure state does not match the returned state")
	}
	if stats.Steps+stats.Rejected != 2 {
		t.Fatalf("expected exactly two attempted steps, got %d+%d", stats.Steps, stats.Rejected)
	}
}

func TestRKF78Validation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelTol = 0
	if _, err := NewRKF78(cfg); err == nil {
		t.Fatal("zero relative tolerance accepted")
	}
	cfg = DefaultConfig()
	cfg.AbsTol = -1
	if _, err := NewRKF78(cfg); err == nil {
		t.Fatal("negative absolute tolerance accepted")
	}
	cfg = DefaultConfig()
	cfg.InitStep = 0
	if _, err := NewRKF78(cfg); err == nil {
		t.Fatal("zero initial step accepted")
	}
	rk, err := NewRKF78(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	identity := func(t float64, y []float64) []float64 { return []float64{1} }
	if _, _, err := rk.Integrate(identity, []float64{0}, 1, 1); err == nil {
		t.Fatal("empty interval accepted")
	}
	if _, _, err := rk.Integrate(identity, []float64{0}, 1, 0); err == nil {
		t.Fatal("reversed interval accepted")
	}
}

func TestRKF78TinySpan(t *testing.T) {
	// A span below the step floor completes in one clamped step; the
	// controller shrinking the next (never taken) step must not be
	// reported as an underflow.
	rk, err := NewRKF78(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	linear := func(t float64, y []float64) []float64 { return []float64{1} }
	y, stats, err := rk.Integrate(linear, []float64{0}, 0, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(y[0]-1e-9) > 1e-18 {
		t.Fatalf("got %g, expected 1e-9", y[0])
	}
	if stats.Steps != 1 {
		t.Fatalf("expected a single clamped step, got %d", stats.Steps)
	}
}

func TestRKF78MaxStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxStep = 0.5
	rk, err := NewRKF78(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var largest, prev float64
	rk.OnStep = func(t float64, y []float64) {
		if h := t - prev; h > largest {
			largest = h
		}
		prev = t
	}
	linear := func(t float64, y []float64) []float64 { return []float64{1} }
	y, _, err := rk.Integrate(linear, []float64{0}, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(y[0]-10) > 1e-10 {
		t.Fatalf("got %g, expected 10", y[0])
	}
	if largest > 0.5+1e-12 {
		t.Fatalf("step of %f exceeds the cap", largest)
	}
}
