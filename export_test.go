package poliastro

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gonum/floats"
)

func TestSampleTrajectory(t *testing.T) {
	o, err := NewOrbitFromOE(42164.0, 0.0, 0.0, 0.0, 0.0, 0.0, Earth, testEpoch)
	if err != nil {
		t.Fatal(err)
	}
	end := testEpoch.Add(24 * time.Hour)
	points, err := SampleTrajectory(*o, 10, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(points))
	}
	h := end.Sub(testEpoch) / 10
	for k, pt := range points {
		if !pt.DT.Equal(testEpoch.Add(time.Duration(k) * h)) {
			t.Fatalf("point %d at %s, expected uniform spacing of %s", k, pt.DT, h)
		}
		// Positions are in meters on a circular geosynchronous orbit.
		if r := norm(pt.Position); !floats.EqualWithinRel(r, 42164.0e3, 1e-6) {
			t.Fatalf("point %d at radius %f m", k, r)
		}
	}
	// The first sample is the initial state itself.
	R := o.R()
	for i := 0; i < 3; i++ {
		if math.Abs(points[0].Position[i]-R[i]*1e3) > 1e-6 {
			t.Fatalf("first sample %+v does not match the initial position %+v", points[0].Position, R)
		}
	}
}

func TestSampleTrajectoryValidation(t *testing.T) {
	o, _ := NewOrbitFromOE(42164.0, 0.0, 0.0, 0.0, 0.0, 0.0, Earth, testEpoch)
	if _, err := SampleTrajectory(*o, 0, testEpoch.Add(time.Hour)); err == nil {
		t.Fatal("zero samples accepted")
	}
	if _, err := SampleTrajectory(*o, 10, testEpoch); err == nil {
		t.Fatal("end equal to the epoch accepted")
	}
	if _, err := SampleTrajectory(*o, 10, testEpoch.Add(-time.Hour)); err == nil {
		t.Fatal("end before the epoch accepted")
	}
}

func TestExportConfigIsUseless(t *testing.T) {
	if !(ExportConfig{}).IsUseless() {
		t.Fatal("empty config should be useless")
	}
	if (ExportConfig{AsCSV: true}).IsUseless() {
		t.Fatal("CSV config should not be useless")
	}
	if (ExportConfig{Traj: true}).IsUseless() {
		t.Fatal("trajectory config should not be useless")
	}
}

func TestStreamStatesCSV(t *testing.T) {
	conf := ExportConfig{Filename: "streamtest", AsCSV: true}
	fname := "./orbital-elements-streamtest.csv"
	defer os.Remove(fname)
	stateChan := make(chan State, 10)
	done := make(chan struct{})
	go func() {
		StreamStates(conf, stateChan)
		close(done)
	}()
	o, _ := NewOrbitFromOE(7000.0, 0.01, 30.0, 10.0, 5.0, 0.0, Earth, testEpoch)
	for k := 0; k < 3; k++ {
		sample, err := PropagateKepler(o, time.Duration(k)*time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		stateChan <- State{DT: sample.Epoch, Orbit: *sample}
	}
	close(stateChan)
	<-done
	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	contents := string(data)
	if !strings.Contains(contents, "time,a,e,i,Omega,omega,nu") {
		t.Fatal("missing CSV header")
	}
	if !strings.Contains(contents, "7000.000") {
		t.Fatal("missing semi-major axis record")
	}
	if !strings.Contains(contents, "# Simulation time end") {
		t.Fatal("missing end-of-simulation footer")
	}
}
