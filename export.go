package poliastro

import (
	"fmt"
	"os"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// State stores a propagated state.
type State struct {
	DT    time.Time
	Orbit Orbit
}

// ExportConfig configures the exporting of a propagation.
type ExportConfig struct {
	Filename     string
	Traj         bool                  // write an .xyzv interpolated trajectory file
	AsCSV        bool                  // write the orbital elements as CSV
	Timestamp    bool                  // add the creation timestamp to the file names
	CSVAppend    func(st State) string // Custom export (do not include leading comma)
	CSVAppendHdr func() string         // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.Traj && !c.AsCSV
}

// createTrajFile returns a file which requires a defer close statement!
func createTrajFile(filename string, stamped bool, stateDT time.Time) *os.File {
	config := pConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/prop-%s-%d-%02d-%02dT%02d.%02d.%02d.xyzv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/prop-%s.xyzv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a UTC Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s`, time.Now(), stateDT.UTC()))
	return f
}

// createCSVFile returns a file which requires a defer close statement!
func createCSVFile(filename string, conf ExportConfig, stateDT time.Time) *os.File {
	config := pConfig()
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/orbital-elements-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/orbital-elements-%s.csv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are a, e, i, Ω, ω, ν. All angles are in degrees.
#   Simulation time start (UTC): %s
time,a,e,i,Omega,omega,nu`, time.Now(), stateDT.UTC()))
	if conf.CSVAppendHdr != nil {
		f.WriteString("," + conf.CSVAppendHdr())
	}
	return f
}

// StreamStates streams the states of a propagation to the configured files.
// It returns when the channel is closed.
func StreamStates(conf ExportConfig, stateChan <-chan (State)) {
	var prevStatePtr *State
	var f, fAsCSV *os.File
	for {
		state, more := <-stateChan
		if !more {
			// The channel is closed, hence the propagation is over.
			if conf.Traj && f != nil {
				f.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prevStatePtr.DT.UTC()))
				f.Close()
			}
			if conf.AsCSV && fAsCSV != nil {
				fAsCSV.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", prevStatePtr.DT.UTC()))
				fAsCSV.Close()
			}
			return
		}
		if prevStatePtr == nil {
			if conf.Traj {
				f = createTrajFile(conf.Filename, conf.Timestamp, state.DT)
			}
			if conf.AsCSV {
				fAsCSV = createCSVFile(conf.Filename, conf, state.DT)
			}
		} else if state.DT.Sub(prevStatePtr.DT) < StepSize {
			// Only write one datapoint per simulation step.
			continue
		}
		prevStatePtr = &state
		if conf.Traj {
			R, V := state.Orbit.RV()
			asTxt := fmt.Sprintf("%f %f %f %f %f %f %f", julian.TimeToJD(state.DT), R[0], R[1], R[2], V[0], V[1], V[2])
			if _, err := f.WriteString("\n" + asTxt); err != nil {
				panic(err)
			}
		}
		if conf.AsCSV {
			a, e, i, Ω, ω, ν, _, _, _ := state.Orbit.Elements()
			asTxt := fmt.Sprintf("%s,%.3f,%.3f,%.3f,%.3f,%.3f,%.3f", state.DT.UTC().Format("2006-01-02 15:04:05"), a, e, Rad2deg(i), Rad2deg(Ω), Rad2deg(ω), Rad2deg(ν))
			if conf.CSVAppend != nil {
				asTxt += "," + conf.CSVAppend(state)
			}
			if _, err := fAsCSV.WriteString("\n" + asTxt); err != nil {
				panic(err)
			}
		}
	}
}

// TrajectoryPoint is one sample of a trajectory, in meters, in the
// inertial frame centered on the attractor.
type TrajectoryPoint struct {
	DT       time.Time
	Position []float64
}

// SampleTrajectory samples the orbit analytically at N+2 uniformly spaced
// epochs covering [epoch, end] plus one step beyond, with the step
// h = (end - epoch)/N. Positions are converted to meters for consumption
// by visualization toolchains.
func SampleTrajectory(o Orbit, n int, end time.Time) ([]TrajectoryPoint, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive (%d)", n)
	}
	if !end.After(o.Epoch) {
		return nil, fmt.Errorf("sampling end %s not after orbit epoch %s", end, o.Epoch)
	}
	h := end.Sub(o.Epoch) / time.Duration(n)
	points := make([]TrajectoryPoint, n+2)
	for k := 0; k <= n+1; k++ {
		sample, err := PropagateKepler(&o, time.Duration(k)*h)
		if err != nil {
			return nil, err
		}
		R := sample.R()
		points[k] = TrajectoryPoint{DT: o.Epoch.Add(time.Duration(k) * h), Position: []float64{R[0] * 1e3, R[1] * 1e3, R[2] * 1e3}}
	}
	return points, nil
}
