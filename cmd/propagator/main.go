package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Pybonacci/poliastro"
	"github.com/soniakeys/meeus/julian"
	"github.com/spf13/viper"
)

// This code effectively only reads the scenario file and propagates the orbit.

const (
	defaultScenario = "~~unset~~"
)

var (
	scenario string
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "propagation scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	// Load scenario
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read propagation parameters
	endDT := confReadJDEorTime("propagation.end")
	step := viper.GetDuration("propagation.step")
	if step == 0 {
		step = poliastro.StepSize
	}
	method := poliastro.Cowell
	switch strings.ToLower(viper.GetString("propagation.method")) {
	case "", "cowell":
	case "kepler":
		method = poliastro.Kepler
	case "rk4":
		method = poliastro.RK4
	default:
		log.Fatalf("unknown propagation method `%s`", viper.GetString("propagation.method"))
	}
	if verbose {
		log.Printf("[conf] method: %s step: %s\n", method, step)
	}

	// Read orbit
	centralBodyName := viper.GetString("orbit.body")
	centralBody, err := poliastro.BodyFromString(centralBodyName)
	if err != nil {
		log.Fatalf("could not understand body `%s`: %s", centralBodyName, err)
	}
	a := viper.GetFloat64("orbit.sma")
	e := viper.GetFloat64("orbit.ecc")
	i := viper.GetFloat64("orbit.inc")
	Ω := viper.GetFloat64("orbit.RAAN")
	ω := viper.GetFloat64("orbit.argPeri")
	ν := viper.GetFloat64("orbit.tAnomaly")
	epoch := confReadJDEorTime("propagation.start")
	orbit, err := poliastro.NewOrbitFromOE(a, e, i, Ω, ω, ν, centralBody, epoch)
	if err != nil {
		log.Fatalf("invalid orbit: %s", err)
	}

	// Read perturbations
	var perts poliastro.Perturbations
	if jn := viper.GetInt("perturbations.Jn"); jn > 0 {
		obl, err := poliastro.NewOblateness(centralBody, uint8(jn))
		if err != nil {
			log.Fatalf("oblateness: %s", err)
		}
		perts.Models = append(perts.Models, obl)
	}
	if viper.GetBool("perturbations.drag") {
		area := poliastro.M2(viper.GetFloat64("spacecraft.area"))
		mass := poliastro.Kilograms(viper.GetFloat64("spacecraft.mass"))
		drag, err := poliastro.NewAtmosphericDrag(centralBody, viper.GetFloat64("spacecraft.cd"), area, mass)
		if err != nil {
			log.Fatalf("drag: %s", err)
		}
		perts.Models = append(perts.Models, drag)
	}
	for _, name := range viper.GetStringSlice("perturbations.bodies") {
		third, err := poliastro.BodyFromString(name)
		if err != nil {
			log.Fatalf("could not understand body `%s`: %s", name, err)
		}
		eph, err := poliastro.NewEphemeris(third, centralBody, epoch, endDT, viper.GetInt("perturbations.samplesPerDay"))
		if err != nil {
			log.Fatalf("ephemeris for %s: %s", name, err)
		}
		tb, err := poliastro.NewThirdBody(third, eph)
		if err != nil {
			log.Fatalf("third body %s: %s", name, err)
		}
		perts.Models = append(perts.Models, tb)
	}

	conf := poliastro.ExportConfig{
		Filename:  viper.GetString("export.filename"),
		Traj:      viper.GetBool("export.traj"),
		AsCSV:     viper.GetBool("export.csv"),
		Timestamp: viper.GetBool("export.timestamp"),
	}
	prop := poliastro.NewPrecisePropagation(orbit, endDT, method, perts, step, conf)
	if err := prop.Propagate(); err != nil {
		log.Fatalf("propagation: %s", err)
	}
	R, V := orbit.RV()
	fmt.Printf("==== %s @ %s ====\nR=%+v km\tV=%+v km/s\n", centralBody.Name, endDT, R, V)
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
