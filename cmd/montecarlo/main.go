package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/Pybonacci/poliastro"
	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// Disperses the initial Cartesian state of a reference orbit and propagates
// each draw, reporting the spread of the final radii.

var (
	runs     int
	days     float64
	sigmaR   float64
	sigmaV   float64
	parallel int
)

func init() {
	flag.IntVar(&runs, "runs", 100, "number of Monte Carlo draws")
	flag.Float64Var(&days, "days", 1, "propagation duration in days")
	flag.Float64Var(&sigmaR, "sigmaR", 1.0, "1-sigma position dispersion in km")
	flag.Float64Var(&sigmaV, "sigmaV", 1e-3, "1-sigma velocity dispersion in km/s")
	flag.IntVar(&parallel, "parallel", 4, "number of concurrent propagations")
}

func main() {
	flag.Parse()
	epoch := time.Date(2016, 3, 24, 20, 41, 48, 0, time.UTC)
	ref, err := poliastro.NewOrbitFromOE(7000, 0.001, 51.6, 30, 40, 0, poliastro.Earth, epoch)
	if err != nil {
		log.Fatalf("reference orbit: %s", err)
	}
	R, V := ref.RV()
	mean := []float64{R[0], R[1], R[2], V[0], V[1], V[2]}
	cov := make([]float64, 36)
	for i := 0; i < 3; i++ {
		cov[i*6+i] = sigmaR * sigmaR
		cov[(i+3)*6+i+3] = sigmaV * sigmaV
	}
	seed := rand.New(rand.NewSource(time.Now().UnixNano()))
	dist, ok := distmv.NewNormal(mean, mat64.NewSymDense(6, cov), seed)
	if !ok {
		panic("NOK in Gaussian")
	}

	obl, err := poliastro.NewOblateness(poliastro.Earth, 3)
	if err != nil {
		log.Fatalf("oblateness: %s", err)
	}
	perts := poliastro.Perturbations{Models: []poliastro.AccelModel{obl}}
	end := epoch.Add(time.Duration(days*24) * time.Hour)

	var wg sync.WaitGroup
	sem := make(chan struct{}, parallel)
	radii := make([]float64, runs)
	for run := 0; run < runs; run++ {
		draw := dist.Rand(nil)
		wg.Add(1)
		sem <- struct{}{}
		go func(run int, s []float64) {
			defer wg.Done()
			defer func() { <-sem }()
			orbit := poliastro.NewOrbitFromRV(s[0:3], s[3:6], poliastro.Earth, epoch)
			final, err := poliastro.Propagate(orbit, end, poliastro.Cowell, perts)
			if err != nil {
				log.Printf("run %d failed: %s", run, err)
				return
			}
			radii[run] = final.RNorm()
		}(run, draw)
	}
	wg.Wait()

	min, max, mean2 := radii[0], radii[0], 0.0
	for _, r := range radii {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
		mean2 += r
	}
	mean2 /= float64(runs)
	fmt.Printf("==== %d runs over %.1f days ====\nfinal radius (km): min=%.3f mean=%.3f max=%.3f spread=%.3f\n", runs, days, min, mean2, max, max-min)
}
