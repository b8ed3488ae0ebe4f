package model

import (
	"math"
	"testing"

	"github.com/ecanteri/Reindeer-Appendix02/dispersal"
)

func constField(ncells, nt int, v float64) [][]float64 {
	f := make([][]float64, ncells)
	for i := range f {
		f[i] = make([]float64, nt)
		for t := range f[i] {
			f[i][t] = v
		}
	}
	return f
}

func baseConfig(steps int) *Config {
	return &Config{
		Steps:             steps,
		DensityDependence: DDLogistic,
		HumanEffect:       HumanNone,
		Results:           []string{ResTotalAbundance, ResTotalHarvest, ResOccupancy},
		Seed:              1,
	}
}

// dispersal field over 2 cells: probability p from A to B, zero reverse
func oneWayField(p float64, nt int) *dispersal.Field {
	fr := constField(2, nt, 1.)
	return &dispersal.Field{
		Ncells:   2,
		Src:      []int32{0},
		Tgt:      []int32{1},
		Base:     []float64{p},
		Friction: fr,
	}
}

func TestDeterministicLogisticGrowth(t *testing.T) {
	// 2 cells, 5 steps, no burn-in, r = log 2, sd = 0, no harvest, K = 100,
	// dispersal probability 0: each cell follows deterministic logistic
	// growth with no cross-cell change
	cfg := baseConfig(5)
	cfg.GrowthRateMax = math.Log(2.)
	in := &Inputs{
		Init:     []float64{10., 25.},
		Capacity: constField(2, 5, 100.),
	}
	res, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	na, nb := 10., 25.
	for ts := 0; ts < 5; ts++ {
		na *= math.Exp(math.Log(2.) * (1. - na/100.))
		nb *= math.Exp(math.Log(2.) * (1. - nb/100.))
		if got := res.Series[ResTotalAbundance][ts]; math.Abs(got-(na+nb)) > 1e-9 {
			t.Fatalf("step %d: total abundance %g, want %g", ts, got, na+nb)
		}
	}
	if res.NumericFaults != 0 {
		t.Fatalf("%d numeric faults in a deterministic run", res.NumericFaults)
	}
}

func TestFullOneWayTransfer(t *testing.T) {
	// same setup but dispersal probability 1 A->B: after one step, A's
	// post-growth population moves entirely to B
	cfg := baseConfig(1)
	cfg.GrowthRateMax = math.Log(2.)
	in := &Inputs{
		Init:     []float64{10., 25.},
		Capacity: constField(2, 1, 100.),
		Disp:     oneWayField(1., 1),
	}
	res, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	ga := 10. * math.Exp(math.Log(2.)*(1.-10./100.))
	gb := 25. * math.Exp(math.Log(2.)*(1.-25./100.))
	if got := res.Series[ResTotalAbundance][0]; math.Abs(got-(ga+gb)) > 1e-9 {
		t.Fatalf("total abundance %g, want %g", got, ga+gb)
	}
	if got := res.Series[ResOccupancy][0]; got != 1. {
		t.Fatalf("occupancy %g, want 1 (cell A emptied into B)", got)
	}
}

func TestDispersalConservesMass(t *testing.T) {
	// r = 0 (growth multiplier exactly 1), no harvest, no noise: total
	// abundance may only be redistributed by dispersal, never changed by it
	cfg := baseConfig(20)
	cfg.GrowthRateMax = 0.

	fr := constField(3, 20, 1.)
	in := &Inputs{
		Init:     []float64{40., 10., 0.},
		Capacity: constField(3, 20, 100.),
		Disp: &dispersal.Field{
			Ncells:   3,
			Src:      []int32{0, 0, 1, 2},
			Tgt:      []int32{1, 2, 0, 1},
			Base:     []float64{0.3, 0.2, 0.5, 0.4},
			Friction: fr,
		},
	}
	res, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for ts := 0; ts < 20; ts++ {
		if got := res.Series[ResTotalAbundance][ts]; math.Abs(got-50.) > 1e-9 {
			t.Fatalf("step %d: total abundance %g, want 50", ts, got)
		}
	}
}

func TestOutflowRenormalized(t *testing.T) {
	// outgoing probabilities summing above 1 must not create mass
	cfg := baseConfig(5)
	cfg.GrowthRateMax = 0.
	fr := constField(3, 5, 1.)
	in := &Inputs{
		Init:     []float64{30., 0., 0.},
		Capacity: constField(3, 5, 100.),
		Disp: &dispersal.Field{
			Ncells:   3,
			Src:      []int32{0, 0},
			Tgt:      []int32{1, 2},
			Base:     []float64{0.9, 0.9},
			Friction: fr,
		},
	}
	res, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for ts := 0; ts < 5; ts++ {
		if got := res.Series[ResTotalAbundance][ts]; math.Abs(got-30.) > 1e-9 {
			t.Fatalf("step %d: total abundance %g, want 30", ts, got)
		}
	}
}

func TestHarvestNeverBelowZero(t *testing.T) {
	cfg := baseConfig(10)
	cfg.GrowthRateMax = 0.
	cfg.Harvest = true
	cfg.HarvestMax = 1.
	cfg.HarvestZ = 1.
	cfg.HarvestG = 2. // demand far exceeding stock
	cfg.HarvestMaxN = 1e9
	in := &Inputs{
		Init:     []float64{5.},
		Capacity: constField(1, 10, 100.),
	}
	res, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for ts := 0; ts < 10; ts++ {
		if res.Series[ResTotalAbundance][ts] < 0. {
			t.Fatalf("step %d: negative abundance %g", ts, res.Series[ResTotalAbundance][ts])
		}
	}
	if res.Series[ResTotalHarvest][0] != 5. {
		t.Fatalf("harvested %g at step 0, want the whole stock of 5", res.Series[ResTotalHarvest][0])
	}
}

func TestAbundanceThresholdExtirpates(t *testing.T) {
	cfg := baseConfig(3)
	cfg.GrowthRateMax = 0.
	cfg.AbundanceThreshold = 20.
	cfg.OccupancyThreshold = 1
	in := &Inputs{
		Init:     []float64{10., 30.},
		Capacity: constField(2, 3, 100.),
	}
	res, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := res.Series[ResOccupancy][0]; got != 1. {
		t.Fatalf("occupancy %g, want 1 (cell below threshold zeroed)", got)
	}
	if got := res.Series[ResTotalAbundance][0]; got != 30. {
		t.Fatalf("total abundance %g, want 30", got)
	}
	if len(res.LowOccupancy) != 0 {
		t.Fatalf("low-occupancy recorded at %v with occupancy at threshold", res.LowOccupancy)
	}
}

func TestReplicateSeedReproducibility(t *testing.T) {
	cfg := baseConfig(50)
	cfg.GrowthRateMax = 0.3
	cfg.StandardDeviation = 0.1
	cfg.Seed = 42
	in := &Inputs{
		Init:     []float64{10., 20., 30.},
		Capacity: constField(3, 50, 100.),
	}
	a, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(cfg, in)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for ts := 0; ts < 50; ts++ {
		if a.Series[ResTotalAbundance][ts] != b.Series[ResTotalAbundance][ts] {
			t.Fatalf("step %d: identical seeds diverged", ts)
		}
	}
}
