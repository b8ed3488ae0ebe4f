// Package model is the per-replicate stochastic population simulator:
// logistic growth with spatially correlated demographic noise, human
// suppression, harvest, landscape-constrained dispersal and extirpation
// thresholds, advanced sequentially over burn-in plus simulated timesteps.
package model

import (
	"time"

	"github.com/ecanteri/Reindeer-Appendix02/dispersal"
	"github.com/ecanteri/Reindeer-Appendix02/errs"
	"github.com/ecanteri/Reindeer-Appendix02/spatial"
)

// density-dependence and human-effect forms recognized by Config
const (
	DDLogistic = "logistic" // Ricker update toward carrying capacity
	DDCeiling  = "ceiling"  // exponential growth capped at capacity

	HumanMultiplicative = "multiplicative" // survival scaled by (1 - density)
	HumanNone           = "none"
)

// result series selectable through Config.Results
const (
	ResTotalAbundance = "totalAbundance"
	ResTotalHarvest   = "totalHarvest"
	ResOccupancy      = "occupancy"
)

// Config is the fixed per-replicate simulation configuration.
type Config struct {
	BurnIn, Steps int
	YearsPerStep  int

	GrowthRateMax     float64
	StandardDeviation float64
	DensityDependence string
	HumanEffect       string

	Harvest     bool
	HarvestMax  float64
	HarvestZ    float64
	HarvestG    float64
	HarvestMaxN float64

	AbundanceThreshold float64
	OccupancyThreshold int

	Results []string
	Seed    int64

	OnStep func(t int) // optional per-timestep hook (progress display)
}

// Inputs are the materialized space-time fields one replicate consumes.
// Disp and Corr may be nil (no dispersal; uncorrelated noise).
type Inputs struct {
	Init     []float64
	Capacity [][]float64
	Humans   [][]float64
	Disp     *dispersal.Field
	Corr     *spatial.CompactFactor
}

// Result is one replicate's reduced output series plus run metadata.
type Result struct {
	Sample        int
	Series        map[string][]float64
	Elapsed       time.Duration
	NumericFaults int   // non-finite intermediates clamped to zero
	LowOccupancy  []int // timesteps where region-wide occupancy fell below threshold
}

func (cfg *Config) check(in *Inputs) error {
	nt := cfg.BurnIn + cfg.Steps
	if cfg.Steps < 1 {
		return errs.Errorf(errs.Config, "model: %d simulated steps", cfg.Steps)
	}
	switch cfg.DensityDependence {
	case DDLogistic, DDCeiling:
	default:
		return errs.Errorf(errs.Config, "model: unknown density dependence %q", cfg.DensityDependence)
	}
	switch cfg.HumanEffect {
	case HumanMultiplicative, HumanNone:
	default:
		return errs.Errorf(errs.Config, "model: unknown human effect %q", cfg.HumanEffect)
	}
	n := len(in.Init)
	if len(in.Capacity) != n {
		return errs.Errorf(errs.Config, "model: capacity spans %d cells, init %d", len(in.Capacity), n)
	}
	for i := range in.Capacity {
		if len(in.Capacity[i]) != nt {
			return errs.Errorf(errs.Config, "model: capacity cell %d spans %d steps, want %d", i, len(in.Capacity[i]), nt)
		}
	}
	if cfg.HumanEffect != HumanNone {
		if len(in.Humans) != n {
			return errs.Errorf(errs.Config, "model: human field spans %d cells, init %d", len(in.Humans), n)
		}
		for i := range in.Humans {
			if len(in.Humans[i]) != nt {
				return errs.Errorf(errs.Config, "model: human field cell %d spans %d steps, want %d", i, len(in.Humans[i]), nt)
			}
		}
	}
	if in.Disp != nil && in.Disp.Ncells != n {
		return errs.Errorf(errs.Config, "model: dispersal field spans %d cells, init %d", in.Disp.Ncells, n)
	}
	if in.Corr != nil && in.Corr.Ncells != n {
		return errs.Errorf(errs.Config, "model: correlation factor spans %d cells, init %d", in.Corr.Ncells, n)
	}
	return nil
}
