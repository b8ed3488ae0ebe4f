package model

import (
	"math"
	"math/rand"
	"time"

	mrg63k3a "github.com/maseology/goRNG/MRG63k3a"
)

// Run executes one replicate to completion. The per-timestep loop is strictly
// sequential; all random draws come from a stream seeded by cfg.Seed alone,
// so results are independent of scheduling and parallelism degree.
func Run(cfg *Config, in *Inputs) (*Result, error) {
	if err := cfg.check(in); err != nil {
		return nil, err
	}
	tt := time.Now()
	n := len(in.Init)
	nt := cfg.BurnIn + cfg.Steps
	rng := rand.New(mrg63k3a.New())
	rng.Seed(cfg.Seed)

	abun := make([]float64, n)
	copy(abun, in.Init)
	z, eps := make([]float64, n), make([]float64, n)
	din, dout := make([]float64, n), make([]float64, n)

	res := &Result{Series: map[string][]float64{}}
	totA, totH, occ := make([]float64, nt), make([]float64, nt), make([]float64, nt)

	for t := 0; t < nt; t++ {
		// correlated demographic noise
		if cfg.StandardDeviation > 0. {
			for i := range z {
				z[i] = rng.NormFloat64()
			}
			if in.Corr != nil {
				in.Corr.Correlated(z, eps)
			} else {
				copy(eps, z)
			}
		}

		harvested := 0.
		for i := 0; i < n; i++ {
			nn := abun[i]
			if nn <= 0. {
				abun[i] = 0.
				continue
			}
			k := in.Capacity[i][t]

			// growth
			switch cfg.DensityDependence {
			case DDLogistic:
				if k <= 0. {
					nn = 0.
				} else {
					g := cfg.GrowthRateMax * (1. - nn/k)
					if cfg.StandardDeviation > 0. {
						g += cfg.StandardDeviation * eps[i]
					}
					nn *= math.Exp(g)
				}
			case DDCeiling:
				g := cfg.GrowthRateMax
				if cfg.StandardDeviation > 0. {
					g += cfg.StandardDeviation * eps[i]
				}
				nn *= math.Exp(g)
				if nn > k {
					nn = k
				}
			}

			// human suppression
			if cfg.HumanEffect == HumanMultiplicative {
				s := 1. - in.Humans[i][t]
				if s < 0. {
					s = 0.
				}
				nn *= s
			}

			// harvest, never driving abundance below zero
			if cfg.Harvest && nn > 0. {
				take := cfg.HarvestMax * cfg.HarvestG * math.Pow(nn, cfg.HarvestZ)
				if take > cfg.HarvestMaxN {
					take = cfg.HarvestMaxN
				}
				if take > nn {
					take = nn
				}
				if take > 0. {
					nn -= take
					harvested += take
				}
			}

			if math.IsNaN(nn) || math.IsInf(nn, 0) || nn < 0. {
				nn = 0.
				res.NumericFaults++
			}
			abun[i] = nn
		}

		// dispersal redistributes mass, never creates or destroys it; a
		// source whose outgoing probabilities sum above 1 is renormalized
		if in.Disp != nil {
			for i := range din {
				din[i], dout[i] = 0., 0.
			}
			np := in.Disp.Npairs()
			for k := 0; k < np; k++ {
				dout[in.Disp.Src[k]] += in.Disp.Prob(k, t)
			}
			for k := 0; k < np; k++ {
				s := in.Disp.Src[k]
				if abun[s] <= 0. {
					continue
				}
				pr := in.Disp.Prob(k, t)
				if pr <= 0. {
					continue
				}
				if dout[s] > 1. {
					pr /= dout[s]
				}
				din[in.Disp.Tgt[k]] += abun[s] * pr
			}
			for i := 0; i < n; i++ {
				f := dout[i]
				if f > 1. {
					f = 1.
				}
				abun[i] = abun[i]*(1.-f) + din[i]
			}
		}

		// extirpation floor and regional occupancy
		nocc := 0
		for i := 0; i < n; i++ {
			if math.IsNaN(abun[i]) || math.IsInf(abun[i], 0) || abun[i] < 0. {
				abun[i] = 0.
				res.NumericFaults++
			}
			if abun[i] < cfg.AbundanceThreshold {
				abun[i] = 0.
			}
			if abun[i] > 0. {
				nocc++
			}
		}
		if nocc < cfg.OccupancyThreshold {
			res.LowOccupancy = append(res.LowOccupancy, t)
		}

		for i := 0; i < n; i++ {
			totA[t] += abun[i]
		}
		totH[t] = harvested
		occ[t] = float64(nocc)
		if cfg.OnStep != nil {
			cfg.OnStep(t)
		}
	}

	for _, nm := range cfg.Results {
		switch nm {
		case ResTotalAbundance:
			res.Series[nm] = totA
		case ResTotalHarvest:
			res.Series[nm] = totH
		case ResOccupancy:
			res.Series[nm] = occ
		}
	}
	res.Elapsed = time.Since(tt)
	return res, nil
}
