package generator

import (
	"math"
	"math/rand"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
)

// NewCapacity builds the carrying-capacity generator:
//
//	carryingCapacity = round(densityMax * habitatSuitability * iceAvailability)
//
// with non-finite products forced to zero. habitatPath and icePath are
// {param}-templated gob field paths; habitat suitability is typically keyed by
// a categorical climate-model level. landmass names a fixed cell subset whose
// first-real-timestep capacity is zeroed only when its unmodified aggregate
// is positive, preventing spurious initial occupancy in ice-locked terrain.
// initialAbundance is carrying capacity at the first simulated timestep.
func NewCapacity(ctx *Context, habitatPath, icePath string, landmass []int) (*Generator, error) {
	return New("capacity",
		ctx,
		[]string{"densityMax"},
		[]string{"carryingCapacity", "initialAbundance"},
		[]Step{
			{Name: "habitatSuitability", Kind: File, Path: habitatPath},
			{Name: "iceAvailability", Kind: File, Path: icePath},
			{Name: "carryingCapacity", Kind: Function, Fn: capacityTransform(landmass),
				Params: []string{"densityMax", "habitatSuitability", "iceAvailability"}},
			{Name: "initialAbundance", Kind: Function, Fn: firstStepColumn,
				Params: []string{"carryingCapacity"}},
		})
}

func capacityTransform(landmass []int) Transform {
	return func(ctx *Context, _ *rand.Rand, args []Value) (Value, error) {
		dmax, hs, ice := args[0], args[1], args[2]
		if dmax.isField() || !hs.isField() || !ice.isField() {
			return Value{}, errs.Errorf(errs.Config, "capacity transform: want scalar, field, field")
		}
		k := make([][]float64, len(hs.Field))
		for i := range hs.Field {
			k[i] = make([]float64, len(hs.Field[i]))
			for t := range hs.Field[i] {
				v := math.Round(dmax.Scalar * hs.Field[i][t] * ice.Field[i][t])
				if math.IsNaN(v) || math.IsInf(v, 0) || v < 0. {
					v = 0.
				}
				k[i][t] = v
			}
		}
		// landmass override: zero a known-unreachable subset at the first
		// real timestep, only when the unmodified value there is positive
		agg := 0.
		for _, c := range landmass {
			if c >= 0 && c < len(k) && len(k[c]) > 0 {
				agg += k[c][0]
			}
		}
		if agg > 0. {
			for _, c := range landmass {
				if c >= 0 && c < len(k) && len(k[c]) > 0 {
					k[c][0] = 0.
				}
			}
		}
		return Value{Field: k}, nil
	}
}

// firstStepColumn extracts a static per-cell vector from a field's first
// simulated timestep.
func firstStepColumn(_ *Context, _ *rand.Rand, args []Value) (Value, error) {
	f := args[0]
	if !f.isField() {
		return Value{}, errs.Errorf(errs.Config, "firstStepColumn: want a field")
	}
	out := make([][]float64, len(f.Field))
	for i := range f.Field {
		if len(f.Field[i]) == 0 {
			return Value{}, errs.Errorf(errs.Data, "firstStepColumn: cell %d has no timesteps", i)
		}
		out[i] = []float64{f.Field[i][0]}
	}
	return Value{Field: out}, nil
}
