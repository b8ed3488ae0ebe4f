package generator

import (
	"math"
	"math/rand"
	"sort"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
	"gonum.org/v1/gonum/stat"
)

// quantileWindow bounds the symmetric perturbation of the sampled selection
// quantile: ±10% of its admissible [0,1] range.
const quantileWindow = 0.1

// NewHumanDensity builds the human-density generator: baseline variance is
// scaled by the sampled humansMultiplier, the sampled selection quantile is
// perturbed within a replicate-seeded ±10%-of-range window, density is drawn
// from a moment-matched log-normal at that quantile, then linearly normalized
// by the 95th percentile of strictly positive historical mean values so
// outputs are comparable across replicates.
func NewHumanDensity(ctx *Context, meanPath, variancePath string) (*Generator, error) {
	return New("human density",
		ctx,
		[]string{"humansMultiplier", "selectionQuantile"},
		[]string{"humanDensity"},
		[]Step{
			{Name: "humanMean", Kind: File, Path: meanPath},
			{Name: "humanVariance", Kind: File, Path: variancePath},
			{Name: "scaledVariance", Kind: Function, Fn: scaleVariance,
				Params: []string{"humansMultiplier", "humanVariance"}},
			{Name: "perturbedQuantile", Kind: Function, Fn: perturbQuantile,
				Params: []string{"selectionQuantile"}},
			{Name: "humanDraw", Kind: Distribution, Dist: "lognormal",
				Params: []string{"humanMean", "scaledVariance", "perturbedQuantile"}},
			{Name: "humanDensity", Kind: Function, Fn: normalizeByP95,
				Params: []string{"humanDraw", "humanMean"}},
		})
}

func scaleVariance(_ *Context, _ *rand.Rand, args []Value) (Value, error) {
	mult, vr := args[0], args[1]
	if mult.isField() || !vr.isField() {
		return Value{}, errs.Errorf(errs.Config, "scaleVariance: want scalar, field")
	}
	out := make([][]float64, len(vr.Field))
	for i := range vr.Field {
		out[i] = make([]float64, len(vr.Field[i]))
		for t := range vr.Field[i] {
			out[i][t] = mult.Scalar * vr.Field[i][t]
		}
	}
	return Value{Field: out}, nil
}

func perturbQuantile(_ *Context, rng *rand.Rand, args []Value) (Value, error) {
	if args[0].isField() {
		return Value{}, errs.Errorf(errs.Config, "perturbQuantile: want a scalar")
	}
	p := args[0].Scalar + (rng.Float64()*2.-1.)*quantileWindow
	if p < 0. {
		p = 0.
	} else if p > 1. {
		p = 1.
	}
	return Value{Scalar: p}, nil
}

// normalizeByP95 divides the drawn density by the 95th percentile of the
// strictly positive historical means, capping at 1.
func normalizeByP95(_ *Context, _ *rand.Rand, args []Value) (Value, error) {
	draw, mean := args[0], args[1]
	if !draw.isField() || !mean.isField() {
		return Value{}, errs.Errorf(errs.Config, "normalizeByP95: want field, field")
	}
	var pos []float64
	for i := range mean.Field {
		for _, v := range mean.Field[i] {
			if v > 0. && !math.IsNaN(v) && !math.IsInf(v, 0) {
				pos = append(pos, v)
			}
		}
	}
	if len(pos) == 0 {
		return Value{}, errs.Errorf(errs.Data, "normalizeByP95: no positive historical values")
	}
	sort.Float64s(pos)
	p95 := stat.Quantile(0.95, stat.Empirical, pos, nil)
	if p95 <= 0. {
		return Value{}, errs.Errorf(errs.Numerical, "normalizeByP95: non-positive threshold %g", p95)
	}

	out := make([][]float64, len(draw.Field))
	for i := range draw.Field {
		out[i] = make([]float64, len(draw.Field[i]))
		for t := range draw.Field[i] {
			v := draw.Field[i][t] / p95
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0. {
				v = 0.
			} else if v > 1. {
				v = 1.
			}
			out[i][t] = v
		}
	}
	return Value{Field: out}, nil
}
