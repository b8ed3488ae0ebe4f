package generator

import (
	"math"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

// drawDistribution evaluates a named parametric distribution at a selection
// quantile, per cell and timestep. Parameters are, in order: mean field,
// variance field, quantile scalar. The log-normal is moment-matched to the
// supplied mean/variance.
func (g *Generator) drawDistribution(s Step, args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, errs.Errorf(errs.Config, "%s: step %q: distribution takes mean, variance, quantile", g.Desc, s.Name)
	}
	mean, vr, q := args[0], args[1], args[2]
	if !mean.isField() || !vr.isField() || q.isField() {
		return Value{}, errs.Errorf(errs.Config, "%s: step %q: want field, field, scalar", g.Desc, s.Name)
	}
	p := q.Scalar
	if p < 0. || p > 1. {
		return Value{}, errs.Errorf(errs.Numerical, "%s: step %q: quantile %g outside [0,1]", g.Desc, s.Name, p)
	}
	if p > 1.-1e-9 {
		p = 1. - 1e-9 // Quantile(1) is +Inf
	}

	out := make([][]float64, len(mean.Field))
	for i := range mean.Field {
		out[i] = make([]float64, len(mean.Field[i]))
		for t := range mean.Field[i] {
			m := mean.Field[i][t]
			if m <= 0. {
				continue
			}
			v := vr.Field[i][t]
			if v <= 0. {
				out[i][t] = m
				continue
			}
			s2 := math.Log(1. + v/(m*m))
			ln := distuv.LogNormal{Mu: math.Log(m) - s2/2., Sigma: math.Sqrt(s2)}
			d := ln.Quantile(p)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				d = 0.
			}
			out[i][t] = d
		}
	}
	return Value{Field: out}, nil
}
