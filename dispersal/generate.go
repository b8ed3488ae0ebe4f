package dispersal

import (
	"math"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
)

// Field is the evaluated dispersal kernel: a base probability per retained
// pair, multiplied at simulation time by the target cell's friction. Base
// probabilities never exceed 1 and pairs below the numeric floor are dropped.
type Field struct {
	Ncells   int
	Src, Tgt []int32
	Base     []float64
	Friction [][]float64 // cell x timestep, shared read-only
}

// Generate evaluates prob = p*exp(-d/b(r)) for every retained pair, where b
// derives from the effective radius r so that probability falls to 0.05 at r.
// Pairs with probability <= floor are omitted from the field.
func (pd *PairData) Generate(p, r float64, friction [][]float64, floor float64) (*Field, error) {
	if p < 0. || p > 1. {
		return nil, errs.Errorf(errs.Config, "dispersal p %g outside [0,1]", p)
	}
	if len(friction) != pd.Ncells {
		return nil, errs.Errorf(errs.Config, "friction rows %d, want %d cells", len(friction), pd.Ncells)
	}
	b := newBreadthTable(pd.MaxDist).lookup(r)
	f := &Field{Ncells: pd.Ncells, Friction: friction}
	for k, d := range pd.Dist {
		pr := p * math.Exp(-d/b)
		if math.IsNaN(pr) || math.IsInf(pr, 0) {
			return nil, errs.Errorf(errs.Numerical, "non-finite kernel value at pair %d (d=%g b=%g)", k, d, b)
		}
		if pr <= floor {
			continue
		}
		if pr > 1. {
			pr = 1.
		}
		f.Src = append(f.Src, pd.Src[k])
		f.Tgt = append(f.Tgt, pd.Tgt[k])
		f.Base = append(f.Base, pr)
	}
	return f, nil
}

// Prob returns the effective probability of pair k at timestep t.
func (f *Field) Prob(k, t int) float64 {
	return f.Base[k] * f.Friction[f.Tgt[k]][t]
}

// Npairs returns the number of retained pairs.
func (f *Field) Npairs() int { return len(f.Base) }
