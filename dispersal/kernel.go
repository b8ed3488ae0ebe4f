package dispersal

import "math"

// pTail caps dispersal beyond the effective radius: exp(-r/b) = pTail.
const pTail = 0.05

// breadthTable maps integer effective radii to the decay breadth b solving
// exp(-d/b) = pTail at d = r. Built once to maxDist resolution so generate
// resolves b by monotone lookup rather than re-solving per replicate.
type breadthTable struct {
	rmax int
	b    []float64
}

func newBreadthTable(maxDist float64) *breadthTable {
	rmax := int(math.Ceil(maxDist))
	if rmax < 1 {
		rmax = 1
	}
	t := &breadthTable{rmax: rmax, b: make([]float64, rmax+1)}
	ln := math.Log(1. / pTail)
	for r := 1; r <= rmax; r++ {
		t.b[r] = float64(r) / ln
	}
	t.b[0] = t.b[1]
	return t
}

// lookup returns the breadth for effective radius r, clamped to table range.
func (t *breadthTable) lookup(r float64) float64 {
	ir := int(math.Round(r))
	if ir < 0 {
		ir = 0
	}
	if ir > t.rmax {
		ir = t.rmax
	}
	return t.b[ir]
}

// Friction intersects the landscape validity mask with ice extent, returning
// the per-cell, per-timestep traversability multiplier: a cell fully iced at
// a timestep is impassable regardless of kernel parameters.
func Friction(mask, ice [][]float64) [][]float64 {
	fr := make([][]float64, len(mask))
	for i := range mask {
		fr[i] = make([]float64, len(mask[i]))
		for t := range mask[i] {
			v := mask[i][t] * (1. - ice[i][t])
			if v < 0. {
				v = 0.
			} else if v > 1. {
				v = 1.
			}
			fr[i][t] = v
		}
	}
	return fr
}
