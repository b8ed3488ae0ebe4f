package rangifer

import (
	"math"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
	"github.com/maseology/goHydro/grid"
)

// Region is the static spatial discretization: ordered cell ids, projected
// cell coordinates and the per-cell, per-timestep validity mask. All per-cell
// matrices elsewhere are indexed consistently by Cells. Region is frozen
// after construction and shared by pointer.
type Region struct {
	Gd    *grid.Definition // raster provenance; nil when built from raw slices
	Cells []int
	X, Y  []float64
	Mask  [][]float64 // cell x timestep, in [0,1]; 0 = invalid/iced
}

// NewRegion builds a Region from raw coordinate slices and a validity mask.
func NewRegion(x, y []float64, mask [][]float64) (*Region, error) {
	if len(x) != len(y) || len(x) != len(mask) {
		return nil, errs.Errorf(errs.Config, "region: inconsistent lengths x %d y %d mask %d", len(x), len(y), len(mask))
	}
	cells := make([]int, len(x))
	for i := range cells {
		cells[i] = i
	}
	return &Region{Cells: cells, X: x, Y: y, Mask: mask}, nil
}

// RegionFromGrid builds a Region from the active cells of a raster grid
// definition, preserving the subset selection into the larger grid.
func RegionFromGrid(gd *grid.Definition, mask [][]float64) (*Region, error) {
	cells := gd.Sactives
	if len(cells) != len(mask) {
		return nil, errs.Errorf(errs.Config, "region: grid has %d active cells, mask %d", len(cells), len(mask))
	}
	x, y := make([]float64, len(cells)), make([]float64, len(cells))
	for i, c := range cells {
		xy := gd.Coord[c]
		x[i], y[i] = xy.X, xy.Y
	}
	return &Region{Gd: gd, Cells: cells, X: x, Y: y, Mask: mask}, nil
}

// Ncells returns the number of cells in the discretization.
func (r *Region) Ncells() int { return len(r.Cells) }

// DenseDistances computes the full pairwise scaled euclidean distance matrix,
// needed once to build the spatial correlation structure. Landscape-scale
// regions should release it after factorization.
func (r *Region) DenseDistances(scale float64) [][]float64 {
	n := r.Ncells()
	d := make([][]float64, n)
	for i := 0; i < n; i++ {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dy := r.X[i]-r.X[j], r.Y[i]-r.Y[j]
			v := math.Sqrt(dx*dx+dy*dy) * scale
			d[i][j], d[j][i] = v, v
		}
	}
	return d
}

// CheckDims verifies every mask row spans nt timesteps.
func (r *Region) CheckDims(nt int) error {
	for i := range r.Mask {
		if len(r.Mask[i]) != nt {
			return errs.Errorf(errs.Config, "region: mask cell %d spans %d timesteps, want %d", i, len(r.Mask[i]), nt)
		}
	}
	return nil
}
