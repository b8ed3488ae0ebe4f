// Package dispersal derives a time-varying, landscape-constrained dispersal
// kernel from pairwise cell distances, hard ice/water barriers and a
// parametrized decay function. Pair distances are the expensive one-time
// computation; they are flattened and gob-cached so ensembles re-evaluate the
// kernel without recomputing geometry.
package dispersal

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
)

// Neighbor is one retained target within the maximum dispersal radius.
type Neighbor struct {
	To   int
	Dist float64
}

// DistanceMatrix holds, per source cell, only the pairs within MaxDist.
// Dense quadratic storage is infeasible at landscape scale.
type DistanceMatrix struct {
	MaxDist float64
	Rows    [][]Neighbor
}

// CalculateDistanceMatrix computes scaled euclidean distances between all
// cell pairs, retaining those at or below maxDist. Self-pairs are excluded.
// A cell with no neighbour within maxDist is isolated, not an error.
func CalculateDistanceMatrix(x, y []float64, maxDist, scale float64) (*DistanceMatrix, error) {
	if len(x) != len(y) {
		return nil, errs.Errorf(errs.Config, "coordinate slices differ in length: %d vs %d", len(x), len(y))
	}
	if maxDist <= 0. || scale <= 0. {
		return nil, errs.Errorf(errs.Config, "invalid distance parameters: maxDist %g scale %g", maxDist, scale)
	}
	n := len(x)
	dm := &DistanceMatrix{MaxDist: maxDist, Rows: make([][]Neighbor, n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dx, dy := x[i]-x[j], y[i]-y[j]
			if d := math.Sqrt(dx*dx+dy*dy) * scale; d <= maxDist {
				dm.Rows[i] = append(dm.Rows[i], Neighbor{To: j, Dist: d})
			}
		}
	}
	return dm, nil
}

// LimitTargets truncates every source cell's neighbour list to its k nearest
// targets, the target-connectivity cap. k < 1 leaves the matrix unchanged.
func (dm *DistanceMatrix) LimitTargets(k int) {
	if k < 1 {
		return
	}
	for i, row := range dm.Rows {
		if len(row) <= k {
			continue
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Dist < row[b].Dist })
		dm.Rows[i] = row[:k]
	}
}

// PairData is the flattened form of a DistanceMatrix: every retained ordered
// pair with the inputs needed to evaluate the kernel at simulation time.
// Offset[i]:Offset[i+1] spans source cell i's pairs.
type PairData struct {
	MaxDist  float64
	Ncells   int
	Src, Tgt []int32
	Dist     []float64
	Offset   []int32
}

// CalculateDistanceData flattens dm into cacheable pair arrays.
func CalculateDistanceData(dm *DistanceMatrix) *PairData {
	n := len(dm.Rows)
	np := 0
	for _, row := range dm.Rows {
		np += len(row)
	}
	pd := &PairData{
		MaxDist: dm.MaxDist,
		Ncells:  n,
		Src:     make([]int32, 0, np),
		Tgt:     make([]int32, 0, np),
		Dist:    make([]float64, 0, np),
		Offset:  make([]int32, n+1),
	}
	for i, row := range dm.Rows {
		pd.Offset[i] = int32(len(pd.Src))
		for _, nb := range row {
			pd.Src = append(pd.Src, int32(i))
			pd.Tgt = append(pd.Tgt, int32(nb.To))
			pd.Dist = append(pd.Dist, nb.Dist)
		}
	}
	pd.Offset[n] = int32(len(pd.Src))
	return pd
}

func (pd *PairData) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" PairData.SaveGob %v", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(pd); err != nil {
		return fmt.Errorf(" PairData.SaveGob %v", err)
	}
	return nil
}

func LoadGobPairData(fp string) (*PairData, error) {
	var pd PairData
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&pd); err != nil {
		return nil, err
	}
	return &pd, nil
}
