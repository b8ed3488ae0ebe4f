package dispersal

import (
	"math"
	"path/filepath"
	"testing"
)

// three cells on a line 100 km apart, one isolated far east
func testPairs(t *testing.T, maxDist float64) *PairData {
	t.Helper()
	x := []float64{0., 100., 200., 5000.}
	y := []float64{0., 0., 0., 0.}
	dm, err := CalculateDistanceMatrix(x, y, maxDist, 1.)
	if err != nil {
		t.Fatalf("distance matrix: %v", err)
	}
	return CalculateDistanceData(dm)
}

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

func TestDistanceCutoff(t *testing.T) {
	pd := testPairs(t, 150.)
	for k := range pd.Dist {
		if pd.Dist[k] > 150. {
			t.Fatalf("retained pair %d at distance %g beyond cutoff", k, pd.Dist[k])
		}
	}
	// cell 3 is isolated: legal, no outgoing pairs
	if n := pd.Offset[4] - pd.Offset[3]; n != 0 {
		t.Fatalf("isolated cell has %d outgoing pairs", n)
	}
	// cells 0 and 2 reach only their 100 km neighbour
	if n := pd.Offset[1] - pd.Offset[0]; n != 1 {
		t.Fatalf("cell 0 has %d pairs, want 1", n)
	}
}

func TestProbabilityBounds(t *testing.T) {
	pd := testPairs(t, 250.)
	fr := constField(4, 3, 1.)
	for _, p := range []float64{0.01, 0.3, 1.} {
		for _, r := range []float64{10., 100., 250.} {
			f, err := pd.Generate(p, r, fr, 1e-10)
			if err != nil {
				t.Fatalf("generate(p=%g r=%g): %v", p, r, err)
			}
			for k := 0; k < f.Npairs(); k++ {
				for ts := 0; ts < 3; ts++ {
					pr := f.Prob(k, ts)
					if pr < 0. || pr > 1. {
						t.Fatalf("probability %g outside [0,1] (p=%g r=%g)", pr, p, r)
					}
				}
			}
		}
	}
}

func TestZeroFrictionAnnihilates(t *testing.T) {
	pd := testPairs(t, 250.)
	fr := constField(4, 2, 1.)
	for ts := range fr[1] {
		fr[1][ts] = 0. // cell 1 fully impassable at all timesteps
	}
	f, err := pd.Generate(0.5, 200., fr, 1e-10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for k := 0; k < f.Npairs(); k++ {
		if f.Tgt[k] != 1 {
			continue
		}
		for ts := 0; ts < 2; ts++ {
			if pr := f.Prob(k, ts); pr != 0. {
				t.Fatalf("pair into impassable cell has probability %g", pr)
			}
		}
	}
}

func TestKernelDecayCap(t *testing.T) {
	pd := testPairs(t, 250.)
	fr := constField(4, 1, 1.)
	r := 100.
	f, err := pd.Generate(1., r, fr, 1e-10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for k := 0; k < f.Npairs(); k++ {
		if f.Src[k] == 0 && f.Tgt[k] == 2 { // 200 km, well beyond r
			if pr := f.Prob(k, 0); pr > 0.05+1e-9 {
				t.Fatalf("probability %g beyond effective radius exceeds 0.05", pr)
			}
		}
	}
}

func TestFrictionFromMaskAndIce(t *testing.T) {
	mask := [][]float64{{1., 1.}, {1., 0.}}
	ice := [][]float64{{0., 0.5}, {1., 0.}}
	fr := Friction(mask, ice)
	want := [][]float64{{1., 0.5}, {0., 0.}}
	for i := range want {
		for ts := range want[i] {
			if fr[i][ts] != want[i][ts] {
				t.Fatalf("friction[%d][%d] = %g, want %g", i, ts, fr[i][ts], want[i][ts])
			}
		}
	}
}

func TestLimitTargets(t *testing.T) {
	x := []float64{0., 10., 20., 30.}
	y := []float64{0., 0., 0., 0.}
	dm, err := CalculateDistanceMatrix(x, y, 100., 1.)
	if err != nil {
		t.Fatalf("distance matrix: %v", err)
	}
	dm.LimitTargets(1)
	for i, row := range dm.Rows {
		if len(row) != 1 {
			t.Fatalf("cell %d retains %d targets, want 1", i, len(row))
		}
	}
	if dm.Rows[0][0].To != 1 {
		t.Fatalf("cell 0 nearest target %d, want 1", dm.Rows[0][0].To)
	}
}

func TestPairDataGobRoundTrip(t *testing.T) {
	pd := testPairs(t, 250.)
	fp := filepath.Join(t.TempDir(), "pairs.gob")
	if err := pd.SaveGob(fp); err != nil {
		t.Fatalf("save: %v", err)
	}
	pd2, err := LoadGobPairData(fp)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pd2.Ncells != pd.Ncells || len(pd2.Dist) != len(pd.Dist) {
		t.Fatalf("cached pair data differs: %d cells %d pairs", pd2.Ncells, len(pd2.Dist))
	}
	for k := range pd.Dist {
		if math.Abs(pd2.Dist[k]-pd.Dist[k]) != 0. {
			t.Fatalf("pair %d distance differs after reload", k)
		}
	}
}
