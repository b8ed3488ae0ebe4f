package spatial

// Loading is one retained factor entry: the contributing cell and its weight.
type Loading struct {
	Cell int
	W    float64
}

// CompactFactor is the thresholded sparse form of a lower-triangular
// correlation factor. Rows index cells in the same order as the matrices the
// factor was built from.
type CompactFactor struct {
	Rows   [][]Loading
	Ncells int
}

// Compact drops factor entries with |loading| below threshold and returns the
// sparse per-row table.
func Compact(l [][]float64, threshold float64) *CompactFactor {
	n := len(l)
	rows := make([][]Loading, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i && j < len(l[i]); j++ {
			if w := l[i][j]; w >= threshold || w <= -threshold {
				rows[i] = append(rows[i], Loading{Cell: j, W: w})
			}
		}
	}
	return &CompactFactor{Rows: rows, Ncells: n}
}

// Correlated applies the factor to a vector of independent standard normals,
// writing spatially correlated deviates to out. len(z) and len(out) must be
// Ncells.
func (cf *CompactFactor) Correlated(z, out []float64) {
	for i, row := range cf.Rows {
		s := 0.
		for _, ld := range row {
			s += ld.W * z[ld.Cell]
		}
		out[i] = s
	}
}

// Reconstruct rebuilds factor·factorᵗ, approximating the original correlation
// matrix within the rounding/threshold tolerance used to build the factor.
func (cf *CompactFactor) Reconstruct() [][]float64 {
	n := cf.Ncells
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			s := 0.
			ri, rj := cf.Rows[i], cf.Rows[j]
			// rows are ordered by cell; merge the shared support
			for a, b := 0, 0; a < len(ri) && b < len(rj); {
				switch {
				case ri[a].Cell < rj[b].Cell:
					a++
				case ri[a].Cell > rj[b].Cell:
					b++
				default:
					s += ri[a].W * rj[b].W
					a++
					b++
				}
			}
			m[i][j], m[j][i] = s, s
		}
	}
	return m
}
