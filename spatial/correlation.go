// Package spatial builds distance-decay correlation matrices and compacts
// their Cholesky factors into sparse loading tables used to draw spatially
// correlated noise at every simulation step.
package spatial

import (
	"math"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
	"gonum.org/v1/gonum/mat"
)

// DefaultThreshold drops compact-factor loadings of negligible weight.
const DefaultThreshold = 1e-6

// ComputeCorrelations returns the dense correlation matrix
// corr(i,j) = amplitude*exp(-d(i,j)/(distanceScale*breadth)), corr(i,i) = 1.
func ComputeCorrelations(dist [][]float64, amplitude, breadth, distanceScale float64) [][]float64 {
	n := len(dist)
	db := distanceScale * breadth
	corr := make([][]float64, n)
	for i := 0; i < n; i++ {
		corr[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				corr[i][j] = 1.
			} else {
				corr[i][j] = amplitude * math.Exp(-dist[i][j]/db)
			}
		}
	}
	return corr
}

// Factorize performs a Cholesky decomposition of corr and returns the lower
// triangular factor with entries rounded to decimals digits. Rounding trades
// fidelity for compressibility downstream. A non-positive-definite matrix is
// a numerical error, never garbage output.
func Factorize(corr [][]float64, decimals int) ([][]float64, error) {
	n := len(corr)
	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		if len(corr[i]) != n {
			return nil, errs.Errorf(errs.Config, "correlation matrix row %d: %d entries, want %d", i, len(corr[i]), n)
		}
		copy(data[i*n:(i+1)*n], corr[i])
	}
	var ch mat.Cholesky
	if ok := ch.Factorize(mat.NewSymDense(n, data)); !ok {
		return nil, errs.Errorf(errs.Numerical, "correlation matrix is not positive definite (n=%d)", n)
	}
	var tl mat.TriDense
	ch.LTo(&tl)

	pw := math.Pow(10., float64(decimals))
	l := make([][]float64, n)
	for i := 0; i < n; i++ {
		l[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			l[i][j] = math.Round(tl.At(i, j)*pw) / pw
		}
	}
	return l, nil
}
