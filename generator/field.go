package generator

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
)

// LoadGobField reads a cell-by-timestep field persisted by an external
// collaborator (format conversion is out of scope; fields arrive as plain
// [][]float64 gobs).
func LoadGobField(fp string) ([][]float64, error) {
	var fld [][]float64
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&fld); err != nil {
		return nil, err
	}
	return fld, nil
}

// SaveGobField writes a field the way LoadGobField reads it.
func SaveGobField(fp string, fld [][]float64) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" SaveGobField %v", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(fld); err != nil {
		return fmt.Errorf(" SaveGobField %v", err)
	}
	return nil
}

// withBurnIn enforces the time-series field invariant: the timestep dimension
// spans burn-in + simulated steps, burn-in columns constant-filled from the
// first real-step column. Single-column fields are static vectors and pass
// through untouched.
func (g *Generator) withBurnIn(name string, fld [][]float64) ([][]float64, error) {
	if len(fld) == 0 {
		return nil, errs.Errorf(errs.Config, "%s: output %q is empty", g.Desc, name)
	}
	nt, ncol := g.ctx.BurnIn+g.ctx.Steps, len(fld[0])
	for i := range fld {
		if len(fld[i]) != ncol {
			return nil, errs.Errorf(errs.Config, "%s: output %q has ragged rows", g.Desc, name)
		}
	}
	switch ncol {
	case 1, nt:
		return fld, nil
	case g.ctx.Steps:
		out := make([][]float64, len(fld))
		for i := range fld {
			out[i] = make([]float64, nt)
			for t := 0; t < g.ctx.BurnIn; t++ {
				out[i][t] = fld[i][0]
			}
			copy(out[i][g.ctx.BurnIn:], fld[i])
		}
		return out, nil
	default:
		return nil, errs.Errorf(errs.Config, "%s: output %q spans %d steps, want %d or %d", g.Desc, name, ncol, g.ctx.Steps, nt)
	}
}
