// Package generator turns a handful of sampled scalar parameters into full
// space-time input fields through declared, dependency-ordered production
// steps. A step either loads an external gob field from a parametrized path,
// applies a registered pure transform, or draws from a named parametric
// distribution. Step ordering is validated at registration, not at run time.
package generator

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/ecanteri/Reindeer-Appendix02/errs"
	mrg63k3a "github.com/maseology/goRNG/MRG63k3a"
)

// Row is one sampled parameter combination bound to a 1-based replicate id.
type Row struct {
	Sample int
	Values map[string]float64
	Levels map[string]string
}

// Context is the static, replicate-independent configuration shared read-only
// by every Generate call.
type Context struct {
	Ncells, BurnIn, Steps int
	Consts                map[string]float64
	Seed                  int64
}

// Value is a step result: either a scalar or a cell-by-timestep field.
type Value struct {
	Field  [][]float64
	Scalar float64
}

func (v Value) isField() bool { return v.Field != nil }

type Kind int

const (
	File Kind = iota
	Function
	Distribution
)

// Transform is a pure function over resolved call parameters.
type Transform func(ctx *Context, rng *rand.Rand, args []Value) (Value, error)

// Step is one named production step. Params name the call parameters, which
// must already be available when the step runs: declared inputs, template
// constants, or prior step outputs.
type Step struct {
	Name   string
	Kind   Kind
	Path   string    // File: path template with {param} placeholders
	Fn     Transform // Function
	Dist   string    // Distribution: "lognormal"
	Params []string
}

// Generator executes an ordered set of typed production steps to materialize
// named output fields. Built once at configuration time, reused read-only
// across all replicates.
type Generator struct {
	Desc    string
	Inputs  []string
	Outputs []string
	Steps   []Step
	ctx     *Context
}

// New validates the declared dependency ordering and returns a Generator.
// A step referencing a name not yet available, or an output never produced,
// is a configuration error caught here, before any replicate runs.
func New(desc string, ctx *Context, inputs, outputs []string, steps []Step) (*Generator, error) {
	avail := make(map[string]bool, len(inputs)+len(ctx.Consts)+len(steps))
	for _, nm := range inputs {
		avail[nm] = true
	}
	for nm := range ctx.Consts {
		avail[nm] = true
	}
	for _, s := range steps {
		switch s.Kind {
		case File:
			if s.Path == "" {
				return nil, errs.Errorf(errs.Config, "%s: file step %q has no path template", desc, s.Name)
			}
		case Function:
			if s.Fn == nil {
				return nil, errs.Errorf(errs.Config, "%s: function step %q has no transform", desc, s.Name)
			}
		case Distribution:
			if s.Dist != "lognormal" {
				return nil, errs.Errorf(errs.Config, "%s: step %q: unknown distribution %q", desc, s.Name, s.Dist)
			}
		default:
			return nil, errs.Errorf(errs.Config, "%s: step %q has unknown kind %d", desc, s.Name, s.Kind)
		}
		for _, p := range s.Params {
			if !avail[p] {
				return nil, errs.Errorf(errs.Config, "%s: step %q requires %q before it is available", desc, s.Name, p)
			}
		}
		if avail[s.Name] {
			return nil, errs.Errorf(errs.Config, "%s: step %q redefines an existing name", desc, s.Name)
		}
		avail[s.Name] = true
	}
	for _, o := range outputs {
		if !avail[o] {
			return nil, errs.Errorf(errs.Config, "%s: declared output %q is never produced", desc, o)
		}
	}
	return &Generator{Desc: desc, Inputs: inputs, Outputs: outputs, Steps: steps, ctx: ctx}, nil
}

// Generate materializes the declared outputs for one sampled row. It is pure
// given (row, registered steps, static context): internal draws come from a
// row-seeded stream and no state is carried between replicates. Output fields
// with one column per simulated step are expanded to burn-in + simulated
// columns, burn-in filled constant from the first real column; single-column
// outputs pass through as static vectors.
func (g *Generator) Generate(row Row) (map[string][][]float64, error) {
	rng := rand.New(mrg63k3a.New())
	rng.Seed(g.ctx.Seed + int64(row.Sample))

	scope := make(map[string]Value, len(g.Inputs)+len(g.ctx.Consts)+len(g.Steps))
	for nm, v := range g.ctx.Consts {
		scope[nm] = Value{Scalar: v}
	}
	for _, nm := range g.Inputs {
		if v, ok := row.Values[nm]; ok {
			scope[nm] = Value{Scalar: v}
		} else if _, ok := g.ctx.Consts[nm]; !ok {
			// template-scoped constants double as defaults for unsampled inputs
			return nil, errs.Errorf(errs.Data, "%s: sample %d carries no value for input %q", g.Desc, row.Sample, nm)
		}
	}

	for _, s := range g.Steps {
		args := make([]Value, len(s.Params))
		for i, p := range s.Params {
			args[i] = scope[p]
		}
		var (
			v   Value
			err error
		)
		switch s.Kind {
		case File:
			v, err = g.loadFileStep(s, row)
		case Function:
			v, err = s.Fn(g.ctx, rng, args)
		case Distribution:
			v, err = g.drawDistribution(s, args)
		}
		if err != nil {
			return nil, err
		}
		scope[s.Name] = v
	}

	out := make(map[string][][]float64, len(g.Outputs))
	for _, nm := range g.Outputs {
		v := scope[nm]
		if !v.isField() {
			return nil, errs.Errorf(errs.Config, "%s: output %q is scalar, want a field", g.Desc, nm)
		}
		f, err := g.withBurnIn(nm, v.Field)
		if err != nil {
			return nil, err
		}
		out[nm] = f
	}
	return out, nil
}

// expandPath substitutes {param} placeholders with the row's level (if
// categorical) or formatted value for that parameter.
func (g *Generator) expandPath(tmpl string, row Row) string {
	fp := tmpl
	for nm, lv := range row.Levels {
		fp = strings.ReplaceAll(fp, "{"+nm+"}", lv)
	}
	for nm, v := range row.Values {
		fp = strings.ReplaceAll(fp, "{"+nm+"}", strconv.FormatFloat(v, 'g', -1, 64))
	}
	for nm, v := range g.ctx.Consts {
		fp = strings.ReplaceAll(fp, "{"+nm+"}", strconv.FormatFloat(v, 'g', -1, 64))
	}
	return fp
}

func (g *Generator) loadFileStep(s Step, row Row) (Value, error) {
	fp := g.expandPath(s.Path, row)
	fld, err := LoadGobField(fp)
	if err != nil {
		return Value{}, errs.Errorf(errs.Data, "%s: step %q: %v", g.Desc, s.Name, err)
	}
	if len(fld) != g.ctx.Ncells {
		return Value{}, errs.Errorf(errs.Data, "%s: step %q: %s holds %d cells, region has %d", g.Desc, s.Name, fp, len(fld), g.ctx.Ncells)
	}
	return Value{Field: fld}, nil
}
