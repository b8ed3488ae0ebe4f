package rangifer

import (
	"fmt"
	"strings"

	"github.com/ecanteri/Reindeer-Appendix02/dispersal"
	"github.com/ecanteri/Reindeer-Appendix02/errs"
	"github.com/ecanteri/Reindeer-Appendix02/generator"
	"github.com/ecanteri/Reindeer-Appendix02/model"
	"github.com/ecanteri/Reindeer-Appendix02/spatial"
)

// sampled parameter names the template recognizes when binding a row
const (
	ParGrowthRateMax      = "growthRateMax"
	ParStandardDeviation  = "standardDeviation"
	ParHarvestMax         = "harvestMax"
	ParHarvestZ           = "harvestZ"
	ParHarvestG           = "harvestG"
	ParHarvestMaxN        = "harvestMaxN"
	ParAbundanceThreshold = "abundanceThreshold"
	ParDispersalP         = "dispersalP"
	ParDispersalR         = "dispersalR"
)

// ModelTemplate is the fixed simulation configuration shared read-only
// across all replicates: region, base model config, generators, and the
// expensive precomputed dispersal/correlation structures.
type ModelTemplate struct {
	Region     *Region
	Config     model.Config
	Generators []*generator.Generator
	Pairs      *dispersal.PairData     // nil disables dispersal
	Friction   [][]float64             // cell x timestep traversability
	Corr       *spatial.CompactFactor  // nil draws uncorrelated noise
	Seed       int64
	NameBy     []string // row attributes forming result names; default {"sample"}
}

// RunConfig is the only mutable-per-replicate object: one row's sampled
// values merged with the template and the generators' materialized fields.
// It is discarded once the replicate's result is persisted.
type RunConfig struct {
	Row  SampleRow
	Name string
	Cfg  model.Config
	In   model.Inputs
}

// Check validates the template before any replicate runs.
func (tmpl *ModelTemplate) Check() error {
	if tmpl.Region == nil {
		return errs.Errorf(errs.Config, "template: no region")
	}
	nt := tmpl.Config.BurnIn + tmpl.Config.Steps
	if err := tmpl.Region.CheckDims(nt); err != nil {
		return err
	}
	if tmpl.Pairs != nil {
		if tmpl.Pairs.Ncells != tmpl.Region.Ncells() {
			return errs.Errorf(errs.Config, "template: pair data spans %d cells, region %d", tmpl.Pairs.Ncells, tmpl.Region.Ncells())
		}
		if len(tmpl.Friction) != tmpl.Region.Ncells() {
			return errs.Errorf(errs.Config, "template: friction spans %d cells, region %d", len(tmpl.Friction), tmpl.Region.Ncells())
		}
	}
	if tmpl.Corr != nil && tmpl.Corr.Ncells != tmpl.Region.Ncells() {
		return errs.Errorf(errs.Config, "template: correlation factor spans %d cells, region %d", tmpl.Corr.Ncells, tmpl.Region.Ncells())
	}
	return nil
}

// ResultName is the deterministic result identifier for one row, a function
// of the configured row attributes only, supporting idempotent re-runs.
func (tmpl *ModelTemplate) ResultName(row SampleRow) string {
	nameby := tmpl.NameBy
	if len(nameby) == 0 {
		nameby = []string{"sample"}
	}
	parts := make([]string, 0, len(nameby))
	for _, a := range nameby {
		switch {
		case a == "sample":
			parts = append(parts, fmt.Sprint(row.Sample))
		case row.Levels[a] != "":
			parts = append(parts, row.Levels[a])
		default:
			parts = append(parts, fmt.Sprintf("%g", row.Values[a]))
		}
	}
	return strings.Join(parts, ".")
}

// bind merges one row into a fresh RunConfig: sampled scalars override the
// base config, generators materialize the row's fields, and the dispersal
// field is evaluated from the precomputed pair data. The shared template is
// never mutated.
func (tmpl *ModelTemplate) bind(row SampleRow) (*RunConfig, error) {
	cfg := tmpl.Config // copy
	if v, ok := row.Values[ParGrowthRateMax]; ok {
		cfg.GrowthRateMax = v
	}
	if v, ok := row.Values[ParStandardDeviation]; ok {
		cfg.StandardDeviation = v
	}
	if v, ok := row.Values[ParHarvestMax]; ok {
		cfg.HarvestMax = v
	}
	if v, ok := row.Values[ParHarvestZ]; ok {
		cfg.HarvestZ = v
	}
	if v, ok := row.Values[ParHarvestG]; ok {
		cfg.HarvestG = v
	}
	if v, ok := row.Values[ParHarvestMaxN]; ok {
		cfg.HarvestMaxN = v
	}
	if v, ok := row.Values[ParAbundanceThreshold]; ok {
		cfg.AbundanceThreshold = v
	}
	cfg.Seed = tmpl.Seed + int64(row.Sample)

	fields := make(map[string][][]float64)
	for _, g := range tmpl.Generators {
		out, err := g.Generate(row)
		if err != nil {
			return nil, err
		}
		for nm, f := range out {
			fields[nm] = f
		}
	}

	in := model.Inputs{Corr: tmpl.Corr}
	if f, ok := fields["carryingCapacity"]; ok {
		in.Capacity = f
	}
	if f, ok := fields["humanDensity"]; ok {
		in.Humans = f
	}
	if f, ok := fields["initialAbundance"]; ok {
		in.Init = make([]float64, len(f))
		for i := range f {
			in.Init[i] = f[i][0]
		}
	}
	if in.Init == nil {
		return nil, errs.Errorf(errs.Data, "sample %d: no generator produced initialAbundance", row.Sample)
	}

	if tmpl.Pairs != nil {
		p, okp := row.Values[ParDispersalP]
		r, okr := row.Values[ParDispersalR]
		if !okp || !okr {
			return nil, errs.Errorf(errs.Config, "sample %d: dispersal pair data supplied but %s/%s not sampled", row.Sample, ParDispersalP, ParDispersalR)
		}
		fld, err := tmpl.Pairs.Generate(p, r, tmpl.Friction, NumericFloor)
		if err != nil {
			return nil, err
		}
		in.Disp = fld
	}

	return &RunConfig{Row: row, Name: tmpl.ResultName(row), Cfg: cfg, In: in}, nil
}
