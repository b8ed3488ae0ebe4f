package rangifer

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ecanteri/Reindeer-Appendix02/generator"
	"github.com/ecanteri/Reindeer-Appendix02/model"
)

// fieldGenerator produces constant capacity/initial-abundance fields in
// memory, failing on demand when the row's failFlag is set.
func fieldGenerator(t *testing.T, ncells, steps int) *generator.Generator {
	t.Helper()
	ctx := &generator.Context{Ncells: ncells, BurnIn: 0, Steps: steps, Seed: 3}
	g, err := generator.New("test fields", ctx,
		[]string{"failFlag"},
		[]string{"carryingCapacity", "initialAbundance"},
		[]generator.Step{
			{Name: "carryingCapacity", Kind: generator.Function, Params: []string{"failFlag"},
				Fn: func(ctx *generator.Context, _ *rand.Rand, args []generator.Value) (generator.Value, error) {
					if args[0].Scalar > 0.5 {
						return generator.Value{}, fmt.Errorf("injected field failure")
					}
					f := make([][]float64, ctx.Ncells)
					for i := range f {
						f[i] = make([]float64, ctx.Steps)
						for ts := range f[i] {
							f[i][ts] = 100.
						}
					}
					return generator.Value{Field: f}, nil
				}},
			{Name: "initialAbundance", Kind: generator.Function, Params: []string{"carryingCapacity"},
				Fn: func(_ *generator.Context, _ *rand.Rand, args []generator.Value) (generator.Value, error) {
					src := args[0].Field
					f := make([][]float64, len(src))
					for i := range src {
						f[i] = []float64{src[i][0] / 10.}
					}
					return generator.Value{Field: f}, nil
				}},
		})
	if err != nil {
		t.Fatalf("generator build: %v", err)
	}
	return g
}

func testTemplate(t *testing.T, ncells, steps int) *ModelTemplate {
	t.Helper()
	x, y := make([]float64, ncells), make([]float64, ncells)
	mask := make([][]float64, ncells)
	for i := range mask {
		x[i] = float64(i)
		mask[i] = make([]float64, steps)
		for ts := range mask[i] {
			mask[i][ts] = 1.
		}
	}
	rgn, err := NewRegion(x, y, mask)
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	return &ModelTemplate{
		Region: rgn,
		Config: model.Config{
			Steps:             steps,
			GrowthRateMax:     0.2,
			StandardDeviation: 0.1,
			DensityDependence: model.DDLogistic,
			HumanEffect:       model.HumanNone,
			Results:           []string{model.ResTotalAbundance},
		},
		Generators: []*generator.Generator{fieldGenerator(t, ncells, steps)},
		Seed:       99,
	}
}

func testRows(n int, failSample int) []SampleRow {
	rows := make([]SampleRow, n)
	for k := range rows {
		ff := 0.
		if k+1 == failSample {
			ff = 1.
		}
		rows[k] = SampleRow{
			Sample: k + 1,
			Values: map[string]float64{"failFlag": ff},
			Levels: map[string]string{},
		}
	}
	return rows
}

func TestEnsembleIsolatesFailures(t *testing.T) {
	mgr := Manager{Tmpl: testTemplate(t, 4, 12)}
	rs, err := mgr.Run(testRows(6, 3), 3)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rs.Results) != 6 {
		t.Fatalf("%d results, want 6", len(rs.Results))
	}
	if rs.Nfailed() != 1 {
		t.Fatalf("%d failures, want 1", rs.Nfailed())
	}
	for _, r := range rs.Results {
		if r.Sample == 3 {
			if !r.Failed() {
				t.Fatal("sample 3 should have failed")
			}
			continue
		}
		if r.Failed() {
			t.Fatalf("sample %d failed: %s", r.Sample, r.Err)
		}
		if len(r.Model.Series[model.ResTotalAbundance]) != 12 {
			t.Fatalf("sample %d produced %d steps, want 12", r.Sample, len(r.Model.Series[model.ResTotalAbundance]))
		}
	}
}

func TestEnsembleIndependentOfParallelism(t *testing.T) {
	series := func(nwrkrs int) [][]float64 {
		mgr := Manager{Tmpl: testTemplate(t, 3, 25)}
		rs, err := mgr.Run(testRows(5, 0), nwrkrs)
		if err != nil {
			t.Fatalf("run (%d workers): %v", nwrkrs, err)
		}
		out := make([][]float64, len(rs.Results))
		for i, r := range rs.Results {
			out[i] = r.Model.Series[model.ResTotalAbundance]
		}
		return out
	}
	if !reflect.DeepEqual(series(1), series(4)) {
		t.Fatal("replicate results depend on parallelism degree")
	}
}

func TestResultNameDeterministic(t *testing.T) {
	tmpl := testTemplate(t, 2, 3)
	row := SampleRow{Sample: 7, Values: map[string]float64{}, Levels: map[string]string{"climateModel": "h3"}}
	if nm := tmpl.ResultName(row); nm != "7" {
		t.Fatalf("default name %q, want \"7\"", nm)
	}
	tmpl.NameBy = []string{"sample", "climateModel"}
	if nm := tmpl.ResultName(row); nm != "7.h3" {
		t.Fatalf("name %q, want \"7.h3\"", nm)
	}
}

func TestTemplateNotMutated(t *testing.T) {
	tmpl := testTemplate(t, 2, 4)
	before := tmpl.Config
	mgr := Manager{Tmpl: tmpl}
	if _, err := mgr.Run(testRows(3, 0), 2); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(tmpl.Config, before) {
		t.Fatal("shared template mutated by ensemble run")
	}
}
