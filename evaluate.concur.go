package rangifer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ecanteri/Reindeer-Appendix02/model"
	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"
)

// Manager orchestrates N independent model runs in parallel, binding each
// replicate's sampled row to the generators, invoking the model, and
// persisting results under deterministic names.
type Manager struct {
	Tmpl     *ModelTemplate
	OutDir   string // empty disables persistence
	Progress bool
}

// Run executes the ensemble on nwrkrs workers. Replicates share the template
// read-only; a failure (including a panic) is isolated to its replicate and
// recorded in the summary rather than aborting siblings.
func (m *Manager) Run(rows []SampleRow, nwrkrs int) (*RunSummary, error) {
	if err := m.Tmpl.Check(); err != nil {
		return nil, err
	}
	if nwrkrs < 1 {
		nwrkrs = 1
	}
	if m.OutDir != "" {
		mmio.MakeDir(m.OutDir)
	}

	var bar *uiprogress.Bar
	if m.Progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(len(rows)).AppendCompleted().PrependElapsed()
	}

	jobs := make(chan SampleRow, nwrkrs)
	out := make(chan *SimulationResult, len(rows))
	var wg sync.WaitGroup
	for w := 0; w < nwrkrs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				out <- m.replicate(row)
				if bar != nil {
					bar.Incr()
				}
			}
		}()
	}
	for _, row := range rows {
		jobs <- row
	}
	close(jobs)
	wg.Wait()
	close(out)
	if m.Progress {
		uiprogress.Stop()
	}

	rs := &RunSummary{}
	for sr := range out {
		rs.Results = append(rs.Results, sr)
	}
	sort.Slice(rs.Results, func(i, j int) bool { return rs.Results[i].Sample < rs.Results[j].Sample })
	if m.OutDir != "" {
		rs.WriteCSV(m.OutDir + "summary.csv")
	}
	return rs, nil
}

// replicate runs one row to completion, converting any error or panic into
// a recorded failure.
func (m *Manager) replicate(row SampleRow) (sr *SimulationResult) {
	sr = &SimulationResult{Sample: row.Sample, Name: m.Tmpl.ResultName(row)}
	defer func() {
		if r := recover(); r != nil {
			sr.Err = fmt.Sprintf("replicate error: panic: %v", r)
		}
	}()

	rc, err := m.Tmpl.bind(row)
	if err != nil {
		sr.Err = err.Error()
		return
	}
	res, err := model.Run(&rc.Cfg, &rc.In)
	if err != nil {
		sr.Err = err.Error()
		return
	}
	res.Sample = row.Sample
	sr.Model = res

	if m.OutDir != "" {
		prfx := m.OutDir + "sample." + sr.Name
		if err := sr.SaveGob(prfx + ".gob"); err != nil {
			sr.Err = err.Error()
			sr.Model = nil
			return
		}
		sr.writeSeriesCSV(prfx+".csv", rc.Cfg.Results)
	}
	return
}
