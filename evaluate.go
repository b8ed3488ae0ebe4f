package rangifer

import (
	"github.com/ecanteri/Reindeer-Appendix02/model"
	"github.com/gosuri/uiprogress"
)

// EvaluateSerial runs a single replicate with a per-timestep progress bar,
// no concurrency. Useful for inspecting one parameter combination.
func (m *Manager) EvaluateSerial(row SampleRow) (*SimulationResult, error) {
	if err := m.Tmpl.Check(); err != nil {
		return nil, err
	}
	rc, err := m.Tmpl.bind(row)
	if err != nil {
		return nil, err
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(rc.Cfg.BurnIn + rc.Cfg.Steps).AppendCompleted().PrependElapsed()
	rc.Cfg.OnStep = func(int) { bar.Incr() }
	res, err := model.Run(&rc.Cfg, &rc.In)
	uiprogress.Stop()
	if err != nil {
		return nil, err
	}
	res.Sample = row.Sample

	sr := &SimulationResult{Sample: row.Sample, Name: m.Tmpl.ResultName(row), Model: res}
	if m.OutDir != "" {
		prfx := m.OutDir + "sample." + sr.Name
		if err := sr.SaveGob(prfx + ".gob"); err != nil {
			return nil, err
		}
		sr.writeSeriesCSV(prfx+".csv", rc.Cfg.Results)
	}
	return sr, nil
}
