package rangifer

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/ecanteri/Reindeer-Appendix02/model"
	"github.com/maseology/mmio"
)

// SimulationResult is one replicate's persisted record: the selected result
// series plus run metadata, or the failure that ended it.
type SimulationResult struct {
	Sample int
	Name   string
	Model  *model.Result // nil on failure
	Err    string        // empty on success
}

// Failed reports whether the replicate ended in error.
func (sr *SimulationResult) Failed() bool { return sr.Err != "" }

func (sr *SimulationResult) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" SimulationResult.SaveGob %v", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(sr); err != nil {
		return fmt.Errorf(" SimulationResult.SaveGob %v", err)
	}
	return nil
}

func LoadGobSimulationResult(fp string) (*SimulationResult, error) {
	var sr SimulationResult
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&sr); err != nil {
		return nil, err
	}
	return &sr, nil
}

// writeSeriesCSV writes the replicate's selected series, one column per
// selection, one row per timestep.
func (sr *SimulationResult) writeSeriesCSV(fp string, selection []string) {
	if sr.Model == nil || len(selection) == 0 {
		return
	}
	nt := 0
	hdr := "timestep"
	for _, nm := range selection {
		hdr += "," + nm
		if s := sr.Model.Series[nm]; len(s) > nt {
			nt = len(s)
		}
	}
	lns := make([]string, 0, nt+1)
	lns = append(lns, hdr)
	for t := 0; t < nt; t++ {
		ln := fmt.Sprint(t)
		for _, nm := range selection {
			if s := sr.Model.Series[nm]; t < len(s) {
				ln += fmt.Sprintf(",%g", s[t])
			} else {
				ln += ","
			}
		}
		lns = append(lns, ln)
	}
	mmio.WriteLines(fp, lns)
}

// RunSummary aggregates the ensemble outcome: which replicates succeeded or
// failed, and why, without aborting on a single failure.
type RunSummary struct {
	Results []*SimulationResult
}

// Nfailed counts failed replicates.
func (rs *RunSummary) Nfailed() int {
	n := 0
	for _, r := range rs.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// WriteCSV persists the per-replicate outcome table.
func (rs *RunSummary) WriteCSV(fp string) {
	lns := make([]string, 0, len(rs.Results)+1)
	lns = append(lns, "sample,name,status,elapsed,numericFaults,error")
	for _, r := range rs.Results {
		if r.Failed() {
			lns = append(lns, fmt.Sprintf("%d,%s,failed,,,%q", r.Sample, r.Name, r.Err))
		} else {
			lns = append(lns, fmt.Sprintf("%d,%s,ok,%v,%d,", r.Sample, r.Name, r.Model.Elapsed, r.Model.NumericFaults))
		}
	}
	mmio.WriteLines(fp, lns)
}
