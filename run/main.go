package main

import (
	"fmt"
	"log"
	"runtime"

	rangifer "github.com/ecanteri/Reindeer-Appendix02"
	"github.com/ecanteri/Reindeer-Appendix02/dispersal"
	"github.com/ecanteri/Reindeer-Appendix02/generator"
	"github.com/ecanteri/Reindeer-Appendix02/model"
	"github.com/ecanteri/Reindeer-Appendix02/spatial"
	"github.com/maseology/goHydro/grid"
	"github.com/maseology/mmio"
)

func main() {

	const (
		mdlPrfx = "dat/eurasia."
		outDir  = "out/"

		nsmpl  = 500
		seed   = 1984
		burnin = 10
		nsteps = 1050 // 21,000 years at 20 a/step
		yrstep = 20

		distScale  = 0.001 // m to km
		maxDisp    = 500.  // km
		maxTargets = 40    // target-connectivity cap per cell
		corrAmp    = 0.99
		corrBrdth  = 850.
		corrDec    = 8
		densityMax = 1000.
	)

	// cells of a landmass unreachable before deglaciation; capacity there is
	// zeroed at the first timestep when it would otherwise be positive
	landmass := []int{12, 13, 14, 41, 42}

	fmt.Println("")
	tt := mmio.NewTimer()
	defer tt.Lap(fmt.Sprintf("\nRun complete. n processes: %v", runtime.GOMAXPROCS(0)))

	// region
	gd, err := grid.ReadGDEF(mdlPrfx+"gdef", true)
	if err != nil {
		log.Fatalf(" grid definition load error: %v", err)
	}
	mask, err := generator.LoadGobField(mdlPrfx + "mask.gob")
	if err != nil {
		log.Fatalf(" temporal mask load error: %v", err)
	}
	ice, err := generator.LoadGobField(mdlPrfx + "ice.gob")
	if err != nil {
		log.Fatalf(" ice extent load error: %v", err)
	}
	rgn, err := rangifer.RegionFromGrid(gd, mask)
	if err != nil {
		log.Fatalf(" region build error: %v", err)
	}
	tt.Lap(fmt.Sprintf("region load complete (%s cells)", mmio.Thousands(int64(rgn.Ncells()))))

	// pairwise dispersal distances, the hours-scale step; cached as gob
	var pd *dispersal.PairData
	if _, ok := mmio.FileExists(mdlPrfx + "pairs.gob"); ok {
		if pd, err = dispersal.LoadGobPairData(mdlPrfx + "pairs.gob"); err != nil {
			log.Fatalf(" pair data load error: %v", err)
		}
	} else {
		dm, err := dispersal.CalculateDistanceMatrix(rgn.X, rgn.Y, maxDisp, distScale)
		if err != nil {
			log.Fatalf(" distance matrix error: %v", err)
		}
		dm.LimitTargets(maxTargets)
		pd = dispersal.CalculateDistanceData(dm)
		if err := pd.SaveGob(mdlPrfx + "pairs.gob"); err != nil {
			log.Fatalf(" pair data save error: %v", err)
		}
	}
	tt.Lap("dispersal pair data ready")

	// compact spatial correlation factor
	l, err := spatial.Factorize(spatial.ComputeCorrelations(rgn.DenseDistances(distScale), corrAmp, corrBrdth, 1.), corrDec)
	if err != nil {
		log.Fatalf(" correlation factorization error: %v", err)
	}
	cf := spatial.Compact(l, spatial.DefaultThreshold)
	tt.Lap("correlation factor ready")

	// sampling plan
	var s rangifer.Sampler
	s.Uniform(rangifer.ParGrowthRateMax, 0.26, 0.69, 4)
	s.Uniform(rangifer.ParStandardDeviation, 0., 0.2, 4)
	s.Uniform(rangifer.ParHarvestZ, 1., 2., 3)
	s.Uniform(rangifer.ParHarvestG, 0.05, 0.4, 3)
	s.Uniform(rangifer.ParDispersalP, 0.05, 0.5, 3)
	s.Uniform(rangifer.ParDispersalR, 50., float64(maxDisp), 0)
	s.Uniform("humansMultiplier", 0.5, 2., 3)
	s.Uniform("selectionQuantile", 0., 1., 3)
	s.Categorical("climateModel", []string{"hadcm3", "trace21k", "lovec"})
	rows, err := s.GenerateSamples(nsmpl, seed)
	if err != nil {
		log.Fatalf(" sampling error: %v", err)
	}
	mmio.MakeDir(outDir)
	s.WriteSampleTable(outDir+"samplespace.csv", rows)

	// generators
	ctx := &generator.Context{
		Ncells: rgn.Ncells(),
		BurnIn: burnin,
		Steps:  nsteps,
		Consts: map[string]float64{"densityMax": densityMax},
		Seed:   seed,
	}
	capg, err := generator.NewCapacity(ctx, mdlPrfx+"habitat_{climateModel}.gob", mdlPrfx+"iceavail.gob", landmass)
	if err != nil {
		log.Fatalf(" capacity generator error: %v", err)
	}
	humg, err := generator.NewHumanDensity(ctx, mdlPrfx+"humanmean.gob", mdlPrfx+"humanvar.gob")
	if err != nil {
		log.Fatalf(" human density generator error: %v", err)
	}

	// ensemble
	mgr := rangifer.Manager{
		Tmpl: &rangifer.ModelTemplate{
			Region: rgn,
			Config: model.Config{
				BurnIn:             burnin,
				Steps:              nsteps,
				YearsPerStep:       yrstep,
				DensityDependence:  model.DDLogistic,
				HumanEffect:        model.HumanMultiplicative,
				Harvest:            true,
				HarvestMax:         0.1,
				HarvestMaxN:        5000.,
				AbundanceThreshold: 2.,
				OccupancyThreshold: 3,
				Results:            []string{model.ResTotalAbundance, model.ResTotalHarvest, model.ResOccupancy},
			},
			Generators: []*generator.Generator{capg, humg},
			Pairs:      pd,
			Friction:   dispersal.Friction(mask, ice),
			Corr:       cf,
			Seed:       seed,
		},
		OutDir:   outDir,
		Progress: true,
	}
	rs, err := mgr.Run(rows, runtime.GOMAXPROCS(0))
	if err != nil {
		log.Fatalf(" ensemble error: %v", err)
	}
	fmt.Printf(" %d replicates complete, %d failed\n", len(rs.Results), rs.Nfailed())
}
