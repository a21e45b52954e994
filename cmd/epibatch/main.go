// Headless scenario runner: executes one or more simulations to completion
// and writes their timeseries as CSV/JSON, plus optional chart and animation
// artifacts. Scenarios share no state and run in parallel.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/contagion/engine"
	"github.com/lixenwraith/contagion/export"
	"github.com/lixenwraith/contagion/parameter"
	"github.com/lixenwraith/contagion/record"
)

// Scenario pairs a name with a full engine configuration. Scenario files are
// JSON arrays of these.
type Scenario struct {
	Name   string        `json:"name"`
	Config engine.Config `json:"config"`
}

var (
	scenariosFlag = flag.String("scenarios", "", "JSON scenario file; empty runs a single default scenario")
	outFlag       = flag.String("out", ".", "output directory")
	stepsFlag     = flag.Int("steps", 2000, "steps per scenario")
	dtFlag        = flag.Float64("dt", parameter.DtClamp, "simulated seconds per step")
	jobsFlag      = flag.Int("jobs", runtime.NumCPU(), "parallel scenario runs")
	chartFlag     = flag.Bool("chart", true, "write a PNG chart per scenario")
	videoFlag     = flag.Bool("video", false, "write an AVI animation per scenario")
	dashboardFlag = flag.Bool("dashboard", false, "also write the five-column dashboard CSV shape")
	seedFlag      = flag.Uint64("seed", 1, "seed for the default scenario")
)

const (
	videoWidth      = 640
	videoHeight     = 496
	videoFPS        = 20
	videoFrameEvery = 5 // capture one frame per this many steps
)

func main() {
	flag.Parse()

	if *dtFlag <= 0 || *dtFlag > parameter.DtClamp {
		fmt.Fprintf(os.Stderr, "epibatch: dt must be in (0, %v]\n", parameter.DtClamp)
		os.Exit(1)
	}

	scenarios, err := loadScenarios(*scenariosFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epibatch: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outFlag, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "epibatch: %v\n", err)
		os.Exit(1)
	}

	var g errgroup.Group
	g.SetLimit(*jobsFlag)
	for _, sc := range scenarios {
		sc := sc
		g.Go(func() error {
			return runScenario(sc)
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "epibatch: %v\n", err)
		os.Exit(1)
	}
}

func loadScenarios(path string) ([]Scenario, error) {
	if path == "" {
		cfg := engine.DefaultConfig()
		cfg.Seed = *seedFlag
		return []Scenario{{Name: "default", Config: cfg}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var scenarios []Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("parse scenarios %s: %w", path, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s is empty", path)
	}
	for i, sc := range scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i)
		}
	}
	return scenarios, nil
}

func runScenario(sc Scenario) error {
	sim, err := engine.New(sc.Config)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if sim.SeededInfected() < sc.Config.InitialInfected {
		log.Printf("scenario %s: partial seeding, %d of %d initial infections placed",
			sc.Name, sim.SeededInfected(), sc.Config.InitialInfected)
	}

	var video *export.VideoWriter
	if *videoFlag {
		video, err = export.NewVideoWriter(outPath(sc.Name, "avi"), videoWidth, videoHeight, videoFPS)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	for step := 0; step < *stepsFlag; step++ {
		sim.Step(*dtFlag)
		if video != nil && step%videoFrameEvery == 0 {
			if err := video.Frame(sim); err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
		}
	}
	if video != nil {
		if err := video.Close(); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	samples := sim.Timeseries()
	if err := writeFile(outPath(sc.Name, "csv"), func(f *os.File) error {
		return record.WriteCSV(f, samples)
	}); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if err := writeFile(outPath(sc.Name, "json"), func(f *os.File) error {
		return record.WriteJSON(f, samples)
	}); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if *dashboardFlag {
		if err := writeFile(outPath(sc.Name+"_dashboard", "csv"), func(f *os.File) error {
			return record.WriteDashboardCSV(f, samples)
		}); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	if *chartFlag && len(samples) >= 2 {
		png, err := export.Chart(samples, 1024, 640)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if err := os.WriteFile(outPath(sc.Name, "png"), png, 0o644); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}

	c := sim.Snapshot()
	log.Printf("scenario %s: t=%.1fs healthy=%d infected=%d asymptomatic=%d recovered=%d vaccinated=%d samples=%d",
		sc.Name, sim.Time(), c.Healthy, c.Infected, c.Asymptomatic, c.Recovered, c.Vaccinated, len(samples))
	return nil
}

func outPath(name, ext string) string {
	return filepath.Join(*outFlag, name+"."+ext)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
