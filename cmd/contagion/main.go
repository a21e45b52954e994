// Interactive terminal front end: drives the simulation engine off a
// wall-clock ticker and renders the field with tcell. The engine itself does
// no timing; this driver supplies clamped dt values.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/contagion/engine"
	"github.com/lixenwraith/contagion/parameter"
	"github.com/lixenwraith/contagion/record"
	"github.com/lixenwraith/contagion/render"
)

var (
	populationFlag   = flag.Int("population", 200, "number of agents")
	infectedFlag     = flag.Int("infected", 3, "initial infected count")
	speedFlag        = flag.Float64("speed", 1.0, "movement speed multiplier")
	radiusFlag       = flag.Float64("radius", parameter.DefaultInfectionRadius, "infection radius in world units")
	probFlag         = flag.Float64("prob", parameter.DefaultTransmissionProb, "base transmission probability")
	recoveryFlag     = flag.Float64("recovery", parameter.DefaultRecoveryTime, "recovery time in simulated seconds")
	incubationFlag   = flag.Float64("incubation", parameter.DefaultIncubationTime, "incubation time in simulated seconds")
	vaccinatedFlag   = flag.Float64("vaccinated", 0, "vaccinated fraction [0,1]")
	asymptomaticFlag = flag.Float64("asymptomatic", 0, "asymptomatic exposure fraction [0,1]")
	seedFlag         = flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed (default: wall clock)")
	outFlag          = flag.String("out", "", "write the timeseries CSV to this path on exit")
)

const frameInterval = 33 * time.Millisecond

func main() {
	// Restore the terminal even if the driver panics
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\ncontagion crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg := engine.Config{
		Population:        *populationFlag,
		InitialInfected:   *infectedFlag,
		Speed:             *speedFlag,
		InfectionRadius:   *radiusFlag,
		TransmissionProb:  *probFlag,
		RecoveryTime:      *recoveryFlag,
		IncubationTime:    *incubationFlag,
		VaccinatedRatio:   *vaccinatedFlag,
		AsymptomaticRatio: *asymptomaticFlag,
		Width:             parameter.DefaultFieldWidth,
		Height:            parameter.DefaultFieldHeight,
		Seed:              *seedFlag,
	}

	sim, err := engine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "contagion: %v\n", err)
		os.Exit(1)
	}
	if sim.SeededInfected() < cfg.InitialInfected {
		log.Printf("partial seeding: %d of %d initial infections placed", sim.SeededInfected(), cfg.InitialInfected)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "contagion: create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "contagion: init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	if err := run(screen, sim, cfg); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "contagion: %v\n", err)
		os.Exit(1)
	}

	if *outFlag != "" {
		if err := writeTimeseries(*outFlag, sim); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "contagion: %v\n", err)
			os.Exit(1)
		}
	}
}

func run(screen tcell.Screen, sim *engine.Engine, cfg engine.Config) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	view := render.NewView(screen)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	paused := false
	last := time.Now()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
					return nil
				case ev.Rune() == ' ':
					paused = !paused
					last = time.Now()
				case ev.Rune() == 'r':
					fresh, err := engine.New(cfg)
					if err != nil {
						return err
					}
					*sim = *fresh
					view.Reset()
					last = time.Now()
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case now := <-ticker.C:
			if !paused {
				// Clamp dt so a stalled terminal cannot destabilize the discretization
				dt := now.Sub(last).Seconds()
				if dt > parameter.DtClamp {
					dt = parameter.DtClamp
				}
				sim.Step(dt)
			}
			last = now
			view.Draw(sim, paused)
		}
	}
}

func writeTimeseries(path string, sim *engine.Engine) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := record.WriteCSV(f, sim.Timeseries()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
