package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"endfind/config"
	"endfind/estimator"
	"endfind/observe"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	input := flag.String("in", "-", "File of teleport commands, - for stdin")
	sigma := flag.Float64("sigma", 0, "Bearing noise in degrees (overrides config)")
	radius := flag.Int("radius", 0, "Search radius in cells (overrides config)")
	resolution := flag.Int("res", 0, "Grid step in cells (overrides config)")
	noClosest := flag.Bool("no-closest", false, "Disable the closest-candidate constraint")
	seed := flag.Uint64("seed", 0, "Seed for closest-candidate sampling")
	quiet := flag.Bool("q", false, "Suppress scan diagnostics")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	e := &cfg.Estimator
	if *sigma > 0 {
		e.Sigma = *sigma
	}
	if *radius > 0 {
		e.SearchRadius = *radius
	}
	if *resolution > 0 {
		e.GridResolution = *resolution
	}
	if *noClosest {
		e.UseClosest = false
	}
	if *seed != 0 {
		e.Seed = *seed
	}
	if *quiet {
		estimator.SetLogger(nil)
	}

	var r io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Open input failed: %v", err)
		}
		defer f.Close()
		r = f
	}

	obs, err := observe.ReadAll(r)
	if err != nil {
		log.Fatalf("Read observations failed: %v", err)
	}
	if len(obs) == 0 {
		log.Fatal("no observations")
	}
	for _, o := range obs {
		fmt.Println(o)
	}

	est, err := estimator.New(e.Sigma, obs, e.Options()...)
	if err != nil {
		log.Fatalf("Invalid estimator settings: %v", err)
	}

	start := time.Now()
	pred, ok, err := est.FindContext(context.Background(), e.SearchParams())
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	if !ok {
		fmt.Println("No prediction")
		os.Exit(1)
	}
	fmt.Println(pred)
	log.Printf("%s observations, search took %v", humanize.Comma(int64(len(obs))), time.Since(start).Round(time.Millisecond))
}
