package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"endfind/binlog"
	"endfind/config"
	"endfind/estimator"
	"endfind/observe"
	"endfind/render"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	input := flag.String("in", "", "File of teleport commands")
	capturePath := flag.String("capture", "", "Read observations from a capture instead")
	out := flag.String("out", "posterior.png", "Output PNG")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	var obs []estimator.Observation
	switch {
	case *capturePath != "":
		p := binlog.NewParser(*capturePath)
		if err := p.Parse(); err != nil {
			log.Fatalf("Read capture failed: %v", err)
		}
		obs = p.Observations()
	case *input != "":
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Open input failed: %v", err)
		}
		obs, err = observe.ReadAll(f)
		f.Close()
		if err != nil {
			log.Fatalf("Read observations failed: %v", err)
		}
	default:
		log.Fatal("Usage: heatmap (-in <commands> | -capture <file>) [-out posterior.png]")
	}

	e := cfg.Estimator
	est, err := estimator.New(e.Sigma, obs, e.Options()...)
	if err != nil {
		log.Fatalf("Invalid estimator settings: %v", err)
	}
	post, err := est.Scan(context.Background(), e.SearchParams())
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	if pred, ok := post.Prediction(); ok {
		fmt.Println(pred)
	}
	if err := render.Posterior(post, obs, est.Catalog(), *out); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	log.Printf("Wrote %s (%s cells)", *out, humanize.Comma(int64(len(post.Cells))))
}
