package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/fatih/color"

	cfgPkg "github.com/clindoc/compkit/pkg/config"
	"github.com/clindoc/compkit/pkg/prepare"
)

func main() {
	var configPath string
	var input string
	var output string
	var syntheticOnly bool
	var trainSplit float64
	var seed int64

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&input, "input", "", "Input CSV file")
	flag.StringVar(&output, "output", "", "Output directory (overrides config)")
	flag.BoolVar(&syntheticOnly, "synthetic-only", false, "Use only synthetic data")
	flag.Float64Var(&trainSplit, "train-split", 0, "Training split ratio (overrides config)")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 = time-based, not reproducible)")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if output == "" {
		output = cfg.Prepare.OutputDir
	}
	if trainSplit == 0 {
		trainSplit = cfg.Prepare.TrainSplit
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	pipeline := prepare.NewPipeline(prepare.PipelineConfig{
		TrainSplit: trainSplit,
		Rand:       rand.New(rand.NewSource(seed)),
	})

	color.Blue("Generating training examples...")
	summary, err := pipeline.Run(input, output, syntheticOnly)
	if err != nil {
		color.Red("Preparation failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Generated %d synthetic examples", summary.Synthetic)
	if summary.FromCSV > 0 {
		color.Green("Extracted %d examples from CSV", summary.FromCSV)
	}
	color.Green("Valid: %d / %d", summary.Valid, summary.Total)
	color.Green("Training:   %s (%d examples)", summary.TrainPath, summary.TrainCount)
	color.Green("Validation: %s (%d examples)", summary.ValidationPath, summary.ValidationCount)
}
