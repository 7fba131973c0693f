package prepare

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/clindoc/compkit/internal/models"
)

// PipelineConfig controls the shuffle/split stage. Rand must be supplied
// by the caller; runs are only reproducible if the caller seeds it.
type PipelineConfig struct {
	TrainSplit float64
	Rand       *rand.Rand
}

type Pipeline struct {
	config PipelineConfig
}

// Summary reports what the pipeline produced.
type Summary struct {
	Synthetic       int
	FromCSV         int
	Valid           int
	Total           int
	TrainCount      int
	ValidationCount int
	TrainPath       string
	ValidationPath  string
}

func NewPipeline(config PipelineConfig) *Pipeline {
	if config.TrainSplit <= 0 || config.TrainSplit >= 1 {
		config.TrainSplit = 0.8
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Pipeline{config: config}
}

// Run generates synthetic examples, optionally ingests a CSV file,
// validates, shuffles, splits, and writes the two JSONL files under
// outputDir.
func (p *Pipeline) Run(csvPath, outputDir string, syntheticOnly bool) (Summary, error) {
	var summary Summary

	examples, err := SyntheticExamples(p.config.Rand)
	if err != nil {
		return summary, err
	}
	summary.Synthetic = len(examples)

	if csvPath != "" && !syntheticOnly {
		f, err := os.Open(csvPath)
		if err != nil {
			return summary, fmt.Errorf("opening CSV: %w", err)
		}
		csvExamples, err := FromCSV(f, p.config.Rand)
		f.Close()
		if err != nil {
			return summary, err
		}
		summary.FromCSV = len(csvExamples)
		examples = append(examples, csvExamples...)
	}
	summary.Total = len(examples)

	valid := Validate(examples)
	summary.Valid = len(valid)

	train, validation := p.Split(valid)
	summary.TrainCount = len(train)
	summary.ValidationCount = len(validation)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return summary, fmt.Errorf("creating output dir: %w", err)
	}
	summary.TrainPath = filepath.Join(outputDir, "training_data.jsonl")
	summary.ValidationPath = filepath.Join(outputDir, "validation_data.jsonl")

	if err := WriteJSONL(summary.TrainPath, train); err != nil {
		return summary, err
	}
	if err := WriteJSONL(summary.ValidationPath, validation); err != nil {
		return summary, err
	}

	return summary, nil
}

// Validate keeps an example only if it has exactly three messages, all
// with non-empty content, and the assistant message parses as JSON.
// Invalid examples are dropped silently; only the counts surface.
func Validate(examples []models.TrainingExample) []models.TrainingExample {
	var valid []models.TrainingExample
	for _, ex := range examples {
		if len(ex.Messages) != 3 {
			continue
		}
		ok := true
		for _, m := range ex.Messages {
			if m.Content == "" {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if !json.Valid([]byte(ex.Messages[2].Content)) {
			continue
		}
		valid = append(valid, ex)
	}
	return valid
}

// Split shuffles the pool and partitions it at the configured ratio.
// Order within each partition is the shuffled order.
func (p *Pipeline) Split(examples []models.TrainingExample) (train, validation []models.TrainingExample) {
	shuffled := make([]models.TrainingExample, len(examples))
	copy(shuffled, examples)
	p.config.Rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	split := int(float64(len(shuffled)) * p.config.TrainSplit)
	return shuffled[:split], shuffled[split:]
}

// WriteJSONL persists examples one JSON object per line.
func WriteJSONL(path string, examples []models.TrainingExample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ex := range examples {
		if err := enc.Encode(ex); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return w.Flush()
}
