package prepare

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/clindoc/compkit/internal/models"
	"github.com/clindoc/compkit/pkg/processor"
	"github.com/clindoc/compkit/pkg/taxonomy"
)

// Column candidates, checked per row. The longest non-empty value wins:
// transcription exports often duplicate a short abstract into
// description, and the full text is the one worth labeling.
var textColumns = []string{"transcription", "description", "text"}
var specialtyColumns = []string{"medical_specialty", "specialty"}

const (
	minRowLength     = 100
	maxParagraphs    = 5
	componentTextCap = 500
	exampleTextCap   = 2000
	defaultSpecialty = "General"
)

// FromCSV derives training examples from a clinical-text CSV export.
// Each qualifying row becomes one example: its paragraphs (at most
// maxParagraphs) are pre-labeled with the keyword classifier and packed
// into the assistant message.
func FromCSV(r io.Reader, rng *rand.Rand) ([]models.TrainingExample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		MinParagraphLength: 50,
		FallbackLength:     1000,
		StripHTML:          true,
	})

	var examples []models.TrainingExample
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged or mangled rows are skipped, matching the
			// tolerant read of the rest of the pipeline.
			continue
		}

		text := longestField(row, index, textColumns)
		if len(text) < minRowLength {
			continue
		}

		specialty := firstField(row, index, specialtyColumns)
		if specialty == "" {
			specialty = defaultSpecialty
		}

		paragraphs := proc.Process(text)
		if len(paragraphs) > maxParagraphs {
			paragraphs = paragraphs[:maxParagraphs]
		}

		components := make([]models.Component, 0, len(paragraphs))
		for i, para := range paragraphs {
			compType := taxonomy.Classify(para)
			components = append(components, models.Component{
				Type:           compType,
				Title:          strings.TrimSpace(fmt.Sprintf("%s - Section %d", specialty, i+1)),
				Text:           processor.Truncate(para, componentTextCap),
				Confidence:     drawConfidence(rng),
				ReusePotential: taxonomy.EstimateReusePotential(para, compType),
				Rationale:      fmt.Sprintf("Self-contained %s section", compType),
			})
		}
		if len(components) == 0 {
			continue
		}

		example, err := NewTrainingExample(processor.Truncate(text, exampleTextCap), components)
		if err != nil {
			return nil, err
		}
		examples = append(examples, example)
	}

	return examples, nil
}

// longestField picks the candidate column with the longest non-empty
// value in this row.
func longestField(row []string, index map[string]int, candidates []string) string {
	best := ""
	for _, name := range candidates {
		i, ok := index[name]
		if !ok || i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		if len(value) > len(best) {
			best = value
		}
	}
	return best
}

func firstField(row []string, index map[string]int, candidates []string) string {
	for _, name := range candidates {
		i, ok := index[name]
		if !ok || i >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[i]); value != "" {
			return value
		}
	}
	return ""
}
