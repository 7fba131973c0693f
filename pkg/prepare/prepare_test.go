package prepare_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clindoc/compkit/internal/models"
	"github.com/clindoc/compkit/pkg/llm"
	"github.com/clindoc/compkit/pkg/prepare"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNewTrainingExample(t *testing.T) {
	components := []models.Component{{
		Type:           models.TypeSafety,
		Title:          "AE Reporting",
		Text:           "All serious adverse events must be reported within 24 hours.",
		Confidence:     0.96,
		ReusePotential: models.ReuseHigh,
		Rationale:      "Standard safety reporting",
	}}

	example, err := prepare.NewTrainingExample("some clinical text", components)
	require.NoError(t, err)
	require.Len(t, example.Messages, 3)

	assert.Equal(t, "system", example.Messages[0].Role)
	assert.Equal(t, "user", example.Messages[1].Role)
	assert.Equal(t, "assistant", example.Messages[2].Role)
	assert.Contains(t, example.Messages[1].Content, "some clinical text")

	// Assistant content is a JSON string, not nested JSON.
	var parsed []models.Component
	require.NoError(t, json.Unmarshal([]byte(example.Messages[2].Content), &parsed))
	assert.Equal(t, components, parsed)
}

func TestTrainingExampleRoundTripThroughParser(t *testing.T) {
	components := []models.Component{
		{Type: models.TypeBoilerplate, Title: "A", Text: "t1", Confidence: 0.9, ReusePotential: models.ReuseHigh, Rationale: "r1"},
		{Type: models.TypeProcedure, Title: "B", Text: "t2", Confidence: 0.87, ReusePotential: models.ReuseMedium, Rationale: "r2"},
	}

	example, err := prepare.NewTrainingExample("text", components)
	require.NoError(t, err)

	got := llm.ParseComponents(example.Messages[2].Content)
	assert.Equal(t, components, got)
}

func TestSyntheticExamples(t *testing.T) {
	examples, err := prepare.SyntheticExamples(testRand())
	require.NoError(t, err)

	// 6 base examples plus 15 replicated rounds of 6.
	assert.Len(t, examples, 6*16)

	for i, ex := range examples {
		require.Len(t, ex.Messages, 3, "example %d", i)
		var components []models.Component
		require.NoError(t, json.Unmarshal([]byte(ex.Messages[2].Content), &components))
		require.Len(t, components, 1)
		c := components[0]
		assert.GreaterOrEqual(t, c.Confidence, 0.85)
		assert.LessOrEqual(t, c.Confidence, 0.98)
		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.Text)
	}

	// Replicas redraw only the confidence; labels and text must match
	// the base example for the same seed position.
	var base, replica []models.Component
	require.NoError(t, json.Unmarshal([]byte(examples[0].Messages[2].Content), &base))
	require.NoError(t, json.Unmarshal([]byte(examples[6].Messages[2].Content), &replica))
	assert.Equal(t, base[0].Type, replica[0].Type)
	assert.Equal(t, base[0].Title, replica[0].Title)
	assert.Equal(t, base[0].Text, replica[0].Text)
	assert.Equal(t, base[0].ReusePotential, replica[0].ReusePotential)
}

func TestFromCSV(t *testing.T) {
	para1 := strings.Repeat("Inclusion criteria apply to all enrolled subjects here. ", 2)
	para2 := strings.Repeat("Adverse event reporting and safety monitoring procedures. ", 2)
	body := para1 + "\n\n" + para2

	csvData := "medical_specialty,description,transcription\n" +
		"Cardiology,short,\"" + body + "\"\n" +
		"Surgery,too short,tiny\n"

	examples, err := prepare.FromCSV(strings.NewReader(csvData), testRand())
	require.NoError(t, err)
	require.Len(t, examples, 1, "row under 100 chars must be skipped")

	var components []models.Component
	require.NoError(t, json.Unmarshal([]byte(examples[0].Messages[2].Content), &components))
	require.Len(t, components, 2)

	assert.Equal(t, "Cardiology - Section 1", components[0].Title)
	assert.Equal(t, "Cardiology - Section 2", components[1].Title)
	assert.Equal(t, models.TypeStudySection, components[0].Type)
	assert.Equal(t, models.TypeSafety, components[1].Type)
	for _, c := range components {
		assert.GreaterOrEqual(t, c.Confidence, 0.85)
		assert.LessOrEqual(t, c.Confidence, 0.98)
		assert.LessOrEqual(t, len(c.Text), 500)
	}
}

func TestFromCSVPicksLongestTextColumn(t *testing.T) {
	long := strings.Repeat("the full transcription body with plenty of content here. ", 4)
	csvData := "specialty,text,transcription\n" +
		"General,shorter text value,\"" + long + "\"\n"

	examples, err := prepare.FromCSV(strings.NewReader(csvData), testRand())
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Contains(t, examples[0].Messages[1].Content, "the full transcription body")
}

func TestFromCSVCapsParagraphs(t *testing.T) {
	var paras []string
	for i := 0; i < 8; i++ {
		paras = append(paras, strings.Repeat(fmt.Sprintf("paragraph %d filler content for the minimum length. ", i), 2))
	}
	body := strings.Join(paras, "\n\n")
	csvData := "specialty,transcription\n" + "General,\"" + body + "\"\n"

	examples, err := prepare.FromCSV(strings.NewReader(csvData), testRand())
	require.NoError(t, err)
	require.Len(t, examples, 1)

	var components []models.Component
	require.NoError(t, json.Unmarshal([]byte(examples[0].Messages[2].Content), &components))
	assert.Len(t, components, 5)
}

func TestFromCSVDefaultSpecialty(t *testing.T) {
	body := strings.Repeat("procedure and assessment schedule for each study visit. ", 3)
	csvData := "transcription\n" + "\"" + body + "\"\n"

	examples, err := prepare.FromCSV(strings.NewReader(csvData), testRand())
	require.NoError(t, err)
	require.Len(t, examples, 1)

	var components []models.Component
	require.NoError(t, json.Unmarshal([]byte(examples[0].Messages[2].Content), &components))
	assert.Equal(t, "General - Section 1", components[0].Title)
}

func TestValidateDropsMalformedExamples(t *testing.T) {
	good, err := prepare.NewTrainingExample("text", []models.Component{{Type: models.TypeSafety, Title: "t", Text: "x", Confidence: 0.9, ReusePotential: models.ReuseHigh, Rationale: "r"}})
	require.NoError(t, err)

	twoMessages := models.TrainingExample{Messages: good.Messages[:2]}
	emptyContent := models.TrainingExample{Messages: []models.Message{
		{Role: "system", Content: "s"}, {Role: "user", Content: ""}, {Role: "assistant", Content: "[]"},
	}}
	badAssistant := models.TrainingExample{Messages: []models.Message{
		{Role: "system", Content: "s"}, {Role: "user", Content: "u"}, {Role: "assistant", Content: "{not json"},
	}}

	valid := prepare.Validate([]models.TrainingExample{good, twoMessages, emptyContent, badAssistant})
	assert.Equal(t, []models.TrainingExample{good}, valid)
}

func TestSplitRatioAndNoOverlap(t *testing.T) {
	examples := make([]models.TrainingExample, 100)
	for i := range examples {
		ex, err := prepare.NewTrainingExample(fmt.Sprintf("example text %d", i), []models.Component{{
			Type: models.TypeProcedure, Title: fmt.Sprintf("T%d", i), Text: "x", Confidence: 0.9, ReusePotential: models.ReuseMedium, Rationale: "r",
		}})
		require.NoError(t, err)
		examples[i] = ex
	}

	pipeline := prepare.NewPipeline(prepare.PipelineConfig{TrainSplit: 0.8, Rand: testRand()})
	train, validation := pipeline.Split(examples)

	assert.Len(t, train, 80)
	assert.Len(t, validation, 20)

	seen := map[string]bool{}
	for _, ex := range train {
		seen[ex.Messages[1].Content] = true
	}
	for _, ex := range validation {
		assert.False(t, seen[ex.Messages[1].Content], "example present in both partitions")
	}
}

func TestPipelineRunSyntheticOnly(t *testing.T) {
	dir := t.TempDir()

	pipeline := prepare.NewPipeline(prepare.PipelineConfig{TrainSplit: 0.8, Rand: testRand()})
	summary, err := pipeline.Run("", dir, true)
	require.NoError(t, err)

	assert.Equal(t, 96, summary.Synthetic)
	assert.Equal(t, 96, summary.Valid)
	assert.Equal(t, summary.TrainCount+summary.ValidationCount, summary.Valid)

	for _, path := range []string{summary.TrainPath, summary.ValidationPath} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		for _, line := range lines {
			var ex models.TrainingExample
			require.NoError(t, json.Unmarshal([]byte(line), &ex))
			require.Len(t, ex.Messages, 3)
		}
	}
	assert.Equal(t, filepath.Join(dir, "training_data.jsonl"), summary.TrainPath)
	assert.Equal(t, filepath.Join(dir, "validation_data.jsonl"), summary.ValidationPath)
}
