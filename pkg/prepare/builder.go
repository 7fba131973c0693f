package prepare

import (
	"encoding/json"
	"fmt"

	"github.com/clindoc/compkit/internal/models"
)

// trainingSystemMessage is the fixed instruction block embedded in every
// training example. It is intentionally shorter than the serving-time
// prompt: the fine-tuned model learns the format from the examples.
const trainingSystemMessage = `You are an expert clinical documentation analyst. Identify reusable components in clinical documents.

Return a JSON array of components with this structure:
[{"type": "component_type", "title": "Descriptive title", "text": "Exact text", "confidence": 0.95, "reuse_potential": "high|medium|low", "rationale": "Why this is reusable"}]

Component types: boilerplate, definition, study_section, drug_info, safety, procedure`

// NewTrainingExample assembles a system/user/assistant triple from a
// text span and its labeled components. The assistant content is the
// JSON-array serialization of the components, order preserved. Callers
// should not build examples from an empty component list.
func NewTrainingExample(text string, components []models.Component) (models.TrainingExample, error) {
	assistant, err := json.Marshal(components)
	if err != nil {
		return models.TrainingExample{}, fmt.Errorf("serializing components: %w", err)
	}

	return models.TrainingExample{
		Messages: []models.Message{
			{Role: "system", Content: trainingSystemMessage},
			{Role: "user", Content: fmt.Sprintf("Identify components in this clinical text:\n\n%s", text)},
			{Role: "assistant", Content: string(assistant)},
		},
	}, nil
}
