package prepare

import (
	"math"
	"math/rand"

	"github.com/clindoc/compkit/internal/models"
)

type seedExample struct {
	text       string
	components []models.Component
}

// seedExamples is the hand-curated base set, one per component type.
var seedExamples = []seedExample{
	{
		text: "This study will be conducted in accordance with Good Clinical Practice (GCP) as defined by the International Council for Harmonisation (ICH) and in accordance with the ethical principles underlying European Union Directive 2001/20/EC.",
		components: []models.Component{{
			Type:           models.TypeBoilerplate,
			Title:          "GCP Compliance Statement",
			Text:           "This study will be conducted in accordance with Good Clinical Practice (GCP) as defined by the International Council for Harmonisation (ICH) and in accordance with the ethical principles underlying European Union Directive 2001/20/EC.",
			Confidence:     0.97,
			ReusePotential: models.ReuseHigh,
			Rationale:      "Standard regulatory compliance statement",
		}},
	},
	{
		text: "Primary Endpoint: The primary endpoint is overall survival (OS), defined as the time from randomization to death from any cause. Patients lost to follow-up will be censored at last contact.",
		components: []models.Component{{
			Type:           models.TypeDefinition,
			Title:          "Overall Survival Definition",
			Text:           "The primary endpoint is overall survival (OS), defined as the time from randomization to death from any cause. Patients lost to follow-up will be censored at last contact.",
			Confidence:     0.95,
			ReusePotential: models.ReuseHigh,
			Rationale:      "Standard endpoint definition",
		}},
	},
	{
		text: "Inclusion Criteria: 1. Age >= 18 years 2. Histologically confirmed diagnosis 3. ECOG performance status 0-1 4. Adequate organ function 5. Written informed consent",
		components: []models.Component{{
			Type:           models.TypeStudySection,
			Title:          "Inclusion Criteria",
			Text:           "1. Age >= 18 years 2. Histologically confirmed diagnosis 3. ECOG performance status 0-1 4. Adequate organ function 5. Written informed consent",
			Confidence:     0.94,
			ReusePotential: models.ReuseMedium,
			Rationale:      "Standard inclusion criteria structure",
		}},
	},
	{
		text: "The investigational product XYZ-123 is administered orally at 100mg twice daily with food. The drug has a half-life of 12 hours.",
		components: []models.Component{{
			Type:           models.TypeDrugInfo,
			Title:          "Drug Administration",
			Text:           "The investigational product XYZ-123 is administered orally at 100mg twice daily with food. The drug has a half-life of 12 hours.",
			Confidence:     0.92,
			ReusePotential: models.ReuseMedium,
			Rationale:      "Drug dosing information",
		}},
	},
	{
		text: "Adverse events will be graded according to NCI-CTCAE version 5.0. All serious adverse events must be reported within 24 hours.",
		components: []models.Component{{
			Type:           models.TypeSafety,
			Title:          "Adverse Event Reporting",
			Text:           "Adverse events will be graded according to NCI-CTCAE version 5.0. All serious adverse events must be reported within 24 hours.",
			Confidence:     0.96,
			ReusePotential: models.ReuseHigh,
			Rationale:      "Standard safety reporting procedures",
		}},
	},
	{
		text: "Blood samples for pharmacokinetic analysis will be collected at pre-dose, 1, 2, 4, 8, and 24 hours post-dose.",
		components: []models.Component{{
			Type:           models.TypeProcedure,
			Title:          "PK Sampling Schedule",
			Text:           "Blood samples for pharmacokinetic analysis will be collected at pre-dose, 1, 2, 4, 8, and 24 hours post-dose.",
			Confidence:     0.93,
			ReusePotential: models.ReuseMedium,
			Rationale:      "Standard PK sampling procedure",
		}},
	},
}

// syntheticReplicas is how many additional noisy copies of the base set
// are generated on top of the originals.
const syntheticReplicas = 15

// SyntheticExamples builds the curated base set plus replicas whose
// confidence is redrawn uniformly from [0.85, 0.98]. Labels and text
// never change between replicas; only the confidence varies, to keep
// the fine-tune from overfitting a single confidence value.
func SyntheticExamples(rng *rand.Rand) ([]models.TrainingExample, error) {
	var examples []models.TrainingExample

	for _, seed := range seedExamples {
		example, err := NewTrainingExample(seed.text, seed.components)
		if err != nil {
			return nil, err
		}
		examples = append(examples, example)
	}

	for i := 0; i < syntheticReplicas; i++ {
		for _, seed := range seedExamples {
			varied := make([]models.Component, len(seed.components))
			for j, comp := range seed.components {
				comp.Confidence = drawConfidence(rng)
				varied[j] = comp
			}
			example, err := NewTrainingExample(seed.text, varied)
			if err != nil {
				return nil, err
			}
			examples = append(examples, example)
		}
	}

	return examples, nil
}

// drawConfidence samples uniformly from [0.85, 0.98], rounded to two
// decimals like every confidence value in the training corpus.
func drawConfidence(rng *rand.Rand) float64 {
	v := 0.85 + rng.Float64()*(0.98-0.85)
	return math.Round(v*100) / 100
}
