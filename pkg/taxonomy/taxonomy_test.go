package taxonomy_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clindoc/compkit/internal/models"
	"github.com/clindoc/compkit/pkg/taxonomy"
)

func TestClassifyKeywordMatch(t *testing.T) {
	tests := []struct {
		text string
		want models.ComponentType
	}{
		{"This study complies with GCP and ICH regulatory requirements.", models.TypeBoilerplate},
		{"Overall survival is defined as the primary endpoint of the study.", models.TypeDefinition},
		{"Inclusion criteria: age over 18 with confirmed eligibility.", models.TypeStudySection},
		{"The dose is 100mg twice daily; pharmacokinetic data support this dosage.", models.TypeDrugInfo},
		{"All serious adverse events require safety reporting within 24 hours.", models.TypeSafety},
		{"Blood sample collection follows the visit schedule for each assessment.", models.TypeProcedure},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, taxonomy.Classify(tt.text), "text: %s", tt.text)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	assert.Equal(t, models.TypeBoilerplate, taxonomy.Classify("REGULATORY COMPLIANCE PER FDA"))
}

func TestClassifyNoMatchesDefaultsToStudySection(t *testing.T) {
	assert.Equal(t, models.TypeStudySection, taxonomy.Classify("lorem ipsum dolor sit amet"))
	assert.Equal(t, models.TypeStudySection, taxonomy.Classify(""))
}

func TestClassifyTieBreakIsEnumerationOrder(t *testing.T) {
	// One boilerplate keyword and one safety keyword: boilerplate comes
	// first in the enumeration and must win the tie, every time.
	text := "gcp toxicity"
	for i := 0; i < 10; i++ {
		assert.Equal(t, models.TypeBoilerplate, taxonomy.Classify(text))
	}
}

func TestEstimateReusePotentialBoilerplate(t *testing.T) {
	assert.Equal(t, models.ReuseHigh, taxonomy.EstimateReusePotential("", models.TypeBoilerplate))
	assert.Equal(t, models.ReuseHigh, taxonomy.EstimateReusePotential(strings.Repeat("x", 5000), models.TypeBoilerplate))
}

func TestEstimateReusePotentialDefinitionBoundary(t *testing.T) {
	assert.Equal(t, models.ReuseHigh, taxonomy.EstimateReusePotential(strings.Repeat("a", 199), models.TypeDefinition))
	assert.Equal(t, models.ReuseHigh, taxonomy.EstimateReusePotential(strings.Repeat("a", 200), models.TypeDefinition))
	assert.Equal(t, models.ReuseMedium, taxonomy.EstimateReusePotential(strings.Repeat("a", 201), models.TypeDefinition))

	// The cutoff counts characters, not bytes: 150 two-byte characters
	// is 300 bytes but still a short definition.
	assert.Equal(t, models.ReuseHigh, taxonomy.EstimateReusePotential(strings.Repeat("µ", 150), models.TypeDefinition))
	assert.Equal(t, models.ReuseHigh, taxonomy.EstimateReusePotential(strings.Repeat("µ", 200), models.TypeDefinition))
	assert.Equal(t, models.ReuseMedium, taxonomy.EstimateReusePotential(strings.Repeat("µ", 201), models.TypeDefinition))
}

func TestEstimateReusePotentialOtherTypes(t *testing.T) {
	for _, ct := range []models.ComponentType{models.TypeStudySection, models.TypeDrugInfo, models.TypeSafety, models.TypeProcedure} {
		assert.Equal(t, models.ReuseMedium, taxonomy.EstimateReusePotential("short", ct))
	}
}

func TestDescriptionsCoverAllTypes(t *testing.T) {
	descs := taxonomy.Descriptions()
	assert.Len(t, descs, len(taxonomy.Types))
	for i, ct := range taxonomy.Types {
		assert.Equal(t, string(ct), descs[i].Name)
		assert.NotEmpty(t, descs[i].Description)
	}
}
