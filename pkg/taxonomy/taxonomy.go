package taxonomy

import (
	"strings"
	"unicode/utf8"

	"github.com/clindoc/compkit/internal/models"
)

// Types lists the six component types in their fixed enumeration order.
// Classification tie-breaks resolve to the first type in this order, so
// the order is part of the contract.
var Types = []models.ComponentType{
	models.TypeBoilerplate,
	models.TypeDefinition,
	models.TypeStudySection,
	models.TypeDrugInfo,
	models.TypeSafety,
	models.TypeProcedure,
}

// keywords drive the heuristic pre-labeler used for training data. They
// are matched as case-insensitive substrings anywhere in the span.
var keywords = map[models.ComponentType][]string{
	models.TypeBoilerplate:  {"compliance", "regulatory", "gcp", "ich", "fda", "confidential", "agreement", "ethical"},
	models.TypeDefinition:   {"defined as", "means", "refers to", "definition", "endpoint", "primary endpoint", "secondary endpoint"},
	models.TypeStudySection: {"inclusion criteria", "exclusion criteria", "objective", "purpose", "eligibility", "criteria"},
	models.TypeDrugInfo:     {"dose", "dosage", "formulation", "mechanism", "pharmacokinetic", "administration", "drug", "medication"},
	models.TypeSafety:       {"adverse event", "serious adverse", "safety", "monitoring", "reporting", "side effect", "toxicity"},
	models.TypeProcedure:    {"procedure", "assessment", "visit", "schedule", "measurement", "evaluation", "blood", "sample", "test"},
}

// TypeDescription backs the public taxonomy endpoint.
type TypeDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var descriptions = []TypeDescription{
	{Name: "boilerplate", Description: "Standard regulatory or administrative text"},
	{Name: "definition", Description: "Precise definitions of terms or endpoints"},
	{Name: "study_section", Description: "Study-specific methodology or procedures"},
	{Name: "drug_info", Description: "Information about investigational product"},
	{Name: "safety", Description: "Safety monitoring or reporting procedures"},
	{Name: "procedure", Description: "Clinical or administrative procedures"},
}

// Descriptions returns the public descriptor for each component type.
func Descriptions() []TypeDescription {
	out := make([]TypeDescription, len(descriptions))
	copy(out, descriptions)
	return out
}

// Classify maps a text span to exactly one component type by counting
// keyword hits per type. The highest count wins; ties go to the earlier
// type in the enumeration. A span with no hits at all defaults to
// study_section.
func Classify(text string) models.ComponentType {
	lower := strings.ToLower(text)

	best := models.TypeStudySection
	bestScore := 0
	for _, t := range Types {
		score := 0
		for _, kw := range keywords[t] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = t
			bestScore = score
		}
	}
	return best
}

// EstimateReusePotential is a pure rule table over (text, type). It never
// produces "low"; that value only comes back from the model at serving
// time.
func EstimateReusePotential(text string, t models.ComponentType) models.ReusePotential {
	switch t {
	case models.TypeBoilerplate:
		return models.ReuseHigh
	case models.TypeDefinition:
		// Character count, not bytes: clinical text carries multibyte
		// symbols (≥, µg, °C) and the 200 cutoff is over characters.
		if utf8.RuneCountInString(text) > 200 {
			return models.ReuseMedium
		}
		return models.ReuseHigh
	default:
		return models.ReuseMedium
	}
}
