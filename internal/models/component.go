package models

// ComponentType is one of the six fixed labels in the component taxonomy.
type ComponentType string

const (
	TypeBoilerplate  ComponentType = "boilerplate"
	TypeDefinition   ComponentType = "definition"
	TypeStudySection ComponentType = "study_section"
	TypeDrugInfo     ComponentType = "drug_info"
	TypeSafety       ComponentType = "safety"
	TypeProcedure    ComponentType = "procedure"
)

// ReusePotential is a coarse estimate of how likely a component is to
// recur verbatim across documents.
type ReusePotential string

const (
	ReuseHigh   ReusePotential = "high"
	ReuseMedium ReusePotential = "medium"
	ReuseLow    ReusePotential = "low"
)

// Component is one extracted, labeled excerpt of clinical text.
// ComponentID is assigned after parsing, in array order, and carries no
// meaning across requests.
type Component struct {
	Type           ComponentType  `json:"type"`
	Title          string         `json:"title"`
	Text           string         `json:"text"`
	Confidence     float64        `json:"confidence"`
	ReusePotential ReusePotential `json:"reuse_potential"`
	Rationale      string         `json:"rationale"`
	ComponentID    string         `json:"component_id,omitempty"`
}

// Message is one role-tagged entry in a chat-format training example.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TrainingExample is an ordered system/user/assistant message triple.
// The assistant content is the JSON-array serialization of the labeled
// components as a string, not nested JSON. Examples are never mutated
// after creation.
type TrainingExample struct {
	Messages []Message `json:"messages"`
}
