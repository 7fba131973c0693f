package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/clindoc/compkit/internal/models"
)

// arrayPattern spans from the first '[' to the last ']' in the text.
// The match is deliberately greedy: model output sometimes wraps the
// array in prose on both sides.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ParseComponents recovers a component array from raw model output. It
// tolerates markdown code fences, a wrapper object with a "components"
// key, a bare single object, and malformed output with an embedded
// array. Recovery order: fence strip, direct parse, bracket-pattern
// fallback. If everything fails it returns an empty slice — callers
// cannot distinguish "model found nothing" from "model output was
// garbage", which matches the service's uniform-response contract.
func ParseComponents(raw string) []models.Component {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = stripFence(text)
	}

	if components, ok := decodeComponents(text); ok {
		return components
	}

	// Malformed JSON: salvage the widest bracketed substring.
	if match := arrayPattern.FindString(raw); match != "" {
		var components []models.Component
		if err := json.Unmarshal([]byte(match), &components); err == nil {
			return components
		}
	}

	return []models.Component{}
}

// stripFence returns the body of the first fence-delimited segment,
// minus an optional leading "json" language tag.
func stripFence(text string) string {
	parts := strings.SplitN(text, "```", 3)
	if len(parts) < 2 {
		return text
	}
	body := parts[1]
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

func decodeComponents(text string) ([]models.Component, bool) {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "["):
		var components []models.Component
		if err := json.Unmarshal([]byte(trimmed), &components); err != nil {
			return nil, false
		}
		return components, true

	case strings.HasPrefix(trimmed, "{"):
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
			return nil, false
		}
		if inner, ok := fields["components"]; ok {
			var components []models.Component
			if err := json.Unmarshal(inner, &components); err != nil {
				return nil, false
			}
			return components, true
		}
		// A lone object is treated as a one-element array.
		var single models.Component
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, false
		}
		return []models.Component{single}, true
	}
	return nil, false
}

// AssignIDs annotates components with sequential identifiers in array
// order: comp_001, comp_002, ... IDs are unique within one response and
// carry no meaning across requests.
func AssignIDs(components []models.Component) {
	for i := range components {
		components[i].ComponentID = ComponentID(i + 1)
	}
}

// ComponentID formats the 1-indexed identifier for a component position.
func ComponentID(position int) string {
	return fmt.Sprintf("comp_%03d", position)
}
