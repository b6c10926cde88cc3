// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema is the structural contract for planner output. It only pins
// the container types; field presence and per-item semantics belong to the
// gate's rule walk.
var envelopeSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"status": map[string]interface{}{
			"type": "string",
		},
		"normalized_schema": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"test_cases": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
		"errors": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
}

// ValidateEnvelope checks a raw planner document against the envelope schema
// and returns one message per violation, sorted for deterministic output.
// An empty slice means the envelope is structurally sound.
func ValidateEnvelope(doc map[string]interface{}) ([]string, error) {
	schemaBytes, err := json.Marshal(envelopeSchema)
	if err != nil {
		return nil, fmt.Errorf("envelope validation error: failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("envelope validation error: failed to serialize document: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(docBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("envelope validation error: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		messages = append(messages, fmt.Sprintf("envelope: %s", resultErr))
	}
	sort.Strings(messages)

	return messages, nil
}
