// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnvelope(t *testing.T) {
	t.Run("SoundEnvelope", func(t *testing.T) {
		doc := map[string]interface{}{
			"status": "ok",
			"normalized_schema": []interface{}{
				map[string]interface{}{"endpoint": "/users", "method": "GET"},
			},
			"test_cases": []interface{}{
				map[string]interface{}{"endpoint": "/users"},
			},
			"errors": []interface{}{},
		}

		messages, err := ValidateEnvelope(doc)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("WrongContainerTypes", func(t *testing.T) {
		doc := map[string]interface{}{
			"status":            "ok",
			"normalized_schema": "not a list",
			"test_cases":        42,
			"errors":            []interface{}{},
		}

		messages, err := ValidateEnvelope(doc)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		for _, msg := range messages {
			assert.Contains(t, msg, "envelope: ")
		}
	})

	t.Run("MissingFieldsAreNotItsJob", func(t *testing.T) {
		messages, err := ValidateEnvelope(map[string]interface{}{})
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("DeterministicOrder", func(t *testing.T) {
		doc := map[string]interface{}{
			"normalized_schema": "nope",
			"test_cases":        "nope",
			"errors":            "nope",
		}

		first, err := ValidateEnvelope(doc)
		require.NoError(t, err)
		second, err := ValidateEnvelope(doc)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
