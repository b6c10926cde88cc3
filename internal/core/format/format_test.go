// SPDX-License-Identifier: Apache-2.0

package format

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleDoc struct {
	Status string   `json:"status" yaml:"status"`
	Count  int      `json:"count" yaml:"count"`
	Errors []string `json:"errors" yaml:"errors"`
}

func TestParseData(t *testing.T) {
	expected := sampleDoc{
		Status: "ok",
		Count:  3,
		Errors: []string{"a", "b"},
	}

	t.Run("ParseValidYAML", func(t *testing.T) {
		yamlData := `status: ok
count: 3
errors:
  - a
  - b`

		var result sampleDoc
		err := ParseData([]byte(yamlData), &result)
		require.NoError(t, err)
		assert.Equal(t, expected, result)
	})

	t.Run("ParseValidJSON", func(t *testing.T) {
		jsonData := `{
  "status": "ok",
  "count": 3,
  "errors": ["a", "b"]
}`

		var result sampleDoc
		err := ParseData([]byte(jsonData), &result)
		require.NoError(t, err)
		assert.Equal(t, expected, result)
	})

	t.Run("ParseInvalidData", func(t *testing.T) {
		var result sampleDoc
		err := ParseData([]byte(`{{not valid in either format`), &result)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse as YAML")
		assert.Contains(t, err.Error(), "JSON")
	})
}

func TestParseFile(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("ParseYAMLFile", func(t *testing.T) {
		path := filepath.Join(tempDir, "doc.yaml")
		require.NoError(t, os.WriteFile(path, []byte("status: ok\ncount: 7\n"), 0644))

		var result sampleDoc
		err := ParseFile(path, &result)
		require.NoError(t, err)
		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, 7, result.Count)
	})

	t.Run("MissingFile", func(t *testing.T) {
		var result sampleDoc
		err := ParseFile(filepath.Join(tempDir, "nope.yaml"), &result)
		assert.Error(t, err)
	})
}

func TestWriteFile(t *testing.T) {
	tempDir := t.TempDir()
	doc := sampleDoc{Status: "ok", Count: 1, Errors: []string{"x"}}

	t.Run("WriteYAMLByDefault", func(t *testing.T) {
		path := filepath.Join(tempDir, "out.yaml")
		require.NoError(t, WriteFile(path, doc))

		var result sampleDoc
		require.NoError(t, ParseFile(path, &result))
		assert.Equal(t, doc, result)
	})

	t.Run("WriteJSONByExtension", func(t *testing.T) {
		path := filepath.Join(tempDir, "out.json")
		require.NoError(t, WriteFile(path, doc))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"status": "ok"`)
	})
}

func TestFormatData(t *testing.T) {
	doc := sampleDoc{Status: "ok", Count: 2}

	yamlOut, err := FormatData(doc, true)
	require.NoError(t, err)
	assert.Contains(t, yamlOut, "status: ok")

	jsonOut, err := FormatData(doc, false)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"count": 2`)
}
