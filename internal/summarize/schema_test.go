package summarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPaperRecordSchemaRequiredFields(t *testing.T) {
	schema := BuildPaperRecordSchema()

	required, ok := schema["required"].([]string)
	require.True(t, ok, "schema must declare required fields")

	assert.ElementsMatch(t, []string{
		"title", "authors", "summary", "comprehension_aid",
		"connection_mapping", "key_insights", "concept_explanations",
		"critical_analysis", "future_work",
	}, required)

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range required {
		assert.Contains(t, props, field)
	}

	assert.Equal(t, false, schema["additionalProperties"])
}

func TestValidateAgainstSchema(t *testing.T) {
	schema := BuildPaperRecordSchema()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name:    "complete record",
			data:    validRecordJSON,
			wantErr: false,
		},
		{
			name:    "missing required fields",
			data:    `{"title":"Only a title"}`,
			wantErr: true,
		},
		{
			name:    "authors must be an array",
			data:    `{"title":"x","authors":"Jane Doe"}`,
			wantErr: true,
		},
		{
			name:    "unknown top-level property",
			data:    `{"unknown_field":"x"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `this is not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAgainstSchema(schema, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
