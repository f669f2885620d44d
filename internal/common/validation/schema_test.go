package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reminderSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"to_email", "task_title"},
		Properties: map[string]Property{
			"to_email":   {Type: "string", Format: "email"},
			"task_title": {Type: "string", MinLength: IntPtr(1)},
		},
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		badField  string
	}{
		{
			name:      "valid",
			input:     map[string]interface{}{"to_email": "ada@example.com", "task_title": "Buy milk"},
			wantValid: true,
		},
		{
			name:     "bad email",
			input:    map[string]interface{}{"to_email": "not-an-email", "task_title": "Buy milk"},
			badField: "to_email",
		},
		{
			name:     "empty title",
			input:    map[string]interface{}{"to_email": "ada@example.com", "task_title": ""},
			badField: "task_title",
		},
		{
			name:     "missing title",
			input:    map[string]interface{}{"to_email": "ada@example.com"},
			badField: "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, reminderSchema())
			assert.Equal(t, tt.wantValid, result.Valid, result.Summary())
			if tt.badField != "" {
				assert.True(t, result.HasErrors(tt.badField), result.Summary())
			}
		})
	}
}

func TestValidator_ValidateJSON(t *testing.T) {
	v := MustCompile(JSONSchema{
		Type: "array",
		Items: &Property{
			Type:     "object",
			Required: []string{"id"},
			Properties: map[string]Property{
				"id": {AnyOf: []Property{{Type: "number"}, {Type: "string"}}},
			},
		},
	})

	ok, err := v.ValidateJSON([]byte(`[{"id": 1}, {"id": "2"}]`))
	require.NoError(t, err)
	assert.True(t, ok.Valid)

	bad, err := v.ValidateJSON([]byte(`[{"id": true}]`))
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.GetErrorMessages())

	_, err = v.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ada@example.com"))
	assert.False(t, ValidateEmail("ada@"))
}
