package generators

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
)

func TestFormatSuccess(t *testing.T) {
	result := CNHResult{DocumentType: "CNH", CNHNumber: "12345678901", Format: "x & y", GeneratedAt: "t"}

	out, err := FormatSuccess(result.Summary(), result)
	require.NoError(t, err)

	message, body, ok := strings.Cut(out, "\n\n")
	require.True(t, ok)
	assert.Equal(t, result.Summary(), message)
	assert.Contains(t, body, `"format": "x & y"`)
	assert.False(t, strings.HasSuffix(body, "\n"))

	var decoded CNHResult
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, result, decoded)
}

func TestFormatError(t *testing.T) {
	err := &apierrors.CityResolutionError{
		Kind:        apierrors.AmbiguousMatch,
		City:        "Santa",
		State:       "SC",
		Suggestions: []string{"Santa Cecília", "Santa Rosa do Sul"},
	}

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(FormatError(err, "person-generator", fixedNow)), &env))
	assert.True(t, env.Error)
	assert.Equal(t, "ambiguous_match", env.Kind)
	assert.Equal(t, "person-generator", env.Context)
	assert.Equal(t, err.Suggestions, env.Suggestions)
	assert.Equal(t, "2024-03-01T12:00:00Z", env.Timestamp)
	assert.Contains(t, env.Message, "Santa Cecília")
}

func TestFormatError_OmitsEmptySuggestions(t *testing.T) {
	out := FormatError(apierrors.NewValidationError("sexo", "X", "bad"), "person-generator", fixedNow)
	assert.NotContains(t, out, "suggestions")
	assert.Contains(t, out, `"kind": "invalid_input"`)
}
