package generators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apierrors "github.com/olgasafonova/fourdevs-mcp-server/internal/errors"
)

// Summarizer is implemented by every adapter result. The summary is the
// human-readable first line of a successful tool reply.
type Summarizer interface {
	Summary() string
}

// Summary implements Summarizer
func (r PersonResult) Summary() string {
	return fmt.Sprintf("Successfully generated %d person(s) with complete Brazilian data", r.Count)
}

// Summary implements Summarizer
func (r LoadCitiesResult) Summary() string {
	return fmt.Sprintf("Successfully loaded %d cities for %s", r.TotalCities, r.UF)
}

// Summary implements Summarizer
func (r CertificateResult) Summary() string {
	return fmt.Sprintf("Successfully generated %s certificate number", r.CertificateType)
}

// Summary implements Summarizer
func (r CNHResult) Summary() string {
	return "Successfully generated Brazilian CNH (driver's license) number"
}

// Summary implements Summarizer
func (r PISResult) Summary() string {
	return "Successfully generated Brazilian PIS (social security) number"
}

// Summary implements Summarizer
func (r VoterIDResult) Summary() string {
	if r.State != "" && r.State != "Random" {
		return "Successfully generated Brazilian voter registration number for " + r.State
	}
	return "Successfully generated Brazilian voter registration number"
}

// ErrorEnvelope is the JSON body of a failed tool reply.
type ErrorEnvelope struct {
	Error       bool     `json:"error"`
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	Context     string   `json:"context"`
	Suggestions []string `json:"suggestions,omitempty"`
	Timestamp   string   `json:"timestamp"`
}

// FormatSuccess renders message followed by the indented result.
func FormatSuccess(message string, result any) (string, error) {
	body, err := marshalIndent(result)
	if err != nil {
		return "", err
	}
	return message + "\n\n" + body, nil
}

// NewErrorEnvelope classifies err for the tool named by context.
func NewErrorEnvelope(err error, context string, now time.Time) ErrorEnvelope {
	return ErrorEnvelope{
		Error:       true,
		Kind:        apierrors.Kind(err),
		Message:     err.Error(),
		Context:     context,
		Suggestions: apierrors.Suggestions(err),
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}

// FormatError renders the error envelope as indented JSON.
func FormatError(err error, context string, now time.Time) string {
	body, merr := marshalIndent(NewErrorEnvelope(err, context, now))
	if merr != nil {
		return fmt.Sprintf(`{"error": true, "kind": %q, "message": %q, "context": %q}`, apierrors.Kind(err), err.Error(), context)
	}
	return body
}

// marshalIndent keeps non-ASCII names and ampersands readable.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
