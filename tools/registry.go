// Package tools provides a metadata-driven registry for MCP tool definitions.
// Tools are declared once in AllTools and registered with type-safe handlers.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a generators.Service method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "gerar_pessoa")
	Name string

	// Method is the service method name (e.g., "GeneratePerson")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (person, location, document)
	Category string

	// ErrorContext names the tool in error envelopes (e.g., "person-generator")
	ErrorContext string

	// ReadOnly indicates the tool doesn't modify provider state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite data
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool

	// OpenWorld indicates the tool accesses external resources
	OpenWorld bool
}

// ToolsByCategory returns the specs in one category.
func ToolsByCategory(category string) []ToolSpec {
	var out []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			out = append(out, spec)
		}
	}
	return out
}

// FindTool looks up a spec by tool name.
func FindTool(name string) (ToolSpec, bool) {
	for _, spec := range AllTools {
		if spec.Name == name {
			return spec, true
		}
	}
	return ToolSpec{}, false
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}
