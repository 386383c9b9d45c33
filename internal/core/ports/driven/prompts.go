package driven

// PromptStore provides access to generator prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSummary instructs the generator to summarise search results.
	// The template may contain a {{query}} placeholder and should end with
	// the opening result delimiter.
	PromptSummary = "summary"

	// PromptBackendPreamble is sent to the search backend as the summary preamble.
	// This prompt has no placeholders.
	PromptBackendPreamble = "backend_preamble"
)
