package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptRoutingSystem instructs the model to classify a query into
	// target sources, artifact types and search terms as JSON.
	PromptRoutingSystem = "routing_system"

	// PromptSummarySystem is the system prompt for result summaries.
	PromptSummarySystem = "summary_system"
)
