package driven

// Prompt names recognised by PromptStore implementations.
const (
	// PromptQASystem is the system prompt that instructs the model to
	// answer strictly from the supplied document excerpts.
	PromptQASystem = "qa_system"

	// PromptQAUser is the template wrapping the assembled context and
	// the user's question. Placeholders: context, then question.
	PromptQAUser = "qa_user"
)

// PromptStore provides access to LLM prompt templates.
// Implementations may load from files, embedded defaults, or both.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads.
	Reload()
}
