package qcm

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Target is the number of questions an exam must have.
	Target int

	// PromptQuestions is how many questions the model is asked for.
	// Asking for more than Target leaves room for rejects and duplicates.
	PromptQuestions int

	// MaxPromptChars caps the lesson text embedded in the prompt.
	MaxPromptChars int

	// MinTextChars is the shortest lesson text accepted.
	MinTextChars int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// UseSchema sends the response envelope schema to the provider.
	UseSchema bool

	// Seed fixes the choice shuffling. Zero draws a fresh seed per call.
	Seed uint64
}

// DefaultConfig returns the production generation settings.
func DefaultConfig() Config {
	return Config{
		Target:          DefaultTarget,
		PromptQuestions: DefaultPromptQuestions,
		MaxPromptChars:  9000,
		MinTextChars:    200,
		MaxTokens:       12000,
		Temperature:     0.6,
		UseSchema:       true,
	}
}
