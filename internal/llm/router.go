package llm

import (
	"github.com/Tattzy25/real-code-homie/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

// Public model names as the client requests them.
const (
	ModelGPT4Turbo    = "gpt-4-turbo"
	ModelGPT4o        = "gpt-4o"
	ModelLlamaScout   = "llama-4-scout"
	ModelLlamaMaverik = "llama-4-maverick"
	ModelDeepSeek     = "deepseek-r1-distill-llama-70b"
)

type catalogEntry struct {
	upstream string
	provider string
}

// Public name -> concrete upstream handle.
var catalog = map[string]catalogEntry{
	ModelGPT4Turbo:    {upstream: "gpt-4-turbo", provider: ProviderOpenAI},
	ModelGPT4o:        {upstream: "gpt-4o", provider: ProviderOpenAI},
	ModelLlamaScout:   {upstream: "meta-llama/llama-4-scout-17b-16e-instruct", provider: ProviderGroq},
	ModelLlamaMaverik: {upstream: "meta-llama/llama-4-maverick-17b-128e-instruct", provider: ProviderGroq},
	ModelDeepSeek:     {upstream: "deepseek-r1-distill-llama-70b", provider: ProviderGroq},
}

var tierModels = map[domain.Tier]map[string]bool{
	domain.TierFree: {
		ModelGPT4Turbo: true,
	},
	domain.TierPro: {
		ModelGPT4Turbo:  true,
		ModelGPT4o:      true,
		ModelLlamaScout: true,
	},
	domain.TierEngineer: {
		ModelGPT4Turbo:    true,
		ModelGPT4o:        true,
		ModelLlamaScout:   true,
		ModelLlamaMaverik: true,
		ModelDeepSeek:     true,
	},
}

var tierDefaults = map[domain.Tier]string{
	domain.TierFree:     ModelGPT4Turbo,
	domain.TierPro:      ModelLlamaScout,
	domain.TierEngineer: ModelGPT4o,
}

const basePrompt = `You are Code Homie, an AI coding assistant. Help the user with their coding questions.
Be concise but thorough. Provide code examples when relevant.
When writing code, make sure it's well-commented and follows best practices.`

var personaPrompts = map[string]string{
	"default": basePrompt,
	"debugger": `You are Code Homie in debugger mode. Focus on finding and fixing bugs in the user's code.
Carefully analyze the code, identify issues, and suggest fixes with explanations.
Be thorough but concise in your analysis.`,
	"architect": `You are Code Homie in architect mode. Focus on code structure, patterns, and best practices.
Help the user design robust, scalable, and maintainable code architectures.
Suggest appropriate design patterns and architectural approaches.`,
	"teacher": `You are Code Homie in teacher mode. Focus on explaining concepts clearly and thoroughly.
Break down complex topics into understandable parts. Provide examples to illustrate concepts.
Check for understanding and anticipate common points of confusion.`,
	"speed-coder": `You are Code Homie in speed coder mode. Focus on providing efficient, working solutions quickly.
Prioritize brevity and functionality over extensive explanations.
Provide code that works out of the box with minimal setup.`,
}

// Resolve maps (tier, requested model, persona) to a concrete route. It is
// total: an unknown model name or a name outside the tier's allowed set falls
// back to the tier default, an unknown persona falls back to the base prompt.
// Unknown tiers are treated as free.
func Resolve(tier domain.Tier, modelName, persona string) domain.ModelRoute {
	if !tier.Valid() {
		tier = domain.TierFree
	}

	prompt, ok := personaPrompts[persona]
	if !ok {
		prompt = basePrompt
	}

	name := modelName
	if name == "" || name == "default" || !tierModels[tier][name] {
		name = tierDefaults[tier]
	}

	entry := catalog[name]
	return domain.ModelRoute{
		Name:         name,
		Model:        entry.upstream,
		Provider:     entry.provider,
		SystemPrompt: prompt,
	}
}
