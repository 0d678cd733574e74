package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

// The router must be total: any (tier, model, persona) combination yields a
// configured model and a non-empty system prompt.
func TestResolveTotality(t *testing.T) {
	tiers := []domain.Tier{domain.TierFree, domain.TierPro, domain.TierEngineer, domain.Tier("made-up")}
	models := []string{"", "default", ModelGPT4o, ModelDeepSeek, "no-such-model", "🤖"}
	personas := []string{"", "default", "debugger", "architect", "teacher", "speed-coder", "unknown-persona"}

	for _, tier := range tiers {
		for _, model := range models {
			for _, persona := range personas {
				route := Resolve(tier, model, persona)
				assert.NotEmpty(t, route.Model, "tier=%s model=%q persona=%q", tier, model, persona)
				assert.NotEmpty(t, route.SystemPrompt, "tier=%s model=%q persona=%q", tier, model, persona)
				assert.Contains(t, []string{ProviderOpenAI, ProviderGroq}, route.Provider)
			}
		}
	}
}

func TestResolveFreeTierPinned(t *testing.T) {
	for _, requested := range []string{"default", ModelGPT4o, ModelLlamaMaverik, "anything"} {
		route := Resolve(domain.TierFree, requested, "default")
		assert.Equal(t, ModelGPT4Turbo, route.Name)
		assert.Equal(t, ProviderOpenAI, route.Provider)
	}
}

func TestResolveProTier(t *testing.T) {
	route := Resolve(domain.TierPro, "default", "default")
	assert.Equal(t, ModelLlamaScout, route.Name)
	assert.Equal(t, ProviderGroq, route.Provider)

	route = Resolve(domain.TierPro, ModelGPT4o, "default")
	assert.Equal(t, ModelGPT4o, route.Name)
	assert.Equal(t, ProviderOpenAI, route.Provider)

	// Outside the pro subset: substituted, not rejected.
	route = Resolve(domain.TierPro, ModelLlamaMaverik, "default")
	assert.Equal(t, ModelLlamaScout, route.Name)
}

func TestResolveEngineerTier(t *testing.T) {
	route := Resolve(domain.TierEngineer, "default", "default")
	assert.Equal(t, ModelGPT4o, route.Name)
	assert.Equal(t, ProviderOpenAI, route.Provider)

	route = Resolve(domain.TierEngineer, ModelDeepSeek, "default")
	assert.Equal(t, ModelDeepSeek, route.Name)
	assert.Equal(t, ProviderGroq, route.Provider)
	assert.Equal(t, "deepseek-r1-distill-llama-70b", route.Model)
}

func TestResolvePersonaPrompts(t *testing.T) {
	def := Resolve(domain.TierFree, "default", "default")
	dbg := Resolve(domain.TierFree, "default", "debugger")
	unknown := Resolve(domain.TierFree, "default", "definitely-not-a-persona")

	assert.NotEqual(t, def.SystemPrompt, dbg.SystemPrompt)
	assert.Equal(t, def.SystemPrompt, unknown.SystemPrompt)
	assert.Contains(t, dbg.SystemPrompt, "debugger mode")
}

func TestTrimHistory(t *testing.T) {
	count := func(s string) int { return len(s) }
	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "aaaa"},
		{Role: domain.RoleAssistant, Content: "bbbb"},
		{Role: domain.RoleUser, Content: "cc"},
	}

	trimmed := TrimHistory(history, 6, count)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "bbbb"},
		{Role: domain.RoleUser, Content: "cc"},
	}, trimmed)

	assert.Len(t, TrimHistory(history, 100, count), 3)
	assert.Empty(t, TrimHistory(history, 1, count))
}
