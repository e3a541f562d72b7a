package llm

import (
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	domsvc "MarketPulse/internal/domain/service"
	xhttp "MarketPulse/pkg/http"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider       string
	OpenAIKey      string
	OpenAIURL      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
}

// New returns the configured summarizer, or nil when the provider has no credential.
// Callers rely on the nil interface to select their deterministic fallbacks.
func New(s Settings, client *xhttp.Client, metrics domrepo.Metrics) domsvc.Summarizer {
	var p Provider
	switch s.Provider {
	case "openai":
		if s.OpenAIKey == "" {
			return nil
		}
		p = NewOpenAI(client, s.OpenAIURL, s.OpenAIKey, s.OpenAIModel, s.Temperature, s.MaxTokens)
	case "anthropic":
		if s.AnthropicKey == "" {
			return nil
		}
		p = NewAnthropic(s.AnthropicKey, s.AnthropicModel, s.Temperature, s.MaxTokens)
	default:
		return nil
	}
	return NewTimed(p, s.Timeout, metrics)
}
