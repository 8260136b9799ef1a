package llm

import "context"

const ollamaDefaultURL = "http://localhost:11434/v1"

// OllamaProvider talks to a local Ollama instance through its
// OpenAI-compatible endpoint, so the transport and stream decoding are
// shared with the OpenAI provider. No API key; the only difference is
// the default base URL.
type OllamaProvider struct {
	openai *OpenAIProvider
}

func NewOllamaProvider(cfg Config) *OllamaProvider {
	if cfg.APIURL == "" {
		cfg.APIURL = ollamaDefaultURL
	}
	cfg.APIKey = ""
	return &OllamaProvider{openai: NewOpenAIProvider(cfg)}
}

func (p *OllamaProvider) Complete(ctx context.Context, messages []Message, tools []Tool) (Stream, error) {
	return p.openai.Complete(ctx, messages, tools)
}
