package factory

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sapientpants/quorum-sub001/config"
	"github.com/sapientpants/quorum-sub001/internal/tlsutil"
	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/llm/providers/anthropic"
	"github.com/sapientpants/quorum-sub001/llm/providers/gemini"
	"github.com/sapientpants/quorum-sub001/llm/providers/grok"
	"github.com/sapientpants/quorum-sub001/llm/providers/openai"
)

// Built-in provider ids.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGrok      = "grok"
)

// aliases maps alternative names to a built-in provider id.
var aliases = map[string]string{
	"claude": ProviderAnthropic,
	"google": ProviderGemini,
	"xai":    ProviderGrok,
}

// APIKeyEnv names the environment variable the CLI reads each key from.
var APIKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderGrok:      "XAI_API_KEY",
}

// SupportedProviders returns the built-in provider ids, sorted, without aliases.
func SupportedProviders() []string {
	ids := make([]string, 0, len(APIKeyEnv))
	for id := range APIKeyEnv {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Canonical resolves an alias to its provider id. Unknown names are returned
// lower-cased and trimmed.
func Canonical(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	return id
}

// NewAdapter creates the adapter for a provider id or alias.
func NewAdapter(name string, cfg config.LLMConfig) (llm.Adapter, bool) {
	switch Canonical(name) {
	case ProviderOpenAI:
		return openai.New(providers.OpenAIConfig{
			BaseProviderConfig: base(cfg.OpenAI),
			Organization:       cfg.OpenAI.Organization,
		}), true
	case ProviderAnthropic:
		return anthropic.New(providers.ClaudeConfig{BaseProviderConfig: base(cfg.Anthropic)}), true
	case ProviderGemini:
		return gemini.New(providers.GeminiConfig{BaseProviderConfig: base(cfg.Gemini)}), true
	case ProviderGrok:
		return grok.New(providers.GrokConfig{BaseProviderConfig: base(cfg.Grok)}), true
	default:
		return nil, false
	}
}

// Table returns the registry lookup table, aliases included.
func Table(cfg config.LLMConfig) map[string]llm.AdapterFactory {
	table := make(map[string]llm.AdapterFactory, len(APIKeyEnv)+len(aliases))
	for _, id := range SupportedProviders() {
		table[id] = adapterFactory(id, cfg)
	}
	for alias, id := range aliases {
		table[alias] = adapterFactory(id, cfg)
	}
	return table
}

// NewRegistry builds a ClientRegistry for every built-in provider. Transport,
// pacing and token counting come from cfg; opts are applied after them.
func NewRegistry(cfg config.LLMConfig, logger *zap.Logger, opts ...llm.Option) *llm.ClientRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = llm.DefaultResponseHeaderTimeout
	}

	base := []llm.Option{
		llm.WithHTTPClient(tlsutil.StreamingHTTPClient(timeout)),
		llm.WithLogger(logger),
		llm.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		llm.WithExactTokenCount(cfg.ExactTokenCount),
	}

	logger.Debug("client registry configured",
		zap.Strings("providers", SupportedProviders()),
		zap.Duration("response_header_timeout", timeout),
		zap.Float64("rate_limit_rps", cfg.RateLimitRPS))

	return llm.NewClientRegistry(Table(cfg), append(base, opts...)...)
}

func adapterFactory(id string, cfg config.LLMConfig) llm.AdapterFactory {
	return func() llm.Adapter {
		a, _ := NewAdapter(id, cfg)
		return a
	}
}

func base(pc config.ProviderConfig) providers.BaseProviderConfig {
	return providers.BaseProviderConfig{
		BaseURL:    pc.BaseURL,
		APIVersion: pc.APIVersion,
	}
}
