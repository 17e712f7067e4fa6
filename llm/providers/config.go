package providers

// BaseProviderConfig 所有 Provider 共享的基础配置字段。
// API Key 不属于配置: 它随每次调用传入, 不会保存在适配器上。
type BaseProviderConfig struct {
	BaseURL    string `json:"base_url" yaml:"base_url"`
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
}

// OpenAIConfig OpenAI Provider 配置
type OpenAIConfig struct {
	BaseProviderConfig `yaml:",inline"`
	Organization       string `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// ClaudeConfig Anthropic Claude Provider 配置
type ClaudeConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// GeminiConfig Gemini Provider 配置
type GeminiConfig struct {
	BaseProviderConfig `yaml:",inline"`
}

// GrokConfig xAI Grok Provider 配置
type GrokConfig struct {
	BaseProviderConfig `yaml:",inline"`
}
