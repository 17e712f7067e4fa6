package grok

import (
	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/llm/providers/openaicompat"
)

// ProviderName Grok 提供者标识
const ProviderName = "grok"

// DefaultBaseURL xAI API 地址
const DefaultBaseURL = "https://api.x.ai"

// Models Grok 可用模型, 第一个为默认模型.
var Models = []string{
	"grok-beta",
	"grok-2-1212",
	"grok-2-vision-1212",
}

// Adapter 实现 xAI Grok 适配器.
// Grok 使用 OpenAI 兼容的 API 格式, 只接受 temperature、max_tokens 与 top_p.
type Adapter struct {
	*openaicompat.Adapter
}

// New 创建 Grok 适配器.
func New(cfg providers.GrokConfig) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &Adapter{
		Adapter: openaicompat.New(openaicompat.Config{
			ProviderName:     ProviderName,
			BaseURL:          cfg.BaseURL,
			Models:           Models,
			DefaultModel:     Models[0],
			MaxContextLength: 131072,
		}),
	}
}
