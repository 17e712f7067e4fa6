package openai

import (
	"net/http"

	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/llm/providers/openaicompat"
	"github.com/sapientpants/quorum-sub001/types"
)

// ProviderName OpenAI 提供者标识
const ProviderName = "openai"

// DefaultBaseURL OpenAI API 地址
const DefaultBaseURL = "https://api.openai.com"

// Models OpenAI 可用模型, 第一个为默认模型.
var Models = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"gpt-4",
	"gpt-3.5-turbo",
}

// Adapter 实现 OpenAI Chat Completions 适配器.
// 线格式由嵌入的 openaicompat.Adapter 处理.
type Adapter struct {
	*openaicompat.Adapter
}

// New 创建 OpenAI 适配器.
func New(cfg providers.OpenAIConfig) *Adapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return &Adapter{
		Adapter: openaicompat.New(openaicompat.Config{
			ProviderName:     ProviderName,
			BaseURL:          cfg.BaseURL,
			Models:           Models,
			DefaultModel:     Models[0],
			MaxContextLength: 128000,
			BuildHeaders: func(h http.Header) {
				if cfg.Organization != "" {
					h.Set("OpenAI-Organization", cfg.Organization)
				}
			},
			// OpenAI 接受全部五个生成参数
			RequestHook: func(settings *types.LLMSettings, body *openaicompat.Request) {
				body.FrequencyPenalty = settings.FrequencyPenalty
				body.PresencePenalty = settings.PresencePenalty
			},
		}),
	}
}
