package providers

import (
	"net/http"
	"strings"

	"github.com/sapientpants/quorum-sub001/types"
)

// 所有适配器共享的请求默认值
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// MaxTokensOr 返回设置中的 MaxTokens, 未设置时返回 def
func MaxTokensOr(settings *types.LLMSettings, def int) int {
	if settings != nil && settings.MaxTokens != nil {
		return *settings.MaxTokens
	}
	return def
}

// TemperatureOr 返回设置中的 Temperature, 未设置时返回 def
func TemperatureOr(settings *types.LLMSettings, def float64) float64 {
	if settings != nil && settings.Temperature != nil {
		return *settings.Temperature
	}
	return def
}

// TopP 返回设置中的 TopP, 未设置时为 nil
func TopP(settings *types.LLMSettings) *float64 {
	if settings == nil {
		return nil
	}
	return settings.TopP
}

// SplitSystem 将 system 消息从会话中分离出来.
// 多条 system 消息按原顺序以空行连接。
func SplitSystem(msgs []types.Message) (string, []types.Message) {
	var system []string
	rest := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role() == types.RoleSystem {
			system = append(system, m.Text)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// Endpoint 拼接 baseURL 与路径
func Endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

// JSONHeaders 返回 JSON 请求的基础请求头
func JSONHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return h
}

// BearerTokenHeaders 返回 Bearer 认证的请求头
func BearerTokenHeaders(apiKey string) http.Header {
	h := JSONHeaders()
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

// InvalidFormat 返回响应结构不符合预期时的错误
func InvalidFormat(provider, detail string) *types.Error {
	return types.NewError(types.ErrAPI, "invalid response format: "+detail,
		types.WithProvider(provider))
}
