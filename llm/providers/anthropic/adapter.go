package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/types"
)

const (
	// ProviderName Anthropic 提供者标识
	ProviderName = "anthropic"
	// DefaultBaseURL Anthropic API 地址
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultAPIVersion anthropic-version 请求头默认值
	DefaultAPIVersion = "2023-06-01"

	messagesPath = "/v1/messages"
)

// Models Anthropic 可用模型, 第一个为默认模型.
var Models = []string{
	"claude-3-5-sonnet-20241022",
	"claude-3-5-haiku-20241022",
	"claude-3-opus-20240229",
}

// Claude API 请求/响应结构

// Message Claude 消息, content 为纯文本.
type Message struct {
	Role    string `json:"role"` // user 或 assistant
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"` // system 消息单独传递
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        *float64  `json:"top_p,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type claudeContent struct {
	Type string `json:"type"` // text, tool_use
	Text string `json:"text,omitempty"`
}

type claudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"` // message 或 error
	Role       string          `json:"role"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Error      *claudeError    `json:"error,omitempty"`
}

// claudeStreamEvent SSE 事件: message_start, content_block_start,
// content_block_delta, content_block_stop, message_delta, message_stop, ping, error
type claudeStreamEvent struct {
	Type  string       `json:"type"`
	Index int          `json:"index,omitempty"`
	Delta *claudeDelta `json:"delta,omitempty"`
	Error *claudeError `json:"error,omitempty"`
}

type claudeDelta struct {
	Type       string `json:"type"` // text_delta, input_json_delta
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

type claudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// APIError Anthropic 在响应体或流事件中返回的错误
type APIError struct {
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic api error: %s (type: %s)", e.Message, e.Type)
}

// Adapter 实现 Anthropic Messages API 适配器.
type Adapter struct {
	baseURL    string
	apiVersion string
}

// New 创建 Anthropic 适配器.
func New(cfg providers.ClaudeConfig) *Adapter {
	a := &Adapter{
		baseURL:    cfg.BaseURL,
		apiVersion: cfg.APIVersion,
	}
	if a.baseURL == "" {
		a.baseURL = DefaultBaseURL
	}
	if a.apiVersion == "" {
		a.apiVersion = DefaultAPIVersion
	}
	return a
}

func (a *Adapter) Name() string { return ProviderName }

func (a *Adapter) Descriptor() llm.ModelDescriptor {
	return llm.ModelDescriptor{
		Models:       Models,
		DefaultModel: Models[0],
		Capabilities: types.ProviderCapabilities{
			SupportsStreaming:      true,
			SupportsSystemMessages: true,
			MaxContextLength:       200000,
		},
	}
}

// StreamFormat Anthropic 流以连接关闭结束, 没有结束标记.
func (a *Adapter) StreamFormat() llm.StreamFormat { return llm.SSEFormat("") }

func (a *Adapter) RequestURL(_, _ string, _ bool) string {
	return providers.Endpoint(a.baseURL, messagesPath)
}

// RequestHeaders 使用 x-api-key 认证 (非 Bearer Token).
func (a *Adapter) RequestHeaders(apiKey string) http.Header {
	h := providers.JSONHeaders()
	h.Set("x-api-key", apiKey)
	h.Set("anthropic-version", a.apiVersion)
	return h
}

// ConvertMessages 将会话转换为 Claude 消息并提取 system 内容.
// 连续同角色的消息会被合并, Messages API 要求 user/assistant 交替出现.
func (a *Adapter) ConvertMessages(msgs []types.Message) (string, []Message) {
	system, rest := providers.SplitSystem(msgs)

	out := make([]Message, 0, len(rest))
	for _, m := range rest {
		role := "assistant"
		if m.Role() == types.RoleUser {
			role = "user"
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + m.Text
			continue
		}
		out = append(out, Message{Role: role, Content: m.Text})
	}
	return system, out
}

func (a *Adapter) CreateRequestBody(msgs []types.Message, model string, settings *types.LLMSettings, stream bool) (any, error) {
	system, messages := a.ConvertMessages(msgs)
	return &claudeRequest{
		Model:       model,
		Messages:    messages,
		System:      system,
		MaxTokens:   providers.MaxTokensOr(settings, providers.DefaultMaxTokens),
		Temperature: providers.TemperatureOr(settings, providers.DefaultTemperature),
		TopP:        providers.TopP(settings),
		Stream:      stream,
	}, nil
}

// ExtractContent 拼接响应中所有 text 内容块.
func (a *Adapter) ExtractContent(body []byte) (string, error) {
	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", providers.InvalidFormat(ProviderName, err.Error())
	}
	if resp.Error != nil {
		return "", &APIError{Type: resp.Error.Type, Message: resp.Error.Message}
	}
	if resp.Content == nil {
		return "", providers.InvalidFormat(ProviderName, "missing content")
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}

// ExtractToken 只从 content_block_delta/text_delta 事件中取出文本.
func (a *Adapter) ExtractToken(chunk []byte) (string, bool, error) {
	var ev claudeStreamEvent
	if err := json.Unmarshal(chunk, &ev); err != nil {
		return "", false, nil
	}
	switch ev.Type {
	case "error":
		if ev.Error == nil {
			return "", false, &APIError{Type: "api_error", Message: "stream error"}
		}
		return "", false, &APIError{Type: ev.Error.Type, Message: ev.Error.Message}
	case "content_block_delta":
		if ev.Delta == nil || ev.Delta.Type != "text_delta" || ev.Delta.Text == "" {
			return "", false, nil
		}
		return ev.Delta.Text, true, nil
	default:
		return "", false, nil
	}
}

func (a *Adapter) IsProviderError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

func (a *Adapter) ToStandardError(err error) *types.Error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return types.NewError(types.ErrAPI, err.Error(), types.WithProvider(ProviderName), types.WithCause(err))
	}
	return types.NewError(MapErrorType(apiErr.Type), apiErr.Message,
		types.WithProvider(ProviderName),
		types.WithCause(err))
}

// MapErrorType 将 Anthropic error.type 映射为错误码.
func MapErrorType(t string) types.ErrorCode {
	switch t {
	case "authentication_error", "permission_error":
		return types.ErrAuthentication
	case "rate_limit_error":
		return types.ErrRateLimit
	case "not_found_error":
		return types.ErrInvalidModel
	case "timeout_error":
		return types.ErrTimeout
	default:
		// overloaded_error, api_error, invalid_request_error
		return types.ErrAPI
	}
}
