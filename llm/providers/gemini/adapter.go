package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/types"
)

const (
	// ProviderName Gemini 提供者标识
	ProviderName = "gemini"
	// DefaultBaseURL Gemini REST API 地址
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	defaultTopP = 0.95
	defaultTopK = 40
)

// Models Gemini 可用模型.
var Models = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-2.0-flash",
}

// DefaultModel Gemini 默认模型
const DefaultModel = "gemini-1.5-flash"

// blockedFinishReasons 表示候选结果被安全策略拦截
var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}

// Gemini API 请求/响应结构

// Content Gemini 消息内容, role 为 user 或 model.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part 内容分片
type Part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents          []Content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
}

type geminiCandidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *promptFeedback   `json:"promptFeedback,omitempty"`
	Error          *geminiError      `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// APIError Gemini 在响应体或流中返回的错误. 内容被拦截时 Blocked 为 true.
type APIError struct {
	Status  string
	Message string
	Blocked bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error: %s (status: %s)", e.Message, e.Status)
}

// Adapter 实现 Gemini generateContent 适配器.
// 模型与 API Key 都放在 URL 中.
type Adapter struct {
	baseURL string
}

// New 创建 Gemini 适配器.
func New(cfg providers.GeminiConfig) *Adapter {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Adapter{baseURL: base}
}

func (a *Adapter) Name() string { return ProviderName }

func (a *Adapter) Descriptor() llm.ModelDescriptor {
	return llm.ModelDescriptor{
		Models:       Models,
		DefaultModel: DefaultModel,
		Capabilities: types.ProviderCapabilities{
			SupportsStreaming:      true,
			SupportsSystemMessages: true,
			MaxContextLength:       1048576,
		},
	}
}

// StreamFormat alt=sse 流没有结束标记.
func (a *Adapter) StreamFormat() llm.StreamFormat { return llm.SSEFormat("") }

func (a *Adapter) RequestURL(model, apiKey string, stream bool) string {
	q := url.Values{}
	method := "generateContent"
	if stream {
		method = "streamGenerateContent"
		q.Set("alt", "sse")
	}
	q.Set("key", apiKey)
	return providers.Endpoint(a.baseURL,
		fmt.Sprintf("/v1beta/models/%s:%s?%s", url.PathEscape(model), method, q.Encode()))
}

// RequestHeaders 认证信息在 URL 中, 只需内容类型.
func (a *Adapter) RequestHeaders(_ string) http.Header {
	return providers.JSONHeaders()
}

// ConvertMessages 将会话转换为 Gemini contents 并提取 systemInstruction.
func (a *Adapter) ConvertMessages(msgs []types.Message) (*Content, []Content) {
	system, rest := providers.SplitSystem(msgs)

	var instruction *Content
	if system != "" {
		instruction = &Content{Parts: []Part{{Text: system}}}
	}

	contents := make([]Content, 0, len(rest))
	for _, m := range rest {
		role := "model"
		if m.Role() == types.RoleUser {
			role = "user"
		}
		contents = append(contents, Content{Role: role, Parts: []Part{{Text: m.Text}}})
	}
	return instruction, contents
}

func (a *Adapter) CreateRequestBody(msgs []types.Message, _ string, settings *types.LLMSettings, _ bool) (any, error) {
	instruction, contents := a.ConvertMessages(msgs)

	topP := defaultTopP
	if p := providers.TopP(settings); p != nil {
		topP = *p
	}

	return &geminiRequest{
		Contents:          contents,
		SystemInstruction: instruction,
		GenerationConfig: generationConfig{
			Temperature:     providers.TemperatureOr(settings, providers.DefaultTemperature),
			TopP:            topP,
			TopK:            defaultTopK,
			MaxOutputTokens: providers.MaxTokensOr(settings, providers.DefaultMaxTokens),
		},
	}, nil
}

// ExtractContent 拼接 candidates[0].content.parts[].text.
func (a *Adapter) ExtractContent(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", providers.InvalidFormat(ProviderName, err.Error())
	}
	if err := responseError(&resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", providers.InvalidFormat(ProviderName, "missing candidates[0].content")
	}
	return joinParts(resp.Candidates[0].Content.Parts), nil
}

// ExtractToken 返回一个流事件中的文本.
func (a *Adapter) ExtractToken(chunk []byte) (string, bool, error) {
	var resp geminiResponse
	if err := json.Unmarshal(chunk, &resp); err != nil {
		return "", false, nil
	}
	if err := responseError(&resp); err != nil {
		return "", false, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false, nil
	}
	text := joinParts(resp.Candidates[0].Content.Parts)
	return text, text != "", nil
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
	code := MapErrorStatus(apiErr.Status)
	if apiErr.Blocked {
		code = types.ErrContentFilter
	}
	return types.NewError(code, apiErr.Message,
		types.WithProvider(ProviderName),
		types.WithCause(err))
}

// MapErrorStatus 将 Gemini error.status 映射为错误码.
func MapErrorStatus(status string) types.ErrorCode {
	switch status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return types.ErrAuthentication
	case "RESOURCE_EXHAUSTED":
		return types.ErrRateLimit
	case "NOT_FOUND":
		return types.ErrInvalidModel
	case "DEADLINE_EXCEEDED":
		return types.ErrTimeout
	default:
		return types.ErrAPI
	}
}

// responseError 检查错误对象、提示词拦截与安全拦截.
func responseError(resp *geminiResponse) error {
	if resp.Error != nil {
		return &APIError{Status: resp.Error.Status, Message: resp.Error.Message}
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return &APIError{
			Status:  resp.PromptFeedback.BlockReason,
			Message: "prompt blocked: " + resp.PromptFeedback.BlockReason,
			Blocked: true,
		}
	}
	if len(resp.Candidates) > 0 && blockedFinishReasons[resp.Candidates[0].FinishReason] {
		reason := resp.Candidates[0].FinishReason
		return &APIError{
			Status:  reason,
			Message: "response blocked: " + reason,
			Blocked: true,
		}
	}
	return nil
}

func joinParts(parts []Part) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
