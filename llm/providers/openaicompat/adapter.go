// =============================================================================
// Quorum OpenAI-Compatible Adapter Base
// =============================================================================
// Shared wire format for all OpenAI-compatible providers.
// OpenAI and Grok embed this and only override what differs
// (name, base URL, models, accepted settings, headers).
// =============================================================================

package openaicompat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/types"
)

// Config holds the configuration for an OpenAI-compatible adapter.
type Config struct {
	// ProviderName is the unique identifier for this provider (e.g., "openai", "grok").
	ProviderName string

	// BaseURL is the base URL for the provider's API (e.g., "https://api.x.ai").
	BaseURL string

	// EndpointPath is the chat completions endpoint path. Defaults to "/v1/chat/completions".
	EndpointPath string

	// Models lists the accepted models; DefaultModel must be one of them.
	Models       []string
	DefaultModel string

	// MaxContextLength is the context window advertised in the capabilities.
	MaxContextLength int

	// BuildHeaders is an optional function to add provider headers.
	// Authorization and Content-Type are always set.
	BuildHeaders func(h http.Header)

	// RequestHook maps provider-specific settings onto the body.
	// temperature, max_tokens and top_p are always mapped by the base.
	RequestHook func(settings *types.LLMSettings, body *Request)
}

// Message is one chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat completions request body. stream is always serialized.
type Request struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	TopP             *float64  `json:"top_p,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	Stream           bool      `json:"stream"`
}

// Choice is one completion choice; Message for buffered, Delta for streamed responses.
type Choice struct {
	Index        int      `json:"index"`
	Message      *Message `json:"message,omitempty"`
	Delta        *Delta   `json:"delta,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Delta is the incremental content of a streamed choice.
type Delta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Response is a chat completions response or stream chunk.
type Response struct {
	ID      string     `json:"id"`
	Model   string     `json:"model"`
	Choices []Choice   `json:"choices"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the vendor error envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// APIError is a vendor error reported inside a response body or stream.
type APIError struct {
	Provider string
	Code     string
	Type     string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: %s (code: %s, type: %s)", e.Provider, e.Message, e.Code, e.Type)
}

// Adapter is the base implementation for all OpenAI-compatible providers.
type Adapter struct {
	Cfg Config
}

// New creates an OpenAI-compatible adapter with the given config.
func New(cfg Config) *Adapter {
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/v1/chat/completions"
	}
	return &Adapter{Cfg: cfg}
}

// Name returns the provider name.
func (a *Adapter) Name() string { return a.Cfg.ProviderName }

// Descriptor returns the models and capabilities.
func (a *Adapter) Descriptor() llm.ModelDescriptor {
	return llm.ModelDescriptor{
		Models:       a.Cfg.Models,
		DefaultModel: a.Cfg.DefaultModel,
		Capabilities: types.ProviderCapabilities{
			SupportsStreaming:      true,
			SupportsSystemMessages: true,
			MaxContextLength:       a.Cfg.MaxContextLength,
		},
	}
}

// StreamFormat returns SSE framing terminated by [DONE].
func (a *Adapter) StreamFormat() llm.StreamFormat { return llm.SSEFormat("[DONE]") }

// RequestURL returns the chat completions endpoint.
func (a *Adapter) RequestURL(_, _ string, _ bool) string {
	return providers.Endpoint(a.Cfg.BaseURL, a.Cfg.EndpointPath)
}

// RequestHeaders returns Bearer auth headers.
func (a *Adapter) RequestHeaders(apiKey string) http.Header {
	h := providers.BearerTokenHeaders(apiKey)
	if a.Cfg.BuildHeaders != nil {
		a.Cfg.BuildHeaders(h)
	}
	return h
}

// ConvertMessages folds conversation messages into chat messages.
func (a *Adapter) ConvertMessages(msgs []types.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{Role: string(m.Role()), Content: m.Text})
	}
	return out
}

// CreateRequestBody builds the chat completions request.
func (a *Adapter) CreateRequestBody(msgs []types.Message, model string, settings *types.LLMSettings, stream bool) (any, error) {
	body := &Request{
		Model:       model,
		Messages:    a.ConvertMessages(msgs),
		MaxTokens:   providers.MaxTokensOr(settings, providers.DefaultMaxTokens),
		Temperature: providers.TemperatureOr(settings, providers.DefaultTemperature),
		TopP:        providers.TopP(settings),
		Stream:      stream,
	}
	if a.Cfg.RequestHook != nil && settings != nil {
		a.Cfg.RequestHook(settings, body)
	}
	return body, nil
}

// ExtractContent returns choices[0].message.content.
func (a *Adapter) ExtractContent(body []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", providers.InvalidFormat(a.Name(), err.Error())
	}
	if resp.Error != nil {
		return "", a.apiError(resp.Error)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", providers.InvalidFormat(a.Name(), "missing choices[0].message")
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractToken returns choices[0].delta.content of one stream chunk.
func (a *Adapter) ExtractToken(chunk []byte) (string, bool, error) {
	var resp Response
	if err := json.Unmarshal(chunk, &resp); err != nil {
		return "", false, nil
	}
	if resp.Error != nil {
		return "", false, a.apiError(resp.Error)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Delta == nil || resp.Choices[0].Delta.Content == nil {
		return "", false, nil
	}
	content := *resp.Choices[0].Delta.Content
	return content, content != "", nil
}

// IsProviderError reports whether err is an *APIError.
func (a *Adapter) IsProviderError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ToStandardError maps vendor error codes and types to the taxonomy.
func (a *Adapter) ToStandardError(err error) *types.Error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return types.NewError(types.ErrAPI, err.Error(), types.WithProvider(a.Name()), types.WithCause(err))
	}
	code := MapErrorCode(apiErr.Code)
	if code == types.ErrAPI {
		code = MapErrorCode(apiErr.Type)
	}
	return types.NewError(code, apiErr.Message,
		types.WithProvider(a.Name()),
		types.WithCause(err))
}

// MapErrorCode maps an OpenAI-style error code or type to the taxonomy.
func MapErrorCode(code string) types.ErrorCode {
	switch code {
	case "invalid_api_key", "authentication_error", "permission_denied", "invalid_authentication":
		return types.ErrAuthentication
	case "rate_limit_exceeded", "insufficient_quota", "rate_limit_error":
		return types.ErrRateLimit
	case "model_not_found":
		return types.ErrInvalidModel
	case "content_filter", "content_policy_violation":
		return types.ErrContentFilter
	case "timeout":
		return types.ErrTimeout
	default:
		return types.ErrAPI
	}
}

func (a *Adapter) apiError(body *ErrorBody) *APIError {
	code := ""
	switch c := body.Code.(type) {
	case string:
		code = c
	case float64:
		code = fmt.Sprintf("%d", int(c))
	}
	return &APIError{
		Provider: a.Name(),
		Code:     code,
		Type:     body.Type,
		Message:  body.Message,
	}
}
