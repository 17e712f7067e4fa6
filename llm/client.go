package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sapientpants/quorum-sub001/internal/tlsutil"
	"github.com/sapientpants/quorum-sub001/llm/observability"
	"github.com/sapientpants/quorum-sub001/llm/tokenizer"
	"github.com/sapientpants/quorum-sub001/types"
)

// DefaultResponseHeaderTimeout bounds the wait for the vendor's first byte.
const DefaultResponseHeaderTimeout = 60 * time.Second

// Client executes requests for one provider. The vendor specifics come from
// its Adapter; everything else (transport, decoding, cancellation, error
// normalization) lives here and is identical for every provider.
//
// A Client holds no per-call state and is safe for concurrent use.
type Client struct {
	adapter    Adapter
	httpClient *http.Client
	logger     *zap.Logger
	recorder   Recorder
	telemetry  *observability.Metrics
	limiter    *rate.Limiter
	tokenizer  tokenizer.Tokenizer

	exactTokens bool
}

// NewClient creates a client around adapter.
func NewClient(adapter Adapter, opts ...Option) *Client {
	c := &Client{
		adapter:    adapter,
		httpClient: tlsutil.StreamingHTTPClient(DefaultResponseHeaderTimeout),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(
		zap.String("component", "llm_client"),
		zap.String("provider", adapter.Name()),
	)
	if c.telemetry == nil {
		if m, err := observability.NewMetrics(); err == nil {
			c.telemetry = m
		}
	}
	if c.tokenizer == nil {
		desc := adapter.Descriptor()
		c.tokenizer = tokenizer.ForModel(desc.DefaultModel, desc.Capabilities.MaxContextLength, c.exactTokens)
	}
	return c
}

// SendMessage sends the conversation and returns the complete answer.
//
// When callbacks is non-nil and the provider can stream, the answer is
// streamed: OnToken sees every token, then exactly one of OnComplete or
// OnError is called. Without streaming support the call is buffered and the
// terminal callback still fires once.
func (c *Client) SendMessage(
	ctx context.Context,
	messages []types.Message,
	apiKey, model string,
	settings *types.LLMSettings,
	callbacks *types.StreamingCallbacks,
) (string, error) {
	if callbacks != nil && c.SupportsStreaming() {
		return c.sendStreaming(ctx, messages, apiKey, model, settings, callbacks)
	}

	start := time.Now()
	ctx, span := c.begin(ctx, "send", model, false)
	text, err := c.complete(ctx, messages, apiKey, model, settings)
	c.end(ctx, span, "send", model, false, start, 0, err)

	if callbacks != nil {
		if err != nil {
			if callbacks.OnError != nil {
				callbacks.OnError(err)
			}
		} else if callbacks.OnComplete != nil {
			callbacks.OnComplete(text)
		}
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// ValidateAPIKey performs a minimal request against the default model.
// Failures are logged and reduced to false.
func (c *Client) ValidateAPIKey(ctx context.Context, apiKey string) bool {
	msgs := []types.Message{types.NewMessage("key-check", types.SenderUser, "Hi")}
	settings := &types.LLMSettings{MaxTokens: types.Int(1)}

	_, err := c.SendMessage(ctx, msgs, apiKey, c.GetDefaultModel(), settings, nil)
	if err != nil {
		c.logger.Warn("api key validation failed",
			zap.String("code", string(types.CodeOf(err))),
			zap.Error(err))
		return false
	}
	return true
}

// GetAvailableModels returns the models the provider accepts.
func (c *Client) GetAvailableModels() []string {
	models := c.adapter.Descriptor().Models
	out := make([]string, len(models))
	copy(out, models)
	return out
}

// GetDefaultModel returns the model used when the caller has no preference.
func (c *Client) GetDefaultModel() string {
	return c.adapter.Descriptor().DefaultModel
}

// GetProviderName returns the provider id.
func (c *Client) GetProviderName() string {
	return c.adapter.Name()
}

// GetCapabilities returns the provider's static capabilities.
func (c *Client) GetCapabilities() types.ProviderCapabilities {
	return c.adapter.Descriptor().Capabilities
}

// SupportsStreaming reports whether streamed calls can be made.
func (c *Client) SupportsStreaming() bool {
	return c.adapter.Descriptor().Capabilities.SupportsStreaming &&
		c.httpClient != nil &&
		c.adapter.StreamFormat().DataPrefix != ""
}

// CountTokens estimates the prompt size of messages.
func (c *Client) CountTokens(messages []types.Message) int {
	n, err := c.tokenizer.CountMessages(tokenizer.FromMessages(messages))
	if err != nil {
		c.logger.Debug("token count failed", zap.Error(err))
		return 0
	}
	return n
}

// Normalize maps any error into the taxonomy for this provider.
func (c *Client) Normalize(err error) *types.Error {
	return NormalizeError(err, c.adapter, "")
}

func (c *Client) complete(
	ctx context.Context,
	messages []types.Message,
	apiKey, model string,
	settings *types.LLMSettings,
) (string, *types.Error) {
	if err := c.validate(apiKey, model); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := c.do(callCtx, messages, apiKey, model, settings, false)
	if err != nil {
		return "", c.exchangeError(ctx, callCtx, err, "")
	}
	defer resp.Body.Close()

	requestID := RequestIDFrom(resp.Header)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.exchangeError(ctx, callCtx, fmt.Errorf("read response body: %w", err), requestID)
	}
	if !json.Valid(body) {
		return "", types.NewError(types.ErrAPI, "invalid response format: body is not JSON",
			types.WithProvider(c.adapter.Name()),
			types.WithRequestID(requestID))
	}

	text, err := c.adapter.ExtractContent(body)
	if err != nil {
		return "", c.normalize(err, requestID)
	}
	return text, nil
}

// validate checks the call preconditions. Nothing touches the network until
// both pass.
func (c *Client) validate(apiKey, model string) *types.Error {
	if strings.TrimSpace(apiKey) == "" {
		return types.NewError(types.ErrAuthentication, "API key is required",
			types.WithProvider(c.adapter.Name()))
	}
	desc := c.adapter.Descriptor()
	if !desc.Supports(model) {
		return types.NewError(types.ErrInvalidModel,
			fmt.Sprintf("model %q is not supported; available models: %s", model, strings.Join(desc.Models, ", ")),
			types.WithProvider(c.adapter.Name()))
	}
	return nil
}

// do sends one request. Non-2xx responses are closed and returned as errors.
func (c *Client) do(
	ctx context.Context,
	messages []types.Message,
	apiKey, model string,
	settings *types.LLMSettings,
	stream bool,
) (*http.Response, error) {
	if c.httpClient == nil {
		return nil, types.NewError(types.ErrUnsupportedOperation, "no HTTP client configured",
			types.WithProvider(c.adapter.Name()))
	}
	c.checkContextLength(messages, model)

	body, err := c.adapter.CreateRequestBody(messages, model, settings, stream)
	if err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("client rate limit wait: %w", context.DeadlineExceeded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.adapter.RequestURL(model, apiKey, stream), bytes.NewReader(payload))
	if err != nil {
		return nil, redactURLError(err)
	}
	if h := c.adapter.RequestHeaders(apiKey); h != nil {
		req.Header = h
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	c.logger.Debug("dispatching request",
		zap.String("call_id", uuid.NewString()),
		zap.String("model", model),
		zap.Bool("stream", stream),
		zap.Int("messages", len(messages)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactURLError(err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, MapHTTPError(resp.StatusCode, ReadErrorMessage(resp.Body),
			c.adapter.Name(), RequestIDFrom(resp.Header))
	}
	return resp, nil
}

func (c *Client) checkContextLength(messages []types.Message, model string) {
	limit := c.adapter.Descriptor().Capabilities.MaxContextLength
	if limit <= 0 {
		return
	}
	if n := c.CountTokens(messages); n > limit {
		c.logger.Warn("conversation exceeds model context length",
			zap.String("model", model),
			zap.Int("estimated_tokens", n),
			zap.Int("max_context_length", limit))
	}
}

func (c *Client) normalize(err error, requestID string) *types.Error {
	return NormalizeError(err, c.adapter, requestID)
}

func (c *Client) begin(ctx context.Context, op, model string, stream bool) (context.Context, trace.Span) {
	if c.telemetry == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return c.telemetry.StartRequest(ctx, observability.RequestAttrs{
		Provider:  c.adapter.Name(),
		Model:     model,
		Operation: op,
		Stream:    stream,
	})
}

func (c *Client) end(
	ctx context.Context,
	span trace.Span,
	op, model string,
	stream bool,
	start time.Time,
	tokens int,
	err *types.Error,
) {
	duration := time.Since(start)
	status, code, msg := "success", "", ""
	if err != nil {
		status, code, msg = "error", string(err.Code), err.Message
	}

	c.recorder.RecordCall(c.adapter.Name(), model, stream, statusCode(code), duration, tokens)
	if c.telemetry != nil {
		c.telemetry.EndRequest(ctx, span, observability.RequestAttrs{
			Provider:  c.adapter.Name(),
			Model:     model,
			Operation: op,
			Stream:    stream,
		}, observability.ResponseAttrs{
			Status:    status,
			ErrorCode: code,
			Message:   msg,
			Tokens:    tokens,
			Duration:  duration,
		})
	}
}

func statusCode(code string) string {
	if code == "" {
		return "OK"
	}
	return code
}

// redactURLError drops the request URL from transport errors. Some vendors
// carry the API key in the query string.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", strings.ToLower(ue.Op), ue.Err)
	}
	return err
}
