package llm

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sapientpants/quorum-sub001/llm/observability"
	"github.com/sapientpants/quorum-sub001/llm/tokenizer"
)

// Recorder receives one record per finished call.
type Recorder interface {
	RecordCall(provider, model string, stream bool, code string, duration time.Duration, tokens int)
}

type nopRecorder struct{}

func (nopRecorder) RecordCall(string, string, bool, string, time.Duration, int) {}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every call. A nil client
// disables network access: calls fail with UNSUPPORTED_OPERATION.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRecorder sets the per-call metrics sink.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTelemetry sets the OpenTelemetry instrumentation.
func WithTelemetry(m *observability.Metrics) Option {
	return func(c *Client) { c.telemetry = m }
}

// WithTracer instruments calls with the given tracer and the global meter.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		m, err := observability.NewMetricsWith(tracer, otel.Meter("github.com/sapientpants/quorum-sub001/llm"))
		if err == nil {
			c.telemetry = m
		}
	}
}

// WithRateLimit paces outgoing requests of one client. Waiting observes the
// call context and is never a retry. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTokenizer sets the tokenizer used by CountTokens.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(c *Client) { c.tokenizer = t }
}

// WithExactTokenCount selects tiktoken for OpenAI-family models when no
// tokenizer is set explicitly. The encoding is downloaded on first use.
func WithExactTokenCount(exact bool) Option {
	return func(c *Client) { c.exactTokens = exact }
}
