package llm

import (
	"net/http"
	"slices"

	"github.com/sapientpants/quorum-sub001/types"
)

// Adapter holds all vendor knowledge the Client needs. Implementations are
// pure translation units: they never perform I/O.
type Adapter interface {
	// Name returns the provider identifier used in errors, logs and metrics.
	Name() string

	// Descriptor returns the static model list and capabilities.
	Descriptor() ModelDescriptor

	// StreamFormat describes how the vendor frames streamed records.
	StreamFormat() StreamFormat

	// RequestURL returns the completion endpoint. Vendors that authenticate
	// through the query string embed apiKey here.
	RequestURL(model, apiKey string, stream bool) string

	// RequestHeaders returns auth and content headers for one request.
	RequestHeaders(apiKey string) http.Header

	// CreateRequestBody builds the JSON-serializable vendor request.
	CreateRequestBody(messages []types.Message, model string, settings *types.LLMSettings, stream bool) (any, error)

	// ExtractContent returns the answer text of a buffered response body.
	ExtractContent(body []byte) (string, error)

	// ExtractToken returns the text delta of one streamed record.
	// ok is false when the record carries no text.
	ExtractToken(chunk []byte) (token string, ok bool, err error)

	// IsProviderError reports whether err is one of the adapter's vendor errors.
	IsProviderError(err error) bool

	// ToStandardError translates a vendor error into the taxonomy.
	ToStandardError(err error) *types.Error
}

// ModelDescriptor lists the models a provider accepts and its capabilities.
type ModelDescriptor struct {
	Models       []string                   `json:"models"`
	DefaultModel string                     `json:"default_model"`
	Capabilities types.ProviderCapabilities `json:"capabilities"`
}

// Supports reports whether model is in the descriptor's list.
func (d ModelDescriptor) Supports(model string) bool {
	return slices.Contains(d.Models, model)
}

// StreamFormat describes newline-delimited streaming records.
type StreamFormat struct {
	// DataPrefix marks lines that carry a JSON payload, e.g. "data:".
	DataPrefix string
	// DoneSentinel is the payload that ends the stream, e.g. "[DONE]".
	// Empty when the vendor ends the stream by closing the body.
	DoneSentinel string
}

// SSEFormat returns the server-sent-events framing used by most vendors.
func SSEFormat(sentinel string) StreamFormat {
	return StreamFormat{DataPrefix: "data:", DoneSentinel: sentinel}
}
