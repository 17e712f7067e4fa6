package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/sapientpants/quorum-sub001/types"
)

// maxErrorBody caps how much of a failed response body is read.
const maxErrorBody = 64 << 10

var timeoutPhrases = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
}

var networkPhrases = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network",
	"dial",
	"broken pipe",
	"unexpected eof",
}

// NormalizeError is the single funnel every failure passes through before it
// reaches a caller. The result always carries the provider name.
func NormalizeError(err error, adapter Adapter, requestID string) *types.Error {
	if err == nil {
		return nil
	}
	if e, ok := types.AsError(err); ok {
		return e
	}
	if adapter.IsProviderError(err) {
		return withRequestID(adapter.ToStandardError(err), requestID)
	}

	opts := []types.ErrorOption{
		types.WithProvider(adapter.Name()),
		types.WithRequestID(requestID),
		types.WithCause(err),
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return types.NewError(types.ErrTimeout, "request timed out", opts...)
	case errors.Is(err, context.Canceled):
		return types.NewError(types.ErrUnknown, "request cancelled", opts...)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.NewError(types.ErrTimeout, "request timed out", opts...)
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, timeoutPhrases) {
		return types.NewError(types.ErrTimeout, "request timed out", opts...)
	}
	if containsAny(msg, networkPhrases) {
		return types.NewError(types.ErrNetwork, "network error", opts...)
	}
	return types.NewError(types.ErrAPI, err.Error(), opts...)
}

// MapHTTPError maps a non-2xx vendor response to the taxonomy.
func MapHTTPError(status int, msg, provider, requestID string) *types.Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	opts := []types.ErrorOption{
		types.WithHTTPStatus(status),
		types.WithProvider(provider),
		types.WithRequestID(requestID),
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewError(types.ErrAuthentication, msg, opts...)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimit, msg, opts...)
	case http.StatusNotFound:
		return types.NewError(types.ErrInvalidModel, msg, opts...)
	default:
		return types.NewError(types.ErrAPI, fmt.Sprintf("%s (HTTP %d)", msg, status), opts...)
	}
}

// ReadErrorMessage extracts the vendor message from an error body:
// error.message when the body is a JSON error envelope, the raw text otherwise.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	return strings.TrimSpace(string(data))
}

// RequestIDFrom returns the vendor request id from response headers, if any.
func RequestIDFrom(h http.Header) string {
	for _, key := range []string{"x-request-id", "request-id", "x-goog-request-id"} {
		if v := h.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// withRequestID returns e with the request id attached. e is copied, never mutated.
func withRequestID(e *types.Error, requestID string) *types.Error {
	if e == nil || requestID == "" || e.RequestID != "" {
		return e
	}
	return types.NewError(e.Code, e.Message,
		types.WithHTTPStatus(e.HTTPStatus),
		types.WithProvider(e.Provider),
		types.WithRequestID(requestID),
		types.WithCause(e.Cause),
	)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
