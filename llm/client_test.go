package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sapientpants/quorum-sub001/testutil"
	"github.com/sapientpants/quorum-sub001/types"
)

type recordedCall struct {
	provider, model, code string
	stream                bool
	tokens                int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordCall(provider, model string, stream bool, code string, _ time.Duration, tokens int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{provider: provider, model: model, code: code, stream: stream, tokens: tokens})
}

func (r *fakeRecorder) snapshot() []recordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedCall(nil), r.calls...)
}

func TestClient_SendMessage(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK, `{"text":"hello there"}`, nil)
	rec := &fakeRecorder{}
	c := NewClient(newFakeAdapter(srv.URL), WithRecorder(rec))

	got, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk-test", "fake-large", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", got)

	assert.Equal(t, http.MethodPost, captured.Method())
	assert.Equal(t, "/complete", captured.Path())
	assert.Equal(t, "Bearer sk-test", captured.Header().Get("Authorization"))
	body := testutil.MustParseJSON(t, captured.Body())
	assert.Equal(t, "fake-large", body["model"])
	assert.Equal(t, false, body["stream"])
	assert.Equal(t, "Hi", body["prompt"])

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, recordedCall{provider: "fake", model: "fake-large", code: "OK"}, calls[0])
}

func TestClient_PreconditionsNeverTouchNetwork(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK, `{"text":"x"}`, nil)
	c := NewClient(newFakeAdapter(srv.URL))
	ctx := testutil.TestContext(t)
	msgs := testutil.Conversation("", "Hi")

	_, err := c.SendMessage(ctx, msgs, "", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrAuthentication))

	_, err = c.SendMessage(ctx, msgs, "   ", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrAuthentication))

	_, err = c.SendMessage(ctx, msgs, "sk-test", "gpt-nope", nil, nil)
	require.True(t, types.IsErrorCode(err, types.ErrInvalidModel))
	assert.Contains(t, err.Error(), "fake-small")
	assert.Contains(t, err.Error(), "fake-large")

	_, done := testutil.CollectStream(t, c.StreamMessage(ctx, msgs, "", "fake-small", nil), 5*time.Second)
	require.NotNil(t, done.Err)
	assert.Equal(t, types.ErrAuthentication, done.Err.Code)

	_, done = testutil.CollectStream(t, c.StreamMessage(ctx, msgs, "sk-test", "gpt-nope", nil), 5*time.Second)
	require.NotNil(t, done.Err)
	assert.Equal(t, types.ErrInvalidModel, done.Err.Code)

	assert.Zero(t, captured.Hits())
}

func TestClient_HTTPStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   types.ErrorCode
	}{
		{http.StatusUnauthorized, types.ErrAuthentication},
		{http.StatusForbidden, types.ErrAuthentication},
		{http.StatusTooManyRequests, types.ErrRateLimit},
		{http.StatusNotFound, types.ErrInvalidModel},
		{http.StatusInternalServerError, types.ErrAPI},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _ := testutil.JSONServer(t, tt.status, `{"error":{"message":"boom"}}`,
				map[string]string{"x-request-id": "req-42"})
			c := NewClient(newFakeAdapter(srv.URL))

			_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
			e, ok := types.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, e.Code)
			assert.Equal(t, tt.status, e.HTTPStatus)
			assert.Equal(t, "req-42", e.RequestID)
			assert.Equal(t, "fake", e.Provider)
			assert.Contains(t, e.Message, "boom")
		})
	}
}

func TestClient_InvalidResponseBody(t *testing.T) {
	srv, _ := testutil.JSONServer(t, http.StatusOK, `<html>oops</html>`, nil)
	c := NewClient(newFakeAdapter(srv.URL))

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	require.True(t, types.IsErrorCode(err, types.ErrAPI))
	assert.Contains(t, err.Error(), "invalid response format")

	srv2, _ := testutil.JSONServer(t, http.StatusOK, `{"other":1}`, nil)
	c2 := NewClient(newFakeAdapter(srv2.URL))
	_, err = c2.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrAPI))
}

func TestClient_VendorErrorGoesThroughAdapter(t *testing.T) {
	srv, _ := testutil.JSONServer(t, http.StatusOK, `{"error":{"Code":"quota"}}`,
		map[string]string{"request-id": "rid"})
	c := NewClient(newFakeAdapter(srv.URL))

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrRateLimit, e.Code)
	assert.Equal(t, "rid", e.RequestID)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(newFakeAdapter(url))
	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrNetwork), "got %v", err)
}

func TestClient_TransportErrorsDoNotLeakKeyInURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	adapter := newFakeAdapter(url)
	adapter.keyInURL = true
	c := NewClient(adapter)

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "secret-key-123", "fake-small", nil, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key-123")
}

func TestClient_DeadlineIsTimeout(t *testing.T) {
	srv, _ := testutil.HangingSSEServer(t, nil)
	c := NewClient(newFakeAdapter(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := c.SendMessage(ctx, testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrTimeout), "got %v", err)
}

func TestClient_CallbacksWithoutStreamingStillComplete(t *testing.T) {
	srv, _ := testutil.JSONServer(t, http.StatusOK, `{"text":"buffered"}`, nil)
	adapter := newFakeAdapter(srv.URL)
	adapter.streaming = false
	c := NewClient(adapter)
	require.False(t, c.SupportsStreaming())

	var completed []string
	var tokens int
	got, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil,
		&types.StreamingCallbacks{
			OnToken:    func(string) { tokens++ },
			OnComplete: func(full string) { completed = append(completed, full) },
			OnError:    func(*types.Error) { t.Error("unexpected OnError") },
		})
	require.NoError(t, err)
	assert.Equal(t, "buffered", got)
	assert.Equal(t, []string{"buffered"}, completed)
	assert.Zero(t, tokens)
}

func TestClient_ValidateAPIKey(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK, `{"text":"."}`, nil)
	c := NewClient(newFakeAdapter(srv.URL))
	ctx := testutil.TestContext(t)

	assert.True(t, c.ValidateAPIKey(ctx, "sk-good"))
	body := testutil.MustParseJSON(t, captured.Body())
	assert.Equal(t, "fake-small", body["model"])
	assert.EqualValues(t, 1, body["max_tokens"])

	assert.False(t, c.ValidateAPIKey(ctx, ""))
}

func TestClient_ValidateAPIKeyLogsWithoutKey(t *testing.T) {
	srv, _ := testutil.JSONServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, nil)
	core, logs := observer.New(zap.WarnLevel)
	c := NewClient(newFakeAdapter(srv.URL), WithLogger(zap.New(core)))

	assert.False(t, c.ValidateAPIKey(testutil.TestContext(t), "sk-very-secret"))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "api key validation failed", entries[0].Message)
	for _, e := range entries {
		for _, f := range e.Context {
			assert.NotContains(t, f.String, "sk-very-secret")
			if f.Interface != nil {
				if err, ok := f.Interface.(error); ok {
					assert.NotContains(t, err.Error(), "sk-very-secret")
				}
			}
		}
	}
}

func TestClient_Accessors(t *testing.T) {
	c := NewClient(newFakeAdapter("http://unused"))
	assert.Equal(t, "fake", c.GetProviderName())
	assert.Equal(t, "fake-small", c.GetDefaultModel())
	assert.Contains(t, c.GetAvailableModels(), c.GetDefaultModel())
	assert.Equal(t, 1000, c.GetCapabilities().MaxContextLength)
	assert.True(t, c.SupportsStreaming())

	models := c.GetAvailableModels()
	models[0] = "mutated"
	assert.Equal(t, "fake-small", c.GetAvailableModels()[0])
}

func TestClient_NilHTTPClientDisablesNetwork(t *testing.T) {
	c := NewClient(newFakeAdapter("http://unused"), WithHTTPClient(nil))
	assert.False(t, c.SupportsStreaming())

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedOperation))
}

func TestClient_CountTokensWarnsOnOverflow(t *testing.T) {
	srv, _ := testutil.JSONServer(t, http.StatusOK, `{"text":"ok"}`, nil)
	core, logs := observer.New(zap.WarnLevel)
	c := NewClient(newFakeAdapter(srv.URL), WithLogger(zap.New(core)))

	long := strings.Repeat("word ", 2000)
	assert.Greater(t, c.CountTokens(testutil.Conversation("", long)), 1000)

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", long), "sk", "fake-small", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("conversation exceeds model context length").Len())
}

func TestClient_RateLimitPacesButSucceeds(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK, `{"text":"ok"}`, nil)
	c := NewClient(newFakeAdapter(srv.URL), WithRateLimit(1000, 1))
	ctx := testutil.TestContext(t)

	for i := 0; i < 3; i++ {
		_, err := c.SendMessage(ctx, testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, captured.Hits())
}

func TestClient_RateLimitWaitObservesCancellation(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK, `{"text":"ok"}`, nil)
	c := NewClient(newFakeAdapter(srv.URL), WithRateLimit(0.001, 1))
	ctx := testutil.TestContext(t)

	_, err := c.SendMessage(ctx, testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = c.SendMessage(short, testutil.Conversation("", "Hi"), "sk", "fake-small", nil, nil)
	assert.True(t, types.IsErrorCode(err, types.ErrTimeout), "got %v", err)
	assert.Equal(t, 1, captured.Hits())
}
