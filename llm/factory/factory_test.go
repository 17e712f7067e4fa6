package factory

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sapientpants/quorum-sub001/config"
	"github.com/sapientpants/quorum-sub001/llm"
	"github.com/sapientpants/quorum-sub001/testutil"
	"github.com/sapientpants/quorum-sub001/types"
)

// =============================================================================
// Factory Tests
// =============================================================================

func pointAt(url string) config.LLMConfig {
	cfg := config.DefaultLLMConfig()
	pc := config.ProviderConfig{BaseURL: url}
	cfg.OpenAI, cfg.Anthropic, cfg.Gemini, cfg.Grok = pc, pc, pc, pc
	return cfg
}

func TestNewAdapter_AllProviders(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
	}{
		{"openai", "openai"},
		{"anthropic", "anthropic"},
		{"claude", "anthropic"},
		{"gemini", "gemini"},
		{"google", "gemini"},
		{"grok", "grok"},
		{" XAI ", "grok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := NewAdapter(tt.name, config.DefaultLLMConfig())
			require.True(t, ok)
			assert.Equal(t, tt.wantName, a.Name())
		})
	}

	_, ok := NewAdapter("mistral", config.DefaultLLMConfig())
	assert.False(t, ok)
}

func TestSupportedProviders(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "gemini", "grok", "openai"}, SupportedProviders())
}

func TestNewRegistry_DefaultModelIsAvailable(t *testing.T) {
	reg := NewRegistry(config.DefaultLLMConfig(), zap.NewNop())

	for _, id := range SupportedProviders() {
		c, err := reg.GetClient(id)
		require.NoError(t, err, id)
		assert.Contains(t, c.GetAvailableModels(), c.GetDefaultModel(), id)
		assert.True(t, c.SupportsStreaming(), id)
		assert.Positive(t, c.GetCapabilities().MaxContextLength, id)
	}
}

func TestNewRegistry_EmptyKeyNeverTouchesNetwork(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK, `{}`, nil)
	reg := NewRegistry(pointAt(srv.URL), nil)
	ctx := testutil.TestContext(t)
	msgs := testutil.Conversation("", "Hi")

	for _, id := range SupportedProviders() {
		c, err := reg.GetClient(id)
		require.NoError(t, err)

		_, err = c.SendMessage(ctx, msgs, "", c.GetDefaultModel(), nil, nil)
		assert.True(t, types.IsErrorCode(err, types.ErrAuthentication), id)

		_, final := testutil.CollectStream(t, c.StreamMessage(ctx, msgs, "", c.GetDefaultModel(), nil), 5*time.Second)
		require.NotNil(t, final.Err, id)
		assert.Equal(t, types.ErrAuthentication, final.Err.Code, id)

		_, err = c.SendMessage(ctx, msgs, "key", "no-such-model", nil, nil)
		assert.True(t, types.IsErrorCode(err, types.ErrInvalidModel), id)

		_, final = testutil.CollectStream(t, c.StreamMessage(ctx, msgs, "key", "no-such-model", nil), 5*time.Second)
		require.NotNil(t, final.Err, id)
		assert.Equal(t, types.ErrInvalidModel, final.Err.Code, id)

		assert.False(t, c.ValidateAPIKey(ctx, ""), id)
	}
	assert.Equal(t, 0, captured.Hits())
}

func TestNewRegistry_BaseURLOverride(t *testing.T) {
	srv, captured := testutil.JSONServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"pong"}}]}`, nil)
	reg := NewRegistry(pointAt(srv.URL), nil)

	c, err := reg.GetClient("xai")
	require.NoError(t, err)
	got, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "ping"), "key", "grok-beta", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", got)
	assert.Equal(t, "/v1/chat/completions", captured.Path())
}

func TestNewRegistry_UnknownProvider(t *testing.T) {
	reg := NewRegistry(config.DefaultLLMConfig(), nil)
	_, err := reg.GetClient("mistral")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedOperation))
	assert.Contains(t, err.Error(), "openai")
}

func TestNewRegistry_ExtraOptions(t *testing.T) {
	srv, _ := testutil.JSONServer(t, http.StatusOK, `{}`, nil)
	reg := NewRegistry(pointAt(srv.URL), nil, llm.WithHTTPClient(nil))

	c, err := reg.GetClient("openai")
	require.NoError(t, err)
	// 调用方选项在配置之后应用
	assert.False(t, c.SupportsStreaming())
}

func TestNewRegistry_ConcurrentGetClient(t *testing.T) {
	reg := NewRegistry(config.DefaultLLMConfig(), nil)

	var wg sync.WaitGroup
	clients := make([]*llm.Client, 20)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := reg.GetClient("gemini")
			assert.NoError(t, err)
			clients[i] = c
		}(i)
	}
	wg.Wait()

	for _, c := range clients {
		assert.Same(t, clients[0], c)
	}
}
