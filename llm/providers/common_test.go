package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sapientpants/quorum-sub001/types"
)

func TestSettingsDefaults(t *testing.T) {
	assert.Equal(t, DefaultMaxTokens, MaxTokensOr(nil, DefaultMaxTokens))
	assert.Equal(t, DefaultTemperature, TemperatureOr(&types.LLMSettings{}, DefaultTemperature))
	assert.Nil(t, TopP(nil))

	s := &types.LLMSettings{
		MaxTokens:   types.Int(0),
		Temperature: types.Float64(0),
		TopP:        types.Float64(0.5),
	}
	assert.Equal(t, 0, MaxTokensOr(s, DefaultMaxTokens))
	assert.Equal(t, 0.0, TemperatureOr(s, DefaultTemperature))
	assert.Equal(t, 0.5, *TopP(s))
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]types.Message{
		types.NewMessage("1", types.SenderSystem, "Be terse"),
		types.NewMessage("2", types.SenderUser, "Hi"),
		types.NewMessage("3", types.SenderSystem, "Use English"),
		types.NewMessage("4", "claude", "Hello"),
	})
	assert.Equal(t, "Be terse\n\nUse English", system)
	assert.Len(t, rest, 2)
	assert.Equal(t, "Hi", rest[0].Text)
	assert.Equal(t, "Hello", rest[1].Text)

	system, rest = SplitSystem(nil)
	assert.Empty(t, system)
	assert.Empty(t, rest)
}

func TestHeaders(t *testing.T) {
	h := BearerTokenHeaders("sk-1")
	assert.Equal(t, "Bearer sk-1", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Empty(t, JSONHeaders().Get("Authorization"))
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.x.ai/v1/chat/completions", Endpoint("https://api.x.ai/", "/v1/chat/completions"))
	assert.Equal(t, "http://h/v1/messages", Endpoint("http://h", "/v1/messages"))
}

func TestInvalidFormat(t *testing.T) {
	err := InvalidFormat("openai", "missing choices")
	assert.Equal(t, types.ErrAPI, err.Code)
	assert.Equal(t, "openai", err.Provider)
	assert.Contains(t, err.Message, "invalid response format")
}
