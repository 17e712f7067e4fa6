package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sapientpants/quorum-sub001/types"
)

// fakeAdapter speaks a minimal wire format:
// request  {"model","stream","prompt","max_tokens"}
// response {"text": "..."} or {"error": {"code": "..."}}
// stream   data: {"token": "..."}
type fakeAdapter struct {
	baseURL   string
	streaming bool
	sentinel  string
	keyInURL  bool
}

type fakeError struct {
	Code string
}

func (e *fakeError) Error() string { return "fake error: " + e.Code }

func newFakeAdapter(baseURL string) *fakeAdapter {
	return &fakeAdapter{baseURL: baseURL, streaming: true, sentinel: "[DONE]"}
}

func (a *fakeAdapter) Name() string { return "fake" }

func (a *fakeAdapter) Descriptor() ModelDescriptor {
	return ModelDescriptor{
		Models:       []string{"fake-small", "fake-large"},
		DefaultModel: "fake-small",
		Capabilities: types.ProviderCapabilities{
			SupportsStreaming:      a.streaming,
			SupportsSystemMessages: true,
			MaxContextLength:       1000,
		},
	}
}

func (a *fakeAdapter) StreamFormat() StreamFormat { return SSEFormat(a.sentinel) }

func (a *fakeAdapter) RequestURL(model, apiKey string, stream bool) string {
	path := "/complete"
	if stream {
		path = "/stream"
	}
	u := a.baseURL + path + "?model=" + model
	if a.keyInURL {
		u += "&key=" + apiKey
	}
	return u
}

func (a *fakeAdapter) RequestHeaders(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if !a.keyInURL {
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return h
}

func (a *fakeAdapter) CreateRequestBody(messages []types.Message, model string, settings *types.LLMSettings, stream bool) (any, error) {
	body := map[string]any{"model": model, "stream": stream}
	if len(messages) > 0 {
		body["prompt"] = messages[len(messages)-1].Text
	}
	if settings != nil && settings.MaxTokens != nil {
		body["max_tokens"] = *settings.MaxTokens
	}
	return body, nil
}

func (a *fakeAdapter) ExtractContent(body []byte) (string, error) {
	var resp struct {
		Text  *string    `json:"text"`
		Error *fakeError `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if resp.Text == nil {
		return "", types.NewError(types.ErrAPI, "invalid response format", types.WithProvider(a.Name()))
	}
	return *resp.Text, nil
}

func (a *fakeAdapter) ExtractToken(chunk []byte) (string, bool, error) {
	var ev struct {
		Token string     `json:"token"`
		Error *fakeError `json:"error"`
	}
	if err := json.Unmarshal(chunk, &ev); err != nil {
		return "", false, err
	}
	if ev.Error != nil {
		return "", false, ev.Error
	}
	return ev.Token, ev.Token != "", nil
}

func (a *fakeAdapter) IsProviderError(err error) bool {
	var fe *fakeError
	return errors.As(err, &fe)
}

func (a *fakeAdapter) ToStandardError(err error) *types.Error {
	var fe *fakeError
	if !errors.As(err, &fe) {
		return types.NewError(types.ErrUnknown, err.Error(), types.WithProvider(a.Name()))
	}
	code := types.ErrAPI
	if fe.Code == "quota" {
		code = types.ErrRateLimit
	}
	return types.NewError(code, fmt.Sprintf("vendor error %s", fe.Code),
		types.WithProvider(a.Name()), types.WithCause(err))
}

func tokenLine(token string) string {
	data, _ := json.Marshal(map[string]string{"token": token})
	return "data: " + string(data) + "\n"
}
