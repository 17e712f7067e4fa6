package anthropic

import (
	"encoding/json"
	"testing"

	"pgregory.net/rapid"

	"github.com/sapientpants/quorum-sub001/llm/providers"
	"github.com/sapientpants/quorum-sub001/testutil"
	"github.com/sapientpants/quorum-sub001/types"
)

func claudeEcho(text string) ([]byte, []byte) {
	body, _ := json.Marshal(map[string]any{
		"type":    "message",
		"role":    "assistant",
		"content": []any{map[string]any{"type": "text", "text": text}},
	})
	chunk, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]any{"type": "text_delta", "text": text},
	})
	return body, chunk
}

func TestConvertExtract_PreservesText(t *testing.T) {
	a := New(providers.ClaudeConfig{})

	rapid.Check(t, func(rt *rapid.T) {
		msgs := testutil.DrawConversation(rt)
		system, converted := a.ConvertMessages(msgs)
		if system != msgs[0].Text {
			rt.Fatalf("system %q, want %q", system, msgs[0].Text)
		}
		// strictly alternating turns are never merged
		if len(converted) != len(msgs)-1 {
			rt.Fatalf("converted %d turns into %d", len(msgs)-1, len(converted))
		}

		texts := []string{system}
		for i, m := range converted {
			orig := msgs[i+1]
			wantRole := "assistant"
			if orig.Role() == types.RoleUser {
				wantRole = "user"
			}
			if m.Role != wantRole || m.Content != orig.Text {
				rt.Fatalf("turn %d: got (%s, %q), want (%s, %q)", i, m.Role, m.Content, wantRole, orig.Text)
			}
			texts = append(texts, m.Content)
		}

		for _, want := range texts {
			body, chunk := claudeEcho(want)
			got, err := a.ExtractContent(body)
			if err != nil {
				rt.Fatalf("extract content: %v", err)
			}
			if got != want {
				rt.Fatalf("extracted %q, want %q", got, want)
			}
			token, ok, err := a.ExtractToken(chunk)
			if err != nil {
				rt.Fatalf("extract token: %v", err)
			}
			if ok != (want != "") || token != want {
				rt.Fatalf("token (%q, %v), want %q", token, ok, want)
			}
		}
	})
}
