// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供通用的测试辅助函数和断言
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	tokens, done := testutil.CollectStream(t, client.StreamMessage(ctx, msgs, key, model, nil), 5*time.Second)
// =============================================================================

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/sapientpants/quorum-sub001/types"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 💬 消息辅助
// =============================================================================

// Conversation 构造一段会话: 可选的系统消息后跟交替的用户/助手消息.
// turns[0] 是用户消息, turns[1] 是助手回复, 以此类推.
func Conversation(system string, turns ...string) []types.Message {
	msgs := make([]types.Message, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, types.NewMessage("sys", types.SenderSystem, system))
	}
	for i, text := range turns {
		sender := types.SenderUser
		if i%2 == 1 {
			sender = "assistant"
		}
		msgs = append(msgs, types.NewMessage(string(rune('a'+i)), sender, text))
	}
	return msgs
}

// DrawConversation 生成一条非空系统消息和交替的用户/其他发送者消息,
// 供属性测试使用. 非用户发送者的 id 随机取值, 都应折叠为 assistant.
func DrawConversation(t *rapid.T) []types.Message {
	system := rapid.StringN(1, -1, -1).Draw(t, "system")
	turns := rapid.SliceOfN(rapid.String(), 1, 8).Draw(t, "turns")

	msgs := []types.Message{types.NewMessage("sys", types.SenderSystem, system)}
	for i, text := range turns {
		sender := types.SenderUser
		if i%2 == 1 {
			sender = rapid.SampledFrom([]string{"assistant", "gpt-4o", "claude-3-5-sonnet-20241022", "bot-7"}).Draw(t, "sender")
		}
		msgs = append(msgs, types.NewMessage(fmt.Sprintf("m%d", i), sender, text))
	}
	return msgs
}

// =============================================================================
// 🌊 流式辅助
// =============================================================================

// CollectStream 读取流直到终止事件, 返回所有 token 与终止事件.
// 超时未结束时测试失败.
func CollectStream(t *testing.T, ch <-chan types.StreamingResponse, timeout time.Duration) ([]string, types.StreamingResponse) {
	t.Helper()

	var tokens []string
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatal("stream closed without a terminal event")
				return tokens, types.StreamingResponse{}
			}
			if ev.Done {
				if _, open := <-ch; open {
					t.Error("event received after the terminal event")
				}
				return tokens, ev
			}
			tokens = append(tokens, ev.Token)
		case <-deadline:
			t.Fatalf("stream did not finish within %v", timeout)
			return tokens, types.StreamingResponse{}
		}
	}
}

// =============================================================================
// 📦 数据工具
// =============================================================================

// MustJSON 序列化为 JSON, 失败时测试终止
func MustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return data
}

// MustParseJSON 解析 JSON 为通用 map, 失败时测试终止
func MustParseJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", data, err)
	}
	return out
}
