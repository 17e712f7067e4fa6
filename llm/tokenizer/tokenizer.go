package tokenizer

import (
	"strings"

	"github.com/sapientpants/quorum-sub001/types"
)

// Tokenizer 统一的 Token 计数接口.
type Tokenizer interface {
	// CountTokens 返回给定文本的 token 数.
	CountTokens(text string) (int, error)

	// CountMessages 返回消息列表的总 token 数,
	// 包括每条消息的开销（角色标记、分隔符等）。
	CountMessages(messages []Message) (int, error)

	// MaxTokens 返回模型的最大上下文长度.
	MaxTokens() int

	// Name 返回分词器的名称.
	Name() string
}

// Message 是计数用的轻量消息结构.
type Message struct {
	Role    string
	Content string
}

// FromMessages 将会话消息折叠为计数消息.
func FromMessages(messages []types.Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, Message{Role: string(m.Role()), Content: m.Text})
	}
	return out
}

// ForModel 返回模型的分词器。exact 为 true 且模型属于 OpenAI 兼容家族时
// 使用 tiktoken,否则使用估算器。
func ForModel(model string, maxContext int, exact bool) Tokenizer {
	if exact && isTiktokenFamily(model) {
		return NewTiktokenTokenizer(model, maxContext)
	}
	return NewEstimatorTokenizer(model, maxContext)
}

func isTiktokenFamily(model string) bool {
	for _, prefix := range []string{"gpt-", "grok-", "o1", "o3"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
