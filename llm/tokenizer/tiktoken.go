package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenTokenizer 基于 tiktoken 的精确计数.
// 编码数据在第一次使用时加载,加载失败时回退到估算器。
type TiktokenTokenizer struct {
	model     string
	encoding  string
	maxTokens int
	enc       *tiktoken.Tiktoken
	fallback  *EstimatorTokenizer
	once      sync.Once
	initErr   error
}

// 模型前缀到 tiktoken 编码的映射,按前缀长度从长到短匹配。
var modelEncodings = []struct {
	prefix   string
	encoding string
}{
	{prefix: "gpt-4o", encoding: "o200k_base"},
	{prefix: "o1", encoding: "o200k_base"},
	{prefix: "o3", encoding: "o200k_base"},
	{prefix: "gpt-4", encoding: "cl100k_base"},
	{prefix: "gpt-3.5", encoding: "cl100k_base"},
	{prefix: "grok-", encoding: "cl100k_base"},
}

// EncodingForModel 返回模型对应的编码名称, 未知模型使用 cl100k_base.
func EncodingForModel(model string) string {
	for _, e := range modelEncodings {
		if strings.HasPrefix(model, e.prefix) {
			return e.encoding
		}
	}
	return "cl100k_base"
}

// NewTiktokenTokenizer 为给定模型创建 tiktoken 分词器.
func NewTiktokenTokenizer(model string, maxTokens int) *TiktokenTokenizer {
	return &TiktokenTokenizer{
		model:     model,
		encoding:  EncodingForModel(model),
		maxTokens: maxTokens,
		fallback:  NewEstimatorTokenizer(model, maxTokens),
	}
}

func (t *TiktokenTokenizer) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

func (t *TiktokenTokenizer) CountTokens(text string) (int, error) {
	if err := t.init(); err != nil {
		return t.fallback.CountTokens(text)
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

func (t *TiktokenTokenizer) CountMessages(messages []Message) (int, error) {
	if err := t.init(); err != nil {
		return t.fallback.CountMessages(messages)
	}

	total := replyPriming
	for _, msg := range messages {
		// <|start|>role\n content<|end|>\n
		total += perMessageOverhead +
			len(t.enc.Encode(msg.Content, nil, nil)) +
			len(t.enc.Encode(msg.Role, nil, nil))
	}
	return total, nil
}

func (t *TiktokenTokenizer) MaxTokens() int {
	return t.maxTokens
}

func (t *TiktokenTokenizer) Name() string {
	return fmt.Sprintf("tiktoken[%s]", t.encoding)
}
