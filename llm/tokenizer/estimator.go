package tokenizer

import "unicode"

// 估算参数: 表意文字约 1.5 字符/token, 其余约 4 字符/token.
const (
	ideographCharsPerToken = 1.5
	otherCharsPerToken     = 4.0

	// perMessageOverhead 角色标记与分隔符
	perMessageOverhead = 4
	// replyPriming 回复起始标记
	replyPriming = 3

	defaultMaxTokens = 4096
)

// wideScripts 按 token 密度计为表意文字的字符集.
var wideScripts = []*unicode.RangeTable{
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
}

// EstimatorTokenizer 基于字符数估算 token, 不需要下载编码表.
type EstimatorTokenizer struct {
	model     string
	maxTokens int
}

// NewEstimatorTokenizer 创建估算器. maxTokens <= 0 时取 4096.
func NewEstimatorTokenizer(model string, maxTokens int) *EstimatorTokenizer {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &EstimatorTokenizer{model: model, maxTokens: maxTokens}
}

func (e *EstimatorTokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	var wide, other int
	for _, r := range text {
		if isWide(r) {
			wide++
		} else {
			other++
		}
	}

	n := int(float64(wide)/ideographCharsPerToken + float64(other)/otherCharsPerToken)
	return max(n, 1), nil
}

func (e *EstimatorTokenizer) CountMessages(messages []Message) (int, error) {
	total := replyPriming
	for _, msg := range messages {
		n, err := e.CountTokens(msg.Content)
		if err != nil {
			return 0, err
		}
		total += n + perMessageOverhead
	}
	return total, nil
}

func (e *EstimatorTokenizer) MaxTokens() int { return e.maxTokens }

func (e *EstimatorTokenizer) Name() string { return "estimator" }

func isWide(r rune) bool {
	if r < 0x1100 {
		return false
	}
	if unicode.In(r, wideScripts...) {
		return true
	}
	// CJK 标点与全角字符
	return (r >= 0x3000 && r <= 0x303F) || (r >= 0xFF00 && r <= 0xFFEF)
}
