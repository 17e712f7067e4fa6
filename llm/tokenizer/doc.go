// Package tokenizer 提供统一的 Token 计数接口，
// 支持 tiktoken 精确计数与 CJK 感知估算器，用于请求前的上下文长度检查。
package tokenizer
