// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

// Package factory 提供 LLM 适配器的集中式工厂，
// 通过名称映射创建适配器与 ClientRegistry，打破 llm 包与各 provider 子包之间的循环依赖。
//
// 内置 Provider：openai、anthropic（别名 claude）、gemini（别名 google）、grok（别名 xai）。
package factory
