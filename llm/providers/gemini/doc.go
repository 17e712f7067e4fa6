// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
# 概述

包 gemini 提供 Google Gemini 模型的适配器实现。该包直接对接
Gemini REST API（generativelanguage.googleapis.com），自行处理请求构建
与响应解析，不依赖 openaicompat 兼容层。

# 核心结构体

  - Adapter：独立实现；模型与 API Key 编码在 URL 中
  - Content / Part：Gemini 原生内容与分片
  - APIError：错误对象、提示词拦截与安全拦截

# 支持能力

  - Chat（/v1beta/models/{model}:generateContent）
  - 流式输出（:streamGenerateContent?alt=sse），没有结束标记
  - system 消息映射为 systemInstruction，助手角色映射为 model
  - 生成参数：temperature、maxOutputTokens、topP（默认 0.95），topK 固定为 40
  - promptFeedback.blockReason 与 SAFETY 结束原因映射为 CONTENT_FILTER
*/
package gemini
