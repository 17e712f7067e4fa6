// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
# 概述

包 anthropic 提供 Anthropic Claude 系列模型的适配器实现。
Claude API 与 OpenAI 格式有显著差异，本包负责将统一会话
映射到 Anthropic Messages API（/v1/messages）。

# 核心结构体

  - Adapter：独立实现 llm.Adapter 接口（未嵌入 openaicompat）
  - APIError：响应体或流事件中的 error 对象

# 协议差异

  - 认证使用 x-api-key 请求头（非 Bearer Token），并携带 anthropic-version
  - system 消息从 messages 数组中提取，单独传递到 system 字段
  - max_tokens 为必填字段，未设置时使用 1000
  - 流式 SSE 事件结构独立（message_start / content_block_delta 等），
    没有 [DONE] 结束标记；error 事件使流失败
*/
package anthropic
