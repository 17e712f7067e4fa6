// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
# 概述

包 openai 提供 OpenAI 模型的适配器实现。该包在 openaicompat
基础上配置 OpenAI 专属的地址、模型列表与可接受的生成参数。

# 核心结构体

  - Adapter：嵌入 openaicompat.Adapter；可选 OpenAI-Organization 请求头

# 支持能力

  - Chat Completions（/v1/chat/completions），Bearer Token 认证
  - 流式输出（SSE，以 [DONE] 结束）
  - 生成参数：temperature、max_tokens、top_p、frequency_penalty、presence_penalty
*/
package openai
