// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
# 概述

包 providers 提供各供应商适配器共享的辅助能力。具体适配器位于子包
（openai、anthropic、gemini、grok），OpenAI 兼容的线格式由 openaicompat 提供。

适配器只做纯转换：构建请求体、请求头与 URL，解析响应与流式分块，
把供应商错误翻译为统一错误分类。网络、解码与取消都由 llm.Client 负责。

# 核心类型

  - BaseProviderConfig：所有适配器共享的基础配置（BaseURL、APIVersion）
  - OpenAIConfig / ClaudeConfig / GeminiConfig / GrokConfig：各供应商配置

# 核心函数

  - MaxTokensOr / TemperatureOr / TopP：设置默认值处理
  - SplitSystem：将 system 消息从会话中分离
  - BearerTokenHeaders / JSONHeaders：通用请求头
  - InvalidFormat：响应结构异常时的统一错误
*/
package providers
