// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
Package types 提供 quorum 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 llm、providers、cmd
等上层模块提供统一的类型契约，以避免循环依赖。

# 核心类型

  - Error / ErrorCode：归一化错误体系（9 种错误码），含 HTTP 状态码、Provider、RequestID
  - Message：对话消息（SenderID 折叠为 system / user / assistant）
  - LLMSettings：可选生成参数（指针字段，nil 表示未设置）
  - ProviderCapabilities：Provider 静态能力描述（流式、system 消息、上下文长度）
  - StreamingResponse：流式事件（若干 token 事件 + 恰好一个 Done 事件）
  - StreamingCallbacks：SendMessage 走流式路径时的回调

# 主要能力

  - 错误构造：NewError + WithHTTPStatus / WithProvider / WithRequestID / WithCause
  - 错误工具链：AsError / CodeOf / IsErrorCode / IsRetryable
  - 展示视图：UserMessage / Suggestions（仅依赖错误码）
*/
package types
