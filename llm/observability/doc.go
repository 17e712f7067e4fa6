// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
包 observability 为 LLM 调用提供基于 OpenTelemetry 的指标与追踪。

# 概述

Client 在每次 SendMessage / StreamMessage 开始时调用 StartRequest 打开
Span，结束时调用 EndRequest 记录结果。未初始化导出器时使用全局的
no-op Provider，开销可以忽略。

# 核心结构体

  - Metrics：持有 tracer 与 meter，提供请求计数、流式 Token 计数、
    错误计数、延迟直方图与活跃请求数。
  - RequestAttrs / ResponseAttrs：一次调用的请求维度与结果。

# 主要能力

  - Span 属性遵循 provider / model / operation / stream 维度。
  - 错误调用将 Span 状态置为 Error 并附带归一化错误码。
*/
package observability
