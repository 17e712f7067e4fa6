// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的 LLM 调用指标采集能力。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用
promauto.With 注册到调用方提供的 Registerer，测试中可使用独立的
Registry。所有指标按 namespace 隔离。

# 核心类型

  - Collector：实现 llm.Recorder，每次调用结束时记录一次。

# 主要能力

  - 调用总数：按 provider/model/mode/code 分组，code 为 OK 或错误码。
  - 调用耗时：Histogram，按 provider/model/mode 分组。
  - 流式 token 数：已交付给调用方的 token 事件数。
  - 错误计数：按 provider/code 分组。
  - Handler：通过 promhttp 暴露 /metrics。
*/
package metrics
