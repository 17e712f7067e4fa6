// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
# 概述

包 config 提供 Quorum 的配置管理功能。

配置按「默认值 → YAML 文件 → 环境变量」的优先级加载，环境变量
使用 QUORUM_ 前缀，并按结构体的 env 标签逐级拼接，例如
QUORUM_LLM_OPENAI_BASE_URL。

# 核心类型

  - Config：顶层配置：LLM、Log、Telemetry、Metrics
  - LLMConfig：超时、客户端限速、精确计数开关与各 Provider 覆盖项
  - Loader：Builder 模式的加载器，支持自定义前缀与验证器

API Key 不在配置中出现，由调用方按次传入。
*/
package config
