// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
# 概述

包 grok 提供 xAI Grok 模型的适配器实现。该包基于
openaicompat 兼容层封装，对接 xAI API（api.x.ai）。

# 核心结构体

  - Adapter：嵌入 openaicompat.Adapter，配置 xAI 专属
    BaseURL（api.x.ai），使用 Bearer Token 认证

# 构造函数

  - New(cfg)：创建实例，默认模型 grok-beta

# 支持能力

  - Chat Completions 与 SSE 流式输出
  - 生成参数：temperature、max_tokens、top_p；其余参数被忽略
*/
package grok
