// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
Package main 提供 Quorum 命令行程序入口。

# 概述

cmd/quorum 是多 Provider LLM 客户端的组合根：加载配置、初始化日志、
遥测与 Prometheus 指标，并通过 factory.NewRegistry 构建 ClientRegistry。

# 子命令

  - chat：向一个 Provider 发送提示词，支持 -stream 流式输出
  - models：列出各 Provider 的模型、默认模型与能力
  - validate：并发校验环境变量中的 API Key（errgroup）
  - version：版本信息，通过 ldflags 注入

API Key 只从环境变量读取，不会写入日志。
*/
package main
