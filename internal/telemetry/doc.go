// Package telemetry 封装 OpenTelemetry SDK 初始化逻辑，
// 为 Quorum 提供集中式的 TracerProvider 和 MeterProvider 配置（OTLP gRPC 导出）。
// 当遥测功能禁用时，使用 noop 实现，不连接任何外部服务。
// Providers.Tracer 返回 LLM 客户端使用的 Tracer。
package telemetry
