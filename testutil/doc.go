// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
Package testutil 提供 Quorum 测试的共享工具和辅助函数。

# 概述

testutil 包为各供应商适配器与基础引擎的测试提供统一的辅助能力，
避免各包重复实现相似的测试基础设施。本包只依赖 types,
因此可以被 llm 包自身的测试导入而不产生循环依赖。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 消息辅助: Conversation 构造系统/用户/助手交替的会话
  - 流式辅助: CollectStream 读取到终止事件并检查之后无事件
  - 测试服务器: JSONServer / SSEServer / HangingSSEServer，
    通过 CapturedRequest 检查请求方法、路径、查询串、请求头与请求体
  - 数据工具: MustJSON / MustParseJSON
*/
package testutil
