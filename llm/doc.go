// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
包 llm 提供多供应商大语言模型客户端的核心引擎：请求构建、单次与流式执行、
流解码、取消处理以及统一的错误归一化。

# 概述

不同供应商在鉴权、请求体、流式协议和错误语义上各不相同。本包把这些差异
收敛到 [Adapter] 接口中，由 [Client] 负责与供应商无关的全部流程，
上层只面对同一套调用契约和 [types.Error] 错误分类。

# 核心接口

  - [Adapter]：供应商适配器，纯转换逻辑，不做任何 I/O
  - [Recorder]：调用级指标接收器

# 核心类型

  - [Client]：基础引擎，提供 SendMessage / StreamMessage / ValidateAPIKey
  - [ClientRegistry]：按供应商 ID 缓存 Client，支持 ClearCache
  - [ModelDescriptor]：模型列表、默认模型与能力声明
  - [StreamFormat]：流式数据行前缀与结束标记
  - [LineDecoder]：跨分块缓冲不完整行的流解码器

# 错误处理

所有失败都经过 [NormalizeError]：已归一化的错误原样返回，适配器识别的
供应商错误交给适配器转换，其余按超时、网络、API 错误归类。
非 2xx 响应由 [MapHTTPError] 按状态码映射。

# 取消

每次调用从调用方的 context 派生自己的可取消 context，并在结束时取消；
引擎自身的取消不会作为错误上报。流式调用被取消后不再产生 token 事件，
并且恰好产生一个终止事件。
*/
package llm
