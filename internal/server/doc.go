// Copyright (c) Quorum Authors.
// Licensed under the MIT License.

/*
包 server 提供后台 HTTP 服务器的生命周期管理，CLI 用它在对话期间
暴露 Prometheus /metrics 端点。

# 核心类型

  - Manager：非阻塞启动、优雅关闭、异步错误通道
  - Config：监听地址与超时配置

Start 在调用线程中完成监听，端口冲突等错误同步返回；
Addr 在启动后返回实际监听地址（支持 ":0" 随机端口）。
*/
package server
