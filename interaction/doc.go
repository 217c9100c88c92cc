// Copyright (c) OmniRelay Authors.
// Licensed under the MIT License.

/*
Package interaction 定义交互日志记录及其下游接收器。

# 概述

核心服务对每次顶层操作产生一条 Record（非流式一条；流式为
stream_start + 每条归一化事件 + 一条终态记录），只写不读。
Sink 是唯一的下游契约：实现方决定落地方式。

# 核心类型

  - Record  — 交互日志记录（timestamp/api/endpoint/request/response|error/metadata）
  - Sink    — 接收器接口，单方法 Log
  - ZapSink — 默认实现，结构化写入 zap
  - RedisSink — 可选实现，XADD 写入 Redis Stream

# 约束

Sink 实现不得阻塞流式转发路径过久；核心不读回任何记录。
*/
package interaction
