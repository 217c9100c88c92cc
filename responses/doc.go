// Copyright (c) OmniRelay Authors.
// Licensed under the MIT License.

/*
Package responses 实现流式响应事件路由——本仓库的核心。

# 概述

供应商的 /v1/responses 流是一串松散类型的事件记录，按 type 字符串
判别、按 sequence_number 排序。本包消费该流，把每条事件分派到十个
处理器族（生命周期、文本、推理、工具调用、图像、音频、MCP、拒绝、
结构、computer-use）之一，维护流内累积状态（工具参数缓冲、图像
分帧计数、用量），并重发稳定形状的归一化事件 OutputEvent。

# 核心类型

  - Service       — 服务入口：Stream / Resume / Create / Retrieve / Delete / Cancel
  - Request       — 已验证的入参对象，由 buildParams 组装出站载荷
  - OutputEvent   — 归一化事件 {event, data, sequence}
  - Stream        — 惰性事件序列：Events() 通道 + Err() 终态错误
  - streamContext — 每次流式调用独占的累积状态，调用结束即弃

# 关键不变式

  - 每条供应商事件同步产生零到多条归一化事件，读下一条之前全部转发
  - Sequence 原样取自供应商 sequence_number，从不另造
  - 未知 type 走结构族的 unknown 路径，必产出一条可记录事件，从不 panic
  - 流级失败：恰好一条终态错误记录 + 恰好一条 error 归一化事件 +
    Err() 返回原始错误——双通道信号，调用方两者都能观察到
*/
package responses
