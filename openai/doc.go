// Copyright (c) OmniRelay Authors.
// Licensed under the MIT License.

/*
Package openai 封装对上游生成式 AI 供应商 HTTP API 的访问。

# 概述

本包是 OmniRelay 与供应商之间的唯一传输层：统一的认证、TLS 加固、
速率限制、错误映射与 SSE 事件流读取。上层服务包（responses、speech、
image、video）只依赖本包暴露的 Client 与 StreamEvent，不直接接触
net/http。

# 核心类型

  - Client       — 带限流与 TLS 加固的 HTTP 客户端
  - Error        — 统一的供应商错误（status/type/code/param）
  - StreamEvent  — Responses 流式事件记录（type 判别 + sequence_number）
  - EventStream  — SSE 读取器，逐事件拉取，Close 释放底层连接

# 主要能力

  - JSON 请求/响应（PostJSON、GetJSON、DeleteJSON）
  - 二进制响应（音频合成、视频下载）
  - multipart 表单上传（转录、翻译）
  - SSE 流（NewStream），支持 GET 重连（流恢复）
  - 供应商错误体解析：message/type/code/param 全部保留
*/
package openai
