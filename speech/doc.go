// Copyright (c) 2025 omnirelay Authors.
// Licensed under the MIT License.

// Package speech 封装语音合成、转录与翻译三个音频端点。
//
// # 概述
//
// 合成走 /v1/audio/speech 返回二进制音频流；转录与翻译走
// multipart 表单上传。每次调用记一条交互日志并估算成本：
// 合成按字符计费，转录按时长计费，响应缺 duration 时退化为
// 一分钟等价估算。
//
// # 核心类型
//
//   - Service：音频服务
//   - SynthesizeRequest / SynthesizeResult
//   - TranscribeRequest / TranscribeResult
//
// # 主要能力
//
//   - 文本转语音，支持落盘与列出可用音色
//   - 音频转录（逐段/逐词时间戳）与翻译
package speech
