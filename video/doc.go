// Copyright (c) 2025 omnirelay Authors.
// Licensed under the MIT License.

// Package video 封装 /v1/videos 的异步视频生成任务。
//
// # 概述
//
// 视频生成是任务式的：创建后轮询状态直到完成再下载。轮询用固定
// 递增退避（首次 5 秒，每次 +5 秒，封顶 20 秒），整体期限默认
// 10 分钟；超期返回 ErrDeadlineExceeded，与供应商报告的 failed
// 状态是两种不同的失败。
//
// # 核心类型
//
//   - Service：视频服务
//   - Job：任务快照
//
// # 主要能力
//
//   - 创建 / 查询 / 轮询 / 取消删除视频任务
//   - 下载成片与批量并发下载
//   - 基于既有视频的 remix
package video
