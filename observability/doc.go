// Copyright (c) 2025 omnirelay Authors.
// Licensed under the MIT License.

// Package observability 提供基于 OpenTelemetry 的指标与追踪收集。
//
// # 概述
//
// 所有服务共享一个 Metrics 实例，按 api/model 维度上报请求量、
// 延迟、token 用量、成本与流式事件计数。Metrics 指针允许为 nil，
// 此时所有上报方法都是空操作，调用方不需要判空。
//
// # 核心类型
//
//   - Metrics：指标收集器
//
// # 主要能力
//
//   - 请求计数与延迟直方图
//   - token 用量与单次请求成本分布
//   - 归一化流式事件计数
//   - 请求级 trace span
package observability
