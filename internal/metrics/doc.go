// 版权所有 2025 omnirelay Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，从交互记录管道
里派生上游请求、流式事件、token 用量与成本指标。

# 概述

Collector 实现 interaction.Sink，与日志接收器通过 interaction.Tee
并联：每条交互记录写日志的同时按 api/phase 维度计数。使用
promauto 自动注册机制，所有指标按 namespace 隔离。

# 核心类型

  - Collector：指标收集器兼记录接收器。

# 主要能力

  - 上游请求总数、耗时与错误计数，按 api/endpoint 分组。
  - 流式调用与归一化事件计数，按 phase/event 分组。
  - Token 用量（input/output）与累计成本，按 api 分组。
*/
package metrics
