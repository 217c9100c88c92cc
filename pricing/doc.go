// Copyright (c) OmniRelay Authors.
// Licensed under the MIT License.

/*
Package pricing 提供用量归一化与成本估算。

# 概述

ExtractUsage 把供应商响应里的 usage 对象无损映射为 UsageRecord；
Estimate* 系列函数按模型费率表把用量换算为美元成本。两类函数均为
纯函数，不持有隐藏状态，可重复调用且结果一致。

# 核心类型

  - UsageRecord  — 归一化 token 计数；「未上报」与「0」通过指针区分
  - CostEstimate — 一次请求的成本估算（模型、档位、数量、单位、金额）

# 费率口径

  - 文本：每百万 token 的输入/输出费率对
  - 语音合成：每千字符
  - 转录：每分钟（缺 duration 时按一分钟兜底估算）
  - 图像：按模型/尺寸/质量的单张定价
  - 视频：每秒（标准档与 pro 档）

部分模型（按 token 计费的转录、部分图像档位）的费率是占位近似值，
等待供应商公布正式定价后更新；为保持结果可复现，这些常量不要凭
公开资料「修正」。
*/
package pricing
