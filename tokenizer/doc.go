// Copyright (c) 2025 omnirelay Authors.
// Licensed under the MIT License.

// Package tokenizer 提供发送请求前的 token 计数与成本预估。
//
// 计数基于 tiktoken，按模型名前缀选择编码；未知模型退化为
// cl100k_base。编码表惰性初始化，Counter 可并发使用。
package tokenizer
