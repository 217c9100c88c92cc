// Copyright (c) 2025 omnirelay Authors.
// Licensed under the MIT License.

// Package image 封装图像生成、编辑与变体三个端点。
//
// 流式的逐帧图像生成走 responses 包的 image_generation 工具；
// 本包是 /v1/images/* 的非流式直达路径，按 model/size/quality
// 维度查价并记交互日志。
package image
