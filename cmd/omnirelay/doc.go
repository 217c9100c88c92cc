// =============================================================================
// omnirelay 命令行入口
// =============================================================================
// 提供面向四类能力的子命令：文本响应（流式/非流式）、语音、
// 图像与视频，外加流恢复与版本信息。
// =============================================================================
package main
