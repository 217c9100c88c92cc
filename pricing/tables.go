package pricing

import "strings"

// TokenRates 是每百万 token 的输入/输出费率对（USD）。
type TokenRates struct {
	Input  float64
	Output float64
}

// textTokenRates 按模型列出文本费率。前缀匹配，找不到时走保守默认。
var textTokenRates = map[string]TokenRates{
	"gpt-4o":       {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":  {Input: 0.15, Output: 0.60},
	"gpt-4.1":      {Input: 2.00, Output: 8.00},
	"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
	"gpt-4.1-nano": {Input: 0.10, Output: 0.40},
	"gpt-5":        {Input: 1.25, Output: 10.00},
	"gpt-5-mini":   {Input: 0.25, Output: 2.00},
	"gpt-5-nano":   {Input: 0.05, Output: 0.40},
	"o3":           {Input: 2.00, Output: 8.00},
	"o4-mini":      {Input: 1.10, Output: 4.40},
}

// defaultTextRates 是未知模型的保守默认费率。
var defaultTextRates = TokenRates{Input: 2.50, Output: 10.00}

func textRates(model string) (TokenRates, string) {
	if r, ok := textTokenRates[model]; ok {
		return r, "per_million_tokens"
	}
	// 前缀匹配：gpt-4o-2024-08-06 之类的带日期后缀变体
	best := ""
	for prefix := range textTokenRates {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return textTokenRates[best], "per_million_tokens"
	}
	return defaultTextRates, "per_million_tokens_default"
}

// speechRatesPer1kChars 是语音合成每千字符费率。
var speechRatesPer1kChars = map[string]float64{
	"tts-1":                0.015,
	"tts-1-hd":             0.030,
	"gpt-4o-mini-tts":      0.015, // 占位：与 tts-1 对齐，待正式定价
	"gpt-4o-audio-preview": 0.030,
}

// transcriptionRatePerMinute 是 whisper 系按时长计费的费率。
const transcriptionRatePerMinute = 0.006

// isTokenPricedTranscription 判断模型是否按 token 计费转录。
func isTokenPricedTranscription(model string) bool {
	return strings.HasPrefix(model, "gpt-4o-transcribe") ||
		strings.HasPrefix(model, "gpt-4o-mini-transcribe")
}

// 视频费率（每秒）。
const (
	videoRatePerSecondStandard = 0.125
	videoRatePerSecondPro      = 0.40
)

// imageRates 按 模型/尺寸/质量 列出单张图像价格。
// gpt-image-1 的部分档位为供应商未最终确认的近似值。
var imageRates = map[string]float64{
	"gpt-image-1/1024x1024/low":    0.011,
	"gpt-image-1/1024x1024/medium": 0.042,
	"gpt-image-1/1024x1024/high":   0.167,
	"gpt-image-1/1024x1536/low":    0.016,
	"gpt-image-1/1024x1536/medium": 0.063,
	"gpt-image-1/1024x1536/high":   0.25,
	"gpt-image-1/1536x1024/low":    0.016,
	"gpt-image-1/1536x1024/medium": 0.063,
	"gpt-image-1/1536x1024/high":   0.25,
	"dall-e-3/1024x1024/standard":  0.04,
	"dall-e-3/1024x1024/hd":        0.08,
	"dall-e-3/1024x1792/standard":  0.08,
	"dall-e-3/1024x1792/hd":        0.12,
	"dall-e-3/1792x1024/standard":  0.08,
	"dall-e-3/1792x1024/hd":        0.12,
	"dall-e-2/1024x1024/standard":  0.02,
	"dall-e-2/512x512/standard":    0.018,
	"dall-e-2/256x256/standard":    0.016,
}

// defaultImageRate 是查不到档位时的默认单张价格。
const defaultImageRate = 0.04

func imageRate(model, size, quality string) float64 {
	if size == "" || size == "auto" {
		size = "1024x1024"
	}
	if quality == "" || quality == "auto" {
		if strings.HasPrefix(model, "dall-e") {
			quality = "standard"
		} else {
			quality = "medium"
		}
	}
	if r, ok := imageRates[model+"/"+size+"/"+quality]; ok {
		return r
	}
	return defaultImageRate
}

func imageTier(size, quality string) string {
	if size == "" {
		size = "1024x1024"
	}
	if quality == "" {
		quality = "auto"
	}
	return "per_image_" + size + "_" + quality
}
