package pricing

import (
	"math"
	"strings"
)

// PricingURL 是费率表的出处，随估算结果一起记录。
const PricingURL = "https://platform.openai.com/docs/pricing"

// lastVerified 是费率表最近一次人工核对的日期。
const lastVerified = "2026-08-15"

// CostEstimate 是一次请求的成本估算。每次请求新建，不持久化。
type CostEstimate struct {
	Model        string  `json:"model"`
	PricingTier  string  `json:"pricing_tier"`
	Quantity     float64 `json:"quantity"`
	UnitType     string  `json:"unit_type"`
	CostUSD      float64 `json:"cost_usd"`
	PricingURL   string  `json:"pricing_url"`
	LastVerified string  `json:"last_verified"`
}

// roundCost 规整成本金额：1 美元以上保留 6 位小数，以下保留 6 位
// 有效数字。微额成本（如每次几十微美元的文本调用）直接按小数位
// 四舍五入会被抹平，所以小额走有效数字。
func roundCost(v float64) float64 {
	if v == 0 {
		return 0
	}
	if math.Abs(v) >= 1 {
		return math.Round(v*1e6) / 1e6
	}
	exp := math.Floor(math.Log10(math.Abs(v)))
	scale := math.Pow(10, 5-exp)
	return math.Round(v*scale) / scale
}

// EstimateTextCost 估算文本/responses 调用成本。
// 费率为每百万 token 的 (输入, 输出) 费率对。
// 用量未上报（nil）时返回 nil：没有计数就没有估算，不猜。
func EstimateTextCost(model string, usage UsageRecord) *CostEstimate {
	if usage.InputTokens == nil && usage.OutputTokens == nil {
		return nil
	}

	rates, tier := textRates(model)
	var in, out int64
	if usage.InputTokens != nil {
		in = *usage.InputTokens
	}
	if usage.OutputTokens != nil {
		out = *usage.OutputTokens
	}

	cost := (float64(in)*rates.Input + float64(out)*rates.Output) / 1_000_000

	return &CostEstimate{
		Model:        model,
		PricingTier:  tier,
		Quantity:     float64(in + out),
		UnitType:     "tokens",
		CostUSD:      roundCost(cost),
		PricingURL:   PricingURL,
		LastVerified: lastVerified,
	}
}

// EstimateSpeechCost 估算语音合成成本，按输入字符数计费。
func EstimateSpeechCost(model string, characters int) *CostEstimate {
	rate, ok := speechRatesPer1kChars[model]
	if !ok {
		rate = speechRatesPer1kChars["tts-1"]
	}

	cost := float64(characters) / 1000 * rate

	return &CostEstimate{
		Model:        model,
		PricingTier:  "per_1k_characters",
		Quantity:     float64(characters),
		UnitType:     "characters",
		CostUSD:      roundCost(cost),
		PricingURL:   PricingURL,
		LastVerified: lastVerified,
	}
}

// EstimateTranscriptionCost 估算转录/翻译成本。
// durationSeconds 为 nil 且模型按时长计费时，按一分钟兜底估算——
// 这是已知的近似口径，保持原样。token 计费的转录模型使用占位费率。
func EstimateTranscriptionCost(model string, durationSeconds *float64, usage UsageRecord) *CostEstimate {
	if isTokenPricedTranscription(model) {
		var in, out int64
		if usage.InputTokens != nil {
			in = *usage.InputTokens
		}
		if usage.OutputTokens != nil {
			out = *usage.OutputTokens
		}
		// 占位费率：$2.50/$10.00 每百万 token，待供应商正式定价
		cost := (float64(in)*2.50 + float64(out)*10.00) / 1_000_000
		return &CostEstimate{
			Model:        model,
			PricingTier:  "per_token_placeholder",
			Quantity:     float64(in + out),
			UnitType:     "tokens",
			CostUSD:      roundCost(cost),
			PricingURL:   PricingURL,
			LastVerified: lastVerified,
		}
	}

	minutes := 1.0 // duration 缺失时的一分钟兜底
	if durationSeconds != nil {
		minutes = *durationSeconds / 60
	}

	cost := minutes * transcriptionRatePerMinute

	return &CostEstimate{
		Model:        model,
		PricingTier:  "per_minute",
		Quantity:     minutes,
		UnitType:     "minutes",
		CostUSD:      roundCost(cost),
		PricingURL:   PricingURL,
		LastVerified: lastVerified,
	}
}

// EstimateImageCost 估算图像生成成本，按模型/尺寸/质量的单张定价。
func EstimateImageCost(model, size, quality string, count int) *CostEstimate {
	if count <= 0 {
		count = 1
	}
	rate := imageRate(model, size, quality)

	return &CostEstimate{
		Model:        model,
		PricingTier:  imageTier(size, quality),
		Quantity:     float64(count),
		UnitType:     "images",
		CostUSD:      roundCost(rate * float64(count)),
		PricingURL:   PricingURL,
		LastVerified: lastVerified,
	}
}

// EstimateVideoCost 估算视频生成成本，按秒计费。
func EstimateVideoCost(model string, seconds float64) *CostEstimate {
	rate := videoRatePerSecondStandard
	tier := "per_second_standard"
	if strings.Contains(model, "pro") {
		rate = videoRatePerSecondPro
		tier = "per_second_pro"
	}

	return &CostEstimate{
		Model:        model,
		PricingTier:  tier,
		Quantity:     seconds,
		UnitType:     "seconds",
		CostUSD:      roundCost(rate * seconds),
		PricingURL:   PricingURL,
		LastVerified: lastVerified,
	}
}
