package pricing

import "github.com/BaSui01/omnirelay/openai"

// UsageRecord 是归一化后的 token 用量。
// 全部字段为指针：usage 对象整体缺失时记录为全 nil，
// 嵌套明细缺失时对应子计数为 nil。nil 与 0 在日志里必须可区分。
type UsageRecord struct {
	InputTokens     *int64 `json:"input_tokens,omitempty"`
	OutputTokens    *int64 `json:"output_tokens,omitempty"`
	TotalTokens     *int64 `json:"total_tokens,omitempty"`
	CachedTokens    *int64 `json:"cached_tokens,omitempty"`
	ReasoningTokens *int64 `json:"reasoning_tokens,omitempty"`
}

// ExtractUsage 把供应商 usage 对象映射为 UsageRecord。纯函数。
// u 为 nil 时返回全 nil 记录（不是零值记录）。
func ExtractUsage(u *openai.Usage) UsageRecord {
	if u == nil {
		return UsageRecord{}
	}

	rec := UsageRecord{
		InputTokens:  ptr(u.InputTokens),
		OutputTokens: ptr(u.OutputTokens),
		TotalTokens:  ptr(u.TotalTokens),
	}
	if d := u.InputTokensDetails; d != nil && d.CachedTokens != nil {
		rec.CachedTokens = ptr(*d.CachedTokens)
	}
	if d := u.OutputTokensDetails; d != nil && d.ReasoningTokens != nil {
		rec.ReasoningTokens = ptr(*d.ReasoningTokens)
	}
	return rec
}

// ExtractResponseUsage 从完整响应对象提取用量。响应无 usage 时
// 返回全 nil 记录。
func ExtractResponseUsage(resp *openai.Response) UsageRecord {
	if resp == nil {
		return UsageRecord{}
	}
	return ExtractUsage(resp.Usage)
}

func ptr(v int64) *int64 { return &v }

// TokensOrNil 便于日志输出：nil 指针渲染为 nil（而非 0）。
func TokensOrNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
