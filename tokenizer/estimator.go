package tokenizer

import (
	"github.com/BaSui01/omnirelay/pricing"
)

// EstimateInputCost 在发送请求前预估输入文本的成本。输出 token
// 未知按零计，结果只含输入侧费用；模型没有价目时返回 nil。
func EstimateInputCost(model, text string) (*pricing.CostEstimate, error) {
	count, err := NewCounter(model).Count(text)
	if err != nil {
		return nil, err
	}

	in := int64(count)
	var out int64
	usage := pricing.UsageRecord{
		InputTokens:  &in,
		OutputTokens: &out,
	}
	return pricing.EstimateTextCost(model, usage), nil
}

// FitsContext 报告文本是否在模型的上下文窗口内。
func FitsContext(model, text string) (bool, error) {
	c := NewCounter(model)
	count, err := c.Count(text)
	if err != nil {
		return false, err
	}
	return count <= c.MaxTokens(), nil
}
