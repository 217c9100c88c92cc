package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter 是某个模型的 token 计数器。编码惰性初始化，可并发使用。
type Counter struct {
	model     string
	encoding  string
	maxTokens int
	enc       *tiktoken.Tiktoken
	once      sync.Once
	initErr   error
}

// modelEncodings 把模型名映射到 tiktoken 编码与上下文窗口。
var modelEncodings = map[string]struct {
	encoding  string
	maxTokens int
}{
	"gpt-5":         {encoding: "o200k_base", maxTokens: 400000},
	"gpt-4.1":       {encoding: "o200k_base", maxTokens: 1047576},
	"gpt-4o":        {encoding: "o200k_base", maxTokens: 128000},
	"gpt-4o-mini":   {encoding: "o200k_base", maxTokens: 128000},
	"o3":            {encoding: "o200k_base", maxTokens: 200000},
	"o4-mini":       {encoding: "o200k_base", maxTokens: 200000},
	"gpt-4-turbo":   {encoding: "cl100k_base", maxTokens: 128000},
	"gpt-4":         {encoding: "cl100k_base", maxTokens: 8192},
	"gpt-3.5-turbo": {encoding: "cl100k_base", maxTokens: 16385},
}

// NewCounter 为给定模型创建计数器。未知模型退化为 cl100k_base。
func NewCounter(model string) *Counter {
	info, ok := modelEncodings[model]
	if !ok {
		// 前缀匹配，取最长命中
		best := ""
		for prefix, i := range modelEncodings {
			if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
				info = i
				best = prefix
				ok = true
			}
		}
	}
	if !ok {
		info = struct {
			encoding  string
			maxTokens int
		}{encoding: "cl100k_base", maxTokens: 8192}
	}

	return &Counter{
		model:     model,
		encoding:  info.encoding,
		maxTokens: info.maxTokens,
	}
}

// init 惰性初始化编码表（首次使用可能触发下载）。
func (c *Counter) init() error {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			c.initErr = fmt.Errorf("init tiktoken encoding %s: %w", c.encoding, err)
			return
		}
		c.enc = enc
	})
	return c.initErr
}

// Count 返回文本的 token 数。
func (c *Counter) Count(text string) (int, error) {
	if err := c.init(); err != nil {
		return 0, err
	}
	return len(c.enc.Encode(text, nil, nil)), nil
}

// Encode 把文本编码为 token 序列。
func (c *Counter) Encode(text string) ([]int, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return c.enc.Encode(text, nil, nil), nil
}

// Decode 把 token 序列还原为文本。
func (c *Counter) Decode(tokens []int) (string, error) {
	if err := c.init(); err != nil {
		return "", err
	}
	return c.enc.Decode(tokens), nil
}

// MaxTokens 返回模型的上下文窗口大小。
func (c *Counter) MaxTokens() int {
	return c.maxTokens
}

// Name 返回计数器标识。
func (c *Counter) Name() string {
	return fmt.Sprintf("tiktoken[%s]", c.encoding)
}
