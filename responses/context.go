package responses

import (
	"strings"

	"github.com/BaSui01/omnirelay/openai"
)

// streamContext 是单次流式调用的累积状态。
// 流开始时新建、流结束（成功、失败或取消）即弃，从不跨流复用，
// 也不做并发保护——单条流内事件严格顺序处理。
type streamContext struct {
	responseID string
	model      string

	// 最近一条供应商事件的 sequence_number，用于给合成的
	// 流级 error 事件一个不回退的序号
	lastSeq int64

	// 工具调用参数缓冲，按 call id 独立累积；
	// 并发进行的多个调用互不干扰
	toolArgs  map[string]*strings.Builder
	toolNames map[string]string

	// 图像分帧计数，按 call id
	partialImages map[string]int

	// 正文累积
	text strings.Builder

	// 终态用量快照（来自 completed/incomplete 事件内嵌的响应对象）
	usage *openai.Usage
}

func newStreamContext(model string) *streamContext {
	return &streamContext{
		model:         model,
		toolArgs:      make(map[string]*strings.Builder),
		toolNames:     make(map[string]string),
		partialImages: make(map[string]int),
	}
}

// appendToolArgs 向指定调用的参数缓冲追加一个片段。
func (sc *streamContext) appendToolArgs(callID, name, fragment string) {
	buf, ok := sc.toolArgs[callID]
	if !ok {
		buf = &strings.Builder{}
		sc.toolArgs[callID] = buf
	}
	if name != "" {
		sc.toolNames[callID] = name
	}
	buf.WriteString(fragment)
}

// takeToolArgs 取出并清除指定调用的完整参数。
// 没有缓冲过片段时返回空串，由调用方决定兜底值。
func (sc *streamContext) takeToolArgs(callID string) (args, name string) {
	if buf, ok := sc.toolArgs[callID]; ok {
		args = buf.String()
		delete(sc.toolArgs, callID)
	}
	name = sc.toolNames[callID]
	delete(sc.toolNames, callID)
	return args, name
}

// countPartialImage 递增并返回指定调用已收到的分帧数。
func (sc *streamContext) countPartialImage(callID string) int {
	sc.partialImages[callID]++
	return sc.partialImages[callID]
}
