package responses

import "github.com/BaSui01/omnirelay/openai"

// dispatch 按 type 判别字符串把一条供应商事件路由到对应的处理器族，
// 返回零到多条归一化事件。分派器自身无状态；所有累积都在 sc 里。
//
// 枚举必须穷尽：每个已知 type 显式列出，未知 type 落到结构族的
// unknown 路径——协议演进出新事件时客户端仍能观察到，绝不静默丢弃。
func dispatch(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	sc.lastSeq = ev.SequenceNumber

	switch ev.Type {
	// 生命周期
	case openai.EventResponseCreated,
		openai.EventResponseQueued,
		openai.EventResponseInProgress,
		openai.EventResponseCompleted,
		openai.EventResponseFailed,
		openai.EventResponseIncomplete:
		return handleLifecycle(sc, ev)
	case openai.EventError:
		// 流中错误事件：这里产出唯一的一条 error 归一化事件，
		// 终态记录与错误再抛由编排器完成
		return handleErrorEvent(sc, ev)

	// 文本
	case openai.EventOutputTextDelta:
		return handleTextDelta(sc, ev)
	case openai.EventOutputTextDone:
		return handleTextDone(sc, ev)
	case openai.EventOutputTextAnnotationAdded:
		return handleAnnotation(sc, ev)

	// 推理
	case openai.EventReasoningTextDelta:
		return handleReasoningDelta(sc, ev)
	case openai.EventReasoningTextDone:
		return handleReasoningDone(sc, ev)
	case openai.EventReasoningSummaryPartAdded,
		openai.EventReasoningSummaryPartDone:
		// added 与 done 共用摘要块处理器：每个摘要块恰好两次调用
		return handleReasoningSummaryPart(sc, ev)
	case openai.EventReasoningSummaryTextDelta:
		return handleReasoningSummaryDelta(sc, ev)
	case openai.EventReasoningSummaryTextDone:
		return handleReasoningSummaryDone(sc, ev)

	// 函数/自定义工具调用
	case openai.EventFunctionCallArgumentsDelta:
		return handleToolArgsDelta(sc, ev)
	case openai.EventFunctionCallArgumentsDone:
		return handleToolArgsDone(sc, ev)
	case openai.EventCustomToolCallInputDelta:
		return handleCustomToolDelta(sc, ev)
	case openai.EventCustomToolCallInputDone:
		return handleCustomToolDone(sc, ev)

	// 代码解释器：in_progress 与 interpreting 是两个供应商阶段，
	// 客户端语义上都是「进行中」，共用进度处理器（各触发一次）
	case openai.EventCodeInterpreterInProgress,
		openai.EventCodeInterpreterInterpreting:
		return handleCodeProgress(sc, ev)
	case openai.EventCodeInterpreterCodeDelta:
		return handleCodeDelta(sc, ev)
	case openai.EventCodeInterpreterCodeDone:
		return handleCodeDone(sc, ev)
	case openai.EventCodeInterpreterCompleted:
		return handleCodeCompleted(sc, ev)

	// 文件检索
	case openai.EventFileSearchInProgress,
		openai.EventFileSearchSearching:
		return handleFileSearchProgress(sc, ev)
	case openai.EventFileSearchCompleted:
		return handleFileSearchDone(sc, ev)

	// 网络检索
	case openai.EventWebSearchInProgress,
		openai.EventWebSearchSearching:
		return handleWebSearchProgress(sc, ev)
	case openai.EventWebSearchCompleted:
		return handleWebSearchDone(sc, ev)

	// 图像生成：in_progress 与 generating 等价，共用进度处理器；
	// partial_image 逐帧直转不缓冲
	case openai.EventImageGenInProgress,
		openai.EventImageGenGenerating:
		return handleImageProgress(sc, ev)
	case openai.EventImageGenPartialImage:
		return handleImagePartial(sc, ev)
	case openai.EventImageGenCompleted:
		return handleImageCompleted(sc, ev)

	// 音频
	case openai.EventAudioDelta:
		return handleAudioDelta(sc, ev)
	case openai.EventAudioDone:
		return handleAudioDone(sc, ev)
	case openai.EventAudioTranscriptDelta:
		return handleTranscriptDelta(sc, ev)
	case openai.EventAudioTranscriptDone:
		return handleTranscriptDone(sc, ev)

	// MCP
	case openai.EventMCPCallInProgress:
		return handleMCPCallProgress(sc, ev)
	case openai.EventMCPCallArgumentsDelta:
		return handleMCPArgsDelta(sc, ev)
	case openai.EventMCPCallArgumentsDone:
		return handleMCPArgsDone(sc, ev)
	case openai.EventMCPCallCompleted, openai.EventMCPCallFailed:
		return handleMCPCallEnd(sc, ev)
	case openai.EventMCPListToolsInProgress,
		openai.EventMCPListToolsCompleted,
		openai.EventMCPListToolsFailed:
		// 一次 list_tools 往返共三次调用，按载荷内部区分阶段
		return handleMCPListTools(sc, ev)

	// 拒绝
	case openai.EventRefusalDelta:
		return handleRefusalDelta(sc, ev)
	case openai.EventRefusalDone:
		return handleRefusalDone(sc, ev)

	// 结构
	case openai.EventOutputItemAdded:
		return handleItemAdded(sc, ev)
	case openai.EventOutputItemDone:
		return handleItemDone(sc, ev)
	case openai.EventContentPartAdded, openai.EventContentPartDone:
		return handleContentPart(sc, ev)

	// computer-use
	case openai.EventComputerCallInProgress:
		return handleComputerProgress(sc, ev)
	case openai.EventComputerCallCompleted:
		return handleComputerDone(sc, ev)

	default:
		return handleUnknown(sc, ev)
	}
}
