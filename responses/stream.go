package responses

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/observability"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/pricing"
)

// Stream 是一次流式调用的归一化事件序列。
//
// 事件通过 Events 按供应商到达顺序投递；通道关闭后调用 Err 区分
// 正常结束与失败。失败时错误走双通道：通道上已投递过一条 error
// 归一化事件，Err 仍返回原始错误——两边都必须能观察到失败。
// 放弃消费时必须调用 Close，否则底层连接泄漏。
type Stream struct {
	events chan OutputEvent
	cancel context.CancelFunc
	done   chan struct{}
	err    error // 仅 consume 协程写，close(done) 之前
}

// Events 返回归一化事件通道。通道在流结束后关闭。
func (s *Stream) Events() <-chan OutputEvent {
	return s.events
}

// Err 返回终止流的错误。在 Events 通道关闭前调用结果未定义。
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close 提前终止流并释放底层连接。可多次调用。
func (s *Stream) Close() error {
	s.cancel()
	return nil
}

// consume 是每条流独占的消费协程：单线程迭代供应商事件，
// 逐条分派、逐条同步记日志、逐条转发，绝不并发处理同一条流
// 的两个事件。累积状态 sc 随本次调用生灭，不跨流共享。
func (s *Stream) consume(
	ctx context.Context,
	es *openai.EventStream,
	sc *streamContext,
	rec recorder,
) {
	defer close(s.done)
	defer close(s.events)
	defer es.Close()

	for es.Next() {
		ev := es.Current()
		outs := dispatch(sc, ev)

		for _, out := range outs {
			rec.logEvent(ctx, out, ev.Type)
			select {
			case s.events <- out:
			case <-ctx.Done():
				s.err = ctx.Err()
				rec.logError(ctx, s.err, sc)
				return
			}
		}

		if ev.Type == openai.EventError {
			// 供应商流中错误：error 归一化事件已由分派器投递，
			// 这里补终态错误记录并把错误抛给调用方
			s.err = &openai.Error{
				Message: ev.Message,
				Code:    ev.Code,
				Param:   ev.Param,
			}
			rec.logError(ctx, s.err, sc)
			return
		}
		if ev.IsTerminal() {
			if ev.Type == openai.EventResponseFailed {
				s.err = failureError(ev.Response)
				rec.logError(ctx, s.err, sc)
				return
			}
			rec.logDone(ctx, sc)
			return
		}
	}

	if err := es.Err(); err != nil {
		if ctx.Err() != nil {
			// 调用方提前退出触发的读取失败，不算传输故障
			s.err = ctx.Err()
			rec.logError(ctx, s.err, sc)
			return
		}
		// 传输层失败：恰好补发一条 error 归一化事件再关闭，
		// 序列号沿用最后一条供应商事件的
		s.err = err
		out := OutputEvent{
			Event:    KindError,
			Data:     marshalData(map[string]any{"message": err.Error()}),
			Sequence: sc.lastSeq,
		}
		rec.logEvent(ctx, out, "transport_error")
		select {
		case s.events <- out:
		case <-ctx.Done():
		}
		rec.logError(ctx, s.err, sc)
		return
	}

	// 流自然耗尽而没有终态事件：按成功收尾
	rec.logDone(ctx, sc)
}

// failureError 把 response.failed 快照转成调用方可见的错误。
func failureError(resp *openai.Response) error {
	if resp != nil && resp.Error != nil {
		return &openai.Error{
			Message: resp.Error.Message,
			Code:    resp.Error.Code,
			Type:    "response_failed",
		}
	}
	return &openai.Error{Message: "response failed", Type: "response_failed"}
}

// recorder 把一次流式调用产生的交互记录写入 Sink。
// 记录纪律：一条 stream_start（或 stream_resume）+ 每条归一化事件
// 一条 + 恰好一条终态记录。
type recorder struct {
	sink     interaction.Sink
	logger   *zap.Logger
	metrics  *observability.Metrics
	api      string
	endpoint string
	streamID string
}

func (r recorder) logStart(ctx context.Context, tag string, request any) {
	r.metrics.StreamStarted(ctx)
	rec := interaction.NewRecord(r.api, r.endpoint).
		WithMeta("phase", tag).
		WithMeta("stream_id", r.streamID)
	rec.Request = request
	r.sink.Log(ctx, rec)
}

func (r recorder) logEvent(ctx context.Context, out OutputEvent, vendorType openai.EventType) {
	r.metrics.RecordStreamEvent(ctx, string(out.Event))
	rec := interaction.NewRecord(r.api, r.endpoint).
		WithMeta("phase", "event").
		WithMeta("stream_id", r.streamID).
		WithMeta("event", string(out.Event)).
		WithMeta("sequence", out.Sequence).
		WithMeta("vendor_type", string(vendorType))
	rec.Response = out.Data
	r.sink.Log(ctx, rec)
}

func (r recorder) logDone(ctx context.Context, sc *streamContext) {
	r.metrics.StreamEnded(ctx)
	rec := interaction.NewRecord(r.api, r.endpoint).
		WithMeta("phase", "stream_done").
		WithMeta("stream_id", r.streamID).
		WithMeta("response_id", sc.responseID)

	usage := pricing.ExtractUsage(sc.usage)
	attachUsageMeta(rec, usage)
	r.metrics.RecordTokens(ctx, sc.model, usage)
	if cost := pricing.EstimateTextCost(sc.model, usage); cost != nil {
		rec.WithMeta("cost_usd", cost.CostUSD)
		r.metrics.RecordCost(ctx, r.api, sc.model, cost.CostUSD)
	}
	r.sink.Log(ctx, rec)
	r.logger.Info("stream completed",
		zap.String("stream_id", r.streamID),
		zap.String("response_id", sc.responseID))
}

func (r recorder) logError(ctx context.Context, err error, sc *streamContext) {
	r.metrics.StreamEnded(ctx)
	rec := interaction.NewRecord(r.api, r.endpoint).
		WithMeta("phase", "stream_error").
		WithMeta("stream_id", r.streamID).
		WithMeta("response_id", sc.responseID)
	rec.Error = interaction.DetailFromError(err)
	r.sink.Log(ctx, rec)
	r.logger.Warn("stream failed",
		zap.String("stream_id", r.streamID),
		zap.Error(err))
}

// attachUsageMeta 把用量写进元数据。缺失的计数渲染为 nil 而不是 0，
// 读日志的人必须能区分「没报」和「真是零」。
func attachUsageMeta(rec *interaction.Record, usage pricing.UsageRecord) {
	rec.WithMeta("input_tokens", derefTokens(usage.InputTokens))
	rec.WithMeta("output_tokens", derefTokens(usage.OutputTokens))
	rec.WithMeta("total_tokens", derefTokens(usage.TotalTokens))
	if usage.CachedTokens != nil {
		rec.WithMeta("cached_tokens", *usage.CachedTokens)
	}
	if usage.ReasoningTokens != nil {
		rec.WithMeta("reasoning_tokens", *usage.ReasoningTokens)
	}
}

func derefTokens(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

