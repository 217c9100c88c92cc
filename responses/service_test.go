package responses

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/openai"
)

// captureSink 收集交互记录供断言。consume 协程并发写，需要加锁。
type captureSink struct {
	mu      sync.Mutex
	records []*interaction.Record
}

func (c *captureSink) Log(_ context.Context, rec *interaction.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

func (c *captureSink) phases() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.records))
	for _, rec := range c.records {
		phase, _ := rec.Metadata["phase"].(string)
		out = append(out, phase)
	}
	return out
}

func (c *captureSink) byPhase(phase string) []*interaction.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*interaction.Record
	for _, rec := range c.records {
		if rec.Metadata["phase"] == phase {
			out = append(out, rec)
		}
	}
	return out
}

func newTestService(t *testing.T, handler http.Handler) (*Service, *captureSink, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := openai.NewClient(openai.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))

	sink := &captureSink{}
	svc := NewService(client, DefaultConfig(), zaptest.NewLogger(t), sink, nil)
	return svc, sink, srv
}

// sseWriter 按 SSE 帧格式写事件。
func sseEvent(w http.ResponseWriter, typ string, fields map[string]any) {
	payload := map[string]any{"type": typ}
	for k, v := range fields {
		payload[k] = v
	}
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", typ, data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func collectEvents(t *testing.T, st *Stream) []OutputEvent {
	t.Helper()
	var out []OutputEvent
	for ev := range st.Events() {
		out = append(out, ev)
	}
	return out
}

func TestService_Stream_HappyPath(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var params openai.ResponseNewParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "gpt-4o-mini", params.Model, "default model applied")
		assert.True(t, params.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "response.created", map[string]any{
			"sequence_number": 0,
			"response":        map[string]any{"id": "resp_1", "model": "gpt-4o-mini"},
		})
		sseEvent(w, "response.output_text.delta", map[string]any{
			"sequence_number": 1, "item_id": "msg_1", "delta": "Hel",
		})
		sseEvent(w, "response.output_text.delta", map[string]any{
			"sequence_number": 2, "item_id": "msg_1", "delta": "lo",
		})
		sseEvent(w, "response.output_text.done", map[string]any{
			"sequence_number": 3, "item_id": "msg_1", "text": "Hello",
		})
		sseEvent(w, "response.completed", map[string]any{
			"sequence_number": 4,
			"response": map[string]any{
				"id": "resp_1", "model": "gpt-4o-mini",
				"usage": map[string]any{"input_tokens": 100, "output_tokens": 10, "total_tokens": 110},
			},
		})
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))

	st, err := svc.Stream(context.Background(), &Request{Input: "hi"})
	require.NoError(t, err)
	defer st.Close()

	events := collectEvents(t, st)
	require.Len(t, events, 5)
	assert.Equal(t, KindCreated, events[0].Event)
	assert.Equal(t, KindTextDelta, events[1].Event)
	assert.Equal(t, KindTextDelta, events[2].Event)
	assert.Equal(t, KindTextDone, events[3].Event)
	assert.Equal(t, KindCompleted, events[4].Event)
	assert.NoError(t, st.Err())

	// 序号原样保留且不回退
	for i, ev := range events {
		assert.Equal(t, int64(i), ev.Sequence)
	}

	// 记录纪律：一条 stream_start + 每条事件一条 + 恰好一条终态
	phases := sink.phases()
	assert.Equal(t, "stream_start", phases[0], "start record precedes all events")
	assert.Len(t, sink.byPhase("event"), 5)
	done := sink.byPhase("stream_done")
	require.Len(t, done, 1)
	assert.Empty(t, sink.byPhase("stream_error"))

	// 终态记录带用量与成本
	assert.Equal(t, int64(100), done[0].Metadata["input_tokens"])
	assert.Equal(t, int64(10), done[0].Metadata["output_tokens"])
	assert.Equal(t, 0.000021, done[0].Metadata["cost_usd"])
	assert.Equal(t, "resp_1", done[0].Metadata["response_id"])
}

// 流中 error 事件：通道上恰好一条 error 归一化事件，Err 同时非 nil。
func TestService_Stream_VendorError(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "response.created", map[string]any{
			"sequence_number": 0,
			"response":        map[string]any{"id": "resp_e", "model": "gpt-4o"},
		})
		sseEvent(w, "response.output_text.delta", map[string]any{
			"sequence_number": 1, "item_id": "msg_1", "delta": "par",
		})
		sseEvent(w, "error", map[string]any{
			"sequence_number": 2, "code": "server_error", "message": "boom",
		})
	}))

	st, err := svc.Stream(context.Background(), &Request{Input: "hi"})
	require.NoError(t, err)
	defer st.Close()

	events := collectEvents(t, st)
	require.Len(t, events, 3)
	assert.Equal(t, KindError, events[2].Event)

	errorCount := 0
	for _, ev := range events {
		if ev.Event == KindError {
			errorCount++
		}
	}
	assert.Equal(t, 1, errorCount, "exactly one error event on the channel")

	// 双通道：Err 返回原始错误
	streamErr := st.Err()
	require.Error(t, streamErr)
	var apiErr *openai.Error
	require.ErrorAs(t, streamErr, &apiErr)
	assert.Equal(t, "server_error", apiErr.Code)
	assert.Equal(t, "boom", apiErr.Message)

	require.Len(t, sink.byPhase("stream_error"), 1)
	assert.Empty(t, sink.byPhase("stream_done"))
}

// response.failed 终态：生命周期事件照常投递，Err 带失败详情。
func TestService_Stream_ResponseFailed(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "response.failed", map[string]any{
			"sequence_number": 0,
			"response": map[string]any{
				"id": "resp_f",
				"error": map[string]any{
					"code": "server_error", "message": "model overloaded",
				},
			},
		})
	}))

	st, err := svc.Stream(context.Background(), &Request{Input: "hi"})
	require.NoError(t, err)
	defer st.Close()

	events := collectEvents(t, st)
	require.Len(t, events, 1)
	assert.Equal(t, KindFailed, events[0].Event)

	var apiErr *openai.Error
	require.ErrorAs(t, st.Err(), &apiErr)
	assert.Equal(t, "response_failed", apiErr.Type)
	assert.Equal(t, "model overloaded", apiErr.Message)

	require.Len(t, sink.byPhase("stream_error"), 1)
}

// 传输层中断：合成恰好一条 error 事件，序列号沿用最后一条供应商事件。
func TestService_Stream_TransportError(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "response.created", map[string]any{
			"sequence_number": 0,
			"response":        map[string]any{"id": "resp_t", "model": "gpt-4o"},
		})
		sseEvent(w, "response.output_text.delta", map[string]any{
			"sequence_number": 7, "item_id": "msg_1", "delta": "hal",
		})
		// 半截事件后断开
		fmt.Fprint(w, `data: {"type":"response.output_text.`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}))

	st, err := svc.Stream(context.Background(), &Request{Input: "hi"})
	require.NoError(t, err)
	defer st.Close()

	events := collectEvents(t, st)
	require.Len(t, events, 3)
	last := events[2]
	assert.Equal(t, KindError, last.Event)
	assert.Equal(t, int64(7), last.Sequence, "synthesized error reuses last vendor sequence")
	require.Error(t, st.Err())

	require.Len(t, sink.byPhase("stream_error"), 1)
	assert.Empty(t, sink.byPhase("stream_done"))
}

// 拨号失败（HTTP 4xx/5xx）：Stream 直接返回错误，仍留下起始与终态记录。
func TestService_Stream_DialFailure(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit_error","code":"rate_limit_exceeded"}}`)
	}))

	st, err := svc.Stream(context.Background(), &Request{Input: "hi"})
	require.Error(t, err)
	assert.Nil(t, st)

	var apiErr *openai.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)

	assert.Equal(t, []string{"stream_start", "stream_error"}, sink.phases())
}

func TestService_Resume(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/responses/resp_bg", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("stream"))
		assert.Equal(t, "42", r.URL.Query().Get("starting_after"))

		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "response.output_text.delta", map[string]any{
			"sequence_number": 43, "item_id": "msg_1", "delta": "resumed",
		})
		sseEvent(w, "response.completed", map[string]any{
			"sequence_number": 44,
			"response":        map[string]any{"id": "resp_bg", "model": "gpt-4o"},
		})
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))

	after := int64(42)
	st, err := svc.Resume(context.Background(), "resp_bg", &after)
	require.NoError(t, err)
	defer st.Close()

	events := collectEvents(t, st)
	require.Len(t, events, 2)
	assert.Equal(t, int64(43), events[0].Sequence)
	assert.NoError(t, st.Err())

	starts := sink.byPhase("stream_resume")
	require.Len(t, starts, 1)
	require.Len(t, sink.byPhase("stream_done"), 1)
}

func TestService_Stream_CloseReleasesStream(t *testing.T) {
	release := make(chan struct{})
	svc, _, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "response.created", map[string]any{
			"sequence_number": 0,
			"response":        map[string]any{"id": "resp_c", "model": "gpt-4o"},
		})
		// 挂住连接直到客户端断开
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer close(release)

	st, err := svc.Stream(context.Background(), &Request{Input: "hi"})
	require.NoError(t, err)

	<-st.Events() // created
	require.NoError(t, st.Close())

	// 通道最终关闭，流以取消收尾
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-st.Events():
			if !ok {
				assert.ErrorIs(t, st.Err(), context.Canceled)
				return
			}
		case <-deadline:
			t.Fatal("stream did not shut down after Close")
		}
	}
}

func TestService_Create(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params openai.ResponseNewParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.False(t, params.Stream)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "resp_sync", "status": "completed", "model": "gpt-4o-mini",
			"output_text": "pong",
			"usage": {"input_tokens": 100, "output_tokens": 10, "total_tokens": 110}
		}`)
	}))

	resp, err := svc.Create(context.Background(), &Request{Input: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "resp_sync", resp.ID)
	assert.Equal(t, "pong", resp.OutputText)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "responses", rec.API)
	assert.Equal(t, int64(110), rec.Metadata["total_tokens"])
	assert.Equal(t, 0.000021, rec.Metadata["cost_usd"])
	assert.Nil(t, rec.Error)
}

func TestService_Create_NoUsageMeansNilNotZero(t *testing.T) {
	svc, sink, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "resp_nu", "status": "completed", "model": "gpt-4o-mini"}`)
	}))

	_, err := svc.Create(context.Background(), &Request{Input: "ping"})
	require.NoError(t, err)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Nil(t, rec.Metadata["input_tokens"], "absent usage logged as nil, not 0")
	_, hasCost := rec.Metadata["cost_usd"]
	assert.False(t, hasCost, "no usage means no cost estimate")
}

func TestService_RetrieveCancelDelete(t *testing.T) {
	var gotPaths []string
	svc, _, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "resp_x", "status": "cancelled"}`)
	}))

	ctx := context.Background()
	_, err := svc.Retrieve(ctx, "resp_x")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, "resp_x")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "resp_x"))

	assert.Equal(t, []string{
		"GET /v1/responses/resp_x",
		"POST /v1/responses/resp_x/cancel",
		"DELETE /v1/responses/resp_x",
	}, gotPaths)
}
