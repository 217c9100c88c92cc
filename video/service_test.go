package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/openai"
)

type captureSink struct {
	mu      sync.Mutex
	records []*interaction.Record
}

func (c *captureSink) Log(_ context.Context, rec *interaction.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

func newTestService(t *testing.T, handler http.Handler) (*Service, *captureSink) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := openai.NewClient(openai.Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))

	sink := &captureSink{}
	return NewService(client, DefaultConfig(), zaptest.NewLogger(t), sink, nil), sink
}

func TestService_Create(t *testing.T) {
	svc, sink := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/videos", r.URL.Path)

		var body CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sora-2", body.Model, "default model applied")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "video_1", "model": "sora-2", "status": "queued", "seconds": "8", "progress": 0}`)
	}))

	job, err := svc.Create(context.Background(), &CreateRequest{Prompt: "waves on a beach", Seconds: "8"})
	require.NoError(t, err)
	assert.Equal(t, "video_1", job.ID)
	assert.Equal(t, "queued", job.Status)
	assert.False(t, job.Done())

	require.Len(t, sink.records, 1)
	assert.Equal(t, 1.0, sink.records[0].Metadata["cost_usd"]) // 8 秒标准档
}

func TestService_Status(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos/video_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "video_1", "status": "in_progress", "progress": 40}`)
	}))

	job, err := svc.Status(context.Background(), "video_1")
	require.NoError(t, err)
	assert.Equal(t, 40, job.Progress)
	assert.False(t, job.Done())
}

func TestService_Poll_CompletedImmediately(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "video_1", "status": "completed", "progress": 100}`)
	}))

	job, err := svc.Poll(context.Background(), "video_1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "completed", job.Status)
}

// 供应商报告 failed 与轮询超期是两种不同的失败，错误类型必须可区分。
func TestService_Poll_ProviderFailure(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "video_1", "status": "failed",
			"error": {"code": "moderation_blocked", "message": "prompt rejected"}
		}`)
	}))

	job, err := svc.Poll(context.Background(), "video_1", time.Minute)
	require.Error(t, err)

	var failed *ErrJobFailed
	require.ErrorAs(t, err, &failed)
	assert.NotErrorIs(t, err, ErrDeadlineExceeded)
	require.NotNil(t, failed.Job)
	assert.Equal(t, "moderation_blocked", failed.Job.Error.Code)

	// 最后一次快照同时返回，调用方无需再查一次
	require.NotNil(t, job)
	assert.Equal(t, "failed", job.Status)
}

func TestService_Poll_DeadlineExceeded(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "video_1", "status": "in_progress", "progress": 10}`)
	}))

	// 期限短于首个 5 秒退避：下一次轮询必然越期，立即返回
	start := time.Now()
	job, err := svc.Poll(context.Background(), "video_1", time.Second)
	require.ErrorIs(t, err, ErrDeadlineExceeded)
	assert.Less(t, time.Since(start), 3*time.Second, "deadline check happens before sleeping")

	var failed *ErrJobFailed
	assert.NotErrorAs(t, err, &failed)
	require.NotNil(t, job, "last snapshot returned alongside the deadline error")
	assert.Equal(t, "in_progress", job.Status)
}

func TestService_Poll_ContextCancel(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "video_1", "status": "in_progress"}`)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Poll(ctx, "video_1", time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_Download(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos/video_1/content", r.URL.Path)
		assert.Equal(t, "thumbnail", r.URL.Query().Get("variant"))
		w.Write([]byte("jpeg-bytes"))
	}))

	body, err := svc.Download(context.Background(), "video_1", "thumbnail")
	require.NoError(t, err)
	defer body.Close()

	data := make([]byte, 16)
	n, _ := body.Read(data)
	assert.Equal(t, "jpeg-bytes", string(data[:n]))
}

func TestService_DownloadAll(t *testing.T) {
	var requests atomic.Int32
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("mp4:" + r.URL.Path))
	}))

	dir := t.TempDir()
	require.NoError(t, svc.DownloadAll(context.Background(), []string{"vid_a", "vid_b", "vid_c"}, dir))
	assert.Equal(t, int32(3), requests.Load())

	for _, id := range []string{"vid_a", "vid_b", "vid_c"} {
		data, err := os.ReadFile(filepath.Join(dir, id+".mp4"))
		require.NoError(t, err)
		assert.Contains(t, string(data), id)
	}
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos", r.URL.Path)
		assert.Equal(t, "video_5", r.URL.Query().Get("after"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data": [{"id": "video_6"}, {"id": "video_7"}], "has_more": true}`)
	}))

	list, err := svc.List(context.Background(), "video_5", 2)
	require.NoError(t, err)
	assert.Len(t, list.Data, 2)
	assert.True(t, list.HasMore)
}

func TestService_Remix(t *testing.T) {
	svc, sink := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos/video_1/remix", r.URL.Path)

		var body RemixRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "same scene at night", body.Prompt)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "video_2", "status": "queued", "remixed_from_video_id": "video_1"}`)
	}))

	job, err := svc.Remix(context.Background(), "video_1", &RemixRequest{Prompt: "same scene at night"})
	require.NoError(t, err)
	assert.Equal(t, "video_2", job.ID)
	assert.Equal(t, "video_1", job.RemixedFromVideoID)
	require.Len(t, sink.records, 1)
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/videos/video_1", r.URL.Path)
		fmt.Fprint(w, `{"id": "video_1", "deleted": true}`)
	}))

	require.NoError(t, svc.Delete(context.Background(), "video_1"))
}
