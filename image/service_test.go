package image

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
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

func TestService_Generate(t *testing.T) {
	svc, sink := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)

		var body GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dall-e-3", body.Model, "default model applied")
		assert.Equal(t, "1024x1024", body.Size, "default size applied")
		assert.Equal(t, 1, body.N)
		assert.Equal(t, "a lighthouse at dusk", body.Prompt)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"created": 1700000000,
			"data": [{"url": "https://img.example/1.png", "revised_prompt": "a lighthouse at dusk, oil painting"}]
		}`)
	}))

	result, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "a lighthouse at dusk"})
	require.NoError(t, err)

	require.Len(t, result.Images, 1)
	assert.Equal(t, "https://img.example/1.png", result.Images[0].URL)
	assert.Equal(t, 0.04, result.CostUSD) // dall-e-3 标准档单张

	require.Len(t, sink.records, 1)
	assert.Equal(t, "image", sink.records[0].API)
	assert.Equal(t, 0.04, sink.records[0].Metadata["cost_usd"])
}

func TestService_Generate_HDQualityPricing(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created": 1, "data": [{"url": "u1"}, {"url": "u2"}]}`)
	}))

	result, err := svc.Generate(context.Background(), &GenerateRequest{
		Prompt: "p", Quality: "hd", N: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.16, result.CostUSD) // 两张 hd
}

func TestService_Generate_UpstreamError(t *testing.T) {
	svc, sink := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"prompt rejected","code":"content_policy_violation"}}`)
	}))

	_, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "bad"})
	require.Error(t, err)

	require.Len(t, sink.records, 1)
	require.NotNil(t, sink.records[0].Error)
	assert.Equal(t, "content_policy_violation", sink.records[0].Error.Code)
}

func TestService_Edit(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/edits", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "add a red balloon", r.FormValue("prompt"))
		assert.Equal(t, "dall-e-2", r.FormValue("model"))

		_, _, err := r.FormFile("image")
		require.NoError(t, err)
		_, _, err = r.FormFile("mask")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created": 1, "data": [{"url": "edited.png"}]}`)
	}))

	result, err := svc.Edit(context.Background(), &EditRequest{
		Image:  strings.NewReader("png-bytes"),
		Mask:   strings.NewReader("mask-bytes"),
		Model:  "dall-e-2",
		Prompt: "add a red balloon",
	})
	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "edited.png", result.Images[0].URL)
}

func TestService_Edit_RequiresImage(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := svc.Edit(context.Background(), &EditRequest{Prompt: "p"})
	require.Error(t, err)
}

func TestService_Variation(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/variations", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "2", r.FormValue("n"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"created": 1, "data": [{"url": "v1.png"}, {"url": "v2.png"}]}`)
	}))

	result, err := svc.Variation(context.Background(), &VariationRequest{
		Image: strings.NewReader("png-bytes"),
		N:     2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Images, 2)
}
