package responses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/omnirelay/openai"
)

func TestBuildParams_DefaultModel(t *testing.T) {
	params := buildParams(&Request{Input: "hi"}, "gpt-4o-mini", true)
	assert.Equal(t, "gpt-4o-mini", params.Model)
	assert.True(t, params.Stream)

	override := buildParams(&Request{Model: "gpt-4o", Input: "hi"}, "gpt-4o-mini", false)
	assert.Equal(t, "gpt-4o", override.Model)
	assert.False(t, override.Stream)
}

func TestBuildParams_OptionalFieldsPassThrough(t *testing.T) {
	temp := 0.2
	maxTokens := int64(512)
	store := false

	params := buildParams(&Request{
		Input:              "hi",
		Instructions:       "be brief",
		ToolChoice:         "auto",
		Temperature:        &temp,
		MaxOutputTokens:    &maxTokens,
		Store:              &store,
		PreviousResponseID: "resp_prev",
		Reasoning:          &openai.ReasoningParams{Effort: "low", Summary: "auto"},
		Metadata:           map[string]string{"trace": "t1"},
	}, "gpt-4o-mini", false)

	assert.Equal(t, "be brief", params.Instructions)
	assert.Equal(t, "auto", params.ToolChoice)
	require.NotNil(t, params.Temperature)
	assert.Equal(t, 0.2, *params.Temperature)
	assert.Nil(t, params.TopP, "unset optionals stay nil, not zero")
	require.NotNil(t, params.Store)
	assert.False(t, *params.Store)
	assert.Equal(t, "resp_prev", params.PreviousResponseID)
	assert.Equal(t, "low", params.Reasoning.Effort)
	assert.Equal(t, "t1", params.Metadata["trace"])
}

// 图像选项只追加工具，调用方的工具列表既不重排也不被修改。
func TestBuildParams_ImageToolAppendOnly(t *testing.T) {
	callerTools := []openai.Tool{
		{Type: "function", Name: "get_weather"},
		{Type: "web_search"},
	}
	partials := 3

	params := buildParams(&Request{
		Input: "draw a cat",
		Tools: callerTools,
		Image: &ImageOptions{Size: "1024x1024", Quality: "high", PartialImages: &partials},
	}, "gpt-4o", true)

	require.Len(t, params.Tools, 3)
	assert.Equal(t, "function", params.Tools[0].Type)
	assert.Equal(t, "web_search", params.Tools[1].Type)
	assert.Equal(t, "image_generation", params.Tools[2].Type)
	assert.Equal(t, "1024x1024", params.Tools[2].Size)
	require.NotNil(t, params.Tools[2].PartialImages)
	assert.Equal(t, 3, *params.Tools[2].PartialImages)

	// 原切片未被追加写
	assert.Len(t, callerTools, 2)
}

func TestBuildParams_NoImageKeepsCallerTools(t *testing.T) {
	tools := []openai.Tool{{Type: "function", Name: "f"}}
	params := buildParams(&Request{Input: "hi", Tools: tools}, "m", false)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "f", params.Tools[0].Name)
}
