package responses

import "github.com/BaSui01/omnirelay/openai"

// Request 是面向调用方的请求。零值可用；未设置的可选字段
// 在出站请求体中整体省略。
type Request struct {
	Model              string
	Input              any // string 或结构化输入
	Instructions       string
	Tools              []openai.Tool
	ToolChoice         string
	Temperature        *float64
	TopP               *float64
	MaxOutputTokens    *int64
	PreviousResponseID string
	Store              *bool
	Background         *bool
	Reasoning          *openai.ReasoningParams
	Metadata           map[string]string

	// Image 非空时在工具列表末尾追加一个 image_generation 工具。
	Image *ImageOptions
}

// ImageOptions 描述内建图像生成工具的参数。
type ImageOptions struct {
	Size              string
	Quality           string
	OutputFormat      string
	OutputCompression *int
	Moderation        string
	Background        string
	InputFidelity     string
	PartialImages     *int
}

// buildParams 把调用方请求转换为出站请求体。纯函数，无副作用。
//
// 调用方省略模型时补默认模型；Image 选项转成 image_generation
// 工具描述符后追加在调用方工具之后——只追加，调用方的工具既不
// 删除也不重排。
func buildParams(req *Request, defaultModel string, stream bool) openai.ResponseNewParams {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	tools := req.Tools
	if req.Image != nil {
		tools = append(append([]openai.Tool(nil), req.Tools...), imageTool(req.Image))
	}

	return openai.ResponseNewParams{
		Model:              model,
		Input:              req.Input,
		Instructions:       req.Instructions,
		Tools:              tools,
		ToolChoice:         req.ToolChoice,
		Temperature:        req.Temperature,
		TopP:               req.TopP,
		MaxOutputTokens:    req.MaxOutputTokens,
		PreviousResponseID: req.PreviousResponseID,
		Store:              req.Store,
		Background:         req.Background,
		Stream:             stream,
		Reasoning:          req.Reasoning,
		Metadata:           req.Metadata,
	}
}

func imageTool(opt *ImageOptions) openai.Tool {
	return openai.Tool{
		Type:              "image_generation",
		Size:              opt.Size,
		Quality:           opt.Quality,
		OutputFormat:      opt.OutputFormat,
		OutputCompression: opt.OutputCompression,
		Moderation:        opt.Moderation,
		Background:        opt.Background,
		InputFidelity:     opt.InputFidelity,
		PartialImages:     opt.PartialImages,
	}
}
