// =============================================================================
// omnirelay 主入口
// =============================================================================
// 统一的命令行入口，覆盖文本响应、语音、图像、视频四类能力
//
// 使用方法:
//
//	omnirelay chat --prompt "hello"          # 流式对话
//	omnirelay chat --no-stream --prompt ...  # 非流式对话
//	omnirelay resume <response_id>           # 按序恢复中断的流
//	omnirelay speak --text "..." --out a.mp3 # 语音合成
//	omnirelay transcribe --file a.mp3        # 语音转写
//	omnirelay image --prompt "..."           # 图像生成
//	omnirelay video --prompt "..." --out v.mp4
//	omnirelay version                        # 显示版本信息
// =============================================================================

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/omnirelay/config"
	"github.com/BaSui01/omnirelay/image"
	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/internal/metrics"
	"github.com/BaSui01/omnirelay/internal/telemetry"
	"github.com/BaSui01/omnirelay/observability"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/responses"
	"github.com/BaSui01/omnirelay/speech"
	"github.com/BaSui01/omnirelay/tokenizer"
	"github.com/BaSui01/omnirelay/video"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "resume":
		runResume(os.Args[2:])
	case "speak":
		runSpeak(os.Args[2:])
	case "transcribe":
		runTranscribe(os.Args[2:])
	case "image":
		runImage(os.Args[2:])
	case "video":
		runVideo(os.Args[2:])
	case "tokens":
		runTokens(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// ⚙️ 应用装配
// =============================================================================

// app 聚合所有命令共享的依赖。
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *openai.Client
	sink     interaction.Sink
	metrics  *observability.Metrics
	otel     *telemetry.Providers
	cleanups []func()
}

// newApp 加载配置并装配客户端、日志接收器与可观测性组件。
func newApp(configPath string) (*app, error) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := initLogger(cfg.Log)

	a := &app{cfg: cfg, logger: logger}
	a.cleanups = append(a.cleanups, func() { _ = logger.Sync() })

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	} else {
		a.otel = otelProviders
		a.cleanups = append(a.cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelProviders.Shutdown(ctx)
		})
	}

	a.metrics, err = observability.NewMetrics()
	if err != nil {
		logger.Warn("failed to initialize metrics", zap.Error(err))
	}

	a.sink, err = a.buildSink()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.client = openai.NewClient(cfg.OpenAI, logger)
	return a, nil
}

// buildSink 按配置构造交互记录接收器，并串联 Prometheus 采集器。
func (a *app) buildSink() (interaction.Sink, error) {
	var base interaction.Sink
	switch a.cfg.Interaction.Sink {
	case "", "discard":
		base = interaction.Discard
	case "zap":
		base = interaction.NewZapSink(a.logger)
	case "redis":
		rs, err := interaction.NewRedisSink(a.cfg.Interaction.Redis, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis sink: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { _ = rs.Close() })
		base = rs
	default:
		return nil, fmt.Errorf("unknown interaction sink: %s", a.cfg.Interaction.Sink)
	}

	collector := metrics.NewCollector("omnirelay", a.logger)
	return interaction.Tee(base, collector), nil
}

func (a *app) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

func (a *app) responses() *responses.Service {
	return responses.NewService(a.client, a.cfg.Responses, a.logger, a.sink, a.metrics)
}

func (a *app) speech() *speech.Service {
	return speech.NewService(a.client, a.cfg.Speech, a.logger, a.sink, a.metrics)
}

func (a *app) image() *image.Service {
	return image.NewService(a.client, a.cfg.Image, a.logger, a.sink, a.metrics)
}

func (a *app) video() *video.Service {
	return video.NewService(a.client, a.cfg.Video, a.logger, a.sink, a.metrics)
}

// serveMetrics 在给定地址暴露 Prometheus /metrics 与 /health。
func (a *app) serveMetrics(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	a.logger.Info("metrics server listening", zap.String("addr", addr))
}

// =============================================================================
// 💬 chat / resume 命令
// =============================================================================

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	model := fs.String("model", "", "Model override")
	prompt := fs.String("prompt", "", "User prompt")
	instructions := fs.String("instructions", "", "System instructions")
	noStream := fs.Bool("no-stream", false, "Disable streaming")
	metricsAddr := fs.String("metrics-addr", "", "Expose Prometheus metrics on this address")
	fs.Parse(args)

	input := *prompt
	if input == "" {
		input = strings.Join(fs.Args(), " ")
	}
	if input == "" {
		fatal("chat requires --prompt or trailing arguments")
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()
	a.serveMetrics(*metricsAddr)

	req := &responses.Request{
		Model:        *model,
		Input:        input,
		Instructions: *instructions,
	}

	ctx := context.Background()
	svc := a.responses()

	if *noStream {
		resp, err := svc.Create(ctx, req)
		if err != nil {
			fatal("request failed: %v", err)
		}
		fmt.Println(resp.OutputText)
		return
	}

	st, err := svc.Stream(ctx, req)
	if err != nil {
		fatal("failed to open stream: %v", err)
	}
	drainStream(st)
}

func runResume(args []string) {
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	after := fs.Int64("after", -1, "Replay events after this sequence number")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("resume requires a response id")
	}
	responseID := fs.Arg(0)

	a, err := newApp(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	var startingAfter *int64
	if *after >= 0 {
		startingAfter = after
	}

	st, err := a.responses().Resume(context.Background(), responseID, startingAfter)
	if err != nil {
		fatal("failed to resume stream: %v", err)
	}
	drainStream(st)
}

// drainStream 把归一化事件打印到标准输出：文本增量直接追加，
// 其余事件按 NDJSON 打到标准错误，方便管道分流。
func drainStream(st *responses.Stream) {
	for ev := range st.Events() {
		switch ev.Event {
		case responses.KindTextDelta:
			var payload struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal([]byte(ev.Data), &payload); err == nil {
				fmt.Print(payload.Text)
			}
		case responses.KindTextDone:
			fmt.Println()
		default:
			line, _ := json.Marshal(ev)
			fmt.Fprintln(os.Stderr, string(line))
		}
	}
	if err := st.Err(); err != nil {
		fatal("stream aborted: %v", err)
	}
}

// =============================================================================
// 🔊 speak / transcribe 命令
// =============================================================================

func runSpeak(args []string) {
	fs := flag.NewFlagSet("speak", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	text := fs.String("text", "", "Text to synthesize")
	voice := fs.String("voice", "", "Voice name")
	out := fs.String("out", "speech.mp3", "Output audio file")
	fs.Parse(args)

	if *text == "" {
		fatal("speak requires --text")
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	req := &speech.SynthesizeRequest{Input: *text, Voice: *voice}
	if err := a.speech().SynthesizeToFile(context.Background(), req, *out); err != nil {
		fatal("synthesis failed: %v", err)
	}
	fmt.Printf("wrote %s\n", *out)
}

func runTranscribe(args []string) {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	file := fs.String("file", "", "Audio file to transcribe")
	language := fs.String("language", "", "Source language hint")
	translate := fs.Bool("translate", false, "Translate to English instead of transcribing")
	fs.Parse(args)

	if *file == "" {
		fatal("transcribe requires --file")
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	ctx := context.Background()
	svc := a.speech()

	var result *speech.TranscribeResult
	if *translate {
		f, err := os.Open(*file)
		if err != nil {
			fatal("cannot open audio: %v", err)
		}
		defer f.Close()
		result, err = svc.Translate(ctx, &speech.TranscribeRequest{Audio: f, Filename: *file})
		if err != nil {
			fatal("translation failed: %v", err)
		}
	} else {
		var err error
		result, err = svc.TranscribeFile(ctx, *file, &speech.TranscribeRequest{Language: *language})
		if err != nil {
			fatal("transcription failed: %v", err)
		}
	}

	fmt.Println(result.Text)
	if result.Duration != nil {
		fmt.Fprintf(os.Stderr, "duration: %.1fs  cost: $%.6f\n", *result.Duration, result.CostUSD)
	}
}

// =============================================================================
// 🎨 image 命令
// =============================================================================

func runImage(args []string) {
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	prompt := fs.String("prompt", "", "Image prompt")
	size := fs.String("size", "", "Image size, e.g. 1024x1024")
	quality := fs.String("quality", "", "Image quality")
	n := fs.Int("n", 1, "Number of images")
	fs.Parse(args)

	if *prompt == "" {
		fatal("image requires --prompt")
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	result, err := a.image().Generate(context.Background(), &image.GenerateRequest{
		Prompt:  *prompt,
		Size:    *size,
		Quality: *quality,
		N:       *n,
	})
	if err != nil {
		fatal("generation failed: %v", err)
	}

	for i, img := range result.Images {
		switch {
		case img.URL != "":
			fmt.Println(img.URL)
		case img.B64JSON != "":
			path := fmt.Sprintf("image-%d.png", i)
			if err := writeBase64(path, img.B64JSON); err != nil {
				fatal("cannot write image: %v", err)
			}
			fmt.Printf("wrote %s\n", path)
		}
	}
	fmt.Fprintf(os.Stderr, "cost: $%.6f\n", result.CostUSD)
}

func writeBase64(path, b64 string) error {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// =============================================================================
// 🎬 video 命令
// =============================================================================

func runVideo(args []string) {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	prompt := fs.String("prompt", "", "Video prompt")
	size := fs.String("size", "", "Video size, e.g. 1280x720")
	seconds := fs.String("seconds", "", "Clip length in seconds")
	out := fs.String("out", "", "Output file (defaults to <job id>.mp4)")
	deadline := fs.Duration("deadline", 0, "Polling deadline (0 uses the configured default)")
	fs.Parse(args)

	if *prompt == "" {
		fatal("video requires --prompt")
	}

	a, err := newApp(*configPath)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	ctx := context.Background()
	svc := a.video()

	job, err := svc.Create(ctx, &video.CreateRequest{Prompt: *prompt, Size: *size, Seconds: *seconds})
	if err != nil {
		fatal("failed to create video job: %v", err)
	}
	fmt.Fprintf(os.Stderr, "job %s created, polling...\n", job.ID)

	job, err = svc.Poll(ctx, job.ID, *deadline)
	if err != nil {
		fatal("video job did not complete: %v", err)
	}

	path := *out
	if path == "" {
		path = job.ID + ".mp4"
	}
	if err := svc.DownloadToFile(ctx, job.ID, "", path); err != nil {
		fatal("download failed: %v", err)
	}
	fmt.Printf("wrote %s\n", path)
}

// runTokens 对文本做本地 token 计数与成本预估，不访问上游。
func runTokens(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	model := fs.String("model", "gpt-4o-mini", "Model whose encoding to use")
	text := fs.String("text", "", "Text to count (reads stdin when empty)")
	fs.Parse(args)

	input := *text
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal("failed to read stdin: %v", err)
		}
		input = string(data)
	}

	counter := tokenizer.NewCounter(*model)
	count, err := counter.Count(input)
	if err != nil {
		fatal("failed to count tokens: %v", err)
	}
	fits, err := tokenizer.FitsContext(*model, input)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("model:    %s\n", *model)
	fmt.Printf("encoding: %s\n", counter.Name())
	fmt.Printf("tokens:   %d / %d\n", count, counter.MaxTokens())
	fmt.Printf("fits:     %v\n", fits)

	if est, err := tokenizer.EstimateInputCost(*model, input); err == nil && est != nil {
		fmt.Printf("input cost: $%.6f\n", est.CostUSD)
	}
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("omnirelay %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`omnirelay - OpenAI 接入层命令行

Usage:
  omnirelay <command> [options]

Commands:
  chat        Send a prompt and stream the normalized response events
  resume      Resume an interrupted background stream by response id
  speak       Synthesize speech from text
  transcribe  Transcribe (or translate) an audio file
  image       Generate images from a prompt
  video       Create a video job, wait for it, and download the result
  tokens      Count tokens locally and estimate input cost
  version     Show version information
  help        Show this help message

Common options:
  --config <path>   Path to configuration file (YAML)

Examples:
  omnirelay chat --prompt "Explain SSE in one paragraph"
  omnirelay chat --no-stream --model gpt-4o --prompt "hi"
  omnirelay resume resp_abc123 --after 42
  omnirelay speak --text "hello" --voice nova --out hello.mp3
  omnirelay transcribe --file meeting.mp3
  omnirelay image --prompt "a lighthouse at dusk" --size 1024x1024
  omnirelay video --prompt "waves on a beach" --seconds 8`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
