// =============================================================================
// 📦 omnirelay 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"github.com/BaSui01/omnirelay/image"
	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/responses"
	"github.com/BaSui01/omnirelay/speech"
	"github.com/BaSui01/omnirelay/video"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		OpenAI:      openai.DefaultConfig(),
		Responses:   responses.DefaultConfig(),
		Speech:      speech.DefaultConfig(),
		Image:       image.DefaultConfig(),
		Video:       video.DefaultConfig(),
		Interaction: DefaultInteractionConfig(),
		Log:         DefaultLogConfig(),
		Telemetry:   DefaultTelemetryConfig(),
	}
}

// DefaultInteractionConfig 返回默认交互日志配置
func DefaultInteractionConfig() InteractionConfig {
	return InteractionConfig{
		Sink:  "zap",
		Redis: interaction.DefaultRedisConfig(),
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "omnirelay",
		SampleRate:   0.1,
	}
}
