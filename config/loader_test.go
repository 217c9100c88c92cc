package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com", cfg.OpenAI.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "gpt-4o-mini", cfg.Responses.DefaultModel)
	assert.Equal(t, 16, cfg.Responses.EventBuffer)
	assert.Equal(t, "tts-1-hd", cfg.Speech.SpeechModel)
	assert.Equal(t, "whisper-1", cfg.Speech.TranscriptionModel)
	assert.Equal(t, "alloy", cfg.Speech.Voice)
	assert.Equal(t, "dall-e-3", cfg.Image.DefaultModel)
	assert.Equal(t, "1024x1024", cfg.Image.DefaultSize)
	assert.Equal(t, "sora-2", cfg.Video.DefaultModel)
	assert.Equal(t, 10*time.Minute, cfg.Video.PollDeadline)
	assert.Equal(t, "zap", cfg.Interaction.Sink)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
openai:
  api_key: sk-test
  base_url: https://proxy.internal/v1
  timeout: 30s
responses:
  default_model: gpt-5
interaction:
  sink: redis
  redis:
    addr: redis.internal:6379
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "https://proxy.internal/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "gpt-5", cfg.Responses.DefaultModel)
	assert.Equal(t, "redis", cfg.Interaction.Sink)
	assert.Equal(t, "redis.internal:6379", cfg.Interaction.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// 未出现在文件中的字段保持默认值
	assert.Equal(t, "tts-1-hd", cfg.Speech.SpeechModel)
	assert.Equal(t, 16, cfg.Responses.EventBuffer)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Responses.DefaultModel)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai: [not a map"), 0o644))

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	// env tag 显式声明的键
	t.Setenv("OMNIRELAY_INTERACTION_SINK", "discard")
	t.Setenv("OMNIRELAY_LOG_LEVEL", "warn")
	// 仅有 yaml tag 的字段通过推导键覆盖
	t.Setenv("OMNIRELAY_OPENAI_API_KEY", "sk-from-env")
	t.Setenv("OMNIRELAY_OPENAI_TIMEOUT", "45s")
	t.Setenv("OMNIRELAY_OPENAI_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("OMNIRELAY_LOG_OUTPUT_PATHS", "stdout, stderr")
	t.Setenv("OMNIRELAY_LOG_ENABLE_CALLER", "false")
	t.Setenv("OMNIRELAY_TELEMETRY_SAMPLE_RATE", "0.5")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "discard", cfg.Interaction.Sink)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
	assert.Equal(t, 45*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, 2.5, cfg.OpenAI.RequestsPerSecond)
	assert.Equal(t, []string{"stdout", "stderr"}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Log.EnableCaller)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
openai:
  api_key: sk-from-file
responses:
  default_model: gpt-4o
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("OMNIRELAY_OPENAI_API_KEY", "sk-from-env")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
	// 环境变量未覆盖的字段保留文件值
	assert.Equal(t, "gpt-4o", cfg.Responses.DefaultModel)
}

func TestLoad_CustomEnvPrefix(t *testing.T) {
	t.Setenv("MYAPP_OPENAI_API_KEY", "sk-prefixed")
	t.Setenv("OMNIRELAY_OPENAI_API_KEY", "sk-ignored")

	cfg, err := NewLoader().WithEnvPrefix("MYAPP").Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", cfg.OpenAI.APIKey)
}

func TestLoad_EnvBadDuration(t *testing.T) {
	t.Setenv("OMNIRELAY_OPENAI_TIMEOUT", "not-a-duration")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OMNIRELAY_OPENAI_TIMEOUT")
}

func TestLoad_ValidatorFailure(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error {
			return (&Config{}).Validate()
		}).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) { c.OpenAI.APIKey = "sk-ok" },
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) {},
			wantErr: "openai api_key is required",
		},
		{
			name: "unknown sink",
			mutate: func(c *Config) {
				c.OpenAI.APIKey = "sk-ok"
				c.Interaction.Sink = "kafka"
			},
			wantErr: `unknown interaction sink "kafka"`,
		},
		{
			name: "empty sink is allowed",
			mutate: func(c *Config) {
				c.OpenAI.APIKey = "sk-ok"
				c.Interaction.Sink = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.OpenAI.APIKey = ""
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnvKeyFromYAML(t *testing.T) {
	assert.Equal(t, "API_KEY", envKeyFromYAML("api_key"))
	assert.Equal(t, "EVENT_BUFFER", envKeyFromYAML("event_buffer,omitempty"))
	assert.Equal(t, "", envKeyFromYAML("-"))
	assert.Equal(t, "", envKeyFromYAML(""))
}
