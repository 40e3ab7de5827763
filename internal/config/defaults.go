package config

const (
	defaultDataDir            = "~/.local/share/podforge"
	defaultAudioDir           = "~/.local/share/podforge/audio"
	defaultLogDir             = "~/.local/share/podforge/logs"
	defaultAPIBind            = "127.0.0.1:7621"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "anthropic/claude-3.5-sonnet"
	defaultLLMTimeoutSeconds  = 60
	defaultTTSBaseURL         = "https://api.elevenlabs.io/v1"
	defaultTTSStability       = 0.7
	defaultTTSClarity         = 0.75
	defaultTTSRequestsPerMin  = 30
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			AudioDir: defaultAudioDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			BaseURL:           defaultTTSBaseURL,
			Stability:         defaultTTSStability,
			Clarity:           defaultTTSClarity,
			RequestsPerMinute: defaultTTSRequestsPerMin,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
