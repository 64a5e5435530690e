package config

const (
	defaultDataDir              = "~/.local/share/vlooo"
	defaultLogDir               = "~/.local/share/vlooo/logs"
	defaultBackendBaseURL       = "http://localhost:8001"
	defaultBackendTimeout       = 30
	defaultToneOfVoice          = "professional"
	defaultLanguage             = "ko"
	defaultVoiceID              = "ko-KR-Standard-A"
	defaultSpeed                = 1.0
	defaultResolution           = "1080p"
	defaultFPS                  = 30
	defaultOutputFormat         = "mp4"
	defaultStatusPollInterval   = 3
	defaultCancelTimeoutSeconds = 2
	defaultProxyBind            = "127.0.0.1:7910"
	defaultProxyRatePerSecond   = 10.0
	defaultProxyRateBurst       = 20
	defaultProxyRequestTimeout  = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogMaxSizeMB         = 20
	defaultLogMaxBackups        = 5
	defaultLogMaxAgeDays        = 30
)

// Default returns the baseline configuration before file and environment
// overrides.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Backend: Backend{
			BaseURL:        defaultBackendBaseURL,
			TimeoutSeconds: defaultBackendTimeout,
		},
		Conversion: Conversion{
			ToneOfVoice:  defaultToneOfVoice,
			Language:     defaultLanguage,
			VoiceID:      defaultVoiceID,
			Speed:        defaultSpeed,
			Resolution:   defaultResolution,
			FPS:          defaultFPS,
			OutputFormat: defaultOutputFormat,
		},
		Workflow: Workflow{
			StatusPollInterval:   defaultStatusPollInterval,
			CancelTimeoutSeconds: defaultCancelTimeoutSeconds,
		},
		Proxy: Proxy{
			Bind:           defaultProxyBind,
			RatePerSecond:  defaultProxyRatePerSecond,
			RateBurst:      defaultProxyRateBurst,
			RequestTimeout: defaultProxyRequestTimeout,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
