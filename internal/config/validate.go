package config

import (
	"fmt"
	"net/url"
	"strings"
)

var allowedResolutions = map[string]struct{}{
	"720p":  {},
	"1080p": {},
	"4k":    {},
}

var allowedFormats = map[string]struct{}{
	"mp4":  {},
	"webm": {},
}

var allowedTones = map[string]struct{}{
	"professional": {},
	"friendly":     {},
	"casual":       {},
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL != "" &&
		!strings.HasPrefix(c.Backend.BaseURL, "http://") &&
		!strings.HasPrefix(c.Backend.BaseURL, "https://") {
		c.Backend.BaseURL = "http://" + c.Backend.BaseURL
	}

	c.Conversion.ToneOfVoice = strings.ToLower(strings.TrimSpace(c.Conversion.ToneOfVoice))
	c.Conversion.Language = strings.ToLower(strings.TrimSpace(c.Conversion.Language))
	c.Conversion.Resolution = strings.ToLower(strings.TrimSpace(c.Conversion.Resolution))
	c.Conversion.OutputFormat = strings.ToLower(strings.TrimSpace(c.Conversion.OutputFormat))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultBackendTimeout
	}
	if c.Workflow.StatusPollInterval <= 0 {
		c.Workflow.StatusPollInterval = defaultStatusPollInterval
	}
	if c.Workflow.CancelTimeoutSeconds <= 0 {
		c.Workflow.CancelTimeoutSeconds = defaultCancelTimeoutSeconds
	}
	if c.Conversion.Speed <= 0 {
		c.Conversion.Speed = defaultSpeed
	}
	if c.Conversion.FPS <= 0 {
		c.Conversion.FPS = defaultFPS
	}
	if c.Proxy.RatePerSecond <= 0 {
		c.Proxy.RatePerSecond = defaultProxyRatePerSecond
	}
	if c.Proxy.RateBurst <= 0 {
		c.Proxy.RateBurst = defaultProxyRateBurst
	}
	if c.Proxy.RequestTimeout <= 0 {
		c.Proxy.RequestTimeout = defaultProxyRequestTimeout
	}
	return nil
}

// Validate rejects configurations the daemon and CLI cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if _, err := url.Parse(c.Backend.BaseURL); err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if _, ok := allowedTones[c.Conversion.ToneOfVoice]; !ok {
		return fmt.Errorf("conversion.tone_of_voice: unsupported value %q", c.Conversion.ToneOfVoice)
	}
	if _, ok := allowedResolutions[c.Conversion.Resolution]; !ok {
		return fmt.Errorf("conversion.resolution: unsupported value %q", c.Conversion.Resolution)
	}
	if _, ok := allowedFormats[c.Conversion.OutputFormat]; !ok {
		return fmt.Errorf("conversion.output_format: unsupported value %q", c.Conversion.OutputFormat)
	}
	if c.Conversion.Speed < 0.5 || c.Conversion.Speed > 2.0 {
		return fmt.Errorf("conversion.speed: %v outside the 0.5-2.0 range", c.Conversion.Speed)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
