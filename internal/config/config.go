package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig         *AppConfig
	BrowserConfig     *BrowserConfig
	InteractionConfig *InteractionConfig
	SecurityConfig    *SecurityConfig
	ServerConfig      *ServerConfig
}

type AppConfig struct {
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	Debug          bool   `envconfig:"DEBUG" default:"false"`
	LogFile        string `envconfig:"LOG_FILE"`
	LogMaxSizeMB   int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups  int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	LogMaxAgeDays  int    `envconfig:"LOG_MAX_AGE_DAYS" default:"14"`
	TracingEnabled bool   `envconfig:"TRACING_ENABLED" default:"false"`
}

type BrowserConfig struct {
	Headless    bool   `envconfig:"BROWSER_HEADLESS" default:"false"`
	SlowMo      int    `envconfig:"BROWSER_SLOW_MO" default:"100"`
	Timeout     int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	UserDataDir string `envconfig:"BROWSER_USER_DATA_DIR"`
	StartURL    string `envconfig:"BROWSER_START_URL"`
}

type InteractionConfig struct {
	TimeoutPerFrameMs   int `envconfig:"INTERACTION_TIMEOUT_PER_FRAME_MS" default:"10000"`
	FrameWaitTimeoutMs  int `envconfig:"FRAME_WAIT_TIMEOUT_MS" default:"5000"`
	FramePollIntervalMs int `envconfig:"FRAME_POLL_INTERVAL_MS" default:"500"`
	ElementListLimit    int `envconfig:"ELEMENT_LIST_LIMIT" default:"100"`
}

type SecurityConfig struct {
	ConfidenceThreshold float64 `envconfig:"SECURITY_CONFIDENCE_THRESHOLD" default:"0.5"`
	PatternsFile        string  `envconfig:"SECURITY_PATTERNS_FILE"`
	ConfirmMode         string  `envconfig:"SECURITY_CONFIRM_MODE" default:"prompt"`
}

type ServerConfig struct {
	Transport string `envconfig:"MCP_TRANSPORT" default:"stdio"`
	Port      int    `envconfig:"MCP_PORT" default:"8931"`
}

const (
	ConfirmModePrompt = "prompt"
	ConfirmModeDeny   = "deny"
)

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &conf, nil
}

// Default returns the configuration produced by an empty environment.
func Default() *Config {
	return &Config{
		AppConfig:     &AppConfig{LogLevel: "info", LogMaxSizeMB: 50, LogMaxBackups: 3, LogMaxAgeDays: 14},
		BrowserConfig: &BrowserConfig{SlowMo: 100, Timeout: 30000},
		InteractionConfig: &InteractionConfig{
			TimeoutPerFrameMs:   10000,
			FrameWaitTimeoutMs:  5000,
			FramePollIntervalMs: 500,
			ElementListLimit:    100,
		},
		SecurityConfig: &SecurityConfig{ConfidenceThreshold: 0.5, ConfirmMode: ConfirmModePrompt},
		ServerConfig:   &ServerConfig{Transport: "stdio", Port: 8931},
	}
}

func (c *Config) Validate() error {
	var errs []error

	ic := c.InteractionConfig
	if ic.TimeoutPerFrameMs <= 0 {
		errs = append(errs, errors.New("INTERACTION_TIMEOUT_PER_FRAME_MS must be positive"))
	}

	if ic.FrameWaitTimeoutMs <= 0 {
		errs = append(errs, errors.New("FRAME_WAIT_TIMEOUT_MS must be positive"))
	}

	if ic.FramePollIntervalMs <= 0 {
		errs = append(errs, errors.New("FRAME_POLL_INTERVAL_MS must be positive"))
	}

	if ic.ElementListLimit <= 0 {
		errs = append(errs, errors.New("ELEMENT_LIST_LIMIT must be positive"))
	}

	if t := c.SecurityConfig.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("SECURITY_CONFIDENCE_THRESHOLD must be within [0,1], got %v", t))
	}

	switch c.SecurityConfig.ConfirmMode {
	case ConfirmModePrompt, ConfirmModeDeny:
	default:
		errs = append(errs, fmt.Errorf("SECURITY_CONFIRM_MODE must be %q or %q", ConfirmModePrompt, ConfirmModeDeny))
	}

	return errors.Join(errs...)
}

func (ic *InteractionConfig) TimeoutPerFrame() time.Duration {
	return time.Duration(ic.TimeoutPerFrameMs) * time.Millisecond
}

func (ic *InteractionConfig) FrameWaitTimeout() time.Duration {
	return time.Duration(ic.FrameWaitTimeoutMs) * time.Millisecond
}

func (ic *InteractionConfig) FramePollInterval() time.Duration {
	return time.Duration(ic.FramePollIntervalMs) * time.Millisecond
}
