package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ConfigPathEnvVar names a config file used when no .env sits next to
	// the executable.
	ConfigPathEnvVar = "SCREEN_CAPPER"

	DefaultCaptureHideDelay = 100 * time.Millisecond
)

type LoadOptions struct {
	OutputDirOverride   string
	SessionNameOverride string
	RegionOverride      string
	ForceFileLogging    bool
}

type Config struct {
	OutputDir         string
	EnableFileLogging bool
	CopyToClipboard   bool
	// SessionName, when set, starts the first session without prompting.
	SessionName string
	// Region, when set, is installed as a locked selection at startup
	// ("x,y,w,h" in global pixels).
	Region           string
	CaptureHideDelay time.Duration
	EnvPath          string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, SCREEN_CAPPER env var as a path to a config file
	// Values already in the environment win over the file.
	envPath := resolveEnvPath()
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
	}

	delay := DefaultCaptureHideDelay
	if v := strings.TrimSpace(os.Getenv("CAPTURE_HIDE_DELAY_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("CAPTURE_HIDE_DELAY_MS must be a non-negative integer, got %q", v)
		}
		delay = time.Duration(n) * time.Millisecond
	}

	cfg := &Config{
		OutputDir:         firstNonEmpty(opts.OutputDirOverride, os.Getenv("OUTPUT_DIR"), "."),
		EnableFileLogging: opts.ForceFileLogging || parseBool(os.Getenv("ENABLE_FILE_LOGGING")),
		CopyToClipboard:   parseBool(os.Getenv("COPY_TO_CLIPBOARD")),
		SessionName:       firstNonEmpty(opts.SessionNameOverride, os.Getenv("SESSION_NAME")),
		Region:            firstNonEmpty(opts.RegionOverride, os.Getenv("REGION")),
		CaptureHideDelay:  delay,
		EnvPath:           envPath,
	}
	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
