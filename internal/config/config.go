package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DownloaderHTTP  = "http"
	DownloaderAria2 = "aria2"

	MaxParallelism = 16
)

var DefaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

type Config struct {
	ImageBaseURL   string            `json:"image_base_url" env:"HARVEST_IMAGE_BASE_URL"`
	VideoBaseURL   string            `json:"video_base_url" env:"HARVEST_VIDEO_BASE_URL"`
	OutputDir      string            `json:"output_dir" env:"HARVEST_OUTPUT_DIR" env-default:"downloads"`
	Headers        map[string]string `json:"headers" env:"HARVEST_HEADERS"`
	Downloader     string            `json:"downloader" env:"HARVEST_DOWNLOADER" env-default:"http"`
	Aria2RPCUrl    string            `json:"aria2_rpc_url" env:"HARVEST_ARIA2_RPC_URL" env-default:"http://localhost:6800/jsonrpc"`
	Aria2Secret    string            `json:"aria2_secret" env:"HARVEST_ARIA2_SECRET"`
	Parallelism    int               `json:"parallelism" env:"HARVEST_PARALLELISM" env-default:"1"`
	TimeoutSeconds int               `json:"timeout_seconds" env:"HARVEST_TIMEOUT_SECONDS"`
	SkipExisting   bool              `json:"skip_existing" env:"HARVEST_SKIP_EXISTING"`
	PlaylistFile   string            `json:"playlist_file" env:"HARVEST_PLAYLIST_FILE"`
	LedgerFile     string            `json:"ledger_file" env:"HARVEST_LEDGER_FILE"`
	LogLevel       string            `json:"log_level" env:"HARVEST_LOG_LEVEL" env-default:"info"`
}

// Load reads the JSON config at path, then applies environment overrides
// and defaults. A missing file is not an error; the environment and
// defaults are used on their own.
func Load(path string) (Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case path != "" && statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
	case path == "" || errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load configuration from environment: %w", err)
		}
	default:
		return cfg, fmt.Errorf("configuration file %s could not be accessed: %w", path, statErr)
	}

	if len(cfg.Headers) == 0 {
		cfg.Headers = make(map[string]string, len(DefaultHeaders))
		for k, v := range DefaultHeaders {
			cfg.Headers[k] = v
		}
	}

	return cfg, cfg.Validate()
}

// Validate clamps the parallelism into range and rejects settings the
// harvester cannot act on.
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	if c.Parallelism > MaxParallelism {
		c.Parallelism = MaxParallelism
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}

	switch c.Downloader {
	case DownloaderHTTP:
	case DownloaderAria2:
		if c.Aria2RPCUrl == "" {
			return errors.New("aria2 downloader selected but aria2_rpc_url is empty")
		}
	default:
		return fmt.Errorf("unknown downloader %q (expected %q or %q)", c.Downloader, DownloaderHTTP, DownloaderAria2)
	}

	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}

	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
