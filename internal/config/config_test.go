package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-harvest/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func Test_Load_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.ImageBaseURL)
	assert.Equal(t, "", cfg.VideoBaseURL)
	assert.Equal(t, "downloads", cfg.OutputDir)
	assert.Equal(t, config.DownloaderHTTP, cfg.Downloader)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.Timeout())
	assert.False(t, cfg.SkipExisting)
	assert.Equal(t, config.DefaultHeaders, cfg.Headers)
}

func Test_Load_EmptyPathUsesEnvironment(t *testing.T) {
	t.Setenv("HARVEST_IMAGE_BASE_URL", "https://img.example.com")
	t.Setenv("HARVEST_PARALLELISM", "4")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com", cfg.ImageBaseURL)
	assert.Equal(t, 4, cfg.Parallelism)
}

func Test_Load_FileValues(t *testing.T) {
	path := writeConfig(t, `{
		"image_base_url": "https://img.example.com",
		"video_base_url": "https://vid.example.com",
		"output_dir": "media",
		"headers": {"User-Agent": "harvest-test"},
		"parallelism": 3,
		"timeout_seconds": 30,
		"skip_existing": true,
		"playlist_file": "videos.m3u8",
		"ledger_file": "state/ledger.db",
		"log_level": "debug"
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com", cfg.ImageBaseURL)
	assert.Equal(t, "https://vid.example.com", cfg.VideoBaseURL)
	assert.Equal(t, "media", cfg.OutputDir)
	assert.Equal(t, map[string]string{"User-Agent": "harvest-test"}, cfg.Headers)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.True(t, cfg.SkipExisting)
	assert.Equal(t, "videos.m3u8", cfg.PlaylistFile)
	assert.Equal(t, "state/ledger.db", cfg.LedgerFile)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func Test_Load_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"image_base_url": "https://from-file", "output_dir": "media"}`)
	t.Setenv("HARVEST_IMAGE_BASE_URL", "https://from-env")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env", cfg.ImageBaseURL)
	assert.Equal(t, "media", cfg.OutputDir)
}

func Test_Load_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"image_base_url": `)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func Test_Load_UnknownDownloader(t *testing.T) {
	path := writeConfig(t, `{"downloader": "carrier-pigeon"}`)

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func Test_Validate(t *testing.T) {
	tests := []struct {
		summary             string
		cfg                 config.Config
		shouldErr           bool
		expectedParallelism int
	}{
		{"defaults", config.Config{OutputDir: "d", Downloader: "http", Parallelism: 1}, false, 1},
		{"parallelism raised to one", config.Config{OutputDir: "d", Downloader: "http", Parallelism: 0}, false, 1},
		{"parallelism clamped", config.Config{OutputDir: "d", Downloader: "http", Parallelism: 500}, false, config.MaxParallelism},
		{"negative timeout", config.Config{OutputDir: "d", Downloader: "http", Parallelism: 1, TimeoutSeconds: -1}, true, 1},
		{"aria2 without rpc url", config.Config{OutputDir: "d", Downloader: "aria2", Parallelism: 1}, true, 1},
		{"aria2 with rpc url", config.Config{OutputDir: "d", Downloader: "aria2", Aria2RPCUrl: "http://x", Parallelism: 1}, false, 1},
		{"empty output dir", config.Config{Downloader: "http", Parallelism: 1}, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Validate()
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedParallelism, cfg.Parallelism)
			}
		})
	}
}
