package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file locations.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	VideosDir    string `toml:"videos_dir"`
	AudioDir     string `toml:"audio_dir"`
	ImagesDir    string `toml:"images_dir"`
	LogDir       string `toml:"log_dir"`
	StateDir     string `toml:"state_dir"`
	ProgressFile string `toml:"progress_file"`
	EnvFile      string `toml:"env_file"`
}

// Project describes the venture the reminders are about.
type Project struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Email contains SMTP delivery settings. Empty credentials are not a load
// error; dispatch reports them when a send is attempted.
type Email struct {
	Sender         string `toml:"sender"`
	Password       string `toml:"password"`
	Recipient      string `toml:"recipient"`
	SMTPHost       string `toml:"smtp_host"`
	SMTPPort       int    `toml:"smtp_port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Schedule holds the local wall-clock times of the daily jobs (HH:MM).
type Schedule struct {
	Morning string `toml:"morning"`
	Midday  string `toml:"midday"`
	Evening string `toml:"evening"`
}

// Scheduler contains loop timing.
type Scheduler struct {
	PollIntervalSeconds int  `toml:"poll_interval_seconds"`
	CatchUpMissed       bool `toml:"catch_up_missed"`
}

// Video contains reminder video rendering settings.
type Video struct {
	Enabled         bool   `toml:"enabled"`
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	FPS             int    `toml:"fps"`
	DurationSeconds int    `toml:"duration_seconds"`
	FontPath        string `toml:"font_path"`
	FontSize        int    `toml:"font_size"`
	Codec           string `toml:"codec"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Speech contains text-to-speech settings for narration.
type Speech struct {
	Enabled bool    `toml:"enabled"`
	Binary  string  `toml:"binary"`
	Voice   string  `toml:"voice"`
	Rate    int     `toml:"rate"`
	Volume  float64 `toml:"volume"`
}

// Compose contains message composition settings.
type Compose struct {
	MessagesFile string `toml:"messages_file"`
	Seed         int64  `toml:"seed"`
}

// Notifications contains configuration for optional ntfy push mirrors.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Metrics contains the optional Prometheus listener address.
type Metrics struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for nudge.
//
// Configuration sections by subsystem:
//   - Paths: data, artifact, state and log locations
//   - Project: name and description woven into messages
//   - Email: SMTP sender, credential and recipient
//   - Schedule: daily job times
//   - Scheduler: poll interval and missed-job policy
//   - Video: frame rendering and encoding
//   - Speech: narration synthesis
//   - Compose: message pool overrides
//   - Notifications: ntfy push mirror
//   - Metrics: Prometheus listener
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Project       Project       `toml:"project"`
	Email         Email         `toml:"email"`
	Schedule      Schedule      `toml:"schedule"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Video         Video         `toml:"video"`
	Speech        Speech        `toml:"speech"`
	Compose       Compose       `toml:"compose"`
	Notifications Notifications `toml:"notifications"`
	Metrics       Metrics       `toml:"metrics"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Variables from the dotenv file named by
// paths.env_file are merged into the process environment before fallbacks apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadEnvFile merges KEY=value pairs into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("nudge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the artifact, state and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.VideosDir,
		c.Paths.AudioDir,
		c.Paths.ImagesDir,
		c.Paths.LogDir,
		c.Paths.StateDir,
		filepath.Dir(c.Paths.ProgressFile),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for encoding and muxing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probes.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "nudge.lock")
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// EmailConfigured reports whether sender, credential and recipient are all present.
func (c *Config) EmailConfigured() bool {
	return c.Email.Sender != "" && c.Email.Password != "" && c.Email.Recipient != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
