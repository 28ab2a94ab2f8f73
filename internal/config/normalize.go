package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProject()
	c.normalizeEmail()
	c.normalizeSchedule()
	c.normalizeVideo()
	c.normalizeSpeech()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.videos_dir", &c.Paths.VideosDir, defaultVideosDirName},
		{"paths.audio_dir", &c.Paths.AudioDir, defaultAudioDirName},
		{"paths.images_dir", &c.Paths.ImagesDir, defaultImagesDirName},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDirName},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDirName},
		{"paths.progress_file", &c.Paths.ProgressFile, defaultProgressFileName},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.value) == "" {
			*d.value = filepath.Join(c.Paths.DataDir, d.fallback)
		}
		if *d.value, err = expandPath(*d.value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeProject() {
	c.Project.Name = strings.TrimSpace(c.Project.Name)
	if value, ok := os.LookupEnv("STARTUP_NAME"); ok && strings.TrimSpace(value) != "" && c.Project.Name == defaultProjectName {
		c.Project.Name = strings.TrimSpace(value)
	}
	if c.Project.Name == "" {
		c.Project.Name = defaultProjectName
	}
	c.Project.Description = strings.TrimSpace(c.Project.Description)
	if value, ok := os.LookupEnv("STARTUP_DESCRIPTION"); ok && strings.TrimSpace(value) != "" && (c.Project.Description == "" || c.Project.Description == defaultProjectDescription) {
		c.Project.Description = strings.TrimSpace(value)
	}
	if c.Project.Description == "" {
		c.Project.Description = defaultProjectDescription
	}
}

func (c *Config) normalizeEmail() {
	c.Email.Sender = strings.TrimSpace(c.Email.Sender)
	if c.Email.Sender == "" {
		if value, ok := os.LookupEnv("EMAIL_SENDER"); ok {
			c.Email.Sender = strings.TrimSpace(value)
		}
	}
	if c.Email.Password == "" {
		if value, ok := os.LookupEnv("EMAIL_PASSWORD"); ok {
			c.Email.Password = value
		}
	}
	c.Email.Recipient = strings.TrimSpace(c.Email.Recipient)
	if c.Email.Recipient == "" {
		if value, ok := os.LookupEnv("EMAIL_RECIPIENT"); ok {
			c.Email.Recipient = strings.TrimSpace(value)
		}
	}
	c.Email.SMTPHost = strings.TrimSpace(c.Email.SMTPHost)
	if c.Email.SMTPHost == "" {
		c.Email.SMTPHost = defaultSMTPHost
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = defaultSMTPPort
	}
	if c.Email.TimeoutSeconds <= 0 {
		c.Email.TimeoutSeconds = defaultEmailTimeoutSeconds
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Morning = strings.TrimSpace(c.Schedule.Morning)
	if c.Schedule.Morning == "" {
		c.Schedule.Morning = defaultMorningTime
	}
	c.Schedule.Midday = strings.TrimSpace(c.Schedule.Midday)
	if c.Schedule.Midday == "" {
		c.Schedule.Midday = defaultMiddayTime
	}
	c.Schedule.Evening = strings.TrimSpace(c.Schedule.Evening)
	if c.Schedule.Evening == "" {
		c.Schedule.Evening = defaultEveningTime
	}
	if c.Scheduler.PollIntervalSeconds == 0 {
		c.Scheduler.PollIntervalSeconds = defaultPollIntervalSeconds
	}
}

func (c *Config) normalizeVideo() {
	c.Video.FontPath = strings.TrimSpace(c.Video.FontPath)
	if c.Video.FontPath != "" {
		if expanded, err := expandPath(c.Video.FontPath); err == nil {
			c.Video.FontPath = expanded
		}
	}
	c.Video.Codec = strings.TrimSpace(c.Video.Codec)
	if c.Video.Codec == "" {
		c.Video.Codec = defaultVideoCodec
	}
	if c.Video.FontSize <= 0 {
		c.Video.FontSize = defaultVideoFontSize
	}
	if c.Video.TimeoutSeconds <= 0 {
		c.Video.TimeoutSeconds = defaultVideoTimeoutSeconds
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.Binary = strings.TrimSpace(c.Speech.Binary)
	if c.Speech.Binary == "" {
		c.Speech.Binary = defaultSpeechBinary
	}
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	if c.Speech.Rate == 0 {
		c.Speech.Rate = defaultSpeechRate
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	if c.Compose.MessagesFile = strings.TrimSpace(c.Compose.MessagesFile); c.Compose.MessagesFile != "" {
		if expanded, err := expandPath(c.Compose.MessagesFile); err == nil {
			c.Compose.MessagesFile = expanded
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
