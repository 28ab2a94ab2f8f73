package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. Missing email credentials are
// deliberately accepted so tracker commands work without them.
func (c *Config) Validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProject() error {
	if strings.TrimSpace(c.Project.Name) == "" {
		return errors.New("project.name must be set")
	}
	return nil
}

func (c *Config) validateEmail() error {
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return errors.New("email.smtp_port must be between 1 and 65535")
	}
	if c.Email.Sender != "" && !strings.Contains(c.Email.Sender, "@") {
		return fmt.Errorf("email.sender %q is not an email address", c.Email.Sender)
	}
	if c.Email.Recipient != "" && !strings.Contains(c.Email.Recipient, "@") {
		return fmt.Errorf("email.recipient %q is not an email address", c.Email.Recipient)
	}
	return nil
}

func (c *Config) validateSchedule() error {
	for _, entry := range []struct {
		key   string
		value string
	}{
		{"schedule.morning", c.Schedule.Morning},
		{"schedule.midday", c.Schedule.Midday},
		{"schedule.evening", c.Schedule.Evening},
	} {
		if _, _, err := ParseClock(entry.value); err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
	}
	if c.Scheduler.PollIntervalSeconds <= 0 {
		return errors.New("scheduler.poll_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return errors.New("video.width and video.height must be even for yuv420p output")
	}
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	if c.Video.DurationSeconds <= 0 {
		return errors.New("video.duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSpeech() error {
	if c.Speech.Rate <= 0 {
		return errors.New("speech.rate must be positive")
	}
	if c.Speech.Volume < 0 || c.Speech.Volume > 1 {
		return errors.New("speech.volume must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

// ParseClock parses an "HH:MM" wall-clock value.
func ParseClock(value string) (int, int, error) {
	hourText, minuteText, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, 0, fmt.Errorf("time %q must use HH:MM", value)
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time %q has invalid hour", value)
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil || minute < 0 || minute > 59 || len(minuteText) != 2 {
		return 0, 0, fmt.Errorf("time %q has invalid minute", value)
	}
	return hour, minute, nil
}
