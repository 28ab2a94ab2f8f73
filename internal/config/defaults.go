package config

const (
	defaultConfigPath           = "~/.config/nudge/config.toml"
	defaultDataDir              = "~/.local/share/nudge"
	defaultEnvFile              = "config.env"
	defaultProjectName          = "Tesphase"
	defaultProjectDescription   = "a renewable energy startup"
	defaultSMTPHost             = "smtp.gmail.com"
	defaultSMTPPort             = 587
	defaultEmailTimeoutSeconds  = 30
	defaultMorningTime          = "08:00"
	defaultMiddayTime           = "14:00"
	defaultEveningTime          = "18:00"
	defaultPollIntervalSeconds  = 60
	defaultVideoWidth           = 1280
	defaultVideoHeight          = 720
	defaultVideoFPS             = 30
	defaultVideoDurationSeconds = 15
	defaultVideoFontSize        = 40
	defaultVideoCodec           = "libx264"
	defaultVideoTimeoutSeconds  = 300
	defaultSpeechBinary         = "espeak-ng"
	defaultSpeechRate           = 150
	defaultSpeechVolume         = 0.9
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultProgressFileName     = "progress.json"
	defaultVideosDirName        = "videos"
	defaultAudioDirName         = "audio"
	defaultImagesDirName        = "images"
	defaultLogDirName           = "logs"
	defaultStateDirName         = "state"
)

// Default returns a Config populated with repository defaults. Directory
// fields left empty are derived from paths.data_dir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			EnvFile: defaultEnvFile,
		},
		Project: Project{
			Name:        defaultProjectName,
			Description: defaultProjectDescription,
		},
		Email: Email{
			SMTPHost:       defaultSMTPHost,
			SMTPPort:       defaultSMTPPort,
			TimeoutSeconds: defaultEmailTimeoutSeconds,
		},
		Schedule: Schedule{
			Morning: defaultMorningTime,
			Midday:  defaultMiddayTime,
			Evening: defaultEveningTime,
		},
		Scheduler: Scheduler{
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Video: Video{
			Enabled:         true,
			Width:           defaultVideoWidth,
			Height:          defaultVideoHeight,
			FPS:             defaultVideoFPS,
			DurationSeconds: defaultVideoDurationSeconds,
			FontSize:        defaultVideoFontSize,
			Codec:           defaultVideoCodec,
			TimeoutSeconds:  defaultVideoTimeoutSeconds,
		},
		Speech: Speech{
			Enabled: true,
			Binary:  defaultSpeechBinary,
			Rate:    defaultSpeechRate,
			Volume:  defaultSpeechVolume,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
