package config

const (
	defaultStagingDir     = "~/.local/share/creatorpack/staging"
	defaultExportDir      = "~/exports"
	defaultLogDir         = "~/.local/share/creatorpack/logs"
	defaultInboxDir       = ""
	defaultBlockNcNd      = true
	defaultRequestTimeout = 15
	defaultTargetMinutes  = 10
	defaultAlignment      = "sentence"
	defaultTopK           = 3
	defaultMinSeconds     = 20.0
	defaultMaxSeconds     = 75.0
	defaultPaddingSeconds = 1.5
	defaultStrategy       = "leading"
	defaultWhisperModel   = "small"
	defaultTemplate       = "creator-pack"
	defaultParallelism    = 1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

func defaultAllowedSources() []string {
	return []string{"pexels", "nasa", "commons", "europeana", "archive", "local"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			ExportDir:  defaultExportDir,
			LogDir:     defaultLogDir,
			InboxDir:   defaultInboxDir,
		},
		Sources: Sources{
			Allowed:        defaultAllowedSources(),
			BlockNcNd:      defaultBlockNcNd,
			RequestTimeout: defaultRequestTimeout,
		},
		Chapters: Chapters{
			TargetMinutes: defaultTargetMinutes,
			Alignment:     defaultAlignment,
			AllowSmart:    true,
		},
		Highlights: Highlights{
			Enabled:        false,
			TopK:           defaultTopK,
			MinSeconds:     defaultMinSeconds,
			MaxSeconds:     defaultMaxSeconds,
			PaddingSeconds: defaultPaddingSeconds,
			Strategy:       defaultStrategy,
		},
		Transcription: Transcription{
			Model: defaultWhisperModel,
		},
		Output: Output{
			Template: defaultTemplate,
		},
		Workflow: Workflow{
			AssetParallelism: defaultParallelism,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
