package config

const (
	defaultWorkDir            = "~/.local/share/clipper/work"
	defaultLogDir             = "~/.local/share/clipper/logs"
	defaultAPIBind            = "127.0.0.1:7910"
	defaultTable              = "video_projects"
	defaultBucket             = "videos"
	defaultStorageBackend     = "supabase"
	defaultS3Prefix           = "processed"
	defaultNoiseThreshold     = "-30dB"
	defaultMinSilenceDuration = 0.5
	defaultSilencePadding     = 0.1
	defaultWhisperModel       = "base"
	defaultWhisperBinary      = "whisper"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultBilingualSource    = "mn"
	defaultMaxConcurrentJobs  = 2
	defaultDownloadTimeout    = 300
	defaultSilenceTimeout     = 1800
	defaultCaptionTimeout     = 3600
	defaultUploadTimeout      = 300
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Supabase: Supabase{
			Table:  defaultTable,
			Bucket: defaultBucket,
		},
		Storage: Storage{
			Backend:  defaultStorageBackend,
			S3Prefix: defaultS3Prefix,
		},
		Processing: Processing{
			NoiseThreshold:     defaultNoiseThreshold,
			MinSilenceDuration: defaultMinSilenceDuration,
			SilencePadding:     defaultSilencePadding,
			WhisperModel:       defaultWhisperModel,
			WhisperBinary:      defaultWhisperBinary,
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			BilingualSource:    defaultBilingualSource,
		},
		Workflow: Workflow{
			MaxConcurrentJobs: defaultMaxConcurrentJobs,
			DownloadTimeout:   defaultDownloadTimeout,
			SilenceTimeout:    defaultSilenceTimeout,
			CaptionTimeout:    defaultCaptionTimeout,
			UploadTimeout:     defaultUploadTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
