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

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Supabase contains the record store and default upload target credentials.
// URL and ServiceRoleKey are usually supplied through the environment
// (SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY) rather than the config file.
type Supabase struct {
	URL            string `toml:"url"`
	ServiceRoleKey string `toml:"service_role_key"`
	Table          string `toml:"table"`
	Bucket         string `toml:"bucket"`
}

// Storage backend selectors.
const (
	StorageBackendSupabase = "supabase"
	StorageBackendS3       = "s3"
)

// Storage selects where trimmed media is uploaded.
type Storage struct {
	Backend  string `toml:"backend"` // "supabase" or "s3"
	S3Bucket string `toml:"s3_bucket"`
	S3Region string `toml:"s3_region"`
	S3Prefix string `toml:"s3_prefix"`
}

// Processing contains defaults for the media tools invoked per job.
type Processing struct {
	NoiseThreshold     string  `toml:"noise_threshold"`
	MinSilenceDuration float64 `toml:"min_silence_duration"`
	SilencePadding     float64 `toml:"silence_padding"`
	WhisperModel       string  `toml:"whisper_model"`
	WhisperBinary      string  `toml:"whisper_binary"`
	FFmpegBinary       string  `toml:"ffmpeg_binary"`
	FFprobeBinary      string  `toml:"ffprobe_binary"`
	// BilingualSource is the spoken language that triggers an additional
	// English translation track.
	BilingualSource string `toml:"bilingual_source_language"`
}

// Workflow contains concurrency and per-stage timeout settings, in seconds.
type Workflow struct {
	MaxConcurrentJobs int `toml:"max_concurrent_jobs"`
	DownloadTimeout   int `toml:"download_timeout"`
	SilenceTimeout    int `toml:"silence_timeout"`
	CaptionTimeout    int `toml:"caption_timeout"`
	UploadTimeout     int `toml:"upload_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipper.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Supabase   Supabase   `toml:"supabase"`
	Storage    Storage    `toml:"storage"`
	Processing Processing `toml:"processing"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipper/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and environment credentials applied. A .env file
// in the working directory is honored for Supabase and AWS credentials.
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

	// Best-effort: a missing .env is the common case.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv() {
	if value := strings.TrimSpace(os.Getenv("SUPABASE_URL")); value != "" {
		c.Supabase.URL = value
	}
	if value := strings.TrimSpace(os.Getenv("SUPABASE_SERVICE_ROLE_KEY")); value != "" {
		c.Supabase.ServiceRoleKey = value
	}
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipper.toml")
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

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.WorkDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Supabase.URL = strings.TrimRight(strings.TrimSpace(c.Supabase.URL), "/")
	c.Supabase.ServiceRoleKey = strings.TrimSpace(c.Supabase.ServiceRoleKey)
	c.Supabase.Table = strings.TrimSpace(c.Supabase.Table)
	c.Supabase.Bucket = strings.TrimSpace(c.Supabase.Bucket)
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Processing.NoiseThreshold = strings.TrimSpace(c.Processing.NoiseThreshold)
	c.Processing.WhisperModel = strings.ToLower(strings.TrimSpace(c.Processing.WhisperModel))
	c.Processing.BilingualSource = strings.ToLower(strings.TrimSpace(c.Processing.BilingualSource))
	return nil
}

// EnsureDirectories creates the work and log directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
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
