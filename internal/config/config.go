// Package config provides configuration management for the Reelcut Agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8788
	DefaultLogLevel = "info"
	DefaultDataDir  = ".reelcut"

	// Environment variable names
	EnvPort     = "REELCUT_PORT"
	EnvLogLevel = "REELCUT_LOG_LEVEL"
	EnvDataDir  = "REELCUT_DATA_DIR"
	EnvHeadless = "REELCUT_HEADLESS"

	// Upload environment variable names
	EnvS3Bucket      = "REELCUT_S3_BUCKET"
	EnvS3Region      = "REELCUT_S3_REGION"
	EnvS3Prefix      = "REELCUT_S3_PREFIX"
	EnvS3AccessKey   = "REELCUT_S3_ACCESS_KEY"
	EnvS3SecretKey   = "REELCUT_S3_SECRET_KEY"
	EnvPresignExpiry = "REELCUT_PRESIGN_EXPIRY_SECONDS"

	// Tooling environment variable names
	EnvFFmpegPath = "REELCUT_FFMPEG_PATH"

	// Database filename
	DBFilename = "reelcut.db"

	// Upload defaults
	DefaultS3Region      = "us-east-1"
	DefaultS3Prefix      = "uploads/"
	DefaultPresignExpiry = 900 // seconds
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	FramesDir() string
	Headless() bool
	S3Bucket() string
	S3Region() string
	S3Prefix() string
	S3AccessKey() string
	S3SecretKey() string
	HasCredentials() bool
	PresignExpiry() time.Duration
	FFmpegPath() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	s3Bucket      string
	s3Region      string
	s3Prefix      string
	s3AccessKey   string
	s3SecretKey   string
	presignExpiry int

	ffmpegPath string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:          DefaultPort,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
		s3Region:      DefaultS3Region,
		s3Prefix:      DefaultS3Prefix,
		presignExpiry: DefaultPresignExpiry,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h == "1" || h == "true" {
		cfg.headless = true
	}

	cfg.s3Bucket = os.Getenv(EnvS3Bucket)
	if r := os.Getenv(EnvS3Region); r != "" {
		cfg.s3Region = r
	}
	if p := os.Getenv(EnvS3Prefix); p != "" {
		cfg.s3Prefix = p
	}
	cfg.s3AccessKey = os.Getenv(EnvS3AccessKey)
	cfg.s3SecretKey = os.Getenv(EnvS3SecretKey)

	if e := os.Getenv(EnvPresignExpiry); e != "" {
		expiry, err := strconv.Atoi(e)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPresignExpiry, err)
		}
		if expiry < 1 {
			return nil, fmt.Errorf("invalid %s: expiry must be positive", EnvPresignExpiry)
		}
		cfg.presignExpiry = expiry
	}

	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// FramesDir returns the directory for extracted preview thumbnails
func (c *EnvConfig) FramesDir() string {
	return filepath.Join(c.dataDir, "frames")
}

// Headless reports whether the system tray should be disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// S3Bucket returns the upload bucket name
func (c *EnvConfig) S3Bucket() string {
	return c.s3Bucket
}

// S3Region returns the upload bucket region
func (c *EnvConfig) S3Region() string {
	return c.s3Region
}

// S3Prefix returns the object key prefix for uploads
func (c *EnvConfig) S3Prefix() string {
	return c.s3Prefix
}

func (c *EnvConfig) S3AccessKey() string {
	return c.s3AccessKey
}

func (c *EnvConfig) S3SecretKey() string {
	return c.s3SecretKey
}

// HasCredentials reports whether static S3 credentials are configured
func (c *EnvConfig) HasCredentials() bool {
	return c.s3AccessKey != "" && c.s3SecretKey != ""
}

// PresignExpiry returns the presigned URL lifetime
func (c *EnvConfig) PresignExpiry() time.Duration {
	return time.Duration(c.presignExpiry) * time.Second
}

// FFmpegPath returns the configured ffmpeg binary path, or "ffmpeg" to
// resolve from PATH
func (c *EnvConfig) FFmpegPath() string {
	if c.ffmpegPath != "" {
		return c.ffmpegPath
	}
	return "ffmpeg"
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
