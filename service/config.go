package service

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wkalt/msgdef/storage"
	"github.com/wkalt/msgdef/util/log"
	"gopkg.in/yaml.v3"
)

/*
Service configuration may be supplied as a YAML file. Environment variables in
the file are expanded before parsing, so secrets such as S3 credentials need
not be written to disk. Unset fields keep their defaults.
*/

////////////////////////////////////////////////////////////////////////////////

// Config is the file representation of the service options.
type Config struct {
	Port            int           `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	Database        string        `yaml:"database"`
	CacheSize       int           `yaml:"cache_size"`
	MessagePaths    []string      `yaml:"message_paths"`
	PackagePath     string        `yaml:"package_path"`
	Watch           bool          `yaml:"watch"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	PprofAddr       string        `yaml:"pprof_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Storage         StorageConfig `yaml:"storage"`
}

// StorageConfig selects and configures the definition storage provider.
type StorageConfig struct {
	Type      string   `yaml:"type"` // "memory", "directory" or "s3"
	Directory string   `yaml:"directory"`
	S3        S3Config `yaml:"s3"`
}

// S3Config configures an S3-compatible storage provider.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseTLS          bool   `yaml:"use_tls"`
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// Options converts the configuration into service options. Fields left at
// their zero value produce no option.
func (c *Config) Options() ([]MsgdefOption, error) {
	opts := []MsgdefOption{}
	if c.Port != 0 {
		opts = append(opts, WithPort(c.Port))
	}
	if c.LogLevel != "" {
		level, err := log.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLogLevel(level))
	}
	if c.LogFormat != "" {
		opts = append(opts, WithLogFormat(c.LogFormat))
	}
	if c.Database != "" {
		opts = append(opts, WithDatabasePath(c.Database))
	}
	if c.CacheSize != 0 {
		opts = append(opts, WithCacheSize(c.CacheSize))
	}
	if len(c.MessagePaths) > 0 {
		opts = append(opts, WithMessagePaths(c.MessagePaths...))
	}
	if c.PackagePath != "" {
		opts = append(opts, WithPackagePath(c.PackagePath))
	}
	if c.Watch {
		opts = append(opts, WithWatch(true))
	}
	if len(c.AllowedOrigins) > 0 {
		opts = append(opts, WithAllowedOrigins(c.AllowedOrigins...))
	}
	if c.PprofAddr != "" {
		opts = append(opts, WithPprofAddr(c.PprofAddr))
	}
	if c.ShutdownTimeout != 0 {
		opts = append(opts, WithShutdownTimeout(c.ShutdownTimeout))
	}
	provider, err := c.Storage.Provider()
	if err != nil {
		return nil, err
	}
	if provider != nil {
		opts = append(opts, WithStorageProvider(provider))
	}
	return opts, nil
}

// Provider builds the configured storage provider. It returns nil if no
// storage type is configured.
func (c StorageConfig) Provider() (storage.Provider, error) {
	switch c.Type {
	case "":
		return nil, nil
	case "memory":
		return storage.NewMemStore(), nil
	case "directory":
		if c.Directory == "" {
			return nil, errors.New("directory storage requires a directory")
		}
		return storage.NewDirectoryStore(c.Directory)
	case "s3":
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return nil, errors.New("s3 storage requires an endpoint and bucket")
		}
		mc, err := minio.New(c.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.S3.AccessKeyID, c.S3.SecretAccessKey, ""),
			Secure: c.S3.UseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return storage.NewS3Store(mc, c.S3.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", c.Type)
	}
}
