package service

import (
	"log/slog"
	"time"

	"github.com/wkalt/msgdef/storage"
)

// MsgdefOption is a functional option for the msgdef service.
type MsgdefOption func(*MsgdefOptions)

// MsgdefOptions contains options for the msgdef service.
type MsgdefOptions struct {
	Port            int
	LogLevel        slog.Level
	LogFormat       string
	StorageProvider storage.Provider
	DatabasePath    string
	CacheSize       int
	MessagePaths    []string
	PackagePath     string
	Watch           bool
	AllowedOrigins  []string
	PprofAddr       string
	ShutdownTimeout time.Duration
}

// WithPort sets the port to listen on.
func WithPort(port int) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.Port = port
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level slog.Level) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.LogLevel = level
	}
}

// WithLogFormat sets the log format, either "text" or "json".
func WithLogFormat(format string) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.LogFormat = format
	}
}

// WithStorageProvider sets the storage provider for submitted definitions.
func WithStorageProvider(provider storage.Provider) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.StorageProvider = provider
	}
}

// WithDatabasePath sets the path of the sqlite catalog database.
func WithDatabasePath(path string) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.DatabasePath = path
	}
}

// WithCacheSize sets the number of definitions held in the read cache.
func WithCacheSize(size int) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.CacheSize = size
	}
}

// WithMessagePaths sets directories of .msg files to load at startup.
func WithMessagePaths(paths ...string) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.MessagePaths = append(opts.MessagePaths, paths...)
	}
}

// WithPackagePath sets a ROS_PACKAGE_PATH-style list of directories to load
// at startup.
func WithPackagePath(packagePath string) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.PackagePath = packagePath
	}
}

// WithWatch enables reloading of the message paths when files change.
func WithWatch(watch bool) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.Watch = watch
	}
}

// WithAllowedOrigins sets the origins allowed by CORS.
func WithAllowedOrigins(origins ...string) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.AllowedOrigins = origins
	}
}

// WithPprofAddr enables a pprof server on the given address.
func WithPprofAddr(addr string) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.PprofAddr = addr
	}
}

// WithShutdownTimeout sets how long open connections are given to close on
// shutdown.
func WithShutdownTimeout(timeout time.Duration) MsgdefOption {
	return func(opts *MsgdefOptions) {
		opts.ShutdownTimeout = timeout
	}
}
