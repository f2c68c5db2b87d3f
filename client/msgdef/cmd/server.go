package cmd

import (
	"context"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
	"github.com/wkalt/msgdef/service"
	"github.com/wkalt/msgdef/storage"
	"github.com/wkalt/msgdef/util/log"
)

var (
	serverConfig          string
	serverPort            int
	serverDatabase        string
	serverCacheSize       int
	serverDataDir         string
	serverMessagePaths    []string
	serverPackagePath     string
	serverWatch           bool
	serverAllowedOrigins  []string
	serverPprofAddr       string
	serverLogFormat       string
	serverShutdownTimeout time.Duration

	serverS3Endpoint        string
	serverS3Bucket          string
	serverS3AccessKeyID     string
	serverS3SecretAccessKey string
	serverS3UseTLS          bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the msgdef server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		opts := []service.MsgdefOption{}
		if serverConfig != "" {
			config, err := service.LoadConfig(serverConfig)
			if err != nil {
				bailf("error loading config: %s", err)
			}
			opts, err = config.Options()
			if err != nil {
				bailf("error reading config: %s", err)
			}
		}

		// Flags given on the command line override the config file.
		flags := cmd.Flags()
		if flags.Changed("log-level") {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				bailf("error parsing log level: %s", err)
			}
			opts = append(opts, service.WithLogLevel(level))
		}
		if flags.Changed("port") {
			opts = append(opts, service.WithPort(serverPort))
		}
		if flags.Changed("log-format") {
			opts = append(opts, service.WithLogFormat(serverLogFormat))
		}
		if flags.Changed("database") {
			opts = append(opts, service.WithDatabasePath(serverDatabase))
		}
		if flags.Changed("cache-size") {
			opts = append(opts, service.WithCacheSize(serverCacheSize))
		}
		if flags.Changed("msg-path") {
			opts = append(opts, service.WithMessagePaths(serverMessagePaths...))
		}
		if serverPackagePath != "" {
			opts = append(opts, service.WithPackagePath(serverPackagePath))
		}
		if flags.Changed("watch") {
			opts = append(opts, service.WithWatch(serverWatch))
		}
		if flags.Changed("allowed-origins") {
			opts = append(opts, service.WithAllowedOrigins(serverAllowedOrigins...))
		}
		if serverPprofAddr != "" {
			opts = append(opts, service.WithPprofAddr(serverPprofAddr))
		}
		if flags.Changed("shutdown-timeout") {
			opts = append(opts, service.WithShutdownTimeout(serverShutdownTimeout))
		}

		switch {
		case serverS3Endpoint != "":
			mc, err := minio.New(serverS3Endpoint, &minio.Options{
				Creds:  credentials.NewStaticV4(serverS3AccessKeyID, serverS3SecretAccessKey, ""),
				Secure: serverS3UseTLS,
			})
			if err != nil {
				bailf("error creating s3 client: %s", err)
			}
			opts = append(opts, service.WithStorageProvider(storage.NewS3Store(mc, serverS3Bucket)))
		case flags.Changed("data-dir"):
			store, err := storage.NewDirectoryStore(serverDataDir)
			if err != nil {
				bailf("error creating directory store: %s", err)
			}
			opts = append(opts, service.WithStorageProvider(store))
		}

		if err := service.NewMsgdefService().Start(ctx, opts...); err != nil {
			bailf("error running server: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	flags := serverCmd.PersistentFlags()
	flags.StringVarP(&serverConfig, "config", "c", "", "YAML config file")
	flags.IntVarP(&serverPort, "port", "p", 8089, "port to listen on")
	flags.StringVarP(&serverLogFormat, "log-format", "", "text", "log format (text or json)")
	flags.StringVarP(&serverDatabase, "database", "d", "msgdef.db", "catalog database path")
	flags.IntVarP(&serverCacheSize, "cache-size", "", 1000, "number of definitions to cache")
	flags.StringVarP(&serverDataDir, "data-dir", "", "data", "definition storage directory")
	flags.StringSliceVarP(&serverMessagePaths, "msg-path", "m", nil, "directories of .msg files to load")
	flags.StringVarP(&serverPackagePath, "ros-package-path", "", os.Getenv("ROS_PACKAGE_PATH"), "ROS package path")
	flags.BoolVarP(&serverWatch, "watch", "w", false, "reload .msg files when they change")
	flags.StringSliceVarP(&serverAllowedOrigins, "allowed-origins", "", nil, "allowed CORS origins")
	flags.StringVarP(&serverPprofAddr, "pprof-addr", "", "", "address to serve pprof on")
	flags.DurationVarP(&serverShutdownTimeout, "shutdown-timeout", "", 10*time.Second, "graceful shutdown timeout")

	flags.StringVarP(&serverS3Endpoint, "s3-endpoint", "", "", "S3 endpoint; if set, definitions are stored in S3")
	flags.StringVarP(&serverS3Bucket, "s3-bucket", "", "msgdef", "S3 bucket")
	flags.StringVarP(&serverS3AccessKeyID, "s3-access-key-id", "", os.Getenv("AWS_ACCESS_KEY_ID"), "S3 access key ID")
	flags.StringVarP(&serverS3SecretAccessKey, "s3-secret-access-key", "", os.Getenv("AWS_SECRET_ACCESS_KEY"), "S3 secret access key")
	flags.BoolVarP(&serverS3UseTLS, "s3-use-tls", "", false, "use TLS for S3")
}
