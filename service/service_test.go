package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/service"
	"github.com/wkalt/msgdef/storage"
	"github.com/wkalt/msgdef/util/testutils"
)

func TestStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	port, err := testutils.GetOpenPort()
	require.NoError(t, err)
	root := t.TempDir()
	testutils.WriteFiles(t, root, testutils.CommonMessages())

	done := make(chan error, 1)
	go func() {
		done <- service.NewMsgdefService().Start(ctx,
			service.WithPort(port),
			service.WithLogLevel(slog.LevelWarn),
			service.WithStorageProvider(storage.NewMemStore()),
			service.WithDatabasePath(filepath.Join(t.TempDir(), "msgdef.db")),
			service.WithMessagePaths(root),
			service.WithShutdownTimeout(time.Second),
		)
	}()

	url := fmt.Sprintf("http://localhost:%d/types/geometry_msgs/PointStamped/definition", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) // nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK &&
			strings.Contains(string(body), "c63aecb41bfdfd6b7e1fac37c7cbe7bf")
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not shut down")
	}
}

func TestStartInvalidOptions(t *testing.T) {
	ctx := context.Background()
	err := service.NewMsgdefService().Start(ctx,
		service.WithStorageProvider(storage.NewMemStore()),
		service.WithCacheSize(-1),
	)
	require.Error(t, err)

	err = service.NewMsgdefService().Start(ctx,
		service.WithStorageProvider(storage.NewMemStore()),
		service.WithMessagePaths(filepath.Join(t.TempDir(), "missing")),
	)
	require.Error(t, err)
}

func TestParseConfig(t *testing.T) {
	t.Setenv("MSGDEF_TEST_SECRET", "hunter2")
	dir := t.TempDir()
	cases := []struct {
		assertion string
		yaml      string
		check     func(t *testing.T, c *service.Config)
	}{
		{
			"full config",
			`
port: 9000
log_level: debug
log_format: json
database: /tmp/msgdef.db
cache_size: 50
message_paths: [/opt/ros/share]
package_path: /a:/b
watch: true
allowed_origins: ["*"]
shutdown_timeout: 3s
storage:
  type: s3
  s3:
    endpoint: localhost:9000
    bucket: defs
    access_key_id: admin
    secret_access_key: ${MSGDEF_TEST_SECRET}
`,
			func(t *testing.T, c *service.Config) {
				t.Helper()
				require.Equal(t, 9000, c.Port)
				require.Equal(t, "debug", c.LogLevel)
				require.Equal(t, []string{"/opt/ros/share"}, c.MessagePaths)
				require.True(t, c.Watch)
				require.Equal(t, 3*time.Second, c.ShutdownTimeout)
				require.Equal(t, "s3", c.Storage.Type)
				require.Equal(t, "hunter2", c.Storage.S3.SecretAccessKey)
			},
		},
		{
			"empty config",
			"",
			func(t *testing.T, c *service.Config) {
				t.Helper()
				require.Equal(t, service.Config{}, *c)
			},
		},
		{
			"directory storage",
			"storage:\n  type: directory\n  directory: " + dir + "\n",
			func(t *testing.T, c *service.Config) {
				t.Helper()
				provider, err := c.Storage.Provider()
				require.NoError(t, err)
				require.IsType(t, &storage.DirectoryStore{}, provider)
			},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			config, err := service.ParseConfig([]byte(c.yaml))
			require.NoError(t, err)
			c.check(t, config)
			_, err = config.Options()
			require.NoError(t, err)
		})
	}
}

func TestConfigErrors(t *testing.T) {
	cases := []struct {
		assertion string
		yaml      string
	}{
		{"invalid log level", "log_level: loud\n"},
		{"unknown storage", "storage:\n  type: tape\n"},
		{"directory without path", "storage:\n  type: directory\n"},
		{"s3 without bucket", "storage:\n  type: s3\n  s3:\n    endpoint: localhost:9000\n"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			config, err := service.ParseConfig([]byte(c.yaml))
			require.NoError(t, err)
			_, err = config.Options()
			require.Error(t, err)
		})
	}
	_, err := service.ParseConfig([]byte("port: [1, 2]\n"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msgdef.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 1234\n"), 0600))
	config, err := service.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 1234, config.Port)

	_, err = service.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
