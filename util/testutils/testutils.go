package testutils

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

/*
General purpose test utilitites.
*/

////////////////////////////////////////////////////////////////////////////////

// GetOpenPort returns an open port that can be used for testing.
func GetOpenPort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("failed to get open port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// WriteFiles creates the supplied files, keyed by slash-separated path
// relative to root, creating directories as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

// CommonMessages is a small ROS package tree in the <package>/msg/<Type>.msg
// layout, suitable for WriteFiles.
func CommonMessages() map[string]string {
	return map[string]string{
		"std_msgs/msg/Header.msg": "# Standard metadata\nuint32 seq\ntime stamp\nstring frame_id\n",
		"std_msgs/msg/String.msg": "string data\n",
		"geometry_msgs/msg/Point.msg": "# A point in free space\n" +
			"float64 x\nfloat64 y\nfloat64 z\n",
		"geometry_msgs/msg/Quaternion.msg": "float64 x\nfloat64 y\nfloat64 z\nfloat64 w\n",
		"geometry_msgs/msg/Pose.msg":       "Point position\nQuaternion orientation\n",
		"geometry_msgs/msg/PointStamped.msg": "Header header\nPoint point\n",
	}
}
