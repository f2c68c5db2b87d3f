package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/client/msgdef/client"
	"github.com/wkalt/msgdef/routes"
)

func TestShell(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	url, teardown := routes.MakeTestRoutes(ctx, t)
	defer teardown()

	buf := &bytes.Buffer{}
	s := &shell{ctx: ctx, client: client.New(url), out: buf}

	cases := []struct {
		assertion string
		line      string
		expected  string
	}{
		{"md5", `\md5 std_msgs/String`, "992ce8a1687cec8c8bd883ec73ca41d1\n"},
		{"definition", `\def geometry_msgs/Point`, "float64 x\nfloat64 y\nfloat64 z\n"},
		{"help topic", `\h text`, shellHelp["text"] + "\n"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			buf.Reset()
			require.NoError(t, s.handleCommand(c.line))
			require.Equal(t, c.expected, buf.String())
		})
	}

	t.Run("types", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, s.handleCommand(`\types`))
		require.Contains(t, buf.String(), "geometry_msgs/PointStamped\n")
	})

	t.Run("command errors", func(t *testing.T) {
		require.Error(t, s.handleCommand(`\bogus`))
		require.Error(t, s.handleCommand(`\def`))
		require.Error(t, s.handleCommand(`\h nothing`))
		require.Error(t, s.handleCommand(`\changes yesterday`))
		err := s.handleCommand(`\def missing_msgs/Missing`)
		apiErr := client.APIError{}
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, 404, apiErr.StatusCode)
	})

	t.Run("definition text", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, s.handleText("uint8 DEBUG=1 # a constant\nint32  x\n"))
		require.Equal(t, "uint8 DEBUG = 1\n\nint32 x\n", buf.String())
	})

	t.Run("invalid definition text", func(t *testing.T) {
		err := s.handleText("int32\n")
		require.Error(t, err)
		out := &bytes.Buffer{}
		printShellError(out, err)
		require.Contains(t, out.String(), "ERROR: ")
	})
}
