package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/client/msgdef/client"
	"github.com/wkalt/msgdef/routes"
	"github.com/wkalt/msgdef/util/ros1msg"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	url, teardown := routes.MakeTestRoutes(ctx, t)
	defer teardown()
	c := client.New(url)

	t.Run("decode and encode", func(t *testing.T) {
		seq, err := c.Decode(ctx, "uint8 A=1 # note\nint32 x\n", true)
		require.NoError(t, err)
		require.Equal(t, ros1msg.Sequence{{Definitions: []ros1msg.FieldDefinition{
			{Type: "uint8", Name: "A", IsConstant: true, Value: "1"},
			{Type: "int32", Name: "x"},
		}}}, seq)
		text, err := c.Encode(ctx, seq)
		require.NoError(t, err)
		require.Equal(t, "uint8 A = 1\n\nint32 x\n", text)
	})

	t.Run("strict decode reports the offending line", func(t *testing.T) {
		_, err := c.Decode(ctx, "string data\nint32\n", false)
		apiErr := client.APIError{}
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, 400, apiErr.StatusCode)
		require.Equal(t, `line 2: "int32"`, apiErr.Detail())
	})

	t.Run("md5sum", func(t *testing.T) {
		sum, err := c.MD5Sum(ctx, "std_msgs/String", "string data\n")
		require.NoError(t, err)
		require.Equal(t, "992ce8a1687cec8c8bd883ec73ca41d1", sum)
	})

	t.Run("types and definitions", func(t *testing.T) {
		names, err := c.Types(ctx)
		require.NoError(t, err)
		require.Contains(t, names, "geometry_msgs/PointStamped")
		def, err := c.Definition(ctx, "geometry_msgs/PointStamped")
		require.NoError(t, err)
		require.Equal(t, "c63aecb41bfdfd6b7e1fac37c7cbe7bf", def.MD5Sum)

		_, err = c.Definition(ctx, "missing_msgs/Missing")
		apiErr := client.APIError{}
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, 404, apiErr.StatusCode)
	})

	t.Run("submission and changes", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		resp, err := c.PutDefinition(ctx, "test_msgs/Blob", "uint8[] data\n")
		require.NoError(t, err)
		require.True(t, resp.Created)

		history, err := c.History(ctx, "test_msgs/Blob")
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.Equal(t, resp.Fingerprint, history[0].Fingerprint)

		changes, err := c.Changes(ctx, before)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		require.Equal(t, "test_msgs/Blob", changes[0].Name)
	})
}
