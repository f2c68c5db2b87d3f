package mcap

import (
	"io"
	"testing"

	"github.com/foxglove/mcap/go/mcap"
	"github.com/stretchr/testify/require"
)

// TestSchema is a schema to be written by WriteFile.
type TestSchema struct {
	Name     string
	Encoding string
	Data     string
}

// WriteFile writes an MCAP file with one schema, one channel and count
// messages per supplied schema. Topics are named after the schemas.
func WriteFile(t *testing.T, w io.Writer, schemas []TestSchema, count int) {
	t.Helper()
	writer, err := NewWriter(w)
	require.NoError(t, err)
	require.NoError(t, writer.WriteHeader(&mcap.Header{Profile: "ros1"}))
	for i, schema := range schemas {
		id := uint16(i + 1)
		require.NoError(t, writer.WriteSchema(&mcap.Schema{
			ID:       id,
			Name:     schema.Name,
			Encoding: schema.Encoding,
			Data:     []byte(schema.Data),
		}))
		require.NoError(t, writer.WriteChannel(&mcap.Channel{
			ID:              id,
			SchemaID:        id,
			Topic:           "/" + schema.Name,
			MessageEncoding: "ros1",
		}))
	}
	for j := 0; j < count; j++ {
		for i := range schemas {
			require.NoError(t, writer.WriteMessage(&mcap.Message{
				ChannelID: uint16(i + 1),
				Sequence:  uint32(j),
				LogTime:   uint64(j),
				Data:      []byte{},
			}))
		}
	}
	require.NoError(t, writer.Close())
}
