package mcap

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/foxglove/mcap/go/mcap"
)

/*
Helpers for MCAP files. Recordings made with ROS1 tooling carry one schema
record per message type, whose data is the concatenated definition text. We
read those records with the MCAP lexer rather than the indexed reader, so that
schemas can be pulled from unindexed or truncated files and from non-seekable
streams such as HTTP bodies.
*/

////////////////////////////////////////////////////////////////////////////////

const megabyte = 1024 * 1024

// ROS1MsgEncoding is the schema encoding used for ROS1 message definitions.
const ROS1MsgEncoding = "ros1msg"

// NewWriter returns a chunked, zstd-compressed MCAP writer.
func NewWriter(w io.Writer) (*mcap.Writer, error) {
	writer, err := mcap.NewWriter(w, &mcap.WriterOptions{
		IncludeCRC:  true,
		Chunked:     true,
		ChunkSize:   4 * megabyte,
		Compression: "zstd",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build writer: %w", err)
	}
	return writer, nil
}

// NewReader returns an indexed MCAP reader.
func NewReader(r io.ReadSeeker) (*mcap.Reader, error) {
	reader, err := mcap.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to build reader: %w", err)
	}
	return reader, nil
}

// Schemas returns the distinct schema records in r, in the order they are
// first encountered. Schemas with an empty name or ID zero are skipped.
func Schemas(r io.Reader) ([]*mcap.Schema, error) {
	lexer, err := mcap.NewLexer(r)
	if err != nil {
		return nil, fmt.Errorf("failed to construct lexer: %w", err)
	}
	seen := map[uint16]bool{}
	schemas := []*mcap.Schema{}
	for {
		// Parsed schemas alias the token buffer, so it is not reused.
		token, data, err := lexer.Next(nil)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return schemas, nil
			}
			return nil, fmt.Errorf("failed to read next token: %w", err)
		}
		switch token {
		case mcap.TokenSchema:
			schema, err := mcap.ParseSchema(data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse schema: %w", err)
			}
			if schema.ID == 0 || schema.Name == "" || seen[schema.ID] {
				continue
			}
			seen[schema.ID] = true
			schemas = append(schemas, schema)
		case mcap.TokenFooter:
			return schemas, nil
		}
	}
}

// ROS1Schemas filters schemas down to those encoded as ROS1 message
// definitions.
func ROS1Schemas(schemas []*mcap.Schema) []*mcap.Schema {
	result := []*mcap.Schema{}
	for _, schema := range schemas {
		if schema.Encoding == ROS1MsgEncoding {
			result = append(result, schema)
		}
	}
	return result
}

// Topic is a channel and the name of the schema it carries.
type Topic struct {
	Topic        string
	SchemaName   string
	MessageCount uint64
}

// Topics summarizes the channels of an indexed MCAP file, in channel ID order.
func Topics(r io.ReadSeeker) ([]Topic, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	info, err := reader.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read info: %w", err)
	}
	ids := make([]uint16, 0, len(info.Channels))
	for id := range info.Channels {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	topics := make([]Topic, 0, len(ids))
	for _, id := range ids {
		channel := info.Channels[id]
		topic := Topic{Topic: channel.Topic}
		if schema, ok := info.Schemas[channel.SchemaID]; ok && schema != nil {
			topic.SchemaName = schema.Name
		}
		if info.Statistics != nil {
			topic.MessageCount = info.Statistics.ChannelMessageCounts[id]
		}
		topics = append(topics, topic)
	}
	return topics, nil
}
