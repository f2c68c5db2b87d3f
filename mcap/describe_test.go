package mcap_test

import (
	"bytes"
	"testing"

	fmcap "github.com/foxglove/mcap/go/mcap"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/mcap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

func protoField(
	name string,
	number int32,
	typ descriptorpb.FieldDescriptorProto_Type,
	label descriptorpb.FieldDescriptorProto_Label,
	typeName string,
) *descriptorpb.FieldDescriptorProto {
	field := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Type:   typ.Enum(),
		Label:  label.Enum(),
	}
	if typeName != "" {
		field.TypeName = proto.String(typeName)
	}
	return field
}

func pathDescriptorSet(t *testing.T) []byte {
	t.Helper()
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	set := &descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			{
				Name:    proto.String("path.proto"),
				Package: proto.String("pb"),
				Syntax:  proto.String("proto3"),
				MessageType: []*descriptorpb.DescriptorProto{
					{
						Name: proto.String("Point"),
						Field: []*descriptorpb.FieldDescriptorProto{
							protoField("x", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, optional, ""),
							protoField("y", 2, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE, optional, ""),
						},
					},
					{
						Name: proto.String("Path"),
						Field: []*descriptorpb.FieldDescriptorProto{
							protoField("label", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
							protoField("points", 2, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, repeated, ".pb.Point"),
							protoField("blob", 3, descriptorpb.FieldDescriptorProto_TYPE_BYTES, optional, ""),
							protoField("count", 4, descriptorpb.FieldDescriptorProto_TYPE_UINT32, optional, ""),
						},
					},
				},
			},
		},
	}
	data, err := proto.Marshal(set)
	require.NoError(t, err)
	return data
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		assertion string
		record    *fmcap.Schema
		expected  string
	}{
		{
			"ros1msg",
			&fmcap.Schema{
				Name:     "pkg/Path",
				Encoding: "ros1msg",
				Data: []byte("string label\nPoint[] points\n" +
					"================================================================================\n" +
					"MSG: pkg/Point\nfloat64 x\nfloat64 y\n"),
			},
			"pkg/Path\n  label: string\n  points: record[]\n    x: float64\n    y: float64\n",
		},
		{
			"protobuf",
			&fmcap.Schema{Name: "pb.Path", Encoding: "protobuf", Data: pathDescriptorSet(t)},
			"pb.Path\n  label: string\n  points: record[]\n    x: float64\n    y: float64\n" +
				"  blob: byte[]\n  count: uint32\n",
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			s, err := mcap.Describe(c.record)
			require.NoError(t, err)
			buf := &bytes.Buffer{}
			require.NoError(t, s.Fprint(buf))
			require.Equal(t, c.expected, buf.String())
		})
	}
}

func TestDescribeErrors(t *testing.T) {
	cases := []struct {
		assertion string
		record    *fmcap.Schema
	}{
		{
			"unsupported encoding",
			&fmcap.Schema{Name: "thing", Encoding: "jsonschema", Data: []byte("{}")},
		},
		{
			"invalid descriptor set",
			&fmcap.Schema{Name: "pb.Path", Encoding: "protobuf", Data: []byte{0xff}},
		},
		{
			"unknown protobuf message",
			&fmcap.Schema{Name: "pb.Missing", Encoding: "protobuf", Data: pathDescriptorSet(t)},
		},
		{
			"unresolvable ros1msg",
			&fmcap.Schema{Name: "pkg/A", Encoding: "ros1msg", Data: []byte("Missing m\n")},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			_, err := mcap.Describe(c.record)
			require.Error(t, err)
		})
	}
	_, err := mcap.Describe(&fmcap.Schema{Encoding: "jsonschema"})
	require.ErrorIs(t, err, mcap.UnsupportedEncodingError{})
}
