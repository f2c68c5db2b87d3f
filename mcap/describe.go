package mcap

import (
	"fmt"

	"github.com/foxglove/mcap/go/mcap"
	"github.com/wkalt/msgdef/util/ros1msg"
	"github.com/wkalt/msgdef/util/schema"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// ProtobufEncoding is the schema encoding used for protobuf file descriptor
// sets.
const ProtobufEncoding = "protobuf"

// UnsupportedEncodingError is returned when a schema's encoding cannot be
// described.
type UnsupportedEncodingError struct {
	Encoding string
}

func (e UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported schema encoding %q", e.Encoding)
}

// Is returns true if the target error is an UnsupportedEncodingError.
func (e UnsupportedEncodingError) Is(target error) bool {
	_, ok := target.(UnsupportedEncodingError)
	return ok
}

// Describe resolves a schema record into an encoding-neutral schema. ROS1
// definitions and protobuf file descriptor sets are supported.
func Describe(record *mcap.Schema) (*schema.Schema, error) {
	switch record.Encoding {
	case ROS1MsgEncoding:
		seq, err := ros1msg.ParseMessageDefinition(record.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", record.Name, err)
		}
		s, err := ros1msg.ToSchema(record.Name, seq)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", record.Name, err)
		}
		return s, nil
	case ProtobufEncoding:
		return describeProtobuf(record)
	default:
		return nil, UnsupportedEncodingError{record.Encoding}
	}
}

func describeProtobuf(record *mcap.Schema) (*schema.Schema, error) {
	fileDescriptorSet := &descriptorpb.FileDescriptorSet{}
	if err := proto.Unmarshal(record.Data, fileDescriptorSet); err != nil {
		return nil, fmt.Errorf("failed to build file descriptor set: %w", err)
	}
	files, err := protodesc.FileOptions{}.NewFiles(fileDescriptorSet)
	if err != nil {
		return nil, fmt.Errorf("failed to create file descriptor: %w", err)
	}
	descriptor, err := files.FindDescriptorByName(protoreflect.FullName(record.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to find descriptor: %w", err)
	}
	messageDescriptor, ok := descriptor.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%s is not a message", record.Name)
	}
	return &schema.Schema{
		Name:   record.Name,
		Fields: protobufFields(messageDescriptor, map[protoreflect.FullName]bool{}),
	}, nil
}

// protobufFields converts message fields. Recursive messages are cut off
// at the first repetition, where they appear as records with no fields.
func protobufFields(
	md protoreflect.MessageDescriptor,
	inProgress map[protoreflect.FullName]bool,
) []schema.Field {
	if inProgress[md.FullName()] {
		return nil
	}
	inProgress[md.FullName()] = true
	defer delete(inProgress, md.FullName())
	descriptors := md.Fields()
	fields := make([]schema.Field, 0, descriptors.Len())
	for i := 0; i < descriptors.Len(); i++ {
		fd := descriptors.Get(i)
		typ := protobufType(fd, inProgress)
		if fd.Cardinality() == protoreflect.Repeated {
			items := typ
			typ = schema.Type{Array: true, Items: &items}
		}
		fields = append(fields, schema.Field{Name: string(fd.Name()), Type: typ})
	}
	return fields
}

func protobufType(fd protoreflect.FieldDescriptor, inProgress map[protoreflect.FullName]bool) schema.Type {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return schema.Type{Primitive: schema.BOOL}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind, protoreflect.EnumKind:
		return schema.Type{Primitive: schema.INT32}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return schema.Type{Primitive: schema.INT64}
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return schema.Type{Primitive: schema.UINT32}
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return schema.Type{Primitive: schema.UINT64}
	case protoreflect.FloatKind:
		return schema.Type{Primitive: schema.FLOAT32}
	case protoreflect.DoubleKind:
		return schema.Type{Primitive: schema.FLOAT64}
	case protoreflect.StringKind:
		return schema.Type{Primitive: schema.STRING}
	case protoreflect.BytesKind:
		return schema.Type{Array: true, Items: &schema.Type{Primitive: schema.BYTE}}
	default: // message or group
		return schema.Type{Record: true, Fields: protobufFields(fd.Message(), inProgress)}
	}
}
