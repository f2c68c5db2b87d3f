package ros1msg_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/util/ros1msg"
)

func field(typ, name string) ros1msg.FieldDefinition {
	return ros1msg.FieldDefinition{Type: typ, Name: name}
}

func array(typ, name string) ros1msg.FieldDefinition {
	return ros1msg.FieldDefinition{Type: typ, Name: name, IsArray: true}
}

func fixed(typ, name string, length int) ros1msg.FieldDefinition {
	return ros1msg.FieldDefinition{Type: typ, Name: name, IsArray: true, ArrayLength: length}
}

func constant(typ, name, value string) ros1msg.FieldDefinition {
	return ros1msg.FieldDefinition{Type: typ, Name: name, IsConstant: true, Value: value}
}

func def(name string, fields ...ros1msg.FieldDefinition) ros1msg.MsgDefinition {
	if fields == nil {
		fields = []ros1msg.FieldDefinition{}
	}
	return ros1msg.MsgDefinition{Name: name, Definitions: fields}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		assertion string
		input     ros1msg.Sequence
		expected  string
	}{
		{
			"constants and variables",
			ros1msg.Sequence{def("", constant("int32", "A", "1"), field("float64", "x"))},
			"int32 A = 1\n\nfloat64 x\n",
		},
		{
			"variable-length array",
			ros1msg.Sequence{def("", array("string", "names"))},
			"string[] names\n",
		},
		{
			"fixed-length array",
			ros1msg.Sequence{def("", fixed("float64", "covariance", 9))},
			"float64[9] covariance\n",
		},
		{
			"only constants",
			ros1msg.Sequence{def("", constant("uint8", "DEBUG", "1"), constant("uint8", "INFO", "2"))},
			"uint8 DEBUG = 1\nuint8 INFO = 2\n",
		},
		{
			"empty body",
			ros1msg.Sequence{def("")},
			"",
		},
		{
			"constants are grouped before variables",
			ros1msg.Sequence{def("",
				field("float64", "x"),
				constant("int32", "A", "1"),
				field("float64", "y"),
				constant("int32", "B", "2"),
			)},
			"int32 A = 1\nint32 B = 2\n\nfloat64 x\nfloat64 y\n",
		},
		{
			"primary name is not emitted",
			ros1msg.Sequence{def("std_msgs/String", field("string", "data"))},
			"string data\n",
		},
		{
			"constant value written verbatim",
			ros1msg.Sequence{def("", constant("string", "EXAMPLE", "a = b # not a comment"))},
			"string EXAMPLE = a = b # not a comment\n",
		},
		{
			"one dependency",
			ros1msg.Sequence{
				def("", field("geometry_msgs/Point", "position")),
				def("geometry_msgs/Point", field("float64", "x"), field("float64", "y"), field("float64", "z")),
			},
			"geometry_msgs/Point position\n" +
				ros1msg.Separator + "\n" +
				"MSG: geometry_msgs/Point\n" +
				"float64 x\nfloat64 y\nfloat64 z\n",
		},
		{
			"empty dependency",
			ros1msg.Sequence{
				def("", field("pkg/Empty", "e")),
				def("pkg/Empty"),
			},
			"pkg/Empty e\n" + ros1msg.Separator + "\nMSG: pkg/Empty\n",
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			actual, err := ros1msg.Encode(c.input)
			require.NoError(t, err)
			require.Equal(t, c.expected, actual)
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	seq := ros1msg.Sequence{
		def("", field("Header", "header"), constant("uint8", "OK", "0")),
		def("std_msgs/Header", field("uint32", "seq"), field("time", "stamp"), field("string", "frame_id")),
	}
	first, err := ros1msg.Encode(seq)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ros1msg.Encode(seq)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEncodeMalformed(t *testing.T) {
	cases := []struct {
		assertion string
		input     ros1msg.Sequence
	}{
		{"empty sequence", ros1msg.Sequence{}},
		{"nil sequence", nil},
		{
			"dependency without name",
			ros1msg.Sequence{def("", field("pkg/A", "a")), def("", field("int32", "x"))},
		},
		{
			"duplicate dependency",
			ros1msg.Sequence{
				def("", field("pkg/A", "a")),
				def("pkg/A", field("int32", "x")),
				def("pkg/A", field("int32", "x")),
			},
		},
		{
			"constant without value",
			ros1msg.Sequence{def("", constant("int32", "A", ""))},
		},
		{
			"constant array",
			ros1msg.Sequence{def("", ros1msg.FieldDefinition{
				Type: "int32", Name: "A", IsConstant: true, Value: "1", IsArray: true,
			})},
		},
		{
			"value on a variable",
			ros1msg.Sequence{def("", ros1msg.FieldDefinition{Type: "int32", Name: "x", Value: "1"})},
		},
		{
			"array length without array",
			ros1msg.Sequence{def("", ros1msg.FieldDefinition{Type: "int32", Name: "x", ArrayLength: 3})},
		},
		{
			"negative array length",
			ros1msg.Sequence{def("", fixed("int32", "x", -1))},
		},
		{
			"name containing equals",
			ros1msg.Sequence{def("", constant("int32", "A=B", "1"))},
		},
		{
			"name containing whitespace",
			ros1msg.Sequence{def("", field("int32", "a b"))},
		},
		{
			"empty type",
			ros1msg.Sequence{def("", field("", "x"))},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			_, err := ros1msg.Encode(c.input)
			require.ErrorIs(t, err, ros1msg.MalformedDefinitionError{})
		})
	}
}

func TestValidateDependencyNames(t *testing.T) {
	cases := []struct {
		assertion string
		input     ros1msg.Sequence
		ok        bool
	}{
		{"primary only", ros1msg.Sequence{def("", field("int32", "x"))}, true},
		{"qualified dependency", ros1msg.Sequence{def("", field("pkg/Foo", "f")), def("pkg/Foo")}, true},
		{"bare dependency", ros1msg.Sequence{def("", field("Foo", "f")), def("Foo")}, false},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.NoError(t, c.input.Validate())
			err := c.input.ValidateDependencyNames()
			if c.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ros1msg.MalformedDefinitionError{})
		})
	}
}
