package ros1msg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/util/ros1msg"
	"github.com/wkalt/msgdef/util/schema"
)

func primitiveType(t schema.PrimitiveType) *schema.Type {
	return &schema.Type{
		Primitive: t,
	}
}

func TestParseMessageDefinition(t *testing.T) {
	cases := []struct {
		assertion string
		msgdef    string
		expected  ros1msg.Sequence
	}{
		{
			"primitive",
			"string foo",
			ros1msg.Sequence{def("", field("string", "foo"))},
		},
		{
			"comments and blank lines",
			`
# a comment
string foo # trailing comment


int32 bar
`,
			ros1msg.Sequence{def("", field("string", "foo"), field("int32", "bar"))},
		},
		{
			"arrays",
			"string[10] foo\nuint8[] bar",
			ros1msg.Sequence{def("", fixed("string", "foo", 10), array("uint8", "bar"))},
		},
		{
			"constants",
			"uint8 DEBUG=1 # debug level\nstring GREETING = hello # world\nint32 x",
			ros1msg.Sequence{def("",
				constant("uint8", "DEBUG", "1"),
				constant("string", "GREETING", "hello # world"),
				field("int32", "x"),
			)},
		},
		{
			"short separators and dependencies",
			strings.TrimSpace(`
Header header #for timestamp
===
MSG: std_msgs/Header
uint32 seq
time stamp
string frame_id
`),
			ros1msg.Sequence{
				def("", field("Header", "header")),
				def("std_msgs/Header", field("uint32", "seq"), field("time", "stamp"), field("string", "frame_id")),
			},
		},
		{
			"canonical text",
			"int32 A = 1\n\nfloat64 x\n" + ros1msg.Separator + "\nMSG: pkg/B\nstring s\n",
			ros1msg.Sequence{
				def("", constant("int32", "A", "1"), field("float64", "x")),
				def("pkg/B", field("string", "s")),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			actual, err := ros1msg.ParseMessageDefinition([]byte(c.msgdef))
			require.NoError(t, err)
			require.Equal(t, c.expected, actual)
		})
	}
}

func TestParseMessageDefinitionErrors(t *testing.T) {
	cases := []struct {
		assertion string
		msgdef    string
	}{
		{"missing name", "string"},
		{"missing header", "string foo\n===\nint32 x"},
		{"bad array", "string[x] foo"},
		{"duplicate dependency", "pkg/A a\n===\nMSG: pkg/A\nint32 x\n===\nMSG: pkg/A\nint32 x"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			_, err := ros1msg.ParseMessageDefinition([]byte(c.msgdef))
			require.ErrorIs(t, err, ros1msg.ParseError{})
		})
	}
}

func TestToSchema(t *testing.T) {
	cases := []struct {
		assertion string
		msgdef    string
		output    *schema.Schema
	}{
		{
			"primitive",
			"string foo",
			&schema.Schema{
				Name: "test/Test",
				Fields: []schema.Field{
					{
						Name: "foo",
						Type: *primitiveType(schema.STRING),
					},
				},
			},
		},
		{
			"primitive array",
			"string[10] foo",
			&schema.Schema{
				Name: "test/Test",
				Fields: []schema.Field{
					{
						Name: "foo",
						Type: schema.Type{
							Array:     true,
							Items:     primitiveType(schema.STRING),
							FixedSize: 10,
						},
					},
				},
			},
		},
		{
			"constants are skipped",
			"uint8 A = 1\nbool flag",
			&schema.Schema{
				Name: "test/Test",
				Fields: []schema.Field{
					{Name: "flag", Type: *primitiveType(schema.BOOL)},
				},
			},
		},
		{
			"header and relative names",
			strings.TrimSpace(`
Header header
Inner[] inners
===
MSG: std_msgs/Header
uint32 seq
time stamp
string frame_id
===
MSG: test/Inner
duration d
`),
			&schema.Schema{
				Name: "test/Test",
				Fields: []schema.Field{
					{
						Name: "header",
						Type: schema.Type{
							Record: true,
							Fields: []schema.Field{
								{Name: "seq", Type: *primitiveType(schema.UINT32)},
								{Name: "stamp", Type: *primitiveType(schema.TIME)},
								{Name: "frame_id", Type: *primitiveType(schema.STRING)},
							},
						},
					},
					{
						Name: "inners",
						Type: schema.Type{
							Array: true,
							Items: &schema.Type{
								Record: true,
								Fields: []schema.Field{
									{Name: "d", Type: *primitiveType(schema.DURATION)},
								},
							},
						},
					},
				},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			seq, err := ros1msg.ParseMessageDefinition([]byte(c.msgdef))
			require.NoError(t, err)
			output, err := ros1msg.ToSchema("test/Test", seq)
			require.NoError(t, err)
			require.Equal(t, c.output, output)
		})
	}
}

func TestToSchemaErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := ros1msg.ToSchema("test/Test", ros1msg.Sequence{def("", field("Missing", "m"))})
		require.ErrorIs(t, err, ros1msg.ErrUnknownType)
	})
	t.Run("cycle", func(t *testing.T) {
		seq := ros1msg.Sequence{def("", field("B", "b")), def("test/B", field("B", "b"))}
		_, err := ros1msg.ToSchema("test/Test", seq)
		require.ErrorIs(t, err, ros1msg.CyclicDependencyError{})
	})
}

func TestResolveTypeName(t *testing.T) {
	cases := []struct {
		assertion string
		pkg       string
		typ       string
		expected  string
	}{
		{"primitive", "pkg", "int32", "int32"},
		{"header", "pkg", "Header", "std_msgs/Header"},
		{"qualified", "pkg", "other/Type", "other/Type"},
		{"relative", "pkg", "Type", "pkg/Type"},
		{"no package", "", "Type", "Type"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.Equal(t, c.expected, ros1msg.ResolveTypeName(c.pkg, c.typ))
		})
	}
}
