package schema_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/util/schema"
)

func TestTypeString(t *testing.T) {
	cases := []struct {
		assertion string
		typ       schema.Type
		expected  string
	}{
		{"primitive", schema.Type{Primitive: schema.FLOAT64}, "float64"},
		{
			"variable array",
			schema.Type{Array: true, Items: &schema.Type{Primitive: schema.STRING}},
			"string[]",
		},
		{
			"fixed array",
			schema.Type{Array: true, FixedSize: 9, Items: &schema.Type{Primitive: schema.FLOAT64}},
			"float64[9]",
		},
		{"record", schema.Type{Record: true}, "record"},
		{"unknown primitive", schema.Type{Primitive: 99}, "unknown(99)"},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.Equal(t, c.expected, c.typ.String())
		})
	}
}

func TestFprint(t *testing.T) {
	point := schema.Type{
		Record: true,
		Fields: []schema.Field{
			{Name: "x", Type: schema.Type{Primitive: schema.FLOAT64}},
			{Name: "y", Type: schema.Type{Primitive: schema.FLOAT64}},
		},
	}
	s := &schema.Schema{
		Name: "pkg/Path",
		Fields: []schema.Field{
			{Name: "label", Type: schema.Type{Primitive: schema.STRING}},
			{Name: "points", Type: schema.Type{Array: true, Items: &point}},
		},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, s.Fprint(buf))
	require.Equal(t, `pkg/Path
  label: string
  points: record[]
    x: float64
    y: float64
`, buf.String())
}
