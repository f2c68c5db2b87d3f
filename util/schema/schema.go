package schema

import (
	"fmt"
	"io"
	"strings"
)

/*
Package schema holds an encoding-neutral description of a message type: a
named list of fields whose types are primitives, arrays, or nested records.
Unlike a concatenated definition, a Schema is fully resolved: every record
carries its own fields, so consumers never need to look types up by name.
*/

////////////////////////////////////////////////////////////////////////////////

// PrimitiveType enumerates the builtin scalar types.
type PrimitiveType int

const (
	INT8 PrimitiveType = iota + 1
	INT16
	INT32
	INT64
	UINT8
	UINT16
	UINT32
	UINT64
	FLOAT32
	FLOAT64
	STRING
	BOOL
	TIME
	DURATION
	CHAR
	BYTE
)

// nolint:gochecknoglobals
var primitiveNames = map[PrimitiveType]string{
	INT8:     "int8",
	INT16:    "int16",
	INT32:    "int32",
	INT64:    "int64",
	UINT8:    "uint8",
	UINT16:   "uint16",
	UINT32:   "uint32",
	UINT64:   "uint64",
	FLOAT32:  "float32",
	FLOAT64:  "float64",
	STRING:   "string",
	BOOL:     "bool",
	TIME:     "time",
	DURATION: "duration",
	CHAR:     "char",
	BYTE:     "byte",
}

// String returns the name of the primitive.
func (p PrimitiveType) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(p))
}

// Type is the type of a field. Exactly one of Primitive, Array, or Record
// applies.
type Type struct {
	Primitive PrimitiveType

	// If it's an array...
	Array     bool
	FixedSize int
	Items     *Type

	// If it's a record...
	Record bool
	Fields []Field
}

// String renders the type without expanding records.
func (t Type) String() string {
	switch {
	case t.Array && t.FixedSize > 0:
		return fmt.Sprintf("%s[%d]", t.Items, t.FixedSize)
	case t.Array:
		return t.Items.String() + "[]"
	case t.Record:
		return "record"
	default:
		return t.Primitive.String()
	}
}

type Field struct {
	Name string
	Type Type
}

type Schema struct {
	Name   string
	Fields []Field
}

// Fprint writes an indented tree of the schema to w, one field per line.
func (s *Schema) Fprint(w io.Writer) error {
	if _, err := fmt.Fprintln(w, s.Name); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return fprintFields(w, s.Fields, 1)
}

func fprintFields(w io.Writer, fields []Field, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s%s: %s\n", indent, f.Name, f.Type); err != nil {
			return fmt.Errorf("failed to write schema: %w", err)
		}
		t := f.Type
		for t.Array {
			t = *t.Items
		}
		if t.Record {
			if err := fprintFields(w, t.Fields, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
