package ros1msg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/wkalt/msgdef/util/schema"
)

/*
This file contains ParseMessageDefinition, which accepts human-authored ROS1
message definition text (a .msg file, or concatenated text as written by ROS
tooling, comments and all) and returns a Sequence.

It does this by calling the participle parser on the text to create a
participle AST, and then transforming that AST into the definition model. The
participle AST does not leave the ros1msg package.

ToSchema goes one step further and resolves a Sequence into a schema.Schema,
in which every message-typed field carries its nested record.
*/

////////////////////////////////////////////////////////////////////////////////

// nolint:gochecknoglobals
var schemaPrimitives = map[string]schema.PrimitiveType{
	"int8":     schema.INT8,
	"int16":    schema.INT16,
	"int32":    schema.INT32,
	"int64":    schema.INT64,
	"uint8":    schema.UINT8,
	"uint16":   schema.UINT16,
	"uint32":   schema.UINT32,
	"uint64":   schema.UINT64,
	"float32":  schema.FLOAT32,
	"float64":  schema.FLOAT64,
	"string":   schema.STRING,
	"bool":     schema.BOOL,
	"time":     schema.TIME,
	"duration": schema.DURATION,
	"char":     schema.CHAR,
	"byte":     schema.BYTE,
}

// ParseMessageDefinition parses human-authored message definition text. The
// primary definition of the result is unnamed. Comments are dropped, and
// constant values are trimmed; non-string constants also lose any trailing
// comment.
func ParseMessageDefinition(msgdef []byte) (Sequence, error) {
	ast, err := DocumentParser.ParseBytes("", msgdef)
	if err != nil {
		perr := ParseError{Reason: "failed to parse ros1 message definition", Err: err}
		var pe participle.Error
		if errors.As(err, &pe) {
			perr.Line = pe.Position().Line
		}
		return nil, perr
	}
	seq := Sequence{{Definitions: transformElements(ast.Elements)}}
	for _, section := range ast.Sections {
		seq = append(seq, MsgDefinition{
			Name:        section.Header.Type,
			Definitions: transformElements(section.Elements),
		})
	}
	if err := seq.Validate(); err != nil {
		return nil, ParseError{Reason: "invalid definition", Err: err}
	}
	return seq, nil
}

func transformElements(elements []SchemaElement) []FieldDefinition {
	fields := []FieldDefinition{}
	for _, element := range elements {
		switch item := element.(type) {
		case ROSField:
			fields = append(fields, FieldDefinition{
				Type:        item.Type.Name,
				Name:        item.Name,
				IsArray:     item.Type.Array,
				ArrayLength: item.Type.FixedSize,
			})
		case Constant:
			fields = append(fields, FieldDefinition{
				Type:       item.Type.Name,
				Name:       item.Name,
				IsConstant: true,
				Value:      constantValue(item.Type.Name, item.Value),
			})
		}
	}
	return fields
}

// constantValue applies the ROS rules for constant text: string constants run
// to the end of the line, other constants end at a comment.
func constantValue(typ string, raw string) string {
	if typ != "string" {
		raw, _, _ = strings.Cut(raw, "#")
	}
	return strings.TrimSpace(raw)
}

// ToSchema resolves a sequence into a schema.Schema named typeName. Message
// types referenced by fields are looked up among the dependencies, qualified
// relative to the package of the type containing the field. Constants are
// skipped.
func ToSchema(typeName string, seq Sequence) (*schema.Schema, error) {
	if len(seq) == 0 {
		return nil, MalformedDefinitionError{Reason: "empty sequence"}
	}
	index := dependencyIndex(seq)
	inProgress := map[string]bool{typeName: true}
	fields, err := resolveFields(typeName, seq[0].Definitions, index, inProgress)
	if err != nil {
		return nil, err
	}
	return &schema.Schema{Name: typeName, Fields: fields}, nil
}

func dependencyIndex(seq Sequence) map[string]MsgDefinition {
	index := make(map[string]MsgDefinition, len(seq))
	for _, def := range seq[1:] {
		index[def.Name] = def
	}
	return index
}

func lookupDependency(
	index map[string]MsgDefinition,
	container string,
	typ string,
) (string, MsgDefinition, error) {
	name := ResolveTypeName(PackageName(container), typ)
	if def, ok := index[name]; ok {
		return name, def, nil
	}
	if def, ok := index[typ]; ok {
		return typ, def, nil
	}
	return "", MsgDefinition{}, fmt.Errorf("%w: %s", ErrUnknownType, name)
}

func resolveFields(
	container string,
	definitions []FieldDefinition,
	index map[string]MsgDefinition,
	inProgress map[string]bool,
) ([]schema.Field, error) {
	fields := []schema.Field{}
	for _, f := range definitions {
		if f.IsConstant {
			continue
		}
		t, err := resolveType(container, f.Type, index, inProgress)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve field %s: %w", f.Name, err)
		}
		if f.IsArray {
			t = &schema.Type{
				Array:     true,
				FixedSize: f.ArrayLength,
				Items:     t,
			}
		}
		fields = append(fields, schema.Field{Name: f.Name, Type: *t})
	}
	return fields, nil
}

func resolveType(
	container string,
	typ string,
	index map[string]MsgDefinition,
	inProgress map[string]bool,
) (*schema.Type, error) {
	if primitive, ok := schemaPrimitives[typ]; ok {
		return &schema.Type{Primitive: primitive}, nil
	}
	name, def, err := lookupDependency(index, container, typ)
	if err != nil {
		return nil, err
	}
	if inProgress[name] {
		return nil, CyclicDependencyError{Path: []string{container, name}}
	}
	inProgress[name] = true
	defer delete(inProgress, name)
	fields, err := resolveFields(name, def.Definitions, index, inProgress)
	if err != nil {
		return nil, err
	}
	return &schema.Type{Record: true, Fields: fields}, nil
}
