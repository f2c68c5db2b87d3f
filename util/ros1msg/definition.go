package ros1msg

import (
	"regexp"
	"strconv"
	"strings"
)

/*
The definition model is the structured form of a concatenated message
definition. A Sequence holds a primary type followed by each distinct type it
depends on, in first-reference order. The primary type's name is conventionally
empty, since it is known from context wherever the text is exchanged.
*/

////////////////////////////////////////////////////////////////////////////////

// nolint:gochecknoglobals
var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	typeNamePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(/[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// FieldDefinition is a single field or constant within a message type. Value
// is only populated for constants. ArrayLength is nonzero for fixed-length
// arrays and zero for variable-length ones.
type FieldDefinition struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	IsConstant  bool   `json:"isConstant,omitempty"`
	Value       string `json:"value,omitempty"`
	IsArray     bool   `json:"isArray,omitempty"`
	ArrayLength int    `json:"arrayLength,omitempty"`
}

// String renders the field as a line of canonical text.
func (f FieldDefinition) String() string {
	if f.IsConstant {
		return f.Type + " " + f.Name + " = " + f.Value
	}
	return f.typeString() + " " + f.Name
}

// typeString returns the type with its array suffix.
func (f FieldDefinition) typeString() string {
	switch {
	case f.IsArray && f.ArrayLength > 0:
		return f.Type + "[" + strconv.Itoa(f.ArrayLength) + "]"
	case f.IsArray:
		return f.Type + "[]"
	default:
		return f.Type
	}
}

// MsgDefinition is the definition of a single message type.
type MsgDefinition struct {
	Name        string            `json:"name,omitempty"`
	Definitions []FieldDefinition `json:"definitions"`
}

// Constants returns the constant entries of the definition in source order.
func (d MsgDefinition) Constants() []FieldDefinition {
	var constants []FieldDefinition
	for _, f := range d.Definitions {
		if f.IsConstant {
			constants = append(constants, f)
		}
	}
	return constants
}

// Variables returns the non-constant entries of the definition in source order.
func (d MsgDefinition) Variables() []FieldDefinition {
	var variables []FieldDefinition
	for _, f := range d.Definitions {
		if !f.IsConstant {
			variables = append(variables, f)
		}
	}
	return variables
}

// Sequence is a primary message definition followed by its distinct
// dependencies. It is the unit on which Encode and Decode operate.
type Sequence []MsgDefinition

// Validate checks the sequence against the definition model. It returns a
// MalformedDefinitionError describing the first violation found.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return MalformedDefinitionError{Reason: "empty sequence"}
	}
	seen := make(map[string]bool, len(s))
	for i, def := range s {
		if i > 0 {
			if def.Name == "" {
				return MalformedDefinitionError{Index: i, Reason: "dependency has no name"}
			}
			if !typeNamePattern.MatchString(def.Name) {
				return MalformedDefinitionError{Index: i, Reason: "invalid type name " + strconv.Quote(def.Name)}
			}
			if seen[def.Name] {
				return MalformedDefinitionError{Index: i, Reason: "duplicate definition of " + def.Name}
			}
			seen[def.Name] = true
		}
		for _, f := range def.Definitions {
			if err := validateField(i, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateDependencyNames checks that every dependency of the sequence is
// named with a package-qualified type name. The codec accepts bare names, but
// a registry cannot store them.
func (s Sequence) ValidateDependencyNames() error {
	for i, def := range s {
		if i == 0 {
			continue
		}
		if err := ValidateTypeName(def.Name); err != nil {
			return MalformedDefinitionError{Index: i, Reason: "invalid dependency name " + strconv.Quote(def.Name)}
		}
	}
	return nil
}

func validateField(index int, f FieldDefinition) error {
	malformed := func(reason string) error {
		return MalformedDefinitionError{Index: index, Field: f.Name, Reason: reason}
	}
	if !identifierPattern.MatchString(f.Name) {
		return malformed("invalid field name")
	}
	if !typeNamePattern.MatchString(f.Type) {
		return malformed("invalid type " + strconv.Quote(f.Type))
	}
	if f.ArrayLength < 0 {
		return malformed("negative array length")
	}
	if f.ArrayLength > 0 && !f.IsArray {
		return malformed("array length on non-array field")
	}
	if f.IsConstant {
		if f.Value == "" {
			return malformed("constant has no value")
		}
		if f.IsArray {
			return malformed("constant cannot be an array")
		}
		return nil
	}
	if f.Value != "" {
		return malformed("value on non-constant field")
	}
	return nil
}

// nolint:gochecknoglobals
var primitiveTypes = map[string]bool{
	"bool":     true,
	"int8":     true,
	"uint8":    true,
	"int16":    true,
	"uint16":   true,
	"int32":    true,
	"uint32":   true,
	"int64":    true,
	"uint64":   true,
	"float32":  true,
	"float64":  true,
	"string":   true,
	"time":     true,
	"duration": true,
	"char":     true,
	"byte":     true,
}

// IsPrimitive returns true if t is a ROS1 builtin type.
func IsPrimitive(t string) bool {
	return primitiveTypes[t]
}

// ResolveTypeName returns the fully qualified name of a field type appearing in
// a message of package pkg. Builtins and qualified names are returned as-is,
// and the bare "Header" refers to std_msgs/Header.
func ResolveTypeName(pkg string, t string) string {
	switch {
	case IsPrimitive(t), strings.Contains(t, "/"):
		return t
	case t == "Header":
		return "std_msgs/Header"
	case pkg == "":
		return t
	default:
		return pkg + "/" + t
	}
}

// ValidateTypeName checks that name is a package-qualified message type
// name, such as "std_msgs/Header".
func ValidateTypeName(name string) error {
	if !typeNamePattern.MatchString(name) || PackageName(name) == "" {
		return MalformedDefinitionError{Reason: "invalid type name " + strconv.Quote(name)}
	}
	return nil
}

// PackageName returns the package portion of a qualified type name.
func PackageName(typeName string) string {
	pkg, _, found := strings.Cut(typeName, "/")
	if !found {
		return ""
	}
	return pkg
}
