package ros1msg

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

/*
This is a grammar for the ROS msg format: http://wiki.ros.org/msg.

We call this ros1msg in the project because ros2 uses a subtlely different scheme.

There are two parsers built on the same lexer. DocumentParser accepts
human-authored text: .msg files and the concatenated definitions found in the
wild, with comments, stray blank lines and short separators. LineParser parses
a single field or constant line and is used by the canonical decoder, which
handles the line-level layout itself because blank lines are significant there.

Constant values are lexed in their own state so that everything after the
equals sign survives, including further equals signs and '#' characters.
*/

// nolint:gochecknoglobals
var (
	Lexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Comment", Pattern: `#[^\n]*`},
			{Name: "Newline", Pattern: `\s*[\n\r]+`},
			{Name: "Separator", Pattern: `={3,}`},
			{Name: "Integer", Pattern: `[+-]?[0-9]+`},
			{Name: "Word", Pattern: `[a-zA-Z0-9\_]+`},
			{Name: "Whitespace", Pattern: `[\s\t]+`},
			{Name: "LBracket", Pattern: `\[`},
			{Name: "RBracket", Pattern: `\]`},
			{Name: "Slash", Pattern: `/`},
			{Name: "Colon", Pattern: `:`},
			{Name: "Equals", Pattern: `=`, Action: lexer.Push("ConstantValue")},
		},
		"ConstantValue": {
			{Name: "Value", Pattern: `[^\n]+`, Action: lexer.Pop()},
		},
	})

	DocumentParser = participle.MustBuild[Document](
		participle.Lexer(Lexer),
		participle.Union[SchemaElement](Constant{}, ROSField{}),
		// NB: parsing comments would be great, but it is difficult to infer
		// what field a comment should attach to - so for now we elide.
		participle.Elide("Whitespace", "Newline", "Comment"),
		participle.UseLookahead(1000),
	)

	LineParser = participle.MustBuild[Line](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace", "Newline", "Comment"),
	)
)

// Document is a primary definition followed by any number of dependent
// sections.
type Document struct {
	Elements []SchemaElement `parser:"@@*"`
	Sections []Section       `parser:"@@*"`
}

type Section struct {
	Header   Header          `parser:"Separator @@"`
	Elements []SchemaElement `parser:"@@*"`
}

type Header struct {
	Type string `parser:"'MSG' Colon @(Word ( Slash Word )*)"`
}

type ROSField struct {
	Type *ROSType `parser:"@@"`
	Name string   `parser:"@Word"`
}

type Constant struct {
	Type  *ROSType `parser:"@@"`
	Name  string   `parser:"@Word Equals"`
	Value string   `parser:"@Value"`
}

type ROSType struct {
	Name      string `parser:"@(Word ( Slash Word )*)"`
	Array     bool   `parser:"@LBracket?"`
	FixedSize int    `parser:"(( @Integer RBracket ) | RBracket)?"`
}

// Line is a single field or constant line. Value is nil for fields, and holds
// the raw text following the equals sign for constants.
type Line struct {
	Type  *ROSType `parser:"@@"`
	Name  string   `parser:"@Word"`
	Value *string  `parser:"( Equals @Value )?"`
}

type SchemaElement interface{ value() }

func (f ROSField) value() {}
func (c Constant) value() {}
