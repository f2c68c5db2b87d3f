package ros1msg

import (
	"strings"
)

/*
Encode renders a Sequence as canonical concatenated definition text, the format
recorders store in connection records and publishers send in connection
headers:

	int32 A = 1
	<blank line>
	float64 x
	================================================================================
	MSG: pkg/Dependency
	...

Constants come first, then a single blank line if there are any variables to
follow, then the variables. Every line is newline-terminated. The primary
definition has no header. Encoding is purely structural: types are not checked
for resolvability and constant values are written verbatim.
*/

////////////////////////////////////////////////////////////////////////////////

// Separator is the line that precedes each dependency in concatenated text.
const Separator = "================================================================================"

const headerPrefix = "MSG: "

// Encode renders the sequence as canonical concatenated definition text. The
// sequence is validated first; a MalformedDefinitionError is returned if it
// violates the definition model.
func Encode(seq Sequence) (string, error) {
	if err := seq.Validate(); err != nil {
		return "", err
	}
	sb := &strings.Builder{}
	for i, def := range seq {
		if i > 0 {
			sb.WriteString(Separator)
			sb.WriteByte('\n')
			sb.WriteString(headerPrefix)
			sb.WriteString(def.Name)
			sb.WriteByte('\n')
		}
		writeBody(sb, def)
	}
	return sb.String(), nil
}

func writeBody(sb *strings.Builder, def MsgDefinition) {
	constants := def.Constants()
	variables := def.Variables()
	for _, c := range constants {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	if len(constants) > 0 && len(variables) > 0 {
		sb.WriteByte('\n')
	}
	for _, v := range variables {
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
}
