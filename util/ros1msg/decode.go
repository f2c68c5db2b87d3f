package ros1msg

import (
	"strings"
)

/*
Decode is the inverse of Encode. Text is split into segments on separator
lines of exactly 80 '=' characters. The first segment is the primary definition
and carries no header; every later segment must begin with a "MSG: <name>" line.

Within a segment, constants precede variables. A single blank line separates
the two groups when both are present. A segment without a blank line holds
either only constants or only variables. Any other blank line is an error:
in canonical text it can only mean a field was dropped or the text was
mangled, and we would rather surface that than guess.

Individual lines are parsed with LineParser. The value of a constant is
everything following the first '=' with one leading space removed, so values
survive a round trip unchanged.
*/

////////////////////////////////////////////////////////////////////////////////

type segment struct {
	name  string
	start int // number of lines preceding the segment body
	lines []string
}

// Decode parses canonical concatenated definition text into a Sequence. Input
// may or may not end with a trailing newline. On failure a ParseError is
// returned and no partial result.
func Decode(text string) (Sequence, error) {
	segments, err := splitSegments(splitLines(text))
	if err != nil {
		return nil, err
	}
	seq := make(Sequence, 0, len(segments))
	for _, seg := range segments {
		fields, err := decodeBody(seg)
		if err != nil {
			return nil, err
		}
		seq = append(seq, MsgDefinition{Name: seg.name, Definitions: fields})
	}
	if err := seq.Validate(); err != nil {
		return nil, ParseError{Reason: "invalid definition", Err: err}
	}
	return seq, nil
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func splitSegments(lines []string) ([]segment, error) {
	segments := []segment{{}}
	for i := 0; i < len(lines); i++ {
		if lines[i] != Separator {
			last := &segments[len(segments)-1]
			last.lines = append(last.lines, lines[i])
			continue
		}
		if i+1 == len(lines) {
			return nil, ParseError{Line: i + 1, Text: lines[i], Reason: "missing MSG header after separator"}
		}
		name, ok := strings.CutPrefix(lines[i+1], strings.TrimSpace(headerPrefix))
		if !ok {
			return nil, ParseError{Line: i + 2, Text: lines[i+1], Reason: "missing MSG header after separator"}
		}
		segments = append(segments, segment{name: strings.TrimSpace(name), start: i + 2})
		i++
	}
	return segments, nil
}

func decodeBody(seg segment) ([]FieldDefinition, error) {
	fields := []FieldDefinition{}
	sawBlank, sawConstant, sawVariable := false, false, false
	for i, text := range seg.lines {
		lineno := seg.start + i + 1
		if strings.TrimSpace(text) == "" {
			switch {
			case sawBlank, sawVariable:
				return nil, ParseError{Line: lineno, Text: text, Reason: "unexpected blank line"}
			case i == len(seg.lines)-1:
				return nil, ParseError{Line: lineno, Text: text, Reason: "blank line not followed by fields"}
			}
			sawBlank = true
			continue
		}
		field, err := decodeLine(text)
		if err != nil {
			return nil, ParseError{Line: lineno, Text: text, Reason: "unrecognized line", Err: err}
		}
		if field.IsConstant {
			if sawVariable || sawBlank {
				return nil, ParseError{Line: lineno, Text: text, Reason: "constant follows fields"}
			}
			sawConstant = true
		} else {
			if sawConstant && !sawBlank {
				return nil, ParseError{Line: lineno, Text: text, Reason: "missing blank line between constants and fields"}
			}
			sawVariable = true
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func decodeLine(text string) (FieldDefinition, error) {
	line, err := LineParser.ParseString("", text)
	if err != nil {
		return FieldDefinition{}, err
	}
	field := FieldDefinition{
		Type:        line.Type.Name,
		Name:        line.Name,
		IsArray:     line.Type.Array,
		ArrayLength: line.Type.FixedSize,
	}
	if line.Value != nil {
		field.IsConstant = true
		field.Value = strings.TrimPrefix(*line.Value, " ")
	}
	return field, nil
}
