package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/wkalt/msgdef/util/ros1msg"
)

var (
	headerColor   = color.New(color.FgCyan, color.Bold)
	typeColor     = color.New(color.FgGreen)
	constantColor = color.New(color.FgYellow)
)

// PrintSequence prints a sequence in canonical layout, highlighting message
// headers, field types and constant values. Coloring is disabled
// automatically when stdout is not a terminal.
func PrintSequence(w io.Writer, seq ros1msg.Sequence) error {
	sb := &strings.Builder{}
	for i, def := range seq {
		if i > 0 {
			sb.WriteString(headerColor.Sprint(strings.Repeat("=", 80)) + "\n")
			sb.WriteString(headerColor.Sprint("MSG: "+def.Name) + "\n")
		}
		constants := def.Constants()
		variables := def.Variables()
		for _, c := range constants {
			fmt.Fprintf(sb, "%s %s = %s\n", typeColor.Sprint(c.Type), c.Name, constantColor.Sprint(c.Value))
		}
		if len(constants) > 0 && len(variables) > 0 {
			sb.WriteString("\n")
		}
		for _, v := range variables {
			typ, _ := strings.CutSuffix(v.String(), " "+v.Name)
			fmt.Fprintf(sb, "%s %s\n", typeColor.Sprint(typ), v.Name)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
