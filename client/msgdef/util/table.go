package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

/*
Tables are printed in one of two layouts. If the table fits the terminal,
rows are printed as a grid:

	|   Name   |  MD5 Sum  |
	|----------|-----------|
	| std_msgs | 992ce8a1  |

Otherwise each row is printed as a record, one column per line:

	-[ RECORD 1 ]+--------------
	Name         | std_msgs
	MD5 Sum      | 992ce8a1
*/

////////////////////////////////////////////////////////////////////////////////

const defaultTermWidth = 80

// PrintTable prints a table of rows under the given headers, choosing a
// layout that fits the terminal.
func PrintTable(w io.Writer, headers []string, data [][]string) {
	widths := gridWidths(headers, data)
	total := len(headers) + 1
	for _, width := range widths {
		total += width
	}
	termWidth := TermWidth()
	if total > termWidth {
		printRecords(w, termWidth, headers, data)
		return
	}
	printGrid(w, widths, headers, data)
}

// TermWidth returns the width of the terminal on stdout, or a default if
// stdout is not a terminal.
func TermWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}

// StdoutRedirected returns true if stdout is redirected to a file or pipe.
func StdoutRedirected() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// gridWidths computes the width of each grid cell. Headers are padded by
// two spaces on each side and values by one, and cells are widened so that
// headers center evenly.
func gridWidths(headers []string, data [][]string) []int {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header) + 4
	}
	for _, row := range data {
		for i, col := range row {
			if i < len(widths) && len(col)+2 > widths[i] {
				widths[i] = len(col) + 2
			}
		}
	}
	for i, header := range headers {
		if (widths[i]-len(header))%2 == 1 {
			widths[i]++
		}
	}
	return widths
}

func printGrid(w io.Writer, widths []int, headers []string, data [][]string) {
	sb := &strings.Builder{}
	sb.WriteString("|")
	for i, header := range headers {
		pad := strings.Repeat(" ", (widths[i]-len(header))/2)
		sb.WriteString(pad + header + pad + "|")
	}
	sb.WriteString("\n|")
	for _, width := range widths {
		sb.WriteString(strings.Repeat("-", width) + "|")
	}
	sb.WriteString("\n")
	for _, row := range data {
		sb.WriteString("|")
		for i, col := range row {
			if i >= len(widths) {
				break
			}
			sb.WriteString(" " + col + strings.Repeat(" ", widths[i]-len(col)-1) + "|")
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(w, sb.String())
}

func printRecords(w io.Writer, termWidth int, headers []string, data [][]string) {
	labelWidth := len(fmt.Sprintf("-[ RECORD %d ]", len(data)))
	for _, header := range headers {
		labelWidth = max(labelWidth, len(header))
	}
	valueWidth := 0
	for _, row := range data {
		for _, col := range row {
			valueWidth = max(valueWidth, len(col))
		}
	}
	rule := min(valueWidth+15, termWidth-labelWidth-1)
	rule = max(rule, 1)
	for i, row := range data {
		label := fmt.Sprintf("-[ RECORD %d ]", i+1)
		fmt.Fprintf(w, "%s%s+%s\n", label, strings.Repeat("-", labelWidth-len(label)), strings.Repeat("-", rule))
		for j, col := range row {
			if j >= len(headers) {
				break
			}
			fmt.Fprintf(w, "%-*s| %s\n", labelWidth, headers[j], col)
		}
	}
}
