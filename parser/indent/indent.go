// Package indent rewrites significant indentation into explicit block markers.
//
// Each line that indents deeper than the enclosing block has its leading
// whitespace replaced by one BlockStart marker; each line that dedents has it
// replaced by one BlockEnd marker per closed block. Line numbers are preserved:
// markers only ever replace whitespace, except for the markers closing the
// blocks still open at end of input, which go on one extra final line.
package indent

import "strings"

const (
	BlockStart = "<INDENT>"
	BlockEnd   = "<DEDENT>"
)

// Preprocess converts indentation in text to BlockStart/BlockEnd markers.
//
// Dedents are lenient: blocks are closed until the enclosing width is no
// greater than the line's width, whether or not the width matches a level
// that was opened. An indent opens exactly one block regardless of how far
// it jumps.
func Preprocess(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+1)
	stack := []int{0}

	for _, line := range lines {
		content := strings.TrimLeft(line, " \t")
		if isBlank(content) {
			out = append(out, line)
			continue
		}

		width := Width(line)
		top := stack[len(stack)-1]

		switch {
		case width > top:
			stack = append(stack, width)
			out = append(out, BlockStart+content)
		case width < top:
			var b strings.Builder
			for len(stack) > 1 && width < stack[len(stack)-1] {
				stack = stack[:len(stack)-1]
				b.WriteString(BlockEnd)
			}
			b.WriteString(content)
			out = append(out, b.String())
		default:
			out = append(out, content)
		}
	}

	if len(stack) > 1 {
		out = append(out, strings.Repeat(BlockEnd, len(stack)-1))
	}

	return strings.Join(out, "\n")
}

// Width returns the indentation width of line as Preprocess measures it:
// every leading space or tab counts as one column.
func Width(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// isBlank reports whether a line (already stripped of indentation) carries
// no tokens. Comment-only lines do not affect block structure.
func isBlank(content string) bool {
	content = strings.TrimRight(content, " \t\r")
	return content == "" || strings.HasPrefix(content, "#")
}
