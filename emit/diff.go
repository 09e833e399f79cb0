package emit

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// Diff returns a line oriented diff from old to new, labelled with path.
// Removed lines start with "-", added lines with "+", and runs of unchanged
// lines longer than the context are elided.
func Diff(path string, old, new []byte) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(old), string(new))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s (on disk)\n+++ %s (generated)\n", path, path)
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&out, "-", text)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&out, "+", text)
		case diffmatchpatch.DiffEqual:
			head, tail := text, []string(nil)
			first, last := i == 0, i == len(diffs)-1
			if len(text) > 2*diffContext {
				head, tail = text[:diffContext], text[len(text)-diffContext:]
			}
			switch {
			case first && last:
				continue
			case first:
				head, tail = nil, lastN(text, diffContext)
			case last:
				head, tail = firstN(text, diffContext), nil
			}
			writePrefixed(&out, " ", head)
			if tail != nil {
				if len(text) > len(head)+len(tail) {
					out.WriteString("@@\n")
				}
				writePrefixed(&out, " ", tail)
			}
		}
	}
	return out.String()
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writePrefixed(out *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		out.WriteString(prefix)
		out.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			out.WriteString("\n")
		}
	}
}

func firstN(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}

func lastN(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[len(lines)-n:]
}
