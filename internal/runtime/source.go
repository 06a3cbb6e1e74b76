package runtime

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/maxkimambo/windmill/internal/params"
)

// source gives access to the program text, which callable parameters are
// recovered from.
type source struct {
	filename string
	lines    []string
}

func newSource(filename string, src []byte) *source {
	return &source{filename: filename, lines: strings.Split(string(src), "\n")}
}

// functionBody returns the dedented body of a def statement: the lines after
// the header that are indented deeper than the def keyword.
func (s *source) functionBody(fn *starlark.Function) (string, error) {
	if fn.Name() == "lambda" {
		return "", fmt.Errorf("callable parameters must be named functions, not lambdas")
	}
	pos := fn.Position()
	if pos.Filename() != s.filename {
		return "", fmt.Errorf("function %s is not defined in %s", fn.Name(), s.filename)
	}
	start := int(pos.Line) - 1
	if start < 0 || start >= len(s.lines) {
		return "", fmt.Errorf("function %s has no source", fn.Name())
	}
	indent := indentOf(s.lines[start])

	// def f(**kwargs): return 1
	first := strings.TrimSpace(stripComment(s.lines[start]))
	if i := strings.LastIndex(first, "):"); i >= 0 && i+2 < len(first) {
		return strings.TrimSpace(first[i+2:]), nil
	}

	// A header may span several lines; the body starts after the colon.
	header := start
	for header < len(s.lines) && !strings.HasSuffix(strings.TrimSpace(stripComment(s.lines[header])), ":") {
		header++
	}

	var body []string
	for i := header + 1; i < len(s.lines); i++ {
		line := s.lines[i]
		if strings.TrimSpace(line) != "" && indentOf(line) <= indent {
			break
		}
		body = append(body, line)
	}
	out := params.Dedent(strings.Join(body, "\n"))
	if out == "" {
		return "", fmt.Errorf("function %s has an empty body", fn.Name())
	}
	return out, nil
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}
