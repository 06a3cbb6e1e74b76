package compiler

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
)

const indent = "    "

// kwarg is one keyword argument of a constructor call.
type kwarg struct {
	name  string
	value string
}

func (k kwarg) String() string { return k.name + "=" + k.value }

// codeBuilder accumulates program text. Sections are separated by exactly
// one blank line regardless of how many times blank() is called.
type codeBuilder struct {
	sb        strings.Builder
	lineWidth int
	pending   bool
}

func newCodeBuilder(lineWidth int) *codeBuilder {
	return &codeBuilder{lineWidth: lineWidth}
}

func (b *codeBuilder) line(format string, args ...any) {
	if b.pending && b.sb.Len() > 0 {
		b.sb.WriteString("\n")
	}
	b.pending = false
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	b.sb.WriteString(format)
	b.sb.WriteString("\n")
}

func (b *codeBuilder) blank() {
	b.pending = true
}

func (b *codeBuilder) comment(text string) {
	for _, l := range strings.Split(text, "\n") {
		b.line("# %s", l)
	}
}

// load emits load("module", "A", "B").
func (b *codeBuilder) load(module string, names []string) {
	quoted := make([]string, 0, len(names)+1)
	quoted = append(quoted, quote(module))
	for _, n := range names {
		quoted = append(quoted, quote(n))
	}
	b.line("load(%s)", strings.Join(quoted, ", "))
}

// assignCall emits target = fn(k=v, ...), one argument per line when the
// single-line form would exceed the line width or any value spans lines.
func (b *codeBuilder) assignCall(target, fn string, args []kwarg) {
	parts := make([]string, len(args))
	multiline := false
	for i, a := range args {
		parts[i] = a.String()
		if strings.Contains(a.value, "\n") {
			multiline = true
		}
	}
	single := fmt.Sprintf("%s = %s(%s)", target, fn, strings.Join(parts, ", "))
	if !multiline && len(single) <= b.lineWidth {
		b.line(single)
		return
	}
	b.line("%s = %s(", target, fn)
	for _, p := range parts {
		b.line(indent + p + ",")
	}
	b.line(")")
}

// def emits a keyword-only function whose body is indented one level.
func (b *codeBuilder) def(name, body string) {
	b.line("def %s(**kwargs):", name)
	for _, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) == "" {
			b.line("")
			continue
		}
		b.line(indent + l)
	}
}

// chain emits a >> b >> c, wrapped in parentheses with one operand per line
// when it does not fit.
func (b *codeBuilder) chain(names []string) {
	single := strings.Join(names, " >> ")
	if len(single) <= b.lineWidth {
		b.line(single)
		return
	}
	b.line("(")
	b.line(indent + names[0])
	for _, n := range names[1:] {
		b.line(indent + ">> " + n)
	}
	b.line(")")
}

func (b *codeBuilder) String() string {
	return b.sb.String()
}

func quote(s string) string {
	return starlark.String(s).String()
}
