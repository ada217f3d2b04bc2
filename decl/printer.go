package decl

import (
	"fmt"
	"strings"
)

type CodePrinter interface {
	Indent(n int)
	Unindent(n int)
	Print(str string)
	Printf(fmt string, args ...any)
	Println(str string)
	String() string
}

// PrettyPrinter is implemented by nodes that render themselves over multiple lines.
type PrettyPrinter interface {
	PrettyPrint(cp CodePrinter)
}

func WithIndent(n int, cp CodePrinter, block func(cp CodePrinter)) {
	cp.Indent(n)
	defer cp.Unindent(n)
	block(cp)
}

type codePrinter struct {
	indent      int
	line        int
	col         int
	builder     strings.Builder
	linebuilder strings.Builder
}

func (c *codePrinter) Indent(n int) {
	c.indent += n
}

func (c *codePrinter) Unindent(n int) {
	c.indent -= n
	if c.indent < 0 {
		c.indent = 0
	}
}

func (c *codePrinter) Print(str string) {
	lines := strings.Split(str, "\n")
	for idx, l := range lines {
		if c.col == 0 && l != "" {
			// new line has started so add the indent string
			c.linebuilder.WriteString(c.IndentString())
		}
		c.linebuilder.WriteString(l)
		c.col += len(l)
		if idx < len(lines)-1 {
			c.line++
			c.col = 0
			c.builder.WriteString(c.linebuilder.String())
			c.builder.WriteRune('\n')
			c.linebuilder.Reset()
		}
	}
}

func (c *codePrinter) Println(str string) {
	c.Print(str + "\n")
}

func (c *codePrinter) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

func (c *codePrinter) IndentString() string {
	return strings.Repeat("  ", c.indent)
}

func (c *codePrinter) String() string {
	return c.builder.String() + c.linebuilder.String()
}

func NewCodePrinter() CodePrinter {
	return &codePrinter{}
}

// PrettyPrint writes expr to cp, falling back to its one-line form.
func PrettyPrint(cp CodePrinter, expr Expr) {
	if pp, ok := expr.(PrettyPrinter); ok {
		pp.PrettyPrint(cp)
		return
	}
	cp.Print(expr.String())
}

// PPrint renders expr as indented source.
func PPrint(expr Expr) string {
	cp := NewCodePrinter()
	PrettyPrint(cp, expr)
	return cp.String()
}
