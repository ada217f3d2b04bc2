package loader

import (
	"fmt"
	"slices"

	"github.com/kates/vector/core"
	"github.com/kates/vector/decl"
	"gopkg.in/yaml.v3"
)

// decoder builds decl nodes from one document. Nodes are built depth first in
// source order so each assignment registers its variable in the shared
// CompilerState before anything after it is built.
type decoder struct {
	s    *session
	file string
}

func (d *decoder) loc(n *yaml.Node) Location { return nodeLocation(d.file, n) }

// program decodes the top-level document: a mapping with a `program` list.
func (d *decoder) program(doc *yaml.Node) []decl.Expr {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		d.s.Errorf(d.loc(root), "document must be a mapping with a program key")
		return nil
	}
	var body *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		switch key.Value {
		case "program":
			body = root.Content[i+1]
		default:
			d.s.warnf(d.loc(key), "ignoring unknown top-level key %q", key.Value)
		}
	}
	if body == nil {
		d.s.Errorf(d.loc(root), "missing program key")
		return nil
	}
	return d.statements(body)
}

// statements decodes a list of expressions, or a single one. Includes are
// spliced in place.
func (d *decoder) statements(n *yaml.Node) []decl.Expr {
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	var out []decl.Expr
	for _, item := range items {
		if d.s.Full() {
			break
		}
		if key, value, ok := d.single(item); ok && key.Value == "include" {
			out = append(out, d.include(key, value)...)
			continue
		}
		if e := d.expr(item); e != nil {
			out = append(out, e)
		}
	}
	return out
}

// single unpacks a one-key mapping.
func (d *decoder) single(n *yaml.Node) (key, value *yaml.Node, ok bool) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, nil, false
	}
	return n.Content[0], n.Content[1], true
}

func (d *decoder) expr(n *yaml.Node) decl.Expr {
	key, value, ok := d.single(n)
	if !ok {
		d.s.Errorf(d.loc(n), "expression must be a mapping with exactly one key")
		return nil
	}
	switch key.Value {
	case "literal":
		return d.literal(value)
	case "variable":
		return d.variable(value)
	case "path":
		p, ok := d.path(value)
		if !ok {
			return nil
		}
		return decl.NewPath(p)
	case "assign":
		return d.assign(value)
	case "if":
		return d.ifStatement(value)
	case "not":
		inner := d.expr(value)
		if inner == nil {
			return nil
		}
		return decl.NewNot(inner)
	case "noop":
		return decl.NewNoop()
	case "block":
		return decl.NewBlock(d.statements(value)...)
	case "include":
		d.s.Errorf(d.loc(key), "include is only allowed as a statement")
		return nil
	}
	d.s.Errorf(d.loc(key), "unknown expression %q", key.Value)
	return nil
}

func (d *decoder) literal(n *yaml.Node) decl.Expr {
	var raw any
	if err := n.Decode(&raw); err != nil {
		d.s.Wrapf(d.loc(n), err, "invalid literal")
		return nil
	}
	v, err := core.From(raw)
	if err != nil {
		d.s.Wrapf(d.loc(n), err, "invalid literal")
		return nil
	}
	return decl.NewLiteral(v)
}

func (d *decoder) variable(n *yaml.Node) decl.Expr {
	if n.Kind != yaml.ScalarNode || !isIdent(n.Value) {
		d.s.Errorf(d.loc(n), "variable name must be an identifier, got %q", n.Value)
		return nil
	}
	v := decl.NewVariable(n.Value)
	d.s.positions[v] = d.loc(n)
	return v
}

func (d *decoder) path(n *yaml.Node) (core.Path, bool) {
	if n.Kind != yaml.ScalarNode {
		return nil, d.s.Errorf(d.loc(n), "path must be a string")
	}
	p, err := core.ParsePath(n.Value)
	if err != nil {
		return nil, d.s.Wrapf(d.loc(n), err, "bad path")
	}
	return p, true
}

// fields maps the keys of a mapping node, reporting any key not in allowed.
func (d *decoder) fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, bool) {
	if n.Kind != yaml.MappingNode {
		return nil, d.s.Errorf(d.loc(n), "expected a mapping")
	}
	out := map[string]*yaml.Node{}
	ok := true
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !slices.Contains(allowed, key.Value) {
			ok = d.s.Errorf(d.loc(key), "unexpected key %q", key.Value)
			continue
		}
		out[key.Value] = n.Content[i+1]
	}
	return out, ok
}

func (d *decoder) assign(n *yaml.Node) decl.Expr {
	f, ok := d.fields(n, "variable", "path", "value")
	if !ok {
		return nil
	}
	valueNode, hasValue := f["value"]
	if !hasValue {
		return d.s.failf(d.loc(n), "assign needs a value")
	}
	varNode, hasVar := f["variable"]
	pathNode, hasPath := f["path"]
	if hasVar == hasPath {
		return d.s.failf(d.loc(n), "assign needs exactly one of variable or path")
	}

	// The value is built first so it sees the state from before this assignment.
	value := d.expr(valueNode)
	if value == nil {
		return nil
	}
	var target decl.Expr
	if hasVar {
		if target = d.variable(varNode); target == nil {
			return nil
		}
	} else {
		p, ok := d.path(pathNode)
		if !ok {
			return nil
		}
		target = decl.NewPath(p)
	}
	a, err := decl.NewAssignment(target, value, d.s.state)
	if err != nil {
		d.s.Wrapf(d.loc(n), err, "invalid assignment")
		return nil
	}
	return a
}

func (d *decoder) ifStatement(n *yaml.Node) decl.Expr {
	f, ok := d.fields(n, "condition", "then", "else")
	if !ok {
		return nil
	}
	condNode, hasCond := f["condition"]
	thenNode, hasThen := f["then"]
	if !hasCond || !hasThen {
		return d.s.failf(d.loc(n), "if needs a condition and a then branch")
	}
	cond := d.expr(condNode)
	then := decl.NewBlock(d.statements(thenNode)...)
	var alt decl.Expr
	if elseNode, hasElse := f["else"]; hasElse {
		alt = decl.NewBlock(d.statements(elseNode)...)
	}
	if cond == nil {
		return nil
	}
	return decl.NewIfStatement(cond, then, alt)
}

func (d *decoder) include(key, value *yaml.Node) []decl.Expr {
	if value.Kind != yaml.ScalarNode || value.Value == "" {
		d.s.Errorf(d.loc(key), "include needs a file path")
		return nil
	}
	exprs, err := d.s.loadFile(d.file, value.Value)
	if err != nil {
		d.s.Wrapf(d.loc(value), err, "include %q failed", value.Value)
		return nil
	}
	return exprs
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// failf records an error and returns a nil expression.
func (s *session) failf(pos Location, msg string) decl.Expr {
	s.Errorf(pos, "%s", msg)
	return nil
}

func (s *session) warnf(pos Location, format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf("%s: %s", pos, fmt.Sprintf(format, args...)))
}
