package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a map field or an array index.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

func FieldSegment(name string) Segment { return Segment{Field: name} }
func IndexSegment(i int) Segment       { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if isPlainField(s.Field) {
		return "." + s.Field
	}
	return "." + strconv.Quote(s.Field)
}

// Path addresses a location inside an event. The empty path is the root.
type Path []Segment

func (p Path) IsRoot() bool { return len(p) == 0 }

func (p Path) String() string {
	if p.IsRoot() {
		return "."
	}
	var sb strings.Builder
	for _, seg := range p {
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// ParsePath parses paths such as `.`, `.message`, `.a.b[2]` and `."dotted.key"`.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] != '.' {
		return nil, fmt.Errorf("%w: %q must start with '.'", ErrInvalidPath, s)
	}
	if s == "." {
		return Path{}, nil
	}
	var out Path
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			if i >= len(s) {
				return nil, fmt.Errorf("%w: %q ends with '.'", ErrInvalidPath, s)
			}
			if s[i] == '"' {
				end := i + 1
				for end < len(s) && s[end] != '"' {
					if s[end] == '\\' {
						end++
					}
					end++
				}
				if end >= len(s) {
					return nil, fmt.Errorf("%w: unterminated quote in %q", ErrInvalidPath, s)
				}
				field, err := strconv.Unquote(s[i : end+1])
				if err != nil {
					return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, s, err)
				}
				out = append(out, FieldSegment(field))
				i = end + 1
				continue
			}
			start := i
			for i < len(s) && isFieldChar(s[i]) {
				i++
			}
			if start == i {
				return nil, fmt.Errorf("%w: empty field in %q", ErrInvalidPath, s)
			}
			out = append(out, FieldSegment(s[start:i]))
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated index in %q", ErrInvalidPath, s)
			}
			idx, err := strconv.Atoi(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("%w: bad index in %q", ErrInvalidPath, s)
			}
			out = append(out, IndexSegment(idx))
			i += end + 1
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrInvalidPath, s[i], i, s)
		}
	}
	return out, nil
}

// MustParsePath panics on malformed input.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isFieldChar(c byte) bool {
	return c == '_' || c == '-' || c == '@' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isPlainField(f string) bool {
	if f == "" {
		return false
	}
	for i := 0; i < len(f); i++ {
		if !isFieldChar(f[i]) {
			return false
		}
	}
	return true
}

// Get looks up the value at path. Negative indexes count from the end.
func (v Value) Get(path Path) (Value, bool) {
	curr := v
	for _, seg := range path {
		if seg.IsIndex {
			arr, ok := curr.AsArray()
			if !ok {
				return Null, false
			}
			idx := seg.Index
			if idx < 0 {
				idx += len(arr)
			}
			if idx < 0 || idx >= len(arr) {
				return Null, false
			}
			curr = arr[idx]
		} else {
			m, ok := curr.AsMap()
			if !ok {
				return Null, false
			}
			if curr, ok = m[seg.Field]; !ok {
				return Null, false
			}
		}
	}
	return curr, true
}

// MaxIndexPadding is the most nulls Insert will append to reach an index
// past the end of an array.
const MaxIndexPadding = 1024

// Insert writes value at path, creating intermediate maps and arrays as
// needed. Arrays are padded with nulls when the index is past the end, up to
// MaxIndexPadding elements.
func (v *Value) Insert(path Path, value Value) error {
	if path.IsRoot() {
		*v = value
		return nil
	}
	seg, rest := path[0], path[1:]
	if seg.IsIndex {
		if v.IsNull() {
			*v = NewArray(nil)
		}
		arr, ok := v.AsArray()
		if !ok {
			return fmt.Errorf("%w: cannot index %s with %s", ErrPathConflict, v.Kind(), seg)
		}
		idx := seg.Index
		if idx < 0 {
			idx += len(arr)
			if idx < 0 {
				return fmt.Errorf("%w: index %d out of range", ErrPathConflict, seg.Index)
			}
		}
		if idx-len(arr) >= MaxIndexPadding {
			return fmt.Errorf("%w: index %d is %d past the end of the array", ErrPathConflict, idx, idx-len(arr))
		}
		for len(arr) <= idx {
			arr = append(arr, Null)
		}
		child := arr[idx]
		if err := child.Insert(rest, value); err != nil {
			return err
		}
		arr[idx] = child
		v.data = arr
		return nil
	}
	if v.IsNull() {
		*v = NewMap(nil)
	}
	m, ok := v.AsMap()
	if !ok {
		return fmt.Errorf("%w: cannot set field %q on %s", ErrPathConflict, seg.Field, v.Kind())
	}
	child := m[seg.Field]
	if err := child.Insert(rest, value); err != nil {
		return err
	}
	m[seg.Field] = child
	return nil
}

// Remove deletes the value at path and returns it. Removing the root resets v to Null.
func (v *Value) Remove(path Path) (Value, bool) {
	if path.IsRoot() {
		old := *v
		*v = Null
		return old, true
	}
	parent, ok := v.Get(path[:len(path)-1])
	if !ok {
		return Null, false
	}
	last := path[len(path)-1]
	if !last.IsIndex {
		m, ok := parent.AsMap()
		if !ok {
			return Null, false
		}
		old, ok := m[last.Field]
		delete(m, last.Field)
		return old, ok
	}
	arr, ok := parent.AsArray()
	if !ok {
		return Null, false
	}
	idx := last.Index
	if idx < 0 {
		idx += len(arr)
	}
	if idx < 0 || idx >= len(arr) {
		return Null, false
	}
	old := arr[idx]
	shrunk := append(arr[:idx:idx], arr[idx+1:]...)
	if err := v.Insert(path[:len(path)-1], NewArray(shrunk)); err != nil {
		return Null, false
	}
	return old, true
}
