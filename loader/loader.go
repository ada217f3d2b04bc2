package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/kates/vector/decl"
	"github.com/kates/vector/runtime"
)

// LoadResult holds the outcome of a loading operation.
type LoadResult struct {
	// Program is nil when Errors is not empty.
	Program *runtime.Program

	// Files lists every document read, root first, by canonical path.
	Files []string

	// Warnings do not stop the load: unknown interpolation variables, ignored
	// keys, and possibly unassigned reads under permissive strictness.
	Warnings []string

	// Decode, resolution, include and strictness errors.
	Errors []error
}

// Loader reads program documents into runtime Programs. A Loader holds only
// configuration and may be shared between goroutines.
type Loader struct {
	parser     Parser
	resolver   FileResolver
	strictness decl.Strictness
	vars       map[string]string
	assumed    []string
	maxDepth   int
	maxErrors  int
}

type Option func(*Loader)

func WithParser(p Parser) Option { return func(l *Loader) { l.parser = p } }

func WithResolver(r FileResolver) Option { return func(l *Loader) { l.resolver = r } }

func WithStrictness(s decl.Strictness) Option { return func(l *Loader) { l.strictness = s } }

// WithVars sets the variables used to interpolate program sources.
func WithVars(vars map[string]string) Option { return func(l *Loader) { l.vars = vars } }

// WithAssumed declares variables the host seeds before every run.
func WithAssumed(idents ...string) Option {
	return func(l *Loader) { l.assumed = append(l.assumed, idents...) }
}

// WithMaxDepth limits include nesting. 0 means no limit, 1 means root only.
func WithMaxDepth(n int) Option { return func(l *Loader) { l.maxDepth = n } }

// WithMaxErrors stops decoding after n errors. 0 means no limit.
func WithMaxErrors(n int) Option { return func(l *Loader) { l.maxErrors = n } }

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		parser:   YAMLParser{},
		resolver: NewDefaultFileResolver(),
		maxDepth: 10,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// session is the state of one load.
type session struct {
	ErrorCollector
	l         *Loader
	state     *decl.CompilerState
	positions map[*decl.Variable]Location
	pending   map[string]bool
	files     []string
	warnings  []string
	depth     int
}

func (l *Loader) newSession() *session {
	return &session{
		ErrorCollector: ErrorCollector{MaxErrors: l.maxErrors},
		l:              l,
		state:          decl.NewCompilerState(),
		positions:      map[*decl.Variable]Location{},
		pending:        map[string]bool{},
	}
}

// LoadFile loads the program at path through the configured resolver.
// The returned error is the first entry of result.Errors.
func (l *Loader) LoadFile(path string) (*LoadResult, error) {
	s := l.newSession()
	exprs, err := s.loadFile("", path)
	if err != nil {
		s.AddErrors(fmt.Errorf("failed to load '%s': %w", path, err))
	}
	return s.finish(exprs)
}

// LoadSource loads a program from r. Includes resolve relative to name.
func (l *Loader) LoadSource(name string, r io.Reader) (*LoadResult, error) {
	s := l.newSession()
	s.pending[name] = true
	s.depth = 1
	s.files = append(s.files, name)
	exprs, err := s.decode(name, r)
	if err != nil {
		s.AddErrors(err)
	}
	return s.finish(exprs)
}

// loadFile resolves and decodes one document, tracking include depth and cycles.
func (s *session) loadFile(importerPath, filePath string) ([]decl.Expr, error) {
	if s.l.maxDepth > 0 && s.depth >= s.l.maxDepth {
		return nil, fmt.Errorf("%w (%d) near '%s'", ErrMaxDepth, s.l.maxDepth, filePath)
	}
	content, canonicalPath, err := s.l.resolver.Resolve(importerPath, filePath)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	if s.pending[canonicalPath] {
		return nil, fmt.Errorf("%w: '%s' is already being loaded", ErrCircularInclude, canonicalPath)
	}
	s.pending[canonicalPath] = true
	s.depth++
	defer func() {
		delete(s.pending, canonicalPath)
		s.depth--
	}()

	s.files = append(s.files, canonicalPath)
	runtime.Debug("loading program file %s", canonicalPath)
	return s.decode(canonicalPath, content)
}

func (s *session) decode(name string, r io.Reader) ([]decl.Expr, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", name, err)
	}
	source := string(raw)
	if s.l.vars != nil {
		var warnings []string
		source, warnings = Interpolate(source, s.l.vars)
		for _, w := range warnings {
			s.warnings = append(s.warnings, name+": "+w)
		}
	}
	doc, err := s.l.parser.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, err
	}
	d := &decoder{s: s, file: name}
	return d.program(doc), nil
}

// finish runs the definite assignment check and builds the Program.
func (s *session) finish(exprs []decl.Expr) (*LoadResult, error) {
	result := &LoadResult{Files: s.files}
	root := decl.NewBlock(exprs...)

	if !s.HasErrors() {
		analysis, err := decl.Analyze(root, s.l.assumed...)
		if err != nil {
			s.AddErrors(err)
		} else {
			for _, v := range analysis.Unbound {
				pos := s.positions[v]
				if s.l.strictness == decl.StrictnessStrict {
					s.Errorf(pos, "variable %q may be read before it is assigned", v.Ident())
				} else {
					s.warnf(pos, "variable %q may be read before it is assigned", v.Ident())
				}
			}
		}
	}

	result.Warnings = s.warnings
	for _, w := range s.warnings {
		runtime.Debug("%s", w)
	}
	if s.HasErrors() {
		result.Errors = s.Errors
		return result, s.Errors[0]
	}

	program, err := runtime.NewProgram(root, s.state,
		runtime.WithStrictness(s.l.strictness),
		runtime.WithAssumed(s.l.assumed...),
		// unbound reads are already in result.Warnings with their positions
		runtime.WithUnboundReporter(nil))
	if err != nil {
		result.Errors = []error{err}
		return result, err
	}
	result.Program = program
	return result, nil
}
