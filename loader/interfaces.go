package loader

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parser turns raw program source into a YAML node tree.
type Parser interface {
	// Parse reads from the input reader and returns the document node.
	// sourceName is used for context in error messages (e.g., file path).
	Parse(input io.Reader, sourceName string) (*yaml.Node, error)
}

// FileResolver resolves include paths and reads file content.
type FileResolver interface {
	// Resolve takes the path of the including file and the path named by the include.
	// It returns the content, the canonical path used for cycle detection, and
	// an error if resolution or reading fails.
	Resolve(importerPath, includePath string) (content io.ReadCloser, canonicalPath string, err error)
}

// YAMLParser is the default Parser. JSON documents parse too.
type YAMLParser struct{}

func (YAMLParser) Parse(input io.Reader, sourceName string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(input).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidDocument, sourceName)
		}
		return nil, fmt.Errorf("in '%s': %w", sourceName, err)
	}
	return &doc, nil
}
