package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
)

// DefaultFileResolver implements FileResolver for the local filesystem.
type DefaultFileResolver struct{}

func NewDefaultFileResolver() *DefaultFileResolver {
	return &DefaultFileResolver{}
}

// Resolve treats relative include paths as relative to the including file.
func (r *DefaultFileResolver) Resolve(importerPath, includePath string) (io.ReadCloser, string, error) {
	resolvedPath := includePath
	if !filepath.IsAbs(includePath) && importerPath != "" {
		resolvedPath = filepath.Join(filepath.Dir(importerPath), includePath)
	}

	canonicalPath, err := filepath.Abs(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("could not get absolute path for '%s': %w", resolvedPath, err)
	}

	file, err := os.Open(canonicalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s (resolved from '%s')", canonicalPath, includePath)
		}
		return nil, "", fmt.Errorf("could not open file '%s': %w", canonicalPath, err)
	}
	return file, canonicalPath, nil
}

// MemoryResolver serves program sources from memory, keyed by slash-separated path.
type MemoryResolver struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryResolver(files map[string]string) *MemoryResolver {
	m := &MemoryResolver{files: make(map[string][]byte, len(files))}
	for name, content := range files {
		m.files[path.Clean(name)] = []byte(content)
	}
	return m
}

// Add stores or replaces a file.
func (m *MemoryResolver) Add(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(name)] = []byte(content)
}

func (m *MemoryResolver) Resolve(importerPath, includePath string) (io.ReadCloser, string, error) {
	resolved := includePath
	if !path.IsAbs(includePath) && importerPath != "" {
		resolved = path.Join(path.Dir(importerPath), includePath)
	}
	resolved = path.Clean(resolved)

	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[resolved]
	if !ok {
		return nil, "", fmt.Errorf("file not found: %s", resolved)
	}
	return io.NopCloser(bytes.NewReader(content)), resolved, nil
}
