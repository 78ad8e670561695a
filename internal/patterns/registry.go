// Package patterns loads extra heading families from YAML files and keeps a
// compiled outline.Matcher built from them and the built-in families.
package patterns

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docoutline/internal/outline"
)

// File is one pattern file on disk.
type File struct {
	Name     string           `yaml:"name"`
	Families []outline.Family `yaml:"families"`
}

// Parse decodes and validates a pattern file. Unknown keys, invalid levels
// and patterns that do not compile are errors.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("empty pattern file")
		}
		return File{}, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(f.Families) == 0 {
		return File{}, fmt.Errorf("no families defined")
	}
	if _, err := outline.NewMatcher(f.Families...); err != nil {
		return File{}, err
	}
	return f, nil
}

// Registry holds the pattern files of one directory and the matcher compiled
// from them. It is safe for concurrent use.
type Registry struct {
	log *slog.Logger

	mu    sync.RWMutex
	dir   string
	files map[string]File // keyed by base file name

	matcher atomic.Pointer[outline.Matcher]

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(m *outline.Matcher)
}

// NewRegistry returns a registry serving only the built-in families.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		log:   log,
		files: make(map[string]File),
	}
	r.matcher.Store(outline.DefaultMatcher())
	return r
}

// NewRegistryWithDirectory creates a registry and loads every pattern file in
// dir. A missing directory is not an error.
func NewRegistryWithDirectory(dir string, log *slog.Logger) (*Registry, error) {
	r := NewRegistry(log)
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Matcher returns the current matcher. It is swapped atomically on reload.
func (r *Registry) Matcher() *outline.Matcher {
	return r.matcher.Load()
}

// Families returns the built-in families followed by the loaded ones, in file
// name order.
func (r *Registry) Families() []outline.Family {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.familiesLocked()
}

func (r *Registry) familiesLocked() []outline.Family {
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)

	families := outline.DefaultFamilies()
	for _, name := range names {
		families = append(families, r.files[name].Families...)
	}
	return families
}

// Count returns the number of loaded pattern files.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// LoadDirectory loads all YAML pattern files in dir. Files that fail to load
// are reported together; the others stay loaded.
func (r *Registry) LoadDirectory(dir string) error {
	files, loadErr := readDirectory(dir)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dir = dir
	if len(files) > 0 {
		for name, f := range files {
			r.files[name] = f
		}
		if err := r.rebuildLocked(); err != nil {
			return err
		}
	}
	return loadErr
}

// readDirectory parses every pattern file in dir without touching the
// registry. It returns the files that loaded even when others failed.
func readDirectory(dir string) (map[string]File, error) {
	files := make(map[string]File)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return files, nil
		}
		return files, fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return files, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return files, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		f, err := readFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			loadErrors = append(loadErrors, err.Error())
			continue
		}
		files[entry.Name()] = f
	}
	if len(loadErrors) > 0 {
		return files, fmt.Errorf("errors loading patterns: %s", strings.Join(loadErrors, "; "))
	}
	return files, nil
}

func readFile(path string) (File, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("%s: reading file: %w", name, err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// LoadFile loads or replaces a single pattern file and rebuilds the matcher.
func (r *Registry) LoadFile(path string) error {
	f, err := readFile(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[filepath.Base(path)] = f
	return r.rebuildLocked()
}

// Reload reads the directory again and replaces every loaded file at once.
// The matcher in use is swapped only after the new set is built.
func (r *Registry) Reload() error {
	r.mu.RLock()
	dir := r.dir
	r.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	files, loadErr := readDirectory(dir)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = files
	if err := r.rebuildLocked(); err != nil {
		return err
	}
	return loadErr
}

func (r *Registry) rebuildLocked() error {
	m, err := outline.NewMatcher(r.familiesLocked()...)
	if err != nil {
		return fmt.Errorf("building matcher: %w", err)
	}
	r.matcher.Store(m)
	return nil
}

// SetOnChange registers a callback run after the watcher rebuilt the matcher.
func (r *Registry) SetOnChange(fn func(m *outline.Matcher)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
