package testmodel

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/unbound-force/testgen/internal/backend"
	"github.com/unbound-force/testgen/internal/naming"
)

// SimpleOptions are the settings only SimpleClassModel understands.
type SimpleOptions struct {
	// Recursive turns subdirectories into nested classes.
	Recursive bool

	// ExcludeParentDirs keeps directories that contain subdirectories
	// from being cases in directory mode.
	ExcludeParentDirs bool

	// ExcludeDirs are doublestar patterns matched against the slash
	// path of a directory relative to Root. A matched directory is
	// skipped together with everything below it.
	ExcludeDirs []string

	// Deep limits nesting; nil means unlimited and 0 disables nested
	// classes.
	Deep *int

	// SkipTestsForExperimentalCoroutines drops cases marked with the
	// COMMON_COROUTINES_TEST directive.
	SkipTestsForExperimentalCoroutines bool
}

// SimpleClassModel mirrors the directory structure under Root: entries
// directly under a directory become methods and subdirectories become
// nested classes.
type SimpleClassModel struct {
	cfg  Config
	opts SimpleOptions
}

// NewSimpleClassModel validates opts and returns the model.
func NewSimpleClassModel(cfg Config, opts SimpleOptions) (*SimpleClassModel, error) {
	for _, p := range opts.ExcludeDirs {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid excluded directory pattern %q", p)
		}
	}
	return &SimpleClassModel{cfg: cfg, opts: opts}, nil
}

func (m *SimpleClassModel) Name() string { return m.cfg.name() }
func (m *SimpleClassModel) Root() string { return m.cfg.Root }
func (m *SimpleClassModel) TargetBackend() backend.Target { return m.cfg.target() }

// CaseNames implements ClassModel.
func (m *SimpleClassModel) CaseNames() ([]string, error) {
	rc, err := m.Discover()
	if err != nil {
		return nil, err
	}
	return rc.CaseNames(), nil
}

// Discover implements ClassModel.
func (m *SimpleClassModel) Discover() (*ResolvedClass, error) {
	rc, err := m.discover(m.cfg.Root, "", m.Name(), m.opts.Deep)
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", m.cfg.Root, err)
	}
	return rc, nil
}

func (m *SimpleClassModel) discover(dir, rel, name string, deep *int) (*ResolvedClass, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	rc := m.cfg.newClass(name, dir, m.opts.Recursive, m.opts.ExcludeDirs)
	rc.Cases = []TestCase{}

	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		childRel := path.Join(rel, e.Name())
		isDir := e.IsDir()

		if isDir && m.excluded(childRel) {
			continue
		}

		if isDir == m.cfg.Directories && !(isDir && m.opts.ExcludeParentDirs && hasSubDirs(full)) {
			tc, ok, err := m.cfg.candidate(full, childRel, e.Name(), isDir, m.opts.SkipTestsForExperimentalCoroutines)
			if err != nil {
				return nil, err
			}
			if ok {
				rc.Cases = append(rc.Cases, tc)
				continue
			}
		}

		if !isDir || !m.opts.Recursive || (deep != nil && *deep <= 0) {
			continue
		}
		inner, err := m.discover(full, childRel, naming.ClassName(e.Name()), decrement(deep))
		if err != nil {
			return nil, err
		}
		if !inner.empty() {
			rc.Inner = append(rc.Inner, inner)
		}
	}
	return rc, nil
}

func (m *SimpleClassModel) excluded(rel string) bool {
	for _, p := range m.opts.ExcludeDirs {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func decrement(deep *int) *int {
	if deep == nil {
		return nil
	}
	d := *deep - 1
	return &d
}

func hasSubDirs(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			return true
		}
	}
	return false
}
