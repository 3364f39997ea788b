package testmodel

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/unbound-force/testgen/internal/backend"
)

// SingleClassModel flattens a directory subtree into one class: every
// matching entry at any depth becomes a method of the same class.
type SingleClassModel struct {
	cfg Config

	// deep limits how many directory levels below Root are walked.
	// Nil means unlimited.
	deep *int
}

// NewSingleClassModel returns a flattening model over cfg.Root.
func NewSingleClassModel(cfg Config, deep *int) *SingleClassModel {
	return &SingleClassModel{cfg: cfg, deep: deep}
}

func (m *SingleClassModel) Name() string { return m.cfg.name() }
func (m *SingleClassModel) Root() string { return m.cfg.Root }
func (m *SingleClassModel) TargetBackend() backend.Target { return m.cfg.target() }

// CaseNames implements ClassModel.
func (m *SingleClassModel) CaseNames() ([]string, error) {
	rc, err := m.Discover()
	if err != nil {
		return nil, err
	}
	return rc.CaseNames(), nil
}

// Discover walks every descendant of Root in lexical order.
func (m *SingleClassModel) Discover() (*ResolvedClass, error) {
	rc := m.cfg.newClass(m.Name(), m.cfg.Root, true, nil)
	rc.Cases = []TestCase{}

	err := filepath.WalkDir(m.cfg.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == m.cfg.Root {
			return nil
		}
		rel, err := filepath.Rel(m.cfg.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() == m.cfg.Directories {
			tc, ok, err := m.cfg.candidate(p, rel, d.Name(), d.IsDir(), false)
			if err != nil {
				return err
			}
			if ok {
				rc.Cases = append(rc.Cases, tc)
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		// The depth limit stops descent only.
		if d.IsDir() && m.deep != nil && depth(rel) > *m.deep {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering %s: %w", m.cfg.Root, err)
	}
	return rc, nil
}

// depth counts the segments of a slash-separated relative path.
func depth(rel string) int {
	if rel == "" || rel == "." {
		return 0
	}
	return strings.Count(path.Clean(rel), "/") + 1
}
