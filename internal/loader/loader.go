// Package loader wraps go/packages to load the Go packages of a module
// with parsed syntax for the CFG consistency pass.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode is the minimum set of flags the CFG pass needs.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax

// LoadAll loads every package matching patterns, relative to dir
// (the current directory when empty). Test files are included.
func LoadAll(dir string, patterns ...string) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode:  LoadMode,
		Dir:   dir,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages %v: %w", patterns, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for patterns %v", patterns)
	}

	// Package-level errors (syntax errors, missing files) make the
	// syntax trees unreliable.
	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			if e.Kind == packages.ParseError || e.Kind == packages.ListError {
				errs = append(errs, e.Error())
			}
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("packages %v have errors:\n  %s",
			patterns, strings.Join(errs, "\n  "))
	}

	return dedupe(pkgs), nil
}

// dedupe drops the duplicate packages Tests: true produces: a package
// and its in-package test variant share non-test files, so only the
// variant with the most files is kept per directory and name.
func dedupe(pkgs []*packages.Package) []*packages.Package {
	type key struct{ name, dir string }
	best := map[key]int{}
	var order []key
	for i, p := range pkgs {
		if strings.HasSuffix(p.ID, ".test") {
			continue
		}
		dir := ""
		if len(p.GoFiles) > 0 {
			dir = filepath.Dir(p.GoFiles[0])
		}
		k := key{p.Name, dir}
		j, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = i
			continue
		}
		if len(p.Syntax) > len(pkgs[j].Syntax) {
			best[k] = i
		}
	}
	out := make([]*packages.Package, 0, len(order))
	for _, k := range order {
		out = append(out, pkgs[best[k]])
	}
	return out
}
