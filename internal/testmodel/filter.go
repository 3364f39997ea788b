package testmodel

import (
	"fmt"
	"path/filepath"
	"unicode"
	"unicode/utf8"

	"github.com/unbound-force/testgen/internal/backend"
	"github.com/unbound-force/testgen/internal/naming"
)

// defaultName derives a class name from the last element of root.
func defaultName(root string) string {
	return naming.ClassName(filepath.Base(root))
}

func (c *Config) name() string {
	if c.Name != "" {
		return c.Name
	}
	return defaultName(c.Root)
}

func (c *Config) target() backend.Target {
	if c.TargetBackend == "" {
		return backend.Any
	}
	return c.TargetBackend
}

func (c *Config) testMethod() string {
	if c.TestMethod == "" {
		return "doTest"
	}
	return c.TestMethod
}

func (c *Config) runnerMethod() string {
	if c.RunnerMethod == "" {
		return "runTest"
	}
	return c.RunnerMethod
}

// newClass returns an empty ResolvedClass carrying c's settings.
func (c *Config) newClass(name, root string, recursive bool, excluded []string) *ResolvedClass {
	return &ResolvedClass{
		Name:           name,
		Root:           root,
		Pattern:        c.Matcher.Include(),
		ExcludePattern: c.Matcher.Exclude(),
		TargetBackend:  c.target(),
		Recursive:      recursive,
		ExcludedDirs:   excluded,
		TestMethod:     c.testMethod(),
		RunnerMethod:   c.runnerMethod(),
		RunnerArgs:     c.RunnerArgs,
		Annotations:    c.Annotations,
	}
}

// candidate decides whether the entry at path is a case. Entries that
// match but are filtered by backend directives are skipped without an
// error.
func (c *Config) candidate(path, rel, entryName string, isDir, skipCoroutines bool) (TestCase, bool, error) {
	name, ok := c.Matcher.Match(entryName)
	if !ok {
		return TestCase{}, false, nil
	}
	if err := c.checkCase(path, entryName); err != nil {
		return TestCase{}, false, err
	}

	target := c.target()
	if target != backend.Any || c.SkipIgnored || skipCoroutines {
		src := c.Directives
		if src == nil {
			src = backend.FileSource{}
		}
		d, err := src.Directives(path)
		if err != nil {
			return TestCase{}, false, fmt.Errorf("reading directives of %s: %w", path, err)
		}
		if !d.Compatible(target) {
			return TestCase{}, false, nil
		}
		if c.SkipIgnored && d.Ignored(target) {
			return TestCase{}, false, nil
		}
		if skipCoroutines && d.CommonCoroutinesTest {
			return TestCase{}, false, nil
		}
	}

	return TestCase{
		Name:       name,
		MethodName: naming.MethodName(name),
		Path:       path,
		RelPath:    rel,
		IsDir:      isDir,
	}, true, nil
}

// checkCase enforces FilenameStartsLowerCase.
func (c *Config) checkCase(path, entryName string) error {
	if c.FilenameStartsLowerCase == nil {
		return nil
	}
	r, _ := utf8.DecodeRuneInString(entryName)
	if unicode.IsLower(r) != *c.FilenameStartsLowerCase {
		return &NamingError{Path: path, WantLowerCase: *c.FilenameStartsLowerCase}
	}
	return nil
}
