// Package testmodel discovers test cases on disk and resolves them
// into the declaration of a generated test class.
//
// Two variants exist. SingleClassModel flattens a whole directory
// subtree into one class. SimpleClassModel mirrors the directory
// structure, turning subdirectories into nested classes.
package testmodel

import (
	"fmt"
	"strings"

	"github.com/unbound-force/testgen/internal/backend"
	"github.com/unbound-force/testgen/internal/pattern"
)

// Annotation describes a Java annotation placed on a generated class.
type Annotation struct {
	// Type is the annotation type, simple or fully qualified.
	Type string `json:"type" yaml:"type"`

	// Arguments are rendered verbatim between parentheses.
	Arguments []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// String renders the annotation as source text.
func (a Annotation) String() string {
	if len(a.Arguments) == 0 {
		return "@" + a.Type
	}
	return fmt.Sprintf("@%s(%s)", a.Type, strings.Join(a.Arguments, ", "))
}

// TestCase is one resolved test input: a file or a directory that
// becomes a single generated test method.
type TestCase struct {
	// Name is the pattern's capture group for the entry name.
	Name string `json:"name"`

	// MethodName is the generated method name derived from Name.
	MethodName string `json:"method"`

	// Path is the on-disk path of the entry.
	Path string `json:"path"`

	// RelPath is the slash-separated path relative to the model root.
	// Flattened models use it to tell apart cases with the same Name.
	RelPath string `json:"rel_path"`

	// IsDir is true in directory mode.
	IsDir bool `json:"is_dir,omitempty"`
}

// ResolvedClass is the outcome of discovery: everything needed to
// emit one (possibly nested) test class.
type ResolvedClass struct {
	Name           string           `json:"name"`
	Root           string           `json:"root"`
	Pattern        string           `json:"pattern"`
	ExcludePattern string           `json:"exclude_pattern,omitempty"`
	TargetBackend  backend.Target   `json:"target_backend"`
	Recursive      bool             `json:"recursive"`
	ExcludedDirs   []string         `json:"excluded_dirs,omitempty"`
	TestMethod     string           `json:"test_method"`
	RunnerMethod   string           `json:"runner_method"`
	RunnerArgs     []string         `json:"runner_args,omitempty"`
	Annotations    []Annotation     `json:"annotations,omitempty"`
	Cases          []TestCase       `json:"cases"`
	Inner          []*ResolvedClass `json:"inner,omitempty"`
}

// CaseCount returns the number of cases in rc and all nested classes.
func (rc *ResolvedClass) CaseCount() int {
	n := len(rc.Cases)
	for _, in := range rc.Inner {
		n += in.CaseCount()
	}
	return n
}

// CaseNames returns case names in emission order: own cases first,
// then each nested class depth-first.
func (rc *ResolvedClass) CaseNames() []string {
	names := make([]string, 0, len(rc.Cases))
	for _, c := range rc.Cases {
		names = append(names, c.Name)
	}
	for _, in := range rc.Inner {
		names = append(names, in.CaseNames()...)
	}
	return names
}

func (rc *ResolvedClass) empty() bool {
	return len(rc.Cases) == 0 && len(rc.Inner) == 0
}

// ClassModel describes how one generated test class discovers its cases.
type ClassModel interface {
	// Name is the generated class name used when the model is nested
	// inside a multi-model class.
	Name() string

	// Root is the test data directory the model covers.
	Root() string

	// TargetBackend is the backend cases are filtered for.
	TargetBackend() backend.Target

	// CaseNames discovers and returns the contained case names.
	CaseNames() ([]string, error)

	// Discover walks Root and resolves the class declaration.
	Discover() (*ResolvedClass, error)
}

// NamingError reports a test data name that violates the configured
// first-letter casing convention.
type NamingError struct {
	Path          string
	WantLowerCase bool
}

func (e *NamingError) Error() string {
	want := "an upper-case"
	if e.WantLowerCase {
		want = "a lower-case"
	}
	return fmt.Sprintf("test data name must start with %s letter: %s", want, e.Path)
}

// Config holds what both model variants share.
type Config struct {
	// Root is the directory to discover cases in.
	Root string

	// Name is the class name; empty means derived from Root.
	Name string

	// Matcher decides which entries are cases.
	Matcher *pattern.Matcher

	// Directories selects directory mode: cases are directories.
	Directories bool

	// FilenameStartsLowerCase, when set, asserts the case of the
	// first letter of every matched name.
	FilenameStartsLowerCase *bool

	// TestMethod is the base-class method each case invokes.
	TestMethod string

	TargetBackend backend.Target

	// SkipIgnored drops cases whose IGNORE_BACKEND names the target.
	SkipIgnored bool

	RunnerMethod string
	RunnerArgs   []string
	Annotations  []Annotation

	// Directives reads per-case backend directives. Defaults to
	// backend.FileSource.
	Directives backend.Source
}
