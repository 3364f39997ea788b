// Package testgroup is the declarative builder for a generation run:
// a Suite holds Groups, a Group holds Classes, and each Class holds one
// or more test class models registered through Class.Model.
//
// Building a suite performs no filesystem I/O. Configuration mistakes
// are reported while the suite is built, wrapped in ErrConfiguration.
package testgroup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unbound-force/testgen/internal/naming"
	"github.com/unbound-force/testgen/internal/testmodel"
)

// ErrConfiguration marks every error raised while building a suite.
var ErrConfiguration = errors.New("configuration error")

const (
	abstractPrefix  = "Abstract"
	generatedSuffix = "Generated"
	defaultRunner   = "runTest"
)

// DefaultSuiteTestClassName derives the generated class name from a
// base class name: the "Abstract" prefix of the simple name is
// dropped and "Generated" appended.
func DefaultSuiteTestClassName(baseTestClassName string) (string, error) {
	simple := naming.SimpleName(baseTestClassName)
	if !strings.HasPrefix(simple, abstractPrefix) {
		return "", fmt.Errorf("%w: base test class %q must start with %q to derive a suite class name",
			ErrConfiguration, baseTestClassName, abstractPrefix)
	}
	return strings.TrimPrefix(simple, abstractPrefix) + generatedSuffix, nil
}

// Suite is the top-level collection of groups.
type Suite struct {
	groups []*Group
}

// NewSuite runs configure against an empty suite and returns it.
func NewSuite(configure func(*Suite) error) (*Suite, error) {
	s := &Suite{}
	if err := configure(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Groups returns the groups in declaration order.
func (s *Suite) Groups() []*Group {
	return s.groups
}

// GroupOption customizes a Group.
type GroupOption func(*Group)

// WithRunnerMethod sets the method generated tests call to run a case.
func WithRunnerMethod(name string) GroupOption {
	return func(g *Group) { g.TestRunnerMethodName = name }
}

// WithRunnerArguments appends extra arguments to every runner call.
func WithRunnerArguments(args ...string) GroupOption {
	return func(g *Group) { g.AdditionalRunnerArguments = append(g.AdditionalRunnerArguments, args...) }
}

// WithGroupAnnotations sets the default annotations of the group's
// classes.
func WithGroupAnnotations(a ...testmodel.Annotation) GroupOption {
	return func(g *Group) { g.Annotations = append(g.Annotations, a...) }
}

// WithProjectDir sets the directory generated sources name test data
// paths relative to.
func WithProjectDir(dir string) GroupOption {
	return func(g *Group) { g.ProjectDir = dir }
}

// Group is a set of classes sharing an output root and a test data
// root.
type Group struct {
	TestsRoot                 string
	TestDataRoot              string
	ProjectDir                string
	TestRunnerMethodName      string
	AdditionalRunnerArguments []string
	Annotations               []testmodel.Annotation

	classes []*Class
}

// TestGroup appends a group built by running configure against it.
func (s *Suite) TestGroup(testsRoot, testDataRoot string, configure func(*Group) error, opts ...GroupOption) error {
	if testsRoot == "" || testDataRoot == "" {
		return fmt.Errorf("%w: test group needs both a tests root and a test data root", ErrConfiguration)
	}
	g := &Group{
		TestsRoot:            testsRoot,
		TestDataRoot:         testDataRoot,
		TestRunnerMethodName: defaultRunner,
	}
	for _, o := range opts {
		o(g)
	}
	if err := configure(g); err != nil {
		return fmt.Errorf("test group %s: %w", testDataRoot, err)
	}
	s.groups = append(s.groups, g)
	return nil
}

// Classes returns the classes in declaration order.
func (g *Group) Classes() []*Class {
	return g.classes
}

// ClassOption customizes a Class.
type ClassOption func(*Class)

// WithSuiteTestClassName overrides the derived generated class name.
func WithSuiteTestClassName(name string) ClassOption {
	return func(c *Class) { c.SuiteTestClassName = name }
}

// WithJunit4 makes the class generate JUnit 4 tests.
func WithJunit4() ClassOption {
	return func(c *Class) { c.UseJunit4 = true }
}

// WithAnnotations replaces the group's default class annotations.
func WithAnnotations(a ...testmodel.Annotation) ClassOption {
	return func(c *Class) { c.Annotations = a }
}

// Class is one generated test class.
type Class struct {
	// BaseTestClassName is the fully qualified name of the hand-written
	// class the generated class extends.
	BaseTestClassName string

	// SuiteTestClassName is the generated class name, simple or fully
	// qualified.
	SuiteTestClassName string

	UseJunit4   bool
	Annotations []testmodel.Annotation

	group  *Group
	models []testmodel.ClassModel
}

// TestClass appends a class built by running configure against it.
// configure is expected to call Model at least once.
func (g *Group) TestClass(baseTestClassName string, configure func(*Class) error, opts ...ClassOption) error {
	if baseTestClassName == "" {
		return fmt.Errorf("%w: empty base test class name", ErrConfiguration)
	}
	c := &Class{
		BaseTestClassName: baseTestClassName,
		Annotations:       g.Annotations,
		group:             g,
	}
	for _, o := range opts {
		o(c)
	}
	if c.SuiteTestClassName == "" {
		name, err := DefaultSuiteTestClassName(baseTestClassName)
		if err != nil {
			return err
		}
		c.SuiteTestClassName = name
	}
	if err := configure(c); err != nil {
		return fmt.Errorf("test class %s: %w", c.SuiteTestClassName, err)
	}
	if len(c.models) == 0 {
		return fmt.Errorf("%w: test class %s declares no models", ErrConfiguration, c.SuiteTestClassName)
	}
	g.classes = append(g.classes, c)
	return nil
}

// Group returns the group the class belongs to.
func (c *Class) Group() *Group {
	return c.group
}

// Models returns the class models in declaration order.
func (c *Class) Models() []testmodel.ClassModel {
	return c.models
}

// QualifiedName returns the fully qualified generated class name. A
// simple SuiteTestClassName lives in the base class's package.
func (c *Class) QualifiedName() string {
	if strings.Contains(c.SuiteTestClassName, ".") {
		return c.SuiteTestClassName
	}
	if pkg := naming.PackageName(c.BaseTestClassName); pkg != "" {
		return pkg + "." + c.SuiteTestClassName
	}
	return c.SuiteTestClassName
}

// Resolve discovers every model of the class, in declaration order.
func (c *Class) Resolve() ([]*testmodel.ResolvedClass, error) {
	resolved := make([]*testmodel.ResolvedClass, 0, len(c.models))
	for _, m := range c.models {
		rc, err := m.Discover()
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rc)
	}
	return resolved, nil
}
