// Package config loads the YAML suite file that declares what testgen
// generates and turns it into a testgroup.Suite.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/unbound-force/testgen/internal/backend"
	"github.com/unbound-force/testgen/internal/testgroup"
	"github.com/unbound-force/testgen/internal/testmodel"
)

// DefaultFile is the suite file looked up when none is given.
const DefaultFile = "testgen.yaml"

// File is the decoded suite file.
type File struct {
	Groups []Group `yaml:"groups"`

	// Dir is the directory the suite file was loaded from. Generated
	// sources name test data relative to it.
	Dir string `yaml:"-"`
}

// Group mirrors testgroup.Group.
type Group struct {
	TestsRoot                 string                 `yaml:"testsRoot"`
	TestDataRoot              string                 `yaml:"testDataRoot"`
	TestRunnerMethod          string                 `yaml:"testRunnerMethod"`
	AdditionalRunnerArguments []string               `yaml:"additionalRunnerArguments"`
	Annotations               []testmodel.Annotation `yaml:"annotations"`
	Classes                   []Class                `yaml:"classes"`
}

// Class mirrors testgroup.Class.
type Class struct {
	Base               string                 `yaml:"base"`
	SuiteTestClassName string                 `yaml:"suiteTestClassName"`
	UseJunit4          bool                   `yaml:"useJunit4"`
	Annotations        []testmodel.Annotation `yaml:"annotations"`
	Models             []Model                `yaml:"models"`
}

// Model mirrors testgroup.ModelOptions plus the model's root path.
type Model struct {
	Path                               string   `yaml:"path"`
	Recursive                          bool     `yaml:"recursive"`
	ExcludeParentDirs                  bool     `yaml:"excludeParentDirs"`
	Extension                          string   `yaml:"extension"`
	Directories                        bool     `yaml:"directories"`
	Pattern                            string   `yaml:"pattern"`
	ExcludedPattern                    string   `yaml:"excludedPattern"`
	FilenameStartsLowerCase            *bool    `yaml:"filenameStartsLowerCase"`
	TestMethod                         string   `yaml:"testMethod"`
	SingleClass                        bool     `yaml:"singleClass"`
	ExcludeDirs                        []string `yaml:"excludeDirs"`
	TestClassName                      string   `yaml:"testClassName"`
	TargetBackend                      string   `yaml:"targetBackend"`
	SkipIgnored                        bool     `yaml:"skipIgnored"`
	Deep                               *int     `yaml:"deep"`
	SkipTestsForExperimentalCoroutines bool     `yaml:"skipTestsForExperimentalCoroutines"`
}

// Load reads, validates and decodes the suite file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Rebase(filepath.Dir(path))
	return f, nil
}

// Rebase makes the relative roots of every group relative to dir.
func (f *File) Rebase(dir string) {
	if f.Dir == "" {
		f.Dir = dir
	} else {
		f.Dir = rebase(dir, f.Dir)
	}
	for i := range f.Groups {
		g := &f.Groups[i]
		g.TestsRoot = rebase(dir, g.TestsRoot)
		g.TestDataRoot = rebase(dir, g.TestDataRoot)
	}
}

func rebase(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Parse validates and decodes suite file content.
func Parse(data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", testgroup.ErrConfiguration, err)
	}
	return &f, nil
}

// Validate checks YAML content against Schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: parsing YAML: %v", testgroup.ErrConfiguration, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// Round-trip through JSON so the validator sees plain JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", testgroup.ErrConfiguration, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", testgroup.ErrConfiguration, err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: suite file does not match schema:\n%v", testgroup.ErrConfiguration, err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(Schema))
	if err != nil {
		return nil, fmt.Errorf("parsing suite schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("suite.schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding suite schema: %w", err)
	}
	return c.Compile("suite.schema.json")
}

// Build translates f into builder calls and returns the suite.
func Build(f *File) (*testgroup.Suite, error) {
	return testgroup.NewSuite(func(s *testgroup.Suite) error {
		for _, g := range f.Groups {
			if err := buildGroup(s, g, f.Dir); err != nil {
				return err
			}
		}
		return nil
	})
}

func buildGroup(s *testgroup.Suite, g Group, dir string) error {
	var opts []testgroup.GroupOption
	if dir != "" {
		opts = append(opts, testgroup.WithProjectDir(dir))
	}
	if g.TestRunnerMethod != "" {
		opts = append(opts, testgroup.WithRunnerMethod(g.TestRunnerMethod))
	}
	if len(g.AdditionalRunnerArguments) > 0 {
		opts = append(opts, testgroup.WithRunnerArguments(g.AdditionalRunnerArguments...))
	}
	if len(g.Annotations) > 0 {
		opts = append(opts, testgroup.WithGroupAnnotations(g.Annotations...))
	}

	return s.TestGroup(g.TestsRoot, g.TestDataRoot, func(tg *testgroup.Group) error {
		for _, c := range g.Classes {
			if err := buildClass(tg, c); err != nil {
				return err
			}
		}
		return nil
	}, opts...)
}

func buildClass(g *testgroup.Group, c Class) error {
	var opts []testgroup.ClassOption
	if c.SuiteTestClassName != "" {
		opts = append(opts, testgroup.WithSuiteTestClassName(c.SuiteTestClassName))
	}
	if c.UseJunit4 {
		opts = append(opts, testgroup.WithJunit4())
	}
	if c.Annotations != nil {
		opts = append(opts, testgroup.WithAnnotations(c.Annotations...))
	}

	return g.TestClass(c.Base, func(tc *testgroup.Class) error {
		for _, m := range c.Models {
			target, err := backend.Parse(m.TargetBackend)
			if err != nil {
				return fmt.Errorf("%w: %v", testgroup.ErrConfiguration, err)
			}
			err = tc.Model(m.Path, testgroup.ModelOptions{
				Recursive:                          m.Recursive,
				ExcludeParentDirs:                  m.ExcludeParentDirs,
				Extension:                          m.Extension,
				Directories:                        m.Directories,
				Pattern:                            m.Pattern,
				ExcludedPattern:                    m.ExcludedPattern,
				FilenameStartsLowerCase:            m.FilenameStartsLowerCase,
				TestMethod:                         m.TestMethod,
				SingleClass:                        m.SingleClass,
				ExcludeDirs:                        m.ExcludeDirs,
				TestClassName:                      m.TestClassName,
				TargetBackend:                      target,
				SkipIgnored:                        m.SkipIgnored,
				Deep:                               m.Deep,
				SkipTestsForExperimentalCoroutines: m.SkipTestsForExperimentalCoroutines,
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, opts...)
}
