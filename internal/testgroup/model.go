package testgroup

import (
	"fmt"
	"path/filepath"

	"github.com/unbound-force/testgen/internal/backend"
	"github.com/unbound-force/testgen/internal/pattern"
	"github.com/unbound-force/testgen/internal/testmodel"
)

// ModelOptions are the discovery options of Class.Model. The zero
// value discovers ".kt" files directly under the root.
type ModelOptions struct {
	// Recursive turns subdirectories into nested classes.
	Recursive bool

	// ExcludeParentDirs skips directories with subdirectories as cases.
	ExcludeParentDirs bool

	// Extension is the test file extension, without the dot.
	// Defaults to "kt".
	Extension string

	// Directories makes directories, not files, the test cases.
	Directories bool

	// Pattern overrides the inclusion pattern derived from Extension.
	Pattern string

	// ExcludedPattern drops matching names.
	ExcludedPattern string

	// FilenameStartsLowerCase asserts the case of every matched name.
	FilenameStartsLowerCase *bool

	// TestMethod is the base class method each case invokes.
	// Defaults to "doTest".
	TestMethod string

	// SingleClass flattens the whole subtree into one class.
	SingleClass bool

	// ExcludeDirs are directories skipped entirely. Not allowed with
	// SingleClass.
	ExcludeDirs []string

	// TestClassName names the model's class when it is nested.
	TestClassName string

	TargetBackend backend.Target

	// SkipIgnored drops cases ignored on TargetBackend.
	SkipIgnored bool

	// Deep limits recursion; nil is unlimited.
	Deep *int

	SkipTestsForExperimentalCoroutines bool

	// Directives overrides where backend directives are read from.
	Directives backend.Source
}

// Model registers a test class model rooted at relativeRootPath inside
// the group's test data root.
func (c *Class) Model(relativeRootPath string, opts ModelOptions) error {
	if opts.SingleClass && len(opts.ExcludeDirs) > 0 {
		return fmt.Errorf("%w: model %s: excludeDirs is not supported with singleClass",
			ErrConfiguration, relativeRootPath)
	}

	matcher, err := pattern.Compile(pattern.Options{
		Extension:   opts.Extension,
		Directories: opts.Directories,
		Pattern:     opts.Pattern,
		Exclude:     opts.ExcludedPattern,
	})
	if err != nil {
		return fmt.Errorf("%w: model %s: %w", ErrConfiguration, relativeRootPath, err)
	}

	cfg := testmodel.Config{
		Root:                    filepath.Join(c.group.TestDataRoot, relativeRootPath),
		Name:                    opts.TestClassName,
		Matcher:                 matcher,
		Directories:             opts.Directories,
		FilenameStartsLowerCase: opts.FilenameStartsLowerCase,
		TestMethod:              opts.TestMethod,
		TargetBackend:           opts.TargetBackend,
		SkipIgnored:             opts.SkipIgnored,
		RunnerMethod:            c.group.TestRunnerMethodName,
		RunnerArgs:              c.group.AdditionalRunnerArguments,
		Annotations:             c.Annotations,
		Directives:              opts.Directives,
	}

	if opts.SingleClass {
		c.models = append(c.models, testmodel.NewSingleClassModel(cfg, opts.Deep))
		return nil
	}

	m, err := testmodel.NewSimpleClassModel(cfg, testmodel.SimpleOptions{
		Recursive:                          opts.Recursive,
		ExcludeParentDirs:                  opts.ExcludeParentDirs,
		ExcludeDirs:                        opts.ExcludeDirs,
		Deep:                               opts.Deep,
		SkipTestsForExperimentalCoroutines: opts.SkipTestsForExperimentalCoroutines,
	})
	if err != nil {
		return fmt.Errorf("%w: model %s: %w", ErrConfiguration, relativeRootPath, err)
	}
	c.models = append(c.models, m)
	return nil
}
