// Package pattern compiles the file-name patterns that decide which
// directory entries are test cases.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern is returned when an inclusion or exclusion
// pattern is not a valid regular expression.
var ErrInvalidPattern = errors.New("invalid pattern")

// DefaultExtension is used when neither an extension nor directory
// mode is requested.
const DefaultExtension = "kt"

// Options selects the inclusion and exclusion patterns.
type Options struct {
	// Extension is the file extension (without the dot) a test file
	// must carry. Ignored when Pattern is set or Directories is true.
	// Defaults to DefaultExtension.
	Extension string

	// Directories switches to directory mode: cases are directories
	// whose name contains no dot.
	Directories bool

	// Pattern overrides the default inclusion pattern.
	Pattern string

	// Exclude is an optional exclusion pattern.
	Exclude string
}

// Matcher applies a compiled inclusion pattern and an optional
// exclusion pattern to directory entry names.
type Matcher struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// DefaultPattern returns the inclusion pattern used when none is
// given explicitly.
func DefaultPattern(extension string, directories bool) string {
	if directories {
		return `^([^.]+)$`
	}
	if extension == "" {
		extension = DefaultExtension
	}
	return `^(.+)\.` + regexp.QuoteMeta(extension) + `$`
}

// Compile builds a Matcher from opts.
func Compile(opts Options) (*Matcher, error) {
	src := opts.Pattern
	if src == "" {
		src = DefaultPattern(opts.Extension, opts.Directories)
	}
	include, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, src, err)
	}

	m := &Matcher{include: include}
	if opts.Exclude != "" {
		m.exclude, err = regexp.Compile(opts.Exclude)
		if err != nil {
			return nil, fmt.Errorf("%w: exclusion %q: %v", ErrInvalidPattern, opts.Exclude, err)
		}
	}
	return m, nil
}

// Match reports whether name is a test case. The returned case name
// is the first capture group, or the whole name when the pattern has
// no group.
func (m *Matcher) Match(name string) (string, bool) {
	sub := m.include.FindStringSubmatch(name)
	if sub == nil {
		return "", false
	}
	if m.exclude != nil && m.exclude.MatchString(name) {
		return "", false
	}
	if len(sub) > 1 {
		return sub[1], true
	}
	return sub[0], true
}

// Include returns the source of the inclusion pattern.
func (m *Matcher) Include() string {
	return m.include.String()
}

// Exclude returns the source of the exclusion pattern, or "" when
// none was configured.
func (m *Matcher) Exclude() string {
	if m.exclude == nil {
		return ""
	}
	return m.exclude.String()
}
