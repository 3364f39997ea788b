package backend

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Directive names understood in test data files.
const (
	DirectiveTargetBackend          = "TARGET_BACKEND"
	DirectiveDontTargetExactBackend = "DONT_TARGET_EXACT_BACKEND"
	DirectiveIgnoreBackend          = "IGNORE_BACKEND"
	DirectiveCommonCoroutinesTest   = "COMMON_COROUTINES_TEST"
)

// Directives holds the backend-related directives declared by one
// test data file.
type Directives struct {
	TargetBackends          []Target
	DontTargetExactBackends []Target
	IgnoreBackends          []Target
	CommonCoroutinesTest    bool
}

// Source reads the directives of a test data path. Directory cases
// are handed to Source as well; implementations decide what a
// directory declares.
type Source interface {
	Directives(path string) (Directives, error)
}

// FileSource reads directives from the leading comment lines of a
// file ("// TARGET_BACKEND: JVM"). Directories declare nothing.
type FileSource struct{}

// Directives implements Source.
func (FileSource) Directives(path string) (Directives, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Directives{}, err
	}
	if info.IsDir() {
		return Directives{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Directives{}, err
	}
	defer f.Close()
	return ParseDirectives(f)
}

// ParseDirectives scans r for "// NAME" and "// NAME: A, B" lines.
// Unknown backend names are ignored.
func ParseDirectives(r io.Reader) (Directives, error) {
	var d Directives
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "//") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, "//"))
		name, args, _ := strings.Cut(body, ":")
		name = strings.TrimSpace(name)
		switch name {
		case DirectiveTargetBackend:
			d.TargetBackends = append(d.TargetBackends, parseList(args)...)
		case DirectiveDontTargetExactBackend:
			d.DontTargetExactBackends = append(d.DontTargetExactBackends, parseList(args)...)
		case DirectiveIgnoreBackend:
			d.IgnoreBackends = append(d.IgnoreBackends, parseList(args)...)
		case DirectiveCommonCoroutinesTest:
			d.CommonCoroutinesTest = true
		}
	}
	return d, sc.Err()
}

func parseList(s string) []Target {
	var out []Target
	for _, part := range strings.Split(s, ",") {
		if t, err := Parse(part); err == nil && strings.TrimSpace(part) != "" {
			out = append(out, t)
		}
	}
	return out
}

// Compatible reports whether a case declaring d should be generated
// for target. Any is compatible with everything. A TARGET_BACKEND list
// must name target (or a backend it is compatible with), and
// DONT_TARGET_EXACT_BACKEND must not name target itself.
func (d Directives) Compatible(target Target) bool {
	if target == Any {
		return true
	}
	for _, t := range d.DontTargetExactBackends {
		if t == target {
			return false
		}
	}
	if len(d.TargetBackends) == 0 {
		return true
	}
	for _, t := range d.TargetBackends {
		if t == Any || target.Matches(t) {
			return true
		}
	}
	return false
}

// Ignored reports whether d marks the case as ignored on target.
func (d Directives) Ignored(target Target) bool {
	for _, t := range d.IgnoreBackends {
		if t == Any || target.Matches(t) {
			return true
		}
	}
	return false
}
