package testmodel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unbound-force/testgen/internal/backend"
	"github.com/unbound-force/testgen/internal/pattern"
)

// writeTree creates files (and their parent directories) under root.
// Names ending in "/" create empty directories.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func mustMatcher(t *testing.T, opts pattern.Options) *pattern.Matcher {
	t.Helper()
	m, err := pattern.Compile(opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return m
}

func mustSimple(t *testing.T, cfg Config, opts SimpleOptions) *SimpleClassModel {
	t.Helper()
	m, err := NewSimpleClassModel(cfg, opts)
	if err != nil {
		t.Fatalf("NewSimpleClassModel: %v", err)
	}
	return m
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestSimple_DiscoversMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"foo.kt":     "",
		"bar.kt":     "",
		"ignore.txt": "",
	})

	m := mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{Extension: "kt"})}, SimpleOptions{})
	names, err := m.CaseNames()
	if err != nil {
		t.Fatalf("CaseNames: %v", err)
	}
	if diff := cmp.Diff([]string{"bar", "foo"}, names); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestSimple_RecursiveNestedClasses(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.kt":               "",
		"smartCasts/a.kt":      "",
		"smartCasts/deep/b.kt": "",
		"empty/readme.txt":     "",
	})

	m := mustSimple(t, Config{Root: root, Name: "Tests", Matcher: mustMatcher(t, pattern.Options{})},
		SimpleOptions{Recursive: true})
	rc, err := m.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if rc.Name != "Tests" {
		t.Errorf("Name = %q", rc.Name)
	}
	if len(rc.Cases) != 1 || rc.Cases[0].MethodName != "testTop" {
		t.Fatalf("unexpected top-level cases: %+v", rc.Cases)
	}
	if len(rc.Inner) != 1 {
		t.Fatalf("expected only SmartCasts nested class (empty dirs pruned), got %d", len(rc.Inner))
	}
	sc := rc.Inner[0]
	if sc.Name != "SmartCasts" {
		t.Errorf("nested name = %q, want SmartCasts", sc.Name)
	}
	if len(sc.Inner) != 1 || sc.Inner[0].Name != "Deep" {
		t.Fatalf("expected Deep nested inside SmartCasts, got %+v", sc.Inner)
	}
	if got := sc.Inner[0].Cases[0].RelPath; got != "smartCasts/deep/b.kt" {
		t.Errorf("RelPath = %q", got)
	}
	if diff := cmp.Diff([]string{"top", "a", "b"}, rc.CaseNames()); diff != "" {
		t.Errorf("CaseNames mismatch (-want +got):\n%s", diff)
	}
}

func TestSimple_NotRecursiveIgnoresSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.kt": "", "sub/b.kt": ""})

	m := mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{})}, SimpleOptions{})
	rc, err := m.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if rc.CaseCount() != 1 || len(rc.Inner) != 0 {
		t.Errorf("expected one case and no nested classes, got %d cases, %d nested", rc.CaseCount(), len(rc.Inner))
	}
}

func TestSimple_ExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.kt":            "",
		"skip/b.kt":       "",
		"skip/inner/c.kt": "",
		"keep/d.kt":       "",
	})

	m := mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{})},
		SimpleOptions{Recursive: true, ExcludeDirs: []string{"skip"}})
	names, err := m.CaseNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "d"}, names); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestSimple_ExcludeDirsInDirectoryMode(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"skip/": "", "caseDir/": ""})

	m := mustSimple(t, Config{Root: root, Directories: true, Matcher: mustMatcher(t, pattern.Options{Directories: true})},
		SimpleOptions{ExcludeDirs: []string{"skip"}})
	names, err := m.CaseNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"caseDir"}, names); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestSimple_InvalidExcludeDirPattern(t *testing.T) {
	_, err := NewSimpleClassModel(Config{Root: t.TempDir(), Matcher: mustMatcher(t, pattern.Options{})},
		SimpleOptions{ExcludeDirs: []string{"[unterminated"}})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestSimple_Deep(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.kt":       "",
		"l1/b.kt":    "",
		"l1/l2/c.kt": "",
	})
	tests := []struct {
		name string
		deep *int
		want []string
	}{
		{"unlimited", nil, []string{"a", "b", "c"}},
		{"zero", intPtr(0), []string{"a"}},
		{"one", intPtr(1), []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{})},
				SimpleOptions{Recursive: true, Deep: tt.deep})
			names, err := m.CaseNames()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("case names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimple_DirectoryModeExcludeParentDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"leaf/":         "",
		"parent/child/": "",
		"with.dot/":     "",
		"plain.kt":      "",
	})

	m := mustSimple(t, Config{Root: root, Directories: true, Matcher: mustMatcher(t, pattern.Options{Directories: true})},
		SimpleOptions{ExcludeParentDirs: true})
	names, err := m.CaseNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"leaf"}, names); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}

	m = mustSimple(t, Config{Root: root, Directories: true, Matcher: mustMatcher(t, pattern.Options{Directories: true})},
		SimpleOptions{ExcludeParentDirs: true, Recursive: true})
	rc, err := m.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if len(rc.Inner) != 1 || rc.Inner[0].Name != "Parent" {
		t.Fatalf("expected Parent nested class, got %+v", rc.Inner)
	}
	if diff := cmp.Diff([]string{"leaf", "child"}, rc.CaseNames()); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestSimple_FilenameStartsLowerCase(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"good.kt": "", "Bad.kt": ""})

	m := mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{}), FilenameStartsLowerCase: boolPtr(true)},
		SimpleOptions{})
	_, err := m.Discover()
	var nerr *NamingError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NamingError, got %v", err)
	}
	if filepath.Base(nerr.Path) != "Bad.kt" {
		t.Errorf("NamingError.Path = %q", nerr.Path)
	}

	m = mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{Pattern: `^(good)\.kt$`}), FilenameStartsLowerCase: boolPtr(true)},
		SimpleOptions{})
	if _, err := m.Discover(); err != nil {
		t.Errorf("unmatched names must not be checked: %v", err)
	}
}

func TestSimple_BackendFiltering(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"jvmOnly.kt":    "// TARGET_BACKEND: JVM\n",
		"jsOnly.kt":     "// TARGET_BACKEND: JS\n",
		"plain.kt":      "fun box() = \"OK\"\n",
		"notExact.kt":   "// DONT_TARGET_EXACT_BACKEND: JVM_IR\n",
		"ignored.kt":    "// IGNORE_BACKEND: JVM\n",
		"coroutines.kt": "// COMMON_COROUTINES_TEST\n",
	})

	tests := []struct {
		name   string
		target backend.Target
		cfg    func(*Config)
		opts   SimpleOptions
		want   []string
	}{
		{"any keeps everything", backend.Any, nil, SimpleOptions{},
			[]string{"coroutines", "ignored", "jsOnly", "jvmOnly", "notExact", "plain"}},
		{"jvm", backend.JVM, nil, SimpleOptions{},
			[]string{"coroutines", "ignored", "jvmOnly", "notExact", "plain"}},
		{"jvm ir", backend.JVMIR, nil, SimpleOptions{},
			[]string{"coroutines", "ignored", "jvmOnly", "plain"}},
		{"skip ignored", backend.JVM, func(c *Config) { c.SkipIgnored = true }, SimpleOptions{},
			[]string{"coroutines", "jvmOnly", "notExact", "plain"}},
		{"skip coroutines", backend.JS, nil, SimpleOptions{SkipTestsForExperimentalCoroutines: true},
			[]string{"ignored", "jsOnly", "notExact", "plain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Root: root, Matcher: mustMatcher(t, pattern.Options{}), TargetBackend: tt.target}
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			names, err := mustSimple(t, cfg, tt.opts).CaseNames()
			if err != nil {
				t.Fatalf("backend mismatch must not fail: %v", err)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("case names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type fakeDirectives map[string]backend.Directives

func (f fakeDirectives) Directives(path string) (backend.Directives, error) {
	return f[filepath.Base(path)], nil
}

func TestSimple_CustomDirectiveSource(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.kt": "", "b.kt": ""})

	src := fakeDirectives{"a.kt": {TargetBackends: []backend.Target{backend.JS}}}
	cfg := Config{Root: root, Matcher: mustMatcher(t, pattern.Options{}), TargetBackend: backend.JVM, Directives: src}
	names, err := mustSimple(t, cfg, SimpleOptions{}).CaseNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b"}, names); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestSingle_FlattensTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/x.kt":   "",
		"b/x.kt":   "",
		"top.kt":   "",
		"b/c/y.kt": "",
	})

	m := NewSingleClassModel(Config{Root: root, Matcher: mustMatcher(t, pattern.Options{})}, nil)
	rc, err := m.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(rc.Inner) != 0 {
		t.Errorf("single class model must not nest, got %d nested", len(rc.Inner))
	}
	var rels []string
	for _, c := range rc.Cases {
		rels = append(rels, c.RelPath)
	}
	if diff := cmp.Diff([]string{"a/x.kt", "b/c/y.kt", "b/x.kt", "top.kt"}, rels); diff != "" {
		t.Errorf("rel paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y", "x", "top"}, rc.CaseNames()); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestSingle_Deep(t *testing.T) {
	files := t.TempDir()
	writeTree(t, files, map[string]string{"a.kt": "", "l1/b.kt": "", "l1/l2/c.kt": ""})

	dirs := t.TempDir()
	writeTree(t, dirs, map[string]string{"caseA/": "", "caseB/": "", "group.d/inner/": ""})

	tests := []struct {
		name        string
		root        string
		directories bool
		deep        *int
		want        []string
	}{
		{"files zero", files, false, intPtr(0), []string{"a"}},
		{"files one", files, false, intPtr(1), []string{"a", "b"}},
		{"files unlimited", files, false, nil, []string{"a", "b", "c"}},
		{"directories zero", dirs, true, intPtr(0), []string{"caseA", "caseB"}},
		{"directories one", dirs, true, intPtr(1), []string{"caseA", "caseB", "inner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Root:        tt.root,
				Directories: tt.directories,
				Matcher:     mustMatcher(t, pattern.Options{Directories: tt.directories}),
			}
			names, err := NewSingleClassModel(cfg, tt.deep).CaseNames()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("case names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSingle_DirectoryMode(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"group/caseA/main.kt": "", "caseB/": ""})

	m := NewSingleClassModel(Config{Root: root, Directories: true, Matcher: mustMatcher(t, pattern.Options{Directories: true})}, nil)
	names, err := m.CaseNames()
	if err != nil {
		t.Fatal(err)
	}
	// "group" itself matches and is consumed as a case; its children
	// are not visited.
	if diff := cmp.Diff([]string{"caseB", "group"}, names); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultNameAndSettings(t *testing.T) {
	root := filepath.Join(t.TempDir(), "smart-casts")
	writeTree(t, root, map[string]string{"a.kt": ""})

	m := mustSimple(t, Config{Root: root, Matcher: mustMatcher(t, pattern.Options{})}, SimpleOptions{})
	if m.Name() != "Smart_casts" {
		t.Errorf("Name() = %q", m.Name())
	}
	if m.TargetBackend() != backend.Any {
		t.Errorf("TargetBackend() = %q", m.TargetBackend())
	}
	rc, err := m.Discover()
	if err != nil {
		t.Fatal(err)
	}
	if rc.TestMethod != "doTest" || rc.RunnerMethod != "runTest" {
		t.Errorf("defaults not applied: test=%q runner=%q", rc.TestMethod, rc.RunnerMethod)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	m := mustSimple(t, Config{Root: filepath.Join(t.TempDir(), "missing"), Matcher: mustMatcher(t, pattern.Options{})}, SimpleOptions{})
	if _, err := m.Discover(); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestAnnotationString(t *testing.T) {
	if got := (Annotation{Type: "Tag"}).String(); got != "@Tag" {
		t.Errorf("got %q", got)
	}
	if got := (Annotation{Type: "Tag", Arguments: []string{`"slow"`}}).String(); got != `@Tag("slow")` {
		t.Errorf("got %q", got)
	}
}
