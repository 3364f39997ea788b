package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unbound-force/testgen/internal/config"
)

var expectedAssets = []string{
	"testData/box/nested/jvmOnly.kt",
	"testData/box/simple.kt",
	"testgen.yaml",
}

// TestRun_CreatesFiles verifies that init creates every asset in an
// empty project.
func TestRun_CreatesFiles(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	result, err := Run(Options{
		TargetDir: dir,
		Version:   "1.2.3",
		Stdout:    &buf,
	})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if diff := cmp.Diff(expectedAssets, result.Created); diff != "" {
		t.Errorf("created mismatch (-want +got):\n%s", diff)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("expected 0 skipped files, got %d: %v", len(result.Skipped), result.Skipped)
	}
	if len(result.Overwritten) != 0 {
		t.Errorf("expected 0 overwritten files, got %d: %v", len(result.Overwritten), result.Overwritten)
	}

	for _, rel := range expectedAssets {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("expected file %s to exist", rel)
		}
	}

	output := buf.String()
	if !strings.Contains(output, "created:") {
		t.Errorf("summary should mention 'created:', got:\n%s", output)
	}
	if !strings.Contains(output, "Run testgen generate") {
		t.Errorf("summary should contain hint, got:\n%s", output)
	}
}

// TestRun_SkipsExisting verifies that init skips existing files and
// reports them when Force is not set.
func TestRun_SkipsExisting(t *testing.T) {
	dir := t.TempDir()

	var buf1 bytes.Buffer
	if _, err := Run(Options{TargetDir: dir, Version: "1.0.0", Stdout: &buf1}); err != nil {
		t.Fatalf("first Run() returned error: %v", err)
	}

	var buf2 bytes.Buffer
	result, err := Run(Options{TargetDir: dir, Version: "1.0.0", Stdout: &buf2})
	if err != nil {
		t.Fatalf("second Run() returned error: %v", err)
	}

	if len(result.Created) != 0 {
		t.Errorf("expected 0 created, got %d: %v", len(result.Created), result.Created)
	}
	if diff := cmp.Diff(expectedAssets, result.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	output := buf2.String()
	if !strings.Contains(output, "skipped:") {
		t.Errorf("summary should mention 'skipped:', got:\n%s", output)
	}
	if !strings.Contains(output, "use --force to overwrite") {
		t.Errorf("summary should suggest --force, got:\n%s", output)
	}
}

// TestRun_ForceOverwrites verifies that Force replaces existing files
// and reports the overwrites.
func TestRun_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	suitePath := filepath.Join(dir, "testgen.yaml")
	if err := os.WriteFile(suitePath, []byte("groups: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result, err := Run(Options{TargetDir: dir, Force: true, Version: "1.0.0", Stdout: &buf})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"testgen.yaml"}, result.Overwritten); diff != "" {
		t.Errorf("overwritten mismatch (-want +got):\n%s", diff)
	}
	if len(result.Created) != 2 {
		t.Errorf("expected 2 created, got %v", result.Created)
	}

	content, err := os.ReadFile(suitePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "AbstractBoxTest") {
		t.Error("suite file should have been replaced")
	}
	if !strings.Contains(buf.String(), "overwritten: testgen.yaml") {
		t.Errorf("summary should mention the overwrite, got:\n%s", buf.String())
	}
}

// TestRun_VersionMarker verifies every scaffolded file starts with the
// version marker in its own comment syntax.
func TestRun_VersionMarker(t *testing.T) {
	dir := t.TempDir()

	if _, err := Run(Options{TargetDir: dir, Version: "0.1.0", Stdout: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	want := map[string]string{
		"testgen.yaml":                   "# scaffolded by testgen 0.1.0",
		"testData/box/simple.kt":         "// scaffolded by testgen 0.1.0",
		"testData/box/nested/jvmOnly.kt": "// scaffolded by testgen 0.1.0",
	}
	for rel, expected := range want {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("reading %s: %v", rel, err)
		}
		firstLine := strings.SplitN(string(content), "\n", 2)[0]
		if firstLine != expected {
			t.Errorf("file %s: expected first line %q, got %q", rel, expected, firstLine)
		}
	}
}

// TestVersionMarker_Dev verifies that development builds use "dev" as
// the version string in the marker.
func TestVersionMarker_Dev(t *testing.T) {
	if got := VersionMarker("testgen.yml", ""); got != "# scaffolded by testgen dev\n" {
		t.Errorf("VersionMarker() = %q", got)
	}
	if got := VersionMarker("a/b.kt", ""); got != "// scaffolded by testgen dev\n" {
		t.Errorf("VersionMarker() = %q", got)
	}
}

// TestRun_ScaffoldedSuiteResolves verifies the starter suite is a
// valid suite file whose sample data yields test cases.
func TestRun_ScaffoldedSuiteResolves(t *testing.T) {
	dir := t.TempDir()
	if _, err := Run(Options{TargetDir: dir, Stdout: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	f, err := config.Load(filepath.Join(dir, "testgen.yaml"))
	if err != nil {
		t.Fatalf("scaffolded suite does not load: %v", err)
	}
	suite, err := config.Build(f)
	if err != nil {
		t.Fatalf("scaffolded suite does not build: %v", err)
	}

	classes := suite.Groups()[0].Classes()
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	resolved, err := classes[0].Resolve()
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"simple", "jvmOnly"}, resolved[0].CaseNames()); diff != "" {
		t.Errorf("case names mismatch (-want +got):\n%s", diff)
	}
}

// TestAssetPaths verifies the embedded asset manifest.
func TestAssetPaths(t *testing.T) {
	paths, err := AssetPaths()
	if err != nil {
		t.Fatalf("AssetPaths() returned error: %v", err)
	}
	if diff := cmp.Diff(expectedAssets, paths); diff != "" {
		t.Errorf("asset paths mismatch (-want +got):\n%s", diff)
	}
}
