package loader_test

import (
	"strings"
	"testing"

	"github.com/unbound-force/testgen/internal/loader"
)

func TestLoadAll_ValidPackage(t *testing.T) {
	pkgs, err := loader.LoadAll("", "github.com/unbound-force/testgen/internal/loader")
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(pkgs) == 0 {
		t.Fatal("expected at least one package")
	}
	var sawTestFile bool
	for _, p := range pkgs {
		if p.Name != "loader" && p.Name != "loader_test" {
			t.Errorf("unexpected package %q", p.Name)
		}
		if len(p.Syntax) == 0 {
			t.Errorf("package %q has no syntax", p.ID)
		}
		for _, f := range p.GoFiles {
			if strings.HasSuffix(f, "loader_test.go") {
				sawTestFile = true
			}
		}
	}
	if !sawTestFile {
		t.Error("expected the external test package to be loaded")
	}
}

func TestLoadAll_InvalidPattern(t *testing.T) {
	_, err := loader.LoadAll("", "github.com/nonexistent/package/that/does/not/exist")
	if err == nil {
		t.Error("expected error for nonexistent package")
	}
}
