package emit

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/akedrou/textdiff"

	"github.com/unbound-force/testgen/internal/testgroup"
)

// WriteIfChanged writes text to path unless the file already holds the
// same content (line endings ignored). In dry-run mode nothing is
// written. It reports whether the content on disk differs from text.
func WriteIfChanged(path, text string, dryRun bool) (bool, error) {
	old, err := os.ReadFile(path)
	switch {
	case err == nil:
		if normalize(string(old)) == normalize(text) {
			return false, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	if dryRun {
		return true, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Emitter renders and writes generated test classes.
type Emitter struct {
	// Diff, when set, receives a unified diff for every file that a
	// dry run finds out of date.
	Diff io.Writer
}

// Emit renders c, writes it to OutputPath(c) when it changed, and
// returns whether it changed together with the path.
func (e *Emitter) Emit(c *testgroup.Class, dryRun bool) (bool, string, error) {
	path := OutputPath(c)
	text, err := Render(c)
	if err != nil {
		return false, path, err
	}

	var old []byte
	if dryRun && e.Diff != nil {
		old, _ = os.ReadFile(path)
	}

	changed, err := WriteIfChanged(path, text, dryRun)
	if err != nil {
		return false, path, err
	}
	if changed && dryRun && e.Diff != nil {
		diff := textdiff.Unified(path+" (on disk)", path+" (generated)", normalize(string(old)), text)
		if _, err := io.WriteString(e.Diff, diff); err != nil {
			return changed, path, err
		}
	}
	return changed, path, nil
}
