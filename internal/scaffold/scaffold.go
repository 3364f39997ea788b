// Package scaffold writes a starter testgen project: a suite file and
// a small test data tree that generates out of the box.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed assets
var assets embed.FS

const assetRoot = "assets"

// Options configures Run.
type Options struct {
	// TargetDir receives the project; empty means the working
	// directory.
	TargetDir string

	// Force replaces files that already exist.
	Force bool

	// Version goes into the marker comment; empty means "dev".
	Version string

	// Stdout receives the summary; nil means os.Stdout.
	Stdout io.Writer
}

// Result lists the relative paths Run touched, by outcome.
type Result struct {
	Created     []string
	Skipped     []string
	Overwritten []string
}

type outcome int

const (
	created outcome = iota
	skipped
	overwritten
)

// VersionMarker returns the first line written to the asset at relPath:
// "scaffolded by testgen <version>" behind the comment leader of the
// file's language.
func VersionMarker(relPath, version string) string {
	if version == "" {
		version = "dev"
	}
	leader := "//"
	switch path.Ext(relPath) {
	case ".yaml", ".yml":
		leader = "#"
	}
	return leader + " scaffolded by testgen " + version + "\n"
}

// Run copies every embedded asset into opts.TargetDir and prints a
// summary. Existing files survive unless opts.Force is set.
func Run(opts Options) (*Result, error) {
	if opts.TargetDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		opts.TargetDir = wd
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	rels, err := AssetPaths()
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, rel := range rels {
		out, err := place(opts, rel)
		if err != nil {
			return nil, err
		}
		switch out {
		case created:
			res.Created = append(res.Created, rel)
		case skipped:
			res.Skipped = append(res.Skipped, rel)
		case overwritten:
			res.Overwritten = append(res.Overwritten, rel)
		}
	}

	res.print(opts.Stdout)
	return res, nil
}

// place writes one asset and reports what happened to it.
func place(opts Options, rel string) (outcome, error) {
	dst := filepath.Join(opts.TargetDir, filepath.FromSlash(rel))

	_, err := os.Stat(dst)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("inspecting %s: %w", rel, err)
	}
	if existed && !opts.Force {
		return skipped, nil
	}

	body, err := AssetContent(rel)
	if err != nil {
		return 0, fmt.Errorf("reading embedded asset %s: %w", rel, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	data := append([]byte(VersionMarker(rel, opts.Version)), body...)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", rel, err)
	}

	if existed {
		return overwritten, nil
	}
	return created, nil
}

func (r *Result) print(w io.Writer) {
	fmt.Fprintln(w, "testgen suite initialized:")
	for _, group := range []struct {
		label string
		paths []string
		note  string
	}{
		{"created", r.Created, ""},
		{"skipped", r.Skipped, " (already exists)"},
		{"overwritten", r.Overwritten, ""},
	} {
		for _, p := range group.paths {
			fmt.Fprintf(w, "  %s: %s%s\n", group.label, p, group.note)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run testgen generate to write the generated test classes.")
	if n := len(r.Skipped); n > 0 {
		fmt.Fprintf(w, "%d file(s) skipped (use --force to overwrite).\n", n)
	}
}

// AssetPaths lists the embedded assets as slash paths relative to the
// project root, in lexical order.
func AssetPaths() ([]string, error) {
	var rels []string
	err := fs.WalkDir(assets, assetRoot, func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			rels = append(rels, strings.TrimPrefix(p, assetRoot+"/"))
		}
		return err
	})
	return rels, err
}

// AssetContent returns the embedded bytes of the asset at rel, without
// the version marker.
func AssetContent(rel string) ([]byte, error) {
	return assets.ReadFile(assetRoot + "/" + rel)
}
