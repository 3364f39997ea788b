// Package generate drives a generation run: every class of every
// group is emitted in declaration order and changed files are handed
// to a Tracker.
package generate

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/unbound-force/testgen/internal/testgroup"
)

// Emitter produces and persists one generated class.
type Emitter interface {
	Emit(c *testgroup.Class, dryRun bool) (changed bool, path string, err error)
}

// Options configures Run.
type Options struct {
	// DryRun computes output without writing it.
	DryRun bool

	// Emitter renders and writes classes. Required.
	Emitter Emitter

	// Tracker receives changed paths. Defaults to NewTracker(DryRun).
	Tracker Tracker

	// Logger is optional.
	Logger *log.Logger
}

// Outcome describes what happened to one class.
type Outcome struct {
	Class   string `json:"class"`
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
}

// Result summarizes a run.
type Result struct {
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"outcomes"`

	// Inconsistencies are the tracker's paths after the run.
	Inconsistencies []string `json:"inconsistencies"`
}

// Changed counts the classes whose output changed.
func (r *Result) Changed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Changed {
			n++
		}
	}
	return n
}

// Run emits every class of suite. It stops at the first error.
func Run(suite *testgroup.Suite, opts Options) (*Result, error) {
	if opts.Emitter == nil {
		return nil, fmt.Errorf("generate: no emitter configured")
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = NewTracker(opts.DryRun)
	}

	res := &Result{DryRun: opts.DryRun, Outcomes: []Outcome{}}
	for _, g := range suite.Groups() {
		for _, c := range g.Classes() {
			changed, path, err := opts.Emitter.Emit(c, opts.DryRun)
			if err != nil {
				return nil, fmt.Errorf("generating %s: %w", c.QualifiedName(), err)
			}
			res.Outcomes = append(res.Outcomes, Outcome{Class: c.QualifiedName(), Path: path, Changed: changed})

			if opts.Logger != nil {
				opts.Logger.Debug("emitted class", "class", c.QualifiedName(), "path", path, "changed", changed)
			}
			if !changed {
				continue
			}
			tracker.Add(path)
			if opts.Logger != nil {
				if opts.DryRun {
					opts.Logger.Warn("generated file is out of date", "path", path)
				} else {
					opts.Logger.Info("wrote", "path", path)
				}
			}
		}
	}

	res.Inconsistencies = tracker.Paths()
	if res.Inconsistencies == nil {
		res.Inconsistencies = []string{}
	}
	return res, nil
}
