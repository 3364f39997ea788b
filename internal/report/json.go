// Package report provides output formatters for generation runs and
// control-flow graph checks in JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/testgen/internal/cfgcheck"
	"github.com/unbound-force/testgen/internal/generate"
)

// JSONReport is the top-level JSON output of a generation run.
type JSONReport struct {
	Version         string         `json:"version"`
	DryRun          bool           `json:"dry_run"`
	Classes         []JSONOutcome  `json:"classes"`
	Inconsistencies []string       `json:"inconsistencies"`
	Summary         JSONRunSummary `json:"summary"`
}

// JSONOutcome is one generated class.
type JSONOutcome struct {
	Class   string `json:"class"`
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Status  string `json:"status"`
}

// JSONRunSummary carries the run totals.
type JSONRunSummary struct {
	Classes  int  `json:"classes"`
	Changed  int  `json:"changed"`
	UpToDate bool `json:"up_to_date"`
}

// WriteJSON writes a generation result as formatted JSON to the writer.
func WriteJSON(w io.Writer, res *generate.Result, version string) error {
	rpt := JSONReport{
		Version:         version,
		DryRun:          res.DryRun,
		Classes:         make([]JSONOutcome, 0, len(res.Outcomes)),
		Inconsistencies: res.Inconsistencies,
		Summary: JSONRunSummary{
			Classes:  len(res.Outcomes),
			Changed:  res.Changed(),
			UpToDate: len(res.Inconsistencies) == 0,
		},
	}
	if rpt.Inconsistencies == nil {
		rpt.Inconsistencies = []string{}
	}
	for _, o := range res.Outcomes {
		rpt.Classes = append(rpt.Classes, JSONOutcome{
			Class:   o.Class,
			Path:    o.Path,
			Changed: o.Changed,
			Status:  Status(o, res.DryRun),
		})
	}
	return encode(w, rpt)
}

// CFGReport is the JSON output of a control-flow graph check.
type CFGReport struct {
	Version string `json:"version"`
	*cfgcheck.Report
}

// WriteCFGJSON writes a cfgcheck report as formatted JSON.
func WriteCFGJSON(w io.Writer, rpt *cfgcheck.Report, version string) error {
	if rpt.Funcs == nil {
		rpt.Funcs = []cfgcheck.FuncStat{}
	}
	return encode(w, CFGReport{Version: version, Report: rpt})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
