package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/testgen/internal/cfgcheck"
	"github.com/unbound-force/testgen/internal/generate"
)

const (
	statusWritten  = "written"
	statusStale    = "out of date"
	statusUpToDate = "up to date"
)

// Status returns the human-readable status of one outcome.
func Status(o generate.Outcome, dryRun bool) string {
	switch {
	case !o.Changed:
		return statusUpToDate
	case dryRun:
		return statusStale
	default:
		return statusWritten
	}
}

// WriteText writes a generation result as human-readable styled text.
func WriteText(w io.Writer, res *generate.Result) error {
	s := DefaultStyles()

	mode := "generate"
	if res.DryRun {
		mode = "generate (dry run)"
	}
	fmt.Fprintln(w, s.Header.Render(fmt.Sprintf("=== %s ===", mode)))

	if len(res.Outcomes) == 0 {
		fmt.Fprintln(w, s.Muted.Render("    No test classes declared."))
	} else {
		// Budget: 76 cols. Borders take 4, padding 6.
		// CLASS=28, PATH=28, STATUS=11.
		const maxClass, maxPath = 28, 28
		rows := make([][]string, 0, len(res.Outcomes))
		for _, o := range res.Outcomes {
			rows = append(rows, []string{
				Shorten(o.Class, maxClass),
				Shorten(o.Path, maxPath),
				Status(o, res.DryRun),
			})
		}

		t := table.New().
			Width(76).
			Border(lipgloss.NormalBorder()).
			BorderStyle(s.Border).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return s.TableHeader
				}
				if col == 2 && row >= 0 && row < len(rows) {
					return s.StatusStyle(rows[row][2])
				}
				return s.TableCell
			}).
			Headers("CLASS", "PATH", "STATUS").
			Rows(rows...)

		fmt.Fprintln(w, t)
	}

	fmt.Fprintf(w, "\n%s\n",
		s.Header.Render(fmt.Sprintf(
			"%d class(es) generated, %d changed",
			len(res.Outcomes), res.Changed())))

	if !res.DryRun {
		return nil
	}
	if len(res.Inconsistencies) == 0 {
		fmt.Fprintf(w, "%s generated sources are up to date\n", s.Pass.Render("PASS"))
		return nil
	}
	fmt.Fprintf(w, "%s %d generated file(s) out of date:\n",
		s.Fail.Render("FAIL"), len(res.Inconsistencies))
	for _, p := range res.Inconsistencies {
		fmt.Fprintf(w, "    %s\n", p)
	}
	return nil
}

// WriteCFGText writes a cfgcheck report with the top most complex
// functions. A non-positive top omits the table.
func WriteCFGText(w io.Writer, rpt *cfgcheck.Report, top int) error {
	s := DefaultStyles()

	fmt.Fprintln(w, s.Header.Render("=== control-flow graphs ==="))
	fmt.Fprintf(w, "%s %d package(s), %d file(s), %d function(s) consistent\n",
		s.Pass.Render("PASS"), rpt.Packages, rpt.Files, len(rpt.Funcs))

	if top <= 0 {
		return nil
	}
	stats := rpt.MostComplex(top)
	if len(stats) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.SubHeader.Render(fmt.Sprintf("    Top %d by cyclomatic complexity", len(stats))))

	// FUNCTION=24, LOCATION=22, BLOCKS=6, LIVE=4, CPLX=4.
	const maxFunc, maxLoc = 24, 22
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			Shorten(st.Func, maxFunc),
			Shorten(filepath.Base(st.Location), maxLoc),
			strconv.Itoa(st.Blocks),
			strconv.Itoa(st.LiveBlocks),
			strconv.Itoa(st.Complexity),
		})
	}

	t := table.New().
		Width(76).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			return s.TableCell
		}).
		Headers("FUNCTION", "LOCATION", "BLOCKS", "LIVE", "CPLX").
		Rows(rows...)

	fmt.Fprintln(w, t)
	return nil
}

// Shorten keeps the tail of s, which carries the most specific part
// of class names and paths.
func Shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}
