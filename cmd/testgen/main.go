package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/testgen/internal/cfgcheck"
	"github.com/unbound-force/testgen/internal/config"
	"github.com/unbound-force/testgen/internal/emit"
	"github.com/unbound-force/testgen/internal/generate"
	"github.com/unbound-force/testgen/internal/report"
	"github.com/unbound-force/testgen/internal/scaffold"
	"github.com/unbound-force/testgen/internal/testgroup"
	"github.com/unbound-force/testgen/internal/testmodel"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

// dryRunToken selects dry-run mode when it appears anywhere on the
// generate command line.
const dryRunToken = "dryRun"

func main() {
	root := newRootCmd()
	root.SetArgs(hoistDryRun(os.Args[1:]))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// hoistDryRun moves dryRun tokens that precede the generate subcommand
// behind it, so "testgen dryRun generate" reaches generate.
func hoistDryRun(args []string) []string {
	gen := slices.Index(args, "generate")
	if gen < 0 || !slices.Contains(args[:gen], dryRunToken) {
		return args
	}
	out := make([]string, 0, len(args))
	var hoisted int
	for i, a := range args {
		if i < gen && a == dryRunToken {
			hoisted++
			continue
		}
		out = append(out, a)
	}
	for range hoisted {
		out = append(out, dryRunToken)
	}
	return out
}

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		chdir   string
	)

	root := &cobra.Command{
		Use:   "testgen",
		Short: "testgen generates JUnit test classes from test data directories",
		Long: `testgen reads a suite file declaring test groups, test classes and
models, discovers the matching test data files and writes one
generated test class per declared class. In dry-run mode nothing is
written and out-of-date generated files are reported instead.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
			if chdir != "" {
				if err := os.Chdir(chdir); err != nil {
					return fmt.Errorf("changing directory: %w", err)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	root.PersistentFlags().StringVarP(&chdir, "chdir", "C", "",
		"run as if started in this directory")

	root.AddCommand(newInitCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newCfgcheckCmd())
	root.AddCommand(newSchemaCmd())

	return root
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", format)
	}
	return nil
}

// loadSuite reads the suite file and builds the declared suite.
func loadSuite(path string) (*testgroup.Suite, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return config.Build(f)
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a starter suite file with sample test data",
		Long: `Write a starter testgen.yaml and a small test data tree into the
current directory. Existing files are skipped unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := scaffold.Run(scaffold.Options{
				Force:   force,
				Version: version,
				Stdout:  cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false,
		"overwrite existing files")

	return cmd
}

// generateParams holds the parsed flags for the generate command.
type generateParams struct {
	configPath string
	dryRun     bool
	diff       bool
	format     string
	stdout     io.Writer
	stderr     io.Writer
}

// parseGenerateArgs reports whether args select dry-run mode and
// returns the arguments it does not understand.
func parseGenerateArgs(args []string) (dryRun bool, unknown []string) {
	for _, a := range args {
		if a == dryRunToken {
			dryRun = true
			continue
		}
		unknown = append(unknown, a)
	}
	return dryRun, unknown
}

// runGenerate is the extracted, testable body of the generate command.
func runGenerate(p generateParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}

	suite, err := loadSuite(p.configPath)
	if err != nil {
		return err
	}

	emitter := &emit.Emitter{}
	if p.diff {
		// Keep stdout parseable when it carries JSON.
		emitter.Diff = p.stdout
		if p.format == "json" {
			emitter.Diff = p.stderr
		}
	}

	logger.Info("generating tests", "config", p.configPath, "dryRun", p.dryRun)
	res, err := generate.Run(suite, generate.Options{
		DryRun:  p.dryRun,
		Emitter: emitter,
		Tracker: generate.NewTracker(p.dryRun),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	logger.Info("generation complete", "classes", len(res.Outcomes), "changed", res.Changed())

	switch p.format {
	case "json":
		err = report.WriteJSON(p.stdout, res, version)
	default:
		err = report.WriteText(p.stdout, res)
	}
	if err != nil {
		return err
	}

	if n := len(res.Inconsistencies); n > 0 {
		return fmt.Errorf("%d generated file(s) out of date, run without %s to regenerate", n, dryRunToken)
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
		diff       bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "generate [dryRun]",
		Short: "Generate test classes declared in the suite file",
		Long: `Generate writes one test class per class declared in the suite file,
in declaration order, and reports which files changed.

Passing the literal argument dryRun (anywhere) or --dry-run computes
the output without writing it. If any generated file is out of date
the command lists it and exits non-zero.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			argDryRun, unknown := parseGenerateArgs(args)
			if len(unknown) > 0 {
				logger.Warn("ignoring arguments", "args", strings.Join(unknown, " "))
			}
			return runGenerate(generateParams{
				configPath: configPath,
				dryRun:     dryRun || argDryRun,
				diff:       diff,
				format:     format,
				stdout:     cmd.OutOrStdout(),
				stderr:     cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile,
		"path to the suite file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"compute output without writing it")
	cmd.Flags().BoolVar(&diff, "diff", false,
		"print a unified diff for every out-of-date file (dry run)")
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")

	return cmd
}

// listedClass is one declared class together with its discovered
// models.
type listedClass struct {
	Class  string                     `json:"class"`
	Path   string                     `json:"path"`
	Models []*testmodel.ResolvedClass `json:"models"`
}

// discoverSuite resolves every class of suite in declaration order.
func discoverSuite(suite *testgroup.Suite) ([]listedClass, error) {
	var listed []listedClass
	for _, g := range suite.Groups() {
		for _, c := range g.Classes() {
			resolved, err := c.Resolve()
			if err != nil {
				return nil, fmt.Errorf("discovering %s: %w", c.QualifiedName(), err)
			}
			listed = append(listed, listedClass{
				Class:  c.QualifiedName(),
				Path:   emit.OutputPath(c),
				Models: resolved,
			})
		}
	}
	return listed, nil
}

// writeListing prints the discovered suite as an indented tree.
func writeListing(w io.Writer, listed []listedClass) {
	cases := 0
	for _, lc := range listed {
		fmt.Fprintf(w, "%s -> %s\n", lc.Class, lc.Path)
		for _, rc := range lc.Models {
			cases += rc.CaseCount()
			writeResolved(w, rc, 1)
		}
	}
	fmt.Fprintf(w, "%d class(es), %d test case(s)\n", len(listed), cases)
}

func writeResolved(w io.Writer, rc *testmodel.ResolvedClass, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s (%s, %d case(s))\n", indent, rc.Name, rc.Root, rc.CaseCount())
	for _, tc := range rc.Cases {
		fmt.Fprintf(w, "%s  %s\n", indent, tc.MethodName)
	}
	for _, in := range rc.Inner {
		writeResolved(w, in, depth+1)
	}
}

// listParams holds the parsed flags for the list command.
type listParams struct {
	configPath  string
	format      string
	interactive bool
	stdout      io.Writer
}

// runList is the extracted, testable body of the list command.
func runList(p listParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}

	suite, err := loadSuite(p.configPath)
	if err != nil {
		return err
	}
	listed, err := discoverSuite(suite)
	if err != nil {
		return err
	}
	logger.Debug("discovery complete", "classes", len(listed))

	if p.interactive {
		return runInteractiveList(listed)
	}

	switch p.format {
	case "json":
		if listed == nil {
			listed = []listedClass{}
		}
		enc := json.NewEncoder(p.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	default:
		writeListing(p.stdout, listed)
		return nil
	}
}

func newListCmd() *cobra.Command {
	var (
		configPath  string
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the test classes and cases the suite file declares",
		Long: `List discovers the test data of every declared class and prints the
resulting classes, nested classes and test methods without writing
anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(listParams{
				configPath:  configPath,
				format:      format,
				interactive: interactive,
				stdout:      cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile,
		"path to the suite file")
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing the suite")

	return cmd
}

// cfgcheckParams holds the parsed flags for the cfgcheck command.
type cfgcheckParams struct {
	patterns []string
	dir      string
	format   string
	top      int
	stdout   io.Writer
}

// runCfgcheck is the extracted, testable body of the cfgcheck command.
func runCfgcheck(p cfgcheckParams) error {
	if err := checkFormat(p.format); err != nil {
		return err
	}

	logger.Info("checking control-flow graphs", "patterns", p.patterns)
	rpt, err := cfgcheck.Check(p.dir, p.patterns)
	if err != nil {
		return err
	}
	logger.Info("check complete", "functions", len(rpt.Funcs))

	switch p.format {
	case "json":
		return report.WriteCFGJSON(p.stdout, rpt, version)
	default:
		return report.WriteCFGText(p.stdout, rpt, p.top)
	}
}

func newCfgcheckCmd() *cobra.Command {
	var (
		format string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "cfgcheck [packages...]",
		Short: "Check control-flow graph consistency of Go packages",
		Long: `Build the control-flow graph of every function and function literal
in the given packages (default ./...) and verify that each graph is
internally consistent. Fails on the first inconsistent graph.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			return runCfgcheck(cfgcheckParams{
				patterns: args,
				dir:      dir,
				format:   format,
				top:      top,
				stdout:   cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().IntVar(&top, "top", 10,
		"show the N most complex functions (0 = none)")

	return cmd
}

var schemas = map[string]string{
	"generate": report.Schema,
	"cfgcheck": report.CFGSchema,
	"config":   config.Schema,
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [generate|cfgcheck|config]",
		Short: "Print a JSON Schema used or produced by testgen",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the structure
of testgen generate --format=json output (the default), testgen
cfgcheck --format=json output, or the suite file.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"generate", "cfgcheck", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "generate"
			if len(args) == 1 {
				name = args[0]
			}
			s, ok := schemas[name]
			if !ok {
				return fmt.Errorf("unknown schema %q: must be 'generate', 'cfgcheck', or 'config'", name)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
}
