// Package cfgcheck is a one-shot validation pass that builds the
// control-flow graph of every function in a module and asserts the
// graphs are internally consistent.
package cfgcheck

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"sort"

	"github.com/fzipp/gocyclo"
	"golang.org/x/tools/go/cfg"

	"github.com/unbound-force/testgen/internal/loader"
)

// Func is one function or function literal with its graph.
type Func struct {
	Name string
	Pos  token.Position

	// Node is the *ast.FuncDecl or *ast.FuncLit the graph was built
	// from.
	Node ast.Node
	CFG  *cfg.CFG
}

// Visitor inspects the functions of a Unit. Returning an error stops
// the walk.
type Visitor interface {
	VisitFunc(fn Func) error
}

// Unit is one parsed source file.
type Unit struct {
	Fset    *token.FileSet
	File    *ast.File
	Package string
}

// Accept builds the graph of every function body in the unit, in
// source order, and hands it to v. It stops at the first error.
func (u *Unit) Accept(v Visitor) error {
	var err error
	ast.Inspect(u.File, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		var (
			body *ast.BlockStmt
			name string
		)
		switch fn := n.(type) {
		case *ast.FuncDecl:
			body, name = fn.Body, funcDeclName(fn)
		case *ast.FuncLit:
			body = fn.Body
			name = fmt.Sprintf("func@%d", u.Fset.Position(fn.Pos()).Line)
		default:
			return true
		}
		if body == nil {
			return true
		}
		err = v.VisitFunc(Func{
			Name: name,
			Pos:  u.Fset.Position(n.Pos()),
			Node: n,
			CFG:  cfg.New(body, mayReturn),
		})
		return err == nil
	})
	return err
}

func funcDeclName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return fd.Name.Name
	}
	t := fd.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	if idx, ok := t.(*ast.IndexExpr); ok {
		t = idx.X
	}
	if idx, ok := t.(*ast.IndexListExpr); ok {
		t = idx.X
	}
	if id, ok := t.(*ast.Ident); ok {
		return id.Name + "." + fd.Name.Name
	}
	return fd.Name.Name
}

// mayReturn reports false for calls that syntactically never return.
func mayReturn(call *ast.CallExpr) bool {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name != "panic"
	case *ast.SelectorExpr:
		pkg, ok := fn.X.(*ast.Ident)
		if !ok {
			return true
		}
		switch pkg.Name + "." + fn.Sel.Name {
		case "os.Exit", "log.Fatal", "log.Fatalf", "log.Fatalln", "log.Panic", "log.Panicf", "log.Panicln":
			return false
		}
	}
	return true
}

// InconsistencyError describes the first inconsistency found.
type InconsistencyError struct {
	Func   string
	Pos    token.Position
	Block  int32
	Reason string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s: %s: inconsistent control-flow graph at block %d: %s",
		e.Pos, e.Func, e.Block, e.Reason)
}

// blockError is what CheckGraph returns; the checker adds position.
type blockError struct {
	block  int32
	reason string
}

func (e *blockError) Error() string {
	return fmt.Sprintf("block %d: %s", e.block, e.reason)
}

// CheckGraph verifies the structural invariants of g: blocks are
// indexed by position, successors belong to g, no block has more than
// two successors, and Live holds exactly for blocks reachable from the
// entry block.
func CheckGraph(g *cfg.CFG) error {
	if len(g.Blocks) == 0 {
		return &blockError{block: -1, reason: "graph has no entry block"}
	}
	for i, b := range g.Blocks {
		if b == nil {
			return &blockError{block: int32(i), reason: "nil block"}
		}
		if b.Index != int32(i) {
			return &blockError{block: int32(i), reason: fmt.Sprintf("index %d does not match position", b.Index)}
		}
		if len(b.Succs) > 2 {
			return &blockError{block: b.Index, reason: fmt.Sprintf("%d successors", len(b.Succs))}
		}
		for _, s := range b.Succs {
			if s == nil || int(s.Index) >= len(g.Blocks) || s.Index < 0 || g.Blocks[s.Index] != s {
				return &blockError{block: b.Index, reason: "successor outside the graph"}
			}
		}
	}

	reachable := make([]bool, len(g.Blocks))
	queue := []*cfg.Block{g.Blocks[0]}
	reachable[0] = true
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		for _, s := range b.Succs {
			if !reachable[s.Index] {
				reachable[s.Index] = true
				queue = append(queue, s)
			}
		}
	}
	for i, b := range g.Blocks {
		if b.Live != reachable[i] {
			return &blockError{block: b.Index, reason: fmt.Sprintf("live=%t but reachable=%t", b.Live, reachable[i])}
		}
	}
	return nil
}

// FuncStat summarizes one checked function.
type FuncStat struct {
	Package    string `json:"package"`
	Func       string `json:"function"`
	Location   string `json:"location"`
	Blocks     int    `json:"blocks"`
	LiveBlocks int    `json:"live_blocks"`
	Complexity int    `json:"complexity"`
}

// Checker is the consistency Visitor. It fails on the first
// inconsistent graph and records statistics for the others.
type Checker struct {
	Package string
	Stats   []FuncStat
}

// VisitFunc implements Visitor.
func (c *Checker) VisitFunc(fn Func) error {
	if err := CheckGraph(fn.CFG); err != nil {
		ie := &InconsistencyError{Func: fn.Name, Pos: fn.Pos, Block: -1, Reason: err.Error()}
		var be *blockError
		if errors.As(err, &be) {
			ie.Block, ie.Reason = be.block, be.reason
		}
		return ie
	}
	live := 0
	for _, b := range fn.CFG.Blocks {
		if b.Live {
			live++
		}
	}
	c.Stats = append(c.Stats, FuncStat{
		Package:    c.Package,
		Func:       fn.Name,
		Location:   fn.Pos.String(),
		Blocks:     len(fn.CFG.Blocks),
		LiveBlocks: live,
		Complexity: gocyclo.Complexity(fn.Node),
	})
	return nil
}

// Report is the outcome of a Check run.
type Report struct {
	Packages int        `json:"packages"`
	Files    int        `json:"files"`
	Funcs    []FuncStat `json:"functions"`
}

// MostComplex returns up to n stats ordered by descending complexity.
// A negative n is treated as zero.
func (r *Report) MostComplex(n int) []FuncStat {
	n = max(n, 0)
	sorted := make([]FuncStat, len(r.Funcs))
	copy(sorted, r.Funcs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Complexity > sorted[j].Complexity
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// Check loads the packages matching patterns under dir and runs the
// consistency visitor over every file, stopping at the first
// inconsistency.
func Check(dir string, patterns []string) (*Report, error) {
	pkgs, err := loader.LoadAll(dir, patterns...)
	if err != nil {
		return nil, err
	}
	rpt := &Report{Packages: len(pkgs), Funcs: []FuncStat{}}
	for _, p := range pkgs {
		checker := &Checker{Package: p.PkgPath}
		for _, f := range p.Syntax {
			u := &Unit{Fset: p.Fset, File: f, Package: p.PkgPath}
			if err := u.Accept(checker); err != nil {
				return nil, err
			}
			rpt.Files++
		}
		rpt.Funcs = append(rpt.Funcs, checker.Stats...)
	}
	return rpt, nil
}
