// Package emit turns a resolved test class into Java source and
// writes it to disk only when the content changed.
package emit

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unbound-force/testgen/internal/naming"
	"github.com/unbound-force/testgen/internal/testgroup"
	"github.com/unbound-force/testgen/internal/testmodel"
)

// Generator is the name written into the generated-file banner.
const Generator = "testgen"

// OutputPath returns the file a class is written to:
// TestsRoot/<package dirs>/<SimpleName>.java.
func OutputPath(c *testgroup.Class) string {
	fq := c.QualifiedName()
	dir := strings.ReplaceAll(naming.PackageName(fq), ".", string(filepath.Separator))
	return filepath.Join(c.Group().TestsRoot, dir, naming.SimpleName(fq)+".java")
}

// Render discovers the class's models and returns the generated
// source text.
func Render(c *testgroup.Class) (string, error) {
	resolved, err := c.Resolve()
	if err != nil {
		return "", err
	}
	return RenderResolved(c, resolved), nil
}

// RenderResolved renders already discovered models. A single model is
// flattened into the top-level class; several models become nested
// classes.
func RenderResolved(c *testgroup.Class, resolved []*testmodel.ResolvedClass) string {
	p := &printer{junit4: c.UseJunit4, projectDir: c.Group().ProjectDir}
	fq := c.QualifiedName()

	if pkg := naming.PackageName(fq); pkg != "" {
		p.linef("package %s;", pkg)
		p.blank()
	}
	p.writeImports(c)
	p.linef("/** This class is generated by %s. DO NOT MODIFY MANUALLY */", Generator)
	p.line(`@SuppressWarnings("all")`)

	top := &testmodel.ResolvedClass{
		Name:        naming.SimpleName(fq),
		Annotations: c.Annotations,
	}
	if len(resolved) == 1 {
		flat := *resolved[0]
		flat.Name = top.Name
		flat.Annotations = c.Annotations
		top = &flat
	} else {
		top.Inner = resolved
	}
	p.writeClass(top, c.BaseTestClassName, true, len(resolved) == 1)
	return p.String()
}

type printer struct {
	sb         strings.Builder
	indent     int
	junit4     bool
	projectDir string
}

func (p *printer) String() string { return p.sb.String() }

func (p *printer) line(s string) {
	if s != "" {
		p.sb.WriteString(strings.Repeat("    ", p.indent))
		p.sb.WriteString(s)
	}
	p.sb.WriteString("\n")
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *printer) blank() { p.line("") }

func (p *printer) writeImports(c *testgroup.Class) {
	imports := []string{
		"com.intellij.testFramework.TestDataPath",
		"org.jetbrains.kotlin.test.TargetBackend",
		"org.jetbrains.kotlin.test.TestMetadata",
		"org.jetbrains.kotlin.test.util.KtTestUtil",
	}
	if p.junit4 {
		imports = append(imports,
			"org.junit.Test",
			"org.junit.experimental.runners.Enclosed",
			"org.junit.runner.RunWith",
			"org.junit.runners.BlockJUnit4ClassRunner",
		)
	} else {
		imports = append(imports,
			"org.junit.jupiter.api.Nested",
			"org.junit.jupiter.api.Test",
		)
	}
	if naming.PackageName(c.BaseTestClassName) != naming.PackageName(c.QualifiedName()) &&
		naming.PackageName(c.BaseTestClassName) != "" {
		imports = append(imports, c.BaseTestClassName)
	}
	sort.Strings(imports)
	for _, imp := range imports {
		p.linef("import %s;", imp)
	}
	p.blank()
	p.line("import java.io.File;")
	p.line("import java.util.regex.Pattern;")
	p.blank()
}

// writeClass prints rc. withBody is false for the container class of a
// multi-model test class, which has no root of its own.
func (p *printer) writeClass(rc *testmodel.ResolvedClass, extends string, top, withBody bool) {
	for _, a := range rc.Annotations {
		p.line(a.String())
	}
	if !top && !p.junit4 {
		p.line("@Nested")
	}
	if withBody {
		p.linef("@TestMetadata(%s)", javaQuote(p.dataPath(rc.Root)))
	}
	p.line(`@TestDataPath("$PROJECT_ROOT")`)
	if p.junit4 {
		runner := "BlockJUnit4ClassRunner"
		if len(rc.Inner) > 0 {
			runner = "Enclosed"
		}
		p.linef("@RunWith(%s.class)", runner)
	}

	decl := "public class " + rc.Name
	if !top && p.junit4 {
		decl = "public static class " + rc.Name
	}
	if extends != "" {
		decl += " extends " + naming.SimpleName(extends)
	}
	p.line(decl + " {")
	p.indent++

	if withBody {
		p.writeRunner(rc)
		p.blank()
		p.writeAllFilesPresent(rc)
		for _, m := range methodNames(rc) {
			p.blank()
			p.writeMethod(m)
		}
	}
	for i, in := range innerClasses(rc) {
		if withBody || i > 0 {
			p.blank()
		}
		p.writeClass(in, extends, false, true)
	}

	p.indent--
	p.line("}")
}

// innerClasses returns rc's nested classes with unique names. Java
// rejects two members of the same name and a member named after its
// enclosing class.
func innerClasses(rc *testmodel.ResolvedClass) []*testmodel.ResolvedClass {
	reserved := map[string]bool{rc.Name: true}
	out := make([]*testmodel.ResolvedClass, 0, len(rc.Inner))
	for _, in := range rc.Inner {
		name := in.Name
		for i := 2; reserved[name]; i++ {
			name = fmt.Sprintf("%s_%d", in.Name, i)
		}
		reserved[name] = true
		if name != in.Name {
			renamed := *in
			renamed.Name = name
			in = &renamed
		}
		out = append(out, in)
	}
	return out
}

func (p *printer) writeRunner(rc *testmodel.ResolvedClass) {
	args := []string{
		"this::" + rc.TestMethod,
		"TargetBackend." + rc.TargetBackend.String(),
		"testDataFilePath",
	}
	args = append(args, rc.RunnerArgs...)
	p.line("private void runTest(String testDataFilePath) throws Exception {")
	p.indent++
	p.linef("KtTestUtil.%s(%s);", rc.RunnerMethod, strings.Join(args, ", "))
	p.indent--
	p.line("}")
}

func (p *printer) writeAllFilesPresent(rc *testmodel.ResolvedClass) {
	exclude := "null"
	if rc.ExcludePattern != "" {
		exclude = "Pattern.compile(" + javaQuote(rc.ExcludePattern) + ")"
	}
	args := []string{
		"this.getClass()",
		"new File(" + javaQuote(p.dataPath(rc.Root)) + ")",
		"Pattern.compile(" + javaQuote(rc.Pattern) + ")",
		exclude,
		"TargetBackend." + rc.TargetBackend.String(),
		fmt.Sprintf("%t", rc.Recursive),
	}
	for _, d := range rc.ExcludedDirs {
		args = append(args, javaQuote(d))
	}
	p.line("@Test")
	p.linef("public void testAllFilesPresentIn%s() {", rc.Name)
	p.indent++
	p.linef("KtTestUtil.assertAllTestsPresentByMetadataWithExcluded(%s);", strings.Join(args, ", "))
	p.indent--
	p.line("}")
}

type method struct {
	name string
	tc   testmodel.TestCase
}

func (p *printer) writeMethod(m method) {
	p.line("@Test")
	p.linef("@TestMetadata(%s)", javaQuote(m.tc.RelPath))
	p.linef("public void %s() throws Exception {", m.name)
	p.indent++
	p.linef("runTest(%s);", javaQuote(p.dataPath(m.tc.Path)))
	p.indent--
	p.line("}")
}

// methodNames assigns unique method names. Cases of a flattened model
// that share a name are qualified with their directory.
func methodNames(rc *testmodel.ResolvedClass) []method {
	reserved := map[string]bool{"testAllFilesPresentIn" + rc.Name: true}
	out := make([]method, 0, len(rc.Cases))
	for _, tc := range rc.Cases {
		name := tc.MethodName
		if reserved[name] {
			if dir := path.Dir(tc.RelPath); dir != "." {
				name = naming.MethodName(dir + "_" + tc.Name)
			}
		}
		base := name
		for i := 2; reserved[name]; i++ {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		reserved[name] = true
		out = append(out, method{name: name, tc: tc})
	}
	return out
}

// dataPath names a test data path relative to the project directory,
// so the text does not depend on how the suite file was reached.
func (p *printer) dataPath(s string) string {
	if p.projectDir == "" {
		return filepath.ToSlash(s)
	}
	base, err := filepath.Abs(p.projectDir)
	if err != nil {
		return filepath.ToSlash(s)
	}
	target, err := filepath.Abs(s)
	if err != nil {
		return filepath.ToSlash(s)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(s)
	}
	return filepath.ToSlash(rel)
}

func javaQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
