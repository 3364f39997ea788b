// Package naming turns filesystem names into identifiers usable in
// generated test sources.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// Capitalize upper-cases the first rune of s and leaves the rest
// untouched ("fooBar" -> "FooBar").
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(string(r)) + s[size:]
}

// EscapeIdentifier replaces every rune that cannot appear in a Java
// identifier with an underscore. A leading digit gets an underscore
// prefix.
func EscapeIdentifier(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_', r == '$':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ClassName derives a nested class name from a directory name.
func ClassName(dirName string) string {
	return Capitalize(EscapeIdentifier(dirName))
}

// MethodName derives a test method name from a case name.
func MethodName(caseName string) string {
	return "test" + Capitalize(EscapeIdentifier(caseName))
}

// SimpleName returns the last dot-separated segment of a fully
// qualified class name.
func SimpleName(fqName string) string {
	if i := strings.LastIndexByte(fqName, '.'); i >= 0 {
		return fqName[i+1:]
	}
	return fqName
}

// PackageName returns everything before the last dot of a fully
// qualified class name, or "" for a class in the default package.
func PackageName(fqName string) string {
	if i := strings.LastIndexByte(fqName, '.'); i >= 0 {
		return fqName[:i]
	}
	return ""
}
