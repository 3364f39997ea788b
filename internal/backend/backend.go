// Package backend defines the execution backends a generated test can
// target and the in-text directives that restrict a test data file to
// some of them.
package backend

import (
	"fmt"
	"strings"
)

// Target is an execution backend.
type Target string

// Known backends. Any means "run everywhere" and disables filtering.
const (
	Any    Target = "ANY"
	JVM    Target = "JVM"
	JVMIR  Target = "JVM_IR"
	JS     Target = "JS"
	JSIR   Target = "JS_IR"
	Native Target = "NATIVE"
	Wasm   Target = "WASM"
)

// compatibleWith links a backend to the one whose directives it also
// honors.
var compatibleWith = map[Target]Target{
	JVMIR: JVM,
	JSIR:  JS,
}

// All returns every known backend in declaration order.
func All() []Target {
	return []Target{Any, JVM, JVMIR, JS, JSIR, Native, Wasm}
}

// Parse converts a backend name to a Target. The empty string parses
// as Any.
func Parse(s string) (Target, error) {
	if s == "" {
		return Any, nil
	}
	t := Target(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range All() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target backend %q", s)
}

// Matches reports whether a directive naming d applies to t, either
// directly or through t's compatibility chain.
func (t Target) Matches(d Target) bool {
	for cur := t; cur != ""; cur = compatibleWith[cur] {
		if cur == d {
			return true
		}
	}
	return false
}

func (t Target) String() string { return string(t) }
