// Package gen holds helpers shared by the binding backends: template
// parsing, template functions and nested variable naming.
package gen

import (
	"strconv"
	"strings"
	"text/template"
)

// Parse builds a backend's template set from its sources. Sources are
// package constants, so a parse failure is a programming error and panics.
func Parse(name string, funcs template.FuncMap, sources ...string) *template.Template {
	tmpl := template.New(name).Funcs(Funcs())
	if funcs != nil {
		tmpl = tmpl.Funcs(funcs)
	}
	for _, src := range sources {
		template.Must(tmpl.Parse(src))
	}
	return tmpl
}

// Funcs returns the template functions every backend gets.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lines":  Lines,
		"indent": Indent,
		"join":   strings.Join,
	}
}

// Lines splits a doc string into trimmed lines. An empty doc has no lines.
func Lines(doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil
	}
	out := strings.Split(doc, "\n")
	for i, l := range out {
		out[i] = strings.TrimRight(l, " \t\r")
	}
	return out
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// Var names a variable bound at a nesting depth of a composite conversion,
// e.g. Var("v", 1) is "v1". Distinct depths never shadow each other.
func Var(prefix string, depth int) string {
	return prefix + strconv.Itoa(depth)
}

// Reserved are the variable names the backend templates bind in wrappers.
// Model arguments with these names are renamed.
var Reserved = []string{"ret", "buf", "value", "handle", "err", "rbuf"}
