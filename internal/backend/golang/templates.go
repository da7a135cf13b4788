package golang

import (
	"text/template"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/naming"
)

func parseTemplates() *template.Template {
	return gen.Parse("GoTemplates", template.FuncMap{
		"snake": naming.ToSnakeCase,
	}, callTemplate, objectTemplate, namespaceTemplate, recordTemplate, enumTemplate, fileTemplate, runtimeTemplate)
}

// callTemplate renders wrapper bodies. Every wrapper has named results so
// that catchPanic can turn a failed lift or lower into the returned error.
const callTemplate = `
{{- define "doc" -}}
{{range lines .}}//{{if .}} {{.}}{{end}}
{{end}}
{{- end -}}

{{- define "params" -}}
{{range $i, $p := .}}{{if $i}}, {{end}}{{$p.Name}} {{$p.Native}}{{end}}
{{- end -}}

{{- define "cParams" -}}
{{range $i, $p := .}}{{$p.Declared}} arg{{$i}}, {{end}}
{{- end -}}

{{- define "results" -}}
({{if .IsConstructor}}ret0 *{{.Owner}}, {{else if .HasReturn}}ret0 {{.ReturnNative}}, {{end}}err error)
{{- end -}}

{{- define "rustCall" -}}
{{if .Throws}}rustCallChecked{{else}}rustCall{{end}}
{{- end -}}

{{- define "args" -}}
{{if .HandleDeclared}}C.{{.HandleDeclared}}(handle), {{end}}{{range .Params}}{{.Lowered}}, {{end}}cerr
{{- end -}}

{{- define "body"}}
	defer catchPanic(&err)
{{- if .HandleDeclared}}
	handle := obj.lowerHandle()
{{- end}}
{{- if .HasReturn}}
	ret, err := {{template "rustCall" .}}(func(cerr *C.RustError) C.{{.ReturnDeclared}} {
		return C.{{.Symbol}}({{template "args" .}})
	})
	if err != nil {
		return ret0, err
	}
	return {{if .IsConstructor}}new{{.Owner}}FromHandle(uint64(ret)){{else}}{{.ReturnLifted}}{{end}}, nil
{{- else}}
	_, err = {{template "rustCall" .}}(func(cerr *C.RustError) struct{} {
		C.{{.Symbol}}({{template "args" .}})
		return struct{}{}
	})
	return err
{{- end}}
{{- end -}}
`

const objectTemplate = `
{{- define "object_declarations" -}}
void {{.FreeSymbol}}({{.HandleDeclared}} handle, RustError *err);
{{range .Constructors}}{{.ReturnDeclared}} {{.Symbol}}({{template "cParams" .Params}}RustError *err);
{{end}}{{range .Methods}}{{if .HasReturn}}{{.ReturnDeclared}}{{else}}void{{end}} {{.Symbol}}({{.HandleDeclared}} handle, {{template "cParams" .Params}}RustError *err);
{{end}}
{{- end -}}

{{- define "object_definitions" -}}
{{- $obj := . -}}
{{if .Doc}}{{template "doc" .Doc}}//
{{end -}}
// {{.Name}} owns one native handle. Constructors return a new handle owned
// by the object, methods borrow it for the duration of the call, and Close
// frees it exactly once. Objects that are never closed are freed by a
// finalizer.
type {{.Name}} struct {
	handle nativeHandle
}

func new{{.Name}}FromHandle(h uint64) *{{.Name}} {
	obj := &{{.Name}}{}
	obj.handle.v.Store(h)
	track(obj, func(o *{{.Name}}) { _ = o.Close() })
	return obj
}

func (obj *{{.Name}}) lowerHandle() uint64 {
	h := obj.handle.v.Load()
	if h == 0 {
		throw(&InternalError{Message: "{{.Name}} has already been closed"})
	}
	return h
}

// Close frees the native object. Further calls are no-ops.
func (obj *{{.Name}}) Close() error {
	h := obj.handle.v.Swap(0)
	if h == 0 {
		return nil
	}
	untrack(obj)
	_, err := rustCall(func(cerr *C.RustError) struct{} {
		C.{{.FreeSymbol}}(C.{{.HandleDeclared}}(h), cerr)
		return struct{}{}
	})
	return err
}
{{range .Constructors}}
{{template "doc" .Doc}}func New{{$obj.Name}}{{if not .IsPrimary}}{{.Name}}{{end}}({{template "params" .Params}}) {{template "results" .}} { {{- template "body" .}}
}
{{end}}
{{- range .Methods}}
{{template "doc" .Doc}}func (obj *{{$obj.Name}}) {{.Name}}({{template "params" .Params}}) {{template "results" .}} { {{- template "body" .}}
}
{{end -}}
{{- end -}}
`

const namespaceTemplate = `
{{- define "namespace_declarations" -}}
{{range .Functions}}{{if .HasReturn}}{{.ReturnDeclared}}{{else}}void{{end}} {{.Symbol}}({{template "cParams" .Params}}RustError *err);
{{end}}
{{- end -}}

{{- define "namespace_definitions" -}}
{{- $ns := . -}}
{{if .Doc}}{{template "doc" .Doc}}
{{end -}}
{{range $i, $fn := .Functions}}{{if $i}}
{{end}}{{template "doc" .Doc}}func {{$ns.Name}}{{.Name}}({{template "params" .Params}}) {{template "results" .}} { {{- template "body" .}}
}
{{end -}}
{{- end -}}
`

const recordTemplate = `
{{- define "record_definitions" -}}
{{template "doc" .Doc -}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Native}}
{{- end}}
}

func read{{.Name}}(buf *reader) {{.Name}} {
	return {{.Name}}{
{{- range .Fields}}
		{{.Name}}: {{.Read}},
{{- end}}
	}
}

func write{{.Name}}(buf *writer, value {{.Name}}) {
{{- range .Fields}}
	{{.Write}}
{{- end}}
}

func lift{{.Name}}(rbuf C.RustBuffer) {{.Name}} {
	return valueFromBuffer(rbuf, read{{.Name}})
}

func lower{{.Name}}(value {{.Name}}) C.RustBuffer {
	return valueToBuffer(func(w *writer) { write{{.Name}}(w, value) })
}
{{end -}}
`

const enumTemplate = `
{{- define "enum_definitions" -}}
{{template "doc" .Doc -}}
type {{.Name}} uint32

const (
{{- range .Variants}}
	{{$.Name}}{{.Name}} {{$.Name}} = {{.Discriminant}}
{{- end}}
)

func lift{{.Name}}(v uint32) {{.Name}} {
	switch {{.Name}}(v) {
	case {{range $i, $v := .Variants}}{{if $i}}, {{end}}{{$.Name}}{{$v.Name}}{{end}}:
		return {{.Name}}(v)
	}
	throw(&InternalError{Message: fmt.Sprintf("invalid {{.Name}} discriminant %d", v)})
	return 0
}

func (e {{.Name}}) String() string {
	switch e {
{{- range .Variants}}
	case {{$.Name}}{{.Name}}:
		return "{{.Raw}}"
{{- end}}
	}
	return fmt.Sprintf("{{.Name}}(%d)", uint32(e))
}
{{end -}}
`

const fileTemplate = `
{{- define "file" -}}
// Code generated by ffigen {{.GeneratorVersion}} from component "{{.Component}}". DO NOT EDIT.
// Model fingerprint: {{.Fingerprint}}

package {{.Option "package" (snake .Component)}}

/*
#cgo LDFLAGS: -l{{.Option "library" .Component}}
#include <stdint.h>
#include <string.h>

typedef struct RustBuffer {
	int32_t capacity;
	int32_t len;
	uint8_t *data;
} RustBuffer;

typedef struct RustError {
	int32_t code;
	char *message;
} RustError;

RustBuffer {{.Component}}_buffer_alloc(int32_t size, RustError *err);
void {{.Component}}_buffer_free(RustBuffer buf, RustError *err);
void {{.Component}}_string_free(char *message);
{{range .Declarations}}{{.}}{{end -}}
*/
import "C"

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"runtime"
	"sync/atomic"
	"unicode/utf8"
	"unsafe"
)
{{template "runtime" .}}
{{- range .Definitions}}
{{.}}{{end -}}
{{- end -}}
`
