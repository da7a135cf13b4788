package python

import (
	"text/template"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/naming"
)

func parseTemplates() *template.Template {
	return gen.Parse("PythonTemplates", template.FuncMap{
		"pascal":    naming.ToPascalCase,
		"screaming": naming.ToScreamingSnakeCase,
	}, callTemplate, objectTemplate, namespaceTemplate, recordTemplate, enumTemplate, fileTemplate)
}

const callTemplate = `
{{- define "docstring" -}}
{{- if .}}"""{{range $i, $l := lines .}}{{if $i}}
{{end}}{{$l}}{{end}}"""{{else}}pass{{end -}}
{{- end -}}

{{- define "params" -}}
{{range .}}, {{.Name}}: {{.Native}}{{end}}
{{- end -}}

{{- define "argtypes" -}}
[{{range .Params}}{{.Declared}}, {{end}}ctypes.POINTER(RustError)]
{{- end -}}

{{- define "call" -}}
{{if .Throws}}_rust_call_checked{{else}}_rust_call{{end}}(_lib.{{.Symbol}}{{if .HandleDeclared}}, self._lower(){{end}}{{range .Params}}, {{.Lowered}}{{end}})
{{- end -}}

{{- define "body" -}}
{{- if .HasReturn}}
        ret = {{template "call" .}}
        return {{.ReturnLifted}}
{{- else}}
        {{template "call" .}}
{{- end}}
{{- end -}}
`

const objectTemplate = `
{{- define "object_declarations" -}}
_lib.{{.FreeSymbol}}.argtypes = [{{.HandleDeclared}}, ctypes.POINTER(RustError)]
_lib.{{.FreeSymbol}}.restype = None
{{range .Constructors}}_lib.{{.Symbol}}.argtypes = {{template "argtypes" .}}
_lib.{{.Symbol}}.restype = {{.ReturnDeclared}}
{{end}}{{range .Methods}}_lib.{{.Symbol}}.argtypes = [{{.HandleDeclared}}, {{range .Params}}{{.Declared}}, {{end}}ctypes.POINTER(RustError)]
_lib.{{.Symbol}}.restype = {{if .HasReturn}}{{.ReturnDeclared}}{{else}}None{{end}}
{{end}}
{{- end -}}

{{- define "object_definitions" -}}
{{- $obj := . -}}
class {{.Name}}:
    {{template "docstring" .Doc}}

    # Lifetime: constructors return a new handle owned by this object.
    # Methods borrow the handle for the duration of the call. close() frees
    # it exactly once; using the object afterwards raises RuntimeError.

{{- with .PrimaryConstructor}}

    def __init__(self{{template "params" .Params}}) -> None:
        self._handle = {{template "call" .}}
        self._lock = threading.Lock()
{{- else}}

    def __init__(self) -> None:
        raise TypeError("{{.Name}} has no primary constructor")
{{- end}}

    @classmethod
    def _from_handle(cls, handle: int) -> "{{.Name}}":
        obj = cls.__new__(cls)
        obj._handle = handle
        obj._lock = threading.Lock()
        return obj
{{range .Constructors}}{{if not .IsPrimary}}
    @classmethod
    def {{.Name}}(cls{{template "params" .Params}}) -> "{{$obj.Name}}":
        {{template "docstring" .Doc}}
        return cls._from_handle({{template "call" .}})
{{end}}{{end}}
    def _lower(self) -> int:
        if self._handle == 0:
            raise RuntimeError("{{.Name}} has already been closed")
        return self._handle

    def close(self) -> None:
        with self._lock:
            handle, self._handle = self._handle, 0
        if handle != 0:
            _rust_call(_lib.{{.FreeSymbol}}, handle)

    def __enter__(self) -> "{{.Name}}":
        return self

    def __exit__(self, *exc) -> None:
        self.close()

    def __del__(self) -> None:
        if getattr(self, "_handle", 0):
            self.close()
{{range .Methods}}
    def {{.Name}}(self{{template "params" .Params}}){{if .HasReturn}} -> {{.ReturnNative}}{{else}} -> None{{end}}:
        {{template "docstring" .Doc}}
{{- template "body" .}}
{{end}}
{{end -}}
`

const namespaceTemplate = `
{{- define "namespace_declarations" -}}
{{range .Functions}}_lib.{{.Symbol}}.argtypes = {{template "argtypes" .}}
_lib.{{.Symbol}}.restype = {{if .HasReturn}}{{.ReturnDeclared}}{{else}}None{{end}}
{{end}}
{{- end -}}

{{- define "namespace_definitions" -}}
class {{.Name}}:
    {{template "docstring" .Doc}}
{{range .Functions}}
    @staticmethod
    def {{.Name}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p.Name}}: {{$p.Native}}{{end}}){{if .HasReturn}} -> {{.ReturnNative}}{{else}} -> None{{end}}:
        {{template "docstring" .Doc}}
{{- template "body" .}}
{{end}}
{{end -}}
`

const recordTemplate = `
{{- define "record_definitions" -}}
@dataclasses.dataclass
class {{.Name}}:
    {{template "docstring" .Doc}}
{{range .Fields}}
    {{.Name}}: {{.Native}}
{{- end}}

    @staticmethod
    def _read(buf: "_Reader") -> "{{.Name}}":
        return {{.Name}}(
{{- range .Fields}}
            {{.Read}},
{{- end}}
        )

    def _write(self, buf: "_Writer") -> None:
        value = self
{{- range .Fields}}
        {{.Write}}
{{- end}}

    @staticmethod
    def _lift(rbuf: "RustBuffer") -> "{{.Name}}":
        return _lift_from_buffer(rbuf, {{.Name}}._read)

    def _lower(self) -> "RustBuffer":
        return _lower_into_buffer(self._write)
{{end -}}
`

const enumTemplate = `
{{- define "enum_definitions" -}}
class {{.Name}}(enum.IntEnum):
    {{template "docstring" .Doc}}
{{range .Variants}}
    {{.Name}} = {{.Discriminant}}
{{- end}}

    @classmethod
    def _lift(cls, value: int) -> "{{.Name}}":
        try:
            return cls(value)
        except ValueError:
            raise InternalError(f"invalid {{.Name}} discriminant {value}") from None
{{end -}}
`

const fileTemplate = `
{{- define "file" -}}
# Generated by ffigen {{.GeneratorVersion}} from component "{{.Component}}".
# Model fingerprint: {{.Fingerprint}}
# Do not edit.

from __future__ import annotations

import ctypes
import dataclasses
import enum
import os
import struct
import threading
import typing


class RustBuffer(ctypes.Structure):
    _fields_ = [
        ("capacity", ctypes.c_int32),
        ("len", ctypes.c_int32),
        ("data", ctypes.POINTER(ctypes.c_uint8)),
    ]

    def _bytes(self) -> bytes:
        if self.len == 0:
            return b""
        return ctypes.string_at(self.data, self.len)


class RustError(ctypes.Structure):
    _fields_ = [
        ("code", ctypes.c_int32),
        ("message", ctypes.c_void_p),
    ]

    def _consume_message(self) -> str:
        if not self.message:
            return ""
        msg = ctypes.string_at(self.message).decode("utf-8")
        _lib.{{.Component}}_string_free(self.message)
        self.message = None
        return msg


class {{pascal .Component}}Error(Exception):
    """Raised by functions declared as throwing."""

    def __init__(self, code: int, message: str) -> None:
        super().__init__(message)
        self.code = code


class InternalError(Exception):
    """A broken contract between the bindings and the library."""


def _load_library() -> ctypes.CDLL:
    name = os.environ.get("{{screaming .Component}}_LIBRARY", "{{.Option "library" (printf "lib%s.so" .Component)}}")
    return ctypes.CDLL(name)


_lib = _load_library()
_lib.{{.Component}}_buffer_alloc.argtypes = [ctypes.c_int32, ctypes.POINTER(RustError)]
_lib.{{.Component}}_buffer_alloc.restype = RustBuffer
_lib.{{.Component}}_buffer_free.argtypes = [RustBuffer, ctypes.POINTER(RustError)]
_lib.{{.Component}}_buffer_free.restype = None
_lib.{{.Component}}_string_free.argtypes = [ctypes.c_void_p]
_lib.{{.Component}}_string_free.restype = None


def _rust_call_checked(fn, *args):
    err = RustError()
    ret = fn(*args, ctypes.byref(err))
    if err.code != 0:
        code = err.code
        raise {{pascal .Component}}Error(code, err._consume_message())
    return ret


def _rust_call(fn, *args):
    err = RustError()
    ret = fn(*args, ctypes.byref(err))
    if err.code != 0:
        raise InternalError("unexpected native error: " + err._consume_message())
    return ret


def _check_u32(value: int) -> int:
    if not 0 <= value <= 0xFFFFFFFF:
        raise ValueError(f"{value} does not fit in u32")
    return value


def _check_u64(value: int) -> int:
    if not 0 <= value <= 0xFFFFFFFFFFFFFFFF:
        raise ValueError(f"{value} does not fit in u64")
    return value


class _Reader:
    def __init__(self, data: bytes) -> None:
        self._data = data
        self._offset = 0

    def _take(self, n: int) -> bytes:
        if self._offset + n > len(self._data):
            raise InternalError(f"buffer truncated at offset {self._offset}")
        chunk = self._data[self._offset:self._offset + n]
        self._offset += n
        return chunk

    def read_i8(self) -> int:
        return struct.unpack(">b", self._take(1))[0]

    def read_u32(self) -> int:
        return struct.unpack(">I", self._take(4))[0]

    def read_u64(self) -> int:
        return struct.unpack(">Q", self._take(8))[0]

    def read_count(self) -> int:
        n = struct.unpack(">i", self._take(4))[0]
        if n < 0:
            raise InternalError(f"negative length {n}")
        return n

    def read_tag(self) -> bool:
        tag = self.read_i8()
        if tag not in (0, 1):
            raise InternalError(f"invalid optional tag {tag}")
        return tag == 1

    def read_string(self) -> str:
        return self._take(self.read_count()).decode("utf-8")

    def remaining(self) -> int:
        return len(self._data) - self._offset


class _Writer:
    def __init__(self) -> None:
        self._parts: typing.List[bytes] = []

    def write_i8(self, value: int) -> None:
        self._parts.append(struct.pack(">b", value))

    def write_u32(self, value: int) -> None:
        self._parts.append(struct.pack(">I", _check_u32(value)))

    def write_u64(self, value: int) -> None:
        self._parts.append(struct.pack(">Q", _check_u64(value)))

    def write_count(self, n: int) -> None:
        self._parts.append(struct.pack(">i", n))

    def write_string(self, value: str) -> None:
        data = value.encode("utf-8")
        self.write_count(len(data))
        self._parts.append(data)

    def write_optional(self, value, write) -> None:
        if value is None:
            self.write_i8(0)
        else:
            self.write_i8(1)
            write(value)

    def write_sequence(self, items, write) -> None:
        self.write_count(len(items))
        for item in items:
            write(item)

    def write_map(self, items, write_key, write_value) -> None:
        self.write_count(len(items))
        for key, value in items.items():
            write_key(key)
            write_value(value)

    def getvalue(self) -> bytes:
        return b"".join(self._parts)


def _lift_from_buffer(rbuf: RustBuffer, read):
    try:
        buf = _Reader(rbuf._bytes())
        value = read(buf)
        if buf.remaining():
            raise InternalError(f"{buf.remaining()} trailing bytes after lifting")
        return value
    finally:
        _rust_call(_lib.{{.Component}}_buffer_free, rbuf)


def _lower_into_buffer(write) -> RustBuffer:
    buf = _Writer()
    write(buf)
    data = buf.getvalue()
    rbuf = _rust_call(_lib.{{.Component}}_buffer_alloc, len(data))
    if data:
        ctypes.memmove(rbuf.data, data, len(data))
    return rbuf


# Top-level string buffers carry raw UTF-8 without a length prefix.
def _lift_string(rbuf: RustBuffer) -> str:
    try:
        return rbuf._bytes().decode("utf-8")
    finally:
        _rust_call(_lib.{{.Component}}_buffer_free, rbuf)


def _lower_string(value: str) -> RustBuffer:
    data = value.encode("utf-8")
    rbuf = _rust_call(_lib.{{.Component}}_buffer_alloc, len(data))
    if data:
        ctypes.memmove(rbuf.data, data, len(data))
    return rbuf

{{range .Declarations}}
{{.}}{{end}}
{{- range .Definitions}}

{{.}}{{end}}
{{- end -}}
`
