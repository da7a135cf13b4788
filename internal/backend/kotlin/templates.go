package kotlin

import (
	"text/template"

	"github.com/rpl/application-services/internal/backend/gen"
	"github.com/rpl/application-services/internal/naming"
)

func parseTemplates() *template.Template {
	return gen.Parse("KotlinTemplates", template.FuncMap{
		"lib":    libName,
		"pascal": naming.ToPascalCase,
	}, callTemplate, objectTemplate, namespaceTemplate, recordTemplate, enumTemplate, fileTemplate)
}

// callTemplate renders the call of one FFI symbol inside a wrapper.
// Throwing symbols go through rustCallChecked, which surfaces the callee's
// error as a component exception; the rest treat any error as a panic.
const callTemplate = `
{{- define "doc" -}}
{{- if .}}/**
{{range lines .}} *{{if .}} {{.}}{{end}}
{{end}} */
{{end -}}
{{- end -}}

{{- define "params" -}}
{{range $i, $p := .}}{{if $i}}, {{end}}{{$p.Name}}: {{$p.Native}}{{end}}
{{- end -}}

{{- define "ffiParams" -}}
{{range .}}{{.Name}}: {{.Declared}}, {{end}}
{{- end -}}

{{- define "call" -}}
{{if .Throws}}rustCallChecked{{else}}rustCall{{end}} { err -> {{lib .Component}}.INSTANCE.{{.Symbol}}({{if .HandleDeclared}}lower(), {{end}}{{range .Params}}{{.Lowered}}, {{end}}err) }
{{- end -}}
`

const objectTemplate = `
{{- define "object_declarations" -}}
    fun {{.FreeSymbol}}(handle: {{.HandleDeclared}}, err: RustError.ByReference)
{{range .Constructors}}    fun {{.Symbol}}({{template "ffiParams" .Params}}err: RustError.ByReference): {{.ReturnDeclared}}
{{end}}{{range .Methods}}    fun {{.Symbol}}(handle: {{.HandleDeclared}}, {{template "ffiParams" .Params}}err: RustError.ByReference){{if .HasReturn}}: {{.ReturnDeclared}}{{end}}
{{end}}
{{- end -}}

{{- define "object_definitions" -}}
{{- $obj := . -}}
{{template "doc" .Doc -}}
// {{.Name}} owns one native handle.
//
// Constructors return a new handle that this object owns. Methods borrow
// the handle for the duration of the call. close() frees it exactly once;
// calling a method after close() throws IllegalStateException.
class {{.Name}} internal constructor(handle: Handle) : AutoCloseable {
    private val handle = AtomicLong(handle)
    private val freed = AtomicBoolean(false)
{{with .PrimaryConstructor}}
{{template "doc" .Doc}}    constructor({{template "params" .Params}}) :
        this({{template "call" .}})
{{end}}
    internal fun lower(): Handle {
        check(!freed.get()) { "{{.Name}} has already been closed" }
        return handle.get()
    }

    override fun close() {
        if (freed.compareAndSet(false, true)) {
            val h = handle.getAndSet(0L)
            rustCall { err -> {{lib .Component}}.INSTANCE.{{.FreeSymbol}}(h, err) }
        }
    }
{{range .Methods}}
{{template "doc" .Doc}}    fun {{.Name}}({{template "params" .Params}}){{if .HasReturn}}: {{.ReturnNative}}{{end}} {
{{- if .HasReturn}}
        val ret = {{template "call" .}}
        return {{.ReturnLifted}}
{{- else}}
        {{template "call" .}}
{{- end}}
    }
{{end}}
    companion object {
{{- range .Constructors}}{{if not .IsPrimary}}
{{template "doc" .Doc}}        fun {{.Name}}({{template "params" .Params}}): {{$obj.Name}} =
            {{$obj.Name}}({{template "call" .}})
{{end}}{{end}}
        internal fun read(buf: ByteBuffer): {{.Name}} = {{.Name}}(buf.getLong())
    }
}
{{end -}}
`

const namespaceTemplate = `
{{- define "namespace_declarations" -}}
{{range .Functions}}    fun {{.Symbol}}({{template "ffiParams" .Params}}err: RustError.ByReference){{if .HasReturn}}: {{.ReturnDeclared}}{{end}}
{{end}}
{{- end -}}

{{- define "namespace_definitions" -}}
{{template "doc" .Doc -}}
object {{.Name}} {
{{- range .Functions}}
{{template "doc" .Doc}}    fun {{.Name}}({{template "params" .Params}}){{if .HasReturn}}: {{.ReturnNative}}{{end}} {
{{- if .HasReturn}}
        val ret = {{template "call" .}}
        return {{.ReturnLifted}}
{{- else}}
        {{template "call" .}}
{{- end}}
    }
{{end -}}
}
{{end -}}
`

const recordTemplate = `
{{- define "record_definitions" -}}
{{template "doc" .Doc -}}
{{if .Fields}}data {{end}}class {{.Name}}(
{{- range .Fields}}
    val {{.Name}}: {{.Native}},
{{- end}}
) {
    internal fun lower(): RustBuffer.ByValue = lowerIntoRustBuffer { buf -> write(buf) }

    internal fun write(buf: ByteBuffer) {
{{- if .Fields}}
        val value = this
{{- end}}
{{- range .Fields}}
        {{.Write}}
{{- end}}
    }

    companion object {
        internal fun lift(rbuf: RustBuffer.ByValue): {{.Name}} = liftFromRustBuffer(rbuf) { buf -> read(buf) }

        internal fun read(buf: ByteBuffer): {{.Name}} = {{.Name}}(
{{- range .Fields}}
            {{.Read}},
{{- end}}
        )
    }
}
{{end -}}
`

const enumTemplate = `
{{- define "enum_definitions" -}}
{{template "doc" .Doc -}}
enum class {{.Name}}(val value: UInt) {
{{- range .Variants}}
    {{.Name}}({{.Discriminant}}u),
{{- end}}
    ;

    internal fun lower(): Int = value.toInt()

    internal fun write(buf: ByteBuffer) {
        buf.putInt(value.toInt())
    }

    companion object {
        internal fun lift(value: Int): {{.Name}} =
            values().firstOrNull { it.value == value.toUInt() }
                ?: throw InternalException("invalid {{.Name}} discriminant ${value.toUInt()}")

        internal fun read(buf: ByteBuffer): {{.Name}} = lift(buf.getInt())
    }
}
{{end -}}
`

const fileTemplate = `
{{- define "file" -}}
{{- $lib := lib .Component -}}
// Generated by ffigen {{.GeneratorVersion}} from component "{{.Component}}".
// Model fingerprint: {{.Fingerprint}}
// Do not edit.

@file:Suppress("NAME_SHADOWING", "unused", "RemoveRedundantBackticks")

package {{.Option "package" (printf "ffigen.%s" .Component)}}

import java.nio.ByteBuffer
import java.nio.ByteOrder
import java.util.concurrent.atomic.AtomicBoolean
import java.util.concurrent.atomic.AtomicLong

internal typealias Handle = Long

@com.sun.jna.Structure.FieldOrder("capacity", "len", "data")
open class RustBuffer : com.sun.jna.Structure() {
    @JvmField var capacity: Int = 0
    @JvmField var len: Int = 0
    @JvmField var data: com.sun.jna.Pointer? = null

    class ByValue : RustBuffer(), com.sun.jna.Structure.ByValue

    internal fun asByteBuffer(): ByteBuffer =
        data?.getByteBuffer(0, len.toLong())?.order(ByteOrder.BIG_ENDIAN)
            ?: ByteBuffer.allocate(0)
}

@com.sun.jna.Structure.FieldOrder("code", "message")
open class RustError : com.sun.jna.Structure() {
    @JvmField var code: Int = 0
    @JvmField var message: com.sun.jna.Pointer? = null

    class ByReference : RustError(), com.sun.jna.Structure.ByReference

    internal fun isFailure(): Boolean = code != 0

    internal fun consumeMessage(): String {
        val msg = message?.getString(0, "utf8") ?: ""
        message?.let { {{$lib}}.INSTANCE.{{.Component}}_string_free(it) }
        message = null
        return msg
    }
}

// {{pascal .Component}}Exception is thrown by functions declared as throwing.
class {{pascal .Component}}Exception(val code: Int, message: String) : Exception(message)

// InternalException reports a broken contract between bindings and library.
class InternalException(message: String) : Exception(message)

internal inline fun <T> rustCallChecked(callback: (RustError.ByReference) -> T): T {
    val err = RustError.ByReference()
    val ret = callback(err)
    if (err.isFailure()) {
        val code = err.code
        throw {{pascal .Component}}Exception(code, err.consumeMessage())
    }
    return ret
}

internal inline fun <T> rustCall(callback: (RustError.ByReference) -> T): T {
    val err = RustError.ByReference()
    val ret = callback(err)
    if (err.isFailure()) {
        throw InternalException("unexpected native error: " + err.consumeMessage())
    }
    return ret
}

internal fun <T> liftFromRustBuffer(rbuf: RustBuffer.ByValue, read: (ByteBuffer) -> T): T {
    try {
        val buf = rbuf.asByteBuffer()
        val value = try {
            read(buf)
        } catch (e: java.nio.BufferUnderflowException) {
            throw InternalException("buffer truncated at offset ${buf.position()}")
        }
        if (buf.hasRemaining()) {
            throw InternalException("${buf.remaining()} trailing bytes after lifting")
        }
        return value
    } finally {
        rustCall { err -> {{$lib}}.INSTANCE.{{.Component}}_buffer_free(rbuf, err) }
    }
}

internal fun lowerIntoRustBuffer(write: (ByteBuffer) -> Unit): RustBuffer.ByValue {
    var capacity = 64
    while (true) {
        val buf = ByteBuffer.allocate(capacity).order(ByteOrder.BIG_ENDIAN)
        try {
            write(buf)
        } catch (e: java.nio.BufferOverflowException) {
            capacity *= 2
            continue
        }
        val rbuf = rustCall { err -> {{$lib}}.INSTANCE.{{.Component}}_buffer_alloc(buf.position(), err) }
        rbuf.asByteBuffer().put(buf.array(), 0, buf.position())
        return rbuf
    }
}

// Top-level string buffers carry raw UTF-8 without a length prefix.
internal fun liftString(rbuf: RustBuffer.ByValue): String =
    liftFromRustBuffer(rbuf) { buf ->
        val bytes = ByteArray(buf.remaining())
        buf.get(bytes)
        bytes.toString(Charsets.UTF_8)
    }

internal fun lowerString(value: String): RustBuffer.ByValue =
    lowerIntoRustBuffer { buf -> buf.put(value.toByteArray(Charsets.UTF_8)) }

internal fun readString(buf: ByteBuffer): String {
    val len = buf.getInt()
    if (len < 0) {
        throw InternalException("negative string length $len")
    }
    if (len > buf.remaining()) {
        throw InternalException("buffer truncated at offset ${buf.position()}")
    }
    val bytes = ByteArray(len)
    buf.get(bytes)
    return bytes.toString(Charsets.UTF_8)
}

internal fun writeString(value: String, buf: ByteBuffer) {
    val bytes = value.toByteArray(Charsets.UTF_8)
    buf.putInt(bytes.size)
    buf.put(bytes)
}

@Suppress("FunctionNaming", "FunctionParameterNaming", "LongParameterList")
internal interface {{$lib}} : com.sun.jna.Library {
    companion object {
        internal val INSTANCE: {{$lib}} =
            com.sun.jna.Native.load("{{.Option "library" .Component}}", {{$lib}}::class.java)
    }

    fun {{.Component}}_buffer_alloc(size: Int, err: RustError.ByReference): RustBuffer.ByValue
    fun {{.Component}}_buffer_free(buf: RustBuffer.ByValue, err: RustError.ByReference)
    fun {{.Component}}_string_free(message: com.sun.jna.Pointer)
{{range .Declarations}}
{{.}}{{end}}}
{{range .Definitions}}
{{.}}{{end}}
{{- end -}}
`
