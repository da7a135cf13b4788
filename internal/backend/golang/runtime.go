package golang

// runtimeTemplate is the support code shared by every generated file:
// error handling around native calls, the big-endian buffer codec and the
// generic composite helpers.
const runtimeTemplate = `
{{- define "runtime"}}
// Error is returned by functions declared as throwing.
type Error struct {
	Code    int32
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("{{.Component}}: error %d: %s", e.Code, e.Message)
}

// InternalError reports a broken contract between the bindings and the
// native library.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "{{.Component}}: internal error: " + e.Message
}

// callPanic carries conversion failures out of lift and lower helpers.
type callPanic struct {
	err error
}

func throw(err error) {
	panic(callPanic{err: err})
}

func catchPanic(err *error) {
	if r := recover(); r != nil {
		cp, ok := r.(callPanic)
		if !ok {
			panic(r)
		}
		*err = cp.err
	}
}

func consumeError(cerr *C.RustError) string {
	if cerr.message == nil {
		return ""
	}
	msg := C.GoString(cerr.message)
	C.{{.Component}}_string_free(cerr.message)
	cerr.message = nil
	return msg
}

func rustCallChecked[T any](call func(*C.RustError) T) (T, error) {
	var cerr C.RustError
	ret := call(&cerr)
	if cerr.code != 0 {
		code := int32(cerr.code)
		return ret, &Error{Code: code, Message: consumeError(&cerr)}
	}
	return ret, nil
}

func rustCall[T any](call func(*C.RustError) T) (T, error) {
	var cerr C.RustError
	ret := call(&cerr)
	if cerr.code != 0 {
		return ret, &InternalError{Message: "unexpected native error: " + consumeError(&cerr)}
	}
	return ret, nil
}

// nativeHandle is the handle owned by a generated object; zero once freed.
type nativeHandle struct {
	v atomic.Uint64
}

func track[T any](obj *T, free func(*T)) {
	runtime.SetFinalizer(obj, free)
}

func untrack[T any](obj *T) {
	runtime.SetFinalizer(obj, nil)
}

func boolToC(v bool) C.int8_t {
	if v {
		return 1
	}
	return 0
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) take(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		throw(&InternalError{Message: fmt.Sprintf("buffer truncated at offset %d", r.off)})
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readI8() int8 {
	return int8(r.take(1)[0])
}

func (r *reader) readU32() uint32 {
	return binary.BigEndian.Uint32(r.take(4))
}

func (r *reader) readU64() uint64 {
	return binary.BigEndian.Uint64(r.take(8))
}

func (r *reader) readCount() int {
	n := int32(r.readU32())
	if n < 0 {
		throw(&InternalError{Message: fmt.Sprintf("negative length %d", n)})
	}
	return int(n)
}

func (r *reader) readTag() bool {
	switch tag := r.readI8(); tag {
	case 0:
		return false
	case 1:
		return true
	default:
		throw(&InternalError{Message: fmt.Sprintf("invalid optional tag %d", tag)})
		return false
	}
}

func (r *reader) readString() string {
	b := r.take(r.readCount())
	if !utf8.Valid(b) {
		throw(&InternalError{Message: "string is not valid UTF-8"})
	}
	return string(b)
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) writeI8(v int8) {
	w.buf.WriteByte(byte(v))
}

func (w *writer) writeBool(v bool) {
	if v {
		w.writeI8(1)
	} else {
		w.writeI8(0)
	}
}

func (w *writer) writeU32(v uint32) {
	w.buf.Write(binary.BigEndian.AppendUint32(nil, v))
}

func (w *writer) writeU64(v uint64) {
	w.buf.Write(binary.BigEndian.AppendUint64(nil, v))
}

func (w *writer) writeCount(n int) {
	w.writeU32(uint32(int32(n)))
}

func (w *writer) writeString(v string) {
	w.writeCount(len(v))
	w.buf.WriteString(v)
}

func decodeOptional[T any](r *reader, read func(*reader) T) *T {
	if !r.readTag() {
		return nil
	}
	v := read(r)
	return &v
}

// decodeNullable reads an optional object, which is already a pointer.
func decodeNullable[T any](r *reader, read func(*reader) *T) *T {
	if !r.readTag() {
		return nil
	}
	return read(r)
}

func decodeSequence[T any](r *reader, read func(*reader) T) []T {
	n := r.readCount()
	out := make([]T, 0, min(n, len(r.data)-r.off))
	for i := 0; i < n; i++ {
		out = append(out, read(r))
	}
	return out
}

func decodeMap[K comparable, V any](r *reader, readKey func(*reader) K, readValue func(*reader) V) map[K]V {
	n := r.readCount()
	out := make(map[K]V)
	for i := 0; i < n; i++ {
		k := readKey(r)
		out[k] = readValue(r)
	}
	return out
}

func encodeOptional[T any](w *writer, v *T, write func(*writer, T)) {
	if v == nil {
		w.writeI8(0)
		return
	}
	w.writeI8(1)
	write(w, *v)
}

func encodeNullable[T any](w *writer, v *T, write func(*writer, *T)) {
	if v == nil {
		w.writeI8(0)
		return
	}
	w.writeI8(1)
	write(w, v)
}

func encodeSequence[T any](w *writer, items []T, write func(*writer, T)) {
	w.writeCount(len(items))
	for _, item := range items {
		write(w, item)
	}
}

func encodeMap[K comparable, V any](w *writer, items map[K]V, writeKey func(*writer, K), writeValue func(*writer, V)) {
	w.writeCount(len(items))
	for k, v := range items {
		writeKey(w, k)
		writeValue(w, v)
	}
}

func freeBuffer(rbuf C.RustBuffer) {
	var cerr C.RustError
	C.{{.Component}}_buffer_free(rbuf, &cerr)
	if cerr.code != 0 {
		consumeError(&cerr)
	}
}

func allocBuffer(data []byte) C.RustBuffer {
	var cerr C.RustError
	rbuf := C.{{.Component}}_buffer_alloc(C.int32_t(len(data)), &cerr)
	if cerr.code != 0 {
		throw(&InternalError{Message: "buffer allocation failed: " + consumeError(&cerr)})
	}
	if len(data) > 0 {
		C.memcpy(unsafe.Pointer(rbuf.data), unsafe.Pointer(&data[0]), C.size_t(len(data)))
	}
	rbuf.len = C.int32_t(len(data))
	return rbuf
}

func bufferBytes(rbuf C.RustBuffer) []byte {
	if rbuf.len == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(rbuf.data), C.int(rbuf.len))
}

// valueFromBuffer decodes one value and frees rbuf. The value must use
// the whole buffer.
func valueFromBuffer[T any](rbuf C.RustBuffer, read func(*reader) T) T {
	defer freeBuffer(rbuf)
	r := &reader{data: bufferBytes(rbuf)}
	value := read(r)
	if rest := len(r.data) - r.off; rest != 0 {
		throw(&InternalError{Message: fmt.Sprintf("%d trailing bytes after value", rest)})
	}
	return value
}

func valueToBuffer(write func(*writer)) C.RustBuffer {
	w := &writer{}
	write(w)
	return allocBuffer(w.buf.Bytes())
}

// stringFromBuffer lifts a top-level string: raw UTF-8, no length prefix.
func stringFromBuffer(rbuf C.RustBuffer) string {
	defer freeBuffer(rbuf)
	b := bufferBytes(rbuf)
	if !utf8.Valid(b) {
		throw(&InternalError{Message: "string is not valid UTF-8"})
	}
	return string(b)
}

func stringToBuffer(s string) C.RustBuffer {
	return allocBuffer([]byte(s))
}
{{end -}}
`
