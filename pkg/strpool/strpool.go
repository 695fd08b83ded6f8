// Package strpool provides pooled, low-allocation string building used by
// the error and dump paths of the column engine.
package strpool

import (
	"fmt"
	"sync"
	"unsafe"
)

// BytesToString converts a byte slice to a string without allocation.
// WARNING: the returned string shares memory with the slice; do not modify
// the slice afterwards.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// StringToBytes converts a string to a byte slice without allocation.
// WARNING: the returned slice shares memory with the string; do not modify it.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Clone copies a string into freshly owned memory. Use it before retaining a
// string built on a pooled buffer.
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, StringToBytes(s))
	return BytesToString(b)
}

// Builder accumulates bytes and hands them back as a zero-copy string.
type Builder struct {
	buf []byte
}

// NewBuilder creates a builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string using zero-copy conversion. The result is
// only valid until the next write or reset; Clone it to retain.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Len returns the number of bytes written.
func (b *Builder) Len() int { return len(b.buf) }

// Reset empties the builder for reuse.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

var builderPool = &sync.Pool{
	New: func() interface{} {
		return NewBuilder(256)
	},
}

// GetBuilder retrieves a pooled builder, reset and ready for use.
func GetBuilder() *Builder {
	b := builderPool.Get().(*Builder)
	b.Reset()
	return b
}

// PutBuilder returns a builder to the pool.
func PutBuilder(b *Builder) {
	if b == nil {
		return
	}
	b.Reset()
	builderPool.Put(b)
}

// Sprintf is a pooled alternative to fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	b := GetBuilder()
	defer PutBuilder(b)
	fmt.Fprintf(b, format, args...)
	return Clone(b.String())
}

// Concat joins strings through a pooled builder.
func Concat(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	b := GetBuilder()
	defer PutBuilder(b)
	for _, s := range parts {
		b.WriteString(s)
	}
	return Clone(b.String())
}
