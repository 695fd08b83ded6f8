package column

import (
	"github.com/astropipe/colcore/pkg/coltype"
)

// buffer is the storage behind a column: a resizable, spliceable sequence of
// elements of one kind. Numeric kinds share a single generic implementation;
// strings and sub-columns have their own because their elements carry owned
// contents that must be released when spliced out.
type buffer interface {
	length() int
	// resize grows with zero-valued elements or truncates, releasing any
	// owned contents of truncated elements.
	resize(n int)
	// insert opens a gap of count zero-valued elements at position at.
	insert(at, count int)
	// erase removes count elements at position at, releasing owned contents.
	erase(at, count int)
	// compact removes every element whose drop flag is true.
	compact(drop []bool)
	clone() buffer
	extract(start, count int) buffer
	// copyFrom copies count elements from src (same concrete kind) starting
	// at srcStart into this buffer at dstStart.
	copyFrom(src buffer, srcStart, dstStart, count int)
	// raw returns the underlying typed slice.
	raw() interface{}
}

// numeric is the elementwise access surface of numeric buffers. Each method
// converts between the storage kind and one of the three evaluation domains
// (int64, float64, complex128). Narrowing stores truncate toward zero.
type numeric interface {
	intAt(i int) int64
	setIntAt(i int, v int64)
	floatAt(i int) float64
	setFloatAt(i int, v float64)
	complexAt(i int) complex128
	setComplexAt(i int, v complex128)
	// zero clears a range back to the zero value.
	zero(start, count int)
}

// elemConv is the element trait of one numeric kind: conversions to and from
// the three evaluation domains.
type elemConv[T any] struct {
	fromInt   func(int64) T
	toInt     func(T) int64
	fromFloat func(float64) T
	toFloat   func(T) float64
	fromCplx  func(complex128) T
	toCplx    func(T) complex128
}

// numbuf is the generic numeric buffer, parameterized by element type and
// its conversion trait.
type numbuf[T any] struct {
	vals []T
	conv elemConv[T]
}

func (b *numbuf[T]) length() int { return len(b.vals) }

func (b *numbuf[T]) resize(n int) {
	if n <= len(b.vals) {
		b.vals = b.vals[:n]
		return
	}
	if n <= cap(b.vals) {
		tail := b.vals[len(b.vals):n]
		var zero T
		for i := range tail {
			tail[i] = zero
		}
		b.vals = b.vals[:n]
		return
	}
	grown := make([]T, n)
	copy(grown, b.vals)
	b.vals = grown
}

func (b *numbuf[T]) insert(at, count int) {
	grown := make([]T, len(b.vals)+count)
	copy(grown, b.vals[:at])
	copy(grown[at+count:], b.vals[at:])
	b.vals = grown
}

func (b *numbuf[T]) erase(at, count int) {
	b.vals = append(b.vals[:at], b.vals[at+count:]...)
}

func (b *numbuf[T]) compact(drop []bool) {
	kept := b.vals[:0]
	for i, v := range b.vals {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	b.vals = kept
}

func (b *numbuf[T]) clone() buffer {
	out := make([]T, len(b.vals))
	copy(out, b.vals)
	return &numbuf[T]{vals: out, conv: b.conv}
}

func (b *numbuf[T]) extract(start, count int) buffer {
	out := make([]T, count)
	copy(out, b.vals[start:start+count])
	return &numbuf[T]{vals: out, conv: b.conv}
}

func (b *numbuf[T]) copyFrom(src buffer, srcStart, dstStart, count int) {
	s := src.(*numbuf[T])
	copy(b.vals[dstStart:dstStart+count], s.vals[srcStart:srcStart+count])
}

func (b *numbuf[T]) raw() interface{} { return b.vals }

func (b *numbuf[T]) intAt(i int) int64       { return b.conv.toInt(b.vals[i]) }
func (b *numbuf[T]) setIntAt(i int, v int64) { b.vals[i] = b.conv.fromInt(v) }
func (b *numbuf[T]) floatAt(i int) float64   { return b.conv.toFloat(b.vals[i]) }

func (b *numbuf[T]) setFloatAt(i int, v float64) {
	b.vals[i] = b.conv.fromFloat(v)
}

func (b *numbuf[T]) complexAt(i int) complex128 { return b.conv.toCplx(b.vals[i]) }

func (b *numbuf[T]) setComplexAt(i int, v complex128) {
	b.vals[i] = b.conv.fromCplx(v)
}

func (b *numbuf[T]) zero(start, count int) {
	var zero T
	for i := start; i < start+count; i++ {
		b.vals[i] = zero
	}
}

// Conversion traits per kind. Narrowing float-to-integer conversions use Go
// conversion semantics: truncation toward zero.
var (
	int32Conv = elemConv[int32]{
		fromInt:   func(v int64) int32 { return int32(v) },
		toInt:     func(v int32) int64 { return int64(v) },
		fromFloat: func(v float64) int32 { return int32(v) },
		toFloat:   func(v int32) float64 { return float64(v) },
		fromCplx:  func(v complex128) int32 { return int32(real(v)) },
		toCplx:    func(v int32) complex128 { return complex(float64(v), 0) },
	}
	int64Conv = elemConv[int64]{
		fromInt:   func(v int64) int64 { return v },
		toInt:     func(v int64) int64 { return v },
		fromFloat: func(v float64) int64 { return int64(v) },
		toFloat:   func(v int64) float64 { return float64(v) },
		fromCplx:  func(v complex128) int64 { return int64(real(v)) },
		toCplx:    func(v int64) complex128 { return complex(float64(v), 0) },
	}
	sizeConv = elemConv[int]{
		fromInt:   func(v int64) int { return int(v) },
		toInt:     func(v int) int64 { return int64(v) },
		fromFloat: func(v float64) int { return int(v) },
		toFloat:   func(v int) float64 { return float64(v) },
		fromCplx:  func(v complex128) int { return int(real(v)) },
		toCplx:    func(v int) complex128 { return complex(float64(v), 0) },
	}
	float32Conv = elemConv[float32]{
		fromInt:   func(v int64) float32 { return float32(v) },
		toInt:     func(v float32) int64 { return int64(v) },
		fromFloat: func(v float64) float32 { return float32(v) },
		toFloat:   func(v float32) float64 { return float64(v) },
		fromCplx:  func(v complex128) float32 { return float32(real(v)) },
		toCplx:    func(v float32) complex128 { return complex(float64(v), 0) },
	}
	float64Conv = elemConv[float64]{
		fromInt:   func(v int64) float64 { return float64(v) },
		toInt:     func(v float64) int64 { return int64(v) },
		fromFloat: func(v float64) float64 { return v },
		toFloat:   func(v float64) float64 { return v },
		fromCplx:  func(v complex128) float64 { return real(v) },
		toCplx:    func(v float64) complex128 { return complex(v, 0) },
	}
	complex64Conv = elemConv[complex64]{
		fromInt:   func(v int64) complex64 { return complex(float32(v), 0) },
		toInt:     func(v complex64) int64 { return int64(real(v)) },
		fromFloat: func(v float64) complex64 { return complex(float32(v), 0) },
		toFloat:   func(v complex64) float64 { return float64(real(v)) },
		fromCplx:  func(v complex128) complex64 { return complex64(v) },
		toCplx:    func(v complex64) complex128 { return complex128(v) },
	}
	complex128Conv = elemConv[complex128]{
		fromInt:   func(v int64) complex128 { return complex(float64(v), 0) },
		toInt:     func(v complex128) int64 { return int64(real(v)) },
		fromFloat: func(v float64) complex128 { return complex(v, 0) },
		toFloat:   func(v complex128) float64 { return real(v) },
		fromCplx:  func(v complex128) complex128 { return v },
		toCplx:    func(v complex128) complex128 { return v },
	}
)

// newBuffer is the kind dispatch table for storage allocation.
func newBuffer(kind coltype.Kind, n int) buffer {
	switch kind.Base() {
	case coltype.Int32:
		return &numbuf[int32]{vals: make([]int32, n), conv: int32Conv}
	case coltype.Int64:
		return &numbuf[int64]{vals: make([]int64, n), conv: int64Conv}
	case coltype.Size:
		return &numbuf[int]{vals: make([]int, n), conv: sizeConv}
	case coltype.Float32:
		return &numbuf[float32]{vals: make([]float32, n), conv: float32Conv}
	case coltype.Float64:
		return &numbuf[float64]{vals: make([]float64, n), conv: float64Conv}
	case coltype.Complex64:
		return &numbuf[complex64]{vals: make([]complex64, n), conv: complex64Conv}
	case coltype.Complex128:
		return &numbuf[complex128]{vals: make([]complex128, n), conv: complex128Conv}
	case coltype.String:
		return &strbuf{vals: make([]*string, n)}
	default:
		return nil
	}
}

// wrapBuffer adopts a caller-owned slice without copying. The returned
// buffer aliases data; the column layer tags the result as borrowed.
func wrapBuffer(data interface{}) buffer {
	switch d := data.(type) {
	case []int32:
		return &numbuf[int32]{vals: d, conv: int32Conv}
	case []int64:
		return &numbuf[int64]{vals: d, conv: int64Conv}
	case []int:
		return &numbuf[int]{vals: d, conv: sizeConv}
	case []float32:
		return &numbuf[float32]{vals: d, conv: float32Conv}
	case []float64:
		return &numbuf[float64]{vals: d, conv: float64Conv}
	case []complex64:
		return &numbuf[complex64]{vals: d, conv: complex64Conv}
	case []complex128:
		return &numbuf[complex128]{vals: d, conv: complex128Conv}
	case []*string:
		return &strbuf{vals: d}
	default:
		return nil
	}
}

// strbuf stores string elements as pointers; a nil pointer marks an invalid
// element. Strings are immutable, so clones share the pointed-to values.
type strbuf struct {
	vals []*string
}

func (b *strbuf) length() int { return len(b.vals) }

func (b *strbuf) resize(n int) {
	if n <= len(b.vals) {
		b.vals = b.vals[:n]
		return
	}
	grown := make([]*string, n)
	copy(grown, b.vals)
	b.vals = grown
}

func (b *strbuf) insert(at, count int) {
	grown := make([]*string, len(b.vals)+count)
	copy(grown, b.vals[:at])
	copy(grown[at+count:], b.vals[at:])
	b.vals = grown
}

func (b *strbuf) erase(at, count int) {
	for i := at; i < at+count; i++ {
		b.vals[i] = nil
	}
	b.vals = append(b.vals[:at], b.vals[at+count:]...)
}

func (b *strbuf) compact(drop []bool) {
	kept := b.vals[:0]
	for i, v := range b.vals {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(b.vals); i++ {
		b.vals[i] = nil
	}
	b.vals = kept
}

func (b *strbuf) clone() buffer {
	out := make([]*string, len(b.vals))
	copy(out, b.vals)
	return &strbuf{vals: out}
}

func (b *strbuf) extract(start, count int) buffer {
	out := make([]*string, count)
	copy(out, b.vals[start:start+count])
	return &strbuf{vals: out}
}

func (b *strbuf) copyFrom(src buffer, srcStart, dstStart, count int) {
	s := src.(*strbuf)
	copy(b.vals[dstStart:dstStart+count], s.vals[srcStart:srcStart+count])
}

func (b *strbuf) raw() interface{} { return b.vals }

// arrbuf stores sub-column elements; a nil pointer marks an invalid element.
// Every non-nil sub-column is exclusively owned by its slot.
type arrbuf struct {
	vals  []*Column
	base  coltype.Kind
	depth int
}

func (b *arrbuf) length() int { return len(b.vals) }

func (b *arrbuf) resize(n int) {
	if n <= len(b.vals) {
		for i := n; i < len(b.vals); i++ {
			b.vals[i] = nil
		}
		b.vals = b.vals[:n]
		return
	}
	grown := make([]*Column, n)
	copy(grown, b.vals)
	b.vals = grown
}

func (b *arrbuf) insert(at, count int) {
	grown := make([]*Column, len(b.vals)+count)
	copy(grown, b.vals[:at])
	copy(grown[at+count:], b.vals[at:])
	b.vals = grown
}

func (b *arrbuf) erase(at, count int) {
	for i := at; i < at+count; i++ {
		b.vals[i] = nil
	}
	b.vals = append(b.vals[:at], b.vals[at+count:]...)
}

func (b *arrbuf) compact(drop []bool) {
	kept := b.vals[:0]
	for i, v := range b.vals {
		if !drop[i] {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(b.vals); i++ {
		b.vals[i] = nil
	}
	b.vals = kept
}

func (b *arrbuf) clone() buffer {
	out := make([]*Column, len(b.vals))
	for i, sub := range b.vals {
		if sub != nil {
			out[i] = sub.Duplicate()
		}
	}
	return &arrbuf{vals: out, base: b.base, depth: b.depth}
}

func (b *arrbuf) extract(start, count int) buffer {
	out := make([]*Column, count)
	for i := 0; i < count; i++ {
		if sub := b.vals[start+i]; sub != nil {
			out[i] = sub.Duplicate()
		}
	}
	return &arrbuf{vals: out, base: b.base, depth: b.depth}
}

func (b *arrbuf) copyFrom(src buffer, srcStart, dstStart, count int) {
	s := src.(*arrbuf)
	for i := 0; i < count; i++ {
		if sub := s.vals[srcStart+i]; sub != nil {
			b.vals[dstStart+i] = sub.Duplicate()
		} else {
			b.vals[dstStart+i] = nil
		}
	}
}

func (b *arrbuf) raw() interface{} { return b.vals }
