// Package coltype defines the closed set of element kinds storable in a
// column, the orthogonal array-of modifier, and the per-kind descriptor
// tables (element size, default print format, save-kind legality).
package coltype

import (
	"strconv"
	"strings"

	"github.com/astropipe/colcore/pkg/colerrors"
)

// Kind identifies the element type of a column. The low bits carry the base
// kind; the Array bit marks a column whose elements are fixed-depth
// sub-columns of the base kind.
type Kind int

const (
	// Invalid is the zero Kind and never describes a real column.
	Invalid Kind = iota

	// Bool, Int8 and Int16 are export-only kinds: legal as a save kind for
	// integer columns, never constructible as an in-memory column kind.
	Bool
	Int8
	Int16

	Int32
	Int64
	// Size is the platform index width (Go int).
	Size
	Float32
	Float64
	Complex64
	Complex128
	String
)

// Array is the array-of modifier bit. Combine with a base kind via ArrayOf.
const Array Kind = 1 << 6

// ArrayOf returns the array kind whose elements are sub-columns of base.
func ArrayOf(base Kind) Kind {
	return base.Base() | Array
}

// Base strips the array modifier.
func (k Kind) Base() Kind { return k &^ Array }

// IsArray reports whether k carries the array modifier.
func (k Kind) IsArray() bool { return k&Array != 0 }

// IsInteger reports whether the base kind is a signed integer kind,
// including the export-only narrow widths.
func (k Kind) IsInteger() bool {
	switch k.Base() {
	case Bool, Int8, Int16, Int32, Int64, Size:
		return true
	}
	return false
}

// IsFloat reports whether the base kind is a real floating-point kind.
func (k Kind) IsFloat() bool {
	b := k.Base()
	return b == Float32 || b == Float64
}

// IsComplex reports whether the base kind is a complex floating-point kind.
func (k Kind) IsComplex() bool {
	b := k.Base()
	return b == Complex64 || b == Complex128
}

// IsNumeric reports whether the base kind supports arithmetic.
func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat() || k.IsComplex()
}

// IsString reports whether the base kind is String.
func (k Kind) IsString() bool { return k.Base() == String }

// IsConstructible reports whether a column of this kind can be created.
// Export-only kinds exist solely as save-kind annotations.
func (k Kind) IsConstructible() bool {
	switch k.Base() {
	case Int32, Int64, Size, Float32, Float64, Complex64, Complex128, String:
		return true
	}
	return false
}

// ElemSize returns the in-memory byte size of one element of the base kind.
// String and array elements report the pointer size.
func (k Kind) ElemSize() int {
	switch k.Base() {
	case Bool, Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64, Complex64:
		return 8
	case Size:
		return strconv.IntSize / 8
	case Complex128:
		return 16
	case String:
		return strconv.IntSize / 8
	default:
		return 0
	}
}

// String returns the canonical kind name, e.g. "float64" or "array<int32>".
func (k Kind) String() string {
	base := baseName(k.Base())
	if k.IsArray() {
		return "array<" + base + ">"
	}
	return base
}

func baseName(k Kind) string {
	switch k {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Size:
		return "size"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// Parse converts a kind name back into a Kind. It accepts the canonical
// names produced by String plus a few common aliases ("int", "float",
// "double"). Array kinds use the "array<base>" form.
func Parse(name string) (Kind, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if strings.HasPrefix(name, "array<") && strings.HasSuffix(name, ">") {
		base, err := Parse(name[len("array<") : len(name)-1])
		if err != nil {
			return Invalid, err
		}
		return ArrayOf(base), nil
	}
	switch name {
	case "int32", "int":
		return Int32, nil
	case "int64", "long":
		return Int64, nil
	case "size", "index":
		return Size, nil
	case "float32", "float":
		return Float32, nil
	case "float64", "double":
		return Float64, nil
	case "complex64":
		return Complex64, nil
	case "complex128", "complex":
		return Complex128, nil
	case "string":
		return String, nil
	}
	return Invalid, colerrors.Newf(colerrors.CodeIllegalInput, "unknown kind %q", name)
}

// DefaultFormat returns the default print format for one element of the
// given kind. The table is fixed; columns may override it per instance.
func DefaultFormat(k Kind) string {
	switch k.Base() {
	case Bool, Int8, Int16, Int32, Int64, Size:
		return "%d"
	case Float32, Float64:
		return "%g"
	case Complex64, Complex128:
		return "%g"
	case String:
		return "%s"
	default:
		return "%v"
	}
}

// CanSaveAs reports whether a column of kind may legally declare save as its
// export kind. The save kind is an annotation for the export layer, not a
// cast: integer kinds may narrow to bool or a narrower signed width,
// Float64 may save as Float32, and every kind may save as itself. Array
// columns follow the same table on their base kind.
func CanSaveAs(kind, save Kind) bool {
	if kind.IsArray() != save.IsArray() {
		return false
	}
	k, s := kind.Base(), save.Base()
	if k == s {
		return true
	}
	switch k {
	case Int32:
		return s == Bool || s == Int8 || s == Int16
	case Int64, Size:
		return s == Bool || s == Int8 || s == Int16 || s == Int32
	case Float64:
		return s == Float32
	}
	return false
}
