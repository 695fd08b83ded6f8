// Package column implements the in-memory columnar storage engine: a typed,
// resizable, nullable sequence of values of one primitive kind (or
// fixed-depth arrays thereof) with cast, splice, combine and reduce
// operations.
//
// A Column is a plain mutable value with no internal locking. Concurrent
// mutation is undefined and must be serialized by the caller; concurrent
// read-only access is safe only while no writer is active.
package column

import (
	"github.com/astropipe/colcore/pkg/bitvec"
	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/coltype"
	"github.com/astropipe/colcore/pkg/strpool"
)

// Column is the core storage abstraction. The zero value is not usable;
// construct with New, NewArray or one of the Wrap constructors.
//
// Validity is tracked per element. For numeric kinds a lazily allocated
// bitmap exists exactly while the invalid count is strictly between 0 and
// the length; the two common states (no invalid values, no valid values)
// cost no bitmap memory. For string and array kinds an element is invalid
// iff its stored pointer is nil, and no bitmap ever exists.
type Column struct {
	kind     coltype.Kind
	saveKind coltype.Kind

	name   string
	unit   string
	format string

	// depth is the fixed sub-column length; meaningful only for array kinds.
	depth int
	// dims is the optional multi-dimensional shape; its product equals depth.
	dims []int

	values buffer
	// nulls is present iff 0 < nullCount < length, numeric kinds only.
	nulls     *bitvec.Vector
	nullCount int

	// wrapped marks a borrowed buffer; wrapRaw is the caller's original
	// slice, returned unchanged by Unwrap.
	wrapped bool
	wrapRaw interface{}
}

// New creates an owned column of a scalar kind with every element invalid.
func New(kind coltype.Kind, length int) (*Column, error) {
	if kind.IsArray() {
		return nil, colerrors.New(colerrors.CodeIllegalInput,
			"array kinds require NewArray")
	}
	if !kind.IsConstructible() {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"kind %s is not constructible", kind)
	}
	if length < 0 {
		return nil, colerrors.Newf(colerrors.CodeIllegalInput,
			"negative length %d", length)
	}
	c := &Column{
		kind:     kind,
		saveKind: kind,
		values:   newBuffer(kind, length),
	}
	if kind.IsNumeric() {
		c.nullCount = length
	}
	return c, nil
}

// NewArray creates an owned array-typed column whose elements are
// sub-columns of the base kind with exactly depth elements each. Every
// element starts invalid.
func NewArray(base coltype.Kind, length, depth int) (*Column, error) {
	if base.IsArray() || !base.IsConstructible() {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"invalid array base kind %s", base)
	}
	if length < 0 || depth < 0 {
		return nil, colerrors.Newf(colerrors.CodeIllegalInput,
			"negative length %d or depth %d", length, depth)
	}
	return &Column{
		kind:     coltype.ArrayOf(base),
		saveKind: coltype.ArrayOf(base),
		depth:    depth,
		values:   &arrbuf{vals: make([]*Column, length), base: base, depth: depth},
	}, nil
}

// wrap builds a borrowed column over caller-owned memory. The column never
// frees the slice, treats every element as valid, and returns the original
// slice from Unwrap.
func wrap(kind coltype.Kind, data interface{}) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	buf := wrapBuffer(data)
	if buf == nil {
		return nil, colerrors.Newf(colerrors.CodeTypeMismatch,
			"buffer type %T does not match kind %s", data, kind)
	}
	return &Column{
		kind:     kind,
		saveKind: kind,
		values:   buf,
		wrapped:  true,
		wrapRaw:  data,
	}, nil
}

// WrapInt32 wraps a caller-owned int32 buffer; all elements are valid.
func WrapInt32(data []int32) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Int32, data)
}

// WrapInt64 wraps a caller-owned int64 buffer; all elements are valid.
func WrapInt64(data []int64) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Int64, data)
}

// WrapSize wraps a caller-owned platform-int buffer; all elements are valid.
func WrapSize(data []int) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Size, data)
}

// WrapFloat32 wraps a caller-owned float32 buffer; all elements are valid.
func WrapFloat32(data []float32) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Float32, data)
}

// WrapFloat64 wraps a caller-owned float64 buffer; all elements are valid.
func WrapFloat64(data []float64) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Float64, data)
}

// WrapComplex64 wraps a caller-owned complex64 buffer; all elements are valid.
func WrapComplex64(data []complex64) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Complex64, data)
}

// WrapComplex128 wraps a caller-owned complex128 buffer; all elements are valid.
func WrapComplex128(data []complex128) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.Complex128, data)
}

// WrapStrings wraps a caller-owned string-pointer buffer. Nil entries are
// invalid elements, per the pointer-null rule.
func WrapStrings(data []*string) (*Column, error) {
	if data == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	return wrap(coltype.String, data)
}

// Kind returns the column's kind, including the array modifier.
func (c *Column) Kind() coltype.Kind { return c.kind }

// SaveKind returns the export-only type annotation.
func (c *Column) SaveKind() coltype.Kind { return c.saveKind }

// SetSaveKind declares the kind the export layer will narrow to. Only the
// legal narrowings of the in-memory kind are accepted; this is an
// annotation, not a cast.
func (c *Column) SetSaveKind(save coltype.Kind) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if !coltype.CanSaveAs(c.kind, save) {
		return colerrors.Newf(colerrors.CodeIllegalInput,
			"kind %s cannot be saved as %s", c.kind, save)
	}
	c.saveKind = save
	return nil
}

// Len returns the element count.
func (c *Column) Len() int {
	if c == nil || c.values == nil {
		return 0
	}
	return c.values.length()
}

// Depth returns the fixed sub-column length of an array kind, 0 otherwise.
func (c *Column) Depth() int { return c.depth }

// Name returns the descriptive name; metadata only.
func (c *Column) Name() string { return c.name }

// SetName sets the descriptive name.
func (c *Column) SetName(name string) { c.name = name }

// Unit returns the physical unit string; metadata only.
func (c *Column) Unit() string { return c.unit }

// SetUnit sets the physical unit string.
func (c *Column) SetUnit(unit string) { c.unit = unit }

// Format returns the print format, or the per-kind default when unset.
func (c *Column) Format() string {
	if c.format == "" {
		return coltype.DefaultFormat(c.kind)
	}
	return c.format
}

// SetFormat overrides the print format; metadata only.
func (c *Column) SetFormat(format string) { c.format = format }

// Wrapped reports whether the column borrows caller-owned memory.
func (c *Column) Wrapped() bool { return c.wrapped }

// SetDimensions declares a multi-dimensional shape for an array-typed
// column. At least two entries are required and their product must equal
// the depth.
func (c *Column) SetDimensions(dims []int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if !c.kind.IsArray() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"dimensions require an array kind, have %s", c.kind)
	}
	if len(dims) < 2 {
		return colerrors.Newf(colerrors.CodeIllegalInput,
			"need at least 2 dimensions, got %d", len(dims))
	}
	product := 1
	for _, d := range dims {
		if d < 0 {
			return colerrors.Newf(colerrors.CodeIllegalInput,
				"negative dimension %d", d)
		}
		product *= d
	}
	if product != c.depth {
		return colerrors.Newf(colerrors.CodeIncompatibleInput,
			"dimension product %d does not match depth %d", product, c.depth)
	}
	c.dims = append([]int(nil), dims...)
	return nil
}

// DimensionCount returns the declared rank: 1 when no shape is set.
func (c *Column) DimensionCount() int {
	if len(c.dims) == 0 {
		return 1
	}
	return len(c.dims)
}

// Dimension returns the extent of axis i of the declared shape. Querying
// beyond the declared rank is Unspecified; axis 0 of an unshaped column
// reports the depth.
func (c *Column) Dimension(i int) (int, error) {
	if c == nil {
		return 0, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if i < 0 || i >= c.DimensionCount() {
		return 0, colerrors.Newf(colerrors.CodeUnspecified,
			"dimension %d beyond rank %d", i, c.DimensionCount())
	}
	if len(c.dims) == 0 {
		return c.depth, nil
	}
	return c.dims[i], nil
}

// Dimensions returns a copy of the declared shape, or nil when unshaped.
func (c *Column) Dimensions() []int {
	if len(c.dims) == 0 {
		return nil
	}
	return append([]int(nil), c.dims...)
}

// checkIndex validates an element index, including the any-access-on-empty
// rule.
func (c *Column) checkIndex(i int) error {
	if i < 0 || i >= c.Len() {
		return colerrors.Newf(colerrors.CodeAccessOutOfRange,
			"index %d out of range [0, %d)", i, c.Len())
	}
	return nil
}

// Int reads an integer element. Invalid elements read as the stored zero;
// consult IsInvalid.
func (c *Column) Int(i int) (int64, error) {
	if c == nil {
		return 0, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || !c.kind.IsInteger() {
		return 0, colerrors.Newf(colerrors.CodeTypeMismatch,
			"integer access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return 0, err
	}
	return c.values.(numeric).intAt(i), nil
}

// SetInt writes an integer element and marks it valid.
func (c *Column) SetInt(i int, v int64) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || !c.kind.IsInteger() {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"integer access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.values.(numeric).setIntAt(i, v)
	c.unsetInvalid(i)
	return nil
}

// Float reads an integer or floating-point element as float64.
func (c *Column) Float(i int) (float64, error) {
	if c == nil {
		return 0, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || (!c.kind.IsInteger() && !c.kind.IsFloat()) {
		return 0, colerrors.Newf(colerrors.CodeTypeMismatch,
			"float access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return 0, err
	}
	return c.values.(numeric).floatAt(i), nil
}

// SetFloat writes an integer or floating-point element and marks it valid.
// Integer kinds store the value truncated toward zero.
func (c *Column) SetFloat(i int, v float64) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || (!c.kind.IsInteger() && !c.kind.IsFloat()) {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"float access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.values.(numeric).setFloatAt(i, v)
	c.unsetInvalid(i)
	return nil
}

// Complex reads a complex element.
func (c *Column) Complex(i int) (complex128, error) {
	if c == nil {
		return 0, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || !c.kind.IsComplex() {
		return 0, colerrors.Newf(colerrors.CodeTypeMismatch,
			"complex access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return 0, err
	}
	return c.values.(numeric).complexAt(i), nil
}

// SetComplex writes a complex element and marks it valid.
func (c *Column) SetComplex(i int, v complex128) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || !c.kind.IsComplex() {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"complex access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.values.(numeric).setComplexAt(i, v)
	c.unsetInvalid(i)
	return nil
}

// StringAt reads a string element. Invalid elements read as "".
func (c *Column) StringAt(i int) (string, error) {
	if c == nil {
		return "", colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind != coltype.String {
		return "", colerrors.Newf(colerrors.CodeTypeMismatch,
			"string access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return "", err
	}
	if p := c.values.(*strbuf).vals[i]; p != nil {
		return *p, nil
	}
	return "", nil
}

// SetString writes a string element and marks it valid.
func (c *Column) SetString(i int, s string) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind != coltype.String {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"string access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return err
	}
	owned := strpool.Clone(s)
	c.values.(*strbuf).vals[i] = &owned
	return nil
}

// ArrayAt returns the sub-column stored at element i, or nil for an invalid
// element. The sub-column remains owned by the parent slot.
func (c *Column) ArrayAt(i int) (*Column, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if !c.kind.IsArray() {
		return nil, colerrors.Newf(colerrors.CodeTypeMismatch,
			"array access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return nil, err
	}
	return c.values.(*arrbuf).vals[i], nil
}

// SetArray stores a sub-column at element i; ownership moves to the slot.
// A nil sub marks the element invalid. The sub-column's kind must be the
// base kind and its length must equal the depth.
func (c *Column) SetArray(i int, sub *Column) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if !c.kind.IsArray() {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"array access on %s column", c.kind)
	}
	if err := c.checkIndex(i); err != nil {
		return err
	}
	if sub != nil {
		if sub.kind != c.kind.Base() {
			return colerrors.Newf(colerrors.CodeTypeMismatch,
				"sub-column kind %s does not match base %s", sub.kind, c.kind.Base())
		}
		if sub.Len() != c.depth {
			return colerrors.Newf(colerrors.CodeIncompatibleInput,
				"sub-column length %d does not match depth %d", sub.Len(), c.depth)
		}
	}
	c.values.(*arrbuf).vals[i] = sub
	return nil
}

// CopyFrom bulk-imports a plain numeric or complex buffer. The slice type
// must match the column's storage kind and its element count must not
// exceed the column length; the copied prefix overwrites values and clears
// their invalid flags.
func (c *Column) CopyFrom(data interface{}) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if data == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil buffer")
	}
	if c.kind.IsArray() || !c.kind.IsNumeric() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"bulk import unsupported for %s columns", c.kind)
	}
	src := wrapBuffer(data)
	if src == nil {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"unsupported buffer type %T", data)
	}
	if src.length() > c.Len() {
		return colerrors.Newf(colerrors.CodeIncompatibleInput,
			"buffer length %d exceeds column length %d", src.length(), c.Len())
	}
	if sameKindBuffer(c.values, src) {
		c.values.copyFrom(src, 0, 0, src.length())
	} else {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"buffer type %T does not match kind %s", data, c.kind)
	}
	if src.length() > 0 {
		return c.FillValid(0, src.length())
	}
	return nil
}

// sameKindBuffer reports whether both buffers share a concrete element type.
func sameKindBuffer(a, b buffer) bool {
	switch a.(type) {
	case *numbuf[int32]:
		_, ok := b.(*numbuf[int32])
		return ok
	case *numbuf[int64]:
		_, ok := b.(*numbuf[int64])
		return ok
	case *numbuf[int]:
		_, ok := b.(*numbuf[int])
		return ok
	case *numbuf[float32]:
		_, ok := b.(*numbuf[float32])
		return ok
	case *numbuf[float64]:
		_, ok := b.(*numbuf[float64])
		return ok
	case *numbuf[complex64]:
		_, ok := b.(*numbuf[complex64])
		return ok
	case *numbuf[complex128]:
		_, ok := b.(*numbuf[complex128])
		return ok
	case *strbuf:
		_, ok := b.(*strbuf)
		return ok
	case *arrbuf:
		_, ok := b.(*arrbuf)
		return ok
	}
	return false
}

// Duplicate returns an independent owned deep copy, including metadata,
// shape and validity. Duplicating a wrapped column yields an owned one.
func (c *Column) Duplicate() *Column {
	if c == nil {
		return nil
	}
	out := &Column{
		kind:      c.kind,
		saveKind:  c.saveKind,
		name:      c.name,
		unit:      c.unit,
		format:    c.format,
		depth:     c.depth,
		values:    c.values.clone(),
		nullCount: c.nullCount,
	}
	if c.nulls != nil {
		out.nulls = c.nulls.Clone()
	}
	if len(c.dims) > 0 {
		out.dims = append([]int(nil), c.dims...)
	}
	return out
}

// Extract copies a segment into a new owned column. The count is clamped to
// the available tail.
func (c *Column) Extract(start, count int) (*Column, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if start < 0 || start >= c.Len() {
		return nil, colerrors.Newf(colerrors.CodeAccessOutOfRange,
			"start %d out of range [0, %d)", start, c.Len())
	}
	if count <= 0 {
		return nil, colerrors.Newf(colerrors.CodeIllegalInput,
			"non-positive count %d", count)
	}
	if count > c.Len()-start {
		count = c.Len() - start
	}
	out := &Column{
		kind:     c.kind,
		saveKind: c.saveKind,
		name:     c.name,
		unit:     c.unit,
		format:   c.format,
		depth:    c.depth,
		values:   c.values.extract(start, count),
	}
	if len(c.dims) > 0 {
		out.dims = append([]int(nil), c.dims...)
	}
	if c.kind.IsNumeric() && !c.kind.IsArray() {
		for i := 0; i < count; i++ {
			if c.invalidAt(start + i) {
				out.nullCount++
			}
		}
		if out.nullCount > 0 && out.nullCount < count {
			out.nulls = bitvec.New(count)
			for i := 0; i < count; i++ {
				if c.invalidAt(start + i) {
					out.nulls.Set(i)
				}
			}
		}
	}
	return out, nil
}

// Delete releases the column's storage and bookkeeping. A wrapped column's
// borrowed buffer is never touched; the caller keeps full ownership of it.
func (c *Column) Delete() {
	if c == nil {
		return
	}
	c.values = nil
	c.nulls = nil
	c.nullCount = 0
	c.dims = nil
	c.wrapRaw = nil
	c.wrapped = false
}

// Unwrap returns the raw element buffer and releases only the column's own
// bookkeeping. For a wrapped column the returned slice is exactly the one
// supplied at construction; for an owned column the caller assumes
// ownership of the storage.
func (c *Column) Unwrap() (interface{}, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.values == nil {
		return nil, colerrors.New(colerrors.CodeIllegalInput, "column already deleted")
	}
	raw := c.values.raw()
	if c.wrapped {
		raw = c.wrapRaw
	}
	c.values = nil
	c.nulls = nil
	c.nullCount = 0
	c.wrapRaw = nil
	c.wrapped = false
	return raw, nil
}

// DeleteKeepStrings releases the column but hands the string pointers to the
// caller instead of dropping them.
func (c *Column) DeleteKeepStrings() ([]*string, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	sb, ok := c.values.(*strbuf)
	if !ok {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"not a string column: %s", c.kind)
	}
	vals := sb.vals
	c.Delete()
	return vals, nil
}

// DeleteKeepSubColumns releases the column but hands the sub-column
// pointers to the caller instead of dropping them.
func (c *Column) DeleteKeepSubColumns() ([]*Column, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	ab, ok := c.values.(*arrbuf)
	if !ok {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"not an array column: %s", c.kind)
	}
	vals := ab.vals
	c.Delete()
	return vals, nil
}
