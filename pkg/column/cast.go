package column

import (
	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/coltype"
)

// CastTo converts the column to a different primitive kind, always
// producing a new owned column; the source is never mutated.
//
// String columns cannot be cast to or from anything. Complex kinds cast to
// non-complex kinds by keeping the real part; non-complex kinds promote to
// complex with a zero imaginary part. Narrowing to an integer kind
// truncates toward zero. Casting an array-typed column recursively casts
// each non-nil sub-column and duplicates the dimensions unchanged.
//
// When the source has no invalid elements the conversion skips all
// per-element validity checks; otherwise the target's validity state is
// duplicated bit-for-bit.
func (c *Column) CastTo(target coltype.Kind) (*Column, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.Base() == coltype.String || target.Base() == coltype.String {
		return nil, colerrors.New(colerrors.CodeInvalidType,
			"string columns cannot be cast")
	}
	if !target.Base().IsConstructible() {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"cannot cast to %s", target)
	}
	if target.IsArray() && !c.kind.IsArray() {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"cannot cast scalar %s to array kind %s", c.kind, target)
	}

	if c.kind.IsArray() {
		return c.castArray(target.Base())
	}
	return c.castScalar(target.Base())
}

// castArray casts every non-nil sub-column to the target base kind.
func (c *Column) castArray(base coltype.Kind) (*Column, error) {
	out, err := NewArray(base, c.Len(), c.depth)
	if err != nil {
		return nil, err
	}
	c.copyMetaInto(out)
	src := c.values.(*arrbuf)
	dst := out.values.(*arrbuf)
	for i, sub := range src.vals {
		if sub == nil {
			continue
		}
		cast, err := sub.castScalar(base)
		if err != nil {
			return nil, err
		}
		dst.vals[i] = cast
	}
	return out, nil
}

// castScalar converts element storage between numeric kinds. The value
// travels through the evaluation domain of the source kind, so integer to
// integer casts stay exact at full width.
func (c *Column) castScalar(base coltype.Kind) (*Column, error) {
	n := c.Len()
	out, err := New(base, n)
	if err != nil {
		return nil, err
	}
	c.copyMetaInto(out)
	src := c.values.(numeric)
	dst := out.values.(numeric)

	convert := func(i int) {
		switch {
		case c.kind.IsComplex():
			v := src.complexAt(i)
			if base.IsComplex() {
				dst.setComplexAt(i, v)
			} else {
				dst.setFloatAt(i, real(v))
			}
		case c.kind.IsFloat():
			dst.setFloatAt(i, src.floatAt(i))
		default:
			dst.setIntAt(i, src.intAt(i))
		}
	}

	if c.nullCount == 0 {
		// fast path: no per-element validity checks
		for i := 0; i < n; i++ {
			convert(i)
		}
		out.nullCount = 0
		return out, nil
	}
	if c.nullCount == n {
		return out, nil
	}
	for i := 0; i < n; i++ {
		if c.nulls.Test(i) {
			continue
		}
		convert(i)
	}
	out.nulls = c.nulls.Clone()
	out.nullCount = c.nullCount
	return out, nil
}

// copyElem moves one element between buffers of the same kind through the
// kind's own evaluation domain, so integer values stay exact at full width.
func copyElem(kind coltype.Kind, dst numeric, di int, src numeric, si int) {
	switch {
	case kind.IsComplex():
		dst.setComplexAt(di, src.complexAt(si))
	case kind.IsFloat():
		dst.setFloatAt(di, src.floatAt(si))
	default:
		dst.setIntAt(di, src.intAt(si))
	}
}

// copyMetaInto duplicates the descriptive metadata and shape; the save kind
// resets to the new in-memory kind.
func (c *Column) copyMetaInto(out *Column) {
	out.name = c.name
	out.unit = c.unit
	out.format = c.format
	if len(c.dims) > 0 {
		out.dims = append([]int(nil), c.dims...)
	}
}

// Flatten takes element 0 of each sub-array of an array-typed column,
// producing a scalar column of the base kind. Invalid or empty sub-arrays
// produce an invalid scalar. Multi-element sub-arrays are never touched
// beyond index 0.
func (c *Column) Flatten() (*Column, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if !c.kind.IsArray() {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"flatten requires an array kind, have %s", c.kind)
	}
	base := c.kind.Base()
	out, err := New(base, c.Len())
	if err != nil {
		return nil, err
	}
	out.name = c.name
	out.unit = c.unit
	out.format = c.format
	src := c.values.(*arrbuf)
	for i, sub := range src.vals {
		if sub == nil || sub.Len() == 0 || sub.invalidAt(0) {
			continue
		}
		if base == coltype.String {
			s, err := sub.StringAt(0)
			if err != nil {
				return nil, err
			}
			if err := out.SetString(i, s); err != nil {
				return nil, err
			}
			continue
		}
		copyElem(base, out.values.(numeric), i, sub.values.(numeric), 0)
		out.unsetInvalid(i)
	}
	return out, nil
}

// Lift wraps each scalar element into a new length-1 sub-array, producing
// an array-typed column of depth 1. Invalid scalars become invalid
// elements.
func (c *Column) Lift() (*Column, error) {
	if c == nil {
		return nil, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() {
		return nil, colerrors.Newf(colerrors.CodeInvalidType,
			"lift requires a scalar kind, have %s", c.kind)
	}
	out, err := NewArray(c.kind, c.Len(), 1)
	if err != nil {
		return nil, err
	}
	out.name = c.name
	out.unit = c.unit
	out.format = c.format
	dst := out.values.(*arrbuf)
	for i := 0; i < c.Len(); i++ {
		if c.invalidAt(i) {
			continue
		}
		sub, err := New(c.kind, 1)
		if err != nil {
			return nil, err
		}
		if c.kind == coltype.String {
			s, err := c.StringAt(i)
			if err != nil {
				return nil, err
			}
			if err := sub.SetString(0, s); err != nil {
				return nil, err
			}
		} else {
			copyElem(c.kind, sub.values.(numeric), 0, c.values.(numeric), i)
			sub.unsetInvalid(0)
		}
		dst.vals[i] = sub
	}
	return out, nil
}
