package column

import (
	"github.com/astropipe/colcore/pkg/bitvec"
	"github.com/astropipe/colcore/pkg/colerrors"
)

// checkOwned rejects structural mutation of borrowed buffers. Growing or
// shifting memory the engine does not own would sever the caller's alias,
// so wrapped columns must be duplicated before resizing.
func (c *Column) checkOwned() error {
	if c.wrapped {
		return colerrors.New(colerrors.CodeUnsupportedMode,
			"cannot change the size of a wrapped column")
	}
	return nil
}

// SetSize resizes the column to n elements. Shrinking releases the owned
// contents of truncated elements; growing appends invalid elements and
// never disturbs existing values or their validity.
func (c *Column) SetSize(n int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if n < 0 {
		return colerrors.Newf(colerrors.CodeIllegalInput, "negative size %d", n)
	}
	if err := c.checkOwned(); err != nil {
		return err
	}
	old := c.Len()
	if n == old {
		return nil
	}
	if _, isStr := c.values.(*strbuf); isStr {
		c.values.resize(n)
		return nil
	}
	if _, isArr := c.values.(*arrbuf); isArr {
		c.values.resize(n)
		return nil
	}

	if n < old {
		if c.nulls != nil {
			c.nulls.Resize(n)
			c.nullCount = c.nulls.Count()
			if c.nullCount == 0 || c.nullCount == n {
				c.nulls = nil
			}
		} else if c.nullCount == old {
			c.nullCount = n
		}
		c.values.resize(n)
		return nil
	}

	grown := n - old
	switch {
	case c.nullCount == old:
		// still all invalid, bitmap stays absent
		c.nullCount = n
	case c.nullCount == 0 && old == 0:
		c.nullCount = n
	case c.nullCount == 0:
		c.nulls = bitvec.New(n)
		c.nulls.SetRange(old, grown)
		c.nullCount = grown
	default:
		c.nulls.Resize(n)
		c.nulls.SetRange(old, grown)
		c.nullCount += grown
		if c.nullCount == n {
			c.nulls = nil
		}
	}
	c.values.resize(n)
	return nil
}

// InsertSegment opens a gap of count invalid elements at start, shifting
// the tail up. A start beyond the current length appends.
func (c *Column) InsertSegment(start, count int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if start < 0 {
		return colerrors.Newf(colerrors.CodeAccessOutOfRange, "negative start %d", start)
	}
	if count < 0 {
		return colerrors.Newf(colerrors.CodeIllegalInput, "negative count %d", count)
	}
	if err := c.checkOwned(); err != nil {
		return err
	}
	old := c.Len()
	if start > old {
		start = old
	}
	if count == 0 {
		return nil
	}
	if start == old {
		return c.SetSize(old + count)
	}

	switch c.values.(type) {
	case *strbuf, *arrbuf:
		c.values.insert(start, count)
		return nil
	}

	switch {
	case c.nullCount == old:
		c.nullCount = old + count
	case c.nullCount == 0:
		c.nulls = bitvec.New(old + count)
		c.nulls.SetRange(start, count)
		c.nullCount = count
	default:
		c.nulls.Insert(start, count, true)
		c.nullCount += count
		if c.nullCount == old+count {
			c.nulls = nil
		}
	}
	c.values.insert(start, count)
	return nil
}

// EraseSegment removes count elements at start, shifting the tail down and
// releasing any owned contents of the removed elements. The count is
// clamped to the available tail.
func (c *Column) EraseSegment(start, count int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if start < 0 || start >= c.Len() {
		return colerrors.Newf(colerrors.CodeAccessOutOfRange,
			"start %d out of range [0, %d)", start, c.Len())
	}
	if count < 0 {
		return colerrors.Newf(colerrors.CodeIllegalInput, "negative count %d", count)
	}
	if err := c.checkOwned(); err != nil {
		return err
	}
	if count > c.Len()-start {
		count = c.Len() - start
	}
	if count == 0 {
		return nil
	}

	switch c.values.(type) {
	case *strbuf, *arrbuf:
		c.values.erase(start, count)
		return nil
	}

	old := c.Len()
	switch {
	case c.nullCount == old:
		c.nullCount = old - count
	case c.nullCount == 0:
		// nothing to shift
	default:
		removed := 0
		for i := start; i < start+count; i++ {
			if c.nulls.Test(i) {
				removed++
			}
		}
		c.nulls.Erase(start, count)
		c.nullCount -= removed
		if c.nullCount == 0 || c.nullCount == old-count {
			c.nulls = nil
		}
	}
	c.values.erase(start, count)
	return nil
}

// EraseByPattern removes every element whose drop flag is true. The pattern
// must cover the whole column.
func (c *Column) EraseByPattern(drop []bool) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if drop == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil pattern")
	}
	if len(drop) != c.Len() {
		return colerrors.Newf(colerrors.CodeIncompatibleInput,
			"pattern length %d does not match column length %d", len(drop), c.Len())
	}
	if err := c.checkOwned(); err != nil {
		return err
	}
	dropped := 0
	for _, d := range drop {
		if d {
			dropped++
		}
	}
	if dropped == 0 {
		return nil
	}

	switch c.values.(type) {
	case *strbuf, *arrbuf:
		c.values.compact(drop)
		return nil
	}

	old := c.Len()
	switch {
	case c.nullCount == old:
		c.nullCount = old - dropped
	case c.nullCount == 0:
		// validity unchanged
	default:
		c.nulls.Compact(drop)
		c.nullCount = c.nulls.Count()
		if c.nullCount == 0 || c.nullCount == old-dropped {
			c.nulls = nil
		}
	}
	c.values.compact(drop)
	return nil
}

// Merge splices src's contents into the column at position, growing it by
// src.Len(). Values and validity are copied in order; src is unchanged. A
// position beyond the length appends; kinds must match exactly, and array
// columns must share their depth.
func (c *Column) Merge(src *Column, position int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if src == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil source column")
	}
	if src.kind != c.kind {
		return colerrors.Newf(colerrors.CodeTypeMismatch,
			"cannot merge %s into %s", src.kind, c.kind)
	}
	if c.kind.IsArray() && src.depth != c.depth {
		return colerrors.Newf(colerrors.CodeIncompatibleInput,
			"depth %d does not match %d", src.depth, c.depth)
	}
	if position < 0 {
		return colerrors.Newf(colerrors.CodeAccessOutOfRange,
			"negative position %d", position)
	}
	if err := c.checkOwned(); err != nil {
		return err
	}
	if position > c.Len() {
		position = c.Len()
	}
	if src == c {
		src = c.Duplicate()
	}
	n := src.Len()
	if n == 0 {
		return nil
	}
	if err := c.InsertSegment(position, n); err != nil {
		return err
	}
	// the opened gap is already fully invalid; an all-invalid source is done
	if src.CountInvalid() == n {
		return nil
	}
	c.values.copyFrom(src.values, 0, position, n)
	switch c.values.(type) {
	case *strbuf, *arrbuf:
		// validity travels with the copied pointers
		return nil
	}
	for i := 0; i < n; i++ {
		if !src.invalidAt(i) {
			c.unsetInvalid(position + i)
		}
	}
	return nil
}
