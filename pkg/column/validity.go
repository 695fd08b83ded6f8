package column

import (
	"github.com/astropipe/colcore/pkg/bitvec"
	"github.com/astropipe/colcore/pkg/colerrors"
)

// invalidAt is the unchecked validity test. For numeric kinds the cached
// count answers the two bitmap-free states; otherwise the bitmap decides.
// String and array kinds use the pointer-null rule.
func (c *Column) invalidAt(i int) bool {
	switch b := c.values.(type) {
	case *strbuf:
		return b.vals[i] == nil
	case *arrbuf:
		return b.vals[i] == nil
	}
	if c.nullCount == 0 {
		return false
	}
	if c.nullCount == c.Len() {
		return true
	}
	return c.nulls.Test(i)
}

// IsInvalid reports whether element i is invalid.
func (c *Column) IsInvalid(i int) (bool, error) {
	if c == nil {
		return false, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if err := c.checkIndex(i); err != nil {
		return false, err
	}
	return c.invalidAt(i), nil
}

// SetInvalid marks element i invalid. For numeric kinds the bitmap is
// lazily allocated on leaving the all-valid state and freed again on
// reaching the all-invalid state. For string and array kinds the element's
// owned contents are released.
func (c *Column) SetInvalid(i int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if err := c.checkIndex(i); err != nil {
		return err
	}
	switch b := c.values.(type) {
	case *strbuf:
		b.vals[i] = nil
		return nil
	case *arrbuf:
		b.vals[i] = nil
		return nil
	}
	if c.invalidAt(i) {
		return nil
	}
	if c.nulls == nil {
		// leaving the all-valid state: materialize an all-valid bitmap
		c.nulls = bitvec.New(c.Len())
	}
	c.nulls.Set(i)
	c.nullCount++
	if c.nullCount == c.Len() {
		c.nulls = nil
	}
	return nil
}

// unsetInvalid marks element i valid after a successful write; numeric
// kinds only (string and array writes store a non-nil pointer instead).
// The symmetric lazy rule applies: leaving the all-invalid state
// materializes an all-invalid bitmap, and reaching the all-valid state
// frees it.
func (c *Column) unsetInvalid(i int) {
	if !c.invalidAt(i) {
		return
	}
	if c.nulls == nil {
		c.nulls = bitvec.New(c.Len())
		c.nulls.SetRange(0, c.Len())
	}
	c.nulls.Clear(i)
	c.nullCount--
	if c.nullCount == 0 {
		c.nulls = nil
	}
}

// CountInvalid returns the number of invalid elements. String and array
// kinds are scanned and the result cached; numeric kinds return the
// maintained count.
func (c *Column) CountInvalid() int {
	if c == nil {
		return 0
	}
	switch b := c.values.(type) {
	case *strbuf:
		n := 0
		for _, p := range b.vals {
			if p == nil {
				n++
			}
		}
		c.nullCount = n
		return n
	case *arrbuf:
		n := 0
		for _, p := range b.vals {
			if p == nil {
				n++
			}
		}
		c.nullCount = n
		return n
	}
	return c.nullCount
}

// HasInvalid reports whether any element is invalid.
func (c *Column) HasInvalid() bool {
	return c.CountInvalid() > 0
}

// HasValid reports whether any element is valid.
func (c *Column) HasValid() bool {
	return c.Len()-c.CountInvalid() > 0
}

// checkRange validates a fill window.
func (c *Column) checkRange(start, count int) error {
	if start < 0 || start >= c.Len() {
		return colerrors.Newf(colerrors.CodeAccessOutOfRange,
			"start %d out of range [0, %d)", start, c.Len())
	}
	if count < 0 {
		return colerrors.Newf(colerrors.CodeIllegalInput,
			"negative count %d", count)
	}
	if start+count > c.Len() {
		return colerrors.Newf(colerrors.CodeAccessOutOfRange,
			"window [%d, %d) exceeds length %d", start, start+count, c.Len())
	}
	return nil
}

// FillInvalid marks count elements starting at start invalid. String and
// array elements release their owned contents.
func (c *Column) FillInvalid(start, count int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if err := c.checkRange(start, count); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	switch b := c.values.(type) {
	case *strbuf:
		for i := start; i < start+count; i++ {
			b.vals[i] = nil
		}
		return nil
	case *arrbuf:
		for i := start; i < start+count; i++ {
			b.vals[i] = nil
		}
		return nil
	}
	if c.nullCount == c.Len() {
		return nil
	}
	if count == c.Len() {
		// whole column: collapse straight to the bitmap-free state
		c.nulls = nil
		c.nullCount = c.Len()
		return nil
	}
	if c.nulls == nil {
		// leaving the all-valid state
		c.nulls = bitvec.New(c.Len())
	}
	c.nullCount += c.nulls.SetRange(start, count)
	if c.nullCount == c.Len() {
		c.nulls = nil
	}
	return nil
}

// FillValid marks count elements starting at start valid. String elements
// become empty strings and array elements become fresh all-invalid
// sub-columns, since those kinds represent validity only through a non-nil
// element.
func (c *Column) FillValid(start, count int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if err := c.checkRange(start, count); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	switch b := c.values.(type) {
	case *strbuf:
		for i := start; i < start+count; i++ {
			if b.vals[i] == nil {
				empty := ""
				b.vals[i] = &empty
			}
		}
		return nil
	case *arrbuf:
		for i := start; i < start+count; i++ {
			if b.vals[i] == nil {
				sub, err := New(b.base, b.depth)
				if err != nil {
					return err
				}
				b.vals[i] = sub
			}
		}
		return nil
	}
	if c.nullCount == 0 {
		return nil
	}
	if count == c.Len() {
		c.nulls = nil
		c.nullCount = 0
		return nil
	}
	if c.nulls == nil {
		// leaving the all-invalid state
		c.nulls = bitvec.New(c.Len())
		c.nulls.SetRange(0, c.Len())
	}
	c.nullCount -= c.nulls.ClearRange(start, count)
	if c.nullCount == 0 {
		c.nulls = nil
	}
	return nil
}
