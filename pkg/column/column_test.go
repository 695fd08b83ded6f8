package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/coltype"
)

func TestNewStartsAllInvalid(t *testing.T) {
	c, err := New(coltype.Float64, 4)
	require.NoError(t, err)
	assert.Equal(t, coltype.Float64, c.Kind())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 4, c.CountInvalid())
	assert.Nil(t, c.nulls) // all-invalid state needs no bitmap
	assert.False(t, c.Wrapped())
}

func TestNewRejectsBadArguments(t *testing.T) {
	_, err := New(coltype.Float64, -1)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))

	_, err = New(coltype.Int8, 5)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))

	_, err = New(coltype.ArrayOf(coltype.Int32), 5)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))
}

func TestZeroLengthColumn(t *testing.T) {
	c, err := New(coltype.Int64, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.CountInvalid())

	// any element access on an empty column is out of range
	_, err = c.Int(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeAccessOutOfRange))
	err = c.SetInt(0, 1)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeAccessOutOfRange))
}

func TestIntAccessors(t *testing.T) {
	c, err := New(coltype.Int64, 3)
	require.NoError(t, err)

	require.NoError(t, c.SetInt(0, -7))
	require.NoError(t, c.SetInt(2, 1<<60))

	v, err := c.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), v)

	v, err = c.Int(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<60), v)

	inv, err := c.IsInvalid(1)
	require.NoError(t, err)
	assert.True(t, inv)
	assert.Equal(t, 1, c.CountInvalid())

	// writing marks valid
	inv, err = c.IsInvalid(0)
	require.NoError(t, err)
	assert.False(t, inv)

	_, err = c.Int(5)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeAccessOutOfRange))
}

func TestTypedAccessMismatch(t *testing.T) {
	c, err := New(coltype.Int64, 2)
	require.NoError(t, err)

	_, err = c.Complex(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeTypeMismatch))
	_, err = c.StringAt(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeTypeMismatch))

	// float access on an integer column is allowed
	require.NoError(t, c.SetFloat(0, 9.9))
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v) // truncated toward zero

	s, err := New(coltype.String, 2)
	require.NoError(t, err)
	_, err = s.Float(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeTypeMismatch))
}

func TestStringElements(t *testing.T) {
	c, err := New(coltype.String, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, c.CountInvalid())

	require.NoError(t, c.SetString(1, "NGC 5128"))
	got, err := c.StringAt(1)
	require.NoError(t, err)
	assert.Equal(t, "NGC 5128", got)
	assert.Equal(t, 2, c.CountInvalid())

	// invalid elements read as the empty string
	got, err = c.StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// an explicitly stored empty string is valid
	require.NoError(t, c.SetString(0, ""))
	inv, err := c.IsInvalid(0)
	require.NoError(t, err)
	assert.False(t, inv)
}

func TestArrayElements(t *testing.T) {
	c, err := NewArray(coltype.Int32, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, coltype.ArrayOf(coltype.Int32), c.Kind())
	assert.Equal(t, 2, c.Depth())
	assert.Equal(t, 3, c.CountInvalid())

	sub, err := New(coltype.Int32, 2)
	require.NoError(t, err)
	require.NoError(t, sub.SetInt(0, 10))
	require.NoError(t, sub.SetInt(1, 20))
	require.NoError(t, c.SetArray(1, sub))

	got, err := c.ArrayAt(1)
	require.NoError(t, err)
	require.NotNil(t, got)
	v, err := got.Int(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)
	assert.Equal(t, 2, c.CountInvalid())

	// wrong base kind and wrong depth are rejected
	bad, err := New(coltype.Float64, 2)
	require.NoError(t, err)
	err = c.SetArray(0, bad)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeTypeMismatch))

	short, err := New(coltype.Int32, 1)
	require.NoError(t, err)
	err = c.SetArray(0, short)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIncompatibleInput))

	// nil marks the element invalid again
	require.NoError(t, c.SetArray(1, nil))
	assert.Equal(t, 3, c.CountInvalid())
}

func TestWrapAndUnwrapIdentity(t *testing.T) {
	data := []float64{1.5, 2.5, 3.5}
	c, err := WrapFloat64(data)
	require.NoError(t, err)
	assert.True(t, c.Wrapped())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 0, c.CountInvalid())

	// the column reads and writes through the caller's memory
	require.NoError(t, c.SetFloat(1, 9.0))
	assert.Equal(t, 9.0, data[1])

	raw, err := c.Unwrap()
	require.NoError(t, err)
	got, ok := raw.([]float64)
	require.True(t, ok)
	assert.Same(t, &data[0], &got[0]) // same backing array, not a copy

	// the column is unusable after unwrap
	assert.Equal(t, 0, c.Len())
}

func TestUnwrapOwnedColumn(t *testing.T) {
	c, err := New(coltype.Int32, 2)
	require.NoError(t, err)
	require.NoError(t, c.SetInt(0, 7))

	raw, err := c.Unwrap()
	require.NoError(t, err)
	vals, ok := raw.([]int32)
	require.True(t, ok)
	assert.Equal(t, []int32{7, 0}, vals)

	_, err = c.Unwrap()
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))
}

func TestWrappedColumnRejectsResize(t *testing.T) {
	c, err := WrapInt64([]int64{1, 2, 3})
	require.NoError(t, err)

	err = c.SetSize(5)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeUnsupportedMode))
	err = c.InsertSegment(1, 2)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeUnsupportedMode))
	err = c.EraseSegment(0, 1)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeUnsupportedMode))
	assert.Equal(t, 3, c.Len())
}

func TestDuplicateIsDeep(t *testing.T) {
	c, err := New(coltype.Float64, 3)
	require.NoError(t, err)
	c.SetName("flux")
	c.SetUnit("adu")
	c.SetFormat("%.2f")
	require.NoError(t, c.SetFloat(0, 1.0))
	require.NoError(t, c.SetFloat(2, 3.0))

	d := c.Duplicate()
	assert.Equal(t, "flux", d.Name())
	assert.Equal(t, "adu", d.Unit())
	assert.Equal(t, "%.2f", d.Format())
	assert.Equal(t, 1, d.CountInvalid())

	require.NoError(t, d.SetFloat(1, 2.0))
	assert.Equal(t, 0, d.CountInvalid())
	assert.Equal(t, 1, c.CountInvalid()) // original untouched

	// duplicating a wrapped column yields an owned one
	w, err := WrapFloat64([]float64{5, 6})
	require.NoError(t, err)
	dw := w.Duplicate()
	assert.False(t, dw.Wrapped())
	require.NoError(t, dw.SetSize(4))
	assert.Equal(t, 4, dw.Len())
}

func TestDuplicateStringSharing(t *testing.T) {
	c, err := New(coltype.String, 2)
	require.NoError(t, err)
	require.NoError(t, c.SetString(0, "alpha"))

	d := c.Duplicate()
	require.NoError(t, d.SetString(0, "beta"))
	got, err := c.StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)
}

func TestExtract(t *testing.T) {
	c, err := New(coltype.Int64, 5)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.SetInt(i, int64(i*10)))
	}
	require.NoError(t, c.SetInvalid(3))

	seg, err := c.Extract(2, 10) // count clamps to the tail
	require.NoError(t, err)
	assert.Equal(t, 3, seg.Len())
	assert.Equal(t, 1, seg.CountInvalid())

	v, err := seg.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)
	inv, err := seg.IsInvalid(1)
	require.NoError(t, err)
	assert.True(t, inv)

	_, err = c.Extract(5, 1)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeAccessOutOfRange))
	_, err = c.Extract(0, 0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))
}

func TestCopyFrom(t *testing.T) {
	c, err := New(coltype.Float64, 4)
	require.NoError(t, err)
	require.NoError(t, c.CopyFrom([]float64{1, 2, 3}))
	assert.Equal(t, 1, c.CountInvalid()) // untouched tail element stays invalid

	v, err := c.Float(2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	err = c.CopyFrom([]float64{1, 2, 3, 4, 5})
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIncompatibleInput))
	err = c.CopyFrom([]int64{1})
	assert.True(t, colerrors.HasCode(err, colerrors.CodeTypeMismatch))
	err = c.CopyFrom(nil)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))
}

func TestSaveKind(t *testing.T) {
	c, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	assert.Equal(t, coltype.Int64, c.SaveKind())

	require.NoError(t, c.SetSaveKind(coltype.Int16))
	assert.Equal(t, coltype.Int16, c.SaveKind())
	// the in-memory kind and the stored values are untouched
	assert.Equal(t, coltype.Int64, c.Kind())

	err = c.SetSaveKind(coltype.Float32)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))
}

func TestDimensions(t *testing.T) {
	c, err := NewArray(coltype.Float64, 2, 6)
	require.NoError(t, err)

	// unshaped: rank 1, axis 0 reports the depth
	assert.Equal(t, 1, c.DimensionCount())
	d, err := c.Dimension(0)
	require.NoError(t, err)
	assert.Equal(t, 6, d)
	assert.Nil(t, c.Dimensions())

	require.NoError(t, c.SetDimensions([]int{2, 3}))
	assert.Equal(t, 2, c.DimensionCount())
	d, err = c.Dimension(1)
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	_, err = c.Dimension(2)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeUnspecified))

	err = c.SetDimensions([]int{2, 4})
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIncompatibleInput))
	err = c.SetDimensions([]int{6})
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))

	s, err := New(coltype.Float64, 4)
	require.NoError(t, err)
	err = s.SetDimensions([]int{2, 2})
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
}

func TestFormatDefaultsPerKind(t *testing.T) {
	c, err := New(coltype.Int32, 1)
	require.NoError(t, err)
	assert.Equal(t, "%d", c.Format())

	c.SetFormat("%08d")
	assert.Equal(t, "%08d", c.Format())
}

func TestNilColumnOperations(t *testing.T) {
	var c *Column
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.CountInvalid())
	assert.Nil(t, c.Duplicate())

	_, err := c.Int(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))
	err = c.SetSize(3)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))
	_, err = c.CastTo(coltype.Float64)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))
	_, err = c.Mean()
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))
}

func TestDeleteKeepStrings(t *testing.T) {
	c, err := New(coltype.String, 2)
	require.NoError(t, err)
	require.NoError(t, c.SetString(0, "keep"))

	vals, err := c.DeleteKeepStrings()
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, "keep", *vals[0])
	assert.Nil(t, vals[1])
	assert.Equal(t, 0, c.Len())
}
