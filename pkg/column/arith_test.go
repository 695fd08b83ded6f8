package column

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/coltype"
)

func TestAddPropagatesInvalid(t *testing.T) {
	a, err := New(coltype.Int64, 3)
	require.NoError(t, err)
	fillInts(t, a, 1, 2, 3)

	b, err := New(coltype.Int64, 3)
	require.NoError(t, err)
	require.NoError(t, b.SetInt(0, 10))
	require.NoError(t, b.SetInt(2, 30))
	// b element 1 stays invalid

	require.NoError(t, a.Add(b))
	v, err := a.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(11), v)
	inv, err := a.IsInvalid(1)
	require.NoError(t, err)
	assert.True(t, inv)
	v, err = a.Int(2)
	require.NoError(t, err)
	assert.Equal(t, int64(33), v)

	// the operand is unchanged
	assert.Equal(t, 1, b.CountInvalid())
}

func TestIntegerDivisionStaysExact(t *testing.T) {
	a, err := New(coltype.Int64, 3)
	require.NoError(t, err)
	fillInts(t, a, 4, 0, 9)

	b, err := New(coltype.Int64, 3)
	require.NoError(t, err)
	fillInts(t, b, 2, 0, 3)

	require.NoError(t, a.Divide(b))

	v, err := a.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	inv, err := a.IsInvalid(1)
	require.NoError(t, err)
	assert.True(t, inv) // zero divisor marks the element invalid
	v, err = a.Int(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	assert.Equal(t, 1, a.CountInvalid())
}

func TestIntegerDivisionTruncates(t *testing.T) {
	a, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	fillInts(t, a, 7, -7)

	b, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	fillInts(t, b, 2, 2)

	require.NoError(t, a.Divide(b))
	v, err := a.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	v, err = a.Int(1)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), v)
}

func TestMixedKindUsesFloatDomain(t *testing.T) {
	a, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	fillInts(t, a, 7, 9)

	b, err := New(coltype.Float64, 2)
	require.NoError(t, err)
	require.NoError(t, b.SetFloat(0, 2))
	require.NoError(t, b.SetFloat(1, 2))

	// evaluation runs in float64, then narrows into the int64 receiver
	require.NoError(t, a.Divide(b))
	v, err := a.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	v, err = a.Int(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestComplexArithmetic(t *testing.T) {
	a, err := New(coltype.Complex128, 2)
	require.NoError(t, err)
	require.NoError(t, a.SetComplex(0, complex(1, 2)))
	require.NoError(t, a.SetComplex(1, complex(3, -1)))

	b, err := New(coltype.Complex128, 2)
	require.NoError(t, err)
	require.NoError(t, b.SetComplex(0, complex(0, 1)))
	require.NoError(t, b.SetComplex(1, complex(2, 0)))

	require.NoError(t, a.Multiply(b))
	z, err := a.Complex(0)
	require.NoError(t, err)
	assert.Equal(t, complex(-2, 1), z)
	z, err = a.Complex(1)
	require.NoError(t, err)
	assert.Equal(t, complex(6, -2), z)
}

func TestBinaryOpMismatches(t *testing.T) {
	a, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	short, err := New(coltype.Int64, 1)
	require.NoError(t, err)

	err = a.Add(short)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIncompatibleInput))
	err = a.Add(nil)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))

	s, err := New(coltype.String, 2)
	require.NoError(t, err)
	err = a.Add(s)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
	err = s.Add(a)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
}

func TestBinaryOpAllInvalidOperand(t *testing.T) {
	a, err := New(coltype.Float64, 3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, a.SetFloat(i, float64(i)))
	}
	b, err := New(coltype.Float64, 3)
	require.NoError(t, err) // all invalid

	require.NoError(t, a.Add(b))
	assert.Equal(t, 3, a.CountInvalid())
	assert.Nil(t, a.nulls)
}

func TestScalarOps(t *testing.T) {
	c, err := New(coltype.Float64, 3)
	require.NoError(t, err)
	for i, v := range []float64{1, 2, 3} {
		require.NoError(t, c.SetFloat(i, v))
	}
	require.NoError(t, c.SetInvalid(1))

	require.NoError(t, c.AddScalar(10))
	require.NoError(t, c.MultiplyScalar(2))
	require.NoError(t, c.SubtractScalar(2))
	require.NoError(t, c.DivideScalar(4))

	v, err := c.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
	v, err = c.Float(2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	// the invalid element was skipped throughout
	inv, err := c.IsInvalid(1)
	require.NoError(t, err)
	assert.True(t, inv)
}

func TestScalarOpsOnIntegerTruncate(t *testing.T) {
	c, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	fillInts(t, c, 7, 8)

	require.NoError(t, c.DivideScalar(2))
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
	v, err = c.Int(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)
}

func TestDivideScalarZero(t *testing.T) {
	c, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetFloat(0, 1))

	err = c.DivideScalar(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeDivisionByZero))
	// the column is untouched on error
	v, err := c.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestComplexScalarOps(t *testing.T) {
	c, err := New(coltype.Complex128, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetComplex(0, complex(2, 3)))

	require.NoError(t, c.MultiplyScalarComplex(complex(0, 1)))
	z, err := c.Complex(0)
	require.NoError(t, err)
	assert.Equal(t, complex(-3, 2), z)

	err = c.DivideScalarComplex(0)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeDivisionByZero))

	r, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	err = r.AddScalarComplex(complex(1, 1))
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
}

func TestExponential(t *testing.T) {
	c, err := New(coltype.Float64, 3)
	require.NoError(t, err)
	for i, v := range []float64{0, 1, 3} {
		require.NoError(t, c.SetFloat(i, v))
	}

	require.NoError(t, c.Exponential(2))
	want := []float64{1, 2, 8}
	for i, w := range want {
		v, err := c.Float(i)
		require.NoError(t, err)
		assert.InDelta(t, w, v, 1e-12, "element %d", i)
	}
}

func TestExponentialOverflowBecomesInvalid(t *testing.T) {
	c, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetFloat(0, 1e6))

	require.NoError(t, c.Exponential(10))
	inv, err := c.IsInvalid(0)
	require.NoError(t, err)
	assert.True(t, inv)
}

func TestLogarithm(t *testing.T) {
	c, err := New(coltype.Float64, 4)
	require.NoError(t, err)
	for i, v := range []float64{1, 10, 1000, -5} {
		require.NoError(t, c.SetFloat(i, v))
	}

	require.NoError(t, c.Logarithm(10))
	v, err := c.Float(0)
	require.NoError(t, err)
	assert.InDelta(t, 0, v, 1e-12)
	v, err = c.Float(1)
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-12)
	v, err = c.Float(2)
	require.NoError(t, err)
	assert.InDelta(t, 3, v, 1e-12)
	// out of domain converts to invalid
	inv, err := c.IsInvalid(3)
	require.NoError(t, err)
	assert.True(t, inv)

	err = c.Logarithm(1)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))
	err = c.Logarithm(-2)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeIllegalInput))
}

func TestPower(t *testing.T) {
	c, err := New(coltype.Float64, 3)
	require.NoError(t, err)
	for i, v := range []float64{2, 9, -4} {
		require.NoError(t, c.SetFloat(i, v))
	}

	require.NoError(t, c.Power(0.5))
	v, err := c.Float(0)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, v, 1e-12)
	v, err = c.Float(1)
	require.NoError(t, err)
	assert.InDelta(t, 3, v, 1e-12)
	// negative base with fractional exponent is out of domain
	inv, err := c.IsInvalid(2)
	require.NoError(t, err)
	assert.True(t, inv)
}

func TestPowerOnIntegerRounds(t *testing.T) {
	c, err := New(coltype.Int64, 2)
	require.NoError(t, err)
	fillInts(t, c, 2, 5)

	require.NoError(t, c.Power(0.5))
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v) // sqrt(2) = 1.414 rounds to 1
	v, err = c.Int(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v) // sqrt(5) = 2.236 rounds to 2
}

func TestPowerComplex(t *testing.T) {
	c, err := New(coltype.Complex128, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetComplex(0, complex(0, 1)))

	require.NoError(t, c.PowerComplex(complex(2, 0)))
	z, err := c.Complex(0)
	require.NoError(t, err)
	assert.InDelta(t, -1, real(z), 1e-12)
	assert.InDelta(t, 0, imag(z), 1e-12)

	r, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	err = r.PowerComplex(complex(2, 0))
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
}

func TestAbsolute(t *testing.T) {
	c, err := New(coltype.Int64, 3)
	require.NoError(t, err)
	fillInts(t, c, -5, 0, 7)

	require.NoError(t, c.Absolute())
	want := []int64{5, 0, 7}
	for i, w := range want {
		v, err := c.Int(i)
		require.NoError(t, err)
		assert.Equal(t, w, v)
	}

	f, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	require.NoError(t, f.SetFloat(0, -2.5))
	require.NoError(t, f.Absolute())
	v, err := f.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	z, err := New(coltype.Complex128, 1)
	require.NoError(t, err)
	err = z.Absolute()
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
}

func TestConjugate(t *testing.T) {
	c, err := New(coltype.Complex128, 2)
	require.NoError(t, err)
	require.NoError(t, c.SetComplex(0, complex(1, 2)))
	require.NoError(t, c.SetComplex(1, complex(3, -4)))

	require.NoError(t, c.Conjugate())
	z, err := c.Complex(0)
	require.NoError(t, err)
	assert.Equal(t, complex(1, -2), z)
	z, err = c.Complex(1)
	require.NoError(t, err)
	assert.Equal(t, complex(3, 4), z)

	// real kinds: a no-op, not an error
	r, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	require.NoError(t, r.SetFloat(0, 5))
	require.NoError(t, r.Conjugate())
	v, err := r.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	s, err := New(coltype.String, 1)
	require.NoError(t, err)
	err = s.Conjugate()
	assert.True(t, colerrors.HasCode(err, colerrors.CodeInvalidType))
}
