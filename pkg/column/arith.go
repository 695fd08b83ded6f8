package column

import (
	"math"
	"math/cmplx"

	"github.com/astropipe/colcore/pkg/colerrors"
)

type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
)

// evaluation domain of a binary operation: the wider of the two operand
// kinds. The result is always narrowed into the receiver's kind.
type domain int

const (
	domInt domain = iota
	domFloat
	domComplex
)

func (c *Column) checkArith() error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || !c.kind.IsNumeric() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"arithmetic unsupported for %s columns", c.kind)
	}
	return nil
}

// Add adds from's elements to the column in place.
func (c *Column) Add(from *Column) error { return c.binaryOp(from, opAdd) }

// Subtract subtracts from's elements from the column in place.
func (c *Column) Subtract(from *Column) error { return c.binaryOp(from, opSub) }

// Multiply multiplies the column by from's elements in place.
func (c *Column) Multiply(from *Column) error { return c.binaryOp(from, opMul) }

// Divide divides the column by from's elements in place. An element whose
// divisor is exactly zero is marked invalid regardless of prior validity;
// no error is raised for it. This is a domain rule, distinct from the hard
// DivisionByZero error of DivideScalar.
func (c *Column) Divide(from *Column) error { return c.binaryOp(from, opDiv) }

// binaryOp evaluates an elementwise operation at the wider of the two
// operand kinds and narrows the result into the receiver's kind. A result
// element is invalid when either operand was invalid at that index. Three
// code paths exist purely for performance: both operands fully valid, one
// operand fully invalid, and the general masked case.
func (c *Column) binaryOp(from *Column, op binOp) error {
	if err := c.checkArith(); err != nil {
		return err
	}
	if from == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil operand column")
	}
	if err := from.checkArith(); err != nil {
		return err
	}
	if from.Len() != c.Len() {
		return colerrors.Newf(colerrors.CodeIncompatibleInput,
			"operand length %d does not match %d", from.Len(), c.Len())
	}
	n := c.Len()
	if n == 0 {
		return nil
	}

	dom := domInt
	if c.kind.IsFloat() || from.kind.IsFloat() {
		dom = domFloat
	}
	if c.kind.IsComplex() || from.kind.IsComplex() {
		dom = domComplex
	}

	dst := c.values.(numeric)
	src := from.values.(numeric)

	if op == opDiv {
		// zero divisors invalidate the target element up front
		for i := 0; i < n; i++ {
			if src.complexAt(i) == 0 {
				if err := c.SetInvalid(i); err != nil {
					return err
				}
			}
		}
	}

	if from.nullCount == n {
		return c.FillInvalid(0, n)
	}
	if c.nullCount == n {
		return nil
	}

	eval := func(i int) {
		switch dom {
		case domInt:
			a, b := dst.intAt(i), src.intAt(i)
			switch op {
			case opAdd:
				dst.setIntAt(i, a+b)
			case opSub:
				dst.setIntAt(i, a-b)
			case opMul:
				dst.setIntAt(i, a*b)
			case opDiv:
				dst.setIntAt(i, a/b)
			}
		case domFloat:
			a, b := dst.floatAt(i), src.floatAt(i)
			switch op {
			case opAdd:
				dst.setFloatAt(i, a+b)
			case opSub:
				dst.setFloatAt(i, a-b)
			case opMul:
				dst.setFloatAt(i, a*b)
			case opDiv:
				dst.setFloatAt(i, a/b)
			}
		case domComplex:
			a, b := dst.complexAt(i), src.complexAt(i)
			switch op {
			case opAdd:
				dst.setComplexAt(i, a+b)
			case opSub:
				dst.setComplexAt(i, a-b)
			case opMul:
				dst.setComplexAt(i, a*b)
			case opDiv:
				dst.setComplexAt(i, a/b)
			}
		}
	}

	if c.nullCount == 0 && from.nullCount == 0 {
		// fast path: no per-element branching
		for i := 0; i < n; i++ {
			eval(i)
		}
		return nil
	}

	for i := 0; i < n; i++ {
		if c.invalidAt(i) {
			continue
		}
		if from.invalidAt(i) {
			if err := c.SetInvalid(i); err != nil {
				return err
			}
			continue
		}
		eval(i)
	}
	return nil
}

// scalarOp applies one of the four basic operators with a constant operand.
// Real kinds evaluate in float64 (the scalar is the wider kind) and narrow
// into the column's kind; complex kinds evaluate in complex128.
func (c *Column) scalarOp(op binOp, operand complex128) error {
	if err := c.checkArith(); err != nil {
		return err
	}
	if op == opDiv && operand == 0 {
		return colerrors.New(colerrors.CodeDivisionByZero,
			"scalar division by zero")
	}
	n := c.Len()
	dst := c.values.(numeric)
	useComplex := c.kind.IsComplex()
	re := real(operand)

	eval := func(i int) {
		if useComplex {
			a := dst.complexAt(i)
			switch op {
			case opAdd:
				dst.setComplexAt(i, a+operand)
			case opSub:
				dst.setComplexAt(i, a-operand)
			case opMul:
				dst.setComplexAt(i, a*operand)
			case opDiv:
				dst.setComplexAt(i, a/operand)
			}
			return
		}
		a := dst.floatAt(i)
		switch op {
		case opAdd:
			dst.setFloatAt(i, a+re)
		case opSub:
			dst.setFloatAt(i, a-re)
		case opMul:
			dst.setFloatAt(i, a*re)
		case opDiv:
			dst.setFloatAt(i, a/re)
		}
	}

	if c.nullCount == 0 {
		for i := 0; i < n; i++ {
			eval(i)
		}
		return nil
	}
	for i := 0; i < n; i++ {
		if !c.invalidAt(i) {
			eval(i)
		}
	}
	return nil
}

// AddScalar adds a scalar to every valid element in place.
func (c *Column) AddScalar(v float64) error { return c.scalarOp(opAdd, complex(v, 0)) }

// SubtractScalar subtracts a scalar from every valid element in place.
func (c *Column) SubtractScalar(v float64) error { return c.scalarOp(opSub, complex(v, 0)) }

// MultiplyScalar multiplies every valid element by a scalar in place.
func (c *Column) MultiplyScalar(v float64) error { return c.scalarOp(opMul, complex(v, 0)) }

// DivideScalar divides every valid element by a scalar in place. A literal
// zero divisor is a hard DivisionByZero error.
func (c *Column) DivideScalar(v float64) error { return c.scalarOp(opDiv, complex(v, 0)) }

// checkComplexScalar guards the complex-scalar variants.
func (c *Column) checkComplexScalar() error {
	if err := c.checkArith(); err != nil {
		return err
	}
	if !c.kind.IsComplex() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"complex scalar on %s column", c.kind)
	}
	return nil
}

// AddScalarComplex adds a complex scalar to a complex column in place.
func (c *Column) AddScalarComplex(v complex128) error {
	if err := c.checkComplexScalar(); err != nil {
		return err
	}
	return c.scalarOp(opAdd, v)
}

// SubtractScalarComplex subtracts a complex scalar from a complex column in
// place.
func (c *Column) SubtractScalarComplex(v complex128) error {
	if err := c.checkComplexScalar(); err != nil {
		return err
	}
	return c.scalarOp(opSub, v)
}

// MultiplyScalarComplex multiplies a complex column by a complex scalar in
// place.
func (c *Column) MultiplyScalarComplex(v complex128) error {
	if err := c.checkComplexScalar(); err != nil {
		return err
	}
	return c.scalarOp(opMul, v)
}

// DivideScalarComplex divides a complex column by a complex scalar in
// place; zero is a hard DivisionByZero error.
func (c *Column) DivideScalarComplex(v complex128) error {
	if err := c.checkComplexScalar(); err != nil {
		return err
	}
	return c.scalarOp(opDiv, v)
}

// applyUnary maps every valid element through f (real kinds) or fc
// (complex kinds). A domain error or non-finite result converts the
// element to invalid instead of propagating an error. Integer kinds round
// the result; this deliberately differs from the truncating narrowing of
// casts.
func (c *Column) applyUnary(f func(float64) float64, fc func(complex128) complex128) error {
	n := c.Len()
	dst := c.values.(numeric)
	round := c.kind.IsInteger()

	for i := 0; i < n; i++ {
		if c.invalidAt(i) {
			continue
		}
		if c.kind.IsComplex() {
			v := fc(dst.complexAt(i))
			if !isFiniteComplex(v) {
				if err := c.SetInvalid(i); err != nil {
					return err
				}
				continue
			}
			dst.setComplexAt(i, v)
			continue
		}
		v := f(dst.floatAt(i))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if err := c.SetInvalid(i); err != nil {
				return err
			}
			continue
		}
		if round {
			dst.setIntAt(i, int64(math.Round(v)))
		} else {
			dst.setFloatAt(i, v)
		}
	}
	return nil
}

func isFiniteComplex(v complex128) bool {
	return !math.IsNaN(real(v)) && !math.IsInf(real(v), 0) &&
		!math.IsNaN(imag(v)) && !math.IsInf(imag(v), 0)
}

// Exponential raises a fixed base to each valid element in place.
// Elements producing a domain error or overflow become invalid.
func (c *Column) Exponential(base float64) error {
	if err := c.checkArith(); err != nil {
		return err
	}
	return c.applyUnary(
		func(x float64) float64 { return math.Pow(base, x) },
		func(v complex128) complex128 { return cmplx.Pow(complex(base, 0), v) },
	)
}

// Logarithm replaces each valid element with its logarithm to a fixed
// base in place. The base must be positive and different from 1. Elements
// outside the domain (x <= 0, or 0 for complex kinds) become invalid.
func (c *Column) Logarithm(base float64) error {
	if err := c.checkArith(); err != nil {
		return err
	}
	if base <= 0 || base == 1 {
		return colerrors.Newf(colerrors.CodeIllegalInput,
			"illegal logarithm base %g", base)
	}
	lb := math.Log(base)
	return c.applyUnary(
		func(x float64) float64 {
			if x <= 0 {
				return math.NaN()
			}
			return math.Log(x) / lb
		},
		func(v complex128) complex128 {
			if v == 0 {
				return cmplx.Inf()
			}
			return cmplx.Log(v) / complex(lb, 0)
		},
	)
}

// Power raises each valid element to a fixed real exponent in place.
// Domain errors, such as a negative base with a non-integer exponent,
// convert the element to invalid.
func (c *Column) Power(exponent float64) error {
	if err := c.checkArith(); err != nil {
		return err
	}
	return c.applyUnary(
		func(x float64) float64 { return math.Pow(x, exponent) },
		func(v complex128) complex128 { return cmplx.Pow(v, complex(exponent, 0)) },
	)
}

// PowerComplex raises each valid element of a complex column to a fixed
// complex exponent in place.
func (c *Column) PowerComplex(exponent complex128) error {
	if err := c.checkComplexScalar(); err != nil {
		return err
	}
	return c.applyUnary(nil,
		func(v complex128) complex128 { return cmplx.Pow(v, exponent) },
	)
}

// Absolute replaces each valid element with its absolute value in place.
// Complex kinds are rejected; their modulus is not representable in the
// same kind without losing the phase.
func (c *Column) Absolute() error {
	if err := c.checkArith(); err != nil {
		return err
	}
	if c.kind.IsComplex() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"absolute value unsupported for %s columns", c.kind)
	}
	dst := c.values.(numeric)
	if c.kind.IsInteger() {
		// stay in the integer domain to keep full 64-bit precision
		for i := 0; i < c.Len(); i++ {
			if c.invalidAt(i) {
				continue
			}
			if v := dst.intAt(i); v < 0 {
				dst.setIntAt(i, -v)
			}
		}
		return nil
	}
	for i := 0; i < c.Len(); i++ {
		if !c.invalidAt(i) {
			dst.setFloatAt(i, math.Abs(dst.floatAt(i)))
		}
	}
	return nil
}

// Conjugate replaces each valid element with its complex conjugate in
// place; a no-op on real kinds.
func (c *Column) Conjugate() error {
	if err := c.checkArith(); err != nil {
		return err
	}
	if !c.kind.IsComplex() {
		return nil
	}
	dst := c.values.(numeric)
	for i := 0; i < c.Len(); i++ {
		if !c.invalidAt(i) {
			dst.setComplexAt(i, cmplx.Conj(dst.complexAt(i)))
		}
	}
	return nil
}
