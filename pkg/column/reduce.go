package column

import (
	"math"
	"sort"

	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/pool"
)

// checkReduce guards the real-valued reductions. Complex kinds have no
// total order and no single real mean, so they are rejected here;
// MeanComplex covers the one reduction that generalizes.
func (c *Column) checkReduce() error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if c.kind.IsArray() || !c.kind.IsNumeric() || c.kind.IsComplex() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"reduction unsupported for %s columns", c.kind)
	}
	if c.Len()-c.CountInvalid() == 0 {
		return colerrors.New(colerrors.CodeDataNotFound,
			"column has no valid elements")
	}
	return nil
}

// Mean returns the arithmetic mean of the valid elements.
func (c *Column) Mean() (float64, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	buf := c.values.(numeric)
	sum := 0.0
	count := 0
	for i := 0; i < c.Len(); i++ {
		if c.invalidAt(i) {
			continue
		}
		sum += buf.floatAt(i)
		count++
	}
	return sum / float64(count), nil
}

// MeanComplex returns the mean of a complex column's valid elements.
func (c *Column) MeanComplex() (complex128, error) {
	if c == nil {
		return 0, colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if !c.kind.IsComplex() {
		return 0, colerrors.Newf(colerrors.CodeInvalidType,
			"complex mean requires a complex kind, have %s", c.kind)
	}
	if c.Len()-c.CountInvalid() == 0 {
		return 0, colerrors.New(colerrors.CodeDataNotFound,
			"column has no valid elements")
	}
	buf := c.values.(numeric)
	sum := complex128(0)
	count := 0
	for i := 0; i < c.Len(); i++ {
		if c.invalidAt(i) {
			continue
		}
		sum += buf.complexAt(i)
		count++
	}
	return sum / complex(float64(count), 0), nil
}

// Stdev returns the population standard deviation of the valid elements,
// computed with Welford's single-pass update. A single valid element
// yields zero.
func (c *Column) Stdev() (float64, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	buf := c.values.(numeric)
	n := 0.0
	mean := 0.0
	m2 := 0.0
	for i := 0; i < c.Len(); i++ {
		if c.invalidAt(i) {
			continue
		}
		x := buf.floatAt(i)
		n++
		d := x - mean
		mean += d / n
		m2 += d * (x - mean)
	}
	return math.Sqrt(m2 / n), nil
}

// Median returns the median of the valid elements. An even count yields
// the mean of the two central order statistics.
func (c *Column) Median() (float64, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	scratch := pool.FloatSlice.Get()
	defer pool.FloatSlice.Put(scratch)
	vals := *scratch
	buf := c.values.(numeric)
	for i := 0; i < c.Len(); i++ {
		if !c.invalidAt(i) {
			vals = append(vals, buf.floatAt(i))
		}
	}
	*scratch = vals
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2], nil
	}
	return (vals[n/2-1] + vals[n/2]) / 2, nil
}

// Min returns the smallest valid element.
func (c *Column) Min() (float64, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	_, v := c.scanMin()
	return v, nil
}

// Max returns the largest valid element.
func (c *Column) Max() (float64, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	_, v := c.scanMax()
	return v, nil
}

// ArgMin returns the index of the smallest valid element; ties go to the
// first occurrence.
func (c *Column) ArgMin() (int, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	i, _ := c.scanMin()
	return i, nil
}

// ArgMax returns the index of the largest valid element; ties go to the
// first occurrence.
func (c *Column) ArgMax() (int, error) {
	if err := c.checkReduce(); err != nil {
		return 0, err
	}
	i, _ := c.scanMax()
	return i, nil
}

func (c *Column) scanMin() (int, float64) {
	buf := c.values.(numeric)
	best := -1
	bestVal := 0.0
	for i := 0; i < c.Len(); i++ {
		if c.invalidAt(i) {
			continue
		}
		v := buf.floatAt(i)
		if best < 0 || v < bestVal {
			best, bestVal = i, v
		}
	}
	return best, bestVal
}

func (c *Column) scanMax() (int, float64) {
	buf := c.values.(numeric)
	best := -1
	bestVal := 0.0
	for i := 0; i < c.Len(); i++ {
		if c.invalidAt(i) {
			continue
		}
		v := buf.floatAt(i)
		if best < 0 || v > bestVal {
			best, bestVal = i, v
		}
	}
	return best, bestVal
}
