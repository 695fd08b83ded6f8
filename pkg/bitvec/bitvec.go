// Package bitvec implements the word-packed bitmap backing the column
// engine's validity tracking: one bit per element, 64 bits per word.
package bitvec

import "math/bits"

const wordBits = 64

// Vector is a fixed-length sequence of bits. The zero value is an empty
// vector; use New for a sized one. Bits beyond Len are always zero.
type Vector struct {
	words []uint64
	n     int
}

// New creates an all-zero vector of n bits.
func New(n int) *Vector {
	if n < 0 {
		n = 0
	}
	return &Vector{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Len returns the number of bits.
func (v *Vector) Len() int { return v.n }

// Test reports whether bit i is set. i must be in [0, Len).
func (v *Vector) Test(i int) bool {
	return v.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Set sets bit i.
func (v *Vector) Set(i int) {
	v.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Clear clears bit i.
func (v *Vector) Clear(i int) {
	v.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
}

// SetRange sets count bits starting at start and returns the number of bits
// that were previously clear.
func (v *Vector) SetRange(start, count int) int {
	flipped := 0
	for i := start; i < start+count; i++ {
		if !v.Test(i) {
			v.Set(i)
			flipped++
		}
	}
	return flipped
}

// ClearRange clears count bits starting at start and returns the number of
// bits that were previously set.
func (v *Vector) ClearRange(start, count int) int {
	flipped := 0
	for i := start; i < start+count; i++ {
		if v.Test(i) {
			v.Clear(i)
			flipped++
		}
	}
	return flipped
}

// Count returns the number of set bits.
func (v *Vector) Count() int {
	total := 0
	for _, w := range v.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Resize changes the length to n, preserving the common prefix. Bits gained
// by growth are zero.
func (v *Vector) Resize(n int) {
	if n < 0 {
		n = 0
	}
	nw := (n + wordBits - 1) / wordBits
	if nw > len(v.words) {
		grown := make([]uint64, nw)
		copy(grown, v.words)
		v.words = grown
	} else {
		v.words = v.words[:nw]
	}
	v.n = n
	v.clearTail()
}

// Insert opens a gap of count bits at position at, shifting the tail up. The
// new bits are set when set is true, clear otherwise.
func (v *Vector) Insert(at, count int, set bool) {
	out := New(v.n + count)
	for i := 0; i < at; i++ {
		if v.Test(i) {
			out.Set(i)
		}
	}
	if set {
		out.SetRange(at, count)
	}
	for i := at; i < v.n; i++ {
		if v.Test(i) {
			out.Set(i + count)
		}
	}
	*v = *out
}

// Erase removes count bits at position at, shifting the tail down.
func (v *Vector) Erase(at, count int) {
	out := New(v.n - count)
	for i := 0; i < at; i++ {
		if v.Test(i) {
			out.Set(i)
		}
	}
	for i := at + count; i < v.n; i++ {
		if v.Test(i) {
			out.Set(i - count)
		}
	}
	*v = *out
}

// Compact removes every bit whose drop flag is true. len(drop) must equal
// Len.
func (v *Vector) Compact(drop []bool) {
	kept := 0
	for _, d := range drop {
		if !d {
			kept++
		}
	}
	out := New(kept)
	j := 0
	for i := 0; i < v.n; i++ {
		if drop[i] {
			continue
		}
		if v.Test(i) {
			out.Set(j)
		}
		j++
	}
	*v = *out
}

// Clone returns an independent copy.
func (v *Vector) Clone() *Vector {
	out := &Vector{
		words: make([]uint64, len(v.words)),
		n:     v.n,
	}
	copy(out.words, v.words)
	return out
}

// clearTail zeroes the unused bits of the last word so Count stays exact.
func (v *Vector) clearTail() {
	if rem := v.n % wordBits; rem != 0 && len(v.words) > 0 {
		v.words[len(v.words)-1] &= (1 << uint(rem)) - 1
	}
}
