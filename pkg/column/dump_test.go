package column

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/coltype"
)

func TestDumpHeaderAndRows(t *testing.T) {
	c, err := New(coltype.Float64, 3)
	require.NoError(t, err)
	c.SetName("flux")
	c.SetUnit("adu")
	require.NoError(t, c.SetFloat(0, 1.5))
	require.NoError(t, c.SetFloat(2, 3.5))

	var sb strings.Builder
	require.NoError(t, c.Dump(&sb, 0, 3))
	out := sb.String()

	assert.Contains(t, out, "column flux")
	assert.Contains(t, out, "kind=float64")
	assert.Contains(t, out, "length=3")
	assert.Contains(t, out, "invalid=1")
	assert.Contains(t, out, "unit=adu")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "3.5")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4) // header plus three rows
	assert.True(t, strings.HasSuffix(lines[2], InvalidPlaceholder))
}

func TestDumpWindow(t *testing.T) {
	c, err := New(coltype.Int64, 5)
	require.NoError(t, err)
	fillInts(t, c, 10, 20, 30, 40, 50)

	var sb strings.Builder
	require.NoError(t, c.Dump(&sb, 1, 2))
	out := sb.String()

	assert.Contains(t, out, "20")
	assert.Contains(t, out, "30")
	assert.NotContains(t, out, "40")

	err = c.Dump(&sb, 4, 3)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeAccessOutOfRange))
	err = c.Dump(nil, 0, 1)
	assert.True(t, colerrors.HasCode(err, colerrors.CodeNullInput))
}

func TestDumpHonorsFormat(t *testing.T) {
	c, err := New(coltype.Float64, 1)
	require.NoError(t, err)
	require.NoError(t, c.SetFloat(0, 2.0/3.0))
	c.SetFormat("%.2f")

	var sb strings.Builder
	require.NoError(t, c.Dump(&sb, 0, 1))
	assert.Contains(t, sb.String(), "0.67")
}

func TestDumpStringsAndArrays(t *testing.T) {
	s, err := New(coltype.String, 2)
	require.NoError(t, err)
	require.NoError(t, s.SetString(0, "NGC 5128"))

	var sb strings.Builder
	require.NoError(t, s.Dump(&sb, 0, 2))
	assert.Contains(t, sb.String(), "NGC 5128")

	a, err := NewArray(coltype.Int32, 2, 2)
	require.NoError(t, err)
	sub, err := New(coltype.Int32, 2)
	require.NoError(t, err)
	require.NoError(t, sub.SetInt(0, 7))
	require.NoError(t, sub.SetInt(1, 8))
	require.NoError(t, a.SetArray(0, sub))

	sb.Reset()
	require.NoError(t, a.Dump(&sb, 0, 2))
	assert.Contains(t, sb.String(), "[7, 8]")
}

func TestDumpUnnamedColumn(t *testing.T) {
	c, err := New(coltype.Int64, 1)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, c.Dump(&sb, 0, 1))
	assert.Contains(t, sb.String(), "<unnamed>")
}
