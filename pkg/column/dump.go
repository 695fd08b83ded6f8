package column

import (
	"fmt"
	"io"

	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/strpool"
)

// InvalidPlaceholder is printed in place of invalid elements.
const InvalidPlaceholder = "-"

// Dump writes a human-readable rendering of count elements starting at
// start, preceded by a short header. Elements are rendered with the
// column's format string; invalid elements print the placeholder.
func (c *Column) Dump(w io.Writer, start, count int) error {
	if c == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil column")
	}
	if w == nil {
		return colerrors.New(colerrors.CodeNullInput, "nil writer")
	}
	if err := c.checkRange(start, count); err != nil {
		return err
	}

	b := strpool.GetBuilder()
	defer strpool.PutBuilder(b)

	name := c.name
	if name == "" {
		name = "<unnamed>"
	}
	b.WriteString(strpool.Sprintf("column %s kind=%s length=%d invalid=%d",
		name, c.kind, c.Len(), c.CountInvalid()))
	if c.unit != "" {
		b.WriteString(strpool.Sprintf(" unit=%s", c.unit))
	}
	if c.format != "" {
		b.WriteString(strpool.Sprintf(" format=%s", c.format))
	}
	b.WriteByte('\n')

	for i := start; i < start+count; i++ {
		b.WriteString(strpool.Sprintf("%6d  ", i))
		b.WriteString(c.formatElem(i))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatElem renders one element with the column's format string.
func (c *Column) formatElem(i int) string {
	if c.invalidAt(i) {
		return InvalidPlaceholder
	}
	format := c.Format()
	switch b := c.values.(type) {
	case *strbuf:
		return fmt.Sprintf(format, *b.vals[i])
	case *arrbuf:
		return b.vals[i].formatArray()
	}
	buf := c.values.(numeric)
	switch {
	case c.kind.IsComplex():
		return fmt.Sprintf(format, buf.complexAt(i))
	case c.kind.IsFloat():
		return fmt.Sprintf(format, buf.floatAt(i))
	default:
		return fmt.Sprintf(format, buf.intAt(i))
	}
}

// formatArray renders a sub-column as a bracketed element list.
func (c *Column) formatArray() string {
	b := strpool.GetBuilder()
	defer strpool.PutBuilder(b)
	b.WriteByte('[')
	for i := 0; i < c.Len(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.formatElem(i))
	}
	b.WriteByte(']')
	return strpool.Clone(b.String())
}
