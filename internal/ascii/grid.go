package ascii

import (
	"math"
	"strings"
)

// GridSize returns the glyph grid for a w x h pixel area. A non-positive
// dimension or metric yields a zero grid.
func GridSize(width, height int, fontSize, charAspect float64) (cols, rows int) {
	if width <= 0 || height <= 0 || fontSize <= 0 || charAspect <= 0 {
		return 0, 0
	}
	cols = int(math.Floor(float64(width) / (fontSize * charAspect)))
	rows = int(math.Floor(float64(height) / fontSize))
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	return cols, rows
}

// Grid is one frame of glyphs.
type Grid struct {
	Cols  int
	Rows  int
	Lines []string
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool {
	return g.Cols == 0 || g.Rows == 0
}

// Text joins the rows with line breaks.
func (g Grid) Text() string {
	return strings.Join(g.Lines, "\n")
}

// Rune returns the glyph at (col, row), or a space outside the grid.
func (g Grid) Rune(col, row int) rune {
	if row < 0 || row >= len(g.Lines) || col < 0 {
		return ' '
	}
	i := 0
	for _, r := range g.Lines[row] {
		if i == col {
			return r
		}
		i++
	}
	return ' '
}

// Converter turns read-back pixels into glyph rows.
type Converter struct {
	Ramp Ramp
	line []rune
}

// Convert maps a cols x rows RGBA buffer, top row first, to a Grid. A buffer
// whose size does not match the grid produces an empty grid.
func (c *Converter) Convert(pix []byte, cols, rows int) Grid {
	if cols <= 0 || rows <= 0 || len(pix) != cols*rows*4 || c.Ramp.Len() < 2 {
		return Grid{}
	}
	if cap(c.line) < cols {
		c.line = make([]rune, cols)
	}
	line := c.line[:cols]
	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		row := pix[y*cols*4 : (y+1)*cols*4]
		for x := 0; x < cols; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			line[x] = c.Ramp.Glyph(p[0], p[1], p[2], p[3])
		}
		lines[y] = string(line)
	}
	return Grid{Cols: cols, Rows: rows, Lines: lines}
}
