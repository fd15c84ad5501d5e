package app

import (
	"image"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/guidoenr/backdrop/internal/ascii"
	"github.com/guidoenr/backdrop/internal/effect"
)

// halfBlock shows the top pixel as foreground and the bottom one as background.
const halfBlock = '▀'

// Cell is one terminal character with its colours.
type Cell struct {
	Rune rune
	FG   colorful.Color
	BG   colorful.Color
}

// colorMode selects how cells are encoded.
type colorMode int

const (
	colorNone colorMode = iota
	color256
	colorTrue
)

var (
	resetANSI       = "\x1b[0m"
	precomputedANSI [256]string
	precomputedBG   [256]string
)

func init() {
	for i := range precomputedANSI {
		precomputedANSI[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
		precomputedBG[i] = "\x1b[48;5;" + strconv.Itoa(i) + "m"
	}
}

// composer turns frames into cell grids, reusing its buffers between frames.
type composer struct {
	mode  colorMode
	ramp  ascii.Ramp
	cells []Cell
}

func newComposer(mode colorMode) *composer {
	ramp, _ := ascii.NewRamp(ascii.DefaultCharset, true)
	return &composer{mode: mode, ramp: ramp}
}

// Compose fills a cols x rows grid from f. Pixel frames are sampled two pixels
// per cell; without colour they fall back to luminance glyphs.
func (c *composer) Compose(f effect.Frame, cols, rows int) []Cell {
	n := cols * rows
	if n <= 0 {
		return nil
	}
	if cap(c.cells) < n {
		c.cells = make([]Cell, n)
	}
	cells := c.cells[:n]
	bg := f.Background
	for i := range cells {
		cells[i] = Cell{Rune: ' ', FG: bg, BG: bg}
	}
	switch {
	case f.Image != nil:
		c.composeImage(cells, f.Image, bg, cols, rows)
	case f.Overlay != nil:
		c.composeOverlay(cells, f.Overlay, bg, cols, rows)
	}
	return cells
}

func (c *composer) composeImage(cells []Cell, img *image.NRGBA, bg colorful.Color, cols, rows int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	sample := func(col, sub int) colorful.Color {
		x := b.Min.X + (2*col+1)*w/(2*cols)
		y := b.Min.Y + (2*sub+1)*h/(4*rows)
		p := img.NRGBAAt(x, y)
		a := float64(p.A) / 255
		return colorful.Color{
			R: float64(p.R)/255*a + bg.R*(1-a),
			G: float64(p.G)/255*a + bg.G*(1-a),
			B: float64(p.B)/255*a + bg.B*(1-a),
		}
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := sample(col, 2*row)
			bottom := sample(col, 2*row+1)
			cell := &cells[row*cols+col]
			if c.mode == colorNone {
				l := (luma(top) + luma(bottom)) / 2
				cell.Rune = c.ramp.Glyph(uint8(l*255+0.5), uint8(l*255+0.5), uint8(l*255+0.5), 255)
				continue
			}
			cell.Rune = halfBlock
			cell.FG = top
			cell.BG = bottom
		}
	}
}

func (c *composer) composeOverlay(cells []Cell, o *ascii.Overlay, bg colorful.Color, cols, rows int) {
	for row := 0; row < rows && row < len(o.Grid.Lines); row++ {
		col := 0
		for _, r := range o.Grid.Lines[row] {
			if col >= cols {
				break
			}
			cell := &cells[row*cols+col]
			cell.Rune = r
			if r != ' ' {
				cell.FG = o.Composite(col, row, bg)
			}
			col++
		}
	}
}

func luma(c colorful.Color) float64 {
	return ascii.Luminance(uint8(c.R*255+0.5), uint8(c.G*255+0.5), uint8(c.B*255+0.5))
}

// encodeANSI writes the cells as escape-coded lines, emitting colour codes only
// when they change.
func encodeANSI(cells []Cell, cols, rows int, mode colorMode) []string {
	lines := make([]string, rows)
	var sb strings.Builder
	for row := 0; row < rows; row++ {
		sb.Reset()
		lastFG, lastBG := "", ""
		for col := 0; col < cols; col++ {
			cell := cells[row*cols+col]
			if mode != colorNone {
				fg, bg := colorCode(cell.FG, mode, false), colorCode(cell.BG, mode, true)
				if fg != lastFG {
					sb.WriteString(fg)
					lastFG = fg
				}
				if bg != lastBG {
					sb.WriteString(bg)
					lastBG = bg
				}
			}
			sb.WriteRune(cell.Rune)
		}
		if mode != colorNone {
			sb.WriteString(resetANSI)
		}
		lines[row] = sb.String()
	}
	return lines
}

func colorCode(c colorful.Color, mode colorMode, background bool) string {
	if mode == colorTrue {
		r, g, b := c.Clamped().RGB255()
		prefix := "\x1b[38;2;"
		if background {
			prefix = "\x1b[48;2;"
		}
		return prefix + strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
	}
	index := rgbToANSI(c.R, c.G, c.B)
	if background {
		return precomputedBG[index]
	}
	return precomputedANSI[index]
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for unsaturated colours
	if abs(r-g) < 0.02 && abs(g-b) < 0.02 {
		gray := int(clampFloat(r*23+0.5, 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
