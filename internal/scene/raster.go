package scene

import (
	"image"
	"image/color"
	"math"
)

// VertexShader displaces an object-space position.
type VertexShader func(p Vec3) Vec3

// FragmentShader returns the colour at texture coordinate (u, v).
type FragmentShader func(u, v float64) color.NRGBA

type screenVertex struct {
	x, y   float64
	invW   float64
	uw, vw float64
}

// Draw renders m into dst with src-over blending. Triangles crossing the near
// plane are skipped. Texture coordinates are interpolated perspective-correct.
func Draw(dst *image.NRGBA, cam Camera, m *Mesh, rot Rotation, vs VertexShader, fs FragmentShader) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || fs == nil {
		return
	}
	verts := make([]screenVertex, len(m.Vertices))
	visible := make([]bool, len(m.Vertices))
	for i, v := range m.Vertices {
		p := v.Pos
		if vs != nil {
			p = vs(p)
		}
		p = rot.Apply(p)
		sx, sy, depth, ok := cam.Project(p, w, h)
		if !ok {
			continue
		}
		inv := 1 / depth
		verts[i] = screenVertex{x: sx, y: sy, invW: inv, uw: v.U * inv, vw: v.V * inv}
		visible[i] = true
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		ia, ib, ic := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if !visible[ia] || !visible[ib] || !visible[ic] {
			continue
		}
		triangle(dst, verts[ia], verts[ib], verts[ic], fs)
	}
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (px-a.x)*(b.y-a.y) - (py-a.y)*(b.x-a.x)
}

// owns decides which of two triangles sharing edge a-b covers pixels that lie
// exactly on it.
func owns(a, b screenVertex) bool {
	return a.y < b.y || (a.y == b.y && a.x < b.x)
}

func triangle(dst *image.NRGBA, a, b, c screenVertex, fs FragmentShader) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}
	bounds := dst.Bounds()
	minX := max(int(math.Floor(min(a.x, b.x, c.x))), bounds.Min.X)
	maxX := min(int(math.Ceil(max(a.x, b.x, c.x))), bounds.Max.X-1)
	minY := max(int(math.Floor(min(a.y, b.y, c.y))), bounds.Min.Y)
	maxY := min(int(math.Ceil(max(a.y, b.y, c.y))), bounds.Max.Y-1)
	ownBC, ownCA, ownAB := owns(b, c), owns(c, a), owns(a, b)
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py)
			w1 := edge(c, a, px, py)
			w2 := edge(a, b, px, py)
			if !inside(w0, ownBC) || !inside(w1, ownCA) || !inside(w2, ownAB) {
				continue
			}
			w0 /= area
			w1 /= area
			w2 /= area
			inv := w0*a.invW + w1*b.invW + w2*c.invW
			u := (w0*a.uw + w1*b.uw + w2*c.uw) / inv
			v := (w0*a.vw + w1*b.vw + w2*c.vw) / inv
			blend(dst, x, y, fs(u, v))
		}
	}
}

func inside(w float64, own bool) bool {
	if w == 0 {
		return own
	}
	return w > 0
}

// blend composites src over the pixel at (x, y) in non-premultiplied space.
func blend(dst *image.NRGBA, x, y int, src color.NRGBA) {
	if src.A == 0 {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	if src.A == 255 || p[3] == 0 {
		p[0], p[1], p[2], p[3] = src.R, src.G, src.B, src.A
		return
	}
	sa := float64(src.A) / 255
	da := float64(p[3]) / 255 * (1 - sa)
	oa := sa + da
	mixc := func(s, d uint8) uint8 {
		return uint8(math.Round((float64(s)*sa + float64(d)*da) / oa))
	}
	p[0] = mixc(src.R, p[0])
	p[1] = mixc(src.G, p[1])
	p[2] = mixc(src.B, p[2])
	p[3] = uint8(math.Round(oa * 255))
}
