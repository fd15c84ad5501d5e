package scene

import "math"

// Vec3 is a point in object or world space.
type Vec3 struct {
	X, Y, Z float64
}

// Vertex is a mesh vertex with texture coordinates. V grows upwards.
type Vertex struct {
	Pos  Vec3
	U, V float64
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []int
}

// Plane builds a width x height grid in the XY plane centred on the origin,
// subdivided into segX x segY quads. Rows run top to bottom.
func Plane(width, height float64, segX, segY int) Mesh {
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}
	gx, gy := segX+1, segY+1
	m := Mesh{
		Vertices: make([]Vertex, 0, gx*gy),
		Indices:  make([]int, 0, segX*segY*6),
	}
	sw := width / float64(segX)
	sh := height / float64(segY)
	for iy := 0; iy < gy; iy++ {
		y := float64(iy)*sh - height/2
		for ix := 0; ix < gx; ix++ {
			x := float64(ix)*sw - width/2
			m.Vertices = append(m.Vertices, Vertex{
				Pos: Vec3{X: x, Y: -y},
				U:   float64(ix) / float64(segX),
				V:   1 - float64(iy)/float64(segY),
			})
		}
	}
	for iy := 0; iy < segY; iy++ {
		for ix := 0; ix < segX; ix++ {
			a := ix + gx*iy
			b := ix + gx*(iy+1)
			c := ix + 1 + gx*(iy+1)
			d := ix + 1 + gx*iy
			m.Indices = append(m.Indices, a, b, d, b, c, d)
		}
	}
	return m
}

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	FOV    float64 // vertical, degrees
	Aspect float64
	Near   float64
	Far    float64
	Z      float64
}

// NewCamera returns the default 45° camera at z=30.
func NewCamera(aspect float64) Camera {
	return Camera{FOV: 45, Aspect: aspect, Near: 1, Far: 1000, Z: 30}
}

// Project maps a world-space point to pixel coordinates in a width x height
// raster. w is the view depth; points at or in front of the near plane are
// reported as not visible.
func (c Camera) Project(p Vec3, width, height int) (sx, sy, w float64, ok bool) {
	w = c.Z - p.Z
	if w < c.Near || w > c.Far {
		return 0, 0, w, false
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	nx := f / aspect * p.X / w
	ny := f * p.Y / w
	sx = (nx + 1) / 2 * float64(width)
	sy = (1 - ny) / 2 * float64(height)
	return sx, sy, w, true
}

// Rotation is an Euler rotation in radians applied in XYZ order.
type Rotation struct {
	X, Y, Z float64
}

// Apply rotates p.
func (r Rotation) Apply(p Vec3) Vec3 {
	// Rz first, then Ry, then Rx: the matrix product Rx*Ry*Rz.
	if r.Z != 0 {
		s, c := math.Sincos(r.Z)
		p = Vec3{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c, Z: p.Z}
	}
	if r.Y != 0 {
		s, c := math.Sincos(r.Y)
		p = Vec3{X: p.X*c + p.Z*s, Y: p.Y, Z: -p.X*s + p.Z*c}
	}
	if r.X != 0 {
		s, c := math.Sincos(r.X)
		p = Vec3{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
	}
	return p
}
