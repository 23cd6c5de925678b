// Package geom holds the integer geometry primitives shared by the layout
// engine and the render backends.
package geom

// Vec is an integer 2-vector. All diagram coordinates are integers; the
// layout code rounds the fractional arc radius to whole units (for example,
// ConnectionType.ArcSize rounds it up) before it ever reaches a Vec.
type Vec struct {
	X, Y int
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

func (v Vec) Scale(k int) Vec {
	return Vec{v.X * k, v.Y * k}
}
