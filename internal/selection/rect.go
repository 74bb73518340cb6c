package selection

import "image"

// Rect is a rectangle in root window coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle has neither width nor height.
func (r Rect) Empty() bool {
	return r.Width == 0 && r.Height == 0
}

// Bounds converts the rectangle to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func span(a, b image.Point) Rect {
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(a.X - b.X),
		Height: abs(a.Y - b.Y),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
