package canvas

import (
	"image"
	"image/color"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9, used to number
// the control points.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

func setPixel(buf *image.RGBA, x, y int, col color.RGBA) {
	b := buf.Bounds()
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		buf.SetRGBA(x, y, col)
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(buf *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				setPixel(buf, x1+s, y1+t, col)
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawCircleOutline draws a 2 pixel thick ring.
func drawCircleOutline(buf *image.RGBA, cx, cy, radius int, col color.RGBA) {
	r := float64(radius)
	r2 := r * r
	innerR2 := (r - 2) * (r - 2)
	for y := cy - radius - 1; y <= cy+radius+1; y++ {
		for x := cx - radius - 1; x <= cx+radius+1; x++ {
			dx := float64(x - cx)
			dy := float64(y - cy)
			d2 := dx*dx + dy*dy
			if d2 <= r2 && d2 >= innerR2 {
				setPixel(buf, x, y, col)
			}
		}
	}
}

// drawCross draws a small + marker at the center of a control point.
func drawCross(buf *image.RGBA, cx, cy, arm int, col color.RGBA) {
	for d := -arm; d <= arm; d++ {
		setPixel(buf, cx+d, cy, col)
		setPixel(buf, cx, cy+d, col)
	}
}

// drawDashedRect draws a dashed rectangle outline, alternating pixels in
// runs of two.
func drawDashedRect(buf *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 {
			setPixel(buf, x, y1, col)
		}
		if (x+y2)%4 < 2 {
			setPixel(buf, x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 {
			setPixel(buf, x1, y, col)
		}
		if (x2+y)%4 < 2 {
			setPixel(buf, x2, y, col)
		}
	}
}

// drawRectOutline draws a solid rectangle outline of the given thickness.
func drawRectOutline(buf *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			setPixel(buf, x, y1+t, col)
			setPixel(buf, x, y2-t, col)
		}
		for y := y1; y <= y2; y++ {
			setPixel(buf, x1+t, y, col)
			setPixel(buf, x2-t, y, col)
		}
	}
}

// drawGrid draws reference grid lines at the given spacing.
func drawGrid(buf *image.RGBA, spacing int, col color.RGBA) {
	if spacing < 2 {
		return
	}
	b := buf.Bounds()
	for x := b.Min.X; x < b.Max.X; x += spacing {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			buf.SetRGBA(x, y, col)
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x++ {
			buf.SetRGBA(x, y, col)
		}
	}
}

// drawNumber draws a small decimal label with its top-left at (x, y).
func drawNumber(buf *image.RGBA, n, x, y, scale int, col color.RGBA) {
	if scale < 1 {
		scale = 1
	}
	text := []byte{}
	if n == 0 {
		text = append(text, '0')
	}
	for v := n; v > 0; v = v / 10 {
		text = append([]byte{byte('0' + v%10)}, text...)
	}

	charW := 3 * scale
	spacing := scale
	for i, ch := range text {
		pattern := digitPatterns[ch-'0']
		charX := x + i*(charW+spacing)
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						setPixel(buf, charX+c*scale+dx, y+row*scale+dy, col)
					}
				}
			}
		}
	}
}
