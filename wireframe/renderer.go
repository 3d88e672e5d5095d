package wireframe

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Renderer rasterizes the traced polygons top-down into an RGBA image with a
// label at each face's footprint center. It is the quick-look counterpart of
// VectorRenderer for contexts without an SVG viewer.
type Renderer struct {
	Polygons []*Polygon
	Width    int     // output width in pixels
	Margin   int     // margin around the drawing in pixels
	Padding  float64 // extra world-space padding before scaling
}

// NewRenderer creates a raster renderer with default settings.
func NewRenderer(polygons []*Polygon) *Renderer {
	return &Renderer{Polygons: polygons, Width: 1024, Margin: 24}
}

// Render draws the polygons into a new image.
func (r *Renderer) Render() *image.RGBA {
	minX, minY, maxX, maxY := r.worldBounds()
	spanX, spanY := maxX-minX, maxY-minY

	scale := float64(r.Width-2*r.Margin) / spanX
	height := int(spanY*scale) + 2*r.Margin

	img := image.NewRGBA(image.Rect(0, 0, r.Width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	// Dataset y grows upward, image y grows downward.
	toPixel := func(vertex Coordinates) (int, int) {
		px := int((vertex.X-minX)*scale) + r.Margin
		py := height - (int((vertex.Y-minY)*scale) + r.Margin)
		return px, py
	}

	palette := facePalette()
	for i, polygon := range r.Polygons {
		fill := palette[i%len(palette)]
		r.fillPolygon(img, polygon, toPixel, minX, minY, scale, height, fill)
	}

	for i, polygon := range r.Polygons {
		sequence := polygon.Path.Sequence
		for j := 0; j+1 < len(sequence); j++ {
			x1, y1 := toPixel(sequence[j])
			x2, y2 := toPixel(sequence[j+1])
			drawLine(img, x1, y1, x2, y2, color.RGBA{0, 0, 0, 255})
		}

		center := FootprintCenter(polygon)
		cx, cy := toPixel(Coordinates{X: center[0], Y: center[1]})
		drawText(img, cx-3, cy+4, fmt.Sprintf("%d", i), color.RGBA{0, 0, 0, 255})
	}

	return img
}

// SavePNG renders and writes the image to the given file.
func (r *Renderer) SavePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating render file %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, r.Render()); err != nil {
		return fmt.Errorf("encoding render PNG: %w", err)
	}
	return nil
}

// fillPolygon paints every pixel whose world position falls inside the
// polygon's footprint, blended over the existing color.
func (r *Renderer) fillPolygon(img *image.RGBA, polygon *Polygon, toPixel func(Coordinates) (int, int), minX, minY, scale float64, height int, fill color.NRGBA) {
	x1, y1 := toPixel(Coordinates{X: polygon.Min.X, Y: polygon.Max.Y})
	x2, y2 := toPixel(Coordinates{X: polygon.Max.X, Y: polygon.Min.Y})

	for py := y1; py <= y2; py++ {
		for px := x1; px <= x2; px++ {
			world := Coordinates{
				X: (float64(px-r.Margin)+0.5)/scale + minX,
				Y: (float64(height-py-r.Margin)+0.5)/scale + minY,
			}
			if polygon.ContainsPoint(world) {
				img.SetRGBA(px, py, blend(img.RGBAAt(px, py), fill))
			}
		}
	}
}

// blend composites fg over bg using fg's alpha.
func blend(bg color.RGBA, fg color.NRGBA) color.RGBA {
	alpha := uint32(fg.A)
	inverse := 255 - alpha
	return color.RGBA{
		R: uint8((uint32(fg.R)*alpha + uint32(bg.R)*inverse) / 255),
		G: uint8((uint32(fg.G)*alpha + uint32(bg.G)*inverse) / 255),
		B: uint8((uint32(fg.B)*alpha + uint32(bg.B)*inverse) / 255),
		A: 255,
	}
}

// drawLine draws a straight segment with Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if image.Pt(x1, y1).In(img.Rect) {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		doubled := 2 * err
		if doubled >= dy {
			err += dy
			x1 += sx
		}
		if doubled <= dx {
			err += dx
			y1 += sy
		}
	}
}

// drawText renders a small label at the given pixel position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func (r *Renderer) worldBounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	for _, polygon := range r.Polygons {
		minX = math.Min(minX, polygon.Min.X)
		minY = math.Min(minY, polygon.Min.Y)
		maxX = math.Max(maxX, polygon.Max.X)
		maxY = math.Max(maxY, polygon.Max.Y)
	}

	if minX > maxX {
		return 0, 0, 1, 1
	}

	if r.Padding > 0 {
		minX -= r.Padding
		minY -= r.Padding
		maxX += r.Padding
		maxY += r.Padding
	}

	// Guard against zero span when every vertex shares a coordinate.
	if maxX-minX < 1e-9 {
		maxX = minX + 1
	}
	if maxY-minY < 1e-9 {
		maxY = minY + 1
	}
	return minX, minY, maxX, maxY
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
