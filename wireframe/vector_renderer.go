package wireframe

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// nrgbaToRGBA converts color.NRGBA to color.RGBA by premultiplying alpha
// This is needed for the canvas library which expects premultiplied RGBA
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// facePalette returns the fill colors cycled over the rendered faces.
func facePalette() []color.NRGBA {
	return []color.NRGBA{
		{R: 66, G: 133, B: 244, A: 120},
		{R: 219, G: 68, B: 55, A: 120},
		{R: 244, G: 180, B: 0, A: 120},
		{R: 15, G: 157, B: 88, A: 120},
		{R: 171, G: 71, B: 188, A: 120},
		{R: 0, G: 172, B: 193, A: 120},
	}
}

// VectorRenderer draws the traced polygons top-down as vector graphics: each
// face filled with a cycled color and stroked along its edges, plus optional
// grid lines for visually checking dataset coordinates.
type VectorRenderer struct {
	Polygons    []*Polygon
	Padding     float64           // margin around the drawing in dataset units
	GridSpacing float64           // grid line spacing; 0 disables the grid
	Resolution  canvas.Resolution // resolution for PNG output
}

// NewVectorRenderer creates a renderer with default settings.
func NewVectorRenderer(polygons []*Polygon) *VectorRenderer {
	return &VectorRenderer{
		Polygons:   polygons,
		Padding:    1.0,
		Resolution: canvas.DPI(300),
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the polygons as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()

	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, maxX, maxY, width, height)

	return svgRenderer.Close()
}

// RenderToPNG writes the polygons as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()

	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, maxX, maxY, width, height)

	return png.Encode(w, rast)
}

// renderToCanvas renders the polygons to a canvas renderer (shared logic for SVG and PNG)
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, maxX, maxY, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(vertex Coordinates) (float64, float64) {
		return (vertex.X - minX) + r.Padding, (vertex.Y - minY) + r.Padding
	}

	palette := facePalette()
	for i, polygon := range r.Polygons {
		if len(polygon.Path.Sequence) < 2 {
			continue
		}

		faceStyle := canvas.DefaultStyle
		faceStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(palette[i%len(palette)])}
		faceStyle.Stroke = canvas.Paint{Color: canvas.Black}
		faceStyle.StrokeWidth = r.strokeWidth(width, height)

		facePath := &canvas.Path{}
		x, y := toCanvas(polygon.Path.Sequence[0])
		facePath.MoveTo(x, y)
		for _, vertex := range polygon.Path.Sequence[1:] {
			x, y = toCanvas(vertex)
			facePath.LineTo(x, y)
		}
		facePath.Close()

		renderer.RenderPath(facePath, faceStyle, canvas.Identity)
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = r.strokeWidth(width, height) / 2
		gridStyle.Dashes = []float64{r.GridSpacing / 10, r.GridSpacing / 10}

		for x := math.Floor(minX/r.GridSpacing) * r.GridSpacing; x <= maxX; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Coordinates{X: x, Y: minY})
			x2, y2 := toCanvas(Coordinates{X: x, Y: maxY})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}

		for y := math.Floor(minY/r.GridSpacing) * r.GridSpacing; y <= maxY; y += r.GridSpacing {
			gridPath := &canvas.Path{}
			x1, y1 := toCanvas(Coordinates{X: minX, Y: y})
			x2, y2 := toCanvas(Coordinates{X: maxX, Y: y})
			gridPath.MoveTo(x1, y1)
			gridPath.LineTo(x2, y2)
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}
}

// strokeWidth scales the outline width with the drawing so small and large
// datasets both render legibly.
func (r *VectorRenderer) strokeWidth(width, height float64) float64 {
	return math.Max(width, height) / 400
}

func (r *VectorRenderer) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	for _, polygon := range r.Polygons {
		minX = math.Min(minX, polygon.Min.X)
		minY = math.Min(minY, polygon.Min.Y)
		maxX = math.Max(maxX, polygon.Max.X)
		maxY = math.Max(maxY, polygon.Max.Y)
	}

	if minX > maxX {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}
