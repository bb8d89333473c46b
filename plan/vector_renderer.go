package plan

import (
	"fmt"
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

var (
	gridColor   = color.RGBA{211, 211, 211, 255}
	wallColor   = color.RGBA{64, 64, 64, 255}
	windowColor = color.RGBA{135, 206, 250, 255}
	guideColor  = color.RGBA{255, 0, 255, 255}
	jointColor  = color.RGBA{255, 69, 0, 255}
)

// VectorRenderer draws a plan as vector graphics: room floors, wall bodies at
// their real thickness, door/window gaps, joints and alignment guides.
type VectorRenderer struct {
	Plan        *Plan
	Guides      []Guide
	Palette     []color.NRGBA
	Scale       float64           // output units per cm
	Padding     float64           // cm around the plan
	Resolution  canvas.Resolution // Resolution for PNG output (default: 96 DPI)
	GridSpacing float64           // cm; 0 disables the grid
	ShowJoints  bool
}

// NewVectorRenderer creates a vector renderer with default settings
func NewVectorRenderer(p *Plan) *VectorRenderer {
	return &VectorRenderer{
		Plan:        p,
		Palette:     RoomPalette(),
		Scale:       1.0,
		Padding:     50.0,
		Resolution:  canvas.DPI(96),
		GridSpacing: 100.0,
	}
}

// ApplyConfig copies the render section of a config onto the renderer
func (r *VectorRenderer) ApplyConfig(c RenderConfig) {
	if c.Scale > 0 {
		r.Scale = c.Scale
	}
	if c.Padding > 0 {
		r.Padding = c.Padding
	}
	if c.GridSpacing > 0 {
		r.GridSpacing = c.GridSpacing
	}
	r.ShowJoints = c.ShowJoints
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the plan as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	view, err := r.viewport()
	if err != nil {
		return err
	}
	svgRenderer := svg.New(w, view.width, view.height, nil)
	r.renderToCanvas(svgRenderer, view)
	return svgRenderer.Close()
}

// RenderToPNG writes the plan as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	view, err := r.viewport()
	if err != nil {
		return err
	}
	rast := rasterizer.New(view.width, view.height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, view)
	return png.Encode(w, rast)
}

// viewport is the plan extent mapped onto the output surface
type viewport struct {
	minX, minY, maxX, maxY float64
	width, height          float64
	scale, padding         float64
}

// toCanvas maps plan coordinates (Y down) to canvas coordinates (Y up)
func (v viewport) toCanvas(p Point) (float64, float64) {
	x := (p.X - v.minX + v.padding) * v.scale
	y := v.height - (p.Y-v.minY+v.padding)*v.scale
	return x, y
}

func (r *VectorRenderer) viewport() (viewport, error) {
	if r.Plan == nil || (len(r.Plan.Rooms) == 0 && len(r.Plan.Walls) == 0) {
		return viewport{}, fmt.Errorf("plan has nothing to render")
	}
	minX, minY, maxX, maxY := PlanExtent(r.Plan)
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}
	return viewport{
		minX:    minX,
		minY:    minY,
		maxX:    maxX,
		maxY:    maxY,
		width:   (maxX - minX + 2*r.Padding) * scale,
		height:  (maxY - minY + 2*r.Padding) * scale,
		scale:   scale,
		padding: r.Padding,
	}, nil
}

// PlanExtent returns the bounding box of all room bounds and wall bodies
func PlanExtent(p *Plan) (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
	grow := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, room := range p.Rooms {
		grow(room.Bounds.Left(), room.Bounds.Top())
		grow(room.Bounds.Right(), room.Bounds.Bottom())
	}
	for _, w := range p.Walls {
		h := w.Thickness / 2
		grow(math.Min(w.Start.X, w.End.X)-h, math.Min(w.Start.Y, w.End.Y)-h)
		grow(math.Max(w.Start.X, w.End.X)+h, math.Max(w.Start.Y, w.End.Y)+h)
	}
	if minX > maxX {
		return 0, 0, 0, 0
	}
	return
}

func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, v viewport) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(v.width, v.height), bgStyle, canvas.Identity)

	line := func(a, b Point) *canvas.Path {
		cp := &canvas.Path{}
		x1, y1 := v.toCanvas(a)
		x2, y2 := v.toCanvas(b)
		cp.MoveTo(x1, y1)
		cp.LineTo(x2, y2)
		return cp
	}

	// Floors, outermost first so nested rooms stay visible
	rooms := make([]Room, len(r.Plan.Rooms))
	copy(rooms, r.Plan.Rooms)
	sortRoomsForDrawing(rooms)
	for i, room := range rooms {
		floorStyle := canvas.DefaultStyle
		floorStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(r.roomColor(i))}
		floorStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

		cp := &canvas.Path{}
		for j, p := range FromRing(RoomPolygon(room.Bounds)[0]) {
			x, y := v.toCanvas(p)
			if j == 0 {
				cp.MoveTo(x, y)
			} else {
				cp.LineTo(x, y)
			}
		}
		cp.Close()
		renderer.RenderPath(cp, floorStyle, canvas.Identity)
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: gridColor}
		gridStyle.StrokeWidth = 0.5 * v.scale
		gridStyle.Dashes = []float64{4 * v.scale, 4 * v.scale}

		for x := math.Floor(v.minX/r.GridSpacing) * r.GridSpacing; x <= v.maxX; x += r.GridSpacing {
			renderer.RenderPath(line(Point{X: x, Y: v.minY}, Point{X: x, Y: v.maxY}), gridStyle, canvas.Identity)
		}
		for y := math.Floor(v.minY/r.GridSpacing) * r.GridSpacing; y <= v.maxY; y += r.GridSpacing {
			renderer.RenderPath(line(Point{X: v.minX, Y: y}, Point{X: v.maxX, Y: y}), gridStyle, canvas.Identity)
		}
	}

	// Wall bodies drawn as strokes of the real thickness along the centerline
	for _, w := range r.Plan.Walls {
		wallStyle := canvas.DefaultStyle
		wallStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		wallStyle.Stroke = canvas.Paint{Color: wallColor}
		wallStyle.StrokeWidth = w.Thickness * v.scale
		renderer.RenderPath(line(w.Start, w.End), wallStyle, canvas.Identity)

		for _, op := range w.Openings {
			a := pointAlong(w, op.Position-op.Width/2)
			b := pointAlong(w, op.Position+op.Width/2)
			gapStyle := wallStyle
			gapStyle.Stroke = canvas.Paint{Color: canvas.White}
			if op.Type == OpeningWindow {
				gapStyle.Stroke = canvas.Paint{Color: windowColor}
			}
			gapStyle.StrokeWidth = (w.Thickness + 1) * v.scale
			renderer.RenderPath(line(a, b), gapStyle, canvas.Identity)
		}
	}

	for _, g := range r.Guides {
		guideStyle := canvas.DefaultStyle
		guideStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		guideStyle.Stroke = canvas.Paint{Color: guideColor}
		guideStyle.StrokeWidth = 1 * v.scale
		guideStyle.Dashes = []float64{6 * v.scale, 3 * v.scale}

		a, b := Point{X: g.Position, Y: g.Start}, Point{X: g.Position, Y: g.End}
		if g.Axis == AxisHorizontal {
			a, b = Point{X: g.Start, Y: g.Position}, Point{X: g.End, Y: g.Position}
		}
		renderer.RenderPath(line(a, b), guideStyle, canvas.Identity)
	}

	if r.ShowJoints {
		jointStyle := canvas.DefaultStyle
		jointStyle.Fill = canvas.Paint{Color: jointColor}
		jointStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
		for _, j := range r.Plan.Joints() {
			x, y := v.toCanvas(j.Position)
			renderer.RenderPath(canvas.Circle(3*v.scale).Translate(x, y), jointStyle, canvas.Identity)
		}
	}
}

func (r *VectorRenderer) roomColor(i int) color.NRGBA {
	if len(r.Palette) == 0 {
		return color.NRGBA{200, 200, 200, 160}
	}
	return r.Palette[i%len(r.Palette)]
}
