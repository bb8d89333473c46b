package plan

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// maxRasterSize caps either image dimension; the scale shrinks to fit
const maxRasterSize = 4000

// RoomPalette returns distinct semi-transparent floor colors
func RoomPalette() []color.NRGBA {
	return []color.NRGBA{
		{100, 149, 237, 140}, // Cornflower blue
		{255, 99, 71, 120},   // Tomato
		{144, 238, 144, 140}, // Light green
		{255, 255, 150, 150}, // Light yellow
		{221, 160, 221, 140}, // Plum
		{255, 218, 185, 150}, // Peach
	}
}

// sortRoomsForDrawing orders rooms largest first (then by z-index and id) so
// nested rooms are painted over their containers
func sortRoomsForDrawing(rooms []Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		ai, aj := rooms[i].Bounds.Area(), rooms[j].Bounds.Area()
		if ai != aj {
			return ai > aj
		}
		if rooms[i].ZIndex != rooms[j].ZIndex {
			return rooms[i].ZIndex < rooms[j].ZIndex
		}
		return rooms[i].ID < rooms[j].ID
	})
}

// RasterRenderer draws a plan into an RGBA image with text labels
type RasterRenderer struct {
	Plan       *Plan
	Palette    []color.NRGBA
	Scale      float64 // pixels per cm
	Padding    int     // pixels around the plan
	ShowLabels bool
	ShowJoints bool
}

// NewRasterRenderer creates a raster renderer with default settings
func NewRasterRenderer(p *Plan) *RasterRenderer {
	return &RasterRenderer{
		Plan:       p,
		Palette:    RoomPalette(),
		Scale:      1.0,
		Padding:    30,
		ShowLabels: true,
	}
}

// Render creates the plan image
func (r *RasterRenderer) Render() *image.RGBA {
	minX, minY, maxX, maxY := PlanExtent(r.Plan)
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}

	width := int((maxX-minX)*scale) + 2*r.Padding
	height := int((maxY-minY)*scale) + 2*r.Padding

	// Limit size
	if width > maxRasterSize {
		scale *= float64(maxRasterSize) / float64(width)
		width = maxRasterSize
		height = int((maxY-minY)*scale) + 2*r.Padding
	}
	if height > maxRasterSize {
		scale *= float64(maxRasterSize) / float64(height)
		height = maxRasterSize
		width = int((maxX-minX)*scale) + 2*r.Padding
	}
	if width <= 0 {
		width = 2*r.Padding + 1
	}
	if height <= 0 {
		height = 2*r.Padding + 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{250, 250, 250, 255})
		}
	}

	toImage := func(p Point) (int, int) {
		x := int(math.Round((p.X-minX)*scale)) + r.Padding
		y := int(math.Round((p.Y-minY)*scale)) + r.Padding
		return x, y
	}

	// First pass: floors (semi-transparent), containers first
	rooms := make([]Room, len(r.Plan.Rooms))
	copy(rooms, r.Plan.Rooms)
	sortRoomsForDrawing(rooms)
	for i, room := range rooms {
		fc := r.roomColor(i)
		x0, y0 := toImage(Point{X: room.Bounds.Left(), Y: room.Bounds.Top()})
		x1, y1 := toImage(Point{X: room.Bounds.Right(), Y: room.Bounds.Bottom()})
		for y := max(y0, 0); y < min(y1, height); y++ {
			for x := max(x0, 0); x < min(x1, width); x++ {
				img.Set(x, y, blendColors(img.RGBAAt(x, y), fc))
			}
		}
	}

	// Second pass: wall bodies (opaque), then openings cut back out
	wallRGBA := color.RGBA{64, 64, 64, 255}
	for _, w := range r.Plan.Walls {
		fillSegment(img, w.Start, w.End, w.Thickness/2, toImage, scale, wallRGBA)
	}
	for _, w := range r.Plan.Walls {
		for _, op := range w.Openings {
			c := color.RGBA{250, 250, 250, 255}
			if op.Type == OpeningWindow {
				c = color.RGBA{135, 206, 250, 255}
			}
			a := pointAlong(w, op.Position-op.Width/2)
			b := pointAlong(w, op.Position+op.Width/2)
			fillSegment(img, a, b, w.Thickness/2+0.5, toImage, scale, c)
		}
	}

	if r.ShowJoints {
		for _, j := range r.Plan.Joints() {
			x, y := toImage(j.Position)
			drawCircle(img, x, y, 3, color.RGBA{255, 69, 0, 255})
		}
	}

	if r.ShowLabels {
		for _, room := range rooms {
			label := room.Name
			if label == "" {
				label = room.ID
			}
			c := room.Bounds.Center()
			x, y := toImage(c)
			drawText(img, x-len(label)*7/2, y, label, color.RGBA{0, 0, 0, 255})
			area := fmt.Sprintf("%.1f m2", room.Bounds.Area()/10000)
			drawText(img, x-len(area)*7/2, y+14, area, color.RGBA{60, 60, 60, 255})
		}
	}

	return img
}

// WritePNG encodes the rendered plan as PNG
func (r *RasterRenderer) WritePNG(w io.Writer) error {
	return png.Encode(w, r.Render())
}

// SavePNG saves the rendered plan to a file
func (r *RasterRenderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return r.WritePNG(f)
}

func (r *RasterRenderer) roomColor(i int) color.NRGBA {
	if len(r.Palette) == 0 {
		return color.NRGBA{200, 200, 200, 160}
	}
	return r.Palette[i%len(r.Palette)]
}

// fillSegment paints the axis-aligned bounding box of a segment grown by half
// (plan units). Walls are axis-aligned so the box is the wall body.
func fillSegment(img *image.RGBA, a, b Point, half float64, toImage func(Point) (int, int), scale float64, c color.RGBA) {
	lo := Point{X: math.Min(a.X, b.X) - half, Y: math.Min(a.Y, b.Y) - half}
	hi := Point{X: math.Max(a.X, b.X) + half, Y: math.Max(a.Y, b.Y) + half}
	x0, y0 := toImage(lo)
	x1, y1 := toImage(hi)
	if x1 == x0 {
		x1++
	}
	if y1 == y0 {
		y1++
	}
	bounds := img.Bounds()
	for y := max(y0, 0); y < min(y1, bounds.Max.Y); y++ {
		for x := max(x0, 0); x < min(x1, bounds.Max.X); x++ {
			img.Set(x, y, c)
		}
	}
}

// blendColors performs alpha blending of two colors
func blendColors(bg color.RGBA, fg color.NRGBA) color.NRGBA {
	// RGBA is premultiplied, so un-premultiply the background first
	var bgNRGBA color.NRGBA
	switch bg.A {
	case 0:
		bgNRGBA = color.NRGBA{0, 0, 0, 0}
	case 255:
		bgNRGBA = color.NRGBA{bg.R, bg.G, bg.B, 255}
	default:
		alpha32 := uint32(bg.A)
		bgNRGBA = color.NRGBA{
			R: uint8((uint32(bg.R) * 255) / alpha32),
			G: uint8((uint32(bg.G) * 255) / alpha32),
			B: uint8((uint32(bg.B) * 255) / alpha32),
			A: bg.A,
		}
	}

	alpha := float64(fg.A) / 255.0
	invAlpha := 1.0 - alpha

	return color.NRGBA{
		R: uint8(float64(fg.R)*alpha + float64(bgNRGBA.R)*invAlpha),
		G: uint8(float64(fg.G)*alpha + float64(bgNRGBA.G)*invAlpha),
		B: uint8(float64(fg.B)*alpha + float64(bgNRGBA.B)*invAlpha),
		A: 255,
	}
}

// drawCircle draws a filled circle
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// drawText renders text onto an image at the specified position
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
