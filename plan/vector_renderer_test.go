package plan

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestVectorRenderer_RenderToSVG(t *testing.T) {
	p := singleRoomPlan(t)
	top := p.RoomWalls("kitchen")[0]
	if _, err := p.AddDoor(Door{WallID: top.ID, Position: 200, Width: 90, Type: OpeningWindow}); err != nil {
		t.Fatalf("AddDoor failed: %v", err)
	}

	r := NewVectorRenderer(p)
	r.ShowJoints = true
	r.Guides = []Guide{{Axis: AxisVertical, Position: 400, Start: 0, End: 300}}

	var buf bytes.Buffer
	if err := r.RenderToSVG(&buf); err != nil {
		t.Fatalf("Failed to render to SVG: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("<svg")) {
		t.Errorf("Output does not contain <svg tag")
	}
	if !bytes.Contains(buf.Bytes(), []byte("path")) {
		t.Errorf("Output does not contain path elements")
	}
}

func TestVectorRenderer_RenderToPNG(t *testing.T) {
	r := NewVectorRenderer(singleRoomPlan(t))
	r.GridSpacing = 0

	var buf bytes.Buffer
	if err := r.RenderToPNG(&buf); err != nil {
		t.Fatalf("Failed to render to PNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Errorf("PNG has empty bounds: %v", img.Bounds())
	}
}

func TestVectorRenderer_EmptyPlan(t *testing.T) {
	r := NewVectorRenderer(NewPlan(DefaultSettings()))
	var buf bytes.Buffer
	if err := r.RenderToSVG(&buf); err == nil {
		t.Error("expected error rendering an empty plan")
	}
	if err := r.RenderToPNG(&buf); err == nil {
		t.Error("expected error rendering an empty plan")
	}

	r.Plan = nil
	if err := r.RenderToSVG(&buf); err == nil {
		t.Error("expected error rendering a nil plan")
	}
}

func TestVectorRenderer_ApplyConfig(t *testing.T) {
	r := NewVectorRenderer(nil)
	r.ApplyConfig(RenderConfig{Scale: 2, GridSpacing: 50, ShowJoints: true})

	if r.Scale != 2 || r.GridSpacing != 50 || !r.ShowJoints {
		t.Errorf("config not applied: scale=%v grid=%v joints=%v", r.Scale, r.GridSpacing, r.ShowJoints)
	}
	if r.Padding != 50 {
		t.Errorf("zero padding should keep the default, got %v", r.Padding)
	}
}

func TestViewport_ToCanvas(t *testing.T) {
	r := NewVectorRenderer(singleRoomPlan(t))
	r.Padding = 10
	v, err := r.viewport()
	if err != nil {
		t.Fatalf("viewport failed: %v", err)
	}

	if v.width != 450 || v.height != 350 {
		t.Errorf("viewport = %vx%v, want 450x350", v.width, v.height)
	}
	// plan origin is top-left, canvas origin bottom-left
	x, y := v.toCanvas(Point{X: -15, Y: -15})
	if x != 10 || y != 340 {
		t.Errorf("toCanvas(min) = (%v, %v), want (10, 340)", x, y)
	}
}

func TestPlanExtent(t *testing.T) {
	minX, minY, maxX, maxY := PlanExtent(singleRoomPlan(t))
	if minX != -15 || minY != -15 || maxX != 415 || maxY != 315 {
		t.Errorf("extent = (%v,%v)-(%v,%v), want (-15,-15)-(415,315)", minX, minY, maxX, maxY)
	}

	minX, minY, maxX, maxY = PlanExtent(NewPlan(DefaultSettings()))
	if minX != 0 || minY != 0 || maxX != 0 || maxY != 0 {
		t.Error("empty plan extent should be zero")
	}
}

func TestNRGBAToRGBA(t *testing.T) {
	tests := []struct {
		in   color.NRGBA
		want color.RGBA
	}{
		{color.NRGBA{255, 0, 0, 255}, color.RGBA{255, 0, 0, 255}},
		{color.NRGBA{255, 0, 0, 0}, color.RGBA{0, 0, 0, 0}},
		{color.NRGBA{255, 255, 255, 128}, color.RGBA{128, 128, 128, 128}},
	}
	for _, tt := range tests {
		if got := nrgbaToRGBA(tt.in); got != tt.want {
			t.Errorf("nrgbaToRGBA(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
