package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideGap(t *testing.T) {
	a := RoomBounds{X: 0, Y: 0, Width: 100, Height: 100}

	assert.Equal(t, 15.0, SideGap(a, SideRight, RoomBounds{X: 115, Y: 0, Width: 100, Height: 100}))
	assert.Equal(t, 15.0, SideGap(a, SideLeft, RoomBounds{X: -115, Y: 0, Width: 100, Height: 100}))
	assert.Equal(t, 2.0, SideGap(a, SideBottom, RoomBounds{X: 0, Y: 102, Width: 100, Height: 50}))
	assert.Equal(t, 0.0, SideGap(a, SideTop, RoomBounds{X: 0, Y: -50, Width: 100, Height: 50}))
	assert.Equal(t, -30.0, SideGap(a, SideRight, RoomBounds{X: 70, Y: 0, Width: 100, Height: 100}), "overlap is negative")
}

func TestEdgeOverlap(t *testing.T) {
	a := RoomBounds{X: 0, Y: 0, Width: 100, Height: 100}

	span, ok := EdgeOverlap(a, SideRight, RoomBounds{X: 115, Y: 20, Width: 100, Height: 50})
	require.True(t, ok)
	assert.Equal(t, EdgeExclusion{Start: 20, End: 70}, span)

	span, ok = EdgeOverlap(RoomBounds{X: 50, Y: 0, Width: 100, Height: 100}, SideTop, RoomBounds{X: 100, Y: -200, Width: 100, Height: 200})
	require.True(t, ok)
	assert.Equal(t, EdgeExclusion{Start: 50, End: 100}, span, "local coordinates start at the left end")

	_, ok = EdgeOverlap(a, SideRight, RoomBounds{X: 100, Y: 200, Width: 100, Height: 100})
	assert.False(t, ok)

	_, ok = EdgeOverlap(a, SideBottom, RoomBounds{X: 100, Y: 100, Width: 50, Height: 50})
	assert.False(t, ok, "corner contact has no overlap")
}

func TestClassifyGap(t *testing.T) {
	s := DefaultSettings()

	tests := []struct {
		name   string
		gap    float64
		want   ConnectionType
		wantOK bool
	}{
		{"touching", 0, ConnectionDirect, true},
		{"just under direct threshold", 4.9, ConnectionDirect, true},
		{"at direct threshold", 5, ConnectionWall, true},
		{"one wall thickness", 15, ConnectionWall, true},
		{"at max gap", 20, ConnectionWall, true},
		{"beyond max gap", 20.1, "", false},
		{"overlap within point tolerance", -1, ConnectionDirect, true},
		{"real overlap", -2, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyGap(tt.gap, "", s)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyGap_Hysteresis(t *testing.T) {
	s := DefaultSettings()
	s.ConnectionHysteresis = 3

	tests := []struct {
		name     string
		gap      float64
		previous ConnectionType
		want     ConnectionType
		wantOK   bool
	}{
		{"new pair uses plain thresholds", 7, "", ConnectionWall, true},
		{"direct stays direct past threshold", 7, ConnectionDirect, ConnectionDirect, true},
		{"wall stays wall below threshold", 3, ConnectionWall, ConnectionWall, true},
		{"new pair below threshold is direct", 3, "", ConnectionDirect, true},
		{"existing connection survives wider gap", 22, ConnectionWall, ConnectionWall, true},
		{"new pair does not form at wider gap", 22, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyGap(tt.gap, tt.previous, s)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindAdjacencies(t *testing.T) {
	self := RoomBounds{X: 0, Y: 0, Width: 100, Height: 100}
	rooms := []Room{
		{ID: "self", Bounds: self},
		{ID: "east", Bounds: RoomBounds{X: 115, Y: 0, Width: 100, Height: 100}},
		{ID: "south", Bounds: RoomBounds{X: 0, Y: 102, Width: 100, Height: 50}},
		{ID: "corner", Bounds: RoomBounds{X: 100, Y: 100, Width: 50, Height: 50}},
		{ID: "sliver", Bounds: RoomBounds{X: -30, Y: 20, Width: 30, Height: 5}},
		{ID: "inner", Bounds: RoomBounds{X: 20, Y: 20, Width: 50, Height: 50}},
		{ID: "far", Bounds: RoomBounds{X: 500, Y: 0, Width: 100, Height: 100}},
	}

	got := FindAdjacencies(self, "self", rooms, DefaultSettings())
	require.Len(t, got, 2)

	assert.Equal(t, Adjacency{
		RoomID: "east", Axis: AxisVertical, Side: SideRight, OtherSide: SideLeft,
		Type: ConnectionWall, Gap: 15, Overlap: 100,
	}, got[0])
	assert.Equal(t, Adjacency{
		RoomID: "south", Axis: AxisHorizontal, Side: SideBottom, OtherSide: SideTop,
		Type: ConnectionDirect, Gap: 2, Overlap: 100,
	}, got[1])
}

func TestSnapRoom_Move(t *testing.T) {
	rooms := []Room{{ID: "b", Bounds: RoomBounds{X: 200, Y: 0, Width: 100, Height: 100}}}
	opts := SnapOptions{Settings: DefaultSettings(), Mode: SnapMove}

	t.Run("direct", func(t *testing.T) {
		res := SnapRoom(RoomBounds{X: 97, Y: 0, Width: 100, Height: 100}, "a", rooms, opts)
		assert.Equal(t, RoomBounds{X: 100, Y: 0, Width: 100, Height: 100}, res.Bounds)
		require.Len(t, res.Connections, 1)
		assert.Equal(t, SnapConnection{
			RoomID: "b", Axis: AxisVertical, Side: SideRight, OtherSide: SideLeft,
			Type: ConnectionDirect, Gap: 3,
		}, res.Connections[0])
		require.Len(t, res.Guides, 1)
		assert.Equal(t, Guide{Axis: AxisVertical, Position: 200, Start: 0, End: 100}, res.Guides[0])
	})

	t.Run("wall", func(t *testing.T) {
		res := SnapRoom(RoomBounds{X: 90, Y: 0, Width: 100, Height: 100}, "a", rooms, opts)
		assert.Equal(t, 85.0, res.Bounds.X, "one wall thickness apart")
		require.Len(t, res.Connections, 1)
		assert.Equal(t, ConnectionWall, res.Connections[0].Type)
	})

	t.Run("out of range", func(t *testing.T) {
		proposed := RoomBounds{X: 70, Y: 0, Width: 100, Height: 100}
		res := SnapRoom(proposed, "a", rooms, opts)
		assert.Equal(t, proposed, res.Bounds)
		assert.Empty(t, res.Connections)
		assert.Empty(t, res.Guides)
	})

	t.Run("no perpendicular overlap", func(t *testing.T) {
		offset := []Room{{ID: "b", Bounds: RoomBounds{X: 200, Y: 150, Width: 100, Height: 100}}}
		proposed := RoomBounds{X: 97, Y: 0, Width: 100, Height: 100}
		res := SnapRoom(proposed, "a", offset, opts)
		assert.Equal(t, proposed, res.Bounds)
	})

	t.Run("skips itself", func(t *testing.T) {
		proposed := RoomBounds{X: 97, Y: 0, Width: 100, Height: 100}
		self := []Room{{ID: "a", Bounds: RoomBounds{X: 200, Y: 0, Width: 100, Height: 100}}}
		res := SnapRoom(proposed, "a", self, opts)
		assert.Equal(t, proposed, res.Bounds)
	})
}

func TestSnapRoom_BothAxes(t *testing.T) {
	rooms := []Room{
		{ID: "b", Bounds: RoomBounds{X: 200, Y: 0, Width: 100, Height: 100}},
		{ID: "c", Bounds: RoomBounds{X: 90, Y: -110, Width: 100, Height: 100}},
	}
	res := SnapRoom(RoomBounds{X: 90, Y: 0, Width: 100, Height: 100}, "a", rooms, SnapOptions{Mode: SnapMove})

	assert.Equal(t, RoomBounds{X: 85, Y: 5, Width: 100, Height: 100}, res.Bounds)
	require.Len(t, res.Connections, 2)
	assert.Equal(t, AxisVertical, res.Connections[0].Axis)
	assert.Equal(t, "b", res.Connections[0].RoomID)
	assert.Equal(t, AxisHorizontal, res.Connections[1].Axis)
	assert.Equal(t, "c", res.Connections[1].RoomID)
	assert.Len(t, res.Guides, 2)
}

func TestSnapRoom_Resize(t *testing.T) {
	rooms := []Room{{ID: "b", Bounds: RoomBounds{X: 200, Y: 0, Width: 100, Height: 100}}}

	t.Run("dragged edge stretches", func(t *testing.T) {
		res := SnapRoom(RoomBounds{X: 0, Y: 0, Width: 197, Height: 100}, "a", rooms, SnapOptions{
			Mode:        SnapResize,
			ActiveSides: []Side{SideRight},
		})
		assert.Equal(t, RoomBounds{X: 0, Y: 0, Width: 200, Height: 100}, res.Bounds)
	})

	t.Run("inactive edge ignored", func(t *testing.T) {
		proposed := RoomBounds{X: 0, Y: 0, Width: 197, Height: 100}
		res := SnapRoom(proposed, "a", rooms, SnapOptions{
			Mode:        SnapResize,
			ActiveSides: []Side{SideLeft},
		})
		assert.Equal(t, proposed, res.Bounds)
	})

	t.Run("never collapses the room", func(t *testing.T) {
		proposed := RoomBounds{X: 187, Y: 0, Width: 3, Height: 100}
		res := SnapRoom(proposed, "a", rooms, SnapOptions{
			Mode:        SnapResize,
			ActiveSides: []Side{SideRight},
		})
		assert.Equal(t, proposed, res.Bounds)
		assert.Empty(t, res.Connections)
	})
}

func TestChangedSides(t *testing.T) {
	before := RoomBounds{X: 0, Y: 0, Width: 100, Height: 100}
	assert.Empty(t, changedSides(before, before))
	assert.Equal(t, []Side{SideRight}, changedSides(before, RoomBounds{X: 0, Y: 0, Width: 120, Height: 100}))
	assert.Equal(t, []Side{SideTop, SideLeft}, changedSides(before, RoomBounds{X: -10, Y: -10, Width: 110, Height: 110}))
}

func TestFindAdjacencies_OwnerThickness(t *testing.T) {
	rooms := []Room{
		{ID: "a", Bounds: RoomBounds{X: 0, Y: 0, Width: 300, Height: 300}, WallThickness: 30},
		{ID: "b", Bounds: RoomBounds{X: 325, Y: 0, Width: 300, Height: 300}},
	}

	// a owns the shared wall, so its 30cm thickness sets the band
	adj := FindAdjacencies(rooms[0].Bounds, "a", rooms, DefaultSettings())
	require.Len(t, adj, 1)
	assert.Equal(t, ConnectionWall, adj[0].Type)
	assert.Equal(t, 25.0, adj[0].Gap)

	adj = FindAdjacencies(rooms[1].Bounds, "b", rooms, DefaultSettings())
	require.Len(t, adj, 1, "the pair is classified the same from either side")
	assert.Equal(t, SideLeft, adj[0].Side)

	// a thick wall on the non-owner does not widen the band
	rooms[0].WallThickness = 0
	rooms[1].WallThickness = 30
	assert.Empty(t, FindAdjacencies(rooms[0].Bounds, "a", rooms, DefaultSettings()))
}

func TestSnapRoom_OwnerThickness(t *testing.T) {
	rooms := []Room{
		{ID: "a", Bounds: RoomBounds{X: 0, Y: 0, Width: 300, Height: 300}, WallThickness: 30},
		{ID: "b", Bounds: RoomBounds{X: 500, Y: 0, Width: 300, Height: 300}},
	}

	res := SnapRoom(RoomBounds{X: 318, Y: 0, Width: 300, Height: 300}, "b", rooms, SnapOptions{Settings: DefaultSettings()})
	require.Len(t, res.Connections, 1)
	assert.Equal(t, ConnectionWall, res.Connections[0].Type)
	assert.Equal(t, 330.0, res.Bounds.X, "gap matches a's 30cm wall")

	// a room not yet in the plan brings its thickness through the options
	others := []Room{{ID: "b", Bounds: RoomBounds{X: 325, Y: 0, Width: 300, Height: 300}}}
	res = SnapRoom(RoomBounds{X: 7, Y: 0, Width: 300, Height: 300}, "a", others, SnapOptions{
		Settings:      DefaultSettings(),
		WallThickness: 30,
	})
	assert.Equal(t, -5.0, res.Bounds.X)
}
