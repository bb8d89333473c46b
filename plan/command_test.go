package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"op":"moveRoom","roomId":"living","dx":-97,"snap":true}`))
	require.NoError(t, err)
	assert.Equal(t, OpMoveRoom, cmd.Op)
	assert.Equal(t, "living", cmd.RoomID)
	assert.Equal(t, -97.0, cmd.DX)
	assert.True(t, cmd.Snap)

	cmd, err = ParseCommand([]byte(`{"op":"resizeRoom","roomId":"a","bounds":{"x":0,"y":0,"width":10,"height":20}}`))
	require.NoError(t, err)
	require.NotNil(t, cmd.Bounds)
	assert.Equal(t, 20.0, cmd.Bounds.Height)

	_, err = ParseCommand([]byte(`{"op":`))
	assert.Error(t, err)

	_, err = ParseCommand([]byte(`{"roomId":"a"}`))
	assert.Error(t, err)
}

// apartPlan holds two rooms 100 apart: no connection
func apartPlan(t *testing.T) *Plan {
	t.Helper()
	p := newTestPlan()
	addRooms(t, p, kitchen, Room{ID: "living", Bounds: RoomBounds{X: 500, Y: 0, Width: 300, Height: 300}})
	require.Empty(t, p.Connections)
	return p
}

func TestApply_ResizeWithSnap(t *testing.T) {
	p := apartPlan(t)

	err := p.Apply(Command{
		Op:     OpResizeRoom,
		RoomID: "kitchen",
		Bounds: &RoomBounds{X: 0, Y: 0, Width: 497, Height: 300},
		Snap:   true,
	})
	require.NoError(t, err)

	k, _ := p.Room("kitchen")
	assert.Equal(t, 500.0, k.Bounds.Width, "dragged edge snaps onto the neighbour")
	require.Len(t, p.Connections, 1)
	assert.Equal(t, ConnectionDirect, p.Connections[0].Type)
}

func TestApply_ResizeWithoutSnap(t *testing.T) {
	p := apartPlan(t)

	err := p.Apply(Command{Op: OpResizeRoom, RoomID: "kitchen", Bounds: &RoomBounds{X: 0, Y: 0, Width: 497, Height: 300}})
	require.NoError(t, err)

	k, _ := p.Room("kitchen")
	assert.Equal(t, 497.0, k.Bounds.Width)
	// a 3cm gap is still a direct connection
	require.Len(t, p.Connections, 1)
}

func TestApply_MoveWithSnap(t *testing.T) {
	p := apartPlan(t)

	require.NoError(t, p.Apply(Command{Op: OpMoveRoom, RoomID: "living", DX: -97, Snap: true}))
	l, _ := p.Room("living")
	assert.Equal(t, 400.0, l.Bounds.X)
}

func TestApply_AddRoomWithSnap(t *testing.T) {
	p := apartPlan(t)

	bath := Room{ID: "bath", Bounds: RoomBounds{X: 0, Y: 303, Width: 400, Height: 100}}
	require.NoError(t, p.Apply(Command{Op: OpAddRoom, Room: &bath, Snap: true}))

	b, ok := p.Room("bath")
	require.True(t, ok)
	assert.Equal(t, 300.0, b.Bounds.Y)
	assert.Len(t, p.RoomConnections("bath"), 1)
}

func TestApply_OtherOps(t *testing.T) {
	p := apartPlan(t)

	require.NoError(t, p.Apply(Command{Op: OpAddFurniture, Furniture: &FurnitureInstance{ID: "sofa", Position: Point{X: 600, Y: 100}}}))
	assert.Equal(t, "living", p.Furniture[0].RoomID)

	top := p.RoomWalls("kitchen")[0]
	require.NoError(t, p.Apply(Command{Op: OpAddDoor, Door: &Door{ID: "d", WallID: top.ID, Position: 100, Width: 80}}))
	assert.Len(t, p.Doors, 1)

	require.NoError(t, p.Apply(Command{Op: OpRecompute}))
	assert.Len(t, p.Walls, 8)

	require.NoError(t, p.Apply(Command{Op: OpDeleteRoom, RoomID: "living"}))
	assert.Len(t, p.Rooms, 1)
	assert.Empty(t, p.Furniture[0].RoomID, "sofa is homeless after its room is gone")
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cmd      Command
		notFound bool
	}{
		{"add without room", Command{Op: OpAddRoom}, false},
		{"resize without bounds", Command{Op: OpResizeRoom, RoomID: "kitchen"}, false},
		{"resize unknown room", Command{Op: OpResizeRoom, RoomID: "garage", Bounds: &RoomBounds{Width: 1, Height: 1}}, true},
		{"snap resize unknown room", Command{Op: OpResizeRoom, RoomID: "garage", Bounds: &RoomBounds{Width: 1, Height: 1}, Snap: true}, true},
		{"snap move unknown room", Command{Op: OpMoveRoom, RoomID: "garage", Snap: true}, true},
		{"move unknown room", Command{Op: OpMoveRoom, RoomID: "garage", DX: 1}, true},
		{"delete unknown room", Command{Op: OpDeleteRoom, RoomID: "garage"}, true},
		{"furniture missing", Command{Op: OpAddFurniture}, false},
		{"door missing", Command{Op: OpAddDoor}, false},
		{"unknown op", Command{Op: "paint"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := apartPlan(t)
			err := p.Apply(tt.cmd)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrRoomNotFound))
		})
	}

	p := apartPlan(t)
	err := p.Apply(Command{Op: OpAddDoor, Door: &Door{WallID: "nope"}})
	assert.ErrorIs(t, err, ErrWallNotFound)
}
