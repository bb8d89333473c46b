package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func roomIDs(rooms []Room) []string {
	ids := make([]string, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}

func TestRoomIndex_Near(t *testing.T) {
	rooms := []Room{
		{ID: "far", Bounds: RoomBounds{X: 200, Y: 0, Width: 100, Height: 100}},
		{ID: "inner", Bounds: RoomBounds{X: 50, Y: 50, Width: 10, Height: 10}},
		{ID: "base", Bounds: RoomBounds{X: 0, Y: 0, Width: 100, Height: 100}},
	}
	idx := NewRoomIndex(rooms)
	assert.Equal(t, 3, idx.Len())

	base := rooms[2].Bounds
	assert.Equal(t, []string{"base", "inner"}, roomIDs(idx.Near(base, 0)))
	assert.Equal(t, []string{"base", "far", "inner"}, roomIDs(idx.Near(base, 150)), "sorted by id")
	assert.Empty(t, idx.Near(RoomBounds{X: 1000, Y: 1000, Width: 10, Height: 10}, 5))
}

func TestRoomIndex_DegenerateRooms(t *testing.T) {
	idx := NewRoomIndex([]Room{
		{ID: "line", Bounds: RoomBounds{X: 0, Y: 0, Width: 0, Height: 100}},
	})
	assert.Equal(t, 1, idx.Len())
	assert.Len(t, idx.Near(RoomBounds{X: -10, Y: 10, Width: 20, Height: 20}, 0), 1)
}

func TestRoomIndex_Empty(t *testing.T) {
	idx := NewRoomIndex(nil)
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Near(RoomBounds{Width: 10, Height: 10}, 100))
}
