package plan

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// minExtent keeps zero-width rooms indexable; rtreego rejects empty rectangles
const minExtent = 1e-6

// roomSpatial wraps a room for R-tree indexing
type roomSpatial struct {
	room Room
	rect rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface
func (r *roomSpatial) Bounds() rtreego.Rect {
	return r.rect
}

// boundsRect converts room bounds (grown by margin) into an rtreego rectangle
func boundsRect(b RoomBounds, margin float64) (rtreego.Rect, error) {
	bound := b.Bound()
	minX, minY := bound.Min[0]-margin, bound.Min[1]-margin
	w := math.Max(bound.Max[0]-bound.Min[0]+2*margin, minExtent)
	h := math.Max(bound.Max[1]-bound.Min[1]+2*margin, minExtent)
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
}

// RoomIndex is a spatial index over room bounds. It narrows candidate
// neighbours for snapping, adjacency and containment queries.
type RoomIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewRoomIndex indexes the given rooms
func NewRoomIndex(rooms []Room) *RoomIndex {
	idx := &RoomIndex{tree: rtreego.NewTree(2, 4, 16)}
	for _, r := range rooms {
		rect, err := boundsRect(r.Bounds, 0)
		if err != nil {
			continue
		}
		idx.tree.Insert(&roomSpatial{room: r, rect: rect})
		idx.count++
	}
	return idx
}

// Len returns the number of indexed rooms
func (idx *RoomIndex) Len() int {
	return idx.count
}

// Near returns rooms whose bounds come within margin of b, ordered by id.
// Rooms that merely touch the grown rectangle are excluded, so callers should
// pad margin by a small epsilon.
func (idx *RoomIndex) Near(b RoomBounds, margin float64) []Room {
	rect, err := boundsRect(b, margin)
	if err != nil {
		return nil
	}
	hits := idx.tree.SearchIntersect(rect)
	rooms := make([]Room, 0, len(hits))
	for _, h := range hits {
		rooms = append(rooms, h.(*roomSpatial).room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}
