package plan

import (
	"math"
	"sort"
)

// exclusionSet holds the merged exclusion spans of each side. direct keeps the
// subset caused by direct connections, where no wall exists on either side.
type exclusionSet struct {
	all    map[Side][]EdgeExclusion
	direct map[Side][]EdgeExclusion
}

// OwnsSharedWall reports whether roomID generates the wall shared with otherID
// through a wall-type connection. The lexicographically smaller id owns it; the
// larger id defers. This tie-break is part of the wall ownership contract.
func OwnsSharedWall(roomID, otherID string) bool {
	return roomID < otherID
}

func computeExclusions(room Room, connections []RoomConnection, byID map[string]Room, tol float64) exclusionSet {
	all := make(map[Side][]EdgeExclusion, 4)
	direct := make(map[Side][]EdgeExclusion, 4)

	for _, c := range connections {
		if !c.Involves(room.ID) {
			continue
		}
		otherID, mySide, _ := c.Other(room.ID)
		other, ok := byID[otherID]
		if !ok || otherID == room.ID {
			continue
		}
		span, ok := EdgeOverlap(room.Bounds, mySide, other.Bounds)
		if !ok {
			continue
		}
		switch c.Type {
		case ConnectionDirect:
			all[mySide] = append(all[mySide], span)
			direct[mySide] = append(direct[mySide], span)
		case ConnectionWall:
			if !OwnsSharedWall(room.ID, otherID) {
				all[mySide] = append(all[mySide], span)
			}
		}
	}

	set := exclusionSet{
		all:    make(map[Side][]EdgeExclusion, 4),
		direct: make(map[Side][]EdgeExclusion, 4),
	}
	for _, side := range Sides {
		length := room.Bounds.EdgeLength(side)
		set.all[side] = MergeExclusions(all[side], length, tol)
		set.direct[side] = MergeExclusions(direct[side], length, tol)
	}
	return set
}

// ComputeEdgeExclusions returns, per side, the merged spans where the room must
// not generate wall material given its connections and the live bounds of its
// neighbours.
func ComputeEdgeExclusions(room Room, connections []RoomConnection, rooms []Room, tol float64) map[Side][]EdgeExclusion {
	return computeExclusions(room, connections, roomsByID(rooms), tol).all
}

// MergeExclusions clamps intervals to [0, length], drops empty ones, sorts them
// by start and coalesces intervals that overlap or touch within tol.
func MergeExclusions(exclusions []EdgeExclusion, length, tol float64) []EdgeExclusion {
	clamped := make([]EdgeExclusion, 0, len(exclusions))
	for _, e := range exclusions {
		e.Start = math.Max(0, e.Start)
		e.End = math.Min(length, e.End)
		if e.End-e.Start > tol {
			clamped = append(clamped, e)
		}
	}
	if len(clamped) == 0 {
		return nil
	}

	sort.Slice(clamped, func(i, j int) bool { return clamped[i].Start < clamped[j].Start })

	merged := []EdgeExclusion{clamped[0]}
	for _, e := range clamped[1:] {
		last := &merged[len(merged)-1]
		if e.Start <= last.End+tol {
			last.End = math.Max(last.End, e.End)
			continue
		}
		merged = append(merged, e)
	}
	return merged
}

// EdgeSpan is a wall-present sub-segment of an edge, in local edge coordinates
type EdgeSpan struct {
	Start         float64
	End           float64
	AtStartCorner bool // Start is the room's true corner rather than an exclusion boundary
	AtEndCorner   bool
}

// SubtractExclusions returns the parts of [0, length] not covered by the merged
// exclusions. Slivers shorter than tol are dropped.
func SubtractExclusions(length float64, merged []EdgeExclusion, tol float64) []EdgeSpan {
	var spans []EdgeSpan
	cursor := 0.0
	fromCorner := true

	for _, e := range merged {
		if e.Start > cursor+tol {
			spans = append(spans, EdgeSpan{Start: cursor, End: e.Start, AtStartCorner: fromCorner})
		}
		cursor = math.Max(cursor, e.End)
		fromCorner = false
	}
	if length-cursor > tol {
		spans = append(spans, EdgeSpan{Start: cursor, End: length, AtStartCorner: fromCorner, AtEndCorner: true})
	}
	return spans
}

// covered reports whether local position p lies inside any merged interval
func covered(merged []EdgeExclusion, p, tol float64) bool {
	for _, e := range merged {
		if p >= e.Start-tol && p <= e.End+tol {
			return true
		}
	}
	return false
}

// cornerNeighbours returns the perpendicular sides meeting side at its start and
// end corners, and the local coordinate of that corner along them.
func cornerNeighbours(b RoomBounds, side Side) (startSide, endSide Side, local float64) {
	if side == SideTop || side == SideBottom {
		startSide, endSide = SideLeft, SideRight
	} else {
		startSide, endSide = SideTop, SideBottom
	}
	if side == SideBottom || side == SideRight {
		local = b.EdgeLength(startSide)
	}
	return startSide, endSide, local
}

// edgePoint maps a local edge coordinate to the wall centerline, offset outward by offset
func edgePoint(b RoomBounds, side Side, local, offset float64) Point {
	switch side {
	case SideTop:
		return Point{X: b.Left() + local, Y: b.Top() - offset}
	case SideBottom:
		return Point{X: b.Left() + local, Y: b.Bottom() + offset}
	case SideLeft:
		return Point{X: b.Left() - offset, Y: b.Top() + local}
	default:
		return Point{X: b.Right() + offset, Y: b.Top() + local}
	}
}

// sideLocal projects a world point onto side's local edge coordinate
func sideLocal(b RoomBounds, side Side, p Point) float64 {
	if side == SideTop || side == SideBottom {
		return p.X - b.Left()
	}
	return p.Y - b.Top()
}

// SynthesizeRoomWalls computes every wall segment the room owns given its
// connections and the live bounds of all rooms. Segments are emitted per side
// in top, right, bottom, left order, each running from the lower local
// coordinate to the higher, offset outward by half the wall thickness.
//
// A segment end at a true room corner extends by half the thickness when a
// perpendicular wall meets that corner (own, or a neighbour's shared wall); a
// corner opened by a direct connection gets no extension. A segment end at an
// exclusion boundary retracts by half the thickness so it meets the
// neighbour's wall flush.
func SynthesizeRoomWalls(room Room, connections []RoomConnection, rooms []Room, s Settings, newID func() string) []Wall {
	s = s.withDefaults()
	b := room.Bounds
	if b.Width <= 0 || b.Height <= 0 {
		return nil
	}

	tol := s.PointTolerance
	thickness := s.thicknessFor(room)
	half := thickness / 2
	byID := roomsByID(rooms)
	ex := computeExclusions(room, connections, byID, tol)

	var walls []Wall
	for _, side := range Sides {
		startSide, endSide, cornerLocal := cornerNeighbours(b, side)
		startPerp := !covered(ex.direct[startSide], cornerLocal, tol)
		endPerp := !covered(ex.direct[endSide], cornerLocal, tol)

		for _, span := range SubtractExclusions(b.EdgeLength(side), ex.all[side], tol) {
			lo, hi := span.Start, span.End
			switch {
			case span.AtStartCorner && startPerp:
				lo -= half
			case !span.AtStartCorner:
				lo += half
			}
			switch {
			case span.AtEndCorner && endPerp:
				hi += half
			case !span.AtEndCorner:
				hi -= half
			}
			if hi-lo <= tol {
				continue
			}

			walls = append(walls, Wall{
				ID:          newID(),
				Start:       edgePoint(b, side, lo, half),
				End:         edgePoint(b, side, hi, half),
				Thickness:   thickness,
				Height:      s.heightFor(room),
				Material:    s.materialFor(room),
				OwnerRoomID: room.ID,
			})
		}
	}

	attachConnectionOpenings(room, walls, connections, byID, tol)
	return walls
}

// GenerateWalls returns the unconstrained four-wall rectangle for bounds
func GenerateWalls(bounds RoomBounds, s Settings, newID func() string) []Wall {
	return SynthesizeRoomWalls(Room{Bounds: bounds}, nil, nil, s, newID)
}

// attachConnectionOpenings places the openings of wall-type connections onto the
// shared wall segments this room owns. Opening positions on a connection are
// measured from the start of the live overlap.
func attachConnectionOpenings(room Room, walls []Wall, connections []RoomConnection, byID map[string]Room, tol float64) {
	for _, c := range connections {
		if c.Type != ConnectionWall || len(c.Openings) == 0 || !c.Involves(room.ID) {
			continue
		}
		otherID, mySide, _ := c.Other(room.ID)
		other, ok := byID[otherID]
		if !ok || !OwnsSharedWall(room.ID, otherID) {
			continue
		}
		span, ok := EdgeOverlap(room.Bounds, mySide, other.Bounds)
		if !ok {
			continue
		}
		for _, op := range c.Openings {
			local := span.Start + op.Position
			for i := range walls {
				if WallSide(walls[i], room.Bounds) != mySide {
					continue
				}
				lo := sideLocal(room.Bounds, mySide, walls[i].Start)
				hi := sideLocal(room.Bounds, mySide, walls[i].End)
				if local < lo-tol || local > hi+tol {
					continue
				}
				placed := op
				placed.Position = clamp(local-lo, 0, walls[i].Length())
				walls[i].Openings = upsertOpening(walls[i].Openings, placed)
				break
			}
		}
	}
}

// WallSide classifies a room-owned wall by the side of bounds it runs along
func WallSide(w Wall, b RoomBounds) Side {
	c := b.Center()
	mid := Point{X: (w.Start.X + w.End.X) / 2, Y: (w.Start.Y + w.End.Y) / 2}
	if w.IsHorizontal() {
		if mid.Y < c.Y {
			return SideTop
		}
		return SideBottom
	}
	if mid.X < c.X {
		return SideLeft
	}
	return SideRight
}

// OpeningMove records where an opening landed after its room's walls were regenerated
type OpeningMove struct {
	OpeningID string
	WallID    string
	Position  float64
}

// ReassignOpenings moves the openings carried by a room's previous walls onto
// their positional counterparts in the regenerated wall list. The counterpart is
// the new wall on the same side whose span contains (or lies nearest to) the
// opening's location relative to the room; when that side has no wall any more
// the wall at the same ordinal index is used. Positions are clamped to the new
// wall's length. Openings that cannot be placed are returned in dropped.
func ReassignOpenings(oldWalls, newWalls []Wall, oldBounds, newBounds RoomBounds) (moves []OpeningMove, dropped []string) {
	// openings already placed by the synthesizer (connection openings) stay where they are
	placed := make(map[string]bool)
	for _, w := range newWalls {
		for _, op := range w.Openings {
			placed[op.ID] = true
		}
	}

	for i, ow := range oldWalls {
		if len(ow.Openings) == 0 {
			continue
		}
		side := WallSide(ow, oldBounds)
		for _, op := range ow.Openings {
			if placed[op.ID] {
				continue
			}
			if len(newWalls) == 0 {
				dropped = append(dropped, op.ID)
				continue
			}
			local := sideLocal(oldBounds, side, pointAlong(ow, op.Position))
			target := edgePoint(newBounds, side, local, 0)

			j := counterpartWall(newWalls, newBounds, side, local)
			if j < 0 {
				j = min(i, len(newWalls)-1)
			}

			moved := op
			moved.Position = clamp(projectOnto(newWalls[j], target), 0, newWalls[j].Length())
			newWalls[j].Openings = upsertOpening(newWalls[j].Openings, moved)
			placed[op.ID] = true
			moves = append(moves, OpeningMove{OpeningID: op.ID, WallID: newWalls[j].ID, Position: moved.Position})
		}
	}
	return moves, dropped
}

// counterpartWall picks the wall on side whose local span contains local, or the
// closest one on that side. Returns -1 when the side has no walls.
func counterpartWall(walls []Wall, b RoomBounds, side Side, local float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, w := range walls {
		if WallSide(w, b) != side {
			continue
		}
		lo := sideLocal(b, side, w.Start)
		hi := sideLocal(b, side, w.End)
		if lo > hi {
			lo, hi = hi, lo
		}
		var d float64
		switch {
		case local < lo:
			d = lo - local
		case local > hi:
			d = local - hi
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// pointAlong returns the point at distance d from the wall start
func pointAlong(w Wall, d float64) Point {
	l := w.Length()
	if l == 0 {
		return w.Start
	}
	t := d / l
	return Point{X: w.Start.X + (w.End.X-w.Start.X)*t, Y: w.Start.Y + (w.End.Y-w.Start.Y)*t}
}

// projectOnto returns the distance from the wall start of p's projection onto the wall line
func projectOnto(w Wall, p Point) float64 {
	l := w.Length()
	if l == 0 {
		return 0
	}
	dx, dy := (w.End.X-w.Start.X)/l, (w.End.Y-w.Start.Y)/l
	return (p.X-w.Start.X)*dx + (p.Y-w.Start.Y)*dy
}

func upsertOpening(openings []Opening, op Opening) []Opening {
	for i := range openings {
		if openings[i].ID == op.ID {
			openings[i] = op
			return openings
		}
	}
	return append(openings, op)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roomsByID(rooms []Room) map[string]Room {
	m := make(map[string]Room, len(rooms))
	for _, r := range rooms {
		m[r.ID] = r
	}
	return m
}
