package plan

import "math"

// searchEpsilon pads spatial queries so rooms touching the search window are still returned
const searchEpsilon = 0.5

// SideGap returns the signed distance between a's side and the facing side of b.
// Positive means the rooms are apart, negative means they overlap across that edge.
func SideGap(a RoomBounds, side Side, b RoomBounds) float64 {
	switch side {
	case SideRight:
		return b.Left() - a.Right()
	case SideLeft:
		return a.Left() - b.Right()
	case SideBottom:
		return b.Top() - a.Bottom()
	default:
		return a.Top() - b.Bottom()
	}
}

// EdgeOverlap returns the span of a's side that faces b, measured along the
// perpendicular axis in a's local edge coordinates (0 is the left end of a
// top/bottom edge and the top end of a left/right edge). ok is false when the
// spans do not overlap.
func EdgeOverlap(a RoomBounds, side Side, b RoomBounds) (span EdgeExclusion, ok bool) {
	var lo, hi, origin float64
	if side == SideTop || side == SideBottom {
		lo, hi = math.Max(a.Left(), b.Left()), math.Min(a.Right(), b.Right())
		origin = a.Left()
	} else {
		lo, hi = math.Max(a.Top(), b.Top()), math.Min(a.Bottom(), b.Bottom())
		origin = a.Top()
	}
	if hi <= lo {
		return EdgeExclusion{}, false
	}
	return EdgeExclusion{Start: lo - origin, End: hi - origin}, true
}

// ClassifyGap decides whether a gap between facing edges forms a connection and of
// which type. previous is the type of an existing connection between the pair, or
// empty. With Settings.ConnectionHysteresis > 0 an existing connection keeps its
// type (and survives) over a wider band than a new one needs to form.
func ClassifyGap(gap float64, previous ConnectionType, s Settings) (ConnectionType, bool) {
	s = s.withDefaults()
	h := s.ConnectionHysteresis

	maxGap := s.WallThickness + s.WallConnectionTolerance
	if previous != "" {
		maxGap += h
	}
	if gap < -s.PointTolerance || gap > maxGap {
		return "", false
	}

	directLimit := s.DirectSnapThreshold
	switch previous {
	case ConnectionDirect:
		directLimit += h
	case ConnectionWall:
		directLimit -= h
	}
	if gap < directLimit {
		return ConnectionDirect, true
	}
	return ConnectionWall, true
}

// Adjacency is a pure adjacency fact between a room and one neighbour
type Adjacency struct {
	RoomID    string         `json:"roomId"`
	Axis      Axis           `json:"axis"`
	Side      Side           `json:"side"`
	OtherSide Side           `json:"otherSide"`
	Type      ConnectionType `json:"type"`
	Gap       float64        `json:"gap"`
	Overlap   float64        `json:"overlap"`
}

// FindAdjacencies reports every edge pair between bounds and the other rooms whose
// perpendicular overlap exceeds the minimum overlap and whose gap lies between 0
// and wall thickness plus tolerance. The thickness is that of the room that
// would own the shared wall. The room identified by selfID is skipped.
func FindAdjacencies(bounds RoomBounds, selfID string, rooms []Room, s Settings) []Adjacency {
	return findAdjacencies(bounds, selfID, rooms, s, nil)
}

// previousTypes maps a neighbour id to the type of its existing connection
type previousTypes map[string]ConnectionType

func findAdjacencies(bounds RoomBounds, selfID string, rooms []Room, s Settings, prev previousTypes) []Adjacency {
	s = s.withDefaults()
	self := selfRoom(selfID, rooms, 0)
	reach := maxThickness(rooms, s) + s.WallConnectionTolerance + s.ConnectionHysteresis + searchEpsilon

	var result []Adjacency
	for _, other := range NewRoomIndex(rooms).Near(bounds, reach) {
		if other.ID == selfID {
			continue
		}
		for _, side := range Sides {
			span, ok := EdgeOverlap(bounds, side, other.Bounds)
			if !ok || span.Length() <= s.MinConnectionOverlap {
				continue
			}
			gap := SideGap(bounds, side, other.Bounds)
			pair := s
			pair.WallThickness = sharedWallThickness(s, self, other)
			ct, ok := ClassifyGap(gap, prev[other.ID], pair)
			if !ok {
				continue
			}
			result = append(result, Adjacency{
				RoomID:    other.ID,
				Axis:      side.Axis(),
				Side:      side,
				OtherSide: side.Opposite(),
				Type:      ct,
				Gap:       gap,
				Overlap:   span.Length(),
			})
		}
	}
	return result
}

// SnapMode selects how a proposed rectangle is adjusted while snapping
type SnapMode int

const (
	// SnapMove translates the whole rectangle
	SnapMove SnapMode = iota
	// SnapResize moves only the dragged edges, changing the rectangle size
	SnapResize
)

// SnapOptions controls SnapRoom
type SnapOptions struct {
	Settings Settings
	Mode     SnapMode
	// ActiveSides lists the dragged edges in SnapResize mode. Ignored when moving.
	ActiveSides []Side
	// WallThickness of the snapped room. Zero uses its record among the rooms,
	// or the settings default for a room not yet in the plan.
	WallThickness float64
}

// SnapConnection is the relationship committed on one axis by a snap
type SnapConnection struct {
	RoomID    string         `json:"roomId"`
	Axis      Axis           `json:"axis"`
	Side      Side           `json:"side"`
	OtherSide Side           `json:"otherSide"`
	Type      ConnectionType `json:"type"`
	Gap       float64        `json:"gap"` // gap before snapping
}

// SnapResult is the outcome of SnapRoom
type SnapResult struct {
	Bounds      RoomBounds       `json:"bounds"`
	Guides      []Guide          `json:"guides"`
	Connections []SnapConnection `json:"connections"`
}

type snapCandidate struct {
	other     RoomBounds
	thickness float64 // of the wall the pair would share
	conn      SnapConnection
	dist      float64
}

// SnapRoom aligns a proposed rectangle against the other rooms. Each axis is
// snapped independently to the closest facing edge: below the direct threshold
// the edges are made to touch (direct), below the wall threshold they are set one
// wall thickness apart (wall), using the thickness of the wall's future owner. At most one connection is committed per axis and
// ties keep the smaller gap. Neighbours without positive overlap on the
// perpendicular axis are never considered.
func SnapRoom(proposed RoomBounds, selfID string, rooms []Room, opts SnapOptions) SnapResult {
	s := opts.Settings.withDefaults()
	active := make(map[Side]bool, 4)
	for _, side := range Sides {
		active[side] = opts.Mode == SnapMove
	}
	for _, side := range opts.ActiveSides {
		active[side] = true
	}

	self := selfRoom(selfID, rooms, opts.WallThickness)

	var bestX, bestY *snapCandidate
	for _, other := range NewRoomIndex(rooms).Near(proposed, s.WallSnapThreshold+searchEpsilon) {
		if other.ID == selfID {
			continue
		}
		for _, side := range Sides {
			if !active[side] {
				continue
			}
			if _, ok := EdgeOverlap(proposed, side, other.Bounds); !ok {
				continue
			}
			gap := SideGap(proposed, side, other.Bounds)
			dist := math.Abs(gap)
			if dist >= s.WallSnapThreshold {
				continue
			}
			ct := ConnectionWall
			if dist < s.DirectSnapThreshold {
				ct = ConnectionDirect
			}
			c := &snapCandidate{
				other:     other.Bounds,
				thickness: sharedWallThickness(s, self, other),
				dist:      dist,
				conn: SnapConnection{
					RoomID:    other.ID,
					Axis:      side.Axis(),
					Side:      side,
					OtherSide: side.Opposite(),
					Type:      ct,
					Gap:       gap,
				},
			}
			if side.Axis() == AxisVertical {
				if bestX == nil || c.dist < bestX.dist {
					bestX = c
				}
			} else if bestY == nil || c.dist < bestY.dist {
				bestY = c
			}
		}
	}

	result := SnapResult{Bounds: proposed}
	for _, c := range []*snapCandidate{bestX, bestY} {
		if c == nil {
			continue
		}
		target := 0.0
		if c.conn.Type == ConnectionWall {
			target = c.thickness
		}
		snapped := applySnap(result.Bounds, c.conn.Side, c.conn.Gap, target, opts.Mode)
		if snapped.Width <= 0 || snapped.Height <= 0 {
			continue
		}
		result.Bounds = snapped
		result.Connections = append(result.Connections, c.conn)
		result.Guides = append(result.Guides, snapGuide(result.Bounds, c.conn.Side, c.other))
	}
	return result
}

// selfRoom returns the record of the room being snapped or queried. A room
// not yet in the plan gets a stand-in carrying only its id and thickness.
func selfRoom(selfID string, rooms []Room, thickness float64) Room {
	self := Room{ID: selfID}
	for _, r := range rooms {
		if r.ID == selfID && selfID != "" {
			self = r
			break
		}
	}
	if thickness > 0 {
		self.WallThickness = thickness
	}
	return self
}

// sharedWallThickness is the thickness of the wall a and b would share: the
// owner generates it with its own thickness.
func sharedWallThickness(s Settings, a, b Room) float64 {
	if OwnsSharedWall(a.ID, b.ID) {
		return s.thicknessFor(a)
	}
	return s.thicknessFor(b)
}

// maxThickness is the thickest wall any room generates
func maxThickness(rooms []Room, s Settings) float64 {
	t := s.WallThickness
	for _, r := range rooms {
		t = math.Max(t, s.thicknessFor(r))
	}
	return t
}

// applySnap shifts (or, when resizing, stretches) b so the gap on side becomes target
func applySnap(b RoomBounds, side Side, gap, target float64, mode SnapMode) RoomBounds {
	d := gap - target
	switch side {
	case SideRight:
		if mode == SnapResize {
			b.Width += d
		} else {
			b.X += d
		}
	case SideBottom:
		if mode == SnapResize {
			b.Height += d
		} else {
			b.Y += d
		}
	case SideLeft:
		b.X -= d
		if mode == SnapResize {
			b.Width += d
		}
	case SideTop:
		b.Y -= d
		if mode == SnapResize {
			b.Height += d
		}
	}
	return b
}

// snapGuide builds the guide line drawn along the neighbour's facing edge
func snapGuide(b RoomBounds, side Side, other RoomBounds) Guide {
	pos := other.EdgePosition(side.Opposite())
	if side.Axis() == AxisVertical {
		return Guide{
			Axis:     AxisVertical,
			Position: pos,
			Start:    math.Min(b.Top(), other.Top()),
			End:      math.Max(b.Bottom(), other.Bottom()),
		}
	}
	return Guide{
		Axis:     AxisHorizontal,
		Position: pos,
		Start:    math.Min(b.Left(), other.Left()),
		End:      math.Max(b.Right(), other.Right()),
	}
}
