package plan

import (
	"math"

	"github.com/paulmach/orb"
)

// Point represents a 2D coordinate in centimeters (top-left origin, Y down)
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Add returns p translated by (dx, dy)
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// toOrb converts the point to an orb.Point
func (p Point) toOrb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// RoomBounds is the interior floor rectangle of a room. (X, Y) is the top-left corner.
type RoomBounds struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (b RoomBounds) Left() float64   { return b.X }
func (b RoomBounds) Right() float64  { return b.X + b.Width }
func (b RoomBounds) Top() float64    { return b.Y }
func (b RoomBounds) Bottom() float64 { return b.Y + b.Height }

// Center returns the midpoint of the rectangle
func (b RoomBounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Area returns the interior floor area in cm². Degenerate rectangles have zero area.
func (b RoomBounds) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Perimeter returns the interior perimeter in cm
func (b RoomBounds) Perimeter() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return 2 * (b.Width + b.Height)
}

// Translate returns the rectangle moved by (dx, dy)
func (b RoomBounds) Translate(dx, dy float64) RoomBounds {
	b.X += dx
	b.Y += dy
	return b
}

// Expand grows the rectangle by d on every side. Negative d shrinks it.
func (b RoomBounds) Expand(d float64) RoomBounds {
	return RoomBounds{X: b.X - d, Y: b.Y - d, Width: b.Width + 2*d, Height: b.Height + 2*d}
}

// EdgeLength returns the length of the given side
func (b RoomBounds) EdgeLength(s Side) float64 {
	if s == SideTop || s == SideBottom {
		return b.Width
	}
	return b.Height
}

// EdgePosition returns the fixed coordinate of a side: Y for top/bottom, X for left/right
func (b RoomBounds) EdgePosition(s Side) float64 {
	switch s {
	case SideTop:
		return b.Top()
	case SideBottom:
		return b.Bottom()
	case SideLeft:
		return b.Left()
	default:
		return b.Right()
	}
}

// ContainsPoint reports whether p lies inside the rectangle, edges included
func (b RoomBounds) ContainsPoint(p Point) bool {
	return b.Bound().Contains(p.toOrb())
}

// ContainsBounds reports whether other lies fully inside b (within tol) and is strictly smaller.
// Equal rectangles never contain each other, which keeps containment acyclic.
func (b RoomBounds) ContainsBounds(other RoomBounds, tol float64) bool {
	if other.Area() <= 0 || b.Area() <= other.Area() {
		return false
	}
	return other.Left() >= b.Left()-tol &&
		other.Right() <= b.Right()+tol &&
		other.Top() >= b.Top()-tol &&
		other.Bottom() <= b.Bottom()+tol
}

// Bound converts the rectangle to an orb.Bound
func (b RoomBounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(b.Left(), b.Right()), math.Min(b.Top(), b.Bottom())},
		Max: orb.Point{math.Max(b.Left(), b.Right()), math.Max(b.Top(), b.Bottom())},
	}
}

// Axis names the orientation of a shared edge. A vertical connection pairs
// right/left sides, a horizontal connection pairs bottom/top sides.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

// Side is one of the four edges of a room
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Sides lists the four edges in wall ordinal order
var Sides = [4]Side{SideTop, SideRight, SideBottom, SideLeft}

// Opposite returns the facing side
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	default:
		return SideLeft
	}
}

// Axis returns the axis of a connection made on this side
func (s Side) Axis() Axis {
	if s == SideTop || s == SideBottom {
		return AxisHorizontal
	}
	return AxisVertical
}

func (s Side) ordinal() int {
	for i, o := range Sides {
		if o == s {
			return i
		}
	}
	return -1
}

// ConnectionType classifies the relationship between two adjacent rooms
type ConnectionType string

const (
	// ConnectionWall means one shared wall separates the rooms
	ConnectionWall ConnectionType = "wall"
	// ConnectionDirect means the rooms open into each other with no wall
	ConnectionDirect ConnectionType = "direct"
)

// OpeningType distinguishes doors from windows
type OpeningType string

const (
	OpeningDoor   OpeningType = "door"
	OpeningWindow OpeningType = "window"
)

// Opening is a door/window cut-out carried on a wall. Position is the distance
// of the opening's center from the wall start.
type Opening struct {
	ID        string      `yaml:"id" json:"id"`
	Type      OpeningType `yaml:"type" json:"type"`
	Position  float64     `yaml:"position" json:"position"`
	Width     float64     `yaml:"width" json:"width"`
	Height    float64     `yaml:"height" json:"height"`
	Elevation float64     `yaml:"elevation,omitempty" json:"elevation,omitempty"`
}

// Wall is an undirected wall segment along its centerline
type Wall struct {
	ID          string    `yaml:"id" json:"id"`
	Start       Point     `yaml:"start" json:"start"`
	End         Point     `yaml:"end" json:"end"`
	Thickness   float64   `yaml:"thickness" json:"thickness"`
	Height      float64   `yaml:"height" json:"height"`
	Material    string    `yaml:"material,omitempty" json:"material,omitempty"`
	Openings    []Opening `yaml:"openings,omitempty" json:"openings,omitempty"`
	OwnerRoomID string    `yaml:"ownerRoomId,omitempty" json:"ownerRoomId,omitempty"`
}

// Length returns the centerline length
func (w Wall) Length() float64 {
	return Distance(w.Start, w.End)
}

// IsHorizontal reports whether the wall runs along the X axis
func (w Wall) IsHorizontal() bool {
	return math.Abs(w.End.Y-w.Start.Y) <= math.Abs(w.End.X-w.Start.X)
}

// Room is a rectangular space. Walls, connections and containment are derived from Bounds.
type Room struct {
	ID                    string     `yaml:"id" json:"id"`
	Name                  string     `yaml:"name,omitempty" json:"name,omitempty"`
	Bounds                RoomBounds `yaml:"bounds" json:"bounds"`
	WallIDs               []string   `yaml:"-" json:"wallIds"`
	ParentRoomID          string     `yaml:"-" json:"parentRoomId,omitempty"`
	ContainedRoomIDs      []string   `yaml:"-" json:"containedRoomIds"`
	ContainedFurnitureIDs []string   `yaml:"-" json:"containedFurnitureIds"` // every item centred in Bounds, nested rooms included
	Area                  float64    `yaml:"-" json:"area"`
	Perimeter             float64    `yaml:"-" json:"perimeter"`
	ZIndex                int        `yaml:"zIndex,omitempty" json:"zIndex"`
	WallThickness         float64    `yaml:"wallThickness,omitempty" json:"wallThickness,omitempty"`
	WallHeight            float64    `yaml:"wallHeight,omitempty" json:"wallHeight,omitempty"`
	Material              string     `yaml:"material,omitempty" json:"material,omitempty"`
}

// RoomConnection records that two rooms share an edge. It stores axis and side
// labels only; the physical overlap is recomputed from live bounds.
type RoomConnection struct {
	ID        string         `yaml:"id" json:"id"`
	RoomIDs   [2]string      `yaml:"roomIds" json:"roomIds"`
	Axis      Axis           `yaml:"axis" json:"axis"`
	RoomSides [2]Side        `yaml:"roomSides" json:"roomSides"`
	Type      ConnectionType `yaml:"type" json:"type"`
	Openings  []Opening      `yaml:"openings,omitempty" json:"openings,omitempty"`
}

// Involves reports whether the connection touches the given room
func (c RoomConnection) Involves(roomID string) bool {
	return c.RoomIDs[0] == roomID || c.RoomIDs[1] == roomID
}

// Other returns the neighbour id and the (own, neighbour) sides as seen from roomID
func (c RoomConnection) Other(roomID string) (otherID string, mySide, otherSide Side) {
	if c.RoomIDs[0] == roomID {
		return c.RoomIDs[1], c.RoomSides[0], c.RoomSides[1]
	}
	return c.RoomIDs[0], c.RoomSides[1], c.RoomSides[0]
}

// EdgeExclusion is a 1-D interval in room-local edge coordinates where no wall is generated
type EdgeExclusion struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns the interval length, never negative
func (e EdgeExclusion) Length() float64 {
	return math.Max(0, e.End-e.Start)
}

// FurnitureInstance is a placed furniture item. Position is its center point.
type FurnitureInstance struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name,omitempty" json:"name,omitempty"`
	Position Point   `yaml:"position" json:"position"`
	Width    float64 `yaml:"width" json:"width"`
	Depth    float64 `yaml:"depth" json:"depth"`
	Rotation float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	RoomID   string  `yaml:"-" json:"roomId,omitempty"`
}

// Door is a placed door or window attached to a wall. Its Opening mirror lives on the wall.
type Door struct {
	ID        string      `yaml:"id" json:"id"`
	WallID    string      `yaml:"wallId" json:"wallId"`
	Type      OpeningType `yaml:"type" json:"type"`
	Position  float64     `yaml:"position" json:"position"`
	Width     float64     `yaml:"width" json:"width"`
	Height    float64     `yaml:"height" json:"height"`
	Elevation float64     `yaml:"elevation,omitempty" json:"elevation,omitempty"`
}

// opening builds the wall-side mirror of the door
func (d Door) opening() Opening {
	return Opening{
		ID:        d.ID,
		Type:      d.Type,
		Position:  d.Position,
		Width:     d.Width,
		Height:    d.Height,
		Elevation: d.Elevation,
	}
}

// Guide is an advisory alignment line for UI feedback. It carries no semantic weight.
type Guide struct {
	Axis     Axis    `json:"axis"`
	Position float64 `json:"position"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}
