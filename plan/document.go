package plan

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrRoomNotFound is returned when an operation names an unknown room
	ErrRoomNotFound = errors.New("room not found")
	// ErrWallNotFound is returned when an operation names an unknown wall
	ErrWallNotFound = errors.New("wall not found")
	// ErrContainmentCycle is returned when parent pointers loop back on themselves
	ErrContainmentCycle = errors.New("containment cycle")
)

// Plan is a floor-plan document owned by the caller. Rooms are authored; walls
// owned by rooms, connections and containment are derived from room bounds and
// kept consistent by the edit operations below. A Plan is not safe for
// concurrent use; wrap it in a PlanState when sharing it.
type Plan struct {
	Settings    Settings            `yaml:"settings" json:"settings"`
	Rooms       []Room              `yaml:"rooms" json:"rooms"`
	Walls       []Wall              `yaml:"walls,omitempty" json:"walls"`
	Connections []RoomConnection    `yaml:"connections,omitempty" json:"connections"`
	Furniture   []FurnitureInstance `yaml:"furniture,omitempty" json:"furniture"`
	Doors       []Door              `yaml:"doors,omitempty" json:"doors"`

	// NewID generates ids for new rooms, walls, connections and doors.
	// Defaults to random UUIDs.
	NewID func() string `yaml:"-" json:"-"`
}

// NewPlan creates an empty plan with the given engine settings
func NewPlan(s Settings) *Plan {
	return &Plan{Settings: s.withDefaults()}
}

func (p *Plan) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Plan) roomIndex(id string) int {
	for i := range p.Rooms {
		if p.Rooms[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Plan) wallIndex(id string) int {
	for i := range p.Walls {
		if p.Walls[i].ID == id {
			return i
		}
	}
	return -1
}

// Room returns the room with the given id
func (p *Plan) Room(id string) (Room, bool) {
	if i := p.roomIndex(id); i >= 0 {
		return p.Rooms[i], true
	}
	return Room{}, false
}

// Wall returns the wall with the given id
func (p *Plan) Wall(id string) (Wall, bool) {
	if i := p.wallIndex(id); i >= 0 {
		return p.Walls[i], true
	}
	return Wall{}, false
}

// RoomWalls returns the walls owned by a room, in synthesis order
func (p *Plan) RoomWalls(roomID string) []Wall {
	var walls []Wall
	for _, w := range p.Walls {
		if w.OwnerRoomID == roomID {
			walls = append(walls, w)
		}
	}
	return walls
}

// RoomConnections returns the connections touching a room
func (p *Plan) RoomConnections(roomID string) []RoomConnection {
	var conns []RoomConnection
	for _, c := range p.Connections {
		if c.Involves(roomID) {
			conns = append(conns, c)
		}
	}
	return conns
}

// AddRoom inserts a room, materializes its connections, synthesizes walls for
// it and its neighbours, and refreshes containment. An empty id is generated.
func (p *Plan) AddRoom(r Room) (Room, error) {
	if r.ID == "" {
		r.ID = p.newID()
	}
	if p.roomIndex(r.ID) >= 0 {
		return Room{}, fmt.Errorf("add room %s: duplicate id", r.ID)
	}
	r.WallIDs = nil
	p.Rooms = append(p.Rooms, r)

	affected, err := p.SyncConnections(r.ID)
	if err != nil {
		return Room{}, err
	}
	p.regenerateAround(r.ID, r.Bounds, affected)
	p.resolveContainment()

	added, _ := p.Room(r.ID)
	return added, nil
}

// UpdateRoomBounds replaces a room's bounds (draw or resize) and brings the
// derived state up to date: connections are re-queried, then the room, its old
// and new neighbours and their neighbours are re-synthesized, then containment
// is recomputed. Contained rooms and furniture are not moved; see MoveRoom.
func (p *Plan) UpdateRoomBounds(id string, bounds RoomBounds) error {
	i := p.roomIndex(id)
	if i < 0 {
		return fmt.Errorf("update room %s: %w", id, ErrRoomNotFound)
	}
	oldBounds := p.Rooms[i].Bounds
	p.Rooms[i].Bounds = bounds

	affected, err := p.SyncConnections(id)
	if err != nil {
		return err
	}
	p.regenerateAround(id, oldBounds, affected)
	p.resolveContainment()
	return nil
}

// MoveRoom translates a room together with every room nested in it, the walls
// those rooms own and every furniture item whose center lies in the room's
// bounds before the move, even when a smaller overlapping room owns it.
func (p *Plan) MoveRoom(id string, dx, dy float64) error {
	if p.roomIndex(id) < 0 {
		return fmt.Errorf("move room %s: %w", id, ErrRoomNotFound)
	}

	moved := append([]string{id}, Descendants(p.Rooms, id)...)
	inSet := make(map[string]bool, len(moved))
	for _, m := range moved {
		inSet[m] = true
	}
	carried := make(map[string]bool)
	for _, fid := range ContainedFurniture(p.Rooms[p.roomIndex(id)].Bounds, p.Furniture) {
		carried[fid] = true
	}

	for i := range p.Rooms {
		if inSet[p.Rooms[i].ID] {
			p.Rooms[i].Bounds = p.Rooms[i].Bounds.Translate(dx, dy)
		}
	}
	for i := range p.Walls {
		if inSet[p.Walls[i].OwnerRoomID] {
			p.Walls[i].Start = p.Walls[i].Start.Add(dx, dy)
			p.Walls[i].End = p.Walls[i].End.Add(dx, dy)
		}
	}
	for i := range p.Furniture {
		if carried[p.Furniture[i].ID] || inSet[p.Furniture[i].RoomID] {
			p.Furniture[i].Position = p.Furniture[i].Position.Add(dx, dy)
		}
	}

	affected := make(map[string]bool)
	for _, m := range moved {
		neighbours, err := p.SyncConnections(m)
		if err != nil {
			return err
		}
		for _, n := range neighbours {
			affected[n] = true
		}
	}
	for _, m := range moved {
		affected[m] = true
	}
	p.regenerateSet(p.expandNeighbours(affected), nil)
	p.resolveContainment()
	return nil
}

// DeleteRoom removes a room, the walls it owns, the doors on those walls and
// every connection touching it. Former neighbours are re-synthesized.
func (p *Plan) DeleteRoom(id string) error {
	i := p.roomIndex(id)
	if i < 0 {
		return fmt.Errorf("delete room %s: %w", id, ErrRoomNotFound)
	}

	neighbours := make(map[string]bool)
	conns := p.Connections[:0]
	for _, c := range p.Connections {
		if c.Involves(id) {
			other, _, _ := c.Other(id)
			neighbours[other] = true
			continue
		}
		conns = append(conns, c)
	}
	p.Connections = conns

	removed := p.removeOwnedWalls(id)
	p.removeDoorsOn(removed)
	p.Rooms = append(p.Rooms[:i], p.Rooms[i+1:]...)

	p.regenerateSet(p.expandNeighbours(neighbours), nil)
	p.resolveContainment()
	return nil
}

// AddWall inserts a wall as is. Walls without an owner are standalone and are
// never touched by room regeneration.
func (p *Plan) AddWall(w Wall) Wall {
	if w.ID == "" {
		w.ID = p.newID()
	}
	if w.Thickness <= 0 {
		w.Thickness = p.Settings.WallThickness
	}
	if w.Height <= 0 {
		w.Height = p.Settings.WallHeight
	}
	p.Walls = append(p.Walls, w)
	if i := p.roomIndex(w.OwnerRoomID); i >= 0 {
		p.Rooms[i].WallIDs = append(p.Rooms[i].WallIDs, w.ID)
	}
	return w
}

// AddDoor places a door or window on a wall, clamping its position to the
// wall length and mirroring it into the wall's openings.
func (p *Plan) AddDoor(d Door) (Door, error) {
	wi := p.wallIndex(d.WallID)
	if wi < 0 {
		return Door{}, fmt.Errorf("add door on %s: %w", d.WallID, ErrWallNotFound)
	}
	if d.ID == "" {
		d.ID = p.newID()
	}
	if d.Type == "" {
		d.Type = OpeningDoor
	}
	d.Position = clamp(d.Position, 0, p.Walls[wi].Length())

	p.Walls[wi].Openings = upsertOpening(p.Walls[wi].Openings, d.opening())
	for i := range p.Doors {
		if p.Doors[i].ID == d.ID {
			p.Doors[i] = d
			return d, nil
		}
	}
	p.Doors = append(p.Doors, d)
	return d, nil
}

// AddFurniture places a furniture item and assigns it to its innermost room
func (p *Plan) AddFurniture(f FurnitureInstance) FurnitureInstance {
	if f.ID == "" {
		f.ID = p.newID()
	}
	p.Furniture = append(p.Furniture, f)
	p.resolveContainment()
	return p.Furniture[len(p.Furniture)-1]
}

// SyncConnections re-runs the adjacency query for a room and replaces its
// connection records. Records for an unchanged (neighbour, side) pair keep
// their id and openings. The returned ids are every neighbour the room had
// before or has after the sync.
func (p *Plan) SyncConnections(id string) ([]string, error) {
	i := p.roomIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("sync connections of %s: %w", id, ErrRoomNotFound)
	}
	room := p.Rooms[i]

	type key struct {
		other string
		side  Side
	}
	existing := make(map[key]RoomConnection)
	prev := make(previousTypes)
	touched := make(map[string]bool)

	kept := p.Connections[:0]
	for _, c := range p.Connections {
		if !c.Involves(id) {
			kept = append(kept, c)
			continue
		}
		other, mySide, _ := c.Other(id)
		existing[key{other, mySide}] = c
		prev[other] = c.Type
		touched[other] = true
	}
	p.Connections = kept

	for _, adj := range findAdjacencies(room.Bounds, id, p.Rooms, p.Settings, prev) {
		touched[adj.RoomID] = true
		if c, ok := existing[key{adj.RoomID, adj.Side}]; ok {
			c.Type = adj.Type
			c.Axis = adj.Axis
			p.Connections = append(p.Connections, c)
			continue
		}
		p.Connections = append(p.Connections, RoomConnection{
			ID:        p.newID(),
			RoomIDs:   [2]string{id, adj.RoomID},
			Axis:      adj.Axis,
			RoomSides: [2]Side{adj.Side, adj.OtherSide},
			Type:      adj.Type,
		})
	}

	ids := make([]string, 0, len(touched))
	for n := range touched {
		ids = append(ids, n)
	}
	sort.Strings(ids)
	return ids, nil
}

// RegenerateRoomWalls re-synthesizes one room's walls from its current bounds
// and connections, re-homing any doors on the replaced walls.
func (p *Plan) RegenerateRoomWalls(id string) error {
	i := p.roomIndex(id)
	if i < 0 {
		return fmt.Errorf("regenerate walls of %s: %w", id, ErrRoomNotFound)
	}
	p.regenerate(id, p.Rooms[i].Bounds)
	return nil
}

// RecomputeAll rebuilds every connection, every room-owned wall and the
// containment hierarchy from room bounds alone.
func (p *Plan) RecomputeAll() {
	p.Settings = p.Settings.withDefaults()

	prev := make(map[[2]string]RoomConnection)
	for _, c := range p.Connections {
		prev[pairKey(c.RoomIDs[0], c.RoomIDs[1])] = c
	}

	rooms := make([]Room, len(p.Rooms))
	copy(rooms, p.Rooms)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	var conns []RoomConnection
	for _, r := range rooms {
		types := make(previousTypes)
		for k, c := range prev {
			if k[0] == r.ID {
				types[k[1]] = c.Type
			} else if k[1] == r.ID {
				types[k[0]] = c.Type
			}
		}
		for _, adj := range findAdjacencies(r.Bounds, r.ID, rooms, p.Settings, types) {
			if adj.RoomID < r.ID {
				// already recorded from the other room
				continue
			}
			c := RoomConnection{
				ID:        p.newID(),
				RoomIDs:   [2]string{r.ID, adj.RoomID},
				Axis:      adj.Axis,
				RoomSides: [2]Side{adj.Side, adj.OtherSide},
				Type:      adj.Type,
			}
			if old, ok := prev[pairKey(r.ID, adj.RoomID)]; ok {
				c.ID = old.ID
				c.Openings = old.Openings
			}
			conns = append(conns, c)
		}
	}
	p.Connections = conns

	for _, r := range rooms {
		p.regenerate(r.ID, r.Bounds)
	}
	p.resolveContainment()
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Joints detects wall junctions across every wall in the plan
func (p *Plan) Joints() []Joint {
	return DetectJointsWith(p.Walls, p.Settings)
}

// RoomOutline extracts the boundary walked along a room's own walls. Rooms
// whose walls are partly suppressed by connections yield an open outline.
// Closed outlines come back without collinear split points.
func (p *Plan) RoomOutline(id string) ([]Point, bool, error) {
	if p.roomIndex(id) < 0 {
		return nil, false, fmt.Errorf("outline of %s: %w", id, ErrRoomNotFound)
	}
	points, closed := PolygonFromWalls(p.RoomWalls(id), p.Settings.PointTolerance)
	if closed {
		points = SimplifyOutline(points, p.Settings.PointTolerance)
	}
	return points, closed, nil
}

// regenerateAround re-synthesizes the edited room (whose walls were built for
// oldBounds) plus its affected neighbours and their neighbours.
func (p *Plan) regenerateAround(id string, oldBounds RoomBounds, neighbours []string) {
	set := map[string]bool{id: true}
	for _, n := range neighbours {
		set[n] = true
	}
	p.regenerateSet(p.expandNeighbours(set), map[string]RoomBounds{id: oldBounds})
}

// expandNeighbours adds the connection neighbours of every room in set
func (p *Plan) expandNeighbours(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for id := range set {
		out[id] = true
		for _, c := range p.Connections {
			if c.Involves(id) {
				other, _, _ := c.Other(id)
				out[other] = true
			}
		}
	}
	return out
}

// regenerateSet re-synthesizes rooms in id order. oldBounds supplies the bounds
// a room's current walls were built for when they differ from its live bounds.
func (p *Plan) regenerateSet(set map[string]bool, oldBounds map[string]RoomBounds) {
	ids := make([]string, 0, len(set))
	for id := range set {
		if p.roomIndex(id) >= 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		ob, ok := oldBounds[id]
		if !ok {
			ob = p.Rooms[p.roomIndex(id)].Bounds
		}
		p.regenerate(id, ob)
	}
}

// regenerate replaces all and only the walls owned by the room
func (p *Plan) regenerate(id string, oldBounds RoomBounds) {
	i := p.roomIndex(id)
	if i < 0 {
		return
	}
	room := p.Rooms[i]

	oldWalls := p.RoomWalls(id)
	p.removeOwnedWalls(id)

	newWalls := SynthesizeRoomWalls(room, p.Connections, p.Rooms, p.Settings, p.newID)
	moves, dropped := ReassignOpenings(oldWalls, newWalls, oldBounds, room.Bounds)
	p.applyOpeningMoves(moves)
	if len(dropped) > 0 {
		log.Printf("Warning: room %s has no walls left for openings %v", id, dropped)
		p.removeDoors(dropped)
	}

	room.WallIDs = make([]string, 0, len(newWalls))
	for _, w := range newWalls {
		room.WallIDs = append(room.WallIDs, w.ID)
	}
	room.Area = room.Bounds.Area()
	room.Perimeter = room.Bounds.Perimeter()
	p.Rooms[i] = room
	p.Walls = append(p.Walls, newWalls...)
}

// removeOwnedWalls drops a room's walls and returns their ids
func (p *Plan) removeOwnedWalls(id string) []string {
	var removed []string
	walls := p.Walls[:0]
	for _, w := range p.Walls {
		if w.OwnerRoomID == id {
			removed = append(removed, w.ID)
			continue
		}
		walls = append(walls, w)
	}
	p.Walls = walls
	return removed
}

func (p *Plan) applyOpeningMoves(moves []OpeningMove) {
	for _, m := range moves {
		for i := range p.Doors {
			if p.Doors[i].ID == m.OpeningID {
				p.Doors[i].WallID = m.WallID
				p.Doors[i].Position = m.Position
			}
		}
	}
}

func (p *Plan) removeDoorsOn(wallIDs []string) {
	gone := make(map[string]bool, len(wallIDs))
	for _, id := range wallIDs {
		gone[id] = true
	}
	doors := p.Doors[:0]
	for _, d := range p.Doors {
		if !gone[d.WallID] {
			doors = append(doors, d)
		}
	}
	p.Doors = doors
}

func (p *Plan) removeDoors(ids []string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	doors := p.Doors[:0]
	for _, d := range p.Doors {
		if !gone[d.ID] {
			doors = append(doors, d)
		}
	}
	p.Doors = doors
}

func (p *Plan) resolveContainment() {
	p.Rooms, p.Furniture = ResolveContainment(p.Rooms, p.Furniture, p.Settings.PointTolerance)
}

// RoomSummary provides the derived figures of one room
type RoomSummary struct {
	ID             string     `json:"id"`
	Name           string     `json:"name,omitempty"`
	Bounds         RoomBounds `json:"bounds"`
	Area           float64    `json:"area"`
	Perimeter      float64    `json:"perimeter"`
	WallCount      int        `json:"wallCount"`
	DoorCount      int        `json:"doorCount"`
	Connections    int        `json:"connections"`
	ParentRoomID   string     `json:"parentRoomId,omitempty"`
	ContainedRooms []string   `json:"containedRooms,omitempty"`
	FurnitureCount int        `json:"furnitureCount"`
}

// PlanSummary provides a summary of plan contents
type PlanSummary struct {
	RoomCount       int           `json:"roomCount"`
	WallCount       int           `json:"wallCount"`
	ConnectionCount int           `json:"connectionCount"`
	DirectCount     int           `json:"directCount"`
	DoorCount       int           `json:"doorCount"`
	FurnitureCount  int           `json:"furnitureCount"`
	JointCount      int           `json:"jointCount"`
	TotalArea       float64       `json:"totalArea"`
	Rooms           []RoomSummary `json:"rooms"`
}

// Summarize extracts key information from the plan
func (p *Plan) Summarize() PlanSummary {
	summary := PlanSummary{
		RoomCount:       len(p.Rooms),
		WallCount:       len(p.Walls),
		ConnectionCount: len(p.Connections),
		DoorCount:       len(p.Doors),
		FurnitureCount:  len(p.Furniture),
		JointCount:      len(p.Joints()),
	}
	for _, c := range p.Connections {
		if c.Type == ConnectionDirect {
			summary.DirectCount++
		}
	}

	doorsPerWall := make(map[string]int)
	for _, d := range p.Doors {
		doorsPerWall[d.WallID]++
	}

	for _, r := range p.Rooms {
		rs := RoomSummary{
			ID:             r.ID,
			Name:           r.Name,
			Bounds:         r.Bounds,
			Area:           r.Bounds.Area(),
			Perimeter:      r.Bounds.Perimeter(),
			WallCount:      len(r.WallIDs),
			Connections:    len(p.RoomConnections(r.ID)),
			ParentRoomID:   r.ParentRoomID,
			ContainedRooms: r.ContainedRoomIDs,
			FurnitureCount: len(r.ContainedFurnitureIDs),
		}
		for _, wid := range r.WallIDs {
			rs.DoorCount += doorsPerWall[wid]
		}
		if r.ParentRoomID == "" {
			summary.TotalArea += rs.Area
		}
		summary.Rooms = append(summary.Rooms, rs)
	}
	sort.Slice(summary.Rooms, func(i, j int) bool { return summary.Rooms[i].ID < summary.Rooms[j].ID })
	return summary
}
