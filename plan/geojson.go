package plan

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature layer names carried in the "layerType" property
const (
	LayerRoom       = "room"
	LayerWall       = "wall"
	LayerJoint      = "joint"
	LayerConnection = "connection"
	LayerFurniture  = "furniture"
)

// PlanToFeatureCollection exports the plan in plan coordinates (cm, Y down).
// Rooms become polygons of their interior bounds, walls become centerline
// strings, joints become points and each connection becomes a line along the
// live overlap of the two rooms.
func PlanToFeatureCollection(p *Plan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, r := range p.Rooms {
		f := geojson.NewFeature(RoomPolygon(r.Bounds))
		f.ID = r.ID
		f.Properties["layerType"] = LayerRoom
		f.Properties["name"] = r.Name
		f.Properties["area"] = r.Bounds.Area()
		f.Properties["perimeter"] = r.Bounds.Perimeter()
		f.Properties["wallCount"] = len(r.WallIDs)
		if r.ParentRoomID != "" {
			f.Properties["parentRoomId"] = r.ParentRoomID
		}
		fc.Append(f)
	}

	for _, w := range p.Walls {
		f := geojson.NewFeature(orb.LineString{w.Start.toOrb(), w.End.toOrb()})
		f.ID = w.ID
		f.Properties["layerType"] = LayerWall
		f.Properties["thickness"] = w.Thickness
		f.Properties["height"] = w.Height
		f.Properties["length"] = w.Length()
		if w.Material != "" {
			f.Properties["material"] = w.Material
		}
		if w.OwnerRoomID != "" {
			f.Properties["ownerRoomId"] = w.OwnerRoomID
		}
		if len(w.Openings) > 0 {
			f.Properties["openings"] = len(w.Openings)
		}
		fc.Append(f)
	}

	for _, j := range p.Joints() {
		f := geojson.NewFeature(j.Position.toOrb())
		f.Properties["layerType"] = LayerJoint
		f.Properties["wallCount"] = len(j.Members)
		fc.Append(f)
	}

	byID := roomsByID(p.Rooms)
	for _, c := range p.Connections {
		line, ok := connectionLine(c, byID)
		if !ok {
			continue
		}
		f := geojson.NewFeature(line)
		f.ID = c.ID
		f.Properties["layerType"] = LayerConnection
		f.Properties["type"] = string(c.Type)
		f.Properties["axis"] = string(c.Axis)
		f.Properties["roomIds"] = []string{c.RoomIDs[0], c.RoomIDs[1]}
		fc.Append(f)
	}

	for _, fi := range p.Furniture {
		f := geojson.NewFeature(fi.Position.toOrb())
		f.ID = fi.ID
		f.Properties["layerType"] = LayerFurniture
		f.Properties["name"] = fi.Name
		if fi.RoomID != "" {
			f.Properties["roomId"] = fi.RoomID
		}
		fc.Append(f)
	}

	return fc
}

// RoomPolygon converts room bounds to a closed orb polygon
func RoomPolygon(b RoomBounds) orb.Polygon {
	return orb.Polygon{ToRing([]Point{
		{X: b.Left(), Y: b.Top()},
		{X: b.Right(), Y: b.Top()},
		{X: b.Right(), Y: b.Bottom()},
		{X: b.Left(), Y: b.Bottom()},
	})}
}

// connectionLine returns the live overlap of a connection as a line on the
// first room's shared edge
func connectionLine(c RoomConnection, byID map[string]Room) (orb.LineString, bool) {
	a, ok := byID[c.RoomIDs[0]]
	if !ok {
		return nil, false
	}
	b, ok := byID[c.RoomIDs[1]]
	if !ok {
		return nil, false
	}
	side := c.RoomSides[0]
	span, ok := EdgeOverlap(a.Bounds, side, b.Bounds)
	if !ok {
		return nil, false
	}
	return orb.LineString{
		edgePoint(a.Bounds, side, span.Start, 0).toOrb(),
		edgePoint(a.Bounds, side, span.End, 0).toOrb(),
	}, true
}
