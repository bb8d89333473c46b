package plan

import (
	"fmt"
	"sort"
)

// ContainedFurniture returns the ids of furniture whose center lies within bounds
func ContainedFurniture(bounds RoomBounds, furniture []FurnitureInstance) []string {
	var ids []string
	for _, f := range furniture {
		if bounds.ContainsPoint(f.Position) {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// ContainedRooms returns the ids of rooms fully inside room's bounds. Mere
// overlap does not count, and a room of equal size is never contained.
func ContainedRooms(room Room, rooms []Room, tol float64) []string {
	var ids []string
	for _, other := range NewRoomIndex(rooms).Near(room.Bounds, tol+searchEpsilon) {
		if other.ID == room.ID {
			continue
		}
		if room.Bounds.ContainsBounds(other.Bounds, tol) {
			ids = append(ids, other.ID)
		}
	}
	return ids
}

// tighter reports whether a is a closer container than b: smaller area first,
// then the higher z-index, then the smaller id.
func tighter(a, b Room) bool {
	if a.Bounds.Area() != b.Bounds.Area() {
		return a.Bounds.Area() < b.Bounds.Area()
	}
	if a.ZIndex != b.ZIndex {
		return a.ZIndex > b.ZIndex
	}
	return a.ID < b.ID
}

// ResolveContainment recomputes the whole containment hierarchy from bounds.
//
// Each room's parent is the tightest room that strictly contains it. Because a
// parent always has strictly greater area than its child, the result is a
// forest. ContainedRoomIDs lists direct children only. ContainedFurnitureIDs
// lists every item whose center lies in the room, matching ContainedFurniture,
// while an item's RoomID names the innermost of those rooms. Inputs are not
// modified; updated copies are returned.
func ResolveContainment(rooms []Room, furniture []FurnitureInstance, tol float64) ([]Room, []FurnitureInstance) {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	idx := NewRoomIndex(rooms)
	pos := make(map[string]int, len(out))
	for i := range out {
		out[i].ParentRoomID = ""
		out[i].ContainedRoomIDs = nil
		out[i].ContainedFurnitureIDs = nil
		pos[out[i].ID] = i
	}

	for i := range out {
		child := rooms[i]
		var parent *Room
		for _, cand := range idx.Near(child.Bounds, tol+searchEpsilon) {
			if cand.ID == child.ID || !cand.Bounds.ContainsBounds(child.Bounds, tol) {
				continue
			}
			if parent == nil || tighter(cand, *parent) {
				c := cand
				parent = &c
			}
		}
		if parent != nil {
			out[i].ParentRoomID = parent.ID
			p := pos[parent.ID]
			out[p].ContainedRoomIDs = append(out[p].ContainedRoomIDs, child.ID)
		}
	}

	furn := make([]FurnitureInstance, len(furniture))
	copy(furn, furniture)
	for i := range furn {
		furn[i].RoomID = ""
		var owner *Room
		for _, r := range rooms {
			if !r.Bounds.ContainsPoint(furn[i].Position) {
				continue
			}
			p := pos[r.ID]
			out[p].ContainedFurnitureIDs = append(out[p].ContainedFurnitureIDs, furn[i].ID)
			if owner == nil || tighter(r, *owner) {
				c := r
				owner = &c
			}
		}
		if owner != nil {
			furn[i].RoomID = owner.ID
		}
	}

	for i := range out {
		sort.Strings(out[i].ContainedRoomIDs)
		sort.Strings(out[i].ContainedFurnitureIDs)
	}
	return out, furn
}

// Ancestors walks ParentRoomID pointers from id upward and returns the chain,
// nearest parent first. A revisited room yields ErrContainmentCycle.
func Ancestors(rooms []Room, id string) ([]string, error) {
	byID := roomsByID(rooms)
	cur, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("ancestors of %s: %w", id, ErrRoomNotFound)
	}

	seen := map[string]bool{id: true}
	var chain []string
	for cur.ParentRoomID != "" {
		if seen[cur.ParentRoomID] {
			return chain, fmt.Errorf("room %s revisits %s: %w", id, cur.ParentRoomID, ErrContainmentCycle)
		}
		seen[cur.ParentRoomID] = true
		chain = append(chain, cur.ParentRoomID)
		next, ok := byID[cur.ParentRoomID]
		if !ok {
			break
		}
		cur = next
	}
	return chain, nil
}

// Descendants returns every room nested under id, breadth first
func Descendants(rooms []Room, id string) []string {
	byID := roomsByID(rooms)
	seen := map[string]bool{id: true}
	queue := []string{id}
	var out []string
	for len(queue) > 0 {
		r := byID[queue[0]]
		queue = queue[1:]
		for _, c := range r.ContainedRoomIDs {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out
}
