package plan

import (
	"encoding/json"
	"fmt"
)

// CommandOp names a plan edit carried by a Command
type CommandOp string

const (
	OpAddRoom      CommandOp = "addRoom"
	OpResizeRoom   CommandOp = "resizeRoom"
	OpMoveRoom     CommandOp = "moveRoom"
	OpDeleteRoom   CommandOp = "deleteRoom"
	OpAddFurniture CommandOp = "addFurniture"
	OpAddDoor      CommandOp = "addDoor"
	OpRecompute    CommandOp = "recompute"
)

// Command is a serialized plan edit, as received over MQTT
type Command struct {
	Op        CommandOp          `json:"op"`
	RoomID    string             `json:"roomId,omitempty"`
	Room      *Room              `json:"room,omitempty"`
	Bounds    *RoomBounds        `json:"bounds,omitempty"`
	DX        float64            `json:"dx,omitempty"`
	DY        float64            `json:"dy,omitempty"`
	Furniture *FurnitureInstance `json:"furniture,omitempty"`
	Door      *Door              `json:"door,omitempty"`
	// Snap runs the snap engine on Bounds (or the moved bounds) before applying it
	Snap bool `json:"snap,omitempty"`
}

// ParseCommand decodes a JSON command payload
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("parsing command JSON: %w", err)
	}
	if cmd.Op == "" {
		return Command{}, fmt.Errorf("parsing command: missing op")
	}
	return cmd, nil
}

// Apply executes a command against the plan
func (p *Plan) Apply(cmd Command) error {
	switch cmd.Op {
	case OpAddRoom:
		if cmd.Room == nil {
			return fmt.Errorf("%s: room is required", cmd.Op)
		}
		r := *cmd.Room
		if cmd.Snap {
			if r.ID == "" {
				r.ID = p.newID()
			}
			r.Bounds = SnapRoom(r.Bounds, r.ID, p.Rooms, SnapOptions{
				Settings:      p.Settings,
				Mode:          SnapMove,
				WallThickness: r.WallThickness,
			}).Bounds
		}
		_, err := p.AddRoom(r)
		return err

	case OpResizeRoom:
		if cmd.Bounds == nil {
			return fmt.Errorf("%s: bounds are required", cmd.Op)
		}
		b := *cmd.Bounds
		if cmd.Snap {
			current, ok := p.Room(cmd.RoomID)
			if !ok {
				return fmt.Errorf("%s %s: %w", cmd.Op, cmd.RoomID, ErrRoomNotFound)
			}
			b = SnapRoom(b, cmd.RoomID, p.Rooms, SnapOptions{
				Settings:    p.Settings,
				Mode:        SnapResize,
				ActiveSides: changedSides(current.Bounds, b),
			}).Bounds
		}
		return p.UpdateRoomBounds(cmd.RoomID, b)

	case OpMoveRoom:
		dx, dy := cmd.DX, cmd.DY
		if cmd.Snap {
			current, ok := p.Room(cmd.RoomID)
			if !ok {
				return fmt.Errorf("%s %s: %w", cmd.Op, cmd.RoomID, ErrRoomNotFound)
			}
			proposed := current.Bounds.Translate(dx, dy)
			snapped := SnapRoom(proposed, cmd.RoomID, p.Rooms, SnapOptions{Settings: p.Settings, Mode: SnapMove}).Bounds
			dx, dy = snapped.X-current.Bounds.X, snapped.Y-current.Bounds.Y
		}
		return p.MoveRoom(cmd.RoomID, dx, dy)

	case OpDeleteRoom:
		return p.DeleteRoom(cmd.RoomID)

	case OpAddFurniture:
		if cmd.Furniture == nil {
			return fmt.Errorf("%s: furniture is required", cmd.Op)
		}
		p.AddFurniture(*cmd.Furniture)
		return nil

	case OpAddDoor:
		if cmd.Door == nil {
			return fmt.Errorf("%s: door is required", cmd.Op)
		}
		_, err := p.AddDoor(*cmd.Door)
		return err

	case OpRecompute:
		p.RecomputeAll()
		return nil
	}
	return fmt.Errorf("unknown command op %q", cmd.Op)
}

// changedSides lists the edges that differ between two rectangles
func changedSides(before, after RoomBounds) []Side {
	var sides []Side
	for _, s := range Sides {
		if before.EdgePosition(s) != after.EdgePosition(s) {
			sides = append(sides, s)
		}
	}
	return sides
}
