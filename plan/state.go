package plan

import (
	"fmt"
	"log"
	"sync"
)

// ChangeListener is called after every successful edit with a snapshot of the plan
type ChangeListener func(p *Plan)

// PlanState guards a plan shared between the HTTP handlers, the MQTT command
// subscriber and the publisher
type PlanState struct {
	mu        sync.RWMutex
	plan      *Plan
	version   int
	listeners []ChangeListener
	savePath  string // plan file written after each edit; empty disables persistence

	// snapshots reach listeners in version order
	notifyMu  sync.Mutex
	notified  *sync.Cond
	delivered int
}

// NewPlanState wraps a plan. A nil plan starts empty with default settings.
func NewPlanState(p *Plan) *PlanState {
	if p == nil {
		p = NewPlan(DefaultSettings())
	}
	st := &PlanState{plan: p}
	st.notified = sync.NewCond(&st.notifyMu)
	return st
}

// SetSavePath enables writing the plan file after every edit
func (st *PlanState) SetSavePath(path string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.savePath = path
}

// OnChange registers a listener invoked after each edit
func (st *PlanState) OnChange(l ChangeListener) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.listeners = append(st.listeners, l)
}

// Snapshot returns a deep copy of the current plan
func (st *PlanState) Snapshot() *Plan {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.plan.Clone()
}

// Version counts successful edits
func (st *PlanState) Version() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.version
}

// Apply runs a command under the write lock and notifies listeners with a snapshot
func (st *PlanState) Apply(cmd Command) error {
	return st.Update(func(p *Plan) error {
		return p.Apply(cmd)
	})
}

// Update runs fn under the write lock. Listeners are notified outside the
// lock but one edit at a time, oldest first, so a slow listener never sees an
// older snapshot after a newer one. Listeners may read the state but must not
// edit it.
func (st *PlanState) Update(fn func(p *Plan) error) error {
	st.mu.Lock()
	if err := fn(st.plan); err != nil {
		st.mu.Unlock()
		return err
	}
	st.version++
	version := st.version
	snapshot := st.plan.Clone()
	listeners := append([]ChangeListener(nil), st.listeners...)
	savePath := st.savePath
	st.mu.Unlock()

	st.notifyMu.Lock()
	for st.delivered != version-1 {
		st.notified.Wait()
	}
	defer func() {
		st.delivered = version
		st.notified.Broadcast()
		st.notifyMu.Unlock()
	}()

	if savePath != "" {
		if err := SavePlanFile(savePath, snapshot); err != nil {
			log.Printf("Warning: failed to persist plan to %s: %v", savePath, err)
		}
	}
	for _, l := range listeners {
		l(snapshot)
	}
	return nil
}

// Replace swaps in a new plan, e.g. after a reload
func (st *PlanState) Replace(p *Plan) error {
	if p == nil {
		return fmt.Errorf("replace plan: plan is nil")
	}
	return st.Update(func(cur *Plan) error {
		*cur = *p.Clone()
		return nil
	})
}

// Clone returns a deep copy of the plan
func (p *Plan) Clone() *Plan {
	c := &Plan{Settings: p.Settings, NewID: p.NewID}

	c.Rooms = make([]Room, len(p.Rooms))
	for i, r := range p.Rooms {
		r.WallIDs = append([]string(nil), r.WallIDs...)
		r.ContainedRoomIDs = append([]string(nil), r.ContainedRoomIDs...)
		r.ContainedFurnitureIDs = append([]string(nil), r.ContainedFurnitureIDs...)
		c.Rooms[i] = r
	}
	c.Walls = make([]Wall, len(p.Walls))
	for i, w := range p.Walls {
		w.Openings = append([]Opening(nil), w.Openings...)
		c.Walls[i] = w
	}
	c.Connections = make([]RoomConnection, len(p.Connections))
	for i, conn := range p.Connections {
		conn.Openings = append([]Opening(nil), conn.Openings...)
		c.Connections[i] = conn
	}
	c.Furniture = append([]FurnitureInstance(nil), p.Furniture...)
	c.Doors = append([]Door(nil), p.Doors...)
	return c
}
