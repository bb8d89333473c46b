package plan

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultPublishPrefix is the topic root when neither env nor config set one
const DefaultPublishPrefix = "roomplan"

// Publisher publishes derived room figures to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	last          map[string]RoomSummary
	mu            sync.RWMutex
	sendMu        sync.Mutex
}

// NewPublisher creates a new room summary publisher.
// If client is nil, publishing is disabled (for testing)
func NewPublisher(client mqtt.Client) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = DefaultPublishPrefix
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,
		retain:        true, // retain so late subscribers get the current plan
		last:          make(map[string]RoomSummary),
	}
}

// SetPrefix overrides the topic root
func (p *Publisher) SetPrefix(prefix string) {
	if prefix != "" {
		p.publishPrefix = prefix
	}
}

// PublishPlan publishes every changed room to {prefix}/rooms/{id} and the
// combined summary to {prefix}/plan. Rooms that disappeared get an empty
// retained message so brokers drop them. A room is only recorded as sent once
// its publish succeeds, so a failed room goes out again on the next call.
// Calls are serialized.
func (p *Publisher) PublishPlan(summary PlanSummary) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.RLock()
	current := make(map[string]bool, len(summary.Rooms))
	var changed []RoomSummary
	for _, rs := range summary.Rooms {
		current[rs.ID] = true
		if prev, ok := p.last[rs.ID]; !ok || !sameSummary(prev, rs) {
			changed = append(changed, rs)
		}
	}
	var removed []string
	for id := range p.last {
		if !current[id] {
			removed = append(removed, id)
		}
	}
	p.mu.RUnlock()
	sort.Strings(removed)

	for _, rs := range changed {
		if err := p.publishRoom(rs); err != nil {
			log.Printf("Error publishing room %s: %v", rs.ID, err)
			return err
		}
		p.mu.Lock()
		p.last[rs.ID] = rs
		p.mu.Unlock()
	}
	for _, id := range removed {
		if err := p.publish(p.roomTopic(id), []byte{}); err != nil {
			log.Printf("Error clearing room %s: %v", id, err)
			return err
		}
		p.mu.Lock()
		delete(p.last, id)
		p.mu.Unlock()
	}

	message := map[string]interface{}{
		"plan":      summary,
		"timestamp": time.Now().Unix(),
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling plan summary: %w", err)
	}
	if err := p.publish(fmt.Sprintf("%s/plan", p.publishPrefix), payload); err != nil {
		log.Printf("Error publishing plan summary: %v", err)
		return err
	}
	return nil
}

func (p *Publisher) roomTopic(id string) string {
	return fmt.Sprintf("%s/rooms/%s", p.publishPrefix, id)
}

// publishRoom publishes a single room summary to its own topic
func (p *Publisher) publishRoom(rs RoomSummary) error {
	payload, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshaling room summary: %w", err)
	}
	if err := p.publish(p.roomTopic(rs.ID), payload); err != nil {
		return err
	}
	log.Printf("Published room %s: area=%.0f perimeter=%.0f walls=%d",
		rs.ID, rs.Area, rs.Perimeter, rs.WallCount)
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// LastSummary returns the last published summary of a room
func (p *Publisher) LastSummary(roomID string) (RoomSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rs, ok := p.last[roomID]
	return rs, ok
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}

func sameSummary(a, b RoomSummary) bool {
	if a.Bounds != b.Bounds || a.Name != b.Name || a.WallCount != b.WallCount ||
		a.DoorCount != b.DoorCount || a.Connections != b.Connections ||
		a.ParentRoomID != b.ParentRoomID || a.FurnitureCount != b.FurnitureCount ||
		len(a.ContainedRooms) != len(b.ContainedRooms) {
		return false
	}
	for i := range a.ContainedRooms {
		if a.ContainedRooms[i] != b.ContainedRooms[i] {
			return false
		}
	}
	return true
}
