package plan

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*Publisher, *MockClient) {
	t.Helper()
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	return NewPublisher(mock), mock
}

func TestNewPublisher(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	p := NewPublisher(nil)
	assert.Equal(t, DefaultPublishPrefix, p.publishPrefix)
	assert.True(t, p.retain, "retained by default")
	assert.Equal(t, byte(0), p.qos)

	t.Setenv("MQTT_PUBLISH_PREFIX", "house")
	assert.Equal(t, "house", NewPublisher(nil).publishPrefix)
}

func TestPublisher_PublishWithNilClient(t *testing.T) {
	publisher := NewPublisher(nil)
	if err := publisher.PublishPlan(PlanSummary{}); err == nil {
		t.Error("PublishPlan() with nil client should return error")
	}
}

func TestPublisher_PublishDisconnected(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	mock.SetConnected(false)
	assert.Error(t, publisher.PublishPlan(PlanSummary{}))
	assert.Empty(t, mock.GetPublishedMessages())
}

func TestPublisher_PublishPlan(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	p := apartPlan(t)

	require.NoError(t, publisher.PublishPlan(p.Summarize()))

	rooms := mock.MessagesWithPrefix("roomplan/rooms/")
	require.Len(t, rooms, 2)
	assert.Equal(t, "roomplan/rooms/kitchen", rooms[0].Topic)
	assert.True(t, rooms[0].Retain)

	var rs RoomSummary
	require.NoError(t, json.Unmarshal(rooms[0].Payload, &rs))
	assert.Equal(t, "kitchen", rs.ID)
	assert.Equal(t, 4, rs.WallCount)

	combined := mock.MessagesWithPrefix("roomplan/plan")
	require.Len(t, combined, 1)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(combined[0].Payload, &msg))
	assert.Contains(t, msg, "plan")
	assert.Contains(t, msg, "timestamp")

	last, ok := publisher.LastSummary("living")
	require.True(t, ok)
	assert.Equal(t, 500.0, last.Bounds.X)
}

func TestPublisher_OnlyChangedRooms(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	p := apartPlan(t)
	require.NoError(t, publisher.PublishPlan(p.Summarize()))

	mock.ClearPublished()
	require.NoError(t, publisher.PublishPlan(p.Summarize()))
	assert.Empty(t, mock.MessagesWithPrefix("roomplan/rooms/"), "nothing changed")
	assert.Len(t, mock.MessagesWithPrefix("roomplan/plan"), 1)

	mock.ClearPublished()
	require.NoError(t, p.MoveRoom("living", 10, 0))
	require.NoError(t, publisher.PublishPlan(p.Summarize()))
	rooms := mock.MessagesWithPrefix("roomplan/rooms/")
	require.Len(t, rooms, 1)
	assert.Equal(t, "roomplan/rooms/living", rooms[0].Topic)
}

func TestPublisher_RemovedRoomCleared(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	p := apartPlan(t)
	require.NoError(t, publisher.PublishPlan(p.Summarize()))

	mock.ClearPublished()
	require.NoError(t, p.DeleteRoom("living"))
	require.NoError(t, publisher.PublishPlan(p.Summarize()))

	rooms := mock.MessagesWithPrefix("roomplan/rooms/")
	require.Len(t, rooms, 1)
	assert.Equal(t, "roomplan/rooms/living", rooms[0].Topic)
	assert.Empty(t, rooms[0].Payload)

	_, ok := publisher.LastSummary("living")
	assert.False(t, ok)
}

func TestPublisher_Settings(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	publisher.SetPrefix("house")
	publisher.SetPrefix("")
	publisher.SetQoS(1)
	publisher.SetQoS(5)
	publisher.SetRetain(false)

	require.NoError(t, publisher.PublishPlan(PlanSummary{}))
	msgs := mock.GetPublishedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "house/plan", msgs[0].Topic, "empty prefix is ignored")
	assert.Equal(t, byte(1), msgs[0].QoS, "invalid QoS is ignored")
	assert.False(t, msgs[0].Retain)
}

func TestPublisher_PublishError(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	mock.SetPublishError(errors.New("broker full"))

	err := publisher.PublishPlan(apartPlan(t).Summarize())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker full")
}

func TestPublisher_RetriesAfterFailure(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	p := apartPlan(t)

	mock.SetPublishError(errors.New("broker down"))
	require.Error(t, publisher.PublishPlan(p.Summarize()))
	_, ok := publisher.LastSummary("kitchen")
	assert.False(t, ok, "failed room is not recorded as sent")

	mock.SetPublishError(nil)
	require.NoError(t, publisher.PublishPlan(p.Summarize()))
	rooms := mock.MessagesWithPrefix("roomplan/rooms/")
	require.Len(t, rooms, 2)
	assert.Equal(t, "roomplan/rooms/kitchen", rooms[0].Topic)
	assert.Equal(t, "roomplan/rooms/living", rooms[1].Topic)
}

func TestPublisher_RetriesRemovedRoomClear(t *testing.T) {
	publisher, mock := newTestPublisher(t)
	p := apartPlan(t)
	require.NoError(t, publisher.PublishPlan(p.Summarize()))
	require.NoError(t, p.DeleteRoom("living"))

	mock.ClearPublished()
	mock.SetPublishError(errors.New("broker down"))
	require.Error(t, publisher.PublishPlan(p.Summarize()))
	_, ok := publisher.LastSummary("living")
	assert.True(t, ok, "removal stays pending until the clear is sent")

	mock.SetPublishError(nil)
	require.NoError(t, publisher.PublishPlan(p.Summarize()))
	rooms := mock.MessagesWithPrefix("roomplan/rooms/living")
	require.Len(t, rooms, 1)
	assert.Empty(t, rooms[0].Payload)
	_, ok = publisher.LastSummary("living")
	assert.False(t, ok)
}

func TestSameSummary(t *testing.T) {
	a := RoomSummary{ID: "a", WallCount: 4, ContainedRooms: []string{"x"}}
	b := a
	assert.True(t, sameSummary(a, b))

	b.ContainedRooms = []string{"y"}
	assert.False(t, sameSummary(a, b))

	b = a
	b.Bounds.X = 1
	assert.False(t, sameSummary(a, b))
}
