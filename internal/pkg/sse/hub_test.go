package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub(2)

	tray, cleanupTray := hub.Subscribe(TopicTray)
	defer cleanupTray()
	other, cleanupOther := hub.Subscribe(TopicPush)
	defer cleanupOther()

	hub.Publish(Event{Topic: TopicTray, Event: "notification_shown", Data: "x"})

	select {
	case ev := <-tray:
		assert.Equal(t, "notification_shown", ev.Event)
	default:
		t.Fatal("expected event on tray topic")
	}

	select {
	case <-other:
		t.Fatal("push topic must not receive tray events")
	default:
	}
}

func TestHub_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(1)
	_, cleanup := hub.Subscribe(TopicTray)
	defer cleanup()

	hub.Publish(Event{Topic: TopicTray, Event: "a"})
	hub.Publish(Event{Topic: TopicTray, Event: "b"})

	assert.Equal(t, int64(1), hub.Dropped())
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	ch, cleanup := hub.Subscribe(TopicTray)
	assert.Equal(t, 1, hub.SubscriberCount(TopicTray))

	cleanup()
	cleanup()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.SubscriberCount(TopicTray))
}
