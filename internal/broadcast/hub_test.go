package broadcast

import (
	"sync/atomic"
	"testing"

	"github.com/vcpc/helpdesk/internal/model"
)

func TestNotifyFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub()

	const n = 5
	counts := make([]int32, n)
	for i := 0; i < n; i++ {
		i := i
		hub.Subscribe(func(ev Event) {
			atomic.AddInt32(&counts[i], 1)
		})
	}

	hub.Notify(model.Tickets)

	for i, c := range counts {
		if c != 1 {
			t.Errorf("subscriber %d received %d notifications, want 1", i, c)
		}
	}
}

func TestLateSubscriberSeesNothing(t *testing.T) {
	hub := NewHub()

	hub.Notify(model.Users)

	var late int32
	hub.Subscribe(func(ev Event) {
		atomic.AddInt32(&late, 1)
	})

	if late != 0 {
		t.Errorf("late subscriber received %d notifications for an earlier save", late)
	}

	hub.Notify(model.Users)
	if late != 1 {
		t.Errorf("late subscriber should see subsequent notifications, got %d", late)
	}
}

func TestNotifyCarriesTagAndTimestamp(t *testing.T) {
	hub := NewHub()

	var got Event
	hub.Subscribe(func(ev Event) { got = ev })

	hub.Notify(model.Assets)

	if got.Type != model.Assets {
		t.Errorf("expected tag %s, got %s", model.Assets, got.Type)
	}
	if got.Timestamp.IsZero() {
		t.Error("notification timestamp is zero")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()

	var count int32
	cancel := hub.Subscribe(func(ev Event) {
		atomic.AddInt32(&count, 1)
	})

	hub.Notify(model.Logs)
	cancel()
	hub.Notify(model.Logs)

	if count != 1 {
		t.Errorf("expected 1 delivery after unsubscribe, got %d", count)
	}

	if hub.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}
}
