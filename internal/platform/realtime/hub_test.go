package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

// subscribe registers a socket-less client so fanout can be tested
// without a network round trip.
func subscribe(h *Hub, companyID string) chan []byte {
	c := &client{hub: h, send: make(chan []byte, 8), companyID: companyID}
	h.register <- c
	return c.send
}

func receive(t *testing.T, ch chan []byte) Event {
	t.Helper()
	select {
	case data := <-ch:
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("invalid event payload: %v", err)
		}
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishScopedToCompany(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	acme := subscribe(hub, "acme")
	acme2 := subscribe(hub, "acme")
	other := subscribe(hub, "globex")

	hub.Publish("acme", Event{EventType: EventUpdate, Table: "payroll_periods", New: map[string]any{"id": "p1"}})

	for _, ch := range []chan []byte{acme, acme2} {
		evt := receive(t, ch)
		if evt.Table != "payroll_periods" || evt.EventType != EventUpdate {
			t.Fatalf("unexpected event: %+v", evt)
		}
	}

	select {
	case data := <-other:
		t.Fatalf("company globex must not receive acme events, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishNotificationWrapsAsInsert(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	ch := subscribe(hub, "acme")

	hub.Publish("acme", Event{EventType: EventInsert, Table: "notifications"})

	evt := receive(t, ch)
	if evt.EventType != EventInsert || evt.Table != "notifications" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}
