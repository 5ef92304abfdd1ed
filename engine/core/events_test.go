package core

import "testing"

func TestEventBusRegisterFire(t *testing.T) {
	bus := NewEventBus()
	a, b := &struct{ n int }{}, &struct{ n int }{}

	if !bus.Register(EVENT_CODE_RESIZED, a, func(EventContext) bool { a.n++; return false }) {
		t.Fatal("first registration failed")
	}
	if bus.Register(EVENT_CODE_RESIZED, a, func(EventContext) bool { return false }) {
		t.Fatal("duplicate listener registered")
	}
	bus.Register(EVENT_CODE_RESIZED, b, func(EventContext) bool { b.n++; return true })

	handled := bus.Fire(EventContext{Type: EVENT_CODE_RESIZED, Data: ResizeEvent{Width: 800, Height: 600}})
	if !handled || a.n != 1 || b.n != 1 {
		t.Fatalf("handled=%v a=%d b=%d", handled, a.n, b.n)
	}

	if !bus.Unregister(EVENT_CODE_RESIZED, a) {
		t.Fatal("Unregister failed")
	}
	if bus.Unregister(EVENT_CODE_RESIZED, a) {
		t.Fatal("second Unregister should fail")
	}
	bus.Fire(EventContext{Type: EVENT_CODE_RESIZED})
	if a.n != 1 || b.n != 2 {
		t.Fatalf("a=%d b=%d after unregister", a.n, b.n)
	}
}

func TestEventBusStopsWhenHandled(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	bus.Register(EVENT_CODE_APPLICATION_QUIT, 1, func(EventContext) bool { calls++; return true })
	bus.Register(EVENT_CODE_APPLICATION_QUIT, 2, func(EventContext) bool { calls++; return true })
	bus.Fire(EventContext{Type: EVENT_CODE_APPLICATION_QUIT})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
