package hotkey

import "testing"

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	var a, b, other int
	bus.Subscribe(TopicObserved, func(Notification) { a++ })
	bus.Subscribe(TopicObserved, func(Notification) { b++ })
	bus.Subscribe(TopicDismiss, func(Notification) { other++ })

	bus.Publish(Notification{Topic: TopicObserved, Combo: Default})

	if a != 1 || b != 1 {
		t.Errorf("subscribers called a=%d b=%d, want 1 each", a, b)
	}
	if other != 0 {
		t.Errorf("subscriber of another topic called %d times", other)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	var calls int
	unsubscribe := bus.Subscribe(TopicSummon, func(Notification) { calls++ })

	bus.Publish(Notification{Topic: TopicSummon})
	unsubscribe()
	unsubscribe()
	bus.Publish(Notification{Topic: TopicSummon})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := bus.Subscribers(TopicSummon); n != 0 {
		t.Errorf("Subscribers() = %d after unsubscribe", n)
	}
}

func TestBusPayload(t *testing.T) {
	bus := NewBus()
	var got Notification
	bus.Subscribe(TopicChanged, func(n Notification) { got = n })

	want := Notification{Topic: TopicChanged, Channel: ChannelApp, Combo: New(KeyD, Command)}
	bus.Publish(want)

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBusSubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	var late int
	bus.Subscribe(TopicObserved, func(Notification) {
		bus.Subscribe(TopicObserved, func(Notification) { late++ })
	})

	bus.Publish(Notification{Topic: TopicObserved})
	if late != 0 {
		t.Errorf("subscriber added during publish was called %d times", late)
	}
}
