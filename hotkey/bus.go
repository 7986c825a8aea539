package hotkey

import (
	"sync"

	"github.com/google/uuid"
)

// Topic names a broadcast notification.
type Topic string

const (
	// TopicObserved carries every press seen on the local channel.
	TopicObserved Topic = "observed"
	// TopicSummon fires when the registered global target is pressed.
	TopicSummon Topic = "summon"
	// TopicDismiss asks the shell to hide the popover.
	TopicDismiss Topic = "dismiss"
	// TopicChanged fires when the persisted target combination is replaced.
	TopicChanged Topic = "changed"
)

// Channel identifies where a notification originated.
type Channel int

const (
	ChannelApp Channel = iota
	ChannelGlobal
	ChannelLocal
	ChannelMouse
)

func (c Channel) String() string {
	switch c {
	case ChannelGlobal:
		return "global"
	case ChannelLocal:
		return "local"
	case ChannelMouse:
		return "mouse"
	default:
		return "app"
	}
}

// Notification is one broadcast message.
type Notification struct {
	Topic   Topic
	Channel Channel
	Combo   Combo
}

// Bus is a synchronous publish/subscribe channel. Subscribers run on the
// publisher's goroutine, in no particular order.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic]map[string]func(Notification)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[string]func(Notification))}
}

// Subscribe registers fn for topic and returns a func that removes it.
func (b *Bus) Subscribe(topic Topic, fn func(Notification)) (unsubscribe func()) {
	id := uuid.NewString()

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[string]func(Notification))
	}
	b.subs[topic][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers n to every subscriber of n.Topic before returning.
func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	handlers := make([]func(Notification), 0, len(b.subs[n.Topic]))
	for _, fn := range b.subs[n.Topic] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(n)
	}
}

// Subscribers returns the number of subscribers for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
