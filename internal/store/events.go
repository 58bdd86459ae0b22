package store

import (
	"sync"

	"notes/internal/domain"
)

// EventType says what kind of mutation happened.
type EventType int

const (
	EventAdded EventType = iota + 1
	EventUpdated
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event describes one effective mutation. Items holds copies of the affected
// items: their new state for Added and Updated, their last state for Deleted.
type Event struct {
	Type  EventType
	IDs   []string
	Items []domain.Item
}

func (e Event) clone() Event {
	return Event{
		Type:  e.Type,
		IDs:   append([]string(nil), e.IDs...),
		Items: domain.CloneItems(e.Items),
	}
}

type observer struct {
	id int
	fn func(Event)
}

type observers struct {
	mu     sync.Mutex
	list   []observer
	nextID int
}

func (o *observers) add(fn func(Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.list = append(o.list, observer{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, obs := range o.list {
		if obs.id == id {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return
		}
	}
}

// notify calls every observer in subscription order. The list is copied first
// so observers may subscribe or unsubscribe while being called.
func (o *observers) notify(ev Event) {
	o.mu.Lock()
	list := append([]observer(nil), o.list...)
	o.mu.Unlock()

	for _, obs := range list {
		obs.fn(ev.clone())
	}
}
