package events

import (
	"sync"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/types"
)

type Publisher interface {
	Publish(event Event)
}

type PublisherFunc func(event Event)

func (f PublisherFunc) Publish(event Event) {
	f(event)
}

// Fanout delivers every event to each publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(event Event) {
	for _, publisher := range f {
		publisher.Publish(event)
	}
}

// Log keeps every published event in memory, indexed by emitter address.
type Log struct {
	mutex     sync.RWMutex
	byAddress map[types.Address][]Event
	size      int
}

func NewLog() *Log {
	return &Log{
		byAddress: make(map[types.Address][]Event),
	}
}

func (l *Log) Publish(event Event) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.byAddress[event.Address] = append(l.byAddress[event.Address], event)
	l.size++

	config.Logger.Debugf("[nftex.events] %s emitted %s %v", event.Address, event.Name, event.Data)
}

// Events returns the events emitted by address, oldest first. An empty name matches every event.
func (l *Log) Events(address types.Address, name Name) []Event {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	result := make([]Event, 0)
	for _, event := range l.byAddress[address] {
		if name == "" || event.Name == name {
			result = append(result, event)
		}
	}

	return result
}

func (l *Log) LastEvent(address types.Address, name Name) (Event, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	list := l.byAddress[address]
	for i := len(list) - 1; i >= 0; i-- {
		if name == "" || list[i].Name == name {
			return list[i], true
		}
	}

	return Event{}, false
}

func (l *Log) Size() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.size
}
