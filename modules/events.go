package modules

import (
	"sync"

	"github.com/google/uuid"
)

type EventType string

const (
	EventFlightRegistered      EventType = "FlightRegistered"
	EventOracleRequest         EventType = "OracleRequest"
	EventOracleReport          EventType = "OracleReport"
	EventInsurancePurchased    EventType = "InsurancePurchased"
	EventCompensationWithdrawn EventType = "CompensationWithdrawn"
)

type Event struct {
	Type       EventType
	Attributes map[string]string
}

const subscriberBuffer = 64

// Bus fans notifications out to subscribers. Emit never blocks: a
// subscriber that falls behind loses events once its buffer is full.
type Bus struct {
	mutex       sync.RWMutex
	subscribers map[string]chan Event
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]chan Event)}
}

func (bus *Bus) Subscribe() (string, <-chan Event) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	id := uuid.NewString()
	channel := make(chan Event, subscriberBuffer)
	bus.subscribers[id] = channel
	return id, channel
}

func (bus *Bus) Unsubscribe(id string) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	if channel, subscribed := bus.subscribers[id]; subscribed {
		delete(bus.subscribers, id)
		close(channel)
	}
}

func (bus *Bus) Emit(event Event) {
	if bus == nil {
		return
	}
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()
	for _, channel := range bus.subscribers {
		select {
		case channel <- event:
		default: // subscriber buffer full, event dropped
		}
	}
}
