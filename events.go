package impulse

import (
	"slices"
	"unsafe"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/contact"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

type pairKey struct {
	bodyA *actor.RigidBody
	bodyB *actor.RigidBody
}

// makePairKey creates a normalized pair key: lower ID first, address as tie-break
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	if bodyB.ID < bodyA.ID ||
		(bodyB.ID == bodyA.ID && uintptr(unsafe.Pointer(bodyB)) < uintptr(unsafe.Pointer(bodyA))) {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case COLLISION_ENTER:
		return "enter"
	case COLLISION_STAY:
		return "stay"
	case COLLISION_EXIT:
		return "exit"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEnterEvent is emitted on the first step a pair produces contacts
type CollisionEnterEvent struct {
	BodyA    *actor.RigidBody
	BodyB    *actor.RigidBody
	Contacts int
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

// CollisionStayEvent is emitted on every following step the pair still produces contacts
type CollisionStayEvent struct {
	BodyA    *actor.RigidBody
	BodyB    *actor.RigidBody
	Contacts int
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

// CollisionExitEvent is emitted on the first step a pair no longer produces contacts
type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events dispatches collision events at the end of each step
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// contact count per pair, for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]int
	currentActivePairs  map[pairKey]int
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[pairKey]int),
		currentActivePairs:  make(map[pairKey]int),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts marks the pairs touching during this step
func (e *Events) recordContacts(contacts []contact.Contact) {
	for _, c := range contacts {
		e.currentActivePairs[makePairKey(c.A, c.B)]++
	}
}

// forget drops a removed body from the pair tracking, without an exit event
func (e *Events) forget(body *actor.RigidBody) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit.
// Events come out ordered by body IDs.
func (e *Events) processCollisionEvents() {
	for _, pair := range sortedPairs(e.currentActivePairs) {
		count := e.currentActivePairs[pair]
		if _, ok := e.previousActivePairs[pair]; ok {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Contacts: count})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB, Contacts: count})
		}
	}

	for _, pair := range sortedPairs(e.previousActivePairs) {
		if _, ok := e.currentActivePairs[pair]; !ok {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

func sortedPairs(pairs map[pairKey]int) []pairKey {
	keys := make([]pairKey, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b pairKey) int {
		if a.bodyA.ID != b.bodyA.ID {
			return a.bodyA.ID - b.bodyA.ID
		}
		return a.bodyB.ID - b.bodyB.ID
	})
	return keys
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
