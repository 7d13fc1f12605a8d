package impulse

import (
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/contact"
	"github.com/go-gl/mathgl/mgl64"
)

func recordEvents(e *Events) *[]Event {
	var got []Event
	listener := func(event Event) {
		got = append(got, event)
	}
	e.Subscribe(COLLISION_ENTER, listener)
	e.Subscribe(COLLISION_STAY, listener)
	e.Subscribe(COLLISION_EXIT, listener)
	return &got
}

func withIDs(tb testing.TB, ids ...int) []*actor.RigidBody {
	tb.Helper()
	out := make([]*actor.RigidBody, len(ids))
	for i, id := range ids {
		out[i] = createSphere(tb, mgl64.Vec3{}, 1, actor.BodyTypeDynamic)
		out[i].ID = id
	}
	return out
}

func TestEvents_EnterStayExit(t *testing.T) {
	bodies := withIDs(t, 1, 2)
	events := NewEvents()
	got := recordEvents(&events)

	touching := []contact.Contact{
		{A: bodies[0], B: bodies[1]},
		{A: bodies[1], B: bodies[0]},
	}

	events.recordContacts(touching)
	events.flush()
	events.recordContacts(touching)
	events.flush()
	events.flush()
	events.flush()

	want := []EventType{COLLISION_ENTER, COLLISION_STAY, COLLISION_EXIT}
	if len(*got) != len(want) {
		t.Fatalf("got %d events, want %d", len(*got), len(want))
	}
	for i, event := range *got {
		if event.Type() != want[i] {
			t.Errorf("event %d = %v, want %v", i, event.Type(), want[i])
		}
	}

	enter := (*got)[0].(CollisionEnterEvent)
	if enter.BodyA != bodies[0] || enter.BodyB != bodies[1] {
		t.Error("the body with the lower ID should come first")
	}
	if enter.Contacts != 2 {
		t.Errorf("Contacts = %d, want 2 for both role orders", enter.Contacts)
	}
}

func TestEvents_OrderedByID(t *testing.T) {
	bodies := withIDs(t, 5, 3, 1, 4)
	events := NewEvents()
	got := recordEvents(&events)

	events.recordContacts([]contact.Contact{
		{A: bodies[0], B: bodies[3]}, // 4-5
		{A: bodies[1], B: bodies[0]}, // 3-5
		{A: bodies[2], B: bodies[3]}, // 1-4
		{A: bodies[1], B: bodies[2]}, // 1-3
	})
	events.flush()

	want := [][2]int{{1, 3}, {1, 4}, {3, 5}, {4, 5}}
	if len(*got) != len(want) {
		t.Fatalf("got %d events, want %d", len(*got), len(want))
	}
	for i, event := range *got {
		enter := event.(CollisionEnterEvent)
		if enter.BodyA.ID != want[i][0] || enter.BodyB.ID != want[i][1] {
			t.Errorf("event %d = (%d,%d), want %v", i, enter.BodyA.ID, enter.BodyB.ID, want[i])
		}
	}
}

func TestEventType_String(t *testing.T) {
	if COLLISION_ENTER.String() != "enter" || COLLISION_STAY.String() != "stay" || COLLISION_EXIT.String() != "exit" {
		t.Error("unexpected event type names")
	}
	if EventType(42).String() != "unknown" {
		t.Error("unknown event type should say so")
	}
}

func TestWorld_CollisionEvents(t *testing.T) {
	box, ground := restingBoxScene(t)
	w := NewWorld()
	w.AddBody(box)
	w.AddBody(ground)
	got := recordEvents(&w.Events)

	for i := 0; i < 3; i++ {
		if err := w.Step(1e-3); err != nil {
			t.Fatal(err)
		}
	}

	// lift the box off the ground
	box.Transform.Position = mgl64.Vec3{0, 10, 0}
	box.UpdateAABB()
	if err := w.Step(1e-3); err != nil {
		t.Fatal(err)
	}

	want := []EventType{COLLISION_ENTER, COLLISION_STAY, COLLISION_STAY, COLLISION_EXIT}
	if len(*got) != len(want) {
		t.Fatalf("got %d events, want %d", len(*got), len(want))
	}
	for i, event := range *got {
		if event.Type() != want[i] {
			t.Errorf("event %d = %v, want %v", i, event.Type(), want[i])
		}
	}
	if enter := (*got)[0].(CollisionEnterEvent); enter.Contacts != 4 || enter.BodyA != box {
		t.Errorf("enter = %+v", enter)
	}
}

func TestWorld_RemoveBodyEmitsNoExit(t *testing.T) {
	box, ground := restingBoxScene(t)
	w := NewWorld()
	w.AddBody(box)
	w.AddBody(ground)
	got := recordEvents(&w.Events)

	if err := w.Step(1e-3); err != nil {
		t.Fatal(err)
	}
	w.RemoveBody(ground)
	if err := w.Step(1e-3); err != nil {
		t.Fatal(err)
	}

	if len(*got) != 1 || (*got)[0].Type() != COLLISION_ENTER {
		t.Errorf("events = %v, want a single enter", *got)
	}
}
