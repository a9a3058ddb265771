package core_test

import (
	"amity/internal/core"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// firstChooser always picks the first candidate.
type firstChooser struct{}

func (firstChooser) IntN(int) int { return 0 }

// lastChooser always picks the last candidate.
type lastChooser struct{}

func (lastChooser) IntN(n int) int { return n - 1 }

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *recordingLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

// field returns the value logged under key for the first entry with msg.
func (l *recordingLogger) field(msg, key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg != msg {
			continue
		}
		for i := 0; i+1 < len(e.args); i += 2 {
			if e.args[i] == key {
				return e.args[i+1], true
			}
		}
	}
	return nil, false
}

type observation struct {
	operation string
	success   bool
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (m *recordingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = append(m.obs, observation{operation: operation, success: success})
}

func (m *recordingMetrics) count(operation string, success bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.obs {
		if o.operation == operation && o.success == success {
			n++
		}
	}
	return n
}

func newService(opts ...core.Option) *core.Service {
	opts = append([]core.Option{core.WithChooser(firstChooser{})}, opts...)
	return core.NewInMemoryService(nil, opts...)
}

func mustRoom(t *testing.T, svc *core.Service, name string, roomType core.RoomType) core.Room {
	t.Helper()
	room, err := svc.CreateRoom(context.Background(), name, roomType)
	if err != nil {
		t.Fatalf("create room %s: %v", name, err)
	}
	return room
}

func mustAdd(t *testing.T, svc *core.Service, id, first, last string, role core.Role, wants bool) core.Placement {
	t.Helper()
	placement, err := svc.AddPerson(context.Background(), core.NewPerson{
		ID: id, FirstName: first, LastName: last, Role: role, WantsAccommodation: wants,
	})
	if err != nil {
		t.Fatalf("add person %s: %v", id, err)
	}
	return placement
}

func occupantsOf(t *testing.T, svc *core.Service, name string) []string {
	t.Helper()
	room, ok := svc.FindRoom(context.Background(), name)
	if !ok {
		t.Fatalf("room %s not found", name)
	}
	return room.Occupants
}

// checkInvariants verifies capacity, eligibility and two-way consistency.
func checkInvariants(t *testing.T, svc *core.Service) {
	t.Helper()
	snapshot := svc.Store().ExportState()
	rooms := make(map[string]core.Room, len(snapshot.Rooms))
	for _, room := range snapshot.Rooms {
		if len(room.Occupants) > room.Capacity {
			t.Fatalf("room %s over capacity: %d/%d", room.Name, len(room.Occupants), room.Capacity)
		}
		rooms[room.Key()] = room
	}
	for _, person := range snapshot.People {
		if person.Role == core.RoleStaff && person.LivingRoom != nil {
			t.Fatalf("staff %s holds living space %s", person.ID, *person.LivingRoom)
		}
		for _, roomType := range []core.RoomType{core.RoomTypeOffice, core.RoomTypeLivingSpace} {
			name, ok := person.RoomOf(roomType)
			if !ok {
				continue
			}
			room, found := rooms[core.Room{Name: name}.Key()]
			if !found || room.Type != roomType || !room.HasOccupant(person.ID) {
				t.Fatalf("%s references %s %s inconsistently", person.ID, roomType, name)
			}
		}
	}
}

func personID(i int) string { return fmt.Sprintf("p%02d", i) }
