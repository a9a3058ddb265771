// Package memory provides the in-memory room and person registries used by
// the allocation engine, plus an in-process state store for tests and
// ephemeral sessions.
package memory

import (
	"amity/pkg/domain"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Room aliases domain.Room for in-memory persistence operations.
	Room = domain.Room
	// Person aliases domain.Person.
	Person = domain.Person
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState holds both registries. Rooms are keyed by domain.RoomKey and
// people by id; the order slices preserve creation order.
type memoryState struct {
	rooms       map[string]Room
	roomOrder   []string
	people      map[string]Person
	personOrder []string
}

func newMemoryState() memoryState {
	return memoryState{
		rooms:  make(map[string]Room),
		people: make(map[string]Person),
	}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		rooms:       make(map[string]Room, len(s.rooms)),
		roomOrder:   append([]string(nil), s.roomOrder...),
		people:      make(map[string]Person, len(s.people)),
		personOrder: append([]string(nil), s.personOrder...),
	}
	for k, v := range s.rooms {
		cloned.rooms[k] = cloneRoom(v)
	}
	for k, v := range s.people {
		cloned.people[k] = clonePerson(v)
	}
	return cloned
}

func cloneRoom(r Room) Room {
	cp := r
	cp.Occupants = append([]string(nil), r.Occupants...)
	return cp
}

func clonePerson(p Person) Person {
	cp := p
	if p.OfficeRoom != nil {
		office := *p.OfficeRoom
		cp.OfficeRoom = &office
	}
	if p.LivingRoom != nil {
		living := *p.LivingRoom
		cp.LivingRoom = &living
	}
	return cp
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Rooms:  make([]Room, 0, len(state.roomOrder)),
		People: make([]Person, 0, len(state.personOrder)),
	}
	for _, key := range state.roomOrder {
		s.Rooms = append(s.Rooms, cloneRoom(state.rooms[key]))
	}
	for _, id := range state.personOrder {
		s.People = append(s.People, clonePerson(state.people[id]))
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) (memoryState, error) {
	state := newMemoryState()
	for _, r := range s.Rooms {
		key := r.Key()
		if key == "" {
			return memoryState{}, fmt.Errorf("%w: room without name", domain.ErrInvalidState)
		}
		if _, exists := state.rooms[key]; exists {
			return memoryState{}, fmt.Errorf("%w: duplicate room %q", domain.ErrInvalidState, r.Name)
		}
		if !r.Type.Valid() {
			return memoryState{}, fmt.Errorf("%w: room %q has type %q", domain.ErrInvalidState, r.Name, r.Type)
		}
		state.rooms[key] = cloneRoom(r)
		state.roomOrder = append(state.roomOrder, key)
	}
	for _, p := range s.People {
		if strings.TrimSpace(p.ID) == "" {
			return memoryState{}, fmt.Errorf("%w: person without id", domain.ErrInvalidState)
		}
		if _, exists := state.people[p.ID]; exists {
			return memoryState{}, fmt.Errorf("%w: duplicate person %q", domain.ErrInvalidState, p.ID)
		}
		if !p.Role.Valid() {
			return memoryState{}, fmt.Errorf("%w: person %q has role %q", domain.ErrInvalidState, p.ID, p.Role)
		}
		state.people[p.ID] = clonePerson(p)
		state.personOrder = append(state.personOrder, p.ID)
	}
	return state, nil
}

// Store provides the transactional in-memory registries.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time provider used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot. The
// snapshot is validated structurally and against the rules engine first; on
// any failure the current state is left untouched.
func (s *Store) ImportState(ctx context.Context, snapshot Snapshot) error {
	state, err := memoryStateFromSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&state), nil)
		if err != nil {
			return err
		}
		if res.HasBlocking() {
			return fmt.Errorf("%w: %w", domain.ErrInvalidState, domain.RuleViolationError{Result: res})
		}
	}
	s.state = state
	return nil
}

// RunInTransaction executes fn against a cloned state, evaluates the rules
// engine, and commits only when fn succeeds and no blocking violation exists.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(&snapshot))
}

// ListRooms returns every room in creation order.
func (s *Store) ListRooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListRooms()
}

// ListPeople returns every person in creation order.
func (s *Store) ListPeople() []Person {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListPeople()
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListRooms returns all rooms within the snapshot in creation order.
func (v transactionView) ListRooms() []Room {
	out := make([]Room, 0, len(v.state.roomOrder))
	for _, key := range v.state.roomOrder {
		out = append(out, cloneRoom(v.state.rooms[key]))
	}
	return out
}

// ListPeople returns all people within the snapshot in creation order.
func (v transactionView) ListPeople() []Person {
	out := make([]Person, 0, len(v.state.personOrder))
	for _, id := range v.state.personOrder {
		out = append(out, clonePerson(v.state.people[id]))
	}
	return out
}

// FindRoom retrieves a room by case-insensitive name.
func (v transactionView) FindRoom(name string) (Room, bool) {
	r, ok := v.state.rooms[domain.RoomKey(name)]
	if !ok {
		return Room{}, false
	}
	return cloneRoom(r), true
}

// FindPerson retrieves a person by id.
func (v transactionView) FindPerson(id string) (Person, bool) {
	p, ok := v.state.people[id]
	if !ok {
		return Person{}, false
	}
	return clonePerson(p), true
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindRoom exposes room lookup within the transaction scope.
func (tx *transaction) FindRoom(name string) (Room, bool) {
	return newTransactionView(&tx.state).FindRoom(name)
}

// FindPerson exposes person lookup within the transaction scope.
func (tx *transaction) FindPerson(id string) (Person, bool) {
	return newTransactionView(&tx.state).FindPerson(id)
}

// CreateRoom registers a new empty room.
func (tx *transaction) CreateRoom(r Room) (Room, error) {
	key := r.Key()
	if key == "" {
		return Room{}, domain.ErrInvalidRoomName
	}
	if !r.Type.Valid() {
		return Room{}, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, r.Type)
	}
	if r.Capacity <= 0 {
		return Room{}, fmt.Errorf("room %q capacity must be positive", r.Name)
	}
	if _, exists := tx.state.rooms[key]; exists {
		return Room{}, fmt.Errorf("%w: %q", domain.ErrDuplicateRoom, r.Name)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Occupants = append([]string(nil), r.Occupants...)
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.rooms[key] = cloneRoom(r)
	tx.state.roomOrder = append(tx.state.roomOrder, key)
	tx.recordChange(Change{Entity: domain.EntityRoom, Action: domain.ActionCreate, After: cloneRoom(r)})
	return cloneRoom(r), nil
}

// UpdateRoom mutates an existing room. Name, type and id are immutable.
func (tx *transaction) UpdateRoom(name string, mutator func(*Room) error) (Room, error) {
	key := domain.RoomKey(name)
	current, ok := tx.state.rooms[key]
	if !ok {
		return Room{}, fmt.Errorf("%w: %q", domain.ErrRoomNotFound, name)
	}
	before := cloneRoom(current)
	if err := mutator(&current); err != nil {
		return Room{}, err
	}
	if current.Key() != key || current.Type != before.Type || current.ID != before.ID {
		return Room{}, fmt.Errorf("room %q: name, type and id are immutable", before.Name)
	}
	current.UpdatedAt = tx.now
	tx.state.rooms[key] = cloneRoom(current)
	tx.recordChange(Change{Entity: domain.EntityRoom, Action: domain.ActionUpdate, Before: before, After: cloneRoom(current)})
	return cloneRoom(current), nil
}

// CreatePerson registers a new person.
func (tx *transaction) CreatePerson(p Person) (Person, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" || strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return Person{}, domain.ErrInvalidPerson
	}
	if !p.Role.Valid() {
		return Person{}, fmt.Errorf("%w: %q", domain.ErrInvalidRole, p.Role)
	}
	if _, exists := tx.state.people[p.ID]; exists {
		return Person{}, fmt.Errorf("%w: %q", domain.ErrDuplicatePerson, p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.people[p.ID] = clonePerson(p)
	tx.state.personOrder = append(tx.state.personOrder, p.ID)
	tx.recordChange(Change{Entity: domain.EntityPerson, Action: domain.ActionCreate, After: clonePerson(p)})
	return clonePerson(p), nil
}

// UpdatePerson mutates an existing person. The id is immutable.
func (tx *transaction) UpdatePerson(id string, mutator func(*Person) error) (Person, error) {
	current, ok := tx.state.people[id]
	if !ok {
		return Person{}, fmt.Errorf("%w: %q", domain.ErrPersonNotFound, id)
	}
	before := clonePerson(current)
	if err := mutator(&current); err != nil {
		return Person{}, err
	}
	if current.ID != id {
		return Person{}, fmt.Errorf("person %q: id is immutable", id)
	}
	if !current.Role.Valid() {
		return Person{}, fmt.Errorf("%w: %q", domain.ErrInvalidRole, current.Role)
	}
	current.UpdatedAt = tx.now
	tx.state.people[id] = clonePerson(current)
	tx.recordChange(Change{Entity: domain.EntityPerson, Action: domain.ActionUpdate, Before: before, After: clonePerson(current)})
	return clonePerson(current), nil
}
