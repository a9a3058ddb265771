package domain

import "context"

// Transaction exposes the registry operations that a store must support
// within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateRoom(Room) (Room, error)
	UpdateRoom(name string, mutator func(*Room) error) (Room, error)
	CreatePerson(Person) (Person, error)
	UpdatePerson(id string, mutator func(*Person) error) (Person, error)
	FindRoom(name string) (Room, bool)
	FindPerson(id string) (Person, bool)
}

// TransactionView provides read-only access to registry data.
type TransactionView interface {
	ListRooms() []Room
	ListPeople() []Person
	FindRoom(name string) (Room, bool)
	FindPerson(id string) (Person, bool)
}

// PersistentStore is the registry store used by the allocation engine.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(ctx context.Context, snapshot Snapshot) error
}

// StateStore saves and restores complete snapshots under a caller-supplied name.
type StateStore interface {
	Save(ctx context.Context, name string, snapshot Snapshot) error
	Load(ctx context.Context, name string) (Snapshot, error)
	// Names lists saved snapshot names in lexical order.
	Names(ctx context.Context) ([]string, error)
	Close() error
}
