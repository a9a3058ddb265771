// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by amity.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the registries.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityRoom identifies a room record.
	EntityRoom EntityType = "room"
	// EntityPerson identifies a person record.
	EntityPerson EntityType = "person"
)

// RoomType classifies a room. It is fixed when the room is created.
type RoomType string

// Supported room types.
const (
	RoomTypeOffice      RoomType = "OFFICE"
	RoomTypeLivingSpace RoomType = "LIVING_SPACE"
)

// RoomTypes lists every room type in allocation order: an office is always
// placed before a living space.
var RoomTypes = []RoomType{RoomTypeOffice, RoomTypeLivingSpace}

// Valid reports whether t is a recognised room type.
func (t RoomType) Valid() bool {
	return t == RoomTypeOffice || t == RoomTypeLivingSpace
}

// ParseRoomType converts user input into a RoomType.
func ParseRoomType(raw string) (RoomType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "OFFICE", "O":
		return RoomTypeOffice, nil
	case "LIVING_SPACE", "LIVINGSPACE", "LIVING-SPACE", "LIVING", "L":
		return RoomTypeLivingSpace, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomType, raw)
	}
}

// Role classifies a person.
type Role string

// Supported roles. Staff are also called fellows, so both spellings are
// accepted at the boundary.
const (
	RoleStaff   Role = "STAFF"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is a recognised role.
func (r Role) Valid() bool {
	return r == RoleStaff || r == RoleStudent
}

// ParseRole converts user input into a Role.
func ParseRole(raw string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "STAFF", "FELLOW", "F":
		return RoleStaff, nil
	case "STUDENT", "S":
		return RoleStudent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// Capacities holds the organisation-wide room capacity per type.
type Capacities struct {
	Office      int `json:"office" yaml:"office"`
	LivingSpace int `json:"living_space" yaml:"living_space"`
}

// Default capacities for each room type.
const (
	DefaultOfficeCapacity      = 6
	DefaultLivingSpaceCapacity = 4
)

// DefaultCapacities returns the standard capacity policy.
func DefaultCapacities() Capacities {
	return Capacities{Office: DefaultOfficeCapacity, LivingSpace: DefaultLivingSpaceCapacity}
}

// For returns the capacity configured for the room type, or zero when the type is unknown.
func (c Capacities) For(t RoomType) int {
	switch t {
	case RoomTypeOffice:
		return c.Office
	case RoomTypeLivingSpace:
		return c.LivingSpace
	default:
		return 0
	}
}

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Room is an allocatable space.
type Room struct {
	Base
	Name      string   `json:"name"`
	Type      RoomType `json:"type"`
	Capacity  int      `json:"capacity"`
	Occupants []string `json:"occupants"`
}

// RoomKey normalises a room name for case-insensitive lookups.
func RoomKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Key returns the registry key of the room.
func (r Room) Key() string { return RoomKey(r.Name) }

// Full reports whether the room has no free place left.
func (r Room) Full() bool { return len(r.Occupants) >= r.Capacity }

// Vacancies returns the number of free places.
func (r Room) Vacancies() int {
	if n := r.Capacity - len(r.Occupants); n > 0 {
		return n
	}
	return 0
}

// HasOccupant reports whether the person id is assigned to the room.
func (r Room) HasOccupant(personID string) bool {
	for _, id := range r.Occupants {
		if id == personID {
			return true
		}
	}
	return false
}

// Person is a member of the organisation who may be given rooms.
type Person struct {
	Base
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Role               Role    `json:"role"`
	WantsAccommodation bool    `json:"wants_accommodation"`
	OfficeRoom         *string `json:"office_room"`
	LivingRoom         *string `json:"living_room"`
}

// FullName joins the first and last names.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// RoomOf returns the name of the room of the given type assigned to the person.
func (p Person) RoomOf(t RoomType) (string, bool) {
	var ref *string
	switch t {
	case RoomTypeOffice:
		ref = p.OfficeRoom
	case RoomTypeLivingSpace:
		ref = p.LivingRoom
	}
	if ref == nil {
		return "", false
	}
	return *ref, true
}

// SetRoom assigns (or clears, when name is empty) the room of the given type.
func (p *Person) SetRoom(t RoomType, name string) {
	var ref *string
	if name != "" {
		ref = &name
	}
	switch t {
	case RoomTypeOffice:
		p.OfficeRoom = ref
	case RoomTypeLivingSpace:
		p.LivingRoom = ref
	}
}

// EligibleFor reports whether the person may hold a room of the given type.
func (p Person) EligibleFor(t RoomType) bool {
	switch t {
	case RoomTypeOffice:
		return true
	case RoomTypeLivingSpace:
		return p.Role == RoleStudent
	default:
		return false
	}
}

// WantedTypes lists the room types the person is entitled to and asked for.
func (p Person) WantedTypes() []RoomType {
	wanted := []RoomType{RoomTypeOffice}
	if p.Role == RoleStudent && p.WantsAccommodation {
		wanted = append(wanted, RoomTypeLivingSpace)
	}
	return wanted
}

// MissingTypes lists wanted room types the person does not hold yet.
func (p Person) MissingTypes() []RoomType {
	var missing []RoomType
	for _, t := range p.WantedTypes() {
		if _, ok := p.RoomOf(t); !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// Snapshot captures the full registry state in creation order. It is the unit
// of persistence for every state store.
type Snapshot struct {
	Rooms  []Room   `json:"rooms"`
	People []Person `json:"people"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations. Rooms and people are never deleted.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}
