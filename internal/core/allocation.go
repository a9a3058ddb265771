package core

import (
	"amity/pkg/domain"
	"context"
	"fmt"
	"strings"
)

// DefaultCapacities returns the standard capacity policy (office 6, living space 4).
func DefaultCapacities() Capacities {
	return domain.DefaultCapacities()
}

// NewPerson carries the caller-supplied fields for AddPerson.
type NewPerson struct {
	ID                 string
	FirstName          string
	LastName           string
	Role               Role
	WantsAccommodation bool
}

// Placement is the outcome of an allocation attempt for one person.
// Unallocated lists wanted room types for which no room had space; it is a
// normal outcome, not an error.
type Placement struct {
	Person      Person
	Assigned    map[RoomType]string
	Unallocated []RoomType
}

// Allocated reports whether every wanted room type is now held.
func (p Placement) Allocated() bool { return len(p.Unallocated) == 0 }

// CreateRoom registers an empty room whose capacity follows its type.
func (s *Service) CreateRoom(ctx context.Context, name string, roomType RoomType) (Room, error) {
	rooms, err := s.CreateRooms(ctx, roomType, name)
	if err != nil {
		return Room{}, err
	}
	return rooms[0], nil
}

// CreateRooms registers several rooms of one type. Either all rooms are
// created or none are.
func (s *Service) CreateRooms(ctx context.Context, roomType RoomType, names ...string) ([]Room, error) {
	if !roomType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, roomType)
	}
	if len(names) == 0 {
		return nil, domain.ErrInvalidRoomName
	}
	created := make([]Room, 0, len(names))
	_, err := s.run(ctx, "create_room", func(tx Transaction) error {
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return domain.ErrInvalidRoomName
			}
			room, err := tx.CreateRoom(Room{Name: name, Type: roomType, Capacity: s.capacities.For(roomType)})
			if err != nil {
				return err
			}
			created = append(created, room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, room := range created {
		s.logger.Info("room created", "room", room.Name, "type", room.Type, "capacity", room.Capacity)
	}
	return created, nil
}

// FindRoom looks a room up by case-insensitive name.
func (s *Service) FindRoom(ctx context.Context, name string) (Room, bool) {
	var room Room
	var found bool
	_ = s.view(ctx, "find_room", func(v TransactionView) error {
		room, found = v.FindRoom(name)
		return nil
	})
	return room, found
}

// RoomsOfType lists rooms of one type in creation order.
func (s *Service) RoomsOfType(ctx context.Context, roomType RoomType) []Room {
	var out []Room
	_ = s.view(ctx, "rooms_of_type", func(v TransactionView) error {
		out = roomsOfType(v, roomType)
		return nil
	})
	return out
}

func roomsOfType(v TransactionView, roomType RoomType) []Room {
	var out []Room
	for _, room := range v.ListRooms() {
		if room.Type == roomType {
			out = append(out, room)
		}
	}
	return out
}

// AddPerson registers a person and immediately tries to give them an office
// and, for students who asked, a living space. Staff never want
// accommodation; the flag is cleared for them.
func (s *Service) AddPerson(ctx context.Context, in NewPerson) (Placement, error) {
	if !in.Role.Valid() {
		return Placement{}, fmt.Errorf("%w: %q", domain.ErrInvalidRole, in.Role)
	}
	person := Person{
		Base:               Base{ID: strings.TrimSpace(in.ID)},
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Role:               in.Role,
		WantsAccommodation: in.WantsAccommodation && in.Role == RoleStudent,
	}
	var placement Placement
	_, err := s.run(ctx, "add_person", func(tx Transaction) error {
		created, err := tx.CreatePerson(person)
		if err != nil {
			return err
		}
		placement, err = s.place(tx, created)
		return err
	})
	if err != nil {
		return Placement{}, err
	}
	s.logger.Info("person added", "id", placement.Person.ID, "name", placement.Person.FullName(), "role", placement.Person.Role)
	s.logPlacement(placement)
	return placement, nil
}

// FindPerson resolves a reference by id first, then by case-insensitive full
// name. Ambiguous names resolve to nothing.
func (s *Service) FindPerson(ctx context.Context, ref string) (Person, bool) {
	var person Person
	var err error
	_ = s.view(ctx, "find_person", func(v TransactionView) error {
		person, err = resolvePerson(v, ref)
		return nil
	})
	return person, err == nil
}

func resolvePerson(v TransactionView, ref string) (Person, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Person{}, fmt.Errorf("%w: empty reference", domain.ErrPersonNotFound)
	}
	if person, ok := v.FindPerson(ref); ok {
		return person, nil
	}
	wanted := strings.Join(strings.Fields(ref), " ")
	var matches []Person
	for _, person := range v.ListPeople() {
		if strings.EqualFold(person.FullName(), wanted) {
			matches = append(matches, person)
		}
	}
	switch len(matches) {
	case 0:
		return Person{}, fmt.Errorf("%w: %q", domain.ErrPersonNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		return Person{}, fmt.Errorf("%w: %q (ids %s)", domain.ErrAmbiguousPerson, ref, strings.Join(ids, ", "))
	}
}

// Allocate retries allocation of every missing room type for one person.
func (s *Service) Allocate(ctx context.Context, ref string) (Placement, error) {
	var placement Placement
	_, err := s.run(ctx, "allocate", func(tx Transaction) error {
		person, err := resolvePerson(tx.Snapshot(), ref)
		if err != nil {
			return err
		}
		placement, err = s.place(tx, person)
		return err
	})
	if err != nil {
		return Placement{}, err
	}
	s.logPlacement(placement)
	return placement, nil
}

// AllocatePending retries allocation for everybody who is missing a wanted
// room, in person creation order. It returns the placements that changed.
func (s *Service) AllocatePending(ctx context.Context) ([]Placement, error) {
	var changed []Placement
	_, err := s.run(ctx, "allocate_pending", func(tx Transaction) error {
		for _, person := range tx.Snapshot().ListPeople() {
			if len(person.MissingTypes()) == 0 {
				continue
			}
			placement, err := s.place(tx, person)
			if err != nil {
				return err
			}
			if len(placement.Assigned) > 0 {
				changed = append(changed, placement)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, placement := range changed {
		s.logPlacement(placement)
	}
	return changed, nil
}

// place assigns a random room with free space for each wanted type the
// person does not hold yet.
func (s *Service) place(tx Transaction, person Person) (Placement, error) {
	placement := Placement{Person: person, Assigned: map[RoomType]string{}}
	for _, roomType := range person.MissingTypes() {
		candidates := availableRooms(tx.Snapshot(), roomType)
		if len(candidates) == 0 {
			placement.Unallocated = append(placement.Unallocated, roomType)
			continue
		}
		room := candidates[s.chooser.IntN(len(candidates))]
		if _, err := tx.UpdateRoom(room.Name, func(r *Room) error {
			if r.Full() {
				return fmt.Errorf("%w: %s", domain.ErrRoomFull, r.Name)
			}
			r.Occupants = append(r.Occupants, person.ID)
			return nil
		}); err != nil {
			return Placement{}, err
		}
		placement.Assigned[roomType] = room.Name
	}
	if len(placement.Assigned) == 0 {
		return placement, nil
	}
	updated, err := tx.UpdatePerson(person.ID, func(p *Person) error {
		for roomType, name := range placement.Assigned {
			p.SetRoom(roomType, name)
		}
		return nil
	})
	if err != nil {
		return Placement{}, err
	}
	placement.Person = updated
	return placement, nil
}

func availableRooms(v TransactionView, roomType RoomType) []Room {
	var out []Room
	for _, room := range roomsOfType(v, roomType) {
		if room.Vacancies() > 0 {
			out = append(out, room)
		}
	}
	return out
}

func (s *Service) logPlacement(p Placement) {
	for _, roomType := range domain.RoomTypes {
		if name, ok := p.Assigned[roomType]; ok {
			s.logger.Info("room allocated", "id", p.Person.ID, "name", p.Person.FullName(), "type", roomType, "room", name)
		}
	}
	for _, roomType := range p.Unallocated {
		s.logger.Info("no room available", "id", p.Person.ID, "name", p.Person.FullName(), "type", roomType)
	}
}

// Reallocate moves a person into the named room, vacating their current room
// of the same type. The move is a single transaction: on any error nothing
// changes.
func (s *Service) Reallocate(ctx context.Context, ref, roomName string) (Person, error) {
	var moved Person
	var from, to string
	_, err := s.run(ctx, "reallocate", func(tx Transaction) error {
		target, ok := tx.FindRoom(roomName)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrRoomNotFound, roomName)
		}
		person, err := resolvePerson(tx.Snapshot(), ref)
		if err != nil {
			return err
		}
		if !person.EligibleFor(target.Type) {
			return fmt.Errorf("%w: %s %s cannot be given %s %s", domain.ErrRoleIneligible, person.Role, person.FullName(), target.Type, target.Name)
		}
		current, hasCurrent := person.RoomOf(target.Type)
		if hasCurrent && domain.RoomKey(current) == target.Key() {
			return fmt.Errorf("%w: %s is already in %s", domain.ErrSameRoom, person.FullName(), target.Name)
		}
		if target.Full() {
			return fmt.Errorf("%w: %s has %d/%d occupants", domain.ErrRoomFull, target.Name, len(target.Occupants), target.Capacity)
		}
		if hasCurrent {
			from = current
			if _, err := tx.UpdateRoom(current, func(r *Room) error {
				r.Occupants = removeOccupant(r.Occupants, person.ID)
				return nil
			}); err != nil {
				return err
			}
		}
		if _, err := tx.UpdateRoom(target.Name, func(r *Room) error {
			r.Occupants = append(r.Occupants, person.ID)
			return nil
		}); err != nil {
			return err
		}
		to = target.Name
		moved, err = tx.UpdatePerson(person.ID, func(p *Person) error {
			p.SetRoom(target.Type, target.Name)
			if target.Type == RoomTypeLivingSpace {
				p.WantsAccommodation = true
			}
			return nil
		})
		return err
	})
	if err != nil {
		return Person{}, err
	}
	s.logger.Info("person reallocated", "id", moved.ID, "name", moved.FullName(), "from", from, "to", to)
	return moved, nil
}

func removeOccupant(occupants []string, personID string) []string {
	out := make([]string, 0, len(occupants))
	for _, id := range occupants {
		if id != personID {
			out = append(out, id)
		}
	}
	return out
}
