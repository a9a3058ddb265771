package core

import (
	"amity/pkg/domain"
	"context"
	"fmt"
)

// RoomAllocation lists one room and the full names of its occupants in
// assignment order.
type RoomAllocation struct {
	Room      string
	Type      RoomType
	Capacity  int
	Occupants []string
}

// UnallocatedPerson is a person still missing at least one wanted room.
type UnallocatedPerson struct {
	ID       string
	FullName string
	Role     Role
	Missing  []RoomType
}

// ListAllocations returns every room, including empty ones, in creation order.
func (s *Service) ListAllocations(ctx context.Context) ([]RoomAllocation, error) {
	var out []RoomAllocation
	err := s.view(ctx, "list_allocations", func(v TransactionView) error {
		names := fullNames(v)
		for _, room := range v.ListRooms() {
			out = append(out, allocationOf(room, names))
		}
		return nil
	})
	return out, err
}

// ListUnallocated returns people missing an office, or a living space they
// asked for, in creation order.
func (s *Service) ListUnallocated(ctx context.Context) ([]UnallocatedPerson, error) {
	var out []UnallocatedPerson
	err := s.view(ctx, "list_unallocated", func(v TransactionView) error {
		for _, person := range v.ListPeople() {
			missing := person.MissingTypes()
			if len(missing) == 0 {
				continue
			}
			out = append(out, UnallocatedPerson{
				ID:       person.ID,
				FullName: person.FullName(),
				Role:     person.Role,
				Missing:  missing,
			})
		}
		return nil
	})
	return out, err
}

// RoomOccupants returns the allocation of a single room.
func (s *Service) RoomOccupants(ctx context.Context, name string) (RoomAllocation, error) {
	var out RoomAllocation
	err := s.view(ctx, "room_occupants", func(v TransactionView) error {
		room, ok := v.FindRoom(name)
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrRoomNotFound, name)
		}
		out = allocationOf(room, fullNames(v))
		return nil
	})
	return out, err
}

func fullNames(v TransactionView) map[string]string {
	people := v.ListPeople()
	names := make(map[string]string, len(people))
	for _, p := range people {
		names[p.ID] = p.FullName()
	}
	return names
}

func allocationOf(room Room, names map[string]string) RoomAllocation {
	occupants := make([]string, 0, len(room.Occupants))
	for _, id := range room.Occupants {
		name, ok := names[id]
		if !ok {
			name = id
		}
		occupants = append(occupants, name)
	}
	return RoomAllocation{
		Room:      room.Name,
		Type:      room.Type,
		Capacity:  room.Capacity,
		Occupants: occupants,
	}
}
