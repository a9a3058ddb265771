package core

import (
	"amity/pkg/domain"
	"context"
	"fmt"
)

// NewAssignmentConsistencyRule ensures room occupant lists and person room
// references agree: every occupant points back at the room, every reference
// names an existing room of the right type that lists the person, and nobody
// is listed twice.
func NewAssignmentConsistencyRule() Rule {
	return assignmentConsistencyRule{}
}

type assignmentConsistencyRule struct{}

const assignmentConsistencyName = "assignment_consistency"

func (assignmentConsistencyRule) Name() string { return assignmentConsistencyName }

func (assignmentConsistencyRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	block := func(entity EntityType, id, format string, args ...any) {
		res.Violations = append(res.Violations, Violation{
			Rule:     assignmentConsistencyName,
			Severity: SeverityBlock,
			Message:  fmt.Sprintf(format, args...),
			Entity:   entity,
			EntityID: id,
		})
	}

	for _, room := range view.ListRooms() {
		seen := make(map[string]struct{}, len(room.Occupants))
		for _, personID := range room.Occupants {
			if _, dup := seen[personID]; dup {
				block(EntityRoom, room.ID, "room %s lists %s more than once", room.Name, personID)
				continue
			}
			seen[personID] = struct{}{}
			person, ok := view.FindPerson(personID)
			if !ok {
				block(EntityRoom, room.ID, "room %s lists unknown person %s", room.Name, personID)
				continue
			}
			assigned, ok := person.RoomOf(room.Type)
			if !ok || room.Key() != domain.RoomKey(assigned) {
				block(EntityRoom, room.ID, "room %s lists %s who is not assigned to it", room.Name, personID)
			}
		}
	}

	for _, person := range view.ListPeople() {
		for _, roomType := range domain.RoomTypes {
			name, ok := person.RoomOf(roomType)
			if !ok {
				continue
			}
			room, found := view.FindRoom(name)
			switch {
			case !found:
				block(EntityPerson, person.ID, "%s references unknown room %s", person.ID, name)
			case room.Type != roomType:
				block(EntityPerson, person.ID, "%s holds %s as %s but it is %s", person.ID, name, roomType, room.Type)
			case !room.HasOccupant(person.ID):
				block(EntityPerson, person.ID, "%s references room %s which does not list them", person.ID, name)
			}
		}
	}
	return res, nil
}
