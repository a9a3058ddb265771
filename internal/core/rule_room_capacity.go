package core

import (
	"context"
	"fmt"
)

// NewRoomCapacityRule returns the in-transaction rule enforcing room capacity.
func NewRoomCapacityRule() Rule {
	return roomCapacityRule{}
}

type roomCapacityRule struct{}

func (roomCapacityRule) Name() string { return "room_capacity" }

func (roomCapacityRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, room := range view.ListRooms() {
		if count := len(room.Occupants); count > room.Capacity {
			res.Violations = append(res.Violations, Violation{
				Rule:     "room_capacity",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("room %s (%s) over capacity: %d/%d occupants", room.Name, room.Type, count, room.Capacity),
				Entity:   EntityRoom,
				EntityID: room.ID,
			})
		}
	}
	return res, nil
}
