package core_test

import (
	"amity/internal/core"
	"amity/pkg/domain"
	"context"
	"testing"
)

type sliceView struct {
	rooms  []core.Room
	people []core.Person
}

func (v sliceView) ListRooms() []core.Room    { return v.rooms }
func (v sliceView) ListPeople() []core.Person { return v.people }

func (v sliceView) FindRoom(name string) (core.Room, bool) {
	for _, r := range v.rooms {
		if r.Key() == domain.RoomKey(name) {
			return r, true
		}
	}
	return core.Room{}, false
}

func (v sliceView) FindPerson(id string) (core.Person, bool) {
	for _, p := range v.people {
		if p.ID == id {
			return p, true
		}
	}
	return core.Person{}, false
}

func ref(s string) *string { return &s }

func TestDefaultRulesEngineRegistersInvariants(t *testing.T) {
	rules := core.NewDefaultRulesEngine().Rules()
	want := []string{"room_capacity", "living_space_eligibility", "assignment_consistency"}
	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, rule := range rules {
		if rule.Name() != want[i] {
			t.Fatalf("rule %d: expected %s, got %s", i, want[i], rule.Name())
		}
	}
}

func TestInvariantRules(t *testing.T) {
	consistent := sliceView{
		rooms: []core.Room{
			{Base: core.Base{ID: "r1"}, Name: "Blue", Type: core.RoomTypeOffice, Capacity: 2, Occupants: []string{"p1"}},
			{Base: core.Base{ID: "r2"}, Name: "Orange", Type: core.RoomTypeLivingSpace, Capacity: 1, Occupants: []string{"s1"}},
		},
		people: []core.Person{
			{Base: core.Base{ID: "p1"}, FirstName: "Ada", LastName: "Obi", Role: core.RoleStaff, OfficeRoom: ref("BLUE")},
			{Base: core.Base{ID: "s1"}, FirstName: "Kim", LastName: "Lee", Role: core.RoleStudent, WantsAccommodation: true, LivingRoom: ref("orange")},
		},
	}

	cases := []struct {
		name string
		rule core.Rule
		view sliceView
		want int
	}{
		{"capacity ok", core.NewRoomCapacityRule(), consistent, 0},
		{"capacity exceeded", core.NewRoomCapacityRule(), sliceView{
			rooms: []core.Room{{Name: "Tiny", Type: core.RoomTypeOffice, Capacity: 1, Occupants: []string{"a", "b"}}},
		}, 1},
		{"eligibility ok", core.NewLivingSpaceEligibilityRule(), consistent, 0},
		{"staff in living space", core.NewLivingSpaceEligibilityRule(), sliceView{
			people: []core.Person{{Base: core.Base{ID: "p1"}, Role: core.RoleStaff, LivingRoom: ref("Orange")}},
		}, 1},
		{"consistency ok", core.NewAssignmentConsistencyRule(), consistent, 0},
		{"occupant without back reference", core.NewAssignmentConsistencyRule(), sliceView{
			rooms:  []core.Room{{Name: "Blue", Type: core.RoomTypeOffice, Capacity: 6, Occupants: []string{"p1"}}},
			people: []core.Person{{Base: core.Base{ID: "p1"}, Role: core.RoleStaff}},
		}, 1},
		{"unknown occupant and duplicate", core.NewAssignmentConsistencyRule(), sliceView{
			rooms: []core.Room{{Name: "Blue", Type: core.RoomTypeOffice, Capacity: 6, Occupants: []string{"ghost", "ghost"}}},
		}, 2},
		{"reference to missing room", core.NewAssignmentConsistencyRule(), sliceView{
			people: []core.Person{{Base: core.Base{ID: "p1"}, Role: core.RoleStaff, OfficeRoom: ref("Nowhere")}},
		}, 1},
		{"reference with wrong type", core.NewAssignmentConsistencyRule(), sliceView{
			rooms:  []core.Room{{Name: "Orange", Type: core.RoomTypeLivingSpace, Capacity: 4, Occupants: []string{"s1"}}},
			people: []core.Person{{Base: core.Base{ID: "s1"}, Role: core.RoleStudent, OfficeRoom: ref("Orange")}},
		}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tc.rule.Evaluate(context.Background(), tc.view, nil)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if len(res.Violations) != tc.want {
				t.Fatalf("expected %d violations, got %+v", tc.want, res.Violations)
			}
			for _, v := range res.Violations {
				if v.Severity != core.SeverityBlock || v.Rule != tc.rule.Name() {
					t.Fatalf("unexpected violation %+v", v)
				}
			}
		})
	}
}
