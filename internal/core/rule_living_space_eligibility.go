package core

import (
	"context"
	"fmt"
)

// NewLivingSpaceEligibilityRule blocks living-space assignments for anyone who is not a student.
func NewLivingSpaceEligibilityRule() Rule {
	return livingSpaceEligibilityRule{}
}

type livingSpaceEligibilityRule struct{}

func (livingSpaceEligibilityRule) Name() string { return "living_space_eligibility" }

func (livingSpaceEligibilityRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, person := range view.ListPeople() {
		if person.LivingRoom == nil || person.EligibleFor(RoomTypeLivingSpace) {
			continue
		}
		res.Violations = append(res.Violations, Violation{
			Rule:     "living_space_eligibility",
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("%s %s (%s) holds living space %s", person.Role, person.FullName(), person.ID, *person.LivingRoom),
			Entity:   EntityPerson,
			EntityID: person.ID,
		})
	}
	return res, nil
}
