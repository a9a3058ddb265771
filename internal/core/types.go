package core

import "amity/pkg/domain"

type (
	EntityType         = domain.EntityType
	RoomType           = domain.RoomType
	Role               = domain.Role
	Severity           = domain.Severity
	Base               = domain.Base
	Room               = domain.Room
	Person             = domain.Person
	Snapshot           = domain.Snapshot
	Capacities         = domain.Capacities
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
	StateStore         = domain.StateStore
)

const (
	EntityRoom   = domain.EntityRoom
	EntityPerson = domain.EntityPerson
)

const (
	RoomTypeOffice      = domain.RoomTypeOffice
	RoomTypeLivingSpace = domain.RoomTypeLivingSpace
)

const (
	RoleStaff   = domain.RoleStaff
	RoleStudent = domain.RoleStudent
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
)
