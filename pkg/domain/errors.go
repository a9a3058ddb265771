package domain

import "errors"

// Registry and allocation errors. Callers match them with errors.Is; the
// returned errors wrap these with the offending name or id.

// ===== Room Errors =====
var (
	ErrDuplicateRoom   = errors.New("room already exists")
	ErrInvalidRoomType = errors.New("invalid room type")
	ErrInvalidRoomName = errors.New("room name is required")
	ErrRoomNotFound    = errors.New("room not found")
)

// ===== Person Errors =====
var (
	ErrDuplicatePerson = errors.New("person already exists")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidPerson   = errors.New("person id, first name and last name are required")
	ErrPersonNotFound  = errors.New("person not found")
	ErrAmbiguousPerson = errors.New("person name matches more than one person")
)

// ===== Allocation Errors =====
var (
	ErrRoleIneligible = errors.New("role is not eligible for this room type")
	ErrSameRoom       = errors.New("person is already in this room")
	ErrRoomFull       = errors.New("room is full")
)

// ===== State Errors =====
var (
	ErrStateNotFound = errors.New("saved state not found")
	ErrInvalidState  = errors.New("saved state is invalid")
)
