package repository

import "errors"

// Sentinel errors returned by the repositories. Handlers translate
// these into stable HTTP status codes so clients always receive a
// machine-distinguishable error kind, never only free text.
var (
	// ErrNotFound is returned when a user, room or booking id does
	// not resolve to a row. Handlers map it to HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrUsernameExists is returned on registration when the
	// username is already taken. HTTP 409.
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned on registration when the email is
	// already taken. HTTP 409.
	ErrEmailExists = errors.New("email already exists")

	// ErrDuplicateName is returned when creating a room whose name
	// is already used. HTTP 409.
	ErrDuplicateName = errors.New("room name already exists")

	// ErrRoomUnavailable is returned when a proposed booking
	// interval overlaps an existing slot-holding booking for the
	// same room. HTTP 409.
	ErrRoomUnavailable = errors.New("room already booked for this time slot")

	// ErrInvalidInterval is returned when a booking's start time is
	// not strictly before its end time. HTTP 400.
	ErrInvalidInterval = errors.New("end time must be after start time")
)
