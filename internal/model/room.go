package model

import "time"

// Room represents a meeting room as stored in the `rooms` table.
// Rooms are created and maintained by administrators. Deleting a
// room requires removing its bookings first because the bookings
// table holds a foreign key on room_id.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique room name.
//  Capacity  – number of people the room holds.
//  Equipment – free-text equipment list (e.g. "whiteboard, tv").
//  Location  – free-text location description.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64    `json:"id"`        // rooms.id
	Name      string    `json:"name"`      // rooms.name
	Capacity  int       `json:"capacity"`  // rooms.capacity
	Equipment string    `json:"equipment"` // rooms.equipment
	Location  string    `json:"location"`  // rooms.location
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
