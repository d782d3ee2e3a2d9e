package model

import "time"

// Booking status lifecycle. A booking is created PENDING by a
// normal user. Administrators move it to APPROVED or REJECTED, or
// revoke it with UNBOUND. There is no transition back to PENDING.
const (
	BookingStatusPending  = "PENDING"
	BookingStatusApproved = "APPROVED"
	BookingStatusRejected = "REJECTED"
	BookingStatusUnbound  = "UNBOUND"
)

// Booking reserves a room for one user over a half-open time
// interval [StartTime, EndTime). StartTime must be strictly before
// EndTime. Two bookings for the same room may not overlap while
// both are in a slot-holding status (PENDING or APPROVED).
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who placed the booking.
//  RoomID    – room being reserved.
//  StartTime – inclusive start of the interval.
//  EndTime   – exclusive end of the interval.
//  Status    – one of the BookingStatus constants above.
//  Note      – optional free-text remark from the requester.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Booking struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	RoomID    uint64    `json:"room_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlocksSlot reports whether a booking in the given status still
// occupies its time slot for conflict purposes. Rejected and
// revoked bookings free the slot.
func BlocksSlot(status string) bool {
	return status == BookingStatusPending || status == BookingStatusApproved
}

// Overlaps reports whether two half-open intervals [aStart, aEnd)
// and [bStart, bEnd) intersect. Touching boundaries (aEnd ==
// bStart) do not overlap. The predicate is symmetric in its
// arguments and any valid interval overlaps itself.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
