package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

func TestCreateBookingHappyPath(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)
	roomID := seedRoom(t, db, "Orion", "3F east", 8)

	b, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(12), "weekly sync")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("booking id not assigned")
	}
	if b.Status != model.BookingStatusPending {
		t.Fatalf("status = %q, want PENDING", b.Status)
	}

	got, err := repo.GetByID(ctxb(), b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.StartTime.Equal(hour(10)) || !got.EndTime.Equal(hour(12)) {
		t.Fatalf("interval = [%v, %v), want [10:00, 12:00)", got.StartTime, got.EndTime)
	}
	if got.Note != "weekly sync" {
		t.Fatalf("note = %q", got.Note)
	}
}

func TestCreateBookingInvalidInterval(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)
	roomID := seedRoom(t, db, "Orion", "3F east", 8)

	if _, err := repo.Create(ctxb(), userID, roomID, hour(12), hour(10), ""); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("inverted interval: err = %v, want ErrInvalidInterval", err)
	}
	if _, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(10), ""); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("empty interval: err = %v, want ErrInvalidInterval", err)
	}
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)

	if _, err := repo.Create(ctxb(), userID, 999, hour(10), hour(12), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown room: err = %v, want ErrNotFound", err)
	}
}

func TestCreateBookingConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)
	roomID := seedRoom(t, db, "Orion", "3F east", 8)

	if _, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(12), ""); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	cases := []struct {
		name       string
		start, end time.Time
		wantErr    error
	}{
		{"identical", hour(10), hour(12), ErrRoomUnavailable},
		{"contained", hour(10).Add(15 * time.Minute), hour(11), ErrRoomUnavailable},
		{"containing", hour(9), hour(13), ErrRoomUnavailable},
		{"overlap left edge", hour(9), hour(11), ErrRoomUnavailable},
		{"overlap right edge", hour(11), hour(13), ErrRoomUnavailable},
		{"touching before", hour(8), hour(10), nil},
		{"touching after", hour(12), hour(14), nil},
		{"disjoint", hour(15), hour(16), nil},
	}
	for _, c := range cases {
		_, err := repo.Create(ctxb(), userID, roomID, c.start, c.end, "")
		if !errors.Is(err, c.wantErr) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.wantErr)
		}
	}
}

func TestCreateBookingOtherRoomUnaffected(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)
	roomA := seedRoom(t, db, "Orion", "3F east", 8)
	roomB := seedRoom(t, db, "Lyra", "3F west", 4)

	if _, err := repo.Create(ctxb(), userID, roomA, hour(10), hour(12), ""); err != nil {
		t.Fatalf("room A booking: %v", err)
	}
	if _, err := repo.Create(ctxb(), userID, roomB, hour(10), hour(12), ""); err != nil {
		t.Fatalf("same slot in another room should be free: %v", err)
	}
}

func TestCreateAfterRejectedFreesSlot(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)
	roomID := seedRoom(t, db, "Orion", "3F east", 8)

	b, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(12), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(12), ""); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("pending booking should block the slot, err = %v", err)
	}

	if err := repo.UpdateStatus(ctxb(), b.ID, model.BookingStatusRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(12), ""); err != nil {
		t.Fatalf("rejected booking should free the slot: %v", err)
	}
}

func TestUpdateStatusIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	userID := seedUser(t, db, "alice", "alice@example.com", false)
	roomID := seedRoom(t, db, "Orion", "3F east", 8)

	b, err := repo.Create(ctxb(), userID, roomID, hour(10), hour(12), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.UpdateStatus(ctxb(), b.ID, model.BookingStatusApproved); err != nil {
			t.Fatalf("approve #%d: %v", i+1, err)
		}
	}
	got, err := repo.GetByID(ctxb(), b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.BookingStatusApproved {
		t.Fatalf("status = %q, want APPROVED", got.Status)
	}

	if err := repo.UpdateStatus(ctxb(), 999, model.BookingStatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing booking: err = %v, want ErrNotFound", err)
	}
}

func TestBookingList(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	alice := seedUser(t, db, "alice", "alice@example.com", false)
	bob := seedUser(t, db, "bob", "bob@example.com", false)
	orion := seedRoom(t, db, "Orion", "3F east", 8)
	lyra := seedRoom(t, db, "Lyra", "5F west", 4)

	seedBooking(t, db, alice, orion, hour(9), hour(10), model.BookingStatusApproved)
	seedBooking(t, db, alice, lyra, hour(11), hour(12), model.BookingStatusPending)
	seedBooking(t, db, bob, orion, hour(13), hour(14), model.BookingStatusPending)

	list, count, err := repo.List(ctxb(), BookingFilter{Username: "ali", PageNo: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List by username: %v", err)
	}
	if count != 2 || len(list) != 2 {
		t.Fatalf("username filter: count = %d, len = %d, want 2/2", count, len(list))
	}
	for _, d := range list {
		if d.Username != "alice" {
			t.Fatalf("unexpected user %q in filtered list", d.Username)
		}
	}

	list, count, err = repo.List(ctxb(), BookingFilter{RoomLocation: "5F", PageNo: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List by location: %v", err)
	}
	if count != 1 || list[0].RoomName != "Lyra" {
		t.Fatalf("location filter: count = %d, room = %q", count, list[0].RoomName)
	}

	// Range start only: the window defaults to one hour.
	list, count, err = repo.List(ctxb(), BookingFilter{RangeStart: hour(13), PageNo: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("List by range: %v", err)
	}
	if count != 1 || list[0].Username != "bob" {
		t.Fatalf("range filter: count = %d, want the 13:00 booking only", count)
	}

	// Pagination.
	list, count, err = repo.List(ctxb(), BookingFilter{PageNo: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if count != 3 || len(list) != 1 {
		t.Fatalf("page 2: count = %d, len = %d, want 3/1", count, len(list))
	}
}

func TestCountByUserBetween(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepo(db)
	alice := seedUser(t, db, "alice", "alice@example.com", false)
	bob := seedUser(t, db, "bob", "bob@example.com", false)
	orion := seedRoom(t, db, "Orion", "3F east", 8)

	seedBooking(t, db, alice, orion, hour(9), hour(10), model.BookingStatusApproved)
	seedBooking(t, db, alice, orion, hour(11), hour(12), model.BookingStatusPending)
	seedBooking(t, db, bob, orion, hour(13), hour(14), model.BookingStatusPending)
	// Outside the queried window.
	seedBooking(t, db, bob, orion, hour(20), hour(21), model.BookingStatusPending)

	counts, err := repo.CountByUserBetween(ctxb(), hour(8), hour(15))
	if err != nil {
		t.Fatalf("CountByUserBetween: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("len = %d, want 2", len(counts))
	}
	if counts[0].Username != "alice" || counts[0].BookingCount != 2 {
		t.Fatalf("alice row = %+v", counts[0])
	}
	if counts[1].Username != "bob" || counts[1].BookingCount != 1 {
		t.Fatalf("bob row = %+v", counts[1])
	}
}
