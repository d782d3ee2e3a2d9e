package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// BookingRepo provides booking persistence, including the conflict
// check that prevents double-booking a room. All timestamp fields
// are stored in UTC.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// Create validates and inserts a new PENDING booking for the given
// user and room. It fails with ErrInvalidInterval when the interval
// is empty or inverted, ErrNotFound when the room id does not
// resolve and ErrRoomUnavailable when the interval overlaps an
// existing PENDING or APPROVED booking for the same room.
//
// The overlap check and the insert run in one transaction. Before
// checking, the transaction takes an exclusive lock on the room row
// via a self-assignment update; on MySQL this blocks a second
// concurrent create for the same room until commit, so two
// overlapping requests can never both pass the check.
func (r *BookingRepo) Create(ctx context.Context, userID, roomID uint64, start, end time.Time, note string) (model.Booking, error) {
	if !start.Before(end) {
		return model.Booking{}, ErrInvalidInterval
	}
	start, end = start.UTC(), end.UTC()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id=?", roomID).Scan(&one)
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}

	// Serialize creates per room: the no-op update takes a write
	// lock on the room row for the rest of the transaction. The
	// result is intentionally ignored; only the lock matters.
	if _, err := tx.ExecContext(ctx, "UPDATE rooms SET capacity = capacity WHERE id=?", roomID); err != nil {
		return model.Booking{}, err
	}

	// Half-open interval overlap: existing.start < new.end AND
	// existing.end > new.start. Rejected and revoked bookings no
	// longer hold the slot.
	var conflicts int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE room_id = ? AND status IN (?, ?)
		   AND start_time < ? AND end_time > ?`,
		roomID, model.BookingStatusPending, model.BookingStatusApproved,
		end, start).Scan(&conflicts)
	if err != nil {
		return model.Booking{}, err
	}
	if conflicts > 0 {
		return model.Booking{}, ErrRoomUnavailable
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (user_id, room_id, start_time, end_time, status, note) VALUES (?,?,?,?,?,?)",
		userID, roomID, start, end, model.BookingStatusPending, note)
	if err != nil {
		return model.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, err
	}

	return model.Booking{
		ID:        uint64(id),
		UserID:    userID,
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
		Status:    model.BookingStatusPending,
		Note:      note,
	}, nil
}

// GetByID fetches a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,room_id,start_time,end_time,status,note,created_at,updated_at
		 FROM bookings WHERE id=? LIMIT 1`, id).Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.StartTime, &b.EndTime, &b.Status,
		&b.Note, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// UpdateStatus overwrites the status of an existing booking. The
// overwrite is unconditional, so re-approving an already approved
// booking succeeds; only a missing id is an error.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id=?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=?, updated_at=? WHERE id=?",
		status, time.Now().UTC(), id)
	return err
}

// BookingDetail joins a booking with its owner and room for display
// in listings.
type BookingDetail struct {
	model.Booking
	Username     string `json:"username"`
	RoomName     string `json:"room_name"`
	RoomLocation string `json:"room_location"`
}

// BookingFilter holds the composable filters for List, all optional
// and independently applicable. When only RangeStart is set, the
// range end defaults to one hour after the start. PageNo is 1-based.
type BookingFilter struct {
	Username     string
	RoomName     string
	RoomLocation string
	RangeStart   time.Time
	RangeEnd     time.Time
	PageNo       int
	PageSize     int
}

// List returns a page of booking details plus the total match count.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]BookingDetail, int, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 7)
	if f.Username != "" {
		where = append(where, "u.username LIKE ?")
		args = append(args, "%"+f.Username+"%")
	}
	if f.RoomName != "" {
		where = append(where, "r.name LIKE ?")
		args = append(args, "%"+f.RoomName+"%")
	}
	if f.RoomLocation != "" {
		where = append(where, "r.location LIKE ?")
		args = append(args, "%"+f.RoomLocation+"%")
	}
	if !f.RangeStart.IsZero() {
		rangeEnd := f.RangeEnd
		if rangeEnd.IsZero() {
			rangeEnd = f.RangeStart.Add(time.Hour)
		}
		where = append(where, "b.start_time BETWEEN ? AND ?")
		args = append(args, f.RangeStart.UTC(), rangeEnd.UTC())
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	base := ` FROM bookings b
		 JOIN users u ON u.id = b.user_id
		 JOIN rooms r ON r.id = b.room_id` + cond

	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*)"+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.PageNo-1)*f.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT b.id, b.user_id, b.room_id, b.start_time, b.end_time, b.status, b.note,
		        b.created_at, b.updated_at, u.username, r.name, r.location`+
			base+" ORDER BY b.id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []BookingDetail
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.RoomID, &d.StartTime, &d.EndTime,
			&d.Status, &d.Note, &d.CreatedAt, &d.UpdatedAt,
			&d.Username, &d.RoomName, &d.RoomLocation); err != nil {
			return nil, 0, err
		}
		list = append(list, d)
	}
	return list, count, rows.Err()
}

// UserBookingCount is one row of the per-user booking statistics.
type UserBookingCount struct {
	UserID       uint64 `json:"userId"`
	Username     string `json:"username"`
	BookingCount int    `json:"bookingCount"`
}

// CountByUserBetween counts bookings grouped by owning user whose
// start time falls inside [start, end].
func (r *BookingRepo) CountByUserBetween(ctx context.Context, start, end time.Time) ([]UserBookingCount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.username, COUNT(*) FROM bookings b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.start_time BETWEEN ? AND ?
		 GROUP BY u.id, u.username
		 ORDER BY u.id`,
		start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UserBookingCount
	for rows.Next() {
		var c UserBookingCount
		if err := rows.Scan(&c.UserID, &c.Username, &c.BookingCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
