package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

const roomColumns = "id,name,capacity,equipment,location,created_at,updated_at"

// Create inserts a room and returns its ID. Room names are unique;
// a taken name surfaces as ErrDuplicateName.
func (r *RoomRepo) Create(ctx context.Context, room model.Room) (uint64, error) {
	room.Name = strings.TrimSpace(room.Name)

	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM rooms WHERE name=?", room.Name).Scan(&exists); err != nil {
		return 0, err
	}
	if exists > 0 {
		return 0, ErrDuplicateName
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (name, capacity, equipment, location) VALUES (?,?,?,?)",
		room.Name, room.Capacity, room.Equipment, room.Location)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") ||
			strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, ErrDuplicateName
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	var room model.Room
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id=? LIMIT 1", id).Scan(
		&room.ID, &room.Name, &room.Capacity, &room.Equipment, &room.Location,
		&room.CreatedAt, &room.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Room{}, ErrNotFound
	}
	return room, err
}

// RoomUpdate lists the optional fields of a partial update; nil
// pointers leave the column untouched.
type RoomUpdate struct {
	Name      *string
	Capacity  *int
	Equipment *string
	Location  *string
}

// Update applies a partial merge onto an existing room.
func (r *RoomRepo) Update(ctx context.Context, id uint64, upd RoomUpdate) error {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id=?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if upd.Name != nil {
		set = append(set, "name=?")
		args = append(args, strings.TrimSpace(*upd.Name))
	}
	if upd.Capacity != nil {
		set = append(set, "capacity=?")
		args = append(args, *upd.Capacity)
	}
	if upd.Equipment != nil {
		set = append(set, "equipment=?")
		args = append(args, *upd.Equipment)
	}
	if upd.Location != nil {
		set = append(set, "location=?")
		args = append(args, *upd.Location)
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at=?")
	args = append(args, time.Now().UTC(), id)
	_, err = r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE rooms SET %s WHERE id=?", strings.Join(set, ", ")), args...)
	return err
}

// Delete removes a room and all bookings that reference it. The
// bookings table holds a foreign key on room_id, so the dependent
// rows must go first; both deletes run in one transaction.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE room_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// RoomFilter holds the composable filters for List. Name and
// Equipment are substring matches, Capacity is exact when non-zero.
// PageNo is 1-based.
type RoomFilter struct {
	Name      string
	Equipment string
	Location  string
	Capacity  int
	PageNo    int
	PageSize  int
}

// List returns a page of rooms plus the total count of matches.
func (r *RoomRepo) List(ctx context.Context, f RoomFilter) ([]model.Room, int, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)
	if f.Name != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.Equipment != "" {
		where = append(where, "equipment LIKE ?")
		args = append(args, "%"+f.Equipment+"%")
	}
	if f.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+f.Location+"%")
	}
	if f.Capacity > 0 {
		where = append(where, "capacity=?")
		args = append(args, f.Capacity)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms"+cond, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.PageNo-1)*f.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms"+cond+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Equipment,
			&room.Location, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, room)
	}
	return rooms, count, rows.Err()
}
