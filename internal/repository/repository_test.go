package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// The repositories are exercised against in-memory SQLite. The SQL
// they emit sticks to the portable subset (?, LIKE patterns and
// timestamps built in Go), so the schema below mirrors the MySQL one
// closely enough for behavioral tests.
var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		nick_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		head_pic TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		is_admin BOOLEAN NOT NULL DEFAULT 0,
		is_frozen BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE permissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE user_roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		role_id INTEGER NOT NULL
	)`,
	`CREATE TABLE role_permissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role_id INTEGER NOT NULL,
		permission_id INTEGER NOT NULL
	)`,
	`CREATE TABLE rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		capacity INTEGER NOT NULL,
		equipment TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		room_id INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// :memory: gives every connection its own database; a single
	// pooled connection keeps all queries on the same one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range testSchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB, username, email string, admin bool) uint64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO users (username, password, nick_name, email, is_admin) VALUES (?,?,?,?,?)",
		username, "$2a$04$fakedigestfakedigestfakedigestfakedigest", username, email, admin)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

func seedRoom(t *testing.T, db *sql.DB, name, location string, capacity int) uint64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO rooms (name, capacity, equipment, location) VALUES (?,?,?,?)",
		name, capacity, "screen", location)
	if err != nil {
		t.Fatalf("seed room %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

func seedBooking(t *testing.T, db *sql.DB, userID, roomID uint64, start, end time.Time, status string) uint64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO bookings (user_id, room_id, start_time, end_time, status, note) VALUES (?,?,?,?,?,?)",
		userID, roomID, start.UTC(), end.UTC(), status, "")
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

func hour(h int) time.Time {
	return time.Date(2026, 4, 20, h, 0, 0, 0, time.UTC)
}

func ctxb() context.Context { return context.Background() }
