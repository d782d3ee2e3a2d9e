package model

import "time"

// User represents an application user record as stored in the
// `users` table. The json tags are omitted here because these
// structs are primarily used internally by the repository layer;
// handlers define separate response types with appropriate JSON
// tags. Roles are attached through the user_roles join table and
// are only populated by queries that explicitly load relations.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Username  – unique login name.
//  Password  – one-way digest of the password.
//  NickName  – display name shown in listings.
//  Email     – unique email address.
//  HeadPic   – avatar reference (path or URL), may be empty.
//  Phone     – contact phone number, may be empty.
//  IsAdmin   – whether the user may perform administrative actions.
//  IsFrozen  – frozen users are rejected at authentication time.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
//  Roles     – roles granted to the user (loaded on demand).
type User struct {
	ID        uint64    // users.id
	Username  string    // users.username
	Password  string    // users.password (digest, never the plain text)
	NickName  string    // users.nick_name
	Email     string    // users.email
	HeadPic   string    // users.head_pic
	Phone     string    // users.phone_number
	IsAdmin   bool      // users.is_admin
	IsFrozen  bool      // users.is_frozen
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
	Roles     []Role    // via user_roles (not a column)
}

// Role represents a row in the `roles` table. Roles are shared
// reference data: a user may hold several roles and a role may be
// held by many users. Permissions are attached through the
// role_permissions join table.
//
// Fields:
//  ID          – numeric identifier of the role.
//  Name        – unique role name (e.g. ADMIN, USER).
//  Permissions – capabilities granted by this role (loaded on demand).
type Role struct {
	ID          uint64       // roles.id
	Name        string       // roles.name
	Permissions []Permission // via role_permissions (not a column)
}

// Permission is a single enforceable capability. Routes declare the
// codes they require and the permission guard matches them against
// the codes carried in the access token.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – unique capability code (e.g. "room:create").
//  Description – human readable explanation of the capability.
type Permission struct {
	ID          uint64 `json:"id"`          // permissions.id
	Code        string `json:"code"`        // permissions.code
	Description string `json:"description"` // permissions.description
}
