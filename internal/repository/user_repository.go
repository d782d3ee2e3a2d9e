package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password,nick_name,email,head_pic,phone_number,is_admin,is_frozen,created_at,updated_at"

// Create hashes the password, inserts the user and returns its ID.
// Username and email are globally unique; duplicates surface as
// ErrUsernameExists / ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User, plainPassword string, cost int) (uint64, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	var exists int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", u.Username).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists > 0 {
		return 0, ErrUsernameExists
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", u.Email).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists > 0 {
		return 0, ErrEmailExists
	}

	hash, err := utils.HashPassword(plainPassword, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password, nick_name, email, head_pic, phone_number, is_admin, is_frozen) VALUES (?,?,?,?,?,?,?,?)",
		u.Username, hash, u.NickName, u.Email, u.HeadPic, u.Phone, u.IsAdmin, false)
	if err != nil {
		// Backstop for the race between the existence checks and the
		// insert: the unique indexes still hold the line.
		if strings.Contains(strings.ToLower(err.Error()), "1062") ||
			strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg interface{}) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Password, &u.NickName, &u.Email, &u.HeadPic,
		&u.Phone, &u.IsAdmin, &u.IsFrozen, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetWithRoles loads a user together with its roles and each role's
// permissions. Roles come back in the order they were granted
// (user_roles insertion order) and permissions within a role in
// role_permissions insertion order, so the resolver's encounter
// order is stable between calls.
func (r *UserRepo) GetWithRoles(ctx context.Context, id uint64) (model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name FROM user_roles ur
		 JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ? ORDER BY ur.id`, id)
	if err != nil {
		return model.User{}, err
	}
	byID := make(map[uint64]int)
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			rows.Close()
			return model.User{}, err
		}
		byID[role.ID] = len(u.Roles)
		u.Roles = append(u.Roles, role)
	}
	if err := rows.Close(); err != nil {
		return model.User{}, err
	}
	if len(u.Roles) == 0 {
		return u, nil
	}

	rows, err = r.DB.QueryContext(ctx,
		`SELECT ur.role_id, p.id, p.code, p.description FROM user_roles ur
		 JOIN role_permissions rp ON rp.role_id = ur.role_id
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE ur.user_id = ? ORDER BY ur.id, rp.id`, id)
	if err != nil {
		return model.User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var roleID uint64
		var p model.Permission
		if err := rows.Scan(&roleID, &p.ID, &p.Code, &p.Description); err != nil {
			return model.User{}, err
		}
		if idx, ok := byID[roleID]; ok {
			u.Roles[idx].Permissions = append(u.Roles[idx].Permissions, p)
		}
	}
	return u, rows.Err()
}

// FreezeByID sets the frozen flag. A frozen user keeps any issued
// tokens but is rejected at the next login or refresh.
func (r *UserRepo) FreezeByID(ctx context.Context, id uint64) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_frozen=?, updated_at=? WHERE id=?", true, time.Now().UTC(), id)
	return err
}

// UpdatePassword replaces the password digest for a username.
func (r *UserRepo) UpdatePassword(ctx context.Context, username, plainPassword string, cost int) error {
	hash, err := utils.HashPassword(plainPassword, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password=?, updated_at=? WHERE username=?",
		hash, time.Now().UTC(), strings.TrimSpace(username))
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
	return nil
}

// ProfileUpdate lists the optional profile fields; nil pointers are
// left untouched (partial merge).
type ProfileUpdate struct {
	NickName *string
	HeadPic  *string
	Phone    *string
}

// UpdateProfile applies a partial merge of the given fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd ProfileUpdate) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if upd.NickName != nil {
		set = append(set, "nick_name=?")
		args = append(args, *upd.NickName)
	}
	if upd.HeadPic != nil {
		set = append(set, "head_pic=?")
		args = append(args, *upd.HeadPic)
	}
	if upd.Phone != nil {
		set = append(set, "phone_number=?")
		args = append(args, *upd.Phone)
	}
	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_at=?")
	args = append(args, time.Now().UTC(), id)
	_, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE users SET %s WHERE id=?", strings.Join(set, ", ")), args...)
	return err
}

// UserFilter holds the composable substring filters for List. Empty
// fields are skipped. PageNo is 1-based.
type UserFilter struct {
	Username string
	NickName string
	Email    string
	PageNo   int
	PageSize int
}

// List returns a page of users plus the total count of matches.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)
	if f.Username != "" {
		where = append(where, "username LIKE ?")
		args = append(args, "%"+f.Username+"%")
	}
	if f.NickName != "" {
		where = append(where, "nick_name LIKE ?")
		args = append(args, "%"+f.NickName+"%")
	}
	if f.Email != "" {
		where = append(where, "email LIKE ?")
		args = append(args, "%"+f.Email+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+cond, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageSize, (f.PageNo-1)*f.PageSize)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+cond+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.NickName, &u.Email,
			&u.HeadPic, &u.Phone, &u.IsAdmin, &u.IsFrozen, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, count, rows.Err()
}

// AdminEmail returns the email of an administrator, used as the
// destination for urge notifications. Only the email column is
// selected.
func (r *UserRepo) AdminEmail(ctx context.Context) (string, error) {
	var email string
	err := r.DB.QueryRowContext(ctx,
		"SELECT email FROM users WHERE is_admin=? LIMIT 1", true).Scan(&email)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return email, err
}

func (r *UserRepo) exists(ctx context.Context, id uint64) error {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
