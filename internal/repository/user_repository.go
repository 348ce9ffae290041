package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password_hash,role,is_creator,is_compiler,is_manager,created_at,updated_at"

// Create inserts a user and returns its ID.  The password is hashed
// here with the given bcrypt cost; new users start as compilers unless
// the record says otherwise.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	if !u.Role.Valid() {
		u.Role = model.RoleCompiler
		u.IsCompiler = true
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, is_creator, is_compiler, is_manager) VALUES (?,?,?,?,?,?)",
		u.Username, hash, u.Role.String(), u.IsCreator, u.IsCompiler, u.IsManager)
	if err != nil {
		// MySQL error 1062: duplicate entry for the unique username key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	u.PasswordHash = hash
	return u.ID, nil
}

// FindByUsername fetches a user by normalized username.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// Promote switches the user's current role and records eligibility for
// it.  Elevation is one-way; no flag is ever cleared here.
func (r *UserRepo) Promote(ctx context.Context, id uint64, role model.Role) error {
	if !role.Valid() {
		return ErrUserNotFound
	}
	col := ""
	switch role {
	case model.RoleCreator:
		col = "is_creator"
	case model.RoleCompiler:
		col = "is_compiler"
	case model.RoleManager:
		col = "is_manager"
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, "+col+"=1 WHERE id=?", role.String(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role,
		&u.IsCreator, &u.IsCompiler, &u.IsManager, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role, _ = model.ParseRole(role)
	return &u, nil
}
