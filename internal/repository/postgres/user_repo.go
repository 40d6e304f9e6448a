package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/grantlemons/expenser/internal/model"
)

const userCols = `id, username, email, profile_picture, password_hash`

// UserRepo implements repository.UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.ProfilePicture, &u.PasswordHash); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Insert creates a user row. Taken usernames or emails fail with errs.ErrAlreadyExists.
func (r *UserRepo) Insert(ctx context.Context, nu model.NewUser) (model.User, error) {
	const q = `
INSERT INTO users (username, email, profile_picture, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + userCols
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, nu.Username, nu.Email, nu.ProfilePicture, nu.PasswordHash))
	return u, mapErr(err)
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	return u, mapErr(err)
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE username=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, username))
	return u, mapErr(err)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1`
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, email))
	return u, mapErr(err)
}

// Update overwrites username, email, picture and password hash.
func (r *UserRepo) Update(ctx context.Context, id int64, nu model.NewUser) (model.User, error) {
	const q = `
UPDATE users
SET username=$2, email=$3, profile_picture=$4, password_hash=$5
WHERE id=$1
RETURNING ` + userCols
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id, nu.Username, nu.Email, nu.ProfilePicture, nu.PasswordHash))
	return u, mapWriteErr(err)
}

// Replace applies an edited NewUser over an existing row.
func (r *UserRepo) Replace(ctx context.Context, id int64, nu model.NewUser) (model.User, error) {
	return r.Update(ctx, id, nu)
}

// UpdateProfilePicture sets the picture; nil clears it.
func (r *UserRepo) UpdateProfilePicture(ctx context.Context, id int64, pic []byte) (model.User, error) {
	const q = `UPDATE users SET profile_picture=$2 WHERE id=$1 RETURNING ` + userCols
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id, pic))
	return u, mapWriteErr(err)
}

// GetProfilePicture returns only the picture column.
func (r *UserRepo) GetProfilePicture(ctx context.Context, id int64) ([]byte, error) {
	const q = `SELECT profile_picture FROM users WHERE id=$1`
	var pic []byte
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&pic); err != nil {
		return nil, mapErr(err)
	}
	return pic, nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) (model.User, error) {
	const q = `UPDATE users SET password_hash=$2 WHERE id=$1 RETURNING ` + userCols
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id, hash))
	return u, mapWriteErr(err)
}

// Delete removes a user. Users still owning reports fail with errs.ErrConstraint;
// grants held by the user are removed by the schema.
func (r *UserRepo) Delete(ctx context.Context, id int64) (model.User, error) {
	const q = `DELETE FROM users WHERE id=$1 RETURNING ` + userCols
	u, err := scanUser(r.db.Pool.QueryRow(ctx, q, id))
	return u, mapWriteErr(err)
}

// Clear removes every user.
func (r *UserRepo) Clear(ctx context.Context) (int64, error) {
	return execCount(ctx, r.db.Pool, `DELETE FROM users`)
}
