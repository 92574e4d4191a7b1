package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/user"
)

const (
	userColumns = `id, email, first_name, last_name`

	listUsersSQL = `SELECT ` + userColumns + ` FROM users ORDER BY id`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByEmailSQL = `SELECT ` + userColumns + `, password_digest FROM users WHERE email = $1`

	createUserSQL = `INSERT INTO users (email, first_name, last_name, password_digest)
		VALUES ($1, $2, $3, $4) RETURNING id`

	deleteUserSQL = `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	usersEmailKey = "users_email_key"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// List returns all users ordered by ID, without password digests.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return pgx.CollectRows(rows, scanUser)
}

// GetByID returns a user without its password digest.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get user %d", id)
	}
	return collectUser(rows, scanUser)
}

// GetByEmail returns a user including the password digest.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByEmailSQL, email)
	if err != nil {
		return nil, errors.Wrap(err, "get user by email")
	}
	return collectUser(rows, scanUserWithDigest)
}

// Create inserts u and stores the generated ID on it.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, createUserSQL,
		u.Email, u.FirstName, u.LastName, u.PasswordDigest,
	).Scan(&u.ID)
	if constraintViolation(err, codeUniqueViolation, usersEmailKey) {
		return user.ErrEmailTaken
	}
	if err != nil {
		return errors.Wrap(err, "create user")
	}
	return nil
}

// Delete removes a user, cascading to their orders, and returns the
// deleted row.
func (r *UserRepository) Delete(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.pool.Query(ctx, deleteUserSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "delete user %d", id)
	}
	return collectUser(rows, scanUser)
}

func collectUser(rows pgx.Rows, scan pgx.RowToFunc[user.User]) (*user.User, error) {
	u, err := pgx.CollectExactlyOneRow(rows, scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "collect user")
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName)
	return u, err
}

func scanUserWithDigest(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordDigest)
	return u, err
}
