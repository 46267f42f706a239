package storage

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/libs/db"
)

const userColumns = `
	id, name, email, password_hash, COALESCE(phone, ''), COALESCE(cpf, ''), admin, created_at`

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, phone, cpf, admin)
		VALUES ($1, $2, lower($3), $4, NULLIF($5, ''), NULLIF($6, ''), $7)
		RETURNING created_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Phone, u.CPF, u.Admin).Scan(&u.CreatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = lower($1)
	`, strings.TrimSpace(email))
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountAdmins backs first-admin bootstrap and last-admin protection.
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE admin`).Scan(&n)
	return n, err
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.CPF, &u.Admin, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
