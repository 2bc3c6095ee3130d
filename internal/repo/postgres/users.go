package postgres

import (
	"context"

	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password_hash, diet, allergies, default_servings, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	u.Email = user.NormalizeEmail(u.Email)
	allergies := u.Preferences.Allergies
	if allergies == nil {
		allergies = []string{}
	}

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, diet, allergies, default_servings, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			u.ID, u.Name, u.Email, u.PasswordHash,
			u.Preferences.Diet, allergies, u.Preferences.DefaultServings,
			u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return user.User{}, translate(err, user.ErrNotFound, user.ErrEmailTaken)
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			user.NormalizeEmail(email),
		), &u)
	})

	if err != nil {
		return user.User{}, translate(err, user.ErrNotFound, user.ErrEmailTaken)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
		), &u)
	})

	if err != nil {
		return user.User{}, translate(err, user.ErrNotFound, user.ErrEmailTaken)
	}

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	var out user.User
	allergies := u.Preferences.Allergies
	if allergies == nil {
		allergies = []string{}
	}

	err := r.prom.ObserveDB("users.update", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
				SET name = $2,
					password_hash = $3,
					diet = $4,
					allergies = $5,
					default_servings = $6,
					updated_at = $7
			WHERE id = $1
			RETURNING `+userColumns,
			u.ID, u.Name, u.PasswordHash,
			u.Preferences.Diet, allergies, u.Preferences.DefaultServings,
			u.UpdatedAt,
		), &out)
	})

	if err != nil {
		return user.User{}, translate(err, user.ErrNotFound, user.ErrEmailTaken)
	}

	return out, nil
}

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Preferences.Diet,
		&u.Preferences.Allergies,
		&u.Preferences.DefaultServings,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}
