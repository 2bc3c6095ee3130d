package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const planColumns = `id, user_id, mood, groceries, recipes, week_start, created_at, updated_at`

type PlansRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPlansRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlansRepo {
	return &PlansRepo{pool: pool, prom: prom}
}

func (r *PlansRepo) Create(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error) {
	groceries, err := json.Marshal(p.Groceries)
	if err != nil {
		return plan.WeeklyPlan{}, fmt.Errorf("encode groceries: %w", err)
	}

	recipes, err := json.Marshal(p.Recipes)
	if err != nil {
		return plan.WeeklyPlan{}, fmt.Errorf("encode recipes: %w", err)
	}

	err = r.prom.ObserveDB("plans.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO weekly_plans (id, user_id, mood, groceries, recipes, week_start, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, p.UserID, p.Mood, groceries, recipes, p.WeekStart, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return plan.WeeklyPlan{}, err
	}

	return p, nil
}

func (r *PlansRepo) GetByID(ctx context.Context, id string) (plan.WeeklyPlan, error) {
	var p plan.WeeklyPlan

	err := r.prom.ObserveDB("plans.get_by_id", func() error {
		return scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM weekly_plans WHERE id = $1`, id), &p)
	})

	if err != nil {
		return plan.WeeklyPlan{}, translate(err, plan.ErrNotFound, nil)
	}

	return p, nil
}

func (r *PlansRepo) ListByUser(ctx context.Context, userID string) ([]plan.WeeklyPlan, error) {
	return r.ListRecentByUser(ctx, userID, 0)
}

// ListRecentByUser returns the user's plans newest first; limit <= 0 means all.
func (r *PlansRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]plan.WeeklyPlan, error) {
	query := `SELECT ` + planColumns + ` FROM weekly_plans WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []interface{}{userID}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	out := make([]plan.WeeklyPlan, 0)

	err := r.prom.ObserveDB("plans.list_by_user", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p plan.WeeklyPlan
			if err := scanPlan(rows, &p); err != nil {
				return err
			}
			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PlansRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.prom.ObserveDB("plans.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM weekly_plans WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return translate(err, plan.ErrNotFound, nil)
	}

	if affected == 0 {
		return plan.ErrNotFound
	}

	return nil
}

func scanPlan(row pgx.Row, p *plan.WeeklyPlan) error {
	var groceries, recipes []byte

	err := row.Scan(&p.ID, &p.UserID, &p.Mood, &groceries, &recipes, &p.WeekStart, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(groceries, &p.Groceries); err != nil {
		return fmt.Errorf("decode groceries for plan %s: %w", p.ID, err)
	}

	if err := json.Unmarshal(recipes, &p.Recipes); err != nil {
		return fmt.Errorf("decode recipes for plan %s: %w", p.ID, err)
	}

	return nil
}
