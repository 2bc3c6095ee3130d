package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type planDoc struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Mood      string         `bson:"mood"`
	Groceries []plan.Grocery `bson:"groceries"`
	Recipes   []plan.Recipe  `bson:"recipes"`
	WeekStart time.Time      `bson:"week_start"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

func toPlanDoc(p plan.WeeklyPlan) planDoc {
	return planDoc{
		ID:        p.ID,
		UserID:    p.UserID,
		Mood:      p.Mood,
		Groceries: p.Groceries,
		Recipes:   p.Recipes,
		WeekStart: p.WeekStart,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d planDoc) toDomain() plan.WeeklyPlan {
	groceries := d.Groceries
	if groceries == nil {
		groceries = []plan.Grocery{}
	}

	recipes := d.Recipes
	if recipes == nil {
		recipes = []plan.Recipe{}
	}

	return plan.WeeklyPlan{
		ID:        d.ID,
		UserID:    d.UserID,
		Mood:      d.Mood,
		Groceries: groceries,
		Recipes:   recipes,
		WeekStart: d.WeekStart.UTC(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type PlansRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func (r *PlansRepo) Create(ctx context.Context, p plan.WeeklyPlan) (plan.WeeklyPlan, error) {
	doc := toPlanDoc(p)

	err := r.prom.ObserveDB("plans.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return plan.WeeklyPlan{}, err
	}

	return doc.toDomain(), nil
}

func (r *PlansRepo) GetByID(ctx context.Context, id string) (plan.WeeklyPlan, error) {
	var doc planDoc

	err := r.prom.ObserveDB("plans.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return plan.WeeklyPlan{}, plan.ErrNotFound
		}
		return plan.WeeklyPlan{}, err
	}

	return doc.toDomain(), nil
}

func (r *PlansRepo) ListByUser(ctx context.Context, userID string) ([]plan.WeeklyPlan, error) {
	return r.ListRecentByUser(ctx, userID, 0)
}

// ListRecentByUser returns the user's plans newest first; limit <= 0 means all.
func (r *PlansRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]plan.WeeklyPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	var docs []planDoc
	err := r.prom.ObserveDB("plans.list_by_user", func() error {
		cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	out := make([]plan.WeeklyPlan, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}

	return out, nil
}

func (r *PlansRepo) Delete(ctx context.Context, id string) error {
	var deleted int64
	err := r.prom.ObserveDB("plans.delete", func() error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return err
	}

	if deleted == 0 {
		return plan.ErrNotFound
	}

	return nil
}
