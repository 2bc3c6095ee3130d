// Package generator turns a mood and dietary preferences into plan content by
// calling a text-generation provider.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrGeneration covers provider failures and output that does not match the
// plan content schema.
var ErrGeneration = errors.New("plan generation failed")

type Generator interface {
	Generate(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error)
	Name() string
}

// BuildPrompt renders the provider instruction for one plan.
func BuildPrompt(mood string, prefs user.Preferences) string {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		prefsJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("Generate a weekly diet plan matching this JSON structure exactly:\n")
	b.WriteString("- groceries: [{ item, quantity }]\n")
	b.WriteString("- recipes: [{ title, ingredients[{name, quantity}], instructions, mealType }]\n")
	b.WriteString("mealType must be one of: " + strings.Join(plan.MealTypes, ", ") + "\n")
	fmt.Fprintf(&b, "Mood: %s\n", mood)
	fmt.Fprintf(&b, "Preferences: %s\n", prefsJSON)
	b.WriteString("Return only pure JSON.\n")

	return b.String()
}

// Instrumented records provider latency and outcome for any Generator and
// wraps each call in a span.
type Instrumented struct {
	next Generator
	prom *observability.Prom
}

func WithMetrics(next Generator, prom *observability.Prom) *Instrumented {
	return &Instrumented{next: next, prom: prom}
}

func (g *Instrumented) Name() string { return g.next.Name() }

func (g *Instrumented) Generate(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error) {
	ctx, span := observability.Tracer().Start(ctx, "generator.generate", trace.WithAttributes(
		attribute.String("generator.provider", g.next.Name()),
		attribute.String("plan.mood", mood),
		attribute.String("plan.diet", prefs.Diet),
	))
	defer span.End()

	var out plan.Content

	err := g.prom.ObserveGeneration(g.next.Name(), func() error {
		var err error
		out, err = g.next.Generate(ctx, mood, prefs)
		return err
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return out, err
	}

	span.SetAttributes(
		attribute.Int("plan.recipes", len(out.Recipes)),
		attribute.Int("plan.groceries", len(out.Groceries)),
	)
	return out, nil
}
