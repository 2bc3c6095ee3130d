package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/geocoder89/mealmood/internal/observability"
	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeModel struct {
	gotPrompt string
	resp      *genai.GenerateContentResponse
	err       error
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			f.gotPrompt += string(t)
		}
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

const validJSON = `{"groceries":[{"item":"Oats","quantity":"1 kg"}],
"recipes":[{"title":"Porridge","ingredients":[{"name":"Oats","quantity":"80 g"}],"instructions":"Cook.","mealType":"breakfast"}]}`

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(plan.MoodStressed, user.Preferences{Diet: user.DietVegan, Allergies: []string{"nuts"}, DefaultServings: 3})

	assert.Contains(t, prompt, "Mood: Stressed")
	assert.Contains(t, prompt, `"diet":"vegan"`)
	assert.Contains(t, prompt, `"allergies":["nuts"]`)
	assert.Contains(t, prompt, "Return only pure JSON.")
	assert.Contains(t, prompt, "breakfast, lunch, dinner, snack")
}

func TestGemini_Generate(t *testing.T) {
	m := &fakeModel{resp: textResponse(validJSON[:40], validJSON[40:])}
	g := &Gemini{model: m}

	content, err := g.Generate(context.Background(), plan.MoodTired, user.Preferences{})
	require.NoError(t, err)

	require.Len(t, content.Recipes, 1)
	assert.Equal(t, "Porridge", content.Recipes[0].Title)
	assert.Contains(t, m.gotPrompt, "Mood: Tired")
}

func TestGemini_Failures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{name: "provider error", model: &fakeModel{err: errors.New("quota exceeded")}},
		{name: "no candidates", model: &fakeModel{resp: &genai.GenerateContentResponse{}}},
		{name: "not json", model: &fakeModel{resp: textResponse("Sure! Here is your plan.")}},
		{name: "schema mismatch", model: &fakeModel{resp: textResponse(`{"groceries":[],"recipes":[]}`)}},
		{name: "bad meal type", model: &fakeModel{resp: textResponse(strings.Replace(validJSON, "breakfast", "brunch", 1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Gemini{model: tt.model}
			_, err := g.Generate(context.Background(), plan.MoodHappy, user.Preferences{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGeneration)
		})
	}
}

func TestContentSchema(t *testing.T) {
	s := ContentSchema()
	assert.ElementsMatch(t, []string{"groceries", "recipes"}, s.Required)

	recipe := s.Properties["recipes"].Items
	assert.Equal(t, plan.MealTypes, recipe.Properties["mealType"].Enum)
}

func TestStatic_EveryMoodProducesValidContent(t *testing.T) {
	g := NewStatic()
	for _, mood := range plan.Moods {
		content, err := g.Generate(context.Background(), mood, user.Preferences{DefaultServings: 4})
		require.NoError(t, err, mood)
		require.NoError(t, content.Validate(), mood)
		assert.Contains(t, content.Groceries[0].Quantity, "4")
	}
}

func TestStatic_RejectsUnknownMoodAndCancelledContext(t *testing.T) {
	g := NewStatic()

	_, err := g.Generate(context.Background(), "Sleepy", user.Preferences{})
	assert.ErrorIs(t, err, ErrGeneration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, plan.MoodBusy, user.Preferences{})
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstrumented_RecordsOutcome(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())
	g := WithMetrics(NewStatic(), prom)

	_, err := g.Generate(context.Background(), plan.MoodBusy, user.Preferences{})
	require.NoError(t, err)
	_, _ = g.Generate(context.Background(), "Nope", user.Preferences{})

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.GenerationResults.WithLabelValues("static", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.GenerationResults.WithLabelValues("static", "failed")))
}

func TestInstrumented_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	g := WithMetrics(NewStatic(), nil)

	_, err := g.Generate(context.Background(), plan.MoodStressed, user.Preferences{Diet: user.DietVeg})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "Nope", user.Preferences{})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "generator.generate", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
