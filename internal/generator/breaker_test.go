package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGen struct {
	calls int
	err   error
}

func (g *scriptedGen) Name() string { return "scripted" }

func (g *scriptedGen) Generate(ctx context.Context, _ string, _ user.Preferences) (plan.Content, error) {
	g.calls++
	if g.err != nil {
		return plan.Content{}, g.err
	}
	if err := ctx.Err(); err != nil {
		return plan.Content{}, err
	}
	return NewStatic().Generate(ctx, plan.MoodHappy, user.Preferences{})
}

func TestBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	next := &scriptedGen{err: errors.New("upstream 500")}
	b := WithBreaker(next, BreakerConfig{FailureThreshold: 2, Cooldown: time.Minute})

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := b.Generate(ctx, plan.MoodHappy, user.Preferences{})
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.Generate(ctx, plan.MoodHappy, user.Preferences{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 2, next.calls, "open circuit must not reach the provider")

	clock = clock.Add(time.Minute)
	next.err = nil

	_, err = b.Generate(ctx, plan.MoodHappy, user.Preferences{})
	require.NoError(t, err)
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, 3, next.calls)
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	next := &scriptedGen{err: errors.New("still down")}
	b := WithBreaker(next, BreakerConfig{FailureThreshold: 1, Cooldown: time.Second})

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	_, _ = b.Generate(ctx, plan.MoodBusy, user.Preferences{})
	require.Equal(t, "open", b.State())

	clock = clock.Add(2 * time.Second)
	_, err := b.Generate(ctx, plan.MoodBusy, user.Preferences{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, "open", b.State())
}

// waitingModel answers only when the caller's context ends.
type waitingModel struct{}

func (waitingModel) GenerateContent(ctx context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBreaker_IgnoresCallerCancellation(t *testing.T) {
	tests := []struct {
		name string
		next Generator
	}{
		{name: "static", next: NewStatic()},
		{name: "gemini", next: &Gemini{model: waitingModel{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := WithBreaker(tt.next, BreakerConfig{FailureThreshold: 1})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := b.Generate(ctx, plan.MoodTired, user.Preferences{})
			require.ErrorIs(t, err, ErrGeneration)
			require.ErrorIs(t, err, context.Canceled)
			assert.Equal(t, "closed", b.State())
		})
	}
}

func TestBreaker_CountsProviderDeadline(t *testing.T) {
	b := WithBreaker(&Gemini{model: waitingModel{}}, BreakerConfig{FailureThreshold: 1})

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := b.Generate(ctx, plan.MoodStressed, user.Preferences{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_OpenErrorCarriesRemainingCooldown(t *testing.T) {
	next := &scriptedGen{err: errors.New("upstream 503")}
	b := WithBreaker(next, BreakerConfig{FailureThreshold: 1, Cooldown: 45 * time.Second})

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return clock }

	_, _ = b.Generate(context.Background(), plan.MoodHappy, user.Preferences{})
	clock = clock.Add(15 * time.Second)

	_, err := b.Generate(context.Background(), plan.MoodHappy, user.Preferences{})

	var open *OpenCircuitError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, 30*time.Second, open.RetryAfter)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, ErrGeneration)
}
