package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// contentModel is the slice of *genai.GenerativeModel the generator needs.
type contentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Gemini struct {
	client *genai.Client
	model  contentModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = ContentSchema()

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(mood, prefs)))
	if err != nil {
		return plan.Content{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return plan.Content{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	content, err := plan.ParseContent([]byte(text))
	if err != nil {
		return plan.Content{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return content, nil
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if b.Len() == 0 {
		return "", errors.New("generated content is not text")
	}

	return b.String(), nil
}

// ContentSchema mirrors plan.Content so the provider is constrained to it.
func ContentSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

	grocery := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"item":     str(),
			"quantity": str(),
		},
		Required: []string{"item", "quantity"},
	}

	ingredient := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":     str(),
			"quantity": str(),
		},
		Required: []string{"name", "quantity"},
	}

	recipe := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":        str(),
			"ingredients":  {Type: genai.TypeArray, Items: ingredient},
			"instructions": str(),
			"mealType":     {Type: genai.TypeString, Format: "enum", Enum: plan.MealTypes},
		},
		Required: []string{"title", "ingredients", "instructions", "mealType"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"groceries": {Type: genai.TypeArray, Items: grocery},
			"recipes":   {Type: genai.TypeArray, Items: recipe},
		},
		Required: []string{"groceries", "recipes"},
	}
}
