package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ErrInvalidContent marks provider output that does not match the plan schema.
var ErrInvalidContent = errors.New("generated content does not match plan schema")

type Grocery struct {
	Item     string `json:"item" bson:"item" validate:"required,max=200"`
	Quantity string `json:"quantity" bson:"quantity" validate:"max=100"`
}

type Ingredient struct {
	Name     string `json:"name" bson:"name" validate:"required,max=200"`
	Quantity string `json:"quantity" bson:"quantity" validate:"max=100"`
}

type Recipe struct {
	Title        string       `json:"title" bson:"title" validate:"required,max=200"`
	Ingredients  []Ingredient `json:"ingredients" bson:"ingredients" validate:"required,min=1,dive"`
	Instructions string       `json:"instructions" bson:"instructions" validate:"required"`
	MealType     string       `json:"mealType" bson:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
}

// Content is the exact shape the provider is asked to return.
type Content struct {
	Groceries []Grocery `json:"groceries" validate:"required,min=1,dive"`
	Recipes   []Recipe  `json:"recipes" validate:"required,min=1,dive"`
}

var contentValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseContent decodes raw provider output and validates it against the plan schema.
// Unknown fields are rejected; a missing mealType becomes lunch.
func ParseContent(raw []byte) (Content, error) {
	raw = stripCodeFence(raw)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var c Content
	if err := dec.Decode(&c); err != nil {
		return Content{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	if dec.More() {
		return Content{}, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidContent)
	}

	c.normalize()

	if err := c.Validate(); err != nil {
		return Content{}, err
	}

	return c, nil
}

func (c Content) Validate() error {
	err := contentValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrInvalidContent, first.Namespace(), first.Tag())
	}

	return fmt.Errorf("%w: %v", ErrInvalidContent, err)
}

func (c *Content) normalize() {
	for i := range c.Groceries {
		c.Groceries[i].Item = strings.TrimSpace(c.Groceries[i].Item)
		c.Groceries[i].Quantity = strings.TrimSpace(c.Groceries[i].Quantity)
	}

	for i := range c.Recipes {
		r := &c.Recipes[i]
		r.Title = strings.TrimSpace(r.Title)
		r.Instructions = strings.TrimSpace(r.Instructions)
		r.MealType = strings.ToLower(strings.TrimSpace(r.MealType))

		if r.MealType == "" {
			r.MealType = MealLunch
		}

		for j := range r.Ingredients {
			r.Ingredients[j].Name = strings.TrimSpace(r.Ingredients[j].Name)
			r.Ingredients[j].Quantity = strings.TrimSpace(r.Ingredients[j].Quantity)
		}
	}
}

// models occasionally wrap JSON in a markdown fence even in JSON mode
func stripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return []byte(strings.TrimSpace(s))
}
