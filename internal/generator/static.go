package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/mealmood/internal/domain/plan"
	"github.com/geocoder89/mealmood/internal/domain/user"
)

// Static returns a canned plan per mood. Used in dev and tests when no
// provider key is configured.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (Static) Name() string { return "static" }

type staticRecipe struct {
	title    string
	mealType string
	items    []string
	steps    string
}

var staticMenus = map[string][]staticRecipe{
	plan.MoodTired: {
		{"Overnight oats with banana", plan.MealBreakfast, []string{"Rolled oats", "Milk", "Banana"}, "Combine oats and milk, chill overnight, top with banana."},
		{"Lentil soup", plan.MealLunch, []string{"Red lentils", "Carrot", "Onion"}, "Simmer everything for 25 minutes and blend half."},
		{"Sheet-pan vegetables with chickpeas", plan.MealDinner, []string{"Chickpeas", "Bell pepper", "Zucchini"}, "Roast at 220C for 25 minutes."},
	},
	plan.MoodHappy: {
		{"Berry yogurt bowl", plan.MealBreakfast, []string{"Greek yogurt", "Mixed berries", "Honey"}, "Layer yogurt and berries, drizzle honey."},
		{"Mediterranean quinoa salad", plan.MealLunch, []string{"Quinoa", "Cucumber", "Cherry tomatoes"}, "Cook quinoa, cool, toss with chopped vegetables."},
		{"Homemade veggie pizza", plan.MealDinner, []string{"Pizza dough", "Tomato sauce", "Mozzarella"}, "Top dough and bake at 240C for 12 minutes."},
	},
	plan.MoodStressed: {
		{"Spinach banana smoothie", plan.MealBreakfast, []string{"Spinach", "Banana", "Almond milk"}, "Blend until smooth."},
		{"Salmon and avocado rice bowl", plan.MealLunch, []string{"Salmon", "Avocado", "Brown rice"}, "Bake salmon 12 minutes, serve over rice with avocado."},
		{"Dark chocolate and almonds", plan.MealSnack, []string{"Dark chocolate", "Almonds"}, "Portion into a small bowl."},
	},
	plan.MoodBusy: {
		{"Peanut butter toast", plan.MealBreakfast, []string{"Wholegrain bread", "Peanut butter"}, "Toast bread and spread peanut butter."},
		{"Chicken wrap", plan.MealLunch, []string{"Tortilla", "Cooked chicken", "Lettuce"}, "Fill the tortilla and roll tightly."},
		{"15-minute stir fry", plan.MealDinner, []string{"Mixed vegetables", "Tofu", "Soy sauce"}, "Stir fry over high heat for 8 minutes."},
	},
}

func (Static) Generate(ctx context.Context, mood string, prefs user.Preferences) (plan.Content, error) {
	if err := ctx.Err(); err != nil {
		return plan.Content{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	menu, ok := staticMenus[mood]
	if !ok {
		return plan.Content{}, fmt.Errorf("%w: unsupported mood %q", ErrGeneration, mood)
	}

	servings := prefs.WithDefaults().DefaultServings
	seen := map[string]bool{}

	var content plan.Content
	for _, r := range menu {
		recipe := plan.Recipe{
			Title:        r.title,
			Instructions: r.steps,
			MealType:     r.mealType,
		}
		for _, item := range r.items {
			qty := fmt.Sprintf("%d portions", servings)
			recipe.Ingredients = append(recipe.Ingredients, plan.Ingredient{Name: item, Quantity: qty})

			key := strings.ToLower(item)
			if !seen[key] {
				seen[key] = true
				content.Groceries = append(content.Groceries, plan.Grocery{Item: item, Quantity: qty})
			}
		}
		content.Recipes = append(content.Recipes, recipe)
	}

	if err := content.Validate(); err != nil {
		return plan.Content{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return content, nil
}
