package domain

import (
	"fmt"
	"slices"
)

// ImageRecord is one uploaded photo plus an optional free-text hint.
type ImageRecord struct {
	Data     []byte
	MimeType string
	Context  string
}

// Role tags who authored a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CookingMethod is an appliance the recipe may use.
type CookingMethod string

const (
	MethodStove     CookingMethod = "stove"
	MethodOven      CookingMethod = "oven"
	MethodMicrowave CookingMethod = "microwave"
)

var cookingMethods = []CookingMethod{MethodStove, MethodOven, MethodMicrowave}

// Difficulty is the requested skill level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Cuisine is the requested style; CuisineAny means no preference.
type Cuisine string

const (
	CuisineAny     Cuisine = "any"
	CuisineItalian Cuisine = "italian"
	CuisineMexican Cuisine = "mexican"
	CuisineChinese Cuisine = "chinese"
	CuisineIndian  Cuisine = "indian"
)

var cuisines = []Cuisine{CuisineAny, CuisineItalian, CuisineMexican, CuisineChinese, CuisineIndian}

// Diet is a dietary restriction the recipe must respect.
type Diet string

const (
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
	DietGlutenFree Diet = "gluten-free"
	DietDairyFree  Diet = "dairy-free"
	DietNutFree    Diet = "nut-free"
)

var diets = []Diet{DietVegetarian, DietVegan, DietGlutenFree, DietDairyFree, DietNutFree}

const (
	MinCookingTime = 5
	MaxCookingTime = 120
)

// GenerationOptions are the structured cooking preferences sent with every
// generation request. The value is replaced wholesale on each edit.
type GenerationOptions struct {
	CookingMethods      []CookingMethod `json:"cooking_methods"`
	CookingTimeMinutes  int             `json:"cooking_time_minutes"`
	Difficulty          Difficulty      `json:"difficulty"`
	Cuisine             Cuisine         `json:"cuisine"`
	DietaryRestrictions []Diet          `json:"dietary_restrictions"`
}

// DefaultOptions returns the options a new session starts with.
func DefaultOptions() GenerationOptions {
	return GenerationOptions{
		CookingMethods:      []CookingMethod{},
		CookingTimeMinutes:  30,
		Difficulty:          DifficultyMedium,
		Cuisine:             CuisineAny,
		DietaryRestrictions: []Diet{},
	}
}

// Validate reports the first field holding an unknown or out-of-range value.
func (o GenerationOptions) Validate() error {
	for _, m := range o.CookingMethods {
		if !slices.Contains(cookingMethods, m) {
			return fmt.Errorf("unknown cooking method %q", m)
		}
	}
	if o.CookingTimeMinutes < MinCookingTime || o.CookingTimeMinutes > MaxCookingTime {
		return fmt.Errorf("cooking time %d outside [%d,%d] minutes", o.CookingTimeMinutes, MinCookingTime, MaxCookingTime)
	}
	if !slices.Contains(difficulties, o.Difficulty) {
		return fmt.Errorf("unknown difficulty %q", o.Difficulty)
	}
	if !slices.Contains(cuisines, o.Cuisine) {
		return fmt.Errorf("unknown cuisine %q", o.Cuisine)
	}
	for _, d := range o.DietaryRestrictions {
		if !slices.Contains(diets, d) {
			return fmt.Errorf("unknown dietary restriction %q", d)
		}
	}
	return nil
}

// Normalize returns a copy with both sets deduplicated and in canonical order.
// The receiver is not modified.
func (o GenerationOptions) Normalize() GenerationOptions {
	out := o
	out.CookingMethods = canonical(cookingMethods, o.CookingMethods)
	out.DietaryRestrictions = canonical(diets, o.DietaryRestrictions)
	return out
}

func canonical[T comparable](order, selected []T) []T {
	out := make([]T, 0, len(selected))
	for _, v := range order {
		if slices.Contains(selected, v) {
			out = append(out, v)
		}
	}
	return out
}
