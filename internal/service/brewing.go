package service

import (
	"fmt"
	"math"

	"github.com/cuppa-app/backend/internal/types"
)

// BrewStep is one timed stage of a preparation method.
type BrewStep struct {
	Seconds     int    `json:"seconds"`
	Description string `json:"description"`
}

// BrewMethod describes one preparation method: its per-serving dose, total
// brew time and timed steps.
type BrewMethod struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	CoffeePerServe  int        `json:"coffee_grams_per_serving"`
	WaterPerServe   int        `json:"water_ml_per_serving"`
	TotalSeconds    int        `json:"total_seconds"`
	Steps           []BrewStep `json:"steps"`
}

// Dose is a computed coffee/water amount for a number of servings.
type Dose struct {
	Servings         int    `json:"servings"`
	CoffeeGrams      int    `json:"coffee_grams"`
	WaterMilliliters int    `json:"water_ml"`
	Ratio            string `json:"ratio"`
}

// ScheduleEntry is one step of a brew timer with its start offset.
type ScheduleEntry struct {
	StartOffset int    `json:"start_offset_seconds"`
	Seconds     int    `json:"seconds"`
	Description string `json:"description"`
}

var brewMethods = []BrewMethod{
	{
		ID:             "chemex",
		Name:           "Chemex",
		Description:    "Highlights floral and fruity notes; produces a clean, bright cup.",
		CoffeePerServe: 15,
		WaterPerServe:  250,
		TotalSeconds:   240,
		Steps: []BrewStep{
			{Seconds: 30, Description: "Bloom"},
			{Seconds: 90, Description: "First circular pour"},
			{Seconds: 120, Description: "Final pours and drawdown"},
		},
	},
	{
		ID:             "v60",
		Name:           "V60",
		Description:    "Known for clarity and delicate flavors.",
		CoffeePerServe: 15,
		WaterPerServe:  250,
		TotalSeconds:   150,
		Steps: []BrewStep{
			{Seconds: 30, Description: "Bloom"},
			{Seconds: 60, Description: "First circular pour"},
			{Seconds: 60, Description: "Final pours"},
		},
	},
	{
		ID:             "french-press",
		Name:           "French Press",
		Description:    "Robust, full-bodied cup for those who enjoy an intense coffee.",
		CoffeePerServe: 15,
		WaterPerServe:  250,
		TotalSeconds:   240,
		Steps: []BrewStep{
			{Seconds: 30, Description: "Pour water and stir"},
			{Seconds: 210, Description: "Steep"},
			{Seconds: 0, Description: "Press and serve"},
		},
	},
	{
		ID:             "aeropress",
		Name:           "Aeropress",
		Description:    "Quick, concentrated brew with low acidity.",
		CoffeePerServe: 15,
		WaterPerServe:  250,
		TotalSeconds:   90,
		Steps: []BrewStep{
			{Seconds: 30, Description: "Add water and stir"},
			{Seconds: 60, Description: "Press"},
		},
	},
}

// BrewingService serves the static preparation-method catalog and derives
// doses and timer schedules from it.
type BrewingService struct{}

// NewBrewingService creates a new BrewingService instance
func NewBrewingService() *BrewingService {
	return &BrewingService{}
}

// Methods returns the full catalog.
func (s *BrewingService) Methods() []BrewMethod {
	return brewMethods
}

// Method returns one catalog entry by ID.
func (s *BrewingService) Method(id string) (*BrewMethod, error) {
	for i := range brewMethods {
		if brewMethods[i].ID == id {
			return &brewMethods[i], nil
		}
	}
	return nil, types.NewInputError(fmt.Sprintf("unknown brew method %q", id), nil)
}

// Dose scales a method's per-serving measures to the requested servings.
func (s *BrewingService) Dose(id string, servings int) (*Dose, error) {
	if servings < 1 {
		return nil, types.NewInputError("servings must be at least 1", nil)
	}
	method, err := s.Method(id)
	if err != nil {
		return nil, err
	}

	coffee := method.CoffeePerServe * servings
	water := method.WaterPerServe * servings
	ratio := math.Round(float64(water)/float64(coffee)*10) / 10

	return &Dose{
		Servings:         servings,
		CoffeeGrams:      coffee,
		WaterMilliliters: water,
		Ratio:            fmt.Sprintf("1:%.1f", ratio),
	}, nil
}

// Schedule expands a method's steps into cumulative timer offsets.
func (s *BrewingService) Schedule(id string) ([]ScheduleEntry, error) {
	method, err := s.Method(id)
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, len(method.Steps))
	offset := 0
	for i, step := range method.Steps {
		entries[i] = ScheduleEntry{
			StartOffset: offset,
			Seconds:     step.Seconds,
			Description: step.Description,
		}
		offset += step.Seconds
	}
	return entries, nil
}
