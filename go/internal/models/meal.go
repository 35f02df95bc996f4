package models

import (
	"github.com/google/uuid"
	"time"
)

// Food represents a single food item with its nutrition data per unit.
type Food struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	KcalPerUnit float64   `json:"kcal_per_unit"`
	CreatedAt   time.Time `json:"created_at"`
}

// Meal represents a named combination of foods that a group can propose,
// vote on, and eventually consume.
type Meal struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	CreatedByID uuid.UUID  `json:"created_by_id"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	Foods       []MealFood `json:"foods,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MealFood links a food to a meal with the quantity the full meal contains.
type MealFood struct {
	ID       uuid.UUID `json:"id"`
	MealID   uuid.UUID `json:"meal_id"`
	FoodID   uuid.UUID `json:"food_id"`
	Quantity float64   `json:"quantity"`
}

// TotalKcal returns the calorie total of the full meal given the foods'
// per-unit values.
func (m *Meal) TotalKcal(foods map[uuid.UUID]Food) float64 {
	var total float64
	for _, mf := range m.Foods {
		if f, ok := foods[mf.FoodID]; ok {
			total += f.KcalPerUnit * mf.Quantity
		}
	}
	return total
}
