package models

import (
	"time"

	"github.com/google/uuid"
)

// ConsumptionType distinguishes group bookkeeping records from a member's
// own consumption. Only individual records count toward personal calories.
type ConsumptionType string

const (
	ConsumptionTypeIndividual ConsumptionType = "INDIVIDUAL"
	ConsumptionTypeGroup      ConsumptionType = "GROUP"
)

// ConsumptionSource records which flow produced a consumption record.
type ConsumptionSource string

const (
	ConsumptionSourceVoting     ConsumptionSource = "VOTING"
	ConsumptionSourceGame       ConsumptionSource = "GAME"
	ConsumptionSourceIndividual ConsumptionSource = "INDIVIDUAL"
	ConsumptionSourceGroup      ConsumptionSource = "GROUP"
)

// MealConsumption records that a meal (or a portion of it) was consumed.
// A GROUP record is attributed to the session's host/initiator and shows the
// session outcome in group feeds; it is never part of personal history.
type MealConsumption struct {
	ID              uuid.UUID         `json:"id"`
	ProfileID       uuid.UUID         `json:"profile_id"`
	MealID          uuid.UUID         `json:"meal_id"`
	GroupID         *uuid.UUID        `json:"group_id,omitempty"`
	Type            ConsumptionType   `json:"type"`
	Source          ConsumptionSource `json:"source"`
	SessionID       *uuid.UUID        `json:"session_id,omitempty"`
	PortionFraction float64           `json:"portion_fraction"`
	TotalKcal       float64           `json:"total_kcal"`
	ConsumedAt      time.Time         `json:"consumed_at"`
	Portions        []FoodPortion     `json:"portions,omitempty"`
}

// FoodPortion is the per-food breakdown of a consumption record.
// QuantityConsumed is the resolved absolute quantity after applying the
// portion fraction (or an absolute override) to the meal's food quantity.
type FoodPortion struct {
	ID               uuid.UUID `json:"id"`
	ConsumptionID    uuid.UUID `json:"consumption_id"`
	FoodID           uuid.UUID `json:"food_id"`
	PortionFraction  float64   `json:"portion_fraction"`
	QuantityConsumed float64   `json:"quantity_consumed"`
}
