package consumption

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkcast/forkcast/go/internal/models"
)

// SelectPortionRequest records how much of the winning meal a participant
// actually ate. PortionFraction applies to every food in the meal unless a
// per-food override is supplied.
type SelectPortionRequest struct {
	SessionID       uuid.UUID
	ProfileID       uuid.UUID
	PortionFraction float64
	FoodPortions    []FoodPortionInput
}

// FoodPortionInput overrides the session-level fraction for one food. Exactly
// one of PortionFraction or Quantity should be set; Quantity is an absolute
// amount in the food's unit.
type FoodPortionInput struct {
	FoodID          uuid.UUID
	PortionFraction *float64
	Quantity        *float64
}

// CreateConsumptionRecord is the repository-level create request, with the
// per-food breakdown written in the same transaction.
type CreateConsumptionRecord struct {
	ID              uuid.UUID
	ProfileID       uuid.UUID
	MealID          uuid.UUID
	GroupID         *uuid.UUID
	Type            models.ConsumptionType
	Source          models.ConsumptionSource
	SessionID       *uuid.UUID
	PortionFraction float64
	TotalKcal       float64
	ConsumedAt      time.Time
	Portions        []FoodPortionRecord
}

// FoodPortionRecord is one resolved food portion of a consumption record.
type FoodPortionRecord struct {
	ID               uuid.UUID
	FoodID           uuid.UUID
	PortionFraction  float64
	QuantityConsumed float64
}
