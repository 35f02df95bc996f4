package consumption

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/events"
	"github.com/forkcast/forkcast/go/internal/models"
)

// Repository defines what the consumption linker needs from storage.
type Repository interface {
	CreateConsumption(ctx context.Context, rec CreateConsumptionRecord) (*models.MealConsumption, error)
	// ReplaceSessionConsumption upserts a member's individual record for a
	// session, replacing any prior food portions wholesale.
	ReplaceSessionConsumption(ctx context.Context, rec CreateConsumptionRecord) (*models.MealConsumption, error)
	ListProfileConsumptions(ctx context.Context, profileID uuid.UUID, limit int) ([]models.MealConsumption, error)
}

// ParticipantStore defines what the linker needs from session participant
// tracking: portion deadlines live on the voting session participants.
type ParticipantStore interface {
	GetParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.VotingSessionParticipant, error)
	MarkPortionSelected(ctx context.Context, sessionID, profileID uuid.UUID, selectedAt time.Time) error
	// ClaimForDefaulting flips defaulted_to_whole only while the participant
	// has not selected a portion; it reports whether the claim applied, so
	// concurrent sweeps default each participant at most once.
	ClaimForDefaulting(ctx context.Context, participantID uuid.UUID) (bool, error)
	// ListExpiredUnselected returns participants whose portion deadline has
	// passed without a selection, optionally limited to one session.
	ListExpiredUnselected(ctx context.Context, sessionID *uuid.UUID, before time.Time) ([]models.VotingSessionParticipant, error)
}

// SessionLookup resolves a completed session's outcome.
type SessionLookup interface {
	WinningMeal(ctx context.Context, sessionID uuid.UUID) (mealID, groupID uuid.UUID, err error)
}

// MealCatalog defines what the linker needs from meal storage.
type MealCatalog interface {
	GetMealWithFoods(ctx context.Context, mealID uuid.UUID) (*models.Meal, map[uuid.UUID]models.Food, error)
}

// EventSink receives portion events for broadcast. Fire-and-forget.
type EventSink interface {
	Append(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error
}

// App converts session outcomes into consumption records: one group-level
// record per completed session, then per-member individual records from
// self-reported or auto-defaulted portions.
type App struct {
	repo         Repository
	participants ParticipantStore
	sessions     SessionLookup
	meals        MealCatalog
	sink         EventSink
	clock        clockwork.Clock
}

// NewApp creates a new consumption App.
func NewApp(repo Repository, participants ParticipantStore, sessions SessionLookup, meals MealCatalog, sink EventSink, clock clockwork.Clock) *App {
	return &App{
		repo:         repo,
		participants: participants,
		sessions:     sessions,
		meals:        meals,
		sink:         sink,
		clock:        clock,
	}
}

// LinkSessionConsumption creates the group-level record for a session's
// winning meal: the full meal, attributed to the host/initiator, excluded
// from personal calorie totals. Linking twice is a no-op.
func (a *App) LinkSessionConsumption(ctx context.Context, sessionID, groupID, profileID, mealID uuid.UUID, source models.ConsumptionSource) error {
	meal, foods, err := a.meals.GetMealWithFoods(ctx, mealID)
	if err != nil {
		return fmt.Errorf("failed to load winning meal: %w", err)
	}

	portions := make([]FoodPortionRecord, 0, len(meal.Foods))
	for _, mf := range meal.Foods {
		portions = append(portions, FoodPortionRecord{
			ID:               uuid.New(),
			FoodID:           mf.FoodID,
			PortionFraction:  1.0,
			QuantityConsumed: mf.Quantity,
		})
	}

	consumption, err := a.repo.CreateConsumption(ctx, CreateConsumptionRecord{
		ID:              uuid.New(),
		ProfileID:       profileID,
		MealID:          mealID,
		GroupID:         &groupID,
		Type:            models.ConsumptionTypeGroup,
		Source:          source,
		SessionID:       &sessionID,
		PortionFraction: 1.0,
		TotalKcal:       meal.TotalKcal(foods),
		ConsumedAt:      a.clock.Now(),
		Portions:        portions,
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			// Already linked; a racing completion path got here first.
			return nil
		}
		return fmt.Errorf("failed to create group consumption: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("meal_id", mealID.String()).
		Float64("total_kcal", consumption.TotalKcal).
		Msg("linked group consumption")
	return nil
}

// SelectPortion records how much of the winning meal a participant ate,
// before their personal portion deadline. Re-selecting replaces the prior
// food portions wholesale.
func (a *App) SelectPortion(ctx context.Context, req SelectPortionRequest) (*models.MealConsumption, error) {
	if req.PortionFraction <= 0 || req.PortionFraction > 1 {
		return nil, apperrors.Validation("portion_fraction must be in (0, 1], got %v", req.PortionFraction)
	}
	for _, fp := range req.FoodPortions {
		if fp.PortionFraction != nil && fp.Quantity != nil {
			return nil, apperrors.Validation("food %s: supply a fraction or an absolute quantity, not both", fp.FoodID)
		}
		if fp.PortionFraction != nil && (*fp.PortionFraction <= 0 || *fp.PortionFraction > 1) {
			return nil, apperrors.Validation("food %s: portion_fraction must be in (0, 1]", fp.FoodID)
		}
		if fp.Quantity != nil && *fp.Quantity < 0 {
			return nil, apperrors.Validation("food %s: quantity cannot be negative", fp.FoodID)
		}
	}

	participant, err := a.participants.GetParticipant(ctx, req.SessionID, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if participant.PortionDeadline == nil {
		return nil, apperrors.Phase("session %s has not completed yet", req.SessionID)
	}
	now := a.clock.Now()
	if !now.Before(*participant.PortionDeadline) {
		return nil, apperrors.Deadline("portion selection window for session %s closed at %s", req.SessionID, participant.PortionDeadline.Format(time.RFC3339))
	}

	mealID, groupID, err := a.sessions.WinningMeal(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	meal, foods, err := a.meals.GetMealWithFoods(ctx, mealID)
	if err != nil {
		return nil, fmt.Errorf("failed to load winning meal: %w", err)
	}

	overrides := make(map[uuid.UUID]FoodPortionInput, len(req.FoodPortions))
	for _, fp := range req.FoodPortions {
		if _, ok := foods[fp.FoodID]; !ok {
			return nil, apperrors.Validation("food %s is not part of meal %s", fp.FoodID, mealID)
		}
		overrides[fp.FoodID] = fp
	}

	var totalKcal float64
	portions := make([]FoodPortionRecord, 0, len(meal.Foods))
	for _, mf := range meal.Foods {
		fraction := req.PortionFraction
		quantity := mf.Quantity * fraction
		if ov, ok := overrides[mf.FoodID]; ok {
			switch {
			case ov.Quantity != nil:
				quantity = *ov.Quantity
				if mf.Quantity > 0 {
					fraction = quantity / mf.Quantity
				}
			case ov.PortionFraction != nil:
				fraction = *ov.PortionFraction
				quantity = mf.Quantity * fraction
			}
		}
		portions = append(portions, FoodPortionRecord{
			ID:               uuid.New(),
			FoodID:           mf.FoodID,
			PortionFraction:  fraction,
			QuantityConsumed: quantity,
		})
		totalKcal += foods[mf.FoodID].KcalPerUnit * quantity
	}

	consumption, err := a.repo.ReplaceSessionConsumption(ctx, CreateConsumptionRecord{
		ID:              uuid.New(),
		ProfileID:       req.ProfileID,
		MealID:          mealID,
		GroupID:         &groupID,
		Type:            models.ConsumptionTypeIndividual,
		Source:          models.ConsumptionSourceVoting,
		SessionID:       &req.SessionID,
		PortionFraction: req.PortionFraction,
		TotalKcal:       totalKcal,
		ConsumedAt:      now,
		Portions:        portions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save individual consumption: %w", err)
	}

	if err := a.participants.MarkPortionSelected(ctx, req.SessionID, req.ProfileID, now); err != nil {
		log.Error().Err(err).
			Str("session_id", req.SessionID.String()).
			Str("profile_id", req.ProfileID.String()).
			Msg("failed to mark portion selected")
	}

	a.emit(ctx, req.SessionID, events.TypePortionSelected, events.PortionSelectedPayload{
		SessionID:       req.SessionID.String(),
		ProfileID:       req.ProfileID.String(),
		PortionFraction: req.PortionFraction,
		TotalKcal:       totalKcal,
		SelectedAt:      now,
	})

	return consumption, nil
}

// DefaultExpiredParticipants sweeps every tracked participant whose portion
// deadline passed without a selection and books them a whole-meal individual
// consumption. Participants who already selected are never touched. Returns
// the number of participants defaulted.
func (a *App) DefaultExpiredParticipants(ctx context.Context) (int, error) {
	return a.defaultParticipants(ctx, nil)
}

// DefaultSessionParticipants is the on-demand variant for one session, used
// when history is viewed before the scheduler gets there.
func (a *App) DefaultSessionParticipants(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return a.defaultParticipants(ctx, &sessionID)
}

func (a *App) defaultParticipants(ctx context.Context, sessionID *uuid.UUID) (int, error) {
	now := a.clock.Now()
	expired, err := a.participants.ListExpiredUnselected(ctx, sessionID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired participants: %w", err)
	}

	defaulted := 0
	for _, p := range expired {
		if err := a.defaultParticipant(ctx, p, now); err != nil {
			log.Error().Err(err).
				Str("session_id", p.VotingSessionID.String()).
				Str("profile_id", p.ProfileID.String()).
				Msg("failed to default participant portion")
			continue
		}
		defaulted++
	}
	return defaulted, nil
}

func (a *App) defaultParticipant(ctx context.Context, p models.VotingSessionParticipant, now time.Time) error {
	claimed, err := a.participants.ClaimForDefaulting(ctx, p.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// Selected (or defaulted) in the meantime.
		return nil
	}

	mealID, groupID, err := a.sessions.WinningMeal(ctx, p.VotingSessionID)
	if err != nil {
		return err
	}
	meal, foods, err := a.meals.GetMealWithFoods(ctx, mealID)
	if err != nil {
		return fmt.Errorf("failed to load winning meal: %w", err)
	}

	portions := make([]FoodPortionRecord, 0, len(meal.Foods))
	for _, mf := range meal.Foods {
		portions = append(portions, FoodPortionRecord{
			ID:               uuid.New(),
			FoodID:           mf.FoodID,
			PortionFraction:  1.0,
			QuantityConsumed: mf.Quantity,
		})
	}

	if _, err := a.repo.ReplaceSessionConsumption(ctx, CreateConsumptionRecord{
		ID:              uuid.New(),
		ProfileID:       p.ProfileID,
		MealID:          mealID,
		GroupID:         &groupID,
		Type:            models.ConsumptionTypeIndividual,
		Source:          models.ConsumptionSourceVoting,
		SessionID:       &p.VotingSessionID,
		PortionFraction: 1.0,
		TotalKcal:       meal.TotalKcal(foods),
		ConsumedAt:      now,
		Portions:        portions,
	}); err != nil {
		return fmt.Errorf("failed to create defaulted consumption: %w", err)
	}

	a.emit(ctx, p.VotingSessionID, events.TypePortionDefaulted, events.PortionDefaultedPayload{
		SessionID:   p.VotingSessionID.String(),
		ProfileID:   p.ProfileID.String(),
		DefaultedAt: now,
	})

	log.Info().
		Str("session_id", p.VotingSessionID.String()).
		Str("profile_id", p.ProfileID.String()).
		Msg("defaulted participant to whole-meal portion")
	return nil
}

// History returns a member's recent consumption records, individual records
// only; group bookkeeping records never count toward personal history.
func (a *App) History(ctx context.Context, profileID uuid.UUID, limit int) ([]models.MealConsumption, error) {
	if limit <= 0 {
		limit = 50
	}
	consumptions, err := a.repo.ListProfileConsumptions(ctx, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list consumptions: %w", err)
	}
	return consumptions, nil
}

func (a *App) emit(ctx context.Context, sessionID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	if err := a.sink.Append(ctx, sessionID, eventType, data); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Str("session_id", sessionID.String()).Msg("failed to append event")
	}
}
