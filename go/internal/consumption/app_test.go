package consumption

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/models"
)

type fakeRepo struct {
	records []*models.MealConsumption
}

func (r *fakeRepo) CreateConsumption(ctx context.Context, rec CreateConsumptionRecord) (*models.MealConsumption, error) {
	if rec.Type == models.ConsumptionTypeGroup && rec.SessionID != nil {
		for _, c := range r.records {
			if c.Type == models.ConsumptionTypeGroup && c.SessionID != nil && *c.SessionID == *rec.SessionID {
				return nil, apperrors.Conflict("session %s already has a group consumption record", *rec.SessionID)
			}
		}
	}
	return r.insert(rec), nil
}

func (r *fakeRepo) ReplaceSessionConsumption(ctx context.Context, rec CreateConsumptionRecord) (*models.MealConsumption, error) {
	kept := r.records[:0]
	for _, c := range r.records {
		if c.Type == models.ConsumptionTypeIndividual && c.ProfileID == rec.ProfileID &&
			c.SessionID != nil && rec.SessionID != nil && *c.SessionID == *rec.SessionID {
			continue
		}
		kept = append(kept, c)
	}
	r.records = kept
	return r.insert(rec), nil
}

func (r *fakeRepo) insert(rec CreateConsumptionRecord) *models.MealConsumption {
	c := &models.MealConsumption{
		ID:              rec.ID,
		ProfileID:       rec.ProfileID,
		MealID:          rec.MealID,
		GroupID:         rec.GroupID,
		Type:            rec.Type,
		Source:          rec.Source,
		SessionID:       rec.SessionID,
		PortionFraction: rec.PortionFraction,
		TotalKcal:       rec.TotalKcal,
		ConsumedAt:      rec.ConsumedAt,
	}
	for _, p := range rec.Portions {
		c.Portions = append(c.Portions, models.FoodPortion{
			ID:               p.ID,
			ConsumptionID:    rec.ID,
			FoodID:           p.FoodID,
			PortionFraction:  p.PortionFraction,
			QuantityConsumed: p.QuantityConsumed,
		})
	}
	r.records = append(r.records, c)
	out := *c
	return &out
}

func (r *fakeRepo) ListProfileConsumptions(ctx context.Context, profileID uuid.UUID, limit int) ([]models.MealConsumption, error) {
	var out []models.MealConsumption
	for _, c := range r.records {
		if c.ProfileID == profileID && c.Type == models.ConsumptionTypeIndividual {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConsumedAt.After(out[j].ConsumedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// forSession returns the individual record a profile holds for a session.
func (r *fakeRepo) forSession(sessionID, profileID uuid.UUID) *models.MealConsumption {
	for _, c := range r.records {
		if c.Type == models.ConsumptionTypeIndividual && c.ProfileID == profileID &&
			c.SessionID != nil && *c.SessionID == sessionID {
			out := *c
			return &out
		}
	}
	return nil
}

type fakeParticipants struct {
	byID map[uuid.UUID]*models.VotingSessionParticipant
}

func (s *fakeParticipants) find(sessionID, profileID uuid.UUID) *models.VotingSessionParticipant {
	for _, p := range s.byID {
		if p.VotingSessionID == sessionID && p.ProfileID == profileID {
			return p
		}
	}
	return nil
}

func (s *fakeParticipants) GetParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.VotingSessionParticipant, error) {
	p := s.find(sessionID, profileID)
	if p == nil {
		return nil, apperrors.NotFound("profile %s did not participate in session %s", profileID, sessionID)
	}
	out := *p
	return &out, nil
}

func (s *fakeParticipants) MarkPortionSelected(ctx context.Context, sessionID, profileID uuid.UUID, selectedAt time.Time) error {
	p := s.find(sessionID, profileID)
	if p == nil {
		return apperrors.NotFound("profile %s did not participate in session %s", profileID, sessionID)
	}
	p.HasSelectedPortion = true
	p.DefaultedToWhole = false
	return nil
}

func (s *fakeParticipants) ClaimForDefaulting(ctx context.Context, participantID uuid.UUID) (bool, error) {
	p, ok := s.byID[participantID]
	if !ok || p.HasSelectedPortion || p.DefaultedToWhole {
		return false, nil
	}
	p.DefaultedToWhole = true
	return true, nil
}

func (s *fakeParticipants) ListExpiredUnselected(ctx context.Context, sessionID *uuid.UUID, before time.Time) ([]models.VotingSessionParticipant, error) {
	var out []models.VotingSessionParticipant
	for _, p := range s.byID {
		if sessionID != nil && p.VotingSessionID != *sessionID {
			continue
		}
		if p.PortionDeadline == nil || p.HasSelectedPortion || p.DefaultedToWhole {
			continue
		}
		if !p.PortionDeadline.After(before) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type outcome struct {
	mealID  uuid.UUID
	groupID uuid.UUID
}

type fakeSessions struct {
	outcomes map[uuid.UUID]outcome
}

func (s *fakeSessions) WinningMeal(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	o, ok := s.outcomes[sessionID]
	if !ok {
		return uuid.Nil, uuid.Nil, apperrors.NotFound("voting session %s not found", sessionID)
	}
	return o.mealID, o.groupID, nil
}

type fakeMeals struct {
	meal  *models.Meal
	foods map[uuid.UUID]models.Food
}

func (m *fakeMeals) GetMealWithFoods(ctx context.Context, mealID uuid.UUID) (*models.Meal, map[uuid.UUID]models.Food, error) {
	if m.meal == nil || m.meal.ID != mealID {
		return nil, nil, apperrors.NotFound("meal %s not found", mealID)
	}
	out := *m.meal
	return &out, m.foods, nil
}

type fakeSink struct {
	events []string
}

func (s *fakeSink) Append(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error {
	s.events = append(s.events, eventType)
	return nil
}

type fixture struct {
	app          *App
	repo         *fakeRepo
	participants *fakeParticipants
	sessions     *fakeSessions
	sink         *fakeSink
	clock        *clockwork.FakeClock

	sessionID uuid.UUID
	groupID   uuid.UUID
	mealID    uuid.UUID
	rice      uuid.UUID // 200 units at 1.3 kcal/unit = 260 kcal
	chicken   uuid.UUID // 150 units at 2.0 kcal/unit = 300 kcal
}

const wholeMealKcal = 560.0

// newFixture builds a completed voting session whose winning meal is
// rice (200 x 1.3 kcal) + chicken (150 x 2.0 kcal), with the given
// participants holding a 24h portion window.
func newFixture(t *testing.T, participants ...uuid.UUID) *fixture {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC))

	f := &fixture{
		repo:      &fakeRepo{},
		sink:      &fakeSink{},
		clock:     clock,
		sessionID: uuid.New(),
		groupID:   uuid.New(),
		mealID:    uuid.New(),
		rice:      uuid.New(),
		chicken:   uuid.New(),
	}

	meals := &fakeMeals{
		meal: &models.Meal{
			ID:   f.mealID,
			Name: "chicken rice",
			Foods: []models.MealFood{
				{ID: uuid.New(), MealID: f.mealID, FoodID: f.rice, Quantity: 200},
				{ID: uuid.New(), MealID: f.mealID, FoodID: f.chicken, Quantity: 150},
			},
		},
		foods: map[uuid.UUID]models.Food{
			f.rice:    {ID: f.rice, Name: "rice", Unit: "g", KcalPerUnit: 1.3},
			f.chicken: {ID: f.chicken, Name: "chicken", Unit: "g", KcalPerUnit: 2.0},
		},
	}
	f.sessions = &fakeSessions{outcomes: map[uuid.UUID]outcome{
		f.sessionID: {mealID: f.mealID, groupID: f.groupID},
	}}

	deadline := clock.Now().Add(24 * time.Hour)
	f.participants = &fakeParticipants{byID: make(map[uuid.UUID]*models.VotingSessionParticipant)}
	for _, profileID := range participants {
		id := uuid.New()
		f.participants.byID[id] = &models.VotingSessionParticipant{
			ID:              id,
			VotingSessionID: f.sessionID,
			ProfileID:       profileID,
			PortionDeadline: &deadline,
		}
	}

	f.app = NewApp(f.repo, f.participants, f.sessions, meals, f.sink, clock)
	return f
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLinkSessionConsumptionIdempotent(t *testing.T) {
	host := uuid.New()
	f := newFixture(t, host)

	for i := 0; i < 2; i++ {
		if err := f.app.LinkSessionConsumption(context.Background(), f.sessionID, f.groupID, host, f.mealID, models.ConsumptionSourceVoting); err != nil {
			t.Fatalf("LinkSessionConsumption #%d: %v", i+1, err)
		}
	}

	if len(f.repo.records) != 1 {
		t.Fatalf("got %d records after double link, want 1", len(f.repo.records))
	}
	rec := f.repo.records[0]
	if rec.Type != models.ConsumptionTypeGroup || rec.ProfileID != host {
		t.Fatalf("unexpected group record %+v", rec)
	}
	if !almostEqual(rec.TotalKcal, wholeMealKcal) {
		t.Fatalf("total kcal = %v, want %v", rec.TotalKcal, wholeMealKcal)
	}
	if rec.PortionFraction != 1.0 || len(rec.Portions) != 2 {
		t.Fatalf("group record should cover the whole meal, got %+v", rec)
	}
}

func TestSelectPortionHalf(t *testing.T) {
	profile := uuid.New()
	f := newFixture(t, profile)

	rec, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
		SessionID:       f.sessionID,
		ProfileID:       profile,
		PortionFraction: 0.5,
	})
	if err != nil {
		t.Fatalf("SelectPortion: %v", err)
	}

	if !almostEqual(rec.TotalKcal, wholeMealKcal/2) {
		t.Fatalf("total kcal = %v, want %v", rec.TotalKcal, wholeMealKcal/2)
	}
	if rec.Type != models.ConsumptionTypeIndividual || rec.Source != models.ConsumptionSourceVoting {
		t.Fatalf("unexpected record classification %+v", rec)
	}
	for _, p := range rec.Portions {
		if !almostEqual(p.PortionFraction, 0.5) {
			t.Fatalf("portion fraction = %v, want 0.5", p.PortionFraction)
		}
	}

	p := f.participants.find(f.sessionID, profile)
	if !p.HasSelectedPortion {
		t.Fatal("participant not marked as having selected")
	}
	if len(f.sink.events) != 1 {
		t.Fatalf("got events %v, want one portion-selected event", f.sink.events)
	}
}

func TestSelectPortionQuantityOverride(t *testing.T) {
	profile := uuid.New()
	f := newFixture(t, profile)

	// Half the meal, but only 30 of the 150 units of chicken.
	chickenQty := 30.0
	rec, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
		SessionID:       f.sessionID,
		ProfileID:       profile,
		PortionFraction: 0.5,
		FoodPortions: []FoodPortionInput{
			{FoodID: f.chicken, Quantity: &chickenQty},
		},
	})
	if err != nil {
		t.Fatalf("SelectPortion: %v", err)
	}

	// rice: 100 x 1.3 = 130, chicken: 30 x 2.0 = 60
	if !almostEqual(rec.TotalKcal, 190) {
		t.Fatalf("total kcal = %v, want 190", rec.TotalKcal)
	}
	for _, p := range rec.Portions {
		if p.FoodID != f.chicken {
			continue
		}
		if !almostEqual(p.QuantityConsumed, 30) || !almostEqual(p.PortionFraction, 0.2) {
			t.Fatalf("chicken portion = %+v, want quantity 30 at fraction 0.2", p)
		}
	}
}

func TestSelectPortionReplacesPrior(t *testing.T) {
	profile := uuid.New()
	f := newFixture(t, profile)

	for _, fraction := range []float64{1.0, 0.5} {
		if _, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
			SessionID:       f.sessionID,
			ProfileID:       profile,
			PortionFraction: fraction,
		}); err != nil {
			t.Fatalf("SelectPortion(%v): %v", fraction, err)
		}
	}

	history, err := f.app.History(context.Background(), profile, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d individual records after re-selection, want 1", len(history))
	}
	if history[0].PortionFraction != 0.5 {
		t.Fatalf("surviving record has fraction %v, want the latest 0.5", history[0].PortionFraction)
	}
}

func TestSelectPortionValidation(t *testing.T) {
	profile := uuid.New()
	f := newFixture(t, profile)
	half := 0.5

	tests := []struct {
		name string
		req  SelectPortionRequest
	}{
		{
			name: "zero fraction",
			req:  SelectPortionRequest{SessionID: f.sessionID, ProfileID: profile, PortionFraction: 0},
		},
		{
			name: "fraction above one",
			req:  SelectPortionRequest{SessionID: f.sessionID, ProfileID: profile, PortionFraction: 1.5},
		},
		{
			name: "both override fields",
			req: SelectPortionRequest{
				SessionID: f.sessionID, ProfileID: profile, PortionFraction: 1,
				FoodPortions: []FoodPortionInput{{FoodID: f.rice, PortionFraction: &half, Quantity: &half}},
			},
		},
		{
			name: "override food not in meal",
			req: SelectPortionRequest{
				SessionID: f.sessionID, ProfileID: profile, PortionFraction: 1,
				FoodPortions: []FoodPortionInput{{FoodID: uuid.New(), PortionFraction: &half}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.app.SelectPortion(context.Background(), tt.req); !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSelectPortionDeadline(t *testing.T) {
	profile := uuid.New()
	f := newFixture(t, profile)

	// Exactly at the deadline the window is already closed.
	f.clock.Advance(24 * time.Hour)
	_, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
		SessionID:       f.sessionID,
		ProfileID:       profile,
		PortionFraction: 0.5,
	})
	if !apperrors.IsKind(err, apperrors.KindDeadline) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if f.repo.forSession(f.sessionID, profile) != nil {
		t.Fatal("record created despite closed window")
	}
}

func TestSelectPortionNonParticipant(t *testing.T) {
	f := newFixture(t, uuid.New())

	_, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
		SessionID:       f.sessionID,
		ProfileID:       uuid.New(),
		PortionFraction: 1,
	})
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDefaultExpiredParticipants(t *testing.T) {
	selector, sleeper := uuid.New(), uuid.New()
	f := newFixture(t, selector, sleeper)

	if _, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
		SessionID:       f.sessionID,
		ProfileID:       selector,
		PortionFraction: 0.5,
	}); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(25 * time.Hour)
	defaulted, err := f.app.DefaultExpiredParticipants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if defaulted != 1 {
		t.Fatalf("defaulted %d participants, want 1", defaulted)
	}

	// The sleeper got a whole-meal record.
	rec := f.repo.forSession(f.sessionID, sleeper)
	if rec == nil {
		t.Fatal("no record for defaulted participant")
	}
	if rec.PortionFraction != 1.0 || !almostEqual(rec.TotalKcal, wholeMealKcal) {
		t.Fatalf("defaulted record = %+v, want whole meal at %v kcal", rec, wholeMealKcal)
	}

	// The selector's half portion was never touched.
	if got := f.repo.forSession(f.sessionID, selector); got.PortionFraction != 0.5 {
		t.Fatalf("selector record has fraction %v, want the selected 0.5", got.PortionFraction)
	}

	// Second sweep finds nothing.
	defaulted, err = f.app.DefaultExpiredParticipants(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if defaulted != 0 {
		t.Fatalf("second sweep defaulted %d participants, want 0", defaulted)
	}
}

func TestDefaultSessionParticipantsScoped(t *testing.T) {
	member := uuid.New()
	f := newFixture(t, member)

	// A second session whose participant is also expired.
	otherSession := uuid.New()
	otherID := uuid.New()
	deadline := f.clock.Now().Add(time.Hour)
	f.participants.byID[otherID] = &models.VotingSessionParticipant{
		ID:              otherID,
		VotingSessionID: otherSession,
		ProfileID:       uuid.New(),
		PortionDeadline: &deadline,
	}

	f.clock.Advance(25 * time.Hour)
	defaulted, err := f.app.DefaultSessionParticipants(context.Background(), f.sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if defaulted != 1 {
		t.Fatalf("defaulted %d participants, want only the requested session's 1", defaulted)
	}
	if f.participants.byID[otherID].DefaultedToWhole {
		t.Fatal("participant from another session was defaulted")
	}
}

func TestHistoryExcludesGroupRecords(t *testing.T) {
	profile := uuid.New()
	f := newFixture(t, profile)

	if err := f.app.LinkSessionConsumption(context.Background(), f.sessionID, f.groupID, profile, f.mealID, models.ConsumptionSourceVoting); err != nil {
		t.Fatal(err)
	}
	if _, err := f.app.SelectPortion(context.Background(), SelectPortionRequest{
		SessionID:       f.sessionID,
		ProfileID:       profile,
		PortionFraction: 0.25,
	}); err != nil {
		t.Fatal(err)
	}

	history, err := f.app.History(context.Background(), profile, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d history records, want 1 (group bookkeeping excluded)", len(history))
	}
	if history[0].Type != models.ConsumptionTypeIndividual {
		t.Fatalf("history contains a %s record", history[0].Type)
	}
}
