package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/forkcast/forkcast/go/internal/achievements"
	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/models"
)

// fakeRepo is an in-memory Repository with the same conditional-update
// semantics as the Postgres implementation.
type fakeRepo struct {
	clock        clockwork.Clock
	sessions     map[uuid.UUID]*models.GameSession
	participants map[uuid.UUID][]*models.GameParticipant
}

func newFakeRepo(clock clockwork.Clock) *fakeRepo {
	return &fakeRepo{
		clock:        clock,
		sessions:     make(map[uuid.UUID]*models.GameSession),
		participants: make(map[uuid.UUID][]*models.GameParticipant),
	}
}

func (r *fakeRepo) CreateSession(ctx context.Context, rec CreateSessionRecord) (*models.GameSession, error) {
	for _, s := range r.sessions {
		if s.GroupID == rec.GroupID && !s.Status.IsTerminal() {
			return nil, apperrors.Conflict("group %s already has an active game session", rec.GroupID)
		}
	}
	now := r.clock.Now()
	session := &models.GameSession{
		ID:         rec.ID,
		GroupID:    rec.GroupID,
		HostID:     rec.HostID,
		GameType:   rec.GameType,
		Duration:   rec.Duration,
		MinPlayers: rec.MinPlayers,
		Status:     rec.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.sessions[rec.ID] = session
	out := *session
	return &out, nil
}

func (r *fakeRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("game session %s not found", id)
	}
	out := *s
	return &out, nil
}

func (r *fakeRepo) GetActiveSessionForGroup(ctx context.Context, groupID uuid.UUID) (*models.GameSession, error) {
	for _, s := range r.sessions {
		if s.GroupID == groupID && !s.Status.IsTerminal() {
			out := *s
			return &out, nil
		}
	}
	return nil, nil
}

func statusIn(status models.GameSessionStatus, set []models.GameSessionStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func (r *fakeRepo) Transition(ctx context.Context, rec TransitionRecord) (*models.GameSession, error) {
	s, ok := r.sessions[rec.SessionID]
	if !ok || !statusIn(s.Status, rec.From) {
		return nil, apperrors.Phase("game session %s is not in an expected status", rec.SessionID)
	}
	s.Status = rec.To
	if rec.StartTime != nil {
		t := *rec.StartTime
		s.StartTime = &t
	}
	if rec.EndTime != nil {
		t := *rec.EndTime
		s.EndTime = &t
	}
	s.UpdatedAt = r.clock.Now()
	out := *s
	return &out, nil
}

func (r *fakeRepo) Complete(ctx context.Context, rec CompleteRecord) (*models.GameSession, error) {
	s, ok := r.sessions[rec.SessionID]
	if !ok || !statusIn(s.Status, rec.From) {
		return nil, apperrors.Phase("game session %s is not in an expected status", rec.SessionID)
	}
	winnerID := rec.WinnerID
	s.Status = models.GameStatusCompleted
	s.WinnerID = &winnerID
	s.WinningMealID = rec.WinningMealID
	if rec.EndTime != nil {
		t := *rec.EndTime
		s.EndTime = &t
	}
	s.UpdatedAt = r.clock.Now()
	out := *s
	return &out, nil
}

func (r *fakeRepo) ListPlayingSessionsDue(ctx context.Context, now time.Time) ([]models.GameSession, error) {
	var out []models.GameSession
	for _, s := range r.sessions {
		if s.Status == models.GameStatusPlaying && s.StartTime != nil && !now.Before(s.StartTime.Add(s.Duration)) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListIdleSessions(ctx context.Context, statuses []models.GameSessionStatus, updatedBefore time.Time) ([]models.GameSession, error) {
	var out []models.GameSession
	for _, s := range r.sessions {
		if statusIn(s.Status, statuses) && !updatedBefore.Before(s.UpdatedAt) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpsertParticipant(ctx context.Context, rec UpsertParticipantRecord) (*models.GameParticipant, error) {
	for _, p := range r.participants[rec.GameSessionID] {
		if p.ProfileID == rec.ProfileID {
			if rec.MealID != nil {
				m := *rec.MealID
				p.MealID = &m
			}
			out := *p
			return &out, nil
		}
	}
	p := &models.GameParticipant{
		ID:            rec.ID,
		GameSessionID: rec.GameSessionID,
		ProfileID:     rec.ProfileID,
		MealID:        rec.MealID,
		JoinedAt:      rec.JoinedAt,
	}
	r.participants[rec.GameSessionID] = append(r.participants[rec.GameSessionID], p)
	out := *p
	return &out, nil
}

func (r *fakeRepo) find(sessionID, profileID uuid.UUID) *models.GameParticipant {
	for _, p := range r.participants[sessionID] {
		if p.ProfileID == profileID {
			return p
		}
	}
	return nil
}

func (r *fakeRepo) GetParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.GameParticipant, error) {
	p := r.find(sessionID, profileID)
	if p == nil {
		return nil, apperrors.NotFound("profile %s has not joined session %s", profileID, sessionID)
	}
	out := *p
	return &out, nil
}

func (r *fakeRepo) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.GameParticipant, error) {
	var out []models.GameParticipant
	for _, p := range r.participants[sessionID] {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) SetParticipantReady(ctx context.Context, sessionID, profileID uuid.UUID, isReady bool) (*models.GameParticipant, error) {
	p := r.find(sessionID, profileID)
	if p == nil {
		return nil, apperrors.NotFound("profile %s has not joined session %s", profileID, sessionID)
	}
	p.IsReady = isReady
	out := *p
	return &out, nil
}

func (r *fakeRepo) RecordClickSubmission(ctx context.Context, sessionID, profileID uuid.UUID, clickCount int, submittedAt time.Time) (*models.GameParticipant, error) {
	p := r.find(sessionID, profileID)
	if p == nil {
		return nil, apperrors.NotFound("profile %s has not joined session %s", profileID, sessionID)
	}
	p.ClickCount = clickCount
	p.HasSubmitted = true
	t := submittedAt
	p.SubmittedAt = &t
	out := *p
	return &out, nil
}

type fakeGroups struct {
	members map[uuid.UUID][]uuid.UUID
}

func (g *fakeGroups) IsActiveMember(ctx context.Context, groupID, profileID uuid.UUID) (bool, error) {
	for _, m := range g.members[groupID] {
		if m == profileID {
			return true, nil
		}
	}
	return false, nil
}

type fakeMeals struct {
	meals map[uuid.UUID]bool
}

func (m *fakeMeals) MealExists(ctx context.Context, mealID uuid.UUID) (bool, error) {
	return m.meals[mealID], nil
}

type fakeSink struct {
	events []string
}

func (s *fakeSink) Append(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error {
	s.events = append(s.events, eventType)
	return nil
}

type linkCall struct {
	sessionID uuid.UUID
	mealID    uuid.UUID
	source    models.ConsumptionSource
}

type fakeLinker struct {
	calls []linkCall
}

func (l *fakeLinker) LinkSessionConsumption(ctx context.Context, sessionID, groupID, profileID, mealID uuid.UUID, source models.ConsumptionSource) error {
	l.calls = append(l.calls, linkCall{sessionID: sessionID, mealID: mealID, source: source})
	return nil
}

// fixedPicker always picks the same index.
type fixedPicker struct{ idx int }

func (p fixedPicker) Pick(n int) int { return p.idx % n }

type fixture struct {
	app    *App
	repo   *fakeRepo
	meals  *fakeMeals
	sink   *fakeSink
	linker *fakeLinker
	clock  *clockwork.FakeClock
}

func newFixture(t *testing.T, memberCount int, picker RoulettePicker) (*fixture, uuid.UUID, []uuid.UUID) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	repo := newFakeRepo(clock)
	groupID := uuid.New()
	members := make([]uuid.UUID, memberCount)
	for i := range members {
		members[i] = uuid.New()
	}
	groups := &fakeGroups{members: map[uuid.UUID][]uuid.UUID{groupID: members}}
	meals := &fakeMeals{meals: make(map[uuid.UUID]bool)}
	sink := &fakeSink{}
	linker := &fakeLinker{}
	if picker == nil {
		picker = UniformPicker{}
	}

	app := NewApp(repo, groups, meals, sink, achievements.NoopNotifier{}, linker, picker, clock, DefaultConfig())
	return &fixture{app: app, repo: repo, meals: meals, sink: sink, linker: linker, clock: clock}, groupID, members
}

func (f *fixture) newMeal() uuid.UUID {
	id := uuid.New()
	f.meals.meals[id] = true
	return id
}

func (f *fixture) createClicker(t *testing.T, groupID, hostID uuid.UUID, minPlayers int) *models.GameSession {
	t.Helper()
	session, err := f.app.CreateSession(context.Background(), CreateSessionRequest{
		GroupID:    groupID,
		HostID:     hostID,
		GameType:   models.GameTypeEggClicker,
		Duration:   30 * time.Second,
		MinPlayers: minPlayers,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func (f *fixture) createRoulette(t *testing.T, groupID, hostID uuid.UUID) *models.GameSession {
	t.Helper()
	session, err := f.app.CreateSession(context.Background(), CreateSessionRequest{
		GroupID:    groupID,
		HostID:     hostID,
		GameType:   models.GameTypeRoulette,
		MinPlayers: 1,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func (f *fixture) join(t *testing.T, sessionID, profileID uuid.UUID, mealID *uuid.UUID) {
	t.Helper()
	if _, err := f.app.Join(context.Background(), JoinRequest{
		SessionID: sessionID,
		ProfileID: profileID,
		MealID:    mealID,
	}); err != nil {
		t.Fatalf("Join: %v", err)
	}
}

func (f *fixture) ready(t *testing.T, sessionID, profileID uuid.UUID) {
	t.Helper()
	if _, err := f.app.MarkPlayerReady(context.Background(), sessionID, profileID, true); err != nil {
		t.Fatalf("MarkPlayerReady: %v", err)
	}
}

// startPlayingClicker drives a session through ready, countdown and playing.
func (f *fixture) startPlayingClicker(t *testing.T, session *models.GameSession, players []uuid.UUID) {
	t.Helper()
	for _, p := range players {
		f.ready(t, session.ID, p)
	}
	if _, err := f.app.StartCountdown(context.Background(), session.ID, session.HostID); err != nil {
		t.Fatalf("StartCountdown: %v", err)
	}
	if _, err := f.app.StartPlaying(context.Background(), session.ID); err != nil {
		t.Fatalf("StartPlaying: %v", err)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)

	tests := []struct {
		name string
		req  CreateSessionRequest
	}{
		{
			name: "unknown game type",
			req:  CreateSessionRequest{GroupID: groupID, HostID: members[0], GameType: "DARTS", MinPlayers: 1},
		},
		{
			name: "clicker without duration",
			req:  CreateSessionRequest{GroupID: groupID, HostID: members[0], GameType: models.GameTypeEggClicker, MinPlayers: 1},
		},
		{
			name: "zero min players",
			req:  CreateSessionRequest{GroupID: groupID, HostID: members[0], GameType: models.GameTypeRoulette, MinPlayers: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.app.CreateSession(context.Background(), tt.req); !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateSessionConflict(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)
	f.createClicker(t, groupID, members[0], 2)

	_, err := f.app.CreateSession(context.Background(), CreateSessionRequest{
		GroupID:    groupID,
		HostID:     members[1],
		GameType:   models.GameTypeRoulette,
		MinPlayers: 1,
	})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReadyTransitions(t *testing.T) {
	f, groupID, members := newFixture(t, 3, nil)
	session := f.createClicker(t, groupID, members[0], 2)
	f.join(t, session.ID, members[0], nil)
	f.join(t, session.ID, members[1], nil)

	f.ready(t, session.ID, members[0])
	got, _ := f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusWaiting {
		t.Fatalf("status = %s with one ready player, want waiting", got.Status)
	}

	f.ready(t, session.ID, members[1])
	got, _ = f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusReady {
		t.Fatalf("status = %s with all ready, want ready", got.Status)
	}

	// Un-readying reverts to waiting.
	if _, err := f.app.MarkPlayerReady(context.Background(), session.ID, members[1], false); err != nil {
		t.Fatal(err)
	}
	got, _ = f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusWaiting {
		t.Fatalf("status = %s after unready, want waiting", got.Status)
	}
}

func TestClickerAutoCompletes(t *testing.T) {
	f, groupID, members := newFixture(t, 3, nil)
	session := f.createClicker(t, groupID, members[0], 3)
	winnerMeal := f.newMeal()
	f.join(t, session.ID, members[0], nil)
	f.join(t, session.ID, members[1], &winnerMeal)
	f.join(t, session.ID, members[2], nil)
	f.startPlayingClicker(t, session, members)

	counts := []int{10, 25, 18}
	for i, m := range members {
		if _, err := f.app.SubmitClickCount(context.Background(), session.ID, m, counts[i]); err != nil {
			t.Fatalf("SubmitClickCount: %v", err)
		}
		f.clock.Advance(time.Second)
	}

	got, _ := f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusCompleted {
		t.Fatalf("status = %s after all submissions, want completed", got.Status)
	}
	if got.WinnerID == nil || *got.WinnerID != members[1] {
		t.Fatalf("winner = %v, want the 25-click player %s", got.WinnerID, members[1])
	}
	if got.WinningMealID == nil || *got.WinningMealID != winnerMeal {
		t.Fatalf("winning meal = %v, want %s", got.WinningMealID, winnerMeal)
	}
	if len(f.linker.calls) != 1 || f.linker.calls[0].source != models.ConsumptionSourceGame {
		t.Fatalf("unexpected linker calls %+v", f.linker.calls)
	}
}

func TestClickerWinnerWithoutMealSkipsLinker(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)
	session := f.createClicker(t, groupID, members[0], 2)
	f.join(t, session.ID, members[0], nil)
	f.join(t, session.ID, members[1], nil)
	f.startPlayingClicker(t, session, members)

	for i, m := range members {
		if _, err := f.app.SubmitClickCount(context.Background(), session.ID, m, 5+i); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if len(f.linker.calls) != 0 {
		t.Fatalf("linker called for a winner with no meal")
	}
}

func TestSubmitClickCountNegative(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)
	session := f.createClicker(t, groupID, members[0], 2)

	if _, err := f.app.SubmitClickCount(context.Background(), session.ID, members[0], -1); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestForceComplete(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)
	session := f.createClicker(t, groupID, members[0], 2)
	f.join(t, session.ID, members[0], nil)
	f.join(t, session.ID, members[1], nil)
	f.startPlayingClicker(t, session, members)
	if _, err := f.app.EndGameTime(context.Background(), session.ID); err != nil {
		t.Fatal(err)
	}

	// No submissions yet.
	if _, err := f.app.ForceComplete(context.Background(), session.ID, members[0]); !apperrors.IsKind(err, apperrors.KindPhase) {
		t.Fatalf("expected phase error before any submission, got %v", err)
	}

	if _, err := f.app.SubmitClickCount(context.Background(), session.ID, members[1], 12); err != nil {
		t.Fatal(err)
	}

	// Non-host cannot force completion.
	if _, err := f.app.ForceComplete(context.Background(), session.ID, members[1]); !apperrors.IsKind(err, apperrors.KindPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}

	got, err := f.app.ForceComplete(context.Background(), session.ID, members[0])
	if err != nil {
		t.Fatalf("ForceComplete: %v", err)
	}
	if got.Status != models.GameStatusCompleted || got.WinnerID == nil || *got.WinnerID != members[1] {
		t.Fatalf("unexpected session after force complete: %+v", got)
	}
}

func TestRouletteHonorsPredeterminedWinner(t *testing.T) {
	f, groupID, members := newFixture(t, 3, fixedPicker{idx: 0})
	session := f.createRoulette(t, groupID, members[0])
	mealA, mealB := f.newMeal(), f.newMeal()
	f.join(t, session.ID, members[0], &mealA)
	f.join(t, session.ID, members[1], &mealB)
	f.join(t, session.ID, members[2], nil) // no meal: ineligible

	preview, err := f.app.DetermineRouletteWinner(context.Background(), session.ID, members[0])
	if err != nil {
		t.Fatalf("DetermineRouletteWinner: %v", err)
	}
	if preview.MealID == nil {
		t.Fatal("preview winner has no meal")
	}
	// Preview must not complete the session.
	got, _ := f.repo.GetSession(context.Background(), session.ID)
	if got.Status.IsTerminal() {
		t.Fatalf("preview completed the session")
	}

	winner := members[1]
	completed, err := f.app.CompleteRoulette(context.Background(), session.ID, members[0], &winner)
	if err != nil {
		t.Fatalf("CompleteRoulette: %v", err)
	}
	if completed.WinnerID == nil || *completed.WinnerID != winner {
		t.Fatalf("winner = %v, want predetermined %s", completed.WinnerID, winner)
	}
	if completed.WinningMealID == nil || *completed.WinningMealID != mealB {
		t.Fatalf("winning meal = %v, want %s", completed.WinningMealID, mealB)
	}
	if len(f.linker.calls) != 1 || f.linker.calls[0].mealID != mealB {
		t.Fatalf("unexpected linker calls %+v", f.linker.calls)
	}
}

func TestRouletteRejectsIneligibleWinner(t *testing.T) {
	f, groupID, members := newFixture(t, 3, nil)
	session := f.createRoulette(t, groupID, members[0])
	mealA := f.newMeal()
	f.join(t, session.ID, members[0], &mealA)
	f.join(t, session.ID, members[1], nil)

	noMeal := members[1]
	if _, err := f.app.CompleteRoulette(context.Background(), session.ID, members[0], &noMeal); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error for ineligible winner, got %v", err)
	}

	if _, err := f.app.DetermineRouletteWinner(context.Background(), session.ID, members[1]); !apperrors.IsKind(err, apperrors.KindPermission) {
		t.Fatalf("expected permission error for non-host, got %v", err)
	}
}

func TestCancelConstraints(t *testing.T) {
	t.Run("roulette with proposed meal", func(t *testing.T) {
		f, groupID, members := newFixture(t, 2, nil)
		session := f.createRoulette(t, groupID, members[0])
		meal := f.newMeal()
		f.join(t, session.ID, members[0], &meal)

		if _, err := f.app.Cancel(context.Background(), session.ID, members[0]); !apperrors.IsKind(err, apperrors.KindPhase) {
			t.Fatalf("expected phase error, got %v", err)
		}
	})

	t.Run("clicker during play", func(t *testing.T) {
		f, groupID, members := newFixture(t, 2, nil)
		session := f.createClicker(t, groupID, members[0], 2)
		f.join(t, session.ID, members[0], nil)
		f.join(t, session.ID, members[1], nil)
		f.startPlayingClicker(t, session, members)

		if _, err := f.app.Cancel(context.Background(), session.ID, members[0]); !apperrors.IsKind(err, apperrors.KindPhase) {
			t.Fatalf("expected phase error, got %v", err)
		}
	})

	t.Run("non-host", func(t *testing.T) {
		f, groupID, members := newFixture(t, 2, nil)
		session := f.createClicker(t, groupID, members[0], 2)

		if _, err := f.app.Cancel(context.Background(), session.ID, members[1]); !apperrors.IsKind(err, apperrors.KindPermission) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("waiting clicker cancels", func(t *testing.T) {
		f, groupID, members := newFixture(t, 2, nil)
		session := f.createClicker(t, groupID, members[0], 2)

		got, err := f.app.Cancel(context.Background(), session.ID, members[0])
		if err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if got.Status != models.GameStatusCancelled {
			t.Fatalf("status = %s, want cancelled", got.Status)
		}
	})
}

func TestSweepEndsOverduePlayClocks(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)
	session := f.createClicker(t, groupID, members[0], 2)
	f.join(t, session.ID, members[0], nil)
	f.join(t, session.ID, members[1], nil)
	f.startPlayingClicker(t, session, members)

	f.clock.Advance(31 * time.Second)
	if err := f.app.SweepSessions(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, _ := f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusSubmitting {
		t.Fatalf("status = %s after sweep, want submitting", got.Status)
	}
	if got.EndTime == nil {
		t.Fatal("end time not set by sweep")
	}
}

func TestSweepCancelsIdleSessions(t *testing.T) {
	f, groupID, members := newFixture(t, 2, nil)
	session := f.createClicker(t, groupID, members[0], 2)

	f.clock.Advance(DefaultConfig().IdleSessionTTL + time.Minute)
	if err := f.app.SweepSessions(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, _ := f.repo.GetSession(context.Background(), session.ID)
	if got.Status != models.GameStatusCancelled {
		t.Fatalf("status = %s after idle sweep, want cancelled", got.Status)
	}

	// A cancelled session no longer blocks the group.
	if _, err := f.app.CreateSession(context.Background(), CreateSessionRequest{
		GroupID:    groupID,
		HostID:     members[0],
		GameType:   models.GameTypeRoulette,
		MinPlayers: 1,
	}); err != nil {
		t.Fatalf("CreateSession after idle sweep: %v", err)
	}
}

func TestPickClickWinnerTieBreak(t *testing.T) {
	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	first := base
	second := base.Add(time.Second)

	early := models.GameParticipant{ProfileID: uuid.New(), ClickCount: 20, SubmittedAt: &first}
	late := models.GameParticipant{ProfileID: uuid.New(), ClickCount: 20, SubmittedAt: &second}

	if got := pickClickWinner([]models.GameParticipant{late, early}); got.ProfileID != early.ProfileID {
		t.Fatal("tie should break to the earliest submission")
	}
	if got := pickClickWinner([]models.GameParticipant{early, late}); got.ProfileID != early.ProfileID {
		t.Fatal("tie break must not depend on input order")
	}
}
