package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/forkcast/forkcast/go/internal/achievements"
	"github.com/forkcast/forkcast/go/internal/apperrors"
	"github.com/forkcast/forkcast/go/internal/events"
	"github.com/forkcast/forkcast/go/internal/models"
)

// Repository defines what the game manager needs from storage.
//
// Transition and Complete are conditional updates: they apply only while the
// session is still in one of the expected statuses, so user actions and the
// scheduler sweep can race safely.
type Repository interface {
	CreateSession(ctx context.Context, rec CreateSessionRecord) (*models.GameSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.GameSession, error)
	GetActiveSessionForGroup(ctx context.Context, groupID uuid.UUID) (*models.GameSession, error)
	Transition(ctx context.Context, rec TransitionRecord) (*models.GameSession, error)
	Complete(ctx context.Context, rec CompleteRecord) (*models.GameSession, error)
	ListPlayingSessionsDue(ctx context.Context, now time.Time) ([]models.GameSession, error)
	ListIdleSessions(ctx context.Context, statuses []models.GameSessionStatus, updatedBefore time.Time) ([]models.GameSession, error)

	UpsertParticipant(ctx context.Context, rec UpsertParticipantRecord) (*models.GameParticipant, error)
	GetParticipant(ctx context.Context, sessionID, profileID uuid.UUID) (*models.GameParticipant, error)
	ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.GameParticipant, error)
	SetParticipantReady(ctx context.Context, sessionID, profileID uuid.UUID, isReady bool) (*models.GameParticipant, error)
	RecordClickSubmission(ctx context.Context, sessionID, profileID uuid.UUID, clickCount int, submittedAt time.Time) (*models.GameParticipant, error)
}

// GroupDirectory defines what the game manager needs from group storage.
type GroupDirectory interface {
	IsActiveMember(ctx context.Context, groupID, profileID uuid.UUID) (bool, error)
}

// MealCatalog defines what the game manager needs from meal storage.
type MealCatalog interface {
	MealExists(ctx context.Context, mealID uuid.UUID) (bool, error)
}

// EventSink receives phase-change and click events for broadcast.
// Fire-and-forget: failures are logged, never propagated.
type EventSink interface {
	Append(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error
}

// Linker defines what the game manager needs from the consumption linker.
type Linker interface {
	LinkSessionConsumption(ctx context.Context, sessionID, groupID, profileID, mealID uuid.UUID, source models.ConsumptionSource) error
}

// RoulettePicker selects a winner index for a roulette spin.
type RoulettePicker interface {
	Pick(n int) int
}

// UniformPicker picks uniformly at random.
type UniformPicker struct{}

func (UniformPicker) Pick(n int) int { return rand.Intn(n) }

// App owns the waiting -> ready -> countdown -> playing -> submitting ->
// completed/cancelled lifecycle for click-race and roulette games.
type App struct {
	repo     Repository
	groups   GroupDirectory
	meals    MealCatalog
	sink     EventSink
	notifier achievements.Notifier
	linker   Linker
	picker   RoulettePicker
	clock    clockwork.Clock
	cfg      Config
}

// NewApp creates a new game App.
func NewApp(repo Repository, groups GroupDirectory, meals MealCatalog, sink EventSink, notifier achievements.Notifier, linker Linker, picker RoulettePicker, clock clockwork.Clock, cfg Config) *App {
	return &App{
		repo:     repo,
		groups:   groups,
		meals:    meals,
		sink:     sink,
		notifier: notifier,
		linker:   linker,
		picker:   picker,
		clock:    clock,
		cfg:      cfg,
	}
}

// CreateSession creates a new game session in the waiting status.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.GameSession, error) {
	if req.HostID == uuid.Nil {
		return nil, apperrors.Validation("host_id is required")
	}
	if req.GroupID == uuid.Nil {
		return nil, apperrors.Validation("group_id is required")
	}
	switch req.GameType {
	case models.GameTypeEggClicker:
		if req.Duration <= 0 {
			return nil, apperrors.Validation("duration must be positive for %s games", req.GameType)
		}
	case models.GameTypeRoulette:
		// Roulette has no play clock.
	default:
		return nil, apperrors.Validation("invalid game type %q", req.GameType)
	}
	if req.MinPlayers < 1 {
		return nil, apperrors.Validation("min_players must be at least 1")
	}

	member, err := a.groups.IsActiveMember(ctx, req.GroupID, req.HostID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !member {
		return nil, apperrors.Permission("profile %s is not a member of group %s", req.HostID, req.GroupID)
	}

	if active, err := a.repo.GetActiveSessionForGroup(ctx, req.GroupID); err != nil {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	} else if active != nil {
		return nil, apperrors.Conflict("group %s already has an active game session %s", req.GroupID, active.ID)
	}

	session, err := a.repo.CreateSession(ctx, CreateSessionRecord{
		ID:         uuid.New(),
		GroupID:    req.GroupID,
		HostID:     req.HostID,
		GameType:   req.GameType,
		Duration:   req.Duration,
		MinPlayers: req.MinPlayers,
		Status:     models.GameStatusWaiting,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	a.emit(ctx, session.ID, events.TypeGameSessionCreated, events.GameSessionCreatedPayload{
		SessionID:  session.ID.String(),
		GroupID:    session.GroupID.String(),
		HostID:     session.HostID.String(),
		GameType:   string(session.GameType),
		MinPlayers: session.MinPlayers,
		CreatedAt:  session.CreatedAt,
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Str("group_id", session.GroupID.String()).
		Str("game_type", string(session.GameType)).
		Msg("game session created")
	return session, nil
}

// Join adds a member to a session, or updates their proposed meal if they
// already joined. Joining a session that is already ready does not revert it.
func (a *App) Join(ctx context.Context, req JoinRequest) (*models.GameParticipant, error) {
	if req.ProfileID == uuid.Nil {
		return nil, apperrors.Validation("profile_id is required")
	}

	session, err := a.repo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.GameStatusWaiting && session.Status != models.GameStatusReady {
		return nil, apperrors.Phase("cannot join a game session in status %s", session.Status)
	}

	member, err := a.groups.IsActiveMember(ctx, session.GroupID, req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !member {
		return nil, apperrors.Permission("profile %s is not a member of group %s", req.ProfileID, session.GroupID)
	}

	if req.MealID != nil {
		exists, err := a.meals.MealExists(ctx, *req.MealID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up meal: %w", err)
		}
		if !exists {
			return nil, apperrors.NotFound("meal %s not found", *req.MealID)
		}
	}

	participant, err := a.repo.UpsertParticipant(ctx, UpsertParticipantRecord{
		ID:            uuid.New(),
		GameSessionID: req.SessionID,
		ProfileID:     req.ProfileID,
		MealID:        req.MealID,
		JoinedAt:      a.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert participant: %w", err)
	}

	var mealID *string
	if participant.MealID != nil {
		s := participant.MealID.String()
		mealID = &s
	}
	a.emit(ctx, session.ID, events.TypePlayerJoined, events.PlayerJoinedPayload{
		SessionID: session.ID.String(),
		ProfileID: participant.ProfileID.String(),
		MealID:    mealID,
		JoinedAt:  participant.JoinedAt,
	})

	return participant, nil
}

// MarkPlayerReady toggles a participant's readiness and recomputes the
// session's all-ready state: enough players and every one of them ready.
func (a *App) MarkPlayerReady(ctx context.Context, sessionID, profileID uuid.UUID, isReady bool) (*models.GameSession, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.GameStatusWaiting && session.Status != models.GameStatusReady {
		return nil, apperrors.Phase("cannot change readiness in status %s", session.Status)
	}

	if _, err := a.repo.SetParticipantReady(ctx, sessionID, profileID, isReady); err != nil {
		return nil, err
	}

	participants, err := a.repo.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	allReady := len(participants) >= session.MinPlayers
	for _, p := range participants {
		if !p.IsReady {
			allReady = false
			break
		}
	}

	switch {
	case allReady && session.Status == models.GameStatusWaiting:
		session, err = a.repo.Transition(ctx, TransitionRecord{
			SessionID: sessionID,
			From:      []models.GameSessionStatus{models.GameStatusWaiting},
			To:        models.GameStatusReady,
		})
	case !allReady && !isReady && session.Status == models.GameStatusReady:
		session, err = a.repo.Transition(ctx, TransitionRecord{
			SessionID: sessionID,
			From:      []models.GameSessionStatus{models.GameStatusReady},
			To:        models.GameStatusWaiting,
		})
	}
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindPhase) {
			// Lost a race with another readiness change; the stored state wins.
			session, err = a.repo.GetSession(ctx, sessionID)
		}
		if err != nil {
			return nil, err
		}
	}

	a.emit(ctx, sessionID, events.TypePlayerReady, events.PlayerReadyPayload{
		SessionID: sessionID.String(),
		ProfileID: profileID.String(),
		IsReady:   isReady,
		AllReady:  allReady,
	})

	return session, nil
}

// StartCountdown begins the pre-game countdown. Host only, from ready.
func (a *App) StartCountdown(ctx context.Context, sessionID, hostID uuid.UUID) (*models.GameSession, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperrors.Permission("only the host can start the countdown")
	}

	session, err = a.repo.Transition(ctx, TransitionRecord{
		SessionID: sessionID,
		From:      []models.GameSessionStatus{models.GameStatusReady},
		To:        models.GameStatusCountdown,
	})
	if err != nil {
		return nil, err
	}

	a.emit(ctx, sessionID, events.TypeGameCountdownStarted, events.GameCountdownStartedPayload{
		SessionID: sessionID.String(),
		StartedAt: a.clock.Now(),
	})
	return session, nil
}

// StartPlaying begins the play clock.
func (a *App) StartPlaying(ctx context.Context, sessionID uuid.UUID) (*models.GameSession, error) {
	startTime := a.clock.Now()
	session, err := a.repo.Transition(ctx, TransitionRecord{
		SessionID: sessionID,
		From:      []models.GameSessionStatus{models.GameStatusCountdown},
		To:        models.GameStatusPlaying,
		StartTime: &startTime,
	})
	if err != nil {
		return nil, err
	}

	a.emit(ctx, sessionID, events.TypeGamePlayingStarted, events.GamePlayingStartedPayload{
		SessionID: sessionID.String(),
		StartTime: startTime,
		EndsAt:    startTime.Add(session.Duration),
	})
	return session, nil
}

// EndGameTime stops the play clock and opens the submission window.
func (a *App) EndGameTime(ctx context.Context, sessionID uuid.UUID) (*models.GameSession, error) {
	endTime := a.clock.Now()
	session, err := a.repo.Transition(ctx, TransitionRecord{
		SessionID: sessionID,
		From:      []models.GameSessionStatus{models.GameStatusPlaying},
		To:        models.GameStatusSubmitting,
		EndTime:   &endTime,
	})
	if err != nil {
		return nil, err
	}

	a.emit(ctx, sessionID, events.TypeGameSubmittingStarted, events.GameSubmittingStartedPayload{
		SessionID: sessionID.String(),
		EndTime:   endTime,
	})
	return session, nil
}

// SubmitClickCount records a participant's final click count. Once every
// participant has submitted, the session completes automatically.
func (a *App) SubmitClickCount(ctx context.Context, sessionID, profileID uuid.UUID, clickCount int) (*models.GameParticipant, error) {
	if clickCount < 0 {
		return nil, apperrors.Validation("click_count cannot be negative")
	}

	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.GameStatusPlaying && session.Status != models.GameStatusSubmitting {
		return nil, apperrors.Phase("cannot submit clicks in status %s", session.Status)
	}

	participant, err := a.repo.RecordClickSubmission(ctx, sessionID, profileID, clickCount, a.clock.Now())
	if err != nil {
		return nil, err
	}

	a.emit(ctx, sessionID, events.TypeClickCountSubmitted, events.ClickCountSubmittedPayload{
		SessionID:   sessionID.String(),
		ProfileID:   profileID.String(),
		ClickCount:  clickCount,
		SubmittedAt: *participant.SubmittedAt,
	})

	participants, err := a.repo.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	allSubmitted := len(participants) > 0
	for _, p := range participants {
		if !p.HasSubmitted {
			allSubmitted = false
			break
		}
	}
	if allSubmitted {
		if err := a.completeClicker(ctx, session, participants); err != nil {
			if apperrors.IsKind(err, apperrors.KindPhase) {
				// Someone else completed it first.
				return participant, nil
			}
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to auto-complete game session")
		}
	}

	return participant, nil
}

// ForceComplete completes a submitting session from whatever submissions
// arrived. Host only; requires at least one submission.
func (a *App) ForceComplete(ctx context.Context, sessionID, hostID uuid.UUID) (*models.GameSession, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperrors.Permission("only the host can force-complete the game")
	}
	if session.Status != models.GameStatusSubmitting {
		return nil, apperrors.Phase("cannot force-complete a game in status %s", session.Status)
	}

	participants, err := a.repo.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	submitted := participants[:0:0]
	for _, p := range participants {
		if p.HasSubmitted {
			submitted = append(submitted, p)
		}
	}
	if len(submitted) == 0 {
		return nil, apperrors.Phase("no participants have submitted click counts")
	}

	if err := a.completeClicker(ctx, session, submitted); err != nil {
		return nil, err
	}
	return a.repo.GetSession(ctx, sessionID)
}

func (a *App) completeClicker(ctx context.Context, session *models.GameSession, candidates []models.GameParticipant) error {
	winner := pickClickWinner(candidates)

	endTime := a.clock.Now()
	completed, err := a.repo.Complete(ctx, CompleteRecord{
		SessionID:     session.ID,
		From:          []models.GameSessionStatus{models.GameStatusPlaying, models.GameStatusSubmitting},
		WinnerID:      winner.ProfileID,
		WinningMealID: winner.MealID,
		EndTime:       &endTime,
	})
	if err != nil {
		return err
	}

	a.finishSession(ctx, completed, winner, achievements.EventGameClickerWon)
	return nil
}

// DetermineRouletteWinner previews a roulette outcome without persisting it,
// so the client can run a spin animation that lands on a server-chosen
// participant. Host only.
func (a *App) DetermineRouletteWinner(ctx context.Context, sessionID, hostID uuid.UUID) (*models.GameParticipant, error) {
	_, eligible, err := a.rouletteEligible(ctx, sessionID, hostID)
	if err != nil {
		return nil, err
	}
	winner := eligible[a.picker.Pick(len(eligible))]
	return &winner, nil
}

// CompleteRoulette persists a roulette outcome. If winnerProfileID is set it
// must be an eligible participant (the pre-determined spin result); otherwise
// a winner is picked uniformly at random. Host only.
func (a *App) CompleteRoulette(ctx context.Context, sessionID, hostID uuid.UUID, winnerProfileID *uuid.UUID) (*models.GameSession, error) {
	_, eligible, err := a.rouletteEligible(ctx, sessionID, hostID)
	if err != nil {
		return nil, err
	}

	var winner models.GameParticipant
	if winnerProfileID != nil {
		found := false
		for _, p := range eligible {
			if p.ProfileID == *winnerProfileID {
				winner = p
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.Validation("profile %s is not an eligible roulette participant", *winnerProfileID)
		}
	} else {
		winner = eligible[a.picker.Pick(len(eligible))]
	}

	endTime := a.clock.Now()
	completed, err := a.repo.Complete(ctx, CompleteRecord{
		SessionID:     sessionID,
		From:          models.ActiveGameStatuses,
		WinnerID:      winner.ProfileID,
		WinningMealID: winner.MealID,
		EndTime:       &endTime,
	})
	if err != nil {
		return nil, err
	}

	a.finishSession(ctx, completed, winner, achievements.EventGameRouletteWon)
	return completed, nil
}

func (a *App) rouletteEligible(ctx context.Context, sessionID, hostID uuid.UUID) (*models.GameSession, []models.GameParticipant, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.HostID != hostID {
		return nil, nil, apperrors.Permission("only the host can decide the roulette")
	}
	if session.GameType != models.GameTypeRoulette {
		return nil, nil, apperrors.Validation("session %s is not a roulette game", sessionID)
	}
	if session.Status.IsTerminal() {
		return nil, nil, apperrors.Phase("game session %s is already %s", sessionID, session.Status)
	}

	participants, err := a.repo.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list participants: %w", err)
	}
	eligible := participants[:0:0]
	for _, p := range participants {
		if p.MealID != nil {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, nil, apperrors.Validation("no participants with a proposed meal")
	}
	return session, eligible, nil
}

// Cancel cancels a session. Host only. A roulette game cannot be cancelled
// once any meal has been proposed; a clicker game cannot be cancelled once
// play has started.
func (a *App) Cancel(ctx context.Context, sessionID, hostID uuid.UUID) (*models.GameSession, error) {
	session, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperrors.Permission("only the host can cancel the game")
	}
	if session.Status.IsTerminal() {
		return nil, apperrors.Phase("game session %s is already %s", sessionID, session.Status)
	}

	switch session.GameType {
	case models.GameTypeRoulette:
		participants, err := a.repo.ListParticipants(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to list participants: %w", err)
		}
		for _, p := range participants {
			if p.MealID != nil {
				return nil, apperrors.Phase("cannot cancel a roulette game once a meal has been proposed")
			}
		}
	case models.GameTypeEggClicker:
		if session.Status == models.GameStatusPlaying || session.Status == models.GameStatusSubmitting {
			return nil, apperrors.Phase("cannot cancel a clicker game in status %s", session.Status)
		}
	}

	cancelled, err := a.repo.Transition(ctx, TransitionRecord{
		SessionID: sessionID,
		From:      []models.GameSessionStatus{session.Status},
		To:        models.GameStatusCancelled,
	})
	if err != nil {
		return nil, err
	}

	a.emit(ctx, sessionID, events.TypeGameSessionCancelled, events.GameSessionCancelledPayload{
		SessionID:   sessionID.String(),
		GroupID:     cancelled.GroupID.String(),
		CancelledAt: a.clock.Now(),
	})
	return cancelled, nil
}

// SweepSessions is the scheduler entry point: it ends the play clock of
// clicker games whose duration elapsed and garbage-collects sessions that sat
// idle in a pre-game status past the TTL. Per-session failures are logged and
// never stop the sweep.
func (a *App) SweepSessions(ctx context.Context) error {
	now := a.clock.Now()

	due, err := a.repo.ListPlayingSessionsDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due playing sessions: %w", err)
	}
	for _, session := range due {
		if _, err := a.EndGameTime(ctx, session.ID); err != nil {
			if apperrors.IsKind(err, apperrors.KindPhase) {
				continue
			}
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to auto-end game time")
		}
	}

	idleCutoff := now.Add(-a.cfg.IdleSessionTTL)
	idle, err := a.repo.ListIdleSessions(ctx, []models.GameSessionStatus{
		models.GameStatusWaiting,
		models.GameStatusReady,
		models.GameStatusCountdown,
	}, idleCutoff)
	if err != nil {
		return fmt.Errorf("failed to list idle sessions: %w", err)
	}
	for _, session := range idle {
		// System GC bypasses the host-only and per-type cancel constraints:
		// a dead session would otherwise block its group forever.
		cancelled, err := a.repo.Transition(ctx, TransitionRecord{
			SessionID: session.ID,
			From:      []models.GameSessionStatus{session.Status},
			To:        models.GameStatusCancelled,
		})
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindPhase) {
				continue
			}
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to garbage-collect idle game session")
			continue
		}
		a.emit(ctx, session.ID, events.TypeGameSessionCancelled, events.GameSessionCancelledPayload{
			SessionID:   session.ID.String(),
			GroupID:     cancelled.GroupID.String(),
			CancelledAt: now,
		})
		log.Info().Str("session_id", session.ID.String()).Msg("garbage-collected idle game session")
	}

	return nil
}

// finishSession runs the shared post-completion side effects. The status flip
// already committed; failures here are logged, never propagated.
func (a *App) finishSession(ctx context.Context, session *models.GameSession, winner models.GameParticipant, kind achievements.EventKind) {
	if winner.MealID != nil {
		if err := a.linker.LinkSessionConsumption(ctx, session.ID, session.GroupID, session.HostID, *winner.MealID, models.ConsumptionSourceGame); err != nil {
			log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to link group consumption")
		}
	}

	a.notify(ctx, winner.ProfileID, kind)

	winningMeal := ""
	if winner.MealID != nil {
		winningMeal = winner.MealID.String()
	}
	a.emit(ctx, session.ID, events.TypeGameSessionCompleted, events.GameSessionCompletedPayload{
		SessionID:     session.ID.String(),
		GroupID:       session.GroupID.String(),
		WinnerID:      winner.ProfileID.String(),
		WinningMealID: winningMeal,
		CompletedAt:   a.clock.Now(),
	})

	log.Info().
		Str("session_id", session.ID.String()).
		Str("winner_id", winner.ProfileID.String()).
		Msg("game session completed")
}

// pickClickWinner returns the participant with the most clicks. Ties break
// deterministically: earliest submission first, then lowest profile ID.
func pickClickWinner(participants []models.GameParticipant) models.GameParticipant {
	winner := participants[0]
	for _, p := range participants[1:] {
		if p.ClickCount > winner.ClickCount {
			winner = p
			continue
		}
		if p.ClickCount == winner.ClickCount && submittedBefore(p, winner) {
			winner = p
		}
	}
	return winner
}

func submittedBefore(a, b models.GameParticipant) bool {
	switch {
	case a.SubmittedAt == nil:
		return false
	case b.SubmittedAt == nil:
		return true
	case a.SubmittedAt.Equal(*b.SubmittedAt):
		return a.ProfileID.String() < b.ProfileID.String()
	default:
		return a.SubmittedAt.Before(*b.SubmittedAt)
	}
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

func (a *App) notify(ctx context.Context, profileID uuid.UUID, kind achievements.EventKind) {
	notifyCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := a.notifier.Notify(notifyCtx, profileID, kind); err != nil {
		log.Warn().Err(err).Str("profile_id", profileID.String()).Str("event_kind", string(kind)).Msg("achievement notification failed")
	}
}
