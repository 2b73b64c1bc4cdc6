package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"ruleta-service/internal/domain"
)

// GameService runs the multiplayer mode: roster, question assignment, turns and scoring.
// Turn transitions are serialised by mu; one process owns the game.
type GameService struct {
	players   PlayerRepository
	questions SelfQuestionRepository
	states    GameStateStore
	updates   *Broadcaster
	rnd       *randomSource

	mu sync.Mutex
}

func NewGameService(players PlayerRepository, questions SelfQuestionRepository, states GameStateStore, updates *Broadcaster) *GameService {
	return &GameService{
		players:   players,
		questions: questions,
		states:    states,
		updates:   updates,
		rnd:       newRandomSource(),
	}
}

// CreatePlayer adds a player. During a running game they are queued right away.
func (s *GameService) CreatePlayer(ctx context.Context, nombre string) (domain.Player, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return domain.Player{}, domain.ErrEmptyPlayerName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.players.Create(ctx, nombre)
	if err != nil {
		return domain.Player{}, err
	}
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.Player{}, err
	}
	if state.Iniciado {
		state.ColaPendientes = append(state.ColaPendientes, player.ID)
	}
	if err := s.commitLocked(ctx, state); err != nil {
		return domain.Player{}, err
	}
	log.Info().Int64("jugador", player.ID).Str("nombre", player.Nombre).Msg("jugador creado")
	return player, nil
}

func (s *GameService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.players.List(ctx)
}

func (s *GameService) GetPlayer(ctx context.Context, id int64) (domain.Player, error) {
	return s.players.Get(ctx, id)
}

// DeletePlayer removes the player, their assignments, queue slot and turn.
func (s *GameService) DeletePlayer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.players.Delete(ctx, id); err != nil {
		return err
	}
	state, err := s.states.Load(ctx)
	if err != nil {
		return err
	}
	state.ColaPendientes = without(state.ColaPendientes, id)
	if state.TurnoActual != nil && *state.TurnoActual == id {
		state.TurnoActual = nil
		state.TurnoBloqueado = false
	}
	return s.commitLocked(ctx, state)
}

// Start deals the active self-assessment questions among the players and
// resets every score. The first len(questions)%len(players) players get one extra.
func (s *GameService) Start(ctx context.Context) (domain.GameStartResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.players.List(ctx)
	if err != nil {
		return domain.GameStartResult{}, err
	}
	if len(players) < 2 {
		return domain.GameStartResult{}, domain.ErrNotEnoughPlayers
	}
	active, err := s.questions.ActiveIDs(ctx)
	if err != nil {
		return domain.GameStartResult{}, err
	}
	if len(active) == 0 {
		return domain.GameStartResult{}, domain.ErrNoActiveQuestions
	}

	s.rnd.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })
	assignments := deal(players, active)

	if err := s.players.ReplaceAssignments(ctx, assignments); err != nil {
		return domain.GameStartResult{}, fmt.Errorf("assign questions: %w", err)
	}
	if err := s.players.ResetScores(ctx); err != nil {
		return domain.GameStartResult{}, fmt.Errorf("reset scores: %w", err)
	}

	state := domain.TurnState{Iniciado: true, ColaPendientes: playerIDs(players)}
	if err := s.commitLocked(ctx, state); err != nil {
		return domain.GameStartResult{}, err
	}
	log.Info().Int("jugadores", len(players)).Int("preguntas", len(active)).Msg("juego iniciado")

	return domain.GameStartResult{
		Message:            "Juego iniciado",
		Jugadores:          len(players),
		PreguntasAsignadas: len(active),
	}, nil
}

// State returns the turn state together with the current roster.
func (s *GameService) State(ctx context.Context) (domain.GameState, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.GameState{}, err
	}
	return s.snapshot(ctx, state)
}

// SelectNextPlayer draws the next player from the pending queue and locks the turn.
// Once everybody has played the queue refills with the whole roster.
func (s *GameService) SelectNextPlayer(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return 0, err
	}
	if state.TurnoBloqueado {
		return 0, domain.ErrTurnInProgress
	}
	if len(state.ColaPendientes) == 0 {
		return 0, domain.ErrNoPendingPlayers
	}

	selected := s.rnd.pick(state.ColaPendientes)
	state.ColaPendientes = without(state.ColaPendientes, selected)
	state.TurnoActual = &selected
	state.TurnoBloqueado = true

	if len(state.ColaPendientes) == 0 {
		players, err := s.players.List(ctx)
		if err != nil {
			return 0, err
		}
		state.ColaPendientes = playerIDs(players)
	}
	if err := s.commitLocked(ctx, state); err != nil {
		return 0, err
	}
	log.Info().Int64("jugador", selected).Msg("turno asignado")
	return selected, nil
}

// EndTurn releases the turn lock.
func (s *GameService) EndTurn(ctx context.Context) (domain.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.GameState{}, err
	}
	state.TurnoActual = nil
	state.TurnoBloqueado = false
	if err := s.commitLocked(ctx, state); err != nil {
		return domain.GameState{}, err
	}
	return s.snapshot(ctx, state)
}

// Reset reopens every assignment, zeroes scores and refills the queue.
func (s *GameService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.players.ResetAssignments(ctx); err != nil {
		return err
	}
	if err := s.players.ResetScores(ctx); err != nil {
		return err
	}
	state, err := s.states.Load(ctx)
	if err != nil {
		return err
	}
	players, err := s.players.List(ctx)
	if err != nil {
		return err
	}
	state.TurnoActual = nil
	state.TurnoBloqueado = false
	state.ColaPendientes = playerIDs(players)
	return s.commitLocked(ctx, state)
}

// PlayerActiveQuestions lists the player's assigned, unanswered questions.
func (s *GameService) PlayerActiveQuestions(ctx context.Context, playerID int64) ([]int64, error) {
	return s.players.ActiveAssignments(ctx, playerID)
}

// Answer scores a self-reported answer for a player.
// "bien" earns 1 point plus the current streak and closes the assignment;
// "mal" costs one point (never below zero), breaks the streak and keeps the question open.
// Answering ends the player's turn.
func (s *GameService) Answer(ctx context.Context, playerID, questionID int64, evaluacion string) (domain.PlayerAnswerResult, error) {
	ev, err := domain.ParseEvaluation(evaluacion)
	if err != nil {
		return domain.PlayerAnswerResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.PlayerAnswerResult{}, err
	}
	if state.TurnoBloqueado && (state.TurnoActual == nil || *state.TurnoActual != playerID) {
		return domain.PlayerAnswerResult{}, domain.ErrNotPlayersTurn
	}

	assignment, err := s.players.Assignment(ctx, playerID, questionID)
	if err != nil {
		return domain.PlayerAnswerResult{}, err
	}
	if assignment.Respondida {
		return domain.PlayerAnswerResult{}, domain.ErrAlreadyAnswered
	}
	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return domain.PlayerAnswerResult{}, err
	}
	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return domain.PlayerAnswerResult{}, err
	}

	delta := scoreAnswer(&player, ev)
	answered := ev == domain.EvaluationGood
	if err := s.players.ApplyAnswer(ctx, player, questionID, answered); err != nil {
		return domain.PlayerAnswerResult{}, fmt.Errorf("apply answer: %w", err)
	}

	if state.TurnoBloqueado {
		state.TurnoActual = nil
		state.TurnoBloqueado = false
	}
	if err := s.commitLocked(ctx, state); err != nil {
		return domain.PlayerAnswerResult{}, err
	}

	return domain.PlayerAnswerResult{
		Evaluacion:        ev,
		PuntosGanados:     delta,
		PuntajeTotal:      player.Puntaje,
		Consecutivas:      player.Consecutivas,
		Respondida:        answered,
		RespuestaCorrecta: question.Respuesta,
	}, nil
}

// Scoreboard ranks players by score, then streak, then name.
func (s *GameService) Scoreboard(ctx context.Context) ([]domain.ScoreboardEntry, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Puntaje != players[j].Puntaje {
			return players[i].Puntaje > players[j].Puntaje
		}
		if players[i].Consecutivas != players[j].Consecutivas {
			return players[i].Consecutivas > players[j].Consecutivas
		}
		return players[i].Nombre < players[j].Nombre
	})
	entries := make([]domain.ScoreboardEntry, len(players))
	for i, p := range players {
		entries[i] = domain.ScoreboardEntry{Posicion: i + 1, Player: p}
	}
	return entries, nil
}

// Subscribe streams game state snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(ctx context.Context) (<-chan domain.GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.State(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.updates.Subscribe(current)
	return ch, cancel, nil
}

// commitLocked saves state and publishes the resulting snapshot. Callers hold mu.
func (s *GameService) commitLocked(ctx context.Context, state domain.TurnState) error {
	if err := s.states.Save(ctx, state); err != nil {
		return fmt.Errorf("save game state: %w", err)
	}
	snapshot, err := s.snapshot(ctx, state)
	if err != nil {
		log.Warn().Err(err).Msg("game state saved but snapshot failed")
		return nil
	}
	s.updates.Publish(snapshot)
	return nil
}

func (s *GameService) snapshot(ctx context.Context, state domain.TurnState) (domain.GameState, error) {
	players, err := s.players.List(ctx)
	if err != nil {
		return domain.GameState{}, err
	}
	out := domain.GameState{TurnState: state.Clone(), Jugadores: players}
	if out.ColaPendientes == nil {
		out.ColaPendientes = []int64{}
	}
	if out.Jugadores == nil {
		out.Jugadores = []domain.Player{}
	}
	return out, nil
}

// scoreAnswer mutates the player's score and streak and returns the score delta.
func scoreAnswer(player *domain.Player, ev domain.Evaluation) int {
	if ev == domain.EvaluationGood {
		gained := 1 + player.Consecutivas
		player.Puntaje += gained
		player.Consecutivas++
		return gained
	}
	player.Consecutivas = 0
	if player.Puntaje > 0 {
		player.Puntaje--
		return -1
	}
	return 0
}

// deal hands out questions in order: each player gets len/players, the first
// len%players players one more.
func deal(players []domain.Player, questions []int64) []domain.Assignment {
	per := len(questions) / len(players)
	extra := len(questions) % len(players)

	assignments := make([]domain.Assignment, 0, len(questions))
	idx := 0
	for i, p := range players {
		n := per
		if i < extra {
			n++
		}
		for j := 0; j < n; j++ {
			assignments = append(assignments, domain.Assignment{PlayerID: p.ID, QuestionID: questions[idx]})
			idx++
		}
	}
	return assignments
}

func playerIDs(players []domain.Player) []int64 {
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func without(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
