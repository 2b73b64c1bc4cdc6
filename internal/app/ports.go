package app

import (
	"context"

	"ruleta-service/internal/domain"
)

// QuestionRepository stores classic questions (in-memory, Postgres, etc).
type QuestionRepository interface {
	// Upsert inserts or overwrites by id; overwritten questions become active again.
	Upsert(ctx context.Context, questions []domain.Question) error
	// Replace drops every stored question before inserting.
	Replace(ctx context.Context, questions []domain.Question) error
	Get(ctx context.Context, id int64) (domain.Question, error)
	ActiveIDs(ctx context.Context) ([]int64, error)
	Answered(ctx context.Context) ([]domain.AnsweredQuestion, error)
	// MarkAnswered fails with ErrAlreadyAnswered unless it flips the flag itself.
	MarkAnswered(ctx context.Context, id int64) error
	ResetAll(ctx context.Context) error
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (domain.Counts, error)
}

// SelfQuestionRepository stores self-assessment flash cards.
type SelfQuestionRepository interface {
	// Append assigns ids and stores the cards. With skipExisting, cards whose
	// phrase is already stored (or repeated earlier in the same call) are skipped.
	Append(ctx context.Context, questions []domain.SelfQuestion, skipExisting bool) (int, error)
	// Replace drops every card, and with them every player assignment.
	Replace(ctx context.Context, questions []domain.SelfQuestion) (int, error)
	Get(ctx context.Context, id int64) (domain.SelfQuestion, error)
	ActiveIDs(ctx context.Context) ([]int64, error)
	Answered(ctx context.Context) ([]domain.AnsweredQuestion, error)
	// MarkAnswered fails with ErrAlreadyAnswered unless it flips the flag itself.
	MarkAnswered(ctx context.Context, id int64) error
	ResetAll(ctx context.Context) error
	DeleteAll(ctx context.Context) (int, error)
	Count(ctx context.Context) (domain.Counts, error)
}

// PlayerRepository stores the roster and the per-game question assignments.
type PlayerRepository interface {
	Create(ctx context.Context, nombre string) (domain.Player, error)
	List(ctx context.Context) ([]domain.Player, error)
	Get(ctx context.Context, id int64) (domain.Player, error)
	// Delete removes the player and their assignments.
	Delete(ctx context.Context, id int64) error
	ResetScores(ctx context.Context) error
	ReplaceAssignments(ctx context.Context, assignments []domain.Assignment) error
	ResetAssignments(ctx context.Context) error
	Assignment(ctx context.Context, playerID, questionID int64) (domain.Assignment, error)
	ActiveAssignments(ctx context.Context, playerID int64) ([]int64, error)
	// ApplyAnswer stores the new score and streak and, when answered is set,
	// closes the assignment, atomically.
	ApplyAnswer(ctx context.Context, player domain.Player, questionID int64, answered bool) error
}

// StatsStore keeps the running answer counters per mode.
type StatsStore interface {
	Record(ctx context.Context, mode domain.Mode, correct bool) (domain.Statistics, error)
	Get(ctx context.Context, mode domain.Mode) (domain.Statistics, error)
	Reset(ctx context.Context, mode domain.Mode) error
}

// ActiveIDLoader reads the active ids from the backing repository.
type ActiveIDLoader func(ctx context.Context) ([]int64, error)

// ActiveIDCache fronts the wheel's active-id listing.
type ActiveIDCache interface {
	ActiveIDs(ctx context.Context, mode domain.Mode, load ActiveIDLoader) ([]int64, error)
	Invalidate(ctx context.Context, mode domain.Mode) error
}

// GameStateStore persists the turn state between requests.
type GameStateStore interface {
	// Load returns the zero state when nothing was saved yet.
	Load(ctx context.Context) (domain.TurnState, error)
	Save(ctx context.Context, state domain.TurnState) error
}
