package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestionNotFound is returned when a question id is unknown.
	ErrQuestionNotFound = errors.New("pregunta no encontrada")
	// ErrAlreadyAnswered is returned when acting on a question that is no longer active.
	ErrAlreadyAnswered = errors.New("pregunta ya respondida")
	// ErrNoActiveQuestions is returned when the wheel or a game needs active questions.
	ErrNoActiveQuestions = errors.New("no hay preguntas activas")
	// ErrInvalidFile rejects uploads that are not CSV files.
	ErrInvalidFile = errors.New("el archivo debe ser un CSV")
	// ErrInvalidCSV wraps every content error found while parsing an upload.
	ErrInvalidCSV = errors.New("csv inválido")

	ErrInvalidImportMode = errors.New("modo de importación debe ser 'combinar' o 'reemplazar'")
	ErrInvalidEvaluation = errors.New("evaluación debe ser 'bien' o 'mal'")
	ErrInvalidAnswer     = errors.New("respuesta debe ser 'VERDADERO' o 'FALSO'")

	ErrPlayerNotFound     = errors.New("jugador no encontrado")
	ErrEmptyPlayerName    = errors.New("nombre no puede estar vacío")
	ErrDuplicatePlayer    = errors.New("ya existe un jugador con ese nombre")
	ErrNotEnoughPlayers   = errors.New("se necesitan al menos 2 jugadores")
	ErrNoPendingPlayers   = errors.New("no hay jugadores pendientes")
	ErrAssignmentNotFound = errors.New("pregunta no asignada a este jugador")
	// ErrTurnInProgress blocks a new draw until the current player finishes.
	ErrTurnInProgress = errors.New("turno en progreso")
	// ErrNotPlayersTurn rejects answers from anyone but the turn holder.
	ErrNotPlayersTurn = errors.New("no es el turno de este jugador")
)

// ImportError pinpoints the CSV line that made an import fail.
type ImportError struct {
	Line   int
	Reason string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("línea %d: %s", e.Line, e.Reason)
}

func (e *ImportError) Unwrap() error {
	return ErrInvalidCSV
}
