package domain

import "strings"

// Mode identifies which question bank an operation acts on.
type Mode string

const (
	ModeClassic Mode = "clasico"
	ModeSelf    Mode = "autoevaluacion"
)

// ImportMode decides what happens to existing questions on a CSV re-import.
type ImportMode string

const (
	ImportMerge   ImportMode = "combinar"
	ImportReplace ImportMode = "reemplazar"
)

// ParseImportMode accepts the wire value; empty means merge.
func ParseImportMode(raw string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ImportMerge:
		return ImportMerge, nil
	case ImportReplace:
		return ImportReplace, nil
	}
	return "", ErrInvalidImportMode
}

const (
	TruthTrue  = "VERDADERO"
	TruthFalse = "FALSO"
)

// ClassicOptions are offered for every classic question.
var ClassicOptions = []string{TruthTrue, TruthFalse}

// ParseTruth reads the first word of an answer as VERDADERO or FALSO.
// Case and trailing punctuation are ignored. ok is false for anything else.
func ParseTruth(text string) (value bool, ok bool) {
	fields := strings.Fields(strings.ToUpper(text))
	if len(fields) == 0 {
		return false, false
	}
	switch strings.TrimRight(fields[0], ".,;:") {
	case TruthTrue:
		return true, true
	case TruthFalse:
		return false, true
	}
	return false, false
}

// Question is a classic true/false question.
type Question struct {
	ID         int64  `json:"id"`
	Frase      string `json:"frase"`
	Respuesta  string `json:"respuesta"`
	Verdadero  bool   `json:"verdadero"`
	Respondida bool   `json:"respondida"`
}

// SelfQuestion is a flash card for self-assessment.
type SelfQuestion struct {
	ID         int64  `json:"id"`
	Frase      string `json:"frase"`
	Respuesta  string `json:"respuesta"`
	Respondida bool   `json:"respondida"`
}

// AnsweredQuestion is what the statistics panels list.
type AnsweredQuestion struct {
	Frase     string `json:"frase"`
	Respuesta string `json:"respuesta"`
}

// QuestionView hides the answer of a classic question.
type QuestionView struct {
	ID       int64    `json:"id"`
	Frase    string   `json:"frase"`
	Opciones []string `json:"opciones"`
}

// FlashCard is a self-assessment question with its answer.
type FlashCard struct {
	ID        int64  `json:"id"`
	Frase     string `json:"frase"`
	Respuesta string `json:"respuesta"`
}

// AnswerResult is returned for every classic submission.
type AnswerResult struct {
	Correcto          bool   `json:"correcto"`
	RespuestaCorrecta string `json:"respuesta_correcta"`
}

// Evaluation is the self-reported outcome of a flash card.
type Evaluation string

const (
	EvaluationGood Evaluation = "bien"
	EvaluationBad  Evaluation = "mal"
)

func ParseEvaluation(raw string) (Evaluation, error) {
	switch Evaluation(strings.ToLower(strings.TrimSpace(raw))) {
	case EvaluationGood:
		return EvaluationGood, nil
	case EvaluationBad:
		return EvaluationBad, nil
	}
	return "", ErrInvalidEvaluation
}

// SelfAssessmentResult is returned for every self-assessment submission.
type SelfAssessmentResult struct {
	Evaluacion        Evaluation `json:"evaluacion"`
	Respondida        bool       `json:"respondida"`
	RespuestaCorrecta string     `json:"respuesta_correcta"`
}

// Counts summarises a question bank. Total is always Activas + Respondidas.
type Counts struct {
	Total       int `json:"total"`
	Activas     int `json:"activas"`
	Respondidas int `json:"respondidas"`
}

// Statistics are the running answer counters of one mode.
type Statistics struct {
	TotalRespondidas int64 `json:"total_respondidas"`
	TotalCorrectas   int64 `json:"total_correctas"`
	TotalIncorrectas int64 `json:"total_incorrectas"`
}

// Record counts one answer.
func (s Statistics) Record(correct bool) Statistics {
	s.TotalRespondidas++
	if correct {
		s.TotalCorrectas++
	} else {
		s.TotalIncorrectas++
	}
	return s
}

// ImportSummary describes a finished CSV import.
type ImportSummary struct {
	Message    string     `json:"message"`
	Importadas int        `json:"importadas"`
	Omitidas   int        `json:"omitidas"`
	Modo       ImportMode `json:"modo"`
	Lote       string     `json:"lote"`
}

// Player is a participant of the multiplayer game.
type Player struct {
	ID           int64  `json:"id"`
	Nombre       string `json:"nombre"`
	Puntaje      int    `json:"puntaje"`
	Consecutivas int    `json:"consecutivas"`
}

// Assignment binds a self question to a player for the running game.
type Assignment struct {
	PlayerID   int64 `json:"jugador_id"`
	QuestionID int64 `json:"pregunta_id"`
	Respondida bool  `json:"respondida"`
}

// TurnState is the server-owned part of the game: who is queued and who plays.
type TurnState struct {
	Iniciado       bool    `json:"iniciado"`
	TurnoActual    *int64  `json:"turno_actual"`
	TurnoBloqueado bool    `json:"turno_bloqueado"`
	ColaPendientes []int64 `json:"cola_pendientes"`
}

// Clone returns a copy that shares no memory with t.
func (t TurnState) Clone() TurnState {
	out := t
	if t.TurnoActual != nil {
		id := *t.TurnoActual
		out.TurnoActual = &id
	}
	out.ColaPendientes = append([]int64(nil), t.ColaPendientes...)
	return out
}

// GameState is the turn state together with the current roster.
type GameState struct {
	TurnState
	Jugadores []Player `json:"jugadores"`
}

// GameStartResult is returned when a game begins.
type GameStartResult struct {
	Message            string `json:"message"`
	Jugadores          int    `json:"jugadores"`
	PreguntasAsignadas int    `json:"preguntas_asignadas"`
}

// PlayerAnswerResult is returned for every multiplayer submission.
type PlayerAnswerResult struct {
	Evaluacion        Evaluation `json:"evaluacion"`
	PuntosGanados     int        `json:"puntos_ganados"`
	PuntajeTotal      int        `json:"puntaje_total"`
	Consecutivas      int        `json:"consecutivas"`
	Respondida        bool       `json:"respondida"`
	RespuestaCorrecta string     `json:"respuesta_correcta"`
}

// ScoreboardEntry is one ranked row of the scoreboard.
type ScoreboardEntry struct {
	Posicion int `json:"posicion"`
	Player
}
