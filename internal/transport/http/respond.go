package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"ruleta-service/internal/domain"
)

type errorBody struct {
	Detail string `json:"detail"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		detail = "error interno del servidor"
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrAssignmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTurnInProgress),
		errors.Is(err, domain.ErrNotPlayersTurn):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrNoActiveQuestions),
		errors.Is(err, domain.ErrInvalidFile),
		errors.Is(err, domain.ErrInvalidCSV),
		errors.Is(err, domain.ErrInvalidImportMode),
		errors.Is(err, domain.ErrInvalidEvaluation),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrEmptyPlayerName),
		errors.Is(err, domain.ErrDuplicatePlayer),
		errors.Is(err, domain.ErrNotEnoughPlayers),
		errors.Is(err, domain.ErrNoPendingPlayers),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errBadRequest marks malformed request bodies and path parameters.
var errBadRequest = errors.New("solicitud inválida")

type badRequestError struct {
	detail string
}

func (e badRequestError) Error() string { return e.detail }
func (e badRequestError) Unwrap() error { return errBadRequest }

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequestError{detail: "JSON inválido"}
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, badRequestError{detail: "identificador inválido: " + chi.URLParam(r, name)}
	}
	return id, nil
}
