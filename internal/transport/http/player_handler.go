package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ruleta-service/internal/app"
	"ruleta-service/internal/domain"
)

// PlayerHandler serves the roster, turn and scoring routes under /api/jugadores.
type PlayerHandler struct {
	game *app.GameService
}

func NewPlayerHandler(game *app.GameService) *PlayerHandler {
	return &PlayerHandler{game: game}
}

func (h *PlayerHandler) Mount(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/puntajes", h.scoreboard)

	r.Route("/juego", func(r chi.Router) {
		r.Post("/iniciar", h.start)
		r.Get("/estado", h.state)
		r.Post("/seleccionar_jugador", h.selectNext)
		r.Post("/terminar_turno", h.endTurn)
		r.Post("/reiniciar", h.reset)
	})

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Get("/preguntas/activas", h.activeQuestions)
		r.Post("/preguntas/{pid}/responder", h.answer)
	})
}

type createPlayerRequest struct {
	Nombre string `json:"nombre"`
}

func (h *PlayerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	player, err := h.game.CreatePlayer(r.Context(), req.Nombre)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *PlayerHandler) list(w http.ResponseWriter, r *http.Request) {
	players, err := h.game.ListPlayers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if players == nil {
		players = []domain.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *PlayerHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	player, err := h.game.GetPlayer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *PlayerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.game.DeletePlayer(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Jugador eliminado"})
}

func (h *PlayerHandler) start(w http.ResponseWriter, r *http.Request) {
	result, err := h.game.Start(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PlayerHandler) state(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.State(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *PlayerHandler) selectNext(w http.ResponseWriter, r *http.Request) {
	id, err := h.game.SelectNextPlayer(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"jugador_seleccionado": id})
}

func (h *PlayerHandler) endTurn(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.EndTurn(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *PlayerHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.game.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Juego reiniciado"})
}

func (h *PlayerHandler) scoreboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.game.Scoreboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ScoreboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *PlayerHandler) activeQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.game.GetPlayer(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	ids, err := h.game.PlayerActiveQuestions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"activas": nonNil(ids)})
}

type playerAnswerRequest struct {
	Evaluacion string `json:"evaluacion"`
}

func (h *PlayerHandler) answer(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	questionID, err := pathID(r, "pid")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req playerAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.game.Answer(r.Context(), playerID, questionID, req.Evaluacion)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
