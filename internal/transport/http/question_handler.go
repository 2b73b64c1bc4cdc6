package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ruleta-service/internal/app"
	"ruleta-service/internal/domain"
)

const maxUploadBytes = 10 << 20

// questionBank is the part of the classic and self-assessment services that
// both route groups expose the same way.
type questionBank interface {
	Import(ctx context.Context, filename string, r io.Reader, mode domain.ImportMode) (domain.ImportSummary, error)
	Count(ctx context.Context) (domain.Counts, error)
	ActiveIDs(ctx context.Context) ([]int64, error)
	Answered(ctx context.Context) ([]domain.AnsweredQuestion, error)
	Spin(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
	DeleteAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (domain.Statistics, error)
	ResetStats(ctx context.Context) error
}

type bankHandler struct {
	bank questionBank
	noun string
}

func (h *bankHandler) mount(r chi.Router) {
	r.Post("/importar_csv", h.importCSV)
	r.Get("/contar_preguntas", h.count)
	r.Delete("/eliminar_todas_preguntas", h.deleteAll)
	r.Post("/reiniciar_preguntas", h.reset)
	r.Get("/preguntas/activas", h.active)
	r.Get("/preguntas/respondidas", h.answered)
	r.Get("/preguntas/girar", h.spin)
	r.Get("/estadisticas", h.stats)
	r.Post("/estadisticas/reiniciar", h.resetStats)
}

func (h *bankHandler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequestError{detail: "se requiere un archivo CSV en el campo 'file'"})
		return
	}
	defer file.Close()

	mode, err := domain.ParseImportMode(r.FormValue("modo"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.bank.Import(r.Context(), header.Filename, file, mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *bankHandler) count(w http.ResponseWriter, r *http.Request) {
	counts, err := h.bank.Count(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *bankHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.bank.DeleteAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message    string `json:"message"`
		Eliminadas int    `json:"eliminadas"`
	}{fmt.Sprintf("Se eliminaron %d %s", n, h.noun), n})
}

func (h *bankHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Todas las " + h.noun + " han sido reiniciadas"})
}

func (h *bankHandler) active(w http.ResponseWriter, r *http.Request) {
	ids, err := h.bank.ActiveIDs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"activas": nonNil(ids)})
}

func (h *bankHandler) answered(w http.ResponseWriter, r *http.Request) {
	done, err := h.bank.Answered(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if done == nil {
		done = []domain.AnsweredQuestion{}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.AnsweredQuestion{"respondidas": done})
}

func (h *bankHandler) spin(w http.ResponseWriter, r *http.Request) {
	id, err := h.bank.Spin(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *bankHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bank.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *bankHandler) resetStats(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.ResetStats(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Estadísticas reiniciadas"})
}

// QuestionHandler serves the classic true/false routes under /api.
type QuestionHandler struct {
	bankHandler
	service *app.QuestionService
}

func NewQuestionHandler(service *app.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		bankHandler: bankHandler{bank: service, noun: "preguntas"},
		service:     service,
	}
}

func (h *QuestionHandler) Mount(r chi.Router) {
	h.mount(r)
	r.Get("/preguntas/{id}", h.get)
	r.Post("/preguntas/responder", h.answer)
}

func (h *QuestionHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	ID        int64  `json:"id"`
	Respuesta string `json:"respuesta"`
}

func (h *QuestionHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.Answer(r.Context(), req.ID, req.Respuesta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SelfAssessmentHandler serves the flash-card routes under /api/autoevaluacion.
type SelfAssessmentHandler struct {
	bankHandler
	service *app.SelfAssessmentService
}

func NewSelfAssessmentHandler(service *app.SelfAssessmentService) *SelfAssessmentHandler {
	return &SelfAssessmentHandler{
		bankHandler: bankHandler{bank: service, noun: "preguntas de autoevaluación"},
		service:     service,
	}
}

func (h *SelfAssessmentHandler) Mount(r chi.Router) {
	h.mount(r)
	r.Get("/preguntas/{id}", h.get)
	r.Post("/preguntas/responder", h.answer)
}

func (h *SelfAssessmentHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	card, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type evaluationRequest struct {
	ID         int64  `json:"id"`
	Evaluacion string `json:"evaluacion"`
}

func (h *SelfAssessmentHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.service.Answer(r.Context(), req.ID, req.Evaluacion)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
