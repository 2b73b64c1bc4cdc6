package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ruleta-service/internal/csvimport"
	"ruleta-service/internal/domain"
)

// QuestionService contains the classic true/false use cases.
type QuestionService struct {
	questions QuestionRepository
	stats     StatsStore
	active    ActiveIDCache
	rnd       *randomSource
}

func NewQuestionService(questions QuestionRepository, stats StatsStore, active ActiveIDCache) *QuestionService {
	return &QuestionService{
		questions: questions,
		stats:     stats,
		active:    active,
		rnd:       newRandomSource(),
	}
}

// Import parses a classic CSV upload and stores it according to mode.
func (s *QuestionService) Import(ctx context.Context, filename string, r io.Reader, mode domain.ImportMode) (domain.ImportSummary, error) {
	if err := csvimport.CheckFilename(filename); err != nil {
		return domain.ImportSummary{}, err
	}
	parsed, err := csvimport.ParseClassic(r)
	if err != nil {
		return domain.ImportSummary{}, err
	}

	if mode == domain.ImportReplace {
		err = s.questions.Replace(ctx, parsed.Questions)
	} else {
		mode = domain.ImportMerge
		err = s.questions.Upsert(ctx, parsed.Questions)
	}
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("store questions: %w", err)
	}
	s.invalidate(ctx)

	batch := uuid.NewString()
	log.Info().
		Str("lote", batch).
		Str("archivo", filename).
		Str("modo", string(mode)).
		Int("importadas", len(parsed.Questions)).
		Int("omitidas", parsed.Omitted).
		Msg("preguntas importadas")

	return domain.ImportSummary{
		Message:    fmt.Sprintf("%d preguntas importadas exitosamente", len(parsed.Questions)),
		Importadas: len(parsed.Questions),
		Omitidas:   parsed.Omitted,
		Modo:       mode,
		Lote:       batch,
	}, nil
}

func (s *QuestionService) Count(ctx context.Context) (domain.Counts, error) {
	return s.questions.Count(ctx)
}

// ActiveIDs lists the questions still on the wheel, in ascending order.
func (s *QuestionService) ActiveIDs(ctx context.Context) ([]int64, error) {
	return s.active.ActiveIDs(ctx, domain.ModeClassic, s.questions.ActiveIDs)
}

func (s *QuestionService) Answered(ctx context.Context) ([]domain.AnsweredQuestion, error) {
	return s.questions.Answered(ctx)
}

// Spin draws one active question uniformly at random.
func (s *QuestionService) Spin(ctx context.Context) (int64, error) {
	ids, err := s.ActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, domain.ErrNoActiveQuestions
	}
	return s.rnd.pick(ids), nil
}

// Get returns an active question without revealing its answer.
func (s *QuestionService) Get(ctx context.Context, id int64) (domain.QuestionView, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if q.Respondida {
		return domain.QuestionView{}, domain.ErrAlreadyAnswered
	}
	return domain.QuestionView{
		ID:       q.ID,
		Frase:    q.Frase,
		Opciones: append([]string(nil), domain.ClassicOptions...),
	}, nil
}

// Answer grades a submission. The question leaves the wheel only when answered correctly.
func (s *QuestionService) Answer(ctx context.Context, id int64, respuesta string) (domain.AnswerResult, error) {
	chosen, ok := domain.ParseTruth(respuesta)
	if !ok {
		return domain.AnswerResult{}, domain.ErrInvalidAnswer
	}
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if q.Respondida {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	correct := chosen == q.Verdadero
	if correct {
		if err := s.questions.MarkAnswered(ctx, id); err != nil {
			return domain.AnswerResult{}, err
		}
		s.invalidate(ctx)
	}
	if _, err := s.stats.Record(ctx, domain.ModeClassic, correct); err != nil {
		log.Error().Err(err).Int64("pregunta", id).Msg("could not record statistics")
	}

	return domain.AnswerResult{Correcto: correct, RespuestaCorrecta: q.Respuesta}, nil
}

// Reset puts every question back on the wheel.
func (s *QuestionService) Reset(ctx context.Context) error {
	if err := s.questions.ResetAll(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *QuestionService) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.questions.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *QuestionService) Stats(ctx context.Context) (domain.Statistics, error) {
	return s.stats.Get(ctx, domain.ModeClassic)
}

func (s *QuestionService) ResetStats(ctx context.Context) error {
	return s.stats.Reset(ctx, domain.ModeClassic)
}

func (s *QuestionService) invalidate(ctx context.Context) {
	if err := s.active.Invalidate(ctx, domain.ModeClassic); err != nil {
		log.Warn().Err(err).Msg("active id cache invalidation failed")
	}
}
