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

// SelfAssessmentService contains the flash-card use cases.
type SelfAssessmentService struct {
	questions SelfQuestionRepository
	stats     StatsStore
	active    ActiveIDCache
	rnd       *randomSource
}

func NewSelfAssessmentService(questions SelfQuestionRepository, stats StatsStore, active ActiveIDCache) *SelfAssessmentService {
	return &SelfAssessmentService{
		questions: questions,
		stats:     stats,
		active:    active,
		rnd:       newRandomSource(),
	}
}

// Import parses a self-assessment CSV. Merging skips cards whose phrase is
// already stored; replacing drops every card and every player assignment.
func (s *SelfAssessmentService) Import(ctx context.Context, filename string, r io.Reader, mode domain.ImportMode) (domain.ImportSummary, error) {
	if err := csvimport.CheckFilename(filename); err != nil {
		return domain.ImportSummary{}, err
	}
	parsed, err := csvimport.ParseSelf(r)
	if err != nil {
		return domain.ImportSummary{}, err
	}

	var stored int
	if mode == domain.ImportReplace {
		stored, err = s.questions.Replace(ctx, parsed.Questions)
	} else {
		mode = domain.ImportMerge
		stored, err = s.questions.Append(ctx, parsed.Questions, true)
	}
	if err != nil {
		return domain.ImportSummary{}, fmt.Errorf("store self questions: %w", err)
	}
	s.invalidate(ctx)

	omitted := parsed.Omitted + len(parsed.Questions) - stored
	batch := uuid.NewString()
	log.Info().
		Str("lote", batch).
		Str("archivo", filename).
		Str("modo", string(mode)).
		Int("importadas", stored).
		Int("omitidas", omitted).
		Msg("preguntas de autoevaluación importadas")

	return domain.ImportSummary{
		Message:    fmt.Sprintf("%d preguntas de autoevaluación importadas exitosamente", stored),
		Importadas: stored,
		Omitidas:   omitted,
		Modo:       mode,
		Lote:       batch,
	}, nil
}

func (s *SelfAssessmentService) Count(ctx context.Context) (domain.Counts, error) {
	return s.questions.Count(ctx)
}

func (s *SelfAssessmentService) ActiveIDs(ctx context.Context) ([]int64, error) {
	return s.active.ActiveIDs(ctx, domain.ModeSelf, s.questions.ActiveIDs)
}

func (s *SelfAssessmentService) Answered(ctx context.Context) ([]domain.AnsweredQuestion, error) {
	return s.questions.Answered(ctx)
}

// Spin draws one active card uniformly at random.
func (s *SelfAssessmentService) Spin(ctx context.Context) (int64, error) {
	ids, err := s.ActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, domain.ErrNoActiveQuestions
	}
	return s.rnd.pick(ids), nil
}

// Get returns an active card, answer included.
func (s *SelfAssessmentService) Get(ctx context.Context, id int64) (domain.FlashCard, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.FlashCard{}, err
	}
	if q.Respondida {
		return domain.FlashCard{}, domain.ErrAlreadyAnswered
	}
	return domain.FlashCard{ID: q.ID, Frase: q.Frase, Respuesta: q.Respuesta}, nil
}

// Answer records the self-reported outcome; only "bien" retires the card.
func (s *SelfAssessmentService) Answer(ctx context.Context, id int64, evaluacion string) (domain.SelfAssessmentResult, error) {
	ev, err := domain.ParseEvaluation(evaluacion)
	if err != nil {
		return domain.SelfAssessmentResult{}, err
	}
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.SelfAssessmentResult{}, err
	}
	if q.Respondida {
		return domain.SelfAssessmentResult{}, domain.ErrAlreadyAnswered
	}

	good := ev == domain.EvaluationGood
	if good {
		if err := s.questions.MarkAnswered(ctx, id); err != nil {
			return domain.SelfAssessmentResult{}, err
		}
		s.invalidate(ctx)
	}
	if _, err := s.stats.Record(ctx, domain.ModeSelf, good); err != nil {
		log.Error().Err(err).Int64("pregunta", id).Msg("could not record statistics")
	}

	return domain.SelfAssessmentResult{
		Evaluacion:        ev,
		Respondida:        good,
		RespuestaCorrecta: q.Respuesta,
	}, nil
}

func (s *SelfAssessmentService) Reset(ctx context.Context) error {
	if err := s.questions.ResetAll(ctx); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *SelfAssessmentService) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.questions.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return n, nil
}

func (s *SelfAssessmentService) Stats(ctx context.Context) (domain.Statistics, error) {
	return s.stats.Get(ctx, domain.ModeSelf)
}

func (s *SelfAssessmentService) ResetStats(ctx context.Context) error {
	return s.stats.Reset(ctx, domain.ModeSelf)
}

func (s *SelfAssessmentService) invalidate(ctx context.Context) {
	if err := s.active.Invalidate(ctx, domain.ModeSelf); err != nil {
		log.Warn().Err(err).Msg("active id cache invalidation failed")
	}
}
