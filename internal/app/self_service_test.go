package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ruleta-service/internal/app"
	"ruleta-service/internal/domain"
	"ruleta-service/internal/infra/memory"
)

const selfCSV = "frase,respuesta\nFotosíntesis,Proceso de las plantas\nMitosis,División celular\n"

func newSelfService() *app.SelfAssessmentService {
	db := memory.NewDatabase()
	return app.NewSelfAssessmentService(db.SelfQuestions(), memory.NewStatsStore(), memory.NewActiveIDCache(time.Minute))
}

func TestSelfAssessmentEvaluations(t *testing.T) {
	ctx := context.Background()
	service := newSelfService()

	if _, err := service.Import(ctx, "tarjetas.csv", strings.NewReader(selfCSV), domain.ImportMerge); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	id, err := service.Spin(ctx)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}
	card, err := service.Get(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if card.Respuesta == "" {
		t.Fatalf("flash card must carry the answer")
	}

	if _, err := service.Answer(ctx, id, "regular"); !errors.Is(err, domain.ErrInvalidEvaluation) {
		t.Fatalf("expected invalid evaluation, got %v", err)
	}

	result, err := service.Answer(ctx, id, "MAL")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if result.Respondida || result.Evaluacion != domain.EvaluationBad {
		t.Fatalf("mal must keep the card active, got %+v", result)
	}

	result, err = service.Answer(ctx, id, "bien")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if !result.Respondida || result.RespuestaCorrecta != card.Respuesta {
		t.Fatalf("unexpected result %+v", result)
	}
	ids, _ := service.ActiveIDs(ctx)
	if len(ids) != 1 {
		t.Fatalf("expected one active card, got %v", ids)
	}

	stats, _ := service.Stats(ctx)
	if stats.TotalRespondidas != 2 || stats.TotalCorrectas != 1 || stats.TotalIncorrectas != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestSelfAssessmentMergeSkipsKnownPhrases(t *testing.T) {
	ctx := context.Background()
	service := newSelfService()

	if _, err := service.Import(ctx, "tarjetas.csv", strings.NewReader(selfCSV), domain.ImportMerge); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	more := selfCSV + "Meiosis,Gametos\n"
	summary, err := service.Import(ctx, "tarjetas.csv", strings.NewReader(more), domain.ImportMerge)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if summary.Importadas != 1 || summary.Omitidas != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	summary, err = service.Import(ctx, "tarjetas.csv", strings.NewReader(selfCSV), domain.ImportReplace)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	counts, _ := service.Count(ctx)
	if summary.Importadas != 2 || counts.Total != 2 {
		t.Fatalf("expected replace to leave 2 cards, got %+v / %+v", summary, counts)
	}
}

type staleCards struct {
	app.SelfQuestionRepository
	seen map[int64]domain.SelfQuestion
}

func (r *staleCards) Get(ctx context.Context, id int64) (domain.SelfQuestion, error) {
	if q, ok := r.seen[id]; ok {
		return q, nil
	}
	q, err := r.SelfQuestionRepository.Get(ctx, id)
	if err == nil {
		r.seen[id] = q
	}
	return q, err
}

func TestSelfAssessmentConcurrentGoodCountsOnce(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDatabase()
	repo := &staleCards{SelfQuestionRepository: db.SelfQuestions(), seen: map[int64]domain.SelfQuestion{}}
	service := app.NewSelfAssessmentService(repo, memory.NewStatsStore(), memory.NewActiveIDCache(time.Minute))

	if _, err := service.Import(ctx, "tarjetas.csv", strings.NewReader(selfCSV), domain.ImportMerge); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	ids, _ := service.ActiveIDs(ctx)
	if len(ids) != 2 {
		t.Fatalf("expected two cards, got %v", ids)
	}
	if _, err := service.Answer(ctx, ids[0], "bien"); err != nil {
		t.Fatalf("first answer failed: %v", err)
	}
	if _, err := service.Answer(ctx, ids[0], "bien"); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered for the racing request, got %v", err)
	}

	stats, _ := service.Stats(ctx)
	if stats.TotalRespondidas != 1 || stats.TotalCorrectas != 1 {
		t.Fatalf("expected a single good evaluation counted, got %+v", stats)
	}
}
