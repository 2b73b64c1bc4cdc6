package memory

import (
	"context"
	"errors"
	"testing"

	"ruleta-service/internal/domain"
)

func TestQuestionRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewDatabase().Questions()

	if err := repo.Upsert(ctx, []domain.Question{
		{ID: 2, Frase: "dos", Respuesta: "FALSO"},
		{ID: 1, Frase: "uno", Respuesta: "VERDADERO", Verdadero: true},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.MarkAnswered(ctx, 1); err != nil {
		t.Fatalf("mark answered: %v", err)
	}

	ids, _ := repo.ActiveIDs(ctx)
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only question 2 active, got %v", ids)
	}
	answered, _ := repo.Answered(ctx)
	if len(answered) != 1 || answered[0].Frase != "uno" {
		t.Fatalf("unexpected answered list %+v", answered)
	}
	counts, _ := repo.Count(ctx)
	if counts != (domain.Counts{Total: 2, Activas: 1, Respondidas: 1}) {
		t.Fatalf("unexpected counts %+v", counts)
	}

	// Re-importing an id reactivates it.
	_ = repo.Upsert(ctx, []domain.Question{{ID: 1, Frase: "uno bis", Respuesta: "FALSO"}})
	q, _ := repo.Get(ctx, 1)
	if q.Respondida || q.Frase != "uno bis" {
		t.Fatalf("expected overwritten active question, got %+v", q)
	}

	if err := repo.Replace(ctx, []domain.Question{{ID: 9, Frase: "nueve"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := repo.Get(ctx, 1); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected replaced question gone, got %v", err)
	}

	n, _ := repo.DeleteAll(ctx)
	if n != 1 {
		t.Fatalf("expected 1 deleted, got %d", n)
	}
}

func TestMarkAnsweredOnlyOnce(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()

	questions := db.Questions()
	_ = questions.Upsert(ctx, []domain.Question{{ID: 1, Frase: "uno", Respuesta: "VERDADERO", Verdadero: true}})
	if err := questions.MarkAnswered(ctx, 1); err != nil {
		t.Fatalf("mark answered: %v", err)
	}
	if err := questions.MarkAnswered(ctx, 1); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	if err := questions.MarkAnswered(ctx, 7); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	cards := db.SelfQuestions()
	_, _ = cards.Append(ctx, []domain.SelfQuestion{{Frase: "Mitosis", Respuesta: "División celular"}}, false)
	ids, _ := cards.ActiveIDs(ctx)
	if len(ids) != 1 {
		t.Fatalf("expected one card, got %v", ids)
	}
	if err := cards.MarkAnswered(ctx, ids[0]); err != nil {
		t.Fatalf("mark answered: %v", err)
	}
	if err := cards.MarkAnswered(ctx, ids[0]); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
}

func TestSelfQuestionAppendSkipsKnownPhrases(t *testing.T) {
	ctx := context.Background()
	repo := NewDatabase().SelfQuestions()

	stored, _ := repo.Append(ctx, []domain.SelfQuestion{
		{Frase: "a", Respuesta: "1"},
		{Frase: "b", Respuesta: "2"},
	}, true)
	if stored != 2 {
		t.Fatalf("expected 2 stored, got %d", stored)
	}
	stored, _ = repo.Append(ctx, []domain.SelfQuestion{
		{Frase: "b", Respuesta: "2"},
		{Frase: "c", Respuesta: "3"},
		{Frase: "c", Respuesta: "3"},
	}, true)
	if stored != 1 {
		t.Fatalf("expected only c stored, got %d", stored)
	}
	ids, _ := repo.ActiveIDs(ctx)
	if len(ids) != 3 || ids[2] != 3 {
		t.Fatalf("expected sequential ids 1..3, got %v", ids)
	}
}

func TestPlayerRepositoryAssignments(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()
	players := db.Players()

	ana, _ := players.Create(ctx, "Ana")
	if _, err := players.Create(ctx, "Ana"); !errors.Is(err, domain.ErrDuplicatePlayer) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	bob, _ := players.Create(ctx, "Bob")

	_ = players.ReplaceAssignments(ctx, []domain.Assignment{
		{PlayerID: ana.ID, QuestionID: 10},
		{PlayerID: ana.ID, QuestionID: 11},
		{PlayerID: bob.ID, QuestionID: 12},
	})

	ana.Puntaje, ana.Consecutivas = 1, 1
	if err := players.ApplyAnswer(ctx, ana, 10, true); err != nil {
		t.Fatalf("apply answer: %v", err)
	}
	active, _ := players.ActiveAssignments(ctx, ana.ID)
	if len(active) != 1 || active[0] != 11 {
		t.Fatalf("expected question 11 pending, got %v", active)
	}
	stored, _ := players.Get(ctx, ana.ID)
	if stored.Puntaje != 1 || stored.Consecutivas != 1 {
		t.Fatalf("expected score persisted, got %+v", stored)
	}

	if err := players.Delete(ctx, ana.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := players.Assignment(ctx, ana.ID, 11); !errors.Is(err, domain.ErrAssignmentNotFound) {
		t.Fatalf("expected assignments removed with player, got %v", err)
	}
	if err := players.Delete(ctx, ana.ID); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeletingSelfQuestionsDropsAssignments(t *testing.T) {
	ctx := context.Background()
	db := NewDatabase()
	_, _ = db.SelfQuestions().Append(ctx, []domain.SelfQuestion{{Frase: "a", Respuesta: "1"}}, false)
	p, _ := db.Players().Create(ctx, "Ana")
	_ = db.Players().ReplaceAssignments(ctx, []domain.Assignment{{PlayerID: p.ID, QuestionID: 1}})

	if _, err := db.SelfQuestions().DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	active, _ := db.Players().ActiveAssignments(ctx, p.ID)
	if len(active) != 0 {
		t.Fatalf("expected no assignments left, got %v", active)
	}
}
