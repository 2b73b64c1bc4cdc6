package memory

import (
	"context"
	"sort"
	"sync"

	"ruleta-service/internal/domain"
)

// Database is an in-process stand-in for the Postgres schema. The three
// repository views share one lock so cross-table operations stay atomic.
type Database struct {
	mu sync.RWMutex

	questions     map[int64]domain.Question
	selfQuestions map[int64]domain.SelfQuestion
	nextSelfID    int64
	players       map[int64]domain.Player
	nextPlayerID  int64
	assignments   map[assignmentKey]bool
}

type assignmentKey struct {
	player, question int64
}

func NewDatabase() *Database {
	return &Database{
		questions:     make(map[int64]domain.Question),
		selfQuestions: make(map[int64]domain.SelfQuestion),
		players:       make(map[int64]domain.Player),
		assignments:   make(map[assignmentKey]bool),
	}
}

// Questions returns the classic question repository.
func (d *Database) Questions() *QuestionRepository { return &QuestionRepository{db: d} }

// SelfQuestions returns the self-assessment repository.
func (d *Database) SelfQuestions() *SelfQuestionRepository { return &SelfQuestionRepository{db: d} }

// Players returns the roster and assignment repository.
func (d *Database) Players() *PlayerRepository { return &PlayerRepository{db: d} }

// QuestionRepository implements app.QuestionRepository.
type QuestionRepository struct {
	db *Database
}

func (r *QuestionRepository) Upsert(_ context.Context, questions []domain.Question) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.upsertLocked(questions)
	return nil
}

func (r *QuestionRepository) Replace(_ context.Context, questions []domain.Question) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.questions = make(map[int64]domain.Question, len(questions))
	r.db.upsertLocked(questions)
	return nil
}

func (d *Database) upsertLocked(questions []domain.Question) {
	for _, q := range questions {
		q.Respondida = false
		d.questions[q.ID] = q
	}
}

func (r *QuestionRepository) Get(_ context.Context, id int64) (domain.Question, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q, ok := r.db.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (r *QuestionRepository) ActiveIDs(_ context.Context) ([]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := make([]int64, 0, len(r.db.questions))
	for id, q := range r.db.questions {
		if !q.Respondida {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r *QuestionRepository) Answered(_ context.Context) ([]domain.AnsweredQuestion, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := make([]int64, 0)
	for id, q := range r.db.questions {
		if q.Respondida {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	out := make([]domain.AnsweredQuestion, len(ids))
	for i, id := range ids {
		q := r.db.questions[id]
		out[i] = domain.AnsweredQuestion{Frase: q.Frase, Respuesta: q.Respuesta}
	}
	return out, nil
}

func (r *QuestionRepository) MarkAnswered(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	q, ok := r.db.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if q.Respondida {
		return domain.ErrAlreadyAnswered
	}
	q.Respondida = true
	r.db.questions[id] = q
	return nil
}

func (r *QuestionRepository) ResetAll(_ context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, q := range r.db.questions {
		q.Respondida = false
		r.db.questions[id] = q
	}
	return nil
}

func (r *QuestionRepository) DeleteAll(_ context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := len(r.db.questions)
	r.db.questions = make(map[int64]domain.Question)
	return n, nil
}

func (r *QuestionRepository) Count(_ context.Context) (domain.Counts, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var c domain.Counts
	for _, q := range r.db.questions {
		c.Total++
		if q.Respondida {
			c.Respondidas++
		} else {
			c.Activas++
		}
	}
	return c, nil
}

// SelfQuestionRepository implements app.SelfQuestionRepository.
type SelfQuestionRepository struct {
	db *Database
}

func (r *SelfQuestionRepository) Append(_ context.Context, questions []domain.SelfQuestion, skipExisting bool) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.appendSelfLocked(questions, skipExisting), nil
}

func (r *SelfQuestionRepository) Replace(_ context.Context, questions []domain.SelfQuestion) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.selfQuestions = make(map[int64]domain.SelfQuestion, len(questions))
	r.db.assignments = make(map[assignmentKey]bool)
	return r.db.appendSelfLocked(questions, false), nil
}

func (d *Database) appendSelfLocked(questions []domain.SelfQuestion, skipExisting bool) int {
	known := make(map[string]struct{})
	if skipExisting {
		for _, q := range d.selfQuestions {
			known[q.Frase] = struct{}{}
		}
	}
	stored := 0
	for _, q := range questions {
		if skipExisting {
			if _, dup := known[q.Frase]; dup {
				continue
			}
			known[q.Frase] = struct{}{}
		}
		d.nextSelfID++
		q.ID = d.nextSelfID
		q.Respondida = false
		d.selfQuestions[q.ID] = q
		stored++
	}
	return stored
}

func (r *SelfQuestionRepository) Get(_ context.Context, id int64) (domain.SelfQuestion, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	q, ok := r.db.selfQuestions[id]
	if !ok {
		return domain.SelfQuestion{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (r *SelfQuestionRepository) ActiveIDs(_ context.Context) ([]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := make([]int64, 0, len(r.db.selfQuestions))
	for id, q := range r.db.selfQuestions {
		if !q.Respondida {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r *SelfQuestionRepository) Answered(_ context.Context) ([]domain.AnsweredQuestion, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := make([]int64, 0)
	for id, q := range r.db.selfQuestions {
		if q.Respondida {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	out := make([]domain.AnsweredQuestion, len(ids))
	for i, id := range ids {
		q := r.db.selfQuestions[id]
		out[i] = domain.AnsweredQuestion{Frase: q.Frase, Respuesta: q.Respuesta}
	}
	return out, nil
}

func (r *SelfQuestionRepository) MarkAnswered(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	q, ok := r.db.selfQuestions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	if q.Respondida {
		return domain.ErrAlreadyAnswered
	}
	q.Respondida = true
	r.db.selfQuestions[id] = q
	return nil
}

func (r *SelfQuestionRepository) ResetAll(_ context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, q := range r.db.selfQuestions {
		q.Respondida = false
		r.db.selfQuestions[id] = q
	}
	return nil
}

func (r *SelfQuestionRepository) DeleteAll(_ context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := len(r.db.selfQuestions)
	r.db.selfQuestions = make(map[int64]domain.SelfQuestion)
	r.db.assignments = make(map[assignmentKey]bool)
	return n, nil
}

func (r *SelfQuestionRepository) Count(_ context.Context) (domain.Counts, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var c domain.Counts
	for _, q := range r.db.selfQuestions {
		c.Total++
		if q.Respondida {
			c.Respondidas++
		} else {
			c.Activas++
		}
	}
	return c, nil
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
