package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ruleta-service/internal/domain"
)

const upsertQuestionSQL = `
INSERT INTO preguntas (id, frase, respuesta, verdadero, respondida)
VALUES ($1, $2, $3, $4, FALSE)
ON CONFLICT (id) DO UPDATE
SET frase = EXCLUDED.frase, respuesta = EXCLUDED.respuesta,
    verdadero = EXCLUDED.verdadero, respondida = FALSE`

// QuestionRepository implements app.QuestionRepository on the preguntas table.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func (r *QuestionRepository) Upsert(ctx context.Context, questions []domain.Question) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return upsertQuestions(ctx, tx, questions)
	})
}

func (r *QuestionRepository) Replace(ctx context.Context, questions []domain.Question) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM preguntas`); err != nil {
			return fmt.Errorf("clear preguntas: %w", err)
		}
		return upsertQuestions(ctx, tx, questions)
	})
}

func upsertQuestions(ctx context.Context, tx pgx.Tx, questions []domain.Question) error {
	err := sendChunked(ctx, tx, len(questions), func(b *pgx.Batch, i int) {
		q := questions[i]
		b.Queue(upsertQuestionSQL, q.ID, q.Frase, q.Respuesta, q.Verdadero)
	})
	if err != nil {
		return fmt.Errorf("upsert preguntas: %w", err)
	}
	return nil
}

func (r *QuestionRepository) Get(ctx context.Context, id int64) (domain.Question, error) {
	q := domain.Question{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT frase, respuesta, verdadero, respondida FROM preguntas WHERE id = $1`, id,
	).Scan(&q.Frase, &q.Respuesta, &q.Verdadero, &q.Respondida)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load pregunta: %w", err)
	}
	return q, nil
}

func (r *QuestionRepository) ActiveIDs(ctx context.Context) ([]int64, error) {
	return activeIDs(ctx, r.pool, "preguntas")
}

func (r *QuestionRepository) Answered(ctx context.Context) ([]domain.AnsweredQuestion, error) {
	return answered(ctx, r.pool, "preguntas")
}

func (r *QuestionRepository) MarkAnswered(ctx context.Context, id int64) error {
	return markAnswered(ctx, r.pool, "preguntas", id)
}

func (r *QuestionRepository) ResetAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE preguntas SET respondida = FALSE WHERE respondida`)
	return err
}

func (r *QuestionRepository) DeleteAll(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM preguntas`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *QuestionRepository) Count(ctx context.Context) (domain.Counts, error) {
	return count(ctx, r.pool, "preguntas")
}

// The helpers below take a table name from a fixed set of constants, never
// from user input.

func activeIDs(ctx context.Context, pool *pgxpool.Pool, table string) ([]int64, error) {
	rows, err := pool.Query(ctx, `SELECT id FROM `+table+` WHERE NOT respondida ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active %s: %w", table, err)
	}
	return collectIDs(rows)
}

func answered(ctx context.Context, pool *pgxpool.Pool, table string) ([]domain.AnsweredQuestion, error) {
	rows, err := pool.Query(ctx, `SELECT frase, respuesta FROM `+table+` WHERE respondida ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list answered %s: %w", table, err)
	}
	defer rows.Close()
	out := make([]domain.AnsweredQuestion, 0)
	for rows.Next() {
		var a domain.AnsweredQuestion
		if err := rows.Scan(&a.Frase, &a.Respuesta); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func markAnswered(ctx context.Context, pool *pgxpool.Pool, table string, id int64) error {
	tag, err := pool.Exec(ctx, `UPDATE `+table+` SET respondida = TRUE WHERE id = $1 AND NOT respondida`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyAnswered
	}
	return domain.ErrQuestionNotFound
}

func count(ctx context.Context, pool *pgxpool.Pool, table string) (domain.Counts, error) {
	var total, done int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE respondida) FROM `+table,
	).Scan(&total, &done)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("count %s: %w", table, err)
	}
	return domain.Counts{Total: total, Activas: total - done, Respondidas: done}, nil
}
