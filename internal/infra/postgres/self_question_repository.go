package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ruleta-service/internal/domain"
)

// SelfQuestionRepository implements app.SelfQuestionRepository on the
// preguntas_autoevaluacion table. Assignments cascade on delete.
type SelfQuestionRepository struct {
	pool *pgxpool.Pool
}

func (r *SelfQuestionRepository) Append(ctx context.Context, questions []domain.SelfQuestion, skipExisting bool) (int, error) {
	stored := 0
	err := r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		pending := questions
		if skipExisting {
			// Serialise concurrent merges so the phrase check stays valid.
			if _, err := tx.Exec(ctx, `LOCK TABLE preguntas_autoevaluacion IN SHARE ROW EXCLUSIVE MODE`); err != nil {
				return err
			}
			known, err := storedPhrases(ctx, tx)
			if err != nil {
				return err
			}
			pending = make([]domain.SelfQuestion, 0, len(questions))
			for _, q := range questions {
				if _, dup := known[q.Frase]; dup {
					continue
				}
				known[q.Frase] = struct{}{}
				pending = append(pending, q)
			}
		}
		if err := insertSelfQuestions(ctx, tx, pending); err != nil {
			return err
		}
		stored = len(pending)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

func (r *SelfQuestionRepository) Replace(ctx context.Context, questions []domain.SelfQuestion) (int, error) {
	err := r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE preguntas_autoevaluacion CASCADE`); err != nil {
			return fmt.Errorf("clear preguntas_autoevaluacion: %w", err)
		}
		return insertSelfQuestions(ctx, tx, questions)
	})
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

func storedPhrases(ctx context.Context, tx pgx.Tx) (map[string]struct{}, error) {
	rows, err := tx.Query(ctx, `SELECT frase FROM preguntas_autoevaluacion`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	known := make(map[string]struct{})
	for rows.Next() {
		var frase string
		if err := rows.Scan(&frase); err != nil {
			return nil, err
		}
		known[frase] = struct{}{}
	}
	return known, rows.Err()
}

func insertSelfQuestions(ctx context.Context, tx pgx.Tx, questions []domain.SelfQuestion) error {
	err := sendChunked(ctx, tx, len(questions), func(b *pgx.Batch, i int) {
		b.Queue(`INSERT INTO preguntas_autoevaluacion (frase, respuesta) VALUES ($1, $2)`,
			questions[i].Frase, questions[i].Respuesta)
	})
	if err != nil {
		return fmt.Errorf("insert preguntas_autoevaluacion: %w", err)
	}
	return nil
}

func (r *SelfQuestionRepository) Get(ctx context.Context, id int64) (domain.SelfQuestion, error) {
	q := domain.SelfQuestion{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT frase, respuesta, respondida FROM preguntas_autoevaluacion WHERE id = $1`, id,
	).Scan(&q.Frase, &q.Respuesta, &q.Respondida)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SelfQuestion{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.SelfQuestion{}, fmt.Errorf("load pregunta autoevaluacion: %w", err)
	}
	return q, nil
}

func (r *SelfQuestionRepository) ActiveIDs(ctx context.Context) ([]int64, error) {
	return activeIDs(ctx, r.pool, "preguntas_autoevaluacion")
}

func (r *SelfQuestionRepository) Answered(ctx context.Context) ([]domain.AnsweredQuestion, error) {
	return answered(ctx, r.pool, "preguntas_autoevaluacion")
}

func (r *SelfQuestionRepository) MarkAnswered(ctx context.Context, id int64) error {
	return markAnswered(ctx, r.pool, "preguntas_autoevaluacion", id)
}

func (r *SelfQuestionRepository) ResetAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE preguntas_autoevaluacion SET respondida = FALSE WHERE respondida`)
	return err
}

func (r *SelfQuestionRepository) DeleteAll(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM preguntas_autoevaluacion`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *SelfQuestionRepository) Count(ctx context.Context) (domain.Counts, error) {
	return count(ctx, r.pool, "preguntas_autoevaluacion")
}
