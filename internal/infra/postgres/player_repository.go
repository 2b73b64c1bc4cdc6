package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ruleta-service/internal/domain"
)

// PlayerRepository implements app.PlayerRepository on the jugadores and
// asignaciones tables.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

func (r *PlayerRepository) Create(ctx context.Context, nombre string) (domain.Player, error) {
	p := domain.Player{Nombre: nombre}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO jugadores (nombre) VALUES ($1) RETURNING id`, nombre,
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return domain.Player{}, domain.ErrDuplicatePlayer
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("create jugador: %w", err)
	}
	return p, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nombre, puntaje, consecutivas FROM jugadores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list jugadores: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Player, 0)
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Puntaje, &p.Consecutivas); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PlayerRepository) Get(ctx context.Context, id int64) (domain.Player, error) {
	p := domain.Player{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT nombre, puntaje, consecutivas FROM jugadores WHERE id = $1`, id,
	).Scan(&p.Nombre, &p.Puntaje, &p.Consecutivas)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("load jugador: %w", err)
	}
	return p, nil
}

func (r *PlayerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jugadores WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (r *PlayerRepository) ResetScores(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE jugadores SET puntaje = 0, consecutivas = 0`)
	return err
}

func (r *PlayerRepository) ReplaceAssignments(ctx context.Context, assignments []domain.Assignment) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM asignaciones`); err != nil {
			return fmt.Errorf("clear asignaciones: %w", err)
		}
		err := sendChunked(ctx, tx, len(assignments), func(b *pgx.Batch, i int) {
			a := assignments[i]
			b.Queue(`INSERT INTO asignaciones (jugador_id, pregunta_id, respondida) VALUES ($1, $2, $3)`,
				a.PlayerID, a.QuestionID, a.Respondida)
		})
		if err != nil {
			return fmt.Errorf("insert asignaciones: %w", err)
		}
		return nil
	})
}

func (r *PlayerRepository) ResetAssignments(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE asignaciones SET respondida = FALSE WHERE respondida`)
	return err
}

func (r *PlayerRepository) Assignment(ctx context.Context, playerID, questionID int64) (domain.Assignment, error) {
	a := domain.Assignment{PlayerID: playerID, QuestionID: questionID}
	err := r.pool.QueryRow(ctx,
		`SELECT respondida FROM asignaciones WHERE jugador_id = $1 AND pregunta_id = $2`,
		playerID, questionID,
	).Scan(&a.Respondida)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("load asignacion: %w", err)
	}
	return a, nil
}

func (r *PlayerRepository) ActiveAssignments(ctx context.Context, playerID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pregunta_id FROM asignaciones WHERE jugador_id = $1 AND NOT respondida ORDER BY pregunta_id`,
		playerID)
	if err != nil {
		return nil, fmt.Errorf("list asignaciones: %w", err)
	}
	return collectIDs(rows)
}

func (r *PlayerRepository) ApplyAnswer(ctx context.Context, player domain.Player, questionID int64, answered bool) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE jugadores SET puntaje = $2, consecutivas = $3 WHERE id = $1`,
			player.ID, player.Puntaje, player.Consecutivas)
		if err != nil {
			return fmt.Errorf("update jugador: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrPlayerNotFound
		}
		tag, err = tx.Exec(ctx,
			`UPDATE asignaciones SET respondida = respondida OR $3 WHERE jugador_id = $1 AND pregunta_id = $2`,
			player.ID, questionID, answered)
		if err != nil {
			return fmt.Errorf("update asignacion: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAssignmentNotFound
		}
		return nil
	})
}
