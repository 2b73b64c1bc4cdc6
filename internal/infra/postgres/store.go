package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// batchSize bounds how many rows one pgx.Batch carries during imports.
const batchSize = 100

const uniqueViolation = "23505"

// Store hands out repositories sharing one connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Questions returns the classic question repository.
func (s *Store) Questions() *QuestionRepository { return &QuestionRepository{pool: s.pool} }

// SelfQuestions returns the self-assessment repository.
func (s *Store) SelfQuestions() *SelfQuestionRepository {
	return &SelfQuestionRepository{pool: s.pool}
}

// Players returns the roster and assignment repository.
func (s *Store) Players() *PlayerRepository { return &PlayerRepository{pool: s.pool} }

// sendChunked queues n statements in batches of batchSize and runs each batch
// on tx, failing on the first statement error.
func sendChunked(ctx context.Context, tx pgx.Tx, n int, queue func(b *pgx.Batch, i int)) error {
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		b := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(b, i)
		}
		br := tx.SendBatch(ctx, b)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return err
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func collectIDs(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
