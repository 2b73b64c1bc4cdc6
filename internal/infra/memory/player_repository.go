package memory

import (
	"context"

	"ruleta-service/internal/domain"
)

// PlayerRepository implements app.PlayerRepository.
type PlayerRepository struct {
	db *Database
}

func (r *PlayerRepository) Create(_ context.Context, nombre string) (domain.Player, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.players {
		if p.Nombre == nombre {
			return domain.Player{}, domain.ErrDuplicatePlayer
		}
	}
	r.db.nextPlayerID++
	p := domain.Player{ID: r.db.nextPlayerID, Nombre: nombre}
	r.db.players[p.ID] = p
	return p, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]domain.Player, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := make([]int64, 0, len(r.db.players))
	for id := range r.db.players {
		ids = append(ids, id)
	}
	sortIDs(ids)
	out := make([]domain.Player, len(ids))
	for i, id := range ids {
		out[i] = r.db.players[id]
	}
	return out, nil
}

func (r *PlayerRepository) Get(_ context.Context, id int64) (domain.Player, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.players[id]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return p, nil
}

func (r *PlayerRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.players[id]; !ok {
		return domain.ErrPlayerNotFound
	}
	delete(r.db.players, id)
	for key := range r.db.assignments {
		if key.player == id {
			delete(r.db.assignments, key)
		}
	}
	return nil
}

func (r *PlayerRepository) ResetScores(_ context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, p := range r.db.players {
		p.Puntaje = 0
		p.Consecutivas = 0
		r.db.players[id] = p
	}
	return nil
}

func (r *PlayerRepository) ReplaceAssignments(_ context.Context, assignments []domain.Assignment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.assignments = make(map[assignmentKey]bool, len(assignments))
	for _, a := range assignments {
		r.db.assignments[assignmentKey{player: a.PlayerID, question: a.QuestionID}] = a.Respondida
	}
	return nil
}

func (r *PlayerRepository) ResetAssignments(_ context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for key := range r.db.assignments {
		r.db.assignments[key] = false
	}
	return nil
}

func (r *PlayerRepository) Assignment(_ context.Context, playerID, questionID int64) (domain.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	answered, ok := r.db.assignments[assignmentKey{player: playerID, question: questionID}]
	if !ok {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	return domain.Assignment{PlayerID: playerID, QuestionID: questionID, Respondida: answered}, nil
}

func (r *PlayerRepository) ActiveAssignments(_ context.Context, playerID int64) ([]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := make([]int64, 0)
	for key, answered := range r.db.assignments {
		if key.player == playerID && !answered {
			ids = append(ids, key.question)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r *PlayerRepository) ApplyAnswer(_ context.Context, player domain.Player, questionID int64, answered bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.players[player.ID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	key := assignmentKey{player: player.ID, question: questionID}
	if _, ok := r.db.assignments[key]; !ok {
		return domain.ErrAssignmentNotFound
	}
	stored.Puntaje = player.Puntaje
	stored.Consecutivas = player.Consecutivas
	r.db.players[player.ID] = stored
	if answered {
		r.db.assignments[key] = true
	}
	return nil
}
