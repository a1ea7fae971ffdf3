package repository

import (
	"sync"

	"github.com/VidyaQuest-Labs/portal/internal/dto"
	"github.com/google/uuid"
)

// TodoRepository is a process-lifetime in-memory list keyed by a
// caller-supplied user id. Items do not survive a restart.
type TodoRepository struct {
	mu    sync.RWMutex
	todos []dto.TodoResponse
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{}
}

func (r *TodoRepository) ListByUser(userID string) []dto.TodoResponse {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]dto.TodoResponse, 0)
	for _, t := range r.todos {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result
}

func (r *TodoRepository) Add(text, userID string) dto.TodoResponse {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo := dto.TodoResponse{
		ID:     uuid.NewString(),
		Text:   text,
		Done:   false,
		UserID: userID,
	}
	r.todos = append(r.todos, todo)
	return todo
}

func (r *TodoRepository) SetDone(id, userID string, done bool) (dto.TodoResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.todos {
		if r.todos[i].ID == id && r.todos[i].UserID == userID {
			r.todos[i].Done = done
			return r.todos[i], true
		}
	}
	return dto.TodoResponse{}, false
}

func (r *TodoRepository) Remove(id, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.todos {
		if r.todos[i].ID == id && r.todos[i].UserID == userID {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return true
		}
	}
	return false
}
