package inmemory

import (
	"context"
	"sync"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/task"
	repo "focusPlanner/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID // порядок создания
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.Version == 0 {
		taskToCreate.Version = 1
	}

	copied := *taskToCreate
	s.storage[taskToCreate.UUID] = &copied
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}
	if existing.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.Version++

	copied := *taskToUpdate
	s.storage[taskToUpdate.UUID] = &copied
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *taskToGet
	return &copied, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

func (s *TaskStorage) FindByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return s.findWhere(userID, func(t *task.Task) bool {
		return true
	})
}

func (s *TaskStorage) FindByDate(ctx context.Context, userID uuid.UUID, date string) ([]*task.Task, error) {
	return s.findWhere(userID, func(t *task.Task) bool {
		return t.ScheduledDate != nil && *t.ScheduledDate == date
	})
}

// инбокс: задачи без даты
func (s *TaskStorage) FindUnscheduled(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return s.findWhere(userID, func(t *task.Task) bool {
		return t.ScheduledDate == nil
	})
}

func (s *TaskStorage) FindBetweenDates(ctx context.Context, userID uuid.UUID, from, to string) ([]*task.Task, error) {
	return s.findWhere(userID, func(t *task.Task) bool {
		if t.ScheduledDate == nil {
			return false
		}
		// формат YYYY-MM-DD сравнивается лексикографически
		return *t.ScheduledDate >= from && *t.ScheduledDate <= to
	})
}

func (s *TaskStorage) FindTimersStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		if len(res) >= limit {
			break
		}

		t := s.storage[id]
		if t.TimerStartedAt != nil && t.TimerStartedAt.Before(cutoff) {
			copied := *t
			res = append(res, &copied)
		}
	}
	return res, nil
}

func (s *TaskStorage) findWhere(userID uuid.UUID, match func(*task.Task) bool) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.UserID != userID || !match(t) {
			continue
		}

		copied := *t
		res = append(res, &copied)
	}
	return res, nil
}
