package inmemory

import (
	"context"
	"sync"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/session"
	repo "focusPlanner/internal/repository"

	"github.com/google/uuid"
)

type SessionStorage struct {
	storage map[uuid.UUID]*session.FocusSession
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		storage: make(map[uuid.UUID]*session.FocusSession),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *SessionStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *SessionStorage) Create(ctx context.Context, toCreate *session.FocusSession) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if toCreate.CreatedAt.IsZero() {
		toCreate.CreatedAt = time.Now()
	}

	copied := *toCreate
	s.storage[toCreate.UUID] = &copied
	s.ids = append(s.ids, toCreate.UUID)
	return nil
}

func (s *SessionStorage) GetByID(ctx context.Context, id uuid.UUID) (*session.FocusSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	toGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *toGet
	return &copied, nil
}

func (s *SessionStorage) Update(ctx context.Context, toUpdate *session.FocusSession) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[toUpdate.UUID]; !ok {
		return repo.ErrNotFound
	}

	copied := *toUpdate
	s.storage[toUpdate.UUID] = &copied
	return nil
}

func (s *SessionStorage) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*session.FocusSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*session.FocusSession{}
	for _, id := range s.ids {
		fs := s.storage[id]
		if fs.TaskID != nil && *fs.TaskID == taskID {
			copied := *fs
			res = append(res, &copied)
		}
	}
	return res, nil
}

// сессии пользователя, начавшиеся в интервале [from, to] включительно
func (s *SessionStorage) FindByUserStartBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*session.FocusSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*session.FocusSession{}
	for _, id := range s.ids {
		fs := s.storage[id]
		if fs.UserID != userID {
			continue
		}
		if fs.StartTime.Before(from) || fs.StartTime.After(to) {
			continue
		}

		copied := *fs
		res = append(res, &copied)
	}
	return res, nil
}

func (s *SessionStorage) FindUnassigned(ctx context.Context, userID uuid.UUID) ([]*session.FocusSession, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*session.FocusSession{}
	for _, id := range s.ids {
		fs := s.storage[id]
		if fs.UserID == userID && fs.TaskID == nil {
			copied := *fs
			res = append(res, &copied)
		}
	}
	return res, nil
}

// снятие ссылки на удаляемую задачу, сами сессии остаются
func (s *SessionStorage) UnlinkTask(ctx context.Context, taskID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, fs := range s.storage {
		if fs.TaskID != nil && *fs.TaskID == taskID {
			fs.TaskID = nil
		}
	}
	return nil
}
