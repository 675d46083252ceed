package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/session"
	repo "focusPlanner/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	return &Storage{pool: pool}, nil
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

const sessionColumns = `uuid,
				user_id,
				task_id,
				start_time,
				end_time,
				duration,
				memo,
				created_at`

func scanSession(row pgx.Row) (*session.FocusSession, error) {
	fs := &session.FocusSession{}
	err := row.Scan(
		&fs.UUID,
		&fs.UserID,
		&fs.TaskID,
		&fs.StartTime,
		&fs.EndTime,
		&fs.Duration,
		&fs.Memo,
		&fs.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func (s *Storage) Create(ctx context.Context, toCreate *session.FocusSession) error {
	start := time.Now()

	query := `INSERT INTO focus_sessions
				(uuid, user_id, task_id, start_time, end_time, duration, memo, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		toCreate.UUID,
		toCreate.UserID,
		toCreate.TaskID,
		toCreate.StartTime,
		toCreate.EndTime,
		toCreate.Duration,
		toCreate.Memo,
		time.Now(),
	).Scan(&toCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось записать сессию", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись сессии: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*session.FocusSession, error) {
	query := `SELECT ` + sessionColumns + `
				FROM focus_sessions
				WHERE uuid = $1`

	fs, err := scanSession(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить сессию", err)
		return nil, fmt.Errorf("получение сессии: %w", err)
	}
	return fs, nil
}

func (s *Storage) Update(ctx context.Context, toUpdate *session.FocusSession) error {
	start := time.Now()

	query := `UPDATE focus_sessions
			SET task_id = $1,
				memo = $2
			WHERE uuid = $3`

	tag, err := s.pool.Exec(ctx, query, toUpdate.TaskID, toUpdate.Memo, toUpdate.UUID)
	if err != nil {
		logger.Error("Repository: Не удалось обновить сессию", err)
		return fmt.Errorf("обновление сессии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*session.FocusSession, error) {
	query := `SELECT ` + sessionColumns + `
				FROM focus_sessions
				WHERE task_id = $1
				ORDER BY start_time ASC`

	return s.querySessions(ctx, query, taskID)
}

func (s *Storage) FindByUserStartBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*session.FocusSession, error) {
	query := `SELECT ` + sessionColumns + `
				FROM focus_sessions
				WHERE user_id = $1 AND start_time BETWEEN $2 AND $3
				ORDER BY start_time ASC`

	return s.querySessions(ctx, query, userID, from, to)
}

func (s *Storage) FindUnassigned(ctx context.Context, userID uuid.UUID) ([]*session.FocusSession, error) {
	query := `SELECT ` + sessionColumns + `
				FROM focus_sessions
				WHERE user_id = $1 AND task_id IS NULL
				ORDER BY start_time DESC`

	return s.querySessions(ctx, query, userID)
}

// сессии переживают задачу: при удалении плана ссылка снимается
func (s *Storage) UnlinkTask(ctx context.Context, taskID uuid.UUID) error {
	query := `UPDATE focus_sessions
			SET task_id = NULL
			WHERE task_id = $1`

	_, err := s.pool.Exec(ctx, query, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось отвязать сессии", err)
		return fmt.Errorf("отвязка сессий: %w", err)
	}
	return nil
}

func (s *Storage) querySessions(ctx context.Context, query string, args ...any) ([]*session.FocusSession, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить сессии", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение сессий: %w", err)
	}
	defer rows.Close()

	sessions := []*session.FocusSession{}
	for rows.Next() {
		fs, err := scanSession(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования сессии", zap.Error(err))
			continue
		}
		sessions = append(sessions, fs)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return sessions, nil
}
