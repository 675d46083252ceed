package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/task"
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

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

const taskColumns = `uuid,
				user_id,
				title,
				description,
				is_completed,
				to_char(scheduled_date, 'YYYY-MM-DD'),
				start_time,
				duration,
				actual_duration,
				timer_started_at,
				mandalart_grid_index,
				mandalart_cell_index,
				google_event_id,
				created_at,
				updated_at,
				version`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.IsCompleted,
		&t.ScheduledDate,
		&t.StartTime,
		&t.Duration,
		&t.ActualDuration,
		&t.TimerStartedAt,
		&t.MandalartGridIndex,
		&t.MandalartCellIndex,
		&t.GoogleEventID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(uuid, user_id, title, description, is_completed, scheduled_date,
				start_time, duration, actual_duration, timer_started_at,
				mandalart_grid_index, mandalart_cell_index, google_event_id,
				created_at, version)
				VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14, $15)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.IsCompleted,
		taskToCreate.ScheduledDate,
		taskToCreate.StartTime,
		taskToCreate.Duration,
		taskToCreate.ActualDuration,
		taskToCreate.TimerStartedAt,
		taskToCreate.MandalartGridIndex,
		taskToCreate.MandalartCellIndex,
		taskToCreate.GoogleEventID,
		time.Now(),
		taskToCreate.Version,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				is_completed = $3,
				scheduled_date = $4::date,
				start_time = $5,
				duration = $6,
				actual_duration = $7,
				timer_started_at = $8,
				mandalart_grid_index = $9,
				mandalart_cell_index = $10,
				google_event_id = $11,
				version = version + 1,
				updated_at = NOW()
			WHERE uuid = $12 AND version = $13
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.IsCompleted,
		taskToUpdate.ScheduledDate,
		taskToUpdate.StartTime,
		taskToUpdate.Duration,
		taskToUpdate.ActualDuration,
		taskToUpdate.TimerStartedAt,
		taskToUpdate.MandalartGridIndex,
		taskToUpdate.MandalartCellIndex,
		taskToUpdate.GoogleEventID,
		taskToUpdate.UUID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Конфликт версий при обновлении задачи",
				zap.String("task_id", taskToUpdate.UUID.String()),
				zap.Int("expected_version", taskToUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE uuid = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) FindByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1
				ORDER BY created_at ASC`

	return s.queryTasks(ctx, query, userID)
}

func (s *Storage) FindByDate(ctx context.Context, userID uuid.UUID, date string) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND scheduled_date = $2::date
				ORDER BY created_at ASC`

	return s.queryTasks(ctx, query, userID, date)
}

func (s *Storage) FindUnscheduled(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND scheduled_date IS NULL
				ORDER BY created_at ASC`

	return s.queryTasks(ctx, query, userID)
}

func (s *Storage) FindBetweenDates(ctx context.Context, userID uuid.UUID, from, to string) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE user_id = $1 AND scheduled_date BETWEEN $2::date AND $3::date
				ORDER BY scheduled_date ASC, created_at ASC`

	return s.queryTasks(ctx, query, userID, from, to)
}

func (s *Storage) FindTimersStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE timer_started_at IS NOT NULL AND timer_started_at < $1
				LIMIT $2`

	return s.queryTasks(ctx, query, cutoff, limit)
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return tasks, nil
}
