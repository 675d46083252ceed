package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"focusPlanner/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Up накатывает все миграции на базу. Отсутствие новых миграций - не ошибка.
func Up(databaseURL string) error {
	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("чтение миграций: %w", err)
	}

	// драйвер pgx/v5 регистрируется под схемой pgx5
	url := strings.Replace(databaseURL, "postgres://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrations: Схема актуальна")
			return nil
		}
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Migrations: Схема обновлена")
	return nil
}
