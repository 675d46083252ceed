package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"focusPlanner/internal/config"
	"focusPlanner/internal/handlers"
	"focusPlanner/internal/logger"
	"focusPlanner/internal/middleware"
	"focusPlanner/internal/migrations"
	rep "focusPlanner/internal/repository"
	sessioninmemory "focusPlanner/internal/repository/session/inmemory"
	sessionpostgres "focusPlanner/internal/repository/session/postgres"
	taskinmemory "focusPlanner/internal/repository/task/inmemory"
	taskpostgres "focusPlanner/internal/repository/task/postgres"
	"focusPlanner/internal/service"
	"focusPlanner/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	worker    *worker.StaleTimerWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	taskRepo, sessionRepo, err := a.initRepositories(ctx)
	if err != nil {
		return err
	}

	taskService := service.NewTaskService(taskRepo, sessionRepo)
	sessionService := service.NewFocusSessionService(sessionRepo, taskRepo)
	wearService := service.NewWearSyncService(taskRepo, sessionRepo, a.config.Wear.DedupWindow)

	taskHandler := handlers.NewTaskHandler(taskService, wearService)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	a.worker = worker.NewStaleTimerWorker(taskRepo, a.config.Worker.Interval, a.config.Worker.StaleTimerAge)

	a.router = a.buildRouter(&taskHandler, &sessionHandler)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) initRepositories(ctx context.Context) (rep.TaskRepository, rep.SessionRepository, error) {
	if a.config.Repository.Type == "postgres" {
		if err := migrations.Up(a.config.Database.URL); err != nil {
			return nil, nil, fmt.Errorf("миграции: %w", err)
		}

		taskRepo, err := taskpostgres.New(ctx, a.config.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("подключение репозитория задач: %w", err)
		}
		a.shutdowns = append(a.shutdowns, taskRepo.Close)

		sessionRepo, err := sessionpostgres.New(ctx, a.config.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("подключение репозитория сессий: %w", err)
		}
		a.shutdowns = append(a.shutdowns, sessionRepo.Close)

		return taskRepo, sessionRepo, nil
	}

	logger.Info("App: Используется inmemory-хранилище")
	return taskinmemory.NewTaskStorage(), sessioninmemory.NewSessionStorage(), nil
}

func (a *App) buildRouter(taskHandler *handlers.TaskHandler, sessionHandler *handlers.SessionHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:           86400,
	}))

	r.Get("/health", taskHandler.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(a.config.Auth.JWTSecret))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetTasks)    // GET /tasks?date=
			r.Post("/", taskHandler.PostTask)   // POST /tasks
			r.Get("/brain-dump", taskHandler.GetBrainDump)
			r.Get("/week", taskHandler.GetWeek) // GET /tasks/week?startDate=
			r.Post("/wear-sync", taskHandler.WearSync)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)
				r.Patch("/", taskHandler.UpdateTaskByID)
				r.Delete("/", taskHandler.DeleteTaskByID)
			})
		})

		r.Route("/focus-sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSessions) // GET /focus-sessions?startDate=&endDate=
			r.Post("/", sessionHandler.PostSession)
			r.Get("/unassigned", sessionHandler.GetUnassigned)
			r.Put("/{id}/link", sessionHandler.LinkToTask)
		})
	})

	return r
}

// Run блокируется до отмены контекста, затем гасит сервер и все ресурсы.
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	go a.worker.Start(workerCtx)
	a.shutdowns = append(a.shutdowns, cancelWorker)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started: " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.runShutdowns()
		return fmt.Errorf("сервер: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}
	a.runShutdowns()
	return nil
}

func (a *App) runShutdowns() {
	// в обратном порядке, как defer
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
