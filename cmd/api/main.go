package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"focusPlanner/internal/app"
	"focusPlanner/internal/config"
	"focusPlanner/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		logger.Error("App: Ошибка инициализации", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Ошибка во время работы", err)
		os.Exit(1)
	}
}
