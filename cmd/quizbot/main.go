package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizbot/internal/config"
	"quizbot/internal/leaderboard"
	"quizbot/internal/leaderboard/postgres"
	"quizbot/internal/logger"
	"quizbot/internal/quiz"
	"quizbot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("quizbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A bot without questions cannot serve quizzes; this failure is fatal.
	bank, err := quiz.LoadBank(cfg.Quiz.QuestionsFile)
	if err != nil {
		return err
	}
	logger.Info(ctx, "app", "bank.loaded",
		slog.String("file", cfg.Quiz.QuestionsFile),
		slog.Int("questions", bank.Size()),
	)

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	board := leaderboard.NewBoard(store)

	bot, err := telegram.New(cfg, board)
	if err != nil {
		return err
	}

	engine := quiz.NewEngine(quiz.Options{
		Bank:          bank,
		Board:         board,
		Transport:     bot.Transport(),
		AnswerDelay:   time.Duration(cfg.Quiz.AnswerDelayMS) * time.Millisecond,
		RankedMinimum: cfg.Quiz.RankedMinimum,
	})
	bot.Register(engine)

	return bot.Run(ctx)
}

func buildStore(cfg *config.Config) (leaderboard.Store, func(), error) {
	if cfg.Leaderboard.Backend == config.BackendPostgres {
		if err := postgres.RunMigrations(cfg.Database); err != nil {
			return nil, nil, err
		}
		store, err := postgres.Connect(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return leaderboard.NewFileStore(cfg.Leaderboard.File), func() {}, nil
}
