package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"quizbot/internal/config"
	"quizbot/internal/leaderboard"
	"quizbot/internal/logger"
	"quizbot/internal/quiz"
	"quizbot/internal/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Bot composes the Telegram transport: the telebot instance, the async
// outbound dispatcher, and the handlers bridging updates into the engine.
type Bot struct {
	tb     *tele.Bot
	disp   *sender.Dispatcher
	tr     *transport
	engine *quiz.Engine
	board  *leaderboard.Board
}

// New builds the bot from configuration. The engine is attached separately
// via Register because it needs the bot's transport first.
func New(cfg *config.Config, board *leaderboard.Board) (*Bot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: buildPoller(cfg),
		Client: buildHTTPClient(),
	}

	tb, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	disp := sender.NewDispatcher(sender.Options{MaxRetries: 2})
	return &Bot{
		tb:    tb,
		disp:  disp,
		tr:    newTransport(tb, disp),
		board: board,
	}, nil
}

// Transport returns the outbound boundary for the quiz engine.
func (b *Bot) Transport() quiz.Transport {
	return b.tr
}

// Register wires the engine and installs all routes and the command menu.
func (b *Bot) Register(engine *quiz.Engine) {
	b.engine = engine

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return recoverMiddleware(loggerMiddleware(h))
	}

	b.tb.Handle("/start", wrap(b.handleStart))
	b.tb.Handle("/quiz", wrap(b.handleQuiz))
	b.tb.Handle("/leaderboard", wrap(b.handleLeaderboard))
	b.tb.Handle(tele.OnText, wrap(b.handleText))
	b.tb.Handle(tele.OnCallback, wrap(b.handleCallback))

	commands := []tele.Command{
		{Text: "/start", Description: "Greeting and usage"},
		{Text: "/quiz", Description: "Start a new quiz"},
		{Text: "/leaderboard", Description: "Show the top 10 players"},
	}
	if err := b.tb.SetCommands(commands); err != nil {
		logger.Warn(context.Background(), "tg", "commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}

// Run starts the bot until the context is done, then drains outbound sends.
func (b *Bot) Run(ctx context.Context) error {
	if b.engine == nil {
		return fmt.Errorf("telegram: Register must be called before Run")
	}

	logger.Info(ctx, "tg", "bot.start")

	done := make(chan struct{})
	go func() {
		b.tb.Start()
		close(done)
	}()

	select {
	case <-ctx.Done():
		b.tb.Stop()
		<-done
	case <-done:
	}

	b.engine.Stop()
	b.disp.Close()
	logger.Info(ctx, "tg", "bot.stop")
	return nil
}

func buildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}

// buildHTTPClient returns an HTTP client tuned for Telegram API calls.
func buildHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 65 * time.Second,
	}
	return &http.Client{
		Timeout:   70 * time.Second,
		Transport: transport,
	}
}
