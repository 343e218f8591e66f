package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"

	"quizbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

const contextKey = "logger_ctx"

// buildContext constructs a context.Context carrying update metadata for
// consistent logging across the transport and the engine.
func buildContext(c tele.Context) context.Context {
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}

	ctx := logger.WithUpdateMeta(context.Background(), c.Update().ID, userID, chatID)
	c.Set(contextKey, ctx)
	return ctx
}

// recoverMiddleware catches panics in handlers so one bad update cannot
// crash the bot.
func recoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(buildContext(c), "tg", "tg.panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}

// loggerMiddleware logs a receipt line per update and seeds the context.
func loggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := buildContext(c)
		attrs := []slog.Attr{}
		if cb := c.Callback(); cb != nil {
			key, payload := parseCallback(cb)
			attrs = append(attrs,
				slog.String("cb_key", logger.SanitizeLimit(key, 64)),
				slog.String("payload", logger.SanitizeLimit(payload, 64)),
			)
		} else if text := c.Text(); text != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(text, 256)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)

		err := next(c)
		if err != nil {
			logger.Error(ctx, "tg", "handler.failed",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
		return err
	}
}
