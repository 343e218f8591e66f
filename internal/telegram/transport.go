package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quizbot/internal/logger"
	"quizbot/internal/quiz"
	"quizbot/internal/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// answerCallback is the callback unique under which answer buttons are
// registered. The payload carries "<questionIndex>|<optionIndex>".
const answerCallback = "quiz_answer"

// transport fulfils quiz.Transport on top of the bot API, pushing calls
// through the async dispatcher so the engine never blocks on Telegram.
type transport struct {
	bot  *tele.Bot
	disp *sender.Dispatcher
}

func newTransport(bot *tele.Bot, disp *sender.Dispatcher) *transport {
	return &transport{bot: bot, disp: disp}
}

// enqueue pushes a call onto the dispatcher, falling back to a direct call
// when the queue is unavailable.
func (t *transport) enqueue(ctx context.Context, action string, run func() error) error {
	if err := t.disp.Enqueue(ctx, action, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends a plain text message to the chat.
func (t *transport) SendText(ctx context.Context, chatID int64, text string) error {
	return t.enqueue(ctx, "send.text", func() error {
		_, err := t.bot.Send(tele.ChatID(chatID), text)
		return err
	})
}

// SendQuestion sends a question with one inline answer button per option.
func (t *transport) SendQuestion(ctx context.Context, chatID int64, number, total int, q quiz.Question) error {
	text := fmt.Sprintf("Question %d/%d\n\n%s", number, total, q.Prompt)
	markup := answerKeyboard(number-1, q.Options)
	return t.enqueue(ctx, "send.question", func() error {
		_, err := t.bot.Send(tele.ChatID(chatID), text, markup)
		return err
	})
}

// EditQuestion rewrites a previously sent question message and strips its
// inline keyboard.
func (t *transport) EditQuestion(ctx context.Context, ref quiz.MessageRef, text string) error {
	msg := tele.StoredMessage{MessageID: ref.MessageID, ChatID: ref.ChatID}
	return t.enqueue(ctx, "edit.question", func() error {
		_, err := t.bot.Edit(msg, text, &tele.ReplyMarkup{})
		return err
	})
}

// AckSelection answers the callback query, optionally with a toast text.
func (t *transport) AckSelection(ctx context.Context, selectionID, text string) error {
	if selectionID == "" {
		return nil
	}
	return t.enqueue(ctx, "ack.selection", func() error {
		return t.bot.Respond(&tele.Callback{ID: selectionID}, &tele.CallbackResponse{Text: text})
	})
}
