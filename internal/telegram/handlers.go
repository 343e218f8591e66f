package telegram

import (
	"errors"
	"log/slog"
	"strconv"

	"quizbot/internal/leaderboard"
	"quizbot/internal/logger"
	"quizbot/internal/quiz"

	tele "gopkg.in/telebot.v4"
)

const (
	msgWelcome          = "Welcome to the Quiz Bot!\nStart a new quiz with /quiz."
	msgBoardUnavailable = "The leaderboard is temporarily unavailable, try again later."

	topSize = 10
)

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(msgWelcome)
}

func (b *Bot) handleQuiz(c tele.Context) error {
	return b.engine.BeginQuiz(buildContext(c), c.Chat().ID)
}

func (b *Bot) handleLeaderboard(c tele.Context) error {
	ctx := buildContext(c)
	top, err := b.board.Top(topSize)
	if err != nil {
		event := "leaderboard.load_failed"
		if errors.Is(err, leaderboard.ErrCorrupt) {
			// Corrupt data needs an operator; the board is left untouched.
			event = "leaderboard.corrupt"
		}
		logger.Error(ctx, "leaderboard", event, slog.String("err", err.Error()))
		return c.Send(msgBoardUnavailable)
	}
	return c.Send(leaderboard.Render(top))
}

// handleText routes plain text: while the chat awaits a quiz length the text
// is the length reply, anything else is ignored.
func (b *Bot) handleText(c tele.Context) error {
	ctx := buildContext(c)
	chatID := c.Chat().ID
	if !b.engine.AwaitingLength(chatID) {
		return nil
	}
	return b.engine.HandleLength(ctx, chatID, c.Sender().ID, displayName(c.Sender()), c.Text())
}

// handleCallback routes answer-button presses to the engine.
func (b *Bot) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	ctx := buildContext(c)

	key, payload := parseCallback(cb)
	if key != answerCallback {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}

	qIdx, optIdx, ok := parseAnswerPayload(payload)
	if !ok {
		logger.Warn(ctx, "tg", "callback.bad_payload",
			slog.String("payload", logger.SanitizeLimit(payload, 64)),
		)
		return c.Respond()
	}

	ref := quiz.MessageRef{ChatID: c.Chat().ID}
	if cb.Message != nil {
		ref.MessageID = strconv.Itoa(cb.Message.ID)
	}

	return b.engine.HandleAnswer(ctx, quiz.AnswerEvent{
		ChatID:        c.Chat().ID,
		UserID:        c.Sender().ID,
		SelectionID:   cb.ID,
		Ref:           ref,
		QuestionIndex: qIdx,
		OptionIndex:   optIdx,
	})
}

// displayName snapshots the name used for leaderboard attribution.
func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
