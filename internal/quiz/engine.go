package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"quizbot/internal/leaderboard"
	"quizbot/internal/logger"
)

// MessageRef identifies a previously sent chat message for later editing.
type MessageRef struct {
	ChatID    int64
	MessageID string
}

// Transport is the outbound boundary fulfilled by the chat layer. The engine
// never blocks on it beyond the returned error.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendQuestion(ctx context.Context, chatID int64, number, total int, q Question) error
	EditQuestion(ctx context.Context, ref MessageRef, text string) error
	AckSelection(ctx context.Context, selectionID, text string) error
}

// Scheduler defers a function call; the returned func cancels it.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct{}

// After schedules fn after d on a new timer.
func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// AnswerEvent is an inbound answer-button selection.
type AnswerEvent struct {
	ChatID        int64
	UserID        int64
	SelectionID   string
	Ref           MessageRef
	QuestionIndex int
	OptionIndex   int
}

const (
	msgAskLength     = "How many questions do you want? (send a number, e.g. 5 or 10)"
	msgInvalidLength = "Please send a valid positive number."
	msgNoQuestions   = "No questions are available right now, try again later."
	msgNoActiveQuiz  = "No quiz is active here. Start one with /quiz."
	msgAckCorrect    = "Correct! ✅"
)

// Options configures an Engine.
type Options struct {
	Bank      *Bank
	Board     *leaderboard.Board
	Transport Transport
	Scheduler Scheduler
	// AnswerDelay is the pause between answer feedback and the next question.
	AnswerDelay time.Duration
	// RankedMinimum is the smallest quiz length eligible for the leaderboard.
	RankedMinimum int
}

// Engine drives the per-chat quiz state machine. All transitions for a chat
// are serialized under a single mutex, including timer-driven advances, so
// session reads and writes never interleave.
type Engine struct {
	bank      *Bank
	board     *leaderboard.Board
	tr        Transport
	sched     Scheduler
	delay     time.Duration
	rankedMin int
	store     *Store

	mu     sync.Mutex
	timers map[int64]func()
}

// NewEngine builds an Engine from options, filling defaults.
func NewEngine(opts Options) *Engine {
	sched := opts.Scheduler
	if sched == nil {
		sched = TimerScheduler{}
	}
	delay := opts.AnswerDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	rankedMin := opts.RankedMinimum
	if rankedMin <= 0 {
		rankedMin = 10
	}
	return &Engine{
		bank:      opts.Bank,
		board:     opts.Board,
		tr:        opts.Transport,
		sched:     sched,
		delay:     delay,
		rankedMin: rankedMin,
		store:     NewStore(),
		timers:    make(map[int64]func()),
	}
}

// Store exposes the session store for inspection.
func (e *Engine) Store() *Store {
	return e.store
}

// Stop cancels all scheduled advances.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for chatID, cancel := range e.timers {
		cancel()
		delete(e.timers, chatID)
	}
}

// BeginQuiz handles the quiz command: it resets any previous flow for the
// chat and asks for the quiz length.
func (e *Engine) BeginQuiz(ctx context.Context, chatID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.bank.Size() == 0 {
		return e.tr.SendText(ctx, chatID, msgNoQuestions)
	}

	e.cancelTimerLocked(chatID)
	e.store.SetPending(chatID)
	logger.Debug(ctx, "quiz", "quiz.await_length", slog.Int64("chat_id", chatID))
	return e.tr.SendText(ctx, chatID, msgAskLength)
}

// AwaitingLength reports whether the chat should treat plain text as a
// quiz length reply.
func (e *Engine) AwaitingLength(chatID int64) bool {
	return e.store.Pending(chatID)
}

// HandleLength consumes a text reply while the chat is awaiting a length.
// Command-shaped text is ignored so commands are never read as numbers.
func (e *Engine) HandleLength(ctx context.Context, chatID, userID int64, displayName, text string) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.Pending(chatID) {
		return nil
	}

	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		return e.tr.SendText(ctx, chatID, msgInvalidLength)
	}

	questions := e.bank.Sample(n)
	s := &Session{
		Phase:       PhaseInProgress,
		Questions:   questions,
		UserID:      userID,
		DisplayName: displayName,
	}
	e.store.Put(chatID, s)

	logger.Info(ctx, "quiz", "quiz.started",
		slog.Int64("chat_id", chatID),
		slog.Int("requested", n),
		slog.Int("length", len(questions)),
	)

	if err := e.tr.SendText(ctx, chatID, fmt.Sprintf("Ok, the quiz will have %d questions.", len(questions))); err != nil {
		return err
	}
	return e.sendCurrentLocked(ctx, chatID, s)
}

// HandleAnswer consumes an answer-button selection. The question being
// answered must still be the session cursor and must not be settled yet;
// anything else is a stale press and changes no state.
func (e *Engine) HandleAnswer(ctx context.Context, ev AnswerEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(ev.ChatID)
	if !ok {
		if err := e.tr.AckSelection(ctx, ev.SelectionID, ""); err != nil {
			return err
		}
		return e.tr.SendText(ctx, ev.ChatID, msgNoActiveQuiz)
	}

	if s.Settled || ev.QuestionIndex != s.Index {
		logger.Debug(ctx, "quiz", "quiz.answer.stale",
			slog.Int64("chat_id", ev.ChatID),
			slog.Int("question_index", ev.QuestionIndex),
			slog.Int("cursor", s.Index),
			slog.Bool("settled", s.Settled),
		)
		return e.tr.AckSelection(ctx, ev.SelectionID, "")
	}

	q, ok := s.Current()
	if !ok {
		return e.tr.AckSelection(ctx, ev.SelectionID, "")
	}
	if ev.OptionIndex < 0 || ev.OptionIndex >= len(q.Options) {
		return e.tr.AckSelection(ctx, ev.SelectionID, "")
	}
	selected := q.Options[ev.OptionIndex]

	s.Settled = true
	correct := selected == q.Correct
	if correct {
		s.Score++
	}

	logger.Info(ctx, "quiz", "quiz.answered",
		slog.Int64("chat_id", ev.ChatID),
		slog.Int("question_index", s.Index),
		slog.Bool("correct", correct),
		slog.Int("score", s.Score),
	)

	ack := msgAckCorrect
	edit := fmt.Sprintf("Question: %s\n\nYour answer: %s (correct!)", q.Prompt, selected)
	if !correct {
		ack = fmt.Sprintf("Wrong. The correct answer was: %s ❌", q.Correct)
		edit = fmt.Sprintf("Question: %s\n\nYour answer: %s (wrong!)\nThe correct answer was: %s", q.Prompt, selected, q.Correct)
	}

	if err := e.tr.AckSelection(ctx, ev.SelectionID, ack); err != nil {
		logger.Warn(ctx, "quiz", "quiz.ack.failed", slog.String("err", err.Error()))
	}
	if err := e.tr.EditQuestion(ctx, ev.Ref, edit); err != nil {
		logger.Warn(ctx, "quiz", "quiz.edit.failed", slog.String("err", err.Error()))
	}

	e.scheduleAdvanceLocked(ev.ChatID, s.ID, s.Index)
	return nil
}

func (e *Engine) scheduleAdvanceLocked(chatID int64, sessionID uint64, fromIndex int) {
	e.cancelTimerLocked(chatID)
	e.timers[chatID] = e.sched.After(e.delay, func() {
		e.advance(chatID, sessionID, fromIndex)
	})
}

func (e *Engine) cancelTimerLocked(chatID int64) {
	if cancel, ok := e.timers[chatID]; ok {
		cancel()
		delete(e.timers, chatID)
	}
}

// advance moves the session cursor forward after the pacing delay. It runs on
// a timer goroutine: the session must still exist, be the same session and
// stand on the same question, otherwise the callback is stale and dropped.
func (e *Engine) advance(chatID int64, sessionID uint64, fromIndex int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.timers, chatID)

	s, ok := e.store.Get(chatID)
	if !ok || s.ID != sessionID || s.Index != fromIndex || !s.Settled {
		return
	}

	s.Index++
	s.Settled = false

	ctx := context.Background()
	if err := e.sendCurrentLocked(ctx, chatID, s); err != nil {
		logger.Warn(ctx, "quiz", "quiz.advance.send_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) sendCurrentLocked(ctx context.Context, chatID int64, s *Session) error {
	if s.Done() {
		return e.completeLocked(ctx, chatID, s)
	}
	q, _ := s.Current()
	return e.tr.SendQuestion(ctx, chatID, s.Index+1, len(s.Questions), q)
}

func (e *Engine) completeLocked(ctx context.Context, chatID int64, s *Session) error {
	s.Phase = PhaseCompleted
	total := len(s.Questions)
	percentage := float64(s.Score) / float64(total) * 100

	logger.Info(ctx, "quiz", "quiz.completed",
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", s.UserID),
		slog.Int("score", s.Score),
		slog.Int("total", total),
	)

	summary := fmt.Sprintf("Quiz finished! You scored %d out of %d (%.2f%%).\nStart another with /quiz.", s.Score, total, percentage)
	if err := e.tr.SendText(ctx, chatID, summary); err != nil {
		logger.Warn(ctx, "quiz", "quiz.summary.send_failed", slog.String("err", err.Error()))
	}

	var followUp string
	if total >= e.rankedMin {
		updated, err := e.board.Submit(leaderboard.Entry{
			UserID:         s.UserID,
			DisplayName:    s.DisplayName,
			Score:          s.Score,
			TotalQuestions: total,
			Percentage:     percentage,
		})
		switch {
		case err != nil:
			// The user still gets their summary; the save failure is an
			// operator problem, not a player one.
			logger.Error(ctx, "leaderboard", "leaderboard.submit.failed",
				slog.Int64("user_id", s.UserID),
				slog.String("err", err.Error()),
			)
		case updated:
			followUp = "New personal best! Your result is on the leaderboard now. See /leaderboard."
		default:
			followUp = "Your previous best stays on the leaderboard. See /leaderboard."
		}
	} else {
		followUp = fmt.Sprintf("Results count for the leaderboard only in quizzes of at least %d questions.", e.rankedMin)
	}

	e.store.Remove(chatID)

	if followUp == "" {
		return nil
	}
	return e.tr.SendText(ctx, chatID, followUp)
}
