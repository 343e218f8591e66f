package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// answerKeyboard builds an inline keyboard with one button per option. The
// callback payload carries indices rather than option text: Telegram limits
// callback data to 64 bytes and indices keep the settled-question check exact.
func answerKeyboard(questionIndex int, options []string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(options))
	for i, opt := range options {
		payload := fmt.Sprintf("%d|%d", questionIndex, i)
		rows = append(rows, markup.Row(markup.Data(opt, answerCallback, payload)))
	}
	markup.Inline(rows...)
	return markup
}

// parseCallback splits Telebot's "\f<unique>|<payload>" callback encoding.
func parseCallback(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	raw = strings.TrimPrefix(raw, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	unique = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		payload = parts[1]
	}
	return unique, payload
}

// parseAnswerPayload decodes "<questionIndex>|<optionIndex>".
func parseAnswerPayload(payload string) (questionIndex, optionIndex int, ok bool) {
	parts := strings.SplitN(payload, "|", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	q, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	o, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return q, o, true
}
