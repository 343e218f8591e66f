// Package leaderboard keeps the persisted best-result-per-user ranking.
package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrCorrupt marks persisted leaderboard data that exists but cannot be
// parsed. It is never silently coerced to an empty board.
var ErrCorrupt = errors.New("leaderboard: corrupt data")

// Entry is one user's best recorded result.
type Entry struct {
	UserID         int64   `json:"user_id" db:"user_id"`
	DisplayName    string  `json:"display_name,omitempty" db:"display_name"`
	Score          int     `json:"score" db:"score"`
	TotalQuestions int     `json:"total_questions" db:"total_questions"`
	Percentage     float64 `json:"percentage" db:"percentage"`
}

// Better reports whether a is strictly better than b: higher percentage wins,
// then more questions attempted, then higher raw score.
func Better(a, b Entry) bool {
	if a.Percentage != b.Percentage {
		return a.Percentage > b.Percentage
	}
	if a.TotalQuestions != b.TotalQuestions {
		return a.TotalQuestions > b.TotalQuestions
	}
	return a.Score > b.Score
}

// Rank returns the entries sorted best-first. The input is not modified.
func Rank(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return Better(out[i], out[j]) })
	return out
}

// Store persists the full entry set. Load returns an empty set when nothing
// was persisted yet and ErrCorrupt when persisted data cannot be parsed.
type Store interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
}

// Board serializes read-modify-write cycles against a Store so concurrent
// quiz completions cannot lose updates.
type Board struct {
	mu    sync.Mutex
	store Store
}

// NewBoard wraps a store into a Board.
func NewBoard(store Store) *Board {
	return &Board{store: store}
}

// Submit merges a finished result into the board. The stored entry for the
// user is replaced only by a strictly better result; a missing entry is
// inserted. It reports whether the board changed.
func (b *Board) Submit(e Entry) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.store.Load()
	if err != nil {
		return false, fmt.Errorf("load leaderboard: %w", err)
	}

	replaced := false
	for i, cur := range entries {
		if cur.UserID != e.UserID {
			continue
		}
		if !Better(e, cur) {
			return false, nil
		}
		entries[i] = e
		replaced = true
		break
	}
	if !replaced {
		entries = append(entries, e)
	}

	if err := b.store.Save(entries); err != nil {
		return false, fmt.Errorf("save leaderboard: %w", err)
	}
	return true, nil
}

// Top returns up to n entries ranked best-first.
func (b *Board) Top(n int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	ranked := Rank(entries)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Render formats ranked entries as a 1-indexed list for the chat.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return "The leaderboard is empty. Finish a quiz of 10+ questions to enter it!"
	}
	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard\n")
	for i, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = fmt.Sprintf("Player %d", e.UserID)
		}
		fmt.Fprintf(&sb, "%d. %s — %.2f%% (%d/%d)\n", i+1, name, e.Percentage, e.Score, e.TotalQuestions)
	}
	return strings.TrimRight(sb.String(), "\n")
}
