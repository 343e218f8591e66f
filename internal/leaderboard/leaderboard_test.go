package leaderboard

import (
	"errors"
	"strings"
	"testing"
)

type memStore struct {
	entries []Entry
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load() ([]Entry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]Entry(nil), m.entries...), nil
}

func (m *memStore) Save(entries []Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = entries
	m.saves++
	return nil
}

func TestBetterOrdering(t *testing.T) {
	cases := []struct {
		name string
		a, b Entry
		want bool
	}{
		{"higher percentage wins", Entry{Percentage: 90}, Entry{Percentage: 80}, true},
		{"lower percentage loses", Entry{Percentage: 70}, Entry{Percentage: 80}, false},
		{"tie broken by total questions", Entry{Percentage: 80, TotalQuestions: 20}, Entry{Percentage: 80, TotalQuestions: 10}, true},
		{"tie broken by score last", Entry{Percentage: 80, TotalQuestions: 10, Score: 9}, Entry{Percentage: 80, TotalQuestions: 10, Score: 8}, true},
		{"equal is not better", Entry{Percentage: 80, TotalQuestions: 10, Score: 8}, Entry{Percentage: 80, TotalQuestions: 10, Score: 8}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Better(tc.a, tc.b); got != tc.want {
				t.Errorf("Better(%+v, %+v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestRankOrdering(t *testing.T) {
	entries := []Entry{
		{UserID: 1, Percentage: 80, TotalQuestions: 10, Score: 8},
		{UserID: 2, Percentage: 80, TotalQuestions: 20, Score: 16},
		{UserID: 3, Percentage: 90, TotalQuestions: 10, Score: 9},
	}
	ranked := Rank(entries)
	want := []int64{3, 2, 1}
	for i, id := range want {
		if ranked[i].UserID != id {
			t.Fatalf("rank %d = user %d, want %d (ranked: %+v)", i+1, ranked[i].UserID, id, ranked)
		}
	}
	if entries[0].UserID != 1 {
		t.Error("Rank must not modify its input")
	}
}

func TestSubmitInsertsNewUser(t *testing.T) {
	store := &memStore{}
	board := NewBoard(store)

	updated, err := board.Submit(Entry{UserID: 1, Score: 6, TotalQuestions: 10, Percentage: 60})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !updated {
		t.Error("first submit must update the board")
	}
	if len(store.entries) != 1 {
		t.Fatalf("entries = %+v", store.entries)
	}
}

func TestSubmitReplacesWithStrictlyBetter(t *testing.T) {
	store := &memStore{entries: []Entry{
		{UserID: 1, Score: 6, TotalQuestions: 10, Percentage: 60},
		{UserID: 2, Score: 5, TotalQuestions: 10, Percentage: 50},
	}}
	board := NewBoard(store)

	updated, err := board.Submit(Entry{UserID: 1, Score: 9, TotalQuestions: 10, Percentage: 90})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !updated {
		t.Error("better result must replace the entry")
	}
	top, err := board.Top(0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("top = %+v, want 2 entries", top)
	}
	if top[0].UserID != 1 || top[0].Score != 9 {
		t.Errorf("best entry = %+v, want user 1 with 9/10", top[0])
	}
	if top[1].UserID != 2 || top[1].Score != 5 {
		t.Errorf("other entry changed: %+v", top[1])
	}
}

func TestSubmitWorseOrEqualIsIdempotent(t *testing.T) {
	best := Entry{UserID: 1, Score: 9, TotalQuestions: 10, Percentage: 90}
	store := &memStore{entries: []Entry{best}}
	board := NewBoard(store)

	for _, replay := range []Entry{
		best, // equal
		{UserID: 1, Score: 6, TotalQuestions: 10, Percentage: 60},
	} {
		updated, err := board.Submit(replay)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if updated {
			t.Errorf("replay %+v must not update the board", replay)
		}
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0", store.saves)
	}
}

func TestSubmitRefusesOnLoadError(t *testing.T) {
	store := &memStore{loadErr: ErrCorrupt}
	board := NewBoard(store)

	_, err := board.Submit(Entry{UserID: 1, Score: 9, TotalQuestions: 10, Percentage: 90})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if store.saves != 0 {
		t.Error("corrupt data must never be overwritten")
	}
}

func TestTopLimits(t *testing.T) {
	store := &memStore{}
	board := NewBoard(store)
	for i := 1; i <= 12; i++ {
		if _, err := board.Submit(Entry{UserID: int64(i), Score: i, TotalQuestions: 12, Percentage: float64(i)}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	top, err := board.Top(10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 10 {
		t.Fatalf("top size = %d, want 10", len(top))
	}
	if top[0].UserID != 12 {
		t.Errorf("best entry = %+v, want user 12", top[0])
	}
}

func TestRenderRanksOneIndexed(t *testing.T) {
	out := Render([]Entry{
		{DisplayName: "Anna", Score: 9, TotalQuestions: 10, Percentage: 90},
		{UserID: 5, Score: 8, TotalQuestions: 10, Percentage: 80},
	})
	if !strings.Contains(out, "1. Anna — 90.00% (9/10)") {
		t.Errorf("missing first row: %q", out)
	}
	if !strings.Contains(out, "2. Player 5 — 80.00% (8/10)") {
		t.Errorf("missing fallback name row: %q", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	if out := Render(nil); !strings.Contains(out, "empty") {
		t.Errorf("empty render = %q", out)
	}
}
