package quiz

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// Question is a single quiz question. The correct answer is compared to the
// chosen option by exact string match.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

// Bank is the immutable set of questions loaded once at startup.
type Bank struct {
	questions []Question
}

// NewBank validates the questions and wraps them into a Bank.
func NewBank(questions []Question) (*Bank, error) {
	for i, q := range questions {
		if q.Prompt == "" {
			return nil, fmt.Errorf("question %d: empty prompt", i)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: needs at least 2 options, got %d", i, len(q.Options))
		}
		seen := make(map[string]struct{}, len(q.Options))
		correctFound := false
		for _, opt := range q.Options {
			if _, dup := seen[opt]; dup {
				return nil, fmt.Errorf("question %d: duplicate option %q", i, opt)
			}
			seen[opt] = struct{}{}
			if opt == q.Correct {
				correctFound = true
			}
		}
		if !correctFound {
			return nil, fmt.Errorf("question %d: correct answer %q is not among the options", i, q.Correct)
		}
	}
	return &Bank{questions: questions}, nil
}

// LoadBank reads and validates a JSON question file.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions file: %w", err)
	}
	bank, err := NewBank(questions)
	if err != nil {
		return nil, fmt.Errorf("validate questions file: %w", err)
	}
	return bank, nil
}

// Size returns the number of questions in the bank.
func (b *Bank) Size() int {
	return len(b.questions)
}

// Sample draws min(n, size) distinct questions uniformly at random.
func (b *Bank) Sample(n int) []Question {
	if n > len(b.questions) {
		n = len(b.questions)
	}
	if n <= 0 {
		return nil
	}
	idx := rand.Perm(len(b.questions))
	out := make([]Question, 0, n)
	for _, i := range idx[:n] {
		out = append(out, b.questions[i])
	}
	return out
}
