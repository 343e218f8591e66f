package quiz

import "sync"

// Phase is the state of a session's lifecycle.
type Phase int

const (
	// PhaseInProgress means the session is presenting questions.
	PhaseInProgress Phase = iota
	// PhaseCompleted means the last question was advanced past; the session
	// is removed from the store right after post-completion handling.
	PhaseCompleted
)

// Session is the mutable per-chat state of one quiz attempt. It is ephemeral:
// a restart drops all sessions.
type Session struct {
	// ID distinguishes a session from its successors in the same chat, so a
	// scheduled advance cannot act on a session that was replaced meanwhile.
	ID          uint64
	Phase       Phase
	Questions   []Question
	Index       int
	Score       int
	UserID      int64
	DisplayName string
	// Settled is true once the current question received its answer; further
	// selections for it are ignored until the advance fires.
	Settled bool
}

// Current returns the question at the session cursor.
func (s *Session) Current() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Done reports whether the cursor moved past the last question.
func (s *Session) Done() bool {
	return s.Index >= len(s.Questions)
}

// Store maps chat ids to their active session and pending length request.
// A chat has at most one session; Put replaces any existing entry.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	pending  map[int64]bool
	nextID   uint64
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		pending:  make(map[int64]bool),
	}
}

// Get returns the session for a chat, if present.
func (st *Store) Get(chatID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[chatID]
	return s, ok
}

// Put stores a session for a chat, assigning it a fresh id and clearing any
// pending length request.
func (st *Store) Put(chatID int64, s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.nextID++
	s.ID = st.nextID
	st.sessions[chatID] = s
	delete(st.pending, chatID)
}

// Remove deletes the session for a chat.
func (st *Store) Remove(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, chatID)
}

// SetPending marks the chat as awaiting a quiz length reply. Any active
// session for the chat is dropped: a fresh /quiz always resets the flow.
func (st *Store) SetPending(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pending[chatID] = true
	delete(st.sessions, chatID)
}

// ClearPending removes the awaiting-length mark.
func (st *Store) ClearPending(chatID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.pending, chatID)
}

// Pending reports whether the chat is awaiting a quiz length reply.
func (st *Store) Pending(chatID int64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pending[chatID]
}
