package quiz

import "testing"

func TestStoreLifecycle(t *testing.T) {
	st := NewStore()

	if _, ok := st.Get(1); ok {
		t.Fatal("expected no session initially")
	}

	st.Put(1, &Session{})
	if _, ok := st.Get(1); !ok {
		t.Fatal("expected session present after Put")
	}

	st.Remove(1)
	if _, ok := st.Get(1); ok {
		t.Fatal("expected session removed")
	}
}

func TestStorePutReplaces(t *testing.T) {
	st := NewStore()
	st.Put(1, &Session{Score: 1})
	st.Put(1, &Session{Score: 2})
	s, ok := st.Get(1)
	if !ok || s.Score != 2 {
		t.Fatalf("expected replacement session, got %+v", s)
	}
}

func TestStoreAssignsFreshIDs(t *testing.T) {
	st := NewStore()
	a := &Session{}
	b := &Session{}
	st.Put(1, a)
	st.Put(1, b)
	if a.ID == b.ID {
		t.Fatalf("expected distinct session ids, both %d", a.ID)
	}
}

func TestPendingFlag(t *testing.T) {
	st := NewStore()
	if st.Pending(1) {
		t.Fatal("expected no pending flag initially")
	}
	st.SetPending(1)
	if !st.Pending(1) {
		t.Fatal("expected pending flag set")
	}
	st.ClearPending(1)
	if st.Pending(1) {
		t.Fatal("expected pending flag cleared")
	}
}

func TestSetPendingDropsSession(t *testing.T) {
	st := NewStore()
	st.Put(1, &Session{})
	st.SetPending(1)
	if _, ok := st.Get(1); ok {
		t.Fatal("expected session dropped when a new quiz flow starts")
	}
}

func TestPutClearsPending(t *testing.T) {
	st := NewStore()
	st.SetPending(1)
	st.Put(1, &Session{})
	if st.Pending(1) {
		t.Fatal("expected pending flag cleared by Put")
	}
}

func TestSessionCursor(t *testing.T) {
	s := &Session{Questions: []Question{
		{Prompt: "a", Options: []string{"x", "y"}, Correct: "x"},
		{Prompt: "b", Options: []string{"x", "y"}, Correct: "y"},
	}}

	q, ok := s.Current()
	if !ok || q.Prompt != "a" {
		t.Fatalf("current = %+v, %v", q, ok)
	}
	if s.Done() {
		t.Fatal("session should not be done at index 0")
	}

	s.Index = 2
	if _, ok := s.Current(); ok {
		t.Fatal("expected no current question past the end")
	}
	if !s.Done() {
		t.Fatal("session should be done past the last question")
	}
}
