package state

import "testing"

type testForm struct {
	Name  string
	Count int
}

func TestMemoryManagerLifecycle(t *testing.T) {
	mgr := NewMemoryManager[testForm]()

	if mgr.InProgress(1) {
		t.Fatal("new manager should have no active sessions")
	}
	if st := mgr.GetState(1); st != StateIdle {
		t.Fatalf("expected idle state, got %s", st)
	}

	mgr.Begin(1, State("step_one"))
	if !mgr.InProgress(1) {
		t.Fatal("expected session in progress after Begin")
	}

	ok := mgr.Update(1, func(s *Session[testForm]) {
		s.Data.Name = "first"
		s.Data.Count = 2
	})
	if !ok {
		t.Fatal("Update should succeed for an existing session")
	}

	mgr.SetState(1, State("step_two"))
	sess := mgr.Get(1)
	if sess.State != State("step_two") || sess.Data.Name != "first" || sess.Data.Count != 2 {
		t.Fatalf("unexpected session snapshot: %+v", sess)
	}
}

func TestMemoryManagerBeginDiscardsData(t *testing.T) {
	mgr := NewMemoryManager[testForm]()

	mgr.Begin(7, State("step_one"))
	mgr.Update(7, func(s *Session[testForm]) { s.Data.Name = "stale" })

	mgr.Begin(7, State("step_one"))
	if got := mgr.Get(7).Data.Name; got != "" {
		t.Fatalf("Begin must discard previous form data, got %q", got)
	}
}

func TestMemoryManagerClear(t *testing.T) {
	mgr := NewMemoryManager[testForm]()
	mgr.Begin(3, State("step_one"))
	mgr.Clear(3)

	if mgr.InProgress(3) {
		t.Fatal("cleared session should not be in progress")
	}
	if ok := mgr.Update(3, func(s *Session[testForm]) {}); ok {
		t.Fatal("Update should report false after Clear")
	}
}

func TestMemoryManagerGetReturnsSnapshot(t *testing.T) {
	mgr := NewMemoryManager[testForm]()
	mgr.Begin(5, State("step_one"))

	snap := mgr.Get(5)
	snap.Data.Name = "local change"

	if got := mgr.Get(5).Data.Name; got != "" {
		t.Fatalf("Get must return a copy, stored session changed to %q", got)
	}
}
