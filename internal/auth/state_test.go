package auth

import (
	"testing"
)

func TestState_LoadingUntilStart(t *testing.T) {
	t.Parallel()

	state := NewState()

	if _, loading := state.Current(); !loading {
		t.Error("expected loading before Start")
	}

	state.Start(nil)

	session, loading := state.Current()
	if loading {
		t.Error("expected loading false after Start")
	}
	if session != nil {
		t.Errorf("expected signed-out session, got %+v", session)
	}
}

func TestState_StartResolvesInitialSession(t *testing.T) {
	t.Parallel()

	state := NewState()

	var got *Session
	state.Subscribe(func(s *Session) { got = s })

	initial := &Session{UserID: "u1", Email: "alice@example.com"}
	state.Start(initial)

	if got == nil || got.UserID != "u1" {
		t.Errorf("subscriber did not observe initial session: %+v", got)
	}

	// Second Start is a no-op.
	state.Start(&Session{UserID: "u2"})
	current, _ := state.Current()
	if current.UserID != "u1" {
		t.Errorf("second Start should not replace session, got %+v", current)
	}
}

func TestState_SubscribeObservesTransitions(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.Start(nil)

	var transitions []*Session
	unsub := state.Subscribe(func(s *Session) {
		transitions = append(transitions, s)
	})

	state.Set(&Session{UserID: "u1"})
	state.Set(nil) // sign out

	if len(transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(transitions))
	}
	if transitions[0] == nil || transitions[0].UserID != "u1" {
		t.Errorf("first transition = %+v, want sign-in as u1", transitions[0])
	}
	if transitions[1] != nil {
		t.Errorf("second transition = %+v, want sign-out", transitions[1])
	}

	// After unsubscribe no further notifications arrive.
	unsub()
	state.Set(&Session{UserID: "u2"})
	if len(transitions) != 2 {
		t.Errorf("expected no notification after unsubscribe, got %d", len(transitions))
	}
}

func TestState_StopReleasesAllSubscriptions(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.Start(nil)

	fired := 0
	state.Subscribe(func(*Session) { fired++ })
	state.Subscribe(func(*Session) { fired++ })

	state.Stop()
	state.Set(&Session{UserID: "u1"})

	if fired != 0 {
		t.Errorf("expected no notifications after Stop, got %d", fired)
	}

	// State itself still tracks the session.
	if current, _ := state.Current(); current == nil || current.UserID != "u1" {
		t.Errorf("expected current session tracked after Stop, got %+v", current)
	}
}

func TestState_SubscriberMayUnsubscribeItself(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.Start(nil)

	fired := 0
	var unsub func()
	unsub = state.Subscribe(func(*Session) {
		fired++
		unsub()
	})

	state.Set(&Session{UserID: "u1"})
	state.Set(&Session{UserID: "u2"})

	if fired != 1 {
		t.Errorf("expected exactly one notification, got %d", fired)
	}
}
