package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/events"
)

// Subscriber receives the new state after every transition.
type Subscriber func(State)

// Store holds the in-memory session and mirrors every mutation to durable
// storage, keeping the two in sync per transition.
type Store struct {
	mu          sync.RWMutex
	state       State
	storage     Storage
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	subscribers []Subscriber
}

// NewStore constructs a store seeded from durable storage.
func NewStore(storage Storage, dispatcher events.Dispatcher, logger *zap.Logger) (*Store, error) {
	s := &Store{
		storage:    storage,
		dispatcher: dispatcher,
		logger:     logger,
	}

	state, ok, err := storage.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		s.state = state
	}
	return s, nil
}

// Current returns a snapshot of the session.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AccessToken returns the current access token, empty when logged out.
func (s *Store) AccessToken() string {
	return s.Current().AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (s *Store) RefreshToken() string {
	return s.Current().RefreshToken
}

// Subscribe registers a callback invoked after every state transition.
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// SetSession installs a freshly logged-in session.
func (s *Store) SetSession(access, refresh string, user *domain.User) {
	s.transition(func(st State) State {
		return st.withLogin(access, refresh, user)
	})
	s.publish(events.EventSessionStarted, events.SessionStartedPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
}

// ApplyTokens installs rotated tokens after a refresh. An empty refresh token
// keeps the stored one.
func (s *Store) ApplyTokens(access, refresh string) {
	s.transition(func(st State) State {
		return st.withTokens(access, refresh)
	})
	s.publish(events.EventSessionRefreshed, events.SessionRefreshedPayload{
		RotatedRefreshToken: refresh != "",
	})
}

// Clear wipes the session from memory and storage.
func (s *Store) Clear(reason string) {
	s.transition(func(st State) State {
		return st.cleared()
	})
	s.publish(events.EventSessionCleared, events.SessionClearedPayload{Reason: reason})
}

// SetSidebarCollapsed persists the UI preference.
func (s *Store) SetSidebarCollapsed(collapsed bool) {
	s.transition(func(st State) State {
		return st.withSidebar(collapsed)
	})
}

// replaceFromStorage installs a state observed on disk without writing it
// back. Used by the file watcher when another process rotated the tokens.
func (s *Store) replaceFromStorage(state State) {
	s.mu.Lock()
	s.state = state
	subs := append([]Subscriber{}, s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(state)
	}
}

func (s *Store) transition(fn func(State) State) {
	s.mu.Lock()
	next := fn(s.state)
	s.state = next
	subs := append([]Subscriber{}, s.subscribers...)
	s.mu.Unlock()

	if err := s.storage.Save(next); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}

	for _, sub := range subs {
		sub(next)
	}
}

func (s *Store) publish(eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
