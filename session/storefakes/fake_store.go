package storefakes

import (
	"sync"

	"github.com/oneit/go-attendance-client/session"
	"github.com/oneit/go-attendance-client/token"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session store for tests. It records adopt and
// clear calls so tests can assert token lifecycle side effects.
type FakeStore struct {
	lock       sync.RWMutex
	current    token.Token
	AdoptCalls []token.Token
	ClearCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// NewFakeStoreWith returns a fake already holding a token.
func NewFakeStoreWith(t token.Token) *FakeStore {
	return &FakeStore{current: t}
}

func (s *FakeStore) Current() (token.Token, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current, !s.current.IsZero()
}

func (s *FakeStore) Adopt(t token.Token) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.current = t
	s.AdoptCalls = append(s.AdoptCalls, t)
	return nil
}

func (s *FakeStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.current = ""
	s.ClearCalls++
	return nil
}
