package session

import "sync"

// MemoryStore is an in-process Store. It backs tests and any context
// where persistence across restarts is not needed.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	info  *UserInfo
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) UserInfo() (UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil {
		return UserInfo{}, false
	}
	return *s.info, true
}

func (s *MemoryStore) SetUserInfo(info UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = &info
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.info = nil
	return nil
}
