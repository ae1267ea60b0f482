package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session as a JSON file, so a CLI session
// survives across invocations the way a browser cookie survives
// reloads. Writes go through a temp file plus rename: a concurrent
// reader sees either the old pair or the new pair, never a torn state.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

type fileSession struct {
	Token    string    `json:"token,omitempty"`
	UserInfo *UserInfo `json:"userInfo,omitempty"`
}

// DefaultSessionPath returns the session file location in the user's
// home directory.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	return filepath.Join(home, ".openlist-strm", "session.json"), nil
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.load()
	if err != nil || sess.Token == "" {
		return "", false
	}
	return sess.Token, true
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.load()
	if err != nil {
		return err
	}
	sess.Token = token
	return s.save(sess)
}

func (s *FileStore) UserInfo() (UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.load()
	if err != nil || sess.UserInfo == nil {
		return UserInfo{}, false
	}
	return *sess.UserInfo, true
}

func (s *FileStore) SetUserInfo(info UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.load()
	if err != nil {
		return err
	}
	sess.UserInfo = &info
	return s.save(sess)
}

// Clear drops token and user-info in a single write.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file '%s': %w", s.path, err)
	}
	return nil
}

func (s *FileStore) load() (*fileSession, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &fileSession{}, nil
		}
		return nil, fmt.Errorf("opening session file '%s': %w", s.path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var sess fileSession
	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return nil, fmt.Errorf("decoding session file '%s': %w", s.path, err)
	}
	return &sess, nil
}

func (s *FileStore) save(sess *fileSession) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session directory '%s': %w", dir, err)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting session file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp session file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing session file '%s': %w", s.path, err)
	}
	return nil
}
