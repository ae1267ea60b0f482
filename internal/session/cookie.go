package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CookieConfig fixes the attributes of every session cookie. All reads
// and writes of the token and userInfo slots go through the same
// config; no call site sets ad hoc attributes, so one code path can
// never write a cookie another path cannot see or clear.
type CookieConfig struct {
	Path     string
	MaxAge   time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig matches the server-issued token lifetime of two
// weeks.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		MaxAge:   14 * 24 * time.Hour,
		SameSite: http.SameSiteLaxMode,
	}
}

// cookie is the single place cookie attributes are assembled.
func (c CookieConfig) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.Path,
		MaxAge:   maxAge,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		HttpOnly: false, // the browser-side app reads these slots
	}
}

func (c CookieConfig) set(name, value string) *http.Cookie {
	return c.cookie(name, value, int(c.MaxAge/time.Second))
}

func (c CookieConfig) expire(name string) *http.Cookie {
	return c.cookie(name, "", -1)
}

// CookieStore is a per-request Store over the browser-equivalent cookie
// slots. Writes are applied to the response and mirrored into an
// in-request overlay, so a later read within the same request observes
// the write instead of the stale request cookie.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	cfg     CookieConfig
	overlay map[string]*string // slot -> value, nil marks deletion
}

var _ Store = (*CookieStore)(nil)

func NewCookieStore(w http.ResponseWriter, r *http.Request, cfg CookieConfig) *CookieStore {
	return &CookieStore{
		w:       w,
		r:       r,
		cfg:     cfg,
		overlay: make(map[string]*string),
	}
}

func (s *CookieStore) read(slot string) (string, bool) {
	if v, ok := s.overlay[slot]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	c, err := s.r.Cookie(slot)
	if err != nil || c.Value == "" {
		return "", false
	}
	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *CookieStore) write(slot, value string) {
	escaped := url.QueryEscape(value)
	http.SetCookie(s.w, s.cfg.set(slot, escaped))
	s.overlay[slot] = &value
}

func (s *CookieStore) delete(slot string) {
	http.SetCookie(s.w, s.cfg.expire(slot))
	s.overlay[slot] = nil
}

func (s *CookieStore) Token() (string, bool) {
	return s.read(TokenSlot)
}

func (s *CookieStore) SetToken(token string) error {
	s.write(TokenSlot, token)
	return nil
}

func (s *CookieStore) UserInfo() (UserInfo, bool) {
	raw, ok := s.read(UserInfoSlot)
	if !ok {
		return UserInfo{}, false
	}
	var info UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return UserInfo{}, false
	}
	return info, true
}

func (s *CookieStore) SetUserInfo(info UserInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encoding user info: %w", err)
	}
	s.write(UserInfoSlot, string(data))
	return nil
}

// Clear expires both slots in the same response; a reader in this
// request immediately sees both as absent.
func (s *CookieStore) Clear() error {
	s.delete(TokenSlot)
	s.delete(UserInfoSlot)
	return nil
}
