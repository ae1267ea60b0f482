package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestCookieStore(cookies map[string]string) (*CookieStore, *httptest.ResponseRecorder) {
	r := httptest.NewRequest("GET", "/", nil)
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: url.QueryEscape(value)})
	}
	w := httptest.NewRecorder()
	return NewCookieStore(w, r, DefaultCookieConfig()), w
}

func TestCookieStoreReadsRequestCookies(t *testing.T) {
	s, _ := newTestCookieStore(map[string]string{
		TokenSlot:    "aaa.bbb.ccc",
		UserInfoSlot: `{"username":"admin"}`,
	})

	tok, ok := s.Token()
	if !ok || tok != "aaa.bbb.ccc" {
		t.Errorf("Token() = (%q, %v), want (aaa.bbb.ccc, true)", tok, ok)
	}
	info, ok := s.UserInfo()
	if !ok || info.Username != "admin" {
		t.Errorf("UserInfo() = (%+v, %v), want admin", info, ok)
	}
}

func TestCookieStoreWriteVisibleInSameRequest(t *testing.T) {
	s, w := newTestCookieStore(nil)

	if err := s.SetToken("new.tok.en"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}

	tok, ok := s.Token()
	if !ok || tok != "new.tok.en" {
		t.Errorf("Token() after write = (%q, %v), want (new.tok.en, true)", tok, ok)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != TokenSlot {
		t.Fatalf("response cookies = %v, want single %q cookie", cookies, TokenSlot)
	}
}

func TestCookieStoreClearAtomicObservable(t *testing.T) {
	s, w := newTestCookieStore(map[string]string{
		TokenSlot:    "aaa.bbb.ccc",
		UserInfoSlot: `{"username":"admin"}`,
	})

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	if _, ok := s.Token(); ok {
		t.Error("Token() present after Clear()")
	}
	if _, ok := s.UserInfo(); ok {
		t.Error("UserInfo() present after Clear()")
	}

	// both slots expired in the same response
	expired := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			expired[c.Name] = true
		}
	}
	if !expired[TokenSlot] || !expired[UserInfoSlot] {
		t.Errorf("expired cookies = %v, want both %q and %q", expired, TokenSlot, UserInfoSlot)
	}
}

func TestCookieConfigGovernsAllWrites(t *testing.T) {
	cfg := CookieConfig{
		Path:     "/app",
		MaxAge:   time.Hour,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	s := NewCookieStore(w, r, cfg)

	if err := s.SetToken("aaa.bbb.ccc"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}
	if err := s.SetUserInfo(UserInfo{Username: "admin"}); err != nil {
		t.Fatalf("SetUserInfo() error: %v", err)
	}

	for _, c := range w.Result().Cookies() {
		if c.Path != "/app" {
			t.Errorf("cookie %q Path = %q, want /app", c.Name, c.Path)
		}
		if !c.Secure {
			t.Errorf("cookie %q not Secure", c.Name)
		}
		if c.MaxAge != 3600 {
			t.Errorf("cookie %q MaxAge = %d, want 3600", c.Name, c.MaxAge)
		}
	}
}
