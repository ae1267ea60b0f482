// Package webgate is the front server for the web UI: it gates page
// navigation on the stored session, bounces visitors between sign-in
// and first-run registration, and proxies API calls to the backend.
package webgate

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"

	"github.com/hienao/openlist-strm/internal/config"
	"github.com/hienao/openlist-strm/internal/guard"
	"github.com/hienao/openlist-strm/internal/refresh"
	"github.com/hienao/openlist-strm/internal/session"
	"github.com/hienao/openlist-strm/pkg/client"
)

const (
	SignInPath   = "/login"
	RegisterPath = "/register"
	HomePath     = "/"
	APIPrefix    = "/api/"
)

type Server struct {
	api        *client.Client
	cookieCfg  session.CookieConfig
	sessionCfg config.SessionConfig
	proxy      *httputil.ReverseProxy

	// rotated maps an old token to its refreshed successor. A
	// background refresh cannot write a response cookie after the
	// triggering request finished, so the fresh token is parked here
	// and moved into the cookie on the next navigation.
	rotated sync.Map
}

func NewServer(cfg *config.Config) (*Server, error) {
	cookieCfg, err := cfg.Session.Cookie.CookieConfig()
	if err != nil {
		return nil, err
	}

	backend, err := url.Parse(cfg.Gate.Backend)
	if err != nil {
		return nil, fmt.Errorf("parsing backend origin '%s': %w", cfg.Gate.Backend, err)
	}

	return &Server{
		api:        client.New(cfg.APIBase()),
		cookieCfg:  cookieCfg,
		sessionCfg: cfg.Session,
		proxy:      httputil.NewSingleHostReverseProxy(backend),
	}, nil
}

// storeFor builds the per-request cookie store and applies any parked
// refreshed token, so the rotation becomes visible in the browser.
func (s *Server) storeFor(w http.ResponseWriter, r *http.Request) session.Store {
	st := session.NewCookieStore(w, r, s.cookieCfg)
	if old, ok := st.Token(); ok {
		if fresh, found := s.rotated.LoadAndDelete(old); found {
			_ = st.SetToken(fresh.(string))
		}
	}
	return st
}

// guardFor assembles a guard whose background refresher parks the new
// token in the rotation map keyed by the credential that triggered it.
func (s *Server) guardFor(st session.Store) *guard.Guard {
	refresher := refresh.New(s.api, &rotationStore{live: st, rotated: &s.rotated})
	return guard.New(st, s.api, refresher, guard.WithRenewAhead(s.sessionCfg.RenewAhead))
}

// rotationStore adapts the rotation map to the session.Store interface
// the refresher writes through. Reads come from the live per-request
// store; the token write lands in the rotation map under the old token.
type rotationStore struct {
	live    session.Store
	rotated *sync.Map
}

var _ session.Store = (*rotationStore)(nil)

func (rs *rotationStore) Token() (string, bool) {
	return rs.live.Token()
}

func (rs *rotationStore) SetToken(token string) error {
	if old, ok := rs.live.Token(); ok {
		rs.rotated.Store(old, token)
	}
	return nil
}

func (rs *rotationStore) UserInfo() (session.UserInfo, bool) {
	return rs.live.UserInfo()
}

func (rs *rotationStore) SetUserInfo(info session.UserInfo) error {
	return rs.live.SetUserInfo(info)
}

func (rs *rotationStore) Clear() error {
	return rs.live.Clear()
}

// Routes wires the gate's handler chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(SignInPath, s.GuestOnly(guard.DestSignIn, http.HandlerFunc(s.handleSignInPage)))
	mux.Handle(RegisterPath, s.GuestOnly(guard.DestRegister, http.HandlerFunc(s.handleRegisterPage)))

	// the backend keeps full authority over API authorization
	mux.Handle(APIPrefix, s.proxy)

	mux.Handle("/", s.Protected(http.HandlerFunc(s.handleApp)))

	return RecoverMiddleware(LoggingMiddleware(mux))
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "Sign in")
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "Create the first account")
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "openlist-strm")
}

func renderPage(w http.ResponseWriter, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
}
