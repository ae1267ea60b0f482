package guard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hienao/openlist-strm/internal/session"
)

var guardNow = time.Unix(1700000000, 0)

type fakeChecker struct {
	exists bool
	err    error
	calls  int
}

func (f *fakeChecker) CheckUserExists(ctx context.Context) (bool, error) {
	f.calls++
	return f.exists, f.err
}

type fakeRefresher struct {
	triggered int
}

func (f *fakeRefresher) TriggerAsync(ctx context.Context) {
	f.triggered++
}

func tokenWithExp(t *testing.T, exp time.Time) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"sub": "admin", "exp": exp.Unix()})
	if err != nil {
		t.Fatal(err)
	}
	return "header." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func storeWith(t *testing.T, tok string) *session.MemoryStore {
	t.Helper()
	st := session.NewMemoryStore()
	if tok != "" {
		if err := st.SetToken(tok); err != nil {
			t.Fatal(err)
		}
		if err := st.SetUserInfo(session.UserInfo{Username: "admin"}); err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func newGuard(st session.Store, checker UserChecker, r Refresher) *Guard {
	return New(st, checker, r, WithClock(func() time.Time { return guardNow }))
}

func TestEvalProtectedNoCredential(t *testing.T) {
	tests := []struct {
		name    string
		checker fakeChecker
		want    Verdict
	}{
		{"user exists", fakeChecker{exists: true}, RedirectSignIn},
		{"no user yet", fakeChecker{exists: false}, RedirectRegister},
		{"check fails", fakeChecker{err: errors.New("down")}, RedirectSignIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGuard(storeWith(t, ""), &tt.checker, nil)
			if got := g.EvalProtected(context.Background()); got != tt.want {
				t.Errorf("EvalProtected() = %v, want %v", got, tt.want)
			}
			if tt.checker.calls != 1 {
				t.Errorf("existence check calls = %d, want 1", tt.checker.calls)
			}
		})
	}
}

func TestEvalProtectedExpiredToken(t *testing.T) {
	st := storeWith(t, tokenWithExp(t, guardNow.Add(-time.Hour)))
	checker := &fakeChecker{exists: true}

	got := newGuard(st, checker, nil).EvalProtected(context.Background())
	if got != RedirectSignIn {
		t.Errorf("EvalProtected() = %v, want RedirectSignIn", got)
	}
	if _, ok := st.Token(); ok {
		t.Error("expired token not cleared")
	}
	if _, ok := st.UserInfo(); ok {
		t.Error("user info not cleared alongside token")
	}
	if checker.calls != 1 {
		t.Errorf("existence check calls = %d, want 1", checker.calls)
	}
}

func TestEvalProtectedRenewalDue(t *testing.T) {
	// exp = now + 3 days, window = 7 days: allow and refresh in background
	st := storeWith(t, tokenWithExp(t, guardNow.Add(3*24*time.Hour)))
	checker := &fakeChecker{exists: true}
	refresher := &fakeRefresher{}

	got := newGuard(st, checker, refresher).EvalProtected(context.Background())
	if got != AllowAndRefresh {
		t.Errorf("EvalProtected() = %v, want AllowAndRefresh", got)
	}
	if refresher.triggered != 1 {
		t.Errorf("refresher triggers = %d, want 1", refresher.triggered)
	}
	if checker.calls != 0 {
		t.Error("existence check ran on an allowed navigation")
	}
}

func TestEvalProtectedHealthyToken(t *testing.T) {
	st := storeWith(t, tokenWithExp(t, guardNow.Add(30*24*time.Hour)))
	refresher := &fakeRefresher{}

	got := newGuard(st, &fakeChecker{}, refresher).EvalProtected(context.Background())
	if got != Allow {
		t.Errorf("EvalProtected() = %v, want Allow", got)
	}
	if refresher.triggered != 0 {
		t.Error("refresher triggered outside the renewal window")
	}
	if tok, ok := st.Token(); !ok || tok == "" {
		t.Error("healthy token was mutated")
	}
}

func TestEvalProtectedMalformedFailsOpen(t *testing.T) {
	// the server remains the final authority; its 401 path recovers
	st := storeWith(t, "abc.def")

	got := newGuard(st, &fakeChecker{exists: true}, nil).EvalProtected(context.Background())
	if got != Allow {
		t.Errorf("EvalProtected() = %v, want Allow (fail open)", got)
	}
}

func TestEvalGuestValidTokenRedirectsHome(t *testing.T) {
	st := storeWith(t, tokenWithExp(t, guardNow.Add(time.Hour)))

	got := newGuard(st, &fakeChecker{exists: true}, nil).EvalGuest(context.Background(), DestSignIn)
	if got != RedirectHome {
		t.Errorf("EvalGuest() = %v, want RedirectHome", got)
	}
}

func TestEvalGuestMalformedFailsClosed(t *testing.T) {
	st := storeWith(t, "abc.def")
	checker := &fakeChecker{exists: true}

	got := newGuard(st, checker, nil).EvalGuest(context.Background(), DestSignIn)
	if got == RedirectHome {
		t.Error("malformed token kept the visitor logged in on the guest gate")
	}
	if _, ok := st.Token(); ok {
		t.Error("malformed token not cleared")
	}
	if _, ok := st.UserInfo(); ok {
		t.Error("user info not cleared alongside malformed token")
	}
}

func TestEvalGuestSteering(t *testing.T) {
	tests := []struct {
		name    string
		checker fakeChecker
		target  Destination
		want    Verdict
	}{
		{"registration with existing user", fakeChecker{exists: true}, DestRegister, RedirectSignIn},
		{"sign-in on fresh install", fakeChecker{exists: false}, DestSignIn, RedirectRegister},
		{"sign-in with existing user", fakeChecker{exists: true}, DestSignIn, Allow},
		{"registration on fresh install", fakeChecker{exists: false}, DestRegister, Allow},
		{"check failure fails open", fakeChecker{err: errors.New("down")}, DestSignIn, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGuard(storeWith(t, ""), &tt.checker, nil)
			if got := g.EvalGuest(context.Background(), tt.target); got != tt.want {
				t.Errorf("EvalGuest(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestRecoverThreeWayBranch(t *testing.T) {
	tests := []struct {
		name    string
		checker fakeChecker
		want    Destination
	}{
		{"user exists", fakeChecker{exists: true}, DestSignIn},
		{"no user", fakeChecker{exists: false}, DestRegister},
		{"check fails", fakeChecker{err: errors.New("down")}, DestSignIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storeWith(t, "aaa.bbb.ccc")
			g := newGuard(st, &tt.checker, nil)

			got := g.Recover(context.Background())
			if got != tt.want {
				t.Errorf("Recover() = %v, want %v", got, tt.want)
			}
			if _, ok := st.Token(); ok {
				t.Error("token survived recovery")
			}
			if _, ok := st.UserInfo(); ok {
				t.Error("user info survived recovery")
			}
		})
	}
}

func TestVerdictStrings(t *testing.T) {
	for v, want := range map[Verdict]string{
		Allow:            "allow",
		AllowAndRefresh:  "allow+refresh",
		RedirectSignIn:   "redirect:sign-in",
		RedirectRegister: "redirect:register",
		RedirectHome:     "redirect:home",
	} {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", v, got, want)
		}
	}
	_ = fmt.Sprint(DestSignIn, DestRegister)
}
