// Package session owns the live credential: a bearer token plus the
// user-info record kept alongside it. All mutation of the pair goes
// through a Store; nothing else in the client writes session state.
package session

import "errors"

// ErrNoSession indicates an operation that needs a stored credential
// found none.
var ErrNoSession = errors.New("no session stored")

// Slot names, shared by every store implementation. The cookie store
// uses them verbatim as cookie names, the file store as JSON keys.
const (
	TokenSlot    = "token"
	UserInfoSlot = "userInfo"
)

// UserInfo is the ancillary record stored next to the token. It is
// written at sign-in and preserved across background token refreshes.
type UserInfo struct {
	Username string `json:"username"`
}

// Store is the single owner of the credential/session pair. Clear drops
// token and user-info together; no caller can observe a state where one
// is cleared and the other is not.
type Store interface {
	Token() (string, bool)
	SetToken(token string) error
	UserInfo() (UserInfo, bool)
	SetUserInfo(info UserInfo) error
	Clear() error
}
