// Package session holds the authenticated-session value shared between the
// orchestrator, the credential store, and downstream API calls, plus the
// process-wide registry that tracks sessions for multiple concurrent
// accounts.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/atkit/atkit/internal/utils"
)

// AccountStatus is the reason an account is inactive, as reported by the
// server. It is a closed projection: reasons the server may add later
// resolve to no status rather than a new value.
type AccountStatus string

const (
	StatusTakedown    AccountStatus = "takedown"
	StatusSuspended   AccountStatus = "suspended"
	StatusDeactivated AccountStatus = "deactivated"
)

// ParseAccountStatus maps the server-reported status string onto the closed
// AccountStatus set. Unknown or empty values return nil, meaning the account
// has no inactivity status. The raw string is discarded.
func ParseAccountStatus(s string) *AccountStatus {
	switch AccountStatus(s) {
	case StatusTakedown, StatusSuspended, StatusDeactivated:
		return utils.Ptr(AccountStatus(s))
	}
	return nil
}

// UserSession is an immutable snapshot of an authenticated identity. It is
// constructed by the auth package on successful authentication or account
// creation and is only ever replaced wholesale, never mutated in place, so
// concurrent readers of an old snapshot cannot observe torn writes.
type UserSession struct {
	Handle      string
	DID         string
	DIDDocument *DIDDocument

	AccessToken  string
	RefreshToken string

	Email           string
	EmailConfirmed  bool
	EmailAuthFactor bool
	Active          bool
	Status          *AccountStatus

	// Retry policy applied by the orchestrator to transient failures.
	MaxRetries     int
	RetryBaseDelay time.Duration

	CreatedAt time.Time
}

// Validate checks the invariants every constructed session must hold: a DID
// and an access token are always present. The refresh token is permitted to
// be empty only for degraded service-only use.
func (s *UserSession) Validate() error {
	if s.DID == "" {
		return errors.New("[UserSession.Validate] missing DID")
	}
	if s.AccessToken == "" {
		return errors.New("[UserSession.Validate] missing access token")
	}
	return nil
}

// AccessTokenExpired reports whether the access JWT's exp claim is at or
// before now. This is a local staleness hint only: the token is not
// verified, and a token that cannot be parsed is treated as expired. The
// authoritative expiry signal remains a 401 from the server.
func (s *UserSession) AccessTokenExpired(now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.Before(exp.Time)
}
