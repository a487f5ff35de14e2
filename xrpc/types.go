package xrpc

import (
	"github.com/atkit/atkit/session"
)

// Procedure and query NSIDs for the session lifecycle.
const (
	ProcedureCreateSession  = "com.atproto.server.createSession"
	ProcedureRefreshSession = "com.atproto.server.refreshSession"
	ProcedureDeleteSession  = "com.atproto.server.deleteSession"
	ProcedureCreateAccount  = "com.atproto.server.createAccount"
	QueryGetSession         = "com.atproto.server.getSession"
)

// CreateSessionRequest is the body of createSession. Identifier is a handle
// or DID; AuthFactorToken carries the emailed second factor when the
// account requires one.
type CreateSessionRequest struct {
	Identifier      string `json:"identifier"`
	Password        string `json:"password"`
	AuthFactorToken string `json:"authFactorToken,omitempty"`
}

// SessionPayload is the response shape shared by createSession,
// refreshSession, and createAccount. Optional fields are pointers so
// absence is distinguishable from a zero value.
type SessionPayload struct {
	AccessJwt       string               `json:"accessJwt"`
	RefreshJwt      string               `json:"refreshJwt"`
	DID             string               `json:"did"`
	Handle          string               `json:"handle"`
	Email           *string              `json:"email,omitempty"`
	EmailConfirmed  *bool                `json:"emailConfirmed,omitempty"`
	EmailAuthFactor *bool                `json:"emailAuthFactor,omitempty"`
	DIDDoc          *session.DIDDocument `json:"didDoc,omitempty"`
	Active          *bool                `json:"active,omitempty"`
	Status          *string              `json:"status,omitempty"`
}

// CreateSessionResponse is the payload of a successful createSession.
type CreateSessionResponse = SessionPayload

// RefreshSessionResponse is the payload of a successful refreshSession.
type RefreshSessionResponse = SessionPayload

// CreateAccountRequest is the body of createAccount. Only email, handle,
// and password are required by this library; the remaining fields cover the
// server's optional account-provisioning inputs.
type CreateAccountRequest struct {
	Email            string `json:"email,omitempty"`
	Handle           string `json:"handle"`
	DID              string `json:"did,omitempty"`
	InviteCode       string `json:"inviteCode,omitempty"`
	VerificationCode string `json:"verificationCode,omitempty"`
	Password         string `json:"password,omitempty"`
	RecoveryKey      string `json:"recoveryKey,omitempty"`
}

// CreateAccountResponse is the payload of a successful createAccount.
type CreateAccountResponse = SessionPayload

// GetSessionResponse is the server's current view of a session, returned by
// the getSession probe.
type GetSessionResponse struct {
	DID             string               `json:"did"`
	Handle          string               `json:"handle"`
	Email           *string              `json:"email,omitempty"`
	EmailConfirmed  *bool                `json:"emailConfirmed,omitempty"`
	EmailAuthFactor *bool                `json:"emailAuthFactor,omitempty"`
	DIDDoc          *session.DIDDocument `json:"didDoc,omitempty"`
	Active          *bool                `json:"active,omitempty"`
	Status          *string              `json:"status,omitempty"`
}
