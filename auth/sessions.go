package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/atkit/atkit/internal/utils"
	"github.com/atkit/atkit/session"
	"github.com/atkit/atkit/xrpc"
)

// Authenticate creates a session for the configured handle and password.
// factorToken carries the emailed second factor when the account requires
// one; pass an empty string otherwise. A service-only configuration fails
// with ErrNoCredentials before any network call.
//
// On success the session is available from Session, its secrets are
// persisted through the keystore, and it is registered in the registry.
// All side effects happen only after the full response is validated.
func (c *Client) Authenticate(ctx context.Context, factorToken string) error {
	if !c.creds.canAuthenticate() {
		return ErrNoCredentials
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	req := xrpc.CreateSessionRequest{
		Identifier:      c.creds.Handle,
		Password:        c.creds.Password,
		AuthFactorToken: factorToken,
	}
	var payload xrpc.CreateSessionResponse
	if err := c.api.Procedure(ctx, xrpc.ProcedureCreateSession, "", req, &payload); err != nil {
		return errors.Wrap(err, "[Client.Authenticate] createSession")
	}

	sess := c.sessionFromPayload(&payload)
	if err := sess.Validate(); err != nil {
		return errors.Wrap(err, "[Client.Authenticate]")
	}
	if err := c.persistCredentials(sess, c.creds.Password); err != nil {
		return errors.Wrap(err, "[Client.Authenticate]")
	}

	c.setSession(sess)
	c.logger.Info().Str("handle", sess.Handle).Str("did", sess.DID).Msg("session created")
	return nil
}

// GetSession probes the server's current view of the session. When no
// local session exists it returns (nil, nil) without issuing a network
// call. pdsURL optionally targets the account's own PDS; empty means the
// configured service.
func (c *Client) GetSession(ctx context.Context, pdsURL string) (*xrpc.GetSessionResponse, error) {
	current := c.Session()
	if current == nil {
		return nil, nil
	}

	api, err := c.serviceClient(pdsURL)
	if err != nil {
		return nil, err
	}

	var resp xrpc.GetSessionResponse
	if err := api.Query(ctx, xrpc.QueryGetSession, current.AccessToken, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.GetSession] getSession")
	}
	return &resp, nil
}

// RefreshSession rotates the session's tokens. With no established session
// there is nothing to refresh and the call returns nil without touching the
// network or the vault.
//
// Transient failures (5xx, transport errors) are retried with exponential
// backoff per the configured policy; permanent failures propagate after a
// single attempt. The session slot, keystore, and registry are updated only
// after the refresh fully succeeds: a canceled or exhausted refresh leaves
// the previous session value intact and surfaces the last error.
func (c *Client) RefreshSession(ctx context.Context, pdsURL string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	current := c.Session()
	if current == nil || current.RefreshToken == "" {
		return nil
	}

	api, err := c.serviceClient(pdsURL)
	if err != nil {
		return err
	}

	payload, err := c.refreshWithRetry(ctx, api, current.RefreshToken)
	if err != nil {
		return errors.Wrap(err, "[Client.RefreshSession] refreshSession")
	}

	next := *current
	next.AccessToken = payload.AccessJwt
	next.RefreshToken = payload.RefreshJwt
	if payload.Handle != "" {
		next.Handle = payload.Handle
	}
	if payload.DIDDoc != nil {
		next.DIDDocument = payload.DIDDoc
	}
	if payload.Active != nil {
		next.Active = *payload.Active
	}
	next.Status = session.ParseAccountStatus(utils.Value(payload.Status))
	if err := next.Validate(); err != nil {
		return errors.Wrap(err, "[Client.RefreshSession]")
	}

	if c.store != nil {
		if err := c.store.UpdateRefreshToken(next.RefreshToken); err != nil {
			return errors.Wrap(err, "[Client.RefreshSession] saving refresh token")
		}
		c.store.SaveAccessToken(next.AccessToken)
	}

	c.sessionMu.Lock()
	c.session = &next
	c.sessionMu.Unlock()
	if c.registry != nil {
		c.registry.Update(c.instanceID, &next)
	}

	c.logger.Info().Str("did", next.DID).Msg("session refreshed")
	return nil
}

// DeleteSession revokes the session server-side, then clears the local
// slot, removes the registry entry, and deletes the stored credentials.
// This is the one operation that must run before discarding local state, or
// the token stays valid server-side after the client believes it is gone.
func (c *Client) DeleteSession(ctx context.Context, pdsURL string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	current := c.Session()
	if current == nil {
		return ErrMissingActiveSession
	}

	api, err := c.serviceClient(pdsURL)
	if err != nil {
		return err
	}
	if err := api.Procedure(ctx, xrpc.ProcedureDeleteSession, current.AccessToken, nil, nil); err != nil {
		return errors.Wrap(err, "[Client.DeleteSession] deleteSession")
	}

	c.sessionMu.Lock()
	c.session = nil
	c.sessionMu.Unlock()
	if c.registry != nil {
		c.registry.Remove(c.instanceID)
	}
	if c.store != nil {
		if err := c.store.DeleteAll(); err != nil {
			return errors.Wrap(err, "[Client.DeleteSession] clearing keystore")
		}
	}

	c.logger.Info().Str("did", current.DID).Msg("session deleted")
	return nil
}
