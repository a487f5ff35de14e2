package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/atkit/atkit/session"
	"github.com/atkit/atkit/xrpc"
)

// CreateAccountParams are the inputs to account creation. Handle is
// required; the rest depend on the server's registration policy (open
// registration, invite codes, email verification, or a bring-your-own-DID
// flow).
type CreateAccountParams struct {
	Email            string
	Handle           string
	DID              string
	InviteCode       string
	VerificationCode string
	Password         string
	RecoveryKey      string
}

// CreateAccount registers a new account and establishes its first session.
// The returned session carries the client's default retry policy and is
// persisted and registered exactly as Authenticate would; on any failure no
// local state is touched.
func (c *Client) CreateAccount(ctx context.Context, params CreateAccountParams) (*session.UserSession, error) {
	if params.Handle == "" {
		return nil, errors.New("[Client.CreateAccount] handle is required")
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	req := xrpc.CreateAccountRequest{
		Email:            params.Email,
		Handle:           params.Handle,
		DID:              params.DID,
		InviteCode:       params.InviteCode,
		VerificationCode: params.VerificationCode,
		Password:         params.Password,
		RecoveryKey:      params.RecoveryKey,
	}
	var payload xrpc.CreateAccountResponse
	if err := c.api.Procedure(ctx, xrpc.ProcedureCreateAccount, "", req, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateAccount] createAccount")
	}

	sess := c.sessionFromPayload(&payload)
	if err := sess.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateAccount]")
	}
	if err := c.persistCredentials(sess, params.Password); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateAccount]")
	}

	c.setSession(sess)
	c.logger.Info().Str("handle", sess.Handle).Str("did", sess.DID).Msg("account created")
	return sess, nil
}
