package auth

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/atkit/atkit/xrpc"
)

// retryable classifies a refresh failure. Remote errors follow their kind
// (5xx transient, 4xx permanent); a canceled context is permanent; anything
// else is a transport-level failure and worth retrying.
func retryable(err error) bool {
	var apiErr *xrpc.Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// refreshWithRetry calls refreshSession, retrying transient failures up to
// maxRetries times. The delay starts at retryBaseDelay and doubles each
// attempt.
func (c *Client) refreshWithRetry(ctx context.Context, api *xrpc.Client, refreshToken string) (*xrpc.RefreshSessionResponse, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryBaseDelay
	expo.RandomizationFactor = 0
	expo.Multiplier = 2
	expo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(c.maxRetries)), ctx)

	var payload xrpc.RefreshSessionResponse
	attempt := 0
	operation := func() error {
		attempt++
		err := api.Procedure(ctx, xrpc.ProcedureRefreshSession, refreshToken, nil, &payload)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn().Int("attempt", attempt).Err(err).Msg("transient refresh failure")
		return err
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return &payload, nil
}
