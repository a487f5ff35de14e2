// Package auth drives the account lifecycle against an AT Protocol
// service: authenticate, refresh, and delete sessions, and create accounts.
// It owns retry policy for transient failures and keeps the credential
// store and session registry consistent with the current session.
package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/atkit/atkit/internal/utils"
	"github.com/atkit/atkit/keystore"
	"github.com/atkit/atkit/session"
	"github.com/atkit/atkit/xrpc"
)

// Default retry policy for transient remote failures.
const (
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Credentials identify the account to authenticate as. The zero value is a
// service-only configuration: it can use an externally supplied session but
// can never authenticate itself.
type Credentials struct {
	Handle   string
	Password string
}

func (c Credentials) canAuthenticate() bool {
	return c.Handle != "" && c.Password != ""
}

// Client is the authentication orchestrator for one account configuration.
// Lifecycle operations (Authenticate, CreateAccount, RefreshSession,
// DeleteSession) on the same Client are serialized by an internal lock, so
// a refresh and a delete can never interleave against the session slot.
// Clients for different accounts are fully independent.
type Client struct {
	api      *xrpc.Client
	creds    Credentials
	store    *keystore.Store
	registry *session.Registry

	instanceID     uuid.UUID
	maxRetries     int
	retryBaseDelay time.Duration
	logger         zerolog.Logger
	nowTime        func() time.Time

	httpClient *http.Client
	userAgent  string

	// opMu serializes lifecycle operations; sessionMu guards the slot so
	// snapshot reads never wait on an in-flight network call.
	opMu      sync.Mutex
	sessionMu sync.RWMutex
	session   *session.UserSession
}

// Option configures a Client.
type Option func(*Client)

// WithKeystore persists the password and refresh token through the given
// store and caches access tokens in it. Without a keystore, session state
// is memory-only.
func WithKeystore(store *keystore.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithRegistry registers the client's session in the given registry under
// its instance ID.
func WithRegistry(registry *session.Registry) Option {
	return func(c *Client) {
		c.registry = registry
	}
}

// WithRetryPolicy sets how many times a transient failure is retried and
// the base delay of the exponential backoff between attempts.
func WithRetryPolicy(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBaseDelay = baseDelay
	}
}

// WithLogger attaches a logger. Token and password values are never logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// New creates an orchestrator for the service at serviceURL. A malformed
// URL fails with ErrInvalidRequestURL.
func New(serviceURL string, creds Credentials, options ...Option) (*Client, error) {
	client := &Client{
		creds:          creds,
		instanceID:     uuid.New(),
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         zerolog.Nop(),
		nowTime:        time.Now,
	}
	for _, opt := range options {
		opt(client)
	}

	var apiOptions []xrpc.ClientOption
	if client.httpClient != nil {
		apiOptions = append(apiOptions, xrpc.WithHTTPClient(client.httpClient))
	}
	if client.userAgent != "" {
		apiOptions = append(apiOptions, xrpc.WithUserAgent(client.userAgent))
	}

	api, err := xrpc.NewClient(serviceURL, apiOptions...)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRequestURL, "[auth.New] %q: %v", serviceURL, err)
	}
	client.api = api
	return client, nil
}

// InstanceID returns the opaque key this client registers its session
// under.
func (c *Client) InstanceID() uuid.UUID {
	return c.instanceID
}

// Session returns the current session snapshot, or nil when none is
// established. The returned value is never mutated; refresh replaces it
// wholesale.
func (c *Client) Session() *session.UserSession {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session
}

// serviceClient resolves the API client for an operation: the configured
// service, or pdsURL when the caller targets the account's own PDS.
func (c *Client) serviceClient(pdsURL string) (*xrpc.Client, error) {
	if pdsURL == "" {
		return c.api, nil
	}
	api, err := c.api.WithService(pdsURL)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRequestURL, "%q: %v", pdsURL, err)
	}
	return api, nil
}

// sessionFromPayload builds the session value for a createSession,
// refreshSession, or createAccount payload, applying the client's retry
// policy. An absent active flag means active.
func (c *Client) sessionFromPayload(payload *xrpc.SessionPayload) *session.UserSession {
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	return &session.UserSession{
		Handle:          payload.Handle,
		DID:             payload.DID,
		DIDDocument:     payload.DIDDoc,
		AccessToken:     payload.AccessJwt,
		RefreshToken:    payload.RefreshJwt,
		Email:           utils.Value(payload.Email),
		EmailConfirmed:  utils.Value(payload.EmailConfirmed),
		EmailAuthFactor: utils.Value(payload.EmailAuthFactor),
		Active:          active,
		Status:          session.ParseAccountStatus(utils.Value(payload.Status)),
		MaxRetries:      c.maxRetries,
		RetryBaseDelay:  c.retryBaseDelay,
		CreatedAt:       c.nowTime(),
	}
}

// persistCredentials writes the secrets of a freshly minted session through
// the keystore. Called before the session slot is assigned, so a vault
// failure leaves no partially established session behind.
func (c *Client) persistCredentials(sess *session.UserSession, password string) error {
	if c.store == nil {
		return nil
	}
	if password != "" {
		if err := c.store.SavePassword(password); err != nil {
			return errors.Wrap(err, "saving password")
		}
	}
	if sess.RefreshToken != "" {
		if err := c.store.SaveRefreshToken(sess.RefreshToken); err != nil {
			return errors.Wrap(err, "saving refresh token")
		}
	}
	c.store.SaveAccessToken(sess.AccessToken)
	return nil
}

func (c *Client) setSession(sess *session.UserSession) {
	c.sessionMu.Lock()
	c.session = sess
	c.sessionMu.Unlock()

	if c.registry != nil {
		c.registry.Register(c.instanceID, sess)
	}
}
