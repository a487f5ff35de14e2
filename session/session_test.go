package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/atkit/atkit/session"
)

func TestParseAccountStatus(t *testing.T) {
	takedown := session.ParseAccountStatus("takedown")
	require.NotNil(t, takedown)
	require.Equal(t, session.StatusTakedown, *takedown)

	suspended := session.ParseAccountStatus("suspended")
	require.NotNil(t, suspended)
	require.Equal(t, session.StatusSuspended, *suspended)

	deactivated := session.ParseAccountStatus("deactivated")
	require.NotNil(t, deactivated)
	require.Equal(t, session.StatusDeactivated, *deactivated)

	require.Nil(t, session.ParseAccountStatus(""))
	require.Nil(t, session.ParseAccountStatus("on-holiday"))
}

func TestUserSessionValidate(t *testing.T) {
	valid := &session.UserSession{DID: "did:plc:xyz", AccessToken: "a1"}
	require.NoError(t, valid.Validate())

	missingDID := &session.UserSession{AccessToken: "a1"}
	require.Error(t, missingDID.Validate())

	missingToken := &session.UserSession{DID: "did:plc:xyz"}
	require.Error(t, missingToken.Validate())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "did:plc:xyz",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestAccessTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fresh := &session.UserSession{AccessToken: signedToken(t, now.Add(time.Hour))}
	require.False(t, fresh.AccessTokenExpired(now))

	stale := &session.UserSession{AccessToken: signedToken(t, now.Add(-time.Minute))}
	require.True(t, stale.AccessTokenExpired(now))

	garbage := &session.UserSession{AccessToken: "not-a-jwt"}
	require.True(t, garbage.AccessTokenExpired(now))
}

func TestPDSEndpoint(t *testing.T) {
	doc := &session.DIDDocument{
		ID: "did:plc:xyz",
		Service: []session.Service{
			{ID: "did:plc:xyz#other", Type: "SomethingElse", ServiceEndpoint: "https://other.example"},
			{ID: "did:plc:xyz#atproto_pds", Type: "AtprotoPersonalDataServer", ServiceEndpoint: "https://pds.example"},
		},
	}
	require.Equal(t, "https://pds.example", doc.PDSEndpoint())

	empty := &session.DIDDocument{ID: "did:plc:xyz"}
	require.Equal(t, "", empty.PDSEndpoint())

	var nilDoc *session.DIDDocument
	require.Equal(t, "", nilDoc.PDSEndpoint())
}
