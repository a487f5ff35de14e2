package xrpc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atkit/atkit/xrpc"
)

func errorForStatus(t *testing.T, status int, body string) *xrpc.Error {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	client, err := xrpc.NewClient(server.URL)
	require.NoError(t, err)

	err = client.Procedure(context.Background(), xrpc.ProcedureRefreshSession, "r1", nil, nil)
	require.Error(t, err)

	var apiErr *xrpc.Error
	require.ErrorAs(t, err, &apiErr)
	return apiErr
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		kind      xrpc.ErrorKind
		temporary bool
	}{
		{400, xrpc.KindBadRequest, false},
		{401, xrpc.KindUnauthorized, false},
		{403, xrpc.KindForbidden, false},
		{404, xrpc.KindNotFound, false},
		{413, xrpc.KindPayloadTooLarge, false},
		{429, xrpc.KindRateLimited, false},
		{500, xrpc.KindInternalServerError, true},
		{501, xrpc.KindNotImplemented, true},
		{502, xrpc.KindBadGateway, true},
		{503, xrpc.KindServiceUnavailable, true},
		{504, xrpc.KindGatewayTimeout, true},
		{418, xrpc.KindUnknown, false},
	}

	for _, tc := range cases {
		apiErr := errorForStatus(t, tc.status, `{"error":"SomeCode","message":"something went wrong"}`)
		require.Equal(t, tc.kind, apiErr.Kind, "status %d", tc.status)
		require.Equal(t, tc.status, apiErr.StatusCode)
		require.Equal(t, tc.temporary, apiErr.Temporary(), "status %d", tc.status)
	}
}

func TestErrorPreservesCodeAndMessage(t *testing.T) {
	apiErr := errorForStatus(t, 400, `{"error":"ExpiredToken","message":"Token has expired"}`)
	require.Equal(t, xrpc.KindBadRequest, apiErr.Kind)
	require.Equal(t, "ExpiredToken", apiErr.Code)
	require.Equal(t, "Token has expired", apiErr.Message)
	require.Contains(t, apiErr.Error(), "ExpiredToken")
	require.Contains(t, apiErr.Error(), "Token has expired")
}

func TestErrorWithUnparseableBody(t *testing.T) {
	apiErr := errorForStatus(t, 503, "<html>gateway</html>")
	require.Equal(t, xrpc.KindServiceUnavailable, apiErr.Kind)
	require.Empty(t, apiErr.Code)
	require.True(t, apiErr.Temporary())
}

func TestNewClientRejectsBadURLs(t *testing.T) {
	_, err := xrpc.NewClient("not a url")
	require.Error(t, err)

	_, err = xrpc.NewClient("ftp://example.com")
	require.Error(t, err)

	_, err = xrpc.NewClient("/relative/path")
	require.Error(t, err)
}

func TestWithServiceRetargetsClient(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := xrpc.NewClient("https://unreachable.invalid")
	require.NoError(t, err)

	retargeted, err := client.WithService(server.URL)
	require.NoError(t, err)

	require.NoError(t, retargeted.Query(context.Background(), xrpc.QueryGetSession, "a1", &struct{}{}))
	require.Equal(t, "/xrpc/"+xrpc.QueryGetSession, gotPath)

	_, err = client.WithService("::/bad")
	require.Error(t, err)
}
