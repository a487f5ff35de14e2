package xrpc

import "fmt"

// ErrorKind is the closed classification of remote failures, derived from
// the HTTP status class. The server's machine error code and message are
// preserved on Error for logging and branching; the kind is what retry
// policy keys off.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindPayloadTooLarge
	KindRateLimited
	KindInternalServerError
	KindNotImplemented
	KindBadGateway
	KindServiceUnavailable
	KindGatewayTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindPayloadTooLarge:
		return "payload too large"
	case KindRateLimited:
		return "rate limited"
	case KindInternalServerError:
		return "internal server error"
	case KindNotImplemented:
		return "not implemented"
	case KindBadGateway:
		return "bad gateway"
	case KindServiceUnavailable:
		return "service unavailable"
	case KindGatewayTimeout:
		return "gateway timeout"
	}
	return "unknown"
}

// Temporary reports whether the failure is worth retrying: the 5xx kinds
// are; every 4xx kind and the unknown bucket are not.
func (k ErrorKind) Temporary() bool {
	switch k {
	case KindInternalServerError, KindNotImplemented, KindBadGateway,
		KindServiceUnavailable, KindGatewayTimeout:
		return true
	}
	return false
}

// Error is a failure reported by the remote service. Code carries the
// machine error code from the response body (e.g. "ExpiredToken",
// "AccountTakedown"); Message carries the human-readable text. Both may be
// empty when the server returned no parseable body.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("xrpc: %s (%d %s): %s", e.Code, e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("xrpc: %d %s: %s", e.StatusCode, e.Kind, e.Message)
}

// Temporary reports whether the error is transient per its kind.
func (e *Error) Temporary() bool {
	return e.Kind.Temporary()
}

func kindFromStatus(status int) ErrorKind {
	switch status {
	case 400:
		return KindBadRequest
	case 401:
		return KindUnauthorized
	case 403:
		return KindForbidden
	case 404:
		return KindNotFound
	case 413:
		return KindPayloadTooLarge
	case 429:
		return KindRateLimited
	case 500:
		return KindInternalServerError
	case 501:
		return KindNotImplemented
	case 502:
		return KindBadGateway
	case 503:
		return KindServiceUnavailable
	case 504:
		return KindGatewayTimeout
	}
	return KindUnknown
}
