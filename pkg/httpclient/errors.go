package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// Sentinel errors for transport failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrConnRefused indicates nothing is listening on the target port.
	ErrConnRefused = errors.New("httpclient: connection refused")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("httpclient: request timed out")

	// ErrProxyConnect indicates the client failed to connect through
	// the configured proxy.
	ErrProxyConnect = errors.New("httpclient: proxy connection failed")

	// ErrInvalidProxy indicates a proxy URL New cannot use.
	ErrInvalidProxy = errors.New("httpclient: invalid proxy URL")

	// ErrDNS indicates a DNS resolution failure for the target host.
	ErrDNS = errors.New("httpclient: DNS resolution failed")

	// ErrTLS indicates a TLS handshake or certificate verification failure.
	ErrTLS = errors.New("httpclient: TLS handshake failed")

	// ErrTransport is the catch-all for other failures below HTTP.
	ErrTransport = errors.New("httpclient: transport error")
)

// TransportError is a request failure that produced no HTTP response.
// errors.Is matches both Kind and the underlying error.
type TransportError struct {
	Kind error
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify wraps err in a *TransportError with the matching sentinel Kind.
// It returns nil for a nil error. Context cancellation is returned as is so
// callers can tell an interrupted run from a failed request.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Kind: kindOf(err), Err: err}
}

func kindOf(err error) error {
	if errors.Is(err, ErrProxyConnect) {
		return ErrProxyConnect
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "proxyconnect" {
		return ErrProxyConnect
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnRefused
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var certErr *tls.CertificateVerificationError
	var recErr tls.RecordHeaderError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &recErr) ||
		errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return ErrTLS
	}

	return ErrTransport
}
