package unsplash

import (
	"context"
	"errors"
	"net"
	"syscall"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

// classifyTransportError wraps err in a *domain.NetworkError, marking it
// NetworkNoConnectivity when the request never reached the server. Response
// timeouts and connections dropped after they were accepted are
// NetworkOther.
func classifyTransportError(err error) error {
	kind := domain.NetworkOther
	if isNoConnectivity(err) {
		kind = domain.NetworkNoConnectivity
	}
	return &domain.NetworkError{Kind: kind, Err: err}
}

// unreachable are the errnos of a connection that could not be set up.
var unreachable = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ENETUNREACH,
	syscall.ENETDOWN,
	syscall.EHOSTUNREACH,
	syscall.EHOSTDOWN,
}

func isNoConnectivity(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// Covers dial timeouts too: the connection was never established.
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	for _, errno := range unreachable {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
