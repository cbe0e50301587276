package unsplash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/unsplash-picker/pkg/types"
)

func TestClassifyTransportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want domain.NetworkKind
	}{
		{
			name: "dns failure",
			err:  &net.DNSError{Err: "no such host", Name: "api.unsplash.com"},
			want: domain.NetworkNoConnectivity,
		},
		{
			name: "dial failure",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("boom")},
			want: domain.NetworkNoConnectivity,
		},
		{
			name: "connection refused",
			err: &net.OpError{
				Op:  "read",
				Net: "tcp",
				Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED},
			},
			want: domain.NetworkNoConnectivity,
		},
		{
			name: "network unreachable",
			err:  fmt.Errorf("wrapped: %w", syscall.ENETUNREACH),
			want: domain.NetworkNoConnectivity,
		},
		{
			name: "dial timeout",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: context.DeadlineExceeded},
			want: domain.NetworkNoConnectivity,
		},
		{
			name: "response deadline exceeded",
			err:  fmt.Errorf("executing request: %w", context.DeadlineExceeded),
			want: domain.NetworkOther,
		},
		{
			name: "truncated body",
			err:  fmt.Errorf("reading response body: %w", io.ErrUnexpectedEOF),
			want: domain.NetworkOther,
		},
		{
			name: "server closed connection",
			err:  fmt.Errorf("executing request: %w", io.EOF),
			want: domain.NetworkOther,
		},
		{
			name: "connection reset mid-response",
			err:  &net.OpError{Op: "read", Net: "tcp", Err: &os.SyscallError{Syscall: "read", Err: syscall.ECONNRESET}},
			want: domain.NetworkOther,
		},
		{
			name: "cancelled while dialing",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: context.Canceled},
			want: domain.NetworkOther,
		},
		{
			name: "cancelled by caller",
			err:  fmt.Errorf("executing request: %w", context.Canceled),
			want: domain.NetworkOther,
		},
		{
			name: "hourly quota",
			err:  fmt.Errorf("rate limit: %w", ErrHourlyLimitReached),
			want: domain.NetworkOther,
		},
		{
			name: "anything else",
			err:  errors.New("tls: bad certificate"),
			want: domain.NetworkOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := classifyTransportError(tt.err)

			var netErr *domain.NetworkError
			assert.ErrorAs(t, err, &netErr)
			assert.Equal(t, tt.want, netErr.Kind)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  string
		page    int
		perPage int
		got     int
		want    int
	}{
		{name: "exact multiple", header: "40", page: 1, perPage: 20, got: 20, want: 2},
		{name: "rounds up", header: "41", page: 1, perPage: 20, got: 20, want: 3},
		{name: "zero results", header: "0", page: 1, perPage: 20, got: 0, want: 0},
		{name: "missing header full page", header: "", page: 2, perPage: 20, got: 20, want: 3},
		{name: "missing header short page", header: "", page: 2, perPage: 20, got: 7, want: 2},
		{name: "garbage header", header: "lots", page: 1, perPage: 20, got: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, totalPages(tt.header, tt.page, tt.perPage, tt.got))
		})
	}
}
