package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr struct {
	transient bool
}

func (e *statusErr) Error() string   { return "status error" }
func (e *statusErr) Transient() bool { return e.transient }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid input: missing field"), false},
		{"self declared transient", &statusErr{transient: true}, true},
		{"self declared permanent", &statusErr{transient: false}, false},
		{"wrapped transient", fmt.Errorf("fetch: %w", &statusErr{transient: true}), true},
		{"net timeout", fmt.Errorf("get: %w", timeoutErr{}), true},
		{"conn reset", fmt.Errorf("write tcp: %w", syscall.ECONNRESET), true},
		{"conn refused", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), true},
		{"dns text", errors.New("lookup nhai.gov.in: no such host"), true},
		{"deadline text", errors.New("Get \"x\": context deadline exceeded"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404, 501} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ClassTransient, ClassifyError(syscall.ECONNRESET))
	assert.Equal(t, ClassPermanent, ClassifyError(errors.New("table not found")))
}
