package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sony/gobreaker"
)

func TestBreakerRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"open state", gobreaker.ErrOpenState, true},
		{"half-open budget exhausted", gobreaker.ErrTooManyRequests, true},
		{"wrapped open state", fmt.Errorf("execute: %w", gobreaker.ErrOpenState), true},
		{"ordinary failure", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := breakerRejected(tt.err); got != tt.want {
				t.Errorf("breakerRejected(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetRateLimits(t *testing.T) {
	if getRateLimits("free").RPM != 60 {
		t.Error("free tier RPM changed")
	}
	if getRateLimits("tier1").RPM != 600 {
		t.Error("tier1 RPM changed")
	}
	if getRateLimits("unknown").RPM != 60 {
		t.Error("unknown tier must fall back to free limits")
	}
}
