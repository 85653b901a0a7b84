package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type timeoutErr struct{ timeout bool }

func (e *timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (e *timeoutErr) Timeout() bool   { return e.timeout }
func (e *timeoutErr) Temporary() bool { return e.timeout }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"api 500", &openai.APIError{HTTPStatusCode: 500}, true},
		{"api 503", &openai.APIError{HTTPStatusCode: 503}, true},
		{"api 429", &openai.APIError{HTTPStatusCode: 429}, false},
		{"api 401", &openai.APIError{HTTPStatusCode: 401}, false},
		{"request 502", &openai.RequestError{HTTPStatusCode: 502}, true},
		{"request 400", &openai.RequestError{HTTPStatusCode: 400}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"net timeout", &timeoutErr{timeout: true}, true},
		{"net non-timeout", &timeoutErr{timeout: false}, false},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := isTransient(test.err); got != test.want {
				t.Errorf("isTransient(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
