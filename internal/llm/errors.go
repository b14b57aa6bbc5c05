package llm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrMissingAPIKey = errors.New("llm api key is not configured")
	ErrEmptyResponse = errors.New("llm returned no content")
)

// StatusError carries the HTTP status of a failed provider call.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// StatusCode reports the HTTP status attached to err, if any.
func StatusCode(err error) (int, bool) {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		return se.HTTPStatus(), true
	}
	return 0, false
}

// IsRetryable reports whether err is a rate limit or a server-side failure.
func IsRetryable(err error) bool {
	code, ok := StatusCode(err)
	if !ok {
		return false
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Provider: "openai", StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}

func wrapClaudeError(err error) error {
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		return &StatusError{Provider: "claude", StatusCode: reqErr.StatusCode, Err: err}
	}
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch string(apiErr.Type) {
		case "rate_limit_error":
			return &StatusError{Provider: "claude", StatusCode: http.StatusTooManyRequests, Err: err}
		case "api_error":
			return &StatusError{Provider: "claude", StatusCode: http.StatusInternalServerError, Err: err}
		case "overloaded_error":
			return &StatusError{Provider: "claude", StatusCode: 529, Err: err}
		}
	}
	return err
}

func wrapGeminiError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var code int
	switch st.Code() {
	case codes.ResourceExhausted:
		code = http.StatusTooManyRequests
	case codes.Unavailable:
		code = http.StatusServiceUnavailable
	case codes.Internal, codes.Unknown:
		code = http.StatusInternalServerError
	case codes.DeadlineExceeded:
		code = http.StatusGatewayTimeout
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		code = http.StatusBadRequest
	case codes.Unauthenticated:
		code = http.StatusUnauthorized
	case codes.PermissionDenied:
		code = http.StatusForbidden
	case codes.NotFound:
		code = http.StatusNotFound
	default:
		return err
	}
	return &StatusError{Provider: "gemini", StatusCode: code, Err: err}
}
