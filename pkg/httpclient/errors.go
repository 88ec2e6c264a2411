package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/FeedbackAI/pkg/errors"
)

// ErrorEnvelope mirrors the {"error":{...}} body written by httputil.WriteError.
type ErrorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. Structured envelopes keep their code and message;
// anything else yields a plain error with the status and raw body. The body is
// consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var envelope ErrorEnvelope
	if json.Unmarshal(bodyBytes, &envelope) == nil && envelope.Error != nil {
		return mapRemoteError(resp.StatusCode, envelope.Error.Code, envelope.Error.Message, serviceName)
	}

	return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
}

func mapRemoteError(status int, code, message, serviceName string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrInvalidInput}
	case status == http.StatusServiceUnavailable:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status, Err: apperrors.ErrServiceUnavail}
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: qualifiedMsg, Status: status}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
