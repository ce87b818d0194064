package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/tilestudio/site/pkg/errors"
)

const maxBodyBytes = 32 << 20

// upstreamError covers the error bodies of the CMS APIs we call: a top-level
// message (Contentful) or an error object with a description (Sanity).
type upstreamError struct {
	Message string `json:"message"`
	Error   *struct {
		Description string `json:"description"`
		Message     string `json:"message"`
	} `json:"error"`
}

func (e upstreamError) text() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != nil {
		if e.Error.Description != "" {
			return e.Error.Description
		}
		return e.Error.Message
	}
	return ""
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// maps it to an AppError.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	message := strings.TrimSpace(string(body))
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil && parsed.text() != "" {
		message = parsed.text()
	}

	return mapStatus(resp.StatusCode, message, upstream)
}

func mapStatus(status int, message, upstream string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream+" resource", message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited(qualified)
	case status >= 500:
		return apperrors.Unavailable(qualified, fmt.Errorf("status %d", status))
	default:
		return &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: qualified, Status: http.StatusBadGateway}
	}
}
