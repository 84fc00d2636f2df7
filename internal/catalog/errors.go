// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
var ErrUnauthorized = errors.New("catalog: unauthorized")

// APIError is a non-2xx response from the backend.
// Detail carries the backend's human-readable reason.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("catalog: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("catalog: %d %s", e.Status, e.Detail)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			apiErr.Detail = s
			return apiErr
		}
		var issues []validationIssue
		if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
			apiErr.Detail = flattenIssues(issues)
			return apiErr
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		apiErr.Detail = text
	}
	return apiErr
}

// flattenIssues turns FastAPI validation errors into one line.
func flattenIssues(issues []validationIssue) string {
	parts := make([]string, 0, len(issues))
	for _, is := range issues {
		field := ""
		if n := len(is.Loc); n > 0 {
			field = fmt.Sprint(is.Loc[n-1])
		}
		if field != "" && field != "body" {
			parts = append(parts, field+": "+is.Msg)
		} else {
			parts = append(parts, is.Msg)
		}
	}
	return strings.Join(parts, "; ")
}

// Detail extracts the human-readable backend reason from err.
// It returns fallback when err carries none.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// StatusCode returns the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsTimeout reports whether err is a client-side timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusGatewayTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
