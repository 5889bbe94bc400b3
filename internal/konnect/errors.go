package konnect

import (
	"encoding/json"
	"fmt"
)

// maxErrorBody bounds how much of an upstream response body ends up in an
// error message.
const maxErrorBody = 400

// ConfigError indicates missing or unusable configuration for a call,
// e.g. developer credentials that were neither supplied nor configured.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NotFoundError indicates a referenced resource does not exist upstream.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// UpstreamError indicates a non-2xx HTTP response from the Konnect API.
type UpstreamError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("upstream error: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// NetworkError indicates the request was sent but no response was received
// (connectivity, DNS, or transport timeout).
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError indicates the request could not be constructed or sent at all.
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error for %s: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError indicates an upstream response that could not be decoded into
// the shape an endpoint is documented to return.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// upstreamMessage extracts a human-readable message from an upstream error
// body. JSON objects contribute their message/detail field when present,
// otherwise the serialized body; anything else is used verbatim. The result
// is truncated to maxErrorBody.
func upstreamMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"message", "detail", "title"} {
			if s, ok := obj[key].(string); ok && s != "" {
				return truncate(s, maxErrorBody)
			}
		}
		if serialized, err := json.Marshal(obj); err == nil {
			return truncate(string(serialized), maxErrorBody)
		}
	}

	return truncate(string(body), maxErrorBody)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
