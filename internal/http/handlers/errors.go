// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, lowercase snake_case strings that clients branch on.
// Generic codes mirror HTTP status semantics; the provider codes tell a
// misconfigured deployment apart from a failing upstream.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "upstream_error",
//	  "message": "Rate limit reached for requests",
//	  "details": {"status": 429, "type": "requests"}
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Persona library:
	ErrCodeCreateFailed = "create_failed"
	ErrCodeListFailed   = "list_failed"

	// Completion provider:
	ErrCodeConfiguration = "configuration_error"
	ErrCodeClientInit    = "client_init_failed"
	ErrCodeUpstream      = "upstream_error"
	ErrCodeMalformed     = "malformed_response"
)
