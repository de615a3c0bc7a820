package dto

// Machine-readable error codes returned in response bodies.
const (
	CodeUnauthorized       = "unauthorized"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidPayload     = "invalid_payload"
	CodeNotFound           = "not_found"
	CodeRequestFailed      = "request_failed"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
