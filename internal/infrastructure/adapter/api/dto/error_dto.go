package dto

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Code                   int    `json:"code"`
	Kind                   string `json:"kind"`
	Message                string `json:"message"`
	MinimumAcceptableCents int64  `json:"minimumAcceptableCents,omitempty"`
	MinimumAcceptable      string `json:"minimumAcceptable,omitempty"`
	Retryable              bool   `json:"retryable"`
}
