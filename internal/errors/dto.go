package errors

// ErrorResponse is the callable error envelope
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information. Status carries the callable
// protocol status name so mobile clients can branch on it.
type ErrorDetail struct {
	Status  string         `json:"status"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
