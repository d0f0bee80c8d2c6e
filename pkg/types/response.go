package types

// FieldError is one field-level validation failure, in the same shape
// the backend reports them.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the uniform response shape returned by every API call.
// Data is only meaningful when Success is true.
type Envelope[T any] struct {
	Success          bool         `json:"success"`
	Data             T            `json:"data,omitempty"`
	Error            string       `json:"error,omitempty"`
	ValidationErrors []FieldError `json:"validation_errors,omitempty"`
}

// Ok wraps data in a successful envelope.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Fail builds a failed envelope carrying a human-readable summary.
func Fail[T any](msg string) Envelope[T] {
	return Envelope[T]{Success: false, Error: msg}
}

// Invalid builds a failed envelope carrying field-level detail.
func Invalid[T any](msg string, fields []FieldError) Envelope[T] {
	return Envelope[T]{Success: false, Error: msg, ValidationErrors: fields}
}
