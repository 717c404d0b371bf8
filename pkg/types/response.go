package types

// SuccessEnvelope wraps every 2xx JSON body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the body of a failed request. RequestID echoes the
// X-Request-Id header so a guest can quote it when reporting a failed order.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// Failure builds an error body. Empty details are left out of the JSON.
func Failure(code, message string, details any) ErrorEnvelope {
	if m, ok := details.(map[string]any); ok && len(m) == 0 {
		details = nil
	}
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
