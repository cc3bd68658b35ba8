package types

// ErrorResponse is the envelope returned for every error condition. All
// endpoints share this shape so clients can handle failures uniformly.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error.
	// Possible values: "invalid_request_error", "not_found",
	// "unprocessable_entity", "server_error", "service_unavailable",
	// "gateway_timeout".
	Type string `json:"type"`

	// Param is the name of the parameter that caused the error (if applicable).
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`

	// Suggestions lists near-miss style ids for unknown-style errors,
	// nearest first.
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error type constants.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeUnprocessable indicates a well-formed request that cannot
	// be satisfied, such as a style without a usable template (422).
	ErrorTypeUnprocessable = "unprocessable_entity"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeServiceUnavailable indicates temporary unavailability (503).
	ErrorTypeServiceUnavailable = "service_unavailable"

	// ErrorTypeGatewayTimeout indicates the request timed out (504).
	ErrorTypeGatewayTimeout = "gateway_timeout"
)

// Error code constants for common error scenarios.
const (
	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeRequestTooLarge indicates the request payload is too large.
	CodeRequestTooLarge = "request_too_large"

	// CodeStyleNotFound indicates the requested style id is unknown.
	CodeStyleNotFound = "style_not_found"

	// CodeTemplateUnavailable indicates the style registers no usable
	// template for the requested variant.
	CodeTemplateUnavailable = "template_unavailable"

	// CodeRouteNotFound indicates no handler is registered for the path.
	CodeRouteNotFound = "route_not_found"

	// CodeCatalogUnavailable indicates the style catalog could not be
	// built or reloaded.
	CodeCatalogUnavailable = "catalog_unavailable"

	// CodeRequestTimeout indicates request handling exceeded the timeout.
	CodeRequestTimeout = "request_timeout"

	// CodeInternalError indicates an internal server error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewStyleNotFoundError creates an error response for unknown style ids
// (404), carrying the closest known ids as suggestions.
func NewStyleNotFoundError(message string, suggestions []string) *ErrorResponse {
	resp := NewErrorResponse(message, ErrorTypeNotFound, "", CodeStyleNotFound)
	resp.Error.Suggestions = suggestions
	return resp
}

// NewRouteNotFoundError creates an error response for unmatched routes (404).
func NewRouteNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeNotFound, "", CodeRouteNotFound)
}

// NewTemplateUnavailableError creates an error response for styles with
// no usable template (422).
func NewTemplateUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeUnprocessable, "", CodeTemplateUnavailable)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewServiceUnavailableError creates an error response for temporary
// unavailability (503).
func NewServiceUnavailableError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServiceUnavailable, "", CodeCatalogUnavailable)
}

// NewGatewayTimeoutError creates an error response for request timeouts (504).
func NewGatewayTimeoutError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeGatewayTimeout, "", CodeRequestTimeout)
}

// HTTPStatusCode returns the appropriate HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return 400
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeUnprocessable:
		return 422
	case ErrorTypeServerError:
		return 500
	case ErrorTypeServiceUnavailable:
		return 503
	case ErrorTypeGatewayTimeout:
		return 504
	default:
		return 500
	}
}
