package services

import "net/http"

// ServiceError is a typed error carrying the HTTP status code the
// controller should respond with.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func notFound(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: message}
}

func badRequest(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: message}
}

func serverError(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: message}
}
