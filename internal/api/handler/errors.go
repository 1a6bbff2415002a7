package handler

import (
	"encoding/json"
	"errors"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"net/http"
)

type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUserExists   ErrorCode = "USER_EXISTS"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// InternalErrorResponse is the body for every unexpected failure.
var InternalErrorResponse = ErrorResponse{
	Error: "internal server error",
	Code:  CodeInternal,
}

func WriteError(w http.ResponseWriter, err error, logger *logger.Logger) {
	status, response := mapError(err)

	if status != http.StatusInternalServerError {
		logger.Warn("domain error",
			"error", err.Error(),
			"code", response.Code,
		)
	} else {
		logger.Error("unexpected error",
			"error", err.Error(),
		)
	}

	writeJSON(w, status, response, logger)
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, message string, logger *logger.Logger) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeValidation}, logger)
}

func mapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		// keep the field details produced by the validator
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidation}

	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest, ErrorResponse{Error: domain.ErrInvalidReference.Error(), Code: CodeValidation}

	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrIncorrectPassword),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, ErrorResponse{Error: sentinelMessage(err), Code: CodeUnauthorized}

	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{Error: sentinelMessage(err), Code: CodeNotFound}

	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, ErrorResponse{Error: domain.ErrUserExists.Error(), Code: CodeUserExists}

	default:
		return http.StatusInternalServerError, InternalErrorResponse
	}
}

var clientSentinels = []error{
	domain.ErrInvalidCredentials,
	domain.ErrIncorrectPassword,
	domain.ErrUnauthenticated,
	domain.ErrSessionNotFound,
	domain.ErrUserNotFound,
}

// sentinelMessage strips wrapping context so clients only see the domain message.
func sentinelMessage(err error) string {
	for _, s := range clientSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
