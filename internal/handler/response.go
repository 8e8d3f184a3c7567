package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"wacms/internal/service"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
		return err
	}

	return nil
}

// writeError writes the {"error":{"code","message"}} envelope
func writeError(w http.ResponseWriter, status int, code, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// WriteCreated writes a 201 Created response with the given data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteOK writes a 200 OK response with the given data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteValidationError rejects a request parameter with 400 VALIDATION_ERROR
func WriteValidationError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
}

// decodeJSON reads the request body into dst, writing the error response on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return false
	}
	return true
}

// HandleServiceError maps service layer errors to appropriate HTTP responses.
// Unknown errors are logged and reported without internal details.
func HandleServiceError(w http.ResponseWriter, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred"

	switch e := err.(type) {
	case *service.NotFoundError:
		status, code, message = http.StatusNotFound, "RESOURCE_NOT_FOUND", e.Error()
	case *service.ValidationError:
		status, code, message = http.StatusBadRequest, "VALIDATION_ERROR", e.Message
	case *service.BusinessLogicError:
		status, code, message = http.StatusBadRequest, "BUSINESS_LOGIC_ERROR", e.Message
	case *service.ConflictError:
		status, code, message = http.StatusConflict, "CONFLICT", e.Message
	case *service.ConfigurationError:
		status, code, message = http.StatusBadRequest, e.Type(), e.Message
	case *service.ProviderError:
		status, code, message = http.StatusBadGateway, "PROVIDER_ERROR", e.Message
	case *service.NetworkError:
		logrus.WithError(e.Err).Warn("Provider unreachable")
		status, code, message = http.StatusBadGateway, e.Type(), e.Error()
	default:
		logrus.WithError(err).Error("Unhandled service error")
	}

	writeError(w, status, code, message)
}
